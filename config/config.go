/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Package config loads configuration objects from files, readers and environment variables.
//
// Every configuration object implements Config: SetProviderDefaults registers default values
// in a DataProvider and Set reads (and validates) the actual values from it.
// Objects that implement KeyPrefixProvider receive a DataProvider scoped to their key prefix.
package config

// Config is a common interface for configuration objects that may be used by Loader.
type Config interface {
	SetProviderDefaults(dp DataProvider)
	Set(dp DataProvider) error
}

// KeyPrefixProvider is an interface for providing key prefix that will be used for configuration parameters.
type KeyPrefixProvider interface {
	KeyPrefix() string
}

// DataProviderFor returns dp scoped to the key prefix of cfg (if cfg provides a non-empty one).
func DataProviderFor(dp DataProvider, cfg interface{}) DataProvider {
	if kp, ok := cfg.(KeyPrefixProvider); ok && kp.KeyPrefix() != "" {
		return NewKeyPrefixedDataProvider(dp, kp.KeyPrefix())
	}
	return dp
}
