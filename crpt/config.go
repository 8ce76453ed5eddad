/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package crpt

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/acronis/go-crptapi/config"
	"github.com/acronis/go-crptapi/httpclient"
	"github.com/acronis/go-crptapi/ratelimit"
)

// DefaultBaseURL is the base URL of the production API.
const DefaultBaseURL = "https://ismp.crpt.ru"

const cfgDefaultKeyPrefix = "crpt"

const (
	cfgKeyBaseURL          = "baseURL"
	cfgKeyRateLimitPrefix  = "rateLimit"
	cfgKeyHTTPClientPrefix = "httpClient"
)

// Config represents a set of configuration parameters for Client.
type Config struct {
	BaseURL    string
	RateLimit  ratelimit.Config
	HTTPClient httpclient.Config

	keyPrefix string
}

var _ config.Config = (*Config)(nil)
var _ config.KeyPrefixProvider = (*Config)(nil)

// NewConfig creates a new instance of the Config with the "crpt" key prefix.
func NewConfig() *Config {
	return NewConfigWithKeyPrefix(cfgDefaultKeyPrefix)
}

// NewConfigWithKeyPrefix creates a new instance of the Config.
// Allows specifying key prefix which will be used for parsing configuration parameters.
func NewConfigWithKeyPrefix(keyPrefix string) *Config {
	return &Config{keyPrefix: keyPrefix}
}

// NewDefaultConfig creates a Config with default values for everything except the rate limit budget,
// which should be set by the caller.
func NewDefaultConfig() *Config {
	return &Config{
		BaseURL: DefaultBaseURL,
		RateLimit: ratelimit.Config{
			Mode:   ratelimit.ModeWindow,
			Period: time.Second,
		},
		HTTPClient: *httpclient.NewConfig(),
		keyPrefix:  cfgDefaultKeyPrefix,
	}
}

// KeyPrefix returns a key prefix with which all configuration parameters should be presented.
func (c *Config) KeyPrefix() string {
	return c.keyPrefix
}

// SetProviderDefaults sets default configuration values for the client in config.DataProvider.
func (c *Config) SetProviderDefaults(dp config.DataProvider) {
	dp.SetDefault(cfgKeyBaseURL, DefaultBaseURL)
	c.RateLimit.SetProviderDefaults(config.NewKeyPrefixedDataProvider(dp, cfgKeyRateLimitPrefix))
	c.HTTPClient.SetProviderDefaults(config.NewKeyPrefixedDataProvider(dp, cfgKeyHTTPClientPrefix))
}

// Set sets client configuration values from config.DataProvider.
func (c *Config) Set(dp config.DataProvider) error {
	baseURL, err := dp.GetString(cfgKeyBaseURL)
	if err != nil {
		return err
	}
	if err = validateBaseURL(baseURL); err != nil {
		return dp.WrapKeyErr(cfgKeyBaseURL, err)
	}
	c.BaseURL = baseURL

	if err = c.RateLimit.Set(config.NewKeyPrefixedDataProvider(dp, cfgKeyRateLimitPrefix)); err != nil {
		return err
	}
	return c.HTTPClient.Set(config.NewKeyPrefixedDataProvider(dp, cfgKeyHTTPClientPrefix))
}

func validateBaseURL(baseURL string) error {
	u, err := url.Parse(baseURL)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q, should be http or https", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("host is missing")
	}
	return nil
}
