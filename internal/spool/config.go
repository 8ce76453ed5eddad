/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package spool

import (
	"errors"
	"time"

	"github.com/acronis/go-crptapi/config"
)

const cfgDefaultKeyPrefix = "spool"

const (
	cfgKeyDir          = "dir"
	cfgKeyScanInterval = "scanInterval"
	cfgKeyConcurrency  = "concurrency"
)

// Default values.
const (
	DefaultScanInterval = 10 * time.Second
	DefaultConcurrency  = 4
)

// Config represents a set of configuration parameters for Spool.
type Config struct {
	Dir          string
	ScanInterval time.Duration
	Concurrency  int
}

var _ config.Config = (*Config)(nil)
var _ config.KeyPrefixProvider = (*Config)(nil)

// NewConfig creates a new instance of the Config.
func NewConfig() *Config {
	return &Config{}
}

// KeyPrefix returns a key prefix with which all configuration parameters should be presented.
func (c *Config) KeyPrefix() string {
	return cfgDefaultKeyPrefix
}

// SetProviderDefaults sets default configuration values for spool in config.DataProvider.
func (c *Config) SetProviderDefaults(dp config.DataProvider) {
	dp.SetDefault(cfgKeyScanInterval, DefaultScanInterval.String())
	dp.SetDefault(cfgKeyConcurrency, DefaultConcurrency)
}

// Set sets spool configuration values from config.DataProvider.
func (c *Config) Set(dp config.DataProvider) error {
	var err error

	if c.Dir, err = dp.GetString(cfgKeyDir); err != nil {
		return err
	}
	if c.Dir == "" {
		return dp.WrapKeyErr(cfgKeyDir, errors.New("is required"))
	}

	if c.ScanInterval, err = dp.GetDuration(cfgKeyScanInterval); err != nil {
		return err
	}
	if c.ScanInterval <= 0 {
		return dp.WrapKeyErr(cfgKeyScanInterval, errors.New("should be positive"))
	}

	if c.Concurrency, err = dp.GetInt(cfgKeyConcurrency); err != nil {
		return err
	}
	if c.Concurrency <= 0 {
		return dp.WrapKeyErr(cfgKeyConcurrency, errors.New("should be positive"))
	}
	return nil
}
