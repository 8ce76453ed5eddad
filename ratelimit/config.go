/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package ratelimit

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/acronis/go-crptapi/config"
	"github.com/acronis/go-crptapi/log"
)

const (
	cfgKeyMode         = "mode"
	cfgKeyPeriod       = "period"
	cfgKeyLimit        = "limit"
	cfgKeyRefillAmount = "refillAmount"
)

// Mode defines possible limiter implementations.
type Mode string

// Limiter modes.
const (
	// ModeWindow selects TokenBucket which is refilled to its capacity every period.
	ModeWindow Mode = "window"
	// ModeSmooth selects SmoothLimiter.
	ModeSmooth Mode = "smooth"
)

// Named periods.
const (
	PeriodSecond = "second"
	PeriodMinute = "minute"
	PeriodHour   = "hour"
	PeriodDay    = "day"
)

var namedPeriods = map[string]time.Duration{
	PeriodSecond: time.Second,
	PeriodMinute: time.Minute,
	PeriodHour:   time.Hour,
	PeriodDay:    24 * time.Hour,
}

// Config represents a set of configuration parameters for the rate limiter.
type Config struct {
	Mode         Mode
	Period       time.Duration
	Limit        int
	RefillAmount int

	keyPrefix string
}

var _ config.Config = (*Config)(nil)
var _ config.KeyPrefixProvider = (*Config)(nil)

// NewConfig creates a new instance of the Config.
func NewConfig() *Config {
	return &Config{}
}

// NewConfigWithKeyPrefix creates a new instance of the Config.
// Allows specifying key prefix which will be used for parsing configuration parameters.
func NewConfigWithKeyPrefix(keyPrefix string) *Config {
	return &Config{keyPrefix: keyPrefix}
}

// KeyPrefix returns a key prefix with which all configuration parameters should be presented.
func (c *Config) KeyPrefix() string {
	return c.keyPrefix
}

// SetProviderDefaults sets default configuration values for the rate limiter in config.DataProvider.
func (c *Config) SetProviderDefaults(dp config.DataProvider) {
	dp.SetDefault(cfgKeyMode, string(ModeWindow))
	dp.SetDefault(cfgKeyPeriod, PeriodSecond)
}

// Set sets rate limiter configuration values from config.DataProvider.
func (c *Config) Set(dp config.DataProvider) error {
	mode, err := dp.GetStringFromSet(cfgKeyMode, []string{string(ModeWindow), string(ModeSmooth)}, true)
	if err != nil {
		return err
	}
	c.Mode = Mode(strings.ToLower(mode))

	period, err := dp.GetString(cfgKeyPeriod)
	if err != nil {
		return err
	}
	if c.Period, err = parsePeriod(period); err != nil {
		return dp.WrapKeyErr(cfgKeyPeriod, err)
	}

	if !dp.IsSet(cfgKeyLimit) {
		return dp.WrapKeyErr(cfgKeyLimit, errors.New("is required"))
	}
	if c.Limit, err = dp.GetInt(cfgKeyLimit); err != nil {
		return err
	}
	if c.Limit <= 0 {
		return dp.WrapKeyErr(cfgKeyLimit, errors.New("should be positive"))
	}

	if c.RefillAmount, err = dp.GetInt(cfgKeyRefillAmount); err != nil {
		return err
	}
	if c.RefillAmount < 0 || c.RefillAmount > c.Limit {
		return dp.WrapKeyErr(cfgKeyRefillAmount, fmt.Errorf("should be in range [0, %d], 0 means the whole limit", c.Limit))
	}
	if c.RefillAmount != 0 && c.Mode == ModeSmooth {
		return dp.WrapKeyErr(cfgKeyRefillAmount, fmt.Errorf("is not supported in %q mode", ModeSmooth))
	}
	return nil
}

func parsePeriod(s string) (time.Duration, error) {
	if d, ok := namedPeriods[strings.ToLower(s)]; ok {
		return d, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("should be one of [second minute hour day] or a duration: %w", err)
	}
	if d <= 0 {
		return 0, errors.New("should be positive")
	}
	return d, nil
}

// Opts represents options for creating a Limiter from Config.
type Opts struct {
	Scheduler        Scheduler
	Logger           log.FieldLogger
	MetricsCollector MetricsCollector
}

// New creates a Limiter of the configured mode.
func New(cfg *Config, opts Opts) (Limiter, error) {
	switch cfg.Mode {
	case ModeSmooth:
		sl, err := NewSmoothLimiterWithOpts(cfg.Period, cfg.Limit, SmoothLimiterOpts{MetricsCollector: opts.MetricsCollector})
		if err != nil {
			return nil, err
		}
		return sl, nil
	case ModeWindow, "":
		tb, err := NewTokenBucketWithOpts(cfg.Period, cfg.Limit, TokenBucketOpts{
			RefillAmount:     cfg.RefillAmount,
			Scheduler:        opts.Scheduler,
			Logger:           opts.Logger,
			MetricsCollector: opts.MetricsCollector,
		})
		if err != nil {
			return nil, err
		}
		return tb, nil
	default:
		return nil, fmt.Errorf("unknown rate limiter mode %q", cfg.Mode)
	}
}
