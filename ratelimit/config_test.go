/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package ratelimit

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/acronis/go-crptapi/config"
)

func TestConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfgData string
		wantCfg Config
		wantErr string
	}{
		{
			name:    "defaults",
			cfgData: "rateLimit:\n  limit: 10\n",
			wantCfg: Config{Mode: ModeWindow, Period: time.Second, Limit: 10},
		},
		{
			name:    "named period",
			cfgData: "rateLimit:\n  mode: Window\n  period: minute\n  limit: 100\n  refillAmount: 10\n",
			wantCfg: Config{Mode: ModeWindow, Period: time.Minute, Limit: 100, RefillAmount: 10},
		},
		{
			name:    "duration period, smooth mode",
			cfgData: "rateLimit:\n  mode: smooth\n  period: 90s\n  limit: 3\n",
			wantCfg: Config{Mode: ModeSmooth, Period: 90 * time.Second, Limit: 3},
		},
		{
			name:    "day period",
			cfgData: "rateLimit:\n  period: DAY\n  limit: 1000\n",
			wantCfg: Config{Mode: ModeWindow, Period: 24 * time.Hour, Limit: 1000},
		},
		{
			name:    "unknown mode",
			cfgData: "rateLimit:\n  mode: sliding\n  limit: 1\n",
			wantErr: `rateLimit.mode: unknown value "sliding", should be one of [window smooth]`,
		},
		{
			name:    "limit is missing",
			cfgData: "rateLimit:\n  period: second\n",
			wantErr: "rateLimit.limit: is required",
		},
		{
			name:    "zero limit",
			cfgData: "rateLimit:\n  limit: 0\n",
			wantErr: "rateLimit.limit: should be positive",
		},
		{
			name:    "negative period",
			cfgData: "rateLimit:\n  period: -1s\n  limit: 1\n",
			wantErr: "rateLimit.period: should be positive",
		},
		{
			name:    "refill amount out of range",
			cfgData: "rateLimit:\n  limit: 5\n  refillAmount: 6\n",
			wantErr: "rateLimit.refillAmount: should be in range [0, 5], 0 means the whole limit",
		},
		{
			name:    "negative refill amount",
			cfgData: "rateLimit:\n  limit: 5\n  refillAmount: -1\n",
			wantErr: "rateLimit.refillAmount: should be in range [0, 5], 0 means the whole limit",
		},
		{
			name:    "refill amount in smooth mode",
			cfgData: "rateLimit:\n  mode: smooth\n  limit: 5\n  refillAmount: 1\n",
			wantErr: `rateLimit.refillAmount: is not supported in "smooth" mode`,
		},
	}
	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfigWithKeyPrefix("rateLimit")
			err := config.NewLoader(config.NewViperAdapter()).LoadFromReader(bytes.NewBufferString(tt.cfgData), config.DataTypeYAML, cfg)
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.wantCfg.keyPrefix = "rateLimit"
			require.Equal(t, tt.wantCfg, *cfg)
		})
	}

	t.Run("unknown period", func(t *testing.T) {
		cfg := NewConfigWithKeyPrefix("rateLimit")
		err := config.NewLoader(config.NewViperAdapter()).LoadFromReader(
			bytes.NewBufferString("rateLimit:\n  period: fortnight\n  limit: 1\n"), config.DataTypeYAML, cfg)
		require.ErrorContains(t, err, "rateLimit.period: should be one of [second minute hour day] or a duration")
	})
}

func TestNew(t *testing.T) {
	window, err := New(&Config{Mode: ModeWindow, Period: time.Second, Limit: 2, RefillAmount: 1}, Opts{})
	require.NoError(t, err)
	defer window.Stop()
	require.IsType(t, &TokenBucket{}, window)
	require.Equal(t, 2, window.(*TokenBucket).Capacity())

	smooth, err := New(&Config{Mode: ModeSmooth, Period: time.Second, Limit: 2}, Opts{})
	require.NoError(t, err)
	defer smooth.Stop()
	require.IsType(t, &SmoothLimiter{}, smooth)

	_, err = New(&Config{Mode: ModeWindow, Period: time.Second}, Opts{})
	require.EqualError(t, err, "limit should be positive, got 0")

	_, err = New(&Config{Mode: "sliding", Period: time.Second, Limit: 1}, Opts{})
	require.EqualError(t, err, `unknown rate limiter mode "sliding"`)
}
