/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package httpclient

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
			cfgData: "{}",
			wantCfg: Config{
				Timeout: DefaultClientWaitTimeout,
				Logger:  LoggerConfig{Enabled: true, Mode: LoggingModeAll},
				Metrics: MetricsConfig{Enabled: true},
			},
		},
		{
			name: "custom",
			cfgData: `{"httpClient": {"timeout": "30s", "metrics": {"enabled": false},
"logger": {"mode": "Failed", "slowRequestThreshold": "2s"}}}`,
			wantCfg: Config{
				Timeout: 30 * time.Second,
				Logger:  LoggerConfig{Enabled: true, Mode: LoggingModeFailed, SlowRequestThreshold: 2 * time.Second},
			},
		},
		{
			name:    "logger disabled",
			cfgData: `{"httpClient": {"logger": {"enabled": false, "mode": "unknown"}}}`,
			wantCfg: Config{Timeout: DefaultClientWaitTimeout, Metrics: MetricsConfig{Enabled: true}},
		},
		{
			name:    "negative timeout",
			cfgData: `{"httpClient": {"timeout": "-1s"}}`,
			wantErr: "httpClient.timeout: can not be negative",
		},
		{
			name:    "unknown logging mode",
			cfgData: `{"httpClient": {"logger": {"mode": "some"}}}`,
			wantErr: `httpClient.logger.mode: unknown value "some", should be one of [none all failed]`,
		},
		{
			name:    "negative slow request threshold",
			cfgData: `{"httpClient": {"logger": {"slowRequestThreshold": "-1s"}}}`,
			wantErr: "httpClient.logger.slowRequestThreshold: can not be negative",
		},
	}
	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfigWithKeyPrefix("httpClient")
			err := config.NewLoader(config.NewViperAdapter()).LoadFromReader(
				bytes.NewBufferString(tt.cfgData), config.DataTypeJSON, cfg)
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.wantCfg.keyPrefix = "httpClient"
			require.Equal(t, tt.wantCfg, *cfg)
		})
	}
}
