/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package metricsserver

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/acronis/go-crptapi/config"
)

func TestConfig(t *testing.T) {
	tests := []struct {
		name      string
		keyPrefix string
		data      string
		want      Config
		wantErr   string
	}{
		{
			name: "defaults",
			want: Config{Enabled: true, Address: DefaultAddress, keyPrefix: cfgDefaultKeyPrefix},
		},
		{
			name: "custom",
			data: "metrics:\n  address: 127.0.0.1:9100\n",
			want: Config{Enabled: true, Address: "127.0.0.1:9100", keyPrefix: cfgDefaultKeyPrefix},
		},
		{
			name:      "custom key prefix",
			keyPrefix: "prometheus",
			data:      "prometheus:\n  enabled: false\n",
			want:      Config{Enabled: false, Address: DefaultAddress, keyPrefix: "prometheus"},
		},
		{
			name:    "empty address",
			data:    "metrics:\n  address: \"\"\n",
			wantErr: "metrics.address: cannot be empty",
		},
	}
	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			if tt.keyPrefix != "" {
				cfg = NewConfigWithKeyPrefix(tt.keyPrefix)
			}
			err := config.NewLoader(config.NewViperAdapter()).LoadFromReader(
				bytes.NewBufferString(tt.data), config.DataTypeYAML, cfg)
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, *cfg)
		})
	}
}
