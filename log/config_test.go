/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package log

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/acronis/go-crptapi/config"
)

func TestConfig(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		cfg := NewConfig()
		err := config.NewLoader(config.NewViperAdapter()).LoadFromReader(bytes.NewBufferString(`{}`), config.DataTypeJSON, cfg)
		require.NoError(t, err)
		require.Equal(t, LevelInfo, cfg.Level)
		require.Equal(t, FormatJSON, cfg.Format)
		require.Equal(t, OutputStdout, cfg.Output)
		require.Equal(t, config.BytesCount(DefaultFileRotationMaxSizeBytes), cfg.File.Rotation.MaxSize)
		require.Equal(t, DefaultFileRotationMaxBackups, cfg.File.Rotation.MaxBackups)
		require.True(t, cfg.Masking.Enabled)
		require.True(t, cfg.Masking.UseDefaultRules)
	})

	t.Run("custom values", func(t *testing.T) {
		yamlData := `
log:
  level: DEBUG
  format: text
  output: file
  nocolor: true
  addCaller: true
  file:
    path: /var/log/crpt-{{pid}}.log
    rotation:
      compress: true
      maxSize: 10M
      maxBackups: 3
      maxAgeDays: 7
  masking:
    enabled: true
    useDefaultRules: false
    rules:
      - field: inn
        masks:
          - regexp: "inn=\\d+"
            mask: "inn=***"
`
		cfg := NewConfig()
		err := config.NewLoader(config.NewViperAdapter()).LoadFromReader(bytes.NewBufferString(yamlData), config.DataTypeYAML, cfg)
		require.NoError(t, err)
		require.Equal(t, LevelDebug, cfg.Level)
		require.Equal(t, FormatText, cfg.Format)
		require.Equal(t, OutputFile, cfg.Output)
		require.True(t, cfg.NoColor)
		require.True(t, cfg.AddCaller)
		require.Equal(t, "/var/log/crpt-{{pid}}.log", cfg.File.Path)
		require.Equal(t, FileRotationConfig{Compress: true, MaxSize: 10 * 1024 * 1024, MaxBackups: 3, MaxAgeDays: 7}, cfg.File.Rotation)
		require.False(t, cfg.Masking.UseDefaultRules)
		require.Equal(t, []MaskingRuleConfig{{Field: "inn", Masks: []MaskConfig{{RegExp: `inn=\d+`, Mask: "inn=***"}}}}, cfg.Masking.Rules)
	})

	tests := []struct {
		Name       string
		Data       string
		WantErrMsg string
	}{
		{
			Name:       "unknown level",
			Data:       `{"log":{"level":"trace"}}`,
			WantErrMsg: `log.level: unknown value "trace", should be one of [error warn info debug]`,
		},
		{
			Name:       "file output without path",
			Data:       `{"log":{"output":"file"}}`,
			WantErrMsg: `log.file.path: cannot be empty when "file" output is used`,
		},
		{
			Name:       "too small rotation size",
			Data:       `{"log":{"file":{"rotation":{"maxSize":"512K"}}}}`,
			WantErrMsg: "log.file.rotation.maxSize: should be >= 1M",
		},
		{
			Name:       "negative max age",
			Data:       `{"log":{"file":{"rotation":{"maxAgeDays":-1}}}}`,
			WantErrMsg: "log.file.rotation.maxAgeDays: should be >= 0",
		},
	}
	for i := range tests {
		tt := tests[i]
		t.Run(tt.Name, func(t *testing.T) {
			cfg := NewConfig()
			err := config.NewLoader(config.NewViperAdapter()).LoadFromReader(bytes.NewBufferString(tt.Data), config.DataTypeJSON, cfg)
			require.EqualError(t, err, tt.WantErrMsg)
		})
	}
}
