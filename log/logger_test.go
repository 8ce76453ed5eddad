/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package log

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewLogger_FileOutput(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "crpt.log")
	cfg := &Config{
		Level:  LevelInfo,
		Format: FormatJSON,
		Output: OutputFile,
		File: FileOutputConfig{
			Path:     logPath,
			Rotation: FileRotationConfig{MaxSize: DefaultFileRotationMaxSizeBytes, MaxBackups: 1},
		},
		Masking: MaskingConfig{Enabled: true, UseDefaultRules: true},
	}

	logger, closeFunc := NewLogger(cfg)
	logger.Debug("hidden debug message")
	logger.With(String("doc_id", "42")).Info("document submitted", Int("status", 200))
	logger.Error("send failed", Error(errors.New("header Bearer topsecret rejected")))
	closeFunc()

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var first map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.Equal(t, "document submitted", first["msg"])
	require.Equal(t, "42", first["doc_id"])
	require.EqualValues(t, 200, first["status"])
	require.EqualValues(t, os.Getpid(), first["pid"])

	require.Contains(t, lines[1], "header Bearer *** rejected")
	require.NotContains(t, lines[1], "topsecret")
}

func TestDurationIn(t *testing.T) {
	field := DurationIn(1500*time.Millisecond, time.Millisecond)
	require.Equal(t, "duration", field.Key)
	require.EqualValues(t, 1500, field.Int)
}

func TestResolvePlaceholders(t *testing.T) {
	got := resolvePlaceholders("/tmp/crpt-{{pid}}.log")
	require.Equal(t, "/tmp/crpt-"+strconv.Itoa(os.Getpid())+".log", got)
}
