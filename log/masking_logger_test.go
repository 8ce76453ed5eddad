/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package log_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/acronis/go-crptapi/log"
	"github.com/acronis/go-crptapi/log/logtest"
)

func TestMaskingLogger(t *testing.T) {
	recorder := logtest.NewRecorder()
	logger := log.NewMaskingLogger(recorder, log.NewMasker(log.DefaultMasks))

	logger.With(log.String("header", "Bearer secret1")).Info("request failed",
		log.String("auth", "Authorization: Bearer secret2"),
		log.Error(errors.New(`dial: "Bearer secret3" refused`)),
		log.Int("status", 401),
	)
	logger.Errorf("send with Bearer %s", "secret4")
	logger.AtLevel(log.LevelWarn, func(logFunc log.LogFunc) {
		logFunc("warn Bearer secret5")
	})

	entries := recorder.Entries()
	require.Len(t, entries, 3)

	require.Equal(t, "request failed", entries[0].Text)
	headerField, ok := entries[0].FindField("header")
	require.True(t, ok)
	require.Equal(t, "Bearer ***", string(headerField.Bytes))
	authField, ok := entries[0].FindField("auth")
	require.True(t, ok)
	require.Equal(t, "Authorization: ***", string(authField.Bytes))
	errField, ok := entries[0].FindField("error")
	require.True(t, ok)
	require.EqualError(t, errField.Any.(error), `dial: "Bearer ***" refused`)
	statusField, ok := entries[0].FindField("status")
	require.True(t, ok)
	require.EqualValues(t, 401, statusField.Int)

	require.Equal(t, "send with Bearer ***", entries[1].Text)
	require.Equal(t, log.LevelError, entries[1].Level)
	require.Equal(t, "warn Bearer ***", entries[2].Text)
	require.Equal(t, log.LevelWarn, entries[2].Level)
}
