// asyncserver - Single-Connection Async Request/Response Server Framework
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/asyncserver

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlogHandlerEnabledTracksZerologLevel(t *testing.T) {
	cases := []struct {
		name    string
		zLevel  zerolog.Level
		sLevel  slog.Level
		enabled bool
	}{
		{"debug logger enables debug", zerolog.DebugLevel, slog.LevelDebug, true},
		{"info logger disables debug", zerolog.InfoLevel, slog.LevelDebug, false},
		{"info logger enables warn", zerolog.InfoLevel, slog.LevelWarn, true},
		{"error logger disables warn", zerolog.ErrorLevel, slog.LevelWarn, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewSlogHandlerWithLogger(zerolog.New(nil).Level(tc.zLevel))
			assert.Equal(t, tc.enabled, handler.Enabled(context.Background(), tc.sLevel))
		})
	}
}

func TestSlogHandlerHandleWritesThroughZerolog(t *testing.T) {
	var buf bytes.Buffer
	handler := NewSlogHandlerWithLogger(zerolog.New(&buf).Level(zerolog.TraceLevel))

	record := slog.NewRecord(time.Now(), slog.LevelWarn, "disk nearly full", 0)
	record.AddAttrs(slog.String("volume", "/data"), slog.Int("percent_used", 91))

	require.NoError(t, handler.Handle(context.Background(), record))

	out := buf.String()
	assert.Contains(t, out, "disk nearly full")
	assert.Contains(t, out, "warn")
	assert.Contains(t, out, "volume")
	assert.Contains(t, out, "/data")
	assert.Contains(t, out, "percent_used")
}

func TestSlogHandlerWithAttrsDoesNotMutateReceiver(t *testing.T) {
	base := NewSlogHandler()
	withAttrs := base.WithAttrs([]slog.Attr{slog.String("k", "v")}).(*SlogHandler)

	assert.Empty(t, base.attrs)
	assert.Len(t, withAttrs.attrs, 1)
}

func TestSlogHandlerWithGroupPrefixesKeys(t *testing.T) {
	var buf bytes.Buffer
	handler := NewSlogHandlerWithLogger(zerolog.New(&buf).Level(zerolog.TraceLevel))

	grouped := handler.WithGroup("request")
	slog.New(grouped).Info("handled", "status", 200)

	assert.Contains(t, buf.String(), "request.status")
}

func TestSlogHandlerWithEmptyGroupReturnsSameHandler(t *testing.T) {
	handler := NewSlogHandler()
	assert.Same(t, handler, handler.WithGroup(""))
}

func TestSlogToZerologLevelMapsBoundaries(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, slogToZerologLevel(slog.LevelDebug))
	assert.Equal(t, zerolog.InfoLevel, slogToZerologLevel(slog.LevelInfo))
	assert.Equal(t, zerolog.WarnLevel, slogToZerologLevel(slog.LevelWarn))
	assert.Equal(t, zerolog.ErrorLevel, slogToZerologLevel(slog.LevelError))
	assert.Equal(t, zerolog.TraceLevel, slogToZerologLevel(slog.Level(-8)))
}

func TestNewSlogLoggerWritesToGlobalLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf).Level(zerolog.TraceLevel))
	t.Cleanup(func() { SetLogger(zerolog.New(nil)) })

	NewSlogLogger().Info("from slog bridge")
	assert.Contains(t, buf.String(), "from slog bridge")
}

func TestNewSlogLoggerWithLevelGatesBelowWarn(t *testing.T) {
	SetLogger(zerolog.New(nil))
	t.Cleanup(func() { SetLogger(zerolog.New(nil)) })

	logger := NewSlogLoggerWithLevel("warn")
	assert.False(t, logger.Handler().Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, logger.Handler().Enabled(context.Background(), slog.LevelWarn))
}
