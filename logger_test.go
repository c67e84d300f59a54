package jwtauth

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/rs/zerolog"
	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var _ Logger = (*slog.Logger)(nil)

func TestZapLogger(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	logger := NewZapLogger(zap.New(core).Sugar())

	logger.Debug("debug message", "key", "value")
	assert.Equal(t, 0, recorded.Len(), "Debug message should not be recorded at Info level")

	logger.Info("info message", "key", "value")
	logger.Warn("warn message", "code", "token_rejected")
	logger.Error("error message", "error", errors.New("boom"))
	require.Equal(t, 3, recorded.Len())

	entries := recorded.All()
	assert.Equal(t, "info message", entries[0].Message)
	assert.Equal(t, map[string]any{"key": "value"}, entries[0].ContextMap())
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "token_rejected", entries[1].ContextMap()["code"])
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, "boom", entries[2].ContextMap()["error"])
}

func TestZerologLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(zerolog.New(&buf).Level(zerolog.InfoLevel))

	logger.Debug("debug message", "key", "value")
	assert.Empty(t, buf.String())

	logger.Warn("warn message", "code", "token_rejected", "attempts", 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "warn message", entry["message"])
	assert.Equal(t, "token_rejected", entry["code"])
	assert.Equal(t, float64(2), entry["attempts"])
}

func TestLogrusLogger(t *testing.T) {
	base, hook := logrustest.NewNullLogger()
	base.SetLevel(logrus.InfoLevel)
	logger := NewLogrusLogger(base)

	logger.Debug("debug message")
	assert.Empty(t, hook.AllEntries())

	logger.Info("info message", "jwks_url", "https://tenant.example.com/.well-known/jwks.json")
	logger.Error("error message", "error", "boom")

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, logrus.InfoLevel, entries[0].Level)
	assert.Equal(t, "info message", entries[0].Message)
	assert.Equal(t, "https://tenant.example.com/.well-known/jwks.json", entries[0].Data["jwks_url"])
	assert.Equal(t, logrus.ErrorLevel, entries[1].Level)
	assert.Equal(t, "boom", entries[1].Data["error"])
}

func TestFields(t *testing.T) {
	assert.Equal(t, map[string]any{}, fields(nil))
	assert.Equal(t, map[string]any{"a": 1, "b": "two"}, fields([]any{"a", 1, "b", "two"}))
	assert.Equal(t, map[string]any{"a": 1, "dangling": "!MISSING"}, fields([]any{"a", 1, "dangling"}))
	assert.Equal(t, map[string]any{"42": true}, fields([]any{42, true}))
}
