package logger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"socialid/internal/logger"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" WARN ":  zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"info":    zapcore.InfoLevel,
		"bogus":   zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, logger.ParseLevel(in), in)
	}
}

func TestFrom_FallsBackToGlobal(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger.Set(zap.New(core))

	logger.From(context.Background()).Info("global")
	logger.Named("registry").Info("named")

	entries := logs.All()
	assert.Len(t, entries, 2)
	assert.Equal(t, "registry", entries[1].LoggerName)
}

func TestFrom_UsesContextLogger(t *testing.T) {
	globalCore, globalLogs := observer.New(zapcore.InfoLevel)
	logger.Set(zap.New(globalCore))
	reqCore, reqLogs := observer.New(zapcore.InfoLevel)

	ctx := logger.ToContext(context.Background(), zap.New(reqCore).With(logger.RequestID("req-1")))
	logger.From(ctx).Info("scoped", logger.Provider("google"))

	assert.Equal(t, 0, globalLogs.Len())
	entries := reqLogs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, map[string]any{"request_id": "req-1", "provider": "google"}, entries[0].ContextMap())
}
