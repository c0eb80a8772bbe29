package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestNewDefaults(t *testing.T) {
	l, err := New(Config{})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestFromContext(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	base := zap.New(core)

	ctx := ContextWithRun(context.Background(), "run-1", "json", "csv")
	FromContext(ctx, base).Info("done")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "run-1", fields["run_id"])
	assert.Equal(t, "json", fields["source"])
	assert.Equal(t, "csv", fields["destination"])
}

func TestFromContextSkipsEmptyValues(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	FromContext(ContextWithRun(context.Background(), "", "json", ""), zap.New(core)).Info("x")

	fields := logs.All()[0].ContextMap()
	assert.NotContains(t, fields, "run_id")
	assert.NotContains(t, fields, "destination")
	assert.Equal(t, "json", fields["source"])
}

func TestSetAndGet(t *testing.T) {
	prev := Get()
	defer Set(prev)

	core, logs := observer.New(zapcore.InfoLevel)
	Set(zap.New(core))
	Info("hello", zap.Int("rows", 3))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "hello", logs.All()[0].Message)
}
