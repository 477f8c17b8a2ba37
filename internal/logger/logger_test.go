package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSanitizeKVs(t *testing.T) {
	got := sanitizeKVs([]any{"topic", "fractions", "openai_api_key", "sk-123", "dangling"})
	assert.Equal(t, []any{"topic", "fractions", "openai_api_key", "[REDACTED]", "dangling"}, got)
}

func TestLogger_WritesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.With("topic", "fractions").Warn("quiz short", "accepted", 2, "auth_token", "abc")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "quiz short", entry.Message)
	fields := entry.ContextMap()
	assert.Equal(t, "fractions", fields["topic"])
	assert.EqualValues(t, 2, fields["accepted"])
	assert.Equal(t, "[REDACTED]", fields["auth_token"])
}

func TestNew(t *testing.T) {
	l, err := New("dev", "debug")
	require.NoError(t, err)
	l.Debug("hello")

	_, err = New("prod", "loud")
	assert.Error(t, err)
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	l := Nop()
	assert.Same(t, l, OrNop(l))
}
