package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSanitizeKVs_RedactsCredentials(t *testing.T) {
	got := sanitizeKVs([]interface{}{"model", "qwen3", "api_key", "sk-123", "AuthToken", "x", "dangling"})
	assert.Equal(t, []interface{}{"model", "qwen3", "api_key", "[REDACTED]", "AuthToken", "[REDACTED]", "dangling"}, got)
}

func TestLogger_WritesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.With("doc_id", "handbook").Info("chunked", "segments", 12, "openai_api_key", "secret")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "handbook", fields["doc_id"])
	assert.EqualValues(t, 12, fields["segments"])
	assert.Equal(t, "[REDACTED]", fields["openai_api_key"])
}

func TestNew_Modes(t *testing.T) {
	for _, mode := range []string{"", "dev", "debug", "prod"} {
		l, err := New(mode)
		require.NoError(t, err, mode)
		l.Debug("probe")
	}
	NewNop().Info("discarded")
}
