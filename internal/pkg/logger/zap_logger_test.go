package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger_Fields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewFromCore(core)

	log.Info("SuggestionService", "Suggestion generated", map[string]interface{}{
		"chat_key":  "c0ffee",
		"documents": 3,
	})
	log.Error("MLAPI", "Request failed", map[string]interface{}{"error": "timeout"})
	log.Debug("ContextStore", "Conversation created", nil)

	entries := logs.AllUntimed()
	require.Len(t, entries, 3)

	first := entries[0].ContextMap()
	assert.Equal(t, "SuggestionService", first["module"])
	assert.Equal(t, "c0ffee", first["chat_key"])
	assert.NotContains(t, first, "error_ref")

	second := entries[1].ContextMap()
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "timeout", second["error_ref"])

	assert.Equal(t, map[string]interface{}{}, entries[2].ContextMap()["details"])
}

func TestZapLogger_LevelFilter(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	log := NewFromCore(core)

	log.Debug("m", "dropped", nil)
	log.Info("m", "dropped", nil)
	log.Warn("m", "kept", nil)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "kept", logs.All()[0].Message)
}
