package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf)

	log.Info().Str("month_key", "2024-03").Msg("Month uploaded")

	var entry map[string]any
	if assert.NoError(t, json.Unmarshal(buf.Bytes(), &entry)) {
		assert.Equal(t, "info", entry["level"])
		assert.Equal(t, "2024-03", entry["month_key"])
		assert.Equal(t, "Month uploaded", entry["message"])
		assert.Contains(t, entry, "time")
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" WARN "))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("loud"))
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf).With().Str("request_id", "abc").Logger()

	ctx := WithContext(context.Background(), log)
	requestLog := FromContext(ctx)
	requestLog.Info().Msg("hello")

	assert.Contains(t, buf.String(), `"request_id":"abc"`)
}

func TestFromContextWithoutLogger(t *testing.T) {
	log := FromContext(context.Background())

	assert.Equal(t, zerolog.Disabled, log.GetLevel())
}
