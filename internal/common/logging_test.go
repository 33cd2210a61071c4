package common

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLoggerTo(t *testing.T) {
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	})

	var buf bytes.Buffer
	SetupLoggerTo(&buf, "warn", LogFormatJSON)
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	log.Info().Msg("hidden")
	log.Warn().Str("k", "v").Msg("shown")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "shown", entry["message"])
	assert.Equal(t, "v", entry["k"])
	assert.Equal(t, "warn", entry["level"])
}

func TestSetupLoggerTo_Fallbacks(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	var buf bytes.Buffer
	SetupLoggerTo(&buf, "chatty", LogFormatConsole)
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	log.Info().Msg("hello console")
	assert.Contains(t, buf.String(), "hello console")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}
