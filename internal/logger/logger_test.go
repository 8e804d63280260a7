package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"household-planner/internal/config"
)

func TestLevels(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, NewWithWriter(config.EnvProd, &bytes.Buffer{}).GetLevel())
	assert.Equal(t, zerolog.DebugLevel, NewWithWriter(config.EnvDev, &bytes.Buffer{}).GetLevel())
	assert.Equal(t, zerolog.TraceLevel, NewWithWriter(config.EnvLocal, &bytes.Buffer{}).GetLevel())
	assert.Equal(t, zerolog.InfoLevel, NewWithWriter("staging", &bytes.Buffer{}).GetLevel())
}

func TestJSONFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(config.EnvProd, &buf)

	log.Debug().Msg("hidden")
	log.Info().Str("member", "Veer").Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "Veer", entry["member"])
	assert.Contains(t, entry, "timestamp")
	assert.Contains(t, entry, "pid")
	assert.Contains(t, entry, "caller")
}
