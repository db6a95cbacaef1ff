package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-core/pkg/logger"
)

func TestNew_JSONConComponente(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "info", Output: &buf}).Named("audit")

	log.Debug().Msg("no aparece")
	log.Warn().Str("entity_id", "e1").Msg("no se pudo registrar auditoría")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1, "debug queda filtrado en nivel info")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "audit", entry["component"])
	assert.Equal(t, "e1", entry["entity_id"])
	assert.Contains(t, entry, "time")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, logger.ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.ErrorLevel, logger.ParseLevel(" error "))
	assert.Equal(t, zerolog.InfoLevel, logger.ParseLevel("verbose"))
	assert.Equal(t, zerolog.InfoLevel, logger.ParseLevel(""))
}
