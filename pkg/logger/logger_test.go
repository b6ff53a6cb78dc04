package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/suministros-api/pkg/logger"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, logger.ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, logger.ParseLevel(" warn "))
	assert.Equal(t, zerolog.InfoLevel, logger.ParseLevel("verbose"))
	assert.Equal(t, zerolog.InfoLevel, logger.ParseLevel(""))
}

func TestComponent_WritesJSONFields(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Config{Env: "production", Level: "info", AppName: "suministros", Out: &buf})

	log := l.Component("importer")
	log.Info().Int("created", 3).Msg("importación terminada")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "importer", line["component"])
	assert.Equal(t, "suministros", line["app"])
	assert.Equal(t, float64(3), line["created"])
}

func TestComponent_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Config{Env: "production", Level: "warn", Out: &buf})

	l.Info().Msg("no debe salir")
	assert.Zero(t, buf.Len())
}
