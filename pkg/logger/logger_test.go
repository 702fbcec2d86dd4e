package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamed_AnidaComponentes(t *testing.T) {
	var buf bytes.Buffer
	root := New(Config{Env: "production", Level: "debug", App: "almacen-faceid", Out: &buf})

	access := root.Named("http").Named("access")
	assert.Equal(t, "http.access", access.Component())
	access.Info().Int("status", 201).Msg("petición")

	line := buf.String()
	assert.Equal(t, 1, strings.Count(line, `"component"`), "el campo no se repite al anidar")

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "http.access", entry["component"])
	assert.Equal(t, "almacen-faceid", entry["app"])
	assert.Equal(t, "info", entry["level"])
	assert.EqualValues(t, 201, entry["status"])
}

func TestNew_RespetaNivel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Env: "production", Level: "warn", Out: &buf})
	l.Info().Msg("descartado")
	assert.Zero(t, buf.Len())
	l.Warn().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"", zerolog.InfoLevel},
		{"debug", zerolog.DebugLevel},
		{"error", zerolog.ErrorLevel},
		{"ruido", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLevel(tt.in), tt.in)
	}
}
