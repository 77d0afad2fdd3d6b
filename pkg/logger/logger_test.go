package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailm/retailm-api/pkg/logger"
)

// El nombre del servicio configurado aparece como campo fijo en cada línea.
func TestNew_CampoService(t *testing.T) {
	l := logger.New(logger.Config{Env: "production", Level: "info", Service: "retailm-api"})

	var buf bytes.Buffer
	zl := l.Zerolog().Output(&buf)
	zl.Info().Str("evento", "arranque").Msg("hola")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "retailm-api", record["service"])
	assert.Equal(t, "arranque", record["evento"])
}

// Sin servicio configurado no se agrega el campo.
func TestNew_SinService(t *testing.T) {
	l := logger.New(logger.Config{Env: "production", Level: "info"})

	var buf bytes.Buffer
	zl := l.Zerolog().Output(&buf)
	zl.Info().Msg("hola")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	_, ok := record["service"]
	assert.False(t, ok)
}

// El nivel configurado se respeta; desconocido cae a info.
func TestNew_Niveles(t *testing.T) {
	assert.Equal(t, zerolog.WarnLevel, logger.New(logger.Config{Level: "warn"}).Zerolog().GetLevel())
	assert.Equal(t, zerolog.InfoLevel, logger.New(logger.Config{Level: "cualquiera"}).Zerolog().GetLevel())
}
