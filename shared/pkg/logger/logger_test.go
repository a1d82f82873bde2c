package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriterAddsServiceField(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "storefront-api", "debug")

	log.Debug().Str("route", "/health").Msg("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "storefront-api", line["service"])
	assert.Equal(t, "debug", line["level"])
	assert.Equal(t, "hello", line["message"])
	assert.Contains(t, line, "time")
}

func TestNewWithWriterFallsBackToInfo(t *testing.T) {
	for _, lvl := range []string{"", "nonsense"} {
		var buf bytes.Buffer
		log := NewWithWriter(&buf, "svc", lvl)

		log.Debug().Msg("hidden")
		assert.Empty(t, buf.String(), "level %q", lvl)

		log.Info().Msg("shown")
		assert.NotEmpty(t, buf.String(), "level %q", lvl)
	}
}

func TestNewWithWriterIsCaseInsensitive(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "svc", "WARN")

	log.Info().Msg("hidden")
	assert.Empty(t, buf.String())
	log.Warn().Msg("shown")
	assert.NotEmpty(t, buf.String())
}
