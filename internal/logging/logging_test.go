package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupJSON(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	setup(&buf, false, false)
	log.Debug().Msg("hidden")
	log.Info().Int("trials", 3).Msg("shown")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["message"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, 3.0, entry["trials"])
}

func TestSetupDebugPretty(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	setup(&buf, true, true)
	log.Debug().Msg("details")
	assert.Contains(t, buf.String(), "details")

	Quiet()
	buf.Reset()
	log.Info().Msg("dropped")
	assert.Empty(t, buf.String())
}
