package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("warn", FormatConsole, &buf)
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("skipping class template", zap.String("class", "Box"))
	require.NoError(t, log.Sync())

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "skipping class template")
	assert.Contains(t, out, `"class": "Box"`)
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("debug", FormatJSON, &buf)
	require.NoError(t, err)

	log.Debug("wrote bridge", zap.String("output", "/out/a_bridge.h"))
	require.NoError(t, log.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "wrote bridge", entry["msg"])
	assert.Equal(t, "/out/a_bridge.h", entry["output"])
}

func TestNewInvalid(t *testing.T) {
	_, err := New("loud", FormatConsole, &bytes.Buffer{})
	assert.ErrorContains(t, err, "invalid log level")

	_, err = New("info", "xml", &bytes.Buffer{})
	assert.ErrorContains(t, err, "unknown log format")
}
