// SPDX-License-Identifier: MIT

package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconfigure_WritesComponentAndService(t *testing.T) {
	var buf bytes.Buffer
	Reconfigure(Config{Level: "debug", Output: &buf, Service: "vortex-test"})

	l := WithComponent("structurate")
	l.Info().Str(FieldEvent, "test.event").Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "vortex-test", entry[FieldService])
	assert.Equal(t, "structurate", entry[FieldComponent])
	assert.Equal(t, "test.event", entry[FieldEvent])
	assert.Equal(t, "hello", entry["message"])
}

func TestReconfigure_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	Reconfigure(Config{Level: "warn", Output: &buf})

	l := Base()
	l.Info().Msg("dropped")
	assert.Zero(t, buf.Len())

	l.Warn().Msg("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestConfigure_IgnoredAfterFirstCall(t *testing.T) {
	var first, second bytes.Buffer
	Reconfigure(Config{Output: &first})
	Configure(Config{Output: &second})

	l := Base()
	l.Info().Msg("routed")
	assert.Contains(t, first.String(), "routed")
	assert.Zero(t, second.Len())
}

func TestDerive_AttachesFields(t *testing.T) {
	var buf bytes.Buffer
	Reconfigure(Config{Output: &buf})

	l := Derive(nil)
	l.Info().Msg("plain")
	assert.Contains(t, buf.String(), "plain")

	buf.Reset()
	l = Derive(func(c *zerolog.Context) { *c = c.Str(FieldPath, "/tmp/x.yaml") })
	l.Info().Msg("with path")
	assert.Contains(t, buf.String(), `"path":"/tmp/x.yaml"`)
}
