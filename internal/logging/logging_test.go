package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_WritesRotatingFile(t *testing.T) {
	dir := t.TempDir()
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	require.NoError(t, Init(dir, true))
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	log.Info().Str("component", "test").Msg("hello")

	data, err := os.ReadFile(filepath.Join(dir, "rayenna-crm.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"component":"test"`)
	assert.Contains(t, string(data), `"message":"hello"`)
}

func TestInit_StderrOnly(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })
	require.NoError(t, Init("", false))
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
