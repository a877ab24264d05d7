package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "omconv.log")

	logger, err := Build(Config{Level: "debug", Format: "json", Output: path})
	require.NoError(t, err)

	logger.Named("unit").Debug("unit registered")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"unit registered"`)
	assert.Contains(t, string(data), `"logger":"unit"`)
}

func TestNamedFallsBackToNop(t *testing.T) {
	saved := Logger
	defer func() { Logger = saved }()

	Logger = nil
	assert.NotNil(t, Named("scale"))
}

func TestVerbose(t *testing.T) {
	cfg := DefaultConfig()
	verbose := cfg.Verbose()

	assert.Equal(t, "debug", verbose.Level)
	assert.Equal(t, "warn", cfg.Level)
	assert.Equal(t, cfg.Output, verbose.Output)
}
