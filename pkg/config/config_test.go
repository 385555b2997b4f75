package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laptudirm.com/x/autopsy/pkg/analysis"
)

func write(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestDefault(t *testing.T) {
	config := Default()
	require.NoError(t, config.Validate())

	assert.Equal(t, analysis.DefaultSettings(), config.Analysis)
	assert.Equal(t, "stockfish", config.Engine.Cmd)
	assert.Equal(t, map[string]string{"Hash": "8192", "Threads": "4"}, config.Engine.Options)
	assert.Equal(t, 20, config.Report.Top)
	assert.False(t, config.Report.Debug)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := write(t, `
engine:
  cmd: /usr/local/bin/stockfish
analysis:
  mode: time
  deep-time: 3s
report:
  top: 5
`)

	config, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/usr/local/bin/stockfish", config.Engine.Cmd)
	assert.Equal(t, analysis.ModeTime, config.Analysis.Mode)
	assert.Equal(t, 3*time.Second, config.Analysis.DeepTime)
	assert.Equal(t, 5, config.Report.Top)

	// untouched values keep their defaults
	assert.Equal(t, 50, config.Analysis.QuickPly)
	assert.Equal(t, 100*time.Millisecond, config.Analysis.QuickTime)
	assert.Equal(t, "8192", config.Engine.Options["Hash"])
}

func TestLoadInvalid(t *testing.T) {
	for name, contents := range map[string]string{
		"mode":      "analysis:\n  mode: forever\n",
		"duration":  "analysis:\n  stability-period: 0s\n",
		"threshold": "analysis:\n  decided-threshold: -2\n",
		"top":       "report:\n  top: -1\n",
		"syntax":    "analysis: [\n",
	} {
		_, err := Load(write(t, contents))
		assert.Error(t, err, name)
	}

	_, err := Load(write(t, "engine:\n  cmd: \"\"\n"))
	assert.ErrorIs(t, err, ErrNoEngine)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestString(t *testing.T) {
	dump := Default().String()
	assert.Contains(t, dump, "mode: stability")
	assert.Contains(t, dump, "deep-time: 11s")
	assert.Contains(t, dump, "cmd: stockfish")
}
