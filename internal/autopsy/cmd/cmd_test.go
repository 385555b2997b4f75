package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laptudirm.com/x/autopsy/pkg/analysis"
	"laptudirm.com/x/autopsy/pkg/game"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  cmd: /nonexistent/stockfish\n"), 0644))

	var out bytes.Buffer
	root := Root()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", path}, args...))

	err := root.Execute()
	return out.String(), err
}

func TestConfigCommand(t *testing.T) {
	out, err := run(t, "config")
	require.NoError(t, err)

	assert.Contains(t, out, "cmd: /nonexistent/stockfish")
	assert.Contains(t, out, "mode: stability")
	assert.Contains(t, out, "top: 20")
}

func TestAnalyzeWithoutEngine(t *testing.T) {
	_, err := run(t, "analyze")
	assert.ErrorIs(t, err, analysis.ErrOracleUnavailable)
}

func TestAnalyzeInvalidMode(t *testing.T) {
	_, err := run(t, "analyze", "--mode", "forever")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, analysis.ErrOracleUnavailable)
}

func TestDeepBeyondGame(t *testing.T) {
	_, err := run(t, "deep", "--move", "29")
	assert.ErrorIs(t, err, game.ErrBeyondGame)

	_, err = run(t, "deep", "--move", "3", "--color", "red")
	assert.ErrorIs(t, err, game.ErrInvalidColor)
}

func TestDeepRequiresMove(t *testing.T) {
	_, err := run(t, "deep")
	assert.Error(t, err)
}

func TestDeepWithoutEngine(t *testing.T) {
	_, err := run(t, "deep", "--move", "14", "--color", "black")
	assert.ErrorIs(t, err, analysis.ErrOracleUnavailable)
}
