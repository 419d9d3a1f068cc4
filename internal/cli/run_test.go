package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCommand_Baseline(t *testing.T) {
	out, err := execute(t, "run", "--mode", "baseline", "--agents", "6", "--rounds", "20", "--seed", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "converged")
	assert.Contains(t, out, "synced")
}

func TestRunCommand_Plot(t *testing.T) {
	out, err := execute(t, "run", "--mode", "baseline", "--agents", "6", "--rounds", "10", "--seed", "3", "--plot")
	require.NoError(t, err)
	assert.Contains(t, out, "stddev_hz")
	assert.Contains(t, out, "#")
}

func TestRunCommand_DirTransport(t *testing.T) {
	out, err := execute(t, "run",
		"--mode", "audio", "--agents", "4", "--rounds", "3", "--seed", "3",
		"--transport", "dir", "--dir", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "synced")
}

func TestRunCommand_InvalidMode(t *testing.T) {
	_, err := execute(t, "run", "--mode", "clairvoyance")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRunCommand_InvalidAgentCount(t *testing.T) {
	_, err := execute(t, "run", "--mode", "baseline", "--agents", "1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRunCommand_ZeroAgents(t *testing.T) {
	// Non-positive agent counts are fatal, never silently defaulted.
	_, err := execute(t, "run", "--mode", "baseline", "--agents", "0")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRunCommand_ZeroCoupling(t *testing.T) {
	_, err := execute(t, "run", "--mode", "baseline", "--coupling", "0")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRunCommand_DirTransportRequiresDir(t *testing.T) {
	_, err := execute(t, "run", "--mode", "audio", "--transport", "dir")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRunCommand_UnknownTransport(t *testing.T) {
	_, err := execute(t, "run", "--mode", "audio", "--transport", "pigeon")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRunAndTraceCommands(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")

	out, err := execute(t, "run", "--mode", "baseline", "--agents", "4", "--rounds", "5", "--seed", "3", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "recorded as run")

	out, err = execute(t, "trace", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "baseline")

	out, err = execute(t, "trace", "--db", db, "latest")
	require.NoError(t, err)
	assert.Contains(t, out, "round")
	assert.Contains(t, out, "synced")
}

func TestTraceCommand_UnknownRun(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	_, err := execute(t, "trace", "--db", db, "latest")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommand(t *testing.T) {
	out, err := execute(t, "test", "../harness/testdata/baseline_sync.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "PASS baseline-sync")
	assert.Contains(t, out, "1/1 scenarios passed")
}

func TestTestCommand_FailingScenario(t *testing.T) {
	// random-noise asserted to converge must fail with exit code 1.
	path := writeTempScenario(t, `
name: impossible
mode: random
agents: 10
rounds: 10
seed: 3
coupling: 0.3
expect:
  converged: true
`)
	_, err := execute(t, "test", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestTestCommand_InvalidScenario(t *testing.T) {
	path := writeTempScenario(t, "mode: baseline\n")
	_, err := execute(t, "test", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
