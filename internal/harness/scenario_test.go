package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario("testdata/baseline_sync.yaml")
	require.NoError(t, err)

	assert.Equal(t, "baseline-sync", s.Name)
	assert.Equal(t, "baseline", s.Mode)
	assert.Equal(t, 10, s.Agents)
	require.NotNil(t, s.Expect.Converged)
	assert.True(t, *s.Expect.Converged)
	require.NotNil(t, s.Expect.MinSyncedRatio)
	assert.Equal(t, 0.95, *s.Expect.MinSyncedRatio)
}

func TestLoadScenario_RejectsUnknownFields(t *testing.T) {
	path := writeScenario(t, `
name: typo
mode: baseline
expectations:
  converged: true
`)
	_, err := LoadScenario(path)
	assert.Error(t, err, "a misspelled field must not silently drop an expectation")
}

func TestLoadScenario_RequiresName(t *testing.T) {
	path := writeScenario(t, "mode: baseline\n")
	_, err := LoadScenario(path)
	assert.ErrorContains(t, err, "name")
}

func TestLoadScenario_RejectsUnknownMode(t *testing.T) {
	path := writeScenario(t, "name: x\nmode: psychic\n")
	_, err := LoadScenario(path)
	assert.ErrorContains(t, err, "psychic")
}

func TestLoadScenario_RejectsSingleAgent(t *testing.T) {
	path := writeScenario(t, "name: x\nmode: baseline\nagents: 1\n")
	_, err := LoadScenario(path)
	assert.ErrorContains(t, err, "agents")
}

func TestLoadScenario_RejectsZeroAgents(t *testing.T) {
	// An explicit zero never means "use the default".
	path := writeScenario(t, "name: x\nmode: baseline\nagents: 0\ncoupling: 0.3\n")
	_, err := LoadScenario(path)
	assert.ErrorContains(t, err, "agents")
}

func TestLoadScenario_RequiresCoupling(t *testing.T) {
	path := writeScenario(t, "name: x\nmode: baseline\nagents: 4\n")
	_, err := LoadScenario(path)
	assert.ErrorContains(t, err, "coupling")
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
