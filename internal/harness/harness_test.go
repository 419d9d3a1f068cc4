package harness

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Every shipped scenario must hold: these are the experimental claims.
func TestRun_ShippedScenarios(t *testing.T) {
	files, err := filepath.Glob("testdata/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			scenario, err := LoadScenario(file)
			require.NoError(t, err)

			res, err := Run(context.Background(), scenario, testLogger())
			require.NoError(t, err)
			assert.True(t, res.Passed(), "failures: %v", res.Failures)
		})
	}
}

func TestRun_ReportsViolatedExpectations(t *testing.T) {
	scenario, err := LoadScenario("testdata/random_noise.yaml")
	require.NoError(t, err)

	// Invert the claim: random noise asserted to converge must fail.
	converged := true
	ratio := 0.95
	scenario.Expect = Expectations{
		Converged:      &converged,
		MinSyncedRatio: &ratio,
	}

	res, err := Run(context.Background(), scenario, testLogger())
	require.NoError(t, err)
	assert.False(t, res.Passed())
	assert.Len(t, res.Failures, 2)
}

func TestRun_PropagatesConfigErrors(t *testing.T) {
	scenario := &Scenario{Name: "bad", Mode: "baseline", Agents: 4, Coupling: 2.0}
	_, err := Run(context.Background(), scenario, testLogger())
	assert.Error(t, err)
}
