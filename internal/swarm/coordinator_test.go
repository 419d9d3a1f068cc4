package swarm

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hexwarp/swl/internal/codec"
	"github.com/hexwarp/swl/internal/transport"
	"github.com/hexwarp/swl/internal/vocab"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(t *testing.T, mode Mode) Config {
	t.Helper()
	table, err := vocab.Load()
	require.NoError(t, err)
	return Config{
		Mode:     mode,
		Agents:   DefaultAgents,
		Seed:     7,
		Coupling: DefaultCoupling,
		Codec:    codec.New(table, codec.WithDuration(50*time.Millisecond)),
		Log:      testLogger(),
	}
}

func runSwarm(t *testing.T, cfg Config) *Result {
	t.Helper()
	co, err := New(cfg)
	require.NoError(t, err)
	res, err := co.Run(context.Background())
	require.NoError(t, err)
	return res
}

// Ten agents, frequencies seeded uniformly across the band, direct
// frequency reads, twenty rounds: the upper-bound control must fully
// synchronize.
func TestRun_BaselineConverges(t *testing.T) {
	res := runSwarm(t, testConfig(t, ModeBaseline))

	assert.True(t, res.Converged)
	assert.GreaterOrEqual(t, res.Final.Ratio(), 0.95)
	assert.Less(t, res.Final.StdDev, 100.0)
}

func TestRun_AudioConverges(t *testing.T) {
	cfg := testConfig(t, ModeAudio)
	cfg.Agents = 8
	cfg.Rounds = 30
	res := runSwarm(t, cfg)

	require.NotEmpty(t, res.History)
	first := res.History[0]
	assert.Less(t, res.Final.StdDev, first.StdDev/10,
		"coupling through the audio channel must still collapse the spread")
	assert.GreaterOrEqual(t, res.Final.Ratio(), 0.8)
}

func TestRun_ChordConverges(t *testing.T) {
	cfg := testConfig(t, ModeChord)
	cfg.Agents = 8
	cfg.Rounds = 30
	res := runSwarm(t, cfg)

	first := res.History[0]
	assert.Less(t, res.Final.StdDev, first.StdDev/10,
		"the status chord must not disturb the dominant frequency")
}

func TestRun_FMShrinksSpread(t *testing.T) {
	cfg := testConfig(t, ModeFM)
	cfg.Agents = 8
	cfg.Rounds = 20
	res := runSwarm(t, cfg)

	first := res.History[0]
	// FM demodulation carries a small per-sender bias, so the swarm
	// settles into a tight cluster rather than a point.
	assert.Less(t, res.Final.StdDev, first.StdDev/5)
	assert.Less(t, res.Final.StdDev, 2000.0)
}

// Uncorrelated random tones must not synchronize the swarm: the protocol
// does not trivially converge on noise.
func TestRun_RandomStaysUnsynced(t *testing.T) {
	res := runSwarm(t, testConfig(t, ModeRandom))

	assert.False(t, res.Converged)
	assert.Less(t, res.Final.Ratio(), 0.2)
	assert.Greater(t, res.Final.StdDev, 1000.0,
		"random tones keep the spread above any convergence floor")
}

// Silence decodes to frequency zero, so every agent contracts toward it.
// The swarm "converges" near zero: a degenerate sanity check, not a
// valid communication condition.
func TestRun_SilentContractsTowardZero(t *testing.T) {
	res := runSwarm(t, testConfig(t, ModeSilent))

	assert.True(t, res.Converged)
	assert.Less(t, res.Final.Mean, 500.0)
}

func TestRun_StdDevShrinksRoundOverRound(t *testing.T) {
	for _, mode := range []Mode{ModeBaseline, ModeAudio} {
		t.Run(mode.String(), func(t *testing.T) {
			cfg := testConfig(t, mode)
			cfg.Agents = 8
			res := runSwarm(t, cfg)

			grew := 0
			for i := 1; i < len(res.History); i++ {
				if res.History[i].StdDev > res.History[i-1].StdDev {
					grew++
				}
			}
			// Non-increasing in expectation: decode quantization may tick
			// the spread up occasionally, never as a trend.
			assert.LessOrEqual(t, grew, len(res.History)/4)
		})
	}
}

func TestRun_Deterministic(t *testing.T) {
	a := runSwarm(t, testConfig(t, ModeAudio))
	b := runSwarm(t, testConfig(t, ModeAudio))
	assert.Equal(t, a.History, b.History,
		"identical seeds must reproduce the run exactly, however goroutines interleave")
}

func TestRun_CancelledBetweenRounds(t *testing.T) {
	co, err := New(testConfig(t, ModeBaseline))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = co.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_ObserverHoldsFrequency(t *testing.T) {
	cfg := testConfig(t, ModeBaseline)
	cfg.Roles = map[int]Role{3: RoleObserver}

	co, err := New(cfg)
	require.NoError(t, err)
	start := co.Agents()[3].Frequency

	_, err = co.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, start, co.Agents()[3].Frequency)
}

func TestStep_OverDirBus(t *testing.T) {
	bus, err := transport.NewDirBus(t.TempDir())
	require.NoError(t, err)
	defer bus.Close()

	cfg := testConfig(t, ModeAudio)
	cfg.Agents = 4
	cfg.Bus = bus

	co, err := New(cfg)
	require.NoError(t, err)
	before := co.snapshot(0)

	snap, err := co.Step(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), snap.Round)
	assert.Less(t, snap.StdDev, before.StdDev)
}

// All phases settle back to idle at the round barrier; baseline never
// broadcasts, so its agents never leave idle at all.
func TestStep_PhaseReturnsToIdle(t *testing.T) {
	for _, mode := range []Mode{ModeBaseline, ModeAudio} {
		t.Run(mode.String(), func(t *testing.T) {
			cfg := testConfig(t, mode)
			cfg.Agents = 4
			co, err := New(cfg)
			require.NoError(t, err)

			_, err = co.Step(context.Background())
			require.NoError(t, err)
			for _, a := range co.Agents() {
				assert.Equal(t, PhaseIdle, a.Phase)
			}
		})
	}
}

func TestNew_ConfigErrors(t *testing.T) {
	base := func() Config { return testConfig(t, ModeAudio) }

	cases := map[string]func(*Config){
		"zero agents":        func(c *Config) { c.Agents = 0 },
		"single agent":       func(c *Config) { c.Agents = 1 },
		"negative agents":    func(c *Config) { c.Agents = -3 },
		"negative rounds":    func(c *Config) { c.Rounds = -1 },
		"zero coupling":      func(c *Config) { c.Coupling = 0 },
		"excessive coupling": func(c *Config) { c.Coupling = 1.5 },
		"missing codec":      func(c *Config) { c.Codec = nil },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := base()
			mutate(&cfg)
			_, err := New(cfg)
			assert.ErrorIs(t, err, ErrConfig)
		})
	}
}

func TestNeighborIndices(t *testing.T) {
	cfg := testConfig(t, ModeBaseline)
	co, err := New(cfg)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(1))
	for round := 0; round < 50; round++ {
		picks := co.neighborIndices(rng, 4)
		assert.GreaterOrEqual(t, len(picks), minNeighbors)
		assert.LessOrEqual(t, len(picks), maxNeighbors)

		seen := make(map[int]bool)
		for _, j := range picks {
			assert.NotEqual(t, 4, j, "an agent never samples itself")
			assert.False(t, seen[j], "neighbors are distinct")
			seen[j] = true
		}
	}
}

func TestNeighborIndices_SmallSwarm(t *testing.T) {
	cfg := testConfig(t, ModeBaseline)
	cfg.Agents = 3
	co, err := New(cfg)
	require.NoError(t, err)

	picks := co.neighborIndices(rand.New(rand.NewSource(1)), 0)
	assert.Len(t, picks, 2, "the whole swarm minus self when below the minimum")
}

func TestSubSeed_Independent(t *testing.T) {
	a := subSeed(7, 1, 0, saltNeighbors)
	assert.Equal(t, a, subSeed(7, 1, 0, saltNeighbors))
	assert.NotEqual(t, a, subSeed(7, 1, 1, saltNeighbors))
	assert.NotEqual(t, a, subSeed(7, 2, 0, saltNeighbors))
	assert.NotEqual(t, a, subSeed(7, 1, 0, saltBroadcast))
	assert.NotEqual(t, a, subSeed(8, 1, 0, saltNeighbors))
}

type captureRecorder struct {
	rounds []Snapshot
	txs    []Transmission
}

func (r *captureRecorder) RecordRound(_ context.Context, snap Snapshot) error {
	r.rounds = append(r.rounds, snap)
	return nil
}

func (r *captureRecorder) RecordTransmission(_ context.Context, tx Transmission) error {
	r.txs = append(r.txs, tx)
	return nil
}

func TestStep_RecordsTelemetry(t *testing.T) {
	rec := &captureRecorder{}
	cfg := testConfig(t, ModeChord)
	cfg.Agents = 4
	cfg.Recorder = rec

	co, err := New(cfg)
	require.NoError(t, err)
	_, err = co.Step(context.Background())
	require.NoError(t, err)

	require.Len(t, rec.rounds, 1)
	assert.Equal(t, uint64(1), rec.rounds[0].Round)
	require.Len(t, rec.txs, 4)
	assert.Equal(t, "agent-0", rec.txs[0].Sender)
	assert.Equal(t, statusChord, rec.txs[0].Concepts)
	assert.Positive(t, rec.txs[0].Samples)
}
