package swarm

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/hexwarp/swl/internal/codec"
	"github.com/hexwarp/swl/internal/transport"
)

const (
	// DefaultAgents and DefaultRounds match the reference swarm
	// experiment: ten agents converge comfortably inside twenty rounds
	// at the default coupling.
	DefaultAgents = 10
	DefaultRounds = 20

	// DefaultCoupling is the Kuramoto coupling strength k in
	// f += k * (mean(neighbors) - f).
	DefaultCoupling = 0.3

	// DefaultSyncThreshold is the |f - swarm mean| bound, in Hz, under
	// which an agent counts as synchronized.
	DefaultSyncThreshold = 100.0

	// DefaultConvergenceRatio is the synchronized fraction at which the
	// swarm counts as converged.
	DefaultConvergenceRatio = 0.95

	// FreqMin and FreqMax bound the band initial frequencies are drawn
	// from, uniformly.
	FreqMin = 30000.0
	FreqMax = 90000.0

	// Each round an agent listens to between minNeighbors and
	// maxNeighbors peers, capped by swarm size.
	minNeighbors = 3
	maxNeighbors = 7

	// fetchTimeout bounds the wait for any single neighbor message.
	// Expiry means the message is lost for this round, nothing more.
	fetchTimeout = 250 * time.Millisecond
)

// statusChord is the concept set broadcast alongside the frequency in
// chord and fm modes.
var statusChord = []string{"exists", "harmony"}

// Snapshot is the coordinator's view of the swarm at a round boundary.
type Snapshot struct {
	Round  uint64
	Mean   float64
	StdDev float64
	Synced int
	Total  int
}

// Ratio returns the synchronized fraction.
func (s Snapshot) Ratio() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Synced) / float64(s.Total)
}

// Transmission describes one published message, for telemetry.
type Transmission struct {
	Round    uint64
	Sender   string
	Concepts []string
	State    float64
	Samples  int
}

// Recorder persists round snapshots and transmissions. The coordinator
// calls it from the round-driving goroutine only, at round boundaries.
// A failed write is a resource error and aborts the run.
type Recorder interface {
	RecordRound(ctx context.Context, snap Snapshot) error
	RecordTransmission(ctx context.Context, tx Transmission) error
}

// Config parameterizes a swarm run. Agents and Coupling must be set
// explicitly (DefaultAgents and DefaultCoupling are the conventional
// values): an explicit zero is a configuration error, never a default.
// Rounds, the thresholds, Bus and Log fall back to defaults when zero.
// Codec is required for every mode (baseline skips the audio path but
// validation stays uniform).
type Config struct {
	Mode     Mode
	Agents   int
	Rounds   int
	Seed     int64
	Coupling float64

	SyncThreshold    float64
	ConvergenceRatio float64

	// Roles assigns non-follower roles by agent index.
	Roles map[int]Role

	Codec    *codec.Codec
	Bus      transport.Bus
	Recorder Recorder
	Log      *slog.Logger
}

func (c *Config) applyDefaults() {
	if c.Rounds == 0 {
		c.Rounds = DefaultRounds
	}
	if c.SyncThreshold == 0 {
		c.SyncThreshold = DefaultSyncThreshold
	}
	if c.ConvergenceRatio == 0 {
		c.ConvergenceRatio = DefaultConvergenceRatio
	}
	if c.Bus == nil {
		c.Bus = transport.NewMemBus()
	}
	if c.Log == nil {
		c.Log = slog.Default()
	}
}

func (c *Config) validate() error {
	if c.Agents < 2 {
		return fmt.Errorf("%w: agent count must be at least 2, got %d", ErrConfig, c.Agents)
	}
	if c.Rounds < 0 {
		return fmt.Errorf("%w: round count must be positive, got %d", ErrConfig, c.Rounds)
	}
	if c.Coupling <= 0 || c.Coupling > 1 {
		return fmt.Errorf("%w: coupling must be in (0, 1], got %g", ErrConfig, c.Coupling)
	}
	if c.Codec == nil {
		return fmt.Errorf("%w: codec is required", ErrConfig)
	}
	return nil
}

// Result summarizes a completed run.
type Result struct {
	Mode      Mode
	Rounds    uint64
	Converged bool
	Final     Snapshot
	History   []Snapshot
}

// Coordinator owns the agent set, the transport bus, and the round loop.
// Step runs one strictly barriered round; per-agent work inside a round
// is parallelized, round boundaries are serialized.
type Coordinator struct {
	cfg    Config
	codec  *codec.Codec
	bus    transport.Bus
	clock  *Clock
	agents []*Agent
	log    *slog.Logger

	history []Snapshot
}

// New validates the configuration and creates the agents, frequencies
// drawn uniformly from [FreqMin, FreqMax) by the seeded source.
func New(cfg Config) (*Coordinator, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	agents := make([]*Agent, cfg.Agents)
	for i := range agents {
		freq := FreqMin + rng.Float64()*(FreqMax-FreqMin)
		agents[i] = newAgent(i, freq, cfg.Roles[i])
	}

	return &Coordinator{
		cfg:    cfg,
		codec:  cfg.Codec,
		bus:    cfg.Bus,
		clock:  NewClock(),
		agents: agents,
		log:    cfg.Log,
	}, nil
}

// Agents exposes the agent set for inspection. Callers must not mutate
// agents while a Step is in flight.
func (co *Coordinator) Agents() []*Agent {
	return co.agents
}

// History returns the per-round snapshots recorded so far.
func (co *Coordinator) History() []Snapshot {
	out := make([]Snapshot, len(co.history))
	copy(out, co.history)
	return out
}

// Converged reports whether the latest snapshot meets the convergence
// ratio.
func (co *Coordinator) Converged() bool {
	if len(co.history) == 0 {
		return false
	}
	return co.history[len(co.history)-1].Ratio() >= co.cfg.ConvergenceRatio
}

// Step executes exactly one synchronization round: broadcast every
// agent's message, barrier, then update every agent from its sampled
// neighborhood. Agents only ever read this round's published messages
// and the pre-round frequency snapshot, never a neighbor's next-round
// state.
func (co *Coordinator) Step(ctx context.Context) (Snapshot, error) {
	round := co.clock.Next()
	freqs := co.frequencies()

	var transmissions []Transmission
	if co.cfg.Mode != ModeBaseline {
		txs, err := co.broadcast(ctx, round)
		if err != nil {
			return Snapshot{}, fmt.Errorf("round %d broadcast failed: %w", round, err)
		}
		transmissions = txs
	}

	if err := co.update(ctx, round, freqs); err != nil {
		return Snapshot{}, fmt.Errorf("round %d update failed: %w", round, err)
	}

	snap := co.snapshot(round)
	co.history = append(co.history, snap)

	if co.cfg.Recorder != nil {
		for _, tx := range transmissions {
			if err := co.cfg.Recorder.RecordTransmission(ctx, tx); err != nil {
				return Snapshot{}, fmt.Errorf("failed to record transmission: %w", err)
			}
		}
		if err := co.cfg.Recorder.RecordRound(ctx, snap); err != nil {
			return Snapshot{}, fmt.Errorf("failed to record round: %w", err)
		}
	}

	co.log.Info("round complete",
		"round", round,
		"mode", co.cfg.Mode.String(),
		"mean_hz", snap.Mean,
		"stddev_hz", snap.StdDev,
		"synced", snap.Synced,
		"total", snap.Total,
	)
	return snap, nil
}

// Run executes rounds until convergence, the round budget, or
// cancellation. Cancellation takes effect between rounds only; in-flight
// messages for the cancelled round are dropped.
func (co *Coordinator) Run(ctx context.Context) (*Result, error) {
	for co.clock.Current() < uint64(co.cfg.Rounds) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if _, err := co.Step(ctx); err != nil {
			return nil, err
		}
		if co.Converged() {
			break
		}
	}

	res := &Result{
		Mode:      co.cfg.Mode,
		Rounds:    co.clock.Current(),
		Converged: co.Converged(),
		History:   co.History(),
	}
	if len(res.History) > 0 {
		res.Final = res.History[len(res.History)-1]
	}
	return res, nil
}

func (co *Coordinator) frequencies() []float64 {
	out := make([]float64, len(co.agents))
	for i, a := range co.agents {
		out[i] = a.Frequency
	}
	return out
}

// broadcast publishes every agent's waveform for this round. Work is
// parallel across agents; the returned transmissions are indexed by
// agent so ordering stays deterministic.
func (co *Coordinator) broadcast(ctx context.Context, round uint64) ([]Transmission, error) {
	txs := make([]Transmission, len(co.agents))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, a := range co.agents {
		a := a
		g.Go(func() error {
			a.Phase = PhaseEncoding
			w, concepts, state := co.encodeFor(a, round)
			pkt := transport.NewPacket(a.ID, round, w, concepts, state)
			if err := co.bus.Publish(gctx, round, pkt); err != nil {
				return fmt.Errorf("agent %s: %w", a.ID, err)
			}
			a.Phase = PhaseTransmitted
			txs[a.Index] = Transmission{
				Round:    round,
				Sender:   a.ID,
				Concepts: concepts,
				State:    state,
				Samples:  len(w.Samples),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return txs, nil
}

// encodeFor builds an agent's outgoing waveform for the round.
func (co *Coordinator) encodeFor(a *Agent, round uint64) (*codec.Waveform, []string, float64) {
	switch co.cfg.Mode {
	case ModeChord:
		return co.codec.EncodeMix(a.Frequency, statusChord), statusChord, 0
	case ModeFM:
		state := codec.StateFromFrequency(a.Frequency)
		msg := codec.NewMessage(a.ID, int64(round), statusChord...).WithState(state)
		return co.codec.Encode(msg), statusChord, state
	case ModeRandom:
		rng := rand.New(rand.NewSource(subSeed(co.cfg.Seed, round, uint64(a.Index), saltBroadcast)))
		return co.codec.EncodeTone(FreqMin + rng.Float64()*(FreqMax-FreqMin)), nil, 0
	case ModeSilent:
		return co.codec.Silence(), nil, 0
	default:
		return co.codec.EncodeTone(a.Frequency), nil, 0
	}
}

// update runs the listen-and-couple half of the round. Each agent
// samples its neighborhood from a per-(seed, round, agent) deterministic
// source, so the outcome is identical however the goroutines interleave.
func (co *Coordinator) update(ctx context.Context, round uint64, freqs []float64) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, a := range co.agents {
		a := a
		g.Go(func() error {
			rng := rand.New(rand.NewSource(subSeed(co.cfg.Seed, round, uint64(a.Index), saltNeighbors)))
			var contribs []float64
			for _, j := range co.neighborIndices(rng, a.Index) {
				f, ok, err := co.contribution(gctx, round, j, freqs)
				if err != nil {
					return err
				}
				if !ok {
					co.log.Debug("neighbor message lost", "round", round, "agent", a.ID, "neighbor", co.agents[j].ID)
					continue
				}
				contribs = append(contribs, f)
			}
			a.Step(contribs, co.cfg.Coupling)
			a.Phase = PhaseIdle
			return nil
		})
	}
	return g.Wait()
}

// contribution resolves one neighbor's frequency for the round. In
// baseline mode it is the pre-round snapshot value; otherwise the
// neighbor's message is fetched and decoded, and a timeout means the
// message is lost (ok=false), never an error.
func (co *Coordinator) contribution(ctx context.Context, round uint64, j int, freqs []float64) (float64, bool, error) {
	if co.cfg.Mode == ModeBaseline {
		return freqs[j], true, nil
	}

	pkt, err := co.bus.Fetch(ctx, round, co.agents[j].ID, fetchTimeout)
	if err != nil {
		return 0, false, err
	}
	if pkt == nil {
		return 0, false, nil
	}

	w := pkt.Waveform()
	if co.cfg.Mode == ModeFM {
		return codec.StateToFrequency(co.codec.DecodeState(w)), true, nil
	}
	return co.codec.DominantFrequency(w), true, nil
}

// neighborIndices samples 3-7 distinct peers uniformly, excluding self,
// capped by swarm size.
func (co *Coordinator) neighborIndices(rng *rand.Rand, self int) []int {
	others := make([]int, 0, len(co.agents)-1)
	for i := range co.agents {
		if i != self {
			others = append(others, i)
		}
	}
	if len(others) == 0 {
		return nil
	}

	lo, hi := minNeighbors, maxNeighbors
	if hi > len(others) {
		hi = len(others)
	}
	if lo > hi {
		lo = hi
	}
	k := lo
	if hi > lo {
		k += rng.Intn(hi - lo + 1)
	}

	rng.Shuffle(len(others), func(i, j int) {
		others[i], others[j] = others[j], others[i]
	})
	return others[:k]
}

func (co *Coordinator) snapshot(round uint64) Snapshot {
	freqs := co.frequencies()
	mean := stat.Mean(freqs, nil)
	stddev := stat.PopStdDev(freqs, nil)

	synced := 0
	for _, a := range co.agents {
		if a.Synced(mean, co.cfg.SyncThreshold) {
			synced++
		}
	}
	return Snapshot{
		Round:  round,
		Mean:   mean,
		StdDev: stddev,
		Synced: synced,
		Total:  len(co.agents),
	}
}

const (
	saltBroadcast uint64 = 0x5157_4c31 // tone draws in random mode
	saltNeighbors uint64 = 0x4e45_4947 // neighborhood sampling
)

// subSeed derives an independent deterministic seed for one agent's work
// in one round (splitmix64 finalizer over the mixed inputs).
func subSeed(seed int64, round, index, salt uint64) int64 {
	x := uint64(seed)
	x ^= round * 0x9e3779b97f4a7c15
	x ^= index * 0xbf58476d1ce4e5b9
	x ^= salt * 0x94d049bb133111eb
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return int64(x)
}
