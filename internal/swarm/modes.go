package swarm

import "fmt"

// Mode selects how agent frequencies cross the medium each round.
type Mode int

const (
	// ModeBaseline reads neighbor frequencies directly, bypassing the
	// codec and transport. Control condition: the convergence upper bound.
	ModeBaseline Mode = iota
	// ModeAudio broadcasts a single tone at the agent's own frequency.
	ModeAudio
	// ModeChord broadcasts the frequency tone mixed with a status chord.
	ModeChord
	// ModeFM broadcasts an FM carrier encoding the frequency as unit
	// state, plus the status chord.
	ModeFM
	// ModeRandom broadcasts an uncorrelated random tone. Control
	// condition: proves the protocol does not converge on noise.
	ModeRandom
	// ModeSilent broadcasts a zero waveform. Control condition for the
	// decoder's zero-frequency convention.
	ModeSilent
)

var modeNames = map[Mode]string{
	ModeBaseline: "baseline",
	ModeAudio:    "audio",
	ModeChord:    "chord",
	ModeFM:       "fm",
	ModeRandom:   "random",
	ModeSilent:   "silent",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ModeNames lists the accepted mode names in presentation order.
func ModeNames() []string {
	return []string{"baseline", "audio", "chord", "fm", "random", "silent"}
}

// ParseMode resolves a mode name. Unknown names are configuration
// errors.
func ParseMode(name string) (Mode, error) {
	for mode, n := range modeNames {
		if n == name {
			return mode, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown mode %q (valid: baseline, audio, chord, fm, random, silent)", ErrConfig, name)
}
