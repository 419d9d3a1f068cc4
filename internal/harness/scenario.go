package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hexwarp/swl/internal/swarm"
)

// Scenario is one declarative swarm experiment.
type Scenario struct {
	// Name uniquely identifies the scenario.
	Name string `yaml:"name"`

	// Description explains what claim the scenario pins down.
	Description string `yaml:"description,omitempty"`

	// Mode is the transport/codec mode name (baseline, audio, chord,
	// fm, random, silent).
	Mode string `yaml:"mode"`

	// Agents and Coupling are required; an explicit zero is invalid.
	// Rounds and Seed may be omitted (round budget defaults, seed 0).
	Agents   int     `yaml:"agents"`
	Rounds   int     `yaml:"rounds,omitempty"`
	Seed     int64   `yaml:"seed,omitempty"`
	Coupling float64 `yaml:"coupling"`

	// Expect holds the outcome assertions. Unset bounds are not
	// checked.
	Expect Expectations `yaml:"expect"`
}

// Expectations bound the final snapshot of a run.
type Expectations struct {
	Converged      *bool    `yaml:"converged,omitempty"`
	MinSyncedRatio *float64 `yaml:"min_synced_ratio,omitempty"`
	MaxSyncedRatio *float64 `yaml:"max_synced_ratio,omitempty"`
	MaxMeanHz      *float64 `yaml:"max_mean_hz,omitempty"`
	MinStdDevHz    *float64 `yaml:"min_stddev_hz,omitempty"`
	MaxStdDevHz    *float64 `yaml:"max_stddev_hz,omitempty"`
}

// LoadScenario reads and validates a scenario file. Unknown YAML fields
// are rejected.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse scenario YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if _, err := swarm.ParseMode(s.Mode); err != nil {
		return err
	}
	if s.Agents < 2 {
		return fmt.Errorf("agents must be at least 2, got %d", s.Agents)
	}
	if s.Rounds < 0 {
		return fmt.Errorf("rounds must be positive, got %d", s.Rounds)
	}
	if s.Coupling <= 0 || s.Coupling > 1 {
		return fmt.Errorf("coupling must be in (0, 1], got %g", s.Coupling)
	}
	return nil
}
