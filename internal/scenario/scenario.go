// Package scenario loads and validates classroom scenario files. A
// scenario is an immutable input snapshot: an ordered list of agent
// profiles plus the session seed. The simulation never writes back.
package scenario

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/kellerdav/classroom-sim/internal/agent"
)

// #region scenario

// Scenario is one classroom setup.
type Scenario struct {
	Name   string          `toml:"name"`
	Seed   int64           `toml:"seed"`
	Agents []agent.Profile `toml:"agents"`
}

// #endregion scenario

// #region load

// Load reads and validates a scenario TOML file.
func Load(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("read scenario %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates scenario TOML.
func Parse(data []byte) (Scenario, error) {
	var sc Scenario
	if err := toml.Unmarshal(data, &sc); err != nil {
		return Scenario{}, fmt.Errorf("parse scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return Scenario{}, err
	}
	return sc, nil
}

// #endregion load

// #region validate

// Validate checks the structural invariants the simulation cannot run
// without: at least one agent, unique non-empty ids, traits in [0, 1].
func (s Scenario) Validate() error {
	if len(s.Agents) == 0 {
		return fmt.Errorf("scenario %q: no agents", s.Name)
	}
	seen := make(map[string]struct{}, len(s.Agents))
	for i, p := range s.Agents {
		if p.ID == "" {
			return fmt.Errorf("scenario %q: agent %d has empty id", s.Name, i)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("scenario %q: duplicate agent id %q", s.Name, p.ID)
		}
		seen[p.ID] = struct{}{}

		for name, v := range map[string]float64{
			"extroversion":        p.Traits.Extroversion,
			"sensitivity":         p.Traits.Sensitivity,
			"rebelliousness":      p.Traits.Rebelliousness,
			"academic_motivation": p.Traits.AcademicMotivation,
		} {
			if v < 0 || v > 1 {
				return fmt.Errorf("scenario %q: agent %q: trait %s out of [0,1]: %v", s.Name, p.ID, name, v)
			}
		}
	}
	return nil
}

// #endregion validate
