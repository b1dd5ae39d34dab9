// Package replay runs recorded session scripts through the simulation
// core and checks the outcomes, entirely in-memory. Fixtures are JSON
// files: a scenario, a timed list of teacher actions, and the expected
// behavioral states at named checkpoints.
package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kellerdav/classroom-sim/internal/agent"
	"github.com/kellerdav/classroom-sim/internal/behavior"
	"github.com/kellerdav/classroom-sim/internal/scenario"
	"github.com/kellerdav/classroom-sim/internal/session"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description string  `json:"description"`
	TickSeconds float64 `json:"tick_seconds"`
	Duration    float64 `json:"duration"`

	Scenario FixtureScenario `json:"scenario"`
	Config   FixtureConfig   `json:"config"`
	Steps    []Step          `json:"steps"`
	Checks   []Check         `json:"checks"`

	// ExpectedScore, when present, bounds the final session score.
	ExpectedScore *ScoreRange `json:"expected_score,omitempty"`
}

// FixtureScenario mirrors scenario.Scenario with JSON tags.
type FixtureScenario struct {
	Name   string         `json:"name"`
	Seed   int64          `json:"seed"`
	Agents []FixtureAgent `json:"agents"`
}

// FixtureAgent mirrors agent.Profile with JSON tags.
type FixtureAgent struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Traits           behavior.Traits `json:"traits"`
	InitialHappiness float64         `json:"initial_happiness"`
	InitialBoredom   float64         `json:"initial_boredom"`
	Position         agent.Position  `json:"position"`
}

// FixtureConfig carries the tuning knobs a fixture may override. Zero
// fields keep their defaults, so old fixtures stay valid as knobs are
// added.
type FixtureConfig struct {
	BreakSeconds       float64 `json:"break_seconds,omitempty"`
	InterventionRipple float64 `json:"intervention_ripple,omitempty"`
	EvalInterval       float64 `json:"eval_interval,omitempty"`
	ContagionRadius    float64 `json:"contagion_radius,omitempty"`
}

// Step is one scripted teacher input, fired once the simulation clock
// reaches At.
type Step struct {
	At     float64 `json:"at"`
	Kind   string  `json:"kind"` // "action" | "swap"
	Action string  `json:"action,omitempty"`
	Target string  `json:"target,omitempty"`
	Label  string  `json:"label,omitempty"`
	AgentA string  `json:"agent_a,omitempty"`
	AgentB string  `json:"agent_b,omitempty"`
}

// Check asserts one agent's behavioral state once the clock reaches At.
type Check struct {
	At      float64 `json:"at"`
	AgentID string  `json:"agent_id"`
	State   string  `json:"state"`
}

// ScoreRange bounds the final score inclusively.
type ScoreRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if f.TickSeconds <= 0 {
		f.TickSeconds = 0.5
	}
	return &f, nil
}

// ToScenario converts the fixture scenario to the domain type.
func (fs *FixtureScenario) ToScenario() scenario.Scenario {
	sc := scenario.Scenario{Name: fs.Name, Seed: fs.Seed}
	for _, fa := range fs.Agents {
		sc.Agents = append(sc.Agents, agent.Profile{
			ID:               fa.ID,
			Name:             fa.Name,
			Traits:           fa.Traits,
			InitialHappiness: fa.InitialHappiness,
			InitialBoredom:   fa.InitialBoredom,
			Position:         fa.Position,
		})
	}
	return sc
}

// ToSessionConfig applies the fixture's overrides on top of the tuned
// defaults.
func (fc *FixtureConfig) ToSessionConfig() session.Config {
	config := session.DefaultConfig()
	if fc.BreakSeconds > 0 {
		config.BreakSeconds = fc.BreakSeconds
	}
	if fc.InterventionRipple > 0 {
		config.InterventionRipple = fc.InterventionRipple
	}
	if fc.EvalInterval > 0 {
		config.Behavior.EvalInterval = fc.EvalInterval
	}
	if fc.ContagionRadius > 0 {
		config.Contagion.Radius = fc.ContagionRadius
	}
	return config
}

// #endregion fixture-loader
