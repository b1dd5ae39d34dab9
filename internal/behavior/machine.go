package behavior

import (
	"math/rand"

	"github.com/kellerdav/classroom-sim/internal/emotion"
)

// #region config

// Config holds the machine's tuning knobs.
type Config struct {
	// EvalInterval is how often, in simulated seconds, the transition
	// rules are evaluated.
	EvalInterval float64 `toml:"eval_interval"`
	// ArguingEscalation is how long an agent argues before a disruptive
	// event is signaled.
	ArguingEscalation float64 `toml:"arguing_escalation"`
	// SideTalkContagion is the per-second contagion intensity while in
	// side talk.
	SideTalkContagion float64 `toml:"side_talk_contagion"`
	// WithdrawnBoredomRate is the per-second boredom nudge while withdrawn.
	WithdrawnBoredomRate float64 `toml:"withdrawn_boredom_rate"`
	// HandRaiseChance is the per-tick probability of raising a hand while
	// engaged.
	HandRaiseChance float64 `toml:"hand_raise_chance"`
}

// DefaultConfig returns the tuned baseline configuration.
func DefaultConfig() Config {
	return Config{
		EvalInterval:         2.0,
		ArguingEscalation:    5.0,
		SideTalkContagion:    0.1,
		WithdrawnBoredomRate: 0.05,
		HandRaiseChance:      0.01,
	}
}

// #endregion config

// #region machine

// Machine is the behavioral state machine for one agent. It has no
// terminal state; removal from class is modeled as agent deactivation,
// not a machine state.
type Machine struct {
	config    Config
	state     State
	duration  float64 // seconds in current state
	sinceEval float64
	escalated bool // arguing disruption already signaled this episode
	rng       *rand.Rand
}

// NewMachine creates a machine in the initial Listening state. rng drives
// all probabilistic transitions and must be the caller's seeded source so
// runs are reproducible.
func NewMachine(config Config, rng *rand.Rand) *Machine {
	return &Machine{
		config: config,
		state:  StateListening,
		rng:    rng,
	}
}

// State returns the current behavioral state.
func (m *Machine) State() State {
	return m.state
}

// StateDuration returns how long, in simulated seconds, the machine has
// been in the current state.
func (m *Machine) StateDuration() float64 {
	return m.duration
}

// #endregion machine

// #region force

// Force transitions the machine immediately, bypassing rule evaluation.
// Used for intervention-forced transitions and external decision
// providers. Forcing the current state is a no-op.
func (m *Machine) Force(to State) (Transition, bool) {
	if to == m.state {
		return Transition{}, false
	}
	tr := Transition{From: m.state, To: to}
	m.state = to
	m.duration = 0
	m.escalated = false
	return tr, true
}

// #endregion force

// #region advance

// Advance moves simulated time forward. When the evaluation interval
// elapses the transition rules run once; the returned Transition is valid
// only when the bool is true.
func (m *Machine) Advance(dt float64, vec emotion.Vector, traits Traits) (Transition, bool) {
	if dt <= 0 {
		return Transition{}, false
	}
	m.duration += dt
	m.sinceEval += dt
	if m.sinceEval < m.config.EvalInterval {
		return Transition{}, false
	}
	m.sinceEval = 0

	next, ok := m.evaluate(vec, traits)
	if !ok {
		return Transition{}, false
	}
	return m.Force(next)
}

// evaluate runs the priority-ordered transition rules. Only the first rule
// whose condition matches gets to roll; there is no cascading to later
// rules when a roll fails.
func (m *Machine) evaluate(vec emotion.Vector, traits Traits) (State, bool) {
	switch {
	case vec.Anger >= 7:
		p := (vec.Anger - 6) / 4 * traits.Rebelliousness
		if m.rng.Float64() < p {
			return StateArguing, true
		}
		return "", false

	case vec.Boredom >= 7 && m.state != StateDistracted && m.state != StateSideTalk:
		if m.rng.Float64() < 0.6 {
			return StateDistracted, true
		}
		return StateSideTalk, true

	case vec.Sadness >= 6:
		if m.state == StateWithdrawn {
			return "", false
		}
		return StateWithdrawn, true

	case vec.Frustration >= 6 && m.state == StateListening:
		if m.rng.Float64() < 0.5 {
			return StateSideTalk, true
		}
		return StateDistracted, true

	case vec.Happiness >= 7 && vec.Boredom < 4:
		if m.state != StateEngaged && m.rng.Float64() < traits.AcademicMotivation {
			return StateEngaged, true
		}
		return "", false

	case vec.OverallMood() > 3 && m.state != StateListening:
		if m.rng.Float64() < 0.3 {
			return StateListening, true
		}
		return "", false
	}
	return "", false
}

// #endregion advance

// #region resident

// Resident returns the side effects of occupying the current state for dt
// simulated seconds. Rates are per second; the caller executes the effects
// against the agent's emotion vector, the contagion model, and the event
// queue.
func (m *Machine) Resident(dt float64) []Effect {
	if dt <= 0 {
		return nil
	}
	var effects []Effect
	switch m.state {
	case StateDistracted:
		effects = append(effects, Effect{
			Kind:    EffectTrigger,
			Trigger: emotion.TriggerLongPassiveActivity,
			Scale:   dt,
		})
	case StateSideTalk:
		effects = append(effects, Effect{
			Kind:      EffectContagion,
			Intensity: m.config.SideTalkContagion * dt,
		})
	case StateArguing:
		if m.duration > m.config.ArguingEscalation && !m.escalated {
			m.escalated = true
			effects = append(effects, Effect{Kind: EffectDisruption})
		}
	case StateWithdrawn:
		effects = append(effects, Effect{
			Kind:  EffectNudge,
			Delta: emotion.Delta{Boredom: m.config.WithdrawnBoredomRate * dt},
		})
	case StateEngaged:
		if m.rng.Float64() < m.config.HandRaiseChance {
			effects = append(effects, Effect{Kind: EffectHandRaised})
		}
	}
	return effects
}

// #endregion resident
