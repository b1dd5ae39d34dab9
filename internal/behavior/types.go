// Package behavior implements the per-agent behavioral state machine.
// Transitions are computed from the agent's emotion vector and personality
// traits, evaluated on a fixed interval rather than every tick so state
// does not flap visually.
package behavior

import "github.com/kellerdav/classroom-sim/internal/emotion"

// #region state

// State is the discrete behavioral state of an agent.
// Exactly one is active at a time.
type State string

const (
	StateListening  State = "listening"
	StateEngaged    State = "engaged"
	StateDistracted State = "distracted"
	StateSideTalk   State = "side_talk"
	StateArguing    State = "arguing"
	StateWithdrawn  State = "withdrawn"
)

// Known reports whether s is one of the defined behavioral states.
func (s State) Known() bool {
	switch s {
	case StateListening, StateEngaged, StateDistracted,
		StateSideTalk, StateArguing, StateWithdrawn:
		return true
	}
	return false
}

// Attentive reports whether the state counts toward engagement.
func (s State) Attentive() bool {
	return s == StateListening || s == StateEngaged
}

// Disruptive reports whether the state counts as a disruption.
func (s State) Disruptive() bool {
	return s == StateArguing || s == StateSideTalk
}

// #endregion state

// #region traits

// Traits is the immutable personality profile of an agent. All fields are
// in [0, 1] and are read-only inputs to transition probabilities and
// contagion intensity.
type Traits struct {
	Extroversion       float64 `toml:"extroversion" json:"extroversion"`
	Sensitivity        float64 `toml:"sensitivity" json:"sensitivity"`
	Rebelliousness     float64 `toml:"rebelliousness" json:"rebelliousness"`
	AcademicMotivation float64 `toml:"academic_motivation" json:"academic_motivation"`
}

// #endregion traits

// #region transition

// Transition records a state change.
type Transition struct {
	From State
	To   State
}

// #endregion transition

// #region effects

// EffectKind classifies a state-resident side effect emitted per tick.
type EffectKind string

const (
	// EffectTrigger applies an emotion trigger scaled by Scale.
	EffectTrigger EffectKind = "trigger"
	// EffectContagion propagates the agent's negative affect to neighbors.
	EffectContagion EffectKind = "contagion"
	// EffectNudge applies a raw emotion delta.
	EffectNudge EffectKind = "nudge"
	// EffectDisruption signals a disruptive event (sustained arguing).
	EffectDisruption EffectKind = "disruption"
	// EffectHandRaised signals the agent raised a hand.
	EffectHandRaised EffectKind = "hand_raised"
)

// Effect is one state-resident side effect. Which fields are meaningful
// depends on Kind.
type Effect struct {
	Kind      EffectKind
	Trigger   emotion.TriggerKind
	Scale     float64
	Intensity float64
	Delta     emotion.Delta
}

// #endregion effects
