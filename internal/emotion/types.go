// Package emotion implements the five-dimensional emotional state of a
// simulated student: bounded fields, per-second decay, and fixed delta
// tables for teacher actions and situational triggers.
package emotion

// #region bounds

// Emotion fields are always kept inside [Floor, Ceiling].
const (
	Floor   = 1.0
	Ceiling = 10.0
)

// #endregion bounds

// #region action-kind

// ActionKind identifies a teacher intervention.
type ActionKind string

const (
	ActionYell                  ActionKind = "yell"
	ActionPraise                ActionKind = "praise"
	ActionCallToBoard           ActionKind = "call_to_board"
	ActionChangeSeating         ActionKind = "change_seating"
	ActionRemoveFromClass       ActionKind = "remove_from_class"
	ActionPositiveReinforcement ActionKind = "positive_reinforcement"
	ActionIgnore                ActionKind = "ignore"
	ActionGiveBreak             ActionKind = "give_break"
)

// Known reports whether k is a recognized action kind.
func (k ActionKind) Known() bool {
	_, ok := actionDeltas[k]
	return ok
}

// #endregion action-kind

// #region trigger-kind

// TriggerKind identifies a situational event that moves emotion directly,
// without going through the intervention path.
type TriggerKind string

const (
	TriggerIgnoredRaisedHand      TriggerKind = "ignored_raised_hand"
	TriggerWrongAnswerPublic      TriggerKind = "wrong_answer_public"
	TriggerPeerPraise             TriggerKind = "peer_praise"
	TriggerLongPassiveActivity    TriggerKind = "long_passive_activity"
	TriggerSuccessfulContribution TriggerKind = "successful_contribution"
	TriggerPeerConflict           TriggerKind = "peer_conflict"
)

// #endregion trigger-kind

// #region vector

// Vector is the emotional state of one agent. All fields stay in
// [Floor, Ceiling] after every mutation; mutations clamp post-hoc.
type Vector struct {
	Happiness   float64 `json:"happiness"`
	Sadness     float64 `json:"sadness"`
	Frustration float64 `json:"frustration"`
	Boredom     float64 `json:"boredom"`
	Anger       float64 `json:"anger"`
}

// #endregion vector

// #region delta

// Delta is a signed per-field adjustment applied to a Vector.
type Delta struct {
	Happiness   float64
	Sadness     float64
	Frustration float64
	Boredom     float64
	Anger       float64
}

// Scale returns d with every field multiplied by f.
func (d Delta) Scale(f float64) Delta {
	return Delta{
		Happiness:   d.Happiness * f,
		Sadness:     d.Sadness * f,
		Frustration: d.Frustration * f,
		Boredom:     d.Boredom * f,
		Anger:       d.Anger * f,
	}
}

// #endregion delta

// #region decay-rates

// DecayRates holds per-second drift rates. Happiness, sadness, frustration
// and anger drift toward Floor; boredom grows toward Ceiling.
type DecayRates struct {
	Happiness     float64 `toml:"happiness"`
	Sadness       float64 `toml:"sadness"`
	Frustration   float64 `toml:"frustration"`
	BoredomGrowth float64 `toml:"boredom_growth"`
	Anger         float64 `toml:"anger"`
}

// DefaultDecayRates returns the tuned baseline rates.
func DefaultDecayRates() DecayRates {
	return DecayRates{
		Happiness:     0.01,
		Sadness:       0.015,
		Frustration:   0.02,
		BoredomGrowth: 0.02,
		Anger:         0.025,
	}
}

// #endregion decay-rates
