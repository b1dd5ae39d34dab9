// Package agent composes the emotion vector, the behavioral state machine,
// and the trait profile into one simulated student.
package agent

import (
	"math"
	"math/rand"

	"github.com/kellerdav/classroom-sim/internal/behavior"
	"github.com/kellerdav/classroom-sim/internal/emotion"
)

// #region position

// Position is the agent's seat location, used only for proximity queries.
type Position struct {
	X float64 `toml:"x" json:"x"`
	Y float64 `toml:"y" json:"y"`
}

// DistanceTo returns the Euclidean distance between two positions.
func (p Position) DistanceTo(other Position) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// #endregion position

// #region profile

// Profile is the immutable scenario input describing one agent.
type Profile struct {
	ID               string          `toml:"id"`
	Name             string          `toml:"name"`
	Traits           behavior.Traits `toml:"traits"`
	InitialHappiness float64         `toml:"initial_happiness"`
	InitialBoredom   float64         `toml:"initial_boredom"`
	Position         Position        `toml:"position"`
}

// #endregion profile

// #region agent

// Agent is one simulated student. The emotion vector and machine are owned
// exclusively by the agent; all mutation goes through ReceiveAction,
// ApplyTrigger, and Update so clamping always runs after any delta.
type Agent struct {
	ID          string
	DisplayName string
	Traits      behavior.Traits
	Position    Position

	Emotion emotion.Vector
	Machine *behavior.Machine

	// Active is false once the agent has been removed from class.
	Active bool
	// OnBreak excludes the agent from metrics and contagion while true.
	OnBreak        bool
	BreakRemaining float64 // seconds, counted down by Update

	breakSeq   int // increments per StartBreak, invalidates stale returns
	decayRates emotion.DecayRates
}

// New creates an agent from a scenario profile. The machine starts in
// Listening; emotion dimensions not present in the profile start at a
// neutral midpoint and are clamped into range.
func New(p Profile, machineConfig behavior.Config, rates emotion.DecayRates, rng *rand.Rand) *Agent {
	a := &Agent{
		ID:          p.ID,
		DisplayName: p.Name,
		Traits:      p.Traits,
		Position:    p.Position,
		Emotion: emotion.Vector{
			Happiness:   p.InitialHappiness,
			Sadness:     emotion.Floor,
			Frustration: emotion.Floor,
			Boredom:     p.InitialBoredom,
			Anger:       emotion.Floor,
		},
		Machine:    behavior.NewMachine(machineConfig, rng),
		Active:     true,
		decayRates: rates,
	}
	a.Emotion.Clamp()
	return a
}

// #endregion agent

// #region receive-action

// ActionOutcome describes what a direct intervention did to the agent.
type ActionOutcome struct {
	Transition  behavior.Transition
	Transferred bool // Transition is valid
	Deactivated bool // agent was removed from class
	BreakGiven  bool // caller should start a break
}

// ReceiveAction applies a teacher action: the emotion delta scaled by
// 1 + sensitivity, then the forced state transition for that action kind.
// The post-intervention contagion ripple is the caller's responsibility
// since it needs the full agent set.
func (a *Agent) ReceiveAction(kind emotion.ActionKind) ActionOutcome {
	intensity := 1 + a.Traits.Sensitivity
	a.Emotion.ApplyAction(kind, intensity)

	var out ActionOutcome
	switch kind {
	case emotion.ActionYell:
		target := behavior.StateWithdrawn
		if a.Traits.Rebelliousness > 0.7 {
			target = behavior.StateArguing
		}
		out.Transition, out.Transferred = a.Machine.Force(target)
	case emotion.ActionPraise, emotion.ActionCallToBoard:
		out.Transition, out.Transferred = a.Machine.Force(behavior.StateEngaged)
	case emotion.ActionRemoveFromClass:
		a.Active = false
		out.Deactivated = true
	case emotion.ActionGiveBreak:
		out.BreakGiven = true
	}
	return out
}

// ApplyTrigger routes a situational trigger to the emotion vector.
func (a *Agent) ApplyTrigger(kind emotion.TriggerKind) {
	a.Emotion.ApplyTrigger(kind)
}

// #endregion receive-action

// #region update

// TickResult is what one per-tick update produced.
type TickResult struct {
	Transition  behavior.Transition
	Transferred bool
	Effects     []behavior.Effect
}

// Update advances the agent by dt simulated seconds: emotion decay, then
// the periodic state evaluation, then state-resident behavior. Inactive
// agents do not update; on-break agents only count down their break.
func (a *Agent) Update(dt float64) TickResult {
	if !a.Active || dt <= 0 {
		return TickResult{}
	}
	if a.OnBreak {
		a.BreakRemaining -= dt
		if a.BreakRemaining < 0 {
			a.BreakRemaining = 0
		}
		return TickResult{}
	}
	a.Emotion.Decay(a.decayRates, dt)

	var res TickResult
	res.Transition, res.Transferred = a.Machine.Advance(dt, a.Emotion, a.Traits)
	res.Effects = a.Machine.Resident(dt)
	return res
}

// Participating reports whether the agent takes part in the simulation
// this tick: active and not on break.
func (a *Agent) Participating() bool {
	return a.Active && !a.OnBreak
}

// #endregion update

// #region breaks

// StartBreak puts the agent on break for the given number of seconds and
// returns a generation token identifying this break. While on break the
// agent is excluded from metrics and cannot receive or emit contagion.
// The return is fired by the session scheduler, not by the agent; a fresh
// StartBreak supersedes any break in progress and invalidates its token.
func (a *Agent) StartBreak(seconds float64) int {
	a.OnBreak = true
	a.BreakRemaining = seconds
	a.breakSeq++
	return a.breakSeq
}

// ReturnFromBreak clears the break flag, provided gen still identifies the
// agent's current break. Stale tokens from a superseded break are ignored
// so an extended break is not cut short by the earlier deadline.
func (a *Agent) ReturnFromBreak(gen int) bool {
	if !a.OnBreak || gen != a.breakSeq {
		return false
	}
	a.OnBreak = false
	a.BreakRemaining = 0
	return true
}

// #endregion breaks

// #region snapshot

// Snapshot is the read-only view emitted to presentation layers.
type Snapshot struct {
	ID      string         `json:"agent_id"`
	Name    string         `json:"name"`
	State   behavior.State `json:"state"`
	Emotion emotion.Vector `json:"emotion"`
	OnBreak bool           `json:"on_break"`
	Active  bool           `json:"active"`
}

// Snapshot returns the agent's current externally visible state.
func (a *Agent) Snapshot() Snapshot {
	return Snapshot{
		ID:      a.ID,
		Name:    a.DisplayName,
		State:   a.Machine.State(),
		Emotion: a.Emotion,
		OnBreak: a.OnBreak,
		Active:  a.Active,
	}
}

// #endregion snapshot
