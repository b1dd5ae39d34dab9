// Package provider defines the optional external decision source. It
// implements the same two decision contracts as the rule engine; the
// rule-based versions remain the default and the simulation must stay
// fully functional with no provider attached. Provider calls never block
// a tick: requests are issued in the background and results are applied
// on a later tick if the agent's situation still matches.
package provider

import (
	"context"
	"fmt"
	"math"

	"github.com/kellerdav/classroom-sim/internal/behavior"
	"github.com/kellerdav/classroom-sim/internal/emotion"
)

// #region agent-context

// AgentContext is the decision input snapshot for one agent.
type AgentContext struct {
	AgentID     string          `json:"agent_id"`
	State       behavior.State  `json:"state"`
	Emotion     emotion.Vector  `json:"emotion"`
	Traits      behavior.Traits `json:"traits"`
	SessionTime float64         `json:"session_time"`
}

// Fingerprint identifies the agent's situation coarsely enough that a
// decision computed a moment ago still applies. Emotion dimensions are
// rounded to whole points; a material emotional shift changes the
// fingerprint and invalidates any late-arriving decision.
func (ac AgentContext) Fingerprint() string {
	e := ac.Emotion
	return fmt.Sprintf("%s|%s|%g:%g:%g:%g:%g",
		ac.AgentID, ac.State,
		math.Round(e.Happiness), math.Round(e.Sadness), math.Round(e.Frustration),
		math.Round(e.Boredom), math.Round(e.Anger))
}

// #endregion agent-context

// #region decisions

// StateDecision is a proposed behavioral transition.
type StateDecision struct {
	NewState   behavior.State `json:"new_state"`
	Confidence float64        `json:"confidence"`
}

// Interaction is a generated agent utterance or gesture for the
// presentation layer.
type Interaction struct {
	Type     string `json:"type"`
	Content  string `json:"content"`
	Priority int    `json:"priority"`
}

// #endregion decisions

// #region decider

// Decider is the capability interface an external decision source
// implements. Both methods may be slow; callers go through Async so the
// tick loop never waits on them.
type Decider interface {
	DecideStateTransition(ctx context.Context, ac AgentContext) (StateDecision, error)
	GenerateInteraction(ctx context.Context, ac AgentContext) (Interaction, error)
}

// #endregion decider
