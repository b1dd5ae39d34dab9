// Package session implements the coordinating controller: it owns the
// agent registry, dispatches interventions, drives the tick loop,
// aggregates live metrics, and computes the end-of-session report.
package session

import (
	"errors"

	"github.com/kellerdav/classroom-sim/internal/behavior"
	"github.com/kellerdav/classroom-sim/internal/contagion"
	"github.com/kellerdav/classroom-sim/internal/emotion"
)

// #region errors

var (
	// ErrInvalidTarget means the dispatched action referenced an agent id
	// not present in the active set. The action is dropped, never
	// partially applied.
	ErrInvalidTarget = errors.New("invalid target agent")
	// ErrSessionEnded means the session already produced its report.
	ErrSessionEnded = errors.New("session already ended")
)

// #endregion errors

// #region config

// Config bundles every tuning knob of the simulation core.
type Config struct {
	// BreakSeconds is how long a GiveBreak keeps the agent out.
	BreakSeconds float64 `toml:"break_seconds"`
	// InterventionRipple is the fixed contagion intensity applied after
	// every direct intervention, independent of action kind.
	InterventionRipple float64 `toml:"intervention_ripple"`
	// ProviderConfidence is the minimum confidence at which an external
	// decision overrides the rule engine.
	ProviderConfidence float64 `toml:"provider_confidence"`

	Decay     emotion.DecayRates `toml:"decay"`
	Behavior  behavior.Config    `toml:"behavior"`
	Contagion contagion.Config   `toml:"contagion"`
}

// DefaultConfig returns the tuned baseline configuration.
func DefaultConfig() Config {
	return Config{
		BreakSeconds:       120,
		InterventionRipple: 0.3,
		ProviderConfidence: 0.5,
		Decay:              emotion.DefaultDecayRates(),
		Behavior:           behavior.DefaultConfig(),
		Contagion:          contagion.DefaultConfig(),
	}
}

// #endregion config

// #region metrics

// Metrics is the live view recomputed each tick.
type Metrics struct {
	// Engagement is attentive agents over participating agents, in
	// [0, 1]. When nobody participates it holds its last computed value.
	Engagement float64
	// Disruptions is the number of participating agents currently in a
	// disruptive state.
	Disruptions int
	// DisruptionEvents is the cumulative count of escalation signals.
	DisruptionEvents int
	// Participating is the number of active, non-break agents.
	Participating int
}

// #endregion metrics
