// Package report holds the session's persisted surface: the append-only
// teacher-action log, the session record, and the end-of-session report
// consumed by history and leaderboard views.
package report

import (
	"time"

	"github.com/kellerdav/classroom-sim/internal/emotion"
)

// #region teacher-action

// TeacherAction is one intervention as recorded in the action log.
// Immutable once constructed; the log is append-only.
type TeacherAction struct {
	ID           string             `json:"id"`
	Kind         emotion.ActionKind `json:"kind"`
	TargetID     string             `json:"target_id,omitempty"` // empty means class-wide
	ContextLabel string             `json:"context_label,omitempty"`
	SimTime      float64            `json:"sim_time"`
	Timestamp    time.Time          `json:"timestamp"`
}

// ClassWide reports whether the action targets every active agent.
func (a TeacherAction) ClassWide() bool {
	return a.TargetID == ""
}

// #endregion teacher-action

// #region session-record

// SessionRecord tracks one session's identity and its ordered action log.
type SessionRecord struct {
	SessionID string          `json:"session_id"`
	Scenario  string          `json:"scenario"`
	StartTime time.Time       `json:"start_time"`
	EndTime   time.Time       `json:"end_time,omitzero"`
	Ended     bool            `json:"ended"`
	Actions   []TeacherAction `json:"actions"`
}

// #endregion session-record

// #region session-report

// SessionReport is the immutable summary computed once at session end.
// Field names and types are the stable export contract.
type SessionReport struct {
	SessionID         string    `json:"session_id"`
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	TotalActions      int       `json:"total_actions"`
	PositiveActions   int       `json:"positive_actions"`
	NegativeActions   int       `json:"negative_actions"`
	AverageEngagement float64   `json:"average_engagement"` // 0..1
	TotalDisruptions  int       `json:"total_disruptions"`
	Score             float64   `json:"score"` // 0..100
}

// #endregion session-report

// #region score

// Score computes the session score from its components:
// a clamped engagement term, a disruption penalty with a floor of zero, a
// fixed bonus for net-positive intervention style, and a fixed bonus for
// restraint in total action count.
func Score(averageEngagement float64, disruptions, positive, negative, totalActions int) float64 {
	engagement := averageEngagement * 40
	if engagement < 0 {
		engagement = 0
	}
	if engagement > 40 {
		engagement = 40
	}

	disruption := 30 - float64(disruptions)*2
	if disruption < 0 {
		disruption = 0
	}

	style := 10.0
	if positive > negative {
		style = 20.0
	}

	restraint := 5.0
	if totalActions < 50 {
		restraint = 10.0
	}

	return engagement + disruption + style + restraint
}

// #endregion score
