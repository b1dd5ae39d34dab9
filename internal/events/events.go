// Package events is the outbound event queue between the simulation core
// and any presentation layer. Events are appended during a tick and
// drained once per tick by the embedder; the core never calls back into
// consumers.
package events

import "github.com/kellerdav/classroom-sim/internal/behavior"

// #region event

// Type classifies an outbound event.
type Type string

const (
	TypeStateTransition Type = "state_transition"
	TypeDisruption      Type = "disruption"
	TypeHandRaised      Type = "hand_raised"
	TypeActionDropped   Type = "action_dropped"
)

// Event is one discrete notification. From/To are set only for state
// transitions; Reason only for dropped actions.
type Event struct {
	Type    Type           `json:"type"`
	AgentID string         `json:"agent_id"`
	From    behavior.State `json:"from,omitempty"`
	To      behavior.State `json:"to,omitempty"`
	Reason  string         `json:"reason,omitempty"`
	SimTime float64        `json:"sim_time"`
}

// #endregion event

// #region queue

// Queue is a slice-backed outbox. Not safe for concurrent use; the
// simulation is single-threaded by design.
type Queue struct {
	pending []Event
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Publish appends an event.
func (q *Queue) Publish(e Event) {
	q.pending = append(q.pending, e)
}

// Drain returns all pending events in publish order and empties the queue.
func (q *Queue) Drain() []Event {
	out := q.pending
	q.pending = nil
	return out
}

// Len returns the number of undrained events.
func (q *Queue) Len() int {
	return len(q.pending)
}

// #endregion queue
