package session

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/kellerdav/classroom-sim/internal/agent"
	"github.com/kellerdav/classroom-sim/internal/behavior"
	"github.com/kellerdav/classroom-sim/internal/contagion"
	"github.com/kellerdav/classroom-sim/internal/emotion"
	"github.com/kellerdav/classroom-sim/internal/events"
	"github.com/kellerdav/classroom-sim/internal/provider"
	"github.com/kellerdav/classroom-sim/internal/report"
	"github.com/kellerdav/classroom-sim/internal/scenario"
	"github.com/kellerdav/classroom-sim/internal/schedule"
)

// #region controller

// Controller owns the agent registry, the action log, and the session
// clock. All mutation of agents goes through DispatchAction, Tick, and
// EndSession; agents are updated synchronously in registration order so
// runs with the same seed and script are reproducible.
type Controller struct {
	config Config

	sessionID string
	scenario  string
	startTime time.Time
	clock     float64 // simulated seconds
	rng       *rand.Rand

	agents []*agent.Agent // registration order, the iteration order
	byID   map[string]*agent.Agent

	contagion *contagion.Model
	sched     *schedule.Scheduler
	outbox    *events.Queue

	record   report.SessionRecord
	positive int
	negative int

	engagement        float64
	engagementSum     float64
	engagementSamples int
	disruptionGauge   int
	disruptionEvents  int

	store   *report.Store   // optional persistence
	decider *provider.Async // optional external decision source

	finalReport *report.SessionReport
}

// NewController builds a session from a validated scenario. Structural
// invariant violations (no agents, duplicate ids) are returned as errors;
// the simulation cannot meaningfully run with them and mains treat them
// as fatal.
func NewController(sc scenario.Scenario, config Config) (*Controller, error) {
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}

	c := &Controller{
		config:    config,
		sessionID: uuid.New().String(),
		scenario:  sc.Name,
		startTime: time.Now().UTC(),
		rng:       rand.New(rand.NewSource(sc.Seed)),
		byID:      make(map[string]*agent.Agent, len(sc.Agents)),
		contagion: contagion.NewModel(config.Contagion),
		sched:     schedule.NewScheduler(),
		outbox:    events.NewQueue(),
	}
	c.record = report.SessionRecord{
		SessionID: c.sessionID,
		Scenario:  sc.Name,
		StartTime: c.startTime,
	}

	for _, p := range sc.Agents {
		a := agent.New(p, config.Behavior, config.Decay, c.rng)
		c.agents = append(c.agents, a)
		c.byID[a.ID] = a
	}
	c.contagion.Rebuild(c.agents)
	c.recomputeMetrics()

	log.Printf("[SESSION] %s started: scenario=%q agents=%d seed=%d",
		c.sessionID, sc.Name, len(c.agents), sc.Seed)
	return c, nil
}

// AttachStore enables SQLite persistence of the session, its action log,
// and the final report. Must be called before the first dispatch.
func (c *Controller) AttachStore(store *report.Store) error {
	if err := store.CreateSession(c.sessionID, c.scenario, c.startTime); err != nil {
		return fmt.Errorf("attach store: %w", err)
	}
	c.store = store
	return nil
}

// AttachProvider plugs in an external decision source. The rule engine
// remains the fallback for every decision.
func (c *Controller) AttachProvider(decider *provider.Async) {
	c.decider = decider
}

// SessionID returns the session's unique id.
func (c *Controller) SessionID() string { return c.sessionID }

// Clock returns the simulated time in seconds.
func (c *Controller) Clock() float64 { return c.clock }

// Agent returns the agent with the given id, or nil.
func (c *Controller) Agent(id string) *agent.Agent { return c.byID[id] }

// Snapshots returns read-only views of every agent in registration order.
func (c *Controller) Snapshots() []agent.Snapshot {
	out := make([]agent.Snapshot, len(c.agents))
	for i, a := range c.agents {
		out[i] = a.Snapshot()
	}
	return out
}

// Record returns a copy of the session record, including the action log.
func (c *Controller) Record() report.SessionRecord {
	rec := c.record
	rec.Actions = append([]report.TeacherAction(nil), c.record.Actions...)
	return rec
}

// Events drains the outbound event queue. Called once per tick by the
// embedding layer.
func (c *Controller) Events() []events.Event {
	return c.outbox.Drain()
}

// Metrics returns the current live metrics.
func (c *Controller) Metrics() Metrics {
	return Metrics{
		Engagement:       c.engagement,
		Disruptions:      c.disruptionGauge,
		DisruptionEvents: c.disruptionEvents,
		Participating:    c.participating(),
	}
}

// #endregion controller

// #region dispatch

// DispatchAction applies a teacher action to one agent (targetID set) or
// every participating agent (targetID empty). The action is appended to
// the session log before any agent sees it; an invalid target drops the
// action entirely.
func (c *Controller) DispatchAction(kind emotion.ActionKind, targetID, contextLabel string) (report.TeacherAction, error) {
	if c.finalReport != nil {
		return report.TeacherAction{}, ErrSessionEnded
	}

	var targets []*agent.Agent
	if targetID != "" {
		target, ok := c.byID[targetID]
		if !ok || !target.Active {
			log.Printf("[SESSION] drop %s: %v: %q", kind, ErrInvalidTarget, targetID)
			c.outbox.Publish(events.Event{
				Type:    events.TypeActionDropped,
				AgentID: targetID,
				Reason:  ErrInvalidTarget.Error(),
				SimTime: c.clock,
			})
			return report.TeacherAction{}, fmt.Errorf("%w: %q", ErrInvalidTarget, targetID)
		}
		targets = append(targets, target)
	} else {
		for _, a := range c.agents {
			if a.Participating() {
				targets = append(targets, a)
			}
		}
	}

	action := report.TeacherAction{
		ID:           uuid.New().String(),
		Kind:         kind,
		TargetID:     targetID,
		ContextLabel: contextLabel,
		SimTime:      c.clock,
		Timestamp:    time.Now().UTC(),
	}
	c.record.Actions = append(c.record.Actions, action)
	if c.store != nil {
		if err := c.store.AppendAction(c.sessionID, action); err != nil {
			log.Printf("[SESSION] persist action: %v", err)
		}
	}

	switch kind {
	case emotion.ActionPraise, emotion.ActionPositiveReinforcement:
		c.positive++
	case emotion.ActionYell, emotion.ActionRemoveFromClass:
		c.negative++
	}

	for _, target := range targets {
		c.applyToAgent(target, kind)
	}
	c.recomputeMetrics()
	return action, nil
}

// applyToAgent runs one agent's intervention path: emotion delta, forced
// transition, break scheduling, then the fixed-intensity contagion ripple.
func (c *Controller) applyToAgent(a *agent.Agent, kind emotion.ActionKind) {
	out := a.ReceiveAction(kind)
	if out.Transferred {
		c.publishTransition(a.ID, out.Transition)
	}
	if out.Deactivated {
		log.Printf("[SESSION] agent %s removed from class", a.ID)
	}
	if out.BreakGiven {
		c.startBreak(a)
	}
	// Every direct intervention ripples to neighbors at a fixed
	// intensity, independent of the action kind. Removed and on-break
	// agents cannot emit.
	c.contagion.Propagate(a, c.config.InterventionRipple, c.lookup)
}

// startBreak flags the agent and schedules its return on the deadline
// scheduler; the controller fires it from Tick, never from a wall timer.
// The generation token keeps a re-issued break from being cut short by
// the superseded break's earlier deadline.
func (c *Controller) startBreak(a *agent.Agent) {
	gen := a.StartBreak(c.config.BreakSeconds)
	returnAt := c.clock + c.config.BreakSeconds
	c.sched.At(returnAt, func() {
		if a.ReturnFromBreak(gen) {
			log.Printf("[SESSION] agent %s returned from break", a.ID)
		}
	})
}

// DispatchAfter schedules an action to dispatch once the simulation clock
// reaches clock+delay.
func (c *Controller) DispatchAfter(delay float64, kind emotion.ActionKind, targetID, contextLabel string) {
	c.sched.At(c.clock+delay, func() {
		if _, err := c.DispatchAction(kind, targetID, contextLabel); err != nil {
			log.Printf("[SESSION] scheduled %s dropped: %v", kind, err)
		}
	})
}

// SwapSeats exchanges two agents' positions and routes a ChangeSeating
// action through the normal intervention path for each, so the emotional
// side effects match any other intervention.
func (c *Controller) SwapSeats(idA, idB string) error {
	a, okA := c.byID[idA]
	b, okB := c.byID[idB]
	if !okA || !a.Active {
		return fmt.Errorf("%w: %q", ErrInvalidTarget, idA)
	}
	if !okB || !b.Active {
		return fmt.Errorf("%w: %q", ErrInvalidTarget, idB)
	}
	a.Position, b.Position = b.Position, a.Position
	if _, err := c.DispatchAction(emotion.ActionChangeSeating, idA, "seat swap"); err != nil {
		return err
	}
	if _, err := c.DispatchAction(emotion.ActionChangeSeating, idB, "seat swap"); err != nil {
		return err
	}
	return nil
}

// #endregion dispatch

// #region tick

// Tick advances the simulation by dt seconds: due scheduler callbacks
// fire, the contagion index ages, every participating agent updates in
// registration order, and live metrics are recomputed. Ticking an ended
// session is a no-op.
func (c *Controller) Tick(dt float64) {
	if dt <= 0 || c.finalReport != nil {
		return
	}
	c.clock += dt

	c.sched.Fire(c.clock)
	if c.decider != nil {
		c.decider.Expire(c.clock)
	}
	c.contagion.Advance(dt, c.agents)

	for _, a := range c.agents {
		if !a.Active {
			continue
		}
		if a.Participating() {
			c.consultProvider(a)
		}

		res := a.Update(dt)
		if res.Transferred {
			c.publishTransition(a.ID, res.Transition)
		}
		for _, effect := range res.Effects {
			c.applyEffect(a, effect)
		}
	}

	c.recomputeMetrics()
}

// consultProvider applies a cached external decision when one is
// available for the agent's current situation and confident enough.
// Misses kick off a background request; the rule engine covers this tick
// either way.
func (c *Controller) consultProvider(a *agent.Agent) {
	if c.decider == nil {
		return
	}
	ac := provider.AgentContext{
		AgentID:     a.ID,
		State:       a.Machine.State(),
		Emotion:     a.Emotion,
		Traits:      a.Traits,
		SessionTime: c.clock,
	}
	decision, ok := c.decider.Poll(ac, c.clock)
	if !ok || decision.Confidence < c.config.ProviderConfidence {
		return
	}
	// A decision outside the state enum is a malformed response; the rule
	// engine covers this evaluation.
	if !decision.NewState.Known() {
		log.Printf("[SESSION] provider proposed unknown state %q for %s, rule engine covers",
			decision.NewState, a.ID)
		return
	}
	if tr, changed := a.Machine.Force(decision.NewState); changed {
		log.Printf("[SESSION] provider moved %s to %s (confidence %.2f)",
			a.ID, decision.NewState, decision.Confidence)
		c.publishTransition(a.ID, tr)
	}
}

// applyEffect executes one state-resident side effect.
func (c *Controller) applyEffect(a *agent.Agent, effect behavior.Effect) {
	switch effect.Kind {
	case behavior.EffectTrigger:
		a.Emotion.Apply(emotion.TriggerDelta(effect.Trigger).Scale(effect.Scale))
	case behavior.EffectNudge:
		a.Emotion.Apply(effect.Delta)
	case behavior.EffectContagion:
		c.contagion.Propagate(a, effect.Intensity, c.lookup)
	case behavior.EffectDisruption:
		c.disruptionEvents++
		c.outbox.Publish(events.Event{
			Type:    events.TypeDisruption,
			AgentID: a.ID,
			SimTime: c.clock,
		})
	case behavior.EffectHandRaised:
		c.outbox.Publish(events.Event{
			Type:    events.TypeHandRaised,
			AgentID: a.ID,
			SimTime: c.clock,
		})
	}
}

// recomputeMetrics refreshes the live engagement ratio and disruption
// gauge. With zero participating agents the previous engagement value is
// kept, and no average sample is taken, so an all-on-break moment does
// not flash 0% engagement.
func (c *Controller) recomputeMetrics() {
	var participating, attentive, disruptive int
	for _, a := range c.agents {
		if !a.Participating() {
			continue
		}
		participating++
		state := a.Machine.State()
		if state.Attentive() {
			attentive++
		}
		if state.Disruptive() {
			disruptive++
		}
	}
	c.disruptionGauge = disruptive
	if participating == 0 {
		return
	}
	c.engagement = float64(attentive) / float64(participating)
	c.engagementSum += c.engagement
	c.engagementSamples++
}

func (c *Controller) participating() int {
	n := 0
	for _, a := range c.agents {
		if a.Participating() {
			n++
		}
	}
	return n
}

func (c *Controller) lookup(id string) *agent.Agent {
	return c.byID[id]
}

func (c *Controller) publishTransition(agentID string, tr behavior.Transition) {
	c.outbox.Publish(events.Event{
		Type:    events.TypeStateTransition,
		AgentID: agentID,
		From:    tr.From,
		To:      tr.To,
		SimTime: c.clock,
	})
}

// #endregion tick

// #region end-session

// EndSession computes the final report. The first call computes and, when
// a store is attached, persists it; every later call returns the cached
// report unchanged.
func (c *Controller) EndSession() report.SessionReport {
	if c.finalReport != nil {
		log.Printf("[SESSION] %s end requested again, returning cached report", c.sessionID)
		return *c.finalReport
	}

	endTime := time.Now().UTC()
	c.record.EndTime = endTime
	c.record.Ended = true

	average := c.engagement
	if c.engagementSamples > 0 {
		average = c.engagementSum / float64(c.engagementSamples)
	}
	total := len(c.record.Actions)

	rep := report.SessionReport{
		SessionID:         c.sessionID,
		StartTime:         c.startTime,
		EndTime:           endTime,
		TotalActions:      total,
		PositiveActions:   c.positive,
		NegativeActions:   c.negative,
		AverageEngagement: average,
		TotalDisruptions:  c.disruptionEvents,
		Score:             report.Score(average, c.disruptionEvents, c.positive, c.negative, total),
	}
	c.finalReport = &rep

	if c.store != nil {
		if err := c.store.FinishSession(rep); err != nil {
			log.Printf("[SESSION] persist report: %v", err)
		}
	}
	log.Printf("[SESSION] %s ended: actions=%d engagement=%.2f disruptions=%d score=%.1f",
		c.sessionID, rep.TotalActions, rep.AverageEngagement, rep.TotalDisruptions, rep.Score)
	return rep
}

// Ended reports whether the session has produced its report.
func (c *Controller) Ended() bool {
	return c.finalReport != nil
}

// #endregion end-session
