package provider

import (
	"context"
	"log"
	"sync"
	"time"
)

// #region async

// Async wraps a Decider with a fingerprint-keyed result cache so the tick
// loop can consult provider decisions without ever waiting on I/O. Poll
// returns only results whose fingerprint still matches the agent's
// current situation; anything else is treated as a miss, which is the
// cancellation model for in-flight requests (a late result for a changed
// agent is simply never looked up again and ages out).
type Async struct {
	decider Decider
	timeout time.Duration
	ttl     float64 // simulated seconds a cached decision stays valid

	mu       sync.Mutex
	cache    map[string]cachedDecision
	inflight map[string]bool
}

type cachedDecision struct {
	decision  StateDecision
	expiresAt float64 // simulated seconds
}

// NewAsync wraps decider. ttl is in simulated seconds; the conventional
// value is 1.
func NewAsync(decider Decider, timeout time.Duration, ttl float64) *Async {
	return &Async{
		decider:  decider,
		timeout:  timeout,
		ttl:      ttl,
		cache:    make(map[string]cachedDecision),
		inflight: make(map[string]bool),
	}
}

// #endregion async

// #region poll

// Poll returns a cached, unexpired decision for the agent's current
// fingerprint. On a miss it kicks off a background request (unless one is
// already in flight) and returns false; the rule engine handles this
// evaluation and the provider's answer, if any, applies on a later tick.
func (a *Async) Poll(ac AgentContext, now float64) (StateDecision, bool) {
	fp := ac.Fingerprint()

	a.mu.Lock()
	if entry, ok := a.cache[fp]; ok && now < entry.expiresAt {
		a.mu.Unlock()
		return entry.decision, true
	}
	if a.inflight[fp] {
		a.mu.Unlock()
		return StateDecision{}, false
	}
	a.inflight[fp] = true
	a.mu.Unlock()

	go a.fetch(fp, ac, now)
	return StateDecision{}, false
}

// fetch runs one provider request and stores the result. Failures are
// logged and dropped; the rule engine already covered this decision.
func (a *Async) fetch(fp string, ac AgentContext, now float64) {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	decision, err := a.decider.DecideStateTransition(ctx, ac)

	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.inflight, fp)
	if err != nil {
		log.Printf("[PROVIDER] decide %s failed, rule engine covers: %v", ac.AgentID, err)
		return
	}
	a.cache[fp] = cachedDecision{decision: decision, expiresAt: now + a.ttl}
}

// Expire drops cache entries whose TTL has passed. Called once per tick.
func (a *Async) Expire(now float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for fp, entry := range a.cache {
		if now >= entry.expiresAt {
			delete(a.cache, fp)
		}
	}
}

// #endregion poll
