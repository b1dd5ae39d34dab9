package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kellerdav/classroom-sim/internal/behavior"
	"github.com/kellerdav/classroom-sim/internal/emotion"
)

// #region fakes

type fakeDecider struct {
	decision StateDecision
	err      error
	calls    atomic.Int64
}

func (f *fakeDecider) DecideStateTransition(_ context.Context, _ AgentContext) (StateDecision, error) {
	f.calls.Add(1)
	return f.decision, f.err
}

func (f *fakeDecider) GenerateInteraction(_ context.Context, _ AgentContext) (Interaction, error) {
	return Interaction{}, f.err
}

// #endregion fakes

func testContext() AgentContext {
	return AgentContext{
		AgentID: "s1",
		State:   behavior.StateListening,
		Emotion: emotion.Vector{Happiness: 5, Sadness: 2, Frustration: 2, Boredom: 3, Anger: 1},
	}
}

// pollUntil polls repeatedly until the background fetch lands or the
// deadline passes.
func pollUntil(t *testing.T, a *Async, ac AgentContext, now float64) (StateDecision, bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if d, ok := a.Poll(ac, now); ok {
			return d, true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return StateDecision{}, false
}

func TestAsync_MissThenHit(t *testing.T) {
	fake := &fakeDecider{decision: StateDecision{NewState: behavior.StateEngaged, Confidence: 0.9}}
	a := NewAsync(fake, time.Second, 1.0)

	if _, ok := a.Poll(testContext(), 0); ok {
		t.Fatal("first poll must miss")
	}
	d, ok := pollUntil(t, a, testContext(), 0)
	if !ok {
		t.Fatal("background result never landed")
	}
	if d.NewState != behavior.StateEngaged || d.Confidence != 0.9 {
		t.Errorf("got %+v", d)
	}
}

func TestAsync_FingerprintMismatchDiscards(t *testing.T) {
	fake := &fakeDecider{decision: StateDecision{NewState: behavior.StateEngaged, Confidence: 0.9}}
	a := NewAsync(fake, time.Second, 10.0)

	ac := testContext()
	if _, ok := pollUntil(t, a, ac, 0); !ok {
		t.Fatal("seed fetch failed")
	}

	// The agent's situation changed materially: cached decision must not
	// surface for the new fingerprint.
	changed := ac
	changed.Emotion.Anger = 9
	if _, ok := a.Poll(changed, 0); ok {
		t.Error("stale decision returned for changed fingerprint")
	}
}

func TestAsync_TTLExpiry(t *testing.T) {
	fake := &fakeDecider{decision: StateDecision{NewState: behavior.StateEngaged, Confidence: 0.9}}
	a := NewAsync(fake, time.Second, 1.0)

	ac := testContext()
	if _, ok := pollUntil(t, a, ac, 0); !ok {
		t.Fatal("seed fetch failed")
	}
	// Within TTL: hit. Past TTL: miss (and re-request).
	if _, ok := a.Poll(ac, 0.5); !ok {
		t.Error("decision expired before TTL")
	}
	a.Expire(2.0)
	if d, ok := a.Poll(ac, 2.0); ok {
		t.Errorf("decision survived TTL: %+v", d)
	}
}

func TestAsync_FailureFallsBack(t *testing.T) {
	fake := &fakeDecider{err: errors.New("unreachable")}
	a := NewAsync(fake, 50*time.Millisecond, 1.0)

	ac := testContext()
	a.Poll(ac, 0)
	time.Sleep(100 * time.Millisecond)
	if _, ok := a.Poll(ac, 0); ok {
		t.Error("failed request produced a cached decision")
	}
	// The second poll should have issued a fresh request after the
	// failure cleared the inflight mark.
	time.Sleep(100 * time.Millisecond)
	if fake.calls.Load() < 2 {
		t.Errorf("expected re-request after failure, got %d calls", fake.calls.Load())
	}
}

func TestFingerprint_RoundsEmotion(t *testing.T) {
	a := testContext()
	b := testContext()
	b.Emotion.Happiness = 5.3 // rounds to the same whole point
	if a.Fingerprint() != b.Fingerprint() {
		t.Errorf("small drift changed fingerprint: %q vs %q", a.Fingerprint(), b.Fingerprint())
	}
	b.Emotion.Happiness = 7.8
	if a.Fingerprint() == b.Fingerprint() {
		t.Error("material shift kept fingerprint stable")
	}
}

func TestHTTPDecider_Decide(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/decide" {
			http.NotFound(w, r)
			return
		}
		var ac AgentContext
		if err := json.NewDecoder(r.Body).Decode(&ac); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(StateDecision{NewState: behavior.StateWithdrawn, Confidence: 0.6})
	}))
	defer srv.Close()

	d := NewHTTPDecider(srv.URL, "test-key")
	got, err := d.DecideStateTransition(context.Background(), testContext())
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if got.NewState != behavior.StateWithdrawn || got.Confidence != 0.6 {
		t.Errorf("got %+v", got)
	}
}

func TestHTTPDecider_RetriesServerErrors(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(StateDecision{NewState: behavior.StateListening, Confidence: 0.5})
	}))
	defer srv.Close()

	d := NewHTTPDecider(srv.URL, "")
	got, err := d.DecideStateTransition(context.Background(), testContext())
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if got.NewState != behavior.StateListening {
		t.Errorf("got %+v", got)
	}
	if hits.Load() != 2 {
		t.Errorf("got %d attempts, want 2", hits.Load())
	}
}

func TestHTTPDecider_MalformedStateRejected(t *testing.T) {
	cases := []struct {
		name string
		body map[string]any
	}{
		{"empty state", map[string]any{"confidence": 0.4}},
		{"unknown state", map[string]any{"new_state": "confused", "confidence": 0.99}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(tc.body)
			}))
			defer srv.Close()

			d := NewHTTPDecider(srv.URL, "")
			if _, err := d.DecideStateTransition(context.Background(), testContext()); err == nil {
				t.Fatal("expected error for malformed response")
			}
		})
	}
}
