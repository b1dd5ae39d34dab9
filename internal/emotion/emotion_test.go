package emotion

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestDecay_DriftDirections(t *testing.T) {
	v := Vector{Happiness: 5, Sadness: 5, Frustration: 5, Boredom: 5, Anger: 5}
	rates := DefaultDecayRates()

	v.Decay(rates, 10)

	if !almostEqual(v.Happiness, 4.9) {
		t.Errorf("happiness: got %v, want 4.9", v.Happiness)
	}
	if !almostEqual(v.Sadness, 4.85) {
		t.Errorf("sadness: got %v, want 4.85", v.Sadness)
	}
	if !almostEqual(v.Frustration, 4.8) {
		t.Errorf("frustration: got %v, want 4.8", v.Frustration)
	}
	if !almostEqual(v.Anger, 4.75) {
		t.Errorf("anger: got %v, want 4.75", v.Anger)
	}
	if !almostEqual(v.Boredom, 5.2) {
		t.Errorf("boredom: got %v, want 5.2", v.Boredom)
	}
}

func TestDecay_NoOvershoot(t *testing.T) {
	v := Vector{Happiness: 1.001, Sadness: 1.001, Frustration: 1.001, Boredom: 9.999, Anger: 1.001}
	v.Decay(DefaultDecayRates(), 1000)

	if v.Happiness != Floor || v.Sadness != Floor || v.Frustration != Floor || v.Anger != Floor {
		t.Errorf("negative dims did not settle at floor: %+v", v)
	}
	if v.Boredom != Ceiling {
		t.Errorf("boredom did not settle at ceiling: %v", v.Boredom)
	}

	// Once settled, further decay must not move anything.
	before := v
	v.Decay(DefaultDecayRates(), 50)
	if v != before {
		t.Errorf("decay moved a settled vector: %+v -> %+v", before, v)
	}
}

func TestDecay_NonPositiveDT(t *testing.T) {
	v := Vector{Happiness: 5, Sadness: 5, Frustration: 5, Boredom: 5, Anger: 5}
	before := v
	v.Decay(DefaultDecayRates(), 0)
	v.Decay(DefaultDecayRates(), -3)
	if v != before {
		t.Errorf("decay with dt<=0 mutated vector: %+v", v)
	}
}

func TestDecay_Monotonic(t *testing.T) {
	v := Vector{Happiness: 8, Sadness: 8, Frustration: 8, Boredom: 2, Anger: 8}
	rates := DefaultDecayRates()
	prev := v
	for i := 0; i < 500; i++ {
		v.Decay(rates, 1)
		if v.Happiness > prev.Happiness || v.Sadness > prev.Sadness ||
			v.Frustration > prev.Frustration || v.Anger > prev.Anger {
			t.Fatalf("negative dim increased during decay at step %d: %+v", i, v)
		}
		if v.Boredom < prev.Boredom {
			t.Fatalf("boredom decreased during decay at step %d: %+v", i, v)
		}
		prev = v
	}
}

func TestApplyAction_DeltaTable(t *testing.T) {
	tests := []struct {
		name      string
		kind      ActionKind
		intensity float64
		want      Vector
	}{
		{"yell-unit", ActionYell, 1, Vector{Happiness: 5, Sadness: 6, Frustration: 5.5, Boredom: 5, Anger: 7}},
		{"praise-unit", ActionPraise, 1, Vector{Happiness: 7, Sadness: 4, Frustration: 5, Boredom: 4.5, Anger: 5}},
		{"praise-scaled", ActionPraise, 1.5, Vector{Happiness: 8, Sadness: 3.5, Frustration: 5, Boredom: 4.25, Anger: 5}},
		{"call-to-board", ActionCallToBoard, 1, Vector{Happiness: 5, Sadness: 6.5, Frustration: 5, Boredom: 3, Anger: 5}},
		{"remove", ActionRemoveFromClass, 1, Vector{Happiness: 5, Sadness: 7, Frustration: 7, Boredom: 5, Anger: 8}},
		{"give-break", ActionGiveBreak, 1, Vector{Happiness: 5, Sadness: 5, Frustration: 3, Boredom: 2, Anger: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Vector{Happiness: 5, Sadness: 5, Frustration: 5, Boredom: 5, Anger: 5}
			v.ApplyAction(tt.kind, tt.intensity)
			if v != tt.want {
				t.Errorf("got %+v, want %+v", v, tt.want)
			}
		})
	}
}

func TestApply_ClampInvariant(t *testing.T) {
	v := Vector{Happiness: 5, Sadness: 5, Frustration: 5, Boredom: 5, Anger: 5}

	// Arbitrary hostile sequence: every field must stay in range after
	// every mutation.
	kinds := []ActionKind{
		ActionYell, ActionYell, ActionYell, ActionRemoveFromClass,
		ActionPraise, ActionPraise, ActionPraise, ActionPraise,
		ActionGiveBreak, ActionGiveBreak, ActionIgnore, ActionIgnore,
	}
	triggers := []TriggerKind{
		TriggerPeerConflict, TriggerPeerConflict, TriggerWrongAnswerPublic,
		TriggerSuccessfulContribution, TriggerLongPassiveActivity,
	}

	check := func(step string) {
		for name, f := range map[string]float64{
			"happiness": v.Happiness, "sadness": v.Sadness,
			"frustration": v.Frustration, "boredom": v.Boredom, "anger": v.Anger,
		} {
			if f < Floor || f > Ceiling {
				t.Fatalf("%s: %s out of range: %v", step, name, f)
			}
		}
	}

	for _, k := range kinds {
		v.ApplyAction(k, 2.0)
		check(string(k))
	}
	for _, tr := range triggers {
		v.ApplyTrigger(tr)
		check(string(tr))
	}
	v.Decay(DefaultDecayRates(), 3600)
	check("decay")
}

func TestOverallMood(t *testing.T) {
	v := Vector{Happiness: 8, Sadness: 2, Frustration: 2, Boredom: 4, Anger: 2}
	want := 8.0 - (2.0+2.0+4.0+2.0)/4
	if got := v.OverallMood(); !almostEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestIsCritical(t *testing.T) {
	tests := []struct {
		name string
		v    Vector
		want bool
	}{
		{"calm", Vector{Happiness: 5, Sadness: 5, Frustration: 5, Boredom: 5, Anger: 5}, false},
		{"angry", Vector{Happiness: 1, Sadness: 1, Frustration: 1, Boredom: 1, Anger: 8}, true},
		{"sad", Vector{Happiness: 1, Sadness: 8.5, Frustration: 1, Boredom: 1, Anger: 1}, true},
		{"frustrated", Vector{Happiness: 1, Sadness: 1, Frustration: 9, Boredom: 1, Anger: 1}, true},
		{"bored-only", Vector{Happiness: 1, Sadness: 1, Frustration: 1, Boredom: 10, Anger: 1}, false},
		{"just-below", Vector{Happiness: 1, Sadness: 7.99, Frustration: 7.99, Boredom: 1, Anger: 7.99}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.IsCritical(); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
