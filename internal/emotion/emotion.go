package emotion

// #region decay

// Decay drifts the vector toward its resting values: happiness, sadness,
// frustration and anger toward Floor, boredom toward Ceiling. dt is in
// simulated seconds; dt <= 0 is a no-op.
func (v *Vector) Decay(rates DecayRates, dt float64) {
	if dt <= 0 {
		return
	}
	v.Happiness = decayToward(v.Happiness, Floor, rates.Happiness*dt)
	v.Sadness = decayToward(v.Sadness, Floor, rates.Sadness*dt)
	v.Frustration = decayToward(v.Frustration, Floor, rates.Frustration*dt)
	v.Anger = decayToward(v.Anger, Floor, rates.Anger*dt)
	v.Boredom = decayToward(v.Boredom, Ceiling, rates.BoredomGrowth*dt)
}

// decayToward moves value by step toward target without overshooting.
func decayToward(value, target, step float64) float64 {
	switch {
	case value > target:
		value -= step
		if value < target {
			value = target
		}
	case value < target:
		value += step
		if value > target {
			value = target
		}
	}
	return value
}

// #endregion decay

// #region apply

// ApplyAction applies the delta table entry for kind, scaled by intensity,
// then clamps. Deterministic given identical inputs.
func (v *Vector) ApplyAction(kind ActionKind, intensity float64) {
	v.Apply(ActionDelta(kind).Scale(intensity))
}

// ApplyTrigger applies the fixed delta for a situational trigger, then clamps.
func (v *Vector) ApplyTrigger(kind TriggerKind) {
	v.Apply(TriggerDelta(kind))
}

// Apply adds a delta to the vector and clamps every field.
func (v *Vector) Apply(d Delta) {
	v.Happiness = clamp(v.Happiness + d.Happiness)
	v.Sadness = clamp(v.Sadness + d.Sadness)
	v.Frustration = clamp(v.Frustration + d.Frustration)
	v.Boredom = clamp(v.Boredom + d.Boredom)
	v.Anger = clamp(v.Anger + d.Anger)
}

// Clamp forces every field into [Floor, Ceiling]. Used when seeding from
// scenario profiles, which may carry out-of-range initial values.
func (v *Vector) Clamp() {
	v.Apply(Delta{})
}

func clamp(x float64) float64 {
	if x < Floor {
		return Floor
	}
	if x > Ceiling {
		return Ceiling
	}
	return x
}

// #endregion apply

// #region queries

// OverallMood is happiness minus the mean of the four negative dimensions.
// Higher is better. Derived, not clamped.
func (v Vector) OverallMood() float64 {
	return v.Happiness - (v.Sadness+v.Frustration+v.Boredom+v.Anger)/4
}

// IsCritical reports whether any of anger, sadness or frustration has
// reached the critical threshold of 8.
func (v Vector) IsCritical() bool {
	return v.Anger >= 8 || v.Sadness >= 8 || v.Frustration >= 8
}

// #endregion queries
