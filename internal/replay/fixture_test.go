package replay

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleFixture = `{
  "description": "praise lifts the front row",
  "duration": 4,
  "scenario": {
    "name": "fixture-class",
    "seed": 7,
    "agents": [
      {
        "id": "s1",
        "name": "Dana",
        "traits": {"sensitivity": 0.5, "academic_motivation": 0.9},
        "initial_happiness": 5,
        "initial_boredom": 3,
        "position": {"x": 0, "y": 0}
      }
    ]
  },
  "config": {"break_seconds": 60, "eval_interval": 1},
  "steps": [
    {"at": 0, "kind": "action", "action": "praise", "target": "s1"}
  ],
  "checks": [
    {"at": 0, "agent_id": "s1", "state": "engaged"}
  ],
  "expected_score": {"min": 80, "max": 100}
}`

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadFixture(t *testing.T) {
	f, err := LoadFixture(writeFixture(t, sampleFixture))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if f.Description != "praise lifts the front row" {
		t.Errorf("description: %q", f.Description)
	}
	if f.TickSeconds != 0.5 {
		t.Errorf("tick default: got %v, want 0.5", f.TickSeconds)
	}
	if len(f.Steps) != 1 || f.Steps[0].Action != "praise" || f.Steps[0].Target != "s1" {
		t.Errorf("steps: %+v", f.Steps)
	}
	if f.ExpectedScore == nil || f.ExpectedScore.Min != 80 {
		t.Errorf("expected score: %+v", f.ExpectedScore)
	}

	sc := f.Scenario.ToScenario()
	if sc.Seed != 7 || len(sc.Agents) != 1 || sc.Agents[0].Traits.Sensitivity != 0.5 {
		t.Errorf("scenario conversion: %+v", sc)
	}
}

func TestLoadFixture_Errors(t *testing.T) {
	if _, err := LoadFixture(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := LoadFixture(writeFixture(t, "{not json")); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestFixtureConfig_Overrides(t *testing.T) {
	fc := FixtureConfig{BreakSeconds: 60, EvalInterval: 1, ContagionRadius: 5}
	config := fc.ToSessionConfig()
	if config.BreakSeconds != 60 {
		t.Errorf("break: %v", config.BreakSeconds)
	}
	if config.Behavior.EvalInterval != 1 {
		t.Errorf("eval interval: %v", config.Behavior.EvalInterval)
	}
	if config.Contagion.Radius != 5 {
		t.Errorf("radius: %v", config.Contagion.Radius)
	}
	// Untouched knobs keep their defaults.
	if config.InterventionRipple != 0.3 {
		t.Errorf("ripple default lost: %v", config.InterventionRipple)
	}
}
