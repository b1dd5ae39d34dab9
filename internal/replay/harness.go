package replay

import (
	"fmt"
	"sort"

	"github.com/kellerdav/classroom-sim/internal/agent"
	"github.com/kellerdav/classroom-sim/internal/behavior"
	"github.com/kellerdav/classroom-sim/internal/emotion"
	"github.com/kellerdav/classroom-sim/internal/report"
	"github.com/kellerdav/classroom-sim/internal/session"
)

// #region results

// CheckResult is the outcome of one fixture check.
type CheckResult struct {
	Check  Check
	Got    behavior.State
	Passed bool
}

// Summary aggregates a full replay run.
type Summary struct {
	Description  string
	TotalChecks  int
	Passed       int
	Failed       []CheckResult
	ScoreInRange bool
	Report       report.SessionReport
	Snapshots    []agent.Snapshot
}

// Ok reports whether every check and the score bound held.
func (s Summary) Ok() bool {
	return len(s.Failed) == 0 && s.ScoreInRange
}

// #endregion results

// #region run

// Run replays the fixture: steps fire in time order as the clock crosses
// their deadlines, checks are evaluated the first tick at or past their
// time, and the session report closes the run. Identical fixtures always
// produce identical summaries since the simulation is seeded.
func Run(f *Fixture) (Summary, error) {
	ctrl, err := session.NewController(f.Scenario.ToScenario(), f.Config.ToSessionConfig())
	if err != nil {
		return Summary{}, fmt.Errorf("replay %q: %w", f.Description, err)
	}

	steps := append([]Step(nil), f.Steps...)
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].At < steps[j].At })
	checks := append([]Check(nil), f.Checks...)
	sort.SliceStable(checks, func(i, j int) bool { return checks[i].At < checks[j].At })

	summary := Summary{Description: f.Description, TotalChecks: len(checks)}
	nextStep, nextCheck := 0, 0

	tick := f.TickSeconds
	if tick <= 0 {
		tick = 0.5
	}

	for {
		// Fire every step due at the current clock before advancing.
		for nextStep < len(steps) && steps[nextStep].At <= ctrl.Clock() {
			if err := applyStep(ctrl, steps[nextStep]); err != nil {
				return Summary{}, fmt.Errorf("replay %q step at %.1fs: %w",
					f.Description, steps[nextStep].At, err)
			}
			nextStep++
		}
		for nextCheck < len(checks) && checks[nextCheck].At <= ctrl.Clock() {
			summary.record(evaluate(ctrl, checks[nextCheck]))
			nextCheck++
		}

		if ctrl.Clock() >= f.Duration {
			break
		}
		dt := tick
		if remaining := f.Duration - ctrl.Clock(); remaining < dt {
			dt = remaining
		}
		ctrl.Tick(dt)
		ctrl.Events() // drained so the outbox cannot grow unbounded
	}

	summary.Report = ctrl.EndSession()
	summary.Snapshots = ctrl.Snapshots()
	summary.ScoreInRange = true
	if r := f.ExpectedScore; r != nil {
		summary.ScoreInRange = summary.Report.Score >= r.Min && summary.Report.Score <= r.Max
	}
	return summary, nil
}

func applyStep(ctrl *session.Controller, step Step) error {
	switch step.Kind {
	case "", "action":
		_, err := ctrl.DispatchAction(emotion.ActionKind(step.Action), step.Target, step.Label)
		return err
	case "swap":
		return ctrl.SwapSeats(step.AgentA, step.AgentB)
	default:
		return fmt.Errorf("unknown step kind %q", step.Kind)
	}
}

func evaluate(ctrl *session.Controller, check Check) CheckResult {
	res := CheckResult{Check: check}
	a := ctrl.Agent(check.AgentID)
	if a == nil {
		return res
	}
	res.Got = a.Machine.State()
	res.Passed = res.Got == behavior.State(check.State)
	return res
}

func (s *Summary) record(res CheckResult) {
	if res.Passed {
		s.Passed++
		return
	}
	s.Failed = append(s.Failed, res)
}

// #endregion run
