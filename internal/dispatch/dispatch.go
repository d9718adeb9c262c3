// Package dispatch is the shared step-dispatch engine (§4.H) both
// reference drivers (clidriver, tuidriver) run their actions through: it
// owns the closed-action-set check, "most recent session" target
// defaulting, and result timestamping, so each driver's RunStep need
// only supply the action-specific behavior. Grounded on
// giantswarm-muster's internal/testing test_tools.go, which dispatches
// an MCP tool call's named action through a lookup table the same way.
package dispatch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"agentictest/internal/scenario"
)

// Executor runs one already-validated step against a resolved target and
// returns the step's outcome. It should set Status (and ActualResult or
// Error) but not the timing fields — Dispatch fills those in.
type Executor func(ctx context.Context, target string, step scenario.Step) (scenario.StepResult, error)

// Dispatch implements §4.H: lowercases the action, rejects anything
// outside actionSet with the documented "Unsupported <iface> action"
// message, defaults an empty target to lastTarget(), runs exec, and
// stamps duration/start/end on the result.
func Dispatch(ctx context.Context, ifaceName string, actionSet map[string]bool, lastTarget func() string, step scenario.Step, exec Executor) scenario.StepResult {
	start := time.Now()
	step.Action = strings.ToLower(step.Action)

	if !actionSet[step.Action] {
		return scenario.StepResult{
			Status:    scenario.StatusError,
			Error:     fmt.Sprintf("Unsupported %s action: %s", ifaceName, step.Action),
			StartTime: start,
			EndTime:   time.Now(),
		}
	}

	target := step.Target
	if target == "" && lastTarget != nil {
		target = lastTarget()
	}

	sr, err := exec(ctx, target, step)
	sr.StartTime = start
	if err != nil {
		sr.Status = scenario.StatusError
		sr.Error = err.Error()
	}
	sr.EndTime = time.Now()
	sr.Duration = sr.EndTime.Sub(start)
	return sr
}

// ContinueOnFailure reports whether step opts into continuing a
// scenario past a non-PASSED result, via the driver-agnostic
// "continueOnFailure" extra flag.
func ContinueOnFailure(step scenario.Step) bool {
	return step.Extra != nil && step.Extra["continueOnFailure"] == "true"
}
