// Package tuidriver is the reference TUI driver: it satisfies
// agent.Agent for scenario.InterfaceTUI by puppeting a PTY session
// through internal/pty and internal/tui, grounded on the same
// joeycumines-go-utilpkg termtest shape those packages are built on —
// giantswarm-muster itself never drives a terminal directly, so this
// driver's structure borrows only the CLI driver's step-dispatch idiom.
package tuidriver

import (
	"context"
	"strings"
	"sync"
	"time"

	"agentictest/internal/dispatch"
	"agentictest/internal/obscontext"
	"agentictest/internal/pty"
	"agentictest/internal/scenario"
	"agentictest/internal/tui"
)

// ActionSet is the closed vocabulary of actions this driver accepts.
var ActionSet = map[string]bool{
	"spawn":               true,
	"spawn_tui":           true,
	"send_input":          true,
	"input":               true,
	"navigate_menu":       true,
	"validate_output":     true,
	"validate_colors":     true,
	"validate_formatting": true,
	"capture_output":      true,
	"wait_for_output":     true,
	"resize_terminal":     true,
	"kill_session":        true,
	"wait":                true,
}

// Driver is the TUI reference agent.
type Driver struct {
	sessions *pty.Manager

	mu     sync.Mutex
	lastID string
	navs   map[string]*tui.NavContext
}

// New constructs a TUI driver backed by a dedicated PTY manager.
func New() *Driver {
	return &Driver{
		sessions: pty.NewManager(),
		navs:     map[string]*tui.NavContext{},
	}
}

func (d *Driver) Name() string             { return "tui-driver" }
func (d *Driver) Type() scenario.Interface { return scenario.InterfaceTUI }

// Initialize is a no-op: the PTY manager is ready on construction.
func (d *Driver) Initialize(ctx context.Context) error { return nil }

// Cleanup destroys every PTY session this driver created.
func (d *Driver) Cleanup(ctx context.Context) error {
	logger := obscontext.LoggerFromContext(ctx, "tuidriver")
	d.sessions.CleanupAll()
	logger.Debug("all pty sessions destroyed")
	return nil
}

// Execute drives s's steps in order, stopping at the first non-PASSED
// step unless the step carries the continueOnFailure extra flag.
func (d *Driver) Execute(ctx context.Context, s *scenario.Scenario) (*scenario.ScenarioResult, error) {
	result := &scenario.ScenarioResult{ScenarioID: s.ID, Status: scenario.StatusRunning, StartTime: time.Now()}
	sawFailure := false

	for i, step := range s.Steps {
		select {
		case <-ctx.Done():
			result.Status = scenario.StatusError
			result.Error = ctx.Err().Error()
			result.EndTime = time.Now()
			result.Duration = result.EndTime.Sub(result.StartTime)
			return result, nil
		default:
		}

		step.Action = strings.ToLower(step.Action)
		sr, err := d.RunStep(ctx, step)
		sr.StepIndex = i
		result.StepResults = append(result.StepResults, sr)
		if err != nil || sr.Status == scenario.StatusError {
			result.Status = scenario.StatusError
			if err != nil {
				result.Error = err.Error()
			} else {
				result.Error = sr.Error
			}
			break
		}
		if sr.Status != scenario.StatusPassed {
			sawFailure = true
			if sr.Error != "" {
				result.Error = sr.Error
			}
			if dispatch.ContinueOnFailure(step) {
				continue
			}
			break
		}
	}

	switch {
	case result.Status == scenario.StatusError:
	case sawFailure:
		result.Status = scenario.StatusFailed
	default:
		result.Status = scenario.StatusPassed
	}
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)
	return result, nil
}

// RunStep dispatches one step's action; target defaults to the most
// recently spawned session when empty. Shared bookkeeping lives in
// internal/dispatch.
func (d *Driver) RunStep(ctx context.Context, step scenario.Step) (scenario.StepResult, error) {
	lastTarget := func() string {
		d.mu.Lock()
		defer d.mu.Unlock()
		return d.lastID
	}

	sr := dispatch.Dispatch(ctx, "TUI", ActionSet, lastTarget, step, func(ctx context.Context, target string, step scenario.Step) (scenario.StepResult, error) {
		var sr scenario.StepResult
		var err error
		switch step.Action {
		case "spawn", "spawn_tui":
			err = d.doSpawn(step, &sr)
		case "send_input", "input":
			err = d.doSendInput(target, step, &sr)
		case "navigate_menu":
			err = d.doNavigateMenu(ctx, target, step, &sr)
		case "validate_output":
			err = d.doValidateOutput(target, step, &sr)
		case "validate_colors", "validate_formatting":
			err = d.doValidateColors(target, step, &sr)
		case "capture_output":
			err = d.doCaptureOutput(target, &sr)
		case "wait_for_output":
			err = d.doWaitForOutput(ctx, target, step, &sr)
		case "resize_terminal":
			err = d.doResize(target, step, &sr)
		case "kill_session":
			err = d.doKillSession(target, &sr)
		case "wait":
			d.doWait(ctx, step)
			sr.Status = scenario.StatusPassed
		}
		return sr, err
	})
	return sr, nil
}
