// Package clidriver is the reference CLI driver: it satisfies
// agent.Agent for scenario.InterfaceCLI by running each step's command
// through internal/process, grounded on giantswarm-muster's process
// management in internal_testing's MCPTestClient CLI-invocation path and
// on internal/process itself for the actual spawn/kill mechanics.
package clidriver

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"time"

	"agentictest/internal/dispatch"
	"agentictest/internal/obscontext"
	"agentictest/internal/process"
	"agentictest/internal/scenario"
)

// ActionSet is the closed vocabulary of actions this driver accepts.
var ActionSet = map[string]bool{
	"execute":             true,
	"execute_with_input":  true,
	"validate_exit_code":  true,
	"validate_output":     true,
	"wait_for_output":     true,
	"kill":                true,
	"set_env":             true,
	"change_dir":          true,
	"file_exists":         true,
	"dir_exists":          true,
	"get_output":          true,
	"wait":                true,
}

type session struct {
	mu       sync.Mutex
	id       string
	out      bytes.Buffer
	exitCode *int
	done     chan struct{}
}

func (s *session) appendLine(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.out.WriteString(line)
	s.out.WriteByte('\n')
}

func (s *session) text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.out.String()
}

// Driver is the CLI reference agent.
type Driver struct {
	manager *process.Manager

	mu       sync.Mutex
	sessions map[string]*session
	lastID   string
	dir      string
	env      []string
}

// New constructs a CLI driver backed by a dedicated process manager.
func New() *Driver {
	return &Driver{
		manager:  process.NewManager(),
		sessions: map[string]*session{},
	}
}

func (d *Driver) Name() string            { return "cli-driver" }
func (d *Driver) Type() scenario.Interface { return scenario.InterfaceCLI }

// Initialize is a no-op: the process manager is ready on construction.
func (d *Driver) Initialize(ctx context.Context) error { return nil }

// Cleanup terminates every process this driver spawned.
func (d *Driver) Cleanup(ctx context.Context) error {
	reaped, err := d.manager.Shutdown(5 * time.Second)
	logger := obscontext.LoggerFromContext(ctx, "clidriver")
	logger.Debug("cleanup reaped=%d", reaped)
	if err != nil {
		logger.Warn("cleanup error: %v", err)
	}
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
		// already set by a step error or context cancellation
	case sawFailure:
		result.Status = scenario.StatusFailed
	default:
		result.Status = scenario.StatusPassed
	}
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)
	return result, nil
}

// RunStep dispatches one step's action against this driver's closed
// action set; target defaults to the most recently started session when
// empty. The action-set check, target defaulting, and result timestamping
// are shared with tuidriver via internal/dispatch.
func (d *Driver) RunStep(ctx context.Context, step scenario.Step) (scenario.StepResult, error) {
	lastTarget := func() string {
		d.mu.Lock()
		defer d.mu.Unlock()
		return d.lastID
	}

	sr := dispatch.Dispatch(ctx, "CLI", ActionSet, lastTarget, step, func(ctx context.Context, target string, step scenario.Step) (scenario.StepResult, error) {
		var sr scenario.StepResult
		var err error
		switch step.Action {
		case "execute":
			err = d.doExecute(ctx, step, &sr)
		case "execute_with_input":
			err = d.doExecuteWithInput(ctx, step, &sr)
		case "validate_exit_code":
			err = d.doValidateExitCode(target, step, &sr)
		case "validate_output", "get_output":
			err = d.doGetOrValidateOutput(target, step, &sr)
		case "wait_for_output":
			err = d.doWaitForOutput(ctx, target, step, &sr)
		case "kill":
			err = d.doKill(target, &sr)
		case "set_env":
			d.setEnv(step)
			sr.Status = scenario.StatusPassed
		case "change_dir":
			d.setDir(step)
			sr.Status = scenario.StatusPassed
		case "file_exists":
			err = d.doPathCheck(step, &sr, false)
		case "dir_exists":
			err = d.doPathCheck(step, &sr, true)
		case "wait":
			d.doWait(ctx, step)
			sr.Status = scenario.StatusPassed
		}
		return sr, err
	})
	return sr, nil
}
