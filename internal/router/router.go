// Package router is the scenario scheduler: it partitions scenarios by
// declared interface, dispatches them across a bounded worker pool in
// priority order, and wraps every driver invocation in the retry engine.
// The worker-pool shape (channel of ready work, fixed goroutine count,
// fail-fast short-circuit over a results channel) is grounded on
// giantswarm-muster's internal/testing/test_runner.go
// (runScenariosParallel); the bounded-concurrency primitive itself comes
// from golang.org/x/sync/semaphore in place of muster's raw WaitGroup,
// since this module's pool size is a true cap rather than "one goroutine
// per scenario".
package router

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"agentictest/internal/agent"
	"agentictest/internal/errkind"
	"agentictest/internal/obscontext"
	"agentictest/internal/resilience"
	"agentictest/internal/scenario"
)

// guiLikeActions and cliLikeActions are the exact, fixed action lists
// the MIXED-interface routing heuristic compares counts of.
var (
	guiLikeActions = map[string]bool{
		"click": true, "type": true, "press": true, "screenshot": true,
		"navigate": true, "wait_for_element": true,
	}
	cliLikeActions = map[string]bool{
		"execute": true, "run": true, "runcommand": true, "validate_exit_code": true,
	}
)

// Inputs configures a Run.
type Inputs struct {
	AgentRegistry map[scenario.Interface]agent.Agent
	MaxParallel   int
	FailFast      bool
	RetryCount    int
	OnResult      func(scenario.ScenarioResult)
	OnFailure     func(scenarioID string, msg string)
}

// Router dispatches scenarios to registered agents.
type Router struct {
	inputs Inputs
}

// New constructs a Router from Inputs, filling documented defaults.
func New(inputs Inputs) *Router {
	if inputs.MaxParallel <= 0 {
		inputs.MaxParallel = 1
	}
	if inputs.OnResult == nil {
		inputs.OnResult = func(scenario.ScenarioResult) {}
	}
	if inputs.OnFailure == nil {
		inputs.OnFailure = func(string, string) {}
	}
	return &Router{inputs: inputs}
}

// Run dispatches scenarios to their registered agents. It returns once
// every scenario has reached a terminal state (including SKIPPED);
// results are also streamed through Inputs.OnResult as they complete.
func (r *Router) Run(ctx context.Context, scenarios []scenario.Scenario) []scenario.ScenarioResult {
	ordered := prioritize(scenarios)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := semaphore.NewWeighted(int64(r.inputs.MaxParallel))
	results := make([]scenario.ScenarioResult, len(ordered))

	var wg sync.WaitGroup
	var failFastTripped sync.Once
	var cancelled bool
	var mu sync.Mutex

	for i, s := range ordered {
		select {
		case <-runCtx.Done():
			mu.Lock()
			cancelled = true
			mu.Unlock()
		default:
		}

		mu.Lock()
		stop := cancelled
		mu.Unlock()

		if stop {
			results[i] = skipResult(s.Scenario, "run cancelled before dispatch")
			r.inputs.OnResult(results[i])
			continue
		}

		if !s.Scenario.Enabled {
			results[i] = scenario.ScenarioResult{
				ScenarioID: s.Scenario.ID,
				Status:     scenario.StatusSkipped,
				StartTime:  time.Now(),
				EndTime:    time.Now(),
			}
			r.inputs.OnResult(results[i])
			continue
		}

		a := r.resolveAgent(s.Scenario)
		if a == nil {
			r.inputs.OnFailure(s.Scenario.ID, "no agent for interface")
			results[i] = scenario.ScenarioResult{
				ScenarioID: s.Scenario.ID,
				Status:     scenario.StatusError,
				Error:      "no agent for interface",
				StartTime:  time.Now(),
				EndTime:    time.Now(),
			}
			r.inputs.OnResult(results[i])
			continue
		}

		if err := sem.Acquire(runCtx, 1); err != nil {
			results[i] = skipResult(s.Scenario, "run cancelled while waiting for a worker slot")
			r.inputs.OnResult(results[i])
			continue
		}

		wg.Add(1)
		go func(idx int, sc scenario.Scenario, a agent.Agent) {
			defer wg.Done()
			defer sem.Release(1)

			result := r.runOne(runCtx, a, sc)

			mu.Lock()
			results[idx] = result
			mu.Unlock()

			r.inputs.OnResult(result)

			if r.inputs.FailFast && (result.Status == scenario.StatusFailed || result.Status == scenario.StatusError) {
				failFastTripped.Do(func() {
					mu.Lock()
					cancelled = true
					mu.Unlock()
					cancel()
				})
			}
		}(i, s.Scenario, a)
	}

	wg.Wait()
	return results
}

func skipResult(s scenario.Scenario, reason string) scenario.ScenarioResult {
	now := time.Now()
	return scenario.ScenarioResult{
		ScenarioID: s.ID,
		Status:     scenario.StatusSkipped,
		Error:      reason,
		StartTime:  now,
		EndTime:    now,
	}
}

// runOne wraps one scenario's driver call in the retry engine: an
// attempt is initialize (if required) + execute + cleanup, cleanup
// always runs regardless of how the attempt ended.
func (r *Router) runOne(ctx context.Context, a agent.Agent, s scenario.Scenario) scenario.ScenarioResult {
	logger := obscontext.LoggerFromContext(
		obscontext.WithScope(ctx, obscontext.Scope{ScenarioID: s.ID, Component: "router"}),
		"router",
	)

	opts := resilience.NewOptions()
	opts.MaxAttempts = r.inputs.RetryCount + 1
	opts.ShouldRetry = func(err error, attempt int) bool {
		return errkind.Retryable(err)
	}

	initPerAttempt := true
	if ri, ok := a.(agent.RequiresInitialize); ok {
		initPerAttempt = ri.RequiresInitializePerAttempt()
	}
	initialized := false

	scenarioResult, _, err := resilience.ExecuteWithState(ctx, opts, func(attemptCtx context.Context) (*scenario.ScenarioResult, error) {
		if !initialized || initPerAttempt {
			if ierr := a.Initialize(attemptCtx); ierr != nil {
				logger.Warn("initialize failed: %v", ierr)
				return nil, ierr
			}
			initialized = true
		}

		result, execErr := func() (res *scenario.ScenarioResult, rerr error) {
			defer func() {
				if cerr := a.Cleanup(context.Background()); cerr != nil {
					logger.Warn("cleanup error (status unaffected): %v", cerr)
				}
			}()
			return a.Execute(attemptCtx, &s)
		}()

		if execErr != nil {
			return nil, execErr
		}
		if result.Status == scenario.StatusFailed {
			return result, fmt.Errorf("scenario %s failed: %s", s.ID, result.Error)
		}
		return result, nil
	})

	if err != nil && scenarioResult == nil {
		now := time.Now()
		return scenario.ScenarioResult{
			ScenarioID: s.ID,
			Status:     scenario.StatusError,
			Error:      err.Error(),
			StartTime:  now,
			EndTime:    now,
		}
	}
	if scenarioResult == nil {
		now := time.Now()
		return scenario.ScenarioResult{ScenarioID: s.ID, Status: scenario.StatusError, StartTime: now, EndTime: now}
	}
	return *scenarioResult
}

// resolveAgent looks up the registered agent for a scenario's declared
// interface, applying the MIXED GUI-vs-CLI tie-break heuristic.
func (r *Router) resolveAgent(s scenario.Scenario) agent.Agent {
	iface := s.Interface
	if iface == scenario.InterfaceMixed {
		iface = classifyMixed(s)
	}
	if a, ok := r.inputs.AgentRegistry[iface]; ok {
		return a
	}
	if a, ok := r.inputs.AgentRegistry[scenario.InterfaceCLI]; ok {
		return a
	}
	return nil
}

func classifyMixed(s scenario.Scenario) scenario.Interface {
	guiCount, cliCount := 0, 0
	for _, step := range s.Steps {
		action := strings.ToLower(step.Action)
		if guiLikeActions[action] {
			guiCount++
		}
		if cliLikeActions[action] {
			cliCount++
		}
	}
	if guiCount > cliCount {
		return scenario.InterfaceGUI
	}
	return scenario.InterfaceCLI
}

type orderedScenario struct {
	Scenario scenario.Scenario
	index    int
}

// prioritize sorts scenarios CRITICAL -> HIGH -> MEDIUM -> LOW, FIFO
// within a priority tier (stable sort over original input order).
func prioritize(scenarios []scenario.Scenario) []orderedScenario {
	ordered := make([]orderedScenario, len(scenarios))
	for i, s := range scenarios {
		ordered[i] = orderedScenario{Scenario: s, index: i}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Scenario.Priority.Rank() < ordered[j].Scenario.Priority.Rank()
	})
	return ordered
}
