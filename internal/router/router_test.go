package router

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentictest/internal/agent"
	"agentictest/internal/agent/fakedriver"
	"agentictest/internal/scenario"
)

func passResult(id string) *scenario.ScenarioResult {
	return &scenario.ScenarioResult{ScenarioID: id, Status: scenario.StatusPassed}
}

func TestRouter_SkipsDisabledScenarios(t *testing.T) {
	cli := fakedriver.New("cli", scenario.InterfaceCLI)
	r := New(Inputs{AgentRegistry: map[scenario.Interface]agent.Agent{scenario.InterfaceCLI: cli}})

	results := r.Run(context.Background(), []scenario.Scenario{
		{ID: "s1", Interface: scenario.InterfaceCLI, Enabled: false},
	})

	require.Len(t, results, 1)
	assert.Equal(t, scenario.StatusSkipped, results[0].Status)
	_, execCalls, _ := cli.CallCounts()
	assert.Equal(t, 0, execCalls, "driver Execute must not be called for a disabled scenario")
}

func TestRouter_NoAgentForInterfaceEmitsFailure(t *testing.T) {
	r := New(Inputs{AgentRegistry: map[scenario.Interface]agent.Agent{}})

	var failures []string
	r.inputs.OnFailure = func(id, msg string) { failures = append(failures, msg) }

	results := r.Run(context.Background(), []scenario.Scenario{
		{ID: "s1", Interface: scenario.InterfaceAPI, Enabled: true},
	})

	require.Len(t, results, 1)
	assert.Equal(t, scenario.StatusError, results[0].Status)
	require.Len(t, failures, 1)
	assert.Equal(t, "no agent for interface", failures[0])
}

func TestRouter_MixedRoutesToGUIWhenGUIActionsDominate(t *testing.T) {
	gui := fakedriver.New("gui", scenario.InterfaceGUI)
	gui.Results["s1"] = passResult("s1")
	cli := fakedriver.New("cli", scenario.InterfaceCLI)
	cli.Results["s1"] = passResult("s1")

	r := New(Inputs{AgentRegistry: map[scenario.Interface]agent.Agent{
		scenario.InterfaceGUI: gui,
		scenario.InterfaceCLI: cli,
	}})

	s := scenario.Scenario{
		ID:        "s1",
		Interface: scenario.InterfaceMixed,
		Enabled:   true,
		Steps: []scenario.Step{
			{Action: "click"}, {Action: "type"}, {Action: "execute"},
		},
	}

	results := r.Run(context.Background(), []scenario.Scenario{s})
	require.Len(t, results, 1)
	assert.Equal(t, scenario.StatusPassed, results[0].Status)

	_, guiExec, _ := gui.CallCounts()
	_, cliExec, _ := cli.CallCounts()
	assert.Equal(t, 1, guiExec)
	assert.Equal(t, 0, cliExec)
}

func TestRouter_PriorityOrdering(t *testing.T) {
	var order []string
	var mu sync.Mutex

	cli := fakedriver.New("cli", scenario.InterfaceCLI)
	cli.ExecuteFunc = func(ctx context.Context, s *scenario.Scenario) (*scenario.ScenarioResult, error) {
		mu.Lock()
		order = append(order, s.ID)
		mu.Unlock()
		return passResult(s.ID), nil
	}

	r := New(Inputs{
		AgentRegistry: map[scenario.Interface]agent.Agent{scenario.InterfaceCLI: cli},
		MaxParallel:   1,
	})

	results := r.Run(context.Background(), []scenario.Scenario{
		{ID: "low", Interface: scenario.InterfaceCLI, Enabled: true, Priority: scenario.PriorityLow},
		{ID: "crit", Interface: scenario.InterfaceCLI, Enabled: true, Priority: scenario.PriorityCritical},
		{ID: "high", Interface: scenario.InterfaceCLI, Enabled: true, Priority: scenario.PriorityHigh},
	})

	require.Len(t, results, 3)
	assert.Equal(t, []string{"crit", "high", "low"}, order)
}

func TestRouter_RetriesUpToRetryCountThenSucceeds(t *testing.T) {
	var attempts int32
	cli := fakedriver.New("cli", scenario.InterfaceCLI)
	cli.ExecuteFunc = func(ctx context.Context, s *scenario.Scenario) (*scenario.ScenarioResult, error) {
		n := atomic.AddInt32(&attempts, 1)
		if n < 3 {
			return nil, assertErr("transient")
		}
		return passResult(s.ID), nil
	}

	r := New(Inputs{
		AgentRegistry: map[scenario.Interface]agent.Agent{scenario.InterfaceCLI: cli},
		RetryCount:    2,
	})

	results := r.Run(context.Background(), []scenario.Scenario{
		{ID: "s1", Interface: scenario.InterfaceCLI, Enabled: true},
	})

	require.Len(t, results, 1)
	assert.Equal(t, scenario.StatusPassed, results[0].Status)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestRouter_MaxParallelBound(t *testing.T) {
	var inFlight, maxSeen int32
	cli := fakedriver.New("cli", scenario.InterfaceCLI)
	cli.ExecuteFunc = func(ctx context.Context, s *scenario.Scenario) (*scenario.ScenarioResult, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			cur := atomic.LoadInt32(&maxSeen)
			if n <= cur || atomic.CompareAndSwapInt32(&maxSeen, cur, n) {
				break
			}
		}
		time.Sleep(50 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return passResult(s.ID), nil
	}

	r := New(Inputs{
		AgentRegistry: map[scenario.Interface]agent.Agent{scenario.InterfaceCLI: cli},
		MaxParallel:   2,
	})

	scenarios := make([]scenario.Scenario, 6)
	for i := range scenarios {
		scenarios[i] = scenario.Scenario{ID: string(rune('a' + i)), Interface: scenario.InterfaceCLI, Enabled: true}
	}

	r.Run(context.Background(), scenarios)
	assert.LessOrEqual(t, atomic.LoadInt32(&maxSeen), int32(2))
}

type simpleErr string

func (e simpleErr) Error() string { return string(e) }

func assertErr(msg string) error { return simpleErr(msg) }
