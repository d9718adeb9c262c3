// Package fakedriver is a test-only agent.Agent implementation used by
// internal/router's tests to stand in for drivers this module doesn't
// ship a reference implementation for (API, WebSocket, GUI), and to
// exercise router behavior — retries, fail-fast, cancellation — without
// spawning real processes.
package fakedriver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"agentictest/internal/scenario"
)

// Driver is a scriptable fake: Results maps scenario ID to a canned
// result, or ExecuteFunc (if set) overrides that mapping entirely.
type Driver struct {
	NameVal string
	Kind    scenario.Interface

	mu           sync.Mutex
	InitErr      error
	CleanupErr   error
	ExecuteFunc  func(ctx context.Context, s *scenario.Scenario) (*scenario.ScenarioResult, error)
	Results      map[string]*scenario.ScenarioResult
	InitCalls    int
	ExecuteCalls int
	CleanupCalls int
}

// New constructs a fake driver for the given interface kind.
func New(name string, kind scenario.Interface) *Driver {
	return &Driver{NameVal: name, Kind: kind, Results: map[string]*scenario.ScenarioResult{}}
}

func (d *Driver) Name() string             { return d.NameVal }
func (d *Driver) Type() scenario.Interface { return d.Kind }

func (d *Driver) Initialize(ctx context.Context) error {
	d.mu.Lock()
	d.InitCalls++
	d.mu.Unlock()
	return d.InitErr
}

func (d *Driver) Cleanup(ctx context.Context) error {
	d.mu.Lock()
	d.CleanupCalls++
	d.mu.Unlock()
	return d.CleanupErr
}

func (d *Driver) Execute(ctx context.Context, s *scenario.Scenario) (*scenario.ScenarioResult, error) {
	d.mu.Lock()
	d.ExecuteCalls++
	fn := d.ExecuteFunc
	d.mu.Unlock()

	if fn != nil {
		return fn(ctx, s)
	}

	d.mu.Lock()
	canned, ok := d.Results[s.ID]
	d.mu.Unlock()
	if ok {
		r := *canned
		r.ScenarioID = s.ID
		r.StartTime = time.Now()
		r.EndTime = r.StartTime
		return &r, nil
	}
	return nil, fmt.Errorf("fakedriver: no scripted result for scenario %s", s.ID)
}

// CallCounts returns a snapshot of how many times each lifecycle method
// has been invoked, safe for concurrent use from a test goroutine.
func (d *Driver) CallCounts() (init, exec, cleanup int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.InitCalls, d.ExecuteCalls, d.CleanupCalls
}
