// Package agent defines the uniform driver contract that the scenario
// router (internal/router) dispatches through. Every concrete driver —
// CLI, TUI, or a future API/WebSocket/GUI implementation — speaks only
// this interface; the router never knows a driver's concrete type.
package agent

import (
	"context"

	"agentictest/internal/scenario"
)

// Interface identifies which of scenario.Interface values a driver serves.
type Interface = scenario.Interface

// Agent is the contract every driver satisfies. initialize and cleanup
// bracket a scenario's execute call; cleanup runs on every exit path,
// including cancellation and panic recovery, and must never itself panic.
type Agent interface {
	// Name is a short human-readable identifier for logs and reports.
	Name() string
	// Type reports the interface kind this agent serves.
	Type() Interface
	// Initialize prepares the agent. Idempotent: calling it more than
	// once must not leak resources or change behavior. Must not have
	// side effects observable outside the agent itself.
	Initialize(ctx context.Context) error
	// Execute drives a scenario's steps in order and returns a fully
	// populated result, including per-step results. Cooperatively
	// observes ctx cancellation between steps.
	Execute(ctx context.Context, s *scenario.Scenario) (*scenario.ScenarioResult, error)
	// Cleanup releases every resource the agent owns. Safe to call
	// without a preceding Initialize. Never returns a panic; failures
	// are logged by the caller from the returned error.
	Cleanup(ctx context.Context) error
}

// RequiresInitialize is implemented by agents that want the router to
// skip calling Initialize on attempts after the first successful one
// within a single scenario's retry loop. Agents that don't implement it
// are always initialized on every attempt.
type RequiresInitialize interface {
	RequiresInitializePerAttempt() bool
}

// StepRunner is implemented by drivers that delegate individual step
// dispatch to internal/dispatch rather than inlining a switch in
// Execute. It is not part of the Agent contract — a driver may satisfy
// Agent entirely on its own — but both reference drivers in this module
// (clidriver, tuidriver) implement it so internal/dispatch can share the
// "most recent target" / timeout / continueOnFailure plumbing.
type StepRunner interface {
	RunStep(ctx context.Context, step scenario.Step) (scenario.StepResult, error)
}
