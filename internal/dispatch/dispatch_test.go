package dispatch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"agentictest/internal/scenario"
)

func TestDispatch_UnsupportedActionIsError(t *testing.T) {
	sr := Dispatch(context.Background(), "CLI", map[string]bool{"execute": true}, nil,
		scenario.Step{Action: "Bogus"},
		func(ctx context.Context, target string, step scenario.Step) (scenario.StepResult, error) {
			t.Fatal("exec should not be called for an unsupported action")
			return scenario.StepResult{}, nil
		})
	assert.Equal(t, scenario.StatusError, sr.Status)
	assert.Equal(t, "Unsupported CLI action: bogus", sr.Error)
}

func TestDispatch_DefaultsTargetToLastTarget(t *testing.T) {
	var seenTarget string
	sr := Dispatch(context.Background(), "CLI", map[string]bool{"wait": true}, func() string { return "most-recent" },
		scenario.Step{Action: "wait"},
		func(ctx context.Context, target string, step scenario.Step) (scenario.StepResult, error) {
			seenTarget = target
			return scenario.StepResult{Status: scenario.StatusPassed}, nil
		})
	assert.Equal(t, scenario.StatusPassed, sr.Status)
	assert.Equal(t, "most-recent", seenTarget)
}

func TestDispatch_ExplicitTargetWins(t *testing.T) {
	var seenTarget string
	Dispatch(context.Background(), "CLI", map[string]bool{"wait": true}, func() string { return "most-recent" },
		scenario.Step{Action: "wait", Target: "explicit"},
		func(ctx context.Context, target string, step scenario.Step) (scenario.StepResult, error) {
			seenTarget = target
			return scenario.StepResult{Status: scenario.StatusPassed}, nil
		})
	assert.Equal(t, "explicit", seenTarget)
}

func TestContinueOnFailure(t *testing.T) {
	assert.False(t, ContinueOnFailure(scenario.Step{}))
	assert.True(t, ContinueOnFailure(scenario.Step{Extra: map[string]string{"continueOnFailure": "true"}}))
}
