package clidriver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentictest/internal/scenario"
)

func TestDriver_ExecuteSuccess(t *testing.T) {
	d := New()
	defer d.Cleanup(context.Background())

	s := &scenario.Scenario{
		ID: "e1",
		Steps: []scenario.Step{
			{Action: "execute", Target: "echo hi"},
		},
	}

	result, err := d.Execute(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, scenario.StatusPassed, result.Status)
	require.Len(t, result.StepResults, 1)
	assert.Equal(t, scenario.StatusPassed, result.StepResults[0].Status)
	assert.Contains(t, result.StepResults[0].ActualResult, "hi")
}

func TestDriver_UnsupportedActionIsError(t *testing.T) {
	d := New()
	defer d.Cleanup(context.Background())

	sr, err := d.RunStep(context.Background(), scenario.Step{Action: "frobnicate"})
	require.NoError(t, err)
	assert.Equal(t, scenario.StatusError, sr.Status)
	assert.Contains(t, sr.Error, "Unsupported CLI action")
}

func TestDriver_ValidateExitCodeNonZero(t *testing.T) {
	d := New()
	defer d.Cleanup(context.Background())

	execResult, err := d.RunStep(context.Background(), scenario.Step{Action: "execute", Target: "exit 3"})
	require.NoError(t, err)
	assert.Equal(t, scenario.StatusFailed, execResult.Status)

	sr, err := d.RunStep(context.Background(), scenario.Step{Action: "validate_exit_code", Value: "3"})
	require.NoError(t, err)
	assert.Equal(t, scenario.StatusPassed, sr.Status)
}

func TestDriver_WaitForOutputTimesOut(t *testing.T) {
	d := New()
	defer d.Cleanup(context.Background())

	_, err := d.RunStep(context.Background(), scenario.Step{Action: "execute", Target: "echo hi"})
	require.NoError(t, err)

	sr, err := d.RunStep(context.Background(), scenario.Step{
		Action:  "wait_for_output",
		Value:   "never-appears",
		Timeout: 150 * time.Millisecond,
	})
	require.NoError(t, err)
	assert.Equal(t, scenario.StatusFailed, sr.Status)
}
