package tuidriver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentictest/internal/scenario"
)

func TestDriver_SpawnAndCaptureOutput(t *testing.T) {
	d := New()
	defer d.Cleanup(context.Background())

	s := &scenario.Scenario{
		ID: "e2",
		Steps: []scenario.Step{
			{Action: "spawn", Target: "echo hello-tui"},
			{Action: "wait", Timeout: 300 * time.Millisecond},
			{Action: "capture_output"},
		},
	}

	result, err := d.Execute(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, scenario.StatusPassed, result.Status)
	require.Len(t, result.StepResults, 3)
}

func TestDriver_UnsupportedActionIsError(t *testing.T) {
	d := New()
	defer d.Cleanup(context.Background())

	sr, err := d.RunStep(context.Background(), scenario.Step{Action: "screenshot"})
	require.NoError(t, err)
	assert.Equal(t, scenario.StatusError, sr.Status)
	assert.Contains(t, sr.Error, "Unsupported TUI action")
}

func TestDriver_SendInputRequiresTarget(t *testing.T) {
	d := New()
	defer d.Cleanup(context.Background())

	sr, err := d.RunStep(context.Background(), scenario.Step{Action: "send_input", Value: "hi"})
	require.NoError(t, err)
	assert.Equal(t, scenario.StatusError, sr.Status)
}
