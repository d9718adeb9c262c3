package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentictest/internal/scenario"
)

func TestSummarize_CountsPerStatus(t *testing.T) {
	now := time.Now()
	results := []scenario.ScenarioResult{
		{ScenarioID: "a", Status: scenario.StatusPassed, StartTime: now, EndTime: now.Add(time.Second)},
		{ScenarioID: "b", Status: scenario.StatusFailed, StartTime: now, EndTime: now.Add(2 * time.Second)},
		{ScenarioID: "c", Status: scenario.StatusSkipped, StartTime: now, EndTime: now},
	}
	s := Summarize(results)
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 1, s.Passed)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 1, s.Skipped)
	assert.InDelta(t, 33.33, s.SuccessPct, 0.1)
}

func TestRenderTable_ContainsScenarioIDs(t *testing.T) {
	results := []scenario.ScenarioResult{
		{ScenarioID: "e1", Status: scenario.StatusPassed},
	}
	out := RenderTable(results)
	assert.Contains(t, out, "e1")
	assert.Contains(t, out, "Summary")
}

func TestWriteJSON_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "results.json")
	results := []scenario.ScenarioResult{{ScenarioID: "e1", Status: scenario.StatusPassed}}

	require.NoError(t, WriteJSON(path, results))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "e1")
}
