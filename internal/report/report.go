// Package report renders a run's scenario results as a table and an
// optional JSON file, grounded on giantswarm-muster's
// internal/formatting TableFormatter: go-pretty/v6's rounded table
// style, text.Fg* ANSI coloring, and an emoji-prefixed summary line
// appended after the rendered table.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"agentictest/internal/scenario"
)

// Summary aggregates counts per status plus overall success rate.
type Summary struct {
	Total     int
	Passed    int
	Failed    int
	Error     int
	Skipped   int
	Duration  time.Duration
	SuccessPct float64
}

// Summarize computes a Summary over results.
func Summarize(results []scenario.ScenarioResult) Summary {
	s := Summary{Total: len(results)}
	var start, end time.Time
	for i, r := range results {
		switch r.Status {
		case scenario.StatusPassed:
			s.Passed++
		case scenario.StatusFailed:
			s.Failed++
		case scenario.StatusError:
			s.Error++
		case scenario.StatusSkipped:
			s.Skipped++
		}
		if i == 0 || r.StartTime.Before(start) {
			start = r.StartTime
		}
		if r.EndTime.After(end) {
			end = r.EndTime
		}
	}
	if !start.IsZero() && !end.IsZero() {
		s.Duration = end.Sub(start)
	}
	if s.Total > 0 {
		s.SuccessPct = 100 * float64(s.Passed) / float64(s.Total)
	}
	return s
}

func statusCell(status scenario.Status) string {
	switch status {
	case scenario.StatusPassed:
		return text.FgGreen.Sprint("✅ PASSED")
	case scenario.StatusFailed:
		return text.FgRed.Sprint("❌ FAILED")
	case scenario.StatusError:
		return text.FgRed.Sprint("💥 ERROR")
	case scenario.StatusSkipped:
		return text.FgYellow.Sprint("⏭️  SKIPPED")
	default:
		return string(status)
	}
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	return t
}

// RenderTable renders a rounded table of results followed by a summary
// line and returns it as a string.
func RenderTable(results []scenario.ScenarioResult) string {
	var sb strings.Builder

	t := newTable()
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("SCENARIO"),
		text.FgHiCyan.Sprint("STATUS"),
		text.FgHiCyan.Sprint("DURATION"),
		text.FgHiCyan.Sprint("ERROR"),
	})
	for _, r := range results {
		t.AppendRow(table.Row{
			r.ScenarioID,
			statusCell(r.Status),
			r.Duration.Round(time.Millisecond).String(),
			truncate(r.Error, 60),
		})
	}
	t.SetOutputMirror(&sb)
	t.Render()

	s := Summarize(results)
	fmt.Fprintf(&sb, "\n🏁 %s %d/%d passed (%.1f%%) in %s\n",
		text.FgHiBlue.Sprint("Summary:"),
		s.Passed, s.Total, s.SuccessPct, s.Duration.Round(time.Millisecond))

	return sb.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + text.FgHiBlack.Sprint("…")
}

// WriteJSON marshals results to path as indented JSON.
func WriteJSON(path string, results []scenario.ScenarioResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
