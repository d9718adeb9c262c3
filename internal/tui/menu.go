package tui

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"agentictest/internal/errkind"
)

var menuItemPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d+\.\s*(.+)$`),
	regexp.MustCompile(`^\*\s*(.+)$`),
	regexp.MustCompile(`^-\s*(.+)$`),
	regexp.MustCompile(`^\[\d+\]\s*(.+)$`),
}

// ParseMenuItems extracts visible menu items from text, one per matching
// line, trying each bullet style in order.
func ParseMenuItems(text string) []string {
	var items []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		for _, re := range menuItemPatterns {
			if m := re.FindStringSubmatch(line); m != nil {
				items = append(items, strings.TrimSpace(m[1]))
				break
			}
		}
	}
	return items
}

// NavContext is the per-navigation state the engine threads through a
// menu traversal.
type NavContext struct {
	Level         int
	Items         []string
	SelectedIndex int
	History       []string
}

// ResetContext returns a fresh NavContext, used when the caller wants
// navigation to start over rather than continue from a prior traversal.
func ResetContext() *NavContext {
	return &NavContext{SelectedIndex: -1}
}

// Navigator drives menu navigation over a PTY session via the supplied
// hooks, so this package stays independent of the pty package.
type Navigator struct {
	Stabilize  func(ctx context.Context) error
	LatestText func() (string, error)
	PressArrow func(down bool) error
	PressEnter func() error
}

// NavigateTo walks path, one segment per menu level, locating each target
// by case-insensitive substring match and pressing arrow keys + Enter to
// select it.
func (n *Navigator) NavigateTo(ctx context.Context, nav *NavContext, path []string) error {
	for _, target := range path {
		if err := n.Stabilize(ctx); err != nil {
			return err
		}
		text, err := n.LatestText()
		if err != nil {
			return err
		}
		items := ParseMenuItems(text)
		nav.Items = items

		idx := locate(items, target)
		if idx == -1 {
			return errkind.Usage("tui.NavigateTo", fmt.Errorf("MenuItemNotFound: %q not in %v", target, items))
		}

		delta := idx - nav.SelectedIndex
		if nav.SelectedIndex < 0 {
			delta = idx
		}
		down := delta >= 0
		presses := delta
		if presses < 0 {
			presses = -presses
		}
		for i := 0; i < presses; i++ {
			if err := n.PressArrow(down); err != nil {
				return err
			}
		}
		if err := n.PressEnter(); err != nil {
			return err
		}

		nav.SelectedIndex = idx
		nav.Level++
		nav.History = append(nav.History, target)
	}
	return nil
}

func locate(items []string, target string) int {
	lowerTarget := strings.ToLower(target)
	for i, item := range items {
		if strings.Contains(strings.ToLower(item), lowerTarget) {
			return i
		}
	}
	return -1
}

// ArrowDelta computes the minimal arrow-key navigation from i to j:
// |i-j| presses in the appropriate direction, followed by one Enter.
func ArrowDelta(i, j int) (presses int, down bool) {
	delta := j - i
	if delta < 0 {
		return -delta, false
	}
	return delta, true
}
