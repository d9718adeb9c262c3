package tui

import (
	"context"
	"regexp"
	"time"

	"agentictest/internal/errkind"
)

const pollInterval = 100 * time.Millisecond

const stableStreak = 5

// Stabilize polls lengthFn (the session buffer length) every 100ms until
// it returns the same value 5 consecutive times, or timeout elapses.
func Stabilize(ctx context.Context, timeout time.Duration, lengthFn func() (int, error)) error {
	deadline := time.After(timeout)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	lastLen := -1
	streak := 0

	for {
		select {
		case <-ctx.Done():
			return errkind.Cancelled("tui.Stabilize", ctx.Err())
		case <-deadline:
			return errkind.Timeout("tui.Stabilize", errStabilizationTimeout)
		case <-ticker.C:
			n, err := lengthFn()
			if err != nil {
				return errkind.TransientIO("tui.Stabilize", err)
			}
			if n == lastLen {
				streak++
				if streak >= stableStreak {
					return nil
				}
			} else {
				lastLen = n
				streak = 1
			}
		}
	}
}

var errStabilizationTimeout = errNamed("StabilizationTimeout")

// WaitForPattern polls textFn (the latest output's text) every 100ms
// until pattern matches case-insensitively, or timeout elapses.
func WaitForPattern(ctx context.Context, timeout time.Duration, pattern string, textFn func() (string, error)) error {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return errkind.Usage("tui.WaitForPattern", err)
	}

	deadline := time.After(timeout)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return errkind.Cancelled("tui.WaitForPattern", ctx.Err())
		case <-deadline:
			return errkind.Timeout("tui.WaitForPattern", errPatternTimeout)
		case <-ticker.C:
			text, err := textFn()
			if err != nil {
				return errkind.TransientIO("tui.WaitForPattern", err)
			}
			if re.MatchString(text) {
				return nil
			}
		}
	}
}

var errPatternTimeout = errNamed("PatternTimeout")

type namedErr string

func (n namedErr) Error() string { return string(n) }

func errNamed(s string) error { return namedErr(s) }
