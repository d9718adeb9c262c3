// Package tui is the TUI engine: input tokenization/dispatch, ANSI output
// parsing with persistent style state, output stabilization and pattern
// waiting, menu navigation, and output validation. The stabilization-poll
// and PTY-interaction idioms are grounded on
// joeycumines-go-utilpkg/prompt/termtest's ExpectString/sync-protocol
// polling loops.
package tui

// Style is the accumulated text-attribute state the ANSI parser carries
// across escape sequences.
type Style struct {
	Fg         string
	Bg         string
	Bold       bool
	Italic     bool
	Underline  bool
}

func (s Style) isZero() bool {
	return s.Fg == "" && s.Bg == "" && !s.Bold && !s.Italic && !s.Underline
}

// Position is a 0-based [start,end) offset within one emitted chunk's
// assembled text — it does not span chunks.
type Position struct {
	Start int
	End   int
}

// StyledSpan is one run of text under a constant style.
type StyledSpan struct {
	Text     string
	Style    Style
	Position Position
}
