// Package pty is the PTY session manager: it allocates pseudo-terminals
// for interactive child processes and captures their output as
// TerminalOutput records. PTY allocation is grounded on
// joeycumines-go-utilpkg/prompt/termtest's Console (creack/pty's
// StartWithSize, TERM/COLUMNS/LINES env injection) — giantswarm-muster
// itself has no PTY code, so this package is new authorship in the
// teacher's idiom rather than an adaptation of an existing teacher file.
package pty

import "time"

// Status is a TerminalSession's lifecycle state.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusKilled    Status = "killed"
)

// OutputKind distinguishes a TerminalOutput's source stream.
type OutputKind string

const (
	KindStdout OutputKind = "stdout"
	KindStderr OutputKind = "stderr"
)

// Output is one captured chunk of terminal output. Raw is preserved
// verbatim; Text is derived by the TUI engine's ANSI parser and attached
// by the session before the chunk is stored. The parser's styled spans
// are not kept on the record.
type Output struct {
	Kind      OutputKind
	Raw       string
	Text      string
	Timestamp time.Time
}

// Size is a terminal's column/row dimensions.
type Size struct {
	Cols uint16
	Rows uint16
}

// Session is the PTY manager's public view of one terminal session.
type Session struct {
	ID      string
	Pid     int
	Command string
	Args    []string
	Size    Size
	Status  Status
}

// CreateOptions configures CreateSession.
type CreateOptions struct {
	Dir  string
	Env  map[string]string
	Size Size // zero value defaults to 80x24
}

const (
	defaultCols = 80
	defaultRows = 24

	maxBufferLines = 10000
)
