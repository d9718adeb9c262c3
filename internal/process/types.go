// Package process is the process lifecycle manager (PLM): it owns every
// child process any driver spawns and guarantees none survives the host
// process as a zombie. Process-group spawn/kill shape is grounded on
// giantswarm-muster's internal/testing/{process_unix,process_windows,
// muster_manager}.go (Setpgid + negative-PID group kill on Unix,
// OpenProcess/TerminateProcess on Windows, two-phase TERM-then-KILL
// graceful shutdown), confirmed independently by other_examples'
// iota-sdk devrunner.go, which does the identical Setpgid/group-kill
// dance in pure os/exec.
package process

import (
	"time"

	"github.com/google/uuid"
)

// Status is a ProcessInfo's lifecycle state.
type Status string

const (
	StatusRunning    Status = "running"
	StatusExited     Status = "exited"
	StatusKilled     Status = "killed"
	StatusTerminated Status = "terminated"
)

// Info is the PLM's public view of a tracked child process.
type Info struct {
	ID        string
	Pid       int
	Pgid      int
	Command   string
	Args      []string
	StartTime time.Time
	Status    Status
	ExitCode  *int
}

// StartOptions configures Start.
type StartOptions struct {
	Dir    string
	Env    []string // nil inherits os.Environ(); non-nil replaces it
	Stdin  bool     // true wires a writable stdin pipe
	OnLine func(stream string, line string)
}

// EventKind names the events the PLM emits.
type EventKind string

const (
	EventProcessStarted EventKind = "processStarted"
	EventProcessExited  EventKind = "processExited"
	EventProcessKilled  EventKind = "processKilled"
	EventError          EventKind = "error"
)

// Event is one PLM lifecycle notification.
type Event struct {
	Kind EventKind
	Info Info
	Err  error
}

func newID() string { return uuid.NewString() }
