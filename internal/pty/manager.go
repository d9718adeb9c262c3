package pty

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/creack/pty"
	"github.com/google/uuid"

	"agentictest/internal/errkind"
	"agentictest/internal/tui"
	"agentictest/pkg/logging"
)

// Manager creates and tracks PTY-backed terminal sessions.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*session
	order    []string // insertion order, for MostRecentSession
}

// NewManager constructs an empty Manager.
func NewManager() *Manager {
	return &Manager{sessions: map[string]*session{}}
}

func defaultShell() (string, []string) {
	switch runtime.GOOS {
	case "windows":
		if comspec := os.Getenv("COMSPEC"); comspec != "" {
			return comspec, nil
		}
		return "cmd.exe", nil
	case "darwin":
		if shell := os.Getenv("SHELL"); shell != "" {
			return shell, nil
		}
		return "/bin/zsh", nil
	default:
		if shell := os.Getenv("SHELL"); shell != "" {
			return shell, nil
		}
		return "/bin/bash", nil
	}
}

// CreateSession spawns command (or the platform default shell if command
// is empty) attached to a new pseudo-terminal.
func (m *Manager) CreateSession(command string, args []string, opts CreateOptions) (*Session, error) {
	if command == "" {
		command, args = defaultShell()
	}

	size := opts.Size
	if size.Cols == 0 {
		size.Cols = defaultCols
	}
	if size.Rows == 0 {
		size.Rows = defaultRows
	}

	cmd := exec.Command(command, args...)
	if opts.Dir != "" {
		cmd.Dir = opts.Dir
	}
	cmd.Env = append(os.Environ(),
		"TERM=xterm-256color",
		fmt.Sprintf("COLUMNS=%d", size.Cols),
		fmt.Sprintf("LINES=%d", size.Rows),
	)
	for k, v := range opts.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	ws := &pty.Winsize{Rows: size.Rows, Cols: size.Cols}
	ptm, err := pty.StartWithSize(cmd, ws)
	if err != nil {
		return nil, errkind.Fatal("pty.CreateSession", fmt.Errorf("start %s with pty: %w", command, err))
	}

	id := uuid.NewString()
	sess := &session{
		info: Session{
			ID:      id,
			Pid:     cmd.Process.Pid,
			Command: command,
			Args:    args,
			Size:    size,
			Status:  StatusRunning,
		},
		ptm: ptm,
		cmd: cmd,
	}

	m.mu.Lock()
	m.sessions[id] = sess
	m.order = append(m.order, id)
	m.mu.Unlock()

	parser := tui.NewAnsiParser()
	go sess.captureLoop(func(o Output) {
		o.Text, _ = parser.Parse(o.Raw)
		sess.appendOutput(o)
	})

	go func() {
		_ = cmd.Wait()
		sess.mu.Lock()
		if sess.info.Status == StatusRunning {
			sess.info.Status = StatusCompleted
		}
		sess.mu.Unlock()
	}()

	info := sess.info
	return &info, nil
}

func (m *Manager) get(id string) (*session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, errkind.Usage("pty.Manager", fmt.Errorf("unknown session %s", id))
	}
	return s, nil
}

// Write sends raw bytes to the session's stdin (the PTY master).
func (m *Manager) Write(id string, data []byte) error {
	s, err := m.get(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errkind.Usage("pty.Write", fmt.Errorf("session %s closed", id))
	}
	if _, err := s.ptm.Write(data); err != nil {
		return errkind.TransientIO("pty.Write", err)
	}
	return nil
}

// WriteLine writes text followed by a newline.
func (m *Manager) WriteLine(id string, text string) error {
	return m.Write(id, append([]byte(text), '\n'))
}

// SendControl writes the control byte for the given letter (e.g. 'C' →
// 0x03 / Ctrl-C).
func (m *Manager) SendControl(id string, letter byte) error {
	upper := letter &^ 0x20
	ctrl := upper - 'A' + 1
	return m.Write(id, []byte{ctrl})
}

// Resize updates a session's terminal size.
func (m *Manager) Resize(id string, size Size) error {
	s, err := m.get(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := pty.Setsize(s.ptm, &pty.Winsize{Rows: size.Rows, Cols: size.Cols}); err != nil {
		return errkind.TransientIO("pty.Resize", err)
	}
	s.info.Size = size
	return nil
}

// Output returns a snapshot of the session's rolling output buffer.
func (m *Manager) Output(id string) ([]Output, error) {
	s, err := m.get(id)
	if err != nil {
		return nil, err
	}
	return s.snapshot(), nil
}

// BufferLen returns the current number of buffered output chunks — used
// by the TUI engine's stabilization poll.
func (m *Manager) BufferLen(id string) (int, error) {
	s, err := m.get(id)
	if err != nil {
		return 0, err
	}
	return s.bufferLen(), nil
}

// LatestText returns the most recent output chunk's ANSI-stripped text —
// used by the TUI engine's pattern-wait poll.
func (m *Manager) LatestText(id string) (string, error) {
	s, err := m.get(id)
	if err != nil {
		return "", err
	}
	return s.latestText(), nil
}

// DestroySession TERMs the child, waits up to 1s, KILLs if still alive,
// and removes the session from the table.
func (m *Manager) DestroySession(id string) error {
	s, err := m.get(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	proc := s.cmd.Process
	s.mu.Unlock()

	if proc != nil {
		_ = proc.Signal(syscall.SIGTERM)
		done := make(chan struct{})
		go func() {
			_, _ = s.cmd.Process.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(time.Second):
			_ = proc.Kill()
		}
	}
	_ = s.ptm.Close()

	s.mu.Lock()
	s.info.Status = StatusKilled
	s.mu.Unlock()

	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

// CleanupAll destroys every tracked session concurrently; individual
// failures are logged but never re-thrown.
func (m *Manager) CleanupAll() {
	m.mu.Lock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if err := m.DestroySession(id); err != nil {
				logging.Warn("pty", "cleanup of session %s failed: %v", id, err)
			}
		}(id)
	}
	wg.Wait()
}

// MostRecentSession returns the latest-created session's ID.
func (m *Manager) MostRecentSession() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.order) - 1; i >= 0; i-- {
		id := m.order[i]
		if _, ok := m.sessions[id]; ok {
			return id, nil
		}
	}
	return "", errkind.Usage("pty.MostRecentSession", fmt.Errorf("no active session"))
}
