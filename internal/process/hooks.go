package process

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"agentictest/pkg/logging"
)

var hooksOnce sync.Once

// InstallHooks installs exactly one process-wide SIGINT/SIGTERM handler
// that drives m's graceful shutdown. No exit-time hook is installed:
// tracked groups are not killed when the host exits by any route other
// than those signals or RecoverAndShutdown. Safe to call from multiple
// Manager instances; only the first registration takes effect per spec's
// global-singleton discipline — later callers' managers are not wired to
// the handler and must shut down explicitly.
func InstallHooks(m *Manager) {
	hooksOnce.Do(func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigCh
			logging.Info("process", "signal received, shutting down")
			if _, err := m.Shutdown(5 * time.Second); err != nil {
				os.Exit(1)
			}
			os.Exit(0)
		}()
	})
}

// RecoverAndShutdown wraps a goroutine body so a panic inside it triggers
// a fast best-effort shutdown (Go's analogue of an uncaught-exception /
// unhandled-rejection handler; Go has no async rejection concept, so this
// is invoked via a deferred recover at the top of driver goroutines).
func RecoverAndShutdown(m *Manager) {
	if r := recover(); r != nil {
		logging.Error("process", nil, "panic recovered, fast shutdown: %v", r)
		m.Shutdown(1 * time.Second)
		os.Exit(1)
	}
}
