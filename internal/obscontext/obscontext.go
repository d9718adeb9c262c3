// Package obscontext carries scenario/step/component identity through a
// context.Context so every log line and error emitted while running a
// scenario can be traced back to it, the way a prefixedLogger disambiguates
// interleaved parallel output — except here the prefix rides on
// context.Context instead of being threaded through constructor args.
package obscontext

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"

	"agentictest/pkg/logging"
)

// Scope identifies where in a run a log line or error originated.
type Scope struct {
	ScenarioID string
	StepIndex  int // -1 when not inside a step
	Component  string
	SessionID  string
}

type scopeKey struct{}

// WithScope returns a context carrying scope. Fields left zero-valued
// inherit from any scope already on ctx.
func WithScope(ctx context.Context, scope Scope) context.Context {
	if prev, ok := FromContext(ctx); ok {
		if scope.ScenarioID == "" {
			scope.ScenarioID = prev.ScenarioID
		}
		if scope.StepIndex == 0 {
			scope.StepIndex = prev.StepIndex
		}
		if scope.Component == "" {
			scope.Component = prev.Component
		}
		if scope.SessionID == "" {
			scope.SessionID = prev.SessionID
		}
	}
	return context.WithValue(ctx, scopeKey{}, scope)
}

// FromContext retrieves the Scope previously attached with WithScope.
func FromContext(ctx context.Context) (Scope, bool) {
	s, ok := ctx.Value(scopeKey{}).(Scope)
	return s, ok
}

// Prefix renders a short, stable, human-scannable tag for this scope,
// e.g. "[RUN-a1b#3]", used to prefix log lines from parallel scenarios.
func (s Scope) Prefix() string {
	slug := slugify(s.ScenarioID)
	hash := sha256.Sum256([]byte(s.ScenarioID))
	tag := fmt.Sprintf("%x", hash[:2])
	if s.StepIndex >= 0 {
		return fmt.Sprintf("[%s-%s#%d]", slug, tag[:3], s.StepIndex)
	}
	return fmt.Sprintf("[%s-%s]", slug, tag[:3])
}

func slugify(name string) string {
	name = strings.ToUpper(name)
	if len(name) > 3 {
		name = name[:3]
	}
	for len(name) < 3 {
		name += "-"
	}
	return name
}

// Logger returns a logging.* wrapper whose messages are automatically
// prefixed with this scope's tag and routed through the given subsystem.
func (s Scope) Logger(subsystem string) *Logger {
	return &Logger{subsystem: subsystem, prefix: s.Prefix()}
}

// LoggerFromContext is a convenience combining FromContext + Logger for
// call sites that only have a context.Context in hand.
func LoggerFromContext(ctx context.Context, subsystem string) *Logger {
	scope, ok := FromContext(ctx)
	if !ok {
		return &Logger{subsystem: subsystem}
	}
	return scope.Logger(subsystem)
}

// Logger is a thin, scope-prefixed facade over pkg/logging.
type Logger struct {
	subsystem string
	prefix    string
}

func (l *Logger) Debug(format string, args ...interface{}) {
	logging.Debug(l.subsystem, l.format(format), args...)
}

func (l *Logger) Info(format string, args ...interface{}) {
	logging.Info(l.subsystem, l.format(format), args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	logging.Warn(l.subsystem, l.format(format), args...)
}

func (l *Logger) Error(err error, format string, args ...interface{}) {
	logging.Error(l.subsystem, err, l.format(format), args...)
}

func (l *Logger) format(format string) string {
	if l.prefix == "" {
		return format
	}
	return l.prefix + " " + format
}
