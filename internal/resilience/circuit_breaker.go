package resilience

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"agentictest/internal/errkind"
)

// State is one of the breaker's three states.
type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "CLOSED"
	case Open:
		return "OPEN"
	case HalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// BreakerOptions configures a Breaker.
type BreakerOptions struct {
	FailureThreshold int
	ResetTimeout     time.Duration
	SuccessThreshold int // defaults to 1
	IsFailure        func(err error) bool
	OnOpen           func()
	OnClose          func()
}

// Breaker is a simple consecutive-failure-count circuit breaker — CLOSED
// counts consecutive isFailure errors and trips to OPEN at the threshold;
// OPEN rejects until resetTimeout elapses then allows one HALF_OPEN probe;
// HALF_OPEN closes after successThreshold consecutive successes or
// reopens on any failure. This intentionally does not reuse gomind's
// sliding-window error-rate trip condition, only its atomic-counters +
// callback-on-transition shape.
type Breaker struct {
	opts BreakerOptions

	mu                  sync.Mutex
	state               State
	consecutiveFailures int
	consecutiveSuccess  int
	lastFailureTime     time.Time

	totalCalls     atomic.Int64
	totalFailures  atomic.Int64
	totalSuccesses atomic.Int64
	stateChanges   atomic.Int64
}

// NewBreaker constructs a Breaker, filling in SuccessThreshold's default.
func NewBreaker(opts BreakerOptions) *Breaker {
	if opts.SuccessThreshold <= 0 {
		opts.SuccessThreshold = 1
	}
	if opts.IsFailure == nil {
		opts.IsFailure = func(err error) bool { return err != nil }
	}
	return &Breaker{opts: opts, state: Closed}
}

// State returns the breaker's current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Counters snapshot exposes the breaker's monotone counters.
type Counters struct {
	TotalCalls     int64
	TotalFailures  int64
	TotalSuccesses int64
	StateChanges   int64
}

func (b *Breaker) Counters() Counters {
	return Counters{
		TotalCalls:     b.totalCalls.Load(),
		TotalFailures:  b.totalFailures.Load(),
		TotalSuccesses: b.totalSuccesses.Load(),
		StateChanges:   b.stateChanges.Load(),
	}
}

// allow decides, under lock, whether a call may proceed right now, and
// performs the OPEN→HALF_OPEN transition if the reset timeout has elapsed.
func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Closed:
		return true
	case HalfOpen:
		return true
	case Open:
		if time.Since(b.lastFailureTime) >= b.opts.ResetTimeout {
			b.state = HalfOpen
			b.consecutiveSuccess = 0
			b.stateChanges.Add(1)
			return true
		}
		return false
	default:
		return true
	}
}

func (b *Breaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.totalSuccesses.Add(1)
	switch b.state {
	case Closed:
		b.consecutiveFailures = 0
	case HalfOpen:
		b.consecutiveSuccess++
		if b.consecutiveSuccess >= b.opts.SuccessThreshold {
			b.state = Closed
			b.consecutiveFailures = 0
			b.consecutiveSuccess = 0
			b.stateChanges.Add(1)
			if b.opts.OnClose != nil {
				b.opts.OnClose()
			}
		}
	}
}

func (b *Breaker) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.totalFailures.Add(1)
	b.lastFailureTime = time.Now()

	switch b.state {
	case Closed:
		b.consecutiveFailures++
		if b.consecutiveFailures >= b.opts.FailureThreshold {
			b.state = Open
			b.stateChanges.Add(1)
			if b.opts.OnOpen != nil {
				b.opts.OnOpen()
			}
		}
	case HalfOpen:
		b.state = Open
		b.consecutiveSuccess = 0
		b.stateChanges.Add(1)
		if b.opts.OnOpen != nil {
			b.opts.OnOpen()
		}
	}
}

// Execute runs op through the breaker, recovering from panics inside op
// and reporting them as failures (mirrors gomind's defensive Execute
// wrapper).
func (b *Breaker) Execute(ctx context.Context, op func(ctx context.Context) error) (err error) {
	b.totalCalls.Add(1)

	if !b.allow() {
		return errkind.CircuitOpen("resilience.Breaker")
	}

	defer func() {
		if r := recover(); r != nil {
			b.recordFailure()
			err = errkind.Fatal("resilience.Breaker", errPanic(r))
		}
	}()

	err = op(ctx)
	if b.opts.IsFailure(err) {
		b.recordFailure()
	} else {
		b.recordSuccess()
	}
	return err
}

type panicError struct{ v interface{} }

func (p panicError) Error() string { return "panic: " + errString(p.v) }

func errPanic(v interface{}) error { return panicError{v} }

func errString(v interface{}) string {
	if err, ok := v.(error); ok {
		return err.Error()
	}
	return "recovered"
}

// ExecuteWithBreaker combines the retry engine and a circuit breaker: the
// breaker gates each attempt, so an OPEN breaker short-circuits the whole
// retry loop with a non-retryable CircuitOpen rather than burning attempts.
func ExecuteWithBreaker[T any](ctx context.Context, opts Options, b *Breaker, op func(ctx context.Context) (T, error)) (T, error) {
	guarded := func(ctx context.Context) (T, error) {
		var zero T
		var result T
		err := b.Execute(ctx, func(ctx context.Context) error {
			var opErr error
			result, opErr = op(ctx)
			return opErr
		})
		if err != nil {
			return zero, err
		}
		return result, nil
	}

	// CircuitOpen is not retryable; ensure ShouldRetry honors that even if
	// the caller supplied a custom one.
	wrapped := opts
	baseShouldRetry := wrapped.ShouldRetry
	wrapped.ShouldRetry = func(err error, attempt int) bool {
		if errkind.IsKind(err, errkind.KindCircuitOpen) {
			return false
		}
		if baseShouldRetry != nil {
			return baseShouldRetry(err, attempt)
		}
		return errkind.Retryable(err)
	}

	return Execute(ctx, wrapped, guarded)
}
