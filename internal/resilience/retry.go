// Package resilience provides the retry engine and circuit breaker every
// driver invocation in this module is wrapped in. Shape is grounded on
// itsneelabh-gomind's resilience package (ctx-aware sleep-via-timer retry
// loop, Execute-with-callbacks circuit breaker); the delay-strategy set
// and the breaker's consecutive-count trip condition follow this module's
// own contract rather than gomind's sliding-window error-rate design.
package resilience

import (
	"context"
	"math/rand"
	"time"

	"agentictest/internal/errkind"
)

// Strategy selects how the delay before attempt N is computed.
type Strategy int

const (
	Fixed Strategy = iota
	Exponential
	Linear
	Custom
)

// Options configures Execute. Zero-value fields get the documented
// defaults via NewOptions.
type Options struct {
	MaxAttempts       int
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	Strategy          Strategy
	BackoffMultiplier float64
	Jitter            float64 // fraction in [0,1]
	DelayFn           func(attempt int) time.Duration
	ShouldRetry       func(err error, attempt int) bool
	AttemptTimeout    time.Duration
	OnRetry           func(attempt int, delay time.Duration, err error)
	OnFailure         func(attempt int, err error)
}

// NewOptions returns the documented defaults: 3 attempts, fixed 100ms
// delay, no jitter, retry everything errkind considers retryable.
func NewOptions() Options {
	return Options{
		MaxAttempts:       3,
		InitialDelay:      100 * time.Millisecond,
		MaxDelay:          30 * time.Second,
		Strategy:          Fixed,
		BackoffMultiplier: 2,
		Jitter:            0,
		ShouldRetry: func(err error, attempt int) bool {
			return errkind.Retryable(err)
		},
	}
}

// AttemptDetail records one attempt's outcome for State.AttemptDetails.
type AttemptDetail struct {
	Attempt int
	Delay   time.Duration
	Err     error
}

// State accumulates a retry run's outcome across attempts.
type State struct {
	Attempts       int
	TotalTime      time.Duration
	AttemptDetails []AttemptDetail
}

// delay computes d(attempt) per §4.A, attempt is 1-indexed (the delay
// slept *before* this attempt runs; attempt 1 never sleeps).
func delay(opts Options, attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}
	n := attempt - 1 // delay is a function of the completed-attempt count
	var d time.Duration
	switch opts.Strategy {
	case Fixed:
		d = opts.InitialDelay
	case Exponential:
		mult := opts.BackoffMultiplier
		if mult <= 0 {
			mult = 2
		}
		factor := 1.0
		for i := 0; i < n-1; i++ {
			factor *= mult
		}
		d = time.Duration(float64(opts.InitialDelay) * factor)
	case Linear:
		d = opts.InitialDelay * time.Duration(n)
	case Custom:
		if opts.DelayFn != nil {
			d = opts.DelayFn(attempt)
		}
	}
	if opts.MaxDelay > 0 && d > opts.MaxDelay {
		d = opts.MaxDelay
	}
	if opts.Jitter > 0 {
		spread := float64(d) * opts.Jitter / 2
		d = d + time.Duration((rand.Float64()*2-1)*spread)
	}
	if d < 0 {
		d = 0
	}
	return d.Round(time.Millisecond)
}

// Execute runs op, retrying per opts. Generic over the op's result type so
// callers don't need to box results in interface{}.
func Execute[T any](ctx context.Context, opts Options, op func(ctx context.Context) (T, error)) (T, error) {
	result, _, err := ExecuteWithState(ctx, opts, op)
	return result, err
}

// ExecuteWithState is Execute plus the accumulated RetryState, for callers
// (the router) that report attempts/total time alongside the result.
func ExecuteWithState[T any](ctx context.Context, opts Options, op func(ctx context.Context) (T, error)) (T, State, error) {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	start := time.Now()
	state := State{}

	var zero T
	var lastErr error

	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		d := delay(opts, attempt)
		if d > 0 {
			select {
			case <-ctx.Done():
				lastErr = errkind.Cancelled("resilience.Execute", ctx.Err())
				state.Attempts = attempt - 1
				state.TotalTime = time.Since(start)
				return zero, state, lastErr
			case <-time.After(d):
			}
		}

		attemptCtx := ctx
		var cancel context.CancelFunc
		if opts.AttemptTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, opts.AttemptTimeout)
		}
		result, err := op(attemptCtx)
		if cancel != nil {
			cancel()
		}
		if opts.AttemptTimeout > 0 && err == nil && attemptCtx.Err() == context.DeadlineExceeded {
			err = errkind.Timeout("resilience.Execute", attemptCtx.Err())
		}

		state.Attempts = attempt
		state.AttemptDetails = append(state.AttemptDetails, AttemptDetail{Attempt: attempt, Delay: d, Err: err})

		if err == nil {
			state.TotalTime = time.Since(start)
			return result, state, nil
		}

		lastErr = err
		if opts.OnFailure != nil {
			opts.OnFailure(attempt, err)
		}

		shouldRetry := opts.ShouldRetry == nil || opts.ShouldRetry(err, attempt)
		if !shouldRetry || attempt == opts.MaxAttempts {
			break
		}

		nextDelay := delay(opts, attempt+1)
		if opts.OnRetry != nil {
			opts.OnRetry(attempt+1, nextDelay, err)
		}
	}

	state.TotalTime = time.Since(start)
	return zero, state, lastErr
}
