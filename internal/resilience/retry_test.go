package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentictest/internal/errkind"
)

func TestExecute_SucceedsFirstTry(t *testing.T) {
	opts := NewOptions()
	calls := 0
	result, err := Execute(context.Background(), opts, func(ctx context.Context) (int, error) {
		calls++
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, 1, calls)
}

func TestExecute_RetriesThenSucceeds_ExponentialBackoff(t *testing.T) {
	opts := Options{
		MaxAttempts:       3,
		InitialDelay:      10 * time.Millisecond,
		Strategy:          Exponential,
		BackoffMultiplier: 2,
	}
	var retryDelays []time.Duration
	opts.OnRetry = func(attempt int, delay time.Duration, err error) {
		retryDelays = append(retryDelays, delay)
	}

	calls := 0
	start := time.Now()
	result, err := Execute(context.Background(), opts, func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errkind.TransientIO("op", errors.New("boom"))
		}
		return "ok", nil
	})
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, calls)
	require.Len(t, retryDelays, 2)
	assert.Equal(t, 10*time.Millisecond, retryDelays[0])
	assert.Equal(t, 20*time.Millisecond, retryDelays[1])
	assert.GreaterOrEqual(t, elapsed, 30*time.Millisecond)
}

func TestExecute_ShouldRetryFalseHaltsImmediately(t *testing.T) {
	opts := NewOptions()
	opts.MaxAttempts = 5
	opts.ShouldRetry = func(err error, attempt int) bool { return false }

	calls := 0
	_, err := Execute(context.Background(), opts, func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("fatal-ish")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestExecute_AttemptTimeoutCountsAsFailure(t *testing.T) {
	opts := NewOptions()
	opts.MaxAttempts = 2
	opts.AttemptTimeout = 5 * time.Millisecond
	opts.Strategy = Fixed
	opts.InitialDelay = 0

	calls := 0
	_, state, err := ExecuteWithState(context.Background(), opts, func(ctx context.Context) (int, error) {
		calls++
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(50 * time.Millisecond):
			return 1, nil
		}
	})
	require.Error(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, state.Attempts)
}

func TestExecute_CancellationDuringDelay(t *testing.T) {
	opts := NewOptions()
	opts.MaxAttempts = 3
	opts.InitialDelay = time.Second
	opts.Strategy = Fixed

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	_, err := Execute(ctx, opts, func(ctx context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, errors.New("first fails")
		}
		return 1, nil
	})
	require.Error(t, err)
	assert.True(t, errkind.IsKind(err, errkind.KindCancelledError))
}
