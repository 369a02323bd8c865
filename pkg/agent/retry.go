package agent

import (
	"context"
	"log/slog"
	"time"
)

// RetryPolicy governs backoff for quota-limited agent calls.
type RetryPolicy struct {
	MaxRetries        int
	InitialDelay      time.Duration
	BackoffMultiplier int
}

// DefaultRetryPolicy matches the backend's free-tier pacing: three retries
// starting at five seconds, doubling each time.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:        3,
		InitialDelay:      5 * time.Second,
		BackoffMultiplier: 2,
	}
}

// Executor retries a unit of work on transient quota exhaustion.
// Only quota-classified errors are retried; everything else propagates on
// the first attempt. The loop is explicit and bounded, so retry count and
// cumulative wait are directly observable in tests.
type Executor struct {
	policy RetryPolicy
	logger *slog.Logger

	// sleep is replaceable in tests to avoid wall-clock waits.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewExecutor creates an executor with the given policy.
func NewExecutor(policy RetryPolicy, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		policy: policy,
		logger: logger,
		sleep:  sleepCtx,
	}
}

// Execute runs fn, retrying on quota errors per the policy. The stage name
// annotates the terminal error so scan failures identify the failed agent.
func (e *Executor) Execute(ctx context.Context, stage string, fn func(ctx context.Context) error) error {
	delay := e.policy.InitialDelay
	retries := e.policy.MaxRetries

	for {
		err := fn(ctx)
		if err == nil {
			return nil
		}

		quota := IsQuotaError(err)
		if !quota || retries <= 0 {
			return &UpstreamError{Stage: stage, Quota: quota, Err: err}
		}

		attempt := e.policy.MaxRetries - retries + 1
		e.logger.Warn("quota exhausted, backing off",
			"stage", stage,
			"attempt", attempt,
			"delay", delay,
		)

		if err := e.sleep(ctx, delay); err != nil {
			return &UpstreamError{Stage: stage, Quota: true, Err: err}
		}

		delay *= time.Duration(e.policy.BackoffMultiplier)
		retries--
	}
}

// sleepCtx waits for d or until ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
