package base

import (
	"context"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/ajitpratap0/tidify/pkg/tidyerrors"
)

// RetryPolicy retries connection setup with exponential backoff. Only
// errors tidyerrors.IsRetryable accepts are retried.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	// Jitter spreads each delay by up to this fraction either way
	Jitter float64
	// AttemptTimeout bounds a single attempt (0 = the caller's context only)
	AttemptTimeout time.Duration

	logger *zap.Logger
}

// NewRetryPolicy creates a policy doubling the delay after every attempt.
func NewRetryPolicy(maxAttempts int, initialDelay time.Duration) *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts:  maxAttempts,
		InitialDelay: initialDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		Jitter:       0.25,
		logger:       zap.NewNop(),
	}
}

// DefaultRetryPolicy makes three attempts starting one second apart.
func DefaultRetryPolicy() *RetryPolicy {
	return NewRetryPolicy(3, time.Second)
}

// ConnectRetryPolicy is the policy database connectors dial with: the
// default schedule, each attempt bounded by timeout, failures logged.
func ConnectRetryPolicy(timeout time.Duration, logger *zap.Logger) *RetryPolicy {
	return DefaultRetryPolicy().WithAttemptTimeout(timeout).WithLogger(logger)
}

// NoRetryPolicy makes a single attempt.
func NoRetryPolicy() *RetryPolicy {
	return NewRetryPolicy(1, 0)
}

// WithMaxAttempts returns a copy with a different attempt budget.
func (rp *RetryPolicy) WithMaxAttempts(attempts int) *RetryPolicy {
	p := *rp
	p.MaxAttempts = attempts
	return &p
}

// WithDelay returns a copy with different backoff bounds.
func (rp *RetryPolicy) WithDelay(initial, max time.Duration) *RetryPolicy {
	p := *rp
	p.InitialDelay = initial
	p.MaxDelay = max
	return &p
}

// WithAttemptTimeout returns a copy bounding each attempt by d.
func (rp *RetryPolicy) WithAttemptTimeout(d time.Duration) *RetryPolicy {
	p := *rp
	p.AttemptTimeout = d
	return &p
}

// WithLogger returns a copy logging failed attempts to logger.
func (rp *RetryPolicy) WithLogger(logger *zap.Logger) *RetryPolicy {
	p := *rp
	if logger == nil {
		logger = zap.NewNop()
	}
	p.logger = logger
	return &p
}

// Execute runs fn until it succeeds, fails with an error that is not
// retryable, or the attempts run out. op names the operation in logs and
// error details. Exhausted retries return a connection error wrapping the
// last failure; cancellation of ctx returns a timeout error.
func (rp *RetryPolicy) Execute(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	attempts := rp.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	logger := rp.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = rp.attempt(ctx, fn)
		if lastErr == nil {
			return nil
		}
		if !tidyerrors.IsRetryable(lastErr) {
			return lastErr
		}
		if attempt == attempts {
			break
		}

		delay := rp.delay(attempt)
		logger.Warn("attempt failed, retrying",
			zap.String("operation", op),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(lastErr))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return tidyerrors.Wrap(ctx.Err(), tidyerrors.ErrorTypeTimeout, "retry cancelled").
				WithDetail("operation", op).
				WithDetail("last_error", lastErr.Error())
		case <-timer.C:
		}
	}

	return tidyerrors.Wrap(lastErr, tidyerrors.ErrorTypeConnection, "all attempts failed").
		WithDetail("operation", op).
		WithDetail("attempts", attempts)
}

func (rp *RetryPolicy) attempt(ctx context.Context, fn func(ctx context.Context) error) error {
	if rp.AttemptTimeout <= 0 {
		return fn(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, rp.AttemptTimeout)
	defer cancel()
	return fn(attemptCtx)
}

// delay is the wait after the given 1-based attempt.
func (rp *RetryPolicy) delay(attempt int) time.Duration {
	d := float64(rp.InitialDelay) * math.Pow(rp.Multiplier, float64(attempt-1))
	if rp.MaxDelay > 0 && d > float64(rp.MaxDelay) {
		d = float64(rp.MaxDelay)
	}
	if rp.Jitter > 0 {
		d += d * rp.Jitter * (2*rand.Float64() - 1) //nolint:gosec // jitter needs no crypto randomness
	}
	return time.Duration(d)
}
