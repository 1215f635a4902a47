package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/socrates/internal/core/domain"
	"github.com/custodia-labs/socrates/internal/core/ports/driving"
	"github.com/custodia-labs/socrates/internal/logger"
)

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// contextSleep is the production Sleeper.
func contextSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// RetryCoordinator runs a sync function with bounded retries, exponential
// backoff and a per-attempt deadline. It holds no state between calls.
type RetryCoordinator struct {
	defaults driving.RetryOptions
	sleep    Sleeper
}

// NewRetryCoordinator creates a coordinator whose zero-valued options fall
// back to settings.
func NewRetryCoordinator(settings domain.SyncSettings) *RetryCoordinator {
	return &RetryCoordinator{
		defaults: driving.RetryOptions{
			MaxRetries:        settings.MaxRetries,
			TimeoutPerAttempt: settings.TimeoutPerAttempt,
			BackoffBase:       settings.BackoffBase,
		},
		sleep: contextSleep,
	}
}

// WithSleeper replaces the backoff sleeper. Tests use it to avoid real waits.
func (c *RetryCoordinator) WithSleeper(s Sleeper) *RetryCoordinator {
	c.sleep = s
	return c
}

// Resolve fills zero-valued options from the coordinator defaults.
// A negative MaxRetries means "no retries"; larger values than
// domain.MaxRetriesLimit are clamped.
func (c *RetryCoordinator) Resolve(opts driving.RetryOptions) driving.RetryOptions {
	if opts.MaxRetries == 0 {
		opts.MaxRetries = c.defaults.MaxRetries
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.MaxRetries > domain.MaxRetriesLimit {
		opts.MaxRetries = domain.MaxRetriesLimit
	}
	if opts.TimeoutPerAttempt <= 0 {
		opts.TimeoutPerAttempt = c.defaults.TimeoutPerAttempt
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = c.defaults.BackoffBase
	}
	return opts
}

// MaxBackoff caps a single backoff delay.
const MaxBackoff = 10 * time.Minute

// Backoff returns the delay after failed attempt n (0-based): base * 2^n,
// capped at MaxBackoff.
func Backoff(base time.Duration, n int) time.Duration {
	if base <= 0 {
		return 0
	}
	for ; n > 0 && base < MaxBackoff; n-- {
		base <<= 1
	}
	return min(base, MaxBackoff)
}

// WorstCaseDuration bounds the wall-clock time of one SyncWithRetryAndResume
// call: every attempt times out and every backoff is slept in full.
func WorstCaseDuration(opts driving.RetryOptions) time.Duration {
	var total time.Duration
	for n := 0; n < opts.MaxRetries; n++ {
		total += Backoff(opts.BackoffBase, n)
	}
	return total + time.Duration(opts.MaxRetries+1)*opts.TimeoutPerAttempt
}

// SyncWithRetryAndResume invokes fn until it succeeds, fails with a
// non-retryable error, or MaxRetries retries are spent.
// Attempts in the outcome never exceed MaxRetries+1.
func (c *RetryCoordinator) SyncWithRetryAndResume(
	ctx context.Context, ref domain.RepositoryRef, fn driving.SyncFunc, opts driving.RetryOptions,
) domain.RetryOutcome {
	opts = c.Resolve(opts)
	logger.Debug("sync %s: up to %d attempts, %s per attempt", ref, opts.MaxRetries+1, opts.TimeoutPerAttempt)

	var lastErr error
	attempts := 0
	for n := 0; n <= opts.MaxRetries; n++ {
		attempts++
		report, err := c.attempt(ctx, ref, fn, opts.TimeoutPerAttempt)
		if err == nil {
			if report != nil {
				report.Attempts = attempts
			}
			return domain.RetryOutcome{Status: domain.StatusSuccess, Payload: report, Attempts: attempts}
		}
		lastErr = err

		if ctx.Err() != nil {
			break
		}
		if !domain.IsRetryable(err) {
			logger.Debug("sync %s attempt %d: not retryable: %v", ref, attempts, err)
			break
		}
		if n == opts.MaxRetries {
			logger.Warn("sync %s: giving up after %d attempts: %v", ref, attempts, err)
			break
		}

		wait := Backoff(opts.BackoffBase, n)
		logger.Debug("sync %s attempt %d failed (%v), retrying in %s", ref, attempts, err, wait)
		if serr := c.sleep(ctx, wait); serr != nil {
			lastErr = fmt.Errorf("%w (last error: %v)", serr, err)
			break
		}
	}

	return domain.RetryOutcome{Status: domain.StatusFailed, LastError: lastErr, Attempts: attempts}
}

type attemptResult struct {
	report *domain.SyncReport
	err    error
}

// attempt runs fn under its own deadline. fn runs in a goroutine so an
// implementation that ignores ctx is abandoned rather than waited on.
func (c *RetryCoordinator) attempt(
	ctx context.Context, ref domain.RepositoryRef, fn driving.SyncFunc, timeout time.Duration,
) (*domain.SyncReport, error) {
	actx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan attemptResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- attemptResult{err: fmt.Errorf("sync attempt panicked: %v", r)}
			}
		}()
		report, err := fn(actx, ref)
		done <- attemptResult{report: report, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil && errors.Is(actx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			if _, classified := domain.KindOf(res.err); !classified {
				return nil, timeoutError(timeout, res.err)
			}
		}
		return res.report, res.err
	case <-actx.Done():
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, timeoutError(timeout, actx.Err())
	}
}

func timeoutError(timeout time.Duration, cause error) error {
	return domain.NewSyncError(domain.KindNetworkSyncFailed,
		fmt.Sprintf("sync attempt timed out after %s", timeout), cause)
}
