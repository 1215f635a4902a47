package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/socrates/internal/core/domain"
	"github.com/custodia-labs/socrates/internal/core/ports/driving"
)

var retryRef = domain.RepositoryRef{Host: "github.com", Owner: "octocat", Name: "essay"}

// recordingSleeper records requested backoffs without waiting.
type recordingSleeper struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (s *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waits = append(s.waits, d)
	return ctx.Err()
}

func newTestCoordinator(maxRetries int) (*RetryCoordinator, *recordingSleeper) {
	settings := domain.DefaultSyncSettings()
	settings.MaxRetries = maxRetries
	settings.TimeoutPerAttempt = time.Second
	settings.BackoffBase = 10 * time.Millisecond
	rec := &recordingSleeper{}
	return NewRetryCoordinator(settings).WithSleeper(rec.sleep), rec
}

func networkErr() error {
	return domain.NewSyncError(domain.KindNetworkSyncFailed, "connection reset", nil)
}

func TestRetry_SucceedsFirstTime(t *testing.T) {
	c, rec := newTestCoordinator(3)

	outcome := c.SyncWithRetryAndResume(context.Background(), retryRef,
		func(context.Context, domain.RepositoryRef) (*domain.SyncReport, error) {
			return &domain.SyncReport{Status: domain.StatusSuccess}, nil
		}, driving.RetryOptions{})

	assert.True(t, outcome.Succeeded())
	assert.Equal(t, 1, outcome.Attempts)
	assert.Equal(t, 1, outcome.Payload.Attempts)
	assert.NoError(t, outcome.LastError)
	assert.Empty(t, rec.waits)
}

func TestRetry_ExhaustsRetries(t *testing.T) {
	c, rec := newTestCoordinator(3)
	var calls atomic.Int32

	outcome := c.SyncWithRetryAndResume(context.Background(), retryRef,
		func(context.Context, domain.RepositoryRef) (*domain.SyncReport, error) {
			calls.Add(1)
			return nil, networkErr()
		}, driving.RetryOptions{})

	assert.Equal(t, domain.StatusFailed, outcome.Status)
	assert.Equal(t, 4, outcome.Attempts)
	assert.Equal(t, int32(4), calls.Load())
	assert.ErrorIs(t, outcome.LastError, domain.ErrNetworkSyncFailed)
	assert.Nil(t, outcome.Payload)
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 40 * time.Millisecond}, rec.waits)
}

func TestRetry_RecoversAfterTransientFailures(t *testing.T) {
	c, _ := newTestCoordinator(3)
	var calls atomic.Int32

	outcome := c.SyncWithRetryAndResume(context.Background(), retryRef,
		func(context.Context, domain.RepositoryRef) (*domain.SyncReport, error) {
			if calls.Add(1) <= 2 {
				return nil, networkErr()
			}
			return &domain.SyncReport{Status: domain.StatusSuccess, CommitSHA: "abc"}, nil
		}, driving.RetryOptions{})

	require.True(t, outcome.Succeeded())
	assert.Equal(t, 3, outcome.Attempts)
	assert.Equal(t, "abc", outcome.Payload.CommitSHA)
	assert.Equal(t, 3, outcome.Payload.Attempts)
}

func TestRetry_NonRetryableStopsImmediately(t *testing.T) {
	for _, err := range []error{
		domain.NewSyncError(domain.KindPermissionDenied, "denied", nil),
		domain.NewSyncError(domain.KindTokenExpired, "expired", nil),
		domain.NewSyncError(domain.KindRepositoryNotFound, "missing", nil),
		domain.NewSyncError(domain.KindConflictResolutionFailed, "conflicts", nil),
		errors.New("disk full"),
	} {
		c, rec := newTestCoordinator(3)
		var calls atomic.Int32

		outcome := c.SyncWithRetryAndResume(context.Background(), retryRef,
			func(context.Context, domain.RepositoryRef) (*domain.SyncReport, error) {
				calls.Add(1)
				return nil, err
			}, driving.RetryOptions{})

		assert.Equal(t, 1, outcome.Attempts, err.Error())
		assert.Equal(t, int32(1), calls.Load())
		assert.Same(t, err, outcome.LastError)
		assert.Empty(t, rec.waits)
	}
}

func TestRetry_ZeroRetries(t *testing.T) {
	c, _ := newTestCoordinator(0)

	outcome := c.SyncWithRetryAndResume(context.Background(), retryRef,
		func(context.Context, domain.RepositoryRef) (*domain.SyncReport, error) {
			return nil, networkErr()
		}, driving.RetryOptions{})

	assert.Equal(t, 1, outcome.Attempts)
}

func TestRetry_OptionsOverrideDefaults(t *testing.T) {
	c, _ := newTestCoordinator(5)

	outcome := c.SyncWithRetryAndResume(context.Background(), retryRef,
		func(context.Context, domain.RepositoryRef) (*domain.SyncReport, error) {
			return nil, networkErr()
		}, driving.RetryOptions{MaxRetries: 1})

	assert.Equal(t, 2, outcome.Attempts)

	outcome = c.SyncWithRetryAndResume(context.Background(), retryRef,
		func(context.Context, domain.RepositoryRef) (*domain.SyncReport, error) {
			return nil, networkErr()
		}, driving.RetryOptions{MaxRetries: -1})

	assert.Equal(t, 1, outcome.Attempts)
}

func TestRetry_AttemptTimeout(t *testing.T) {
	c, _ := newTestCoordinator(1)
	var calls atomic.Int32

	outcome := c.SyncWithRetryAndResume(context.Background(), retryRef,
		func(ctx context.Context, _ domain.RepositoryRef) (*domain.SyncReport, error) {
			calls.Add(1)
			<-ctx.Done()
			return nil, ctx.Err()
		}, driving.RetryOptions{TimeoutPerAttempt: 20 * time.Millisecond})

	assert.Equal(t, domain.StatusFailed, outcome.Status)
	assert.Equal(t, 2, outcome.Attempts)
	assert.ErrorIs(t, outcome.LastError, domain.ErrNetworkSyncFailed)
	assert.ErrorIs(t, outcome.LastError, context.DeadlineExceeded)
	assert.Contains(t, outcome.LastError.Error(), "timed out after 20ms")
}

func TestRetry_AbandonsAttemptIgnoringContext(t *testing.T) {
	c, _ := newTestCoordinator(0)
	release := make(chan struct{})
	defer close(release)

	start := time.Now()
	outcome := c.SyncWithRetryAndResume(context.Background(), retryRef,
		func(context.Context, domain.RepositoryRef) (*domain.SyncReport, error) {
			<-release
			return &domain.SyncReport{}, nil
		}, driving.RetryOptions{TimeoutPerAttempt: 20 * time.Millisecond})

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, domain.StatusFailed, outcome.Status)
	assert.ErrorIs(t, outcome.LastError, domain.ErrNetworkSyncFailed)
}

func TestRetry_ParentCancelled(t *testing.T) {
	c, _ := newTestCoordinator(3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome := c.SyncWithRetryAndResume(ctx, retryRef,
		func(ctx context.Context, _ domain.RepositoryRef) (*domain.SyncReport, error) {
			return nil, ctx.Err()
		}, driving.RetryOptions{})

	assert.Equal(t, 1, outcome.Attempts)
	assert.ErrorIs(t, outcome.LastError, context.Canceled)
}

func TestRetry_PanicIsAFailedAttempt(t *testing.T) {
	c, _ := newTestCoordinator(3)

	outcome := c.SyncWithRetryAndResume(context.Background(), retryRef,
		func(context.Context, domain.RepositoryRef) (*domain.SyncReport, error) {
			panic("boom")
		}, driving.RetryOptions{})

	assert.Equal(t, 1, outcome.Attempts)
	assert.Contains(t, outcome.LastError.Error(), "panicked: boom")
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, time.Second, Backoff(time.Second, 0))
	assert.Equal(t, 2*time.Second, Backoff(time.Second, 1))
	assert.Equal(t, 8*time.Second, Backoff(time.Second, 3))
	assert.Equal(t, time.Duration(0), Backoff(0, 5))
}

func TestBackoff_Capped(t *testing.T) {
	assert.Equal(t, MaxBackoff, Backoff(time.Second, 34))
	assert.Equal(t, MaxBackoff, Backoff(time.Second, 1000))
	assert.Equal(t, MaxBackoff, Backoff(time.Hour, 0))
	for n := 0; n < 64; n++ {
		assert.Positive(t, Backoff(time.Second, n), "attempt %d", n)
	}
}

func TestWorstCaseDuration(t *testing.T) {
	got := WorstCaseDuration(driving.RetryOptions{
		MaxRetries:        3,
		TimeoutPerAttempt: time.Minute,
		BackoffBase:       time.Second,
	})

	assert.Equal(t, 4*time.Minute+7*time.Second, got)
}

func TestWorstCaseDuration_LargeRetryCount(t *testing.T) {
	got := WorstCaseDuration(driving.RetryOptions{
		MaxRetries:        40,
		TimeoutPerAttempt: time.Minute,
		BackoffBase:       time.Second,
	})

	assert.Positive(t, got)
	assert.LessOrEqual(t, got, 40*MaxBackoff+41*time.Minute)
}

func TestRetryCoordinator_Resolve(t *testing.T) {
	c := NewRetryCoordinator(domain.DefaultSyncSettings())

	got := c.Resolve(driving.RetryOptions{})

	assert.Equal(t, 3, got.MaxRetries)
	assert.Equal(t, 5*time.Minute, got.TimeoutPerAttempt)
	assert.Equal(t, time.Second, got.BackoffBase)

	clamped := c.Resolve(driving.RetryOptions{MaxRetries: 1 << 20})
	assert.Equal(t, domain.MaxRetriesLimit, clamped.MaxRetries)
}
