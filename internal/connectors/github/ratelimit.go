package github

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// GitHubRateLimit is the authenticated rate limit (5000/hour).
	GitHubRateLimit = 5000

	// ProactiveRate is the steady request rate in requests per second.
	ProactiveRate = 1.2

	// ProactiveBurst lets a sync's token check, access check and create run back to back.
	ProactiveBurst = 3

	// MinBuffer is the minimum remaining requests before waiting for reset.
	MinBuffer = 100

	// HeaderRateLimit is the rate limit header.
	HeaderRateLimit = "X-RateLimit-Limit"

	// HeaderRateRemaining is the remaining requests header.
	HeaderRateRemaining = "X-RateLimit-Remaining"

	// HeaderRateReset is the reset timestamp header (Unix seconds).
	HeaderRateReset = "X-RateLimit-Reset"
)

// RateLimiter throttles API calls with a token bucket and pauses when the
// quota reported by GitHub drops below a reserve.
type RateLimiter struct {
	mu        sync.Mutex
	remaining int
	limit     int
	resetTime time.Time
	bucket    *rate.Limiter
	minBuffer int
	now       func() time.Time
}

// NewRateLimiter creates a rate limiter with the default throttle.
func NewRateLimiter() *RateLimiter {
	return NewRateLimiterWith(rate.Limit(ProactiveRate), ProactiveBurst, MinBuffer)
}

// NewRateLimiterWith creates a rate limiter with an explicit throttle and reserve.
func NewRateLimiterWith(r rate.Limit, burst, minBuffer int) *RateLimiter {
	return &RateLimiter{
		remaining: GitHubRateLimit,
		limit:     GitHubRateLimit,
		bucket:    rate.NewLimiter(r, burst),
		minBuffer: minBuffer,
		now:       time.Now,
	}
}

// Wait blocks until it's safe to make a request.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.bucket.Wait(ctx); err != nil {
		return err
	}

	wait := r.pause()
	if wait <= 0 {
		return nil
	}

	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// pause returns how long to wait for the quota to reset, or zero.
func (r *RateLimiter) pause() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.remaining >= r.minBuffer {
		return 0
	}
	return r.resetTime.Sub(r.now())
}

// UpdateFromResponse updates rate limit state from response headers.
func (r *RateLimiter) UpdateFromResponse(resp *http.Response) {
	if resp == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if val, ok := headerInt(resp, HeaderRateRemaining); ok {
		r.remaining = val
	}
	if val, ok := headerInt(resp, HeaderRateLimit); ok {
		r.limit = val
	}
	if val, ok := headerInt(resp, HeaderRateReset); ok {
		r.resetTime = time.Unix(int64(val), 0)
	}
}

// Remaining returns the current remaining requests.
func (r *RateLimiter) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remaining
}

// Limit returns the rate limit.
func (r *RateLimiter) Limit() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.limit
}

// ResetTime returns the rate limit reset time.
func (r *RateLimiter) ResetTime() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resetTime
}

func headerInt(resp *http.Response, name string) (int, bool) {
	v := resp.Header.Get(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
