package raven

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HeaderRetryAfter is the retry-after header (seconds or HTTP date).
const HeaderRetryAfter = "Retry-After"

// RateLimiter combines a proactive token bucket with the server's
// Retry-After hints.
type RateLimiter struct {
	mu           sync.Mutex
	bucket       *rate.Limiter // nil when unthrottled
	blockedUntil time.Time
	now          func() time.Time
}

// NewRateLimiter creates a limiter allowing requestsPerSecond requests.
// Zero or a negative rate disables proactive throttling.
func NewRateLimiter(requestsPerSecond float64) *RateLimiter {
	r := &RateLimiter{now: time.Now}
	if requestsPerSecond > 0 {
		r.bucket = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
	return r
}

// Wait blocks until it's safe to make a request.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if r.bucket != nil {
		if err := r.bucket.Wait(ctx); err != nil {
			return err
		}
	}

	r.mu.Lock()
	blockedUntil := r.blockedUntil
	r.mu.Unlock()

	wait := blockedUntil.Sub(r.now())
	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// CheckRateLimit returns a RateLimitError for throttled responses and
// records the server's Retry-After hint. Returns nil otherwise.
func (r *RateLimiter) CheckRateLimit(resp *http.Response) error {
	if resp == nil {
		return nil
	}
	if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode != http.StatusServiceUnavailable {
		return nil
	}

	retryAt := r.parseRetryAfter(resp.Header.Get(HeaderRetryAfter))
	if !retryAt.IsZero() {
		r.mu.Lock()
		if retryAt.After(r.blockedUntil) {
			r.blockedUntil = retryAt
		}
		r.mu.Unlock()
	}

	return &RateLimitError{StatusCode: resp.StatusCode, RetryAt: retryAt}
}

// BlockedUntil returns the time before which no request is sent.
func (r *RateLimiter) BlockedUntil() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.blockedUntil
}

func (r *RateLimiter) parseRetryAfter(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds >= 0 {
		return r.now().Add(time.Duration(seconds) * time.Second)
	}
	if at, err := http.ParseTime(value); err == nil {
		return at
	}
	return time.Time{}
}
