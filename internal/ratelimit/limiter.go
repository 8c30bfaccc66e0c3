// Package ratelimit provides request pacing for the exchange client.
package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Limiter paces outgoing requests with a global limit plus per-class limits.
// Classes (e.g. "orders") get their own token bucket created on demand.
type Limiter struct {
	global   *rate.Limiter
	classes  sync.Map
	requests int
	period   time.Duration
	metrics  *Metrics
}

// Metrics tracks statistics about limiter usage.
type Metrics struct {
	totalRequests   atomic.Int64
	allowedRequests atomic.Int64
	deniedRequests  atomic.Int64
}

// New creates a Limiter allowing the specified number of requests per period.
func New(requests int, period time.Duration) *Limiter {
	rps := float64(requests) / period.Seconds()
	return &Limiter{
		global:   rate.NewLimiter(rate.Limit(rps), requests),
		requests: requests,
		period:   period,
		metrics:  &Metrics{},
	}
}

// Wait blocks until the global limiter allows a request or the context is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	l.metrics.totalRequests.Add(1)
	if err := l.global.Wait(ctx); err != nil {
		l.metrics.deniedRequests.Add(1)
		return err
	}
	l.metrics.allowedRequests.Add(1)
	return nil
}

// WaitClass blocks until the named request class allows a request or the
// context is cancelled. Classes are created on demand with the default limit.
func (l *Limiter) WaitClass(ctx context.Context, class string) error {
	l.metrics.totalRequests.Add(1)
	if err := l.getClass(class).Wait(ctx); err != nil {
		l.metrics.deniedRequests.Add(1)
		return err
	}
	l.metrics.allowedRequests.Add(1)
	return nil
}

// Allow returns true if the global limiter permits a request immediately.
func (l *Limiter) Allow() bool {
	l.metrics.totalRequests.Add(1)
	allowed := l.global.Allow()
	if allowed {
		l.metrics.allowedRequests.Add(1)
	} else {
		l.metrics.deniedRequests.Add(1)
	}
	return allowed
}

// SetClassLimit updates the limit and burst for a specific request class,
// creating it if absent.
func (l *Limiter) SetClassLimit(class string, requests int, period time.Duration) {
	rps := float64(requests) / period.Seconds()
	limiter := l.getClass(class)
	limiter.SetLimit(rate.Limit(rps))
	limiter.SetBurst(requests)
}

func (l *Limiter) getClass(class string) *rate.Limiter {
	if v, ok := l.classes.Load(class); ok {
		return v.(*rate.Limiter)
	}

	rps := float64(l.requests) / l.period.Seconds()
	limiter := rate.NewLimiter(rate.Limit(rps), l.requests)
	actual, _ := l.classes.LoadOrStore(class, limiter)
	return actual.(*rate.Limiter)
}

// Metrics returns a snapshot of the current limiter statistics.
func (l *Limiter) Metrics() MetricsSnapshot {
	return MetricsSnapshot{
		TotalRequests:   l.metrics.totalRequests.Load(),
		AllowedRequests: l.metrics.allowedRequests.Load(),
		DeniedRequests:  l.metrics.deniedRequests.Load(),
	}
}

// MetricsSnapshot is a point-in-time capture of limiter statistics.
type MetricsSnapshot struct {
	TotalRequests   int64
	AllowedRequests int64
	DeniedRequests  int64
}
