package worker

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter throttles outbound model calls per variant, so a batch run
// does not trip provider rate limits on its own.
type Limiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a new rate limiter
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 2
	}

	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  rate.Limit(requestsPerSecond),
		defaultBurst: burst,
	}
}

// Wait blocks until a call to the given model variant is allowed
func (l *Limiter) Wait(ctx context.Context, variant string) error {
	return l.getLimiter(variant).Wait(ctx)
}

// Allow checks if a call is allowed without waiting
func (l *Limiter) Allow(variant string) bool {
	return l.getLimiter(variant).Allow()
}

// getLimiter returns the rate limiter for a model variant
func (l *Limiter) getLimiter(variant string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[variant]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := l.limiters[variant]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[variant] = limiter

	return limiter
}

// SetVariantRate sets a custom rate limit for a specific model variant
func (l *Limiter) SetVariantRate(variant string, requestsPerSecond float64, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if burst <= 0 {
		burst = l.defaultBurst
	}

	l.limiters[variant] = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}
