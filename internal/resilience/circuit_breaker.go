// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package resilience

import (
	"sync"
	"time"

	"github.com/ManuGH/tizenplay/internal/clock"
	"github.com/ManuGH/tizenplay/internal/metrics"
)

// State represents the breaker state.
type State string

const (
	StateClosed State = "closed"
	StateOpen   State = "open"
)

// Breaker counts consecutive failures and opens once the count exceeds its
// threshold. While open, Allow reports false until the cooldown has elapsed;
// the breaker then closes again with a cleared counter.
type Breaker struct {
	mu        sync.Mutex
	name      string // Component name for metrics
	state     State
	failures  int
	threshold int
	cooldown  time.Duration
	openedAt  time.Time
	clock     clock.Clock
}

// Option configuration pattern
type Option func(*Breaker)

// WithClock overrides the time source.
func WithClock(c clock.Clock) Option {
	return func(b *Breaker) { b.clock = c }
}

// NewBreaker creates a closed breaker.
func NewBreaker(name string, threshold int, cooldown time.Duration, opts ...Option) *Breaker {
	if threshold <= 0 {
		threshold = 3
	}
	if cooldown <= 0 {
		cooldown = 10 * time.Second
	}

	b := &Breaker{
		name:      name,
		state:     StateClosed,
		threshold: threshold,
		cooldown:  cooldown,
		clock:     clock.Real(),
	}
	for _, opt := range opts {
		opt(b)
	}

	metrics.SetCircuitBreakerState(b.name, string(b.state))
	return b
}

// Allow reports whether work may proceed, closing an open breaker whose
// cooldown has elapsed.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateClosed {
		return true
	}
	if b.clock.Now().Sub(b.openedAt) >= b.cooldown {
		b.failures = 0
		b.transitionTo(StateClosed)
		return true
	}
	return false
}

// RecordFailure counts one more consecutive failure. It returns true when this
// failure tripped the breaker open; the counter is cleared at that point.
func (b *Breaker) RecordFailure() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen {
		return false
	}
	b.failures++
	if b.failures > b.threshold {
		b.failures = 0
		metrics.RecordCircuitBreakerTrip(b.name, "threshold_exceeded")
		b.transitionTo(StateOpen)
		return true
	}
	return false
}

// Decay forgives one failure.
func (b *Breaker) Decay() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failures > 0 {
		b.failures--
	}
}

// Reset closes the breaker and clears the counter.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.transitionTo(StateClosed)
}

// Configure updates threshold and cooldown without touching the current state.
func (b *Breaker) Configure(threshold int, cooldown time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if threshold > 0 {
		b.threshold = threshold
	}
	if cooldown > 0 {
		b.cooldown = cooldown
	}
}

// transitionTo handles state transitions and updates metrics.
// Caller must hold lock.
func (b *Breaker) transitionTo(newState State) {
	if b.state == newState {
		return
	}
	b.state = newState
	if newState == StateOpen {
		b.openedAt = b.clock.Now()
	}
	metrics.SetCircuitBreakerState(b.name, string(newState))
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Failures returns the current consecutive failure count.
func (b *Breaker) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}
