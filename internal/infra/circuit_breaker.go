package infra

import (
	"errors"
	"sync"
	"time"
)

// Breaker guards calls to the diagram renderer sidecar. A run of consecutive
// failures opens it and every call fast-fails; after the cool-down a single
// probe is let through, and a short run of probe successes closes it again.

// BreakerState is one of closed, open, half-open.
type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

// String is used by the health endpoint and logs.
func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrBreakerOpen is returned by Do while the breaker is open.
var ErrBreakerOpen = errors.New("renderer circuit breaker is open")

// BreakerConfig tunes the breaker. Zero values fall back to defaults
// (trip after 5 failures, close after 2 probe successes, 60s cool-down).
type BreakerConfig struct {
	TripAfter  int
	CloseAfter int
	OpenFor    time.Duration
}

type Breaker struct {
	mu        sync.Mutex
	cfg       BreakerConfig
	state     BreakerState
	failures  int
	successes int
	openedAt  time.Time
}

func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.TripAfter <= 0 {
		cfg.TripAfter = 5
	}
	if cfg.CloseAfter <= 0 {
		cfg.CloseAfter = 2
	}
	if cfg.OpenFor <= 0 {
		cfg.OpenFor = 60 * time.Second
	}
	return &Breaker{cfg: cfg}
}

func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current()
}

// current applies the open → half-open cool-down. Callers hold b.mu.
func (b *Breaker) current() BreakerState {
	if b.state == BreakerOpen && time.Since(b.openedAt) >= b.cfg.OpenFor {
		b.state = BreakerHalfOpen
		b.successes = 0
	}
	return b.state
}

// Do runs fn unless the breaker is open, and feeds the outcome back into the
// state machine.
func (b *Breaker) Do(fn func() error) error {
	b.mu.Lock()
	if b.current() == BreakerOpen {
		b.mu.Unlock()
		return ErrBreakerOpen
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.record(err == nil)
	return err
}

func (b *Breaker) record(ok bool) {
	switch {
	case ok && b.state == BreakerHalfOpen:
		b.successes++
		if b.successes >= b.cfg.CloseAfter {
			b.state = BreakerClosed
			b.failures = 0
			b.successes = 0
		}
	case ok:
		b.failures = 0
	case b.state == BreakerHalfOpen:
		// Failed probe: back to open, restart the cool-down.
		b.state = BreakerOpen
		b.openedAt = time.Now()
		b.failures = 0
	default:
		b.failures++
		if b.failures >= b.cfg.TripAfter {
			b.state = BreakerOpen
			b.openedAt = time.Now()
		}
	}
}
