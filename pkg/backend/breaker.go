package backend

import (
	"fmt"
	"sync"
	"time"

	"github.com/ekaya-inc/ekaya-console/pkg/apperrors"
)

// BreakerState is the state of the back-end circuit.
type BreakerState int

const (
	// BreakerClosed lets calls through.
	BreakerClosed BreakerState = iota
	// BreakerOpen rejects calls until the reset period has passed.
	BreakerOpen
	// BreakerHalfOpen lets a single probe through.
	BreakerHalfOpen
)

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

// Breaker fails back-end calls fast after the back-end has been
// unavailable for threshold consecutive calls.
type Breaker struct {
	mu         sync.Mutex
	threshold  int
	resetAfter time.Duration
	failures   int
	lastFail   time.Time
	state      BreakerState
	now        func() time.Time
}

// NewBreaker returns a closed breaker. A threshold below one disables it.
func NewBreaker(threshold int, resetAfter time.Duration) *Breaker {
	return &Breaker{
		threshold:  threshold,
		resetAfter: resetAfter,
		now:        time.Now,
	}
}

// Allow returns an error wrapping apperrors.ErrBackendUnavailable when the
// call must not reach the back-end.
func (b *Breaker) Allow() error {
	if b == nil || b.threshold < 1 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerOpen:
		since := b.now().Sub(b.lastFail)
		if since < b.resetAfter {
			return fmt.Errorf("circuit open after %d failures, retry in %s: %w",
				b.failures, (b.resetAfter - since).Round(time.Second), apperrors.ErrBackendUnavailable)
		}
		b.state = BreakerHalfOpen
		return nil
	case BreakerHalfOpen:
		return fmt.Errorf("circuit half-open, probe in flight: %w", apperrors.ErrBackendUnavailable)
	default:
		return nil
	}
}

// Record updates the circuit with the outcome of a call. Only outcomes where
// unavailable is true count as failures; anything else closes the circuit.
func (b *Breaker) Record(unavailable bool) {
	if b == nil || b.threshold < 1 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !unavailable {
		b.failures = 0
		b.state = BreakerClosed
		return
	}

	b.failures++
	b.lastFail = b.now()
	if b.state == BreakerHalfOpen || b.failures >= b.threshold {
		b.state = BreakerOpen
	}
}

// Abandon records a call that ended without an outcome, such as one whose
// caller went away. A pending probe returns the circuit to open so the next
// call probes again.
func (b *Breaker) Abandon() {
	if b == nil || b.threshold < 1 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == BreakerHalfOpen {
		b.state = BreakerOpen
	}
}

// State returns the current circuit state.
func (b *Breaker) State() BreakerState {
	if b == nil {
		return BreakerClosed
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
