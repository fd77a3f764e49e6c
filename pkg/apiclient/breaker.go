package apiclient

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// BreakerState is the state of the client's circuit breaker.
type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
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

// breaker stops hammering a backend that keeps failing. Closed lets every
// request through; after threshold consecutive failures it opens and rejects
// requests until recovery has passed; then a single success closes it and a
// failure opens it again.
type breaker struct {
	mu sync.Mutex

	clock     clock.Clock
	threshold int
	recovery  time.Duration

	state       BreakerState
	failures    int
	lastFailure time.Time
}

func newBreaker(threshold int, recovery time.Duration, clk clock.Clock) *breaker {
	if recovery <= 0 {
		recovery = 30 * time.Second
	}
	return &breaker{clock: clk, threshold: threshold, recovery: recovery}
}

func (b *breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerOpen:
		if b.clock.Since(b.lastFailure) >= b.recovery {
			b.state = BreakerHalfOpen
			return true
		}
		return false
	default:
		return true
	}
}

func (b *breaker) success() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = BreakerClosed
	b.failures = 0
}

func (b *breaker) failure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lastFailure = b.clock.Now()
	switch b.state {
	case BreakerHalfOpen:
		b.state = BreakerOpen
	case BreakerClosed:
		b.failures++
		if b.failures >= b.threshold {
			b.state = BreakerOpen
		}
	}
}

func (b *breaker) current() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
