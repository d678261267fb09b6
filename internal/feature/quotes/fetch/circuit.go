package fetch

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned when fetches for a symbol are being skipped
// after repeated consecutive failures.
var ErrCircuitOpen = errors.New("circuit open for symbol")

// circuitState represents the state of a per-symbol circuit.
type circuitState int

const (
	circuitClosed   circuitState = iota // normal operation
	circuitOpen                         // failing, fetches skipped until cooldown passes
	circuitHalfOpen                     // cooldown elapsed, one probe fetch allowed
)

type circuit struct {
	state       circuitState
	failures    int
	lastFailure time.Time
}

// CircuitBreaker tracks consecutive fetch failures per symbol and skips
// upstream attempts for a cooldown period once the threshold is reached.
// While a circuit is open callers fall back to the stale cache.
type CircuitBreaker struct {
	threshold int
	cooldown  time.Duration

	mu       sync.Mutex
	circuits map[string]*circuit
}

// NewCircuitBreaker creates a breaker opening after threshold consecutive
// failures and probing again after cooldown.
func NewCircuitBreaker(threshold int, cooldown time.Duration) *CircuitBreaker {
	if threshold <= 0 {
		threshold = 3
	}
	if cooldown <= 0 {
		cooldown = time.Minute
	}
	return &CircuitBreaker{
		threshold: threshold,
		cooldown:  cooldown,
		circuits:  make(map[string]*circuit),
	}
}

// Allow reports whether a fetch for symbol may proceed right now.
func (cb *CircuitBreaker) Allow(symbol string) bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	c, ok := cb.circuits[symbol]
	if !ok {
		return true
	}
	switch c.state {
	case circuitOpen:
		if time.Since(c.lastFailure) >= cb.cooldown {
			c.state = circuitHalfOpen
			return true
		}
		return false
	default:
		return true
	}
}

// Success resets the symbol's circuit after a successful fetch.
func (cb *CircuitBreaker) Success(symbol string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	delete(cb.circuits, symbol)
}

// Failure records a failed fetch and opens the circuit once the
// consecutive-failure threshold is reached.
func (cb *CircuitBreaker) Failure(symbol string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	c, ok := cb.circuits[symbol]
	if !ok {
		c = &circuit{}
		cb.circuits[symbol] = c
	}
	c.failures++
	c.lastFailure = time.Now()
	if c.state == circuitHalfOpen || c.failures >= cb.threshold {
		c.state = circuitOpen
	}
}
