// Package circuitbreaker fails fast on a dependency that keeps erroring, so a
// broken optional backend (the response cache) does not add latency to every
// request.
package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned while the breaker is rejecting calls
var ErrOpen = errors.New("circuit breaker is open")

// State represents circuit breaker state
type State int

const (
	// StateClosed allows all calls
	StateClosed State = iota
	// StateOpen rejects all calls
	StateOpen
	// StateHalfOpen lets a single trial call through
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Config holds circuit breaker configuration
type Config struct {
	// FailureThreshold is the number of consecutive failures that trips the breaker
	FailureThreshold int
	// OpenTimeout is how long the breaker stays open before allowing a trial call
	OpenTimeout time.Duration
	// OnStateChange is called, under the breaker lock, when the state changes
	OnStateChange func(name string, from, to State)
}

// Breaker counts consecutive failures of a dependency
type Breaker struct {
	name          string
	threshold     int
	openTimeout   time.Duration
	onStateChange func(name string, from, to State)
	now           func() time.Time

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	inTrial  bool
}

// New creates a closed breaker
func New(name string, cfg Config) *Breaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}

	return &Breaker{
		name:          name,
		threshold:     cfg.FailureThreshold,
		openTimeout:   cfg.OpenTimeout,
		onStateChange: cfg.OnStateChange,
		now:           time.Now,
	}
}

// Allow reports whether a call may proceed. Every allowed call must be
// followed by exactly one Done.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.openTimeout {
			return ErrOpen
		}
		b.setState(StateHalfOpen)
		b.inTrial = true
		return nil
	case StateHalfOpen:
		if b.inTrial {
			return ErrOpen
		}
		b.inTrial = true
		return nil
	default:
		return nil
	}
}

// Done records the outcome of an allowed call
func (b *Breaker) Done(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateHalfOpen {
		b.inTrial = false
		if success {
			b.failures = 0
			b.setState(StateClosed)
		} else {
			b.trip()
		}
		return
	}

	if success {
		b.failures = 0
		return
	}

	b.failures++
	if b.state == StateClosed && b.failures >= b.threshold {
		b.trip()
	}
}

// State returns the current state
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Name returns the breaker name
func (b *Breaker) Name() string {
	return b.name
}

func (b *Breaker) trip() {
	b.openedAt = b.now()
	b.failures = 0
	b.setState(StateOpen)
}

func (b *Breaker) setState(state State) {
	if b.state == state {
		return
	}

	prev := b.state
	b.state = state

	if b.onStateChange != nil {
		b.onStateChange(b.name, prev, state)
	}
}
