// Package resilience provides the circuit breaker guarding embed-page
// fetches. Repeated fetch failures open the circuit so a flapping origin
// does not stall every player construction behind HTTP timeouts.
package resilience

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned while the circuit is open and requests are refused.
var ErrOpen = errors.New("circuit breaker is open")

// State is the breaker state.
type State int

const (
	Closed State = iota
	HalfOpen
	Open
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case HalfOpen:
		return "half-open"
	case Open:
		return "open"
	default:
		return "unknown"
	}
}

// Settings configures breaker behavior.
type Settings struct {
	// FailureThreshold is the consecutive failure count that trips the
	// breaker from closed to open.
	FailureThreshold int
	// Cooldown is how long the breaker stays open before probing again.
	Cooldown time.Duration
	// ProbeSuccesses is how many consecutive half-open successes close
	// the breaker.
	ProbeSuccesses int
}

// DefaultSettings returns settings tuned for embed-page fetches.
func DefaultSettings() Settings {
	return Settings{
		FailureThreshold: 5,
		Cooldown:         30 * time.Second,
		ProbeSuccesses:   2,
	}
}

// Breaker is a minimal three-state circuit breaker.
type Breaker struct {
	name     string
	settings Settings

	mu        sync.Mutex
	state     State
	failures  int
	successes int
	openedAt  time.Time
}

// New creates a breaker with the given name and settings.
func New(name string, settings Settings) *Breaker {
	if settings.FailureThreshold <= 0 {
		settings.FailureThreshold = 5
	}
	if settings.Cooldown <= 0 {
		settings.Cooldown = 30 * time.Second
	}
	if settings.ProbeSuccesses <= 0 {
		settings.ProbeSuccesses = 1
	}
	return &Breaker{name: name, settings: settings, state: Closed}
}

// Name returns the breaker name.
func (b *Breaker) Name() string { return b.name }

// State returns the current state, accounting for cooldown expiry.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentState()
}

// Execute runs fn if the breaker accepts the request and records the
// outcome.
func (b *Breaker) Execute(fn func() error) error {
	if err := b.before(); err != nil {
		return err
	}
	err := fn()
	b.after(err == nil)
	return err
}

func (b *Breaker) before() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.currentState() == Open {
		return ErrOpen
	}
	return nil
}

func (b *Breaker) after(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	state := b.currentState()
	if success {
		b.failures = 0
		if state == HalfOpen {
			b.successes++
			if b.successes >= b.settings.ProbeSuccesses {
				b.state = Closed
				b.successes = 0
			}
		}
		return
	}

	b.successes = 0
	b.failures++
	if state == HalfOpen || b.failures >= b.settings.FailureThreshold {
		b.state = Open
		b.openedAt = time.Now()
		b.failures = 0
	}
}

// currentState applies cooldown expiry. Callers hold b.mu.
func (b *Breaker) currentState() State {
	if b.state == Open && time.Since(b.openedAt) >= b.settings.Cooldown {
		b.state = HalfOpen
		b.successes = 0
	}
	return b.state
}
