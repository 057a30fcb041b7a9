package resilience

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen rejects a call while the breaker is open.
var ErrOpen = errors.New("circuit open")

// State is the breaker state.
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Settings tunes a Breaker. Zero values pick conservative defaults.
type Settings struct {
	// FailureThreshold is how many consecutive failures trip the
	// breaker open.
	FailureThreshold int
	// Cooldown is how long the breaker stays open before probing.
	Cooldown time.Duration
	// OnStateChange is invoked on every transition, if set.
	OnStateChange func(name string, from, to State)
}

// Breaker is a consecutive-failure circuit breaker for a single
// downstream peer. After FailureThreshold consecutive failures calls
// fail fast with ErrOpen until Cooldown elapses; the next call then
// probes, and one success closes the circuit again.
type Breaker struct {
	name     string
	settings Settings

	mu            sync.Mutex
	state         State
	consecutive   int
	openedAt      time.Time
	probeInFlight bool
}

// New creates a breaker named for its peer.
func New(name string, settings Settings) *Breaker {
	if settings.FailureThreshold <= 0 {
		settings.FailureThreshold = 5
	}
	if settings.Cooldown <= 0 {
		settings.Cooldown = 30 * time.Second
	}
	return &Breaker{name: name, settings: settings}
}

// Name returns the peer name.
func (b *Breaker) Name() string { return b.name }

// State returns the current state, advancing open to half-open when the
// cooldown has elapsed.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentState(time.Now())
}

// Execute runs fn under the breaker.
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

	switch b.currentState(time.Now()) {
	case StateOpen:
		return ErrOpen
	case StateHalfOpen:
		// One probe at a time; concurrent callers fail fast rather
		// than piling onto a peer that may still be down.
		if b.probeInFlight {
			return ErrOpen
		}
		b.probeInFlight = true
	}
	return nil
}

func (b *Breaker) after(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.probeInFlight = false

	if success {
		b.consecutive = 0
		b.transition(StateClosed)
		return
	}

	b.consecutive++
	if b.state == StateHalfOpen || b.consecutive >= b.settings.FailureThreshold {
		b.openedAt = time.Now()
		b.transition(StateOpen)
	}
}

// currentState advances open to half-open on cooldown expiry. Must hold
// b.mu.
func (b *Breaker) currentState(now time.Time) State {
	if b.state == StateOpen && now.Sub(b.openedAt) >= b.settings.Cooldown {
		b.transition(StateHalfOpen)
	}
	return b.state
}

// transition changes state and fires the callback. Must hold b.mu.
func (b *Breaker) transition(next State) {
	if b.state == next {
		return
	}
	prev := b.state
	b.state = next
	if b.settings.OnStateChange != nil {
		b.settings.OnStateChange(b.name, prev, next)
	}
}
