// Package circuit provides a simple circuit breaker for collaborator checks.
package circuit

import "sync"

// State represents the circuit breaker state.
type State int

const (
	// StateClosed means the collaborator is healthy and checks flow normally.
	StateClosed State = iota
	// StateOpen means the collaborator has tripped and checks should degrade
	// to the unknown outcome without calling it.
	StateOpen
)

// StateChange represents a circuit breaker state transition.
type StateChange struct {
	Opened bool
	Closed bool
}

// Breaker tracks consecutive failures for a single collaborator. Two
// states only: closed (checks flow) and open (degrade to unknown). After
// FailureThreshold consecutive failures the circuit opens; after
// SuccessThreshold consecutive successes while open it closes again.
type Breaker struct {
	mu               sync.Mutex
	state            State
	name             string
	failureCount     int
	successCount     int
	failureThreshold int
	successThreshold int
}

// Option configures a Breaker instance.
type Option func(*Breaker)

// WithFailureThreshold sets the number of consecutive failures to open the circuit.
// Default is 3.
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.failureThreshold = n
		}
	}
}

// WithSuccessThreshold sets the number of consecutive successes to close the circuit.
// Default is 2.
func WithSuccessThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.successThreshold = n
		}
	}
}

// New creates a circuit breaker named after the collaborator it guards.
func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:             name,
		state:            StateClosed,
		failureThreshold: 3,
		successThreshold: 2,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Name returns the circuit breaker's name for logging/metrics.
func (b *Breaker) Name() string {
	return b.name
}

// IsOpen returns true if the circuit is open (tripped).
func (b *Breaker) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state == StateOpen
}

// RecordFailure records a failed check.
// Returns (degrade, stateChange): degrade is true when the circuit is now
// open and the caller should report unknown instead of calling again.
func (b *Breaker) RecordFailure() (degrade bool, change StateChange) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failureCount++
	b.successCount = 0

	if b.state == StateOpen {
		return true, StateChange{}
	}
	if b.failureCount >= b.failureThreshold {
		b.state = StateOpen
		return true, StateChange{Opened: true}
	}
	return false, StateChange{}
}

// RecordSuccess records a successful check.
// Returns (usePrimary, stateChange): usePrimary is true when the caller
// should keep using the collaborator directly.
func (b *Breaker) RecordSuccess() (usePrimary bool, change StateChange) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen {
		b.successCount++
		if b.successCount >= b.successThreshold {
			b.state = StateClosed
			b.failureCount = 0
			b.successCount = 0
			return true, StateChange{Closed: true}
		}
		return false, StateChange{}
	}
	b.failureCount = 0
	return true, StateChange{}
}

// Reset returns the breaker to closed with zero counts.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failureCount = 0
	b.successCount = 0
}
