package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/longregen/livekit-token/internal/ports"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

type CircuitBreaker struct {
	mu          sync.Mutex
	state       State
	failures    int
	successes   int
	lastFailure time.Time

	maxFailures int
	timeout     time.Duration
	halfOpenMax int
	now         func() time.Time
}

func New(maxFailures int, timeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		state:       StateClosed,
		maxFailures: maxFailures,
		timeout:     timeout,
		halfOpenMax: 1,
		now:         time.Now,
	}
}

func (cb *CircuitBreaker) Execute(fn func() error) error {
	cb.mu.Lock()

	if cb.state == StateOpen {
		if cb.now().Sub(cb.lastFailure) > cb.timeout {
			cb.state = StateHalfOpen
			cb.successes = 0
		} else {
			cb.mu.Unlock()
			return ErrCircuitOpen
		}
	}
	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.failures++
		cb.lastFailure = cb.now()
		if cb.state == StateHalfOpen || cb.failures >= cb.maxFailures {
			cb.state = StateOpen
		}
		return err
	}

	if cb.state == StateHalfOpen {
		cb.successes++
		if cb.successes >= cb.halfOpenMax {
			cb.state = StateClosed
			cb.failures = 0
		}
	} else {
		cb.failures = 0
	}

	return nil
}

func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Checker guards a LiveKit connectivity check so that a server which keeps
// failing is not dialled on every health request.
type Checker struct {
	inner   ports.ConnectivityChecker
	breaker *CircuitBreaker
}

func NewChecker(inner ports.ConnectivityChecker, maxFailures int, timeout time.Duration) *Checker {
	return &Checker{inner: inner, breaker: New(maxFailures, timeout)}
}

func (c *Checker) CheckConnection(ctx context.Context) error {
	return c.breaker.Execute(func() error {
		return c.inner.CheckConnection(ctx)
	})
}

func (c *Checker) State() State {
	return c.breaker.State()
}

var _ ports.ConnectivityChecker = (*Checker)(nil)
