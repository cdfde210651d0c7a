package executor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/plexilrun/plexil/internal/domain"
)

// CircuitState is one of the three canonical breaker states.
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig tunes the trip/recovery thresholds.
type CircuitBreakerConfig struct {
	FailureThreshold int
	SuccessThreshold int
	Timeout          time.Duration
}

func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{FailureThreshold: 5, SuccessThreshold: 2, Timeout: 30 * time.Second}
}

// CircuitBreaker wraps outbound external-interface calls so a storm of
// INTERFACE_ERROR results trips open and fails fast instead of hammering
// a wedged external system; a half-open probe after Timeout decides
// whether to resume. This is a defensive supplement, not part of the
// primary per-command dispatch path the executive already drives off
// condition change notifications.
type CircuitBreaker struct {
	mu sync.Mutex

	cfg   CircuitBreakerConfig
	state CircuitState

	consecutiveFailures  int
	consecutiveSuccesses int
	openedAt             time.Time
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{cfg: cfg, state: CircuitClosed}
}

// Allow reports whether a call may proceed, transitioning OPEN->HALF_OPEN
// once cfg.Timeout has elapsed since the trip.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed, CircuitHalfOpen:
		return true
	case CircuitOpen:
		if time.Since(cb.openedAt) >= cb.cfg.Timeout {
			cb.state = CircuitHalfOpen
			return true
		}
		return false
	default:
		return false
	}
}

// RecordResult feeds back whether the last allowed call succeeded.
func (cb *CircuitBreaker) RecordResult(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.consecutiveFailures++
		cb.consecutiveSuccesses = 0
		if cb.state == CircuitHalfOpen || cb.consecutiveFailures >= cb.cfg.FailureThreshold {
			cb.state = CircuitOpen
			cb.openedAt = time.Now()
		}
		return
	}
	cb.consecutiveSuccesses++
	cb.consecutiveFailures = 0
	if cb.state == CircuitHalfOpen && cb.consecutiveSuccesses >= cb.cfg.SuccessThreshold {
		cb.state = CircuitClosed
	}
}

func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// ErrCircuitOpen is returned by BreakingInterface when a call is refused.
type ErrCircuitOpen struct{ Name string }

func (e *ErrCircuitOpen) Error() string { return fmt.Sprintf("circuit open for command %q", e.Name) }

// BreakingInterface wraps an ExternalInterface, keeping one CircuitBreaker
// per command name so a failing command can't starve the rest of the
// plan's dispatch.
type BreakingInterface struct {
	inner    ExternalInterface
	cfg      CircuitBreakerConfig
	mu       sync.Mutex
	breakers map[string]*CircuitBreaker
}

func NewBreakingInterface(inner ExternalInterface, cfg CircuitBreakerConfig) *BreakingInterface {
	return &BreakingInterface{inner: inner, cfg: cfg, breakers: make(map[string]*CircuitBreaker)}
}

func (b *BreakingInterface) breakerFor(name string) *CircuitBreaker {
	b.mu.Lock()
	defer b.mu.Unlock()
	cb, ok := b.breakers[name]
	if !ok {
		cb = NewCircuitBreaker(b.cfg)
		b.breakers[name] = cb
	}
	return cb
}

func (b *BreakingInterface) CurrentTime(ctx context.Context) (float64, error) {
	return b.inner.CurrentTime(ctx)
}

func (b *BreakingInterface) ExecuteCommand(ctx context.Context, ref CommandRef) error {
	cb := b.breakerFor(ref.Name)
	if !cb.Allow() {
		return &ErrCircuitOpen{Name: ref.Name}
	}
	err := b.inner.ExecuteCommand(ctx, ref)
	cb.RecordResult(err)
	return err
}

func (b *BreakingInterface) AbortCommand(ctx context.Context, ref CommandRef) error {
	return b.inner.AbortCommand(ctx, ref)
}

func (b *BreakingInterface) ExecuteUpdate(ctx context.Context, ref UpdateRef) error {
	return b.inner.ExecuteUpdate(ctx, ref)
}

func (b *BreakingInterface) ExecuteAssignment(ctx context.Context, ref AssignmentRef) error {
	return b.inner.ExecuteAssignment(ctx, ref)
}

func (b *BreakingInterface) LookupNow(ctx context.Context, name string, args []domain.Value) (domain.Value, error) {
	return b.inner.LookupNow(ctx, name, args)
}

func (b *BreakingInterface) SubscribeLookup(ctx context.Context, name string, args []domain.Value) error {
	return b.inner.SubscribeLookup(ctx, name, args)
}

func (b *BreakingInterface) UnsubscribeLookup(ctx context.Context, name string, args []domain.Value) error {
	return b.inner.UnsubscribeLookup(ctx, name, args)
}

var _ ExternalInterface = (*BreakingInterface)(nil)
