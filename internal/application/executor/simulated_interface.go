package executor

import (
	"context"
	"fmt"
	"sync"

	"github.com/plexilrun/plexil/internal/domain"
)

// CommandHandler computes a simulated command's outcome synchronously:
// the value to hand back through SetCommandReturn (zero Value if the
// command declares no return) and the terminal handle to report.
type CommandHandler func(ctx context.Context, args []domain.Value) (domain.Value, domain.CommandHandle, error)

// SimulatedInterface is an in-memory ExternalInterface for demos and
// tests: one command handler per registered name, a settable lookup
// table, and a logical clock the caller advances explicitly. Every
// operation resolves synchronously within the call that triggers it,
// the same way the builtin executors resolve a config/input pair to a
// result without any real external transport.
type SimulatedInterface struct {
	mu sync.Mutex

	cb       Callbacks
	commands map[string]CommandHandler
	lookups  map[string]domain.Value
	clock    float64
}

// NewSimulatedInterface builds a simulator with no Callbacks wired yet;
// call SetCallbacks once the Executive that will drive it exists (the
// two are constructed back to back, each needing the other).
func NewSimulatedInterface() *SimulatedInterface {
	return &SimulatedInterface{
		commands: make(map[string]CommandHandler),
		lookups:  make(map[string]domain.Value),
	}
}

// SetCallbacks wires the Executive this simulator reports back into.
func (s *SimulatedInterface) SetCallbacks(cb Callbacks) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cb = cb
}

// RegisterCommand installs the handler invoked for every Command node
// dispatching name. A name with no registered handler succeeds
// immediately with an unknown return value, the simplest useful default
// for a plan exercising control flow rather than a specific effect.
func (s *SimulatedInterface) RegisterCommand(name string, h CommandHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands[name] = h
}

// SetLookup fixes the value LookupNow and any active subscription
// return for name until the next SetLookup call, and pushes the new
// value to every subscriber through Callbacks.LookupUpdate.
func (s *SimulatedInterface) SetLookup(name string, v domain.Value) {
	s.mu.Lock()
	s.lookups[name] = v
	s.mu.Unlock()
	s.cb.LookupUpdate(name, v)
}

// AdvanceTime moves the logical clock CurrentTime reports forward by dt
// seconds. Nothing re-evaluates automatically; callers that depend on
// time-driven conditions must re-run RunToQuiescence afterward.
func (s *SimulatedInterface) AdvanceTime(dt float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock += dt
}

func (s *SimulatedInterface) CurrentTime(_ context.Context) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock, nil
}

func (s *SimulatedInterface) ExecuteCommand(ctx context.Context, ref CommandRef) error {
	s.mu.Lock()
	h, ok := s.commands[ref.Name]
	s.mu.Unlock()

	s.cb.SetCommandHandle(ref, domain.CommandAccepted)

	if !ok {
		s.cb.SetCommandHandle(ref, domain.CommandSuccess)
		return nil
	}

	value, handle, err := h(ctx, ref.Args)
	if err != nil {
		s.cb.SetCommandHandle(ref, domain.CommandInterfaceError)
		return fmt.Errorf("command %q: %w", ref.Name, err)
	}
	s.cb.SetCommandReturn(ref, value)
	s.cb.SetCommandHandle(ref, handle)
	return nil
}

func (s *SimulatedInterface) AbortCommand(_ context.Context, ref CommandRef) error {
	s.cb.AcknowledgeAbort(ref, true)
	return nil
}

func (s *SimulatedInterface) ExecuteUpdate(_ context.Context, ref UpdateRef) error {
	s.cb.AcknowledgeUpdate(ref, true)
	return nil
}

func (s *SimulatedInterface) ExecuteAssignment(_ context.Context, ref AssignmentRef) error {
	s.cb.AcknowledgeAssignment(ref)
	return nil
}

func (s *SimulatedInterface) LookupNow(_ context.Context, name string, _ []domain.Value) (domain.Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.lookups[name]
	if !ok {
		return domain.Unknown(domain.TypeReal), nil
	}
	return v, nil
}

func (s *SimulatedInterface) SubscribeLookup(_ context.Context, _ string, _ []domain.Value) error {
	return nil
}

func (s *SimulatedInterface) UnsubscribeLookup(_ context.Context, _ string, _ []domain.Value) error {
	return nil
}

var _ ExternalInterface = (*SimulatedInterface)(nil)
