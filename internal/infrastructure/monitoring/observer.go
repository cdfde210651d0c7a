// Package monitoring is the executive's write-only event fan-out: every
// state transition, mutex acquire/release, resource grant/release, and
// external-interface call is published as a PlanEvent to every
// registered PlanObserver. The queue_status and condition_bound kinds
// are defined here, but the executive does not publish them. No
// observer can feed a value back into plan evaluation.
package monitoring

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// EventKind enumerates the shapes of event the executive publishes.
type EventKind string

const (
	EventTransition      EventKind = "transition"
	EventQueueStatus     EventKind = "queue_status"
	EventConditionBound  EventKind = "condition_bound"
	EventResourceGrant   EventKind = "resource_grant"
	EventResourceRelease EventKind = "resource_release"
	EventMutexAcquire    EventKind = "mutex_acquire"
	EventMutexRelease    EventKind = "mutex_release"
	EventInterfaceCall   EventKind = "interface_call"
)

// PlanEvent is one immutable fact about the running plan. Fields is a
// small, kind-specific bag (e.g. "from"/"to" for a transition,
// "resource"/"node_id" for a grant) rather than a typed struct per kind,
// so a new event kind never forces a sink to change its decoding.
type PlanEvent struct {
	Kind      EventKind
	NodeID    string
	Tick      int64
	At        time.Time
	Fields    map[string]any
}

// PlanObserver receives every published PlanEvent. Implementations must
// not block the executive for long; a slow sink should buffer or drop.
type PlanObserver interface {
	OnEvent(e PlanEvent)
}

// ObserverManager fans a single published event out to every registered
// observer, list-of-sinks style.
type ObserverManager struct {
	mu        sync.RWMutex
	observers []PlanObserver
}

func NewObserverManager() *ObserverManager {
	return &ObserverManager{}
}

func (m *ObserverManager) Add(o PlanObserver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, o)
}

func (m *ObserverManager) Remove(o PlanObserver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, have := range m.observers {
		if have == o {
			m.observers = append(m.observers[:i], m.observers[i+1:]...)
			return
		}
	}
}

// Publish fans e out to every observer currently registered.
func (m *ObserverManager) Publish(e PlanEvent) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.observers {
		o.OnEvent(e)
	}
}

// ConsoleObserver logs every event through zerolog at Debug level,
// tagged by kind and node id.
type ConsoleObserver struct {
	log zerolog.Logger
}

func NewConsoleObserver(log zerolog.Logger) *ConsoleObserver {
	return &ConsoleObserver{log: log}
}

func (c *ConsoleObserver) OnEvent(e PlanEvent) {
	ev := c.log.Debug().Str("kind", string(e.Kind)).Int64("tick", e.Tick)
	if e.NodeID != "" {
		ev = ev.Str("node_id", e.NodeID)
	}
	for k, v := range e.Fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg("plan_event")
}

var _ PlanObserver = (*ConsoleObserver)(nil)
