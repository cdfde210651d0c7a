package executor

import (
	"sort"

	"github.com/plexilrun/plexil/internal/domain"
)

// resourceState tracks one named quantitative resource: capacity,
// current occupants, and a FIFO wait list of node ids whose request
// could not be fully satisfied.
type resourceState struct {
	upperBound float64
	inUse      float64
	holders    map[string]bool
	waitQ      []string
}

// Arbiter is the admission-control layer for Command bodies that
// declare ResourceSpecs: requests are atomic all-or-nothing across
// every named resource a body declares, and a node whose request cannot
// be fully satisfied is parked on every requested resource's wait queue
// rather than partially granted.
type Arbiter struct {
	resources map[string]*resourceState
}

func NewArbiter() *Arbiter {
	return &Arbiter{resources: make(map[string]*resourceState)}
}

func (a *Arbiter) stateFor(spec domain.ResourceSpec) *resourceState {
	s, ok := a.resources[spec.Name]
	if !ok {
		s = &resourceState{upperBound: spec.UpperBound, holders: make(map[string]bool)}
		a.resources[spec.Name] = s
	}
	return s
}

// Request atomically grants or denies nodeID's hold on every resource in
// specs: either every resource is granted or none are, with no partial
// hold left behind. On denial, nodeID is enqueued on every resource it
// asked for.
func (a *Arbiter) Request(nodeID string, specs []domain.ResourceSpec) bool {
	for _, spec := range specs {
		s := a.stateFor(spec)
		if s.holders[nodeID] {
			continue // already held: re-entrant request needs no extra capacity
		}
		if s.inUse+1 > s.upperBound {
			a.enqueue(nodeID, specs)
			return false
		}
	}
	for _, spec := range specs {
		s := a.stateFor(spec)
		if s.holders[nodeID] {
			continue
		}
		s.holders[nodeID] = true
		s.inUse++
	}
	return true
}

func (a *Arbiter) enqueue(nodeID string, specs []domain.ResourceSpec) {
	for _, spec := range specs {
		s := a.stateFor(spec)
		for _, w := range s.waitQ {
			if w == nodeID {
				return
			}
		}
		s.waitQ = append(s.waitQ, nodeID)
	}
}

// Release gives up nodeID's hold on every resource in specs and returns
// the set of waiting node ids that are now able to re-try (their request
// may still fail again if it also needs a resource someone else holds;
// the executive is responsible for re-attempting Request for each).
// Release order is irrelevant for a capacity-counted resource; "reverse
// of acquisition order" only applies to single-holder mutexes, modeled
// separately by domain.Mutex.
func (a *Arbiter) Release(nodeID string, specs []domain.ResourceSpec) []string {
	promoted := make(map[string]bool)
	for _, spec := range specs {
		s, ok := a.resources[spec.Name]
		if !ok {
			continue
		}
		if !s.holders[nodeID] {
			domain.Fail("node %q released resource %q it does not hold", nodeID, spec.Name)
		}
		delete(s.holders, nodeID)
		s.inUse--

		if len(s.waitQ) > 0 {
			next := s.waitQ[0]
			s.waitQ = s.waitQ[1:]
			promoted[next] = true
		}
	}
	out := make([]string, 0, len(promoted))
	for id := range promoted {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// PendingNodes returns every node id currently queued on any resource, a
// snapshot the backoff safety net uses to re-try requests that a release
// notification might have missed.
func (a *Arbiter) PendingNodes() []string {
	seen := make(map[string]bool)
	for _, s := range a.resources {
		for _, id := range s.waitQ {
			seen[id] = true
		}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
