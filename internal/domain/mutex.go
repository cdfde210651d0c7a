package domain

// Mutex is the exclusion resource for plan-declared mutexes (distinct
// from the quantitative ResourceSpec arbiter) that grant exclusive
// access to at most one node at a time, queued FIFO.
type Mutex struct {
	name   string
	holder string   // node id currently holding the mutex, "" if free
	waitQ  []string // node ids waiting, in arrival order
}

// NewMutex builds a free, unheld mutex.
func NewMutex(name string) *Mutex {
	return &Mutex{name: name}
}

func (m *Mutex) Name() string { return m.name }

// IsHeld reports whether some node currently holds the mutex.
func (m *Mutex) IsHeld() bool { return m.holder != "" }

// Holder returns the id of the node holding the mutex, or "" if free.
func (m *Mutex) Holder() string { return m.holder }

// TryAcquire grants the mutex to nodeID if it is free or already held by
// nodeID (re-entrant use by the same node is a no-op grant), enqueuing
// nodeID FIFO otherwise. Returns true if the mutex is now held by nodeID.
func (m *Mutex) TryAcquire(nodeID string) bool {
	if m.holder == "" {
		m.holder = nodeID
		return true
	}
	if m.holder == nodeID {
		return true
	}
	for _, w := range m.waitQ {
		if w == nodeID {
			return false
		}
	}
	m.waitQ = append(m.waitQ, nodeID)
	return false
}

// Release gives up the mutex if held by nodeID, handing it to the next
// waiter (if any) in FIFO order and reporting that waiter's id so the
// caller can re-schedule it; the second return is false if nothing was
// promoted (no waiter, or nodeID was not the holder). Releasing a mutex
// not held by nodeID is a no-op (a node that never acquired it has
// nothing to give back).
func (m *Mutex) Release(nodeID string) (promoted string, ok bool) {
	if m.holder != nodeID {
		return "", false
	}
	if len(m.waitQ) == 0 {
		m.holder = ""
		return "", false
	}
	m.holder, m.waitQ = m.waitQ[0], m.waitQ[1:]
	return m.holder, true
}

// Waiters returns a snapshot of the FIFO wait queue, for the periodic
// backoff rescan to walk without reaching into Mutex internals.
func (m *Mutex) Waiters() []string {
	return append([]string(nil), m.waitQ...)
}

// CancelWait removes nodeID from the wait queue without affecting the
// current holder, used when a waiting node exits before ever acquiring.
func (m *Mutex) CancelWait(nodeID string) {
	for i, w := range m.waitQ {
		if w == nodeID {
			m.waitQ = append(m.waitQ[:i], m.waitQ[i+1:]...)
			return
		}
	}
}
