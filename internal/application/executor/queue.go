package executor

import (
	"sort"

	"github.com/plexilrun/plexil/internal/domain"
)

// merge folds a newly-requested bookkeeping flag into whatever status a
// node already carries in the queue, combining CHECK with an in-flight
// TRANSITION or PENDING rather than clobbering it: a node can need both
// "re-evaluate my conditions" and "I have a commit to make" at once.
func merge(cur domain.QueueStatus, add domain.QueueStatus) domain.QueueStatus {
	if cur == add {
		return cur
	}
	switch add {
	case domain.QueueCheck:
		switch cur {
		case domain.QueueNone:
			return domain.QueueCheck
		case domain.QueueTransition:
			return domain.QueueTransitionCheck
		case domain.QueuePending:
			return domain.QueuePendingCheck
		case domain.QueuePendingTry:
			return domain.QueuePendingTryCheck
		default:
			return cur
		}
	case domain.QueueTransition:
		switch cur {
		case domain.QueueNone, domain.QueueCheck:
			return domain.QueueTransition
		default:
			return cur
		}
	case domain.QueuePending:
		switch cur {
		case domain.QueueNone, domain.QueueCheck:
			return domain.QueuePending
		default:
			return cur
		}
	case domain.QueuePendingTry:
		switch cur {
		case domain.QueueNone, domain.QueueCheck, domain.QueuePending:
			return domain.QueuePendingTry
		case domain.QueuePendingCheck:
			return domain.QueuePendingTryCheck
		default:
			return cur
		}
	default:
		return add
	}
}

// Queue is the executive's per-step candidate worklist: which nodes need
// a condition re-check, a decision commit, or a resource re-try before
// the step can quiesce.
type Queue struct {
	table  *domain.NodeTable
	status map[string]domain.QueueStatus
}

func NewQueue(table *domain.NodeTable) *Queue {
	return &Queue{table: table, status: make(map[string]domain.QueueStatus)}
}

func (q *Queue) Status(nodeID string) domain.QueueStatus {
	return q.status[nodeID]
}

// MarkCheck flags nodeID for condition re-evaluation this step.
func (q *Queue) MarkCheck(nodeID string) {
	q.set(nodeID, domain.QueueCheck)
}

// MarkTransition flags nodeID as having a decision ready to commit.
func (q *Queue) MarkTransition(nodeID string) {
	q.set(nodeID, domain.QueueTransition)
}

// MarkPending flags nodeID as newly blocked on mutex/resource admission.
func (q *Queue) MarkPending(nodeID string) {
	q.set(nodeID, domain.QueuePending)
}

// MarkPendingTry flags nodeID for a resource re-try (a release elsewhere
// may have freed what it is waiting on).
func (q *Queue) MarkPendingTry(nodeID string) {
	q.set(nodeID, domain.QueuePendingTry)
}

// DemotePending force-sets nodeID back to plain PENDING (or PENDING_CHECK
// if a condition check is also outstanding) after an admission retry
// fails again, so the node goes inert until the next real promotion
// instead of being re-tried every pass.
func (q *Queue) DemotePending(nodeID string) {
	switch q.status[nodeID] {
	case domain.QueuePendingTryCheck, domain.QueuePendingCheck:
		q.status[nodeID] = domain.QueuePendingCheck
	default:
		q.status[nodeID] = domain.QueuePending
	}
}

func (q *Queue) set(nodeID string, add domain.QueueStatus) {
	cur := q.status[nodeID]
	next := merge(cur, add)
	if next == domain.QueueNone {
		delete(q.status, nodeID)
		return
	}
	q.status[nodeID] = next
}

// Resolve clears nodeID's bookkeeping once the executive has taken it as
// a candidate for this pass, except for a CHECK half of a combined
// status, which demotes rather than clears (the node still needs its
// transition recomputed next pass).
func (q *Queue) Resolve(nodeID string) {
	switch q.status[nodeID] {
	case domain.QueueTransitionCheck:
		q.status[nodeID] = domain.QueueCheck
	case domain.QueuePendingCheck:
		q.status[nodeID] = domain.QueueCheck
	case domain.QueuePendingTryCheck:
		q.status[nodeID] = domain.QueueCheck
	default:
		delete(q.status, nodeID)
	}
}

// actionable reports whether status represents work a pass should try
// this round. Bare PENDING (parked, blocked, nothing new to try) is
// deliberately excluded: re-attempting admission against unchanged
// arbiter state every pass would spin forever. Only a fresh PENDING_TRY
// (a release notification or the backoff rescan) makes a blocked node
// actionable again.
func actionable(s domain.QueueStatus) bool {
	switch s {
	case domain.QueueCheck, domain.QueueTransition, domain.QueueTransitionCheck,
		domain.QueuePendingTry, domain.QueuePendingCheck, domain.QueuePendingTryCheck:
		return true
	default:
		return false
	}
}

// Pending reports whether the queue has actionable work left this step.
func (q *Queue) Pending() bool {
	for _, s := range q.status {
		if actionable(s) {
			return true
		}
	}
	return false
}

// Drain returns every actionable queued node id sorted by ascending
// Priority (lower value wins ties, reused from the Assignment-conflict
// ordering as the general candidate ordering), then by id for
// determinism. Nodes parked in bare PENDING are left in the queue,
// untouched, until something promotes them to PENDING_TRY.
func (q *Queue) Drain() []string {
	ids := make([]string, 0, len(q.status))
	for id, s := range q.status {
		if actionable(s) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		ni, oki := q.table.Lookup(ids[i])
		nj, okj := q.table.Lookup(ids[j])
		var pi, pj int
		if oki {
			pi = ni.Priority()
		}
		if okj {
			pj = nj.Priority()
		}
		if pi != pj {
			return pi < pj
		}
		return ids[i] < ids[j]
	})
	return ids
}
