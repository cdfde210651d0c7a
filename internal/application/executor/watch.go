package executor

import "github.com/plexilrun/plexil/internal/domain"

// nodeWatcher is the Listener the executive attaches to every condition
// slot of every active node: any change notification anywhere in that
// node's thirteen condition expressions marks the node for re-evaluation
// next pass. One watcher per node (not per slot) so RemoveListener can
// find it again by pointer identity — domain.ListenerFunc closures are
// not comparable and cannot be removed once installed.
type nodeWatcher struct {
	nodeID string
	queue  *Queue
}

func (w *nodeWatcher) NotifyChanged() { w.queue.MarkCheck(w.nodeID) }

// watch installs n's watcher on every condition slot it carries. Safe to
// call more than once per activation only if unwatch is called first.
func (e *Executive) watch(n *domain.Node) {
	w := &nodeWatcher{nodeID: n.ID(), queue: e.queue}
	e.watchers[n.ID()] = w
	for _, slot := range domain.AllConditionSlots() {
		if c := n.Condition(slot); c != nil {
			c.AddListener(w)
		}
	}
}

// unwatch removes n's watcher from every condition slot, the mirror of
// watch, run when a node leaves its active lifetime for good (FINISHED)
// rather than merely cycling through ITERATION_ENDED on a repeat.
func (e *Executive) unwatch(n *domain.Node) {
	w, ok := e.watchers[n.ID()]
	if !ok {
		return
	}
	for _, slot := range domain.AllConditionSlots() {
		if c := n.Condition(slot); c != nil {
			c.RemoveListener(w)
		}
	}
	delete(e.watchers, n.ID())
}
