package executor

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/plexilrun/plexil/internal/domain"
	"github.com/plexilrun/plexil/internal/infrastructure/monitoring"
)

// Executive is the single-threaded cooperative scheduler: it drains the
// candidate queue in priority order each pass, computes every decision
// against a consistent snapshot before committing any of them, runs the
// admission control gate for nodes entering EXECUTING, and dispatches
// Command/Assignment/Update bodies to the external interface.
type Executive struct {
	plan    *Plan
	queue   *Queue
	arbiter *Arbiter
	iface   ExternalInterface
	log     zerolog.Logger

	tick int64

	observers *monitoring.ObserverManager
	paused    atomic.Bool

	watchers map[string]*nodeWatcher

	commandRefs    map[uuid.UUID]string
	abortRefs      map[uuid.UUID]string
	assignmentRefs map[uuid.UUID]string
	updateRefs     map[uuid.UUID]string

	// pendingAssignments buffers writes that became ready to apply during
	// this step's commit pass. They are flushed in descending-priority
	// order once every decision in the pass has committed, so two
	// Assignments to the same variable in one macro step resolve by
	// priority rather than commit order.
	pendingAssignments []pendingWrite

	// lookups indexes every live Lookup expression by its subscription
	// key so an incoming LookupUpdate can fan out to every instance of
	// that lookup active anywhere in the plan.
	lookups map[string][]*domain.Lookup
}

type pendingWrite struct {
	node     *domain.Node
	priority int
	target   domain.Writable
	value    domain.Value
}

func NewExecutive(plan *Plan, iface ExternalInterface, log zerolog.Logger) *Executive {
	return &Executive{
		plan:           plan,
		queue:          NewQueue(plan.Table),
		arbiter:        NewArbiter(),
		iface:          iface,
		log:            log,
		observers:      monitoring.NewObserverManager(),
		watchers:       make(map[string]*nodeWatcher),
		commandRefs:    make(map[uuid.UUID]string),
		abortRefs:      make(map[uuid.UUID]string),
		assignmentRefs: make(map[uuid.UUID]string),
		updateRefs:     make(map[uuid.UUID]string),
		lookups:        make(map[string][]*domain.Lookup),
	}
}

// WireLookup registers l under key (a caller-chosen subscription key,
// typically the lookup name plus its resolved argument values) and
// installs the subscribe/unsubscribe hooks that fire as l activates and
// deactivates. Call this once per Lookup instance while building the
// plan, before Start.
func (e *Executive) WireLookup(ctx context.Context, key string, l *domain.Lookup) {
	l.OnActivate = func(l *domain.Lookup) {
		e.lookups[key] = append(e.lookups[key], l)
		if err := e.iface.SubscribeLookup(ctx, l.Name(), valuesOf(l.Args())); err != nil {
			e.log.Error().Err(err).Str("lookup", l.Name()).Msg("subscribe_lookup failed")
		}
	}
	l.OnDeactivate = func(l *domain.Lookup) {
		insts := e.lookups[key]
		for i, have := range insts {
			if have == l {
				e.lookups[key] = append(insts[:i], insts[i+1:]...)
				break
			}
		}
		if len(e.lookups[key]) == 0 {
			if err := e.iface.UnsubscribeLookup(ctx, l.Name(), valuesOf(l.Args())); err != nil {
				e.log.Error().Err(err).Str("lookup", l.Name()).Msg("unsubscribe_lookup failed")
			}
		}
	}
}

func valuesOf(args []domain.Expression) []domain.Value {
	out := make([]domain.Value, len(args))
	for i, a := range args {
		out[i] = a.Value()
	}
	return out
}

// Tick returns the current logical step counter.
func (e *Executive) Tick() int64 { return e.tick }

// Observers returns the fan-out manager new sinks should register with
// (console logging, audit storage, the dashboard hub) before Start runs.
func (e *Executive) Observers() *monitoring.ObserverManager { return e.observers }

// Pause holds the executive at its current step boundary: RunToQuiescence
// returns without draining any further candidates until Resume is called.
// It never tears down in-flight commands or releases held resources.
func (e *Executive) Pause() { e.paused.Store(true) }

// Resume clears a prior Pause; the caller must invoke RunToQuiescence
// again to continue draining the candidate queue.
func (e *Executive) Resume() { e.paused.Store(false) }

// Paused reports whether the executive is currently held by Pause.
func (e *Executive) Paused() bool { return e.paused.Load() }

func (e *Executive) publish(kind monitoring.EventKind, nodeID string, fields map[string]any) {
	e.observers.Publish(monitoring.PlanEvent{
		Kind: kind, NodeID: nodeID, Tick: e.tick, At: time.Now(), Fields: fields,
	})
}

// Start activates the root node and runs passes until the queue quiesces.
func (e *Executive) Start(ctx context.Context) {
	root := e.plan.Root
	root.Activate()
	e.watch(root)
	root.SetState(domain.StateWaiting, e.tick)
	e.log.Info().Str("node_id", root.ID()).Msg("plan activated")
	e.queue.MarkCheck(root.ID())
	e.RunToQuiescence(ctx)
}

// RunToQuiescence drives passes until the queue has no more work, then
// returns. External acknowledgements (command returns, lookup updates,
// the passage of time) re-populate the queue through the listener graph;
// callers re-invoke this after delivering one.
func (e *Executive) RunToQuiescence(ctx context.Context) {
	for e.queue.Pending() && !e.Paused() {
		e.pass(ctx)
	}
}

// pass runs exactly one macro step: evaluate every currently-queued node
// against a snapshot, then commit.
func (e *Executive) pass(ctx context.Context) {
	e.tick++
	candidates := e.queue.Drain()

	decisions := make(map[string]domain.Decision, len(candidates))
	for _, id := range candidates {
		// Resolve before anything commits, so a CHECK raised by this
		// pass's commits survives into the next pass.
		e.queue.Resolve(id)
		n, ok := e.plan.Table.Lookup(id)
		if !ok {
			continue
		}
		decisions[id] = domain.Evaluate(n)
	}

	for _, id := range candidates {
		n, ok := e.plan.Table.Lookup(id)
		if !ok {
			continue
		}
		d := decisions[id]
		if d.Stay {
			continue
		}

		from := n.State()
		if d.Next == domain.StateExecuting && from == domain.StateWaiting {
			if !e.admit(n) {
				e.queue.DemotePending(id)
				continue
			}
		}

		d.Apply(n, e.tick)
		e.publish(monitoring.EventTransition, n.ID(), map[string]any{"from": from.String(), "to": d.Next.String()})
		e.onTransition(ctx, n, from, d.Next)
	}

	e.flushAssignments()
}

// admit runs the combined mutex + resource admission gate a node must
// clear before committing WAITING->EXECUTING. Grants are atomic
// all-or-nothing across both mechanisms: a resource denial rolls back
// any mutexes already acquired in this attempt.
func (e *Executive) admit(n *domain.Node) bool {
	acquired := make([]string, 0, len(n.MutexNames()))
	for _, name := range n.MutexNames() {
		m, ok := e.plan.ResolveMutex(n, name)
		if !ok {
			domain.Fail("node %q: mutex %q not in scope", n.ID(), name)
		}
		if !m.TryAcquire(n.ID()) {
			e.rollbackMutexes(n, acquired)
			return false
		}
		acquired = append(acquired, name)
		e.publish(monitoring.EventMutexAcquire, n.ID(), map[string]any{"mutex": name})
	}

	var resources []domain.ResourceSpec
	if cb, ok := n.Body().(*domain.CommandBody); ok {
		resources = cb.Resources
	}
	if len(resources) > 0 && !e.arbiter.Request(n.ID(), resources) {
		e.rollbackMutexes(n, acquired)
		return false
	}
	if len(resources) > 0 {
		e.publish(monitoring.EventResourceGrant, n.ID(), nil)
	}
	return true
}

func (e *Executive) rollbackMutexes(n *domain.Node, names []string) {
	for _, name := range names {
		m, ok := e.plan.ResolveMutex(n, name)
		if !ok {
			continue
		}
		if waiter, promoted := m.Release(n.ID()); promoted {
			e.queue.MarkPendingTry(waiter)
		}
	}
}

// release gives up every mutex and resource n holds, unconditionally,
// on every termination regardless of ReleaseAtTermination.
func (e *Executive) release(n *domain.Node) {
	for _, name := range n.MutexNames() {
		m, ok := e.plan.ResolveMutex(n, name)
		if !ok {
			continue
		}
		waiter, promoted := m.Release(n.ID())
		e.publish(monitoring.EventMutexRelease, n.ID(), map[string]any{"mutex": name})
		if promoted {
			e.queue.MarkPendingTry(waiter)
		}
	}
	var resources []domain.ResourceSpec
	if cb, ok := n.Body().(*domain.CommandBody); ok {
		resources = cb.Resources
	}
	if len(resources) == 0 {
		return
	}
	promoted := e.arbiter.Release(n.ID(), resources)
	e.publish(monitoring.EventResourceRelease, n.ID(), nil)
	for _, id := range promoted {
		e.queue.MarkPendingTry(id)
	}
}

func (e *Executive) onTransition(ctx context.Context, n *domain.Node, from, to domain.NodeState) {
	e.log.Debug().Str("node_id", n.ID()).Str("from", from.String()).Str("to", to.String()).Msg("state transition")

	// Grants are taken only on WAITING->EXECUTING, so only a node leaving
	// EXECUTING, FINISHING or FAILING has anything to release.
	held := from == domain.StateExecuting || from == domain.StateFinishing || from == domain.StateFailing

	switch to {
	case domain.StateWaiting:
		if from == domain.StateInactive {
			n.Activate()
			e.watch(n)
		}
		if from == domain.StateIterationEnded && n.Type().HasChildren() {
			// Repeating: children must return to INACTIVE before the next
			// EXECUTING pass reactivates and re-admits them.
			e.resetChildren(n)
		}
	case domain.StateExecuting:
		e.startExecuting(ctx, n)
	case domain.StateFailing:
		e.startFailing(ctx, n)
	case domain.StateIterationEnded:
		if held {
			e.release(n)
		}
	case domain.StateFinished:
		if held {
			e.release(n)
		}
		e.unwatch(n)
	}

	// A committed transition can itself make the node a candidate again
	// next pass (e.g. EXECUTING just started and its End may already be
	// known-true for an Empty node).
	e.queue.MarkCheck(n.ID())
}

// resetChildren returns every descendant of a repeating List/LibraryCall
// node from FINISHED back to INACTIVE ahead of the next iteration,
// recursing through the whole subtree since a nested List's children
// reach FINISHED independently of their grandparent's own state.
func (e *Executive) resetChildren(n *domain.Node) {
	for _, c := range n.Children() {
		if c.State() == domain.StateFinished {
			e.unwatch(c)
			c.ResetForIteration(e.tick)
		}
		if c.Type().HasChildren() {
			e.resetChildren(c)
		}
	}
}

func (e *Executive) startExecuting(ctx context.Context, n *domain.Node) {
	switch n.Type() {
	case domain.NodeTypeList, domain.NodeTypeLibraryCall, domain.NodeTypeEmpty:
		for _, c := range n.Children() {
			e.queue.MarkCheck(c.ID())
		}
	case domain.NodeTypeCommand:
		e.dispatchCommand(ctx, n)
	case domain.NodeTypeAssignment:
		e.dispatchAssignment(ctx, n)
	case domain.NodeTypeUpdate:
		e.dispatchUpdate(ctx, n)
	}
}

func (e *Executive) startFailing(ctx context.Context, n *domain.Node) {
	if n.Type() != domain.NodeTypeCommand {
		return
	}
	body, ok := n.Body().(*domain.CommandBody)
	if !ok {
		return
	}
	ref := CommandRef{ID: uuid.New(), NodeID: n.ID(), Name: body.Name, Args: body.ArgumentValues(), Resources: body.Resources}
	e.abortRefs[ref.ID] = n.ID()
	e.publish(monitoring.EventInterfaceCall, n.ID(), map[string]any{"op": "abort_command", "command": body.Name})
	if err := e.iface.AbortCommand(ctx, ref); err != nil {
		e.log.Error().Err(err).Str("node_id", n.ID()).Msg("abort_command failed")
	}
}

func (e *Executive) dispatchCommand(ctx context.Context, n *domain.Node) {
	body, ok := n.Body().(*domain.CommandBody)
	if !ok {
		domain.Fail("node %q is type Command but has no CommandBody", n.ID())
	}
	ref := CommandRef{ID: uuid.New(), NodeID: n.ID(), Name: body.Name, Args: body.ArgumentValues(), Resources: body.Resources}
	e.commandRefs[ref.ID] = n.ID()
	n.SetCommandHandle(domain.CommandSent)
	e.publish(monitoring.EventInterfaceCall, n.ID(), map[string]any{"op": "execute_command", "command": body.Name})
	if err := e.iface.ExecuteCommand(ctx, ref); err != nil {
		e.log.Error().Err(err).Str("node_id", n.ID()).Msg("execute_command failed")
		n.SetCommandHandle(domain.CommandInterfaceError)
	}
}

func (e *Executive) dispatchAssignment(ctx context.Context, n *domain.Node) {
	body, ok := n.Body().(*domain.AssignmentBody)
	if !ok {
		domain.Fail("node %q is type Assignment but has no AssignmentBody", n.ID())
	}
	body.Reset()
	ref := AssignmentRef{ID: uuid.New(), NodeID: n.ID(), Value: body.RHS.Value()}
	e.assignmentRefs[ref.ID] = n.ID()
	e.publish(monitoring.EventInterfaceCall, n.ID(), map[string]any{"op": "execute_assignment"})
	if err := e.iface.ExecuteAssignment(ctx, ref); err != nil {
		e.log.Error().Err(err).Str("node_id", n.ID()).Msg("execute_assignment failed")
	}
}

func (e *Executive) dispatchUpdate(ctx context.Context, n *domain.Node) {
	body, ok := n.Body().(*domain.UpdateBody)
	if !ok {
		domain.Fail("node %q is type Update but has no UpdateBody", n.ID())
	}
	body.Reset()
	ref := UpdateRef{ID: uuid.New(), NodeID: n.ID(), Pairs: body.Values()}
	e.updateRefs[ref.ID] = n.ID()
	e.publish(monitoring.EventInterfaceCall, n.ID(), map[string]any{"op": "execute_update"})
	if err := e.iface.ExecuteUpdate(ctx, ref); err != nil {
		e.log.Error().Err(err).Str("node_id", n.ID()).Msg("execute_update failed")
	}
}

// flushAssignments applies every write buffered by AcknowledgeAssignment
// during this step's commit pass. Two or more writes landing on the same
// target in one pass conflict: only the lowest-priority-value write (node
// id as tiebreak) is applied, and every other writer in the group is
// flagged via MarkAssignmentConflict so its next evaluation reports
// FailureAssignmentConflict instead of running its Post condition.
func (e *Executive) flushAssignments() {
	if len(e.pendingAssignments) == 0 {
		return
	}
	writes := e.pendingAssignments
	e.pendingAssignments = nil

	byTarget := make(map[domain.Writable][]pendingWrite, len(writes))
	var order []domain.Writable
	for _, w := range writes {
		if _, seen := byTarget[w.target]; !seen {
			order = append(order, w.target)
		}
		byTarget[w.target] = append(byTarget[w.target], w)
	}

	for _, target := range order {
		group := byTarget[target]
		winner := group[0]
		for _, w := range group[1:] {
			if w.priority < winner.priority || (w.priority == winner.priority && w.node.ID() < winner.node.ID()) {
				winner = w
			}
		}
		winner.target.Set(winner.value)
		for _, w := range group {
			if w.node != winner.node {
				w.node.MarkAssignmentConflict()
			}
		}
	}
}

// --- Callbacks -------------------------------------------------------

var _ Callbacks = (*Executive)(nil)

func (e *Executive) SetCommandHandle(ref CommandRef, handle domain.CommandHandle) {
	n, ok := e.plan.Table.Lookup(ref.NodeID)
	if !ok {
		return
	}
	n.SetCommandHandle(handle)
}

func (e *Executive) SetCommandReturn(ref CommandRef, value domain.Value) {
	n, ok := e.plan.Table.Lookup(ref.NodeID)
	if !ok {
		return
	}
	body, ok := n.Body().(*domain.CommandBody)
	if !ok || body.ReturnInto == nil {
		return
	}
	body.ReturnInto.Set(value)
}

func (e *Executive) AcknowledgeAbort(ref CommandRef, success bool) {
	delete(e.abortRefs, ref.ID)
	n, ok := e.plan.Table.Lookup(ref.NodeID)
	if !ok {
		return
	}
	body, ok := n.Body().(*domain.CommandBody)
	if !ok {
		return
	}
	body.AbortAck.SetValue(domain.BooleanValue(true))
}

func (e *Executive) AcknowledgeUpdate(ref UpdateRef, success bool) {
	delete(e.updateRefs, ref.ID)
	n, ok := e.plan.Table.Lookup(ref.NodeID)
	if !ok {
		return
	}
	body, ok := n.Body().(*domain.UpdateBody)
	if !ok {
		return
	}
	body.Ack.SetValue(domain.BooleanValue(true))
}

func (e *Executive) AcknowledgeAssignment(ref AssignmentRef) {
	delete(e.assignmentRefs, ref.ID)
	n, ok := e.plan.Table.Lookup(ref.NodeID)
	if !ok {
		return
	}
	body, ok := n.Body().(*domain.AssignmentBody)
	if !ok {
		return
	}
	e.pendingAssignments = append(e.pendingAssignments, pendingWrite{
		node: n, priority: n.Priority(), target: body.Target, value: ref.Value,
	})
	body.Ack.SetValue(domain.BooleanValue(true))
}

// LookupUpdate fans an external interface lookup update out to every
// live Lookup instance registered under key (see WireLookup).
func (e *Executive) LookupUpdate(key string, value domain.Value) {
	for _, l := range e.lookups[key] {
		l.SetValue(value)
	}
}
