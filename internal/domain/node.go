package domain

// Node is the plan-tree element: a typed body, a fixed array of thirteen
// condition slots, the seven-state lifecycle fields, and the bookkeeping
// the scheduler (QueueStatus, priority) needs to decide what to look at
// next.
type Node struct {
	id       string
	typ      NodeType
	parent   *Node
	children []*Node
	table    *NodeTable

	conditions [numConditionSlots]Expression
	// userEnd holds the plan-authored (or defaulted) End expression before
	// node-type synthesis wraps or replaces it; conditions[SlotEnd]
	// only gets its final value once FinalizePlan runs.
	userEnd Expression

	state       NodeState
	outcome     NodeOutcome
	failureType FailureType
	priority    int
	queueStatus QueueStatus

	// assignmentConflict is set by the executive's assignment-priority
	// arbitration when this node lost a same-step conflict over a shared
	// target: the next EXECUTING evaluation reports FailureAssignmentConflict
	// instead of consulting the Post condition as usual.
	assignmentConflict bool

	stateVar         *InternalVariable
	outcomeVar       *InternalVariable
	failureVar       *InternalVariable
	commandHandleVar *InternalVariable // non-nil only for NodeTypeCommand

	startTick map[NodeState]int64
	endTick   map[NodeState]int64

	scope     *Scope
	resources []ResourceSpec
	mutexes   []string // names of mutexes this node's Using clause references

	body NodeBody
}

// NewNode constructs a Node of the given type and registers it in table.
// Callers finish wiring it (conditions, body, scope, children) before the
// plan is handed to the executive.
func NewNode(id string, typ NodeType, parent *Node, table *NodeTable) *Node {
	n := &Node{
		id:          id,
		typ:         typ,
		parent:      parent,
		table:       table,
		state:       StateInactive,
		outcome:     OutcomeNone,
		failureType: FailureNone,
		priority:    WorstPriority,
		queueStatus: QueueNone,
		startTick:   make(map[NodeState]int64),
		endTick:     make(map[NodeState]int64),
	}
	n.stateVar = NewInternalVariable(id, "state", TypeNodeState)
	n.stateVar.SetValue(NodeStateValue(StateInactive))
	n.outcomeVar = NewInternalVariable(id, "outcome", TypeNodeOutcome)
	n.outcomeVar.SetValue(NodeOutcomeValue(OutcomeNone))
	n.failureVar = NewInternalVariable(id, "failureType", TypeFailureType)
	n.failureVar.SetValue(FailureTypeValue(FailureNone))
	if typ == NodeTypeCommand {
		n.commandHandleVar = NewInternalVariable(id, "commandHandle", TypeCommandHandle)
		n.commandHandleVar.SetValue(CommandHandleValue(CommandHandleUnknown))
	}
	for _, slot := range []ConditionSlot{SlotSkip, SlotStart, SlotPre, SlotExit, SlotInvariant, SlotPost, SlotRepeat} {
		n.conditions[slot] = DefaultCondition(slot)
	}
	n.userEnd = DefaultCondition(SlotEnd)
	table.Register(n)
	if parent != nil {
		parent.children = append(parent.children, n)
	}
	return n
}

func (n *Node) ID() string         { return n.id }
func (n *Node) Type() NodeType     { return n.typ }
func (n *Node) Parent() *Node      { return n.parent }
func (n *Node) Children() []*Node  { return n.children }
func (n *Node) Priority() int      { return n.priority }
func (n *Node) SetPriority(p int)  { n.priority = p }

// Child resolves a direct child by name.
func (n *Node) Child(name string) (*Node, bool) {
	for _, c := range n.children {
		if c.id == name {
			return c, true
		}
	}
	return nil, false
}

// Sibling resolves a same-parent node by name; a node with no parent has
// no siblings.
func (n *Node) Sibling(name string) (*Node, bool) {
	if n.parent == nil {
		return nil, false
	}
	return n.parent.Child(name)
}

func (n *Node) State() NodeState             { return n.state }
func (n *Node) Outcome() NodeOutcome         { return n.outcome }
func (n *Node) FailureType() FailureType     { return n.failureType }
func (n *Node) QueueStatus() QueueStatus     { return n.queueStatus }
func (n *Node) SetQueueStatus(q QueueStatus) { n.queueStatus = q }

func (n *Node) Body() NodeBody      { return n.body }
func (n *Node) SetBody(b NodeBody)  { n.body = b }
func (n *Node) Scope() *Scope       { return n.scope }
func (n *Node) SetScope(s *Scope)   { n.scope = s }

func (n *Node) Resources() []ResourceSpec         { return n.resources }
func (n *Node) SetResources(r []ResourceSpec)     { n.resources = r }
func (n *Node) MutexNames() []string              { return n.mutexes }
func (n *Node) SetMutexNames(m []string)          { n.mutexes = m }

// StateVariable, OutcomeVariable, FailureVariable and CommandHandleVariable
// expose the node's own bookkeeping as referenceable expressions.
// CommandHandleVariable is nil for any node that is not a Command node.
func (n *Node) StateVariable() *InternalVariable         { return n.stateVar }
func (n *Node) OutcomeVariable() *InternalVariable       { return n.outcomeVar }
func (n *Node) FailureVariable() *InternalVariable       { return n.failureVar }
func (n *Node) CommandHandleVariable() *InternalVariable { return n.commandHandleVar }

// Condition returns the expression installed in slot (a plan-authored
// one, an executive-synthesized Ancestor*/Parent* one, or the default).
func (n *Node) Condition(slot ConditionSlot) Expression { return n.conditions[slot] }

// SetCondition installs a plan-authored expression into slot, replacing
// the default. Fail if slot is not plan-authorable. End is
// special-cased: it is staged in userEnd until FinalizePlan wraps
// or replaces it per node type.
func (n *Node) SetCondition(slot ConditionSlot, expr Expression) {
	if !slot.IsPlanAuthorable() {
		Fail("condition slot %s is not plan-authorable", slot)
	}
	if slot == SlotEnd {
		n.userEnd = expr
		return
	}
	n.conditions[slot] = expr
}

// UserEnd returns the plan-authored (or default-true) End expression
// before any node-type synthesis wraps it.
func (n *Node) UserEnd() Expression { return n.userEnd }

// setSynthesizedCondition installs an executive-derived Ancestor*/Parent*
// expression; unlike SetCondition it is allowed to target the slots plans
// may not author directly.
func (n *Node) setSynthesizedCondition(slot ConditionSlot, expr Expression) {
	n.conditions[slot] = expr
}

// SetState transitions the node to s, enforcing the per-type legality
// constraints, stamping the new state's start timepoint, and pushing the
// change into the node's StateVariable.
func (n *Node) SetState(s NodeState, tick int64) {
	if !s.LegalFor(n.typ) {
		Fail("state %s is not legal for node type %s", s, n.typ)
	}
	n.endTick[n.state] = tick
	n.state = s
	n.startTick[s] = tick
	n.stateVar.SetValue(NodeStateValue(s))
}

func (n *Node) SetOutcome(o NodeOutcome) {
	n.outcome = o
	n.outcomeVar.SetValue(NodeOutcomeValue(o))
}

func (n *Node) SetFailureType(f FailureType) {
	n.failureType = f
	n.failureVar.SetValue(FailureTypeValue(f))
}

// MarkAssignmentConflict flags n as having lost a same-step
// priority-arbitration conflict over its Assignment target. Ack is left
// alone: the node's End condition still fires on schedule, but evalExecuting
// reports FailureAssignmentConflict instead of consulting Post.
func (n *Node) MarkAssignmentConflict() { n.assignmentConflict = true }

// HasAssignmentConflict reports whether MarkAssignmentConflict was called
// since n's last activation.
func (n *Node) HasAssignmentConflict() bool { return n.assignmentConflict }

// SetCommandHandle records a new command handle. Fail if this node is
// not a Command node.
func (n *Node) SetCommandHandle(h CommandHandle) {
	if n.commandHandleVar == nil {
		Fail("node %q is not a Command node", n.id)
	}
	n.commandHandleVar.SetValue(CommandHandleValue(h))
}

// StartTick and EndTick return the logical step counter value (not a
// wall-clock timestamp, to keep the core deterministic and replayable)
// at which the node most recently entered/left state s.
func (n *Node) StartTick(s NodeState) (int64, bool) {
	t, ok := n.startTick[s]
	return t, ok
}

func (n *Node) EndTick(s NodeState) (int64, bool) {
	t, ok := n.endTick[s]
	return t, ok
}

// Activate activates every condition slot and this node's body, driven
// top-down by the executive as nodes become WAITING.
func (n *Node) Activate() {
	for _, c := range n.conditions {
		if c != nil {
			c.Activate()
		}
	}
	if n.body != nil {
		n.body.Activate()
	}
	if n.scope != nil {
		n.scope.Activate()
	}
}

// Deactivate is Activate's mirror, run as a node leaves its active
// lifetime (entering INACTIVE).
func (n *Node) Deactivate() {
	for _, c := range n.conditions {
		if c != nil {
			c.Deactivate()
		}
	}
	if n.body != nil {
		n.body.Deactivate()
	}
	if n.scope != nil {
		n.scope.Deactivate()
	}
}
