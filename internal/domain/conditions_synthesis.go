package domain

// FinalizePlan walks the tree rooted at root in pre-order, synthesizing
// every node's Ancestor*/End/ActionComplete/AbortComplete slots. It must
// run exactly once, after the whole tree, its bodies, and its locals are
// built, and before the node is ever activated.
func FinalizePlan(root *Node) {
	finalizeNode(root)
	for _, c := range root.children {
		FinalizePlan(c)
	}
}

func finalizeNode(n *Node) {
	synthesizeCompletion(n)
	synthesizeAncestors(n)
}

// synthesizeAncestors installs the three Ancestor* slots. The root has no
// ancestors: AncestorExit and AncestorEnd start false, AncestorInvariant
// starts true, so a root's own exit/end conditions are never
// short-circuited by an ancestor that does not exist.
func synthesizeAncestors(n *Node) {
	if n.parent == nil {
		n.setSynthesizedCondition(SlotAncestorExit, NewConstant(BooleanValue(false)))
		n.setSynthesizedCondition(SlotAncestorInvariant, NewConstant(BooleanValue(true)))
		n.setSynthesizedCondition(SlotAncestorEnd, NewConstant(BooleanValue(false)))
		return
	}
	p := n.parent
	n.setSynthesizedCondition(SlotAncestorExit,
		NewOperatorApplication(OpOr, p.Condition(SlotExit), p.Condition(SlotAncestorExit)))
	n.setSynthesizedCondition(SlotAncestorInvariant,
		NewOperatorApplication(OpAnd, p.Condition(SlotInvariant), p.Condition(SlotAncestorInvariant)))
	// AncestorEnd borrows the parent's AncestorEnd directly rather than
	// OR-ing in parent.End: every parent capable of having children is a
	// List/LibraryCall, whose own End is synthesized as "all children
	// FINISHED" -- folding that into this child's AncestorEnd would make
	// the child's own completion part of the condition gating it.
	n.setSynthesizedCondition(SlotAncestorEnd, p.Condition(SlotAncestorEnd))
}

// synthesizeCompletion installs End/ActionComplete/AbortComplete per the
// node-type table.
func synthesizeCompletion(n *Node) {
	trueConst := NewConstant(BooleanValue(true))

	switch n.typ {
	case NodeTypeEmpty:
		n.conditions[SlotEnd] = n.userEnd
		n.conditions[SlotActionComplete] = trueConst
		n.conditions[SlotAbortComplete] = trueConst

	case NodeTypeList, NodeTypeLibraryCall:
		n.conditions[SlotEnd] = allChildrenInState(n, StateFinished)
		n.conditions[SlotActionComplete] = allChildrenInStates(n, StateWaiting, StateFinished)
		n.conditions[SlotAbortComplete] = trueConst

	case NodeTypeCommand:
		body, _ := n.body.(*CommandBody)
		handleComplete := NewOperatorApplication(OpCommandHandleIsTerminal, n.commandHandleVar)
		n.conditions[SlotActionComplete] = handleComplete
		n.conditions[SlotEnd] = NewOperatorApplication(OpAnd, handleComplete, n.userEnd)
		if body != nil && body.AbortAck != nil {
			n.conditions[SlotAbortComplete] = body.AbortAck
		} else {
			n.conditions[SlotAbortComplete] = trueConst
		}

	case NodeTypeAssignment:
		body, _ := n.body.(*AssignmentBody)
		n.conditions[SlotAbortComplete] = trueConst
		if body != nil && body.Ack != nil {
			n.conditions[SlotActionComplete] = body.Ack
			// End must also wait on the apply sub-phase the same way
			// Update's does, since the general EXECUTING transition
			// checks End for every node type regardless of body kind.
			n.conditions[SlotEnd] = NewOperatorApplication(OpAnd, body.Ack, n.userEnd)
		} else {
			n.conditions[SlotActionComplete] = trueConst
			n.conditions[SlotEnd] = n.userEnd
		}

	case NodeTypeUpdate:
		body, _ := n.body.(*UpdateBody)
		n.conditions[SlotAbortComplete] = trueConst
		if body != nil && body.Ack != nil {
			n.conditions[SlotActionComplete] = body.Ack
			n.conditions[SlotEnd] = NewOperatorApplication(OpAnd, body.Ack, n.userEnd)
		} else {
			n.conditions[SlotActionComplete] = trueConst
			n.conditions[SlotEnd] = n.userEnd
		}
	}
}

func allChildrenInState(n *Node, s NodeState) Expression {
	args := make([]Expression, len(n.children))
	want := NewConstant(NodeStateValue(s))
	for i, c := range n.children {
		args[i] = NewOperatorApplication(OpNodeStateEQ, c.StateVariable(), want)
	}
	return NewOperatorApplication(OpAnd, args...)
}

func allChildrenInStates(n *Node, states ...NodeState) Expression {
	args := make([]Expression, len(n.children))
	for i, c := range n.children {
		perState := make([]Expression, len(states))
		for j, s := range states {
			perState[j] = NewOperatorApplication(OpNodeStateEQ, c.StateVariable(), NewConstant(NodeStateValue(s)))
		}
		args[i] = NewOperatorApplication(OpOr, perState...)
	}
	return NewOperatorApplication(OpAnd, args...)
}
