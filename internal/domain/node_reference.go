package domain

// RefStepKind is one hop of a node reference: self, parent, child(name), or sibling(name).
type RefStepKind int

const (
	RefSelf RefStepKind = iota
	RefParent
	RefChild
	RefSibling
)

// RefStep is one hop; Name is only meaningful for RefChild/RefSibling.
type RefStep struct {
	Kind RefStepKind
	Name string
}

// NodeReference resolves a sequence of hops, evaluated lexically starting
// from the node the referencing expression is attached to. Resolution
// happens once, at plan-check time.
type NodeReference struct {
	Steps []RefStep
}

// Resolve walks from, following Steps in order. It returns false if any
// hop fails to resolve (unknown child/sibling name, or parent/child of a
// node that has none).
func (r NodeReference) Resolve(from *Node) (*Node, bool) {
	cur := from
	for _, step := range r.Steps {
		if cur == nil {
			return nil, false
		}
		switch step.Kind {
		case RefSelf:
			// no-op hop
		case RefParent:
			cur = cur.Parent()
		case RefChild:
			c, ok := cur.Child(step.Name)
			if !ok {
				return nil, false
			}
			cur = c
		case RefSibling:
			s, ok := cur.Sibling(step.Name)
			if !ok {
				return nil, false
			}
			cur = s
		}
	}
	return cur, cur != nil
}

// ResolveStateVariable, ResolveOutcomeVariable, ResolveFailureVariable
// and ResolveCommandHandleVariable resolve r against from and return the
// requested facet. ResolveCommandHandleVariable additionally enforces
// that only a Command node has a command-handle facet, checked here
// (plan-check time) rather than left to silently read unknown at
// runtime.
func (r NodeReference) ResolveStateVariable(from *Node) (*InternalVariable, error) {
	n, ok := r.Resolve(from)
	if !ok {
		return nil, NewDomainError(ErrCodeNotFound, "node reference did not resolve", nil)
	}
	return n.StateVariable(), nil
}

func (r NodeReference) ResolveOutcomeVariable(from *Node) (*InternalVariable, error) {
	n, ok := r.Resolve(from)
	if !ok {
		return nil, NewDomainError(ErrCodeNotFound, "node reference did not resolve", nil)
	}
	return n.OutcomeVariable(), nil
}

func (r NodeReference) ResolveFailureVariable(from *Node) (*InternalVariable, error) {
	n, ok := r.Resolve(from)
	if !ok {
		return nil, NewDomainError(ErrCodeNotFound, "node reference did not resolve", nil)
	}
	return n.FailureVariable(), nil
}

func (r NodeReference) ResolveCommandHandleVariable(from *Node) (*InternalVariable, error) {
	n, ok := r.Resolve(from)
	if !ok {
		return nil, NewDomainError(ErrCodeNotFound, "node reference did not resolve", nil)
	}
	if n.Type() != NodeTypeCommand {
		return nil, NewDomainError(ErrCodeInvalidType,
			"CommandHandleVariable reference to non-Command node "+n.ID(), nil)
	}
	return n.CommandHandleVariable(), nil
}
