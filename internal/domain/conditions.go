package domain

// ConditionSlot indexes the thirteen fixed condition slots every node
// carries: ancestor-combined slots first (so they can be torn down
// before the user slots they may reference), then the eight
// plan-authorable slots, then the two synthesized completion slots.
type ConditionSlot int

const (
	SlotAncestorExit ConditionSlot = iota
	SlotAncestorInvariant
	SlotAncestorEnd
	SlotSkip
	SlotStart
	SlotPre
	SlotExit
	SlotInvariant
	SlotEnd
	SlotPost
	SlotRepeat
	SlotActionComplete
	SlotAbortComplete
	numConditionSlots
)

func (s ConditionSlot) String() string {
	switch s {
	case SlotAncestorExit:
		return "AncestorExit"
	case SlotAncestorInvariant:
		return "AncestorInvariant"
	case SlotAncestorEnd:
		return "AncestorEnd"
	case SlotSkip:
		return "Skip"
	case SlotStart:
		return "Start"
	case SlotPre:
		return "Pre"
	case SlotExit:
		return "Exit"
	case SlotInvariant:
		return "Invariant"
	case SlotEnd:
		return "End"
	case SlotPost:
		return "Post"
	case SlotRepeat:
		return "Repeat"
	case SlotActionComplete:
		return "ActionComplete"
	case SlotAbortComplete:
		return "AbortComplete"
	default:
		return "UnknownCondition"
	}
}

// IsPlanAuthorable reports whether a plan may supply its own expression
// for this slot. The three Ancestor* slots and the two synthesized
// completion slots are always built by the executive at plan
// finalization.
func (s ConditionSlot) IsPlanAuthorable() bool {
	switch s {
	case SlotSkip, SlotStart, SlotPre, SlotExit, SlotInvariant, SlotEnd, SlotPost, SlotRepeat:
		return true
	default:
		return false
	}
}

// DefaultCondition returns the literal a node gets for slot s when the
// plan supplies none: Skip=false, Start=true, Pre=true, Exit=false,
// Invariant=true, End varies by node type, Post=true, Repeat=false.
// End's node-type-varying default, and the three Ancestor*/two
// synthesized slots, are built by FinalizePlan instead and never
// consult this function.
func DefaultCondition(s ConditionSlot) Expression {
	switch s {
	case SlotSkip, SlotExit, SlotRepeat:
		return NewConstant(BooleanValue(false))
	default:
		return NewConstant(BooleanValue(true))
	}
}

// AllConditionSlots returns every slot in canonical order, for code that
// needs to walk a node's full condition set (e.g. attaching change
// listeners) without depending on the unexported slot count.
func AllConditionSlots() []ConditionSlot {
	return []ConditionSlot{
		SlotAncestorExit, SlotAncestorInvariant, SlotAncestorEnd,
		SlotSkip, SlotStart, SlotPre, SlotExit, SlotInvariant, SlotEnd,
		SlotPost, SlotRepeat, SlotActionComplete, SlotAbortComplete,
	}
}
