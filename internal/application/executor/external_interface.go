package executor

import (
	"context"

	"github.com/google/uuid"
	"github.com/plexilrun/plexil/internal/domain"
)

// CommandRef, AssignmentRef and UpdateRef are the ephemeral handles
// passed across the core/external-interface boundary: a snapshot of
// what to do, not a live reference into the node tree, so the interface
// implementation can never reach back in and mutate plan state directly.
// Each carries a generated id purely for correlating async acknowledgements,
// never used as a domain.Node id: node ids are plan-authored and
// stable, while these are transport-layer correlation tokens with no
// such lifetime guarantee.
type CommandRef struct {
	ID        uuid.UUID
	NodeID    string
	Name      string
	Args      []domain.Value
	Resources []domain.ResourceSpec
}

type AssignmentRef struct {
	ID     uuid.UUID
	NodeID string
	Value  domain.Value
}

type UpdateRef struct {
	ID     uuid.UUID
	NodeID string
	Pairs  map[string]domain.Value
}

// ExternalInterface is the narrow contract drawn between the core and
// the world: command dispatch, update notification, assignment
// application, and lookups. Implementations (a simulator, a ROS bridge,
// whatever) call the matching Acknowledge/Set* method on Callbacks once
// their side of an async operation resolves.
type ExternalInterface interface {
	CurrentTime(ctx context.Context) (float64, error)
	ExecuteCommand(ctx context.Context, ref CommandRef) error
	AbortCommand(ctx context.Context, ref CommandRef) error
	ExecuteUpdate(ctx context.Context, ref UpdateRef) error
	ExecuteAssignment(ctx context.Context, ref AssignmentRef) error
	LookupNow(ctx context.Context, name string, args []domain.Value) (domain.Value, error)
	SubscribeLookup(ctx context.Context, name string, args []domain.Value) error
	UnsubscribeLookup(ctx context.Context, name string, args []domain.Value) error
}

// Callbacks is how an ExternalInterface implementation reports back into
// the executive. The executive itself implements this and hands a
// reference to it to whatever ExternalInterface it is driving.
type Callbacks interface {
	SetCommandHandle(ref CommandRef, handle domain.CommandHandle)
	SetCommandReturn(ref CommandRef, value domain.Value)
	AcknowledgeAbort(ref CommandRef, success bool)
	AcknowledgeUpdate(ref UpdateRef, success bool)
	AcknowledgeAssignment(ref AssignmentRef)
	// LookupUpdate reports a new value for the lookup registered under
	// key by WireLookup (typically name plus its resolved arguments).
	LookupUpdate(key string, value domain.Value)
}
