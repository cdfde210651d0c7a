package executor

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plexilrun/plexil/internal/domain"
)

func newTestExecutive(t *testing.T, plan *Plan) (*Executive, *SimulatedInterface) {
	t.Helper()
	sim := NewSimulatedInterface()
	exec := NewExecutive(plan, sim, zerolog.Nop())
	sim.SetCallbacks(exec)
	return exec, sim
}

// buildCommandThenAssignmentPlan mirrors the demo CLI's two-step plan: a
// Command node, followed by an Assignment node gated on the Command
// node reaching FINISHED.
func buildCommandThenAssignmentPlan() (*Plan, *domain.Node, *domain.Node, *domain.Variable) {
	table := domain.NewNodeTable()
	symbols := NewSymbolTable()

	root := domain.NewNode("Top", domain.NodeTypeList, nil, table)
	root.SetScope(domain.NewScope(root))

	cmdNode := domain.NewNode("Greet", domain.NodeTypeCommand, root, table)
	cmdNode.SetScope(domain.NewScope(cmdNode))
	cmdNode.SetBody(domain.NewCommandBody(
		"print_message",
		[]domain.Expression{domain.NewConstant(domain.StringValue("hello"))},
		nil, nil,
	))

	done := domain.NewVariable("done", domain.TypeBoolean)
	assignNode := domain.NewNode("MarkDone", domain.NodeTypeAssignment, root, table)
	assignNode.SetScope(domain.NewScope(assignNode))
	assignNode.Scope().Declare("done", done)
	assignNode.SetBody(domain.NewAssignmentBody(done, domain.NewConstant(domain.BooleanValue(true))))
	assignNode.SetCondition(domain.SlotStart, domain.NewOperatorApplication(
		domain.OpNodeStateEQ, cmdNode.StateVariable(), domain.NewConstant(domain.NodeStateValue(domain.StateFinished)),
	))

	domain.FinalizePlan(root)
	return NewPlan(root, table, symbols), cmdNode, assignNode, done
}

func TestExecutiveCommandWaitsForTerminalHandleBeforeFinishing(t *testing.T) {
	plan, cmdNode, assignNode, done := buildCommandThenAssignmentPlan()
	exec, sim := newTestExecutive(t, plan)

	dispatched := make(chan struct{}, 1)
	sim.RegisterCommand("print_message", func(_ context.Context, args []domain.Value) (domain.Value, domain.CommandHandle, error) {
		dispatched <- struct{}{}
		return domain.Unknown(domain.TypeBoolean), domain.CommandSuccess, nil
	})

	exec.Start(context.Background())

	select {
	case <-dispatched:
	default:
		t.Fatal("command handler was never invoked")
	}

	// SimulatedInterface resolves synchronously, so by the time Start
	// returns both nodes must have run to completion: this is a
	// regression guard for the End/ActionComplete condition correctly
	// waiting on the command handle reaching a terminal value (SUCCESS
	// here) rather than being satisfied the instant the handle variable
	// is merely known.
	require.Equal(t, domain.StateFinished, cmdNode.State())
	assert.Equal(t, domain.OutcomeSuccess, cmdNode.Outcome())

	require.Equal(t, domain.StateFinished, assignNode.State())
	assert.Equal(t, domain.OutcomeSuccess, assignNode.Outcome())

	v, ok := done.Value().Bool()
	require.True(t, ok)
	assert.True(t, v, "the assignment must have actually applied done=true")
}

func TestExecutiveCommandFailureReachesCommandFailedOutcome(t *testing.T) {
	plan, cmdNode, _, _ := buildCommandThenAssignmentPlan()
	exec, sim := newTestExecutive(t, plan)

	sim.RegisterCommand("print_message", func(_ context.Context, args []domain.Value) (domain.Value, domain.CommandHandle, error) {
		return domain.Unknown(domain.TypeBoolean), domain.CommandFailed, nil
	})

	exec.Start(context.Background())

	require.Equal(t, domain.StateFinished, cmdNode.State())
	assert.Equal(t, domain.OutcomeFailure, cmdNode.Outcome())
}

func TestExecutiveResourceContentionBlocksSecondCommandUntilFirstReleases(t *testing.T) {
	table := domain.NewNodeTable()
	symbols := NewSymbolTable()

	root := domain.NewNode("Top", domain.NodeTypeList, nil, table)
	root.SetScope(domain.NewScope(root))

	spec := []domain.ResourceSpec{{Name: "radio", UpperBound: 1}}

	first := domain.NewNode("First", domain.NodeTypeCommand, root, table)
	first.SetScope(domain.NewScope(first))
	first.SetBody(domain.NewCommandBody("use_radio", nil, spec, nil))

	second := domain.NewNode("Second", domain.NodeTypeCommand, root, table)
	second.SetScope(domain.NewScope(second))
	second.SetBody(domain.NewCommandBody("use_radio", nil, spec, nil))
	first.SetPriority(1)

	domain.FinalizePlan(root)
	plan := NewPlan(root, table, symbols)
	exec, sim := newTestExecutive(t, plan)

	// Hold the resource open across the first pass: the handler returns a
	// non-terminal handle so First stays EXECUTING and keeps its resource
	// grant, forcing Second to queue behind it.
	released := false
	sim.RegisterCommand("use_radio", func(_ context.Context, args []domain.Value) (domain.Value, domain.CommandHandle, error) {
		if !released {
			return domain.Unknown(domain.TypeBoolean), domain.CommandAccepted, nil
		}
		return domain.Unknown(domain.TypeBoolean), domain.CommandSuccess, nil
	})

	exec.Start(context.Background())

	assert.Equal(t, domain.StateExecuting, first.State(), "first must still be holding the resource")
	assert.Equal(t, domain.StateWaiting, second.State(), "second must be blocked behind first's resource grant")

	released = true
	first.SetCommandHandle(domain.CommandSuccess)
	exec.RunToQuiescence(context.Background())

	require.Equal(t, domain.StateFinished, first.State())
	require.Equal(t, domain.StateFinished, second.State(), "second must run once first releases the resource")
}

// TestExecutiveMutexHandoffWakesWaitingSibling is a regression guard for
// the mutex-release deadlock: two sibling Assignment nodes declare the
// same mutex, so the second must be demoted to bare PENDING behind the
// first's grant; once the first finishes and releases, the promoted
// waiter returned by Mutex.Release must be re-queued via MarkPendingTry,
// or the second node would stay parked in WAITING forever.
func TestExecutiveMutexHandoffWakesWaitingSibling(t *testing.T) {
	table := domain.NewNodeTable()
	symbols := NewSymbolTable()

	root := domain.NewNode("Top", domain.NodeTypeList, nil, table)
	root.SetScope(domain.NewScope(root))

	x := domain.NewVariable("x", domain.TypeInteger)
	root.Scope().Declare("x", x)

	first := domain.NewNode("First", domain.NodeTypeAssignment, root, table)
	first.SetScope(domain.NewScope(first))
	first.SetMutexNames([]string{"m"})
	first.SetBody(domain.NewAssignmentBody(x, domain.NewConstant(domain.IntegerValue(1))))

	second := domain.NewNode("Second", domain.NodeTypeAssignment, root, table)
	second.SetScope(domain.NewScope(second))
	second.SetMutexNames([]string{"m"})
	second.SetBody(domain.NewAssignmentBody(x, domain.NewConstant(domain.IntegerValue(2))))

	domain.FinalizePlan(root)
	plan := NewPlan(root, table, symbols)
	plan.DeclareGlobalMutex("m")

	errs := Check(plan)
	require.Empty(t, errs)

	exec, _ := newTestExecutive(t, plan)
	exec.Start(context.Background())

	require.Equal(t, domain.StateFinished, first.State())
	require.Equal(t, domain.StateFinished, second.State(), "second must wake once first releases the shared mutex, not stay wedged in WAITING")
	assert.Equal(t, domain.OutcomeSuccess, first.Outcome())
	assert.Equal(t, domain.OutcomeSuccess, second.Outcome())
}

// TestExecutiveAssignmentConflictLowestPriorityWins covers priority
// arbitration between two sibling Assignments writing the same variable
// in one macro step: the lower priority value must win and apply, and
// the loser must reach FAILURE/ASSIGNMENT_PRIORITY_CONFLICT rather than
// being silently acked as a success.
func TestExecutiveAssignmentConflictLowestPriorityWins(t *testing.T) {
	table := domain.NewNodeTable()
	symbols := NewSymbolTable()

	root := domain.NewNode("Top", domain.NodeTypeList, nil, table)
	root.SetScope(domain.NewScope(root))

	x := domain.NewVariable("x", domain.TypeInteger)
	root.Scope().Declare("x", x)

	highPriority := domain.NewNode("HighPriority", domain.NodeTypeAssignment, root, table)
	highPriority.SetScope(domain.NewScope(highPriority))
	highPriority.SetPriority(0)
	highPriority.SetBody(domain.NewAssignmentBody(x, domain.NewConstant(domain.IntegerValue(1))))

	lowPriority := domain.NewNode("LowPriority", domain.NodeTypeAssignment, root, table)
	lowPriority.SetScope(domain.NewScope(lowPriority))
	lowPriority.SetPriority(5)
	lowPriority.SetBody(domain.NewAssignmentBody(x, domain.NewConstant(domain.IntegerValue(2))))

	domain.FinalizePlan(root)
	plan := NewPlan(root, table, symbols)

	exec, _ := newTestExecutive(t, plan)
	exec.Start(context.Background())

	require.Equal(t, domain.StateFinished, highPriority.State())
	require.Equal(t, domain.StateFinished, lowPriority.State())

	assert.Equal(t, domain.OutcomeSuccess, highPriority.Outcome(), "the lowest priority value must win the conflict")
	assert.Equal(t, domain.OutcomeFailure, lowPriority.Outcome())
	assert.Equal(t, domain.FailureAssignmentConflict, lowPriority.FailureType())

	v, ok := x.Value().Int()
	require.True(t, ok)
	assert.Equal(t, int64(1), v, "only the winning write must have applied")
}
