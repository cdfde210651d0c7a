package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plexilrun/plexil/internal/domain"
)

func TestCheckAcceptsWellFormedPlan(t *testing.T) {
	table := domain.NewNodeTable()
	root := domain.NewNode("Top", domain.NodeTypeList, nil, table)
	root.SetScope(domain.NewScope(root))
	domain.NewNode("Child", domain.NodeTypeEmpty, root, table)
	domain.FinalizePlan(root)

	plan := NewPlan(root, table, NewSymbolTable())
	assert.Empty(t, Check(plan))
}

func TestCheckRejectsChildrenOnNonContainerType(t *testing.T) {
	table := domain.NewNodeTable()
	root := domain.NewNode("Top", domain.NodeTypeCommand, nil, table)
	domain.NewNode("Bogus", domain.NodeTypeEmpty, root, table)
	domain.FinalizePlan(root)

	plan := NewPlan(root, table, NewSymbolTable())
	errs := Check(plan)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "may not have children")
}

func TestCheckRejectsNegativePriority(t *testing.T) {
	table := domain.NewNodeTable()
	root := domain.NewNode("Top", domain.NodeTypeEmpty, nil, table)
	root.SetPriority(-1)
	domain.FinalizePlan(root)

	plan := NewPlan(root, table, NewSymbolTable())
	errs := Check(plan)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "priority")
}

func TestCheckRejectsNegativeResourceUpperBound(t *testing.T) {
	table := domain.NewNodeTable()
	root := domain.NewNode("Top", domain.NodeTypeCommand, nil, table)
	root.SetBody(domain.NewCommandBody("fly", nil, []domain.ResourceSpec{{Name: "battery", UpperBound: -1}}, nil))
	domain.FinalizePlan(root)

	plan := NewPlan(root, table, NewSymbolTable())
	errs := Check(plan)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "negative upper bound")
}

func TestCheckRejectsUnresolvedMutex(t *testing.T) {
	table := domain.NewNodeTable()
	root := domain.NewNode("Top", domain.NodeTypeCommand, nil, table)
	root.SetMutexNames([]string{"radio"})
	domain.FinalizePlan(root)

	plan := NewPlan(root, table, NewSymbolTable())
	errs := Check(plan)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "not in scope")
}

func TestCheckAcceptsMutexResolvedAsPlanGlobal(t *testing.T) {
	table := domain.NewNodeTable()
	root := domain.NewNode("Top", domain.NodeTypeCommand, nil, table)
	root.SetMutexNames([]string{"radio"})
	domain.FinalizePlan(root)

	plan := NewPlan(root, table, NewSymbolTable())
	plan.DeclareGlobalMutex("radio")
	assert.Empty(t, Check(plan))
}

func TestCheckRejectsLibraryCallMissingParamBinding(t *testing.T) {
	table := domain.NewNodeTable()
	root := domain.NewNode("Top", domain.NodeTypeLibraryCall, nil, table)
	root.SetScope(domain.NewScope(root))
	root.SetBody(&domain.LibraryCallBody{LibraryName: "Sub"})
	domain.FinalizePlan(root)

	symbols := NewSymbolTable()
	symbols.Libraries["Sub"] = LibraryDecl{Name: "Sub", Params: []LibraryParam{{Name: "speed", Type: domain.TypeReal}}}

	plan := NewPlan(root, table, symbols)
	errs := Check(plan)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "interface variable")
}

func TestCheckAcceptsLibraryCallWithBoundParam(t *testing.T) {
	table := domain.NewNodeTable()
	root := domain.NewNode("Top", domain.NodeTypeLibraryCall, nil, table)
	root.SetScope(domain.NewScope(root))
	root.Scope().Declare("speed", domain.NewVariable("speed", domain.TypeReal))
	root.SetBody(&domain.LibraryCallBody{LibraryName: "Sub"})
	domain.FinalizePlan(root)

	symbols := NewSymbolTable()
	symbols.Libraries["Sub"] = LibraryDecl{Name: "Sub", Params: []LibraryParam{{Name: "speed", Type: domain.TypeReal}}}

	plan := NewPlan(root, table, symbols)
	assert.Empty(t, Check(plan))
}
