// Package executor is the application-layer scheduler: the single-
// threaded cooperative executive that drives a plan's node tree to
// completion against an external interface.
package executor

import (
	"fmt"

	"github.com/plexilrun/plexil/internal/domain"
)

// CommandDecl, LookupDecl, LibraryDecl and MutexDecl are the symbol-table
// entries the plan-loading interface hands the core alongside the root
// node: a symbol table mapping command names, lookup names, library-node
// names, and mutex names to their declarations.
type CommandDecl struct {
	Name       string
	ReturnType domain.ValueType
	ParamTypes []domain.ValueType
	AnyParams  bool
}

type LookupDecl struct {
	Name       string
	ReturnType domain.ValueType
	ParamTypes []domain.ValueType
}

type LibraryParam struct {
	Name string
	Type domain.ValueType
	// InOut is true for an InOut interface parameter, false for In.
	InOut bool
}

type LibraryDecl struct {
	Name   string
	Params []LibraryParam
}

type MutexDecl struct {
	Name   string
	Global bool
}

// SymbolTable is the declaration set the parser hands the core alongside
// the root node.
type SymbolTable struct {
	Commands  map[string]CommandDecl
	Lookups   map[string]LookupDecl
	Libraries map[string]LibraryDecl
	Mutexes   map[string]MutexDecl
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		Commands:  make(map[string]CommandDecl),
		Lookups:   make(map[string]LookupDecl),
		Libraries: make(map[string]LibraryDecl),
		Mutexes:   make(map[string]MutexDecl),
	}
}

// Plan is a fully-built, not-yet-checked plan: a root node, the arena
// every node in its tree is registered in, the plan-global mutex
// registry consulted at the tail of mutex lookup, and the symbol table.
type Plan struct {
	Root    *domain.Node
	Table   *domain.NodeTable
	Globals map[string]*domain.Mutex
	Symbols *SymbolTable
}

// NewPlan wraps an already-constructed tree. Callers are expected to have
// called domain.FinalizePlan(root) before this point.
func NewPlan(root *domain.Node, table *domain.NodeTable, symbols *SymbolTable) *Plan {
	return &Plan{Root: root, Table: table, Globals: make(map[string]*domain.Mutex), Symbols: symbols}
}

// DeclareGlobalMutex registers a plan-global mutex, visible from any
// node's scope once local and ancestor lookup is exhausted.
func (p *Plan) DeclareGlobalMutex(name string) *domain.Mutex {
	m := domain.NewMutex(name)
	p.Globals[name] = m
	return m
}

// ResolveMutex looks name up starting from node's own scope, walking
// ancestors, and finally falling back to the plan-global registry.
func (p *Plan) ResolveMutex(node *domain.Node, name string) (*domain.Mutex, bool) {
	if node.Scope() != nil {
		if m, ok := node.Scope().LookupMutex(name); ok {
			return m, true
		}
	}
	m, ok := p.Globals[name]
	return m, ok
}

// AllMutexes enumerates every mutex reachable from the plan exactly
// once: the plan-global registry, plus every mutex declared directly on
// some node's own scope (not mutexes only reachable by walking up to an
// ancestor, which would revisit the same *Mutex through every
// descendant). Used by the periodic backoff rescan, which has no other
// way to find mutex waiters -- unlike the arbiter's ResourceSpec
// requests, mutex wait queues live scattered across node scopes rather
// than in one place the executive already holds a reference to.
func (p *Plan) AllMutexes() []*domain.Mutex {
	seen := make(map[*domain.Mutex]bool)
	var out []*domain.Mutex
	add := func(m *domain.Mutex) {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	for _, m := range p.Globals {
		add(m)
	}
	var walk func(n *domain.Node)
	walk = func(n *domain.Node) {
		if n.Scope() != nil {
			for _, m := range n.Scope().Mutexes() {
				add(m)
			}
		}
		for _, c := range n.Children() {
			walk(c)
		}
	}
	walk(p.Root)
	return out
}

// Check runs the plan-check validation pass: duplicate node ids,
// children on a non-container node type, out-of-range priorities,
// malformed resource specs, unresolved mutex names, and that every
// LibraryCall binds a value for each of its library's declared interface
// parameters (the CommandHandleVariable-must-name-a-Command rule is
// enforced separately, at reference-resolution time, by
// NodeReference.ResolveCommandHandleVariable). It never mutates the
// plan; callers should refuse to run the executive against a plan Check
// returns any error for, since the core should never start against a
// partial or invalid plan.
func Check(p *Plan) []error {
	var errs []error
	seen := make(map[string]bool)

	var walk func(n *domain.Node)
	walk = func(n *domain.Node) {
		if seen[n.ID()] {
			errs = append(errs, fmt.Errorf("duplicate node id %q", n.ID()))
		}
		seen[n.ID()] = true

		if !n.Type().HasChildren() && len(n.Children()) > 0 {
			errs = append(errs, fmt.Errorf("node %q: type %s may not have children", n.ID(), n.Type()))
		}
		if n.Priority() < 0 {
			errs = append(errs, fmt.Errorf("node %q: priority %d out of range", n.ID(), n.Priority()))
		}
		if body, ok := n.Body().(*domain.CommandBody); ok {
			for _, r := range body.Resources {
				if r.UpperBound < 0 {
					errs = append(errs, fmt.Errorf("node %q: resource %q has negative upper bound", n.ID(), r.Name))
				}
			}
		}
		if lib, ok := n.Body().(*domain.LibraryCallBody); ok {
			decl, declared := p.Symbols.Libraries[lib.LibraryName]
			if !declared {
				errs = append(errs, fmt.Errorf("node %q: library %q not in symbol table", n.ID(), lib.LibraryName))
			} else if n.Scope() != nil {
				for _, param := range decl.Params {
					if !n.Scope().HasLocal(param.Name) {
						errs = append(errs, fmt.Errorf("node %q: library %q interface variable %q has no caller binding and no default", n.ID(), lib.LibraryName, param.Name))
					}
				}
			}
		}
		for _, name := range n.MutexNames() {
			if _, ok := p.ResolveMutex(n, name); !ok {
				errs = append(errs, fmt.Errorf("node %q: mutex %q not in scope", n.ID(), name))
			}
		}
		for _, c := range n.Children() {
			walk(c)
		}
	}
	walk(p.Root)

	return errs
}
