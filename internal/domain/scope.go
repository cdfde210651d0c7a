package domain

// Scope is the per-node lexical environment: the variables (locals and,
// for a LibraryCall node, the In/InOut alias bindings) and mutexes
// declared directly on a node. Name resolution walks up through
// ancestors' scopes unless it crosses a LibraryCall alias barrier, which
// only exposes the names the call explicitly bound through.
type Scope struct {
	node    *Node
	vars    map[string]Expression
	mutexes map[string]*Mutex

	// barrier is true on a LibraryCall node's own scope: lexical lookup
	// for names not found here must not continue past it into the
	// *caller's* ancestors, since a library is meant to be opaque to
	// whatever plan invokes it.
	barrier bool
}

// NewScope builds an empty scope owned by node.
func NewScope(node *Node) *Scope {
	return &Scope{node: node, vars: make(map[string]Expression), mutexes: make(map[string]*Mutex)}
}

// NewLibraryCallScope builds the alias-barrier scope a LibraryCall node
// installs for its callee: only the names added to this scope with
// Declare are visible to the callee, never the caller's other locals.
func NewLibraryCallScope(node *Node) *Scope {
	s := NewScope(node)
	s.barrier = true
	return s
}

// Declare adds a locally-declared variable (or alias) under name.
func (s *Scope) Declare(name string, expr Expression) {
	s.vars[name] = expr
}

// DeclareMutex registers a mutex declared directly on this node.
func (s *Scope) DeclareMutex(m *Mutex) {
	s.mutexes[m.Name()] = m
}

// Lookup resolves name to an Expression, searching this scope first and
// then, unless this scope is a barrier, the nearest ancestor's scope.
func (s *Scope) Lookup(name string) (Expression, bool) {
	if e, ok := s.vars[name]; ok {
		return e, true
	}
	if s.barrier {
		return nil, false
	}
	if s.node.parent == nil || s.node.parent.scope == nil {
		return nil, false
	}
	return s.node.parent.scope.Lookup(name)
}

// HasLocal reports whether name is bound directly in this scope, without
// walking to an ancestor. Used to check that a LibraryCall node's own
// scope actually binds every interface parameter the library declares.
func (s *Scope) HasLocal(name string) bool {
	_, ok := s.vars[name]
	return ok
}

// Mutexes returns the mutexes declared directly on this scope (not
// those only reachable by walking to an ancestor), for callers that need
// to enumerate every mutex in a plan rather than resolve one by name.
func (s *Scope) Mutexes() map[string]*Mutex { return s.mutexes }

// LookupMutex resolves name to a Mutex declared on this node or an
// ancestor. Mutex visibility is not alias-barriered: a library call may
// still reference a mutex its caller declared, since mutexes guard a
// shared external resource rather than a variable binding.
func (s *Scope) LookupMutex(name string) (*Mutex, bool) {
	if m, ok := s.mutexes[name]; ok {
		return m, true
	}
	if s.node.parent == nil || s.node.parent.scope == nil {
		return nil, false
	}
	return s.node.parent.scope.LookupMutex(name)
}

// Activate activates every locally-declared variable (aliases cascade
// activation into whatever they wrap via the normal Expression contract).
func (s *Scope) Activate() {
	for _, v := range s.vars {
		v.Activate()
	}
}

// Deactivate is Activate's mirror.
func (s *Scope) Deactivate() {
	for _, v := range s.vars {
		v.Deactivate()
	}
}
