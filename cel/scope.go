package cel

// Scope is a singly-linked frame chain of name -> *VarDecl bindings,
// modeled the same way the teacher's generic Env[T] (decl/env.go) chains
// scopes via an `outer` pointer, specialized here to *VarDecl. The root
// frame is built from the Env's variable declarations; comprehensions
// push an "accumulator" frame and, nested inside it, an "iterator" frame
// (spec §4.4, §4.6 Comprehension).
type Scope struct {
	store map[string]*VarDecl
	outer *Scope
	env   *Env // only set on the root scope; lets Lookup fall through to Env decls
}

// NewRootScope builds the top-level scope from an Env's declared
// variables.
func NewRootScope(env *Env) *Scope {
	return &Scope{store: make(map[string]*VarDecl), env: env}
}

// Push returns a child scope owned by the resolver, the same way
// TypeScope.Push / Env.Push does in the teacher (decl/typescope.go,
// decl/env.go).
func (s *Scope) Push() *Scope {
	return &Scope{store: make(map[string]*VarDecl), outer: s}
}

// Lookup walks parent links and returns the innermost binding, falling
// through to the Env's top-level variable declarations at the root.
func (s *Scope) Lookup(name string) (*VarDecl, bool) {
	for frame := s; frame != nil; frame = frame.outer {
		if v, ok := frame.store[name]; ok {
			return v, true
		}
		if frame.env != nil {
			if v, ok := frame.env.LookupVariable(name); ok {
				return v, true
			}
		}
	}
	return nil, false
}

// InsertIfAbsent binds decl within the current frame only if that frame
// does not already hold a binding for decl.Name — it never shadows an
// existing entry in the same frame, matching spec §4.4.
func (s *Scope) InsertIfAbsent(decl *VarDecl) bool {
	if _, exists := s.store[decl.Name]; exists {
		return false
	}
	s.store[decl.Name] = decl
	return true
}
