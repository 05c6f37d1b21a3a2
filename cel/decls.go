package cel

import "fmt"

// VarDecl is an immutable variable declaration, owned either by the
// top-level Env or by a comprehension scope frame (spec §3).
type VarDecl struct {
	Name string
	Type *Type
}

func NewVarDecl(name string, t *Type) *VarDecl {
	return &VarDecl{Name: name, Type: t}
}

// Overload is one typed signature among several bearing the same
// function name. TypeParams lists the free type variables appearing in
// ArgTypes or ResultType; each is replaced with a fresh type variable at
// every call site that resolves to this overload (spec §3).
type Overload struct {
	ID         string
	IsMember   bool
	ArgTypes   []*Type
	ResultType *Type
	TypeParams []string
}

// NewOverload derives TypeParams automatically from the signature's free
// type variables, the way a registrar would rather than asking every
// caller to enumerate them by hand.
func NewOverload(id string, isMember bool, resultType *Type, argTypes ...*Type) *Overload {
	o := &Overload{ID: id, IsMember: isMember, ArgTypes: argTypes, ResultType: resultType}
	seen := map[string]bool{}
	for _, p := range FreeTypeParams(resultType) {
		if !seen[p] {
			seen[p] = true
			o.TypeParams = append(o.TypeParams, p)
		}
	}
	for _, a := range argTypes {
		for _, p := range FreeTypeParams(a) {
			if !seen[p] {
				seen[p] = true
				o.TypeParams = append(o.TypeParams, p)
			}
		}
	}
	return o
}

// FuncDecl is a function name together with every overload registered
// under it.
type FuncDecl struct {
	Name      string
	Overloads []*Overload
}

// AddOverload appends an overload, rejecting a duplicate id the way a
// non-strict registration conflict does in the teacher's RegisterX
// methods (decl/ast.go FileDecl.RegisterComponent etc: "already
// registered" is a hard error, never a silent merge).
func (f *FuncDecl) AddOverload(o *Overload) error {
	for _, existing := range f.Overloads {
		if existing.ID == o.ID {
			return fmt.Errorf("%w: overload id '%s' already registered for function '%s'", ErrAlreadyExists, o.ID, f.Name)
		}
	}
	f.Overloads = append(f.Overloads, o)
	return nil
}

// ErrAlreadyExists is returned (wrapped) when a duplicate declaration is
// registered against an Env.
var ErrAlreadyExists = fmt.Errorf("already exists")

// ByShape filters overloads to those matching a given receiver flag and
// arity, the first stage of the two-stage overload resolution algorithm
// in spec §4.5.
func (f *FuncDecl) ByShape(isMember bool, arity int) []*Overload {
	var out []*Overload
	for _, o := range f.Overloads {
		if o.IsMember == isMember && len(o.ArgTypes) == arity {
			out = append(out, o)
		}
	}
	return out
}
