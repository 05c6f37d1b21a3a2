package cel

import "fmt"

// Options mirrors spec §6's option table. Each flag installs extra
// overloads or relaxes a typing rule when building an Env; the checker
// itself never branches on an Option directly, it only ever sees the
// overloads/behavior Options caused to be registered.
type Options struct {
	EnableCrossNumericComparisons bool
	EnableHeterogeneousEquality   bool
	EnableListConcat              bool

	// StrictContainerTypes, when true, turns the list/map element-type
	// mismatch-reduces-to-Dyn behavior into an error instead (spec §9
	// Open question 1). Off by default to match the documented
	// permissive behavior.
	StrictContainerTypes bool

	// StrictMapKeys promotes the "unsupported map key type" warning to
	// an error (spec §9 Open question 2). Off by default.
	StrictMapKeys bool

	// Trace, when set, is called with a verbose trace of which overloads
	// were tried during overload resolution and whether each matched. The
	// checker core never logs on its own; this hook is the only way a
	// caller observes that trace (the CLI wires it to log.Printf behind
	// --verbose).
	Trace func(format string, args ...any)
}

// Env is the immutable composition described in spec §3: variable decls,
// function decls, container, type provider, and options. Construct one
// with NewEnv, populate it with AddVariable/AddFunction, then use it for
// any number of concurrent Check calls (spec §5): it is read-only once
// handed to Check.
type Env struct {
	container string
	variables map[string]*VarDecl
	functions map[string]*FuncDecl
	provider  TypeProvider
	options   Options
}

func NewEnv(container string, provider TypeProvider, options Options) *Env {
	return &Env{
		container: container,
		variables: map[string]*VarDecl{},
		functions: map[string]*FuncDecl{},
		provider:  provider,
		options:   options,
	}
}

func (e *Env) Container() string      { return e.container }
func (e *Env) Provider() TypeProvider { return e.provider }
func (e *Env) Options() Options       { return e.options }

// AddVariable registers a top-level variable declaration. A duplicate
// name is an error: unlike function overloads, a variable name is
// singular (spec §4.2's AlreadyExists rule applies here by the same
// reasoning the teacher's FileDecl.RegisterComponent etc. use).
func (e *Env) AddVariable(name string, t *Type) error {
	if _, exists := e.variables[name]; exists {
		return fmt.Errorf("%w: variable '%s' already declared", ErrAlreadyExists, name)
	}
	e.variables[name] = NewVarDecl(name, t)
	return nil
}

// AddFunction registers one overload under name, creating the FuncDecl
// on first use. Re-registering an existing overload id is an error
// (spec §4.2: "Adding a function with the same name as an existing
// lazy/non-strict registration fails with AlreadyExists").
func (e *Env) AddFunction(name string, overload *Overload) error {
	fd, ok := e.functions[name]
	if !ok {
		fd = &FuncDecl{Name: name}
		e.functions[name] = fd
	}
	return fd.AddOverload(overload)
}

func (e *Env) LookupVariable(name string) (*VarDecl, bool) {
	v, ok := e.variables[name]
	return v, ok
}

func (e *Env) LookupFunction(name string) (*FuncDecl, bool) {
	f, ok := e.functions[name]
	return f, ok
}

// LookupTypeName resolves a struct/enum/opaque type name via the
// Env's type provider, returning (nil, false) if none is configured or
// the name is unknown.
func (e *Env) LookupTypeName(name string) (*Type, bool) {
	if e.provider == nil {
		return nil, false
	}
	return e.provider.LookupType(name)
}
