package cel

import "fmt"

// InferContext owns the fresh-type-variable counter and the current
// substitution for one Check call (spec §3, §4.5). It is never shared
// across Check calls; the checker facade creates exactly one per call,
// the same one-state-per-request discipline the teacher's loader/infer.go
// InferContext follows.
type InferContext struct {
	nextVar      int
	substitution map[string]*Type
	trace        func(format string, args ...any)
}

func NewInferContext() *InferContext {
	return &InferContext{substitution: map[string]*Type{}}
}

// tracef forwards to the env-supplied trace hook (cel.Options.Trace) when
// one is configured, e.g. to log which overloads were tried during
// resolution; it is a no-op otherwise, keeping the core package's
// "never logs on its own" rule (only the caller's hook can log).
func (c *InferContext) tracef(format string, args ...any) {
	if c.trace == nil {
		return
	}
	c.trace(format, args...)
}

// freshName mints a type-variable name guaranteed unused by this context,
// namespaced so it can never collide with a user- or stdlib-declared
// TypeParam name.
func (c *InferContext) freshName() string {
	c.nextVar++
	return fmt.Sprintf("$T%d", c.nextVar)
}

// FreshInstantiate replaces every TypeParam named in params with a
// distinct fresh type variable throughout t, leaving t untouched if it
// mentions none of params. Used once per call-site candidate overload
// before unification begins (spec §4.5 step 1).
func (c *InferContext) FreshInstantiate(t *Type, params []string) *Type {
	if len(params) == 0 {
		return t
	}
	rename := map[string]string{}
	for _, p := range params {
		rename[p] = c.freshName()
	}
	return substituteNames(t, rename)
}

func substituteNames(t *Type, rename map[string]string) *Type {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case KindTypeParam:
		if fresh, ok := rename[t.TypeParamName()]; ok {
			return TypeParam(fresh)
		}
		return t
	case KindList:
		return ListType(substituteNames(t.ElemType(), rename))
	case KindMap:
		return MapType(substituteNames(t.KeyType(), rename), substituteNames(t.ValueType(), rename))
	case KindOpaque:
		params := t.OpaqueParams()
		out := make([]*Type, len(params))
		for i, p := range params {
			out[i] = substituteNames(p, rename)
		}
		return &Type{Kind: KindOpaque, Info: &opaqueInfo{Name: t.OpaqueName(), Params: out}}
	case KindType:
		if p := t.MetaParam(); p != nil {
			return MetaType(substituteNames(p, rename))
		}
		return t
	default:
		return t
	}
}

// resolve follows the current substitution chain for a free type
// variable to its most specific known binding, or returns t unchanged if
// t is not a TypeParam or is an unbound one.
func (c *InferContext) resolve(t *Type) *Type {
	for t != nil && t.Kind == KindTypeParam {
		bound, ok := c.substitution[t.TypeParamName()]
		if !ok {
			return t
		}
		t = bound
	}
	return t
}

// IsAssignable reports whether a value of type from may be used where to
// is expected, mutating c's substitution to record any free-variable
// bindings made along the way (spec §4.5: Dyn is universally compatible
// both directions, wrappers correspond to their primitive plus Null,
// identical structure recurses component-wise, unbound type parameters
// unify with anything).
func (c *InferContext) IsAssignable(from, to *Type) bool {
	from = c.resolve(from)
	to = c.resolve(to)

	if from == nil || to == nil {
		return false
	}
	if from.Kind == KindDyn || to.Kind == KindDyn {
		return true
	}
	if from.Kind == KindError || to.Kind == KindError {
		return true
	}
	if to.Kind == KindTypeParam {
		c.substitution[to.TypeParamName()] = from
		return true
	}
	if from.Kind == KindTypeParam {
		c.substitution[from.TypeParamName()] = to
		return true
	}
	if from.Kind == KindNull && (to.IsWrapper() || to.Kind == KindAny) {
		return true
	}
	if from.IsWrapper() && to.Kind == KindNull {
		return true
	}
	if wrapperOfPrimitive[from.Kind] == to.Kind || primitiveOfWrapper[from.Kind] == to.Kind {
		return true
	}
	if from.Kind != to.Kind {
		return false
	}
	switch from.Kind {
	case KindList:
		return c.IsAssignable(from.ElemType(), to.ElemType())
	case KindMap:
		return c.IsAssignable(from.KeyType(), to.KeyType()) && c.IsAssignable(from.ValueType(), to.ValueType())
	case KindStruct:
		return from.StructName() == to.StructName()
	case KindOpaque:
		if from.OpaqueName() != to.OpaqueName() {
			return false
		}
		fp, tp := from.OpaqueParams(), to.OpaqueParams()
		if len(fp) != len(tp) {
			return false
		}
		for i := range fp {
			if !c.IsAssignable(fp[i], tp[i]) {
				return false
			}
		}
		return true
	case KindType:
		fp, tp := from.MetaParam(), to.MetaParam()
		if fp == nil || tp == nil {
			return fp == tp
		}
		return c.IsAssignable(fp, tp)
	default:
		return true
	}
}

// snapshot captures the current substitution so a failed candidate's
// partial bindings can be rolled back without disturbing prior,
// successful candidates (spec §4.5 step 2: each candidate is tried
// against an independent copy of the substitution).
func (c *InferContext) snapshot() map[string]*Type {
	cp := make(map[string]*Type, len(c.substitution))
	for k, v := range c.substitution {
		cp[k] = v
	}
	return cp
}

func (c *InferContext) restore(snap map[string]*Type) {
	c.substitution = snap
}

// ResolveOverload implements spec §4.5's two-stage algorithm: ByShape has
// already filtered by receiver-style and arity; this tries each surviving
// candidate's freshly-instantiated signature against the supplied
// argument types, keeping only those whose every argument is assignable,
// and returns the survivors together with the combined result type
// (Finalize narrows this further once all candidates are known).
func (c *InferContext) ResolveOverload(candidates []*Overload, argTypes []*Type) (survivors []*Overload, resultType *Type) {
	for _, cand := range candidates {
		snap := c.snapshot()
		// Every occurrence of a type param within one candidate's
		// signature must resolve to the SAME fresh variable, so the
		// rename map is built once per candidate trial and shared
		// across its argument types and result type.
		rename := map[string]string{}
		for _, p := range cand.TypeParams {
			rename[p] = c.freshName()
		}
		freshArgs := make([]*Type, len(cand.ArgTypes))
		for i, a := range cand.ArgTypes {
			freshArgs[i] = substituteNames(a, rename)
		}
		ok := true
		for i, argType := range argTypes {
			if !c.IsAssignable(argType, freshArgs[i]) {
				ok = false
				break
			}
		}
		if !ok {
			c.tracef("overload %s: rejected for args (%s)", cand.ID, describeArgs(argTypes))
			c.restore(snap)
			continue
		}
		c.tracef("overload %s: matched args (%s)", cand.ID, describeArgs(argTypes))
		freshResult := substituteNames(cand.ResultType, rename)
		survivors = append(survivors, cand)
		if resultType == nil {
			resultType = freshResult
		} else if !resultType.Equals(freshResult) {
			resultType = Dyn
		}
	}
	if len(survivors) == 0 {
		return nil, ErrorType
	}
	if len(survivors) > 1 && resultType == nil {
		resultType = Dyn
	}
	return survivors, c.Finalize(resultType)
}

// Finalize applies the current substitution to t until reaching a fixed
// point, then replaces any type parameter still unbound with Dyn in the
// returned annotation only — the substitution map itself is never
// mutated by Finalize, so repeated calls are idempotent (spec §8
// invariant 4).
func (c *InferContext) Finalize(t *Type) *Type {
	return finalizeRec(t, c.substitution, map[string]bool{})
}

func finalizeRec(t *Type, sub map[string]*Type, visiting map[string]bool) *Type {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case KindTypeParam:
		name := t.TypeParamName()
		if visiting[name] {
			return Dyn
		}
		if bound, ok := sub[name]; ok {
			visiting[name] = true
			resolved := finalizeRec(bound, sub, visiting)
			delete(visiting, name)
			return resolved
		}
		return Dyn
	case KindList:
		return ListType(finalizeRec(t.ElemType(), sub, visiting))
	case KindMap:
		return MapType(finalizeRec(t.KeyType(), sub, visiting), finalizeRec(t.ValueType(), sub, visiting))
	case KindOpaque:
		params := t.OpaqueParams()
		out := make([]*Type, len(params))
		for i, p := range params {
			out[i] = finalizeRec(p, sub, visiting)
		}
		return &Type{Kind: KindOpaque, Info: &opaqueInfo{Name: t.OpaqueName(), Params: out}}
	case KindType:
		if p := t.MetaParam(); p != nil {
			return MetaType(finalizeRec(p, sub, visiting))
		}
		return t
	default:
		return t
	}
}
