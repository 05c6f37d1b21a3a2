package cel

import (
	"strings"

	gfn "github.com/panyam/goutils/fn"

	"github.com/panyam/celcheck/ast"
)

// refInfo is what the resolver records per expression id for names the
// rewriter will later canonicalize (spec §4.6, §4.7).
type refInfo struct {
	Name             string
	OverloadIDs      []string
	NamespaceRewrite bool
}

// Resolver is the first AST walk: it annotates every expression id with a
// resolved Type and, where applicable, a refInfo, accumulating Issues
// along the way. One Resolver is built per Check call and discarded
// after use (spec §5).
type Resolver struct {
	env        *Env
	ns         *NamespaceGenerator
	infer      *InferContext
	issues     *IssueCollector
	sourceInfo *ast.SourceInfo
	scope      *Scope

	types    map[int64]*Type
	refs     map[int64]refInfo
	deferred map[int64]bool // name-segment select/ident nodes that carry no type of their own
}

func NewResolver(env *Env, sourceInfo *ast.SourceInfo) *Resolver {
	infer := NewInferContext()
	infer.trace = env.Options().Trace
	return &Resolver{
		env:        env,
		ns:         NewNamespaceGenerator(env.Container()),
		infer:      infer,
		issues:     NewIssueCollector(),
		sourceInfo: sourceInfo,
		scope:      NewRootScope(env),
		types:      map[int64]*Type{},
		refs:       map[int64]refInfo{},
		deferred:   map[int64]bool{},
	}
}

func (r *Resolver) Run(root ast.Expr) { r.resolve(root) }

func (r *Resolver) Issues() *IssueCollector { return r.issues }

func (r *Resolver) loc(id int64) ast.Location { return r.sourceInfo.LocationFor(id) }

// resolve is the post-order dispatcher. Results are cached by id so the
// deferred-select fix-up (handled entirely inside resolveSelectTop) never
// causes a node to be visited twice.
func (r *Resolver) resolve(e ast.Expr) *Type {
	if t, ok := r.types[e.ID()]; ok {
		return t
	}
	var t *Type
	switch v := e.(type) {
	case *ast.Constant:
		t = r.resolveConstant(v)
	case *ast.Ident:
		t = r.resolveIdent(v)
	case *ast.Select:
		t = r.resolveSelectTop(v)
	case *ast.Call:
		t = r.resolveCall(v)
	case *ast.List:
		t = r.resolveList(v)
	case *ast.Map:
		t = r.resolveMap(v)
	case *ast.Struct:
		t = r.resolveStruct(v)
	case *ast.Comprehension:
		t = r.resolveComprehension(v)
	default:
		t = Dyn
	}
	r.types[e.ID()] = t
	return t
}

func (r *Resolver) resolveConstant(v *ast.Constant) *Type {
	switch v.Kind {
	case ast.ConstantNull:
		return Null
	case ast.ConstantBool:
		return Bool
	case ast.ConstantInt:
		return Int
	case ast.ConstantUint:
		return Uint
	case ast.ConstantDouble:
		return Double
	case ast.ConstantBytes:
		return Bytes
	case ast.ConstantString:
		return String
	case ast.ConstantDuration:
		return Duration
	case ast.ConstantTimestamp:
		return Timestamp
	default:
		r.issues.Warnf(r.loc(v.ID()), "unsupported constant kind")
		return Dyn
	}
}

// --- Identifier / dotted-path resolution (spec §4.6) ---

// collectDottedChain reports whether e is a pure dotted path: an Ident,
// or a chain of Selects bottoming out at one. selects is ordered
// innermost-first (closest to ident first), matching the order fields
// are applied.
func collectDottedChain(e ast.Expr) (ident *ast.Ident, selects []*ast.Select, ok bool) {
	var outerFirst []*ast.Select
	cur := e
	for {
		switch v := cur.(type) {
		case *ast.Ident:
			selects = make([]*ast.Select, len(outerFirst))
			for i, s := range outerFirst {
				selects[len(outerFirst)-1-i] = s
			}
			return v, selects, true
		case *ast.Select:
			outerFirst = append(outerFirst, v)
			cur = v.Operand
		default:
			return nil, nil, false
		}
	}
}

func (r *Resolver) resolveIdent(v *ast.Ident) *Type {
	return r.resolveDottedChain(v, nil)
}

// resolveQualifiedIdentifier runs the namespace generator over the
// dotted-path segment names, preferring the longest qualifier chain,
// stopping at the first candidate with a scope binding.
func (r *Resolver) resolveQualifiedIdentifier(names []string) (decl *VarDecl, segmentsConsumed int, candidate string, found bool) {
	r.ns.GenerateQualified(names, func(cand string, segs int) bool {
		if v, ok := r.scope.Lookup(cand); ok {
			decl, segmentsConsumed, candidate, found = v, segs, cand, true
			return false
		}
		return true
	})
	return
}

// resolveDottedChain resolves ident plus the (possibly empty) chain of
// selects rooted at it as a qualified identifier, then applies any
// trailing (unconsumed) selects as ordinary field accesses, inside-out.
func (r *Resolver) resolveDottedChain(ident *ast.Ident, selects []*ast.Select) *Type {
	names := make([]string, 0, len(selects)+1)
	names = append(names, ident.Name)
	for _, s := range selects {
		names = append(names, s.Field)
	}

	decl, segs, candidate, found := r.resolveQualifiedIdentifier(names)
	if !found {
		r.issues.Errorf(r.loc(ident.ID()), "undeclared reference to '%s' (in container '%s')", strings.Join(names, "."), r.env.Container())
		r.types[ident.ID()] = ErrorType
		for _, s := range selects {
			r.types[s.ID()] = ErrorType
		}
		return ErrorType
	}

	consumed := segs - 1 // number of selects folded into the variable name
	var varNodeID int64
	if consumed == 0 {
		varNodeID = ident.ID()
	} else {
		varNodeID = selects[consumed-1].ID()
		r.deferred[ident.ID()] = true
		for i := 0; i < consumed-1; i++ {
			r.deferred[selects[i].ID()] = true
		}
	}

	curType := r.infer.FreshInstantiate(decl.Type, FreeTypeParams(decl.Type))
	r.refs[varNodeID] = refInfo{Name: candidate}
	r.types[varNodeID] = curType

	for _, s := range selects[consumed:] {
		curType = r.applyFieldAccess(curType, s)
		r.types[s.ID()] = curType
	}
	return curType
}

func (r *Resolver) resolveSelectTop(v *ast.Select) *Type {
	if ident, selects, ok := collectDottedChain(v); ok {
		return r.resolveDottedChain(ident, selects)
	}
	opType := r.resolve(v.Operand)
	return r.applyFieldAccess(opType, v)
}

func (r *Resolver) applyFieldAccess(opType *Type, s *ast.Select) *Type {
	result := r.selectFieldType(opType, s)
	if s.TestOnly {
		return Bool
	}
	return result
}

func (r *Resolver) selectFieldType(opType *Type, s *ast.Select) *Type {
	opType = r.infer.resolve(opType)
	switch {
	case opType.Kind == KindDyn || opType.Kind == KindAny:
		return Dyn
	case opType.Kind == KindStruct:
		provider := r.env.Provider()
		if provider == nil {
			r.issues.Errorf(r.loc(s.ID()), "internal error: no type provider configured")
			return ErrorType
		}
		fi, ok := provider.LookupStructField(opType.StructName(), s.Field)
		if !ok {
			r.issues.Errorf(r.loc(s.ID()), "undefined field '%s' not found in struct '%s'", s.Field, opType.StructName())
			return ErrorType
		}
		return fi.Type
	case opType.Kind == KindMap:
		if r.infer.IsAssignable(String, opType.KeyType()) {
			return opType.ValueType()
		}
		r.issues.Errorf(r.loc(s.ID()), "expression of type '%s' cannot be the operand of a select operation", opType)
		return ErrorType
	case opType.IsOptional():
		return r.selectFieldType(opType.OpaqueParams()[0], s)
	default:
		r.issues.Errorf(r.loc(s.ID()), "expression of type '%s' cannot be the operand of a select operation", opType)
		return ErrorType
	}
}

// --- List / Map / Struct construction (spec §4.6) ---

func (r *Resolver) mergeElemType(current, next *Type, exprID int64, what string) *Type {
	if current == nil {
		return next
	}
	if current.Equals(next) {
		return current
	}
	if r.env.Options().StrictContainerTypes {
		r.issues.Errorf(r.loc(exprID), "inconsistent %s type: '%s' vs '%s'", what, current, next)
	}
	return Dyn
}

func (r *Resolver) resolveList(v *ast.List) *Type {
	if len(v.Elements) == 0 {
		return ListType(TypeParam(r.infer.freshName()))
	}
	var elem *Type
	for _, e := range v.Elements {
		et := r.resolve(e.Value)
		if e.Optional && et.IsOptional() {
			et = et.OpaqueParams()[0]
		}
		elem = r.mergeElemType(elem, et, e.Value.ID(), "list element")
	}
	return ListType(elem)
}

var supportedMapKeyKinds = map[Kind]bool{
	KindBool: true, KindInt: true, KindUint: true, KindString: true, KindDyn: true,
}

func (r *Resolver) resolveMap(v *ast.Map) *Type {
	if len(v.Entries) == 0 {
		return MapType(TypeParam(r.infer.freshName()), TypeParam(r.infer.freshName()))
	}
	var keyT, valT *Type
	for _, e := range v.Entries {
		kt := r.resolve(e.Key)
		vt := r.resolve(e.Value)
		if !supportedMapKeyKinds[kt.Kind] {
			if r.env.Options().StrictMapKeys {
				r.issues.Errorf(r.loc(e.Key.ID()), "unsupported map key type: %s", kt)
			} else {
				r.issues.Warnf(r.loc(e.Key.ID()), "unsupported map key type: %s", kt)
			}
		}
		if e.Optional && vt.IsOptional() {
			vt = vt.OpaqueParams()[0]
		}
		keyT = r.mergeElemType(keyT, kt, e.Key.ID(), "map key")
		valT = r.mergeElemType(valT, vt, e.Value.ID(), "map value")
	}
	return MapType(keyT, valT)
}

func (r *Resolver) resolveTypeName(name string, exprID int64) (*Type, bool) {
	var result *Type
	found := false
	r.ns.Generate(name, func(candidate string) bool {
		if t, ok := r.env.LookupTypeName(candidate); ok {
			result, found = t, true
			return false
		}
		return true
	})
	if !found {
		r.issues.Errorf(r.loc(exprID), "undeclared reference to '%s' (in container '%s')", name, r.env.Container())
	}
	return result, found
}

func (r *Resolver) resolveStruct(v *ast.Struct) *Type {
	structType, found := r.resolveTypeName(v.TypeName, v.ID())
	if !found {
		return ErrorType
	}
	if structType.Kind != KindStruct {
		r.issues.Errorf(r.loc(v.ID()), "type '%s' does not support message creation", v.TypeName)
		return ErrorType
	}
	provider := r.env.Provider()
	for _, f := range v.Fields {
		valType := r.resolve(f.Value)
		if provider == nil {
			r.issues.Errorf(r.loc(f.Value.ID()), "internal error: no type provider configured")
			continue
		}
		fi, ok := provider.LookupStructField(structType.StructName(), f.Name)
		if !ok {
			r.issues.Errorf(r.loc(v.ID()), "undefined field '%s' not found in struct '%s'", f.Name, structType.StructName())
			continue
		}
		expected := fi.Type
		if f.Optional {
			expected = OptionalType(fi.Type)
		}
		if !r.infer.IsAssignable(valType, expected) {
			r.issues.Errorf(r.loc(f.Value.ID()), "expected type of field '%s' is '%s' but provided type is '%s'", f.Name, fi.Type, valType)
		}
	}
	r.refs[v.ID()] = refInfo{Name: structType.StructName()}
	return structType
}

// --- Calls (spec §4.6) ---

func (r *Resolver) resolveNamespacedFunction(fullName string, isMember bool, arity int) ([]*Overload, string, bool) {
	var result []*Overload
	var cand string
	found := false
	r.ns.Generate(fullName, func(candidate string) bool {
		if fd, ok := r.env.LookupFunction(candidate); ok {
			if ov := fd.ByShape(isMember, arity); len(ov) > 0 {
				result, cand, found = ov, candidate, true
				return false
			}
		}
		return true
	})
	return result, cand, found
}

func describeArgs(argTypes []*Type) string {
	parts := make([]string, len(argTypes))
	for i, t := range argTypes {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}

func (r *Resolver) resolveCall(v *ast.Call) *Type {
	if v.Target == nil {
		return r.resolveFreeCall(v)
	}
	if ident, selects, ok := collectDottedChain(v.Target); ok {
		names := append([]string{ident.Name}, selectFields(selects)...)
		fullName := strings.Join(append(names, v.Function), ".")
		if overloads, candidate, ok := r.resolveNamespacedFunction(fullName, false, len(v.Args)); ok {
			r.deferred[ident.ID()] = true
			for _, s := range selects {
				r.deferred[s.ID()] = true
			}
			argTypes := r.resolveArgs(v.Args)
			survivors, resultType := r.infer.ResolveOverload(overloads, argTypes)
			r.recordCall(v.ID(), candidate, survivors, true)
			return resultType
		}
		recvType := r.resolveDottedChain(ident, selects)
		return r.resolveReceiverCall(v, recvType)
	}
	recvType := r.resolve(v.Target)
	return r.resolveReceiverCall(v, recvType)
}

func selectFields(selects []*ast.Select) []string {
	out := make([]string, len(selects))
	for i, s := range selects {
		out[i] = s.Field
	}
	return out
}

func (r *Resolver) resolveArgs(args []ast.Expr) []*Type {
	out := make([]*Type, len(args))
	for i, a := range args {
		out[i] = r.resolve(a)
	}
	return out
}

func (r *Resolver) recordCall(id int64, candidate string, survivors []*Overload, namespaceRewrite bool) {
	ids := gfn.Map(survivors, func(o *Overload) string { return o.ID })
	r.refs[id] = refInfo{Name: candidate, OverloadIDs: ids, NamespaceRewrite: namespaceRewrite}
}

func (r *Resolver) resolveFreeCall(v *ast.Call) *Type {
	argTypes := r.resolveArgs(v.Args)
	overloads, candidate, found := r.resolveNamespacedFunction(v.Function, false, len(v.Args))
	if !found {
		r.issues.Errorf(r.loc(v.ID()), "found no matching overload for '%s' applied to (%s)", v.Function, describeArgs(argTypes))
		return ErrorType
	}
	survivors, resultType := r.infer.ResolveOverload(overloads, argTypes)
	if len(survivors) == 0 {
		r.issues.Errorf(r.loc(v.ID()), "found no matching overload for '%s' applied to (%s)", v.Function, describeArgs(argTypes))
		return ErrorType
	}
	r.recordCall(v.ID(), candidate, survivors, false)
	return resultType
}

func (r *Resolver) resolveReceiverCall(v *ast.Call, recvType *Type) *Type {
	argTypes := make([]*Type, 0, len(v.Args)+1)
	argTypes = append(argTypes, recvType)
	argTypes = append(argTypes, r.resolveArgs(v.Args)...)

	overloads, candidate, found := r.resolveNamespacedFunction(v.Function, true, len(v.Args)+1)
	if !found {
		r.issues.Errorf(r.loc(v.ID()), "found no matching overload for '%s' applied to (%s)", v.Function, describeArgs(argTypes))
		return ErrorType
	}
	survivors, resultType := r.infer.ResolveOverload(overloads, argTypes)
	if len(survivors) == 0 {
		r.issues.Errorf(r.loc(v.ID()), "found no matching overload for '%s' applied to (%s)", v.Function, describeArgs(argTypes))
		return ErrorType
	}
	r.recordCall(v.ID(), candidate, survivors, false)
	return resultType
}

// --- Comprehension (spec §4.6) ---

func (r *Resolver) iterElementType(t *Type, exprID int64) *Type {
	t = r.infer.resolve(t)
	switch t.Kind {
	case KindList:
		return t.ElemType()
	case KindMap:
		return t.KeyType()
	case KindDyn:
		return Dyn
	default:
		r.issues.Errorf(r.loc(exprID), "expression of type '%s' cannot be the range of a comprehension", t)
		return ErrorType
	}
}

func (r *Resolver) resolveComprehension(v *ast.Comprehension) *Type {
	enclosing := r.scope

	iterRangeType := r.resolve(v.IterRange)
	accuInitType := r.resolve(v.AccuInit)

	accuScope := enclosing.Push()
	accuScope.InsertIfAbsent(NewVarDecl(v.AccuVar, accuInitType))

	iterScope := accuScope.Push()
	elemType := r.iterElementType(iterRangeType, v.ID())
	iterScope.InsertIfAbsent(NewVarDecl(v.IterVar, elemType))

	r.scope = iterScope
	r.resolve(v.LoopCondition)
	r.resolve(v.LoopStep)

	r.scope = accuScope
	resultType := r.resolve(v.Result)

	r.scope = enclosing
	return resultType
}
