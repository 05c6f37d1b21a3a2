package cel

// Standard library function names, spelled the way the grammar produces
// them for binary/unary operators (spec §6's "arithmetic, comparison,
// size, matches, endsWith, startsWith, contains registered").
const (
	FnAdd        = "_+_"
	FnSubtract   = "_-_"
	FnMultiply   = "_*_"
	FnDivide     = "_/_"
	FnModulo     = "_%_"
	FnNegate     = "-_"
	FnLogicalNot = "!_"
	FnLogicalAnd = "_&&_"
	FnLogicalOr  = "_||_"
	FnEquals     = "_==_"
	FnNotEquals  = "_!=_"
	FnLess       = "_<_"
	FnLessEq     = "_<=_"
	FnGreater    = "_>_"
	FnGreaterEq  = "_>=_"
	FnIndex      = "_[_]"
	FnIn         = "@in"
	FnTernary    = "_?_:_"
	FnSize       = "size"
	FnMatches    = "matches"
	FnEndsWith   = "endsWith"
	FnStartsWith = "startsWith"
	FnContains   = "contains"
)

func mustAddFunction(env *Env, name string, o *Overload) {
	if err := env.AddFunction(name, o); err != nil {
		panic(err)
	}
}

// overloadID follows the "<verb>_<arg1>_<arg2>..." convention used
// throughout the original cel-cpp standard library registration (see
// SPEC_FULL.md §12): e.g. "add_int64_int64", "less_uint64_int64".
func overloadID(verb string, args ...*Type) string {
	id := verb
	for _, a := range args {
		id += "_" + overloadTypeTag(a)
	}
	return id
}

func overloadTypeTag(t *Type) string {
	switch t.Kind {
	case KindInt:
		return "int64"
	case KindUint:
		return "uint64"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindBool:
		return "bool"
	case KindDuration:
		return "duration"
	case KindTimestamp:
		return "timestamp"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return t.String()
	}
}

// NewStandardEnv builds the base Env described by spec §8's scenario
// table: every primitive and well-known type known to the provider, plus
// arithmetic, comparison, logical, indexing, and the four string/search
// functions. Options toggle the extension overloads spec §6 documents.
func NewStandardEnv(container string, provider TypeProvider, options Options) *Env {
	env := NewEnv(container, provider, options)

	addArith(env, FnAdd, Int, Int, Int)
	addArith(env, FnAdd, Uint, Uint, Uint)
	addArith(env, FnAdd, Double, Double, Double)
	addArith(env, FnAdd, String, String, String)
	addArith(env, FnAdd, Bytes, Bytes, Bytes)
	addArith(env, FnAdd, Duration, Duration, Duration)
	mustAddFunction(env, FnAdd, NewOverload(overloadID("add", Timestamp, Duration), false, Timestamp, Timestamp, Duration))
	mustAddFunction(env, FnAdd, NewOverload(overloadID("add", Duration, Timestamp), false, Timestamp, Duration, Timestamp))
	if options.EnableListConcat {
		elem := TypeParam("A")
		listT := ListType(elem)
		mustAddFunction(env, FnAdd, NewOverload(overloadID("add", listT, listT), false, listT, listT, listT))
	}

	addArith(env, FnSubtract, Int, Int, Int)
	addArith(env, FnSubtract, Uint, Uint, Uint)
	addArith(env, FnSubtract, Double, Double, Double)
	mustAddFunction(env, FnSubtract, NewOverload(overloadID("subtract", Timestamp, Timestamp), false, Duration, Timestamp, Timestamp))
	mustAddFunction(env, FnSubtract, NewOverload(overloadID("subtract", Timestamp, Duration), false, Timestamp, Timestamp, Duration))
	mustAddFunction(env, FnSubtract, NewOverload(overloadID("subtract", Duration, Duration), false, Duration, Duration, Duration))

	addArith(env, FnMultiply, Int, Int, Int)
	addArith(env, FnMultiply, Uint, Uint, Uint)
	addArith(env, FnMultiply, Double, Double, Double)

	addArith(env, FnDivide, Int, Int, Int)
	addArith(env, FnDivide, Uint, Uint, Uint)
	addArith(env, FnDivide, Double, Double, Double)

	addArith(env, FnModulo, Int, Int, Int)
	addArith(env, FnModulo, Uint, Uint, Uint)

	mustAddFunction(env, FnNegate, NewOverload(overloadID("negate", Int), false, Int, Int))
	mustAddFunction(env, FnNegate, NewOverload(overloadID("negate", Double), false, Double, Double))

	mustAddFunction(env, FnLogicalNot, NewOverload("logical_not", false, Bool, Bool))
	mustAddFunction(env, FnLogicalAnd, NewOverload("logical_and", false, Bool, Bool, Bool))
	mustAddFunction(env, FnLogicalOr, NewOverload("logical_or", false, Bool, Bool, Bool))

	tparam := TypeParam("A")
	mustAddFunction(env, FnTernary, NewOverload("conditional", false, tparam, Bool, tparam, tparam))

	addEquality(env, options)
	addComparisons(env, options)

	mustAddFunction(env, FnIndex, NewOverload(overloadID("index", ListType(tparam), Int), false, tparam, ListType(tparam), Int))
	keyParam, valParam := TypeParam("K"), TypeParam("V")
	mustAddFunction(env, FnIndex, NewOverload(overloadID("index", MapType(keyParam, valParam), keyParam), false, valParam, MapType(keyParam, valParam), keyParam))

	sizeElem := TypeParam("A")
	mustAddFunction(env, FnSize, NewOverload(overloadID("size", String), false, Int, String))
	mustAddFunction(env, FnSize, NewOverload(overloadID("size", Bytes), false, Int, Bytes))
	mustAddFunction(env, FnSize, NewOverload(overloadID("size", ListType(sizeElem)), false, Int, ListType(sizeElem)))
	mustAddFunction(env, FnSize, NewOverload(overloadID("size", MapType(keyParam, valParam)), false, Int, MapType(keyParam, valParam)))
	mustAddFunction(env, FnSize, NewOverload("string_size", true, Int, String))

	mustAddFunction(env, FnMatches, NewOverload("matches_string", true, Bool, String, String))
	mustAddFunction(env, FnEndsWith, NewOverload("ends_with_string", true, Bool, String, String))
	mustAddFunction(env, FnStartsWith, NewOverload("starts_with_string", true, Bool, String, String))
	mustAddFunction(env, FnContains, NewOverload("contains_string", true, Bool, String, String))

	addConversions(env)

	return env
}

func addArith(env *Env, fn string, result, a, b *Type) {
	mustAddFunction(env, fn, NewOverload(overloadID(arithVerb(fn), a, b), false, result, a, b))
}

func arithVerb(fn string) string {
	switch fn {
	case FnAdd:
		return "add"
	case FnSubtract:
		return "subtract"
	case FnMultiply:
		return "multiply"
	case FnDivide:
		return "divide"
	case FnModulo:
		return "modulo"
	default:
		return fn
	}
}

func addEquality(env *Env, options Options) {
	a := TypeParam("A")
	mustAddFunction(env, FnEquals, NewOverload("equals", false, Bool, a, a))
	mustAddFunction(env, FnNotEquals, NewOverload("not_equals", false, Bool, a, a))
	if options.EnableHeterogeneousEquality {
		mustAddFunction(env, FnEquals, NewOverload("equals_heterogeneous", false, Bool, Dyn, Dyn))
		mustAddFunction(env, FnNotEquals, NewOverload("not_equals_heterogeneous", false, Bool, Dyn, Dyn))
	}
}

var numericKinds = []*Type{Int, Uint, Double}

func addComparisons(env *Env, options Options) {
	for _, fn := range []string{FnLess, FnLessEq, FnGreater, FnGreaterEq} {
		verb := comparisonVerb(fn)
		for _, t := range numericKinds {
			mustAddFunction(env, fn, NewOverload(overloadID(verb, t, t), false, Bool, t, t))
		}
		mustAddFunction(env, fn, NewOverload(overloadID(verb, String, String), false, Bool, String, String))
		mustAddFunction(env, fn, NewOverload(overloadID(verb, Bytes, Bytes), false, Bool, Bytes, Bytes))
		mustAddFunction(env, fn, NewOverload(overloadID(verb, Bool, Bool), false, Bool, Bool, Bool))
		mustAddFunction(env, fn, NewOverload(overloadID(verb, Timestamp, Timestamp), false, Bool, Timestamp, Timestamp))
		mustAddFunction(env, fn, NewOverload(overloadID(verb, Duration, Duration), false, Bool, Duration, Duration))
		if options.EnableCrossNumericComparisons {
			for _, x := range numericKinds {
				for _, y := range numericKinds {
					if x == y {
						continue
					}
					mustAddFunction(env, fn, NewOverload(overloadID(verb, x, y), false, Bool, x, y))
				}
			}
		}
	}
}

func comparisonVerb(fn string) string {
	switch fn {
	case FnLess:
		return "less"
	case FnLessEq:
		return "less_equals"
	case FnGreater:
		return "greater"
	case FnGreaterEq:
		return "greater_equals"
	default:
		return fn
	}
}

// convID follows cel-go's "<fromtype>_to_<totype>" conversion overload
// naming (e.g. "uint64_to_int64"), distinct from the binary-operator
// "<verb>_<arg1>_<arg2>" convention above.
func convID(from, to *Type) string {
	return overloadTypeTag(from) + "_to_" + overloadTypeTag(to)
}

func addConversion(env *Env, fn string, to, from *Type) {
	mustAddFunction(env, fn, NewOverload(convID(from, to), false, to, from))
}

func addConversions(env *Env) {
	addConversion(env, "int", Int, Int)
	addConversion(env, "int", Int, Uint)
	addConversion(env, "int", Int, Double)
	addConversion(env, "int", Int, String)
	addConversion(env, "int", Int, Timestamp)

	addConversion(env, "uint", Uint, Uint)
	addConversion(env, "uint", Uint, Int)
	addConversion(env, "uint", Uint, Double)
	addConversion(env, "uint", Uint, String)

	addConversion(env, "double", Double, Double)
	addConversion(env, "double", Double, Int)
	addConversion(env, "double", Double, Uint)
	addConversion(env, "double", Double, String)

	addConversion(env, "string", String, String)
	addConversion(env, "string", String, Int)
	addConversion(env, "string", String, Uint)
	addConversion(env, "string", String, Double)
	addConversion(env, "string", String, Bytes)
	addConversion(env, "string", String, Timestamp)
	addConversion(env, "string", String, Duration)

	addConversion(env, "bytes", Bytes, Bytes)
	addConversion(env, "bytes", Bytes, String)

	addConversion(env, "bool", Bool, Bool)
	addConversion(env, "bool", Bool, String)

	addConversion(env, "timestamp", Timestamp, String)
	addConversion(env, "timestamp", Timestamp, Int)

	addConversion(env, "duration", Duration, String)
	addConversion(env, "duration", Duration, Int)

	mustAddFunction(env, "dyn", NewOverload("to_dyn", false, Dyn, TypeParam("A")))

	typeParam := TypeParam("A")
	mustAddFunction(env, "type", NewOverload("type", false, MetaType(typeParam), typeParam))
}
