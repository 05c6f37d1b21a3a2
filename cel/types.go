package cel

import (
	"fmt"
	"strings"

	gfn "github.com/panyam/goutils/fn"
)

// Kind tags the variant a Type holds. Types are by-value comparable by
// structure (see Equals); a Kind alone never identifies a Type, since
// List/Map/Struct/Opaque/TypeParam/Type all carry structural Info.
type Kind int

const (
	KindDyn Kind = iota
	KindError
	KindNull
	KindBool
	KindInt
	KindUint
	KindDouble
	KindString
	KindBytes
	KindDuration
	KindTimestamp
	KindAny
	KindBoolWrapper
	KindIntWrapper
	KindUintWrapper
	KindDoubleWrapper
	KindStringWrapper
	KindBytesWrapper
	KindList
	KindMap
	KindStruct
	KindOpaque
	KindTypeParam
	KindType // the meta-type of a type value, e.g. type(int)
)

// OptionalTypeName is the distinguished Opaque name the checker
// special-cases for selection and map-value unwrapping (spec §4.1).
const OptionalTypeName = "optional_type"

// Type is a tagged variant over CEL's type universe. Info holds kind-
// specific structure: nil for primitives/singletons, *Type for List,
// *mapInfo for Map, string for Struct/TypeParam names, *opaqueInfo for
// Opaque (including Optional), *Type (possibly nil) for the meta-type
// Kind.
type Type struct {
	Kind Kind
	Info any
}

type mapInfo struct {
	Key, Value *Type
}

type opaqueInfo struct {
	Name   string
	Params []*Type
}

// --- Singletons ---

var (
	Dyn       = &Type{Kind: KindDyn}
	ErrorType = &Type{Kind: KindError}
	Null      = &Type{Kind: KindNull}
	Bool      = &Type{Kind: KindBool}
	Int       = &Type{Kind: KindInt}
	Uint      = &Type{Kind: KindUint}
	Double    = &Type{Kind: KindDouble}
	String    = &Type{Kind: KindString}
	Bytes     = &Type{Kind: KindBytes}
	Duration  = &Type{Kind: KindDuration}
	Timestamp = &Type{Kind: KindTimestamp}
	Any       = &Type{Kind: KindAny}

	BoolWrapper   = &Type{Kind: KindBoolWrapper}
	IntWrapper    = &Type{Kind: KindIntWrapper}
	UintWrapper   = &Type{Kind: KindUintWrapper}
	DoubleWrapper = &Type{Kind: KindDoubleWrapper}
	StringWrapper = &Type{Kind: KindStringWrapper}
	BytesWrapper  = &Type{Kind: KindBytesWrapper}
)

// --- Factories ---

func ListType(elem *Type) *Type {
	if elem == nil {
		panic("list element type cannot be nil")
	}
	return &Type{Kind: KindList, Info: elem}
}

func MapType(key, value *Type) *Type {
	if key == nil || value == nil {
		panic("map key/value type cannot be nil")
	}
	return &Type{Kind: KindMap, Info: &mapInfo{Key: key, Value: value}}
}

func StructType(name string) *Type {
	return &Type{Kind: KindStruct, Info: name}
}

func OpaqueType(name string, params ...*Type) *Type {
	return &Type{Kind: KindOpaque, Info: &opaqueInfo{Name: name, Params: params}}
}

func OptionalType(inner *Type) *Type {
	return OpaqueType(OptionalTypeName, inner)
}

func TypeParam(name string) *Type {
	return &Type{Kind: KindTypeParam, Info: name}
}

// MetaType is CEL's `type(T)`; param may be nil to represent the generic
// "type" value with no known parameter.
func MetaType(param *Type) *Type {
	return &Type{Kind: KindType, Info: param}
}

// --- Accessors ---

func (t *Type) ElemType() *Type {
	if t.Kind != KindList {
		panic("ElemType called on non-list type")
	}
	return t.Info.(*Type)
}

func (t *Type) KeyType() *Type {
	if t.Kind != KindMap {
		panic("KeyType called on non-map type")
	}
	return t.Info.(*mapInfo).Key
}

func (t *Type) ValueType() *Type {
	if t.Kind != KindMap {
		panic("ValueType called on non-map type")
	}
	return t.Info.(*mapInfo).Value
}

func (t *Type) StructName() string {
	if t.Kind != KindStruct {
		panic("StructName called on non-struct type")
	}
	return t.Info.(string)
}

func (t *Type) OpaqueName() string {
	if t.Kind != KindOpaque {
		panic("OpaqueName called on non-opaque type")
	}
	return t.Info.(*opaqueInfo).Name
}

func (t *Type) OpaqueParams() []*Type {
	if t.Kind != KindOpaque {
		panic("OpaqueParams called on non-opaque type")
	}
	return t.Info.(*opaqueInfo).Params
}

func (t *Type) IsOptional() bool {
	return t.Kind == KindOpaque && t.OpaqueName() == OptionalTypeName
}

func (t *Type) TypeParamName() string {
	if t.Kind != KindTypeParam {
		panic("TypeParamName called on non-type-param type")
	}
	return t.Info.(string)
}

// MetaParam returns the parameter of a KindType meta-type, or nil if it
// names the unparameterized "type" value.
func (t *Type) MetaParam() *Type {
	if t.Kind != KindType {
		panic("MetaParam called on non-type-of type")
	}
	if t.Info == nil {
		return nil
	}
	return t.Info.(*Type)
}

// --- Wrapper <-> primitive correspondence ---

var wrapperOfPrimitive = map[Kind]Kind{
	KindBool:   KindBoolWrapper,
	KindInt:    KindIntWrapper,
	KindUint:   KindUintWrapper,
	KindDouble: KindDoubleWrapper,
	KindString: KindStringWrapper,
	KindBytes:  KindBytesWrapper,
}

var primitiveOfWrapper = map[Kind]Kind{
	KindBoolWrapper:   KindBool,
	KindIntWrapper:    KindInt,
	KindUintWrapper:   KindUint,
	KindDoubleWrapper: KindDouble,
	KindStringWrapper: KindString,
	KindBytesWrapper:  KindBytes,
}

func (t *Type) IsWrapper() bool {
	_, ok := primitiveOfWrapper[t.Kind]
	return ok
}

// --- String ---

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case KindDyn:
		return "dyn"
	case KindError:
		return "error"
	case KindNull:
		return "null_type"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindDuration:
		return "google.protobuf.Duration"
	case KindTimestamp:
		return "google.protobuf.Timestamp"
	case KindAny:
		return "google.protobuf.Any"
	case KindBoolWrapper, KindIntWrapper, KindUintWrapper, KindDoubleWrapper, KindStringWrapper, KindBytesWrapper:
		return "wrapper(" + primitiveName(primitiveOfWrapper[t.Kind]) + ")"
	case KindList:
		return fmt.Sprintf("list(%s)", t.ElemType())
	case KindMap:
		return fmt.Sprintf("map(%s, %s)", t.KeyType(), t.ValueType())
	case KindStruct:
		return t.StructName()
	case KindOpaque:
		params := t.OpaqueParams()
		if len(params) == 0 {
			return t.OpaqueName()
		}
		strs := gfn.Map(params, func(p *Type) string { return p.String() })
		return fmt.Sprintf("%s(%s)", t.OpaqueName(), strings.Join(strs, ", "))
	case KindTypeParam:
		return t.TypeParamName()
	case KindType:
		if p := t.MetaParam(); p != nil {
			return fmt.Sprintf("type(%s)", p)
		}
		return "type"
	}
	return "<unknown-type>"
}

func primitiveName(k Kind) string {
	t := &Type{Kind: k}
	return t.String()
}

// --- Equals ---

// Equals is structural equality. Dyn is not equal to any other kind by
// this relation — assignability, not equality, is where Dyn's universal
// compatibility lives (spec §4.1, §8 invariant 5).
func (t *Type) Equals(other *Type) bool {
	if t == other {
		return true
	}
	if t == nil || other == nil {
		return false
	}
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case KindList:
		return t.ElemType().Equals(other.ElemType())
	case KindMap:
		return t.KeyType().Equals(other.KeyType()) && t.ValueType().Equals(other.ValueType())
	case KindStruct:
		return t.StructName() == other.StructName()
	case KindOpaque:
		if t.OpaqueName() != other.OpaqueName() {
			return false
		}
		a, b := t.OpaqueParams(), other.OpaqueParams()
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if !a[i].Equals(b[i]) {
				return false
			}
		}
		return true
	case KindTypeParam:
		return t.TypeParamName() == other.TypeParamName()
	case KindType:
		p1, p2 := t.MetaParam(), other.MetaParam()
		if p1 == nil || p2 == nil {
			return p1 == p2
		}
		return p1.Equals(p2)
	default:
		// All other kinds are parameterless singletons; Kind equality suffices.
		return true
	}
}

// FreeTypeParams collects the names of every TypeParam appearing in t,
// in first-encountered order, deduplicated. Used to compute an
// Overload's TypeParams list and to drive fresh instantiation.
func FreeTypeParams(t *Type) []string {
	seen := map[string]bool{}
	var order []string
	var walk func(*Type)
	walk = func(t *Type) {
		if t == nil {
			return
		}
		switch t.Kind {
		case KindTypeParam:
			if !seen[t.TypeParamName()] {
				seen[t.TypeParamName()] = true
				order = append(order, t.TypeParamName())
			}
		case KindList:
			walk(t.ElemType())
		case KindMap:
			walk(t.KeyType())
			walk(t.ValueType())
		case KindOpaque:
			for _, p := range t.OpaqueParams() {
				walk(p)
			}
		case KindType:
			walk(t.MetaParam())
		}
	}
	walk(t)
	return order
}
