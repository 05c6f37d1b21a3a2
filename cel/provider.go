package cel

import (
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/known/anypb"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// FieldInfo describes one field of a resolved struct type.
type FieldInfo struct {
	Name string
	Type *Type
}

// TypeProvider is the external collaborator that resolves type names
// (struct/enum/opaque names, well-known message types) and struct field
// schemas (spec §6). The checker core never constructs one; it is always
// supplied by the caller's Environment.
type TypeProvider interface {
	LookupType(name string) (*Type, bool)
	LookupStructField(structName, fieldName string) (FieldInfo, bool)
}

// MapTypeProvider is a minimal in-memory TypeProvider for tests and for
// environments that declare their own struct schemas without a protobuf
// descriptor set, following the teacher's preference for a plain
// map-backed registry (decl/ast.go's FileDecl.Components map) over a
// heavier abstraction when one will do.
type MapTypeProvider struct {
	types  map[string]*Type
	fields map[string]map[string]FieldInfo
}

func NewMapTypeProvider() *MapTypeProvider {
	return &MapTypeProvider{
		types:  map[string]*Type{},
		fields: map[string]map[string]FieldInfo{},
	}
}

func (p *MapTypeProvider) RegisterType(name string, t *Type) {
	p.types[name] = t
}

func (p *MapTypeProvider) RegisterField(structName string, field FieldInfo) {
	if p.fields[structName] == nil {
		p.fields[structName] = map[string]FieldInfo{}
	}
	p.fields[structName][field.Name] = field
}

func (p *MapTypeProvider) LookupType(name string) (*Type, bool) {
	t, ok := p.types[name]
	return t, ok
}

func (p *MapTypeProvider) LookupStructField(structName, fieldName string) (FieldInfo, bool) {
	fields, ok := p.fields[structName]
	if !ok {
		return FieldInfo{}, false
	}
	f, ok := fields[fieldName]
	return f, ok
}

// ProtoTypeProvider resolves struct names and fields against a set of
// real protobuf message descriptors (spec's "optional protocol-buffer
// message schemas", §1, §6), and recognizes the well-known wrapper,
// duration, timestamp, and Any messages by their fully-qualified names
// so the rest of the checker never has to special-case proto packages.
type ProtoTypeProvider struct {
	descriptors map[string]protoreflect.MessageDescriptor
	fallback    TypeProvider
}

func NewProtoTypeProvider(files ...protoreflect.FileDescriptor) *ProtoTypeProvider {
	p := &ProtoTypeProvider{descriptors: map[string]protoreflect.MessageDescriptor{}}
	for _, fd := range files {
		registerMessages(p.descriptors, fd.Messages())
	}
	return p
}

// WithFallback chains a secondary provider (e.g. a MapTypeProvider for
// environment-local struct decls) consulted when a name is not a known
// proto message.
func (p *ProtoTypeProvider) WithFallback(fallback TypeProvider) *ProtoTypeProvider {
	p.fallback = fallback
	return p
}

func registerMessages(out map[string]protoreflect.MessageDescriptor, msgs protoreflect.MessageDescriptors) {
	for i := 0; i < msgs.Len(); i++ {
		md := msgs.Get(i)
		out[string(md.FullName())] = md
		registerMessages(out, md.Messages())
	}
}

// wellKnownWrappers maps a wrapper message's descriptor full name to the
// Kind it carries, derived from the actual wrapperspb types rather than
// hardcoded strings so a vendored well-known-types package mismatch would
// surface as a lookup miss instead of silently diverging.
var wellKnownWrappers = map[protoreflect.FullName]Kind{
	(&wrapperspb.BoolValue{}).ProtoReflect().Descriptor().FullName():   KindBoolWrapper,
	(&wrapperspb.Int32Value{}).ProtoReflect().Descriptor().FullName():  KindIntWrapper,
	(&wrapperspb.Int64Value{}).ProtoReflect().Descriptor().FullName():  KindIntWrapper,
	(&wrapperspb.UInt32Value{}).ProtoReflect().Descriptor().FullName(): KindUintWrapper,
	(&wrapperspb.UInt64Value{}).ProtoReflect().Descriptor().FullName(): KindUintWrapper,
	(&wrapperspb.FloatValue{}).ProtoReflect().Descriptor().FullName():  KindDoubleWrapper,
	(&wrapperspb.DoubleValue{}).ProtoReflect().Descriptor().FullName(): KindDoubleWrapper,
	(&wrapperspb.StringValue{}).ProtoReflect().Descriptor().FullName(): KindStringWrapper,
	(&wrapperspb.BytesValue{}).ProtoReflect().Descriptor().FullName():  KindBytesWrapper,
}

var (
	durationFullName  = (&durationpb.Duration{}).ProtoReflect().Descriptor().FullName()
	timestampFullName = (&timestamppb.Timestamp{}).ProtoReflect().Descriptor().FullName()
	anyFullName       = (&anypb.Any{}).ProtoReflect().Descriptor().FullName()
	structFullName    = (&structpb.Struct{}).ProtoReflect().Descriptor().FullName()
	valueFullName     = (&structpb.Value{}).ProtoReflect().Descriptor().FullName()
	listValueFullName = (&structpb.ListValue{}).ProtoReflect().Descriptor().FullName()
	nullValueFullName = structpb.NullValue(0).Descriptor().FullName()
)

func (p *ProtoTypeProvider) LookupType(name string) (*Type, bool) {
	fullName := protoreflect.FullName(name)
	if k, ok := wellKnownWrappers[fullName]; ok {
		return &Type{Kind: k}, true
	}
	switch fullName {
	case durationFullName:
		return Duration, true
	case timestampFullName:
		return Timestamp, true
	case anyFullName:
		return Any, true
	case valueFullName, structFullName, listValueFullName:
		return Dyn, true
	case nullValueFullName:
		return Int, true // enum value's underlying representation, per spec §8 scenario 5
	}
	if _, ok := p.descriptors[name]; ok {
		return StructType(name), true
	}
	if p.fallback != nil {
		return p.fallback.LookupType(name)
	}
	return nil, false
}

func (p *ProtoTypeProvider) LookupStructField(structName, fieldName string) (FieldInfo, bool) {
	md, ok := p.descriptors[structName]
	if !ok {
		if p.fallback != nil {
			return p.fallback.LookupStructField(structName, fieldName)
		}
		return FieldInfo{}, false
	}
	fd := md.Fields().ByName(protoreflect.Name(fieldName))
	if fd == nil {
		return FieldInfo{}, false
	}
	return FieldInfo{Name: fieldName, Type: protoFieldType(fd)}, true
}

func protoFieldType(fd protoreflect.FieldDescriptor) *Type {
	var base *Type
	switch fd.Kind() {
	case protoreflect.BoolKind:
		base = Bool
	case protoreflect.Int32Kind, protoreflect.Int64Kind, protoreflect.Sint32Kind, protoreflect.Sint64Kind,
		protoreflect.Sfixed32Kind, protoreflect.Sfixed64Kind:
		base = Int
	case protoreflect.Uint32Kind, protoreflect.Uint64Kind, protoreflect.Fixed32Kind, protoreflect.Fixed64Kind:
		base = Uint
	case protoreflect.FloatKind, protoreflect.DoubleKind:
		base = Double
	case protoreflect.StringKind:
		base = String
	case protoreflect.BytesKind:
		base = Bytes
	case protoreflect.EnumKind:
		base = Int
	case protoreflect.MessageKind, protoreflect.GroupKind:
		base = StructType(string(fd.Message().FullName()))
	default:
		base = Dyn
	}
	if fd.IsMap() {
		keyFd := fd.MapKey()
		valFd := fd.MapValue()
		return MapType(protoFieldType(keyFd), protoFieldType(valFd))
	}
	if fd.IsList() {
		return ListType(base)
	}
	return base
}
