package commands

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/panyam/celcheck/cel"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
)

type envVarSpec struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type envFieldSpec struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type envTypeSpec struct {
	Name   string         `json:"name"`
	Fields []envFieldSpec `json:"fields"`
}

type envOptionsSpec struct {
	EnableCrossNumericComparisons bool `json:"enable_cross_numeric_comparisons"`
	EnableHeterogeneousEquality   bool `json:"enable_heterogeneous_equality"`
	EnableListConcat              bool `json:"enable_list_concat"`
	StrictContainerTypes          bool `json:"strict_container_types"`
	StrictMapKeys                 bool `json:"strict_map_keys"`
}

type envSpec struct {
	Variables []envVarSpec   `json:"variables"`
	Types     []envTypeSpec  `json:"types"`
	Options   envOptionsSpec `json:"options"`
}

func unmarshalEnvSpec(data []byte, spec *envSpec) error {
	return json.Unmarshal(data, spec)
}

// loadEnv reads an environment description (declared variables, struct
// schemas, and checker options) and builds a cel.Env from it, optionally
// seeded with the standard library.
func loadEnv(path string) (*cel.Env, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading environment file %s: %w", path, err)
	}
	var spec envSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("decoding environment file %s: %w", path, err)
	}

	mapProvider := cel.NewMapTypeProvider()
	for _, ts := range spec.Types {
		mapProvider.RegisterType(ts.Name, cel.StructType(ts.Name))
		for _, f := range ts.Fields {
			t, err := parseTypeSpec(f.Type)
			if err != nil {
				return nil, fmt.Errorf("field %s.%s: %w", ts.Name, f.Name, err)
			}
			mapProvider.RegisterField(ts.Name, cel.FieldInfo{Name: f.Name, Type: t})
		}
	}

	var provider cel.TypeProvider = mapProvider
	if descriptorSetFlag != "" {
		protoProvider, err := loadProtoTypeProvider(descriptorSetFlag, mapProvider)
		if err != nil {
			return nil, err
		}
		provider = protoProvider
	}

	options := cel.Options{
		EnableCrossNumericComparisons: spec.Options.EnableCrossNumericComparisons,
		EnableHeterogeneousEquality:   spec.Options.EnableHeterogeneousEquality,
		EnableListConcat:              spec.Options.EnableListConcat,
		StrictContainerTypes:          spec.Options.StrictContainerTypes,
		StrictMapKeys:                 spec.Options.StrictMapKeys,
	}
	if verboseFlag {
		options.Trace = func(format string, args ...any) { log.Printf(format, args...) }
	}

	var env *cel.Env
	if useStdlib {
		env = cel.NewStandardEnv(containerFlag, provider, options)
	} else {
		env = cel.NewEnv(containerFlag, provider, options)
	}

	for _, v := range spec.Variables {
		t, err := parseTypeSpec(v.Type)
		if err != nil {
			return nil, fmt.Errorf("variable %s: %w", v.Name, err)
		}
		if err := env.AddVariable(v.Name, t); err != nil {
			return nil, fmt.Errorf("variable %s: %w", v.Name, err)
		}
	}

	return env, nil
}

// loadProtoTypeProvider reads a binary-encoded FileDescriptorSet (as
// produced by `protoc --descriptor_set_out`) and builds a ProtoTypeProvider
// over every message it describes, falling back to the environment's
// locally declared struct types for anything the descriptor set doesn't
// cover.
func loadProtoTypeProvider(path string, fallback cel.TypeProvider) (*cel.ProtoTypeProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading descriptor set %s: %w", path, err)
	}
	var fdset descriptorpb.FileDescriptorSet
	if err := proto.Unmarshal(data, &fdset); err != nil {
		return nil, fmt.Errorf("decoding descriptor set %s: %w", path, err)
	}
	files, err := protodesc.NewFiles(&fdset)
	if err != nil {
		return nil, fmt.Errorf("building file descriptors from %s: %w", path, err)
	}
	var descriptors []protoreflect.FileDescriptor
	files.RangeFiles(func(fd protoreflect.FileDescriptor) bool {
		descriptors = append(descriptors, fd)
		return true
	})
	return cel.NewProtoTypeProvider(descriptors...).WithFallback(fallback), nil
}

// parseTypeSpec reads the small textual type grammar the environment
// JSON uses: primitive/well-known names verbatim, list(T), map(K, V),
// optional(T), and anything else as a struct type name resolved lazily
// by the environment's type provider.
func parseTypeSpec(spec string) (*cel.Type, error) {
	s := strings.TrimSpace(spec)
	switch s {
	case "dyn":
		return cel.Dyn, nil
	case "null_type":
		return cel.Null, nil
	case "bool":
		return cel.Bool, nil
	case "int":
		return cel.Int, nil
	case "uint":
		return cel.Uint, nil
	case "double":
		return cel.Double, nil
	case "string":
		return cel.String, nil
	case "bytes":
		return cel.Bytes, nil
	case "google.protobuf.Duration":
		return cel.Duration, nil
	case "google.protobuf.Timestamp":
		return cel.Timestamp, nil
	case "google.protobuf.Any":
		return cel.Any, nil
	}
	if inner, ok := unwrap(s, "list(", ")"); ok {
		elem, err := parseTypeSpec(inner)
		if err != nil {
			return nil, err
		}
		return cel.ListType(elem), nil
	}
	if inner, ok := unwrap(s, "optional(", ")"); ok {
		elem, err := parseTypeSpec(inner)
		if err != nil {
			return nil, err
		}
		return cel.OptionalType(elem), nil
	}
	if inner, ok := unwrap(s, "map(", ")"); ok {
		parts := splitTopLevel(inner, ',')
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed map type spec %q", s)
		}
		key, err := parseTypeSpec(parts[0])
		if err != nil {
			return nil, err
		}
		val, err := parseTypeSpec(parts[1])
		if err != nil {
			return nil, err
		}
		return cel.MapType(key, val), nil
	}
	return cel.StructType(s), nil
}

func unwrap(s, prefix, suffix string) (string, bool) {
	if strings.HasPrefix(s, prefix) && strings.HasSuffix(s, suffix) {
		return strings.TrimSpace(s[len(prefix) : len(s)-len(suffix)]), true
	}
	return "", false
}

func splitTopLevel(s string, sep rune) []string {
	var parts []string
	depth := 0
	last := 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[last:i]))
				last = i + 1
			}
		}
	}
	parts = append(parts, strings.TrimSpace(s[last:]))
	return parts
}
