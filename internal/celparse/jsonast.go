// Package celparse builds ast.Expr trees from a small JSON encoding of the
// CEL AST node shapes. It is not a CEL grammar parser — parsing source
// text into an AST is an externally-owned concern the checker core never
// touches — this exists only so the CLI and tests can construct trees
// without hand-assembling Go literals for every node.
package celparse

import (
	"encoding/json"
	"fmt"

	"github.com/panyam/celcheck/ast"
)

type jsonExpr struct {
	ID   *int64 `json:"id,omitempty"`
	Kind string `json:"kind"`
	Pos  *int32 `json:"pos,omitempty"`

	Name string `json:"name,omitempty"`

	Operand  *jsonExpr `json:"operand,omitempty"`
	Field    string    `json:"field,omitempty"`
	TestOnly bool      `json:"test_only,omitempty"`

	Target   *jsonExpr   `json:"target,omitempty"`
	Function string      `json:"function,omitempty"`
	Args     []*jsonExpr `json:"args,omitempty"`

	Elements []jsonListElem `json:"elements,omitempty"`
	Entries  []jsonMapEntry `json:"entries,omitempty"`

	TypeName string            `json:"type_name,omitempty"`
	Fields   []jsonStructField `json:"fields,omitempty"`

	IterRange     *jsonExpr `json:"iter_range,omitempty"`
	IterVar       string    `json:"iter_var,omitempty"`
	AccuVar       string    `json:"accu_var,omitempty"`
	AccuInit      *jsonExpr `json:"accu_init,omitempty"`
	LoopCondition *jsonExpr `json:"loop_condition,omitempty"`
	LoopStep      *jsonExpr `json:"loop_step,omitempty"`
	Result        *jsonExpr `json:"result,omitempty"`

	Value any `json:"value,omitempty"`
}

type jsonListElem struct {
	Value    *jsonExpr `json:"value"`
	Optional bool      `json:"optional,omitempty"`
}

type jsonMapEntry struct {
	Key      *jsonExpr `json:"key"`
	Value    *jsonExpr `json:"value"`
	Optional bool      `json:"optional,omitempty"`
}

type jsonStructField struct {
	Name     string    `json:"name"`
	Value    *jsonExpr `json:"value"`
	Optional bool      `json:"optional,omitempty"`
}

// Parse decodes one JSON-encoded expression tree, assigning ids from an
// internal IDGen to any node that omits one, and recording a SourceInfo
// from each node's optional "pos" field.
func Parse(data []byte, description string) (ast.Expr, *ast.SourceInfo, error) {
	var root jsonExpr
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, nil, fmt.Errorf("decode json ast: %w", err)
	}
	b := &builder{gen: &ast.IDGen{}, info: ast.NewSourceInfo(description, nil)}
	expr, err := b.build(&root)
	if err != nil {
		return nil, nil, err
	}
	return expr, b.info, nil
}

type builder struct {
	gen  *ast.IDGen
	info *ast.SourceInfo
}

func (b *builder) nextID(n *jsonExpr) int64 {
	if n.ID != nil {
		return *n.ID
	}
	return b.gen.Next()
}

func toFloat(v any) float64 {
	f, _ := v.(float64)
	return f
}

func (b *builder) build(n *jsonExpr) (ast.Expr, error) {
	if n == nil {
		return nil, fmt.Errorf("json ast: nil expression node")
	}
	id := b.nextID(n)
	if n.Pos != nil {
		b.info.SetOffset(id, *n.Pos)
	}

	switch n.Kind {
	case "const_null":
		return ast.NewConstant(id, ast.ConstantNull), nil
	case "const_bool":
		c := ast.NewConstant(id, ast.ConstantBool)
		c.BoolValue, _ = n.Value.(bool)
		return c, nil
	case "const_int":
		c := ast.NewConstant(id, ast.ConstantInt)
		c.IntValue = int64(toFloat(n.Value))
		return c, nil
	case "const_uint":
		c := ast.NewConstant(id, ast.ConstantUint)
		c.UintValue = uint64(toFloat(n.Value))
		return c, nil
	case "const_double":
		c := ast.NewConstant(id, ast.ConstantDouble)
		c.DoubleValue = toFloat(n.Value)
		return c, nil
	case "const_bytes":
		c := ast.NewConstant(id, ast.ConstantBytes)
		s, _ := n.Value.(string)
		c.BytesValue = []byte(s)
		return c, nil
	case "const_string":
		c := ast.NewConstant(id, ast.ConstantString)
		c.StringValue, _ = n.Value.(string)
		return c, nil
	case "const_duration":
		c := ast.NewConstant(id, ast.ConstantDuration)
		c.DurationValue = int64(toFloat(n.Value))
		return c, nil
	case "const_timestamp":
		c := ast.NewConstant(id, ast.ConstantTimestamp)
		c.TimestampValue = int64(toFloat(n.Value))
		return c, nil

	case "ident":
		return ast.NewIdent(id, n.Name), nil

	case "select":
		operand, err := b.build(n.Operand)
		if err != nil {
			return nil, err
		}
		return ast.NewSelect(id, operand, n.Field, n.TestOnly), nil

	case "call":
		var target ast.Expr
		if n.Target != nil {
			t, err := b.build(n.Target)
			if err != nil {
				return nil, err
			}
			target = t
		}
		args := make([]ast.Expr, len(n.Args))
		for i, a := range n.Args {
			arg, err := b.build(a)
			if err != nil {
				return nil, err
			}
			args[i] = arg
		}
		return ast.NewCall(id, n.Function, target, args), nil

	case "list":
		elems := make([]ast.ListElem, len(n.Elements))
		for i, e := range n.Elements {
			v, err := b.build(e.Value)
			if err != nil {
				return nil, err
			}
			elems[i] = ast.ListElem{Value: v, Optional: e.Optional}
		}
		return ast.NewList(id, elems), nil

	case "map":
		entries := make([]ast.MapEntry, len(n.Entries))
		for i, e := range n.Entries {
			k, err := b.build(e.Key)
			if err != nil {
				return nil, err
			}
			v, err := b.build(e.Value)
			if err != nil {
				return nil, err
			}
			entries[i] = ast.MapEntry{Key: k, Value: v, Optional: e.Optional}
		}
		return ast.NewMap(id, entries), nil

	case "struct":
		fields := make([]ast.StructField, len(n.Fields))
		for i, f := range n.Fields {
			v, err := b.build(f.Value)
			if err != nil {
				return nil, err
			}
			fields[i] = ast.StructField{Name: f.Name, Value: v, Optional: f.Optional}
		}
		return ast.NewStruct(id, n.TypeName, fields), nil

	case "comprehension":
		c := ast.NewComprehension(id)
		c.IterVar = n.IterVar
		c.AccuVar = n.AccuVar
		var err error
		if c.IterRange, err = b.build(n.IterRange); err != nil {
			return nil, err
		}
		if c.AccuInit, err = b.build(n.AccuInit); err != nil {
			return nil, err
		}
		if c.LoopCondition, err = b.build(n.LoopCondition); err != nil {
			return nil, err
		}
		if c.LoopStep, err = b.build(n.LoopStep); err != nil {
			return nil, err
		}
		if c.Result, err = b.build(n.Result); err != nil {
			return nil, err
		}
		return c, nil

	default:
		return nil, fmt.Errorf("json ast: unknown node kind %q", n.Kind)
	}
}
