// Package ast defines the shape of the untyped CEL abstract syntax tree
// that the checker consumes. Nothing here executes or parses source; the
// parser is an external collaborator (see spec's Non-goals).
package ast

import (
	"fmt"
	"strings"
)

// Expr is any expression node in the tree. Every node carries a stable
// 64-bit id used to key the resolver's per-expression side tables; prefer
// id-keyed maps over pointer-keyed ones so a rewritten (but not
// reallocated) node keeps its annotations.
type Expr interface {
	ID() int64
	String() string
	exprNode()
}

// base is embedded by every concrete Expr to supply the id.
type base struct {
	id int64
}

func (b *base) ID() int64  { return b.id }
func (b *base) exprNode()  {}

// NewID assigns ids; callers building ASTs by hand (tests, the JSON AST
// loader) call this once per node, the same way a real parser would.
type IDGen struct{ next int64 }

func (g *IDGen) Next() int64 {
	g.next++
	return g.next
}

// ConstantKind tags the literal kind of a Constant node.
type ConstantKind int

const (
	ConstantNull ConstantKind = iota
	ConstantBool
	ConstantInt
	ConstantUint
	ConstantDouble
	ConstantBytes
	ConstantString
	ConstantDuration
	ConstantTimestamp
)

// Constant is a literal value. Only one of the typed fields is
// meaningful, selected by Kind.
type Constant struct {
	base
	Kind           ConstantKind
	BoolValue      bool
	IntValue       int64
	UintValue      uint64
	DoubleValue    float64
	BytesValue     []byte
	StringValue    string
	DurationValue  int64 // nanoseconds
	TimestampValue int64 // unix seconds
}

func NewConstant(id int64, kind ConstantKind) *Constant { return &Constant{base: base{id}, Kind: kind} }

func (c *Constant) String() string {
	switch c.Kind {
	case ConstantNull:
		return "null"
	case ConstantBool:
		return fmt.Sprintf("%v", c.BoolValue)
	case ConstantInt:
		return fmt.Sprintf("%d", c.IntValue)
	case ConstantUint:
		return fmt.Sprintf("%du", c.UintValue)
	case ConstantDouble:
		return fmt.Sprintf("%g", c.DoubleValue)
	case ConstantBytes:
		return fmt.Sprintf("b%q", string(c.BytesValue))
	case ConstantString:
		return fmt.Sprintf("%q", c.StringValue)
	case ConstantDuration:
		return fmt.Sprintf("duration(%dns)", c.DurationValue)
	case ConstantTimestamp:
		return fmt.Sprintf("timestamp(%d)", c.TimestampValue)
	}
	return "<constant>"
}

// Ident is a bare, possibly-dotted-at-parse-time identifier reference.
// The parser never produces dotted Idents; a dotted path arrives as a
// chain of Select nodes rooted at a single-segment Ident (see spec §4.6).
type Ident struct {
	base
	Name string
}

func NewIdent(id int64, name string) *Ident { return &Ident{base: base{id}, Name: name} }
func (i *Ident) String() string             { return i.Name }

// Select is `operand.field`, or `has(operand.field)` when TestOnly is set.
type Select struct {
	base
	Operand  Expr
	Field    string
	TestOnly bool
}

func NewSelect(id int64, operand Expr, field string, testOnly bool) *Select {
	return &Select{base: base{id}, Operand: operand, Field: field, TestOnly: testOnly}
}

func (s *Select) String() string {
	if s.TestOnly {
		return fmt.Sprintf("has(%s.%s)", s.Operand, s.Field)
	}
	return fmt.Sprintf("%s.%s", s.Operand, s.Field)
}

// Call is `function(args...)` or, with Target set, `target.function(args...)`.
type Call struct {
	base
	Function string
	Target   Expr // nil for a non-receiver call
	Args     []Expr
}

func NewCall(id int64, function string, target Expr, args []Expr) *Call {
	return &Call{base: base{id}, Function: function, Target: target, Args: args}
}

func (c *Call) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	if c.Target != nil {
		return fmt.Sprintf("%s.%s(%s)", c.Target, c.Function, strings.Join(parts, ", "))
	}
	return fmt.Sprintf("%s(%s)", c.Function, strings.Join(parts, ", "))
}

// ListElem is one element of a List node; Optional marks CEL's `?e` splat form.
type ListElem struct {
	Value    Expr
	Optional bool
}

type List struct {
	base
	Elements []ListElem
}

func NewList(id int64, elements []ListElem) *List { return &List{base: base{id}, Elements: elements} }

func (l *List) String() string {
	parts := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		if e.Optional {
			parts[i] = "?" + e.Value.String()
		} else {
			parts[i] = e.Value.String()
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// MapEntry is one `key: value` (or `?key: value`) pair of a Map node.
type MapEntry struct {
	Key      Expr
	Value    Expr
	Optional bool
}

type Map struct {
	base
	Entries []MapEntry
}

func NewMap(id int64, entries []MapEntry) *Map { return &Map{base: base{id}, Entries: entries} }

func (m *Map) String() string {
	parts := make([]string, len(m.Entries))
	for i, e := range m.Entries {
		parts[i] = fmt.Sprintf("%s: %s", e.Key, e.Value)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// StructField is one `name: value` (or `?name: value`) field of a Struct node.
type StructField struct {
	Name     string
	Value    Expr
	Optional bool
}

// Struct is `TypeName{field: value, ...}`.
type Struct struct {
	base
	TypeName string
	Fields   []StructField
}

func NewStruct(id int64, typeName string, fields []StructField) *Struct {
	return &Struct{base: base{id}, TypeName: typeName, Fields: fields}
}

func (s *Struct) String() string {
	parts := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Name, f.Value)
	}
	return fmt.Sprintf("%s{%s}", s.TypeName, strings.Join(parts, ", "))
}

// Comprehension is CEL's bounded fold: a macro-expanded `for`-like form
// over iter_range with an accumulator. See spec §4.6 Comprehension.
type Comprehension struct {
	base
	IterRange     Expr
	IterVar       string
	AccuVar       string
	AccuInit      Expr
	LoopCondition Expr
	LoopStep      Expr
	Result        Expr
}

func NewComprehension(id int64) *Comprehension { return &Comprehension{base: base{id}} }

func (c *Comprehension) String() string {
	return fmt.Sprintf("__comprehension__(%s, %s, %s, %s, %s, %s, %s)",
		c.IterVar, c.IterRange, c.AccuVar, c.AccuInit, c.LoopCondition, c.LoopStep, c.Result)
}
