package ast

import (
	"fmt"
	"strings"
)

// CodePrinter is a small indentation-aware string builder, used by the
// CLI to render a checked tree annotated with its resolved types.
type CodePrinter interface {
	Indent(n int)
	Unindent(n int)
	Print(str string)
	Printf(format string, args ...any)
	Println(str string)
	String() string
}

type codePrinter struct {
	indent  int
	col     int
	builder strings.Builder
}

func NewCodePrinter() CodePrinter { return &codePrinter{} }

func (c *codePrinter) Indent(n int)   { c.indent += n }
func (c *codePrinter) Unindent(n int) {
	c.indent -= n
	if c.indent < 0 {
		c.indent = 0
	}
}

func (c *codePrinter) Print(str string) {
	lines := strings.Split(str, "\n")
	for idx, l := range lines {
		if c.col == 0 && l != "" {
			c.builder.WriteString(c.indentString())
		}
		c.builder.WriteString(l)
		c.col += len(l)
		if idx < len(lines)-1 {
			c.builder.WriteRune('\n')
			c.col = 0
		}
	}
}

func (c *codePrinter) Println(str string) { c.Print(str + "\n") }
func (c *codePrinter) Printf(format string, args ...any) {
	c.Print(fmt.Sprintf(format, args...))
}
func (c *codePrinter) indentString() string { return strings.Repeat("  ", c.indent) }
func (c *codePrinter) String() string       { return c.builder.String() }

// PrintChecked renders a checked AST as one line per subexpression,
// indented by nesting depth, annotated with its resolved type and (for
// idents/calls) its canonical reference.
func PrintChecked(cp CodePrinter, checked *CheckedAst) {
	printExpr(cp, checked, checked.Expr)
}

func printExpr(cp CodePrinter, checked *CheckedAst, e Expr) {
	t, hasType := checked.TypeMap[e.ID()]
	ref, hasRef := checked.ReferenceMap[e.ID()]
	annotation := ""
	if hasType {
		annotation = " : " + t.String()
	}
	if hasRef {
		annotation += fmt.Sprintf(" [%s]", ref.Name)
	}
	cp.Printf("#%d %s%s\n", e.ID(), describe(e), annotation)
	WithIndent(1, cp, func(cp CodePrinter) {
		for _, child := range children(e) {
			printExpr(cp, checked, child)
		}
	})
}

func WithIndent(n int, cp CodePrinter, block func(cp CodePrinter)) {
	cp.Indent(n)
	defer cp.Unindent(n)
	block(cp)
}

func describe(e Expr) string {
	switch n := e.(type) {
	case *Constant:
		return n.String()
	case *Ident:
		return "ident(" + n.Name + ")"
	case *Select:
		if n.TestOnly {
			return "has(." + n.Field + ")"
		}
		return "select(." + n.Field + ")"
	case *Call:
		return "call(" + n.Function + ")"
	case *List:
		return "list"
	case *Map:
		return "map"
	case *Struct:
		return "struct(" + n.TypeName + ")"
	case *Comprehension:
		return "comprehension(" + n.IterVar + "," + n.AccuVar + ")"
	}
	return fmt.Sprintf("%T", e)
}

func children(e Expr) []Expr {
	switch n := e.(type) {
	case *Select:
		return []Expr{n.Operand}
	case *Call:
		out := []Expr{}
		if n.Target != nil {
			out = append(out, n.Target)
		}
		return append(out, n.Args...)
	case *List:
		out := make([]Expr, len(n.Elements))
		for i, el := range n.Elements {
			out[i] = el.Value
		}
		return out
	case *Map:
		out := make([]Expr, 0, len(n.Entries)*2)
		for _, en := range n.Entries {
			out = append(out, en.Key, en.Value)
		}
		return out
	case *Struct:
		out := make([]Expr, len(n.Fields))
		for i, f := range n.Fields {
			out[i] = f.Value
		}
		return out
	case *Comprehension:
		return []Expr{n.IterRange, n.AccuInit, n.LoopCondition, n.LoopStep, n.Result}
	}
	return nil
}
