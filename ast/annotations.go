package ast

import "fmt"

// AstTypeKind mirrors cel.Kind but lives in the ast package so the
// rewritten tree has no dependency back on the checker's internal
// inference machinery (spec §4.7: "flatten the finalized type into the
// AST's own type representation").
type AstTypeKind int

const (
	AstDyn AstTypeKind = iota
	AstError
	AstNull
	AstPrimitive
	AstWrapper
	AstList
	AstMap
	AstMessage
	AstAbstract
	AstKindType
)

// AstType is the flattened, wire-shaped type annotation attached to every
// checked expression id.
type AstType struct {
	Kind          AstTypeKind
	PrimitiveName string   // "bool","int","uint","double","string","bytes" for AstPrimitive/AstWrapper
	MessageName   string   // fully-qualified struct/message name for AstMessage, or abstract type name for AstAbstract
	Params        []AstType // List: [elem]; Map: [key,value]; Abstract: type params; Type: [param] or empty
}

func (t AstType) String() string {
	switch t.Kind {
	case AstDyn:
		return "dyn"
	case AstError:
		return "error"
	case AstNull:
		return "null_type"
	case AstPrimitive:
		return t.PrimitiveName
	case AstWrapper:
		return "wrapper(" + t.PrimitiveName + ")"
	case AstList:
		return fmt.Sprintf("list(%s)", t.Params[0])
	case AstMap:
		return fmt.Sprintf("map(%s, %s)", t.Params[0], t.Params[1])
	case AstMessage:
		return t.MessageName
	case AstAbstract:
		return fmt.Sprintf("%s<%v>", t.MessageName, t.Params)
	case AstKindType:
		if len(t.Params) == 0 {
			return "type"
		}
		return fmt.Sprintf("type(%s)", t.Params[0])
	}
	return "<unknown-type>"
}

// Reference is what the rewriter records for an identifier or function
// reference node: its canonical, fully-qualified name, and — for
// function calls — the ordered list of overload ids that survived
// resolution.
type Reference struct {
	Name       string
	OverloadIDs []string
}

// CheckedAst is the decorated output of a successful Check call: the
// original tree (possibly with the one structural rewrite of spec §1
// applied in place) plus the two annotation side tables keyed by expr id.
type CheckedAst struct {
	Expr        Expr
	SourceInfo  *SourceInfo
	ReferenceMap map[int64]Reference
	TypeMap      map[int64]AstType
	IsChecked    bool
}
