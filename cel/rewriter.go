package cel

import (
	"fmt"

	"github.com/panyam/celcheck/ast"
)

// flattenType converts a checker-internal Type into the AST's own
// flattened representation (spec §4.7). Free type parameters that
// survived to this point are unresolved and are lowered to Dyn. An
// unrecognized Kind is an internal error: it indicates a Type variant
// was added without updating the flattening switch, exactly the class
// of broken invariant spec §7 calls out.
func flattenType(t *Type) (ast.AstType, error) {
	if t == nil {
		return ast.AstType{Kind: ast.AstDyn}, nil
	}
	switch t.Kind {
	case KindDyn:
		return ast.AstType{Kind: ast.AstDyn}, nil
	case KindError:
		return ast.AstType{Kind: ast.AstError}, nil
	case KindNull:
		return ast.AstType{Kind: ast.AstNull}, nil
	case KindBool, KindInt, KindUint, KindDouble, KindString, KindBytes:
		return ast.AstType{Kind: ast.AstPrimitive, PrimitiveName: t.String()}, nil
	case KindBoolWrapper, KindIntWrapper, KindUintWrapper, KindDoubleWrapper, KindStringWrapper, KindBytesWrapper:
		return ast.AstType{Kind: ast.AstWrapper, PrimitiveName: primitiveName(primitiveOfWrapper[t.Kind])}, nil
	case KindDuration:
		return ast.AstType{Kind: ast.AstMessage, MessageName: "google.protobuf.Duration"}, nil
	case KindTimestamp:
		return ast.AstType{Kind: ast.AstMessage, MessageName: "google.protobuf.Timestamp"}, nil
	case KindAny:
		return ast.AstType{Kind: ast.AstMessage, MessageName: "google.protobuf.Any"}, nil
	case KindList:
		elem, err := flattenType(t.ElemType())
		if err != nil {
			return ast.AstType{}, err
		}
		return ast.AstType{Kind: ast.AstList, Params: []ast.AstType{elem}}, nil
	case KindMap:
		key, err := flattenType(t.KeyType())
		if err != nil {
			return ast.AstType{}, err
		}
		val, err := flattenType(t.ValueType())
		if err != nil {
			return ast.AstType{}, err
		}
		return ast.AstType{Kind: ast.AstMap, Params: []ast.AstType{key, val}}, nil
	case KindStruct:
		return ast.AstType{Kind: ast.AstMessage, MessageName: t.StructName()}, nil
	case KindOpaque:
		params := t.OpaqueParams()
		out := make([]ast.AstType, len(params))
		for i, p := range params {
			f, err := flattenType(p)
			if err != nil {
				return ast.AstType{}, err
			}
			out[i] = f
		}
		return ast.AstType{Kind: ast.AstAbstract, MessageName: t.OpaqueName(), Params: out}, nil
	case KindTypeParam:
		return ast.AstType{Kind: ast.AstDyn}, nil
	case KindType:
		p := t.MetaParam()
		if p == nil {
			return ast.AstType{Kind: ast.AstKindType}, nil
		}
		f, err := flattenType(p)
		if err != nil {
			return ast.AstType{}, err
		}
		return ast.AstType{Kind: ast.AstKindType, Params: []ast.AstType{f}}, nil
	default:
		return ast.AstType{}, fmt.Errorf("internal error: unknown type kind at flattening: %v", t.Kind)
	}
}

// rewriter is the second post-order walk (spec §4.7). It never revisits
// a deferred name-segment node, applies the one structural rewrite
// (dropping a namespace-rewritten call's target), and flattens every
// resolver-recorded type into the output type map.
type rewriter struct {
	r       *Resolver
	typeMap map[int64]ast.AstType
	refMap  map[int64]ast.Reference
}

func newRewriter(r *Resolver) *rewriter {
	return &rewriter{r: r, typeMap: map[int64]ast.AstType{}, refMap: map[int64]ast.Reference{}}
}

func (w *rewriter) Run(e ast.Expr) error {
	switch v := e.(type) {
	case *ast.Select:
		if err := w.Run(v.Operand); err != nil {
			return err
		}
	case *ast.Call:
		if v.Target != nil {
			if err := w.Run(v.Target); err != nil {
				return err
			}
		}
		for _, a := range v.Args {
			if err := w.Run(a); err != nil {
				return err
			}
		}
	case *ast.List:
		for _, el := range v.Elements {
			if err := w.Run(el.Value); err != nil {
				return err
			}
		}
	case *ast.Map:
		for _, en := range v.Entries {
			if err := w.Run(en.Key); err != nil {
				return err
			}
			if err := w.Run(en.Value); err != nil {
				return err
			}
		}
	case *ast.Struct:
		for _, f := range v.Fields {
			if err := w.Run(f.Value); err != nil {
				return err
			}
		}
	case *ast.Comprehension:
		for _, sub := range []ast.Expr{v.IterRange, v.AccuInit, v.LoopCondition, v.LoopStep, v.Result} {
			if err := w.Run(sub); err != nil {
				return err
			}
		}
	}
	return w.visit(e)
}

func (w *rewriter) visit(e ast.Expr) error {
	id := e.ID()
	if w.r.deferred[id] {
		return nil
	}
	if ref, ok := w.r.refs[id]; ok {
		switch n := e.(type) {
		case *ast.Ident:
			n.Name = ref.Name
		case *ast.Call:
			n.Function = ref.Name
		case *ast.Struct:
			n.TypeName = ref.Name
		}
		w.refMap[id] = ast.Reference{Name: ref.Name, OverloadIDs: ref.OverloadIDs}
		if ref.NamespaceRewrite {
			if call, isCall := e.(*ast.Call); isCall {
				call.Target = nil
			}
		}
	}
	t, hasType := w.r.types[id]
	if !hasType {
		return nil
	}
	flat, err := flattenType(t)
	if err != nil {
		return err
	}
	w.typeMap[id] = flat
	return nil
}
