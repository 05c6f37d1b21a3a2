package cel

import "github.com/panyam/celcheck/ast"

// Check is the facade named in spec §4.8: resolve, then (only if no
// Error-severity issue was recorded) rewrite. An internal error return
// is a broken invariant — never something a user's expression can
// trigger — distinct from the Issue list (spec §7).
func Check(root ast.Expr, sourceInfo *ast.SourceInfo, env *Env) (*ast.CheckedAst, []Issue, error) {
	resolver := NewResolver(env, sourceInfo)
	resolver.Run(root)
	issues := resolver.Issues()

	if issues.HasErrors() {
		return nil, issues.Issues(), nil
	}

	rw := newRewriter(resolver)
	err := rw.Run(root)
	checked := &ast.CheckedAst{
		Expr:         root,
		SourceInfo:   sourceInfo,
		ReferenceMap: rw.refMap,
		TypeMap:      rw.typeMap,
		IsChecked:    err == nil,
	}
	return checked, issues.Issues(), err
}
