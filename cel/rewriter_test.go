package cel

import (
	"testing"

	"github.com/panyam/celcheck/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A free call resolved against a container-qualified candidate must have
// its Call.Function rewritten to the canonical, container-qualified name
// in the checked AST itself, not just recorded in ReferenceMap.
func TestRewriterCanonicalizesCallFunction(t *testing.T) {
	env := NewEnv("pkg", NewMapTypeProvider(), Options{})
	require.NoError(t, env.AddFunction("pkg.greet", NewOverload("pkg_greet_string", false, String, String)))

	gen := &ast.IDGen{}
	arg := strConst(gen, "world")
	call := ast.NewCall(gen.Next(), "greet", nil, []ast.Expr{arg})

	checked, issues, err := Check(call, newTestSourceInfo(), env)
	require.NoError(t, err)
	assert.Empty(t, issues)
	require.NotNil(t, checked)

	assert.Equal(t, "pkg.greet", call.Function)
	assert.Equal(t, "pkg.greet", checked.ReferenceMap[call.ID()].Name)
}

// A struct literal resolved against a container-qualified type name must
// have its Struct.TypeName rewritten to the canonical name too.
func TestRewriterCanonicalizesStructTypeName(t *testing.T) {
	provider := NewMapTypeProvider()
	provider.RegisterType("pkg.Msg", StructType("pkg.Msg"))
	provider.RegisterField("pkg.Msg", FieldInfo{Name: "age", Type: Int})
	env := NewEnv("pkg", provider, Options{})

	gen := &ast.IDGen{}
	val := intConst(gen, 9)
	st := ast.NewStruct(gen.Next(), "Msg", []ast.StructField{{Name: "age", Value: val}})

	checked, issues, err := Check(st, newTestSourceInfo(), env)
	require.NoError(t, err)
	assert.Empty(t, issues)
	require.NotNil(t, checked)

	assert.Equal(t, "pkg.Msg", st.TypeName)
	assert.Equal(t, "pkg.Msg", checked.ReferenceMap[st.ID()].Name)
}
