package cel

import (
	"testing"

	"github.com/panyam/celcheck/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strConst(gen *ast.IDGen, s string) *ast.Constant {
	c := ast.NewConstant(gen.Next(), ast.ConstantString)
	c.StringValue = s
	return c
}

func intConst(gen *ast.IDGen, v int64) *ast.Constant {
	c := ast.NewConstant(gen.Next(), ast.ConstantInt)
	c.IntValue = v
	return c
}

func uintConst(gen *ast.IDGen, v uint64) *ast.Constant {
	c := ast.NewConstant(gen.Next(), ast.ConstantUint)
	c.UintValue = v
	return c
}

// '123' + '123' -> string (spec §8 scenario 1).
func TestCheckStringConcatenation(t *testing.T) {
	env := NewStandardEnv("", NewMapTypeProvider(), Options{})
	gen := &ast.IDGen{}
	root := ast.NewCall(gen.Next(), FnAdd, nil, []ast.Expr{strConst(gen, "123"), strConst(gen, "123")})

	checked, issues, err := Check(root, newTestSourceInfo(), env)
	require.NoError(t, err)
	assert.Empty(t, issues)
	require.NotNil(t, checked)
	assert.True(t, checked.IsChecked)
	assert.Equal(t, ast.AstType{Kind: ast.AstPrimitive, PrimitiveName: "string"}, checked.TypeMap[root.ID()])
}

// timestamp(0) + duration('1s') -> google.protobuf.Timestamp (spec §8 scenario 2).
func TestCheckTimestampPlusDuration(t *testing.T) {
	env := NewStandardEnv("", NewMapTypeProvider(), Options{})
	gen := &ast.IDGen{}
	ts := ast.NewCall(gen.Next(), "timestamp", nil, []ast.Expr{intConst(gen, 0)})
	dur := ast.NewCall(gen.Next(), "duration", nil, []ast.Expr{strConst(gen, "1s")})
	root := ast.NewCall(gen.Next(), FnAdd, nil, []ast.Expr{ts, dur})

	checked, issues, err := Check(root, newTestSourceInfo(), env)
	require.NoError(t, err)
	assert.Empty(t, issues)
	require.NotNil(t, checked)
	assert.Equal(t, ast.AstType{Kind: ast.AstMessage, MessageName: "google.protobuf.Timestamp"}, checked.TypeMap[root.ID()])
}

// 1u < 2 fails without enable_cross_numeric_comparisons, succeeds with it
// (spec §8 scenario 3).
func TestCheckCrossNumericComparison(t *testing.T) {
	gen := &ast.IDGen{}
	root := ast.NewCall(gen.Next(), FnLess, nil, []ast.Expr{uintConst(gen, 1), intConst(gen, 2)})

	env := NewStandardEnv("", NewMapTypeProvider(), Options{})
	checked, issues, err := Check(root, newTestSourceInfo(), env)
	require.NoError(t, err)
	assert.Nil(t, checked)
	require.NotEmpty(t, issues)
	assert.Equal(t, SeverityError, issues[0].Severity)

	gen2 := &ast.IDGen{}
	root2 := ast.NewCall(gen2.Next(), FnLess, nil, []ast.Expr{uintConst(gen2, 1), intConst(gen2, 2)})
	envEnabled := NewStandardEnv("", NewMapTypeProvider(), Options{EnableCrossNumericComparisons: true})
	checked2, issues2, err2 := Check(root2, newTestSourceInfo(), envEnabled)
	require.NoError(t, err2)
	assert.Empty(t, issues2)
	require.NotNil(t, checked2)
	assert.Equal(t, ast.AstType{Kind: ast.AstPrimitive, PrimitiveName: "bool"}, checked2.TypeMap[root2.ID()])
}

// google.protobuf.NullValue.NULL_VALUE resolves, by exact reference name,
// to the enum's int32 representation (spec §8 scenario 4).
func TestCheckFullyQualifiedEnumConstant(t *testing.T) {
	env := NewStandardEnv("", NewMapTypeProvider(), Options{})
	require.NoError(t, env.AddVariable("google.protobuf.NullValue.NULL_VALUE", Int))

	gen := &ast.IDGen{}
	identGoogle := ast.NewIdent(gen.Next(), "google")
	selProtobuf := ast.NewSelect(gen.Next(), identGoogle, "protobuf", false)
	selNullValue := ast.NewSelect(gen.Next(), selProtobuf, "NullValue", false)
	root := ast.NewSelect(gen.Next(), selNullValue, "NULL_VALUE", false)

	checked, issues, err := Check(root, newTestSourceInfo(), env)
	require.NoError(t, err)
	assert.Empty(t, issues)
	require.NotNil(t, checked)
	assert.Equal(t, "google.protobuf.NullValue.NULL_VALUE", checked.ReferenceMap[root.ID()].Name)
	assert.Equal(t, ast.AstType{Kind: ast.AstPrimitive, PrimitiveName: "int"}, checked.TypeMap[root.ID()])
}

// [1, 'a'] -> list(dyn) (spec §8 scenario 5).
func TestCheckHeterogeneousListIsListOfDyn(t *testing.T) {
	env := NewStandardEnv("", NewMapTypeProvider(), Options{})
	gen := &ast.IDGen{}
	root := ast.NewList(gen.Next(), []ast.ListElem{
		{Value: intConst(gen, 1)},
		{Value: strConst(gen, "a")},
	})

	checked, issues, err := Check(root, newTestSourceInfo(), env)
	require.NoError(t, err)
	assert.Empty(t, issues)
	require.NotNil(t, checked)
	assert.Equal(t, ast.AstType{Kind: ast.AstList, Params: []ast.AstType{{Kind: ast.AstDyn}}}, checked.TypeMap[root.ID()])
}

// {1: 'a', 'b': 2} -> map(dyn, dyn) (spec §8 scenario 6).
func TestCheckHeterogeneousMapIsMapOfDyn(t *testing.T) {
	env := NewStandardEnv("", NewMapTypeProvider(), Options{})
	gen := &ast.IDGen{}
	root := ast.NewMap(gen.Next(), []ast.MapEntry{
		{Key: intConst(gen, 1), Value: strConst(gen, "a")},
		{Key: strConst(gen, "b"), Value: intConst(gen, 2)},
	})

	checked, issues, err := Check(root, newTestSourceInfo(), env)
	require.NoError(t, err)
	assert.Empty(t, issues)
	require.NotNil(t, checked)
	dynType := ast.AstType{Kind: ast.AstDyn}
	assert.Equal(t, ast.AstType{Kind: ast.AstMap, Params: []ast.AstType{dynType, dynType}}, checked.TypeMap[root.ID()])
}

// missing_var -> undeclared reference error, no CheckedAst (spec §8 scenario 7).
func TestCheckUndeclaredVariableShortCircuits(t *testing.T) {
	env := NewStandardEnv("", NewMapTypeProvider(), Options{})
	gen := &ast.IDGen{}
	root := ast.NewIdent(gen.Next(), "missing_var")

	checked, issues, err := Check(root, newTestSourceInfo(), env)
	require.NoError(t, err)
	assert.Nil(t, checked)
	require.Len(t, issues, 1)
	assert.Equal(t, SeverityError, issues[0].Severity)
	assert.Contains(t, issues[0].Message, "undeclared reference to 'missing_var'")
}

func TestCheckTernaryUnifiesBranchTypes(t *testing.T) {
	env := NewStandardEnv("", NewMapTypeProvider(), Options{})
	gen := &ast.IDGen{}
	cond := ast.NewConstant(gen.Next(), ast.ConstantBool)
	cond.BoolValue = true
	root := ast.NewCall(gen.Next(), FnTernary, nil, []ast.Expr{cond, intConst(gen, 1), intConst(gen, 2)})

	checked, issues, err := Check(root, newTestSourceInfo(), env)
	require.NoError(t, err)
	assert.Empty(t, issues)
	require.NotNil(t, checked)
	assert.Equal(t, ast.AstType{Kind: ast.AstPrimitive, PrimitiveName: "int"}, checked.TypeMap[root.ID()])
}
