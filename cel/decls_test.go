package cel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverloadTypeParamsDerived(t *testing.T) {
	a := TypeParam("A")
	o := NewOverload("identity", false, a, a)
	assert.Equal(t, []string{"A"}, o.TypeParams)
}

func TestFuncDeclAddOverloadRejectsDuplicate(t *testing.T) {
	fd := &FuncDecl{Name: "_+_"}
	require.NoError(t, fd.AddOverload(NewOverload("add_int64_int64", false, Int, Int, Int)))
	err := fd.AddOverload(NewOverload("add_int64_int64", false, Int, Int, Int))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestFuncDeclByShape(t *testing.T) {
	fd := &FuncDecl{Name: "size"}
	require.NoError(t, fd.AddOverload(NewOverload("size_string", false, Int, String)))
	require.NoError(t, fd.AddOverload(NewOverload("string_size", true, Int, String)))

	free := fd.ByShape(false, 1)
	require.Len(t, free, 1)
	assert.Equal(t, "size_string", free[0].ID)

	member := fd.ByShape(true, 1)
	require.Len(t, member, 1)
	assert.Equal(t, "string_size", member[0].ID)
}
