package cel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAssignableDyn(t *testing.T) {
	c := NewInferContext()
	assert.True(t, c.IsAssignable(Int, Dyn))
	assert.True(t, c.IsAssignable(Dyn, Int))
}

func TestIsAssignableTypeParamBinds(t *testing.T) {
	c := NewInferContext()
	a := TypeParam("A")
	assert.True(t, c.IsAssignable(Int, a))
	assert.True(t, c.IsAssignable(Int, a)) // consistent with prior binding
	assert.False(t, c.IsAssignable(String, a))
}

func TestIsAssignableWrapperAndNull(t *testing.T) {
	c := NewInferContext()
	assert.True(t, c.IsAssignable(Null, IntWrapper))
	assert.True(t, c.IsAssignable(IntWrapper, Null))
	assert.False(t, c.IsAssignable(Null, Int))
}

func TestIsAssignableStructuralList(t *testing.T) {
	c := NewInferContext()
	assert.True(t, c.IsAssignable(ListType(Int), ListType(Int)))
	assert.False(t, c.IsAssignable(ListType(Int), ListType(String)))
}

func TestFinalizeIdempotent(t *testing.T) {
	c := NewInferContext()
	a := TypeParam("A")
	c.IsAssignable(Int, a)
	once := c.Finalize(a)
	twice := c.Finalize(once)
	assert.True(t, once.Equals(twice))
	assert.True(t, once.Equals(Int))
}

func TestFinalizeUnboundToD(t *testing.T) {
	c := NewInferContext()
	a := TypeParam("A")
	assert.True(t, c.Finalize(a).Equals(Dyn))
}

func TestResolveOverloadSingleSurvivor(t *testing.T) {
	c := NewInferContext()
	overloads := []*Overload{
		NewOverload("add_int64_int64", false, Int, Int, Int),
		NewOverload("add_string_string", false, String, String, String),
	}
	survivors, result := c.ResolveOverload(overloads, []*Type{Int, Int})
	require.Len(t, survivors, 1)
	assert.Equal(t, "add_int64_int64", survivors[0].ID)
	assert.True(t, result.Equals(Int))
}

func TestResolveOverloadNoMatch(t *testing.T) {
	c := NewInferContext()
	overloads := []*Overload{
		NewOverload("add_int64_int64", false, Int, Int, Int),
	}
	survivors, result := c.ResolveOverload(overloads, []*Type{String, String})
	assert.Empty(t, survivors)
	assert.True(t, result.Equals(ErrorType))
}

func TestResolveOverloadGenericIdentity(t *testing.T) {
	c := NewInferContext()
	a := TypeParam("A")
	overloads := []*Overload{
		NewOverload("conditional", false, a, Bool, a, a),
	}
	survivors, result := c.ResolveOverload(overloads, []*Type{Bool, Int, Int})
	require.Len(t, survivors, 1)
	assert.True(t, result.Equals(Int))
}
