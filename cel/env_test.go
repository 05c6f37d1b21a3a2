package cel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvAddVariableRejectsDuplicate(t *testing.T) {
	env := NewEnv("", NewMapTypeProvider(), Options{})
	require.NoError(t, env.AddVariable("x", Int))
	err := env.AddVariable("x", String)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestEnvAddFunctionCreatesLazilyAndRejectsDuplicateOverload(t *testing.T) {
	env := NewEnv("", NewMapTypeProvider(), Options{})
	require.NoError(t, env.AddFunction("_+_", NewOverload("add_int64_int64", false, Int, Int, Int)))
	require.NoError(t, env.AddFunction("_+_", NewOverload("add_string_string", false, String, String, String)))

	fd, ok := env.LookupFunction("_+_")
	require.True(t, ok)
	assert.Len(t, fd.Overloads, 2)

	err := env.AddFunction("_+_", NewOverload("add_int64_int64", false, Int, Int, Int))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestEnvLookupVariable(t *testing.T) {
	env := NewEnv("", NewMapTypeProvider(), Options{})
	require.NoError(t, env.AddVariable("x", Int))

	v, ok := env.LookupVariable("x")
	require.True(t, ok)
	assert.True(t, v.Type.Equals(Int))

	_, ok = env.LookupVariable("missing")
	assert.False(t, ok)
}

func TestEnvLookupTypeName(t *testing.T) {
	provider := NewMapTypeProvider()
	provider.RegisterType("my.Msg", StructType("my.Msg"))
	env := NewEnv("", provider, Options{})

	typ, ok := env.LookupTypeName("my.Msg")
	require.True(t, ok)
	assert.Equal(t, "my.Msg", typ.StructName())

	_, ok = env.LookupTypeName("nope")
	assert.False(t, ok)
}

func TestEnvLookupTypeNameNilProvider(t *testing.T) {
	env := NewEnv("", nil, Options{})
	_, ok := env.LookupTypeName("anything")
	assert.False(t, ok)
}

func TestEnvContainerAndOptionsAccessors(t *testing.T) {
	opts := Options{EnableCrossNumericComparisons: true}
	env := NewEnv("my.pkg", NewMapTypeProvider(), opts)
	assert.Equal(t, "my.pkg", env.Container())
	assert.Equal(t, opts, env.Options())
	assert.NotNil(t, env.Provider())
}
