package cel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeLookupFallsThroughToEnv(t *testing.T) {
	env := NewEnv("", NewMapTypeProvider(), Options{})
	require.NoError(t, env.AddVariable("x", Int))
	root := NewRootScope(env)

	v, ok := root.Lookup("x")
	require.True(t, ok)
	assert.True(t, v.Type.Equals(Int))

	_, ok = root.Lookup("missing")
	assert.False(t, ok)
}

func TestScopePushShadowsOuter(t *testing.T) {
	env := NewEnv("", NewMapTypeProvider(), Options{})
	require.NoError(t, env.AddVariable("x", Int))
	root := NewRootScope(env)
	inner := root.Push()
	require.True(t, inner.InsertIfAbsent(NewVarDecl("x", String)))

	v, ok := inner.Lookup("x")
	require.True(t, ok)
	assert.True(t, v.Type.Equals(String))

	v, ok = root.Lookup("x")
	require.True(t, ok)
	assert.True(t, v.Type.Equals(Int))
}

func TestScopeInsertIfAbsentNeverShadowsSameFrame(t *testing.T) {
	s := NewRootScope(NewEnv("", NewMapTypeProvider(), Options{}))
	assert.True(t, s.InsertIfAbsent(NewVarDecl("x", Int)))
	assert.False(t, s.InsertIfAbsent(NewVarDecl("x", String)))
}
