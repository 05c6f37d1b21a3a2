package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDGenAssignsIncreasingIDs(t *testing.T) {
	gen := &IDGen{}
	assert.Equal(t, int64(1), gen.Next())
	assert.Equal(t, int64(2), gen.Next())
	assert.Equal(t, int64(3), gen.Next())
}

func TestConstantString(t *testing.T) {
	c := NewConstant(1, ConstantString)
	c.StringValue = "hi"
	assert.Equal(t, `"hi"`, c.String())

	u := NewConstant(2, ConstantUint)
	u.UintValue = 5
	assert.Equal(t, "5u", u.String())

	n := NewConstant(3, ConstantNull)
	assert.Equal(t, "null", n.String())
}

func TestSelectString(t *testing.T) {
	ident := NewIdent(1, "x")
	sel := NewSelect(2, ident, "y", false)
	assert.Equal(t, "x.y", sel.String())

	has := NewSelect(3, ident, "y", true)
	assert.Equal(t, "has(x.y)", has.String())
}

func TestCallString(t *testing.T) {
	arg := NewConstant(1, ConstantInt)
	arg.IntValue = 1
	free := NewCall(2, "f", nil, []Expr{arg})
	assert.Equal(t, "f(1)", free.String())

	target := NewIdent(3, "x")
	member := NewCall(4, "g", target, nil)
	assert.Equal(t, "x.g()", member.String())
}

func TestListString(t *testing.T) {
	a := NewConstant(1, ConstantInt)
	a.IntValue = 1
	l := NewList(2, []ListElem{{Value: a, Optional: true}})
	assert.Equal(t, "[?1]", l.String())
}

func TestMapString(t *testing.T) {
	k := NewConstant(1, ConstantString)
	k.StringValue = "a"
	v := NewConstant(2, ConstantInt)
	v.IntValue = 1
	m := NewMap(3, []MapEntry{{Key: k, Value: v}})
	assert.Equal(t, `{"a": 1}`, m.String())
}

func TestStructString(t *testing.T) {
	v := NewConstant(1, ConstantInt)
	v.IntValue = 1
	s := NewStruct(2, "Msg", []StructField{{Name: "x", Value: v}})
	assert.Equal(t, "Msg{x: 1}", s.String())
}
