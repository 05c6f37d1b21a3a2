package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSourceInfoLocationForSingleLine(t *testing.T) {
	si := NewSourceInfo("test", []byte("1 + 2"))
	si.SetOffset(1, 4)
	assert.Equal(t, Location{Line: 1, Column: 5}, si.LocationFor(1))
}

func TestSourceInfoLocationForMultiLine(t *testing.T) {
	si := NewSourceInfo("test", []byte("a\nbc\ndef"))
	si.SetOffset(1, 0) // 'a' on line 1
	si.SetOffset(2, 3) // 'c' on line 2
	si.SetOffset(3, 5) // 'd' on line 3

	assert.Equal(t, Location{Line: 1, Column: 1}, si.LocationFor(1))
	assert.Equal(t, Location{Line: 2, Column: 2}, si.LocationFor(2))
	assert.Equal(t, Location{Line: 3, Column: 1}, si.LocationFor(3))
}

func TestSourceInfoLocationForUnknownID(t *testing.T) {
	si := NewSourceInfo("test", []byte("abc"))
	assert.Equal(t, Location{Line: 1, Column: 1}, si.LocationFor(99))
}

func TestSourceInfoLocationForNilReceiver(t *testing.T) {
	var si *SourceInfo
	assert.Equal(t, Location{Line: 1, Column: 1}, si.LocationFor(1))
}

func TestLocationLineColStr(t *testing.T) {
	assert.Equal(t, "3:7", Location{Line: 3, Column: 7}.LineColStr())
}
