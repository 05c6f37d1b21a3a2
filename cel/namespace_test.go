package cel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNamespaceGeneratorEmptyContainer(t *testing.T) {
	g := NewNamespaceGenerator("")
	var got []string
	g.Generate("x", func(c string) bool { got = append(got, c); return true })
	assert.Equal(t, []string{"x"}, got)
}

func TestNamespaceGeneratorContainerPrefixes(t *testing.T) {
	g := NewNamespaceGenerator("a.b.c")
	var got []string
	g.Generate("x", func(c string) bool { got = append(got, c); return true })
	assert.Equal(t, []string{"a.b.c.x", "a.b.x", "a.x", "x"}, got)
}

func TestNamespaceGeneratorStopsOnFalse(t *testing.T) {
	g := NewNamespaceGenerator("a.b.c")
	var got []string
	g.Generate("x", func(c string) bool {
		got = append(got, c)
		return c != "a.b.x"
	})
	assert.Equal(t, []string{"a.b.c.x", "a.b.x"}, got)
}

func TestNamespaceGeneratorQualified(t *testing.T) {
	g := NewNamespaceGenerator("")
	var got []string
	g.GenerateQualified([]string{"a", "b", "c"}, func(cand string, segs int) bool {
		got = append(got, cand)
		return true
	})
	assert.Equal(t, []string{"a.b.c", "a.b", "a"}, got)
}

func TestNamespaceGeneratorQualifiedWithContainer(t *testing.T) {
	g := NewNamespaceGenerator("ns")
	var got []string
	g.GenerateQualified([]string{"a", "b"}, func(cand string, segs int) bool {
		got = append(got, cand)
		return true
	})
	assert.Equal(t, []string{"ns.a.b", "a.b", "ns.a", "a"}, got)
}
