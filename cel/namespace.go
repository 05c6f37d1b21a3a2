package cel

import "strings"

// NamespaceGenerator produces the ordered sequence of fully-qualified
// candidate names to probe for a dotted reference under a container
// namespace (spec §4.3). It is stateless beyond the container split and
// is shared by identifier resolution, function-name resolution, and
// struct-type-name resolution (see SPEC_FULL.md §12: the original C++
// checker reuses one such helper for all three).
type NamespaceGenerator struct {
	container []string
}

func NewNamespaceGenerator(container string) *NamespaceGenerator {
	var segs []string
	if container != "" {
		segs = strings.Split(container, ".")
	}
	return &NamespaceGenerator{container: segs}
}

// Generate calls fn once per candidate for name, trying the full
// container prefix first and stripping one trailing container segment at
// a time down to no prefix at all (spec §4.3, items 1-5). Iteration stops
// the first time fn returns false.
func (g *NamespaceGenerator) Generate(name string, fn func(candidate string) bool) {
	for i := len(g.container); i >= 0; i-- {
		var candidate string
		if i == 0 {
			candidate = name
		} else {
			candidate = strings.Join(g.container[:i], ".") + "." + name
		}
		if !fn(candidate) {
			return
		}
	}
}

// GenerateQualified additionally varies how many leading qualifiers are
// folded into the candidate name, trying the longest qualifier chain
// first at every container-prefix level, and reports the segment count
// consumed (1-based) alongside each candidate — the information
// resolveQualifiedIdentifier (see resolver.go) uses to split a dotted
// path into "name segments" vs. "trailing field-access selects" (spec
// §4.3, §4.6). Iteration stops the first time fn returns false.
func (g *NamespaceGenerator) GenerateQualified(qualifiers []string, fn func(candidate string, segmentsConsumed int) bool) {
	for segs := len(qualifiers); segs >= 1; segs-- {
		name := strings.Join(qualifiers[:segs], ".")
		keepGoing := true
		g.Generate(name, func(candidate string) bool {
			keepGoing = fn(candidate, segs)
			return keepGoing
		})
		if !keepGoing {
			return
		}
	}
}
