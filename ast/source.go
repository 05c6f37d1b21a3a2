package ast

import (
	"fmt"
	"sort"
)

// Location is a rendered (line, column) pair, both 1-based.
type Location struct {
	Line, Column int
}

func (l Location) LineColStr() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// SourceInfo is the side table mapping expression ids to absolute byte
// offsets in the original source text, plus the sorted line-start offsets
// needed to turn an offset into a (line, column) pair. The checker never
// touches source text itself; this is the only thing it consults to
// render diagnostics.
type SourceInfo struct {
	Description string
	Positions   map[int64]int32
	LineOffsets []int32
}

// NewSourceInfo builds a SourceInfo from raw source text, recording a
// line-offset table a caller can reuse across many expr-id registrations.
func NewSourceInfo(description string, source []byte) *SourceInfo {
	offsets := []int32{0}
	for i, b := range source {
		if b == '\n' {
			offsets = append(offsets, int32(i+1))
		}
	}
	return &SourceInfo{
		Description: description,
		Positions:   make(map[int64]int32),
		LineOffsets: offsets,
	}
}

func (si *SourceInfo) SetOffset(id int64, offset int32) {
	si.Positions[id] = offset
}

// LocationFor renders the (line, column) of expr id. Unknown ids resolve
// to the zero location (1,1) rather than panicking: a synthesized node
// produced by the rewriter may carry no source position.
func (si *SourceInfo) LocationFor(id int64) Location {
	if si == nil {
		return Location{Line: 1, Column: 1}
	}
	offset, ok := si.Positions[id]
	if !ok {
		return Location{Line: 1, Column: 1}
	}
	// Find the last line-start offset <= offset.
	idx := sort.Search(len(si.LineOffsets), func(i int) bool {
		return si.LineOffsets[i] > offset
	})
	line := idx // idx is 1-based count of line starts <= offset
	if line == 0 {
		line = 1
	}
	lineStart := int32(0)
	if line-1 < len(si.LineOffsets) {
		lineStart = si.LineOffsets[line-1]
	}
	return Location{Line: line, Column: int(offset-lineStart) + 1}
}
