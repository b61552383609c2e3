// Package precompute builds the segments of every line in one ordered pass.
//
// When no local edits are pending, the highlight ranges describe the document
// exactly, and one linear sweep over lines and ranges yields every line's
// segments. The session memoizes the result per parse generation so viewport
// repaints become array lookups.
package precompute

import (
	"github.com/dshills/hlsync/internal/renderer/core"
	"github.com/dshills/hlsync/internal/renderer/segment"
	"github.com/dshills/hlsync/internal/renderer/spatial"
)

// Lines is read access to the document's lines.
type Lines interface {
	LineCount() int
	LineStart(i int) int
	LineLength(i int) int
	LineText(i int) string
	LineID(i int) uint64
}

// Result holds the segments of every line of one document state.
type Result struct {
	// Segments holds the merged segments by line index.
	Segments [][]core.Segment

	// ByLineID maps stable line ids to line indices.
	ByLineID map[uint64]int

	texts []string
}

// Len returns the number of lines in the result.
func (r *Result) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Segments)
}

// Lookup returns the precomputed segments for e.
// The stable id takes precedence over the index. The lookup misses when the line
// is unknown or its text differs from the text the result was built from.
func (r *Result) Lookup(e core.LineEntry) ([]core.Segment, bool) {
	if r == nil {
		return nil, false
	}
	idx := e.Index
	if e.LineID != 0 {
		if i, ok := r.ByLineID[e.LineID]; ok {
			idx = i
		}
	}
	if idx < 0 || idx >= len(r.Segments) || r.texts[idx] != e.Text {
		return nil, false
	}
	return r.Segments[idx], true
}

// ComputeAll builds the segments of every line.
// Both range slices must be sorted by StartIndex. Cost is linear in the number of
// lines plus the number of ranges, plus the number of lines each range spans.
func ComputeAll(lines Lines, highlights, errors []core.HighlightRange, b *segment.Builder) *Result {
	n := lines.LineCount()
	res := &Result{
		Segments: make([][]core.Segment, n),
		ByLineID: make(map[uint64]int),
		texts:    make([]string, n),
	}

	hl := sweep{ranges: highlights}
	errs := sweep{ranges: errors}

	for i := 0; i < n; i++ {
		e := core.LineEntry{
			LineID: lines.LineID(i),
			Index:  i,
			Start:  lines.LineStart(i),
			Length: lines.LineLength(i),
			Text:   lines.LineText(i),
		}
		line := segment.Line{Start: e.Start, TextLength: len(e.Text)}
		end := e.End()

		res.Segments[i] = segment.Merge(
			b.ForLine(line, core.LayerSyntax, hl.advance(e.Start, end), 0),
			b.ForLine(line, core.LayerDiagnostic, errs.advance(e.Start, end), 0),
		)
		res.texts[i] = e.Text
		if e.LineID != 0 {
			res.ByLineID[e.LineID] = i
		}
	}

	return res
}

// sweep walks a sorted range slice alongside ascending line spans.
type sweep struct {
	ranges []core.HighlightRange
	next   int
	active []core.HighlightRange
}

// advance returns the ranges intersecting [start, end).
// Spans must be passed in ascending order.
func (s *sweep) advance(start, end int) spatial.Candidates {
	kept := s.active[:0]
	for _, r := range s.active {
		if r.EndIndex > start {
			kept = append(kept, r)
		}
	}
	s.active = kept

	for s.next < len(s.ranges) && s.ranges[s.next].StartIndex < end {
		if r := s.ranges[s.next]; r.EndIndex > start {
			s.active = append(s.active, r)
		}
		s.next++
	}

	return spatial.Slice(s.active)
}
