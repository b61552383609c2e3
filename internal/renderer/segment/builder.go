// Package segment turns absolute highlight ranges into line-relative segments.
package segment

import (
	"sort"

	"github.com/dshills/hlsync/internal/renderer/core"
	"github.com/dshills/hlsync/internal/renderer/spatial"
)

// Line describes the span a segment list is built for.
type Line struct {
	// Start is the absolute offset of the line in current coordinates.
	Start int

	// TextLength is the length of the line text; segments never exceed it.
	TextLength int
}

// Builder clips candidate ranges to a line and resolves their classes.
type Builder struct {
	resolve core.ScopeResolver
}

// NewBuilder creates a builder using resolve for scope lookups.
// A nil resolver falls back to core.IdentityResolver.
func NewBuilder(resolve core.ScopeResolver) *Builder {
	if resolve == nil {
		resolve = core.IdentityResolver
	}
	return &Builder{resolve: resolve}
}

// ForLine returns the segments the candidates produce on line, tagged with layer.
// shift is added to every range position, mapping ranges from the coordinates of
// the last confirmed parse into current coordinates. Candidates must be sorted by
// StartIndex; the result is then sorted by Start.
func (b *Builder) ForLine(line Line, layer core.Layer, cands spatial.Candidates, shift int) []core.Segment {
	var segs []core.Segment
	base := line.Start - shift
	for i := 0; i < cands.Len(); i++ {
		r := cands.At(i)
		if r.EndIndex <= r.StartIndex {
			continue
		}
		start := core.Clamp(r.StartIndex-base, 0, line.TextLength)
		end := core.Clamp(r.EndIndex-base, 0, line.TextLength)
		if start >= end {
			continue
		}
		class, ok := b.resolve(r.Scope)
		if !ok {
			continue
		}
		segs = append(segs, core.Segment{Start: start, End: end, Class: class, Scope: r.Scope, Layer: layer})
	}
	return segs
}

// Merge combines syntax and diagnostic segments into draw order.
// Both inputs must be sorted by Start. The result is stable-sorted by Start, so
// among segments starting at the same column the error segment comes last and is
// drawn over the syntax one. Use Flatten for a disjoint rendition in which the
// diagnostic layer wins at every overlapped column.
func Merge(highlights, errors []core.Segment) []core.Segment {
	if len(errors) == 0 {
		return highlights
	}
	if len(highlights) == 0 {
		return errors
	}
	out := make([]core.Segment, 0, len(highlights)+len(errors))
	out = append(out, highlights...)
	out = append(out, errors...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start < out[j].Start
	})
	return out
}

// ClipAt truncates segments at col, dropping those that start at or after it.
// The input is not modified.
func ClipAt(segs []core.Segment, col int) []core.Segment {
	if col < 0 {
		return segs
	}
	var out []core.Segment
	for _, s := range segs {
		if s.Start >= col {
			continue
		}
		if s.End > col {
			s.End = col
		}
		out = append(out, s)
	}
	return out
}

// Flatten converts a draw-order segment list into disjoint segments sorted by
// Start. At every column the result carries the class of the covering segment
// with the highest layer; among equal layers the last one in segs wins.
// Adjacent pieces with equal class, scope and layer are joined.
func Flatten(segs []core.Segment) []core.Segment {
	if len(segs) < 2 {
		return segs
	}

	bounds := make([]int, 0, 2*len(segs))
	for _, s := range segs {
		bounds = append(bounds, s.Start, s.End)
	}
	sort.Ints(bounds)

	var out []core.Segment
	for i := 0; i+1 < len(bounds); i++ {
		lo, hi := bounds[i], bounds[i+1]
		if lo == hi {
			continue
		}
		top := -1
		for j := len(segs) - 1; j >= 0; j-- {
			if segs[j].Start > lo || segs[j].End < hi {
				continue
			}
			if top < 0 || segs[j].Layer > segs[top].Layer {
				top = j
			}
		}
		if top < 0 {
			continue
		}
		piece := segs[top]
		piece.Start, piece.End = lo, hi
		if n := len(out); n > 0 && out[n-1].End == lo && out[n-1].Class == piece.Class &&
			out[n-1].Scope == piece.Scope && out[n-1].Layer == piece.Layer {
			out[n-1].End = hi
			continue
		}
		out = append(out, piece)
	}
	return out
}
