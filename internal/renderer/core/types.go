// Package core provides shared types for the highlight overlay subsystem.
// This package breaks import cycles between the index, cache and session packages.
package core

import (
	"fmt"
	"sort"
)

// Diagnostic scopes carried by ErrorRange values.
const (
	// ScopeError marks a span the parser rejected.
	ScopeError = "error"

	// ScopeMissing marks a position where the parser expected a token.
	ScopeMissing = "missing"
)

// HighlightRange is an absolute [StartIndex, EndIndex) byte span tagged with a scope.
// Offsets refer to the last confirmed parse snapshot. Ranges are immutable; a new
// parse delivers a wholly new slice.
type HighlightRange struct {
	StartIndex int
	EndIndex   int
	Scope      string
}

// Len returns the span length in bytes.
func (r HighlightRange) Len() int {
	return r.EndIndex - r.StartIndex
}

// Valid reports whether the range is non-degenerate.
func (r HighlightRange) Valid() bool {
	return r.StartIndex >= 0 && r.EndIndex > r.StartIndex
}

// Intersects reports whether the range overlaps [start, end).
func (r HighlightRange) Intersects(start, end int) bool {
	return r.StartIndex < end && r.EndIndex > start
}

// String returns a debug representation of the range.
func (r HighlightRange) String() string {
	return fmt.Sprintf("[%d,%d)%s", r.StartIndex, r.EndIndex, r.Scope)
}

// ErrorRange is a diagnostic span. It has the same shape as HighlightRange but
// comes from a separate source; its scope is ScopeError or ScopeMissing.
type ErrorRange = HighlightRange

// Snapshot is one atomic delivery from the parser.
// The producer increments Generation every time Ranges is replaced.
type Snapshot struct {
	Generation uint64
	Ranges     []HighlightRange
}

// PendingOffset describes one local edit applied after the last confirmed snapshot.
// Content at or after FromCharIndex moved by CharDelta; [FromCharIndex, NewEndIndex)
// is the edited span in post-edit coordinates.
type PendingOffset struct {
	FromCharIndex int
	NewEndIndex   int
	CharDelta     int
}

// LineEntry is a line's current (post-edit) position and content.
type LineEntry struct {
	// LineID is a stable identity for the line; 0 means the line has none.
	LineID uint64

	// Index is the zero-based line number.
	Index int

	// Start is the absolute byte offset of the first byte of the line.
	Start int

	// Length is the observed line length, which may include a line terminator.
	Length int

	// Text is the line content without the terminator.
	Text string
}

// End returns the absolute offset one past the line's span.
// The larger of Length and len(Text) is used.
func (e LineEntry) End() int {
	n := e.Length
	if len(e.Text) > n {
		n = len(e.Text)
	}
	return e.Start + n
}

// Layer is the priority of a segment when segments overlap.
type Layer uint8

const (
	// LayerSyntax is the syntax highlighting layer.
	LayerSyntax Layer = iota

	// LayerDiagnostic is the diagnostic (error, missing) layer.
	LayerDiagnostic
)

// String returns the string representation of the layer.
func (l Layer) String() string {
	switch l {
	case LayerSyntax:
		return "syntax"
	case LayerDiagnostic:
		return "diagnostic"
	default:
		return "unknown"
	}
}

// Segment is a line-relative [Start, End) column range with a resolved class.
type Segment struct {
	Start int
	End   int

	// Class is the presentation class the scope resolved to.
	Class string

	// Scope is the scope of the range that produced the segment.
	Scope string

	// Layer is the source layer of the segment.
	Layer Layer
}

// Len returns the segment width in bytes.
func (s Segment) Len() int {
	return s.End - s.Start
}

// Sanitize drops degenerate ranges and restores ascending StartIndex order.
// The input slice is returned unchanged when it is already clean, so the common
// path allocates nothing. Otherwise a filtered copy is returned; the input is never
// modified.
func Sanitize(ranges []HighlightRange) []HighlightRange {
	clean := true
	for i, r := range ranges {
		if !r.Valid() || (i > 0 && r.StartIndex < ranges[i-1].StartIndex) {
			clean = false
			break
		}
	}
	if clean {
		return ranges
	}

	out := make([]HighlightRange, 0, len(ranges))
	for _, r := range ranges {
		if r.Valid() {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartIndex < out[j].StartIndex
	})
	return out
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ScopeResolver maps a scope to a presentation class.
// ok is false when the scope has no class; such ranges contribute no color.
type ScopeResolver func(scope string) (class string, ok bool)

// IdentityResolver resolves every non-empty scope to itself.
func IdentityResolver(scope string) (string, bool) {
	return scope, scope != ""
}
