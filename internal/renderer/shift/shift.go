// Package shift resolves how pending local edits affect a line.
//
// Highlight ranges are expressed in the coordinates of the last confirmed parse.
// While edits are in flight, a line that lies entirely after every edit can reuse
// those ranges by translating them by a constant amount. A line that overlaps an
// edit cannot, because its own content moved internally.
package shift

import (
	"fmt"

	"github.com/dshills/hlsync/internal/renderer/core"
)

// Result describes the effect of a set of pending offsets on one line.
type Result struct {
	// Shift is the total CharDelta of the offsets lying entirely before the line.
	Shift int

	// Intersects is true when at least one offset overlaps the line.
	Intersects bool

	// Clip is the first line-relative column touched by an intersecting offset.
	// It is -1 when Intersects is false.
	Clip int
}

// For computes the shift for the line span [lineStart, lineEnd).
// An offset whose new end is at or before lineStart only translates the line,
// so a deletion at column 0 shifts the line rather than touching it.
func For(lineStart, lineEnd int, offsets []core.PendingOffset) Result {
	res := Result{Clip: -1}
	for _, o := range offsets {
		switch {
		case o.NewEndIndex <= lineStart:
			res.Shift += o.CharDelta
		case o.FromCharIndex >= lineEnd:
			// Entirely after the line.
		default:
			res.Intersects = true
			col := o.FromCharIndex - lineStart
			if col < 0 {
				col = 0
			}
			if res.Clip < 0 || col < res.Clip {
				res.Clip = col
			}
		}
	}
	return res
}

// MapBack maps a span in current coordinates to the pre-edit coordinates the
// highlight ranges were produced in.
func (r Result) MapBack(start, end int) (int, int) {
	return start - r.Shift, end - r.Shift
}

// ChangeType categorizes the type of an edit.
type ChangeType uint8

const (
	// ChangeInsert indicates text was inserted.
	ChangeInsert ChangeType = iota

	// ChangeDelete indicates text was deleted.
	ChangeDelete

	// ChangeReplace indicates text was replaced.
	ChangeReplace
)

// String returns a human-readable representation of the change type.
func (ct ChangeType) String() string {
	switch ct {
	case ChangeInsert:
		return "insert"
	case ChangeDelete:
		return "delete"
	case ChangeReplace:
		return "replace"
	default:
		return "unknown"
	}
}

// Change is a single edit as reported by the text buffer.
// Start and End are in the coordinates of the document before the edit.
type Change struct {
	Type   ChangeType
	Start  int
	End    int
	NewLen int
}

// NewInsertChange creates a change representing an insertion of text at offset.
func NewInsertChange(offset int, text string) Change {
	return Change{Type: ChangeInsert, Start: offset, End: offset, NewLen: len(text)}
}

// NewDeleteChange creates a change representing the deletion of [start, end).
func NewDeleteChange(start, end int) Change {
	return Change{Type: ChangeDelete, Start: start, End: end}
}

// NewReplaceChange creates a change replacing [start, end) with text.
func NewReplaceChange(start, end int, text string) Change {
	return Change{Type: ChangeReplace, Start: start, End: end, NewLen: len(text)}
}

// Delta returns the byte delta of the change.
// Positive means the buffer grew, negative means it shrank.
func (c Change) Delta() int {
	return c.NewLen - (c.End - c.Start)
}

// Offset converts the change into a pending offset.
func (c Change) Offset() core.PendingOffset {
	return core.PendingOffset{
		FromCharIndex: c.Start,
		NewEndIndex:   c.Start + c.NewLen,
		CharDelta:     c.Delta(),
	}
}

// String returns a human-readable representation of the change.
func (c Change) String() string {
	return fmt.Sprintf("%s [%d,%d) +%d", c.Type, c.Start, c.End, c.NewLen)
}

// Offsets converts a sequence of changes into pending offsets, in order.
func Offsets(changes []Change) []core.PendingOffset {
	if len(changes) == 0 {
		return nil
	}
	out := make([]core.PendingOffset, len(changes))
	for i, c := range changes {
		out[i] = c.Offset()
	}
	return out
}
