// Package bench replays editing sessions against a highlight Session.
package bench

import (
	"fmt"
	"strings"

	"github.com/dshills/hlsync/internal/renderer/core"
	"github.com/dshills/hlsync/internal/renderer/highlight"
	"github.com/dshills/hlsync/internal/renderer/scan"
)

// Document is an in-memory line buffer that records edits as pending offsets
// until the next parse confirms them.
type Document struct {
	lines   []string
	ids     []uint64
	starts  []int
	nextID  uint64
	offsets []core.PendingOffset
	version uint64
}

// NewDocument splits text into lines. A trailing newline does not start an
// extra line.
func NewDocument(text string) *Document {
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	d := &Document{lines: lines}
	for range lines {
		d.nextID++
		d.ids = append(d.ids, d.nextID)
	}
	d.reindex(0)
	return d
}

// reindex recomputes line starts from line i on.
func (d *Document) reindex(i int) {
	d.starts = d.starts[:i]
	pos := 0
	if i > 0 {
		pos = d.starts[i-1] + len(d.lines[i-1]) + 1
	}
	for _, l := range d.lines[i:] {
		d.starts = append(d.starts, pos)
		pos += len(l) + 1
	}
}

// LineCount returns the number of lines.
func (d *Document) LineCount() int {
	return len(d.lines)
}

// Text returns the document with every line newline-terminated.
func (d *Document) Text() string {
	return strings.Join(d.lines, "\n") + "\n"
}

// Version returns the number of edits applied.
func (d *Document) Version() uint64 {
	return d.version
}

// Pending returns the edits not yet confirmed by a parse.
func (d *Document) Pending() []core.PendingOffset {
	return d.offsets
}

// Entry returns the current entry of line i.
func (d *Document) Entry(i int) core.LineEntry {
	return core.LineEntry{
		LineID: d.ids[i],
		Index:  i,
		Start:  d.starts[i],
		Length: len(d.lines[i]) + 1,
		Text:   d.lines[i],
	}
}

// Insert inserts text at column col of line. text must not contain a newline.
func (d *Document) Insert(line, col int, text string) error {
	if line < 0 || line >= len(d.lines) {
		return fmt.Errorf("insert: line %d out of range [0, %d)", line, len(d.lines))
	}
	if col < 0 || col > len(d.lines[line]) {
		return fmt.Errorf("insert: column %d out of range [0, %d]", col, len(d.lines[line]))
	}
	if strings.ContainsRune(text, '\n') {
		return fmt.Errorf("insert: text spans lines")
	}
	if text == "" {
		return nil
	}

	from := d.starts[line] + col
	d.lines[line] = d.lines[line][:col] + text + d.lines[line][col:]
	d.offsets = append(d.offsets, core.PendingOffset{
		FromCharIndex: from,
		NewEndIndex:   from + len(text),
		CharDelta:     len(text),
	})
	d.version++
	d.reindex(line + 1)
	return nil
}

// Delete removes bytes [from, to) of line.
func (d *Document) Delete(line, from, to int) error {
	if line < 0 || line >= len(d.lines) {
		return fmt.Errorf("delete: line %d out of range [0, %d)", line, len(d.lines))
	}
	if from < 0 || to > len(d.lines[line]) || from > to {
		return fmt.Errorf("delete: span [%d, %d) out of range [0, %d]", from, to, len(d.lines[line]))
	}
	if from == to {
		return nil
	}

	abs := d.starts[line] + from
	d.lines[line] = d.lines[line][:from] + d.lines[line][to:]
	d.offsets = append(d.offsets, core.PendingOffset{
		FromCharIndex: abs,
		NewEndIndex:   abs,
		CharDelta:     from - to,
	})
	d.version++
	d.reindex(line + 1)
	return nil
}

// Confirm parses the document and clears the pending edits the parse now
// accounts for.
func (d *Document) Confirm(p *scan.Parser) uint64 {
	gen := p.Parse(d.Text())
	d.offsets = nil
	return gen
}

// Capabilities returns session accessors reading d and p.
func (d *Document) Capabilities(p *scan.Parser) highlight.Capabilities {
	return highlight.Capabilities{
		LineCount:      d.LineCount,
		LineStart:      func(i int) int { return d.starts[i] },
		LineLength:     func(i int) int { return len(d.lines[i]) + 1 },
		LineText:       func(i int) string { return d.lines[i] },
		LineID:         func(i int) uint64 { return d.ids[i] },
		PendingOffsets: d.Pending,
		Version:        d.Version,
		Highlights:     p.Highlights,
		Errors:         p.Errors,
	}
}
