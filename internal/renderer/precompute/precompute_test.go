package precompute

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/hlsync/internal/renderer/core"
	"github.com/dshills/hlsync/internal/renderer/segment"
	"github.com/dshills/hlsync/internal/renderer/spatial"
)

// testDoc is a document made of newline-terminated lines.
type testDoc struct {
	lines  []string
	starts []int
	ids    []uint64
}

func newTestDoc(lines ...string) *testDoc {
	d := &testDoc{lines: lines}
	pos := 0
	for i, l := range lines {
		d.starts = append(d.starts, pos)
		d.ids = append(d.ids, uint64(i+100))
		pos += len(l) + 1
	}
	return d
}

func (d *testDoc) LineCount() int { return len(d.lines) }
func (d *testDoc) LineStart(i int) int { return d.starts[i] }
func (d *testDoc) LineLength(i int) int { return len(d.lines[i]) + 1 }
func (d *testDoc) LineText(i int) string { return d.lines[i] }
func (d *testDoc) LineID(i int) uint64 { return d.ids[i] }

func TestComputeAllMatchesPerLineBuild(t *testing.T) {
	doc := newTestDoc(
		"package main",
		"",
		"/* block",
		"   comment */",
		"func main() {",
		"\tprintln(\"hi\")",
		"}",
	)
	highlights := []core.HighlightRange{
		{StartIndex: 0, EndIndex: 7, Scope: "keyword"},
		{StartIndex: 8, EndIndex: 12, Scope: "entity.name"},
		{StartIndex: 14, EndIndex: 36, Scope: "comment.block"},
		{StartIndex: 37, EndIndex: 41, Scope: "keyword"},
		{StartIndex: 42, EndIndex: 46, Scope: "entity.name.function"},
		{StartIndex: 60, EndIndex: 64, Scope: "string"},
	}
	errors := []core.HighlightRange{
		{StartIndex: 44, EndIndex: 52, Scope: core.ScopeError},
	}

	b := segment.NewBuilder(nil)
	res := ComputeAll(doc, highlights, errors, b)
	require.Equal(t, doc.LineCount(), res.Len())

	for i := 0; i < doc.LineCount(); i++ {
		line := segment.Line{Start: doc.LineStart(i), TextLength: len(doc.LineText(i))}
		want := segment.Merge(
			b.ForLine(line, core.LayerSyntax, spatial.Slice(highlights), 0),
			b.ForLine(line, core.LayerDiagnostic, spatial.Slice(errors), 0),
		)
		assert.Equal(t, want, res.Segments[i], "line %d", i)
	}

	// The block comment spans lines 2 and 3.
	require.Len(t, res.Segments[3], 1)
	assert.Equal(t, core.Segment{Start: 0, End: 13, Class: "comment.block", Scope: "comment.block"}, res.Segments[3][0])
}

func TestComputeAllLargeDocument(t *testing.T) {
	const n = 10000
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("var x%d = %d", i, i)
	}
	doc := newTestDoc(lines...)

	highlights := make([]core.HighlightRange, 0, n)
	for i := 0; i < n; i++ {
		start := doc.LineStart(i)
		highlights = append(highlights, core.HighlightRange{StartIndex: start, EndIndex: start + 3, Scope: "keyword"})
	}

	res := ComputeAll(doc, highlights, nil, segment.NewBuilder(nil))

	for _, i := range []int{0, n / 2, n - 1} {
		segs, ok := res.Lookup(core.LineEntry{Index: i, Text: lines[i]})
		require.True(t, ok, "line %d", i)
		require.Len(t, segs, 1)
		assert.Equal(t, 3, segs[0].End)
	}
}

func TestResultLookup(t *testing.T) {
	doc := newTestDoc("const a", "const b")
	res := ComputeAll(doc, []core.HighlightRange{{StartIndex: 8, EndIndex: 13, Scope: "keyword"}}, nil, segment.NewBuilder(nil))

	segs, ok := res.Lookup(core.LineEntry{Index: 1, Text: "const b"})
	require.True(t, ok)
	require.Len(t, segs, 1)

	again, _ := res.Lookup(core.LineEntry{Index: 1, Text: "const b"})
	assert.Same(t, &segs[0], &again[0], "lookups return the stored slice")

	byID, ok := res.Lookup(core.LineEntry{LineID: 101, Index: 0, Text: "const b"})
	require.True(t, ok, "stable id takes precedence over index")
	assert.Same(t, &segs[0], &byID[0])

	_, ok = res.Lookup(core.LineEntry{Index: 1, Text: "const c"})
	assert.False(t, ok, "text mismatch must miss")

	_, ok = res.Lookup(core.LineEntry{Index: 5, Text: "const b"})
	assert.False(t, ok)

	var nilRes *Result
	_, ok = nilRes.Lookup(core.LineEntry{})
	assert.False(t, ok)
}

func TestSweepDropsExpiredRanges(t *testing.T) {
	s := sweep{ranges: []core.HighlightRange{
		{StartIndex: 0, EndIndex: 100, Scope: "long"},
		{StartIndex: 2, EndIndex: 4, Scope: "short"},
		{StartIndex: 20, EndIndex: 25, Scope: "later"},
	}}

	first := s.advance(0, 10)
	require.Equal(t, 2, first.Len())

	second := s.advance(10, 30)
	require.Equal(t, 2, second.Len())
	assert.Equal(t, "long", second.At(0).Scope)
	assert.Equal(t, "later", second.At(1).Scope)

	third := s.advance(150, 160)
	assert.Zero(t, third.Len())
}

func TestMemo(t *testing.T) {
	calls := 0
	m := NewMemo(func(k int) string {
		calls++
		return strings.Repeat("x", k)
	})

	assert.Equal(t, "xx", m.Get(2))
	assert.Equal(t, "xx", m.Get(2))
	assert.Equal(t, 1, calls)

	_, ok := m.Peek(3)
	assert.False(t, ok)

	assert.Equal(t, "xxx", m.Get(3))
	assert.Equal(t, 2, calls)

	v, ok := m.Peek(3)
	assert.True(t, ok)
	assert.Equal(t, "xxx", v)

	m.Reset()
	_, ok = m.Peek(3)
	assert.False(t, ok)
	m.Get(3)
	assert.Equal(t, 3, calls)
	assert.Equal(t, uint64(3), m.Builds())
}
