package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/dshills/hlsync/internal/renderer/core"
)

func collect(c Candidates) []core.HighlightRange {
	out := make([]core.HighlightRange, 0, c.Len())
	for i := 0; i < c.Len(); i++ {
		out = append(out, c.At(i))
	}
	return out
}

func TestBuildSkipsDegenerateRanges(t *testing.T) {
	ranges := []core.HighlightRange{
		{StartIndex: 0, EndIndex: 5, Scope: "keyword"},
		{StartIndex: 7, EndIndex: 7, Scope: "empty"},
		{StartIndex: 9, EndIndex: 8, Scope: "inverted"},
	}

	ix := Build(ranges, DefaultOptions())
	got := collect(ix.Query(0, 20))

	require.Len(t, got, 1)
	assert.Equal(t, "keyword", got[0].Scope)
}

func TestQuerySingleBucket(t *testing.T) {
	ranges := []core.HighlightRange{
		{StartIndex: 0, EndIndex: 5, Scope: "keyword"},
		{StartIndex: 10, EndIndex: 16, Scope: "string"},
		{StartIndex: 600, EndIndex: 610, Scope: "comment"},
	}

	ix := Build(ranges, DefaultOptions())
	got := collect(ix.Query(10, 16))

	require.Len(t, got, 2, "chunk 0 holds both ranges below 512")
	assert.Equal(t, "keyword", got[0].Scope)
	assert.Equal(t, "string", got[1].Scope)
}

func TestQuerySingleBucketDoesNotAllocate(t *testing.T) {
	ranges := []core.HighlightRange{
		{StartIndex: 0, EndIndex: 5, Scope: "keyword"},
		{StartIndex: 10, EndIndex: 16, Scope: "string"},
	}
	ix := Build(ranges, DefaultOptions())

	allocs := testing.AllocsPerRun(100, func() {
		c := ix.Query(10, 16)
		_ = c.Len()
	})
	assert.Zero(t, allocs)
}

func TestQueryAcrossBucketsRemovesDuplicates(t *testing.T) {
	opts := Options{ChunkSize: 8, OverflowChunks: 10}
	ranges := []core.HighlightRange{
		{StartIndex: 2, EndIndex: 20, Scope: "spans-three"},
		{StartIndex: 9, EndIndex: 11, Scope: "mid"},
		{StartIndex: 17, EndIndex: 18, Scope: "late"},
	}

	ix := Build(ranges, opts)
	got := collect(ix.Query(4, 20))

	require.Len(t, got, 3)
	assert.Equal(t, "spans-three", got[0].Scope)
	assert.Equal(t, "mid", got[1].Scope)
	assert.Equal(t, "late", got[2].Scope)
}

func TestOverflowRangesAreAlwaysCandidates(t *testing.T) {
	opts := Options{ChunkSize: 8, OverflowChunks: 2}
	ranges := []core.HighlightRange{
		{StartIndex: 0, EndIndex: 100, Scope: "comment.block"},
		{StartIndex: 50, EndIndex: 52, Scope: "keyword"},
	}

	ix := Build(ranges, opts)
	assert.Equal(t, 1, ix.Overflow())

	got := collect(ix.Query(50, 53))
	require.Len(t, got, 2)
	assert.Equal(t, "comment.block", got[0].Scope)
	assert.Equal(t, "keyword", got[1].Scope)

	far := collect(ix.Query(5000, 5010))
	require.Len(t, far, 1, "overflow ranges are returned even past the last bucket")
}

func TestQueryOutOfRange(t *testing.T) {
	ix := Build([]core.HighlightRange{{StartIndex: 0, EndIndex: 5, Scope: "keyword"}}, DefaultOptions())

	assert.Zero(t, ix.Query(10000, 10010).Len())
	assert.Equal(t, 1, ix.Query(-20, 3).Len())
}

func TestNilIndex(t *testing.T) {
	var ix *Index
	assert.Zero(t, ix.Query(0, 10).Len())
	assert.Zero(t, ix.Len())
}

func TestSliceCandidates(t *testing.T) {
	ranges := []core.HighlightRange{
		{StartIndex: 0, EndIndex: 5, Scope: "a"},
		{StartIndex: 5, EndIndex: 9, Scope: "b"},
	}
	c := Slice(ranges)

	require.Equal(t, 2, c.Len())
	assert.Equal(t, "b", c.At(1).Scope)
	assert.Zero(t, Slice(nil).Len())
}

func TestQueryNeverUnderApproximates(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		opts := Options{
			ChunkSize:      rapid.IntRange(1, 64).Draw(t, "chunk"),
			OverflowChunks: rapid.IntRange(1, 4).Draw(t, "overflow"),
		}

		n := rapid.IntRange(0, 40).Draw(t, "n")
		ranges := make([]core.HighlightRange, 0, n)
		for i := 0; i < n; i++ {
			start := rapid.IntRange(0, 2000).Draw(t, "start")
			length := rapid.IntRange(1, 400).Draw(t, "len")
			ranges = append(ranges, core.HighlightRange{StartIndex: start, EndIndex: start + length})
		}
		ranges = core.Sanitize(ranges)

		ix := Build(ranges, opts)
		qs := rapid.IntRange(0, 2500).Draw(t, "qs")
		qe := qs + rapid.IntRange(1, 200).Draw(t, "ql")
		got := ix.Query(qs, qe)

		seen := make(map[core.HighlightRange]int)
		prev := -1
		for i := 0; i < got.Len(); i++ {
			r := got.At(i)
			if r.StartIndex < prev {
				t.Fatalf("candidates out of order at %d", i)
			}
			prev = r.StartIndex
			seen[r]++
		}

		want := make(map[core.HighlightRange]int)
		for _, r := range ranges {
			want[r]++
		}
		for _, r := range ranges {
			if r.Intersects(qs, qe) && seen[r] < want[r] {
				t.Fatalf("range %v intersects [%d,%d) but is missing", r, qs, qe)
			}
		}
		for r, count := range seen {
			if count > want[r] {
				t.Fatalf("range %v returned %d times, want at most %d", r, count, want[r])
			}
		}
	})
}
