// Package spatial provides a chunk-bucketed lookup structure over highlight ranges.
//
// The document is divided into fixed-size chunks. Each range is recorded in every
// chunk it overlaps, so a query for one line touches one or two buckets instead of
// scanning the whole range list. Ranges longer than a configurable number of chunks
// (a large block comment, for example) are kept in a separate overflow list that is
// included in every query, which keeps bucket sizes proportional to local density.
package spatial

import (
	"slices"

	"github.com/dshills/hlsync/internal/renderer/core"
)

// Default index parameters.
const (
	DefaultChunkSize      = 512
	DefaultOverflowChunks = 10
)

// Options configures an Index.
type Options struct {
	// ChunkSize is the bucket width in bytes.
	ChunkSize int

	// OverflowChunks is the span, in chunks, above which a range is
	// stored in the overflow list instead of the buckets.
	OverflowChunks int
}

// DefaultOptions returns the default index options.
func DefaultOptions() Options {
	return Options{
		ChunkSize:      DefaultChunkSize,
		OverflowChunks: DefaultOverflowChunks,
	}
}

// Index is an immutable bucketed view over a sorted range slice.
// Query reuses an internal scratch buffer, so an Index must not be queried
// from multiple goroutines at once.
type Index struct {
	ranges   []core.HighlightRange
	buckets  [][]int32
	overflow []int32
	chunk    int
	scratch  []int32
}

// Build creates an index over ranges.
// Ranges must be sorted by StartIndex; degenerate ranges are skipped.
// The index keeps a reference to ranges, which must not be modified afterwards.
func Build(ranges []core.HighlightRange, opts Options) *Index {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.OverflowChunks <= 0 {
		opts.OverflowChunks = DefaultOverflowChunks
	}

	ix := &Index{
		ranges: ranges,
		chunk:  opts.ChunkSize,
	}

	maxEnd := 0
	for _, r := range ranges {
		if r.Valid() && r.EndIndex > maxEnd {
			maxEnd = r.EndIndex
		}
	}
	if maxEnd == 0 {
		return ix
	}

	ix.buckets = make([][]int32, (maxEnd-1)/ix.chunk+1)
	limit := opts.OverflowChunks * ix.chunk

	for i, r := range ranges {
		if !r.Valid() {
			continue
		}
		if r.Len() > limit {
			ix.overflow = append(ix.overflow, int32(i))
			continue
		}
		first := r.StartIndex / ix.chunk
		last := (r.EndIndex - 1) / ix.chunk
		for c := first; c <= last; c++ {
			ix.buckets[c] = append(ix.buckets[c], int32(i))
		}
	}

	return ix
}

// Len returns the number of ranges the index was built over.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.ranges)
}

// Overflow returns the number of ranges held in the overflow list.
func (ix *Index) Overflow() int {
	if ix == nil {
		return 0
	}
	return len(ix.overflow)
}

// Query returns the ranges that may intersect [start, end).
// The result may contain ranges that do not intersect the span but never omits
// one that does. Candidates are in ascending StartIndex order without duplicates.
// The returned view is only valid until the next call to Query.
func (ix *Index) Query(start, end int) Candidates {
	if ix == nil || len(ix.ranges) == 0 {
		return Candidates{}
	}
	if start < 0 {
		start = 0
	}
	if end <= start {
		end = start + 1
	}

	first := start / ix.chunk
	last := (end - 1) / ix.chunk
	if n := len(ix.buckets); last >= n {
		last = n - 1
	}

	if first == last && len(ix.overflow) == 0 {
		return Candidates{ranges: ix.ranges, idx: ix.buckets[first]}
	}

	buf := append(ix.scratch[:0], ix.overflow...)
	for c := first; c <= last; c++ {
		buf = append(buf, ix.buckets[c]...)
	}
	// Source order is StartIndex order, so sorting indices sorts by start
	// and makes bucket duplicates adjacent.
	slices.Sort(buf)
	buf = slices.Compact(buf)
	ix.scratch = buf

	return Candidates{ranges: ix.ranges, idx: buf}
}

// Candidates is a read-only view over a subset of ranges.
type Candidates struct {
	ranges []core.HighlightRange
	idx    []int32
	direct bool
}

// Slice returns a view over every range in ranges.
func Slice(ranges []core.HighlightRange) Candidates {
	return Candidates{ranges: ranges, direct: true}
}

// Len returns the number of candidates.
func (c Candidates) Len() int {
	if c.direct {
		return len(c.ranges)
	}
	return len(c.idx)
}

// At returns the i-th candidate.
func (c Candidates) At(i int) core.HighlightRange {
	if c.direct {
		return c.ranges[i]
	}
	return c.ranges[c.idx[i]]
}
