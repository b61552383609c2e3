package core

import (
	"testing"
)

func TestHighlightRangeValid(t *testing.T) {
	tests := []struct {
		name string
		r    HighlightRange
		want bool
	}{
		{"normal", HighlightRange{StartIndex: 0, EndIndex: 5}, true},
		{"empty", HighlightRange{StartIndex: 5, EndIndex: 5}, false},
		{"inverted", HighlightRange{StartIndex: 6, EndIndex: 5}, false},
		{"negative start", HighlightRange{StartIndex: -1, EndIndex: 5}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHighlightRangeIntersects(t *testing.T) {
	r := HighlightRange{StartIndex: 10, EndIndex: 20}

	if !r.Intersects(15, 16) {
		t.Error("range should intersect an interior span")
	}
	if !r.Intersects(0, 11) {
		t.Error("range should intersect a span overlapping its start")
	}
	if r.Intersects(20, 30) {
		t.Error("range should not intersect a span starting at its end")
	}
	if r.Intersects(0, 10) {
		t.Error("range should not intersect a span ending at its start")
	}
}

func TestSanitizeCleanInputIsReturnedAsIs(t *testing.T) {
	in := []HighlightRange{
		{StartIndex: 0, EndIndex: 5, Scope: "keyword"},
		{StartIndex: 6, EndIndex: 9, Scope: "string"},
	}

	out := Sanitize(in)
	if &out[0] != &in[0] {
		t.Error("Sanitize should return the input slice when it is already clean")
	}
}

func TestSanitizeDropsDegenerateRanges(t *testing.T) {
	in := []HighlightRange{
		{StartIndex: 0, EndIndex: 5, Scope: "keyword"},
		{StartIndex: 5, EndIndex: 5, Scope: "empty"},
		{StartIndex: 9, EndIndex: 7, Scope: "inverted"},
		{StartIndex: 10, EndIndex: 12, Scope: "string"},
	}

	out := Sanitize(in)
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	if out[0].Scope != "keyword" || out[1].Scope != "string" {
		t.Errorf("unexpected ranges %v", out)
	}
	if len(in) != 4 {
		t.Error("Sanitize must not modify its input")
	}
}

func TestSanitizeRestoresOrder(t *testing.T) {
	in := []HighlightRange{
		{StartIndex: 10, EndIndex: 12, Scope: "b"},
		{StartIndex: 0, EndIndex: 5, Scope: "a"},
		{StartIndex: 10, EndIndex: 11, Scope: "c"},
	}

	out := Sanitize(in)
	want := []string{"a", "b", "c"}
	for i, w := range want {
		if out[i].Scope != w {
			t.Errorf("out[%d].Scope = %q, want %q", i, out[i].Scope, w)
		}
	}
	if in[0].Scope != "b" {
		t.Error("Sanitize must not reorder its input")
	}
}

func TestLineEntryEnd(t *testing.T) {
	e := LineEntry{Start: 10, Length: 6, Text: "const"}
	if got := e.End(); got != 16 {
		t.Errorf("End() = %d, want 16", got)
	}

	short := LineEntry{Start: 10, Length: 2, Text: "const"}
	if got := short.End(); got != 15 {
		t.Errorf("End() with short length = %d, want 15", got)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		v, lo, hi, want int
	}{
		{-3, 0, 10, 0},
		{3, 0, 10, 3},
		{13, 0, 10, 10},
	}

	for _, tt := range tests {
		if got := Clamp(tt.v, tt.lo, tt.hi); got != tt.want {
			t.Errorf("Clamp(%d, %d, %d) = %d, want %d", tt.v, tt.lo, tt.hi, got, tt.want)
		}
	}
}
