package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/hlsync/internal/renderer/core"
)

// scopesOf returns the text and scope of every range.
func scopesOf(text string, ranges []core.HighlightRange) [][2]string {
	out := make([][2]string, 0, len(ranges))
	for _, r := range ranges {
		out = append(out, [2]string{text[r.StartIndex:r.EndIndex], r.Scope})
	}
	return out
}

func TestGoScan(t *testing.T) {
	text := "package main\n\n// entry\nfunc main() {\n\tx := \"a // b\"\n\treturn 0x1F\n}\n"

	hl, errs := Go().Scan(text)
	assert.Empty(t, errs)
	assert.Equal(t, [][2]string{
		{"package", "keyword.other"},
		{"// entry", "comment.line"},
		{"func", "keyword.declaration"},
		{`"a // b"`, "string.quoted"},
		{"return", "keyword.control"},
		{"0x1F", "constant.numeric.hex"},
	}, scopesOf(text, hl))
}

func TestBlockCommentSpansLines(t *testing.T) {
	text := "a /* one\ntwo */ if"

	hl, errs := Go().Scan(text)
	assert.Empty(t, errs)
	require.Len(t, hl, 2)
	assert.Equal(t, core.HighlightRange{StartIndex: 2, EndIndex: 15, Scope: "comment.block"}, hl[0])
	assert.Equal(t, "keyword.control", hl[1].Scope)
}

func TestUnterminatedConstructs(t *testing.T) {
	t.Run("block", func(t *testing.T) {
		text := "x /* never closed\nfunc"
		hl, errs := Go().Scan(text)

		require.Len(t, errs, 1)
		assert.Equal(t, core.HighlightRange{StartIndex: 2, EndIndex: 4, Scope: core.ScopeError}, errs[0])
		require.Len(t, hl, 1)
		assert.Equal(t, len(text), hl[0].EndIndex, "comment runs to the end of the document")
	})

	t.Run("string", func(t *testing.T) {
		text := "s := \"open\nreturn"
		hl, errs := Go().Scan(text)

		require.Len(t, errs, 1)
		assert.Equal(t, `"open`, text[errs[0].StartIndex:errs[0].EndIndex])
		assert.Equal(t, [][2]string{
			{`"open`, "string.quoted"},
			{"return", "keyword.control"},
		}, scopesOf(text, hl))
	})
}

func TestStringEscapes(t *testing.T) {
	text := `"a\"b" if`
	hl, errs := Go().Scan(text)

	assert.Empty(t, errs)
	assert.Equal(t, [][2]string{
		{`"a\"b"`, "string.quoted"},
		{"if", "keyword.control"},
	}, scopesOf(text, hl))
}

func TestPythonTripleQuotes(t *testing.T) {
	text := "def f():\n    '''doc\n    more'''\n    return None  # done\n"

	hl, errs := Python().Scan(text)
	assert.Empty(t, errs)
	assert.Equal(t, [][2]string{
		{"def", "keyword.declaration"},
		{"'''doc\n    more'''", "string.quoted.triple"},
		{"return", "keyword.control"},
		{"None", "constant.language"},
		{"# done", "comment.line"},
	}, scopesOf(text, hl))
}

func TestScanOutputIsSortedAndValid(t *testing.T) {
	text := "var a = 1 // x\nconst b = \"s\" /* c */ + 2\n"
	hl, _ := Go().Scan(text)

	for i, r := range hl {
		assert.True(t, r.Valid(), "range %v", r)
		if i > 0 {
			assert.LessOrEqual(t, hl[i-1].StartIndex, r.StartIndex)
		}
	}
	assert.Equal(t, hl, core.Sanitize(hl))
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()

	assert.Equal(t, []string{"go", "python"}, r.Languages())

	s, ok := r.ForFile("/src/main.go")
	require.True(t, ok)
	assert.Equal(t, "go", s.Language())

	_, ok = r.ForFile("README")
	assert.False(t, ok)

	s, ok = r.ByLanguage("python")
	require.True(t, ok)
	assert.Contains(t, s.FileExtensions(), ".py")
}

func TestParserGenerations(t *testing.T) {
	p := NewParser(Go())
	assert.Zero(t, p.Generation())

	gen := p.Parse("func /*")
	assert.Equal(t, uint64(1), gen)
	assert.Equal(t, gen, p.Highlights().Generation)
	assert.Equal(t, gen, p.Errors().Generation)
	assert.Len(t, p.Errors().Ranges, 1)

	p.Parse("func")
	assert.Equal(t, uint64(2), p.Highlights().Generation)
	assert.Empty(t, p.Errors().Ranges)
}
