// Package scan produces highlight ranges from document text with regular
// expressions.
//
// A Scanner is a lightweight stand-in for a real incremental parser. It emits
// absolute, dot-scoped ranges over the whole document plus diagnostic ranges for
// constructs it can tell are broken (an unterminated block comment or string).
package scan

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/dshills/hlsync/internal/renderer/core"
)

// Rule defines a highlighting rule.
type Rule struct {
	// Pattern is the regex pattern to match. Patterns are compiled in
	// multi-line mode, so ^ and $ match at line boundaries.
	Pattern *regexp.Regexp

	// Scope is assigned to matches.
	Scope string

	// Submatch is the submatch index to use (0 for whole match).
	Submatch int
}

// blockKind selects how a delimited construct ends.
type blockKind uint8

const (
	// blockMulti ends at its end delimiter, possibly on a later line.
	blockMulti blockKind = iota
	// blockString ends at its end delimiter on the same line; backslash escapes.
	blockString
	// blockLine ends at the end of the line.
	blockLine
)

// block is a delimited construct.
type block struct {
	start string
	end   string
	scope string
	kind  blockKind
}

// Scanner is a regex-based range producer for one language.
type Scanner struct {
	language   string
	extensions []string
	blocks     []block
	rules      []Rule
	keywords   map[string]string
}

// New creates an empty scanner.
func New(language string, extensions ...string) *Scanner {
	return &Scanner{
		language:   language,
		extensions: extensions,
		keywords:   make(map[string]string),
	}
}

// AddBlock adds a delimited construct that may span lines. A start delimiter
// without a matching end extends to the end of the document and is reported as
// an error.
func (s *Scanner) AddBlock(start, end, scope string) *Scanner {
	s.blocks = append(s.blocks, block{start: start, end: end, scope: scope, kind: blockMulti})
	return s
}

// AddString adds a single-line string literal delimited by delim.
// An unterminated literal is reported as an error up to the end of its line.
func (s *Scanner) AddString(delim, scope string) *Scanner {
	s.blocks = append(s.blocks, block{start: delim, end: delim, scope: scope, kind: blockString})
	return s
}

// AddLineComment adds a comment running from start to the end of the line.
func (s *Scanner) AddLineComment(start, scope string) *Scanner {
	s.blocks = append(s.blocks, block{start: start, scope: scope, kind: blockLine})
	return s
}

// AddRule adds a highlighting rule. Rules added first take precedence.
func (s *Scanner) AddRule(pattern, scope string) *Scanner {
	s.rules = append(s.rules, Rule{Pattern: regexp.MustCompile("(?m)" + pattern), Scope: scope})
	return s
}

// AddKeywords adds keywords with a specific scope.
func (s *Scanner) AddKeywords(scope string, keywords ...string) *Scanner {
	for _, kw := range keywords {
		s.keywords[kw] = scope
	}
	return s
}

// Language returns the language name.
func (s *Scanner) Language() string {
	return s.language
}

// FileExtensions returns the supported file extensions.
func (s *Scanner) FileExtensions() []string {
	return s.extensions
}

// Scan returns the highlight and error ranges of text, each sorted by StartIndex.
func (s *Scanner) Scan(text string) (highlights, errors []core.HighlightRange) {
	covered := make([]bool, len(text))

	highlights, errors = s.scanBlocks(text, covered)

	for _, rule := range s.rules {
		for _, m := range rule.Pattern.FindAllStringSubmatchIndex(text, -1) {
			start, end := m[0], m[1]
			if rule.Submatch > 0 && len(m) > rule.Submatch*2+1 {
				start, end = m[rule.Submatch*2], m[rule.Submatch*2+1]
			}
			if start >= 0 && end > start && !isCovered(covered, start, end) {
				highlights = append(highlights, core.HighlightRange{StartIndex: start, EndIndex: end, Scope: rule.Scope})
				markCovered(covered, start, end)
			}
		}
	}

	highlights = append(highlights, s.scanKeywords(text, covered)...)

	sortRanges(highlights)
	sortRanges(errors)
	return highlights, errors
}

// scanBlocks claims delimited constructs left to right.
func (s *Scanner) scanBlocks(text string, covered []bool) (highlights, errors []core.HighlightRange) {
	// next caches the position of each block's next start delimiter so the
	// document is searched once per block rather than once per construct.
	next := make([]int, len(s.blocks))
	for i := range next {
		next[i] = -1
	}

	pos := 0
	for pos < len(text) {
		first, at := -1, len(text)
		for i, b := range s.blocks {
			if next[i] != len(text) && next[i] < pos {
				next[i] = len(text)
				if idx := strings.Index(text[pos:], b.start); idx >= 0 {
					next[i] = pos + idx
				}
			}
			if next[i] < at {
				first, at = i, next[i]
			}
		}
		if first < 0 {
			break
		}

		b := s.blocks[first]
		bodyStart := at + len(b.start)
		end, ok := b.findEnd(text, bodyStart)
		if !ok {
			errEnd := bodyStart
			if b.kind == blockString {
				errEnd = end
			}
			errors = append(errors, core.HighlightRange{StartIndex: at, EndIndex: errEnd, Scope: core.ScopeError})
		}

		highlights = append(highlights, core.HighlightRange{StartIndex: at, EndIndex: end, Scope: b.scope})
		markCovered(covered, at, end)
		pos = max(end, bodyStart)
	}
	return highlights, errors
}

// findEnd returns the offset one past the construct starting its body at from.
// ok is false for an unterminated construct.
func (b block) findEnd(text string, from int) (end int, ok bool) {
	switch b.kind {
	case blockLine:
		if idx := strings.IndexByte(text[from:], '\n'); idx >= 0 {
			return from + idx, true
		}
		return len(text), true
	case blockString:
		for i := from; i < len(text); i++ {
			switch {
			case text[i] == '\\':
				i++
			case text[i] == '\n':
				return i, false
			case strings.HasPrefix(text[i:], b.end):
				return i + len(b.end), true
			}
		}
		return len(text), false
	default:
		if idx := strings.Index(text[from:], b.end); idx >= 0 {
			return from + idx + len(b.end), true
		}
		return len(text), false
	}
}

// scanKeywords finds uncovered identifiers that are keywords.
func (s *Scanner) scanKeywords(text string, covered []bool) []core.HighlightRange {
	var out []core.HighlightRange

	i := 0
	for i < len(text) {
		r := rune(text[i])
		if covered[i] || !(unicode.IsLetter(r) || r == '_') {
			i++
			continue
		}

		start := i
		for i < len(text) {
			r = rune(text[i])
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
				break
			}
			i++
		}

		if isCovered(covered, start, i) {
			continue
		}
		if scope, ok := s.keywords[text[start:i]]; ok {
			out = append(out, core.HighlightRange{StartIndex: start, EndIndex: i, Scope: scope})
		}
	}

	return out
}

// isCovered checks if any byte of [start, end) is already covered.
func isCovered(covered []bool, start, end int) bool {
	for i := max(start, 0); i < end && i < len(covered); i++ {
		if covered[i] {
			return true
		}
	}
	return false
}

// markCovered marks [start, end) as covered.
func markCovered(covered []bool, start, end int) {
	for i := max(start, 0); i < end && i < len(covered); i++ {
		covered[i] = true
	}
}

func sortRanges(ranges []core.HighlightRange) {
	sort.SliceStable(ranges, func(i, j int) bool {
		return ranges[i].StartIndex < ranges[j].StartIndex
	})
}
