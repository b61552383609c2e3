package scan

import (
	"sync"

	"github.com/dshills/hlsync/internal/renderer/core"
)

// Parser turns successive document texts into generation-stamped snapshots.
// Each Parse replaces both snapshots atomically with a new generation, so
// readers never observe a partial result. A Parser is safe for concurrent use.
type Parser struct {
	scanner *Scanner

	mu         sync.RWMutex
	generation uint64
	highlights core.Snapshot
	errors     core.Snapshot
}

// NewParser creates a parser backed by s.
func NewParser(s *Scanner) *Parser {
	return &Parser{scanner: s}
}

// Parse scans text and publishes the result. It returns the new generation.
func (p *Parser) Parse(text string) uint64 {
	hl, errs := p.scanner.Scan(text)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.generation++
	p.highlights = core.Snapshot{Generation: p.generation, Ranges: hl}
	p.errors = core.Snapshot{Generation: p.generation, Ranges: errs}
	return p.generation
}

// Generation returns the generation of the last Parse.
func (p *Parser) Generation() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.generation
}

// Highlights returns the current syntax snapshot.
func (p *Parser) Highlights() core.Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.highlights
}

// Errors returns the current diagnostic snapshot.
func (p *Parser) Errors() core.Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.errors
}
