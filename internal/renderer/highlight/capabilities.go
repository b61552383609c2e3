package highlight

import (
	"fmt"

	"github.com/dshills/hlsync/internal/logging"
	"github.com/dshills/hlsync/internal/renderer/core"
)

// Logger receives session diagnostics. *log.Logger from charmbracelet/log
// satisfies it.
type Logger interface {
	Debug(msg interface{}, keyvals ...interface{})
	Warn(msg interface{}, keyvals ...interface{})
	Error(msg interface{}, keyvals ...interface{})
}

// EditFallback supplies segments for a line containing a pending edit.
// clip is the first edited column; only segments at or after it are used.
type EditFallback func(entry core.LineEntry, clip int) []core.Segment

// Capabilities are the accessors a Session reads the document and parser
// through. Every accessor must be a pure, non-blocking read.
type Capabilities struct {
	// LineCount returns the number of lines. Required.
	LineCount func() int
	// LineStart returns the absolute offset of line i. Required.
	LineStart func(i int) int
	// LineLength returns the span of line i including its terminator. Required.
	LineLength func(i int) int
	// LineText returns the content of line i without its terminator. Required.
	LineText func(i int) string
	// Highlights returns the parser's current syntax snapshot. Required.
	Highlights func() core.Snapshot

	// LineID returns a stable identity for line i, or 0.
	LineID func(i int) uint64
	// PendingOffsets returns the edits not yet reflected in the snapshots.
	PendingOffsets func() []core.PendingOffset
	// Version returns the document version, bumped on every edit.
	Version func() uint64
	// Errors returns the parser's current diagnostic snapshot.
	// Without it the diagnostic layer is empty.
	Errors func() core.Snapshot
	// Scopes maps scopes to classes. Defaults to core.IdentityResolver.
	Scopes core.ScopeResolver
	// Logger receives warnings and recovered panics. Defaults to discarding.
	Logger Logger
	// EditFallback supplies segments past the edit on edited lines.
	EditFallback EditFallback
}

// validate reports the first missing required accessor.
func (c *Capabilities) validate() error {
	required := []struct {
		name    string
		missing bool
	}{
		{"LineCount", c.LineCount == nil},
		{"LineStart", c.LineStart == nil},
		{"LineLength", c.LineLength == nil},
		{"LineText", c.LineText == nil},
		{"Highlights", c.Highlights == nil},
	}
	for _, r := range required {
		if r.missing {
			return fmt.Errorf("%w: %s", ErrMissingAccessor, r.name)
		}
	}
	return nil
}

// withDefaults fills every optional accessor with a no-op.
func (c Capabilities) withDefaults() Capabilities {
	if c.LineID == nil {
		c.LineID = func(int) uint64 { return 0 }
	}
	if c.PendingOffsets == nil {
		c.PendingOffsets = func() []core.PendingOffset { return nil }
	}
	if c.Version == nil {
		c.Version = func() uint64 { return 0 }
	}
	if c.Errors == nil {
		c.Errors = func() core.Snapshot { return core.Snapshot{} }
	}
	if c.Scopes == nil {
		c.Scopes = core.IdentityResolver
	}
	if c.Logger == nil {
		c.Logger = logging.Discard()
	}
	if c.EditFallback == nil {
		c.EditFallback = func(core.LineEntry, int) []core.Segment { return nil }
	}
	return c
}

// lines adapts Capabilities to precompute.Lines.
type lines struct {
	caps *Capabilities
}

func (l lines) LineCount() int { return l.caps.LineCount() }
func (l lines) LineStart(i int) int { return l.caps.LineStart(i) }
func (l lines) LineLength(i int) int { return l.caps.LineLength(i) }
func (l lines) LineText(i int) string { return l.caps.LineText(i) }
func (l lines) LineID(i int) uint64 { return l.caps.LineID(i) }
