package highlight

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/hlsync/internal/logging"
	"github.com/dshills/hlsync/internal/renderer/core"
	"github.com/dshills/hlsync/internal/renderer/linecache"
	"github.com/dshills/hlsync/internal/renderer/precompute"
	"github.com/dshills/hlsync/internal/renderer/segment"
	"github.com/dshills/hlsync/internal/renderer/shift"
	"github.com/dshills/hlsync/internal/renderer/spatial"
)

// State is the lifecycle state of a Session.
type State uint8

const (
	// StateRestSynced means no edits are pending; the precompute path is usable.
	StateRestSynced State = iota
	// StateEditing means edits are pending; the lazy path is used.
	StateEditing
	// StateDisposed means the session was closed.
	StateDisposed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateRestSynced:
		return "rest-synced"
	case StateEditing:
		return "editing"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// memoKey identifies the document state a precompute result was built from.
type memoKey struct {
	hlGen     uint64
	errGen    uint64
	version   uint64
	lineCount int
}

// Session owns the highlight overlay state of one open document.
// Sessions are intended for use from a single goroutine; a mutex keeps
// accidental concurrent use safe.
type Session struct {
	mu sync.Mutex

	id      uuid.UUID
	caps    Capabilities
	log     Logger
	opts    spatial.Options
	builder *segment.Builder
	cache   *linecache.Cache
	memo    *precompute.Memo[memoKey, *precompute.Result]

	state      State
	precompute bool

	synced     bool
	hlGen      uint64
	errGen     uint64
	highlights []core.HighlightRange
	errors     []core.HighlightRange

	hlIndex     *spatial.Index
	errIndex    *spatial.Index
	indexStale  bool
	indexBuilds uint64

	revision  uint64
	observers observers
}

// New creates a session over caps. It fails with ErrMissingAccessor when a
// required accessor is nil and with ErrInvalidConfig when a configuration
// passed through WithConfig does not validate.
func New(caps Capabilities, opts ...Option) (*Session, error) {
	if err := caps.validate(); err != nil {
		return nil, fmt.Errorf("creating highlight session: %w", err)
	}

	set := defaultSettings()
	for _, opt := range opts {
		opt(&set)
	}
	if set.cfg != nil {
		if err := set.cfg.Validate(); err != nil {
			return nil, fmt.Errorf("creating highlight session: %w: %w", ErrInvalidConfig, err)
		}
	}

	caps = caps.withDefaults()
	s := &Session{
		id:         uuid.New(),
		caps:       caps,
		log:        caps.Logger,
		opts:       set.spatial,
		builder:    segment.NewBuilder(caps.Scopes),
		cache:      linecache.New(set.cache),
		precompute: set.precompute,
		indexStale: true,
	}
	s.memo = precompute.NewMemo(s.computeAll)
	return s, nil
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id.String()
}

// GetLineHighlights returns the segments of the line described by e.
// The result must not be modified; repeated calls with no intervening change
// return the same slice. It never panics; on an internal failure it logs and
// returns nil.
func (s *Session) GetLineHighlights(e core.LineEntry) []core.Segment {
	segs, rev, bumped := s.lineHighlights(e)
	if bumped {
		s.observers.notify(rev, s.log)
	}
	return segs
}

func (s *Session) lineHighlights(e core.LineEntry) (segs []core.Segment, rev uint64, bumped bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("line highlight computation panicked",
				logging.FieldSession, s.ID(), logging.FieldLine, e.Index, logging.FieldError, r)
			segs, rev = nil, s.revision
		}
	}()

	if s.state == StateDisposed {
		return nil, s.revision, false
	}

	bumped = s.syncLocked()
	return s.computeLocked(e), s.revision, bumped
}

// Refresh checks the parser snapshots for a new generation without rendering.
// It returns the current revision.
func (s *Session) Refresh() uint64 {
	rev, bumped := s.refresh()
	if bumped {
		s.observers.notify(rev, s.log)
	}
	return rev
}

func (s *Session) refresh() (rev uint64, bumped bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("refresh panicked", logging.FieldSession, s.ID(), logging.FieldError, r)
			rev, bumped = s.revision, false
		}
	}()

	if s.state == StateDisposed {
		return s.revision, false
	}
	bumped = s.syncLocked()
	return s.revision, bumped
}

// syncLocked adopts new parser snapshots. It reports whether the revision was
// bumped, which happens on every generation change after the first sync.
func (s *Session) syncLocked() bool {
	hl := s.caps.Highlights()
	errs := s.caps.Errors()
	if s.synced && hl.Generation == s.hlGen && errs.Generation == s.errGen {
		return false
	}

	first := !s.synced
	s.synced = true
	s.hlGen, s.errGen = hl.Generation, errs.Generation
	s.highlights = core.Sanitize(hl.Ranges)
	s.errors = core.Sanitize(errs.Ranges)
	s.indexStale = true
	s.cache.Clear()
	s.memo.Reset()

	if first {
		return false
	}
	s.revision++
	s.log.Debug("highlight generation changed",
		logging.FieldSession, s.ID(), logging.FieldGeneration, s.hlGen, logging.FieldRevision, s.revision)
	return true
}

// computeLocked selects the precompute or lazy path for e.
func (s *Session) computeLocked(e core.LineEntry) []core.Segment {
	offsets := s.caps.PendingOffsets()
	if len(offsets) > 0 {
		s.state = StateEditing
		return s.lazyLocked(e, offsets)
	}

	s.state = StateRestSynced
	if s.precompute {
		res := s.memo.Get(memoKey{
			hlGen:     s.hlGen,
			errGen:    s.errGen,
			version:   s.caps.Version(),
			lineCount: s.caps.LineCount(),
		})
		if segs, ok := res.Lookup(e); ok {
			// Warm the line cache so the first edit after a rest period
			// still hits for lines that were on screen.
			s.cache.Put(linecache.KeyFor(e), validatorFor(e, shift.Result{Clip: -1}), segs)
			return segs
		}
	}
	return s.lazyLocked(e, nil)
}

// lazyLocked computes e from the spatial indexes, translating the last parse
// by the pending offsets.
func (s *Session) lazyLocked(e core.LineEntry, offsets []core.PendingOffset) []core.Segment {
	end := e.End()
	sr := shift.For(e.Start, end, offsets)

	key := linecache.KeyFor(e)
	v := validatorFor(e, sr)
	if segs, ok := s.cache.Get(key, v); ok {
		return segs
	}

	if e.Length < len(e.Text) {
		s.log.Warn("line length shorter than its text",
			logging.FieldSession, s.ID(), logging.FieldLine, e.Index,
			logging.FieldLength, e.Length, logging.FieldTextLength, len(e.Text))
	}

	s.buildIndexesLocked()

	from, to := sr.MapBack(e.Start, end)
	line := segment.Line{Start: e.Start, TextLength: len(e.Text)}
	segs := segment.Merge(
		s.builder.ForLine(line, core.LayerSyntax, s.hlIndex.Query(from, to), sr.Shift),
		s.builder.ForLine(line, core.LayerDiagnostic, s.errIndex.Query(from, to), sr.Shift),
	)

	if sr.Intersects {
		segs = segment.ClipAt(segs, sr.Clip)
		if extra := s.fallbackLocked(e, sr.Clip); len(extra) > 0 {
			segs = segment.Merge(segs, extra)
		}
	}

	s.cache.Put(key, v, segs)
	return segs
}

// fallbackLocked returns the EditFallback segments for columns at or after
// clip, clamped to the line text.
func (s *Session) fallbackLocked(e core.LineEntry, clip int) []core.Segment {
	var out []core.Segment
	for _, seg := range s.caps.EditFallback(e, clip) {
		seg.Start = core.Clamp(seg.Start, clip, len(e.Text))
		seg.End = core.Clamp(seg.End, clip, len(e.Text))
		if seg.Start < seg.End {
			out = append(out, seg)
		}
	}
	return out
}

// buildIndexesLocked rebuilds the spatial indexes after a generation change.
func (s *Session) buildIndexesLocked() {
	if !s.indexStale {
		return
	}
	s.hlIndex = spatial.Build(s.highlights, s.opts)
	s.errIndex = spatial.Build(s.errors, s.opts)
	s.indexStale = false
	s.indexBuilds++
}

// computeAll is the precompute memo's compute function.
// It runs with s.mu held.
func (s *Session) computeAll(key memoKey) *precompute.Result {
	s.log.Debug("precomputing segments",
		logging.FieldSession, s.ID(), logging.FieldLines, key.lineCount, logging.FieldGeneration, key.hlGen)
	return precompute.ComputeAll(lines{caps: &s.caps}, s.highlights, s.errors, s.builder)
}

func validatorFor(e core.LineEntry, sr shift.Result) linecache.Validator {
	return linecache.Validator{Text: e.Text, Length: e.Length, Shift: sr.Shift, Clip: sr.Clip}
}

// Revision checks the parser snapshots for a new generation, like Refresh,
// and returns the current revision.
//
// Generations are observed when the session pulls: GetLineHighlights,
// Refresh and Revision each compare the snapshot generations with the last
// ones seen. The revision moves once per observed change, so several parses
// published between two pulls count as one change.
func (s *Session) Revision() uint64 {
	return s.Refresh()
}

// Subscribe registers o for revision changes and returns a function that
// removes it. Observers run synchronously on the goroutine that pulled the
// change (see Revision), after the session's lock is released. A panicking
// observer is logged at error level and never escapes the session.
func (s *Session) Subscribe(o Observer) (unsubscribe func()) {
	return s.observers.subscribe(o)
}

// State returns the lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// EnablePrecomputedSegments turns the precompute path on. Any previous result
// is discarded so the next computation starts clean.
func (s *Session) EnablePrecomputedSegments() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.precompute = true
	s.memo.Reset()
}

// ReleasePrecomputedSegments turns the precompute path off and frees its result.
func (s *Session) ReleasePrecomputedSegments() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.precompute = false
	s.memo.Reset()
}

// SetScopeResolver replaces the scope resolver, clears computed segments and
// bumps the revision. A nil resolver selects core.IdentityResolver.
func (s *Session) SetScopeResolver(resolve core.ScopeResolver) {
	rev, ok := s.setScopeResolver(resolve)
	if ok {
		s.observers.notify(rev, s.log)
	}
}

func (s *Session) setScopeResolver(resolve core.ScopeResolver) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateDisposed {
		return s.revision, false
	}
	s.builder = segment.NewBuilder(resolve)
	s.cache.Clear()
	s.memo.Reset()
	s.revision++
	return s.revision, true
}

// Dispose frees every cache and index. Later calls to GetLineHighlights
// return nil. Dispose is idempotent.
func (s *Session) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateDisposed {
		return
	}
	s.state = StateDisposed
	s.cache.Clear()
	s.memo.Reset()
	s.hlIndex, s.errIndex = nil, nil
	s.highlights, s.errors = nil, nil
	s.observers.clear()
}

// Stats is a point-in-time summary of a session.
type Stats struct {
	ID                  string
	State               State
	Revision            uint64
	HighlightGeneration uint64
	ErrorGeneration     uint64
	Precompute          bool
	PrecomputeBuilds    uint64
	IndexBuilds         uint64
	Overflow            int
	Subscribers         int
	Cache               linecache.Stats
}

// Stats returns current statistics.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{
		ID:                  s.ID(),
		State:               s.state,
		Revision:            s.revision,
		HighlightGeneration: s.hlGen,
		ErrorGeneration:     s.errGen,
		Precompute:          s.precompute,
		PrecomputeBuilds:    s.memo.Builds(),
		IndexBuilds:         s.indexBuilds,
		Subscribers:         s.observers.len(),
		Cache:               s.cache.Stats(),
	}
	if s.hlIndex != nil {
		st.Overflow = s.hlIndex.Overflow() + s.errIndex.Overflow()
	}
	return st
}
