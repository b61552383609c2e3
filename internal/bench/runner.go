package bench

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/dshills/hlsync/internal/renderer/core"
	"github.com/dshills/hlsync/internal/renderer/highlight"
	"github.com/dshills/hlsync/internal/renderer/scan"
)

// Options configures a replay.
type Options struct {
	// Bursts is the number of typing bursts.
	Bursts int
	// BurstSize is the number of keystrokes per burst.
	BurstSize int
	// Viewport is the number of lines repainted after every keystroke.
	Viewport int
	// Seed makes edit placement reproducible.
	Seed uint64
	// Scopes resolves scopes to classes. Nil uses scope names as classes.
	Scopes core.ScopeResolver
	// Logger receives session diagnostics. Nil discards them.
	Logger highlight.Logger
}

// DefaultOptions returns the default replay options.
func DefaultOptions() Options {
	return Options{
		Bursts:    20,
		BurstSize: 10,
		Viewport:  60,
		Seed:      1,
	}
}

// Report summarizes a replay.
type Report struct {
	Lines      int
	Keystrokes int
	Parses     int
	Repaints   int
	Segments   int
	Duration   time.Duration
	Session    highlight.Stats
}

// String formats the report as aligned key/value lines.
func (r Report) String() string {
	perRepaint := time.Duration(0)
	if r.Repaints > 0 {
		perRepaint = r.Duration / time.Duration(r.Repaints)
	}
	c := r.Session.Cache
	return fmt.Sprintf(
		"%-20s %d\n%-20s %d\n%-20s %d\n%-20s %d\n%-20s %d\n%-20s %v (%v/line)\n"+
			"%-20s %d\n%-20s %d\n%-20s %d\n%-20s %d/%d hits=%d misses=%d evictions=%d (%.1f%%)\n",
		"lines", r.Lines,
		"keystrokes", r.Keystrokes,
		"parses", r.Parses,
		"line repaints", r.Repaints,
		"segments", r.Segments,
		"duration", r.Duration.Round(time.Microsecond), perRepaint,
		"revision", r.Session.Revision,
		"precompute builds", r.Session.PrecomputeBuilds,
		"index builds", r.Session.IndexBuilds,
		"line cache", c.Size, c.MaxSize, c.Hits, c.Misses, c.Evictions, c.HitRate*100,
	)
}

// Runner replays typing bursts against one session.
type Runner struct {
	doc    *Document
	parser *scan.Parser
	sess   *highlight.Session
	opts   Options
	rng    *rand.Rand
}

// NewRunner creates a runner. The document is parsed once before the session
// sees it.
func NewRunner(doc *Document, parser *scan.Parser, opts Options, sessOpts ...highlight.Option) (*Runner, error) {
	if opts.Viewport <= 0 {
		opts.Viewport = DefaultOptions().Viewport
	}
	doc.Confirm(parser)

	caps := doc.Capabilities(parser)
	caps.Scopes = opts.Scopes
	caps.Logger = opts.Logger
	sess, err := highlight.New(caps, sessOpts...)
	if err != nil {
		return nil, err
	}

	return &Runner{
		doc:    doc,
		parser: parser,
		sess:   sess,
		opts:   opts,
		rng:    rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
	}, nil
}

// Session returns the session under test.
func (r *Runner) Session() *highlight.Session {
	return r.sess
}

// Close disposes the session.
func (r *Runner) Close() {
	r.sess.Dispose()
}

// Run performs the configured bursts. Between bursts the document is
// re-parsed, which confirms the pending edits. Run stops early when ctx is done.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	rep := Report{Lines: r.doc.LineCount()}
	start := time.Now()

	top := 0
	r.repaint(top, &rep)

	for burst := 0; burst < r.opts.Bursts; burst++ {
		if err := ctx.Err(); err != nil {
			return r.finish(rep, start), err
		}

		top = r.rng.IntN(max(r.doc.LineCount()-r.opts.Viewport, 1))
		line := top + r.rng.IntN(min(r.opts.Viewport, r.doc.LineCount()))
		col := r.rng.IntN(len(r.doc.Entry(line).Text) + 1)

		for k := 0; k < r.opts.BurstSize; k++ {
			if err := r.doc.Insert(line, col+k, "x"); err != nil {
				return r.finish(rep, start), err
			}
			rep.Keystrokes++
			r.repaint(top, &rep)
		}

		r.doc.Confirm(r.parser)
		rep.Parses++
		r.sess.Refresh()
		r.repaint(top, &rep)
	}

	return r.finish(rep, start), nil
}

func (r *Runner) repaint(top int, rep *Report) {
	end := min(top+r.opts.Viewport, r.doc.LineCount())
	for i := top; i < end; i++ {
		rep.Segments += len(r.sess.GetLineHighlights(r.doc.Entry(i)))
		rep.Repaints++
	}
}

func (r *Runner) finish(rep Report, start time.Time) Report {
	rep.Duration = time.Since(start)
	rep.Session = r.sess.Stats()
	return rep
}
