package bench

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/hlsync/internal/renderer/core"
	"github.com/dshills/hlsync/internal/renderer/highlight"
	"github.com/dshills/hlsync/internal/renderer/scan"
)

func TestDocumentInsert(t *testing.T) {
	d := NewDocument("ab\ncd\nef\n")
	require.Equal(t, 3, d.LineCount())
	assert.Equal(t, 6, d.Entry(2).Start)

	require.NoError(t, d.Insert(1, 1, "XY"))
	assert.Equal(t, "cXYd", d.Entry(1).Text)
	assert.Equal(t, 8, d.Entry(2).Start)
	assert.Equal(t, []core.PendingOffset{{FromCharIndex: 4, NewEndIndex: 6, CharDelta: 2}}, d.Pending())
	assert.Equal(t, uint64(1), d.Version())
	assert.Equal(t, "ab\ncXYd\nef\n", d.Text())

	assert.Error(t, d.Insert(5, 0, "x"))
	assert.Error(t, d.Insert(0, 9, "x"))
	assert.Error(t, d.Insert(0, 0, "a\nb"))
	require.NoError(t, d.Insert(0, 0, ""))
	assert.Len(t, d.Pending(), 1)
}

func TestDocumentDelete(t *testing.T) {
	d := NewDocument("abcd\nef")
	require.NoError(t, d.Delete(0, 1, 3))

	assert.Equal(t, "ad", d.Entry(0).Text)
	assert.Equal(t, 3, d.Entry(1).Start)
	assert.Equal(t, []core.PendingOffset{{FromCharIndex: 1, NewEndIndex: 1, CharDelta: -2}}, d.Pending())
	assert.Error(t, d.Delete(0, 1, 9))
}

func TestDocumentStableIDs(t *testing.T) {
	d := NewDocument("a\nb")
	id := d.Entry(1).LineID
	require.NoError(t, d.Insert(0, 0, "zz"))
	assert.Equal(t, id, d.Entry(1).LineID)
	assert.NotEqual(t, d.Entry(0).LineID, d.Entry(1).LineID)
}

func TestConfirmClearsPending(t *testing.T) {
	d := NewDocument("func f() {}\n")
	p := scan.NewParser(scan.Go())

	require.NoError(t, d.Insert(0, 0, "x"))
	gen := d.Confirm(p)

	assert.Equal(t, uint64(1), gen)
	assert.Empty(t, d.Pending())
	assert.NotEmpty(t, p.Highlights().Ranges)
}

// TestEditedSessionMatchesFreshParse checks that lines after an edit render
// exactly what a fresh parse of the edited document renders.
func TestEditedSessionMatchesFreshParse(t *testing.T) {
	src := GenerateGo(120)
	d := NewDocument(src)
	p := scan.NewParser(scan.Go())
	d.Confirm(p)

	sess, err := highlight.New(d.Capabilities(p))
	require.NoError(t, err)
	defer sess.Dispose()

	const edited = 40
	require.NoError(t, d.Insert(edited, 0, "x := 1; "))

	fresh := NewDocument(d.Text())
	fp := scan.NewParser(scan.Go())
	fresh.Confirm(fp)
	ref, err := highlight.New(fresh.Capabilities(fp))
	require.NoError(t, err)
	defer ref.Dispose()

	for i := edited + 1; i < d.LineCount(); i++ {
		assert.Equal(t, ref.GetLineHighlights(fresh.Entry(i)), sess.GetLineHighlights(d.Entry(i)), "line %d", i)
	}
}

func TestGenerateGo(t *testing.T) {
	src := GenerateGo(50)
	assert.Equal(t, 50, strings.Count(src, "\n"))
	assert.True(t, strings.HasPrefix(src, "package synthetic\n"))

	_, errs := scan.Go().Scan(src)
	assert.Empty(t, errs, "generated source scans cleanly")
}

func TestRunnerRun(t *testing.T) {
	d := NewDocument(GenerateGo(500))
	opts := Options{Bursts: 5, BurstSize: 4, Viewport: 30, Seed: 7}

	r, err := NewRunner(d, scan.NewParser(scan.Go()), opts, highlight.WithCacheCapacity(100))
	require.NoError(t, err)
	defer r.Close()

	rep, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 500, rep.Lines)
	assert.Equal(t, 20, rep.Keystrokes)
	assert.Equal(t, 5, rep.Parses)
	assert.Equal(t, 30*(1+20+5), rep.Repaints)
	assert.Positive(t, rep.Segments)
	assert.Equal(t, uint64(5), rep.Session.Revision, "one revision per parse")
	assert.Equal(t, 100, rep.Session.Cache.MaxSize)
	assert.Contains(t, rep.String(), "keystrokes")
}

func TestRunnerStopsOnCancel(t *testing.T) {
	r, err := NewRunner(NewDocument(GenerateGo(50)), scan.NewParser(scan.Go()), DefaultOptions())
	require.NoError(t, err)
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep, err := r.Run(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Zero(t, rep.Keystrokes)
}
