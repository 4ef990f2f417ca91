package collector

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/hupe1980/lexigo/index"
	"github.com/hupe1980/lexigo/testutil"
	"github.com/hupe1980/lexigo/timeout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, r index.Reader, c Collector) {
	t.Helper()
	require.NoError(t, Run(context.Background(), r, index.MatchAll{}, c))
}

func TestTopDocs_ByScore(t *testing.T) {
	r := testutil.NewReader("syn", 100, testutil.WithSegmentSize(16))
	td := NewTopDocs(index.ByScore(), 10, ExactCount)
	run(t, r, td)

	want := make([]index.DocID, 100)
	for i := range want {
		want[i] = index.DocID(i)
	}
	sort.SliceStable(want, func(i, j int) bool { return r.Score(want[i]) > r.Score(want[j]) })

	hits := td.Hits()
	require.Len(t, hits, 10)
	for i, h := range hits {
		assert.Equal(t, want[i], h.Doc)
	}
	assert.Equal(t, Exact(100), td.Total())
	assert.Equal(t, r.Score(want[0]), td.MaxScore())
	assert.True(t, td.NeedsScores())
}

func TestTopDocs_LowerBound(t *testing.T) {
	r := testutil.NewReader("syn", 100)
	td := NewTopDocs(index.ByScore(), 5, 50)
	run(t, r, td)

	assert.Equal(t, AtLeast(50), td.Total())
	assert.False(t, td.Total().IsExact())
	assert.Equal(t, ">=50", td.Total().String())
	// Score order keeps scanning for better hits past the threshold.
	assert.Equal(t, 100, r.Visited())
}

func TestTopDocs_IndexOrderStopsEarly(t *testing.T) {
	r := testutil.NewReader("syn", 1000, testutil.WithSegmentSize(100))
	td := NewTopDocs(index.ByIndexOrder(), 5, 5)
	run(t, r, td)

	var docs []index.DocID
	for _, h := range td.Hits() {
		docs = append(docs, h.Doc)
	}
	assert.Equal(t, []index.DocID{0, 1, 2, 3, 4}, docs)
	assert.Equal(t, AtLeast(5), td.Total())
	assert.Equal(t, 6, r.Visited())
	assert.False(t, td.NeedsScores())
}

func TestTopDocs_FieldSorts(t *testing.T) {
	r := testutil.NewReader("syn", 20, testutil.WithSegmentSize(7))

	t.Run("numeric desc", func(t *testing.T) {
		td := NewTopDocs(index.Sort{Fields: []index.SortField{{Type: index.SortNumeric, Field: "n", Reverse: true}}}, 3, ExactCount)
		run(t, r, td)
		hits := td.Hits()
		require.Len(t, hits, 3)
		assert.Equal(t, index.DocID(19), hits[0].Doc)
		assert.Equal(t, []any{float64(19)}, hits[0].Sort)
		assert.Equal(t, index.DocID(17), hits[2].Doc)
	})

	t.Run("keyword ties break on doc", func(t *testing.T) {
		td := NewTopDocs(index.Sort{Fields: []index.SortField{{Type: index.SortKeyword, Field: "k"}}}, 3, ExactCount)
		run(t, r, td)
		var docs []index.DocID
		for _, h := range td.Hits() {
			docs = append(docs, h.Doc)
		}
		assert.Equal(t, []index.DocID{0, 10, 1}, docs)
	})

	t.Run("missing values last", func(t *testing.T) {
		td := NewTopDocs(index.Sort{Fields: []index.SortField{{Type: index.SortNumeric, Field: "absent"}}}, 2, ExactCount)
		run(t, r, td)
		hits := td.Hits()
		require.Len(t, hits, 2)
		assert.Equal(t, []any{nil}, hits[0].Sort)
		assert.Equal(t, index.DocID(0), hits[0].Doc)
	})

	t.Run("distance", func(t *testing.T) {
		center := index.GeoPoint{Lat: 0.010}
		td := NewTopDocs(index.Sort{Fields: []index.SortField{{Type: index.SortDistance, Field: "loc", Center: center}}}, 1, ExactCount)
		run(t, r, td)
		assert.Equal(t, index.DocID(10), td.Hits()[0].Doc)
	})
}

func TestTopDocs_ZeroSize(t *testing.T) {
	r := testutil.NewReader("syn", 10)
	td := NewTopDocs(index.ByScore(), 0, ExactCount)
	run(t, r, td)
	assert.Empty(t, td.Hits())
	assert.Equal(t, Exact(10), td.Total())
}

func TestTotalHitCount(t *testing.T) {
	r := testutil.NewReader("syn", 100, testutil.WithSegmentSize(8))

	exact := NewTotalHitCount(ExactCount)
	run(t, r, exact)
	assert.Equal(t, Exact(100), exact.Total())
	assert.False(t, exact.NeedsScores())

	r = testutil.NewReader("syn", 100, testutil.WithSegmentSize(8))
	bounded := NewTotalHitCount(10)
	run(t, r, bounded)
	assert.Equal(t, AtLeast(10), bounded.Total())
	assert.Equal(t, 11, r.Visited())
}

func TestMulti_DropsStoppedChildren(t *testing.T) {
	r := testutil.NewReader("syn", 40, testutil.WithSegmentSize(8))
	count := NewTotalHitCount(5)
	matched := NewMatchedDocs()

	run(t, r, NewMulti(count, matched))
	assert.Equal(t, AtLeast(5), count.Total())
	assert.Equal(t, 40, matched.Count())

	var docs []index.DocID
	matched.ForEach(func(doc index.DocID) bool {
		docs = append(docs, doc)
		return len(docs) < 3
	})
	assert.Equal(t, []index.DocID{0, 1, 2}, docs)
}

func TestMulti_AllStopped(t *testing.T) {
	r := testutil.NewReader("syn", 1000, testutil.WithSegmentSize(10))
	run(t, r, NewMulti(NewTotalHitCount(3), NewTotalHitCount(7)))
	assert.Equal(t, 8, r.Visited())
}

func TestTimeLimited(t *testing.T) {
	clk := testutil.NewClock()
	r := testutil.NewReader("syn", 10_000, testutil.WithScanHook(func(index.DocID) {
		clk.Advance(time.Millisecond)
	}))
	budget := timeout.FailAfter(10*time.Millisecond, timeout.WithClock(clk.Now))
	budget.Start()

	count := NewTotalHitCount(ExactCount)
	tl := NewTimeLimited(count, budget)
	run(t, r, tl)

	assert.True(t, tl.TimedOut())
	assert.True(t, budget.TimedOut())
	assert.Equal(t, Exact(checkInterval-1), count.Total())
	assert.Less(t, r.Visited(), r.NumDocs())
}

func TestTimeLimited_ExpiredBeforeScan(t *testing.T) {
	clk := testutil.NewClock()
	budget := timeout.TruncateAfter(time.Millisecond, timeout.WithClock(clk.Now))
	budget.Start()
	clk.Advance(time.Second)

	r := testutil.NewReader("syn", 100)
	tl := NewTimeLimited(NewTotalHitCount(ExactCount), budget)
	run(t, r, tl)
	assert.True(t, tl.TimedOut())
	assert.Equal(t, 0, r.Scans())
}

func TestSetBuilder(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		s := NewSetBuilder().Build()
		assert.Equal(t, Noop{}, s.Composite())
		assert.Equal(t, 0, s.Len())
		assert.Equal(t, Exact(0), s.Total())
	})

	t.Run("ranking subsumes count", func(t *testing.T) {
		b := NewSetBuilder()
		b.RequireTotalHitCount(10)
		b.RequireTopDocs(index.ByScore(), 5, 100)
		b.RequireTotalHitCount(10)
		s := b.Build()

		assert.Nil(t, s.TotalHitCount())
		require.NotNil(t, s.TopDocs())
		assert.Same(t, s.TopDocs(), s.Composite())
	})

	t.Run("ranking widens", func(t *testing.T) {
		b := NewSetBuilder()
		b.RequireTopDocs(index.ByIndexOrder(), 5, 10)
		b.RequireTopDocs(index.ByScore(), 20, 3)
		s := b.Build()
		assert.Equal(t, 20, s.TopDocs().Size())
		assert.True(t, s.TopDocs().Sort().IsIndexOrder())
	})

	t.Run("count only", func(t *testing.T) {
		b := NewSetBuilder()
		b.RequireTotalHitCount(3)
		s := b.Build()
		assert.Nil(t, s.TopDocs())
		assert.Same(t, s.TotalHitCount(), s.Composite())
	})

	t.Run("auxiliary dedup", func(t *testing.T) {
		b := NewSetBuilder()
		b.RequireTopDocs(index.ByScore(), 5, ExactCount)
		first := NewMatchedDocs()
		assert.Same(t, first, b.Add(MatchedDocsKey, first))
		assert.Same(t, first, b.Add(MatchedDocsKey, NewMatchedDocs()))

		center := index.GeoPoint{Lat: 1, Lon: 2}
		dist := b.Add(DistanceKey("loc", center), NewDistance("loc", center))
		assert.Same(t, dist, b.Add(DistanceKey("loc", center), NewDistance("loc", center)))

		s := b.Build()
		assert.Equal(t, 3, s.Len())
		assert.IsType(t, &Multi{}, s.Composite())

		got, ok := Lookup[*MatchedDocs](s, MatchedDocsKey)
		require.True(t, ok)
		assert.Same(t, first, got)

		_, ok = Lookup[*Distance](s, MatchedDocsKey)
		assert.False(t, ok)
		_, ok = Lookup[*MatchedDocs](nil, MatchedDocsKey)
		assert.False(t, ok)
	})
}

func TestSet_RunsOnePass(t *testing.T) {
	r := testutil.NewReader("syn", 50, testutil.WithSegmentSize(10))
	b := NewSetBuilder()
	b.RequireTopDocs(index.ByScore(), 3, ExactCount)
	center := index.GeoPoint{}
	b.Add(DistanceKey("loc", center), NewDistance("loc", center))
	s := b.Build()

	run(t, r, s.Composite())
	assert.Equal(t, 1, r.Scans())
	assert.Equal(t, Exact(50), s.Total())

	dist, ok := Lookup[*Distance](s, DistanceKey("loc", center))
	require.True(t, ok)
	d, ok := dist.DistanceOf(index.DocID(10))
	require.True(t, ok)
	assert.InDelta(t, 1111.95, d, 1)
}

type failing struct{ err error }

func (f failing) NeedsScores() bool { return false }
func (f failing) Leaf(index.Segment) (LeafCollector, error) {
	return LeafFunc(func(uint32, float32) error { return f.err }), nil
}

func TestRun_Errors(t *testing.T) {
	boom := errors.New("boom")
	r := testutil.NewReader("syn", 10)
	assert.ErrorIs(t, Run(context.Background(), r, index.MatchAll{}, failing{err: boom}), boom)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Run(ctx, r, index.MatchAll{}, NewTotalHitCount(ExactCount)), context.Canceled)

	fresh := testutil.NewReader("syn", 10)
	require.NoError(t, Run(context.Background(), fresh, index.MatchAll{}, Noop{}))
	assert.Equal(t, 0, fresh.Scans())
}
