package search

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/hupe1980/lexigo/extract"
	"github.com/hupe1980/lexigo/index"
	"github.com/hupe1980/lexigo/testutil"
	"github.com/hupe1980/lexigo/timeout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScroll(t *testing.T, r index.Reader, chunk int, opts ...RequestOption) *Scroll[extract.DocRef] {
	t.Helper()
	req := NewRequestContext(r, NewPlan(nil, WithSort(index.ByIndexOrder())), opts...)
	s, err := NewScroll[extract.DocRef](NewExecutor(), req, chunk, WithRelease(r))
	require.NoError(t, err)
	return s
}

func TestScroll_GeometricGrowth(t *testing.T) {
	r := testutil.NewReader("syn", 1000)
	s := newScroll(t, r, 10)
	defer s.Close()

	var seen []string
	next := func() {
		page, err := s.Next(context.Background(), nil)
		require.NoError(t, err)
		require.True(t, page.HasMore)
		require.Len(t, page.Hits, 10)
		seen = append(seen, ids(page.Hits)...)
	}

	for range 4 {
		next()
	}
	assert.Equal(t, 1, s.Scans(), "first page holds four chunks")

	next()
	assert.Equal(t, 2, s.Scans())

	for range 15 {
		next()
	}
	// Pages cover [0,40), [40,120), [120,280).
	assert.Equal(t, 3, s.Scans())
	assert.Equal(t, 3, r.Scans())

	require.Len(t, seen, 200)
	for i, id := range seen {
		assert.Equal(t, strconv.Itoa(i), id)
	}
}

func TestScroll_Exhaustion(t *testing.T) {
	r := testutil.NewReader("syn", 25)
	s := newScroll(t, r, 10)

	var sizes []int
	for {
		page, err := s.Next(context.Background(), nil)
		require.NoError(t, err)
		if !page.HasMore {
			assert.Empty(t, page.Hits)
			break
		}
		sizes = append(sizes, len(page.Hits))
	}
	assert.Equal(t, []int{10, 10, 5}, sizes)
	assert.True(t, s.Exhausted())
	assert.Equal(t, 1, s.Scans())

	page, err := s.Next(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, page.HasMore)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.True(t, r.Closed())
	_, err = s.Next(context.Background(), nil)
	assert.ErrorIs(t, err, ErrScrollClosed)
}

func TestScroll_TotalIsNotCompleteness(t *testing.T) {
	r := testutil.NewReader("syn", 500)
	s := newScroll(t, r, 10)
	defer s.Close()

	_, err := s.Next(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, s.Total().LowerBound)
	assert.NotEmpty(t, s.ID())
	assert.Equal(t, 10, s.ChunkSize())
}

func TestScroll_All(t *testing.T) {
	r := testutil.NewReader("syn", 95)
	s := newScroll(t, r, 7)
	defer s.Close()

	n := 0
	for ref, err := range s.All(context.Background(), nil) {
		require.NoError(t, err)
		assert.Equal(t, strconv.Itoa(n), ref.ID)
		n++
	}
	assert.Equal(t, 95, n)
}

func TestScroll_Timeout(t *testing.T) {
	clk := testutil.NewClock()

	t.Run("truncate stops early", func(t *testing.T) {
		r := testutil.NewReader("syn", 1000)
		s := newScroll(t, r, 10, WithBudget(timeout.TruncateAfter(time.Second, timeout.WithClock(clk.Now))))

		page, err := s.Next(context.Background(), nil)
		require.NoError(t, err)
		assert.True(t, page.HasMore)

		clk.Advance(2 * time.Second)
		for range 3 {
			page, err = s.Next(context.Background(), nil)
			require.NoError(t, err)
			assert.True(t, page.HasMore, "buffered chunks are still served")
		}

		page, err = s.Next(context.Background(), nil)
		require.NoError(t, err)
		assert.False(t, page.HasMore)
		assert.True(t, page.TimedOut)
		assert.Equal(t, 1, s.Scans())
	})

	t.Run("fail raises", func(t *testing.T) {
		r := testutil.NewReader("syn", 1000)
		s := newScroll(t, r, 10, WithBudget(timeout.FailAfter(time.Second, timeout.WithClock(clk.Now))))
		for range 4 {
			_, err := s.Next(context.Background(), nil)
			require.NoError(t, err)
		}
		clk.Advance(2 * time.Second)
		_, err := s.Next(context.Background(), nil)
		assert.ErrorIs(t, err, timeout.ErrTimeout)
	})
}

func TestNewScroll_InvalidChunk(t *testing.T) {
	_, err := NewScroll[extract.DocRef](NewExecutor(), NewRequestContext(testutil.NewReader("syn", 1), nil), 0)
	assert.ErrorIs(t, err, ErrInvalidChunkSize)
	assert.True(t, IsMisuse(err))
}
