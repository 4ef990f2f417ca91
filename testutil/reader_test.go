package testutil

import (
	"context"
	"testing"

	"github.com/hupe1980/lexigo/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReader_Segments(t *testing.T) {
	r := NewReader("syn", 10, WithSegmentSize(4), WithMatchEvery(3))

	segs := r.Segments()
	require.Len(t, segs, 3)
	assert.Equal(t, index.DocID(8), segs[2].Base())
	assert.Equal(t, 2, segs[2].MaxDoc())
	assert.Equal(t, 4, r.Matches())

	var docs []index.DocID
	for _, seg := range segs {
		m, err := seg.Matcher(index.MatchAll{}, true)
		require.NoError(t, err)
		for m.Next() {
			docs = append(docs, seg.Base()+index.DocID(m.Doc()))
			assert.Equal(t, r.Score(seg.Base()+index.DocID(m.Doc())), m.Score())
		}
	}
	assert.Equal(t, []index.DocID{0, 3, 6, 9}, docs)
	assert.Equal(t, 1, r.Scans())
	assert.Equal(t, 10, r.Visited())

	n, err := r.Count(context.Background(), index.MatchAll{})
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, 1, r.NativeCounts())
}

func TestReader_DocValues(t *testing.T) {
	r := NewReader("syn", 20, WithSegmentSize(8))
	dv := r.Segments()[1].DocValues()

	n, ok := dv.Numeric("n", 2)
	require.True(t, ok)
	assert.Equal(t, float64(10), n)

	k, ok := dv.Keyword("k", 5)
	require.True(t, ok)
	assert.Equal(t, "k3", k)

	_, ok = dv.Numeric("missing", 0)
	assert.False(t, ok)

	fields, err := r.Document(7)
	require.NoError(t, err)
	assert.Equal(t, "7", fields["id"])

	_, err = r.Document(99)
	assert.ErrorIs(t, err, index.ErrDocNotFound)
}

func TestRNG_Reset(t *testing.T) {
	rng := NewRNG(4711)
	a := rng.Float32()
	rng.Reset()
	assert.Equal(t, a, rng.Float32())
	assert.Equal(t, int64(4711), rng.Seed())

	z := rng.Zipf(10, 1.1)
	assert.GreaterOrEqual(t, z, 0)
	assert.Less(t, z, 10)
}
