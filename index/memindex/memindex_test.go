package memindex

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/lexigo/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture(t *testing.T, opts ...Option) *Index {
	t.Helper()
	ix := New("animals", opts...)

	docs := []Document{
		{ID: "1", Text: map[string]string{"body": "the quick brown fox"}, Keywords: map[string]string{"kind": "fox"}, Numbers: map[string]float64{"legs": 4}, Stored: map[string]any{"name": "fox", "legs": 4}},
		{ID: "2", Text: map[string]string{"body": "jumped over the lazy dog"}, Keywords: map[string]string{"kind": "dog"}, Numbers: map[string]float64{"legs": 4}, Stored: map[string]any{"name": "dog", "legs": 4}},
	}
	for _, d := range docs {
		require.NoError(t, ix.Add(d))
	}
	require.NoError(t, ix.Flush())

	more := []Document{
		{ID: "3", Text: map[string]string{"body": "quick brown dogs"}, Keywords: map[string]string{"kind": "dog"}, Numbers: map[string]float64{"legs": 4}, Stored: map[string]any{"name": "dogs", "legs": 4}},
		{ID: "4", Text: map[string]string{"body": "fox and dog and bird"}, Keywords: map[string]string{"kind": "mixed"}, Numbers: map[string]float64{"legs": 2}, Stored: map[string]any{"name": "mixed", "legs": 2}},
	}
	for _, d := range more {
		require.NoError(t, ix.Add(d))
	}
	require.NoError(t, ix.Flush())
	return ix
}

func collect(t *testing.T, r *Reader, q index.Query) map[string]float32 {
	t.Helper()
	out := make(map[string]float32)
	for _, seg := range r.Segments() {
		m, err := seg.Matcher(q, true)
		require.NoError(t, err)
		if m == nil {
			continue
		}
		for m.Next() {
			if seg.Live(m.Doc()) {
				out[seg.ExternalID(m.Doc())] = m.Score()
			}
		}
		require.NoError(t, m.Err())
	}
	return out
}

func TestReader_Segments(t *testing.T) {
	r := fixture(t).Reader()
	defer r.Close()

	assert.Equal(t, 4, r.NumDocs())
	assert.Equal(t, 4, r.MaxDoc())
	segs := r.Segments()
	require.Len(t, segs, 2)
	assert.Equal(t, index.DocID(2), segs[1].Base())
}

func TestReader_Match(t *testing.T) {
	r := fixture(t).Reader()

	hits := collect(t, r, index.Match{Field: "body", Text: "fox"})
	assert.Len(t, hits, 2)
	assert.Contains(t, hits, "1")
	assert.Contains(t, hits, "4")
	// Shorter document scores higher for the same term frequency.
	assert.Greater(t, hits["1"], hits["4"])

	and := collect(t, r, index.Match{Field: "body", Text: "quick dogs", Operator: "and"})
	assert.Equal(t, []string{"3"}, keys(and))
}

func TestReader_Bool(t *testing.T) {
	r := fixture(t).Reader()

	q := index.Bool{
		Must:    []index.Query{index.Match{Field: "body", Text: "dog dogs"}},
		Filter:  []index.Query{index.NumericRange{Field: "legs", Min: index.Float(3)}},
		MustNot: []index.Query{index.Term{Field: "kind", Value: "mixed"}},
	}
	hits := collect(t, r, q)
	assert.ElementsMatch(t, []string{"2", "3"}, keys(hits))

	onlyNot := collect(t, r, index.Bool{MustNot: []index.Query{index.Term{Field: "kind", Value: "dog"}}})
	assert.ElementsMatch(t, []string{"1", "4"}, keys(onlyNot))

	none := collect(t, r, index.Bool{Should: []index.Query{index.Term{Field: "kind", Value: "cat"}}})
	assert.Empty(t, none)
}

func TestReader_Count(t *testing.T) {
	r := fixture(t).Reader()

	n, err := r.Count(context.Background(), index.Term{Field: "kind", Value: "dog"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = r.Count(context.Background(), index.MatchAll{})
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestIndex_DeleteAndUpdate(t *testing.T) {
	ix := fixture(t)
	before := ix.Reader()

	assert.True(t, ix.Delete("2"))
	assert.False(t, ix.Delete("2"))

	require.NoError(t, ix.Add(Document{ID: "1", Text: map[string]string{"body": "a cat"}, Stored: map[string]any{"name": "cat"}}))
	require.NoError(t, ix.Flush())

	after := ix.Reader()
	assert.Equal(t, 4, before.NumDocs(), "snapshot isolation")
	assert.Equal(t, 3, after.NumDocs())

	hits := collect(t, after, index.Match{Field: "body", Text: "fox"})
	assert.Equal(t, []string{"4"}, keys(hits))
}

func TestReader_DocumentAndExpr(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			r := fixture(t, WithCompression(c)).Reader()

			fields, err := r.Document(3)
			require.NoError(t, err)
			assert.Equal(t, "mixed", fields["name"])

			expr := index.MustCompileExpr(`doc.legs < params.max`)
			q := index.WithParams(index.Bool{Filter: []index.Query{expr}}, map[string]any{"max": 3})
			hits := collect(t, r, q)
			assert.Equal(t, []string{"4"}, keys(hits))
		})
	}
}

func TestReader_Explain(t *testing.T) {
	r := fixture(t).Reader()
	q := index.Match{Field: "body", Text: "quick fox"}

	exp, err := r.Explain(q, 0)
	require.NoError(t, err)
	assert.True(t, exp.Match)
	assert.Len(t, exp.Details, 2)
	assert.Contains(t, exp.String(), "weight(body:fox)")

	exp, err = r.Explain(q, 1)
	require.NoError(t, err)
	assert.False(t, exp.Match)

	_, err = r.Explain(q, 99)
	assert.ErrorIs(t, err, index.ErrDocNotFound)
}

func TestReader_IOHook(t *testing.T) {
	boom := errors.New("disk on fire")
	r := fixture(t, WithIOHook(func(op string) error {
		if op == "document" {
			return boom
		}
		return nil
	})).Reader()

	_, err := r.Document(0)
	assert.ErrorIs(t, err, boom)

	seg := r.Segments()[0]
	m, err := seg.Matcher(index.MustCompileExpr(`doc.legs > 0`), false)
	require.NoError(t, err)
	assert.False(t, m.Next())
	assert.ErrorIs(t, m.Err(), boom)
}

func TestReader_Closed(t *testing.T) {
	r := fixture(t).Reader()
	require.NoError(t, r.Close())
	_, err := r.Count(context.Background(), index.MatchAll{})
	assert.ErrorIs(t, err, ErrClosed)
}

func keys(m map[string]float32) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
