package testutil

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/hupe1980/lexigo/index"
)

// ReaderOption configures a synthetic Reader.
type ReaderOption func(*Reader)

// WithSegmentSize sets the number of docs per segment (default 4096).
func WithSegmentSize(n int) ReaderOption {
	return func(r *Reader) {
		if n > 0 {
			r.segmentSize = n
		}
	}
}

// WithMatchEvery makes only every k-th doc match (default 1: every doc).
func WithMatchEvery(k int) ReaderOption {
	return func(r *Reader) {
		if k > 0 {
			r.every = k
		}
	}
}

// WithScanHook calls fn for every doc a matcher visits. Tests use it to
// advance a Clock while a pass is running.
func WithScanHook(fn func(doc index.DocID)) ReaderOption {
	return func(r *Reader) { r.hook = fn }
}

// WithSeed sets the seed of the per-doc scores.
func WithSeed(seed int64) ReaderOption {
	return func(r *Reader) { r.seed = seed }
}

// WithDocumentError makes Document fail with err.
func WithDocumentError(err error) ReaderOption {
	return func(r *Reader) { r.docErr = err }
}

// Reader is a synthetic index.Reader. Every query matches the same docs, so
// tests control result sizes through the reader's options alone.
//
// Doc values: numeric "n" is the doc id, keyword "k" is "k<id%10>", geo "loc"
// walks north from (0,0) by 0.001 degrees per doc.
type Reader struct {
	name        string
	numDocs     int
	segmentSize int
	every       int
	seed        int64
	hook        func(doc index.DocID)
	docErr      error

	scores   []float32
	segments []index.Segment

	scans        atomic.Int64
	visited      atomic.Int64
	nativeCounts atomic.Int64
	closed       atomic.Bool
}

var _ index.Reader = (*Reader)(nil)

// NewReader creates a synthetic reader with numDocs live docs.
func NewReader(name string, numDocs int, opts ...ReaderOption) *Reader {
	r := &Reader{
		name:        name,
		numDocs:     numDocs,
		segmentSize: 4096,
		every:       1,
		seed:        4711,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.scores = make([]float32, numDocs)
	NewRNG(r.seed).FillUniform(r.scores)

	for base, ord := 0, 0; base < numDocs; base, ord = base+r.segmentSize, ord+1 {
		size := min(r.segmentSize, numDocs-base)
		r.segments = append(r.segments, &segment{r: r, ord: ord, base: index.DocID(base), size: size})
	}
	return r
}

// Matches returns the number of docs every query matches.
func (r *Reader) Matches() int {
	if r.numDocs == 0 {
		return 0
	}
	return (r.numDocs-1)/r.every + 1
}

// Scans returns the number of passes that opened a matcher on the first segment.
func (r *Reader) Scans() int { return int(r.scans.Load()) }

// Visited returns the number of docs visited by matchers so far.
func (r *Reader) Visited() int { return int(r.visited.Load()) }

// NativeCounts returns the number of Count calls.
func (r *Reader) NativeCounts() int { return int(r.nativeCounts.Load()) }

// Closed reports whether Close was called.
func (r *Reader) Closed() bool { return r.closed.Load() }

// Score returns the score of doc.
func (r *Reader) Score(doc index.DocID) float32 { return r.scores[doc] }

func (r *Reader) Name() string              { return r.name }
func (r *Reader) NumDocs() int              { return r.numDocs }
func (r *Reader) MaxDoc() int               { return r.numDocs }
func (r *Reader) Segments() []index.Segment { return r.segments }

func (r *Reader) Count(ctx context.Context, _ index.Query) (int, error) {
	r.nativeCounts.Add(1)
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return r.Matches(), nil
}

func (r *Reader) Explain(q index.Query, doc index.DocID) (*index.Explanation, error) {
	if int(doc) >= r.numDocs {
		return nil, fmt.Errorf("doc %d: %w", doc, index.ErrDocNotFound)
	}
	if !r.matches(doc) {
		return index.NoMatch(fmt.Sprintf("doc %d does not match %s", doc, q)), nil
	}
	return &index.Explanation{
		Match:       true,
		Value:       r.scores[doc],
		Description: fmt.Sprintf("synthetic score of doc %d", doc),
	}, nil
}

func (r *Reader) Document(doc index.DocID) (index.StoredFields, error) {
	if r.docErr != nil {
		return nil, r.docErr
	}
	if int(doc) >= r.numDocs {
		return nil, fmt.Errorf("doc %d: %w", doc, index.ErrDocNotFound)
	}
	return index.StoredFields{
		"id":    strconv.Itoa(int(doc)),
		"n":     float64(doc),
		"title": fmt.Sprintf("document %d", doc),
	}, nil
}

func (r *Reader) Close() error {
	r.closed.Store(true)
	return nil
}

func (r *Reader) matches(doc index.DocID) bool { return int(doc)%r.every == 0 }

type segment struct {
	r    *Reader
	ord  int
	base index.DocID
	size int
}

func (s *segment) Ord() int                   { return s.ord }
func (s *segment) Base() index.DocID          { return s.base }
func (s *segment) MaxDoc() int                { return s.size }
func (s *segment) Live(uint32) bool           { return true }
func (s *segment) DocValues() index.DocValues { return s }

func (s *segment) ExternalID(doc uint32) string {
	return strconv.Itoa(int(s.base) + int(doc))
}

func (s *segment) Matcher(_ index.Query, needsScores bool) (index.Matcher, error) {
	if s.ord == 0 {
		s.r.scans.Add(1)
	}
	return &matcher{seg: s, doc: -1, needsScores: needsScores}, nil
}

func (s *segment) Numeric(field string, doc uint32) (float64, bool) {
	if field != "n" {
		return 0, false
	}
	return float64(s.base) + float64(doc), true
}

func (s *segment) Keyword(field string, doc uint32) (string, bool) {
	if field != "k" {
		return "", false
	}
	return "k" + strconv.Itoa((int(s.base)+int(doc))%10), true
}

func (s *segment) Geo(field string, doc uint32) (index.GeoPoint, bool) {
	if field != "loc" {
		return index.GeoPoint{}, false
	}
	return index.GeoPoint{Lat: float64(int(s.base)+int(doc)) * 0.001}, true
}

type matcher struct {
	seg         *segment
	doc         int
	needsScores bool
}

func (m *matcher) Next() bool {
	r := m.seg.r
	for m.doc++; m.doc < m.seg.size; m.doc++ {
		global := m.seg.base + index.DocID(m.doc)
		r.visited.Add(1)
		if r.hook != nil {
			r.hook(global)
		}
		if r.matches(global) {
			return true
		}
	}
	return false
}

func (m *matcher) Doc() uint32 { return uint32(m.doc) }

func (m *matcher) Score() float32 {
	if !m.needsScores {
		return 0
	}
	return m.seg.r.scores[int(m.seg.base)+m.doc]
}

func (m *matcher) Err() error { return nil }
