package collector

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/lexigo/index"
)

// MatchedDocsKey is the shared key of the matched-docs collector. Every
// aggregation registers under it, so one bitmap serves all of them.
var MatchedDocsKey = NewKey("matched_docs")

// MatchedDocs records every matched DocID in a roaring bitmap. It is the
// input of aggregations, which run over all matches rather than the window.
type MatchedDocs struct {
	docs *roaring.Bitmap
}

// NewMatchedDocs creates an empty matched-docs collector.
func NewMatchedDocs() *MatchedDocs {
	return &MatchedDocs{docs: roaring.New()}
}

func (m *MatchedDocs) NeedsScores() bool { return false }

func (m *MatchedDocs) Leaf(seg index.Segment) (LeafCollector, error) {
	base := uint32(seg.Base())
	return LeafFunc(func(doc uint32, _ float32) error {
		m.docs.Add(base + doc)
		return nil
	}), nil
}

// Bitmap returns the matched docs. Callers must not modify it.
func (m *MatchedDocs) Bitmap() *roaring.Bitmap { return m.docs }

// Count returns the number of matched docs.
func (m *MatchedDocs) Count() int { return int(m.docs.GetCardinality()) }

// ForEach calls fn for every matched doc in ascending order until fn returns false.
func (m *MatchedDocs) ForEach(fn func(doc index.DocID) bool) {
	it := m.docs.Iterator()
	for it.HasNext() {
		if !fn(index.DocID(it.Next())) {
			return
		}
	}
}
