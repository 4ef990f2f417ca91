package index

import (
	"context"
	"errors"
)

// DocID is a reader-global document number: segment base + segment-local doc.
type DocID uint32

// ErrDocNotFound is returned for a doc id outside the reader or a deleted doc.
var ErrDocNotFound = errors.New("document not found")

// StoredFields is the decoded stored-field map of one document.
type StoredFields map[string]any

// Reader is an open, point-in-time view of one index.
//
// A Reader is safe for concurrent reads. Callers own its lifetime and must Close it.
type Reader interface {
	// Name is the index identity used in error context and doc references.
	Name() string
	// NumDocs is the number of live documents.
	NumDocs() int
	// MaxDoc is one greater than the largest DocID, deleted docs included.
	MaxDoc() int
	// Segments returns the segments in DocID order.
	Segments() []Segment
	// Count returns the number of live documents matching q without ranking.
	Count(ctx context.Context, q Query) (int, error)
	// Explain describes how doc was scored for q.
	Explain(q Query, doc DocID) (*Explanation, error)
	// Document loads the stored fields of doc.
	Document(doc DocID) (StoredFields, error)
	// Close releases the reader.
	Close() error
}

// Segment is one immutable slice of a Reader.
type Segment interface {
	// Ord is the position of the segment inside its reader.
	Ord() int
	// Base is the DocID of the segment's local doc 0.
	Base() DocID
	// MaxDoc is the number of local doc slots, deleted docs included.
	MaxDoc() int
	// Live reports whether the local doc is not deleted.
	Live(doc uint32) bool
	// Matcher returns an iterator over the docs matching q in ascending doc order.
	// A nil Matcher with a nil error means the segment has no matches.
	Matcher(q Query, needsScores bool) (Matcher, error)
	// ExternalID returns the application id of a local doc.
	ExternalID(doc uint32) string
	// DocValues gives columnar per-doc access for sorting and aggregation.
	DocValues() DocValues
}

// Matcher iterates matching local docs.
type Matcher interface {
	// Next advances to the next match and reports whether one exists.
	Next() bool
	// Doc returns the current local doc.
	Doc() uint32
	// Score returns the current score. It is 0 when scores were not requested.
	Score() float32
	// Err reports the error that ended iteration early, if any.
	Err() error
}

// DocValues gives columnar access to per-document values.
type DocValues interface {
	Numeric(field string, doc uint32) (float64, bool)
	Keyword(field string, doc uint32) (string, bool)
	Geo(field string, doc uint32) (GeoPoint, bool)
}

// SegmentOf returns the segment holding doc.
func SegmentOf(r Reader, doc DocID) (Segment, uint32, bool) {
	for _, seg := range r.Segments() {
		base := seg.Base()
		if doc >= base && doc < base+DocID(seg.MaxDoc()) {
			return seg, uint32(doc - base), true
		}
	}
	return nil, 0, false
}
