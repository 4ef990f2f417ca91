package memindex

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/hupe1980/lexigo/codec"
	"github.com/hupe1980/lexigo/index"
	"golang.org/x/sync/errgroup"
)

// ErrClosed is returned by a Reader after Close.
var ErrClosed = errors.New("memindex: reader closed")

// Reader is an immutable snapshot of an Index.
type Reader struct {
	name     string
	codec    codec.Codec
	ioHook   func(op string) error
	segments []*segmentView
	numDocs  int
	maxDoc   int

	fieldDocs map[string]int
	fieldLen  map[string]int64

	closed atomic.Bool
}

var _ index.Reader = (*Reader)(nil)

func (r *Reader) Name() string { return r.name }
func (r *Reader) NumDocs() int { return r.numDocs }
func (r *Reader) MaxDoc() int  { return r.maxDoc }

// Segments returns the segments in DocID order.
func (r *Reader) Segments() []index.Segment {
	out := make([]index.Segment, len(r.segments))
	for i, s := range r.segments {
		out[i] = s
	}
	return out
}

func (r *Reader) io(op string) error {
	if r.closed.Load() {
		return ErrClosed
	}
	if r.ioHook != nil {
		return r.ioHook(op)
	}
	return nil
}

// Count counts live matches of q. Segments are counted concurrently.
func (r *Reader) Count(ctx context.Context, q index.Query) (int, error) {
	if err := r.io("count"); err != nil {
		return 0, err
	}

	counts := make([]int, len(r.segments))
	g, ctx := errgroup.WithContext(ctx)
	for i, seg := range r.segments {
		g.Go(func() error {
			it, err := r.compile(q, seg, nil)
			if err != nil {
				return err
			}
			n := 0
			for doc := it.next(); doc != noMoreDocs; doc = it.next() {
				if n%4096 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				if seg.Live(uint32(doc)) {
					n++
				}
			}
			if err := it.err(); err != nil {
				return err
			}
			counts[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	return total, nil
}

// Document loads the stored fields of doc.
func (r *Reader) Document(doc index.DocID) (index.StoredFields, error) {
	seg, local, err := r.locate(doc)
	if err != nil {
		return nil, err
	}
	return seg.document(local)
}

// Explain describes the score of doc for q.
func (r *Reader) Explain(q index.Query, doc index.DocID) (*index.Explanation, error) {
	if err := r.io("explain"); err != nil {
		return nil, err
	}
	seg, local, err := r.locate(doc)
	if err != nil {
		return nil, err
	}
	return r.explain(q, seg, local, nil)
}

// Close releases the reader. Later calls fail with ErrClosed.
func (r *Reader) Close() error {
	r.closed.Store(true)
	return nil
}

func (r *Reader) locate(doc index.DocID) (*segmentView, uint32, error) {
	for _, seg := range r.segments {
		if doc >= seg.base && doc < seg.base+index.DocID(seg.MaxDoc()) {
			local := uint32(doc - seg.base)
			if !seg.Live(local) {
				return nil, 0, fmt.Errorf("%w: doc %d is deleted", index.ErrDocNotFound, doc)
			}
			return seg, local, nil
		}
	}
	return nil, 0, fmt.Errorf("%w: doc %d outside reader %q", index.ErrDocNotFound, doc, r.name)
}
