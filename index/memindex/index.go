package memindex

import (
	"errors"
	"fmt"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/lexigo/index"
)

// ErrEmptyID is returned by Add for a document without an ID.
var ErrEmptyID = errors.New("memindex: document id must not be empty")

// Document is one input document.
type Document struct {
	ID       string
	Text     map[string]string
	Keywords map[string]string
	Numbers  map[string]float64
	Geo      map[string]index.GeoPoint
	Stored   map[string]any
}

type location struct {
	seg int
	doc uint32
}

// Index buffers documents and cuts them into immutable segments.
type Index struct {
	name string
	opts options

	mu       sync.RWMutex
	segments []*segment
	deleted  []*roaring.Bitmap
	locs     map[string]location

	pending    []Document
	blocks     [][]byte
	pendingIDs map[string]int
}

// New creates an empty index.
func New(name string, optFns ...Option) *Index {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Index{
		name:       name,
		opts:       opts,
		locs:       make(map[string]location),
		pendingIDs: make(map[string]int),
	}
}

// Name returns the index name.
func (ix *Index) Name() string { return ix.name }

// Add buffers a document. A document with an existing ID replaces the old
// version once flushed.
func (ix *Index) Add(doc Document) error {
	if doc.ID == "" {
		return ErrEmptyID
	}
	stored := doc.Stored
	if stored == nil {
		stored = map[string]any{}
	}
	raw, err := ix.opts.codec.Marshal(stored)
	if err != nil {
		return fmt.Errorf("memindex: encode stored fields of %q: %w", doc.ID, err)
	}
	block, err := compressBlock(raw, ix.opts.compression)
	if err != nil {
		return fmt.Errorf("memindex: compress stored fields of %q: %w", doc.ID, err)
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if i, ok := ix.pendingIDs[doc.ID]; ok {
		ix.pending[i] = doc
		ix.blocks[i] = block
		return nil
	}
	ix.pendingIDs[doc.ID] = len(ix.pending)
	ix.pending = append(ix.pending, doc)
	ix.blocks = append(ix.blocks, block)
	return nil
}

// Delete removes a document by ID and reports whether it existed.
func (ix *Index) Delete(id string) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if i, ok := ix.pendingIDs[id]; ok {
		ix.pending = append(ix.pending[:i], ix.pending[i+1:]...)
		ix.blocks = append(ix.blocks[:i], ix.blocks[i+1:]...)
		delete(ix.pendingIDs, id)
		for j := i; j < len(ix.pending); j++ {
			ix.pendingIDs[ix.pending[j].ID] = j
		}
		return true
	}

	loc, ok := ix.locs[id]
	if !ok {
		return false
	}
	ix.deleted[loc.seg].Add(loc.doc)
	delete(ix.locs, id)
	ix.opts.logger.Debug("document deleted", "index", ix.name, "id", id, "segment", loc.seg)
	return true
}

// Flush turns the buffered documents into a new segment.
func (ix *Index) Flush() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if len(ix.pending) == 0 {
		return nil
	}

	ord := len(ix.segments)
	seg := buildSegment(ix.pending, ix.blocks, ix.opts.compression)

	for i, d := range ix.pending {
		if old, ok := ix.locs[d.ID]; ok {
			ix.deleted[old.seg].Add(old.doc)
		}
		ix.locs[d.ID] = location{seg: ord, doc: uint32(i)}
	}

	ix.segments = append(ix.segments, seg)
	ix.deleted = append(ix.deleted, roaring.New())
	ix.opts.logger.Debug("segment flushed", "index", ix.name, "segment", ord, "docs", len(ix.pending))

	ix.pending = nil
	ix.blocks = nil
	ix.pendingIDs = make(map[string]int)
	return nil
}

// Reader returns a point-in-time reader over the flushed segments.
func (ix *Index) Reader() *Reader {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	r := &Reader{
		name:      ix.name,
		codec:     ix.opts.codec,
		ioHook:    ix.opts.ioHook,
		fieldDocs: make(map[string]int),
		fieldLen:  make(map[string]int64),
	}

	var base index.DocID
	for ord, seg := range ix.segments {
		view := &segmentView{
			segment: seg,
			ord:     ord,
			base:    base,
			deleted: ix.deleted[ord].Clone(),
			reader:  r,
		}
		r.segments = append(r.segments, view)
		r.numDocs += view.numDocs()
		base += index.DocID(len(seg.ids))

		for field, tf := range seg.text {
			r.fieldDocs[field] += tf.docCount
			r.fieldLen[field] += tf.totalLen
		}
	}
	r.maxDoc = int(base)
	return r
}
