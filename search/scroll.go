package search

import (
	"context"
	"io"
	"iter"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/lexigo/collector"
	"github.com/hupe1980/lexigo/extract"
)

// initialPageChunks is the size of the first page in chunks.
const initialPageChunks = 4

// ScrollPage is one chunk of a scroll.
type ScrollPage[T any] struct {
	HasMore  bool
	Hits     []T
	Took     time.Duration
	TimedOut bool
}

// ScrollOption configures a Scroll.
type ScrollOption func(*scrollOptions)

type scrollOptions struct {
	release io.Closer
	id      string
}

// WithRelease sets the handle closed by Scroll.Close, typically the reader.
func WithRelease(c io.Closer) ScrollOption {
	return func(o *scrollOptions) { o.release = c }
}

// WithScrollID overrides the generated scroll id.
func WithScrollID(id string) ScrollOption {
	return func(o *scrollOptions) {
		if id != "" {
			o.id = id
		}
	}
}

// Scroll pages forward through the hits of one request in fixed-size chunks.
//
// Hits are buffered in a page that is re-scanned only when a chunk runs past
// it; each re-scan doubles the page, so the number of scans grows with the
// logarithm of the chunks read. A Scroll holds its reader until Close and is
// not safe for concurrent use.
type Scroll[T any] struct {
	id      string
	exec    *Executor
	req     *RequestContext
	chunk   int
	release io.Closer

	nextOffset int
	pageOffset int
	pageLimit  int
	page       *CollectedState

	total     collector.Total
	scans     int
	exhausted bool
	closed    bool
}

// NewScroll creates a scroll over req's plan.
func NewScroll[T any](exec *Executor, req *RequestContext, chunkSize int, opts ...ScrollOption) (*Scroll[T], error) {
	if chunkSize < 1 {
		return nil, ErrInvalidChunkSize
	}
	o := scrollOptions{id: uuid.NewString()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Scroll[T]{
		id:      o.id,
		exec:    exec,
		req:     req,
		chunk:   chunkSize,
		release: o.release,
	}, nil
}

// ID returns the scroll id.
func (s *Scroll[T]) ID() string { return s.id }

// ChunkSize returns the number of hits per page.
func (s *Scroll[T]) ChunkSize() int { return s.chunk }

// Total returns the total of the last scan. It may be a lower bound and must
// not be used to decide whether the scroll is complete.
func (s *Scroll[T]) Total() collector.Total { return s.total }

// Scans returns the number of collection passes run so far.
func (s *Scroll[T]) Scans() int { return s.scans }

// Exhausted reports whether the scroll has returned its last page.
func (s *Scroll[T]) Exhausted() bool { return s.exhausted }

// Next returns the next chunk. After the last hit it returns an empty page
// with HasMore false, also when the budget expires in truncate mode.
func (s *Scroll[T]) Next(ctx context.Context, mapper extract.HitMapper) (*ScrollPage[T], error) {
	if s.closed {
		return nil, ErrScrollClosed
	}
	budget := s.req.Budget()
	if s.exhausted {
		return &ScrollPage[T]{Took: budget.Took(), TimedOut: budget.TimedOut()}, nil
	}

	chunkEnd := s.nextOffset + s.chunk
	if s.page == nil || chunkEnd > s.pageOffset+s.pageLimit {
		if s.page != nil {
			expired, err := budget.Check()
			if err != nil {
				return nil, err
			}
			if expired {
				s.exhausted = true
				s.req.Logger().Debug("scroll stopped", "reason", "timeout", "scroll_id", s.id, "offset", s.nextOffset)
				return &ScrollPage[T]{Took: budget.Took(), TimedOut: true}, nil
			}
		}
		if err := s.fetch(ctx); err != nil {
			return nil, err
		}
	}

	start := s.nextOffset - s.pageOffset
	available := len(s.page.Hits()) - s.pageOffset
	if start >= available {
		s.exhausted = true
		return &ScrollPage[T]{Took: budget.Took(), TimedOut: s.page.TimedOut()}, nil
	}

	loadable, err := Extractable[T](s.page).ExtractHits(ctx, s.nextOffset, chunkEnd)
	if err != nil {
		return nil, err
	}
	final, err := loadable.Materialize(ctx, mapper)
	if err != nil {
		return nil, err
	}
	s.nextOffset = chunkEnd

	return &ScrollPage[T]{
		HasMore:  true,
		Hits:     final.Hits,
		Took:     final.Took,
		TimedOut: final.TimedOut,
	}, nil
}

// fetch re-scans with the page starting at nextOffset.
func (s *Scroll[T]) fetch(ctx context.Context) error {
	if s.page == nil {
		s.pageLimit = initialPageChunks * s.chunk
	} else {
		s.pageLimit *= 2
	}
	s.pageOffset = s.nextOffset

	state, err := s.exec.Execute(ctx, s.req, s.pageOffset, s.pageLimit, s.pageOffset+s.pageLimit)
	if err != nil {
		return err
	}
	s.page = state
	s.scans += state.Passes()
	s.total = state.Total()
	return nil
}

// All iterates the remaining hits, one chunk at a time. Iteration stops at the
// first error, which is yielded with the zero T.
func (s *Scroll[T]) All(ctx context.Context, mapper extract.HitMapper) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			page, err := s.Next(ctx, mapper)
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			if !page.HasMore {
				return
			}
			for _, h := range page.Hits {
				if !yield(h, nil) {
					return
				}
			}
		}
	}
}

// Close releases the reader handle. It is safe to call more than once.
func (s *Scroll[T]) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.page = nil
	if s.release != nil {
		return s.release.Close()
	}
	return nil
}
