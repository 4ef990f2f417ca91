package loader

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/hupe1980/lexigo/extract"
	"github.com/hupe1980/lexigo/internal/cache"
)

// ErrSessionClosed is returned by BatchLoad after Close.
var ErrSessionClosed = errors.New("loader session closed")

type cachedDoc[T any] struct {
	v    *T
	size int64
}

// Session is a caching HitMapper bound to one caller-scoped unit of work.
// Objects loaded by the session are shared by every hit that references them,
// so a scroll reuses the objects of earlier pages.
type Session[T any] struct {
	l      *Loader[T]
	cache  *cache.LRU[extract.DocRef, cachedDoc[T]]
	closed atomic.Bool
}

var _ extract.HitMapper = (*Session[struct{}])(nil)

func newSession[T any](l *Loader[T]) *Session[T] {
	s := &Session[T]{l: l}
	s.cache = cache.New[extract.DocRef, cachedDoc[T]](l.opts.cacheSize,
		cache.WithOnEvict[extract.DocRef, cachedDoc[T]](func(_ extract.DocRef, d cachedDoc[T]) {
			l.opts.rc.ReleaseMemory(d.size)
		}),
	)
	return s
}

// BatchLoad loads refs, serving repeated references from the session cache.
func (s *Session[T]) BatchLoad(ctx context.Context, refs []extract.DocRef) (extract.LoadingResult, error) {
	if s.closed.Load() {
		return nil, ErrSessionClosed
	}
	return s.l.load(ctx, refs, s)
}

// Len returns the number of cached objects.
func (s *Session[T]) Len() int { return s.cache.Len() }

// Stats returns cache hit and miss counters.
func (s *Session[T]) Stats() (hits, misses int64) { return s.cache.Stats() }

// Close drops all cached objects. It is idempotent.
func (s *Session[T]) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.cache.Invalidate(func(extract.DocRef) bool { return true })
	return nil
}

func (s *Session[T]) cached(ref extract.DocRef) (*T, bool) {
	d, ok := s.cache.Get(ref)
	return d.v, ok
}

// store caches v unless the shared memory budget is exhausted.
func (s *Session[T]) store(ref extract.DocRef, v *T, size int64) {
	if s.closed.Load() || s.l.opts.cacheSize <= 0 {
		return
	}
	if err := s.l.opts.rc.AcquireMemory(size); err != nil {
		return
	}
	s.cache.Set(ref, cachedDoc[T]{v: v, size: size})
}
