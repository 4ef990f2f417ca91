package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/lexigo/blobstore"
	"github.com/hupe1980/lexigo/codec"
	"github.com/hupe1980/lexigo/extract"
	"github.com/hupe1980/lexigo/internal/resource"
)

const (
	// DefaultConcurrency is the per-batch fetch limit.
	DefaultConcurrency = 16
	// DefaultCacheEntries is the number of objects a session caches.
	DefaultCacheEntries = 1024
)

// NotFoundError is returned in strict mode when a hit has no stored document.
type NotFoundError struct {
	Ref  extract.DocRef
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("document %s not found (blob %q)", e.Ref, e.Name)
}

// Unwrap returns blobstore.ErrNotFound.
func (e *NotFoundError) Unwrap() error { return blobstore.ErrNotFound }

// DecodeError is returned when a blob cannot be decoded into the target type.
type DecodeError struct {
	Ref   extract.DocRef
	Codec string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode document %s with %s: %v", e.Ref, e.Codec, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

type options struct {
	prefix      string
	codec       codec.Codec
	strict      bool
	concurrency int
	rc          *resource.Controller
	cacheSize   int64
	logger      *slog.Logger
}

// Option configures a Loader.
type Option func(*options)

// WithPrefix sets the blob name prefix.
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// WithCodec sets the payload codec. Defaults to codec.Default.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c != nil {
			o.codec = c
		}
	}
}

// WithStrict makes a missing document fail the whole batch with a *NotFoundError.
// By default missing documents load as absent.
func WithStrict(strict bool) Option {
	return func(o *options) { o.strict = strict }
}

// WithConcurrency caps the number of concurrent fetches of one batch.
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithRate paces fetches across all batches and sessions of the loader.
// perSec <= 0 disables pacing.
func WithRate(perSec float64, burst int) Option {
	return func(o *options) {
		cfg := o.rc.Config()
		cfg.FetchesPerSec = perSec
		cfg.FetchBurst = burst
		o.rc = resource.NewController(cfg)
	}
}

// WithCacheEntries sets the number of decoded objects a session keeps.
// 0 disables session caching.
func WithCacheEntries(n int) Option {
	return func(o *options) { o.cacheSize = int64(n) }
}

// WithCacheMemory bounds the payload bytes cached by all sessions together.
func WithCacheMemory(bytes int64) Option {
	return func(o *options) {
		cfg := o.rc.Config()
		cfg.MemoryLimitBytes = bytes
		o.rc = resource.NewController(cfg)
	}
}

// WithLogger sets the logger. Defaults to discarding output.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Loader loads documents of type T from a blob store.
// It is safe for concurrent use.
type Loader[T any] struct {
	store blobstore.BlobStore
	opts  options
}

var _ extract.HitMapper = (*Loader[struct{}])(nil)

// New creates a Loader over store.
func New[T any](store blobstore.BlobStore, opts ...Option) *Loader[T] {
	o := options{
		codec:       codec.Default,
		concurrency: DefaultConcurrency,
		cacheSize:   DefaultCacheEntries,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rc == nil {
		o.rc = resource.NewController(resource.Config{})
	}
	return &Loader[T]{store: store, opts: o}
}

// Name returns the blob name of ref.
func (l *Loader[T]) Name(ref extract.DocRef) string {
	return l.opts.prefix + ref.Index + "/" + ref.ID
}

// Put encodes v and stores it as the document id of index.
func (l *Loader[T]) Put(ctx context.Context, index, id string, v *T) error {
	data, err := l.opts.codec.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode document %s/%s: %w", index, id, err)
	}
	return l.store.Put(ctx, l.Name(extract.DocRef{Index: index, ID: id}), data)
}

// Delete removes the document id of index.
func (l *Loader[T]) Delete(ctx context.Context, index, id string) error {
	return l.store.Delete(ctx, l.Name(extract.DocRef{Index: index, ID: id}))
}

// Get loads a single document. Missing documents return a *NotFoundError.
func (l *Loader[T]) Get(ctx context.Context, ref extract.DocRef) (*T, error) {
	v, _, err := l.fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, &NotFoundError{Ref: ref, Name: l.Name(ref)}
	}
	return v, nil
}

// BatchLoad loads refs without caching.
func (l *Loader[T]) BatchLoad(ctx context.Context, refs []extract.DocRef) (extract.LoadingResult, error) {
	return l.load(ctx, refs, nil)
}

// NewSession returns a caching HitMapper scoped to one unit of work.
func (l *Loader[T]) NewSession() *Session[T] {
	return newSession(l)
}

// Stats reports fetch counters of the shared resource controller.
func (l *Loader[T]) Stats() (fetches, inFlight int64) {
	return l.opts.rc.Fetches(), l.opts.rc.InFlight()
}

// fetch reads and decodes one document. A nil value means not found (non-strict).
func (l *Loader[T]) fetch(ctx context.Context, ref extract.DocRef) (*T, int, error) {
	name := l.Name(ref)

	if err := l.opts.rc.AcquireFetch(ctx); err != nil {
		return nil, 0, err
	}
	data, err := blobstore.ReadAll(ctx, l.store, name)
	l.opts.rc.ReleaseFetch()
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			if l.opts.strict {
				return nil, 0, &NotFoundError{Ref: ref, Name: name}
			}
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("load document %s: %w", ref, err)
	}

	v := new(T)
	if err := l.opts.codec.Unmarshal(data, v); err != nil {
		return nil, 0, &DecodeError{Ref: ref, Codec: l.opts.codec.Name(), Err: err}
	}
	return v, len(data), nil
}

// load fetches every distinct ref not already in the session cache.
func (l *Loader[T]) load(ctx context.Context, refs []extract.DocRef, sess *Session[T]) (extract.LoadingResult, error) {
	start := time.Now()
	out := make(extract.Loaded, len(refs))

	var pending []extract.DocRef
	seen := make(map[extract.DocRef]struct{}, len(refs))
	for _, ref := range refs {
		if _, dup := seen[ref]; dup {
			continue
		}
		seen[ref] = struct{}{}
		if sess != nil {
			if v, ok := sess.cached(ref); ok {
				out[ref] = v
				continue
			}
		}
		pending = append(pending, ref)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.opts.concurrency)
	for _, ref := range pending {
		g.Go(func() error {
			v, size, err := l.fetch(gctx, ref)
			if err != nil {
				return err
			}
			if v == nil {
				return nil
			}
			mu.Lock()
			out[ref] = v
			mu.Unlock()
			if sess != nil {
				sess.store(ref, v, int64(size))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		l.opts.logger.WarnContext(ctx, "batch load failed",
			slog.Int("refs", len(refs)),
			slog.Any("error", err),
		)
		return nil, err
	}

	l.opts.logger.DebugContext(ctx, "batch loaded",
		slog.Int("refs", len(refs)),
		slog.Int("fetched", len(pending)),
		slog.Int("found", len(out)),
		slog.Duration("duration", time.Since(start)),
	)
	return out, nil
}
