package lexigo

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hupe1980/lexigo/collector"
	"github.com/hupe1980/lexigo/extract"
	"github.com/hupe1980/lexigo/index"
	"github.com/hupe1980/lexigo/search"
	"github.com/hupe1980/lexigo/timeout"
)

// Searcher runs requests against one index reader.
//
// A Searcher is safe for concurrent use. Every request holds a reference on
// the reader; Close closes the reader once the last open request or scroll
// has released it.
type Searcher struct {
	reader  index.Reader
	exec    *search.Executor
	opts    options
	logger  *Logger
	metrics MetricsCollector

	mu     sync.Mutex
	refs   int
	closed bool
	err    error
}

// New creates a Searcher over reader. The Searcher owns the reader.
func New(reader index.Reader, optFns ...Option) *Searcher {
	o := applyOptions(optFns)
	logger := o.logger.WithIndex(reader.Name())
	return &Searcher{
		reader: reader,
		exec: search.NewExecutor(
			search.WithPrefetch(o.prefetchDocs, o.prefetchCount),
			search.WithExecutorLogger(logger.Logger),
		),
		opts:    o,
		logger:  logger,
		metrics: o.metricsCollector,
	}
}

// Reader returns the underlying reader.
func (s *Searcher) Reader() index.Reader { return s.reader }

// Executor returns the query executor.
func (s *Searcher) Executor() *search.Executor { return s.exec }

// Count counts the matches of q.
func (s *Searcher) Count(ctx context.Context, q index.Query) (collector.Total, error) {
	res, err := Search[extract.DocRef](s, q).Count(ctx)
	if err != nil {
		return collector.Total{}, err
	}
	return res.Total, nil
}

// Explain explains how ref scored for q.
func (s *Searcher) Explain(ctx context.Context, q index.Query, ref extract.DocRef) (*index.Explanation, error) {
	return Search[extract.DocRef](s, q).Explain(ctx, ref)
}

// Close closes the Searcher. The reader is closed when no request or scroll
// holds it anymore; the returned error is the reader's if it closed now.
// Close is idempotent.
func (s *Searcher) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if s.refs == 0 {
		s.err = s.reader.Close()
		return s.err
	}
	s.logger.Debug("close deferred", "open_refs", s.refs)
	return nil
}

// acquire takes a reference on the reader.
func (s *Searcher) acquire() (*readerRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}
	s.refs++
	return &readerRef{s: s}, nil
}

func (s *Searcher) release() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refs--
	if s.closed && s.refs == 0 {
		s.err = s.reader.Close()
		return s.err
	}
	return nil
}

// budget creates the budget of one request; d overrides the default limit
// when positive.
func (s *Searcher) budget(d time.Duration, mode timeout.Mode, override bool) *timeout.Budget {
	if !override {
		d, mode = s.opts.timeout, s.opts.timeoutMode
	}
	var opts []timeout.Option
	if s.opts.clock != nil {
		opts = append(opts, timeout.WithClock(s.opts.clock))
	}
	if d <= 0 {
		mode = timeout.ModeNone
	}
	return timeout.New(mode, d, opts...)
}

func (s *Searcher) recordTimeout(ctx context.Context, op string, req *search.RequestContext, err error) {
	if req.Budget().TimedOut() || errors.Is(err, timeout.ErrTimeout) {
		s.metrics.RecordTimeout(op)
		s.logger.LogTimeout(ctx, op, req.ID(), req.Budget().Limit())
	}
}

// readerRef releases its reference once.
type readerRef struct {
	s    *Searcher
	once sync.Once
}

func (r *readerRef) Close() error {
	var err error
	r.once.Do(func() { err = r.s.release() })
	return err
}
