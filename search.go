package lexigo

import (
	"context"
	"iter"
	"time"

	"github.com/hupe1980/lexigo/collector"
	"github.com/hupe1980/lexigo/extract"
	"github.com/hupe1980/lexigo/index"
	"github.com/hupe1980/lexigo/search"
	"github.com/hupe1980/lexigo/timeout"
)

// DefaultTotalHitsThreshold is the number of hits counted exactly when a
// search sets no TotalHitsThreshold. Larger totals are lower bounds.
const DefaultTotalHitsThreshold = 1000

// Search creates a new fluent search builder for q. T is the hit type the
// projection produces; the default projection yields extract.DocRef.
//
// Example:
//
//	res, err := lexigo.Search[extract.DocRef](s, q).
//	    Sort(index.ByIndexOrder()).
//	    Offset(20).
//	    Limit(10).
//	    Execute(ctx)
//
//	// Or with streaming:
//	for ref, err := range lexigo.Search[extract.DocRef](s, q).Stream(ctx) {
//	    if err != nil { break }
//	    process(ref)
//	}
func Search[T any](s *Searcher, q index.Query) *SearchBuilder[T] {
	return &SearchBuilder[T]{
		s:         s,
		query:     q,
		threshold: -1,
	}
}

// SearchBuilder is a fluent builder for one request. It is not safe for
// concurrent use; every terminal call runs a new request.
type SearchBuilder[T any] struct {
	s     *Searcher
	query index.Query
	plan  []search.PlanOption

	offset    int
	limit     int
	hasLimit  bool
	noLimit   bool
	threshold int

	timeout     time.Duration
	timeoutMode timeout.Mode
	hasTimeout  bool

	mapper    extract.HitMapper
	requestID string
	chunkSize int
}

// Sort sets the ranking order. The default ranks by descending score.
func (sb *SearchBuilder[T]) Sort(s index.Sort) *SearchBuilder[T] {
	sb.plan = append(sb.plan, search.WithSort(s))
	return sb
}

// Offset sets the number of ranked hits to skip.
func (sb *SearchBuilder[T]) Offset(n int) *SearchBuilder[T] {
	sb.offset = n
	return sb
}

// Limit sets the page size. Zero only counts and aggregates.
func (sb *SearchBuilder[T]) Limit(n int) *SearchBuilder[T] {
	sb.limit, sb.hasLimit, sb.noLimit = n, true, false
	return sb
}

// NoLimit returns every hit from Offset on, counted exactly. Large match sets
// are ranked in at most two passes: a small prefetch pass that also counts,
// then one pass sized to the count.
func (sb *SearchBuilder[T]) NoLimit() *SearchBuilder[T] {
	sb.limit, sb.hasLimit, sb.noLimit = 0, false, true
	return sb
}

// Params sets the parameters expression queries see as `params`.
func (sb *SearchBuilder[T]) Params(params map[string]any) *SearchBuilder[T] {
	sb.plan = append(sb.plan, search.WithParams(params))
	return sb
}

// Project sets the hit projection.
func (sb *SearchBuilder[T]) Project(h extract.HitExtractor) *SearchBuilder[T] {
	sb.plan = append(sb.plan, search.WithProjection(h))
	return sb
}

// Aggregate adds a named aggregation.
func (sb *SearchBuilder[T]) Aggregate(name string, a extract.AggregationExtractor) *SearchBuilder[T] {
	sb.plan = append(sb.plan, search.WithAggregation(name, a))
	return sb
}

// Highlight configures the plan-level highlighter.
func (sb *SearchBuilder[T]) Highlight(cfg extract.HighlighterConfig) *SearchBuilder[T] {
	sb.plan = append(sb.plan, search.WithHighlighter(cfg))
	return sb
}

// Indexes sets the index names the request targets.
func (sb *SearchBuilder[T]) Indexes(names ...string) *SearchBuilder[T] {
	sb.plan = append(sb.plan, search.WithIndexes(names...))
	return sb
}

// Routing sets routing keys.
func (sb *SearchBuilder[T]) Routing(keys ...string) *SearchBuilder[T] {
	sb.plan = append(sb.plan, search.WithRouting(keys...))
	return sb
}

// TotalHitsThreshold sets how many hits are counted exactly.
func (sb *SearchBuilder[T]) TotalHitsThreshold(n int) *SearchBuilder[T] {
	sb.threshold = n
	return sb
}

// Timeout overrides the Searcher's default time limit for this request.
func (sb *SearchBuilder[T]) Timeout(d time.Duration, mode timeout.Mode) *SearchBuilder[T] {
	sb.timeout, sb.timeoutMode, sb.hasTimeout = d, mode, true
	return sb
}

// Mapper sets the hit mapper that loads domain objects for the page.
func (sb *SearchBuilder[T]) Mapper(m extract.HitMapper) *SearchBuilder[T] {
	sb.mapper = m
	return sb
}

// RequestID sets the request id used in logs.
func (sb *SearchBuilder[T]) RequestID(id string) *SearchBuilder[T] {
	sb.requestID = id
	return sb
}

// ChunkSize sets the scroll page size used by Scroll and Stream.
func (sb *SearchBuilder[T]) ChunkSize(n int) *SearchBuilder[T] {
	sb.chunkSize = n
	return sb
}

// request builds the request context. The plan targets the Searcher's own
// index unless Indexes overrides it.
func (sb *SearchBuilder[T]) request() *search.RequestContext {
	s := sb.s
	plan := append([]search.PlanOption{search.WithIndexes(s.reader.Name())}, sb.plan...)
	return search.NewRequestContext(s.reader,
		search.NewPlan(sb.query, plan...),
		search.WithBudget(s.budget(sb.timeout, sb.timeoutMode, sb.hasTimeout)),
		search.WithLogger(s.logger.Logger),
		search.WithRequestID(sb.requestID),
	)
}

func (sb *SearchBuilder[T]) window() (limit, threshold int) {
	if sb.noLimit {
		return -1, collector.ExactCount
	}
	limit = sb.limit
	if !sb.hasLimit {
		limit = sb.s.opts.defaultLimit
	}
	threshold = sb.threshold
	if threshold < 0 {
		threshold = DefaultTotalHitsThreshold
	}
	return limit, max(threshold, sb.offset+limit)
}

// Execute runs the search and materializes the page [Offset, Offset+Limit).
func (sb *SearchBuilder[T]) Execute(ctx context.Context) (*search.FinalResult[T], error) {
	s := sb.s
	ref, err := s.acquire()
	if err != nil {
		return nil, err
	}
	defer ref.Close()

	if sb.hasLimit && sb.limit < 0 {
		return nil, &ErrInvalidLimit{Limit: sb.limit}
	}

	req := sb.request()
	start := time.Now()
	res, err := sb.execute(ctx, req)
	took := time.Since(start)

	hits := 0
	total := ""
	if res != nil {
		hits = len(res.Hits)
		total = res.Total.String()
	}
	s.metrics.RecordSearch(hits, took, err)
	s.recordTimeout(ctx, "search", req, err)
	s.logger.LogSearch(ctx, req.ID(), hits, total, took, err)

	return res, translateError(err)
}

func (sb *SearchBuilder[T]) execute(ctx context.Context, req *search.RequestContext) (*search.FinalResult[T], error) {
	limit, threshold := sb.window()
	state, err := sb.s.exec.Execute(ctx, req, sb.offset, limit, threshold)
	if err != nil {
		return nil, err
	}
	end := state.Offset() + limit
	if limit < 0 {
		end = len(state.Hits())
	}
	lr, err := search.Extractable[T](state).Extract(ctx, state.Offset(), end)
	if err != nil {
		return nil, err
	}
	return lr.Materialize(ctx, sb.mapper)
}

// MustExecute runs the search, panicking on error.
// Use this only in tests or when you're certain the query is valid.
func (sb *SearchBuilder[T]) MustExecute(ctx context.Context) *search.FinalResult[T] {
	res, err := sb.Execute(ctx)
	if err != nil {
		panic(err)
	}
	return res
}

// First returns the top-ranked hit at Offset, or ErrNoHits.
func (sb *SearchBuilder[T]) First(ctx context.Context) (T, error) {
	sb.Limit(1)
	res, err := sb.Execute(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	if len(res.Hits) == 0 {
		var zero T
		return zero, ErrNoHits
	}
	return res.Hits[0], nil
}

// Count counts the matches without ranking. With a fail-mode timeout the
// count is collected under the deadline and may be a lower bound.
func (sb *SearchBuilder[T]) Count(ctx context.Context) (search.CountResult, error) {
	s := sb.s
	ref, err := s.acquire()
	if err != nil {
		return search.CountResult{}, err
	}
	defer ref.Close()

	req := sb.request()
	res, err := s.exec.Count(ctx, req)
	s.metrics.RecordCount(res.Took, err)
	s.recordTimeout(ctx, "count", req, err)
	s.logger.LogCount(ctx, req.ID(), res.Total.String(), res.Took, err)

	return res, translateError(err)
}

// Explain explains how ref scored for the query.
func (sb *SearchBuilder[T]) Explain(ctx context.Context, doc extract.DocRef) (*index.Explanation, error) {
	ref, err := sb.s.acquire()
	if err != nil {
		return nil, err
	}
	defer ref.Close()

	exp, err := sb.s.exec.Explain(ctx, sb.request(), doc)
	return exp, translateError(err)
}

// Scroll opens a scroll over every hit of the query. The scroll holds the
// reader until it is closed.
func (sb *SearchBuilder[T]) Scroll() (*Scroll[T], error) {
	s := sb.s
	ref, err := s.acquire()
	if err != nil {
		return nil, err
	}

	chunk := sb.chunkSize
	if chunk == 0 {
		chunk = s.opts.scrollChunkSize
	}
	req := sb.request()
	inner, err := search.NewScroll[T](s.exec, req, chunk,
		search.WithRelease(ref),
		search.WithScrollID(sb.requestID),
	)
	if err != nil {
		_ = ref.Close()
		return nil, translateError(err)
	}
	return &Scroll[T]{inner: inner, s: s, req: req, mapper: sb.mapper}, nil
}

// Stream returns an iterator over every hit of the query, fetched one scroll
// chunk at a time. The iterator supports early termination by breaking from
// the loop; the scroll is closed when iteration ends.
//
// Example:
//
//	for p, err := range lexigo.Search[*Product](s, q).Mapper(sess).Stream(ctx) {
//	    if err != nil { break }
//	    process(p)
//	}
func (sb *SearchBuilder[T]) Stream(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		sc, err := sb.Scroll()
		if err != nil {
			var zero T
			yield(zero, err)
			return
		}
		defer sc.Close()

		for v, err := range sc.All(ctx) {
			if !yield(v, err) || err != nil {
				return
			}
		}
	}
}

// Scroll pages through the hits of one query. It is not safe for concurrent use.
type Scroll[T any] struct {
	inner  *search.Scroll[T]
	s      *Searcher
	req    *search.RequestContext
	mapper extract.HitMapper
	hits   int
	err    error
	closed bool
	ended  bool
}

// ID returns the scroll id.
func (sc *Scroll[T]) ID() string { return sc.inner.ID() }

// Exhausted reports whether the last page has been returned.
func (sc *Scroll[T]) Exhausted() bool { return sc.inner.Exhausted() }

// Scans returns the number of collection passes run so far.
func (sc *Scroll[T]) Scans() int { return sc.inner.Scans() }

// Next returns the next page. A page with HasMore false ends the scroll.
func (sc *Scroll[T]) Next(ctx context.Context) (*search.ScrollPage[T], error) {
	if sc.ended {
		page, err := sc.inner.Next(ctx, sc.mapper)
		return page, translateError(err)
	}
	start := time.Now()
	page, err := sc.inner.Next(ctx, sc.mapper)
	n := 0
	if page != nil {
		n = len(page.Hits)
	}
	sc.hits += n
	sc.s.metrics.RecordScroll(n, time.Since(start), err)
	if err != nil {
		sc.err = err
		sc.s.recordTimeout(ctx, "scroll", sc.req, err)
	} else if !page.HasMore {
		sc.ended = true
		if page.TimedOut {
			sc.s.recordTimeout(ctx, "scroll", sc.req, nil)
		}
	}
	return page, translateError(err)
}

// All iterates the remaining hits. Iteration stops at the first error, which
// is yielded with the zero T.
func (sc *Scroll[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			page, err := sc.Next(ctx)
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

// Close releases the reader. It is safe to call more than once.
func (sc *Scroll[T]) Close() error {
	if !sc.closed {
		sc.closed = true
		sc.s.logger.LogScroll(context.Background(), sc.inner.ID(), sc.hits, sc.inner.Scans(), sc.err)
	}
	return sc.inner.Close()
}
