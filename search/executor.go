package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/hupe1980/lexigo/collector"
	"github.com/hupe1980/lexigo/extract"
	"github.com/hupe1980/lexigo/index"
)

const (
	// DefaultPrefetchDocs is the window of the prefetch pass.
	DefaultPrefetchDocs = 100
	// DefaultPrefetchCountThreshold is how far past DefaultPrefetchDocs the
	// prefetch pass keeps counting exactly.
	DefaultPrefetchCountThreshold = 10_000
)

// ExecutorOptions tunes the adaptive prefetch.
type ExecutorOptions struct {
	PrefetchDocs           int
	PrefetchCountThreshold int
	Logger                 *slog.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*ExecutorOptions)

// WithPrefetch overrides the prefetch window and count threshold.
func WithPrefetch(docs, countThreshold int) ExecutorOption {
	return func(o *ExecutorOptions) {
		if docs > 0 {
			o.PrefetchDocs = docs
		}
		if countThreshold >= 0 {
			o.PrefetchCountThreshold = countThreshold
		}
	}
}

// WithExecutorLogger sets the fallback logger for requests without one.
func WithExecutorLogger(l *slog.Logger) ExecutorOption {
	return func(o *ExecutorOptions) {
		if l != nil {
			o.Logger = l
		}
	}
}

// Executor runs collection passes. It holds no per-request state and is safe
// for concurrent use.
type Executor struct {
	opts ExecutorOptions
}

// NewExecutor creates an executor.
func NewExecutor(opts ...ExecutorOption) *Executor {
	o := ExecutorOptions{
		PrefetchDocs:           DefaultPrefetchDocs,
		PrefetchCountThreshold: DefaultPrefetchCountThreshold,
		Logger:                 slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Executor{opts: o}
}

// Options returns the effective options.
func (e *Executor) Options() ExecutorOptions { return e.opts }

// Execute collects the ranked window [0, offset+limit) of req's plan.
// A negative limit asks for every match and enables the adaptive prefetch;
// limit 0 only counts. totalHitsThreshold bounds exact counting of a single pass.
//
// The budget is checked between passes: in truncate mode an expired budget
// skips the second pass and marks the state timed out; in fail mode it
// returns a *timeout.Error.
func (e *Executor) Execute(ctx context.Context, req *RequestContext, offset, limit, totalHitsThreshold int) (*CollectedState, error) {
	if offset < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeWindow, offset)
	}

	numDocs := req.Reader().NumDocs()
	offset = min(offset, numDocs)

	budget := req.Budget()
	budget.Start()
	defer budget.Stop()

	if limit == 0 {
		return e.pass(ctx, req, offset, 0, totalHitsThreshold, nil)
	}

	window := numDocs
	if limit > 0 && limit < numDocs-offset {
		window = offset + limit
	}

	if limit > 0 || numDocs-offset <= e.opts.PrefetchDocs {
		return e.pass(ctx, req, offset, window, totalHitsThreshold, nil)
	}

	prefetchThreshold := e.opts.PrefetchDocs + e.opts.PrefetchCountThreshold
	first, err := e.pass(ctx, req, offset, e.opts.PrefetchDocs, prefetchThreshold, nil)
	if err != nil {
		return nil, err
	}

	total := first.Total()
	var size, threshold int
	switch {
	case total.LowerBound || total.Value > prefetchThreshold:
		size, threshold = window, collector.ExactCount
	case total.Value <= e.opts.PrefetchDocs:
		return first, nil
	default:
		size, threshold = total.Value, total.Value
	}

	expired, err := budget.Check()
	if err != nil {
		return nil, err
	}
	if expired {
		req.Logger().Debug("skipping second pass", "reason", "timeout", "total", total.String())
		first.timedOut = true
		return first, nil
	}
	return e.pass(ctx, req, offset, size, threshold, first)
}

// pass runs one collection pass with a ranking window of size (0 = count only).
func (e *Executor) pass(ctx context.Context, req *RequestContext, offset, size, threshold int, prev *CollectedState) (*CollectedState, error) {
	plan := req.Plan()
	reader := req.Reader()

	b := collector.NewSetBuilder()
	if size > 0 {
		b.RequireTopDocs(plan.Sort(), size, threshold)
	} else {
		b.RequireTotalHitCount(threshold)
	}
	if size > 0 {
		plan.Projection().Request(b)
	}
	for _, name := range plan.AggregationNames() {
		plan.aggregations[name].Request(b)
	}
	set := b.Build()

	start := time.Now()
	q := plan.ExecutedQuery()
	if err := collector.Run(ctx, reader, q, set.Composite()); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, &EngineError{Op: "execute", Query: q.String(), Index: reader.Name(), Err: err}
	}

	passes := 1
	if prev != nil {
		passes += prev.passes
	}
	state := &CollectedState{
		req:    req,
		set:    set,
		offset: offset,
		passes: passes,
	}
	if td := set.TopDocs(); td != nil {
		state.hits = td.Hits()
	}

	req.Logger().Debug("collection pass",
		"pass", passes,
		"window", size,
		"threshold", threshold,
		"total", state.Total().String(),
		"duration", time.Since(start),
	)
	return state, nil
}

// CountResult is the result of Count.
type CountResult struct {
	Total    collector.Total
	Took     time.Duration
	TimedOut bool
}

// Count counts the matches of req's plan.
//
// Without a hard timeout it uses the reader's native count. With one, it
// collects through a time-limited counter and returns a lower-bound partial
// count with TimedOut set once the deadline passes. Truncate-mode budgets
// do not apply to counts.
func (e *Executor) Count(ctx context.Context, req *RequestContext) (CountResult, error) {
	reader := req.Reader()
	q := req.Plan().ExecutedQuery()
	budget := req.Budget()
	budget.Start()
	defer budget.Stop()

	if !budget.HasHardTimeout() {
		n, err := reader.Count(ctx, q)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return CountResult{}, err
			}
			return CountResult{}, &EngineError{Op: "count", Query: q.String(), Index: reader.Name(), Err: err}
		}
		return CountResult{Total: collector.Exact(n), Took: budget.Elapsed()}, nil
	}

	counter := collector.NewTotalHitCount(collector.ExactCount)
	limited := collector.NewTimeLimited(counter, budget)
	if err := collector.Run(ctx, reader, q, limited); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return CountResult{}, err
		}
		return CountResult{}, &EngineError{Op: "count", Query: q.String(), Index: reader.Name(), Err: err}
	}

	total := counter.Total()
	if limited.TimedOut() {
		total.LowerBound = true
		req.Logger().Debug("count timed out", "partial", total.Value)
	}
	return CountResult{Total: total, Took: budget.Elapsed(), TimedOut: limited.TimedOut()}, nil
}

// Explain explains how ref scored for req's plan.
func (e *Executor) Explain(_ context.Context, req *RequestContext, ref extract.DocRef) (*index.Explanation, error) {
	plan := req.Plan()
	if !plan.TargetsIndex(ref.Index) {
		return nil, fmt.Errorf("%w: %q not in %v", ErrExplainTargetMismatch, ref.Index, plan.Indexes())
	}

	reader := req.Reader()
	q := plan.ExecutedQuery()
	exp, err := reader.Explain(q, ref.Doc)
	if err != nil {
		return nil, &EngineError{Op: "explain", Query: q.String(), Index: reader.Name(), Err: err}
	}
	return exp, nil
}
