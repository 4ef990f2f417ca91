package search

import (
	"context"
	"errors"
	"math"
)

// ExtractableResult turns a CollectedState into raw hits and aggregates.
// Only one goroutine may extract from a given result.
type ExtractableResult[T any] struct {
	state *CollectedState
}

// Extractable wraps state for extraction into hits of type T.
func Extractable[T any](state *CollectedState) *ExtractableResult[T] {
	return &ExtractableResult[T]{state: state}
}

// State returns the wrapped state.
func (r *ExtractableResult[T]) State() *CollectedState { return r.state }

// Extract projects the ranked hits [start, end) and runs every aggregation
// of the plan over all matched documents.
//
// Both bounds are clamped to the ranked hits, so an out-of-range window yields
// fewer or zero hits. Aggregations run in name order with a budget check
// before each one: once the budget has expired the remaining aggregations are
// skipped in truncate mode, and a *timeout.Error is returned in fail mode.
// Finished aggregates are always kept. Extraction time counts toward the
// result's Took.
func (r *ExtractableResult[T]) Extract(ctx context.Context, start, end int) (*LoadableResult[T], error) {
	return r.extract(ctx, start, end, true)
}

// ExtractHits projects the ranked hits [start, end) without aggregating.
func (r *ExtractableResult[T]) ExtractHits(ctx context.Context, start, end int) (*LoadableResult[T], error) {
	return r.extract(ctx, start, end, false)
}

func (r *ExtractableResult[T]) extract(ctx context.Context, start, end int, withAggs bool) (*LoadableResult[T], error) {
	budget := r.state.req.Budget()
	budget.Start()
	defer budget.Stop()

	raws, err := r.extractHits(ctx, start, end)
	if err != nil {
		return nil, err
	}
	var aggs map[string]any
	if withAggs {
		if aggs, err = r.aggregate(ctx); err != nil {
			return nil, err
		}
	}
	budget.Stop()
	return r.loadable(raws, aggs), nil
}

func (r *ExtractableResult[T]) loadable(raws []any, aggs map[string]any) *LoadableResult[T] {
	s := r.state
	return newLoadable[T](&pendingHits{
		raws:       raws,
		projection: s.req.Plan().Projection(),
		total:      s.Total(),
		aggregates: aggs,
		maxScore:   s.MaxScore(),
		took:       s.req.Budget().Took(),
		timedOut:   s.TimedOut(),
	})
}

func (r *ExtractableResult[T]) extractHits(ctx context.Context, start, end int) ([]any, error) {
	s := r.state
	start, end = s.window(start, end)
	projection := s.req.Plan().Projection()
	scope := s.scope()

	raws := make([]any, 0, end-start)
	for _, hit := range s.hits[start:end] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw, err := projection.Extract(scope.Hit(ctx, hit))
		if err != nil {
			return nil, s.engineError("extract", err)
		}
		raws = append(raws, raw)
	}
	return raws, nil
}

func (r *ExtractableResult[T]) aggregate(ctx context.Context) (map[string]any, error) {
	s := r.state
	plan := s.req.Plan()
	names := plan.AggregationNames()
	if len(names) == 0 {
		return nil, nil
	}

	budget := s.req.Budget()
	scope := s.scope()
	out := make(map[string]any, len(names))
	for _, name := range names {
		expired, err := budget.Check()
		if err != nil {
			return nil, err
		}
		if expired {
			s.req.Logger().Debug("skipping aggregations", "reason", "timeout", "done", len(out), "skipped", len(names)-len(out))
			break
		}
		v, err := plan.aggregations[name].Aggregate(scope.Aggregation(ctx))
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			return nil, s.engineError("aggregate "+name, err)
		}
		out[name] = v
	}
	return out, nil
}

func (s *CollectedState) engineError(op string, err error) error {
	var ee *EngineError
	if errors.As(err, &ee) {
		return err
	}
	return &EngineError{Op: op, Query: s.Query().String(), Index: s.Reader().Name(), Err: err}
}

func nan() float64 { return math.NaN() }
