package search

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/lexigo/collector"
	"github.com/hupe1980/lexigo/extract"
)

type loadState uint8

const (
	statePending loadState = iota
	stateConsumed
)

type pendingHits struct {
	raws       []any
	projection extract.HitExtractor
	total      collector.Total
	aggregates map[string]any
	maxScore   float32
	took       time.Duration
	timedOut   bool
}

// LoadableResult holds raw hits until they are materialized. It is single
// use: Materialize moves it from pending to consumed, and a consumed result
// only returns ErrAlreadyConsumed.
type LoadableResult[T any] struct {
	state   loadState
	pending *pendingHits
}

func newLoadable[T any](p *pendingHits) *LoadableResult[T] {
	return &LoadableResult[T]{state: statePending, pending: p}
}

// Consumed reports whether Materialize was called.
func (r *LoadableResult[T]) Consumed() bool { return r.state == stateConsumed }

// Len returns the number of raw hits, 0 once consumed.
func (r *LoadableResult[T]) Len() int {
	if r.state != statePending {
		return 0
	}
	return len(r.pending.raws)
}

// Materialize loads the raw hits through mapper and transforms them into T.
//
// It must run in the caller's goroutine: mapper may use caller-scoped
// resources. The documents all raw hits reference are loaded with a single
// BatchLoad call; mapper may be nil when the projection loads nothing.
// The result is consumed even when Materialize fails.
func (r *LoadableResult[T]) Materialize(ctx context.Context, mapper extract.HitMapper) (*FinalResult[T], error) {
	if r.state == stateConsumed {
		return nil, ErrAlreadyConsumed
	}
	p := r.pending
	r.state, r.pending = stateConsumed, nil

	var refs []extract.DocRef
	for _, raw := range p.raws {
		refs = p.projection.Refs(raw, refs)
	}

	var loaded extract.LoadingResult
	if len(refs) > 0 {
		if mapper == nil {
			return nil, ErrNoHitMapper
		}
		var err error
		loaded, err = mapper.BatchLoad(ctx, refs)
		if err != nil {
			return nil, fmt.Errorf("batch load of %d hits: %w", len(refs), err)
		}
	}

	hits := make([]T, 0, len(p.raws))
	for _, raw := range p.raws {
		v, err := p.projection.Transform(loaded, raw)
		if err != nil {
			return nil, err
		}
		if v == nil {
			var zero T
			hits = append(hits, zero)
			continue
		}
		t, ok := v.(T)
		if !ok {
			var want T
			return nil, fmt.Errorf("%w: got %T, want %T", ErrHitType, v, any(want))
		}
		hits = append(hits, t)
	}

	return &FinalResult[T]{
		Total:      p.total,
		Hits:       hits,
		Aggregates: p.aggregates,
		MaxScore:   p.maxScore,
		Took:       p.took,
		TimedOut:   p.timedOut,
	}, nil
}
