package search

import (
	"maps"
	"slices"
	"sort"

	"github.com/hupe1980/lexigo/extract"
	"github.com/hupe1980/lexigo/index"
)

// Plan is an immutable query plan. It is built once per logical request and
// reused across every sub-scan of that request.
type Plan struct {
	query        index.Query
	executed     index.Query
	sort         index.Sort
	routing      []string
	params       map[string]any
	projection   extract.HitExtractor
	aggregations map[string]extract.AggregationExtractor
	aggNames     []string
	highlighter  *extract.HighlighterConfig
	indexes      []string
}

// PlanOption configures a Plan.
type PlanOption func(*Plan)

// WithSort sets the sort. The default sorts by relevance.
func WithSort(s index.Sort) PlanOption {
	return func(p *Plan) { p.sort = index.Sort{Fields: slices.Clone(s.Fields)} }
}

// WithRouting sets the routing keys.
func WithRouting(keys ...string) PlanOption {
	return func(p *Plan) { p.routing = slices.Clone(keys) }
}

// WithParams sets the named parameters bound to expressions in the query.
func WithParams(params map[string]any) PlanOption {
	return func(p *Plan) { p.params = maps.Clone(params) }
}

// WithProjection sets the root projection. The default projects DocRefs.
func WithProjection(h extract.HitExtractor) PlanOption {
	return func(p *Plan) {
		if h != nil {
			p.projection = h
		}
	}
}

// WithAggregation adds a named aggregation. A later one with the same name wins.
func WithAggregation(name string, a extract.AggregationExtractor) PlanOption {
	return func(p *Plan) {
		if p.aggregations == nil {
			p.aggregations = map[string]extract.AggregationExtractor{}
		}
		p.aggregations[name] = a
	}
}

// WithHighlighter sets the plan-level highlighter.
func WithHighlighter(cfg extract.HighlighterConfig) PlanOption {
	return func(p *Plan) {
		cfg.Fields = slices.Clone(cfg.Fields)
		p.highlighter = &cfg
	}
}

// WithIndexes records the indexes the plan targets.
func WithIndexes(names ...string) PlanOption {
	return func(p *Plan) { p.indexes = slices.Clone(names) }
}

// NewPlan builds a plan for q. A nil q matches all documents.
func NewPlan(q index.Query, opts ...PlanOption) *Plan {
	if q == nil {
		q = index.MatchAll{}
	}
	p := &Plan{query: q, projection: extract.DocRefProjection{}}
	for _, opt := range opts {
		opt(p)
	}
	p.executed = index.WithParams(q, p.params)
	for name := range p.aggregations {
		p.aggNames = append(p.aggNames, name)
	}
	sort.Strings(p.aggNames)
	return p
}

// Query returns the structured query as given.
func (p *Plan) Query() index.Query { return p.query }

// ExecutedQuery returns the query with the plan parameters bound.
func (p *Plan) ExecutedQuery() index.Query { return p.executed }

func (p *Plan) Sort() index.Sort {
	return index.Sort{Fields: slices.Clone(p.sort.Fields)}
}

func (p *Plan) Routing() []string                { return slices.Clone(p.routing) }
func (p *Plan) Params() map[string]any           { return maps.Clone(p.params) }
func (p *Plan) Projection() extract.HitExtractor { return p.projection }
func (p *Plan) Indexes() []string                { return slices.Clone(p.indexes) }

// Aggregations returns the aggregations by name.
func (p *Plan) Aggregations() map[string]extract.AggregationExtractor {
	return maps.Clone(p.aggregations)
}

// AggregationNames returns the aggregation names in execution order.
func (p *Plan) AggregationNames() []string { return slices.Clone(p.aggNames) }

// Highlighter returns a copy of the highlighter config, or nil.
func (p *Plan) Highlighter() *extract.HighlighterConfig {
	if p.highlighter == nil {
		return nil
	}
	cfg := *p.highlighter
	cfg.Fields = slices.Clone(cfg.Fields)
	return &cfg
}

// TargetsIndex reports whether name is one of the plan's indexes. A plan
// without indexes targets every index.
func (p *Plan) TargetsIndex(name string) bool {
	return len(p.indexes) == 0 || slices.Contains(p.indexes, name)
}
