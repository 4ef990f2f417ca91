package extract

import (
	"context"
	"fmt"

	"github.com/hupe1980/lexigo/collector"
	"github.com/hupe1980/lexigo/index"
)

// DocRef identifies one hit for the hit mapper.
type DocRef struct {
	Index string
	ID    string
	Doc   index.DocID
}

func (r DocRef) String() string { return fmt.Sprintf("%s/%s", r.Index, r.ID) }

// LoadingResult holds the domain objects of one batch load.
type LoadingResult interface {
	Get(ref DocRef) (any, bool)
}

// HitMapper batch-loads domain objects. BatchLoad runs in the caller's
// goroutine and may use caller-scoped resources.
type HitMapper interface {
	BatchLoad(ctx context.Context, refs []DocRef) (LoadingResult, error)
}

// HitMapperFunc adapts a function to HitMapper.
type HitMapperFunc func(ctx context.Context, refs []DocRef) (LoadingResult, error)

// BatchLoad calls f.
func (f HitMapperFunc) BatchLoad(ctx context.Context, refs []DocRef) (LoadingResult, error) {
	return f(ctx, refs)
}

// Loaded is a map-backed LoadingResult.
type Loaded map[DocRef]any

// Get returns the object loaded for ref.
func (l Loaded) Get(ref DocRef) (any, bool) {
	v, ok := l[ref]
	return v, ok
}

// HitExtractor is the per-hit projection capability.
type HitExtractor interface {
	// Request registers the collectors the projection reads from.
	Request(b *collector.SetBuilder)
	// Extract produces the raw value of one hit.
	Extract(hc *HitContext) (any, error)
	// Refs appends the documents raw needs loaded.
	Refs(raw any, dst []DocRef) []DocRef
	// Transform turns raw into its final value once loading is done.
	Transform(loaded LoadingResult, raw any) (any, error)
}

// AggregationExtractor computes one aggregate over all matched documents.
type AggregationExtractor interface {
	Request(b *collector.SetBuilder)
	Aggregate(ac *AggregationContext) (any, error)
}

// Scope is the shared, read-only state of one extraction.
type Scope struct {
	Reader      index.Reader
	Query       index.Query
	Set         *collector.Set
	Params      map[string]any
	Highlighter *HighlighterConfig
}

// Hit returns the context of one ranked hit.
func (s *Scope) Hit(ctx context.Context, hit collector.ScoreDoc) *HitContext {
	return &HitContext{ctx: ctx, scope: s, hit: hit}
}

// Aggregation returns the context of one aggregation.
func (s *Scope) Aggregation(ctx context.Context) *AggregationContext {
	return &AggregationContext{ctx: ctx, scope: s}
}

// HitContext gives a projection access to one hit. Stored fields are loaded
// on first use and shared by every projection of the hit.
type HitContext struct {
	ctx   context.Context
	scope *Scope
	hit   collector.ScoreDoc

	fields index.StoredFields
	ref    *DocRef
}

func (hc *HitContext) Context() context.Context   { return hc.ctx }
func (hc *HitContext) Reader() index.Reader       { return hc.scope.Reader }
func (hc *HitContext) Query() index.Query         { return hc.scope.Query }
func (hc *HitContext) Collectors() *collector.Set { return hc.scope.Set }
func (hc *HitContext) Params() map[string]any     { return hc.scope.Params }
func (hc *HitContext) Doc() index.DocID           { return hc.hit.Doc }
func (hc *HitContext) Score() float32             { return hc.hit.Score }
func (hc *HitContext) SortValues() []any          { return hc.hit.Sort }

// Highlighter returns the plan-level highlighter, or nil.
func (hc *HitContext) Highlighter() *HighlighterConfig { return hc.scope.Highlighter }

// Ref returns the reference of the hit.
func (hc *HitContext) Ref() (DocRef, error) {
	if hc.ref != nil {
		return *hc.ref, nil
	}
	seg, local, ok := index.SegmentOf(hc.scope.Reader, hc.hit.Doc)
	if !ok {
		return DocRef{}, fmt.Errorf("doc %d: %w", hc.hit.Doc, index.ErrDocNotFound)
	}
	ref := DocRef{Index: hc.scope.Reader.Name(), ID: seg.ExternalID(local), Doc: hc.hit.Doc}
	hc.ref = &ref
	return ref, nil
}

// Stored returns the stored fields of the hit.
func (hc *HitContext) Stored() (index.StoredFields, error) {
	if hc.fields != nil {
		return hc.fields, nil
	}
	fields, err := hc.scope.Reader.Document(hc.hit.Doc)
	if err != nil {
		return nil, err
	}
	hc.fields = fields
	return fields, nil
}

// AggregationContext gives an aggregation access to every matched document.
type AggregationContext struct {
	ctx   context.Context
	scope *Scope
}

func (ac *AggregationContext) Context() context.Context { return ac.ctx }
func (ac *AggregationContext) Reader() index.Reader     { return ac.scope.Reader }
func (ac *AggregationContext) Params() map[string]any   { return ac.scope.Params }

// Matched returns the matched-docs collector, or nil if none ran.
func (ac *AggregationContext) Matched() *collector.MatchedDocs {
	m, _ := collector.Lookup[*collector.MatchedDocs](ac.scope.Set, collector.MatchedDocsKey)
	return m
}

// ForEach calls fn with the segment and local doc of every matched document,
// in DocID order. It stops at the first error, or when ctx is done.
func (ac *AggregationContext) ForEach(fn func(seg index.Segment, doc uint32) error) error {
	matched := ac.Matched()
	if matched == nil {
		return nil
	}
	segs := ac.scope.Reader.Segments()
	cur := 0
	n := 0

	var err error
	matched.ForEach(func(doc index.DocID) bool {
		n++
		if n%4096 == 0 {
			if err = ac.ctx.Err(); err != nil {
				return false
			}
		}
		for cur < len(segs) && doc >= segs[cur].Base()+index.DocID(segs[cur].MaxDoc()) {
			cur++
		}
		if cur == len(segs) {
			err = fmt.Errorf("doc %d: %w", doc, index.ErrDocNotFound)
			return false
		}
		seg := segs[cur]
		err = fn(seg, uint32(doc-seg.Base()))
		return err == nil
	})
	return err
}

// requestMatched registers the shared matched-docs collector.
func requestMatched(b *collector.SetBuilder) {
	b.Add(collector.MatchedDocsKey, collector.NewMatchedDocs())
}
