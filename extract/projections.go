package extract

import (
	"fmt"

	"github.com/hupe1980/lexigo/collector"
	"github.com/hupe1980/lexigo/index"
)

// base provides the no-op parts of a projection that needs no collectors
// and no loading.
type base struct{}

func (base) Request(*collector.SetBuilder)                   {}
func (base) Refs(_ any, dst []DocRef) []DocRef               { return dst }
func (base) Transform(_ LoadingResult, raw any) (any, error) { return raw, nil }

// DocRefProjection projects the hit reference.
type DocRefProjection struct{ base }

func (DocRefProjection) Extract(hc *HitContext) (any, error) { return hc.Ref() }

// EntityProjection projects the domain object the hit mapper loads for the
// hit. A hit the mapper did not load projects to nil.
type EntityProjection struct{}

func (EntityProjection) Request(*collector.SetBuilder) {}

func (EntityProjection) Extract(hc *HitContext) (any, error) { return hc.Ref() }

func (EntityProjection) Refs(raw any, dst []DocRef) []DocRef {
	if ref, ok := raw.(DocRef); ok {
		dst = append(dst, ref)
	}
	return dst
}

func (EntityProjection) Transform(loaded LoadingResult, raw any) (any, error) {
	ref, ok := raw.(DocRef)
	if !ok {
		return nil, fmt.Errorf("entity projection: unexpected raw hit %T", raw)
	}
	if loaded == nil {
		return nil, nil
	}
	v, _ := loaded.Get(ref)
	return v, nil
}

// ScoreProjection projects the relevance score as float32.
type ScoreProjection struct{ base }

func (ScoreProjection) Extract(hc *HitContext) (any, error) { return hc.Score(), nil }

// SortValuesProjection projects the sort values of the hit.
type SortValuesProjection struct{ base }

func (SortValuesProjection) Extract(hc *HitContext) (any, error) { return hc.SortValues(), nil }

// StoredFieldProjection projects one stored field, nil when absent.
type StoredFieldProjection struct {
	base
	Field string
}

// StoredField returns a projection of field.
func StoredField(field string) StoredFieldProjection { return StoredFieldProjection{Field: field} }

func (p StoredFieldProjection) Extract(hc *HitContext) (any, error) {
	fields, err := hc.Stored()
	if err != nil {
		return nil, err
	}
	return fields[p.Field], nil
}

// SourceProjection projects all stored fields as index.StoredFields.
type SourceProjection struct{ base }

func (SourceProjection) Extract(hc *HitContext) (any, error) {
	fields, err := hc.Stored()
	if err != nil {
		return nil, err
	}
	out := make(index.StoredFields, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out, nil
}

// DistanceProjection projects the distance in meters between Center and the
// geo value of Field, nil when the doc has none.
type DistanceProjection struct {
	Field  string
	Center index.GeoPoint
}

// Distance returns a distance projection.
func Distance(field string, center index.GeoPoint) DistanceProjection {
	return DistanceProjection{Field: field, Center: center}
}

func (p DistanceProjection) key() collector.Key { return collector.DistanceKey(p.Field, p.Center) }

func (p DistanceProjection) Request(b *collector.SetBuilder) {
	b.Add(p.key(), collector.NewDistance(p.Field, p.Center))
}

func (p DistanceProjection) Extract(hc *HitContext) (any, error) {
	dist, ok := collector.Lookup[*collector.Distance](hc.Collectors(), p.key())
	if !ok {
		return nil, fmt.Errorf("distance projection on %q: collector was not requested", p.Field)
	}
	if d, ok := dist.DistanceOf(hc.Doc()); ok {
		return d, nil
	}
	return nil, nil
}

func (DistanceProjection) Refs(_ any, dst []DocRef) []DocRef               { return dst }
func (DistanceProjection) Transform(_ LoadingResult, raw any) (any, error) { return raw, nil }

// ExplanationProjection projects the scoring explanation of the hit.
type ExplanationProjection struct{ base }

func (ExplanationProjection) Extract(hc *HitContext) (any, error) {
	return hc.Reader().Explain(hc.Query(), hc.Doc())
}

// CompositeProjection projects several values per hit as []any.
type CompositeProjection struct {
	parts []HitExtractor
}

// Composite returns a projection producing one []any element per part.
func Composite(parts ...HitExtractor) CompositeProjection {
	return CompositeProjection{parts: parts}
}

func (c CompositeProjection) Request(b *collector.SetBuilder) {
	for _, p := range c.parts {
		p.Request(b)
	}
}

func (c CompositeProjection) Extract(hc *HitContext) (any, error) {
	out := make([]any, len(c.parts))
	for i, p := range c.parts {
		v, err := p.Extract(hc)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (c CompositeProjection) Refs(raw any, dst []DocRef) []DocRef {
	vals, ok := raw.([]any)
	if !ok || len(vals) != len(c.parts) {
		return dst
	}
	for i, p := range c.parts {
		dst = p.Refs(vals[i], dst)
	}
	return dst
}

func (c CompositeProjection) Transform(loaded LoadingResult, raw any) (any, error) {
	vals, ok := raw.([]any)
	if !ok || len(vals) != len(c.parts) {
		return nil, fmt.Errorf("composite projection: unexpected raw hit %T", raw)
	}
	out := make([]any, len(vals))
	for i, p := range c.parts {
		v, err := p.Transform(loaded, vals[i])
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
