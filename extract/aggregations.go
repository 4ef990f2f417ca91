package extract

import (
	"math"
	"sort"

	"github.com/hupe1980/lexigo/collector"
	"github.com/hupe1980/lexigo/index"
)

// TermBucket is one bucket of a terms aggregation.
type TermBucket struct {
	Key   string
	Count int
}

// TermsAggregation buckets matched docs by a keyword field, most frequent
// first, ties by key.
type TermsAggregation struct {
	Field string
	Size  int
}

// Terms returns a terms aggregation keeping the top size buckets (10 when size <= 0).
func Terms(field string, size int) TermsAggregation {
	return TermsAggregation{Field: field, Size: size}
}

func (a TermsAggregation) Request(b *collector.SetBuilder) { requestMatched(b) }

func (a TermsAggregation) Aggregate(ac *AggregationContext) (any, error) {
	counts := map[string]int{}
	err := ac.ForEach(func(seg index.Segment, doc uint32) error {
		if v, ok := seg.DocValues().Keyword(a.Field, doc); ok {
			counts[v]++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	buckets := make([]TermBucket, 0, len(counts))
	for k, n := range counts {
		buckets = append(buckets, TermBucket{Key: k, Count: n})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Count != buckets[j].Count {
			return buckets[i].Count > buckets[j].Count
		}
		return buckets[i].Key < buckets[j].Key
	})

	size := a.Size
	if size <= 0 {
		size = 10
	}
	if len(buckets) > size {
		buckets = buckets[:size]
	}
	return buckets, nil
}

// RangeSpec is one requested range: From inclusive, To exclusive, nil open.
type RangeSpec struct {
	Key  string
	From *float64
	To   *float64
}

// RangeBucket is one bucket of a range aggregation.
type RangeBucket struct {
	Key   string
	From  *float64
	To    *float64
	Count int
}

// RangeAggregation counts matched docs per numeric range. Ranges may overlap.
type RangeAggregation struct {
	Field  string
	Ranges []RangeSpec
}

// Range returns a range aggregation.
func Range(field string, ranges ...RangeSpec) RangeAggregation {
	return RangeAggregation{Field: field, Ranges: ranges}
}

func (a RangeAggregation) Request(b *collector.SetBuilder) { requestMatched(b) }

func (a RangeAggregation) Aggregate(ac *AggregationContext) (any, error) {
	buckets := make([]RangeBucket, len(a.Ranges))
	for i, r := range a.Ranges {
		buckets[i] = RangeBucket{Key: r.Key, From: r.From, To: r.To}
	}
	err := ac.ForEach(func(seg index.Segment, doc uint32) error {
		v, ok := seg.DocValues().Numeric(a.Field, doc)
		if !ok {
			return nil
		}
		for i, r := range a.Ranges {
			if (r.From == nil || v >= *r.From) && (r.To == nil || v < *r.To) {
				buckets[i].Count++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return buckets, nil
}

// StatsValue summarizes a numeric field. Min, Max and Avg are NaN when Count is 0.
type StatsValue struct {
	Count int
	Min   float64
	Max   float64
	Sum   float64
	Avg   float64
}

// StatsAggregation computes StatsValue over a numeric field.
type StatsAggregation struct {
	Field string
}

// Stats returns a stats aggregation.
func Stats(field string) StatsAggregation { return StatsAggregation{Field: field} }

func (a StatsAggregation) Request(b *collector.SetBuilder) { requestMatched(b) }

func (a StatsAggregation) Aggregate(ac *AggregationContext) (any, error) {
	s := StatsValue{Min: math.Inf(1), Max: math.Inf(-1)}
	err := ac.ForEach(func(seg index.Segment, doc uint32) error {
		v, ok := seg.DocValues().Numeric(a.Field, doc)
		if !ok {
			return nil
		}
		s.Count++
		s.Sum += v
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.Count == 0 {
		return StatsValue{Min: math.NaN(), Max: math.NaN(), Avg: math.NaN()}, nil
	}
	s.Avg = s.Sum / float64(s.Count)
	return s, nil
}
