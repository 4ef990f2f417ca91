package collector

import (
	"math"
	"strings"

	"github.com/hupe1980/lexigo/index"
)

// ScoreDoc is one ranked hit.
type ScoreDoc struct {
	Doc   index.DocID
	Score float32
	// Sort holds one value per sort key: float32 for score, index.DocID for
	// doc order, float64 for numeric and distance keys, string for keywords,
	// nil for a missing value.
	Sort []any
}

// TopDocs is the ranking collector: it keeps the best Size hits in sort order
// and counts total hits up to a threshold.
type TopDocs struct {
	sort    index.Sort
	keys    []index.SortField
	size    int
	queue   *hitQueue
	counter hitCounter

	maxScore float32
	result   []ScoreDoc
}

// NewTopDocs creates a ranking collector for the best size hits.
// The queue is allocated to size up front.
func NewTopDocs(sort index.Sort, size int, totalHitsThreshold int) *TopDocs {
	if size < 0 {
		size = 0
	}
	td := &TopDocs{
		sort:     sort,
		keys:     sort.Keys(),
		size:     size,
		counter:  newHitCounter(totalHitsThreshold),
		maxScore: float32(math.Inf(-1)),
	}
	td.queue = newHitQueue(size, td.better)
	return td
}

// Size returns the window size the queue was allocated for.
func (td *TopDocs) Size() int { return td.size }

// Sort returns the sort the collector ranks by.
func (td *TopDocs) Sort() index.Sort { return td.sort }

func (td *TopDocs) NeedsScores() bool { return td.sort.NeedsScores() }

func (td *TopDocs) Leaf(seg index.Segment) (LeafCollector, error) {
	if td.exhausted() {
		return nil, ErrStopCollection
	}
	base := seg.Base()
	dv := seg.DocValues()
	indexOrder := td.sort.IsIndexOrder()

	return LeafFunc(func(doc uint32, score float32) error {
		td.counter.add()
		if score > td.maxScore {
			td.maxScore = score
		}

		hit := ScoreDoc{Doc: base + index.DocID(doc), Score: score}
		if !indexOrder {
			hit.Sort = td.sortValues(dv, doc, hit)
		}
		td.queue.pushBounded(hit, td.size)

		if indexOrder && td.exhausted() {
			// Later docs have larger ids and cannot compete.
			return ErrStopCollection
		}
		return nil
	}), nil
}

// exhausted reports whether index-order collection can stop: the queue is
// full and the count has already degraded to a lower bound.
func (td *TopDocs) exhausted() bool {
	return td.sort.IsIndexOrder() && td.queue.Len() >= td.size && td.counter.lower
}

func (td *TopDocs) sortValues(dv index.DocValues, doc uint32, hit ScoreDoc) []any {
	vals := make([]any, len(td.keys))
	for i, k := range td.keys {
		switch k.Type {
		case index.SortScore:
			vals[i] = hit.Score
		case index.SortDoc:
			vals[i] = hit.Doc
		case index.SortNumeric:
			if v, ok := dv.Numeric(k.Field, doc); ok {
				vals[i] = v
			}
		case index.SortKeyword:
			if v, ok := dv.Keyword(k.Field, doc); ok {
				vals[i] = v
			}
		case index.SortDistance:
			if p, ok := dv.Geo(k.Field, doc); ok {
				vals[i] = k.Center.DistanceTo(p)
			}
		}
	}
	return vals
}

// better reports whether a ranks before b. Missing values sort last in both
// directions; ties break on ascending doc id.
func (td *TopDocs) better(a, b *ScoreDoc) bool {
	if td.sort.IsIndexOrder() {
		return a.Doc < b.Doc
	}
	for i, k := range td.keys {
		c := compareKey(k, a, b, i)
		if c != 0 {
			return c < 0
		}
	}
	return a.Doc < b.Doc
}

// compareKey returns <0 when a ranks first on key k.
func compareKey(k index.SortField, a, b *ScoreDoc, i int) int {
	var c int
	switch k.Type {
	case index.SortScore:
		// Descending by default.
		c = cmpFloat(float64(b.Score), float64(a.Score))
	case index.SortDoc:
		c = cmpFloat(float64(a.Doc), float64(b.Doc))
	default:
		av, bv := a.Sort[i], b.Sort[i]
		switch {
		case av == nil && bv == nil:
			return 0
		case av == nil:
			return 1
		case bv == nil:
			return -1
		}
		switch x := av.(type) {
		case float64:
			c = cmpFloat(x, bv.(float64))
		case string:
			c = strings.Compare(x, bv.(string))
		}
	}
	if k.Reverse {
		c = -c
	}
	return c
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Total returns the total hit count observed so far.
func (td *TopDocs) Total() Total { return td.counter.total() }

// MaxScore returns the best score seen, or NaN without hits.
func (td *TopDocs) MaxScore() float32 {
	if td.counter.count == 0 {
		return float32(math.NaN())
	}
	return td.maxScore
}

// Hits returns the ranked window, best first. The queue is drained on the
// first call.
func (td *TopDocs) Hits() []ScoreDoc {
	if td.result == nil {
		td.result = td.queue.drain()
	}
	return td.result
}
