package collector

import "github.com/hupe1980/lexigo/index"

// Key identifies an auxiliary collector. Requests with equal keys share one
// collector instance.
type Key struct {
	name string
}

// NewKey returns the key for name.
func NewKey(name string) Key { return Key{name: name} }

func (k Key) String() string { return k.name }

type keyed struct {
	key       Key
	collector Collector
}

// SetBuilder gathers the collection needs of one pass.
//
// At most one ranking collector and at most one count-only collector are
// registered; the two are mutually exclusive because the ranking collector
// reports totals itself. A SetBuilder is not safe for concurrent use.
type SetBuilder struct {
	ranked       bool
	topSort      index.Sort
	topSize      int
	topThreshold int

	count          bool
	countThreshold int

	aux []keyed
}

// NewSetBuilder creates an empty builder.
func NewSetBuilder() *SetBuilder {
	return &SetBuilder{}
}

// RequireTopDocs registers the ranking collector. Repeated calls keep the
// first sort and widen the window and threshold to the largest requested.
func (b *SetBuilder) RequireTopDocs(sort index.Sort, maxDocs, totalHitsThreshold int) {
	if !b.ranked {
		b.topSort = sort
		b.topSize = maxDocs
		b.topThreshold = totalHitsThreshold
	} else {
		b.topSize = max(b.topSize, maxDocs)
		b.topThreshold = max(b.topThreshold, totalHitsThreshold)
	}
	b.ranked = true
	b.count = false
}

// RequireTotalHitCount registers the count-only collector unless a ranking
// collector already counts. Repeated calls keep the largest threshold.
func (b *SetBuilder) RequireTotalHitCount(threshold int) {
	if b.ranked {
		return
	}
	if b.count {
		b.countThreshold = max(b.countThreshold, threshold)
		return
	}
	b.count = true
	b.countThreshold = threshold
}

// HasTopDocs reports whether a ranking collector is registered.
func (b *SetBuilder) HasTopDocs() bool { return b.ranked }

// Add registers an auxiliary collector under key and returns the collector
// that serves the key: c itself, or the one registered first.
func (b *SetBuilder) Add(key Key, c Collector) Collector {
	for _, k := range b.aux {
		if k.key == key {
			return k.collector
		}
	}
	b.aux = append(b.aux, keyed{key: key, collector: c})
	return c
}

// Build returns the immutable set of registered collectors.
func (b *SetBuilder) Build() *Set {
	s := &Set{aux: make(map[Key]Collector, len(b.aux))}

	var all []Collector
	if b.ranked {
		s.topDocs = NewTopDocs(b.topSort, b.topSize, b.topThreshold)
		all = append(all, s.topDocs)
	} else if b.count {
		s.count = NewTotalHitCount(b.countThreshold)
		all = append(all, s.count)
	}
	for _, k := range b.aux {
		s.aux[k.key] = k.collector
		all = append(all, k.collector)
	}

	switch len(all) {
	case 0:
		s.composite = Noop{}
	case 1:
		s.composite = all[0]
	default:
		s.composite = NewMulti(all...)
	}
	s.size = len(all)
	return s
}

// Set is the immutable result of SetBuilder.Build: the collectors of one pass.
type Set struct {
	topDocs   *TopDocs
	count     *TotalHitCount
	aux       map[Key]Collector
	composite Collector
	size      int
}

// Composite returns the collector that drives the pass: the lone registered
// collector, a Multi over all of them, or Noop for an empty set.
func (s *Set) Composite() Collector { return s.composite }

// TopDocs returns the ranking collector, or nil.
func (s *Set) TopDocs() *TopDocs { return s.topDocs }

// TotalHitCount returns the count-only collector, or nil.
func (s *Set) TotalHitCount() *TotalHitCount { return s.count }

// Get returns the auxiliary collector registered under key.
func (s *Set) Get(key Key) (Collector, bool) {
	c, ok := s.aux[key]
	return c, ok
}

// Len returns the number of registered collectors.
func (s *Set) Len() int { return s.size }

// Total returns the total reported by the ranking or count-only collector.
// Without either it is an exact zero.
func (s *Set) Total() Total {
	switch {
	case s.topDocs != nil:
		return s.topDocs.Total()
	case s.count != nil:
		return s.count.Total()
	default:
		return Exact(0)
	}
}

// Lookup returns the auxiliary collector registered under key as a T.
func Lookup[T Collector](s *Set, key Key) (T, bool) {
	var zero T
	if s == nil {
		return zero, false
	}
	c, ok := s.aux[key]
	if !ok {
		return zero, false
	}
	t, ok := c.(T)
	return t, ok
}
