package collector

import (
	"errors"

	"github.com/hupe1980/lexigo/index"
)

// Multi forwards every match to each child collector. A child that terminates
// is dropped for the rest of its segment (or pass) while the others continue.
type Multi struct {
	children []Collector
	stopped  []bool
}

// NewMulti creates a fan-out collector.
func NewMulti(children ...Collector) *Multi {
	return &Multi{children: children, stopped: make([]bool, len(children))}
}

// Children returns the wrapped collectors.
func (m *Multi) Children() []Collector { return m.children }

func (m *Multi) NeedsScores() bool {
	for _, c := range m.children {
		if c.NeedsScores() {
			return true
		}
	}
	return false
}

func (m *Multi) Leaf(seg index.Segment) (LeafCollector, error) {
	leaves := make([]LeafCollector, len(m.children))
	owners := make([]int, len(m.children))
	n := 0

	for i, c := range m.children {
		if m.stopped[i] {
			continue
		}
		leaf, err := c.Leaf(seg)
		switch {
		case errors.Is(err, ErrStopCollection):
			m.stopped[i] = true
			continue
		case errors.Is(err, ErrCollectionTerminated):
			continue
		case err != nil:
			return nil, err
		}
		leaves[n] = leaf
		owners[n] = i
		n++
	}

	if n == 0 {
		if m.allStopped() {
			return nil, ErrStopCollection
		}
		return nil, ErrCollectionTerminated
	}
	return &multiLeaf{multi: m, leaves: leaves[:n], owners: owners[:n]}, nil
}

func (m *Multi) allStopped() bool {
	for _, s := range m.stopped {
		if !s {
			return false
		}
	}
	return true
}

type multiLeaf struct {
	multi  *Multi
	leaves []LeafCollector
	owners []int
}

func (l *multiLeaf) Collect(doc uint32, score float32) error {
	for i := 0; i < len(l.leaves); {
		err := l.leaves[i].Collect(doc, score)
		switch {
		case err == nil:
			i++
			continue
		case errors.Is(err, ErrStopCollection):
			l.multi.stopped[l.owners[i]] = true
		case !errors.Is(err, ErrCollectionTerminated):
			return err
		}
		l.leaves = append(l.leaves[:i], l.leaves[i+1:]...)
		l.owners = append(l.owners[:i], l.owners[i+1:]...)
	}

	if len(l.leaves) == 0 {
		if l.multi.allStopped() {
			return ErrStopCollection
		}
		return ErrCollectionTerminated
	}
	return nil
}
