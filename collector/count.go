package collector

import "github.com/hupe1980/lexigo/index"

// TotalHitCount counts matches without ranking them. With a threshold it stops
// the pass as soon as the threshold is exceeded and reports a lower bound.
type TotalHitCount struct {
	counter hitCounter
}

// NewTotalHitCount creates a count-only collector. Use ExactCount for an exact count.
func NewTotalHitCount(threshold int) *TotalHitCount {
	return &TotalHitCount{counter: newHitCounter(threshold)}
}

func (c *TotalHitCount) NeedsScores() bool { return false }

func (c *TotalHitCount) Leaf(index.Segment) (LeafCollector, error) {
	if c.counter.lower {
		return nil, ErrStopCollection
	}
	return LeafFunc(func(uint32, float32) error {
		if !c.counter.add() {
			return ErrStopCollection
		}
		return nil
	}), nil
}

// Total returns the total observed so far.
func (c *TotalHitCount) Total() Total { return c.counter.total() }
