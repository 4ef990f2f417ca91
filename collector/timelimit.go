package collector

import (
	"github.com/hupe1980/lexigo/index"
	"github.com/hupe1980/lexigo/timeout"
)

// checkInterval is the number of matches between two deadline checks.
const checkInterval = 256

// TimeLimited stops the pass once the budget's deadline has passed. The
// wrapped collector keeps whatever it collected so far.
type TimeLimited struct {
	inner    Collector
	budget   *timeout.Budget
	seen     int
	timedOut bool
}

// NewTimeLimited wraps inner with a deadline check.
func NewTimeLimited(inner Collector, budget *timeout.Budget) *TimeLimited {
	return &TimeLimited{inner: inner, budget: budget}
}

// Inner returns the wrapped collector.
func (t *TimeLimited) Inner() Collector { return t.inner }

// TimedOut reports whether the pass was cut short.
func (t *TimeLimited) TimedOut() bool { return t.timedOut }

func (t *TimeLimited) NeedsScores() bool { return t.inner.NeedsScores() }

func (t *TimeLimited) Leaf(seg index.Segment) (LeafCollector, error) {
	if t.expired() {
		return nil, ErrStopCollection
	}
	leaf, err := t.inner.Leaf(seg)
	if err != nil {
		return nil, err
	}
	return LeafFunc(func(doc uint32, score float32) error {
		t.seen++
		if t.seen%checkInterval == 0 && t.expired() {
			return ErrStopCollection
		}
		return leaf.Collect(doc, score)
	}), nil
}

func (t *TimeLimited) expired() bool {
	if t.timedOut {
		return true
	}
	if t.budget.Expired() {
		t.timedOut = true
		t.budget.MarkTimedOut()
	}
	return t.timedOut
}
