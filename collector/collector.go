package collector

import (
	"context"
	"errors"
	"math"

	"github.com/hupe1980/lexigo/index"
)

var (
	// ErrCollectionTerminated ends collection of the current segment.
	ErrCollectionTerminated = errors.New("collection terminated")
	// ErrStopCollection ends collection for the rest of the pass.
	ErrStopCollection = errors.New("stop collection")
)

// ExactCount is a total-hits threshold that never degrades to a lower bound.
const ExactCount = math.MaxInt

// Collector receives the matches of one pass.
type Collector interface {
	// Leaf returns the collector for one segment.
	Leaf(seg index.Segment) (LeafCollector, error)
	// NeedsScores reports whether matches must be scored.
	NeedsScores() bool
}

// LeafCollector receives the live matches of one segment.
type LeafCollector interface {
	Collect(doc uint32, score float32) error
}

// LeafFunc adapts a function to LeafCollector.
type LeafFunc func(doc uint32, score float32) error

// Collect calls f.
func (f LeafFunc) Collect(doc uint32, score float32) error { return f(doc, score) }

// Noop collects nothing. It is the composite of an empty Set.
type Noop struct{}

func (Noop) Leaf(index.Segment) (LeafCollector, error) { return nil, ErrStopCollection }
func (Noop) NeedsScores() bool                         { return false }

// Run drives one pass of q over r into c.
//
// Segments are visited in DocID order; ctx is checked between segments.
// Engine errors are returned as-is.
func Run(ctx context.Context, r index.Reader, q index.Query, c Collector) error {
	needsScores := c.NeedsScores()

	for _, seg := range r.Segments() {
		if err := ctx.Err(); err != nil {
			return err
		}

		leaf, err := c.Leaf(seg)
		if err != nil {
			if errors.Is(err, ErrCollectionTerminated) {
				continue
			}
			if errors.Is(err, ErrStopCollection) {
				return nil
			}
			return err
		}

		m, err := seg.Matcher(q, needsScores)
		if err != nil {
			return err
		}
		if m == nil {
			continue
		}

		stop := false
		for m.Next() {
			doc := m.Doc()
			if !seg.Live(doc) {
				continue
			}
			if err := leaf.Collect(doc, m.Score()); err != nil {
				if errors.Is(err, ErrCollectionTerminated) {
					break
				}
				if errors.Is(err, ErrStopCollection) {
					stop = true
					break
				}
				return err
			}
		}
		if err := m.Err(); err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
	return nil
}
