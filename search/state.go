package search

import (
	"time"

	"github.com/hupe1980/lexigo/collector"
	"github.com/hupe1980/lexigo/extract"
	"github.com/hupe1980/lexigo/index"
)

// CollectedState is the outcome of Execute: the collectors of the final
// pass and everything extraction needs to read from them.
type CollectedState struct {
	req      *RequestContext
	set      *collector.Set
	hits     []collector.ScoreDoc
	offset   int
	passes   int
	timedOut bool
}

// Set returns the collectors of the final pass.
func (s *CollectedState) Set() *collector.Set { return s.set }

// Total returns the total hit count.
func (s *CollectedState) Total() collector.Total { return s.set.Total() }

// Hits returns the ranked window from rank 0, best first.
func (s *CollectedState) Hits() []collector.ScoreDoc { return s.hits }

// Offset returns the clamped offset the state was executed for.
func (s *CollectedState) Offset() int { return s.offset }

// Passes returns the number of collection passes that ran.
func (s *CollectedState) Passes() int { return s.passes }

// Reader returns the reader the state was collected from.
func (s *CollectedState) Reader() index.Reader { return s.req.Reader() }

// Query returns the executed query.
func (s *CollectedState) Query() index.Query { return s.req.Plan().ExecutedQuery() }

// Request returns the request context.
func (s *CollectedState) Request() *RequestContext { return s.req }

// TimedOut reports whether the budget expired during execution.
func (s *CollectedState) TimedOut() bool { return s.timedOut || s.req.Budget().TimedOut() }

// MaxScore returns the best score, or NaN without hits or scores.
func (s *CollectedState) MaxScore() float32 {
	if td := s.set.TopDocs(); td != nil {
		return td.MaxScore()
	}
	return float32(nan())
}

func (s *CollectedState) scope() *extract.Scope {
	plan := s.req.Plan()
	return &extract.Scope{
		Reader:      s.req.Reader(),
		Query:       plan.ExecutedQuery(),
		Set:         s.set,
		Params:      plan.Params(),
		Highlighter: plan.Highlighter(),
	}
}

// window clamps [start, end) to the ranked hits.
func (s *CollectedState) window(start, end int) (int, int) {
	n := len(s.hits)
	start = min(max(start, 0), n)
	end = min(max(end, start), n)
	return start, end
}

// FinalResult is a materialized search result.
type FinalResult[T any] struct {
	Total      collector.Total
	Hits       []T
	Aggregates map[string]any
	MaxScore   float32
	Took       time.Duration // collection and extraction
	TimedOut   bool
}
