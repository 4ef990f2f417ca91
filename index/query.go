package index

import (
	"fmt"
	"strings"
)

// Query is an engine-neutral query node.
type Query interface {
	// String renders the query for logs and error context.
	String() string
}

// MatchAll matches every live document with a constant score.
type MatchAll struct{}

func (MatchAll) String() string { return "*:*" }

// Term matches documents whose keyword field equals Value exactly.
type Term struct {
	Field string
	Value string
}

func (q Term) String() string { return fmt.Sprintf("%s:%q", q.Field, q.Value) }

// Match analyzes Text and matches documents containing any of its terms in
// the text field. Matches are scored with BM25.
type Match struct {
	Field string
	Text  string
	// Operator "and" requires all terms. Empty means "or".
	Operator string
}

func (q Match) String() string {
	if q.Operator == "and" {
		return fmt.Sprintf("%s:(+%s)", q.Field, strings.Join(Analyze(q.Text), " +"))
	}
	return fmt.Sprintf("%s:(%s)", q.Field, strings.Join(Analyze(q.Text), " "))
}

// NumericRange matches documents whose numeric field lies in [Min, Max].
// A nil bound is open.
type NumericRange struct {
	Field string
	Min   *float64
	Max   *float64
}

func (q NumericRange) String() string {
	lo, hi := "*", "*"
	if q.Min != nil {
		lo = fmt.Sprint(*q.Min)
	}
	if q.Max != nil {
		hi = fmt.Sprint(*q.Max)
	}
	return fmt.Sprintf("%s:[%s TO %s]", q.Field, lo, hi)
}

// Contains reports whether v lies inside the range.
func (q NumericRange) Contains(v float64) bool {
	if q.Min != nil && v < *q.Min {
		return false
	}
	if q.Max != nil && v > *q.Max {
		return false
	}
	return true
}

// Float returns a pointer to v, for range bounds.
func Float(v float64) *float64 { return &v }

// Bool combines clauses. Must and Should contribute to the score; Filter and
// MustNot do not. With no Must or Filter clause at least one Should clause must match.
type Bool struct {
	Must    []Query
	Should  []Query
	Filter  []Query
	MustNot []Query
}

func (q Bool) String() string {
	var parts []string
	for _, c := range q.Must {
		parts = append(parts, "+"+c.String())
	}
	for _, c := range q.Filter {
		parts = append(parts, "#"+c.String())
	}
	for _, c := range q.Should {
		parts = append(parts, c.String())
	}
	for _, c := range q.MustNot {
		parts = append(parts, "-"+c.String())
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// Parameterized binds named parameters to every Expr nested in Query.
type Parameterized struct {
	Query  Query
	Params map[string]any
}

func (q Parameterized) String() string { return q.Query.String() }

// WithParams wraps q with params. It returns q unchanged when params is empty.
func WithParams(q Query, params map[string]any) Query {
	if len(params) == 0 {
		return q
	}
	return Parameterized{Query: q, Params: params}
}
