package index

import (
	"fmt"
	"strings"
)

// Explanation describes how a score was computed.
type Explanation struct {
	Match       bool
	Value       float32
	Description string
	Details     []*Explanation
}

// NoMatch returns an explanation for a document the query does not match.
func NoMatch(description string) *Explanation {
	return &Explanation{Description: description}
}

// String renders the explanation as an indented tree.
func (e *Explanation) String() string {
	var b strings.Builder
	e.write(&b, 0)
	return b.String()
}

func (e *Explanation) write(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	fmt.Fprintf(b, "%g = %s\n", e.Value, e.Description)
	for _, d := range e.Details {
		d.write(b, depth+1)
	}
}
