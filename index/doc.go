// Package index defines the contract between the query-execution core and an
// open inverted-index reader.
//
// The core never owns an on-disk format. It consumes a Reader that exposes
// its segments, per-segment query matchers and doc values, a native fast
// count, and a per-document scoring explanation.
//
// # Queries
//
// Queries are engine-neutral values:
//
//	q := index.Bool{
//	    Must:    []index.Query{index.Match{Field: "title", Text: "quick fox"}},
//	    Filter:  []index.Query{index.Term{Field: "lang", Value: "en"}},
//	    MustNot: []index.Query{index.NumericRange{Field: "year", Max: index.Float(1999)}},
//	}
//
// Expression filters over stored fields are compiled with CEL:
//
//	expr, err := index.CompileExpr(`doc.price < 20.0 && doc.in_stock`)
//
// # Sorting
//
// Sort defaults to relevance. Sort values are exposed per hit so extractors
// can project them.
//
//	s := index.Sort{Fields: []index.SortField{
//	    {Type: index.SortNumeric, Field: "year", Reverse: true},
//	    {Type: index.SortScore},
//	}}
package index
