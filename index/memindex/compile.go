package memindex

import (
	"fmt"
	"math"

	"github.com/hupe1980/lexigo/index"
)

const (
	k1 = 1.2
	b  = 0.75
)

// compile turns a query node into an iterator over one segment.
func (r *Reader) compile(q index.Query, seg *segmentView, params map[string]any) (docIter, error) {
	switch q := q.(type) {
	case index.MatchAll:
		return newPredicateIter(seg.MaxDoc(), 1, func(uint32) (bool, error) { return true, nil }), nil

	case index.Term:
		kf := seg.keyword[q.Field]
		if kf == nil {
			return emptyIter{}, nil
		}
		bm := kf.byValue[q.Value]
		if bm == nil || bm.IsEmpty() {
			return emptyIter{}, nil
		}
		return newBitmapIter(bm, 1), nil

	case index.Match:
		return r.compileMatch(q, seg), nil

	case index.NumericRange:
		nf := seg.numeric[q.Field]
		if nf == nil {
			return emptyIter{}, nil
		}
		return newPredicateIter(seg.MaxDoc(), 1, func(doc uint32) (bool, error) {
			return nf.has.Contains(doc) && q.Contains(nf.values[doc]), nil
		}), nil

	case *index.Expr:
		return newPredicateIter(seg.MaxDoc(), 0, func(doc uint32) (bool, error) {
			if !seg.Live(doc) {
				return false, nil
			}
			fields, err := seg.document(doc)
			if err != nil {
				return false, err
			}
			return q.Matches(fields, params)
		}), nil

	case index.Parameterized:
		return r.compile(q.Query, seg, q.Params)

	case index.Bool:
		return r.compileBool(q, seg, params)

	case nil:
		return nil, fmt.Errorf("memindex: nil query")

	default:
		return nil, fmt.Errorf("memindex: unsupported query type %T", q)
	}
}

func (r *Reader) compileMatch(q index.Match, seg *segmentView) docIter {
	tf := seg.text[q.Field]
	terms := uniqueTerms(index.Analyze(q.Text))
	if tf == nil || len(terms) == 0 {
		return emptyIter{}
	}

	subs := make([]docIter, 0, len(terms))
	for _, t := range terms {
		postings := tf.postings[t]
		if len(postings) == 0 {
			if q.Operator == "and" {
				return emptyIter{}
			}
			continue
		}
		subs = append(subs, newPostingIter(postings, r.bm25(q.Field, t, tf)))
	}
	if len(subs) == 0 {
		return emptyIter{}
	}
	if q.Operator == "and" {
		return newConjunction(subs)
	}
	return newDisjunction(subs)
}

func (r *Reader) compileBool(q index.Bool, seg *segmentView, params map[string]any) (docIter, error) {
	compileAll := func(qs []index.Query) ([]docIter, bool, error) {
		its := make([]docIter, 0, len(qs))
		anyEmpty := false
		for _, c := range qs {
			it, err := r.compile(c, seg, params)
			if err != nil {
				return nil, false, err
			}
			if _, ok := it.(emptyIter); ok {
				anyEmpty = true
				continue
			}
			its = append(its, it)
		}
		return its, anyEmpty, nil
	}

	must, mustEmpty, err := compileAll(q.Must)
	if err != nil {
		return nil, err
	}
	filter, filterEmpty, err := compileAll(q.Filter)
	if err != nil {
		return nil, err
	}
	if mustEmpty || filterEmpty {
		return emptyIter{}, nil
	}
	should, _, err := compileAll(q.Should)
	if err != nil {
		return nil, err
	}
	mustNot, _, err := compileAll(q.MustNot)
	if err != nil {
		return nil, err
	}

	required := must
	for _, f := range filter {
		required = append(required, constScore{docIter: f})
	}

	var base docIter
	switch {
	case len(required) > 0 && len(should) > 0:
		base = &optional{req: newConjunction(required), opt: newDisjunction(should)}
	case len(required) > 0:
		base = newConjunction(required)
	case len(should) > 0:
		base = newDisjunction(should)
	case len(q.Should) > 0:
		// Every should clause compiled to nothing.
		return emptyIter{}, nil
	default:
		base = newPredicateIter(seg.MaxDoc(), 1, func(uint32) (bool, error) { return true, nil })
	}

	if len(mustNot) > 0 {
		base = &exclusion{main: base, excl: newDisjunction(mustNot)}
	}
	return base, nil
}

// bm25 returns the per-posting weight function of one term.
func (r *Reader) bm25(field, term string, tf *textField) func(freq uint32, doc uint32) float32 {
	idf := r.idf(field, term)
	avgDL := r.avgFieldLength(field)

	k1Plus1 := k1 + 1
	k1B := k1 * (1 - b)
	k1BAvg := k1 * b / avgDL

	return func(freq uint32, doc uint32) float32 {
		f := float64(freq)
		dl := float64(tf.lengths[doc])
		return float32(idf * (f * k1Plus1) / (f + k1B + k1BAvg*dl))
	}
}

// idf = log(1 + (N - n + 0.5) / (n + 0.5)) over the whole reader.
func (r *Reader) idf(field, term string) float64 {
	N := float64(r.fieldDocs[field])
	n := float64(r.docFreq(field, term))
	return math.Log(1 + (N-n+0.5)/(n+0.5))
}

func (r *Reader) docFreq(field, term string) int {
	df := 0
	for _, seg := range r.segments {
		if tf := seg.text[field]; tf != nil {
			df += len(tf.postings[term])
		}
	}
	return df
}

func (r *Reader) avgFieldLength(field string) float64 {
	docs := r.fieldDocs[field]
	if docs == 0 {
		return 1
	}
	return float64(r.fieldLen[field]) / float64(docs)
}

func uniqueTerms(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := terms[:0:0]
	for _, t := range terms {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
