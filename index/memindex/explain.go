package memindex

import (
	"fmt"

	"github.com/hupe1980/lexigo/index"
)

func (r *Reader) explain(q index.Query, seg *segmentView, doc uint32, params map[string]any) (*index.Explanation, error) {
	if p, ok := q.(index.Parameterized); ok {
		return r.explain(p.Query, seg, doc, p.Params)
	}

	it, err := r.compile(q, seg, params)
	if err != nil {
		return nil, err
	}
	if it.advance(int(doc)) != int(doc) {
		if err := it.err(); err != nil {
			return nil, err
		}
		return index.NoMatch(fmt.Sprintf("no match on %s", q)), nil
	}

	exp := &index.Explanation{Match: true, Value: it.score(), Description: q.String()}

	switch q := q.(type) {
	case index.Match:
		tf := seg.text[q.Field]
		for _, term := range uniqueTerms(index.Analyze(q.Text)) {
			freq := termFreq(tf.postings[term], doc)
			if freq == 0 {
				continue
			}
			w := r.bm25(q.Field, term, tf)(freq, doc)
			exp.Details = append(exp.Details, &index.Explanation{
				Match:       true,
				Value:       w,
				Description: fmt.Sprintf("weight(%s:%s), idf=%.4f, tf=%d, dl=%d, avgdl=%.2f", q.Field, term, r.idf(q.Field, term), freq, tf.lengths[doc], r.avgFieldLength(q.Field)),
			})
		}
		exp.Description = "sum of:"
	case index.Bool:
		for _, clauses := range [][]index.Query{q.Must, q.Should} {
			for _, c := range clauses {
				d, err := r.explain(c, seg, doc, params)
				if err != nil {
					return nil, err
				}
				if d.Match {
					exp.Details = append(exp.Details, d)
				}
			}
		}
		for _, c := range q.Filter {
			exp.Details = append(exp.Details, &index.Explanation{Match: true, Description: "match on required filter " + c.String()})
		}
		exp.Description = "sum of:"
	}
	return exp, nil
}

func termFreq(postings []posting, doc uint32) uint32 {
	lo, hi := 0, len(postings)
	for lo < hi {
		mid := (lo + hi) / 2
		if postings[mid].doc < doc {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(postings) && postings[lo].doc == doc {
		return postings[lo].freq
	}
	return 0
}
