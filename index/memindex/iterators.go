package memindex

import (
	"math"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
)

// noMoreDocs is returned by exhausted iterators. Unpositioned iterators report -1.
const noMoreDocs = math.MaxInt32

// docIter walks matching local docs in ascending order.
type docIter interface {
	doc() int
	next() int
	// advance moves to the first doc >= target.
	advance(target int) int
	score() float32
	err() error
}

// postingIter walks the posting list of one term and scores with BM25.
type postingIter struct {
	postings []posting
	i        int
	weight   func(freq uint32, doc uint32) float32
}

func newPostingIter(postings []posting, weight func(freq uint32, doc uint32) float32) *postingIter {
	return &postingIter{postings: postings, i: -1, weight: weight}
}

func (it *postingIter) doc() int {
	if it.i < 0 {
		return -1
	}
	if it.i >= len(it.postings) {
		return noMoreDocs
	}
	return int(it.postings[it.i].doc)
}

func (it *postingIter) next() int {
	if it.i < len(it.postings) {
		it.i++
	}
	return it.doc()
}

func (it *postingIter) advance(target int) int {
	if d := it.doc(); d >= target {
		return d
	}
	start := it.i + 1
	rest := it.postings[start:]
	it.i = start + sort.Search(len(rest), func(k int) bool { return int(rest[k].doc) >= target })
	return it.doc()
}

func (it *postingIter) score() float32 {
	p := it.postings[it.i]
	return it.weight(p.freq, p.doc)
}

func (it *postingIter) err() error { return nil }

// bitmapIter walks a roaring bitmap with a constant score.
type bitmapIter struct {
	it    roaring.IntPeekable
	cur   int
	boost float32
}

func newBitmapIter(bm *roaring.Bitmap, boost float32) *bitmapIter {
	return &bitmapIter{it: bm.Iterator(), cur: -1, boost: boost}
}

func (b *bitmapIter) doc() int { return b.cur }

func (b *bitmapIter) next() int {
	if b.cur == noMoreDocs {
		return noMoreDocs
	}
	if b.it.HasNext() {
		b.cur = int(b.it.Next())
	} else {
		b.cur = noMoreDocs
	}
	return b.cur
}

func (b *bitmapIter) advance(target int) int {
	if b.cur >= target {
		return b.cur
	}
	b.it.AdvanceIfNeeded(uint32(target))
	return b.next()
}

func (b *bitmapIter) score() float32 { return b.boost }
func (b *bitmapIter) err() error     { return nil }

// predicateIter scans [0, maxDoc) and keeps docs accepted by pred.
type predicateIter struct {
	maxDoc int
	cur    int
	pred   func(doc uint32) (bool, error)
	boost  float32
	e      error
}

func newPredicateIter(maxDoc int, boost float32, pred func(doc uint32) (bool, error)) *predicateIter {
	return &predicateIter{maxDoc: maxDoc, cur: -1, pred: pred, boost: boost}
}

func (p *predicateIter) doc() int { return p.cur }

func (p *predicateIter) next() int {
	for p.cur != noMoreDocs {
		p.cur++
		if p.cur >= p.maxDoc {
			p.cur = noMoreDocs
			break
		}
		ok, err := p.pred(uint32(p.cur))
		if err != nil {
			p.e = err
			p.cur = noMoreDocs
			break
		}
		if ok {
			break
		}
	}
	return p.cur
}

func (p *predicateIter) advance(target int) int {
	if p.cur >= target {
		return p.cur
	}
	if target > p.maxDoc {
		target = p.maxDoc
	}
	p.cur = target - 1
	return p.next()
}

func (p *predicateIter) score() float32 { return p.boost }
func (p *predicateIter) err() error     { return p.e }

// conjunction matches docs present in every sub-iterator and sums their scores.
type conjunction struct {
	subs []docIter
	cur  int
}

func newConjunction(subs []docIter) docIter {
	if len(subs) == 1 {
		return subs[0]
	}
	return &conjunction{subs: subs, cur: -1}
}

func (c *conjunction) doc() int { return c.cur }

func (c *conjunction) next() int { return c.align(c.subs[0].next()) }

func (c *conjunction) advance(target int) int {
	if c.cur >= target {
		return c.cur
	}
	return c.align(c.subs[0].advance(target))
}

func (c *conjunction) align(doc int) int {
outer:
	for doc != noMoreDocs {
		for _, s := range c.subs[1:] {
			d := s.doc()
			if d < doc {
				d = s.advance(doc)
			}
			if d > doc {
				doc = c.subs[0].advance(d)
				continue outer
			}
		}
		break
	}
	c.cur = doc
	return doc
}

func (c *conjunction) score() float32 {
	var s float32
	for _, sub := range c.subs {
		s += sub.score()
	}
	return s
}

func (c *conjunction) err() error { return firstErr(c.subs) }

// disjunction matches docs present in any sub-iterator and sums the scores of
// the subs positioned on the current doc.
type disjunction struct {
	subs []docIter
	cur  int
}

func newDisjunction(subs []docIter) docIter {
	if len(subs) == 1 {
		return subs[0]
	}
	return &disjunction{subs: subs, cur: -1}
}

func (d *disjunction) doc() int { return d.cur }

func (d *disjunction) next() int { return d.advance(d.cur + 1) }

func (d *disjunction) advance(target int) int {
	if d.cur >= target {
		return d.cur
	}
	minDoc := noMoreDocs
	for _, s := range d.subs {
		doc := s.doc()
		if doc < target {
			doc = s.advance(target)
		}
		if doc < minDoc {
			minDoc = doc
		}
	}
	d.cur = minDoc
	return minDoc
}

func (d *disjunction) score() float32 {
	var s float32
	for _, sub := range d.subs {
		if sub.doc() == d.cur {
			s += sub.score()
		}
	}
	return s
}

func (d *disjunction) err() error { return firstErr(d.subs) }

// exclusion drops docs matched by excl.
type exclusion struct {
	main docIter
	excl docIter
}

func (e *exclusion) doc() int { return e.main.doc() }

func (e *exclusion) next() int { return e.skip(e.main.next()) }

func (e *exclusion) advance(target int) int {
	if e.main.doc() >= target {
		return e.main.doc()
	}
	return e.skip(e.main.advance(target))
}

func (e *exclusion) skip(doc int) int {
	for doc != noMoreDocs {
		x := e.excl.doc()
		if x < doc {
			x = e.excl.advance(doc)
		}
		if x != doc {
			return doc
		}
		doc = e.main.next()
	}
	return doc
}

func (e *exclusion) score() float32 { return e.main.score() }
func (e *exclusion) err() error     { return firstErr([]docIter{e.main, e.excl}) }

// optional follows req and adds opt's score where opt also matches.
type optional struct {
	req docIter
	opt docIter
}

func (o *optional) doc() int               { return o.req.doc() }
func (o *optional) next() int              { return o.req.next() }
func (o *optional) advance(target int) int { return o.req.advance(target) }

func (o *optional) score() float32 {
	s := o.req.score()
	cur := o.req.doc()
	d := o.opt.doc()
	if d < cur {
		d = o.opt.advance(cur)
	}
	if d == cur {
		s += o.opt.score()
	}
	return s
}

func (o *optional) err() error { return firstErr([]docIter{o.req, o.opt}) }

// constScore replaces the score of inner.
type constScore struct {
	docIter
	value float32
}

func (c constScore) score() float32 { return c.value }

type emptyIter struct{}

func (emptyIter) doc() int        { return noMoreDocs }
func (emptyIter) next() int       { return noMoreDocs }
func (emptyIter) advance(int) int { return noMoreDocs }
func (emptyIter) score() float32  { return 0 }
func (emptyIter) err() error      { return nil }

func firstErr(its []docIter) error {
	for _, it := range its {
		if err := it.err(); err != nil {
			return err
		}
	}
	return nil
}
