package memindex

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/lexigo/index"
)

type posting struct {
	doc  uint32
	freq uint32
}

type textField struct {
	postings map[string][]posting
	// lengths holds the analyzed length per local doc; 0 means the field is absent.
	lengths  []uint32
	docCount int
	totalLen int64
}

type keywordField struct {
	values  []string
	has     *roaring.Bitmap
	byValue map[string]*roaring.Bitmap
}

type numericField struct {
	values []float64
	has    *roaring.Bitmap
}

type geoField struct {
	values []index.GeoPoint
	has    *roaring.Bitmap
}

// segment is immutable once built. Deletions live outside it.
type segment struct {
	ids         []string
	text        map[string]*textField
	keyword     map[string]*keywordField
	numeric     map[string]*numericField
	geo         map[string]*geoField
	stored      [][]byte
	compression Compression
}

func buildSegment(docs []Document, blocks [][]byte, c Compression) *segment {
	n := len(docs)
	seg := &segment{
		ids:         make([]string, n),
		text:        make(map[string]*textField),
		keyword:     make(map[string]*keywordField),
		numeric:     make(map[string]*numericField),
		geo:         make(map[string]*geoField),
		stored:      blocks,
		compression: c,
	}

	for i, d := range docs {
		local := uint32(i)
		seg.ids[i] = d.ID

		for field, text := range d.Text {
			tf := seg.text[field]
			if tf == nil {
				tf = &textField{postings: make(map[string][]posting), lengths: make([]uint32, n)}
				seg.text[field] = tf
			}
			terms := index.Analyze(text)
			if len(terms) == 0 {
				continue
			}
			freqs := make(map[string]uint32, len(terms))
			for _, t := range terms {
				freqs[t]++
			}
			// Docs are visited in ascending order, so postings stay sorted.
			for t, f := range freqs {
				tf.postings[t] = append(tf.postings[t], posting{doc: local, freq: f})
			}
			tf.lengths[i] = uint32(len(terms))
			tf.docCount++
			tf.totalLen += int64(len(terms))
		}

		for field, v := range d.Keywords {
			kf := seg.keyword[field]
			if kf == nil {
				kf = &keywordField{values: make([]string, n), has: roaring.New(), byValue: make(map[string]*roaring.Bitmap)}
				seg.keyword[field] = kf
			}
			kf.values[i] = v
			kf.has.Add(local)
			bm := kf.byValue[v]
			if bm == nil {
				bm = roaring.New()
				kf.byValue[v] = bm
			}
			bm.Add(local)
		}

		for field, v := range d.Numbers {
			nf := seg.numeric[field]
			if nf == nil {
				nf = &numericField{values: make([]float64, n), has: roaring.New()}
				seg.numeric[field] = nf
			}
			nf.values[i] = v
			nf.has.Add(local)
		}

		for field, v := range d.Geo {
			gf := seg.geo[field]
			if gf == nil {
				gf = &geoField{values: make([]index.GeoPoint, n), has: roaring.New()}
				seg.geo[field] = gf
			}
			gf.values[i] = v
			gf.has.Add(local)
		}
	}

	for _, kf := range seg.keyword {
		kf.has.RunOptimize()
		for _, bm := range kf.byValue {
			bm.RunOptimize()
		}
	}

	return seg
}

// segmentView binds an immutable segment to one reader snapshot.
type segmentView struct {
	*segment
	ord     int
	base    index.DocID
	deleted *roaring.Bitmap
	reader  *Reader
}

var _ index.Segment = (*segmentView)(nil)

func (s *segmentView) Ord() int             { return s.ord }
func (s *segmentView) Base() index.DocID    { return s.base }
func (s *segmentView) MaxDoc() int          { return len(s.ids) }
func (s *segmentView) Live(doc uint32) bool { return !s.deleted.Contains(doc) }
func (s *segmentView) numDocs() int         { return len(s.ids) - int(s.deleted.GetCardinality()) }

func (s *segmentView) ExternalID(doc uint32) string {
	if int(doc) >= len(s.ids) {
		return ""
	}
	return s.ids[doc]
}

func (s *segmentView) DocValues() index.DocValues { return s }

func (s *segmentView) Numeric(field string, doc uint32) (float64, bool) {
	nf := s.numeric[field]
	if nf == nil || !nf.has.Contains(doc) {
		return 0, false
	}
	return nf.values[doc], true
}

func (s *segmentView) Keyword(field string, doc uint32) (string, bool) {
	kf := s.keyword[field]
	if kf == nil || !kf.has.Contains(doc) {
		return "", false
	}
	return kf.values[doc], true
}

func (s *segmentView) Geo(field string, doc uint32) (index.GeoPoint, bool) {
	gf := s.geo[field]
	if gf == nil || !gf.has.Contains(doc) {
		return index.GeoPoint{}, false
	}
	return gf.values[doc], true
}

func (s *segmentView) Matcher(q index.Query, needsScores bool) (index.Matcher, error) {
	if err := s.reader.io("postings"); err != nil {
		return nil, err
	}
	it, err := s.reader.compile(q, s, nil)
	if err != nil {
		return nil, err
	}
	if _, ok := it.(emptyIter); ok {
		return nil, nil
	}
	return &matcher{it: it, needsScores: needsScores}, nil
}

func (s *segmentView) document(doc uint32) (index.StoredFields, error) {
	if int(doc) >= len(s.stored) {
		return nil, index.ErrDocNotFound
	}
	if err := s.reader.io("document"); err != nil {
		return nil, err
	}
	raw, err := decompressBlock(s.stored[doc], s.compression)
	if err != nil {
		return nil, err
	}
	fields := index.StoredFields{}
	if len(raw) == 0 {
		return fields, nil
	}
	if err := s.reader.codec.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

type matcher struct {
	it          docIter
	needsScores bool
}

func (m *matcher) Next() bool  { return m.it.next() != noMoreDocs }
func (m *matcher) Doc() uint32 { return uint32(m.it.doc()) }
func (m *matcher) Err() error  { return m.it.err() }

func (m *matcher) Score() float32 {
	if !m.needsScores {
		return 0
	}
	return m.it.score()
}
