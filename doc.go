// Package lexigo executes structured queries against an inverted-index reader
// and extracts paged, scrollable and aggregated results.
//
// # Quick Start
//
//	ix := memindex.New("products")
//	_ = ix.Add(memindex.Document{ID: "1", Text: map[string]string{"name": "brass lamp"}})
//	_ = ix.Flush()
//
//	s := lexigo.New(ix.Reader(), lexigo.WithTimeout(200*time.Millisecond, timeout.ModeTruncate))
//	defer s.Close()
//
//	res, err := lexigo.Search[extract.DocRef](s, index.Match{Field: "name", Text: "lamp"}).
//	    Limit(10).
//	    Execute(ctx)
//
// # Loading Domain Objects
//
// Hits are projected to raw values first and materialized by a HitMapper in
// one batch per page. The loader package maps hits to blobs of a BlobStore:
//
//	l := loader.New[Product](store, loader.WithPrefix("docs/"))
//	sess := l.NewSession()
//	defer sess.Close()
//
//	res, err := lexigo.Search[*Product](s, q).
//	    Project(extract.EntityProjection{}).
//	    Mapper(sess).
//	    Execute(ctx)
//
// # Scrolling
//
// Stream and Scroll page through every hit in fixed-size chunks. The reader
// is re-scanned only when a chunk runs past the buffered page, which doubles
// on each re-scan:
//
//	for p, err := range lexigo.Search[*Product](s, q).Mapper(sess).Stream(ctx) {
//	    if err != nil { break }
//	    process(p)
//	}
//
// # Timeouts
//
// A request budget either truncates (lower-bound totals, partial aggregates,
// early scroll end) or fails with ErrTimeout. The budget is shared by every
// pass and page of one request.
package lexigo
