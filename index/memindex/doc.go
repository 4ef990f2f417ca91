// Package memindex is an in-memory, segmented inverted index that implements
// index.Reader.
//
// Documents are buffered with Add and become searchable segments on Flush.
// Text fields are analyzed with index.Analyze and scored with BM25 (k1=1.2,
// b=0.75). Keyword, numeric and geo fields are stored as columnar doc values
// for filtering, sorting and aggregation. Stored fields are encoded with a
// codec and compressed per document with LZ4 or ZSTD. Deletions are tracked
// per segment in roaring bitmaps.
//
//	ix := memindex.New("books")
//	_ = ix.Add(memindex.Document{
//	    ID:       "1",
//	    Text:     map[string]string{"title": "The Quick Brown Fox"},
//	    Keywords: map[string]string{"lang": "en"},
//	    Numbers:  map[string]float64{"year": 2001},
//	    Stored:   map[string]any{"title": "The Quick Brown Fox"},
//	})
//	_ = ix.Flush()
//	r := ix.Reader()
//	defer r.Close()
//
// # Thread Safety
//
// Index is safe for concurrent use. Readers are immutable snapshots: deletions
// and flushes after Reader() are not visible to it.
package memindex
