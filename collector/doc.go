// Package collector provides the collection capability used by one scan over
// an index reader, and the builder that composes several collection needs
// into a single pass.
//
// A Collector hands out one LeafCollector per segment; the leaf receives each
// live matching document with its score. A leaf may return
// ErrCollectionTerminated to skip the rest of its segment or ErrStopCollection
// to end the pass for itself.
//
// # Composition
//
//	b := collector.NewSetBuilder()
//	b.RequireTopDocs(index.ByScore(), 20, 1000)
//	b.RequireTotalHitCount(collector.ExactCount) // subsumed by the ranking collector
//	matched := b.Add(collector.MatchedDocsKey, collector.NewMatchedDocs())
//	set := b.Build()
//	err := collector.Run(ctx, reader, query, set.Composite())
//
// One scan feeds every registered collector through a fan-out, so N needs
// never cost N scans.
package collector
