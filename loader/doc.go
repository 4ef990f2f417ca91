// Package loader implements extract.HitMapper on top of a blobstore.BlobStore.
//
// Every hit is stored as one blob named prefix + index + "/" + id and decoded
// with a codec into the caller's domain type:
//
//	l := loader.New[Product](store, loader.WithPrefix("docs/"))
//	sess := l.NewSession()
//	defer sess.Close()
//
//	res, err := lr.Materialize(ctx, sess)
//
// A Session caches decoded objects for the lifetime of one caller-scoped unit of
// work (a request, a scroll). It must not be shared beyond that scope. Fetches of
// one batch run concurrently, bounded per batch by WithConcurrency and across
// batches by a shared resource controller; BatchLoad returns only once all of
// them have finished.
package loader
