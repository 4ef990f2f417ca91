// Package search executes query plans against an open index reader.
//
// The Executor runs one or two collection passes per request, sized by an
// adaptive prefetch so that ranking structures are never allocated for the
// whole index when the first page is all a caller wants. Its CollectedState
// becomes an ExtractableResult, which produces raw hits and aggregates while
// the reader is open, and a single-use LoadableResult, which materializes the
// raw hits through a caller-supplied hit mapper.
//
// # Lifecycle
//
//	plan := search.NewPlan(query, search.WithProjection(extract.EntityProjection{}))
//	req := search.NewRequestContext(reader, plan, search.WithBudget(timeout.TruncateAfter(time.Second)))
//	state, err := exec.Execute(ctx, req, 0, 20, 1000)
//	loadable, err := search.Extractable[*Product](state).Extract(ctx, 0, 20)
//	final, err := loadable.Materialize(ctx, mapper)
//
// A Scroll wraps the same steps for forward paging with a geometrically
// growing probe window.
package search
