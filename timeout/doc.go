// Package timeout provides the cooperative time budget shared by every
// sub-scan of one logical search request.
//
// A Budget is created once per request and passed by pointer (or through a
// context via WithBudget) to the executor, the extraction phase and the scroll
// cursor. Work is never interrupted mid-scan; instead components poll the
// budget between units of work and either degrade (truncate mode) or fail
// (fail mode) once the deadline has passed.
//
// # Modes
//
//	b := timeout.TruncateAfter(200 * time.Millisecond) // partial results
//	b := timeout.FailAfter(200 * time.Millisecond)     // *timeout.Error
//	b := timeout.None()                                // unlimited
//
// A Budget is not safe for concurrent mutation. It is owned by the goroutine
// driving the request.
package timeout
