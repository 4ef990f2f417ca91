// Package testutil provides testing utilities for lexigo.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded random source, a manual clock for driving timeout
// budgets, and a synthetic index.Reader whose size, match density and scan
// cost are under the test's control.
//
// # Synthetic Reader
//
//	r := testutil.NewReader("big", 1_000_000, testutil.WithSegmentSize(65536))
//	// ... run a search ...
//	r.Scans() // number of passes that touched the first segment
//
// # Manual Clock
//
//	clk := testutil.NewClock()
//	b := timeout.FailAfter(time.Second, timeout.WithClock(clk.Now))
//	clk.Advance(2 * time.Second)
package testutil
