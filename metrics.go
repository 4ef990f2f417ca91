package lexigo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; the
// prommetrics package provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordSearch is called after each search request.
	// hits is the number of materialized hits, err is nil if successful.
	RecordSearch(hits int, duration time.Duration, err error)

	// RecordCount is called after each count request.
	RecordCount(duration time.Duration, err error)

	// RecordScroll is called after each scroll page.
	RecordScroll(hits int, duration time.Duration, err error)

	// RecordTimeout is called when a request timed out, truncated or failed.
	// op is "search", "count" or "scroll".
	RecordTimeout(op string)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSearch(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordCount(time.Duration, error)       {}
func (NoopMetricsCollector) RecordScroll(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordTimeout(string)                   {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	SearchCount      atomic.Int64
	SearchErrors     atomic.Int64
	SearchHits       atomic.Int64
	SearchTotalNanos atomic.Int64
	CountCount       atomic.Int64
	CountErrors      atomic.Int64
	ScrollPages      atomic.Int64
	ScrollHits       atomic.Int64
	ScrollErrors     atomic.Int64
	Timeouts         atomic.Int64
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(hits int, duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SearchErrors.Add(1)
		return
	}
	b.SearchHits.Add(int64(hits))
}

// RecordCount implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCount(_ time.Duration, err error) {
	b.CountCount.Add(1)
	if err != nil {
		b.CountErrors.Add(1)
	}
}

// RecordScroll implements MetricsCollector.
func (b *BasicMetricsCollector) RecordScroll(hits int, _ time.Duration, err error) {
	b.ScrollPages.Add(1)
	if err != nil {
		b.ScrollErrors.Add(1)
		return
	}
	b.ScrollHits.Add(int64(hits))
}

// RecordTimeout implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTimeout(string) {
	b.Timeouts.Add(1)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		SearchCount:    b.SearchCount.Load(),
		SearchErrors:   b.SearchErrors.Load(),
		SearchHits:     b.SearchHits.Load(),
		SearchAvgNanos: b.getAvgSearchNanos(),
		CountCount:     b.CountCount.Load(),
		CountErrors:    b.CountErrors.Load(),
		ScrollPages:    b.ScrollPages.Load(),
		ScrollHits:     b.ScrollHits.Load(),
		ScrollErrors:   b.ScrollErrors.Load(),
		Timeouts:       b.Timeouts.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgSearchNanos() int64 {
	count := b.SearchCount.Load()
	if count == 0 {
		return 0
	}
	return b.SearchTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	SearchCount    int64
	SearchErrors   int64
	SearchHits     int64
	SearchAvgNanos int64
	CountCount     int64
	CountErrors    int64
	ScrollPages    int64
	ScrollHits     int64
	ScrollErrors   int64
	Timeouts       int64
}
