package lexigo

import (
	"log/slog"
	"time"

	"github.com/hupe1980/lexigo/search"
	"github.com/hupe1980/lexigo/timeout"
)

const (
	// DefaultLimit is the page size of a search without an explicit Limit.
	DefaultLimit = 10

	// DefaultScrollChunkSize is the number of hits per scroll page.
	DefaultScrollChunkSize = 100
)

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
	timeoutMode      timeout.Mode
	timeout          time.Duration
	defaultLimit     int
	scrollChunkSize  int
	prefetchDocs     int
	prefetchCount    int
	clock            func() time.Time
}

// Option configures a Searcher.
type Option func(*options)

// WithMetricsCollector configures a metrics collector for operation monitoring.
// Pass nil to disable metrics collection (uses NoopMetricsCollector).
//
// Example with BasicMetricsCollector:
//
//	metrics := &lexigo.BasicMetricsCollector{}
//	s := lexigo.New(reader, lexigo.WithMetricsCollector(metrics))
//	// ... run searches ...
//	stats := metrics.GetStats()
//	fmt.Printf("Searches: %d, Avg latency: %dns\n", stats.SearchCount, stats.SearchAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := lexigo.NewJSONLogger(slog.LevelInfo)
//	s := lexigo.New(reader, lexigo.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithTimeout sets the default time limit of every request.
// A zero d or timeout.ModeNone disables the limit.
func WithTimeout(d time.Duration, mode timeout.Mode) Option {
	return func(o *options) {
		if d <= 0 {
			mode = timeout.ModeNone
		}
		o.timeout, o.timeoutMode = d, mode
	}
}

// WithDefaultLimit sets the page size used when a search sets no Limit.
func WithDefaultLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.defaultLimit = n
		}
	}
}

// WithScrollChunkSize sets the default number of hits per scroll page.
func WithScrollChunkSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.scrollChunkSize = n
		}
	}
}

// WithPrefetch overrides the adaptive prefetch of NoLimit searches: docs is
// the window of the prefetch pass and countThreshold is how far past docs
// that pass keeps counting exactly.
func WithPrefetch(docs, countThreshold int) Option {
	return func(o *options) {
		o.prefetchDocs, o.prefetchCount = docs, countThreshold
	}
}

// WithClock replaces time.Now for request budgets.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.clock = now
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		defaultLimit:     DefaultLimit,
		scrollChunkSize:  DefaultScrollChunkSize,
		prefetchDocs:     search.DefaultPrefetchDocs,
		prefetchCount:    search.DefaultPrefetchCountThreshold,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
