// Package prommetrics exports Searcher metrics to Prometheus.
//
//	pm := prommetrics.New("lexigo")
//	prometheus.MustRegister(pm)
//	s := lexigo.New(reader, lexigo.WithMetricsCollector(pm))
package prommetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/lexigo"
)

// Collector implements lexigo.MetricsCollector on Prometheus vectors.
// It is itself a prometheus.Collector, so one Register call exports all of them.
type Collector struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	hitsTotal       *prometheus.CounterVec
	timeoutsTotal   *prometheus.CounterVec
}

var (
	_ lexigo.MetricsCollector = (*Collector)(nil)
	_ prometheus.Collector    = (*Collector)(nil)
)

// New creates a Collector with metric names under namespace.
func New(namespace string) *Collector {
	return &Collector{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of search, count and scroll requests",
			},
			[]string{"op", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"op"},
		),
		hitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "hits_total",
				Help:      "Total number of materialized hits",
			},
			[]string{"op"},
		),
		timeoutsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "timeouts_total",
				Help:      "Requests whose time budget expired",
			},
			[]string{"op"},
		),
	}
}

// RecordSearch implements lexigo.MetricsCollector.
func (c *Collector) RecordSearch(hits int, duration time.Duration, err error) {
	c.record("search", hits, duration, err)
}

// RecordCount implements lexigo.MetricsCollector.
func (c *Collector) RecordCount(duration time.Duration, err error) {
	c.record("count", 0, duration, err)
}

// RecordScroll implements lexigo.MetricsCollector.
func (c *Collector) RecordScroll(hits int, duration time.Duration, err error) {
	c.record("scroll", hits, duration, err)
}

// RecordTimeout implements lexigo.MetricsCollector.
func (c *Collector) RecordTimeout(op string) {
	c.timeoutsTotal.WithLabelValues(op).Inc()
}

func (c *Collector) record(op string, hits int, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.requestsTotal.WithLabelValues(op, status).Inc()
	c.requestDuration.WithLabelValues(op).Observe(duration.Seconds())
	if err == nil && hits > 0 {
		c.hitsTotal.WithLabelValues(op).Add(float64(hits))
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.requestsTotal.Describe(ch)
	c.requestDuration.Describe(ch)
	c.hitsTotal.Describe(ch)
	c.timeoutsTotal.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.requestsTotal.Collect(ch)
	c.requestDuration.Collect(ch)
	c.hitsTotal.Collect(ch)
	c.timeoutsTotal.Collect(ch)
}
