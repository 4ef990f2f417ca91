package prommetrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/lexigo"
	"github.com/hupe1980/lexigo/extract"
	"github.com/hupe1980/lexigo/index"
	lexitest "github.com/hupe1980/lexigo/testutil"
)

func TestCollector_Record(t *testing.T) {
	c := New("test")

	c.RecordSearch(10, 5*time.Millisecond, nil)
	c.RecordSearch(0, time.Millisecond, errors.New("boom"))
	c.RecordCount(time.Millisecond, nil)
	c.RecordScroll(3, time.Millisecond, nil)
	c.RecordTimeout("search")

	assert.InDelta(t, 1, testutil.ToFloat64(c.requestsTotal.WithLabelValues("search", "ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.requestsTotal.WithLabelValues("search", "error")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.requestsTotal.WithLabelValues("count", "ok")), 0)
	assert.InDelta(t, 10, testutil.ToFloat64(c.hitsTotal.WithLabelValues("search")), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(c.hitsTotal.WithLabelValues("scroll")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.timeoutsTotal.WithLabelValues("search")), 0)
	assert.Equal(t, 3, testutil.CollectAndCount(c.requestDuration))
}

func TestCollector_Register(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	c := New("lexigo")
	require.NoError(t, reg.Register(c))

	c.RecordCount(time.Millisecond, nil)
	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "lexigo_requests_total")
	assert.Contains(t, names, "lexigo_request_duration_seconds")
}

func TestCollector_WithSearcher(t *testing.T) {
	c := New("lexigo")
	s := lexigo.New(lexitest.NewReader("syn", 30), lexigo.WithMetricsCollector(c))
	defer s.Close()

	res, err := lexigo.Search[extract.DocRef](s, index.MatchAll{}).Limit(5).Execute(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Hits, 5)

	assert.InDelta(t, 1, testutil.ToFloat64(c.requestsTotal.WithLabelValues("search", "ok")), 0)
	assert.InDelta(t, 5, testutil.ToFloat64(c.hitsTotal.WithLabelValues("search")), 0)
}
