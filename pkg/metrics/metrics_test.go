package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollector_PipelineMetrics(t *testing.T) {
	c := NewCollector("climate", prometheus.NewRegistry())

	c.RecordBins(7, 3)
	c.RecordBins(1, 0)
	c.RecordCacheResult("hit")
	c.RecordCacheResult("miss")
	c.RecordCacheResult("hit")
	c.ObserveStage("bin", 2*time.Millisecond)

	assert.Equal(t, 8.0, testutil.ToFloat64(c.BinsTotal.WithLabelValues("adequate")))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.BinsTotal.WithLabelValues("rejected")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.SeriesCacheTotal.WithLabelValues("hit")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.PipelineStageDuration))
}

func TestCollector_SeparateRegistries(t *testing.T) {
	// registering the same names twice on one registry panics
	assert.NotPanics(t, func() {
		NewCollector("climate", prometheus.NewRegistry())
		NewCollector("climate", prometheus.NewRegistry())
	})
}

func TestCollector_DBPool(t *testing.T) {
	c := NewCollector("climate", prometheus.NewRegistry())
	c.UpdateDBConnectionPool(2, 3, 5)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.DBConnectionPool.WithLabelValues("in_use")))
	assert.Equal(t, 5.0, testutil.ToFloat64(c.DBConnectionPool.WithLabelValues("total")))
}
