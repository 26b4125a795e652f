package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := &Metrics{prometheus: NewPrometheusMetrics()}

	m.Decision("v2_1", "Buy")
	m.Decision("v2_1", "Buy")
	m.Decision("v2_1", "Sell")
	m.Excluded("missing data")
	m.Triggered(-3)
	m.Triggered(-2.5)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.prometheus.Decisions.WithLabelValues("v2_1", "Buy")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.prometheus.Decisions.WithLabelValues("v2_1", "Sell")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.prometheus.Excluded.WithLabelValues("missing data")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.prometheus.Triggered.WithLabelValues("-3")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.prometheus.Triggered.WithLabelValues("-2.5")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.prometheus.Decisions))
}
