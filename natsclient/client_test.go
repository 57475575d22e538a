package natsclient

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/ariata-os/ariata/metric"
)

func TestRecordStatus_DrivesConnectionGauge(t *testing.T) {
	m := metric.NewMetrics()
	c := &Client{metrics: m}

	c.recordStatus(true)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NATSConnected))

	c.recordStatus(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.NATSConnected))

	c.recordStatus(true)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NATSConnected))
}

func TestRecordStatus_NoMetricsIsNoop(t *testing.T) {
	c := &Client{}
	assert.NotPanics(t, func() {
		c.recordStatus(true)
		c.recordStatus(false)
	})
}

func TestWithMetrics_InstallsGaugeHook(t *testing.T) {
	m := metric.NewMetrics()
	c := &Client{}
	WithMetrics(m)(c)
	assert.Same(t, m, c.metrics)
}
