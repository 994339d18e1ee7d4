package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewMetrics_CustomRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("test", reg)

	m.FramesReceived.Inc()
	m.FramesRejected.WithLabelValues("decode").Add(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FramesReceived))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.FramesRejected.WithLabelValues("decode")))
}

func TestRecordConnectionState(t *testing.T) {
	RecordConnectionState("connected")

	assert.Equal(t, 1.0, testutil.ToFloat64(DefaultMetrics.ConnectionState.WithLabelValues("connected")))
	assert.Equal(t, 0.0, testutil.ToFloat64(DefaultMetrics.ConnectionState.WithLabelValues("error")))

	RecordConnectionState("error")
	assert.Equal(t, 0.0, testutil.ToFloat64(DefaultMetrics.ConnectionState.WithLabelValues("connected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(DefaultMetrics.ConnectionState.WithLabelValues("error")))
}

func TestRecordStoreClear(t *testing.T) {
	UpdateStoreSize(7)
	assert.Equal(t, 7.0, testutil.ToFloat64(DefaultMetrics.StoreSize))

	RecordStoreClear()
	assert.Equal(t, 0.0, testutil.ToFloat64(DefaultMetrics.StoreSize))
}
