// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Feed metrics
	FramesReceived  prometheus.Counter
	TradesAccepted  prometheus.Counter
	FramesRejected  *prometheus.CounterVec
	FrameHandleTime prometheus.Histogram

	// Connection metrics
	ConnectionState       *prometheus.GaugeVec
	ConnectionTransitions *prometheus.CounterVec
	ConnectAttempts       prometheus.Counter

	// Store metrics
	StoreSize    prometheus.Gauge
	StoreClears  prometheus.Counter
	FilterApplys prometheus.Counter

	// Generator metrics
	GeneratorTradesSent prometheus.Counter
	GeneratorClients    prometheus.Gauge
}

// NewMetrics creates a new Metrics instance registered with reg.
// A nil reg uses the default Prometheus registerer.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "tradewatch"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		FramesReceived: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "frames_received_total",
			Help:      "Total number of frames received from the feed",
		}),
		TradesAccepted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "trades_accepted_total",
			Help:      "Total number of frames accepted as trades",
		}),
		FramesRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "frames_rejected_total",
			Help:      "Total number of dropped frames by reason",
		}, []string{"reason"}),
		FrameHandleTime: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "frame_handle_seconds",
			Help:      "Time spent decoding, validating and storing one frame",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
		}),

		ConnectionState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "connection",
			Name:      "state",
			Help:      "1 for the current connection state, 0 otherwise",
		}, []string{"state"}),
		ConnectionTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "connection",
			Name:      "transitions_total",
			Help:      "Total number of connection state transitions by target state",
		}, []string{"to"}),
		ConnectAttempts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "connection",
			Name:      "connect_attempts_total",
			Help:      "Total number of transport dial attempts",
		}),

		StoreSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "trades",
			Help:      "Number of trades currently retained",
		}),
		StoreClears: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "clears_total",
			Help:      "Total number of explicit store clears",
		}),
		FilterApplys: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "filter",
			Name:      "applies_total",
			Help:      "Total number of pending filter applies",
		}),

		GeneratorTradesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feedgen",
			Name:      "trades_sent_total",
			Help:      "Total number of synthetic trades written to clients",
		}),
		GeneratorClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "feedgen",
			Name:      "clients",
			Help:      "Number of connected feed clients",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", nil)

var connectionStates = []string{"disconnected", "connecting", "connected", "error"}

// RecordFrameReceived increments the frames received counter.
func RecordFrameReceived() {
	DefaultMetrics.FramesReceived.Inc()
}

// RecordTradeAccepted increments the accepted counter and records handling latency.
func RecordTradeAccepted(seconds float64) {
	DefaultMetrics.TradesAccepted.Inc()
	DefaultMetrics.FrameHandleTime.Observe(seconds)
}

// RecordFrameRejected records a dropped frame.
func RecordFrameRejected(reason string) {
	DefaultMetrics.FramesRejected.WithLabelValues(reason).Inc()
}

// RecordConnectAttempt increments the dial attempts counter.
func RecordConnectAttempt() {
	DefaultMetrics.ConnectAttempts.Inc()
}

// RecordConnectionState marks state as current and counts the transition.
func RecordConnectionState(state string) {
	for _, s := range connectionStates {
		v := 0.0
		if s == state {
			v = 1
		}
		DefaultMetrics.ConnectionState.WithLabelValues(s).Set(v)
	}
	DefaultMetrics.ConnectionTransitions.WithLabelValues(state).Inc()
}

// UpdateStoreSize sets the store size gauge.
func UpdateStoreSize(n int) {
	DefaultMetrics.StoreSize.Set(float64(n))
}

// RecordStoreClear increments the clears counter and zeroes the size gauge.
func RecordStoreClear() {
	DefaultMetrics.StoreClears.Inc()
	DefaultMetrics.StoreSize.Set(0)
}

// RecordFilterApply increments the filter applies counter.
func RecordFilterApply() {
	DefaultMetrics.FilterApplys.Inc()
}

// RecordGeneratorTradeSent increments the generator trades counter.
func RecordGeneratorTradeSent() {
	DefaultMetrics.GeneratorTradesSent.Inc()
}

// UpdateGeneratorClients sets the connected clients gauge.
func UpdateGeneratorClients(n int) {
	DefaultMetrics.GeneratorClients.Set(float64(n))
}
