package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// coordinator.
type Metrics struct {
	DispatchesTotal *prometheus.CounterVec // labels: action, status={success,error}
	SendsTotal      *prometheus.CounterVec // labels: channel={sms,email,push}, outcome={success,error}
	SendDuration    *prometheus.HistogramVec

	PlansTotal       *prometheus.CounterVec // labels: disaster_type
	InvalidScenarios prometheus.Counter

	QueueDepth prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus
// registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.DispatchesTotal,
		m.SendsTotal,
		m.SendDuration,
		m.PlansTotal,
		m.InvalidScenarios,
		m.QueueDepth,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, so tests
// can construct as many instances as they need.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		DispatchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "response_coord",
			Name:      "dispatches_total",
			Help:      "Dispatch batches by action kind and terminal status.",
		}, []string{"action", "status"}),
		SendsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "response_coord",
			Name:      "sends_total",
			Help:      "Individual channel sends by channel and outcome.",
		}, []string{"channel", "outcome"}),
		SendDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "response_coord",
			Name:      "send_duration_seconds",
			Help:      "Duration of individual channel sends.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"channel"}),
		PlansTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "response_coord",
			Name:      "plans_total",
			Help:      "Resource plans computed, by disaster type.",
		}, []string{"disaster_type"}),
		InvalidScenarios: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "response_coord",
			Name:      "invalid_scenarios_total",
			Help:      "Scenario submissions rejected at validation.",
		}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "response_coord",
			Name:      "dispatch_queue_depth",
			Help:      "Dispatch jobs waiting in the queue.",
		}),
	}
}
