package transcript

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Flow outcomes recorded by Metrics
const (
	OutcomeDone      = "done"
	OutcomeFailed    = "failed"
	OutcomeCached    = "cached"
	// OutcomeCancelled is recorded when the caller leaves before the flow ends
	OutcomeCancelled = "cancelled"
)

// Metrics holds the prometheus collectors of the transcription flows. Each
// instance owns its registry so tests never share global state.
type Metrics struct {
	registry    *prometheus.Registry
	flows       *prometheus.CounterVec
	remoteCalls *prometheus.HistogramVec
	uploadBytes *prometheus.HistogramVec
}

// NewMetrics creates and registers the collectors
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		flows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "transcript",
			Name:      "flows_total",
			Help:      "Transcription flow invocations by media kind and outcome.",
		}, []string{"kind", "outcome"}),
		remoteCalls: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "transcript",
			Name:      "remote_call_duration_seconds",
			Help:      "Latency of calls to the transcription service.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"kind", "outcome"}),
		uploadBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "transcript",
			Name:      "upload_size_bytes",
			Help:      "Size of uploaded media files.",
			Buckets:   prometheus.ExponentialBuckets(256*1024, 4, 8),
		}, []string{"kind"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.flows,
		m.remoteCalls,
		m.uploadBytes,
	)
	return m
}

// Registry exposes the registry for the /metrics handler
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) flow(kind, outcome string) {
	m.flows.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) remote(kind, outcome string, seconds float64) {
	m.remoteCalls.WithLabelValues(kind, outcome).Observe(seconds)
}

func (m *Metrics) upload(kind string, size int64) {
	m.uploadBytes.WithLabelValues(kind).Observe(float64(size))
}
