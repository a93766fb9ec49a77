package metrics

import "github.com/prometheus/client_golang/prometheus"

// ClinicMetrics exposes counters/histograms for record lifecycle and artifact flows.
type ClinicMetrics struct {
	transitionsTotal *prometheus.CounterVec
	artifactOpsTotal *prometheus.CounterVec
	artifactBytes    *prometheus.HistogramVec
	renderSeconds    prometheus.Histogram
}

func NewClinicMetrics(reg prometheus.Registerer) *ClinicMetrics {
	m := &ClinicMetrics{
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "lifecycle",
			Name:      "transitions_total",
			Help:      "Status transitions applied, by entity and outcome",
		}, []string{"entity", "status", "outcome"}),
		artifactOpsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "artifacts",
			Name:      "operations_total",
			Help:      "Artifact store operations, by op and outcome",
		}, []string{"op", "outcome"}),
		artifactBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clinic",
			Subsystem: "artifacts",
			Name:      "saved_bytes",
			Help:      "Size of saved artifacts in bytes",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
		}, []string{"class"}),
		renderSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "clinic",
			Subsystem: "render",
			Name:      "duration_seconds",
			Help:      "Latency of prescription PDF rendering",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.transitionsTotal, m.artifactOpsTotal, m.artifactBytes, m.renderSeconds)
	return m
}

func (m *ClinicMetrics) ObserveTransition(entity, status, outcome string) {
	if m == nil {
		return
	}
	m.transitionsTotal.WithLabelValues(entity, status, outcome).Inc()
}

func (m *ClinicMetrics) ObserveArtifactOp(op, outcome string) {
	if m == nil {
		return
	}
	m.artifactOpsTotal.WithLabelValues(op, outcome).Inc()
}

func (m *ClinicMetrics) ObserveArtifactSize(class string, bytes int) {
	if m == nil {
		return
	}
	m.artifactBytes.WithLabelValues(class).Observe(float64(bytes))
}

func (m *ClinicMetrics) ObserveRenderDuration(seconds float64) {
	if m == nil {
		return
	}
	m.renderSeconds.Observe(seconds)
}
