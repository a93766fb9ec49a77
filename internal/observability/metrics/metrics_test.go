package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestClinicMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewClinicMetrics(reg)
	m.ObserveTransition("appointment", "checked-in", "ok")
	m.ObserveArtifactOp("save", "ok")
	m.ObserveArtifactSize("pdfs", 4096)
	m.ObserveRenderDuration(0.25)
}

func TestClinicMetricsNilSafe(t *testing.T) {
	var m *ClinicMetrics
	m.ObserveTransition("appointment", "completed", "rejected")
	m.ObserveArtifactOp("delete", "partial")
	m.ObserveArtifactSize("images", 1024)
	m.ObserveRenderDuration(0.1)
}
