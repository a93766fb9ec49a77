package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/medflow/clinic-platform/internal/appointments"
	"github.com/medflow/clinic-platform/internal/observability/metrics"
	"github.com/medflow/clinic-platform/internal/pharmacy"
	"github.com/medflow/clinic-platform/internal/users"
	"github.com/medflow/clinic-platform/pkg/logging"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := metrics.NewClinicMetrics(reg)
	logger := logging.Default()
	return New(&Config{
		Logger:              logger,
		AppointmentsHandler: appointments.NewHandler(appointments.NewInMemoryRepository(), m, logger),
		PharmacyHandler:     pharmacy.NewHandler(pharmacy.NewInMemoryRepository(), m, logger),
		UsersHandler:        users.NewHandler(users.NewInMemoryRepository(), logger),
		MetricsHandler:      promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})
}

func TestHealthz(t *testing.T) {
	r := newTestRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("unexpected health body: %v", body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAppointmentLifecycleOverHTTP(t *testing.T) {
	r := newTestRouter(t)

	payload, _ := json.Marshal(appointments.CreateAppointmentRequest{
		PatientID:    "pat-1",
		DoctorID:     "doc-1",
		ScheduledFor: time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC),
		Reason:       "follow-up",
	})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/appointments", bytes.NewReader(payload))
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created appointments.Appointment
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPatch, "/appointments/"+created.ID+"/status",
		bytes.NewReader([]byte(`{"status":"confirmed"}`)))
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("patch status: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPatch, "/appointments/"+created.ID+"/status",
		bytes.NewReader([]byte(`{"status":"scheduled"}`)))
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("backward transition: expected 400, got %d", rec.Code)
	}
}

func TestUnknownRouteIs404(t *testing.T) {
	r := newTestRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRoutesAbsentWhenHandlersNil(t *testing.T) {
	r := New(&Config{Logger: logging.Default()})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/appointments", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 when handler not wired, got %d", rec.Code)
	}
}
