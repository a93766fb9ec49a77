package appointments

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/medflow/clinic-platform/internal/observability/metrics"
	"github.com/medflow/clinic-platform/pkg/logging"
)

// Handler handles HTTP requests for appointments
type Handler struct {
	repo    Repository
	metrics *metrics.ClinicMetrics
	logger  *logging.Logger
}

// NewHandler creates a new appointments handler
func NewHandler(repo Repository, m *metrics.ClinicMetrics, logger *logging.Logger) *Handler {
	return &Handler{
		repo:    repo,
		metrics: m,
		logger:  logger,
	}
}

// Create handles POST /appointments requests
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAppointmentRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	appt, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create appointment", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.logger.Info("appointment created", "id", appt.ID, "patient_id", appt.PatientID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(appt)
}

// Get handles GET /appointments/{id} requests
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	appt, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			http.Error(w, "appointment not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load appointment", "error", err, "id", id)
		http.Error(w, "failed to load appointment", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(appt)
}

// UpdateStatusRequest is the request body for a status change.
type UpdateStatusRequest struct {
	Status Status `json:"status"`
}

// UpdateStatus handles PATCH /appointments/{id}/status requests
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	appt, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			http.Error(w, "appointment not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load appointment", "error", err, "id", id)
		http.Error(w, "failed to load appointment", http.StatusInternalServerError)
		return
	}

	if err := ApplyStatus(appt, req.Status, time.Now().UTC()); err != nil {
		h.metrics.ObserveTransition("appointment", string(req.Status), "rejected")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.repo.Upsert(r.Context(), appt); err != nil {
		h.logger.Error("failed to persist appointment", "error", err, "id", id)
		http.Error(w, "failed to persist appointment", http.StatusInternalServerError)
		return
	}

	h.metrics.ObserveTransition("appointment", string(req.Status), "ok")
	h.logger.Info("appointment status updated", "id", id, "status", req.Status)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(appt)
}

// List handles GET /appointments requests
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter := Filter{
		PatientID: r.URL.Query().Get("patient_id"),
		DoctorID:  r.URL.Query().Get("doctor_id"),
		Status:    Status(r.URL.Query().Get("status")),
	}

	appts, err := h.repo.Find(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list appointments", "error", err)
		http.Error(w, "failed to list appointments", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(appts)
}
