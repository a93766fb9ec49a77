package prescriptions

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/medflow/clinic-platform/internal/observability/metrics"
	"github.com/medflow/clinic-platform/internal/render"
	"github.com/medflow/clinic-platform/pkg/logging"
)

// Handler handles HTTP requests for prescriptions
type Handler struct {
	repo    Repository
	pdf     *PDFService
	metrics *metrics.ClinicMetrics
	logger  *logging.Logger
}

// NewHandler creates a new prescriptions handler. The PDF service is optional;
// the generate endpoint answers 503 when rendering is not wired.
func NewHandler(repo Repository, pdf *PDFService, m *metrics.ClinicMetrics, logger *logging.Logger) *Handler {
	return &Handler{
		repo:    repo,
		pdf:     pdf,
		metrics: m,
		logger:  logger,
	}
}

// Create handles POST /prescriptions requests
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePrescriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create prescription", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.logger.Info("prescription created", "id", p.ID, "appointment_id", p.AppointmentID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(p)
}

// Get handles GET /prescriptions/{id} requests
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := h.load(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p)
}

// UpdateContent handles PUT /prescriptions/{id} requests. Content edits are
// accepted only while the prescription is still a draft.
func (h *Handler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	var req UpdateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	p, ok := h.load(w, r)
	if !ok {
		return
	}

	if err := p.ApplyContent(&req, time.Now().UTC()); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	if err := h.repo.Upsert(r.Context(), p); err != nil {
		h.logger.Error("failed to persist prescription", "error", err, "id", p.ID)
		http.Error(w, "failed to persist prescription", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p)
}

// UpdateStatusRequest is the request body for a status change.
type UpdateStatusRequest struct {
	Status Status `json:"status"`
}

// UpdateStatus handles PATCH /prescriptions/{id}/status requests
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	p, ok := h.load(w, r)
	if !ok {
		return
	}

	if err := ApplyStatus(p, req.Status, time.Now().UTC()); err != nil {
		h.metrics.ObserveTransition("prescription", string(req.Status), "rejected")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.repo.Upsert(r.Context(), p); err != nil {
		h.logger.Error("failed to persist prescription", "error", err, "id", p.ID)
		http.Error(w, "failed to persist prescription", http.StatusInternalServerError)
		return
	}

	h.metrics.ObserveTransition("prescription", string(req.Status), "ok")
	h.logger.Info("prescription status updated", "id", p.ID, "status", req.Status)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p)
}

// GeneratePDF handles POST /prescriptions/{id}/pdf requests
func (h *Handler) GeneratePDF(w http.ResponseWriter, r *http.Request) {
	if h.pdf == nil {
		http.Error(w, "pdf rendering not configured", http.StatusServiceUnavailable)
		return
	}

	id := chi.URLParam(r, "id")
	start := time.Now()
	saved, err := h.pdf.GeneratePDF(r.Context(), id)
	h.metrics.ObserveRenderDuration(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, ErrPrescriptionNotFound) {
			http.Error(w, "prescription not found", http.StatusNotFound)
			return
		}
		var renderErr *render.RenderError
		if errors.As(err, &renderErr) {
			h.logger.Error("pdf render failed", "id", id, "error", err)
			http.Error(w, "pdf render failed", http.StatusBadGateway)
			return
		}
		h.logger.Error("pdf generation failed", "id", id, "error", err)
		http.Error(w, "pdf generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(saved)
}

// List handles GET /prescriptions requests
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter := Filter{
		AppointmentID: r.URL.Query().Get("appointment_id"),
		PatientID:     r.URL.Query().Get("patient_id"),
		DoctorID:      r.URL.Query().Get("doctor_id"),
		Status:        Status(r.URL.Query().Get("status")),
	}

	list, err := h.repo.Find(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list prescriptions", "error", err)
		http.Error(w, "failed to list prescriptions", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*Prescription, bool) {
	id := chi.URLParam(r, "id")
	p, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrPrescriptionNotFound) {
			http.Error(w, "prescription not found", http.StatusNotFound)
			return nil, false
		}
		h.logger.Error("failed to load prescription", "error", err, "id", id)
		http.Error(w, "failed to load prescription", http.StatusInternalServerError)
		return nil, false
	}
	return p, true
}
