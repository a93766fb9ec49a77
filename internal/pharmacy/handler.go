package pharmacy

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/medflow/clinic-platform/internal/observability/metrics"
	"github.com/medflow/clinic-platform/pkg/logging"
)

// Handler handles HTTP requests for pharmacy orders
type Handler struct {
	repo    Repository
	metrics *metrics.ClinicMetrics
	logger  *logging.Logger
}

// NewHandler creates a new pharmacy handler
func NewHandler(repo Repository, m *metrics.ClinicMetrics, logger *logging.Logger) *Handler {
	return &Handler{
		repo:    repo,
		metrics: m,
		logger:  logger,
	}
}

// Create handles POST /pharmacy/orders requests
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	order, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create order", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.logger.Info("pharmacy order created", "id", order.ID, "prescription_id", order.PrescriptionID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(order)
}

// Get handles GET /pharmacy/orders/{id} requests
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	order, ok := h.load(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(order)
}

// UpdateStatusRequest is the request body for a fulfillment status change.
type UpdateStatusRequest struct {
	Status Status `json:"status"`
}

// UpdateStatus handles PATCH /pharmacy/orders/{id}/status requests
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	order, ok := h.load(w, r)
	if !ok {
		return
	}

	if err := ApplyStatus(order, req.Status, time.Now().UTC()); err != nil {
		h.metrics.ObserveTransition("pharmacy_order", string(req.Status), "rejected")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.persist(w, r, order, "pharmacy_order", string(req.Status))
}

// UpdateCustomerStatusRequest is the request body for a customer status change.
type UpdateCustomerStatusRequest struct {
	CustomerStatus CustomerStatus `json:"customer_status"`
	Reason         string         `json:"reason,omitempty"`
}

// UpdateCustomerStatus handles PATCH /pharmacy/orders/{id}/customer-status requests
func (h *Handler) UpdateCustomerStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateCustomerStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	order, ok := h.load(w, r)
	if !ok {
		return
	}

	if err := ApplyCustomerStatus(order, req.CustomerStatus, req.Reason, time.Now().UTC()); err != nil {
		h.metrics.ObserveTransition("pharmacy_customer", string(req.CustomerStatus), "rejected")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.persist(w, r, order, "pharmacy_customer", string(req.CustomerStatus))
}

// SupplyRequest is the request body for supplying one medication line.
type SupplyRequest struct {
	SuppliedQuantity int    `json:"supplied_quantity"`
	Notes            string `json:"notes,omitempty"`
}

// SupplyItem handles POST /pharmacy/orders/{id}/items/{index}/supply requests
func (h *Handler) SupplyItem(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, "invalid line index", http.StatusBadRequest)
		return
	}

	var req SupplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	order, ok := h.load(w, r)
	if !ok {
		return
	}

	if err := SupplyMedication(order, index, req.SuppliedQuantity, req.Notes, time.Now().UTC()); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.persist(w, r, order, "pharmacy_supply", "supplied")
}

// List handles GET /pharmacy/orders requests
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter := Filter{
		PrescriptionID: r.URL.Query().Get("prescription_id"),
		PatientID:      r.URL.Query().Get("patient_id"),
		Status:         Status(r.URL.Query().Get("status")),
		CustomerStatus: CustomerStatus(r.URL.Query().Get("customer_status")),
	}

	orders, err := h.repo.Find(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list orders", "error", err)
		http.Error(w, "failed to list orders", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(orders)
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*Order, bool) {
	id := chi.URLParam(r, "id")
	order, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			http.Error(w, "order not found", http.StatusNotFound)
			return nil, false
		}
		h.logger.Error("failed to load order", "error", err, "id", id)
		http.Error(w, "failed to load order", http.StatusInternalServerError)
		return nil, false
	}
	return order, true
}

func (h *Handler) persist(w http.ResponseWriter, r *http.Request, order *Order, entity, status string) {
	if err := h.repo.Upsert(r.Context(), order); err != nil {
		h.logger.Error("failed to persist order", "error", err, "id", order.ID)
		http.Error(w, "failed to persist order", http.StatusInternalServerError)
		return
	}

	h.metrics.ObserveTransition(entity, status, "ok")
	h.logger.Info("pharmacy order updated", "id", order.ID, "status", order.Status, "customer_status", order.CustomerStatus)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(order)
}
