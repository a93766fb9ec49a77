package artifacts

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/medflow/clinic-platform/pkg/logging"
)

// Handler exposes the artifact store over HTTP, keyed by prescription.
type Handler struct {
	store  *Store
	logger *logging.Logger
}

func NewHandler(store *Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		store:  store,
		logger: logger,
	}
}

// List handles GET /prescriptions/{id}/artifacts requests
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	records, err := h.store.List(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrMissingPrescriptionID) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to list artifacts", "error", err, "prescription_id", id)
		http.Error(w, "failed to list artifacts", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}

// Delete handles DELETE /prescriptions/{id}/artifacts requests. A partially
// completed batch still returns 200 with the failed paths listed.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := h.store.Delete(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrMissingPrescriptionID) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to delete artifacts", "error", err, "prescription_id", id)
		http.Error(w, "failed to delete artifacts", http.StatusInternalServerError)
		return
	}

	h.logger.Info("artifacts deleted", "prescription_id", id, "deleted", result.Deleted, "failed", len(result.Failed))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
