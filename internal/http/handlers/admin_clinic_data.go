package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/medflow/clinic-platform/internal/clinicdata"
	"github.com/medflow/clinic-platform/pkg/logging"
)

type patientPurger interface {
	PurgePatient(ctx context.Context, patientID string) (clinicdata.PurgeResult, error)
}

// AdminClinicDataHandler provides privileged endpoints for record erasure.
type AdminClinicDataHandler struct {
	purger patientPurger
	logger *logging.Logger
}

func NewAdminClinicDataHandler(purger patientPurger, logger *logging.Logger) *AdminClinicDataHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminClinicDataHandler{
		purger: purger,
		logger: logger,
	}
}

type purgePatientResponse struct {
	PatientID string `json:"patient_id"`
	Deleted   struct {
		PharmacyOrders int64 `json:"pharmacy_orders"`
		Prescriptions  int64 `json:"prescriptions"`
		Appointments   int64 `json:"appointments"`
		Users          int64 `json:"users"`
		ArtifactFiles  int64 `json:"artifact_files"`
	} `json:"deleted"`
	ArtifactFailed []string `json:"artifact_failed,omitempty"`
}

// PurgePatient erases a patient's records and stored artifacts.
// Route: DELETE /admin/patients/{patientID}
func (h *AdminClinicDataHandler) PurgePatient(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.purger == nil {
		http.Error(w, "purge not configured", http.StatusServiceUnavailable)
		return
	}

	patientID := strings.TrimSpace(chi.URLParam(r, "patientID"))
	if patientID == "" {
		http.Error(w, "missing patientID", http.StatusBadRequest)
		return
	}

	result, err := h.purger.PurgePatient(r.Context(), patientID)
	if err != nil {
		h.logger.Error("patient purge failed", "error", err, "patient_id", patientID)
		http.Error(w, "purge failed", http.StatusInternalServerError)
		return
	}

	h.logger.Info("patient purged",
		"patient_id", patientID,
		"prescriptions", result.Deleted.Prescriptions,
		"artifact_files", result.Deleted.ArtifactFiles,
		"artifact_failed", len(result.ArtifactFailed),
	)

	var resp purgePatientResponse
	resp.PatientID = result.PatientID
	resp.Deleted.PharmacyOrders = result.Deleted.PharmacyOrders
	resp.Deleted.Prescriptions = result.Deleted.Prescriptions
	resp.Deleted.Appointments = result.Deleted.Appointments
	resp.Deleted.Users = result.Deleted.Users
	resp.Deleted.ArtifactFiles = result.Deleted.ArtifactFiles
	resp.ArtifactFailed = result.ArtifactFailed

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
