package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/medflow/clinic-platform/internal/appointments"
	"github.com/medflow/clinic-platform/internal/artifacts"
	"github.com/medflow/clinic-platform/internal/http/handlers"
	httpmiddleware "github.com/medflow/clinic-platform/internal/http/middleware"
	"github.com/medflow/clinic-platform/internal/pharmacy"
	"github.com/medflow/clinic-platform/internal/prescriptions"
	"github.com/medflow/clinic-platform/internal/users"
	"github.com/medflow/clinic-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger               *logging.Logger
	AppointmentsHandler  *appointments.Handler
	PrescriptionsHandler *prescriptions.Handler
	PharmacyHandler      *pharmacy.Handler
	ArtifactsHandler     *artifacts.Handler
	UsersHandler         *users.Handler
	AdminClinicData      *handlers.AdminClinicDataHandler
	AdminToken           string
	MetricsHandler       http.Handler
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.AppointmentsHandler != nil {
		r.Route("/appointments", func(r chi.Router) {
			r.Post("/", cfg.AppointmentsHandler.Create)
			r.Get("/", cfg.AppointmentsHandler.List)
			r.Get("/{id}", cfg.AppointmentsHandler.Get)
			r.Patch("/{id}/status", cfg.AppointmentsHandler.UpdateStatus)
		})
	}

	if cfg.PrescriptionsHandler != nil {
		r.Route("/prescriptions", func(r chi.Router) {
			r.Post("/", cfg.PrescriptionsHandler.Create)
			r.Get("/", cfg.PrescriptionsHandler.List)
			r.Get("/{id}", cfg.PrescriptionsHandler.Get)
			r.Put("/{id}", cfg.PrescriptionsHandler.UpdateContent)
			r.Patch("/{id}/status", cfg.PrescriptionsHandler.UpdateStatus)
			r.Post("/{id}/pdf", cfg.PrescriptionsHandler.GeneratePDF)
			if cfg.ArtifactsHandler != nil {
				r.Get("/{id}/artifacts", cfg.ArtifactsHandler.List)
				r.Delete("/{id}/artifacts", cfg.ArtifactsHandler.Delete)
			}
		})
	}

	if cfg.PharmacyHandler != nil {
		r.Route("/pharmacy/orders", func(r chi.Router) {
			r.Post("/", cfg.PharmacyHandler.Create)
			r.Get("/", cfg.PharmacyHandler.List)
			r.Get("/{id}", cfg.PharmacyHandler.Get)
			r.Patch("/{id}/status", cfg.PharmacyHandler.UpdateStatus)
			r.Patch("/{id}/customer-status", cfg.PharmacyHandler.UpdateCustomerStatus)
			r.Post("/{id}/items/{index}/supply", cfg.PharmacyHandler.SupplyItem)
		})
	}

	if cfg.UsersHandler != nil {
		r.Route("/users", func(r chi.Router) {
			r.Post("/", cfg.UsersHandler.Create)
			r.Get("/", cfg.UsersHandler.List)
			r.Get("/{id}", cfg.UsersHandler.Get)
			r.Put("/{id}", cfg.UsersHandler.Update)
		})
	}

	if cfg.AdminClinicData != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(requireAdminToken(cfg.AdminToken))
			admin.Delete("/patients/{patientID}", cfg.AdminClinicData.PurgePatient)
		})
	}

	return r
}
