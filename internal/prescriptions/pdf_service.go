package prescriptions

import (
	"context"
	"fmt"
	"time"

	"github.com/medflow/clinic-platform/internal/artifacts"
	"github.com/medflow/clinic-platform/internal/render"
	"github.com/medflow/clinic-platform/internal/users"
	"github.com/medflow/clinic-platform/pkg/logging"
)

// Renderer is the subset of render.Pool used by PDFService.
type Renderer interface {
	RenderPrescriptionPDF(ctx context.Context, view *render.PrescriptionView) ([]byte, error)
}

// ArtifactSaver is the subset of artifacts.Store used by PDFService.
type ArtifactSaver interface {
	Save(ctx context.Context, data []byte, prescriptionID string, class artifacts.Class) (*artifacts.SavedArtifact, error)
}

// NameResolver resolves user ids into display names for the rendered page.
type NameResolver interface {
	GetByID(ctx context.Context, id string) (*users.User, error)
}

// PDFService renders a prescription to PDF and files the result as an
// artifact. The prescription write and the artifact write are independent
// steps: an artifact failure never rolls back clinical data.
type PDFService struct {
	repo       Repository
	renderer   Renderer
	store      ArtifactSaver
	names      NameResolver
	clinicName string
	logger     *logging.Logger

	now func() time.Time
}

// NewPDFService wires the render bridge and artifact store for prescriptions.
// The name resolver is optional; ids are used verbatim when it is absent.
func NewPDFService(repo Repository, renderer Renderer, store ArtifactSaver, names NameResolver, clinicName string, logger *logging.Logger) *PDFService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PDFService{
		repo:       repo,
		renderer:   renderer,
		store:      store,
		names:      names,
		clinicName: clinicName,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// GeneratePDF renders the prescription and stores the bytes under the pdfs
// artifact class, recording the relative path back on the prescription.
func (s *PDFService) GeneratePDF(ctx context.Context, prescriptionID string) (*artifacts.SavedArtifact, error) {
	p, err := s.repo.GetByID(ctx, prescriptionID)
	if err != nil {
		return nil, err
	}

	view := s.buildView(ctx, p)
	pdf, err := s.renderer.RenderPrescriptionPDF(ctx, view)
	if err != nil {
		// Render failures surface as-is: no retry, typically malformed input.
		return nil, err
	}

	saved, err := s.store.Save(ctx, pdf, p.ID, artifacts.ClassPDFs)
	if err != nil {
		return nil, fmt.Errorf("prescriptions: store pdf: %w", err)
	}

	p.PDFPath = saved.RelativePath
	p.UpdatedAt = s.now()
	if err := s.repo.Upsert(ctx, p); err != nil {
		// The artifact is already on disk and stays there; only the back
		// reference failed.
		s.logger.Error("failed to record pdf path", "prescription_id", p.ID, "path", saved.RelativePath, "error", err)
		return saved, fmt.Errorf("prescriptions: record pdf path: %w", err)
	}

	s.logger.Info("prescription pdf generated", "prescription_id", p.ID, "path", saved.RelativePath, "size", saved.Size)
	return saved, nil
}

// buildView denormalizes the prescription into display strings. The render
// bridge performs no lookups of its own.
func (s *PDFService) buildView(ctx context.Context, p *Prescription) *render.PrescriptionView {
	view := &render.PrescriptionView{
		PrescriptionID: p.ID,
		ClinicName:     s.clinicName,
		PatientName:    s.resolveName(ctx, p.PatientID),
		DoctorName:     s.resolveName(ctx, p.DoctorID),
		Date:           p.CreatedAt.Format("2 January 2006"),
		Diagnosis:      p.Diagnosis,
		Notes:          p.Notes,
		WhiteboardPNG:  p.WhiteboardPNG,
	}

	for _, med := range p.Medications {
		view.MedicationLines = append(view.MedicationLines, formatMedicationLine(med))
	}
	for _, test := range p.Tests {
		line := test.Name
		if test.Instructions != "" {
			line += " (" + test.Instructions + ")"
		}
		view.TestLines = append(view.TestLines, line)
	}
	return view
}

func (s *PDFService) resolveName(ctx context.Context, userID string) string {
	if s.names == nil {
		return userID
	}
	u, err := s.names.GetByID(ctx, userID)
	if err != nil {
		s.logger.Warn("name resolution failed, using id", "user_id", userID, "error", err)
		return userID
	}
	return u.Name
}

func formatMedicationLine(med MedicationLine) string {
	line := med.Name
	if med.Dosage != "" {
		line += " " + med.Dosage
	}
	if med.Frequency != "" {
		line += ", " + med.Frequency
	}
	if med.Duration != "" {
		line += " for " + med.Duration
	}
	if med.Quantity > 0 {
		line += fmt.Sprintf(" (x%d)", med.Quantity)
	}
	if med.Instructions != "" {
		line += ". " + med.Instructions
	}
	return line
}
