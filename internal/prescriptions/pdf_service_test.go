package prescriptions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medflow/clinic-platform/internal/artifacts"
	"github.com/medflow/clinic-platform/internal/render"
	"github.com/medflow/clinic-platform/internal/users"
	"github.com/medflow/clinic-platform/pkg/logging"
)

type fakeRenderer struct {
	lastView *render.PrescriptionView
	fail     error
}

func (f *fakeRenderer) RenderPrescriptionPDF(ctx context.Context, view *render.PrescriptionView) ([]byte, error) {
	f.lastView = view
	if f.fail != nil {
		return nil, &render.RenderError{PrescriptionID: view.PrescriptionID, Err: f.fail}
	}
	return []byte("%PDF-1.4 " + view.PrescriptionID), nil
}

type fakeSaver struct {
	saved []artifacts.Class
	fail  error
}

func (f *fakeSaver) Save(ctx context.Context, data []byte, prescriptionID string, class artifacts.Class) (*artifacts.SavedArtifact, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	f.saved = append(f.saved, class)
	return &artifacts.SavedArtifact{
		Filename:       "pdfs_1750000000000.pdf",
		RelativePath:   "/pdfs/2025/06/15/" + prescriptionID + "/pdfs_1750000000000.pdf",
		Size:           int64(len(data)),
		PrescriptionID: prescriptionID,
		Class:          class,
		UploadedAt:     time.Now().UTC(),
	}, nil
}

func seedPrescription(t *testing.T, repo Repository) *Prescription {
	t.Helper()
	p, err := repo.Create(context.Background(), &CreatePrescriptionRequest{
		AppointmentID: "apt-1",
		PatientID:     "pat-1",
		DoctorID:      "doc-1",
		Diagnosis:     "Acute bronchitis",
		Medications: []MedicationLine{
			{Name: "Amoxicillin", Dosage: "500mg", Frequency: "twice daily", Duration: "7 days", Quantity: 21},
		},
		Tests: []TestLine{{Name: "Chest X-ray", Instructions: "PA view"}},
	})
	require.NoError(t, err)
	return p
}

func TestGeneratePDF_Success(t *testing.T) {
	repo := NewInMemoryRepository()
	p := seedPrescription(t, repo)

	userRepo := users.NewInMemoryRepository()
	_, err := userRepo.Create(context.Background(), &users.User{
		ID: "pat-1", Email: "jo@example.com", Name: "Jo Malik", Role: users.RolePatient,
	})
	require.NoError(t, err)
	_, err = userRepo.Create(context.Background(), &users.User{
		ID: "doc-1", Email: "lee@example.com", Name: "Dr. Lee Osei", Role: users.RoleDoctor,
	})
	require.NoError(t, err)

	renderer := &fakeRenderer{}
	saver := &fakeSaver{}
	svc := NewPDFService(repo, renderer, saver, userRepo, "Cedar Street Clinic", logging.Default())

	saved, err := svc.GeneratePDF(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, []artifacts.Class{artifacts.ClassPDFs}, saver.saved)

	// The view is fully denormalized.
	require.NotNil(t, renderer.lastView)
	assert.Equal(t, "Jo Malik", renderer.lastView.PatientName)
	assert.Equal(t, "Dr. Lee Osei", renderer.lastView.DoctorName)
	assert.Equal(t, "Cedar Street Clinic", renderer.lastView.ClinicName)
	require.Len(t, renderer.lastView.MedicationLines, 1)
	assert.Equal(t, "Amoxicillin 500mg, twice daily for 7 days (x21)", renderer.lastView.MedicationLines[0])
	require.Len(t, renderer.lastView.TestLines, 1)
	assert.Equal(t, "Chest X-ray (PA view)", renderer.lastView.TestLines[0])

	// The path is recorded on the prescription.
	stored, err := repo.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.RelativePath, stored.PDFPath)
}

func TestGeneratePDF_NamesFallBackToIDs(t *testing.T) {
	repo := NewInMemoryRepository()
	p := seedPrescription(t, repo)

	renderer := &fakeRenderer{}
	svc := NewPDFService(repo, renderer, &fakeSaver{}, nil, "Cedar Street Clinic", logging.Default())

	_, err := svc.GeneratePDF(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "pat-1", renderer.lastView.PatientName)
	assert.Equal(t, "doc-1", renderer.lastView.DoctorName)
}

func TestGeneratePDF_RenderErrorSurfaced(t *testing.T) {
	repo := NewInMemoryRepository()
	p := seedPrescription(t, repo)

	boom := errors.New("layout engine crashed")
	svc := NewPDFService(repo, &fakeRenderer{fail: boom}, &fakeSaver{}, nil, "clinic", logging.Default())

	_, err := svc.GeneratePDF(context.Background(), p.ID)
	require.Error(t, err)

	var renderErr *render.RenderError
	assert.ErrorAs(t, err, &renderErr)

	// No path recorded on failure.
	stored, _ := repo.GetByID(context.Background(), p.ID)
	assert.Empty(t, stored.PDFPath)
}

func TestGeneratePDF_StoreFailureLeavesPrescriptionIntact(t *testing.T) {
	repo := NewInMemoryRepository()
	p := seedPrescription(t, repo)

	svc := NewPDFService(repo, &fakeRenderer{}, &fakeSaver{fail: errors.New("disk full")}, nil, "clinic", logging.Default())

	_, err := svc.GeneratePDF(context.Background(), p.ID)
	require.Error(t, err)

	// The clinical record is untouched; artifact failure is additive.
	stored, getErr := repo.GetByID(context.Background(), p.ID)
	require.NoError(t, getErr)
	assert.Empty(t, stored.PDFPath)
	assert.Equal(t, StatusDraft, stored.Status)
}

func TestGeneratePDF_NotFound(t *testing.T) {
	svc := NewPDFService(NewInMemoryRepository(), &fakeRenderer{}, &fakeSaver{}, nil, "clinic", logging.Default())

	_, err := svc.GeneratePDF(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrPrescriptionNotFound)
}
