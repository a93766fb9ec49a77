package clinicdata

import (
	"context"
	"errors"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/medflow/clinic-platform/internal/artifacts"
	"github.com/medflow/clinic-platform/pkg/logging"
)

type fakeArtifactDeleter struct {
	calls   []string
	results map[string]*artifacts.DeleteResult
	err     error
}

func (f *fakeArtifactDeleter) Delete(ctx context.Context, prescriptionID string) (*artifacts.DeleteResult, error) {
	f.calls = append(f.calls, prescriptionID)
	if f.err != nil {
		return nil, f.err
	}
	if res, ok := f.results[prescriptionID]; ok {
		return res, nil
	}
	return &artifacts.DeleteResult{}, nil
}

func TestPurgePatient(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	patientID := "pat-100"

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM prescriptions").WithArgs(patientID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("RX001").AddRow("RX002"))
	mock.ExpectExec("DELETE FROM pharmacy_orders").WithArgs(patientID).WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("DELETE FROM prescriptions").WithArgs(patientID).WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec("DELETE FROM appointments").WithArgs(patientID).WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectExec("DELETE FROM users").WithArgs(patientID).WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	deleter := &fakeArtifactDeleter{results: map[string]*artifacts.DeleteResult{
		"RX001": {Deleted: 2},
		"RX002": {Deleted: 1, Failed: []string{"/pdfs/2025/03/07/RX002/pdfs_1.pdf"}},
	}}

	purger := NewPurger(mock, deleter, logging.Default())
	res, err := purger.PurgePatient(context.Background(), patientID)
	if err != nil {
		t.Fatalf("PurgePatient: %v", err)
	}

	if res.Deleted.PharmacyOrders != 1 || res.Deleted.Prescriptions != 2 || res.Deleted.Appointments != 3 || res.Deleted.Users != 1 {
		t.Fatalf("unexpected counts: %+v", res.Deleted)
	}
	if res.Deleted.ArtifactFiles != 3 {
		t.Fatalf("expected 3 artifact files deleted, got %d", res.Deleted.ArtifactFiles)
	}
	if len(res.ArtifactFailed) != 1 {
		t.Fatalf("expected 1 failed artifact path, got %v", res.ArtifactFailed)
	}
	if len(deleter.calls) != 2 || deleter.calls[0] != "RX001" || deleter.calls[1] != "RX002" {
		t.Fatalf("unexpected deleter calls: %v", deleter.calls)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPurgePatient_ArtifactFailureTolerated(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM prescriptions").WithArgs("pat-2").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("RX009"))
	mock.ExpectExec("DELETE FROM pharmacy_orders").WithArgs("pat-2").WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec("DELETE FROM prescriptions").WithArgs("pat-2").WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("DELETE FROM appointments").WithArgs("pat-2").WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec("DELETE FROM users").WithArgs("pat-2").WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	deleter := &fakeArtifactDeleter{err: errors.New("disk gone")}

	purger := NewPurger(mock, deleter, logging.Default())
	res, err := purger.PurgePatient(context.Background(), "pat-2")
	if err != nil {
		t.Fatalf("PurgePatient: %v", err)
	}
	if res.Deleted.Users != 1 {
		t.Fatalf("user row should still be deleted, got %+v", res.Deleted)
	}
	if res.Deleted.ArtifactFiles != 0 {
		t.Fatalf("no artifact files should be counted, got %d", res.Deleted.ArtifactFiles)
	}
}

func TestPurgePatient_MissingID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	purger := NewPurger(mock, nil, nil)
	if _, err := purger.PurgePatient(context.Background(), "  "); err == nil {
		t.Fatal("expected error for blank patient id")
	}
}

func TestPurgePatient_RollbackOnDeleteError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM prescriptions").WithArgs("pat-3").
		WillReturnRows(pgxmock.NewRows([]string{"id"}))
	mock.ExpectExec("DELETE FROM pharmacy_orders").WithArgs("pat-3").WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	deleter := &fakeArtifactDeleter{}
	purger := NewPurger(mock, deleter, logging.Default())
	if _, err := purger.PurgePatient(context.Background(), "pat-3"); err == nil {
		t.Fatal("expected error when a delete fails")
	}
	if len(deleter.calls) != 0 {
		t.Fatalf("artifacts must not be touched on rollback, got calls %v", deleter.calls)
	}
}
