package clinicdata

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/medflow/clinic-platform/internal/artifacts"
	"github.com/medflow/clinic-platform/pkg/logging"
)

type db interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ArtifactDeleter removes every stored artifact for a prescription.
type ArtifactDeleter interface {
	Delete(ctx context.Context, prescriptionID string) (*artifacts.DeleteResult, error)
}

// Purger erases a patient's clinical records and stored artifacts.
// Intended for admin-initiated deletion requests.
type Purger struct {
	db        db
	artifacts ArtifactDeleter
	logger    *logging.Logger
}

func NewPurger(db db, artifacts ArtifactDeleter, logger *logging.Logger) *Purger {
	if logger == nil {
		logger = logging.Default()
	}
	return &Purger{
		db:        db,
		artifacts: artifacts,
		logger:    logger,
	}
}

type PurgeCounts struct {
	PharmacyOrders int64
	Prescriptions  int64
	Appointments   int64
	Users          int64
	ArtifactFiles  int64
}

type PurgeResult struct {
	PatientID       string
	Deleted         PurgeCounts
	ArtifactFailed  []string // relative paths that could not be unlinked
	PrescriptionIDs []string // prescriptions whose artifact trees were purged
}

// PurgePatient deletes the patient's user record, appointments, prescriptions
// and pharmacy orders in one transaction, then removes the prescriptions'
// artifact trees. Artifact removal happens after commit and tolerates partial
// failure: leftover paths are reported, not rolled back.
func (p *Purger) PurgePatient(ctx context.Context, patientID string) (PurgeResult, error) {
	patientID = strings.TrimSpace(patientID)
	if p == nil || p.db == nil {
		return PurgeResult{}, fmt.Errorf("clinicdata: database not configured")
	}
	if patientID == "" {
		return PurgeResult{}, fmt.Errorf("clinicdata: missing patientID")
	}

	tx, err := p.db.Begin(ctx)
	if err != nil {
		return PurgeResult{}, fmt.Errorf("clinicdata: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var resp PurgeResult
	resp.PatientID = patientID

	// Collect prescription ids before the rows go away; the artifact trees
	// on disk are keyed by them.
	rows, err := tx.Query(ctx, `
		SELECT id FROM prescriptions WHERE patient_id = $1
	`, patientID)
	if err != nil {
		return PurgeResult{}, fmt.Errorf("clinicdata: list prescriptions: %w", err)
	}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return PurgeResult{}, fmt.Errorf("clinicdata: scan prescription id: %w", err)
		}
		resp.PrescriptionIDs = append(resp.PrescriptionIDs, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return PurgeResult{}, fmt.Errorf("clinicdata: list prescriptions: %w", err)
	}

	resp.Deleted.PharmacyOrders, err = execRowsAffected(ctx, tx, `
		DELETE FROM pharmacy_orders
		WHERE prescription_id IN (SELECT id FROM prescriptions WHERE patient_id = $1)
	`, patientID)
	if err != nil {
		return PurgeResult{}, fmt.Errorf("clinicdata: delete pharmacy orders: %w", err)
	}

	resp.Deleted.Prescriptions, err = execRowsAffected(ctx, tx, `
		DELETE FROM prescriptions WHERE patient_id = $1
	`, patientID)
	if err != nil {
		return PurgeResult{}, fmt.Errorf("clinicdata: delete prescriptions: %w", err)
	}

	resp.Deleted.Appointments, err = execRowsAffected(ctx, tx, `
		DELETE FROM appointments WHERE patient_id = $1
	`, patientID)
	if err != nil {
		return PurgeResult{}, fmt.Errorf("clinicdata: delete appointments: %w", err)
	}

	resp.Deleted.Users, err = execRowsAffected(ctx, tx, `
		DELETE FROM users WHERE id = $1 AND role = 'patient'
	`, patientID)
	if err != nil {
		return PurgeResult{}, fmt.Errorf("clinicdata: delete user: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return PurgeResult{}, fmt.Errorf("clinicdata: commit purge: %w", err)
	}

	if p.artifacts != nil {
		for _, rxID := range resp.PrescriptionIDs {
			res, err := p.artifacts.Delete(ctx, rxID)
			if err != nil {
				p.logger.Warn("clinicdata purge: artifact delete failed", "error", err, "prescription_id", rxID, "patient_id", patientID)
				continue
			}
			resp.Deleted.ArtifactFiles += int64(res.Deleted)
			resp.ArtifactFailed = append(resp.ArtifactFailed, res.Failed...)
		}
	}

	return resp, nil
}

func execRowsAffected(ctx context.Context, tx pgx.Tx, query string, args ...any) (int64, error) {
	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
