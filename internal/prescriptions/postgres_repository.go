package prescriptions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type db interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// PostgresRepository stores prescriptions in the relational database.
// Medication and test lines are kept as JSONB documents on the row.
type PostgresRepository struct {
	pool db
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("prescriptions: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// NewPostgresRepositoryWithDB allows injecting mocks for tests.
func NewPostgresRepositoryWithDB(pool db) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new draft row.
func (r *PostgresRepository) Create(ctx context.Context, req *CreatePrescriptionRequest) (*Prescription, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	meds, err := json.Marshal(req.Medications)
	if err != nil {
		return nil, fmt.Errorf("prescriptions: marshal medications: %w", err)
	}
	tests, err := json.Marshal(req.Tests)
	if err != nil {
		return nil, fmt.Errorf("prescriptions: marshal tests: %w", err)
	}

	id := uuid.New().String()
	query := `
		INSERT INTO prescriptions
			(id, appointment_id, patient_id, doctor_id, diagnosis, medications, tests, notes, whiteboard_png, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`
	var createdAt, updatedAt time.Time
	if err := r.pool.QueryRow(ctx, query,
		id,
		req.AppointmentID,
		req.PatientID,
		req.DoctorID,
		req.Diagnosis,
		meds,
		tests,
		req.Notes,
		req.WhiteboardPNG,
		string(StatusDraft),
	).Scan(&createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("prescriptions: insert failed: %w", err)
	}

	return &Prescription{
		ID:            id,
		AppointmentID: req.AppointmentID,
		PatientID:     req.PatientID,
		DoctorID:      req.DoctorID,
		Diagnosis:     req.Diagnosis,
		Medications:   req.Medications,
		Tests:         req.Tests,
		Notes:         req.Notes,
		WhiteboardPNG: req.WhiteboardPNG,
		Status:        StatusDraft,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}, nil
}

const rxColumns = `
	id, appointment_id, patient_id, doctor_id, diagnosis, medications, tests, notes,
	whiteboard_png, status, sent_to_pharmacy_at, fulfilled_at, cancelled_at, pdf_path,
	created_at, updated_at
`

// GetByID fetches one prescription.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Prescription, error) {
	query := `SELECT ` + rxColumns + ` FROM prescriptions WHERE id = $1`
	p, err := scanPrescription(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPrescriptionNotFound
		}
		return nil, fmt.Errorf("prescriptions: select failed: %w", err)
	}
	return p, nil
}

// Upsert writes the full prescription row, inserting or replacing by id.
func (r *PostgresRepository) Upsert(ctx context.Context, p *Prescription) error {
	meds, err := json.Marshal(p.Medications)
	if err != nil {
		return fmt.Errorf("prescriptions: marshal medications: %w", err)
	}
	tests, err := json.Marshal(p.Tests)
	if err != nil {
		return fmt.Errorf("prescriptions: marshal tests: %w", err)
	}

	query := `
		INSERT INTO prescriptions (` + rxColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id) DO UPDATE SET
			diagnosis = EXCLUDED.diagnosis,
			medications = EXCLUDED.medications,
			tests = EXCLUDED.tests,
			notes = EXCLUDED.notes,
			whiteboard_png = EXCLUDED.whiteboard_png,
			status = EXCLUDED.status,
			sent_to_pharmacy_at = EXCLUDED.sent_to_pharmacy_at,
			fulfilled_at = EXCLUDED.fulfilled_at,
			cancelled_at = EXCLUDED.cancelled_at,
			pdf_path = EXCLUDED.pdf_path,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := r.pool.Exec(ctx, query,
		p.ID,
		p.AppointmentID,
		p.PatientID,
		p.DoctorID,
		p.Diagnosis,
		meds,
		tests,
		p.Notes,
		p.WhiteboardPNG,
		string(p.Status),
		p.SentToPharmacyAt,
		p.FulfilledAt,
		p.CancelledAt,
		p.PDFPath,
		p.CreatedAt,
		p.UpdatedAt,
	); err != nil {
		return fmt.Errorf("prescriptions: upsert failed: %w", err)
	}
	return nil
}

// Find returns prescriptions matching the filter, newest first.
func (r *PostgresRepository) Find(ctx context.Context, filter Filter) ([]*Prescription, error) {
	query := `SELECT ` + rxColumns + ` FROM prescriptions WHERE 1=1`
	args := []any{}
	idx := 1
	if filter.AppointmentID != "" {
		query += fmt.Sprintf(" AND appointment_id = $%d", idx)
		args = append(args, filter.AppointmentID)
		idx++
	}
	if filter.PatientID != "" {
		query += fmt.Sprintf(" AND patient_id = $%d", idx)
		args = append(args, filter.PatientID)
		idx++
	}
	if filter.DoctorID != "" {
		query += fmt.Sprintf(" AND doctor_id = $%d", idx)
		args = append(args, filter.DoctorID)
		idx++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, string(filter.Status))
		idx++
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("prescriptions: find failed: %w", err)
	}
	defer rows.Close()

	out := make([]*Prescription, 0)
	for rows.Next() {
		p, err := scanPrescription(rows)
		if err != nil {
			return nil, fmt.Errorf("prescriptions: scan failed: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("prescriptions: rows failed: %w", err)
	}
	return out, nil
}

func scanPrescription(row pgx.Row) (*Prescription, error) {
	var p Prescription
	var status string
	var meds, tests []byte
	if err := row.Scan(
		&p.ID,
		&p.AppointmentID,
		&p.PatientID,
		&p.DoctorID,
		&p.Diagnosis,
		&meds,
		&tests,
		&p.Notes,
		&p.WhiteboardPNG,
		&status,
		&p.SentToPharmacyAt,
		&p.FulfilledAt,
		&p.CancelledAt,
		&p.PDFPath,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(meds) > 0 {
		if err := json.Unmarshal(meds, &p.Medications); err != nil {
			return nil, fmt.Errorf("unmarshal medications: %w", err)
		}
	}
	if len(tests) > 0 {
		if err := json.Unmarshal(tests, &p.Tests); err != nil {
			return nil, fmt.Errorf("unmarshal tests: %w", err)
		}
	}
	p.Status = Status(status)
	return &p, nil
}
