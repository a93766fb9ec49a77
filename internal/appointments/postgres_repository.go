package appointments

import (
	"context"
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

// PostgresRepository stores appointments in the relational database.
type PostgresRepository struct {
	pool db
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// NewPostgresRepositoryWithDB allows injecting mocks for tests.
func NewPostgresRepositoryWithDB(pool db) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new row.
func (r *PostgresRepository) Create(ctx context.Context, req *CreateAppointmentRequest) (*Appointment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New().String()
	query := `
		INSERT INTO appointments (id, patient_id, doctor_id, scheduled_for, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	var createdAt, updatedAt time.Time
	if err := r.pool.QueryRow(ctx, query,
		id,
		req.PatientID,
		req.DoctorID,
		req.ScheduledFor,
		req.Reason,
		string(StatusScheduled),
	).Scan(&createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("appointments: insert failed: %w", err)
	}

	return &Appointment{
		ID:           id,
		PatientID:    req.PatientID,
		DoctorID:     req.DoctorID,
		ScheduledFor: req.ScheduledFor,
		Reason:       req.Reason,
		Status:       StatusScheduled,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}, nil
}

const apptColumns = `
	id, patient_id, doctor_id, scheduled_for, reason, status,
	checked_in_at, started_at, completed_at, cancelled_at, created_at, updated_at
`

// GetByID fetches one appointment.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Appointment, error) {
	query := `SELECT ` + apptColumns + ` FROM appointments WHERE id = $1`
	appt, err := scanAppointment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("appointments: select failed: %w", err)
	}
	return appt, nil
}

// Upsert writes the full appointment row, inserting or replacing by id.
func (r *PostgresRepository) Upsert(ctx context.Context, appt *Appointment) error {
	query := `
		INSERT INTO appointments (` + apptColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			scheduled_for = EXCLUDED.scheduled_for,
			reason = EXCLUDED.reason,
			status = EXCLUDED.status,
			checked_in_at = EXCLUDED.checked_in_at,
			started_at = EXCLUDED.started_at,
			completed_at = EXCLUDED.completed_at,
			cancelled_at = EXCLUDED.cancelled_at,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := r.pool.Exec(ctx, query,
		appt.ID,
		appt.PatientID,
		appt.DoctorID,
		appt.ScheduledFor,
		appt.Reason,
		string(appt.Status),
		appt.CheckedInAt,
		appt.StartedAt,
		appt.CompletedAt,
		appt.CancelledAt,
		appt.CreatedAt,
		appt.UpdatedAt,
	); err != nil {
		return fmt.Errorf("appointments: upsert failed: %w", err)
	}
	return nil
}

// Find returns appointments matching the filter, newest first.
func (r *PostgresRepository) Find(ctx context.Context, filter Filter) ([]*Appointment, error) {
	query := `SELECT ` + apptColumns + ` FROM appointments WHERE 1=1`
	args := []any{}
	idx := 1
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
		return nil, fmt.Errorf("appointments: find failed: %w", err)
	}
	defer rows.Close()

	out := make([]*Appointment, 0)
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("appointments: scan failed: %w", err)
		}
		out = append(out, appt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: rows failed: %w", err)
	}
	return out, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var appt Appointment
	var status string
	if err := row.Scan(
		&appt.ID,
		&appt.PatientID,
		&appt.DoctorID,
		&appt.ScheduledFor,
		&appt.Reason,
		&status,
		&appt.CheckedInAt,
		&appt.StartedAt,
		&appt.CompletedAt,
		&appt.CancelledAt,
		&appt.CreatedAt,
		&appt.UpdatedAt,
	); err != nil {
		return nil, err
	}
	appt.Status = Status(status)
	return &appt, nil
}
