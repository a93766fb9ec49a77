package pharmacy

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

// PostgresRepository stores pharmacy orders in the relational database.
// Medication lines are a JSONB document on the row; they are always written
// and read as a whole.
type PostgresRepository struct {
	pool db
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("pharmacy: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// NewPostgresRepositoryWithDB allows injecting mocks for tests.
func NewPostgresRepositoryWithDB(pool db) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create opens a new order row.
func (r *PostgresRepository) Create(ctx context.Context, req *CreateOrderRequest) (*Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	items, err := json.Marshal(req.Items)
	if err != nil {
		return nil, fmt.Errorf("pharmacy: marshal items: %w", err)
	}

	id := uuid.New().String()
	query := `
		INSERT INTO pharmacy_orders (id, prescription_id, patient_id, status, customer_status, items)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	var createdAt, updatedAt time.Time
	if err := r.pool.QueryRow(ctx, query,
		id,
		req.PrescriptionID,
		req.PatientID,
		string(StatusPending),
		string(CustomerWaiting),
		items,
	).Scan(&createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("pharmacy: insert failed: %w", err)
	}

	return &Order{
		ID:             id,
		PrescriptionID: req.PrescriptionID,
		PatientID:      req.PatientID,
		Status:         StatusPending,
		CustomerStatus: CustomerWaiting,
		Items:          cloneItems(req.Items),
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}, nil
}

const orderColumns = `
	id, prescription_id, patient_id, status, customer_status, items,
	ready_at, dispensed_at, rejected_at,
	customer_notified_at, customer_collected_at, customer_rejected_at, customer_expired_at,
	customer_rejection_reason, cancelled_at, created_at, updated_at
`

// GetByID fetches one order.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM pharmacy_orders WHERE id = $1`
	o, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("pharmacy: select failed: %w", err)
	}
	return o, nil
}

// Upsert writes the full order row, inserting or replacing by id.
func (r *PostgresRepository) Upsert(ctx context.Context, o *Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("pharmacy: marshal items: %w", err)
	}

	query := `
		INSERT INTO pharmacy_orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			customer_status = EXCLUDED.customer_status,
			items = EXCLUDED.items,
			ready_at = EXCLUDED.ready_at,
			dispensed_at = EXCLUDED.dispensed_at,
			rejected_at = EXCLUDED.rejected_at,
			customer_notified_at = EXCLUDED.customer_notified_at,
			customer_collected_at = EXCLUDED.customer_collected_at,
			customer_rejected_at = EXCLUDED.customer_rejected_at,
			customer_expired_at = EXCLUDED.customer_expired_at,
			customer_rejection_reason = EXCLUDED.customer_rejection_reason,
			cancelled_at = EXCLUDED.cancelled_at,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := r.pool.Exec(ctx, query,
		o.ID,
		o.PrescriptionID,
		o.PatientID,
		string(o.Status),
		string(o.CustomerStatus),
		items,
		o.ReadyAt,
		o.DispensedAt,
		o.RejectedAt,
		o.CustomerNotifiedAt,
		o.CustomerCollectedAt,
		o.CustomerRejectedAt,
		o.CustomerExpiredAt,
		o.CustomerRejectionReason,
		o.CancelledAt,
		o.CreatedAt,
		o.UpdatedAt,
	); err != nil {
		return fmt.Errorf("pharmacy: upsert failed: %w", err)
	}
	return nil
}

// Find returns orders matching the filter, newest first.
func (r *PostgresRepository) Find(ctx context.Context, filter Filter) ([]*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM pharmacy_orders WHERE 1=1`
	args := []any{}
	idx := 1
	if filter.PrescriptionID != "" {
		query += fmt.Sprintf(" AND prescription_id = $%d", idx)
		args = append(args, filter.PrescriptionID)
		idx++
	}
	if filter.PatientID != "" {
		query += fmt.Sprintf(" AND patient_id = $%d", idx)
		args = append(args, filter.PatientID)
		idx++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, string(filter.Status))
		idx++
	}
	if filter.CustomerStatus != "" {
		query += fmt.Sprintf(" AND customer_status = $%d", idx)
		args = append(args, string(filter.CustomerStatus))
		idx++
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pharmacy: find failed: %w", err)
	}
	defer rows.Close()

	out := make([]*Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("pharmacy: scan failed: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pharmacy: rows failed: %w", err)
	}
	return out, nil
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var status, customerStatus string
	var items []byte
	if err := row.Scan(
		&o.ID,
		&o.PrescriptionID,
		&o.PatientID,
		&status,
		&customerStatus,
		&items,
		&o.ReadyAt,
		&o.DispensedAt,
		&o.RejectedAt,
		&o.CustomerNotifiedAt,
		&o.CustomerCollectedAt,
		&o.CustomerRejectedAt,
		&o.CustomerExpiredAt,
		&o.CustomerRejectionReason,
		&o.CancelledAt,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &o.Items); err != nil {
			return nil, fmt.Errorf("unmarshal items: %w", err)
		}
	}
	o.Status = Status(status)
	o.CustomerStatus = CustomerStatus(customerStatus)
	return &o, nil
}
