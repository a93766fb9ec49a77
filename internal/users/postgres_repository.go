package users

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

// PostgresRepository stores users in the relational database. The role payload
// is a single JSONB column keyed by the role tag.
type PostgresRepository struct {
	pool db
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("users: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// NewPostgresRepositoryWithDB allows injecting mocks for tests.
func NewPostgresRepositoryWithDB(pool db) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new row.
func (r *PostgresRepository) Create(ctx context.Context, u *User) (*User, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}

	copied := *u
	if copied.ID == "" {
		copied.ID = uuid.New().String()
	}

	profile, err := marshalProfile(&copied)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO users (id, email, name, phone, role, profile)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		copied.ID,
		copied.Email,
		copied.Name,
		copied.Phone,
		string(copied.Role),
		profile,
	).Scan(&copied.CreatedAt, &copied.UpdatedAt); err != nil {
		return nil, fmt.Errorf("users: insert failed: %w", err)
	}
	return &copied, nil
}

// GetByID fetches one user.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT id, email, name, phone, role, profile, created_at, updated_at FROM users WHERE id = $1`
	u, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("users: select failed: %w", err)
	}
	return u, nil
}

// Upsert updates a user row in place. The email column is intentionally left
// out of the update set, keeping identity immutable at the storage layer too.
func (r *PostgresRepository) Upsert(ctx context.Context, u *User) error {
	if err := u.Validate(); err != nil {
		return err
	}

	profile, err := marshalProfile(u)
	if err != nil {
		return err
	}

	query := `
		UPDATE users SET
			name = $2,
			phone = $3,
			role = $4,
			profile = $5,
			updated_at = $6
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		u.ID,
		u.Name,
		u.Phone,
		string(u.Role),
		profile,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("users: update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Find returns users matching the filter, newest first.
func (r *PostgresRepository) Find(ctx context.Context, filter Filter) ([]*User, error) {
	query := `SELECT id, email, name, phone, role, profile, created_at, updated_at FROM users`
	args := []any{}
	if filter.Role != "" {
		query += ` WHERE role = $1`
		args = append(args, string(filter.Role))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("users: find failed: %w", err)
	}
	defer rows.Close()

	out := make([]*User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("users: scan failed: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("users: rows failed: %w", err)
	}
	return out, nil
}

// Delete removes a user row.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("users: delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func marshalProfile(u *User) ([]byte, error) {
	var payload any
	switch u.Role {
	case RoleDoctor:
		payload = u.Doctor
	case RolePatient:
		payload = u.Patient
	case RolePharmacy:
		payload = u.Pharmacy
	case RoleReceptionist:
		payload = u.Receptionist
	case RoleAdmin:
		payload = u.Admin
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("users: marshal profile: %w", err)
	}
	return data, nil
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	var role string
	var profile []byte
	if err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.Phone,
		&role,
		&profile,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	u.Role = Role(role)

	if len(profile) > 0 && string(profile) != "null" {
		var err error
		switch u.Role {
		case RoleDoctor:
			u.Doctor = &DoctorProfile{}
			err = json.Unmarshal(profile, u.Doctor)
		case RolePatient:
			u.Patient = &PatientProfile{}
			err = json.Unmarshal(profile, u.Patient)
		case RolePharmacy:
			u.Pharmacy = &PharmacyProfile{}
			err = json.Unmarshal(profile, u.Pharmacy)
		case RoleReceptionist:
			u.Receptionist = &ReceptionistProfile{}
			err = json.Unmarshal(profile, u.Receptionist)
		case RoleAdmin:
			u.Admin = &AdminProfile{}
			err = json.Unmarshal(profile, u.Admin)
		}
		if err != nil {
			return nil, fmt.Errorf("unmarshal profile: %w", err)
		}
	}
	return &u, nil
}
