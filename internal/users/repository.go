package users

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Filter narrows a Find call. Zero values match everything.
type Filter struct {
	Role Role
}

// Repository defines the entity-store contract for users.
type Repository interface {
	Create(ctx context.Context, u *User) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Upsert(ctx context.Context, u *User) error
	Find(ctx context.Context, filter Filter) ([]*User, error)
	Delete(ctx context.Context, id string) error
}

// InMemoryRepository is a Repository backed by an in-memory map.
type InMemoryRepository struct {
	mu    sync.RWMutex
	users map[string]*User
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		users: make(map[string]*User),
	}
}

// Create stores a new user, assigning an id when absent.
func (r *InMemoryRepository) Create(ctx context.Context, u *User) (*User, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	copied := *u
	if copied.ID == "" {
		copied.ID = uuid.New().String()
	}
	copied.CreatedAt = now
	copied.UpdatedAt = now

	r.mu.Lock()
	r.users[copied.ID] = &copied
	r.mu.Unlock()

	out := copied
	return &out, nil
}

// GetByID retrieves a user by ID
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}

	copied := *u
	return &copied, nil
}

// Upsert replaces the stored user. Email is immutable: a mismatch against the
// existing record is rejected before any write.
func (r *InMemoryRepository) Upsert(ctx context.Context, u *User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	if u.ID == "" {
		return ErrUserNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.users[u.ID]; ok && existing.Email != u.Email {
		return ErrEmailImmutable
	}

	copied := *u
	r.users[u.ID] = &copied
	return nil
}

// Find returns users matching the filter, newest first.
func (r *InMemoryRepository) Find(ctx context.Context, filter Filter) ([]*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*User, 0)
	for _, u := range r.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		copied := *u
		out = append(out, &copied)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Delete removes a user record.
func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}
