package pharmacy

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Filter narrows a Find call. Zero values match everything.
type Filter struct {
	PrescriptionID string
	PatientID      string
	Status         Status
	CustomerStatus CustomerStatus
}

// Repository defines the entity-store contract for pharmacy orders.
type Repository interface {
	Create(ctx context.Context, req *CreateOrderRequest) (*Order, error)
	GetByID(ctx context.Context, id string) (*Order, error)
	Upsert(ctx context.Context, o *Order) error
	Find(ctx context.Context, filter Filter) ([]*Order, error)
}

// InMemoryRepository is a Repository backed by an in-memory map.
type InMemoryRepository struct {
	mu     sync.RWMutex
	orders map[string]*Order
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		orders: make(map[string]*Order),
	}
}

// Create opens a new order in memory
func (r *InMemoryRepository) Create(ctx context.Context, req *CreateOrderRequest) (*Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	o := &Order{
		ID:             uuid.New().String(),
		PrescriptionID: req.PrescriptionID,
		PatientID:      req.PatientID,
		Status:         StatusPending,
		CustomerStatus: CustomerWaiting,
		Items:          cloneItems(req.Items),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	r.mu.Lock()
	r.orders[o.ID] = o
	r.mu.Unlock()

	copied := cloneOrder(o)
	return copied, nil
}

// GetByID retrieves an order by ID
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

// Upsert stores the order, replacing any existing record with the same ID.
// Last write wins; there is no version precondition.
func (r *InMemoryRepository) Upsert(ctx context.Context, o *Order) error {
	if o.ID == "" {
		return ErrOrderNotFound
	}

	copied := cloneOrder(o)
	r.mu.Lock()
	r.orders[o.ID] = copied
	r.mu.Unlock()
	return nil
}

// Find returns orders matching the filter, newest first.
func (r *InMemoryRepository) Find(ctx context.Context, filter Filter) ([]*Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Order, 0)
	for _, o := range r.orders {
		if filter.PrescriptionID != "" && o.PrescriptionID != filter.PrescriptionID {
			continue
		}
		if filter.PatientID != "" && o.PatientID != filter.PatientID {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.CustomerStatus != "" && o.CustomerStatus != filter.CustomerStatus {
			continue
		}
		out = append(out, cloneOrder(o))
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func cloneOrder(o *Order) *Order {
	copied := *o
	copied.Items = cloneItems(o.Items)
	return &copied
}

func cloneItems(items []OrderItem) []OrderItem {
	out := make([]OrderItem, len(items))
	copy(out, items)
	return out
}
