package appointments

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Filter narrows a Find call. Zero values match everything.
type Filter struct {
	PatientID string
	DoctorID  string
	Status    Status
}

// Repository defines the entity-store contract for appointments.
type Repository interface {
	Create(ctx context.Context, req *CreateAppointmentRequest) (*Appointment, error)
	GetByID(ctx context.Context, id string) (*Appointment, error)
	Upsert(ctx context.Context, appt *Appointment) error
	Find(ctx context.Context, filter Filter) ([]*Appointment, error)
}

// InMemoryRepository is a Repository backed by an in-memory map.
type InMemoryRepository struct {
	mu    sync.RWMutex
	appts map[string]*Appointment
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		appts: make(map[string]*Appointment),
	}
}

// Create creates a new appointment in memory
func (r *InMemoryRepository) Create(ctx context.Context, req *CreateAppointmentRequest) (*Appointment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	appt := &Appointment{
		ID:           uuid.New().String(),
		PatientID:    req.PatientID,
		DoctorID:     req.DoctorID,
		ScheduledFor: req.ScheduledFor,
		Reason:       req.Reason,
		Status:       StatusScheduled,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	r.mu.Lock()
	r.appts[appt.ID] = appt
	r.mu.Unlock()

	return appt, nil
}

// GetByID retrieves an appointment by ID
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	appt, ok := r.appts[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}

	copied := *appt
	return &copied, nil
}

// Upsert stores the appointment, replacing any existing record with the same ID.
// Last write wins; there is no version precondition.
func (r *InMemoryRepository) Upsert(ctx context.Context, appt *Appointment) error {
	if appt.ID == "" {
		return ErrAppointmentNotFound
	}

	copied := *appt
	r.mu.Lock()
	r.appts[appt.ID] = &copied
	r.mu.Unlock()
	return nil
}

// Find returns appointments matching the filter, newest first.
func (r *InMemoryRepository) Find(ctx context.Context, filter Filter) ([]*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Appointment, 0)
	for _, appt := range r.appts {
		if filter.PatientID != "" && appt.PatientID != filter.PatientID {
			continue
		}
		if filter.DoctorID != "" && appt.DoctorID != filter.DoctorID {
			continue
		}
		if filter.Status != "" && appt.Status != filter.Status {
			continue
		}
		copied := *appt
		out = append(out, &copied)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
