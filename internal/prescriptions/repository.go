package prescriptions

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Filter narrows a Find call. Zero values match everything.
type Filter struct {
	AppointmentID string
	PatientID     string
	DoctorID      string
	Status        Status
}

// Repository defines the entity-store contract for prescriptions.
type Repository interface {
	Create(ctx context.Context, req *CreatePrescriptionRequest) (*Prescription, error)
	GetByID(ctx context.Context, id string) (*Prescription, error)
	Upsert(ctx context.Context, p *Prescription) error
	Find(ctx context.Context, filter Filter) ([]*Prescription, error)
}

// InMemoryRepository is a Repository backed by an in-memory map.
type InMemoryRepository struct {
	mu            sync.RWMutex
	prescriptions map[string]*Prescription
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		prescriptions: make(map[string]*Prescription),
	}
}

// Create creates a new draft prescription in memory
func (r *InMemoryRepository) Create(ctx context.Context, req *CreatePrescriptionRequest) (*Prescription, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &Prescription{
		ID:            uuid.New().String(),
		AppointmentID: req.AppointmentID,
		PatientID:     req.PatientID,
		DoctorID:      req.DoctorID,
		Diagnosis:     req.Diagnosis,
		Medications:   req.Medications,
		Tests:         req.Tests,
		Notes:         req.Notes,
		WhiteboardPNG: req.WhiteboardPNG,
		Status:        StatusDraft,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	r.mu.Lock()
	r.prescriptions[p.ID] = p
	r.mu.Unlock()

	return p, nil
}

// GetByID retrieves a prescription by ID
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Prescription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.prescriptions[id]
	if !ok {
		return nil, ErrPrescriptionNotFound
	}

	copied := *p
	return &copied, nil
}

// Upsert stores the prescription, replacing any existing record with the same
// ID. Last write wins; there is no version precondition.
func (r *InMemoryRepository) Upsert(ctx context.Context, p *Prescription) error {
	if p.ID == "" {
		return ErrPrescriptionNotFound
	}

	copied := *p
	r.mu.Lock()
	r.prescriptions[p.ID] = &copied
	r.mu.Unlock()
	return nil
}

// Find returns prescriptions matching the filter, newest first.
func (r *InMemoryRepository) Find(ctx context.Context, filter Filter) ([]*Prescription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Prescription, 0)
	for _, p := range r.prescriptions {
		if filter.AppointmentID != "" && p.AppointmentID != filter.AppointmentID {
			continue
		}
		if filter.PatientID != "" && p.PatientID != filter.PatientID {
			continue
		}
		if filter.DoctorID != "" && p.DoctorID != filter.DoctorID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		copied := *p
		out = append(out, &copied)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
