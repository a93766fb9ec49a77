package appointments

import (
	"strings"
	"time"
)

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusConfirmed  Status = "confirmed"
	StatusCheckedIn  Status = "checked-in"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusNoShow     Status = "no-show"
)

// Appointment is a scheduling record for a patient visit.
type Appointment struct {
	ID           string     `json:"id"`
	PatientID    string     `json:"patient_id"`
	DoctorID     string     `json:"doctor_id"`
	ScheduledFor time.Time  `json:"scheduled_for"`
	Reason       string     `json:"reason,omitempty"`
	Status       Status     `json:"status"`
	CheckedInAt  *time.Time `json:"checked_in_at,omitempty"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// CreateAppointmentRequest is the request body for booking an appointment.
type CreateAppointmentRequest struct {
	PatientID    string    `json:"patient_id"`
	DoctorID     string    `json:"doctor_id"`
	ScheduledFor time.Time `json:"scheduled_for"`
	Reason       string    `json:"reason"`
}

// Validate validates the create appointment request
func (r *CreateAppointmentRequest) Validate() error {
	if strings.TrimSpace(r.PatientID) == "" {
		return ErrMissingPatient
	}
	if strings.TrimSpace(r.DoctorID) == "" {
		return ErrMissingDoctor
	}
	if r.ScheduledFor.IsZero() {
		return ErrMissingSchedule
	}
	return nil
}
