package prescriptions

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a prescription.
type Status string

const (
	StatusDraft          Status = "draft"
	StatusSubmitted      Status = "submitted"
	StatusSentToPharmacy Status = "sent-to-pharmacy"
	StatusFulfilled      Status = "fulfilled"
	StatusCancelled      Status = "cancelled"
)

// MedicationLine is one prescribed medication.
type MedicationLine struct {
	Name         string `json:"name"`
	Dosage       string `json:"dosage"`
	Frequency    string `json:"frequency"`
	Duration     string `json:"duration,omitempty"`
	Quantity     int    `json:"quantity"`
	Instructions string `json:"instructions,omitempty"`
}

// TestLine is one ordered lab test.
type TestLine struct {
	Name         string `json:"name"`
	Instructions string `json:"instructions,omitempty"`
}

// Prescription is the clinical content authored against an appointment.
type Prescription struct {
	ID            string           `json:"id"`
	AppointmentID string           `json:"appointment_id"`
	PatientID     string           `json:"patient_id"`
	DoctorID      string           `json:"doctor_id"`
	Diagnosis     string           `json:"diagnosis"`
	Medications   []MedicationLine `json:"medications"`
	Tests         []TestLine       `json:"tests,omitempty"`
	Notes         string           `json:"notes,omitempty"`

	// WhiteboardPNG holds an optional base64-encoded drawing captured during
	// the consult, embedded into the rendered PDF.
	WhiteboardPNG string `json:"whiteboard_png,omitempty"`

	Status           Status     `json:"status"`
	SentToPharmacyAt *time.Time `json:"sent_to_pharmacy_at,omitempty"`
	FulfilledAt      *time.Time `json:"fulfilled_at,omitempty"`
	CancelledAt      *time.Time `json:"cancelled_at,omitempty"`

	// PDFPath is the relative artifact path of the last rendered PDF.
	PDFPath string `json:"pdf_path,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreatePrescriptionRequest is the request body for authoring a prescription.
type CreatePrescriptionRequest struct {
	AppointmentID string           `json:"appointment_id"`
	PatientID     string           `json:"patient_id"`
	DoctorID      string           `json:"doctor_id"`
	Diagnosis     string           `json:"diagnosis"`
	Medications   []MedicationLine `json:"medications"`
	Tests         []TestLine       `json:"tests"`
	Notes         string           `json:"notes"`
	WhiteboardPNG string           `json:"whiteboard_png"`
}

// Validate validates the create prescription request
func (r *CreatePrescriptionRequest) Validate() error {
	if strings.TrimSpace(r.AppointmentID) == "" {
		return ErrMissingAppointment
	}
	if strings.TrimSpace(r.PatientID) == "" {
		return ErrMissingPatient
	}
	if strings.TrimSpace(r.DoctorID) == "" {
		return ErrMissingDoctor
	}
	if strings.TrimSpace(r.Diagnosis) == "" && len(r.Medications) == 0 && len(r.Tests) == 0 {
		return ErrEmptyContent
	}
	return nil
}

// UpdateContentRequest carries an edit to the clinical content of a draft.
type UpdateContentRequest struct {
	Diagnosis     string           `json:"diagnosis"`
	Medications   []MedicationLine `json:"medications"`
	Tests         []TestLine       `json:"tests"`
	Notes         string           `json:"notes"`
	WhiteboardPNG string           `json:"whiteboard_png"`
}

// ApplyContent writes the edit onto the prescription. Content is editable only
// while the prescription is a draft.
func (p *Prescription) ApplyContent(req *UpdateContentRequest, now time.Time) error {
	if p.Status != StatusDraft {
		return ErrNotEditable
	}
	p.Diagnosis = req.Diagnosis
	p.Medications = req.Medications
	p.Tests = req.Tests
	p.Notes = req.Notes
	p.WhiteboardPNG = req.WhiteboardPNG
	p.UpdatedAt = now
	return nil
}
