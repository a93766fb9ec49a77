package prescriptions

import "errors"

var (
	// ErrMissingAppointment is returned when the appointment id is absent
	ErrMissingAppointment = errors.New("appointment_id is required")

	// ErrMissingPatient is returned when the patient id is absent
	ErrMissingPatient = errors.New("patient_id is required")

	// ErrMissingDoctor is returned when the doctor id is absent
	ErrMissingDoctor = errors.New("doctor_id is required")

	// ErrEmptyContent is returned when a prescription has no clinical content at all
	ErrEmptyContent = errors.New("prescription needs a diagnosis, medication, or test")

	// ErrNotEditable is returned when editing a prescription past draft
	ErrNotEditable = errors.New("prescription content is editable only while draft")

	// ErrInvalidStatus is returned for a status outside the prescription enumeration
	ErrInvalidStatus = errors.New("unknown prescription status")

	// ErrTransitionNotAllowed is returned for a status change the transition table forbids
	ErrTransitionNotAllowed = errors.New("prescription status transition not allowed")

	// ErrPrescriptionNotFound is returned when a prescription is not found
	ErrPrescriptionNotFound = errors.New("prescription not found")
)
