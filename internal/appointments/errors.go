package appointments

import "errors"

var (
	// ErrMissingPatient is returned when the patient id is absent
	ErrMissingPatient = errors.New("patient_id is required")

	// ErrMissingDoctor is returned when the doctor id is absent
	ErrMissingDoctor = errors.New("doctor_id is required")

	// ErrMissingSchedule is returned when no scheduled time is given
	ErrMissingSchedule = errors.New("scheduled_for is required")

	// ErrInvalidStatus is returned for a status outside the appointment enumeration
	ErrInvalidStatus = errors.New("unknown appointment status")

	// ErrTransitionNotAllowed is returned for a status change the transition table forbids
	ErrTransitionNotAllowed = errors.New("appointment status transition not allowed")

	// ErrAppointmentNotFound is returned when an appointment is not found
	ErrAppointmentNotFound = errors.New("appointment not found")
)
