package pharmacy

import "errors"

var (
	// ErrMissingPrescription is returned when the prescription id is absent
	ErrMissingPrescription = errors.New("prescription_id is required")

	// ErrMissingPatient is returned when the patient id is absent
	ErrMissingPatient = errors.New("patient_id is required")

	// ErrNoItems is returned when an order has no medication lines
	ErrNoItems = errors.New("order needs at least one medication line")

	// ErrInvalidStatus is returned for a status outside the order enumeration
	ErrInvalidStatus = errors.New("unknown order status")

	// ErrInvalidCustomerStatus is returned for a customer status outside the enumeration
	ErrInvalidCustomerStatus = errors.New("unknown customer status")

	// ErrTransitionNotAllowed is returned for a status change the transition table forbids
	ErrTransitionNotAllowed = errors.New("order status transition not allowed")

	// ErrReasonRequired is returned when marking customer-rejected without a reason
	ErrReasonRequired = errors.New("rejection reason is required")

	// ErrLineIndexOutOfRange is returned when supplying a medication line that does not exist
	ErrLineIndexOutOfRange = errors.New("medication line index out of range")

	// ErrOrderNotFound is returned when an order is not found
	ErrOrderNotFound = errors.New("pharmacy order not found")
)
