package artifacts

import "errors"

var (
	// ErrInvalidClass is returned for a class outside images/pdfs/whiteboards
	ErrInvalidClass = errors.New("unknown artifact class")

	// ErrMissingPrescriptionID is returned when no prescription id is given
	ErrMissingPrescriptionID = errors.New("prescription id is required")

	// ErrEmptyPayload is returned when saving zero bytes
	ErrEmptyPayload = errors.New("artifact payload is empty")
)
