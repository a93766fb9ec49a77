package render

import (
	"errors"
	"fmt"
)

var (
	// ErrPoolClosed is returned when rendering after Close.
	ErrPoolClosed = errors.New("render: pool is closed")

	// ErrNilView is returned when no view is supplied.
	ErrNilView = errors.New("render: nil prescription view")
)

// RenderError wraps a failure from the rendering engine. Render failures are
// surfaced to the caller without retry: they are typically malformed input,
// not transient infrastructure faults.
type RenderError struct {
	PrescriptionID string
	Err            error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render: prescription %s: %v", e.PrescriptionID, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
