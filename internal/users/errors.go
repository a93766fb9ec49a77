package users

import "errors"

var (
	// ErrMissingEmail is returned when the email is absent
	ErrMissingEmail = errors.New("email is required")

	// ErrMissingName is returned when the name is absent
	ErrMissingName = errors.New("name is required")

	// ErrInvalidRole is returned for a role outside the enumeration
	ErrInvalidRole = errors.New("unknown user role")

	// ErrMultipleVariants is returned when more than one role payload is set
	ErrMultipleVariants = errors.New("user may carry at most one role payload")

	// ErrVariantRoleMismatch is returned when the payload does not match the role tag
	ErrVariantRoleMismatch = errors.New("role payload does not match role")

	// ErrEmailImmutable is returned when an update tries to change the email
	ErrEmailImmutable = errors.New("email cannot be changed after creation")

	// ErrUserNotFound is returned when a user is not found
	ErrUserNotFound = errors.New("user not found")
)
