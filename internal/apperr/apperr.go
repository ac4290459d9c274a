// Package apperr defines the error taxonomy shared by the tenant, outlet,
// request and token components. Every error returned across a component
// boundary wraps one of the sentinels below so callers can branch with
// errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

// Validation family. Every member wraps ErrValidation.
var (
	ErrValidation          = errors.New("validation failed")
	ErrIncompleteForm      = fmt.Errorf("%w: please fill all the details", ErrValidation)
	ErrFormat              = fmt.Errorf("%w: please enter a valid email address", ErrValidation)
	ErrWeakSecret          = fmt.Errorf("%w: password must be at least 8 characters long", ErrValidation)
	ErrQuantityPolicy      = fmt.Errorf("%w: cylinder count not allowed", ErrValidation)
	ErrInvalidCylinderType = fmt.Errorf("%w: cylinder type not offered", ErrValidation)
)

var (
	// ErrAuth is returned for any login failure. Unknown email and wrong
	// password are intentionally indistinguishable.
	ErrAuth = errors.New("invalid email or password")

	// ErrNotFound is returned when a record the caller relies on is missing.
	ErrNotFound = errors.New("not found")

	// ErrTenantNotFound means the session points at a tenant record that no
	// longer exists.
	ErrTenantNotFound = fmt.Errorf("%w: tenant not found, please re-authenticate", ErrNotFound)

	// ErrForbidden is returned when the session's tenant kind may not use a view.
	ErrForbidden = errors.New("forbidden")

	// ErrStore wraps any failure of the underlying document store.
	ErrStore = errors.New("store unavailable")
)

// FieldError attaches the offending field group to a validation error so it
// can be surfaced inline next to that group.
type FieldError struct {
	Err     error
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Field returns err tagged with a field group and a user facing message.
func Field(err error, field, message string) error {
	return &FieldError{Err: err, Field: field, Message: message}
}

// FieldOf returns the field group attached to err, if any.
func FieldOf(err error) string {
	var fe *FieldError
	if errors.As(err, &fe) {
		return fe.Field
	}
	return ""
}

// Store wraps a backend failure so it matches ErrStore while keeping the
// original cause reachable.
func Store(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStore, err)
}

// Retryable reports whether the caller may retry the operation unchanged.
func Retryable(err error) bool {
	return errors.Is(err, ErrStore)
}
