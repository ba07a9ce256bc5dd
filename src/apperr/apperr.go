// Package apperr defines the error taxonomy shared by the store, the
// access policy and the HTTP handlers. Callers distinguish cases with
// errors.Is / errors.As; nothing in the application fails silently.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals an operation on a record or user id that is no
	// longer present.
	ErrNotFound = errors.New("not found")

	// ErrForbidden signals an access policy violation.
	ErrForbidden = errors.New("forbidden")

	// ErrPendingApproval signals a sign-in by an account that has not been
	// approved yet.
	ErrPendingApproval = errors.New("account pending approval")

	// ErrInvalidCredentials signals a sign-in with a wrong email or password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrSelfRemoval signals an admin trying to remove their own account.
	ErrSelfRemoval = errors.New("admins cannot remove their own account")
)

// ValidationError reports rejected caller input. It is always recoverable
// and surfaced to the user verbatim.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validation builds a ValidationError for the given field.
func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
