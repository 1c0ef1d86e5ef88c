package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("access forbidden")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrNumberingExhausted = errors.New("numero_portabilite generation exhausted")
)

var (
	ErrPrincipalNotFound   = fmt.Errorf("principal %w", ErrNotFound)
	ErrClientNotFound      = fmt.Errorf("client %w", ErrNotFound)
	ErrTicketNotFound      = fmt.Errorf("ticket %w", ErrNotFound)
	ErrPortabiliteNotFound = fmt.Errorf("portabilite %w", ErrNotFound)
	ErrEchangeNotFound     = fmt.Errorf("echange %w", ErrNotFound)

	ErrPrincipalExists  = fmt.Errorf("principal already exists: %w", ErrConflict)
	ErrClientReferenced = fmt.Errorf("client is referenced by tickets or portabilites: %w", ErrConflict)
	// ErrDuplicateNumero is returned by repositories when the unique index on
	// numero_portabilite rejects an insert.
	ErrDuplicateNumero = fmt.Errorf("numero_portabilite already issued: %w", ErrConflict)
)

// ValidationError describes a rejected input field. It matches ErrValidation
// under errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Reason
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Required returns a ValidationError for a missing field.
func Required(field string) error {
	return &ValidationError{Field: field, Reason: "is required"}
}

// Invalid returns a ValidationError with a formatted reason.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
