package services

import (
	"errors"
	"fmt"

	"github.com/edubridge/consultancy-admin/internal/access"
	"github.com/edubridge/consultancy-admin/internal/validator"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")

	ErrAgentNotFound  = fmt.Errorf("agent %w", ErrNotFound)
	ErrHostelNotFound = fmt.Errorf("hostel %w", ErrNotFound)

	ErrInvalidAmount = fmt.Errorf("amount must not be negative: %w", ErrValidationFailed)
	ErrInvalidRole   = fmt.Errorf("invalid role: %w", ErrValidationFailed)
)

// ValidationError wraps field errors so callers can match ErrValidationFailed
type ValidationError struct {
	Errors validator.ValidationErrors
}

func (e *ValidationError) Error() string {
	return e.Errors.Error()
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

func NewValidationError(errs validator.ValidationErrors) error {
	return &ValidationError{Errors: errs}
}

// AccessDeniedError carries the resolver's reason for a denial
type AccessDeniedError struct {
	Path   string
	Reason access.DenyReason
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("access to %s denied: %s", e.Path, e.Reason)
}

// Unwrap maps an unauthenticated denial to ErrUnauthorized and everything else to ErrForbidden
func (e *AccessDeniedError) Unwrap() error {
	if e.Reason == access.ReasonUnauthenticated {
		return ErrUnauthorized
	}
	return ErrForbidden
}

func NewAccessDeniedError(path string, d access.Decision) error {
	return &AccessDeniedError{Path: path, Reason: d.Reason}
}
