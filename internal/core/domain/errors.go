package domain

import (
	"errors"
	"strings"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrClientNotFound  = errors.New("client not found")
	ErrCaseNotFound    = errors.New("case not found")
	ErrInvoiceNotFound = errors.New("invoice not found")

	ErrIdentityTaken = errors.New("identity already registered")
	ErrEmailTaken    = errors.New("email already in use")

	ErrForbidden     = errors.New("access forbidden")
	ErrNotRegistered = errors.New("caller is not registered")

	ErrInvalidReportType = errors.New("invalid report type")

	// ErrCaseLinkPending is returned when a case was persisted but could not be
	// attached to its client's case list. The reconciler repairs the link later.
	ErrCaseLinkPending = errors.New("case created but not yet linked to client")

	ErrStorageUnavailable = errors.New("document storage is not configured")
	ErrMailUnavailable    = errors.New("outbound mail is not configured")
)

// FieldError is a single field-level validation cause.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError reports one or more invalid input fields.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Reason)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records a field error and returns the receiver for chaining.
func (e *ValidationError) Add(field, reason string) *ValidationError {
	e.Fields = append(e.Fields, FieldError{Field: field, Reason: reason})
	return e
}

// OrNil returns nil when no field errors were recorded.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// NewValidationError builds a ValidationError with a single field cause.
func NewValidationError(field, reason string) *ValidationError {
	return (&ValidationError{}).Add(field, reason)
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
