package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

// NewValidationError reports missing or malformed input. Raised before any
// store call is issued.
func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

// NewNotFound reports an id absent from the authoritative store.
func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

// NewPersistenceError wraps a backing-store read or write failure.
func NewPersistenceError(op string, err error) error {
	return &DomainError{
		Code:       "PERSISTENCE_FAILED",
		Message:    fmt.Sprintf("persistence failure during %s", op),
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

// NewNotificationError wraps a best-effort relay failure. Non-fatal: callers
// log it and carry on.
func NewNotificationError(err error) error {
	return &DomainError{
		Code:       "NOTIFICATION_FAILED",
		Message:    "notification relay failed",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// IsValidation reports whether err carries the validation code.
func IsValidation(err error) bool {
	return hasCode(err, "VALIDATION_FAILED")
}

// IsNotFound reports whether err carries the not-found code.
func IsNotFound(err error) bool {
	return hasCode(err, "NOT_FOUND")
}

// IsPersistence reports whether err carries the persistence code.
func IsPersistence(err error) bool {
	return hasCode(err, "PERSISTENCE_FAILED")
}

// IsNotification reports whether err carries the notification code.
func IsNotification(err error) bool {
	return hasCode(err, "NOTIFICATION_FAILED")
}

func hasCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		if de, ok := NewNotFound("resource", nil).(*DomainError); ok {
			return de
		}
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}
