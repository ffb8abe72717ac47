// Package services provides the business operations behind the API and the CLI.
package services

import (
	"errors"
	"fmt"

	"github.com/dukex/notimaster/pkg/persistence"
)

// Business Logic Errors - These indicate client errors (4xx responses).
var (
	// Validation Errors (400 Bad Request).
	ErrInvalidRequest     = errors.New("invalid request")
	ErrUnknownTrigger     = errors.New("unknown trigger")
	ErrUnknownIntegration = errors.New("unknown integration")
	ErrInvalidSettings    = errors.New("invalid connection settings")
	ErrInvalidMergeTag    = errors.New("invalid merge tag")

	// Not Found Errors (404).
	ErrNotificationNotFound = persistence.ErrNotificationNotFound
	ErrSubscriptionNotFound = persistence.ErrSubscriptionNotFound
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrUnknownTrigger) ||
		errors.Is(err, ErrUnknownIntegration) ||
		errors.Is(err, ErrInvalidSettings) ||
		errors.Is(err, ErrInvalidMergeTag)
}

// IsNotFoundError checks if an error should return HTTP 404.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotificationNotFound) ||
		errors.Is(err, ErrSubscriptionNotFound)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
