// Package persistence provides standardized error types for persistence operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrNotificationNotFound indicates a notification was not found by the given identifier.
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrSubscriptionNotFound indicates no push subscription exists for an endpoint.
	ErrSubscriptionNotFound = errors.New("push subscription not found")
)

// NotificationError wraps notification-related errors with additional context.
type NotificationError struct {
	Op             string // Operation being performed (e.g., "GetByID", "Save", "Delete")
	NotificationID string
	Err            error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("%s operation failed for notification %s: %v", e.Op, e.NotificationID, e.Err)
}

func (e *NotificationError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for notification errors.
func (e *NotificationError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

func NewNotificationError(op, notificationID string, err error) *NotificationError {
	return &NotificationError{
		Op:             op,
		NotificationID: notificationID,
		Err:            err,
	}
}

// IsNotificationNotFound checks if an error indicates a notification was not found.
func IsNotificationNotFound(err error) bool {
	return errors.Is(err, ErrNotificationNotFound)
}

// IsSubscriptionNotFound checks if an error indicates a push subscription was not found.
func IsSubscriptionNotFound(err error) bool {
	return errors.Is(err, ErrSubscriptionNotFound)
}
