package dispatcher

import (
	"context"

	"github.com/dukex/notimaster/pkg/models"
)

// Attempt describes one connection about to be (or just) delivered.
type Attempt struct {
	ConnectionID   string
	Integration    string
	Settings       map[string]any
	Trigger        models.TriggerContext
	NotificationID string
}

// TriggerID returns the trigger stamped into the context by the trigger service.
func (a Attempt) TriggerID() string {
	return a.Trigger.String(models.TriggerContextTriggerIDKey)
}

// Observer is notified synchronously around every delivery. Returning an
// error aborts the rest of the batch and surfaces to the dispatch caller.
type Observer interface {
	BeforeDispatch(ctx context.Context, attempt Attempt) error
	// AfterDispatch receives the integration's own result for recording only.
	AfterDispatch(ctx context.Context, attempt Attempt, deliveryErr error) error
}

// ObserverFuncs adapts plain functions to Observer. Nil functions are no-ops.
type ObserverFuncs struct {
	Before func(ctx context.Context, attempt Attempt) error
	After  func(ctx context.Context, attempt Attempt, deliveryErr error) error
}

func (o ObserverFuncs) BeforeDispatch(ctx context.Context, attempt Attempt) error {
	if o.Before == nil {
		return nil
	}

	return o.Before(ctx, attempt)
}

func (o ObserverFuncs) AfterDispatch(ctx context.Context, attempt Attempt, deliveryErr error) error {
	if o.After == nil {
		return nil
	}

	return o.After(ctx, attempt, deliveryErr)
}
