package protocol

import (
	"context"

	"github.com/dukex/notimaster/pkg/models"
)

// TriggerCallback is invoked by a trigger source once per event occurrence.
type TriggerCallback func(ctx context.Context, triggerID string, data models.TriggerContext) error

// TriggerSource produces trigger firings from an external event stream.
type TriggerSource interface {
	Start(ctx context.Context, callback TriggerCallback) error
	Stop(ctx context.Context) error
	Validate() error
}
