package web

import "github.com/dukex/notimaster/pkg/models"

// CreateNotificationRequest represents the request body for creating a notification.
type CreateNotificationRequest struct {
	Title       string             `json:"title"       validate:"required,max=255"`
	TriggerID   string             `json:"trigger_id"  validate:"required"`
	Enabled     *bool              `json:"enabled"`
	Connections models.Connections `json:"connections"`
}

// UpdateNotificationRequest represents the request body for updating a notification.
// All fields are optional to support partial updates.
type UpdateNotificationRequest struct {
	Title       *string             `json:"title,omitempty"       validate:"omitempty,min=1,max=255"`
	TriggerID   *string             `json:"trigger_id,omitempty"  validate:"omitempty,min=1"`
	Enabled     *bool               `json:"enabled,omitempty"`
	Connections *models.Connections `json:"connections,omitempty"`
}

type FireTriggerResponse struct {
	TriggerID  string `json:"trigger_id"`
	Dispatched int    `json:"dispatched"`
}

// TriggerResponse is a catalog entry with every merge tag it supports.
type TriggerResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Group       string          `json:"group"`
	Description string          `json:"description"`
	MergeTags   []MergeTagEntry `json:"merge_tags"`
}

type MergeTagEntry struct {
	Tag         string `json:"tag"`
	Description string `json:"description"`
}

// SubscribeRequest mirrors the browser's PushSubscription.toJSON() output.
type SubscribeRequest struct {
	Endpoint string `json:"endpoint" validate:"required,url"`
	Keys     struct {
		P256dh string `json:"p256dh" validate:"required"`
		Auth   string `json:"auth"   validate:"required"`
	} `json:"keys"`
}

type UnsubscribeRequest struct {
	Endpoint string `json:"endpoint" validate:"required"`
}

type VAPIDKeyResponse struct {
	PublicKey string `json:"public_key"`
}
