package models

import "time"

// PushSubscription is a browser web push endpoint registered by a visitor.
type PushSubscription struct {
	ID        string    `json:"id"`
	Endpoint  string    `json:"endpoint"   validate:"required,url"`
	P256dh    string    `json:"p256dh"     validate:"required"`
	Auth      string    `json:"auth"       validate:"required"`
	UserAgent string    `json:"user_agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
