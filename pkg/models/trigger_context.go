package models

import "maps"

// TriggerContext is the event-specific data of a fired trigger (the affected
// post, user, theme, privacy request...). It is opaque to the dispatcher.
type TriggerContext map[string]any

const (
	TriggerContextTriggerIDKey  = "trigger_id"
	TriggerContextFiredAtKey    = "fired_at"
	TriggerContextScheduleIDKey = "schedule_id"
)

// Clone returns a shallow copy of the context.
func (t TriggerContext) Clone() TriggerContext {
	if t == nil {
		return TriggerContext{}
	}

	return maps.Clone(t)
}

// String returns the value under key when it is a string.
func (t TriggerContext) String(key string) string {
	s, _ := t[key].(string)

	return s
}
