package models

// Settings keys understood by the configuration store.
const (
	SettingBackgroundProcessing = "background_processing"
	SettingLoggingEnabled       = "logging_enabled"
	SettingLogRetentionDays     = "log_retention_days"
)

const DefaultLogRetentionDays = 30

// Settings holds the site-wide plugin options.
type Settings struct {
	BackgroundProcessing bool `json:"background_processing"`
	LoggingEnabled       bool `json:"logging_enabled"`
	LogRetentionDays     int  `json:"log_retention_days"    validate:"min=0,max=3650"`
}

// DefaultSettings returns the settings used before anything was saved.
func DefaultSettings() Settings {
	return Settings{
		BackgroundProcessing: false,
		LoggingEnabled:       true,
		LogRetentionDays:     DefaultLogRetentionDays,
	}
}

// Lookup returns the value stored under a settings key.
func (s Settings) Lookup(key string) (any, bool) {
	switch key {
	case SettingBackgroundProcessing:
		return s.BackgroundProcessing, true
	case SettingLoggingEnabled:
		return s.LoggingEnabled, true
	case SettingLogRetentionDays:
		return s.LogRetentionDays, true
	default:
		return nil, false
	}
}
