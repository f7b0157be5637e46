package driving

import "github.com/custodia-labs/brandlens/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, with defaults applied.
	Get() (*domain.AppSettings, error)

	// Set parses and persists a single setting by its dotted key.
	Set(key, value string) error

	// Unset removes a setting so that its default applies again.
	Unset(key string) error

	// Keys returns the recognised setting keys in display order.
	Keys() []string

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
