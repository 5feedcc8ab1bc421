package store

import "github.com/wenhsiu/aiot-in-go/pkg/model"

// PreferencesStore abstracts user preference storage operations
type PreferencesStore interface {
	// ListPreferences returns all preferences for a user
	ListPreferences(userID uint) ([]model.UserPreference, error)

	// FetchPreference retrieves one preference by key
	FetchPreference(userID uint, key string) (*model.UserPreference, error)

	// UpsertPreference inserts or updates a preference value
	UpsertPreference(pref *model.UserPreference) error

	// DeletePreference removes a preference
	DeletePreference(userID uint, key string) error
}
