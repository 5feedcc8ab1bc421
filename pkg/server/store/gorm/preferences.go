package gorm

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wenhsiu/aiot-in-go/pkg/model"
	"github.com/wenhsiu/aiot-in-go/pkg/server/store"
)

// Ensure PreferencesStore implements store.PreferencesStore
var _ store.PreferencesStore = (*PreferencesStore)(nil)

// PreferencesStore implements store.PreferencesStore using GORM
type PreferencesStore struct {
	db *gorm.DB
}

// NewPreferencesStore creates a new PreferencesStore
func NewPreferencesStore(db *gorm.DB) *PreferencesStore {
	return &PreferencesStore{db: db}
}

// ListPreferences returns all preferences for a user
func (s *PreferencesStore) ListPreferences(userID uint) ([]model.UserPreference, error) {
	var prefs []model.UserPreference
	tx := s.db.Where("user_id = ?", userID).Order("pref_key").Find(&prefs)
	if tx.Error != nil {
		return nil, translateError(tx.Error)
	}
	return prefs, nil
}

// FetchPreference retrieves one preference by key
func (s *PreferencesStore) FetchPreference(userID uint, key string) (*model.UserPreference, error) {
	var pref model.UserPreference
	tx := s.db.Where("user_id = ? AND pref_key = ?", userID, key).First(&pref)
	if tx.Error != nil {
		return nil, translateError(tx.Error)
	}
	return &pref, nil
}

// UpsertPreference inserts or updates a preference value
func (s *PreferencesStore) UpsertPreference(pref *model.UserPreference) error {
	tx := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "pref_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"pref_value", "updated_at"}),
	}).Create(pref)
	return translateError(tx.Error)
}

// DeletePreference removes a preference
func (s *PreferencesStore) DeletePreference(userID uint, key string) error {
	tx := s.db.Where("user_id = ? AND pref_key = ?", userID, key).Delete(&model.UserPreference{})
	if tx.Error != nil {
		return translateError(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}
