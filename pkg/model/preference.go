package model

import "time"

// UserPreference is a per-user key/value setting served by the general service
type UserPreference struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"column:user_id;uniqueIndex:idx_user_pref_key" json:"user_id"`
	PrefKey   string    `gorm:"column:pref_key;uniqueIndex:idx_user_pref_key" json:"key"`
	PrefValue string    `gorm:"column:pref_value" json:"value"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (UserPreference) TableName() string {
	return "user_preferences"
}
