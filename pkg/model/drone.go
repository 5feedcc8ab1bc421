package model

import "time"

// Drone represents a registered device
type Drone struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Serial    string    `gorm:"column:serial;uniqueIndex" json:"serial"`
	Name      string    `gorm:"column:name" json:"name"`
	Model     string    `gorm:"column:model" json:"model"`
	OwnerID   *uint     `gorm:"column:owner_id" json:"owner_id,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Drone) TableName() string {
	return "drones"
}
