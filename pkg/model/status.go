package model

import "time"

// DroneStatus is a point-in-time status report from a drone
type DroneStatus struct {
	ID             uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	DroneID        uint      `gorm:"column:drone_id;index" json:"drone_id"`
	BatteryPercent float64   `gorm:"column:battery_percent" json:"battery_percent"`
	State          string    `gorm:"column:state" json:"state"`
	Firmware       string    `gorm:"column:firmware" json:"firmware"`
	PayloadKg      float64   `gorm:"column:payload_kg" json:"payload_kg"`
	RecordedAt     time.Time `gorm:"column:recorded_at;index" json:"recorded_at"`
}

func (DroneStatus) TableName() string {
	return "drone_statuses"
}

// DroneStatusArchive is the append-only shadow of drone_statuses
type DroneStatusArchive struct {
	DroneStatus
	ArchivedAt time.Time `gorm:"column:archived_at" json:"archived_at"`
}

func (DroneStatusArchive) TableName() string {
	return "drone_statuses_archive"
}
