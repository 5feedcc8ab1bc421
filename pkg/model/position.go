package model

import "time"

// FixType values as reported by the positioning module. RTK fixes come
// through as "rtk_float" or "rtk_fixed".
const (
	FixNone     = "none"
	FixGPS      = "gps"
	FixDGPS     = "dgps"
	FixRTKFloat = "rtk_float"
	FixRTKFixed = "rtk_fixed"
)

// DronePosition is a positioning sample, RTK-corrected when fix_type says so
type DronePosition struct {
	ID         uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	DroneID    uint      `gorm:"column:drone_id;index" json:"drone_id"`
	Latitude   float64   `gorm:"column:latitude" json:"latitude"`
	Longitude  float64   `gorm:"column:longitude" json:"longitude"`
	AltitudeM  float64   `gorm:"column:altitude_m" json:"altitude_m"`
	HeadingDeg float64   `gorm:"column:heading_deg" json:"heading_deg"`
	SpeedMps   float64   `gorm:"column:speed_mps" json:"speed_mps"`
	FixType    string    `gorm:"column:fix_type" json:"fix_type"`
	Satellites int       `gorm:"column:satellites" json:"satellites"`
	RecordedAt time.Time `gorm:"column:recorded_at;index" json:"recorded_at"`
}

func (DronePosition) TableName() string {
	return "drone_positions"
}

// DronePositionArchive is the append-only shadow of drone_positions
type DronePositionArchive struct {
	DronePosition
	ArchivedAt time.Time `gorm:"column:archived_at" json:"archived_at"`
}

func (DronePositionArchive) TableName() string {
	return "drone_positions_archive"
}
