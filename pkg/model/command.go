package model

import "time"

//go:generate go run github.com/dmarkham/enumer -type CommandType -trimprefix Command -transform snake -json -sql -output command_type.gen.go

// CommandType identifies the operation a command asks the drone to perform
type CommandType int

const (
	CommandTakeoff CommandType = iota
	CommandLand
	CommandHover
	CommandGoto
	CommandReturnHome
	CommandSetSpeed
)

//go:generate go run github.com/dmarkham/enumer -type CommandStatus -trimprefix Status -transform lower -json -sql -output command_status.gen.go

// CommandStatus tracks the lifecycle of a dispatched command
type CommandStatus int

const (
	StatusPending CommandStatus = iota
	StatusSent
	StatusCompleted
	StatusFailed
)

// DroneCommand is a command issued to a drone. Dispatch publishes it to the
// device.commands exchange; the ack consumer moves it to completed/failed.
type DroneCommand struct {
	ID          string        `gorm:"column:id;primaryKey" json:"id"`
	DroneID     uint          `gorm:"column:drone_id;index" json:"drone_id"`
	CommandType CommandType   `gorm:"column:command_type" json:"command_type"`
	Parameters  string        `gorm:"column:parameters" json:"parameters,omitempty"`
	Status      CommandStatus `gorm:"column:status" json:"status"`
	IssuedBy    uint          `gorm:"column:issued_by" json:"issued_by"`
	IssuedAt    time.Time     `gorm:"column:issued_at;autoCreateTime" json:"issued_at"`
	CompletedAt *time.Time    `gorm:"column:completed_at" json:"completed_at,omitempty"`
}

func (DroneCommand) TableName() string {
	return "drone_commands"
}

// DroneCommandArchive is the append-only shadow of drone_commands
type DroneCommandArchive struct {
	DroneCommand
	ArchivedAt time.Time `gorm:"column:archived_at" json:"archived_at"`
}

func (DroneCommandArchive) TableName() string {
	return "drone_commands_archive"
}
