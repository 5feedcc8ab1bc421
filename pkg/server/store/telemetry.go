package store

import (
	"time"

	"github.com/wenhsiu/aiot-in-go/pkg/model"
)

// TelemetryStore abstracts status and position storage operations
type TelemetryStore interface {
	// RecordStatus inserts a status report
	RecordStatus(status *model.DroneStatus) error

	// LatestStatus returns the most recent status for a drone
	LatestStatus(droneID uint) (*model.DroneStatus, error)

	// ListStatuses returns a page of statuses for a drone, newest first
	ListStatuses(droneID uint, limit, offset int) ([]model.DroneStatus, error)

	// RecordPosition inserts a positioning sample
	RecordPosition(position *model.DronePosition) error

	// LatestPosition returns the most recent position for a drone
	LatestPosition(droneID uint) (*model.DronePosition, error)

	// ListPositions returns positions for a drone recorded in [since, until],
	// newest first. Zero bounds are open.
	ListPositions(droneID uint, since, until time.Time, limit, offset int) ([]model.DronePosition, error)

	// ListArchivedPositions reads positions that the archiver already moved
	// out of the live table, same bounds semantics as ListPositions
	ListArchivedPositions(droneID uint, since, until time.Time, limit, offset int) ([]model.DronePosition, error)
}

// CommandsStore abstracts drone command storage operations
type CommandsStore interface {
	// CreateCommand inserts a new command
	CreateCommand(command *model.DroneCommand) error

	// FetchCommand retrieves a command by its UUID
	FetchCommand(id string) (*model.DroneCommand, error)

	// ListCommands returns a page of commands for a drone, newest first
	ListCommands(droneID uint, limit, offset int) ([]model.DroneCommand, error)

	// UpdateCommandStatus transitions a command's lifecycle state
	UpdateCommandStatus(id string, status model.CommandStatus, completedAt *time.Time) error
}
