package gorm

import (
	"time"

	"gorm.io/gorm"

	"github.com/wenhsiu/aiot-in-go/pkg/model"
	"github.com/wenhsiu/aiot-in-go/pkg/server/store"
)

// Ensure TelemetryStore implements store.TelemetryStore
var _ store.TelemetryStore = (*TelemetryStore)(nil)

// TelemetryStore implements store.TelemetryStore using GORM
type TelemetryStore struct {
	db *gorm.DB
}

// NewTelemetryStore creates a new TelemetryStore
func NewTelemetryStore(db *gorm.DB) *TelemetryStore {
	return &TelemetryStore{db: db}
}

// RecordStatus inserts a status report
func (s *TelemetryStore) RecordStatus(status *model.DroneStatus) error {
	if status.RecordedAt.IsZero() {
		status.RecordedAt = time.Now().UTC()
	}
	return translateError(s.db.Create(status).Error)
}

// LatestStatus returns the most recent status for a drone
func (s *TelemetryStore) LatestStatus(droneID uint) (*model.DroneStatus, error) {
	var status model.DroneStatus
	tx := s.db.Where("drone_id = ?", droneID).Order("recorded_at DESC").First(&status)
	if tx.Error != nil {
		return nil, translateError(tx.Error)
	}
	return &status, nil
}

// ListStatuses returns a page of statuses for a drone, newest first
func (s *TelemetryStore) ListStatuses(droneID uint, limit, offset int) ([]model.DroneStatus, error) {
	var statuses []model.DroneStatus
	tx := s.db.Where("drone_id = ?", droneID).
		Order("recorded_at DESC").
		Limit(limit).Offset(offset).
		Find(&statuses)
	if tx.Error != nil {
		return nil, translateError(tx.Error)
	}
	return statuses, nil
}

// RecordPosition inserts a positioning sample
func (s *TelemetryStore) RecordPosition(position *model.DronePosition) error {
	if position.RecordedAt.IsZero() {
		position.RecordedAt = time.Now().UTC()
	}
	return translateError(s.db.Create(position).Error)
}

// LatestPosition returns the most recent position for a drone
func (s *TelemetryStore) LatestPosition(droneID uint) (*model.DronePosition, error) {
	var position model.DronePosition
	tx := s.db.Where("drone_id = ?", droneID).Order("recorded_at DESC").First(&position)
	if tx.Error != nil {
		return nil, translateError(tx.Error)
	}
	return &position, nil
}

// ListPositions returns positions for a drone recorded in [since, until],
// newest first. Zero bounds are open.
func (s *TelemetryStore) ListPositions(droneID uint, since, until time.Time, limit, offset int) ([]model.DronePosition, error) {
	query := s.db.Where("drone_id = ?", droneID)
	if !since.IsZero() {
		query = query.Where("recorded_at >= ?", since)
	}
	if !until.IsZero() {
		query = query.Where("recorded_at <= ?", until)
	}

	var positions []model.DronePosition
	tx := query.Order("recorded_at DESC").Limit(limit).Offset(offset).Find(&positions)
	if tx.Error != nil {
		return nil, translateError(tx.Error)
	}
	return positions, nil
}

// ListArchivedPositions reads positions the archiver moved into the shadow
// table, same bounds semantics as ListPositions
func (s *TelemetryStore) ListArchivedPositions(droneID uint, since, until time.Time, limit, offset int) ([]model.DronePosition, error) {
	query := s.db.Table("drone_positions_archive").Where("drone_id = ?", droneID)
	if !since.IsZero() {
		query = query.Where("recorded_at >= ?", since)
	}
	if !until.IsZero() {
		query = query.Where("recorded_at <= ?", until)
	}

	var positions []model.DronePosition
	tx := query.Order("recorded_at DESC").Limit(limit).Offset(offset).Find(&positions)
	if tx.Error != nil {
		return nil, translateError(tx.Error)
	}
	return positions, nil
}

// Ensure CommandsStore implements store.CommandsStore
var _ store.CommandsStore = (*CommandsStore)(nil)

// CommandsStore implements store.CommandsStore using GORM
type CommandsStore struct {
	db *gorm.DB
}

// NewCommandsStore creates a new CommandsStore
func NewCommandsStore(db *gorm.DB) *CommandsStore {
	return &CommandsStore{db: db}
}

// CreateCommand inserts a new command
func (s *CommandsStore) CreateCommand(command *model.DroneCommand) error {
	return translateError(s.db.Create(command).Error)
}

// FetchCommand retrieves a command by its UUID
func (s *CommandsStore) FetchCommand(id string) (*model.DroneCommand, error) {
	var command model.DroneCommand
	tx := s.db.Where("id = ?", id).First(&command)
	if tx.Error != nil {
		return nil, translateError(tx.Error)
	}
	return &command, nil
}

// ListCommands returns a page of commands for a drone, newest first
func (s *CommandsStore) ListCommands(droneID uint, limit, offset int) ([]model.DroneCommand, error) {
	var commands []model.DroneCommand
	tx := s.db.Where("drone_id = ?", droneID).
		Order("issued_at DESC").
		Limit(limit).Offset(offset).
		Find(&commands)
	if tx.Error != nil {
		return nil, translateError(tx.Error)
	}
	return commands, nil
}

// UpdateCommandStatus transitions a command's lifecycle state
func (s *CommandsStore) UpdateCommandStatus(id string, status model.CommandStatus, completedAt *time.Time) error {
	updates := map[string]interface{}{"status": status}
	if completedAt != nil {
		updates["completed_at"] = completedAt
	}

	tx := s.db.Model(&model.DroneCommand{}).Where("id = ?", id).Updates(updates)
	if tx.Error != nil {
		return translateError(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}
