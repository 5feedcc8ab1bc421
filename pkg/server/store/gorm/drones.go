package gorm

import (
	"gorm.io/gorm"

	"github.com/wenhsiu/aiot-in-go/pkg/model"
	"github.com/wenhsiu/aiot-in-go/pkg/server/store"
)

// Ensure DronesStore implements store.DronesStore
var _ store.DronesStore = (*DronesStore)(nil)

// DronesStore implements store.DronesStore using GORM
type DronesStore struct {
	db *gorm.DB
}

// NewDronesStore creates a new DronesStore
func NewDronesStore(db *gorm.DB) *DronesStore {
	return &DronesStore{db: db}
}

// ListDrones returns a page of drones matching search
func (s *DronesStore) ListDrones(search string, limit, offset int) ([]model.Drone, error) {
	var drones []model.Drone
	tx := s.db.Order("id").Limit(limit).Offset(offset)
	if search != "" {
		tx = tx.Where("serial ILIKE ? OR name ILIKE ?", "%"+search+"%", "%"+search+"%")
	}
	tx = tx.Find(&drones)
	if tx.Error != nil {
		return nil, translateError(tx.Error)
	}
	return drones, nil
}

// CountDrones counts the drones matching search
func (s *DronesStore) CountDrones(search string) (int64, error) {
	var count int64
	tx := s.db.Model(&model.Drone{})
	if search != "" {
		tx = tx.Where("serial ILIKE ? OR name ILIKE ?", "%"+search+"%", "%"+search+"%")
	}
	tx = tx.Count(&count)
	return count, translateError(tx.Error)
}

// FetchDrone retrieves a drone by ID
func (s *DronesStore) FetchDrone(id uint) (*model.Drone, error) {
	var drone model.Drone
	tx := s.db.First(&drone, id)
	if tx.Error != nil {
		return nil, translateError(tx.Error)
	}
	return &drone, nil
}

// FetchDroneBySerial retrieves a drone by serial number
func (s *DronesStore) FetchDroneBySerial(serial string) (*model.Drone, error) {
	var drone model.Drone
	tx := s.db.Where("serial = ?", serial).First(&drone)
	if tx.Error != nil {
		return nil, translateError(tx.Error)
	}
	return &drone, nil
}

// CreateDrone inserts a new drone
func (s *DronesStore) CreateDrone(drone *model.Drone) error {
	return translateError(s.db.Create(drone).Error)
}

// UpdateDrone updates a drone's mutable attributes
func (s *DronesStore) UpdateDrone(drone *model.Drone) error {
	tx := s.db.Model(&model.Drone{}).Where("id = ?", drone.ID).Updates(map[string]interface{}{
		"name":     drone.Name,
		"model":    drone.Model,
		"owner_id": drone.OwnerID,
	})
	if tx.Error != nil {
		return translateError(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteDrone removes a drone
func (s *DronesStore) DeleteDrone(id uint) error {
	tx := s.db.Delete(&model.Drone{}, id)
	if tx.Error != nil {
		return translateError(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}
