package store

import "github.com/wenhsiu/aiot-in-go/pkg/model"

// DronesStore abstracts drone registry operations
type DronesStore interface {
	// ListDrones returns a page of drones, filtered by serial or name
	// substring when search is non-empty
	ListDrones(search string, limit, offset int) ([]model.Drone, error)

	// CountDrones counts the drones matching search
	CountDrones(search string) (int64, error)

	// FetchDrone retrieves a drone by ID
	FetchDrone(id uint) (*model.Drone, error)

	// FetchDroneBySerial retrieves a drone by serial number
	FetchDroneBySerial(serial string) (*model.Drone, error)

	// CreateDrone inserts a new drone
	CreateDrone(drone *model.Drone) error

	// UpdateDrone updates a drone's mutable attributes
	UpdateDrone(drone *model.Drone) error

	// DeleteDrone removes a drone
	DeleteDrone(id uint) error
}
