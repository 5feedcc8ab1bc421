package endpoints

import (
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/wenhsiu/aiot-in-go/pkg/model"
	"github.com/wenhsiu/aiot-in-go/pkg/server/store"
)

// MockAuthenticateStore implements store.AuthenticateStore for testing using testify/mock
type MockAuthenticateStore struct {
	mock.Mock
}

func (m *MockAuthenticateStore) GetByUsername(username string) (*model.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthenticateStore) ValidatePassword(user *model.User, password string) bool {
	args := m.Called(user, password)
	return args.Bool(0)
}

func (m *MockAuthenticateStore) UpdatePassword(userID uint, password string) error {
	args := m.Called(userID, password)
	return args.Error(0)
}

// MockUsersStore implements store.UsersStore for testing using testify/mock
type MockUsersStore struct {
	mock.Mock
}

func (m *MockUsersStore) ListUsers(search string, limit, offset int) ([]model.User, error) {
	args := m.Called(search, limit, offset)
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUsersStore) CountUsers(search string) (int64, error) {
	args := m.Called(search)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUsersStore) FetchUser(id uint) (*model.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUsersStore) CreateUser(user *model.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUsersStore) UpdateUser(user *model.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUsersStore) DeleteUser(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockUsersStore) UserRoles(userID uint) ([]model.Role, error) {
	args := m.Called(userID)
	return args.Get(0).([]model.Role), args.Error(1)
}

func (m *MockUsersStore) AssignRole(userID, roleID uint) error {
	args := m.Called(userID, roleID)
	return args.Error(0)
}

func (m *MockUsersStore) RemoveRole(userID, roleID uint) error {
	args := m.Called(userID, roleID)
	return args.Error(0)
}

// MockRolesStore implements store.RolesStore for testing using testify/mock
type MockRolesStore struct {
	mock.Mock
}

func (m *MockRolesStore) ListRoles() ([]model.Role, error) {
	args := m.Called()
	return args.Get(0).([]model.Role), args.Error(1)
}

func (m *MockRolesStore) FetchRole(id uint) (*model.Role, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Role), args.Error(1)
}

func (m *MockRolesStore) CreateRole(role *model.Role) error {
	args := m.Called(role)
	return args.Error(0)
}

func (m *MockRolesStore) UpdateRole(role *model.Role) error {
	args := m.Called(role)
	return args.Error(0)
}

func (m *MockRolesStore) DeleteRole(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockRolesStore) RolePermissions(roleID uint) ([]model.Permission, error) {
	args := m.Called(roleID)
	return args.Get(0).([]model.Permission), args.Error(1)
}

func (m *MockRolesStore) GrantPermission(roleID, permissionID uint) error {
	args := m.Called(roleID, permissionID)
	return args.Error(0)
}

func (m *MockRolesStore) RevokePermission(roleID, permissionID uint) error {
	args := m.Called(roleID, permissionID)
	return args.Error(0)
}

// MockPermissionsStore implements store.PermissionsStore for testing using testify/mock
type MockPermissionsStore struct {
	mock.Mock
}

func (m *MockPermissionsStore) ListPermissions() ([]model.Permission, error) {
	args := m.Called()
	return args.Get(0).([]model.Permission), args.Error(1)
}

func (m *MockPermissionsStore) FetchPermission(id uint) (*model.Permission, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Permission), args.Error(1)
}

func (m *MockPermissionsStore) CreatePermission(permission *model.Permission) error {
	args := m.Called(permission)
	return args.Error(0)
}

func (m *MockPermissionsStore) DeletePermission(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockAuthzStore implements store.AuthzStore for testing using testify/mock
type MockAuthzStore struct {
	mock.Mock
}

func (m *MockAuthzStore) PermissionsForUser(userID uint) ([]string, error) {
	args := m.Called(userID)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockAuthzStore) HasPermission(userID uint, name string) (bool, error) {
	args := m.Called(userID, name)
	return args.Bool(0), args.Error(1)
}

// MockDronesStore implements store.DronesStore for testing using testify/mock
type MockDronesStore struct {
	mock.Mock
}

func (m *MockDronesStore) ListDrones(search string, limit, offset int) ([]model.Drone, error) {
	args := m.Called(search, limit, offset)
	return args.Get(0).([]model.Drone), args.Error(1)
}

func (m *MockDronesStore) CountDrones(search string) (int64, error) {
	args := m.Called(search)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDronesStore) FetchDrone(id uint) (*model.Drone, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Drone), args.Error(1)
}

func (m *MockDronesStore) FetchDroneBySerial(serial string) (*model.Drone, error) {
	args := m.Called(serial)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Drone), args.Error(1)
}

func (m *MockDronesStore) CreateDrone(drone *model.Drone) error {
	args := m.Called(drone)
	return args.Error(0)
}

func (m *MockDronesStore) UpdateDrone(drone *model.Drone) error {
	args := m.Called(drone)
	return args.Error(0)
}

func (m *MockDronesStore) DeleteDrone(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockTelemetryStore implements store.TelemetryStore for testing using testify/mock
type MockTelemetryStore struct {
	mock.Mock
}

func (m *MockTelemetryStore) RecordStatus(status *model.DroneStatus) error {
	args := m.Called(status)
	return args.Error(0)
}

func (m *MockTelemetryStore) LatestStatus(droneID uint) (*model.DroneStatus, error) {
	args := m.Called(droneID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DroneStatus), args.Error(1)
}

func (m *MockTelemetryStore) ListStatuses(droneID uint, limit, offset int) ([]model.DroneStatus, error) {
	args := m.Called(droneID, limit, offset)
	return args.Get(0).([]model.DroneStatus), args.Error(1)
}

func (m *MockTelemetryStore) RecordPosition(position *model.DronePosition) error {
	args := m.Called(position)
	return args.Error(0)
}

func (m *MockTelemetryStore) LatestPosition(droneID uint) (*model.DronePosition, error) {
	args := m.Called(droneID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DronePosition), args.Error(1)
}

func (m *MockTelemetryStore) ListPositions(droneID uint, since, until time.Time, limit, offset int) ([]model.DronePosition, error) {
	args := m.Called(droneID, since, until, limit, offset)
	return args.Get(0).([]model.DronePosition), args.Error(1)
}

func (m *MockTelemetryStore) ListArchivedPositions(droneID uint, since, until time.Time, limit, offset int) ([]model.DronePosition, error) {
	args := m.Called(droneID, since, until, limit, offset)
	return args.Get(0).([]model.DronePosition), args.Error(1)
}

// MockCommandsStore implements store.CommandsStore for testing using testify/mock
type MockCommandsStore struct {
	mock.Mock
}

func (m *MockCommandsStore) CreateCommand(command *model.DroneCommand) error {
	args := m.Called(command)
	return args.Error(0)
}

func (m *MockCommandsStore) FetchCommand(id string) (*model.DroneCommand, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DroneCommand), args.Error(1)
}

func (m *MockCommandsStore) ListCommands(droneID uint, limit, offset int) ([]model.DroneCommand, error) {
	args := m.Called(droneID, limit, offset)
	return args.Get(0).([]model.DroneCommand), args.Error(1)
}

func (m *MockCommandsStore) UpdateCommandStatus(id string, status model.CommandStatus, completedAt *time.Time) error {
	args := m.Called(id, status, completedAt)
	return args.Error(0)
}

// MockPreferencesStore implements store.PreferencesStore for testing using testify/mock
type MockPreferencesStore struct {
	mock.Mock
}

func (m *MockPreferencesStore) ListPreferences(userID uint) ([]model.UserPreference, error) {
	args := m.Called(userID)
	return args.Get(0).([]model.UserPreference), args.Error(1)
}

func (m *MockPreferencesStore) FetchPreference(userID uint, key string) (*model.UserPreference, error) {
	args := m.Called(userID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserPreference), args.Error(1)
}

func (m *MockPreferencesStore) UpsertPreference(pref *model.UserPreference) error {
	args := m.Called(pref)
	return args.Error(0)
}

func (m *MockPreferencesStore) DeletePreference(userID uint, key string) error {
	args := m.Called(userID, key)
	return args.Error(0)
}

// MockHealthStore implements store.HealthStore for testing using testify/mock
type MockHealthStore struct {
	mock.Mock
}

func (m *MockHealthStore) CheckConnectivity() error {
	args := m.Called()
	return args.Error(0)
}

// Interface checks
var (
	_ store.AuthenticateStore = (*MockAuthenticateStore)(nil)
	_ store.UsersStore        = (*MockUsersStore)(nil)
	_ store.AuthzStore        = (*MockAuthzStore)(nil)
	_ store.DronesStore       = (*MockDronesStore)(nil)
	_ store.TelemetryStore    = (*MockTelemetryStore)(nil)
	_ store.CommandsStore     = (*MockCommandsStore)(nil)
	_ store.PreferencesStore  = (*MockPreferencesStore)(nil)
	_ store.HealthStore       = (*MockHealthStore)(nil)
)
