package store

import "github.com/wenhsiu/aiot-in-go/pkg/model"

// UsersStore abstracts user storage operations
type UsersStore interface {
	// ListUsers returns a page of users, filtered by username substring
	// when search is non-empty
	ListUsers(search string, limit, offset int) ([]model.User, error)

	// CountUsers counts the users matching search
	CountUsers(search string) (int64, error)

	// FetchUser retrieves a user by ID
	FetchUser(id uint) (*model.User, error)

	// CreateUser inserts a new user
	CreateUser(user *model.User) error

	// UpdateUser updates a user's mutable attributes
	UpdateUser(user *model.User) error

	// DeleteUser removes a user and its role assignments
	DeleteUser(id uint) error

	// UserRoles returns the roles assigned to a user
	UserRoles(userID uint) ([]model.Role, error)

	// AssignRole assigns a role to a user
	AssignRole(userID, roleID uint) error

	// RemoveRole removes a role from a user
	RemoveRole(userID, roleID uint) error
}
