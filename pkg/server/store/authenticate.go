package store

import "github.com/wenhsiu/aiot-in-go/pkg/model"

// AuthenticateStore abstracts credential storage operations
type AuthenticateStore interface {
	// GetByUsername retrieves an active user by username
	GetByUsername(username string) (*model.User, error)

	// ValidatePassword checks a plaintext password against the stored hash
	ValidatePassword(user *model.User, password string) bool

	// UpdatePassword replaces a user's password hash
	UpdatePassword(userID uint, password string) error
}
