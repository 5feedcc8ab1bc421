package gorm

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/wenhsiu/aiot-in-go/pkg/model"
	"github.com/wenhsiu/aiot-in-go/pkg/server/store"
)

// Ensure AuthenticateStore implements store.AuthenticateStore
var _ store.AuthenticateStore = (*AuthenticateStore)(nil)

// AuthenticateStore implements store.AuthenticateStore using GORM
type AuthenticateStore struct {
	db *gorm.DB
}

// NewAuthenticateStore creates a new AuthenticateStore
func NewAuthenticateStore(db *gorm.DB) *AuthenticateStore {
	return &AuthenticateStore{db: db}
}

// GetByUsername retrieves an active user by username
func (s *AuthenticateStore) GetByUsername(username string) (*model.User, error) {
	var user model.User
	tx := s.db.Where("username = ? AND is_active", username).First(&user)
	if tx.Error != nil {
		return nil, translateError(tx.Error)
	}
	return &user, nil
}

// ValidatePassword checks a plaintext password against the stored hash
func (s *AuthenticateStore) ValidatePassword(user *model.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// UpdatePassword replaces a user's password hash
func (s *AuthenticateStore) UpdatePassword(userID uint, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	tx := s.db.Model(&model.User{}).Where("id = ?", userID).Update("password_hash", string(hash))
	if tx.Error != nil {
		return translateError(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}
