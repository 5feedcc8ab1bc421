package gorm

import (
	"gorm.io/gorm"

	"github.com/wenhsiu/aiot-in-go/pkg/model"
	"github.com/wenhsiu/aiot-in-go/pkg/server/store"
)

// Ensure UsersStore implements store.UsersStore
var _ store.UsersStore = (*UsersStore)(nil)

// UsersStore implements store.UsersStore using GORM
type UsersStore struct {
	db *gorm.DB
}

// NewUsersStore creates a new UsersStore
func NewUsersStore(db *gorm.DB) *UsersStore {
	return &UsersStore{db: db}
}

// ListUsers returns a page of users matching search
func (s *UsersStore) ListUsers(search string, limit, offset int) ([]model.User, error) {
	var users []model.User
	tx := s.db.Order("id").Limit(limit).Offset(offset)
	if search != "" {
		tx = tx.Where("username ILIKE ?", "%"+search+"%")
	}
	tx = tx.Find(&users)
	if tx.Error != nil {
		return nil, translateError(tx.Error)
	}
	return users, nil
}

// CountUsers counts the users matching search
func (s *UsersStore) CountUsers(search string) (int64, error) {
	var count int64
	tx := s.db.Model(&model.User{})
	if search != "" {
		tx = tx.Where("username ILIKE ?", "%"+search+"%")
	}
	tx = tx.Count(&count)
	return count, translateError(tx.Error)
}

// FetchUser retrieves a user by ID
func (s *UsersStore) FetchUser(id uint) (*model.User, error) {
	var user model.User
	tx := s.db.First(&user, id)
	if tx.Error != nil {
		return nil, translateError(tx.Error)
	}
	return &user, nil
}

// CreateUser inserts a new user
func (s *UsersStore) CreateUser(user *model.User) error {
	return translateError(s.db.Create(user).Error)
}

// UpdateUser updates a user's mutable attributes
func (s *UsersStore) UpdateUser(user *model.User) error {
	tx := s.db.Model(&model.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"email":     user.Email,
		"is_active": user.IsActive,
	})
	if tx.Error != nil {
		return translateError(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteUser removes a user and its role assignments
func (s *UsersStore) DeleteUser(id uint) error {
	return translateError(s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&model.UserRole{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.UserPreference{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&model.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return store.ErrNotFound
		}
		return nil
	}))
}

// UserRoles returns the roles assigned to a user
func (s *UsersStore) UserRoles(userID uint) ([]model.Role, error) {
	var roles []model.Role
	tx := s.db.Raw(`
		SELECT r.* FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = ?
		ORDER BY r.name
	`, userID).Scan(&roles)
	if tx.Error != nil {
		return nil, translateError(tx.Error)
	}
	return roles, nil
}

// AssignRole assigns a role to a user
func (s *UsersStore) AssignRole(userID, roleID uint) error {
	return translateError(s.db.Create(&model.UserRole{UserID: userID, RoleID: roleID}).Error)
}

// RemoveRole removes a role from a user
func (s *UsersStore) RemoveRole(userID, roleID uint) error {
	tx := s.db.Where("user_id = ? AND role_id = ?", userID, roleID).Delete(&model.UserRole{})
	if tx.Error != nil {
		return translateError(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}
