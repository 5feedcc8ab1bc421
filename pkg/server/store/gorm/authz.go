package gorm

import (
	"gorm.io/gorm"

	"github.com/wenhsiu/aiot-in-go/pkg/server/store"
)

// Ensure AuthzStore implements store.AuthzStore
var _ store.AuthzStore = (*AuthzStore)(nil)

// AuthzStore implements store.AuthzStore using GORM
type AuthzStore struct {
	db *gorm.DB
}

// NewAuthzStore creates a new AuthzStore
func NewAuthzStore(db *gorm.DB) *AuthzStore {
	return &AuthzStore{db: db}
}

// PermissionsForUser returns the names of all permissions a user holds
// through role assignments
func (s *AuthzStore) PermissionsForUser(userID uint) ([]string, error) {
	type permRow struct {
		Name string `gorm:"column:name"`
	}
	var rows []permRow
	tx := s.db.Raw(`
		SELECT DISTINCT p.name
		FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		JOIN user_roles ur ON ur.role_id = rp.role_id
		WHERE ur.user_id = ?
		ORDER BY p.name
	`, userID).Scan(&rows)
	if tx.Error != nil {
		return nil, translateError(tx.Error)
	}

	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.Name)
	}
	return names, nil
}

// HasPermission checks whether a user holds a named permission
func (s *AuthzStore) HasPermission(userID uint, name string) (bool, error) {
	var exists bool
	tx := s.db.Raw(`
		SELECT EXISTS(
			SELECT 1
			FROM permissions p
			JOIN role_permissions rp ON rp.permission_id = p.id
			JOIN user_roles ur ON ur.role_id = rp.role_id
			WHERE ur.user_id = ? AND p.name = ?
		)
	`, userID, name).Scan(&exists)
	if tx.Error != nil {
		return false, translateError(tx.Error)
	}
	return exists, nil
}
