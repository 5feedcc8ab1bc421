package gorm

import (
	"gorm.io/gorm"

	"github.com/wenhsiu/aiot-in-go/pkg/model"
	"github.com/wenhsiu/aiot-in-go/pkg/server/store"
)

// Ensure RolesStore implements store.RolesStore
var _ store.RolesStore = (*RolesStore)(nil)

// RolesStore implements store.RolesStore using GORM
type RolesStore struct {
	db *gorm.DB
}

// NewRolesStore creates a new RolesStore
func NewRolesStore(db *gorm.DB) *RolesStore {
	return &RolesStore{db: db}
}

// ListRoles returns all roles
func (s *RolesStore) ListRoles() ([]model.Role, error) {
	var roles []model.Role
	tx := s.db.Order("name").Find(&roles)
	if tx.Error != nil {
		return nil, translateError(tx.Error)
	}
	return roles, nil
}

// FetchRole retrieves a role by ID
func (s *RolesStore) FetchRole(id uint) (*model.Role, error) {
	var role model.Role
	tx := s.db.First(&role, id)
	if tx.Error != nil {
		return nil, translateError(tx.Error)
	}
	return &role, nil
}

// CreateRole inserts a new role
func (s *RolesStore) CreateRole(role *model.Role) error {
	return translateError(s.db.Create(role).Error)
}

// UpdateRole updates a role's mutable attributes
func (s *RolesStore) UpdateRole(role *model.Role) error {
	tx := s.db.Model(&model.Role{}).Where("id = ?", role.ID).Update("display_name", role.DisplayName)
	if tx.Error != nil {
		return translateError(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteRole removes a role, its grants and its assignments
func (s *RolesStore) DeleteRole(id uint) error {
	return translateError(s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", id).Delete(&model.RolePermission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", id).Delete(&model.UserRole{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&model.Role{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return store.ErrNotFound
		}
		return nil
	}))
}

// RolePermissions returns the permissions granted to a role
func (s *RolesStore) RolePermissions(roleID uint) ([]model.Permission, error) {
	var permissions []model.Permission
	tx := s.db.Raw(`
		SELECT p.* FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		WHERE rp.role_id = ?
		ORDER BY p.name
	`, roleID).Scan(&permissions)
	if tx.Error != nil {
		return nil, translateError(tx.Error)
	}
	return permissions, nil
}

// GrantPermission grants a permission to a role
func (s *RolesStore) GrantPermission(roleID, permissionID uint) error {
	return translateError(s.db.Create(&model.RolePermission{RoleID: roleID, PermissionID: permissionID}).Error)
}

// RevokePermission revokes a permission from a role
func (s *RolesStore) RevokePermission(roleID, permissionID uint) error {
	tx := s.db.Where("role_id = ? AND permission_id = ?", roleID, permissionID).Delete(&model.RolePermission{})
	if tx.Error != nil {
		return translateError(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Ensure PermissionsStore implements store.PermissionsStore
var _ store.PermissionsStore = (*PermissionsStore)(nil)

// PermissionsStore implements store.PermissionsStore using GORM
type PermissionsStore struct {
	db *gorm.DB
}

// NewPermissionsStore creates a new PermissionsStore
func NewPermissionsStore(db *gorm.DB) *PermissionsStore {
	return &PermissionsStore{db: db}
}

// ListPermissions returns all permissions
func (s *PermissionsStore) ListPermissions() ([]model.Permission, error) {
	var permissions []model.Permission
	tx := s.db.Order("name").Find(&permissions)
	if tx.Error != nil {
		return nil, translateError(tx.Error)
	}
	return permissions, nil
}

// FetchPermission retrieves a permission by ID
func (s *PermissionsStore) FetchPermission(id uint) (*model.Permission, error) {
	var permission model.Permission
	tx := s.db.First(&permission, id)
	if tx.Error != nil {
		return nil, translateError(tx.Error)
	}
	return &permission, nil
}

// CreatePermission inserts a new permission
func (s *PermissionsStore) CreatePermission(permission *model.Permission) error {
	return translateError(s.db.Create(permission).Error)
}

// DeletePermission removes a permission and its grants
func (s *PermissionsStore) DeletePermission(id uint) error {
	return translateError(s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("permission_id = ?", id).Delete(&model.RolePermission{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&model.Permission{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return store.ErrNotFound
		}
		return nil
	}))
}
