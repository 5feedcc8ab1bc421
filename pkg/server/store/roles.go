package store

import "github.com/wenhsiu/aiot-in-go/pkg/model"

// RolesStore abstracts role storage operations
type RolesStore interface {
	// ListRoles returns all roles
	ListRoles() ([]model.Role, error)

	// FetchRole retrieves a role by ID
	FetchRole(id uint) (*model.Role, error)

	// CreateRole inserts a new role
	CreateRole(role *model.Role) error

	// UpdateRole updates a role's mutable attributes
	UpdateRole(role *model.Role) error

	// DeleteRole removes a role, its grants and its assignments
	DeleteRole(id uint) error

	// RolePermissions returns the permissions granted to a role
	RolePermissions(roleID uint) ([]model.Permission, error)

	// GrantPermission grants a permission to a role
	GrantPermission(roleID, permissionID uint) error

	// RevokePermission revokes a permission from a role
	RevokePermission(roleID, permissionID uint) error
}

// PermissionsStore abstracts permission storage operations
type PermissionsStore interface {
	// ListPermissions returns all permissions
	ListPermissions() ([]model.Permission, error)

	// FetchPermission retrieves a permission by ID
	FetchPermission(id uint) (*model.Permission, error)

	// CreatePermission inserts a new permission
	CreatePermission(permission *model.Permission) error

	// DeletePermission removes a permission and its grants
	DeletePermission(id uint) error
}
