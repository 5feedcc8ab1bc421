package store

// AuthzStore abstracts effective-permission lookups
type AuthzStore interface {
	// PermissionsForUser returns the names of all permissions a user holds
	// through role assignments
	PermissionsForUser(userID uint) ([]string, error)

	// HasPermission checks whether a user holds a named permission
	HasPermission(userID uint, name string) (bool, error)
}
