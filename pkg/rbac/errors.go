package rbac

import "errors"

var (
	// ErrInvalidRole is returned for roles absent from the role table.
	ErrInvalidRole = errors.New("rbac: invalid role")

	// ErrInsufficientPermissions is returned when a role lacks a permission.
	ErrInsufficientPermissions = errors.New("rbac: insufficient permissions")

	// ErrRoleNotInContext is returned when no role was stored in the context.
	ErrRoleNotInContext = errors.New("rbac: role not found in context")
)
