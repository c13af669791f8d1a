// Package rbac provides a small role-based authorizer for the platform's
// fixed role set. Roles and their permissions are declared statically at
// startup; checks are pure map lookups.
package rbac

import (
	"context"
	"slices"
)

// Platform permissions gating the notification API surface.
const (
	PermSendNotifications = "notifications.send"
	PermManageAll         = "notifications.manage_all"
)

// Role represents a set of permissions with optional inheritance.
type Role struct {
	Permissions []string
	Inherits    []string
}

// Authorizer answers permission checks for named roles.
type Authorizer interface {
	// Can returns nil if the role has the permission, directly or through
	// inheritance.
	Can(roleName, permission string) error

	// CanFromContext checks the role stored in ctx.
	CanFromContext(ctx context.Context, permission string) error

	// VerifyRole returns ErrInvalidRole for unknown roles.
	VerifyRole(roleName string) error
}

type authorizer struct {
	// rolePermissions holds the flattened permission set per role,
	// immutable after construction.
	rolePermissions map[string][]string
}

// NewAuthorizer precomputes the flattened permission set for each role.
func NewAuthorizer(roles map[string]Role) Authorizer {
	flat := make(map[string][]string, len(roles))
	for name := range roles {
		flat[name] = collect(name, roles, map[string]bool{})
	}
	return &authorizer{rolePermissions: flat}
}

// DefaultRoles is the platform role table. Coordinators may trigger sends;
// administration of all notifications stays with admins.
func DefaultRoles() map[string]Role {
	return map[string]Role{
		"viewer":    {},
		"volunteer": {},
		"coordinator": {
			Permissions: []string{PermSendNotifications},
		},
		"admin": {
			Permissions: []string{PermManageAll},
			Inherits:    []string{"coordinator"},
		},
		"super_admin": {
			Inherits: []string{"admin"},
		},
	}
}

func collect(name string, roles map[string]Role, seen map[string]bool) []string {
	if seen[name] {
		return nil
	}
	seen[name] = true

	role, ok := roles[name]
	if !ok {
		return nil
	}

	perms := slices.Clone(role.Permissions)
	for _, parent := range role.Inherits {
		perms = append(perms, collect(parent, roles, seen)...)
	}
	slices.Sort(perms)
	return slices.Compact(perms)
}

func (a *authorizer) Can(roleName, permission string) error {
	perms, ok := a.rolePermissions[roleName]
	if !ok {
		return ErrInvalidRole
	}
	if !slices.Contains(perms, permission) {
		return ErrInsufficientPermissions
	}
	return nil
}

func (a *authorizer) CanFromContext(ctx context.Context, permission string) error {
	role, ok := RoleFromContext(ctx)
	if !ok {
		return ErrRoleNotInContext
	}
	return a.Can(role, permission)
}

func (a *authorizer) VerifyRole(roleName string) error {
	if _, ok := a.rolePermissions[roleName]; !ok {
		return ErrInvalidRole
	}
	return nil
}
