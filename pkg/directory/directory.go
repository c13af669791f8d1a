// Package directory exposes the read-only user directory consumed by the
// notification pipeline: lookups by ID, organization membership, and role
// membership. It is a projection over the users table owned by the CRUD
// subsystem.
package directory

import (
	"context"
	"errors"
)

// ErrUserNotFound is returned when a user ID does not exist.
var ErrUserNotFound = errors.New("directory: user not found")

// Directory answers recipient-resolution queries. All listing methods
// return IDs in ascending order so downstream chunking is deterministic,
// and only consider active accounts.
type Directory interface {
	// Get returns a single user regardless of active flag.
	Get(ctx context.Context, id int64) (*User, error)

	// ListByIDs returns the users for the given IDs, in the order the IDs
	// were supplied. Unknown IDs are skipped, not errors.
	ListByIDs(ctx context.Context, ids []int64) ([]User, error)

	// ActiveIDs returns the IDs of all active users.
	ActiveIDs(ctx context.Context) ([]int64, error)

	// OrganizationMemberIDs returns active users of one organization.
	OrganizationMemberIDs(ctx context.Context, orgID int64) ([]int64, error)

	// RoleMemberIDs returns active users holding any of the given roles.
	RoleMemberIDs(ctx context.Context, roles []string) ([]int64, error)
}
