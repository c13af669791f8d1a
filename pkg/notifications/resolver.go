package notifications

import (
	"context"
	"fmt"

	"github.com/shelterconnect/platform/pkg/directory"
)

// RecipientSpec is a serializable description of who receives a send. The
// first non-empty field, checked in declaration order, selects the
// strategy; AllActive is the explicit opt-in for a platform-wide send.
type RecipientSpec struct {
	ExplicitIDs    []int64  `json:"explicit_ids,omitempty"`
	OrganizationID int64    `json:"organization_id,omitempty"`
	Roles          []string `json:"roles,omitempty"`
	AllActive      bool     `json:"all_active,omitempty"`
}

// ExplicitRecipients targets a fixed ID list.
func ExplicitRecipients(ids ...int64) RecipientSpec {
	return RecipientSpec{ExplicitIDs: ids}
}

// OrganizationRecipients targets the active members of one organization.
func OrganizationRecipients(orgID int64) RecipientSpec {
	return RecipientSpec{OrganizationID: orgID}
}

// RoleRecipients targets active users holding any of the given roles.
func RoleRecipients(roles ...string) RecipientSpec {
	return RecipientSpec{Roles: roles}
}

// AllActiveRecipients targets every active user.
func AllActiveRecipients() RecipientSpec {
	return RecipientSpec{AllActive: true}
}

// Validate reports whether the spec selects any strategy.
func (s RecipientSpec) Validate() error {
	if len(s.ExplicitIDs) == 0 && s.OrganizationID == 0 && len(s.Roles) == 0 && !s.AllActive {
		return ErrInvalidRecipientSpec
	}
	return nil
}

// Resolver expands recipient specs into concrete user ID sets.
type Resolver struct {
	directory directory.Directory
}

// NewResolver creates a resolver backed by the given user directory.
func NewResolver(dir directory.Directory) (*Resolver, error) {
	if dir == nil {
		return nil, ErrDirectoryNil
	}
	return &Resolver{directory: dir}, nil
}

// Resolve expands the spec into a deduplicated ID list, preserving
// first-seen order so downstream chunking is deterministic. Organization
// sends of alert-class notifications additionally include every elevated
// operator, whatever their organization; platform operators must always
// see organizational alerts. An empty result is not an error.
func (r *Resolver) Resolve(ctx context.Context, spec RecipientSpec, class Class) ([]int64, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	var (
		ids []int64
		err error
	)
	switch {
	case len(spec.ExplicitIDs) > 0:
		ids = spec.ExplicitIDs
	case spec.OrganizationID != 0:
		ids, err = r.directory.OrganizationMemberIDs(ctx, spec.OrganizationID)
		if err == nil && class == ClassOrganizationAlert {
			var elevated []int64
			elevated, err = r.directory.RoleMemberIDs(ctx, []string{directory.RoleAdmin, directory.RoleSuperAdmin})
			ids = append(ids, elevated...)
		}
	case len(spec.Roles) > 0:
		ids, err = r.directory.RoleMemberIDs(ctx, spec.Roles)
	default:
		ids, err = r.directory.ActiveIDs(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("notifications: resolve recipients: %w", err)
	}

	return dedupe(ids), nil
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
