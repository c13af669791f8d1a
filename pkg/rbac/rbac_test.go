package rbac_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelterconnect/platform/pkg/rbac"
)

func TestDefaultRolePermissions(t *testing.T) {
	t.Parallel()

	authz := rbac.NewAuthorizer(rbac.DefaultRoles())

	tests := []struct {
		role       string
		permission string
		allowed    bool
	}{
		{"coordinator", rbac.PermSendNotifications, true},
		{"coordinator", rbac.PermManageAll, false},
		{"admin", rbac.PermSendNotifications, true},
		{"admin", rbac.PermManageAll, true},
		{"super_admin", rbac.PermSendNotifications, true},
		{"super_admin", rbac.PermManageAll, true},
		{"volunteer", rbac.PermSendNotifications, false},
		{"viewer", rbac.PermSendNotifications, false},
	}

	for _, tt := range tests {
		t.Run(tt.role+"/"+tt.permission, func(t *testing.T) {
			t.Parallel()

			err := authz.Can(tt.role, tt.permission)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, rbac.ErrInsufficientPermissions)
			}
		})
	}
}

func TestUnknownRole(t *testing.T) {
	t.Parallel()

	authz := rbac.NewAuthorizer(rbac.DefaultRoles())
	assert.ErrorIs(t, authz.Can("intruder", rbac.PermSendNotifications), rbac.ErrInvalidRole)
	assert.ErrorIs(t, authz.VerifyRole("intruder"), rbac.ErrInvalidRole)
	assert.NoError(t, authz.VerifyRole("viewer"))
}

func TestCanFromContext(t *testing.T) {
	t.Parallel()

	authz := rbac.NewAuthorizer(rbac.DefaultRoles())

	ctx := rbac.ContextWithRole(context.Background(), "coordinator")
	require.NoError(t, authz.CanFromContext(ctx, rbac.PermSendNotifications))

	assert.ErrorIs(t, authz.CanFromContext(context.Background(), rbac.PermSendNotifications),
		rbac.ErrRoleNotInContext)
}

func TestInheritanceCycleTerminates(t *testing.T) {
	t.Parallel()

	authz := rbac.NewAuthorizer(map[string]rbac.Role{
		"a": {Permissions: []string{"x"}, Inherits: []string{"b"}},
		"b": {Inherits: []string{"a"}},
	})

	require.NoError(t, authz.Can("b", "x"))
	require.NoError(t, authz.Can("a", "x"))
}
