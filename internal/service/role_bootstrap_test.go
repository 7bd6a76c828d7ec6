package service

import (
	"path/filepath"
	"testing"

	"taskhub-api/internal/model"
	"taskhub-api/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEnsureDefaultRolesCreatesBuiltins(t *testing.T) {
	f := newFixture(t)

	owner, err := f.bootstrap.EnsureDefaultRoles(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, model.RoleOwner, owner.Slug)
	assert.Len(t, owner.Permissions, catalogKeys)
	assert.NotContains(t, owner.Permissions, "*")

	admin, err := f.roles.FindBySlug(f.ctx, model.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, admin.Permissions, catalogKeys-1)
	assert.NotContains(t, admin.Permissions, "permissions.sync")

	viewer, err := f.roles.FindBySlug(f.ctx, model.RoleViewer)
	require.NoError(t, err)
	assert.Equal(t, model.GrantMap{"tasks.view": true}, viewer.Permissions)
	assert.True(t, viewer.IsActive)
}

func TestEnsureDefaultRolesIsNoopWithOwner(t *testing.T) {
	f := newFixture(t)
	existing := f.role(t, model.RoleOwner, model.GrantMap{"tasks.view": true}, true)

	owner, err := f.bootstrap.EnsureDefaultRoles(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, owner.ID)

	_, total, err := f.roles.FindAll(f.ctx, repository.NewPage(1, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	n, err := f.perms.CountModules(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "no sync when owner exists")
}

func TestEnsureDefaultRolesKeepsExistingSlugs(t *testing.T) {
	f := newFixture(t)
	custom := f.role(t, model.RoleViewer, model.GrantMap{"audit.view": true}, true)

	// the catalog sync rewrites viewer from the manifest before creation runs
	_, err := f.bootstrap.EnsureDefaultRoles(f.ctx)
	require.NoError(t, err)

	viewer, err := f.roles.FindBySlug(f.ctx, model.RoleViewer)
	require.NoError(t, err)
	assert.Equal(t, custom.ID, viewer.ID)
}

func TestEnsureDefaultRolesSurvivesSyncFailure(t *testing.T) {
	f := newFixture(t)
	broken := NewPermissionService(filepath.Join(t.TempDir(), "missing"), f.perms, f.roles, nil, zap.NewNop())
	b := NewRoleBootstrap(f.roles, f.perms, broken, zap.NewNop())

	owner, err := b.EnsureDefaultRoles(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, owner.Permissions)

	viewer, err := f.roles.FindBySlug(f.ctx, model.RoleViewer)
	require.NoError(t, err)
	assert.True(t, viewer.Permissions["tasks.view"])
}
