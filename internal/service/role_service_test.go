package service

import (
	"testing"

	"taskhub-api/internal/model"
	"taskhub-api/internal/repository"
	"taskhub-api/pkg/validator"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRoleService(f *fixture) RoleService {
	return NewRoleService(f.roles, f.perms, f.audit, nil, zap.NewNop())
}

func TestRoleCreate(t *testing.T) {
	f := newFixture(t)
	svc := newRoleService(f)
	org := f.org(t, "Acme")
	caller := callerFor(f.user(t, org, nil, "owner@acme.test"))

	resp, err := svc.Create(f.ctx, caller, &CreateRoleRequest{
		Name:        "Team Lead",
		Slug:        "Team  Lead",
		Permissions: map[string]bool{"tasks.view": true, "tasks.delete": false},
	})
	require.NoError(t, err)
	assert.Equal(t, "team_lead", resp.Slug)
	assert.True(t, resp.IsActive)
	assert.Equal(t, map[string]bool{"tasks.view": true}, map[string]bool(resp.Permissions))

	_, err = svc.Create(f.ctx, caller, &CreateRoleRequest{Name: "Dup", Slug: "team_lead"})
	assert.ErrorIs(t, err, ErrRoleSlugExists)

	_, err = svc.Create(f.ctx, caller, &CreateRoleRequest{Name: "Bad", Slug: "bad!slug"})
	var verr *validator.Error
	assert.ErrorAs(t, err, &verr)

	logs, total, err := f.auditRepo.ListByOrg(f.ctx, org.ID, repository.NewPage(1, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, model.AuditResourceRole, logs[0].Resource)
}

func TestRoleResponsesExpandWildcard(t *testing.T) {
	f := newFixture(t)
	_, err := f.permSvc.SyncPermissions(f.ctx)
	require.NoError(t, err)
	role := f.role(t, "superuser", model.GrantMap{"*": true}, true)

	resp, err := newRoleService(f).Get(f.ctx, role.ID)
	require.NoError(t, err)
	assert.Len(t, resp.Permissions, catalogKeys)
	assert.NotContains(t, resp.Permissions, "*")
	assert.NotContains(t, resp.Permissions, "all")
	assert.True(t, resp.Permissions["permissions.sync"])
}

func TestRoleUpdate(t *testing.T) {
	f := newFixture(t)
	svc := newRoleService(f)
	caller := callerFor(f.user(t, f.org(t, "Acme"), nil, "owner@acme.test"))
	f.role(t, "taken", model.GrantMap{}, true)
	role := f.role(t, "editor", model.GrantMap{"tasks.view": true}, true)

	inactive := false
	perms := map[string]bool{"tasks.update": true}
	resp, err := svc.Update(f.ctx, caller, role.ID, &UpdateRoleRequest{IsActive: &inactive, Permissions: &perms})
	require.NoError(t, err)
	assert.False(t, resp.IsActive)
	assert.Equal(t, map[string]bool{"tasks.update": true}, map[string]bool(resp.Permissions))

	stored, err := f.roles.FindByID(f.ctx, role.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)

	taken := "Taken"
	_, err = svc.Update(f.ctx, caller, role.ID, &UpdateRoleRequest{Slug: &taken})
	assert.ErrorIs(t, err, ErrRoleSlugExists)

	_, err = svc.Update(f.ctx, caller, uuid.New(), &UpdateRoleRequest{})
	assert.ErrorIs(t, err, ErrRoleNotFound)
}

func TestRoleDelete(t *testing.T) {
	f := newFixture(t)
	svc := newRoleService(f)
	org := f.org(t, "Acme")
	used := f.role(t, "used", model.GrantMap{}, true)
	unused := f.role(t, "unused", model.GrantMap{}, true)
	caller := callerFor(f.user(t, org, used, "member@acme.test"))

	assert.ErrorIs(t, svc.Delete(f.ctx, caller, used.ID), ErrRoleInUse)
	require.NoError(t, svc.Delete(f.ctx, caller, unused.ID))
	assert.ErrorIs(t, svc.Delete(f.ctx, caller, unused.ID), ErrRoleNotFound)

	_, err := f.roles.FindByID(f.ctx, used.ID)
	assert.NoError(t, err)
}
