package service

import (
	"context"
	"path/filepath"
	"testing"

	"taskhub-api/internal/model"
	"taskhub-api/internal/repository"
	"taskhub-api/pkg/database"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var catalogDir = filepath.Join("..", "..", "permissions")

// catalog key count: audit 1, permissions 1, roles 4, tasks 4, users 4
const catalogKeys = 14

type fixture struct {
	ctx       context.Context
	db        *gorm.DB
	users     repository.UserRepository
	roles     repository.RoleRepository
	perms     repository.PermissionRepository
	orgs      repository.OrganizationRepository
	tasks     repository.TaskRepository
	auditRepo repository.AuditRepository
	audit     AuditService
	permSvc   PermissionService
	bootstrap *RoleBootstrap
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	log := zap.NewNop()
	f := &fixture{
		ctx:       context.Background(),
		db:        db,
		users:     repository.NewUserRepo(db),
		roles:     repository.NewRoleRepo(db),
		perms:     repository.NewPermissionRepo(db),
		orgs:      repository.NewOrganizationRepo(db),
		tasks:     repository.NewTaskRepo(db),
		auditRepo: repository.NewAuditRepo(db),
	}
	f.audit = NewAuditService(f.auditRepo, log)
	f.permSvc = NewPermissionService(catalogDir, f.perms, f.roles, nil, log)
	f.bootstrap = NewRoleBootstrap(f.roles, f.perms, f.permSvc, log)
	return f
}

func (f *fixture) org(t *testing.T, name string) *model.Organization {
	t.Helper()
	org := &model.Organization{Name: name}
	require.NoError(t, f.orgs.Create(f.ctx, org))
	return org
}

func (f *fixture) role(t *testing.T, slug string, grants model.GrantMap, active bool) *model.Role {
	t.Helper()
	role := &model.Role{Name: slug, Slug: slug, Permissions: grants, IsActive: active}
	require.NoError(t, f.roles.Create(f.ctx, role))
	return role
}

func (f *fixture) user(t *testing.T, org *model.Organization, role *model.Role, email string) *model.User {
	t.Helper()
	u := &model.User{Email: email, Name: email, OrganizationID: org.ID}
	require.NoError(t, u.SetPassword("secret123"))
	if role != nil {
		u.RoleID = &role.ID
	}
	require.NoError(t, f.users.Create(f.ctx, u))
	return u
}

func callerFor(u *model.User) *model.Caller {
	return &model.Caller{UserID: u.ID, Email: u.Email, OrganizationID: u.OrganizationID}
}
