package service

import (
	"testing"
	"time"

	"taskhub-api/internal/model"
	"taskhub-api/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newAuthService(f *fixture) (AuthService, *jwt.Issuer) {
	issuer := jwt.NewIssuer("test-secret", time.Hour)
	return NewAuthService(f.users, f.orgs, f.perms, f.bootstrap, issuer, zap.NewNop()), issuer
}

func TestRegisterCreatesOrganizationAndOwner(t *testing.T) {
	f := newFixture(t)
	superOrg := &model.Organization{Name: "Default Organization", IsSuper: true}
	require.NoError(t, f.orgs.Create(f.ctx, superOrg))
	svc, issuer := newAuthService(f)

	sess, err := svc.Register(f.ctx, &RegisterRequest{
		Email:            "Founder@Example.com",
		Password:         "secret123",
		Name:             " Founder ",
		OrganizationName: " Startup ",
	})
	require.NoError(t, err)
	assert.Equal(t, "founder@example.com", sess.User.Email)
	assert.Equal(t, "Founder", sess.User.Name)
	assert.Equal(t, "Startup", sess.User.OrganizationName)
	assert.Equal(t, model.RoleOwner, sess.User.Role)
	assert.False(t, sess.User.CanAccessDocs)
	assert.Len(t, sess.User.Permissions, catalogKeys)
	assert.NotContains(t, sess.User.Permissions, "*")

	claims, err := issuer.ValidateToken(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, claims.UserID)

	org, err := f.orgs.FindByID(f.ctx, sess.User.OrganizationID)
	require.NoError(t, err)
	require.NotNil(t, org.ParentID)
	assert.Equal(t, superOrg.ID, *org.ParentID)

	_, err = svc.Register(f.ctx, &RegisterRequest{Email: "founder@example.com", Password: "secret123", OrganizationName: "Again"})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	svc, _ := newAuthService(f)
	_, err := f.permSvc.SyncPermissions(f.ctx)
	require.NoError(t, err)

	org := &model.Organization{Name: "Default Organization", IsSuper: true}
	require.NoError(t, f.orgs.Create(f.ctx, org))
	viewer := f.role(t, model.RoleViewer, model.GrantMap{"tasks.view": true}, true)
	f.user(t, org, viewer, "viewer@example.com")

	sess, err := svc.Login(f.ctx, &LoginRequest{Email: "VIEWER@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, model.RoleViewer, sess.User.Role)
	assert.Equal(t, viewer.Name, sess.User.RoleName)
	assert.True(t, sess.User.CanAccessDocs)
	assert.Equal(t, map[string]bool{"tasks.view": true}, map[string]bool(sess.User.Permissions))

	_, err = svc.Login(f.ctx, &LoginRequest{Email: "viewer@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(f.ctx, &LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSessionExpandsSuperRoles(t *testing.T) {
	f := newFixture(t)
	svc, _ := newAuthService(f)
	_, err := f.permSvc.SyncPermissions(f.ctx)
	require.NoError(t, err)

	org := f.org(t, "Acme")
	// stored grants are sparse, but an admin can do everything the guard allows
	admin := f.user(t, org, f.role(t, model.RoleAdmin, model.GrantMap{"tasks.view": true}, true), "admin@acme.test")

	sess, err := svc.Me(f.ctx, callerFor(admin))
	require.NoError(t, err)
	assert.Empty(t, sess.Token)
	assert.Len(t, sess.User.Permissions, catalogKeys)
}

func TestMeForDeletedUser(t *testing.T) {
	f := newFixture(t)
	svc, _ := newAuthService(f)
	u := f.user(t, f.org(t, "Acme"), nil, "gone@acme.test")
	require.NoError(t, f.users.Delete(f.ctx, u.ID))

	_, err := svc.Me(f.ctx, callerFor(u))
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestSuperRoleSessionWithEmptyCatalogWarns(t *testing.T) {
	f := newFixture(t)
	core, logs := observer.New(zapcore.WarnLevel)
	svc := NewAuthService(f.users, f.orgs, f.perms, f.bootstrap, jwt.NewIssuer("test-secret", time.Hour), zap.New(core))

	org := f.org(t, "Acme")
	owner := f.role(t, model.RoleOwner, model.GrantMap{}, true)
	u := f.user(t, org, owner, "owner@acme.test")

	sess, err := svc.Me(f.ctx, callerFor(u))
	require.NoError(t, err)
	assert.Empty(t, sess.User.Permissions)
	assert.Equal(t, 1, logs.FilterMessageSnippet("permission catalog is empty").Len())

	_, err = f.permSvc.SyncPermissions(f.ctx)
	require.NoError(t, err)
	sess, err = svc.Me(f.ctx, callerFor(u))
	require.NoError(t, err)
	assert.Len(t, sess.User.Permissions, catalogKeys)
	assert.Equal(t, 1, logs.FilterMessageSnippet("permission catalog is empty").Len())
}
