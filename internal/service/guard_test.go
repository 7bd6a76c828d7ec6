package service

import (
	"testing"

	"taskhub-api/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGuardAuthorize(t *testing.T) {
	f := newFixture(t)
	guard := NewGuard(f.users, zap.NewNop())
	org := f.org(t, "Acme")

	owner := f.user(t, org, f.role(t, model.RoleOwner, model.GrantMap{}, true), "owner@acme.test")
	admin := f.user(t, org, f.role(t, "ADMIN", model.GrantMap{}, true), "admin@acme.test")
	viewer := f.user(t, org, f.role(t, model.RoleViewer, model.GrantMap{"tasks.view": true}, true), "viewer@acme.test")
	lead := f.user(t, org, f.role(t, "lead", model.GrantMap{"tasks.*": true, "audit.view": true}, true), "lead@acme.test")
	inactive := f.user(t, org, f.role(t, "inactive", model.GrantMap{"*": true}, false), "inactive@acme.test")
	roleless := f.user(t, org, nil, "none@acme.test")

	tests := []struct {
		name     string
		caller   *model.Caller
		required string
		outcome  Outcome
		reason   string
		err      error
	}{
		{"no requirement", nil, "", OutcomePass, ReasonNoRequirement, nil},
		{"nil caller", nil, "tasks.view", OutcomeDeny, ReasonNotAuthenticated, ErrNotAuthenticated},
		{"zero caller", &model.Caller{}, "tasks.view", OutcomeDeny, ReasonNotAuthenticated, ErrNotAuthenticated},
		{"unknown user", &model.Caller{UserID: uuid.New()}, "tasks.view", OutcomeDeny, ReasonNotAuthenticated, ErrNotAuthenticated},
		{"no role", callerFor(roleless), "tasks.view", OutcomeDeny, ReasonNoRole, ErrNoRoleAssigned},
		{"inactive role", callerFor(inactive), "tasks.view", OutcomeDeny, ReasonRoleInactive, ErrRoleInactive},
		{"owner shortcut", callerFor(owner), "permissions.sync", OutcomeAllow, ReasonSuperRole, nil},
		{"admin shortcut is case insensitive", callerFor(admin), "roles.delete_roles", OutcomeAllow, ReasonSuperRole, nil},
		{"viewer granted", callerFor(viewer), "tasks.view", OutcomeAllow, ReasonGranted, nil},
		{"viewer denied", callerFor(viewer), "tasks.delete", OutcomeDeny, ReasonInsufficientPermissions, ErrInsufficientPermissions},
		{"module wildcard", callerFor(lead), "tasks.delete", OutcomeAllow, ReasonGranted, nil},
		{"parent key", callerFor(lead), "audit.view.export", OutcomeAllow, ReasonGranted, nil},
		{"other module", callerFor(lead), "users.view_users", OutcomeDeny, ReasonInsufficientPermissions, ErrInsufficientPermissions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := guard.Authorize(f.ctx, tt.caller, tt.required)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.outcome, d.Outcome)
			assert.Equal(t, tt.reason, d.Reason)
			assert.Equal(t, tt.err == nil, d.Allowed())
		})
	}
}

func TestGuardReadsStringEncodedGrants(t *testing.T) {
	f := newFixture(t)
	guard := NewGuard(f.users, zap.NewNop())
	org := f.org(t, "Acme")
	role := f.role(t, "legacy", model.GrantMap{}, true)
	u := f.user(t, org, role, "legacy@acme.test")

	require.NoError(t, f.db.Exec(`UPDATE roles SET permissions = ? WHERE id = ?`, `"{\"tasks.view\":true}"`, role.ID).Error)

	d, err := guard.Authorize(f.ctx, callerFor(u), "tasks.view")
	require.NoError(t, err)
	assert.Equal(t, ReasonGranted, d.Reason)

	_, err = guard.Authorize(f.ctx, callerFor(u), "tasks.create")
	assert.ErrorIs(t, err, ErrInsufficientPermissions)
}

func TestGuardTreatsMalformedGrantsAsEmpty(t *testing.T) {
	f := newFixture(t)
	guard := NewGuard(f.users, zap.NewNop())
	org := f.org(t, "Acme")
	role := f.role(t, "broken", model.GrantMap{"tasks.view": true}, true)
	u := f.user(t, org, role, "broken@acme.test")

	require.NoError(t, f.db.Exec(`UPDATE roles SET permissions = ? WHERE id = ?`, `"{not json"`, role.ID).Error)

	_, err := guard.Authorize(f.ctx, callerFor(u), "tasks.view")
	assert.ErrorIs(t, err, ErrInsufficientPermissions)
}

func TestGuardSeesRoleChangesImmediately(t *testing.T) {
	f := newFixture(t)
	guard := NewGuard(f.users, zap.NewNop())
	org := f.org(t, "Acme")
	role := f.role(t, "editor", model.GrantMap{}, true)
	u := f.user(t, org, role, "editor@acme.test")

	_, err := guard.Authorize(f.ctx, callerFor(u), "tasks.update")
	assert.ErrorIs(t, err, ErrInsufficientPermissions)

	_, err = f.roles.UpdatePermissionsBySlug(f.ctx, "editor", model.GrantMap{"tasks.update": true})
	require.NoError(t, err)

	_, err = guard.Authorize(f.ctx, callerFor(u), "tasks.update")
	assert.NoError(t, err)
}
