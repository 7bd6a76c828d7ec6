package repository

import (
	"context"
	"testing"

	"taskhub-api/internal/model"
	"taskhub-api/pkg/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestNewPage(t *testing.T) {
	assert.Equal(t, Page{Page: 1, Limit: 10}, NewPage(0, 0))
	assert.Equal(t, Page{Page: 1, Limit: 100}, NewPage(1, 500))
	assert.Equal(t, Page{Page: 1, Limit: 1}, NewPage(-3, -1))
	assert.Equal(t, 10, NewPage(2, 10).Offset())
}

func TestUpsertModuleIsKeyed(t *testing.T) {
	ctx := context.Background()
	repo := NewPermissionRepo(newTestDB(t))

	desc := "Task board"
	res, err := repo.UpsertModule(ctx, &model.PermissionModule{ModuleID: "tasks", ModuleName: "Tasks", Description: &desc}, []model.PermissionFeature{
		{FeatureID: "view", FeatureName: "View"},
		{FeatureID: "create", FeatureName: "Create"},
	})
	require.NoError(t, err)
	assert.True(t, res.ModuleCreated)
	assert.Equal(t, 2, res.FeaturesCreated)

	res, err = repo.UpsertModule(ctx, &model.PermissionModule{ModuleID: "tasks", ModuleName: "Task Board", SortOrder: 3}, []model.PermissionFeature{
		{FeatureID: "view", FeatureName: "See"},
	})
	require.NoError(t, err)
	assert.False(t, res.ModuleCreated)
	assert.Equal(t, 0, res.FeaturesCreated)
	assert.Equal(t, 1, res.FeaturesUpdated)

	modules, err := repo.ListModules(ctx)
	require.NoError(t, err)
	require.Len(t, modules, 1)
	assert.Equal(t, "Task Board", modules[0].ModuleName)
	assert.Equal(t, 3, modules[0].SortOrder)
	assert.Nil(t, modules[0].Description)

	keys, err := repo.AllKeys(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"tasks.view", "tasks.create"}, keys)
}

func TestRolePermissionsRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewRoleRepo(db)

	role := &model.Role{Name: "Viewer", Slug: "viewer", Permissions: model.GrantMap{"tasks.view": true}, IsActive: true}
	require.NoError(t, repo.Create(ctx, role))
	assert.ErrorIs(t, repo.Create(ctx, &model.Role{Name: "Dup", Slug: "viewer"}), ErrDuplicate)

	n, err := repo.UpdatePermissionsBySlug(ctx, "viewer", model.GrantMap{"tasks.view": true, "audit.view": true})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := repo.FindBySlug(ctx, "viewer")
	require.NoError(t, err)
	assert.Equal(t, model.GrantMap{"tasks.view": true, "audit.view": true}, got.Permissions)

	// a string-encoded map written by another client is decoded
	require.NoError(t, db.Exec(`UPDATE roles SET permissions = ? WHERE slug = ?`, `"{\"tasks.view\":true}"`, "viewer").Error)
	got, err = repo.FindBySlug(ctx, "viewer")
	require.NoError(t, err)
	assert.Equal(t, model.GrantMap{"tasks.view": true}, got.Permissions)

	require.NoError(t, db.Exec(`UPDATE roles SET permissions = ? WHERE slug = ?`, `"{not json"`, "viewer").Error)
	got, err = repo.FindBySlug(ctx, "viewer")
	require.NoError(t, err)
	assert.Empty(t, got.Permissions)

	_, err = repo.FindBySlug(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), ErrNotFound)
}

func TestTaskLaneOrdering(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	orgs := NewOrganizationRepo(db)
	users := NewUserRepo(db)
	tasks := NewTaskRepo(db)

	org := &model.Organization{Name: "Acme"}
	require.NoError(t, orgs.Create(ctx, org))
	user := &model.User{Email: "a@acme.test", Password: "x", OrganizationID: org.ID}
	require.NoError(t, users.Create(ctx, user))

	next, err := tasks.NextOrder(ctx, org.ID, model.TaskStatusTodo)
	require.NoError(t, err)
	assert.Equal(t, 0, next)

	for i, title := range []string{"a", "b", "c"} {
		require.NoError(t, tasks.Create(ctx, &model.Task{
			Title: title, Status: model.TaskStatusTodo, Order: i * 5,
			OrganizationID: org.ID, CreatedByID: user.ID,
		}))
	}
	next, err = tasks.NextOrder(ctx, org.ID, model.TaskStatusTodo)
	require.NoError(t, err)
	assert.Equal(t, 11, next)

	require.NoError(t, tasks.Renumber(ctx, org.ID, model.TaskStatusTodo))
	list, err := tasks.List(ctx, org.ID, TaskFilter{})
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i, task := range list {
		assert.Equal(t, i, task.Order)
	}

	other, err := tasks.List(ctx, uuid.New(), TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, other)
}
