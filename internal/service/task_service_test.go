package service

import (
	"testing"

	"taskhub-api/internal/model"
	"taskhub-api/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTaskLifecycle(t *testing.T) {
	f := newFixture(t)
	svc := NewTaskService(f.tasks, f.users, f.audit, nil, zap.NewNop())
	org := f.org(t, "Acme")
	author := f.user(t, org, nil, "author@acme.test")
	caller := callerFor(author)

	a, err := svc.Create(f.ctx, caller, &CreateTaskRequest{Title: "a"})
	require.NoError(t, err)
	b, err := svc.Create(f.ctx, caller, &CreateTaskRequest{Title: "b"})
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusTodo, a.Status)
	assert.Equal(t, 0, a.Order)
	assert.Equal(t, 1, b.Order)

	done := model.TaskStatusDone
	moved, err := svc.Update(f.ctx, caller, a.ID, &UpdateTaskRequest{Status: &done})
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusDone, moved.Status)
	assert.Equal(t, 0, moved.Order)

	// b closes the gap a left in the todo lane
	todo, err := svc.List(f.ctx, caller, repository.TaskFilter{Status: model.TaskStatusTodo})
	require.NoError(t, err)
	require.Len(t, todo, 1)
	assert.Equal(t, b.ID, todo[0].ID)
	assert.Equal(t, 0, todo[0].Order)

	detail, err := svc.Get(f.ctx, caller, a.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.CreatedByUser)
	assert.Equal(t, author.ID, detail.CreatedByUser.ID)
	assert.Nil(t, detail.AssigneeUser)

	require.NoError(t, svc.Delete(f.ctx, caller, a.ID))
	_, err = svc.Get(f.ctx, caller, a.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	logs, total, err := f.auditRepo.ListByOrg(f.ctx, org.ID, repository.NewPage(1, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	actions := map[string]int{}
	for _, l := range logs {
		actions[l.Action]++
		assert.Equal(t, model.AuditResourceTask, l.Resource)
	}
	assert.Equal(t, map[string]int{"CREATE": 2, "UPDATE": 1, "DELETE": 1}, actions)
}

func TestTasksAreScopedToOrganization(t *testing.T) {
	f := newFixture(t)
	svc := NewTaskService(f.tasks, f.users, f.audit, nil, zap.NewNop())
	acme := callerFor(f.user(t, f.org(t, "Acme"), nil, "a@acme.test"))
	globex := callerFor(f.user(t, f.org(t, "Globex"), nil, "g@globex.test"))

	task, err := svc.Create(f.ctx, acme, &CreateTaskRequest{Title: "secret"})
	require.NoError(t, err)

	_, err = svc.Get(f.ctx, globex, task.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
	title := "stolen"
	_, err = svc.Update(f.ctx, globex, task.ID, &UpdateTaskRequest{Title: &title})
	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.ErrorIs(t, svc.Delete(f.ctx, globex, task.ID), ErrTaskNotFound)

	list, err := svc.List(f.ctx, globex, repository.TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	// assignees must belong to the caller's organization
	foreign := globex.UserID
	_, err = svc.Create(f.ctx, acme, &CreateTaskRequest{Title: "x", AssigneeID: &foreign})
	assert.ErrorIs(t, err, ErrInvalidAssignee)
	missing := uuid.New()
	_, err = svc.Create(f.ctx, acme, &CreateTaskRequest{Title: "x", AssigneeID: &missing})
	assert.ErrorIs(t, err, ErrInvalidAssignee)
}

func TestUserServiceRules(t *testing.T) {
	f := newFixture(t)
	svc := NewUserService(f.users, f.roles, f.audit, zap.NewNop())
	org := f.org(t, "Acme")
	viewer := f.role(t, model.RoleViewer, model.GrantMap{"tasks.view": true}, true)
	me := f.user(t, org, viewer, "me@acme.test")
	caller := callerFor(me)

	created, err := svc.Create(f.ctx, caller, &CreateUserRequest{Email: "New@Acme.test", Password: "secret123", RoleID: viewer.ID})
	require.NoError(t, err)
	assert.Equal(t, "new@acme.test", created.Email)
	assert.Equal(t, model.RoleViewer, created.Role.Slug)
	assert.Equal(t, org.ID, created.OrganizationID)

	_, err = svc.Create(f.ctx, caller, &CreateUserRequest{Email: "new@acme.test", Password: "secret123", RoleID: viewer.ID})
	assert.ErrorIs(t, err, ErrEmailExists)

	other := uuid.New()
	_, err = svc.Create(f.ctx, caller, &CreateUserRequest{Email: "x@acme.test", Password: "secret123", RoleID: viewer.ID, OrganizationID: &other})
	assert.ErrorIs(t, err, ErrCrossOrganization)

	_, err = svc.Create(f.ctx, caller, &CreateUserRequest{Email: "y@acme.test", Password: "secret123", RoleID: uuid.New()})
	assert.ErrorIs(t, err, ErrRoleNotFound)

	assert.ErrorIs(t, svc.Delete(f.ctx, caller, me.ID), ErrCannotDeleteSelf)
	require.NoError(t, svc.Delete(f.ctx, caller, created.ID))

	page, err := svc.List(f.ctx, caller, repository.NewPage(1, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)
}
