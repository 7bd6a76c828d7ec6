package service

import (
	"context"
	"errors"
	"time"

	"taskhub-api/internal/model"
	"taskhub-api/internal/repository"
	"taskhub-api/internal/ws"
	"taskhub-api/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CreateTaskRequest struct {
	Title       string     `json:"title" validate:"required,min=1,max=255"`
	Description *string    `json:"description"`
	Status      string     `json:"status" validate:"omitempty,oneof=todo in_progress done"`
	Category    *string    `json:"category" validate:"omitempty,oneof=Work Personal Other"`
	Priority    *string    `json:"priority" validate:"omitempty,oneof=low medium high critical"`
	DueDate     *time.Time `json:"due_date"`
	AssigneeID  *uuid.UUID `json:"assignee_id"`
	IssueKey    *string    `json:"issue_key" validate:"omitempty,max=50"`
}

type UpdateTaskRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string    `json:"description"`
	Status      *string    `json:"status" validate:"omitempty,oneof=todo in_progress done"`
	Category    *string    `json:"category" validate:"omitempty,oneof=Work Personal Other"`
	Order       *int       `json:"order" validate:"omitempty,min=0"`
	Priority    *string    `json:"priority" validate:"omitempty,oneof=low medium high critical"`
	DueDate     *time.Time `json:"due_date"`
	AssigneeID  *uuid.UUID `json:"assignee_id"`
	IssueKey    *string    `json:"issue_key" validate:"omitempty,max=50"`
}

type TaskService interface {
	List(ctx context.Context, caller *model.Caller, filter repository.TaskFilter) ([]model.Task, error)
	Get(ctx context.Context, caller *model.Caller, id uuid.UUID) (*model.TaskDetail, error)
	Create(ctx context.Context, caller *model.Caller, req *CreateTaskRequest) (*model.Task, error)
	Update(ctx context.Context, caller *model.Caller, id uuid.UUID, req *UpdateTaskRequest) (*model.Task, error)
	Delete(ctx context.Context, caller *model.Caller, id uuid.UUID) error
}

type taskService struct {
	tasks repository.TaskRepository
	users repository.UserRepository
	audit AuditService
	hub   *ws.Hub
	log   *zap.Logger
}

func NewTaskService(tasks repository.TaskRepository, users repository.UserRepository, audit AuditService, hub *ws.Hub, log *zap.Logger) TaskService {
	return &taskService{tasks: tasks, users: users, audit: audit, hub: hub, log: log.Named("TaskService")}
}

func (s *taskService) List(ctx context.Context, caller *model.Caller, filter repository.TaskFilter) ([]model.Task, error) {
	tasks, err := s.tasks.List(ctx, caller.OrganizationID, filter)
	if err != nil {
		return nil, err
	}
	s.log.Debug("tasks listed", zap.Int("count", len(tasks)), zap.String("organization_id", caller.OrganizationID.String()))
	return tasks, nil
}

func (s *taskService) Get(ctx context.Context, caller *model.Caller, id uuid.UUID) (*model.TaskDetail, error) {
	task, err := s.find(ctx, caller, id, true)
	if err != nil {
		return nil, err
	}
	detail := task.ToDetail()
	return &detail, nil
}

// Create appends the task to the end of its status lane.
func (s *taskService) Create(ctx context.Context, caller *model.Caller, req *CreateTaskRequest) (*model.Task, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}
	if err := s.checkAssignee(ctx, caller, req.AssigneeID); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = model.TaskStatusTodo
	}
	order, err := s.tasks.NextOrder(ctx, caller.OrganizationID, status)
	if err != nil {
		return nil, err
	}

	task := &model.Task{
		Title:          req.Title,
		Description:    req.Description,
		Status:         status,
		Category:       req.Category,
		Order:          order,
		Priority:       req.Priority,
		DueDate:        req.DueDate,
		AssigneeID:     req.AssigneeID,
		IssueKey:       req.IssueKey,
		OrganizationID: caller.OrganizationID,
		CreatedByID:    caller.UserID,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	s.log.Info("task created", zap.String("task_id", task.ID.String()), zap.String("user_id", caller.UserID.String()))
	s.audit.Log(ctx, caller, AuditEntry{Action: model.AuditActionCreate, Resource: model.AuditResourceTask, ResourceID: task.ID.String()})
	s.hub.Publish("task_created", task)
	return task, nil
}

// Update applies the given fields. Changing status or order renumbers the
// task's lane so positions stay contiguous.
func (s *taskService) Update(ctx context.Context, caller *model.Caller, id uuid.UUID, req *UpdateTaskRequest) (*model.Task, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}
	task, err := s.find(ctx, caller, id, false)
	if err != nil {
		return nil, err
	}
	if err := s.checkAssignee(ctx, caller, req.AssigneeID); err != nil {
		return nil, err
	}

	prevStatus := task.Status
	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = req.Description
	}
	if req.Status != nil {
		task.Status = *req.Status
	}
	if req.Category != nil {
		task.Category = req.Category
	}
	if req.Order != nil {
		task.Order = *req.Order
	}
	if req.Priority != nil {
		task.Priority = req.Priority
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.AssigneeID != nil {
		task.AssigneeID = req.AssigneeID
	}
	if req.IssueKey != nil {
		task.IssueKey = req.IssueKey
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	if req.Status != nil || req.Order != nil {
		if err := s.tasks.Renumber(ctx, task.OrganizationID, task.Status); err != nil {
			return nil, err
		}
		if prevStatus != task.Status {
			if err := s.tasks.Renumber(ctx, task.OrganizationID, prevStatus); err != nil {
				return nil, err
			}
		}
		if task, err = s.find(ctx, caller, id, false); err != nil {
			return nil, err
		}
	}

	s.log.Info("task updated", zap.String("task_id", id.String()))
	s.audit.Log(ctx, caller, AuditEntry{Action: model.AuditActionUpdate, Resource: model.AuditResourceTask, ResourceID: id.String()})
	s.hub.Publish("task_updated", task)
	return task, nil
}

func (s *taskService) Delete(ctx context.Context, caller *model.Caller, id uuid.UUID) error {
	task, err := s.find(ctx, caller, id, false)
	if err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, task.ID); err != nil {
		return err
	}

	s.log.Info("task deleted", zap.String("task_id", id.String()), zap.String("user_id", caller.UserID.String()))
	s.audit.Log(ctx, caller, AuditEntry{Action: model.AuditActionDelete, Resource: model.AuditResourceTask, ResourceID: id.String()})
	s.hub.Publish("task_deleted", map[string]string{"id": id.String()})
	return nil
}

func (s *taskService) find(ctx context.Context, caller *model.Caller, id uuid.UUID, withUsers bool) (*model.Task, error) {
	task, err := s.tasks.FindInOrg(ctx, id, caller.OrganizationID, withUsers)
	if errors.Is(err, repository.ErrNotFound) {
		s.log.Warn("task not found", zap.String("task_id", id.String()))
		return nil, ErrTaskNotFound
	}
	return task, err
}

func (s *taskService) checkAssignee(ctx context.Context, caller *model.Caller, assigneeID *uuid.UUID) error {
	if assigneeID == nil {
		return nil
	}
	_, err := s.users.FindInOrg(ctx, *assigneeID, caller.OrganizationID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrInvalidAssignee
	}
	return err
}
