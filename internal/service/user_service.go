package service

import (
	"context"
	"errors"
	"strings"

	"taskhub-api/internal/model"
	"taskhub-api/internal/repository"
	"taskhub-api/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CreateUserRequest struct {
	Email          string     `json:"email" validate:"required,email"`
	Password       string     `json:"password" validate:"required,min=6"`
	Name           string     `json:"name"`
	RoleID         uuid.UUID  `json:"role_id" validate:"uuid_required"`
	OrganizationID *uuid.UUID `json:"organization_id"`
}

type UpdateUserRequest struct {
	Name     *string    `json:"name"`
	RoleID   *uuid.UUID `json:"role_id"`
	Password *string    `json:"password,omitempty" validate:"omitempty,min=6"`
}

type UserService interface {
	List(ctx context.Context, caller *model.Caller, page repository.Page) (*Paged[model.UserResponse], error)
	Get(ctx context.Context, caller *model.Caller, id uuid.UUID) (*model.UserResponse, error)
	Create(ctx context.Context, caller *model.Caller, req *CreateUserRequest) (*model.UserResponse, error)
	Update(ctx context.Context, caller *model.Caller, id uuid.UUID, req *UpdateUserRequest) (*model.UserResponse, error)
	Delete(ctx context.Context, caller *model.Caller, id uuid.UUID) error
}

type userService struct {
	users repository.UserRepository
	roles repository.RoleRepository
	audit AuditService
	log   *zap.Logger
}

func NewUserService(users repository.UserRepository, roles repository.RoleRepository, audit AuditService, log *zap.Logger) UserService {
	return &userService{users: users, roles: roles, audit: audit, log: log.Named("UserService")}
}

func (s *userService) List(ctx context.Context, caller *model.Caller, page repository.Page) (*Paged[model.UserResponse], error) {
	users, total, err := s.users.ListByOrg(ctx, caller.OrganizationID, page)
	if err != nil {
		return nil, err
	}
	items := make([]model.UserResponse, len(users))
	for i := range users {
		items[i] = users[i].ToResponse()
	}
	return &Paged[model.UserResponse]{Items: items, Total: total, Page: page.Page, Limit: page.Limit}, nil
}

func (s *userService) Get(ctx context.Context, caller *model.Caller, id uuid.UUID) (*model.UserResponse, error) {
	user, err := s.findInOrg(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	resp := user.ToResponse()
	return &resp, nil
}

func (s *userService) Create(ctx context.Context, caller *model.Caller, req *CreateUserRequest) (*model.UserResponse, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}
	if req.OrganizationID != nil && *req.OrganizationID != caller.OrganizationID {
		return nil, ErrCrossOrganization
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		s.log.Warn("user email already exists", zap.String("email", email))
		return nil, ErrEmailExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	role, err := s.roles.FindByID(ctx, req.RoleID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrRoleNotFound
	}
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:          email,
		Name:           strings.TrimSpace(req.Name),
		OrganizationID: caller.OrganizationID,
		RoleID:         &role.ID,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, errors.New("failed to hash password")
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	user.Role = role

	s.log.Info("user created", zap.String("user_id", user.ID.String()), zap.String("email", user.Email))
	s.audit.Log(ctx, caller, AuditEntry{Action: model.AuditActionCreate, Resource: model.AuditResourceUser, ResourceID: user.ID.String()})
	resp := user.ToResponse()
	return &resp, nil
}

func (s *userService) Update(ctx context.Context, caller *model.Caller, id uuid.UUID, req *UpdateUserRequest) (*model.UserResponse, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}
	user, err := s.findInOrg(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.RoleID != nil {
		role, err := s.roles.FindByID(ctx, *req.RoleID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoleNotFound
		}
		if err != nil {
			return nil, err
		}
		user.RoleID = &role.ID
		user.Role = role
	}
	if req.Password != nil && *req.Password != "" {
		if err := user.SetPassword(*req.Password); err != nil {
			return nil, errors.New("failed to hash password")
		}
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("user updated", zap.String("user_id", id.String()))
	s.audit.Log(ctx, caller, AuditEntry{Action: model.AuditActionUpdate, Resource: model.AuditResourceUser, ResourceID: id.String()})
	resp := user.ToResponse()
	return &resp, nil
}

func (s *userService) Delete(ctx context.Context, caller *model.Caller, id uuid.UUID) error {
	user, err := s.findInOrg(ctx, caller, id)
	if err != nil {
		return err
	}
	if user.ID == caller.UserID {
		return ErrCannotDeleteSelf
	}
	if err := s.users.Delete(ctx, user.ID); err != nil {
		return err
	}

	s.log.Info("user deleted", zap.String("user_id", id.String()))
	s.audit.Log(ctx, caller, AuditEntry{Action: model.AuditActionDelete, Resource: model.AuditResourceUser, ResourceID: id.String()})
	return nil
}

func (s *userService) findInOrg(ctx context.Context, caller *model.Caller, id uuid.UUID) (*model.User, error) {
	user, err := s.users.FindInOrg(ctx, id, caller.OrganizationID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}
