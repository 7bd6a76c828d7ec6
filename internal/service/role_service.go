package service

import (
	"context"
	"errors"

	"taskhub-api/internal/model"
	"taskhub-api/internal/repository"
	"taskhub-api/internal/ws"
	"taskhub-api/pkg/rbac"
	"taskhub-api/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CreateRoleRequest struct {
	Name        string          `json:"name" validate:"required,max=100"`
	Slug        string          `json:"slug" validate:"required,max=100"`
	Permissions map[string]bool `json:"permissions"`
	IsActive    *bool           `json:"is_active"`
}

type UpdateRoleRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=100"`
	Slug        *string          `json:"slug" validate:"omitempty,min=1,max=100"`
	Permissions *map[string]bool `json:"permissions"`
	IsActive    *bool            `json:"is_active"`
}

// RoleResponse is a role with its grant map in wire form (no "*" or "all").
type RoleResponse struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Slug        string      `json:"slug"`
	Permissions rbac.Grants `json:"permissions"`
	IsActive    bool        `json:"is_active"`
}

type RoleService interface {
	List(ctx context.Context, page repository.Page) (*Paged[RoleResponse], error)
	Get(ctx context.Context, id uuid.UUID) (*RoleResponse, error)
	Create(ctx context.Context, caller *model.Caller, req *CreateRoleRequest) (*RoleResponse, error)
	Update(ctx context.Context, caller *model.Caller, id uuid.UUID, req *UpdateRoleRequest) (*RoleResponse, error)
	Delete(ctx context.Context, caller *model.Caller, id uuid.UUID) error
}

type roleService struct {
	roles repository.RoleRepository
	perms repository.PermissionRepository
	audit AuditService
	hub   *ws.Hub
	log   *zap.Logger
}

func NewRoleService(roles repository.RoleRepository, perms repository.PermissionRepository, audit AuditService, hub *ws.Hub, log *zap.Logger) RoleService {
	return &roleService{roles: roles, perms: perms, audit: audit, hub: hub, log: log.Named("RoleService")}
}

func (s *roleService) List(ctx context.Context, page repository.Page) (*Paged[RoleResponse], error) {
	roles, total, err := s.roles.FindAll(ctx, page)
	if err != nil {
		return nil, err
	}
	items := make([]RoleResponse, 0, len(roles))
	for i := range roles {
		resp, err := s.toResponse(ctx, &roles[i])
		if err != nil {
			return nil, err
		}
		items = append(items, *resp)
	}
	return &Paged[RoleResponse]{Items: items, Total: total, Page: page.Page, Limit: page.Limit}, nil
}

func (s *roleService) Get(ctx context.Context, id uuid.UUID) (*RoleResponse, error) {
	role, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, role)
}

func (s *roleService) Create(ctx context.Context, caller *model.Caller, req *CreateRoleRequest) (*RoleResponse, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}
	slug := model.ToSlug(req.Slug)
	if err := validateSlug(slug); err != nil {
		return nil, err
	}

	if _, err := s.roles.FindBySlug(ctx, slug); err == nil {
		s.log.Warn("role slug already exists", zap.String("slug", slug))
		return nil, ErrRoleSlugExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	role := &model.Role{
		Name:        req.Name,
		Slug:        slug,
		Permissions: sparse(req.Permissions),
		IsActive:    true,
	}
	if req.IsActive != nil {
		role.IsActive = *req.IsActive
	}
	if err := s.roles.Create(ctx, role); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrRoleSlugExists
		}
		return nil, err
	}

	s.log.Info("role created", zap.String("role_id", role.ID.String()), zap.String("slug", role.Slug))
	s.audit.Log(ctx, caller, AuditEntry{Action: model.AuditActionCreate, Resource: model.AuditResourceRole, ResourceID: role.ID.String()})
	s.hub.Publish("role_created", map[string]string{"id": role.ID.String(), "slug": role.Slug})
	return s.toResponse(ctx, role)
}

func (s *roleService) Update(ctx context.Context, caller *model.Caller, id uuid.UUID, req *UpdateRoleRequest) (*RoleResponse, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}
	role, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		role.Name = *req.Name
	}
	if req.Slug != nil {
		slug := model.ToSlug(*req.Slug)
		if err := validateSlug(slug); err != nil {
			return nil, err
		}
		if slug != role.Slug {
			if other, err := s.roles.FindBySlug(ctx, slug); err == nil && other.ID != role.ID {
				return nil, ErrRoleSlugExists
			} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return nil, err
			}
		}
		role.Slug = slug
	}
	if req.Permissions != nil {
		role.Permissions = sparse(*req.Permissions)
	}
	if req.IsActive != nil {
		role.IsActive = *req.IsActive
	}

	if err := s.roles.Update(ctx, role); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrRoleSlugExists
		}
		return nil, err
	}

	s.log.Info("role updated", zap.String("role_id", role.ID.String()))
	s.audit.Log(ctx, caller, AuditEntry{Action: model.AuditActionUpdate, Resource: model.AuditResourceRole, ResourceID: role.ID.String()})
	s.hub.Publish("role_updated", map[string]string{"id": role.ID.String(), "slug": role.Slug})
	return s.toResponse(ctx, role)
}

// Delete removes a role that no user references.
func (s *roleService) Delete(ctx context.Context, caller *model.Caller, id uuid.UUID) error {
	role, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	n, err := s.roles.CountUsers(ctx, role.ID)
	if err != nil {
		return err
	}
	if n > 0 {
		s.log.Warn("refusing to delete role in use", zap.String("role_id", id.String()), zap.Int64("users", n))
		return ErrRoleInUse
	}
	if err := s.roles.Delete(ctx, role.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRoleNotFound
		}
		return err
	}

	s.log.Info("role deleted", zap.String("role_id", id.String()))
	s.audit.Log(ctx, caller, AuditEntry{Action: model.AuditActionDelete, Resource: model.AuditResourceRole, ResourceID: id.String()})
	s.hub.Publish("role_deleted", map[string]string{"id": id.String()})
	return nil
}

func (s *roleService) find(ctx context.Context, id uuid.UUID) (*model.Role, error) {
	role, err := s.roles.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrRoleNotFound
	}
	return role, err
}

func (s *roleService) toResponse(ctx context.Context, role *model.Role) (*RoleResponse, error) {
	perms, err := normalizeGrants(ctx, s.perms, role.Permissions.Grants())
	if err != nil {
		return nil, err
	}
	return &RoleResponse{
		ID:          role.ID,
		Name:        role.Name,
		Slug:        role.Slug,
		Permissions: perms,
		IsActive:    role.IsActive,
	}, nil
}

// sparse keeps only granted keys.
func sparse(in map[string]bool) model.GrantMap {
	out := make(model.GrantMap, len(in))
	for k, v := range in {
		if v && k != "" {
			out[k] = true
		}
	}
	return out
}

func validateSlug(slug string) error {
	return validator.Validate(&struct {
		Slug string `validate:"required,slug"`
	}{Slug: slug})
}
