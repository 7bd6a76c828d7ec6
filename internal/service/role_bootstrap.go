package service

import (
	"context"
	"errors"
	"fmt"

	"taskhub-api/internal/model"
	"taskhub-api/internal/repository"
	"taskhub-api/pkg/rbac"

	"go.uber.org/zap"
)

// PermissionSyncer is the part of PermissionService the bootstrap needs.
type PermissionSyncer interface {
	SyncPermissions(ctx context.Context) (*SyncResult, error)
}

const permissionSyncKey = "permissions.sync"

// RoleBootstrap creates the built-in roles the first time they are needed.
type RoleBootstrap struct {
	roles  repository.RoleRepository
	perms  repository.PermissionRepository
	syncer PermissionSyncer
	log    *zap.Logger
}

func NewRoleBootstrap(roles repository.RoleRepository, perms repository.PermissionRepository, syncer PermissionSyncer, log *zap.Logger) *RoleBootstrap {
	return &RoleBootstrap{roles: roles, perms: perms, syncer: syncer, log: log.Named("RoleBootstrap")}
}

// EnsureDefaultRoles returns the owner role, creating Owner, Admin and
// Viewer first when no owner exists. A sync failure is not fatal: roles are
// then built from whatever keys the store already has.
func (b *RoleBootstrap) EnsureDefaultRoles(ctx context.Context) (*model.Role, error) {
	owner, err := b.roles.FindBySlug(ctx, model.RoleOwner)
	if err == nil {
		return owner, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if b.syncer != nil {
		if _, err := b.syncer.SyncPermissions(ctx); err != nil {
			b.log.Warn("permission sync failed during bootstrap", zap.Error(err))
		}
	}

	keys, err := b.perms.AllKeys(ctx)
	if err != nil {
		return nil, err
	}
	full := rbac.Expand([]string{rbac.WildcardAll}, keys)
	admin := full.Clone()
	delete(admin, permissionSyncKey)

	defaults := []model.Role{
		{Name: "Owner", Slug: model.RoleOwner, Permissions: model.GrantMap(full), IsActive: true},
		{Name: "Admin", Slug: model.RoleAdmin, Permissions: model.GrantMap(admin), IsActive: true},
		{Name: "Viewer", Slug: model.RoleViewer, Permissions: model.GrantMap{"tasks.view": true}, IsActive: true},
	}
	for i := range defaults {
		role := &defaults[i]
		_, err := b.roles.FindBySlug(ctx, role.Slug)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		if err := b.roles.Create(ctx, role); err != nil && !errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("create role %s: %w", role.Slug, err)
		}
		b.log.Info("default role created", zap.String("slug", role.Slug), zap.Int("grants", len(role.Permissions)))
	}

	owner, err = b.roles.FindBySlug(ctx, model.RoleOwner)
	if err != nil {
		return nil, fmt.Errorf("owner role missing after bootstrap: %w", err)
	}
	return owner, nil
}
