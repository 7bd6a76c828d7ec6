package main

import (
	"context"
	"errors"

	"taskhub-api/internal/model"
	"taskhub-api/internal/repository"
	"taskhub-api/internal/service"

	"go.uber.org/zap"
)

const (
	defaultOrganization  = "Default Organization"
	defaultAdminEmail    = "admin@example.com"
	defaultAdminPassword = "admin123"
	defaultAdminName     = "Admin User"
)

type seeder struct {
	users     repository.UserRepository
	roles     repository.RoleRepository
	orgs      repository.OrganizationRepository
	bootstrap *service.RoleBootstrap
	log       *zap.Logger
}

// seed creates the super organization, the built-in roles and an admin user
// on an empty database, and makes sure some organization is marked super.
// Failures are logged; the server still starts.
func seed(ctx context.Context, s seeder) {
	count, err := s.users.Count(ctx)
	if err != nil {
		s.log.Warn("failed to count users", zap.Error(err))
		return
	}
	if count == 0 {
		s.createDefaultAdmin(ctx)
	}
	s.ensureSuperOrganization(ctx)
}

func (s seeder) createDefaultAdmin(ctx context.Context) {
	org, err := s.orgs.FindSuper(ctx)
	if err != nil {
		s.log.Warn("failed to look up super organization", zap.Error(err))
		return
	}
	if org == nil {
		org = &model.Organization{Name: defaultOrganization, IsSuper: true}
		if err := s.orgs.Create(ctx, org); err != nil {
			s.log.Warn("failed to create default organization", zap.Error(err))
			return
		}
	}

	if _, err := s.bootstrap.EnsureDefaultRoles(ctx); err != nil {
		s.log.Warn("failed to create default roles", zap.Error(err))
		return
	}
	adminRole, err := s.roles.FindBySlug(ctx, model.RoleAdmin)
	if err != nil {
		s.log.Warn("admin role missing", zap.Error(err))
		return
	}

	admin := &model.User{
		Email:          defaultAdminEmail,
		Name:           defaultAdminName,
		OrganizationID: org.ID,
		RoleID:         &adminRole.ID,
	}
	if err := admin.SetPassword(defaultAdminPassword); err != nil {
		s.log.Warn("failed to hash admin password", zap.Error(err))
		return
	}
	if err := s.users.Create(ctx, admin); err != nil {
		s.log.Warn("failed to create admin user", zap.Error(err))
		return
	}
	s.log.Info("admin user created", zap.String("email", defaultAdminEmail), zap.String("role", model.RoleAdmin))
}

// ensureSuperOrganization marks the oldest organization super when none is.
func (s seeder) ensureSuperOrganization(ctx context.Context) {
	super, err := s.orgs.FindSuper(ctx)
	if err != nil {
		s.log.Warn("failed to look up super organization", zap.Error(err))
		return
	}
	if super != nil {
		return
	}

	oldest, err := s.orgs.FindOldest(ctx)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Warn("failed to find oldest organization", zap.Error(err))
		}
		return
	}
	if err := s.orgs.MarkSuper(ctx, oldest.ID); err != nil {
		s.log.Warn("failed to mark super organization", zap.Error(err))
		return
	}
	s.log.Info("organization marked super", zap.String("organization_id", oldest.ID.String()), zap.String("name", oldest.Name))
}
