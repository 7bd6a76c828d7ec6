package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"taskhub-api/internal/model"
	"taskhub-api/internal/repository"
	"taskhub-api/pkg/jwt"
	"taskhub-api/pkg/rbac"
	"taskhub-api/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required,min=6"`
	Name             string `json:"name"`
	OrganizationName string `json:"organization_name" validate:"required"`
}

// SessionUser is the client's view of the signed-in user. Permissions never
// contain "*" or "all".
type SessionUser struct {
	ID               uuid.UUID   `json:"id"`
	Email            string      `json:"email"`
	Name             string      `json:"name"`
	OrganizationID   uuid.UUID   `json:"organization_id"`
	OrganizationName string      `json:"organization_name"`
	RoleID           *uuid.UUID  `json:"role_id"`
	Role             string      `json:"role"`
	RoleName         string      `json:"role_name"`
	Permissions      rbac.Grants `json:"permissions"`
	CanAccessDocs    bool        `json:"can_access_docs"`
}

type Session struct {
	Token string      `json:"token,omitempty"`
	User  SessionUser `json:"user"`
}

type AuthService interface {
	Login(ctx context.Context, req *LoginRequest) (*Session, error)
	Register(ctx context.Context, req *RegisterRequest) (*Session, error)
	Me(ctx context.Context, caller *model.Caller) (*Session, error)
}

type authService struct {
	users     repository.UserRepository
	orgs      repository.OrganizationRepository
	perms     repository.PermissionRepository
	bootstrap *RoleBootstrap
	issuer    *jwt.Issuer
	log       *zap.Logger
}

func NewAuthService(users repository.UserRepository, orgs repository.OrganizationRepository, perms repository.PermissionRepository, bootstrap *RoleBootstrap, issuer *jwt.Issuer, log *zap.Logger) AuthService {
	return &authService{
		users:     users,
		orgs:      orgs,
		perms:     perms,
		bootstrap: bootstrap,
		issuer:    issuer,
		log:       log.Named("AuthService"),
	}
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*Session, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, strings.ToLower(req.Email))
	if errors.Is(err, repository.ErrNotFound) {
		s.log.Warn("login failed: unknown email", zap.String("email", req.Email))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !user.CheckPassword(req.Password) {
		s.log.Warn("login failed: wrong password", zap.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}

	sess, err := s.session(ctx, user, true)
	if err != nil {
		return nil, err
	}
	s.log.Info("login successful", zap.String("user_id", user.ID.String()), zap.String("role", sess.User.Role))
	return sess, nil
}

// Register creates an organization, parented to the super organization, and
// its first user with the owner role.
func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*Session, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	owner, err := s.bootstrap.EnsureDefaultRoles(ctx)
	if err != nil {
		return nil, fmt.Errorf("ensure default roles: %w", err)
	}
	superOrg, err := s.orgs.FindSuper(ctx)
	if err != nil {
		return nil, err
	}

	org := &model.Organization{Name: strings.TrimSpace(req.OrganizationName)}
	if superOrg != nil {
		org.ParentID = &superOrg.ID
	}
	if err := s.orgs.Create(ctx, org); err != nil {
		return nil, err
	}

	user := &model.User{
		Email:          email,
		Name:           strings.TrimSpace(req.Name),
		OrganizationID: org.ID,
		RoleID:         &owner.ID,
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
	user.Role = owner
	user.Organization = org

	s.log.Info("organization registered",
		zap.String("organization_id", org.ID.String()),
		zap.String("user_id", user.ID.String()),
	)
	return s.session(ctx, user, true)
}

// Me reloads the caller's session without issuing a new token.
func (s *authService) Me(ctx context.Context, caller *model.Caller) (*Session, error) {
	if caller == nil {
		return nil, ErrNotAuthenticated
	}
	user, err := s.users.FindByID(ctx, caller.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotAuthenticated
	}
	if err != nil {
		return nil, err
	}
	return s.session(ctx, user, false)
}

func (s *authService) session(ctx context.Context, user *model.User, withToken bool) (*Session, error) {
	perms, err := s.clientPermissions(ctx, user.Role)
	if err != nil {
		return nil, err
	}

	su := SessionUser{
		ID:             user.ID,
		Email:          user.Email,
		Name:           user.Name,
		OrganizationID: user.OrganizationID,
		RoleID:         user.RoleID,
		Role:           user.RoleSlug(),
		Permissions:    perms,
	}
	if user.Role != nil {
		su.RoleName = user.Role.Name
	}
	if user.Organization != nil {
		su.OrganizationName = user.Organization.Name
		su.CanAccessDocs = user.Organization.IsSuper
	}

	sess := &Session{User: su}
	if withToken {
		token, err := s.issuer.GenerateToken(user.ID, user.Email, user.OrganizationID, su.Role)
		if err != nil {
			return nil, errors.New("failed to generate token")
		}
		sess.Token = token
	}
	return sess, nil
}

// clientPermissions returns the grant map a client should gate on. Owner and
// admin see every key, matching what the guard lets them do.
func (s *authService) clientPermissions(ctx context.Context, role *model.Role) (rbac.Grants, error) {
	if role == nil {
		return rbac.Grants{}, nil
	}
	grants := role.Permissions.Grants()
	if !model.IsSuperRoleSlug(role.Slug) {
		return normalizeGrants(ctx, s.perms, grants)
	}

	out, err := normalizeGrants(ctx, s.perms, rbac.Grants{rbac.WildcardAll: true})
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		// The guard still allows this role everything; clients gating on the
		// map will deny until the catalog is synced.
		s.log.Warn("permission catalog is empty; super role session has no permissions",
			zap.String("role", role.Slug))
	}
	return out, nil
}

// normalizeGrants expands global wildcards against the stored key set.
func normalizeGrants(ctx context.Context, perms repository.PermissionRepository, grants rbac.Grants) (rbac.Grants, error) {
	if !grants.HasWildcard() {
		return rbac.Normalize(grants, nil), nil
	}
	keys, err := perms.AllKeys(ctx)
	if err != nil {
		return nil, err
	}
	return rbac.Normalize(grants, keys), nil
}
