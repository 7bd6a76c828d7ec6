package service

import (
	"context"
	"errors"
	"fmt"

	"taskhub-api/internal/metrics"
	"taskhub-api/internal/model"
	"taskhub-api/internal/repository"
	"taskhub-api/pkg/rbac"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Outcome string

const (
	OutcomeAllow Outcome = "allow"
	OutcomeDeny  Outcome = "deny"
	OutcomePass  Outcome = "pass"
	OutcomeError Outcome = "error"
)

// Decision reasons, also used as metric labels.
const (
	ReasonNoRequirement           = "no_requirement"
	ReasonNotAuthenticated        = "not_authenticated"
	ReasonNoRole                  = "no_role"
	ReasonRoleInactive            = "role_inactive"
	ReasonSuperRole               = "super_role"
	ReasonGranted                 = "granted"
	ReasonInsufficientPermissions = "insufficient_permissions"
	ReasonStoreError              = "store_error"
)

type Decision struct {
	Outcome Outcome
	Reason  string
}

func (d Decision) Allowed() bool {
	return d.Outcome == OutcomeAllow || d.Outcome == OutcomePass
}

// Guard decides whether a caller may use an operation that requires a
// permission key.
type Guard struct {
	users repository.UserRepository
	log   *zap.Logger
}

func NewGuard(users repository.UserRepository, log *zap.Logger) *Guard {
	return &Guard{users: users, log: log.Named("Guard")}
}

// Authorize resolves the caller's current role and evaluates required
// against it. A deny returns one of ErrNotAuthenticated, ErrNoRoleAssigned,
// ErrRoleInactive or ErrInsufficientPermissions; any other error is a store
// failure.
func (g *Guard) Authorize(ctx context.Context, caller *model.Caller, required string) (Decision, error) {
	d, err := g.decide(ctx, caller, required)

	fields := []zap.Field{
		zap.String("required", required),
		zap.String("outcome", string(d.Outcome)),
		zap.String("reason", d.Reason),
	}
	if caller != nil {
		fields = append(fields, zap.String("user_id", caller.UserID.String()))
	}
	switch d.Outcome {
	case OutcomeDeny:
		g.log.Info("authorization denied", fields...)
	case OutcomeError:
		g.log.Error("authorization failed", append(fields, zap.Error(err))...)
	default:
		g.log.Debug("authorization decided", fields...)
	}
	metrics.ObserveDecision(string(d.Outcome), d.Reason)

	return d, err
}

func (g *Guard) decide(ctx context.Context, caller *model.Caller, required string) (Decision, error) {
	if required == "" {
		return Decision{OutcomePass, ReasonNoRequirement}, nil
	}
	if caller == nil || caller.UserID == uuid.Nil {
		return Decision{OutcomeDeny, ReasonNotAuthenticated}, ErrNotAuthenticated
	}

	user, err := g.users.FindByID(ctx, caller.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return Decision{OutcomeDeny, ReasonNotAuthenticated}, ErrNotAuthenticated
	}
	if err != nil {
		return Decision{OutcomeError, ReasonStoreError}, fmt.Errorf("load caller: %w", err)
	}

	role := user.Role
	if role == nil {
		return Decision{OutcomeDeny, ReasonNoRole}, ErrNoRoleAssigned
	}
	if !role.IsActive {
		return Decision{OutcomeDeny, ReasonRoleInactive}, ErrRoleInactive
	}

	if model.IsSuperRoleSlug(role.Slug) {
		return Decision{OutcomeAllow, ReasonSuperRole}, nil
	}
	if rbac.Check(role.Permissions.Grants(), required) {
		return Decision{OutcomeAllow, ReasonGranted}, nil
	}
	return Decision{OutcomeDeny, ReasonInsufficientPermissions}, ErrInsufficientPermissions
}
