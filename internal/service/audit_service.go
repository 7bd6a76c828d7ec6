package service

import (
	"context"

	"taskhub-api/internal/model"
	"taskhub-api/internal/repository"

	"go.uber.org/zap"
)

// AuditEntry describes one mutation to record.
type AuditEntry struct {
	Action     string
	Resource   string
	ResourceID string
	Details    map[string]interface{}
	IPAddress  string
	UserAgent  string
}

type AuditService interface {
	Log(ctx context.Context, caller *model.Caller, entry AuditEntry)
	List(ctx context.Context, caller *model.Caller, page repository.Page) (*Paged[model.AuditLog], error)
}

type auditService struct {
	repo repository.AuditRepository
	log  *zap.Logger
}

func NewAuditService(repo repository.AuditRepository, log *zap.Logger) AuditService {
	return &auditService{repo: repo, log: log.Named("AuditService")}
}

// Log writes an audit record. The mutation it describes has already
// committed, so a failed write is logged rather than returned.
func (s *auditService) Log(ctx context.Context, caller *model.Caller, entry AuditEntry) {
	rec := &model.AuditLog{
		Action:    entry.Action,
		Resource:  entry.Resource,
		Details:   entry.Details,
		IPAddress: optional(entry.IPAddress),
		UserAgent: optional(entry.UserAgent),
	}
	if entry.ResourceID != "" {
		id := entry.ResourceID
		rec.ResourceID = &id
	}
	if caller != nil {
		accountID, orgID := caller.UserID, caller.OrganizationID
		rec.AccountID = &accountID
		rec.OrganizationID = &orgID
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		s.log.Error("failed to write audit log",
			zap.String("action", entry.Action),
			zap.String("resource", entry.Resource),
			zap.String("resource_id", entry.ResourceID),
			zap.Error(err),
		)
		return
	}
	s.log.Debug("audit log written", zap.String("action", entry.Action), zap.String("resource", entry.Resource))
}

func (s *auditService) List(ctx context.Context, caller *model.Caller, page repository.Page) (*Paged[model.AuditLog], error) {
	items, total, err := s.repo.ListByOrg(ctx, caller.OrganizationID, page)
	if err != nil {
		return nil, err
	}
	return &Paged[model.AuditLog]{Items: items, Total: total, Page: page.Page, Limit: page.Limit}, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
