package repository

import (
	"context"

	"taskhub-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditRepository interface {
	Create(ctx context.Context, entry *model.AuditLog) error
	ListByOrg(ctx context.Context, orgID uuid.UUID, page Page) ([]model.AuditLog, int64, error)
}

type auditRepo struct {
	db *gorm.DB
}

func NewAuditRepo(db *gorm.DB) AuditRepository {
	return &auditRepo{db}
}

func (r *auditRepo) Create(ctx context.Context, entry *model.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *auditRepo) ListByOrg(ctx context.Context, orgID uuid.UUID, page Page) ([]model.AuditLog, int64, error) {
	var items []model.AuditLog
	var total int64
	db := r.db.WithContext(ctx).Model(&model.AuditLog{}).Where("organization_id = ?", orgID).Session(&gorm.Session{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Order("timestamp DESC").Offset(page.Offset()).Limit(page.Limit).Find(&items).Error
	return items, total, err
}
