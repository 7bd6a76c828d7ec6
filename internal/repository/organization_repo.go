package repository

import (
	"context"
	"errors"

	"taskhub-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrganizationRepository interface {
	Create(ctx context.Context, org *model.Organization) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Organization, error)
	FindSuper(ctx context.Context) (*model.Organization, error)
	FindByName(ctx context.Context, name string) (*model.Organization, error)
	FindOldest(ctx context.Context) (*model.Organization, error)
	MarkSuper(ctx context.Context, id uuid.UUID) error
}

type organizationRepo struct {
	db *gorm.DB
}

func NewOrganizationRepo(db *gorm.DB) OrganizationRepository {
	return &organizationRepo{db}
}

func (r *organizationRepo) Create(ctx context.Context, org *model.Organization) error {
	return r.db.WithContext(ctx).Create(org).Error
}

func (r *organizationRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Organization, error) {
	var org model.Organization
	if err := r.db.WithContext(ctx).First(&org, "id = ?", id).Error; err != nil {
		return nil, convertNotFoundError(err)
	}
	return &org, nil
}

// FindSuper returns the super organization, or nil when none is marked.
func (r *organizationRepo) FindSuper(ctx context.Context) (*model.Organization, error) {
	var org model.Organization
	err := r.db.WithContext(ctx).Where("is_super = ?", true).Order("created_at ASC").First(&org).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *organizationRepo) FindByName(ctx context.Context, name string) (*model.Organization, error) {
	var org model.Organization
	if err := r.db.WithContext(ctx).Where("name = ?", name).Order("created_at ASC").First(&org).Error; err != nil {
		return nil, convertNotFoundError(err)
	}
	return &org, nil
}

func (r *organizationRepo) FindOldest(ctx context.Context) (*model.Organization, error) {
	var org model.Organization
	if err := r.db.WithContext(ctx).Order("created_at ASC").First(&org).Error; err != nil {
		return nil, convertNotFoundError(err)
	}
	return &org, nil
}

func (r *organizationRepo) MarkSuper(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Organization{}).Where("id = ?", id).Update("is_super", true).Error
}
