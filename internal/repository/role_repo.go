package repository

import (
	"context"

	"taskhub-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RoleRepository interface {
	FindAll(ctx context.Context, page Page) ([]model.Role, int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Role, error)
	FindBySlug(ctx context.Context, slug string) (*model.Role, error)
	Create(ctx context.Context, role *model.Role) error
	Update(ctx context.Context, role *model.Role) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountUsers(ctx context.Context, id uuid.UUID) (int64, error)
	UpdatePermissionsBySlug(ctx context.Context, slug string, grants model.GrantMap) (int64, error)
}

type roleRepo struct {
	db *gorm.DB
}

func NewRoleRepo(db *gorm.DB) RoleRepository {
	return &roleRepo{db: db}
}

func (r *roleRepo) FindAll(ctx context.Context, page Page) ([]model.Role, int64, error) {
	var roles []model.Role
	var total int64
	db := r.db.WithContext(ctx).Model(&model.Role{}).Session(&gorm.Session{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Order("name ASC").Offset(page.Offset()).Limit(page.Limit).Find(&roles).Error
	return roles, total, err
}

func (r *roleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Role, error) {
	var role model.Role
	if err := r.db.WithContext(ctx).First(&role, "id = ?", id).Error; err != nil {
		return nil, convertNotFoundError(err)
	}
	return &role, nil
}

func (r *roleRepo) FindBySlug(ctx context.Context, slug string) (*model.Role, error) {
	var role model.Role
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&role).Error; err != nil {
		return nil, convertNotFoundError(err)
	}
	return &role, nil
}

func (r *roleRepo) Create(ctx context.Context, role *model.Role) error {
	return convertUniqueError(r.db.WithContext(ctx).Create(role).Error)
}

func (r *roleRepo) Update(ctx context.Context, role *model.Role) error {
	return convertUniqueError(r.db.WithContext(ctx).Save(role).Error)
}

func (r *roleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Role{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *roleRepo) CountUsers(ctx context.Context, id uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Where("role_id = ?", id).Count(&n).Error
	return n, err
}

// UpdatePermissionsBySlug replaces the grant map of every role with slug and
// returns how many rows matched.
func (r *roleRepo) UpdatePermissionsBySlug(ctx context.Context, slug string, grants model.GrantMap) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Role{}).Where("slug = ?", slug).Update("permissions", grants)
	return res.RowsAffected, res.Error
}
