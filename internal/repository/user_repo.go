package repository

import (
	"context"

	"taskhub-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindInOrg(ctx context.Context, id, orgID uuid.UUID) (*model.User, error)
	ListByOrg(ctx context.Context, orgID uuid.UUID, page Page) ([]model.User, int64, error)
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, hashedPassword string) error
	Count(ctx context.Context) (int64, error)
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db}
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Preload("Role").Preload("Organization").Where("email = ?", email).First(&user).Error; err != nil {
		return nil, convertNotFoundError(err)
	}
	return &user, nil
}

func (r *userRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Preload("Role").Preload("Organization").First(&user, "id = ?", id).Error; err != nil {
		return nil, convertNotFoundError(err)
	}
	return &user, nil
}

func (r *userRepo) FindInOrg(ctx context.Context, id, orgID uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Preload("Role").
		Where("id = ? AND organization_id = ?", id, orgID).First(&user).Error; err != nil {
		return nil, convertNotFoundError(err)
	}
	return &user, nil
}

func (r *userRepo) ListByOrg(ctx context.Context, orgID uuid.UUID, page Page) ([]model.User, int64, error) {
	var users []model.User
	var total int64
	db := r.db.WithContext(ctx).Model(&model.User{}).Where("organization_id = ?", orgID).Session(&gorm.Session{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Preload("Role").Order("email ASC").Offset(page.Offset()).Limit(page.Limit).Find(&users).Error
	return users, total, err
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return convertUniqueError(r.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error)
}

// Update saves the user's own columns; loaded associations are not written.
func (r *userRepo) Update(ctx context.Context, user *model.User) error {
	return convertUniqueError(r.db.WithContext(ctx).Omit(clause.Associations).Save(user).Error)
}

func (r *userRepo) UpdatePassword(ctx context.Context, userID uuid.UUID, hashedPassword string) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Update("password", hashedPassword)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.User{}, "id = ?", id).Error
}

func (r *userRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Count(&n).Error
	return n, err
}
