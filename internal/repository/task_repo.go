package repository

import (
	"context"

	"taskhub-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TaskFilter narrows and orders a task listing. SortBy is one of "title",
// "status", "category", "created_at"; anything else gives board order.
type TaskFilter struct {
	Status   string
	Category string
	SortBy   string
	Desc     bool
}

type TaskRepository interface {
	NextOrder(ctx context.Context, orgID uuid.UUID, status string) (int, error)
	Create(ctx context.Context, task *model.Task) error
	FindInOrg(ctx context.Context, id, orgID uuid.UUID, withUsers bool) (*model.Task, error)
	List(ctx context.Context, orgID uuid.UUID, filter TaskFilter) ([]model.Task, error)
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
	Renumber(ctx context.Context, orgID uuid.UUID, status string) error
}

type taskRepo struct {
	db *gorm.DB
}

func NewTaskRepo(db *gorm.DB) TaskRepository {
	return &taskRepo{db}
}

// NextOrder returns the position after the last task of the lane.
func (r *taskRepo) NextOrder(ctx context.Context, orgID uuid.UUID, status string) (int, error) {
	var next int
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Select("COALESCE(MAX(position), -1) + 1").
		Where("organization_id = ? AND status = ?", orgID, status).
		Scan(&next).Error
	return next, err
}

func (r *taskRepo) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(task).Error
}

func (r *taskRepo) FindInOrg(ctx context.Context, id, orgID uuid.UUID, withUsers bool) (*model.Task, error) {
	var task model.Task
	db := r.db.WithContext(ctx)
	if withUsers {
		db = db.Preload("CreatedBy").Preload("Assignee")
	}
	if err := db.Where("id = ? AND organization_id = ?", id, orgID).First(&task).Error; err != nil {
		return nil, convertNotFoundError(err)
	}
	return &task, nil
}

func (r *taskRepo) List(ctx context.Context, orgID uuid.UUID, filter TaskFilter) ([]model.Task, error) {
	db := r.db.WithContext(ctx).Where("organization_id = ?", orgID)
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		db = db.Where("category = ?", filter.Category)
	}

	dir := "ASC"
	if filter.Desc {
		dir = "DESC"
	}
	switch filter.SortBy {
	case "title":
		db = db.Order("title " + dir)
	case "status":
		db = db.Order("status " + dir).Order("position ASC")
	case "category":
		db = db.Order("category " + dir).Order("position ASC")
	case "created_at":
		db = db.Order("created_at " + dir)
	default:
		db = db.Order("CASE status WHEN 'todo' THEN 1 WHEN 'in_progress' THEN 2 WHEN 'done' THEN 3 ELSE 4 END").
			Order("position ASC").
			Order("created_at ASC")
	}

	var tasks []model.Task
	if err := db.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepo) Update(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(task).Error
}

func (r *taskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Task{}, "id = ?", id).Error
}

// Renumber rewrites the lane's positions to 0..n-1, keeping current order.
func (r *taskRepo) Renumber(ctx context.Context, orgID uuid.UUID, status string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lane []model.Task
		if err := tx.Where("organization_id = ? AND status = ?", orgID, status).
			Order("position ASC").Order("created_at ASC").Find(&lane).Error; err != nil {
			return err
		}
		for i := range lane {
			if lane[i].Order == i {
				continue
			}
			if err := tx.Model(&model.Task{}).Where("id = ?", lane[i].ID).Update("position", i).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
