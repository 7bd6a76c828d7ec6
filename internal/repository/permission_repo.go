package repository

import (
	"context"
	"errors"

	"taskhub-api/internal/model"

	"gorm.io/gorm"
)

// ModuleUpsert reports what an UpsertModule call wrote.
type ModuleUpsert struct {
	ModuleCreated   bool
	FeaturesCreated int
	FeaturesUpdated int
}

type PermissionRepository interface {
	UpsertModule(ctx context.Context, module *model.PermissionModule, features []model.PermissionFeature) (*ModuleUpsert, error)
	ListModules(ctx context.Context) ([]model.PermissionModule, error)
	ListFeatures(ctx context.Context) ([]model.PermissionFeature, error)
	AllKeys(ctx context.Context) ([]string, error)
	CountModules(ctx context.Context) (int64, error)
	CountFeatures(ctx context.Context) (int64, error)
}

type permissionRepo struct {
	db *gorm.DB
}

func NewPermissionRepo(db *gorm.DB) PermissionRepository {
	return &permissionRepo{db}
}

// UpsertModule writes a module and its features in one transaction, keyed by
// module_id and (module_id, feature_id).
func (r *permissionRepo) UpsertModule(ctx context.Context, module *model.PermissionModule, features []model.PermissionFeature) (*ModuleUpsert, error) {
	res := &ModuleUpsert{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.PermissionModule
		err := tx.Where("module_id = ?", module.ModuleID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(module).Error; err != nil {
				return err
			}
			res.ModuleCreated = true
		case err != nil:
			return err
		default:
			module.ID = existing.ID
			if err := tx.Model(&existing).Updates(map[string]interface{}{
				"module_name": module.ModuleName,
				"description": module.Description,
				"sort_order":  module.SortOrder,
			}).Error; err != nil {
				return err
			}
		}

		for i := range features {
			f := &features[i]
			f.ModuleID = module.ModuleID

			var cur model.PermissionFeature
			err := tx.Where("module_id = ? AND feature_id = ?", f.ModuleID, f.FeatureID).First(&cur).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				if err := tx.Create(f).Error; err != nil {
					return err
				}
				res.FeaturesCreated++
			case err != nil:
				return err
			default:
				f.ID = cur.ID
				if err := tx.Model(&cur).Updates(map[string]interface{}{
					"feature_name":    f.FeatureName,
					"description":     f.Description,
					"default_enabled": f.DefaultEnabled,
				}).Error; err != nil {
					return err
				}
				res.FeaturesUpdated++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *permissionRepo) ListModules(ctx context.Context) ([]model.PermissionModule, error) {
	var modules []model.PermissionModule
	if err := r.db.WithContext(ctx).Order("sort_order ASC").Order("module_id ASC").Find(&modules).Error; err != nil {
		return nil, err
	}
	return modules, nil
}

func (r *permissionRepo) ListFeatures(ctx context.Context) ([]model.PermissionFeature, error) {
	var features []model.PermissionFeature
	if err := r.db.WithContext(ctx).Order("module_id ASC").Order("id ASC").Find(&features).Error; err != nil {
		return nil, err
	}
	return features, nil
}

// AllKeys returns every "module.feature" key currently stored.
func (r *permissionRepo) AllKeys(ctx context.Context) ([]string, error) {
	features, err := r.ListFeatures(ctx)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(features))
	for _, f := range features {
		if f.ModuleID == "" || f.FeatureID == "" {
			continue
		}
		keys = append(keys, f.Key())
	}
	return keys, nil
}

func (r *permissionRepo) CountModules(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.PermissionModule{}).Count(&n).Error
	return n, err
}

func (r *permissionRepo) CountFeatures(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.PermissionFeature{}).Count(&n).Error
	return n, err
}
