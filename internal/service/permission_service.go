package service

import (
	"context"
	"fmt"

	"taskhub-api/internal/manifest"
	"taskhub-api/internal/metrics"
	"taskhub-api/internal/model"
	"taskhub-api/internal/repository"
	"taskhub-api/internal/ws"
	"taskhub-api/pkg/rbac"

	"go.uber.org/zap"
)

type SyncStats struct {
	ModulesCreated  int   `json:"modules_created"`
	ModulesUpdated  int   `json:"modules_updated"`
	FeaturesCreated int   `json:"features_created"`
	FeaturesUpdated int   `json:"features_updated"`
	TotalModules    int64 `json:"total_modules"`
	TotalFeatures   int64 `json:"total_features"`
}

type SyncResult struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Stats   SyncStats `json:"stats"`
	Version string    `json:"version"`
}

type FeatureView struct {
	model.PermissionFeature
	PermissionKey string `json:"permission_key"`
}

type ModuleView struct {
	model.PermissionModule
	Features []FeatureView `json:"features"`
}

type PermissionService interface {
	SyncPermissions(ctx context.Context) (*SyncResult, error)
	GetStructure(ctx context.Context) ([]ModuleView, error)
	AllKeys(ctx context.Context) ([]string, error)
}

type permissionService struct {
	dir      string
	permRepo repository.PermissionRepository
	roleRepo repository.RoleRepository
	hub      *ws.Hub
	log      *zap.Logger
}

func NewPermissionService(dir string, permRepo repository.PermissionRepository, roleRepo repository.RoleRepository, hub *ws.Hub, log *zap.Logger) PermissionService {
	return &permissionService{
		dir:      dir,
		permRepo: permRepo,
		roleRepo: roleRepo,
		hub:      hub,
		log:      log.Named("PermissionSync"),
	}
}

// SyncPermissions reconciles the store with the manifest directory. Modules
// are upserted one transaction at a time; system-role grant maps are then
// overwritten from the keys the store holds after the upserts.
func (s *permissionService) SyncPermissions(ctx context.Context) (res *SyncResult, err error) {
	defer func() { metrics.ObserveSync(err) }()

	m, err := manifest.Load(s.dir)
	if err != nil {
		s.log.Error("failed to load permission manifest", zap.String("dir", s.dir), zap.Error(err))
		return nil, err
	}

	var stats SyncStats
	for i, def := range m.Modules {
		mod := &model.PermissionModule{
			ModuleID:    def.ModuleID,
			ModuleName:  orDefault(def.ModuleName, def.ModuleID),
			Description: def.Description,
			SortOrder:   i,
		}
		features := make([]model.PermissionFeature, 0, len(def.Features))
		for _, f := range def.Features {
			features = append(features, model.PermissionFeature{
				ModuleID:       def.ModuleID,
				FeatureID:      f.FeatureID,
				FeatureName:    orDefault(f.FeatureName, f.FeatureID),
				Description:    f.Description,
				DefaultEnabled: f.DefaultEnabled,
			})
		}

		up, err := s.permRepo.UpsertModule(ctx, mod, features)
		if err != nil {
			s.log.Error("module upsert failed", zap.String("module", def.ModuleID), zap.Error(err))
			return nil, fmt.Errorf("sync module %s: %w", def.ModuleID, err)
		}
		if up.ModuleCreated {
			stats.ModulesCreated++
		} else {
			stats.ModulesUpdated++
		}
		stats.FeaturesCreated += up.FeaturesCreated
		stats.FeaturesUpdated += up.FeaturesUpdated
	}

	if stats.TotalModules, err = s.permRepo.CountModules(ctx); err != nil {
		return nil, err
	}
	if stats.TotalFeatures, err = s.permRepo.CountFeatures(ctx); err != nil {
		return nil, err
	}

	if m.SystemRoles != nil {
		if err := s.applySystemRoles(ctx, m.SystemRoles); err != nil {
			return nil, err
		}
	}

	s.log.Info("permissions synchronized",
		zap.String("version", m.Metadata.Version),
		zap.Int("modules_created", stats.ModulesCreated),
		zap.Int("features_created", stats.FeaturesCreated),
		zap.Int64("total_features", stats.TotalFeatures),
	)
	s.hub.Publish("permissions_synced", stats)

	return &SyncResult{
		Success: true,
		Message: "Permissions synchronized",
		Stats:   stats,
		Version: m.Metadata.Version,
	}, nil
}

func (s *permissionService) applySystemRoles(ctx context.Context, defs []manifest.SystemRoleDef) error {
	keys, err := s.permRepo.AllKeys(ctx)
	if err != nil {
		return err
	}
	for _, def := range defs {
		grants := rbac.Expand(def.DefaultPermissions, keys)
		n, err := s.roleRepo.UpdatePermissionsBySlug(ctx, def.RoleID, model.GrantMap(grants))
		if err != nil {
			return fmt.Errorf("apply system role %s: %w", def.RoleID, err)
		}
		s.log.Debug("system role grants applied",
			zap.String("role", def.RoleID),
			zap.Int("grants", len(grants)),
			zap.Int64("roles_matched", n),
		)
	}
	return nil
}

// GetStructure returns modules in sort order, each with its features.
func (s *permissionService) GetStructure(ctx context.Context) ([]ModuleView, error) {
	modules, err := s.permRepo.ListModules(ctx)
	if err != nil {
		return nil, err
	}
	features, err := s.permRepo.ListFeatures(ctx)
	if err != nil {
		return nil, err
	}

	byModule := make(map[string][]FeatureView, len(modules))
	for _, f := range features {
		byModule[f.ModuleID] = append(byModule[f.ModuleID], FeatureView{PermissionFeature: f, PermissionKey: f.Key()})
	}

	out := make([]ModuleView, 0, len(modules))
	for _, m := range modules {
		fs := byModule[m.ModuleID]
		if fs == nil {
			fs = []FeatureView{}
		}
		out = append(out, ModuleView{PermissionModule: m, Features: fs})
	}
	return out, nil
}

func (s *permissionService) AllKeys(ctx context.Context) ([]string, error) {
	return s.permRepo.AllKeys(ctx)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
