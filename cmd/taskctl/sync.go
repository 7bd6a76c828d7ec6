package main

import (
	"taskhub-api/internal/repository"
	"taskhub-api/internal/service"
	"taskhub-api/pkg/logger"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile the permission catalog with the manifest directory",
	Long: `Reads PERMISSIONS_DIR (metadata.json, modules/, system-roles/) and
upserts every module and feature. System roles named in system-roles/ get
their permissions rewritten from the manifest.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, _ []string) error {
	cfg, db, err := openDatabase()
	if err != nil {
		return err
	}

	svc := service.NewPermissionService(
		cfg.PermissionsDir,
		repository.NewPermissionRepo(db),
		repository.NewRoleRepo(db),
		nil,
		logger.Log,
	)
	res, err := svc.SyncPermissions(cmd.Context())
	if err != nil {
		return err
	}

	cmd.Printf("%s (version %s)\n", res.Message, res.Version)
	cmd.Printf("  modules:  %d created, %d total\n", res.Stats.ModulesCreated, res.Stats.TotalModules)
	cmd.Printf("  features: %d created, %d updated, %d total\n",
		res.Stats.FeaturesCreated, res.Stats.FeaturesUpdated, res.Stats.TotalFeatures)
	return nil
}
