package main

import (
	"fmt"

	"taskhub-api/pkg/config"
	"taskhub-api/pkg/database"
	"taskhub-api/pkg/logger"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:   "taskctl",
	Short: "Administer a taskhub-api deployment",
	Long: `taskctl runs maintenance tasks against the taskhub-api database and
checks permissions the way API clients do.

Database commands read the same environment (and .env file) as the server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(resetPasswordCmd)
	rootCmd.AddCommand(canCmd)
}

// openDatabase loads configuration and returns a migrated connection.
func openDatabase() (*config.Config, *gorm.DB, error) {
	cfg, _, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	logger.InitLogger(cfg.LogLevel)

	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return nil, nil, fmt.Errorf("migrate database: %w", err)
	}
	return cfg, db, nil
}
