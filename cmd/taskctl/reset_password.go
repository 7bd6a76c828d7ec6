package main

import (
	"fmt"
	"strings"

	"taskhub-api/internal/model"
	"taskhub-api/internal/repository"

	"github.com/spf13/cobra"
)

var (
	resetEmail    string
	resetPassword string
)

var resetPasswordCmd = &cobra.Command{
	Use:   "reset-password",
	Short: "Set a user's password",
	Long: `Hashes the new password with bcrypt and stores it for the user.

Examples:
  # Restore the seeded admin account
  taskctl reset-password

  # Reset someone else
  taskctl reset-password --email jane@acme.test --password s3cret!`,
	Args: cobra.NoArgs,
	RunE: runResetPassword,
}

func init() {
	resetPasswordCmd.Flags().StringVar(&resetEmail, "email", "admin@example.com", "account email")
	resetPasswordCmd.Flags().StringVar(&resetPassword, "password", "admin123", "new password (min 6 characters)")
}

func runResetPassword(cmd *cobra.Command, _ []string) error {
	if len(resetPassword) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}

	_, db, err := openDatabase()
	if err != nil {
		return err
	}
	users := repository.NewUserRepo(db)

	user, err := users.FindByEmail(cmd.Context(), strings.ToLower(resetEmail))
	if err != nil {
		return fmt.Errorf("user %s: %w", resetEmail, err)
	}

	hashed := &model.User{}
	if err := hashed.SetPassword(resetPassword); err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := users.UpdatePassword(cmd.Context(), user.ID, hashed.Password); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	cmd.Printf("Password for %s has been reset\n", user.Email)
	return nil
}
