package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/domain/models"
	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/infrastructure/persistence"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/auth"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/constants"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/utils"
)

func createAdminCmd() *cobra.Command {
	var email, password, name string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an additional admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !auth.IsValidEmail(email) {
				return fmt.Errorf("invalid email: %s", email)
			}
			if err := auth.ValidatePasswordStrength(password); err != nil {
				return err
			}

			users := persistence.NewUserRepository(db.DB())
			existing, err := users.GetByEmail(cmd.Context(), email)
			if err != nil {
				return err
			}
			if existing != nil {
				return fmt.Errorf("account %s already exists", email)
			}

			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}

			admin := &models.User{
				ID:           utils.GenerateID(),
				Email:        email,
				Name:         name,
				PasswordHash: hash,
				Role:         string(constants.RoleAdmin),
				IsActive:     true,
			}
			if err := users.Create(cmd.Context(), admin); err != nil {
				return err
			}

			fmt.Printf("Admin account created: %s\n", email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().StringVar(&name, "name", "Administrator", "display name")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}
