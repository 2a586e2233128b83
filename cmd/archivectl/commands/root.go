package commands

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/infrastructure/database"
)

var db *database.MySQLConnection

func Execute() error {
	root := &cobra.Command{
		Use:           "archivectl",
		Short:         "Motive Archive administration CLI",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env
			// Try multiple paths
			paths := []string{".env", "../.env", "../../.env"}
			for _, p := range paths {
				if err := godotenv.Load(p); err == nil {
					break
				}
			}

			conn, err := database.GetInstance()
			if err != nil {
				return err
			}
			db = conn
			return nil
		},
	}

	root.AddCommand(seedCmd(), wipeCmd(), createAdminCmd(), migrateMetadataCmd())
	return root.Execute()
}
