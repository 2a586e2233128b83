package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/application/services"
	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/infrastructure/cloudflare"
	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/infrastructure/persistence"
)

func migrateMetadataCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate-metadata",
		Short: "Backfill image metadata from the storage provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			images := persistence.NewImageRepository(db.DB())
			metadata := persistence.NewImageMetadataRepository(db.DB())
			migration := services.NewMetadataMigrationService(images, metadata, cloudflare.NewClientFromEnv())

			report, err := migration.Run(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("Migration complete: %d total, %d synced, %d skipped, %d rate-limited, %d failed\n",
				report.Total, report.Synced, report.Skipped, report.RateLimited, report.Failed)
			return nil
		},
	}
}
