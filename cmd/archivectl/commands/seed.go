package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/bootstrap"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create tables and seed system data",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := bootstrap.InitializeSchema(db); err != nil {
				return err
			}
			if err := bootstrap.SeedSystemData(cmd.Context(), db); err != nil {
				return err
			}
			fmt.Println("Seed complete.")
			return nil
		},
	}
}
