package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/constants"
)

func wipeCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "wipe",
		Short: "Drop every archive table",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to wipe without --yes")
			}

			fmt.Println("⚠️  Wiping database...")

			// Reverse creation order so nothing references a dropped table
			tables := constants.AllTables()
			for i := len(tables) - 1; i >= 0; i-- {
				table := tables[i]
				if _, err := db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS `%s`", table)); err != nil {
					fmt.Printf("Failed to drop table %s: %v\n", table, err)
				} else {
					fmt.Printf("Dropped table: %s\n", table)
				}
			}

			fmt.Println("✅ Database wiped successfully.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the wipe")
	return cmd
}
