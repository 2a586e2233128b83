package bootstrap

import (
	"context"
	"log"
	"time"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/infrastructure/database"
	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/infrastructure/persistence"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/constants"
)

// RecoverStaleWork cleans up state a previous process may have left
// behind: images stuck in analyzing and scheduled jobs still flagged as
// running. Both states are only ever transient while a worker is alive.
func RecoverStaleWork(ctx context.Context, db *database.MySQLConnection) error {
	images := persistence.NewImageRepository(db.DB())
	reset, err := images.ResetStaleAnalyzing(ctx)
	if err != nil {
		return err
	}
	if reset > 0 {
		log.Printf("🔄 Requeued %d images stuck in analysis", reset)
	}

	jobs := persistence.NewScheduledJobRepository(db.DB())
	cutoff := time.Now().Add(-constants.ScheduleMaxRuntimeMins * time.Minute)
	cleared, err := jobs.ClearStaleRunning(ctx, cutoff)
	if err != nil {
		return err
	}
	if cleared > 0 {
		log.Printf("🔄 Cleared %d stale running flags on scheduled jobs", cleared)
	}

	return nil
}
