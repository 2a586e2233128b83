package bootstrap

import (
	"context"
	_ "embed"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/domain/models"
	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/infrastructure/database"
	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/infrastructure/persistence"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/auth"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/constants"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/utils"
)

//go:embed media_types.yaml
var mediaTypesYAML []byte

type mediaTypeSeed struct {
	Name            string   `yaml:"name"`
	Description     string   `yaml:"description"`
	AspectRatios    []string `yaml:"aspect_ratios"`
	DefaultPlatform string   `yaml:"default_platform"`
	SortOrder       int      `yaml:"sort_order"`
}

// SeedSystemData provisions the fixed rows a fresh database needs: the
// first admin account, the scheduled job definitions and the default
// media type catalogue. Idempotent, runs on every boot.
func SeedSystemData(ctx context.Context, db *database.MySQLConnection) error {
	if err := seedAdminUser(ctx, persistence.NewUserRepository(db.DB())); err != nil {
		return err
	}
	if err := seedScheduledJobs(ctx, persistence.NewScheduledJobRepository(db.DB())); err != nil {
		return err
	}
	if err := seedMediaTypes(ctx, persistence.NewMediaTypeRepository(db.DB())); err != nil {
		return err
	}
	return nil
}

func seedAdminUser(ctx context.Context, users *persistence.UserRepository) error {
	count, err := users.CountAdmins(ctx)
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if count > 0 {
		return nil
	}

	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@archive.local"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	defaulted := false
	if password == "" {
		password = "Archive123"
		defaulted = true
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := &models.User{
		ID:           utils.GenerateID(),
		Email:        email,
		Name:         "Administrator",
		PasswordHash: hash,
		Role:         string(constants.RoleAdmin),
		IsActive:     true,
	}
	if err := users.Create(ctx, admin); err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}

	log.Printf("✅ Seeded admin account: %s", email)
	if defaulted {
		log.Println("⚠️ Default admin password in use, change it after first login")
	}
	return nil
}

func seedScheduledJobs(ctx context.Context, jobs *persistence.ScheduledJobRepository) error {
	defs := []*models.ScheduledJob{
		{
			ID:       utils.GenerateID(),
			Name:     "event-reminders",
			JobType:  string(constants.JobEventReminders),
			CronExpr: "*/5 * * * *",
			IsActive: true,
		},
		{
			ID:       utils.GenerateID(),
			Name:     "outbox-cleanup",
			JobType:  string(constants.JobOutboxCleanup),
			CronExpr: "0 3 * * *",
			IsActive: true,
		},
		{
			ID:       utils.GenerateID(),
			Name:     "metadata-sync",
			JobType:  string(constants.JobMetadataSync),
			CronExpr: "30 2 * * *",
			IsActive: true,
		},
	}

	// Upsert keys on the unique name, so admin tuning of cron or
	// timezone survives restarts.
	for _, job := range defs {
		if err := jobs.Upsert(ctx, job); err != nil {
			return fmt.Errorf("seed job %s: %w", job.Name, err)
		}
	}

	log.Printf("⏰ Scheduled job definitions in place (%d)", len(defs))
	return nil
}

func seedMediaTypes(ctx context.Context, repo *persistence.MediaTypeRepository) error {
	var seeds []mediaTypeSeed
	if err := yaml.Unmarshal(mediaTypesYAML, &seeds); err != nil {
		return fmt.Errorf("parse media type seeds: %w", err)
	}

	created := 0
	for _, seed := range seeds {
		existing, err := repo.GetByNameInsensitive(ctx, seed.Name)
		if err != nil {
			return fmt.Errorf("look up media type %s: %w", seed.Name, err)
		}
		if existing != nil {
			continue
		}

		mt := &models.MediaType{
			ID:           utils.GenerateID(),
			Name:         seed.Name,
			AspectRatios: seed.AspectRatios,
			SortOrder:    seed.SortOrder,
			IsActive:     true,
		}
		if seed.Description != "" {
			desc := seed.Description
			mt.Description = &desc
		}
		if seed.DefaultPlatform != "" {
			platform := seed.DefaultPlatform
			mt.DefaultPlatform = &platform
		}

		if err := repo.Create(ctx, mt); err != nil {
			return fmt.Errorf("seed media type %s: %w", seed.Name, err)
		}
		created++
	}

	if created > 0 {
		log.Printf("✅ Seeded %d media types", created)
	}
	return nil
}
