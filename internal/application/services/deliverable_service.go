package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/domain/models"
	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/infrastructure/persistence"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/constants"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/errors"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/utils"
)

// DeliverableService manages production deliverables and the legacy
// media-type migration
type DeliverableService struct {
	deliverables *persistence.DeliverableRepository
	mediaTypes   *persistence.MediaTypeRepository
	cars         *persistence.CarRepository
	tx           *TransactionManager
	outbox       *OutboxService
}

// NewDeliverableService creates a new DeliverableService
func NewDeliverableService(deliverables *persistence.DeliverableRepository, mediaTypes *persistence.MediaTypeRepository, cars *persistence.CarRepository, tx *TransactionManager, outbox *OutboxService) *DeliverableService {
	return &DeliverableService{deliverables: deliverables, mediaTypes: mediaTypes, cars: cars, tx: tx, outbox: outbox}
}

// CreateDeliverableRequest carries the fields accepted on creation
type CreateDeliverableRequest struct {
	CarID           *string    `json:"car_id"`
	Title           string     `json:"title"`
	Description     *string    `json:"description"`
	Platform        string     `json:"platform"`
	MediaTypeID     *string    `json:"media_type_id"`
	AspectRatio     *string    `json:"aspect_ratio"`
	DurationSeconds *int       `json:"duration_seconds"`
	EditStatus      *string    `json:"edit_status"`
	Editor          *string    `json:"editor"`
	ReleaseDate     *time.Time `json:"release_date"`
	ScheduledPostAt *time.Time `json:"scheduled_post_at"`
	DropboxLink     *string    `json:"dropbox_link"`
	SocialMediaLink *string    `json:"social_media_link"`
}

func isValidPlatform(s string) bool {
	switch constants.DeliverablePlatform(s) {
	case constants.PlatformInstagram, constants.PlatformYouTube, constants.PlatformBringATrailer,
		constants.PlatformWebsite, constants.PlatformEmail, constants.PlatformOther:
		return true
	}
	return false
}

func isValidEditStatus(s string) bool {
	switch constants.EditStatus(s) {
	case constants.EditNotStarted, constants.EditInProgress, constants.EditReview, constants.EditDone:
		return true
	}
	return false
}

// CreateDeliverable records a new piece of production work
func (s *DeliverableService) CreateDeliverable(ctx context.Context, req CreateDeliverableRequest) (*models.Deliverable, error) {
	if req.Title == "" {
		return nil, errors.NewValidationError("title", "Title is required")
	}
	if req.Platform == "" {
		return nil, errors.NewValidationError("platform", "Platform is required")
	}
	if !isValidPlatform(req.Platform) {
		return nil, errors.NewValidationError("platform", fmt.Sprintf("Unknown platform: %s", req.Platform))
	}
	if req.DurationSeconds != nil && *req.DurationSeconds < 0 {
		return nil, errors.NewValidationError("duration_seconds", "Duration cannot be negative")
	}

	editStatus := string(constants.EditNotStarted)
	if req.EditStatus != nil && *req.EditStatus != "" {
		if !isValidEditStatus(*req.EditStatus) {
			return nil, errors.NewValidationError("edit_status", fmt.Sprintf("Unknown edit status: %s", *req.EditStatus))
		}
		editStatus = *req.EditStatus
	}

	if req.CarID != nil && *req.CarID != "" {
		car, err := s.cars.GetByID(ctx, *req.CarID)
		if err != nil {
			return nil, fmt.Errorf("database error: %w", err)
		}
		if car == nil {
			return nil, errors.NewNotFoundError("Car", *req.CarID)
		}
	}
	if req.MediaTypeID != nil && *req.MediaTypeID != "" {
		mt, err := s.mediaTypes.GetByID(ctx, *req.MediaTypeID)
		if err != nil {
			return nil, fmt.Errorf("database error: %w", err)
		}
		if mt == nil {
			return nil, errors.NewNotFoundError("Media type", *req.MediaTypeID)
		}
	}

	d := &models.Deliverable{
		ID:              utils.GenerateID(),
		CarID:           req.CarID,
		Title:           req.Title,
		Description:     req.Description,
		Platform:        req.Platform,
		MediaTypeID:     req.MediaTypeID,
		AspectRatio:     req.AspectRatio,
		DurationSeconds: req.DurationSeconds,
		EditStatus:      editStatus,
		Editor:          req.Editor,
		ReleaseDate:     req.ReleaseDate,
		ScheduledPostAt: req.ScheduledPostAt,
		DropboxLink:     req.DropboxLink,
		SocialMediaLink: req.SocialMediaLink,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	if err := s.deliverables.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to create deliverable: %w", err)
	}

	log.Printf("✅ Deliverable created: %s (%s)", d.Title, d.Platform)
	return d, nil
}

// GetDeliverable fetches a single deliverable
func (s *DeliverableService) GetDeliverable(ctx context.Context, id string) (*models.Deliverable, error) {
	d, err := s.deliverables.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, errors.NewNotFoundError("Deliverable", id)
	}
	return d, nil
}

// ListDeliverables returns deliverables matching the filter
func (s *DeliverableService) ListDeliverables(ctx context.Context, f persistence.DeliverableFilter) ([]*models.Deliverable, error) {
	if f.EditStatus != "" && !isValidEditStatus(f.EditStatus) {
		return nil, errors.NewValidationError("edit_status", fmt.Sprintf("Unknown edit status: %s", f.EditStatus))
	}
	if f.Platform != "" && !isValidPlatform(f.Platform) {
		return nil, errors.NewValidationError("platform", fmt.Sprintf("Unknown platform: %s", f.Platform))
	}
	return s.deliverables.List(ctx, f)
}

// UpdateDeliverableRequest carries the PATCH fields
type UpdateDeliverableRequest struct {
	CarID           *string    `json:"car_id"`
	Title           *string    `json:"title"`
	Description     *string    `json:"description"`
	Platform        *string    `json:"platform"`
	MediaTypeID     *string    `json:"media_type_id"`
	AspectRatio     *string    `json:"aspect_ratio"`
	DurationSeconds *int       `json:"duration_seconds"`
	EditStatus      *string    `json:"edit_status"`
	Editor          *string    `json:"editor"`
	ReleaseDate     *time.Time `json:"release_date"`
	ScheduledPostAt *time.Time `json:"scheduled_post_at"`
	DropboxLink     *string    `json:"dropbox_link"`
	SocialMediaLink *string    `json:"social_media_link"`
}

// UpdateDeliverable applies a partial update. An edit status change is
// committed together with its deliverable.status_changed event.
func (s *DeliverableService) UpdateDeliverable(ctx context.Context, id string, req UpdateDeliverableRequest, actorID string) (*models.Deliverable, error) {
	d, err := s.deliverables.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, errors.NewNotFoundError("Deliverable", id)
	}

	updates := make(map[string]interface{})
	if req.CarID != nil {
		if *req.CarID == "" {
			updates["car_id"] = nil
		} else {
			car, err := s.cars.GetByID(ctx, *req.CarID)
			if err != nil {
				return nil, fmt.Errorf("database error: %w", err)
			}
			if car == nil {
				return nil, errors.NewNotFoundError("Car", *req.CarID)
			}
			updates["car_id"] = *req.CarID
		}
	}
	if req.Title != nil && *req.Title != "" {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = nullable(*req.Description)
	}
	if req.Platform != nil {
		if !isValidPlatform(*req.Platform) {
			return nil, errors.NewValidationError("platform", fmt.Sprintf("Unknown platform: %s", *req.Platform))
		}
		updates["platform"] = *req.Platform
	}
	if req.MediaTypeID != nil {
		if *req.MediaTypeID == "" {
			updates["media_type_id"] = nil
		} else {
			mt, err := s.mediaTypes.GetByID(ctx, *req.MediaTypeID)
			if err != nil {
				return nil, fmt.Errorf("database error: %w", err)
			}
			if mt == nil {
				return nil, errors.NewNotFoundError("Media type", *req.MediaTypeID)
			}
			updates["media_type_id"] = *req.MediaTypeID
		}
	}
	if req.AspectRatio != nil {
		updates["aspect_ratio"] = nullable(*req.AspectRatio)
	}
	if req.DurationSeconds != nil {
		if *req.DurationSeconds < 0 {
			return nil, errors.NewValidationError("duration_seconds", "Duration cannot be negative")
		}
		updates["duration_seconds"] = *req.DurationSeconds
	}
	if req.Editor != nil {
		updates["editor"] = nullable(*req.Editor)
	}
	if req.ReleaseDate != nil {
		updates["release_date"] = *req.ReleaseDate
	}
	if req.ScheduledPostAt != nil {
		updates["scheduled_post_at"] = *req.ScheduledPostAt
	}
	if req.DropboxLink != nil {
		updates["dropbox_link"] = nullable(*req.DropboxLink)
	}
	if req.SocialMediaLink != nil {
		updates["social_media_link"] = nullable(*req.SocialMediaLink)
	}

	statusChanged := false
	if req.EditStatus != nil && *req.EditStatus != d.EditStatus {
		if !isValidEditStatus(*req.EditStatus) {
			return nil, errors.NewValidationError("edit_status", fmt.Sprintf("Unknown edit status: %s", *req.EditStatus))
		}
		updates["edit_status"] = *req.EditStatus
		statusChanged = true
	}

	if len(updates) == 0 {
		return d, nil
	}

	if statusChanged {
		err = s.tx.WithTransaction(func(tx *sql.Tx) error {
			txCtx := s.tx.InjectTx(ctx, tx)
			if err := s.deliverables.Update(txCtx, id, updates); err != nil {
				return fmt.Errorf("failed to update deliverable: %w", err)
			}
			return s.outbox.EnqueueEventTx(txCtx, tx, constants.EventDeliverableStatus, EventPayload{
				Entity:   "deliverable",
				EntityID: id,
				ActorID:  actorID,
				Detail: map[string]interface{}{
					"title": d.Title,
					"from":  d.EditStatus,
					"to":    *req.EditStatus,
				},
			})
		})
		if err != nil {
			return nil, err
		}
		log.Printf("🔄 Deliverable %s edit status: %s -> %s", id, d.EditStatus, *req.EditStatus)
	} else if err := s.deliverables.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("failed to update deliverable: %w", err)
	}

	return s.deliverables.GetByID(ctx, id)
}

// DeleteDeliverable soft deletes a deliverable
func (s *DeliverableService) DeleteDeliverable(ctx context.Context, id string) error {
	d, err := s.deliverables.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if d == nil {
		return errors.NewNotFoundError("Deliverable", id)
	}
	if err := s.deliverables.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete deliverable: %w", err)
	}
	log.Printf("🗑️ Deliverable deleted: %s", id)
	return nil
}

// MediaTypeMigrationReport summarises one run of the legacy type migration
type MediaTypeMigrationReport struct {
	Migrated  int      `json:"migrated"`
	Skipped   int      `json:"skipped"`
	Unmatched []string `json:"unmatched"`
}

// MigrateMediaTypes maps legacy free-text deliverable types onto media type
// references by case-insensitive name. Matches to inactive media types are
// skipped; unmatched type strings are reported once each.
func (s *DeliverableService) MigrateMediaTypes(ctx context.Context) (*MediaTypeMigrationReport, error) {
	legacy, err := s.deliverables.FindWithLegacyType(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load legacy deliverables: %w", err)
	}

	report := &MediaTypeMigrationReport{Unmatched: []string{}}
	cache := make(map[string]*models.MediaType)
	seen := make(map[string]bool)

	for _, d := range legacy {
		name := strings.TrimSpace(*d.Type)
		key := strings.ToLower(name)

		mt, ok := cache[key]
		if !ok {
			mt, err = s.mediaTypes.GetByNameInsensitive(ctx, name)
			if err != nil {
				return nil, fmt.Errorf("failed to look up media type %q: %w", name, err)
			}
			cache[key] = mt
		}

		switch {
		case mt == nil:
			if !seen[key] {
				seen[key] = true
				report.Unmatched = append(report.Unmatched, name)
			}
		case !mt.IsActive:
			report.Skipped++
		default:
			if err := s.deliverables.SetMediaType(ctx, d.ID, mt.ID); err != nil {
				log.Printf("⚠️ Failed to migrate deliverable %s: %v", d.ID, err)
				report.Skipped++
				continue
			}
			report.Migrated++
		}
	}

	log.Printf("✅ Media type migration: %d migrated, %d skipped, %d unmatched",
		report.Migrated, report.Skipped, len(report.Unmatched))
	return report, nil
}
