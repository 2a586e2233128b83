package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/domain/models"
	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/infrastructure/cloudflare"
	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/infrastructure/persistence"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/constants"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/errors"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/utils"
)

// MetadataMigrationService backfills image_metadata rows from the storage
// provider. Images are processed in small concurrent batches with a pause
// between batches; a 429 from the provider parks that image until the next
// run instead of retrying inside the batch.
type MetadataMigrationService struct {
	images   *persistence.ImageRepository
	metadata *persistence.ImageMetadataRepository
	client   *cloudflare.Client

	mu      sync.Mutex
	running bool
}

// NewMetadataMigrationService creates a new MetadataMigrationService
func NewMetadataMigrationService(images *persistence.ImageRepository, metadata *persistence.ImageMetadataRepository, client *cloudflare.Client) *MetadataMigrationService {
	return &MetadataMigrationService{
		images:   images,
		metadata: metadata,
		client:   client,
	}
}

// MetadataMigrationReport summarises one migration run
type MetadataMigrationReport struct {
	Total       int `json:"total"`
	Synced      int `json:"synced"`
	Skipped     int `json:"skipped"`
	RateLimited int `json:"rate_limited"`
	Failed      int `json:"failed"`
}

// Run migrates every stored image that has no metadata row yet. Only one
// run executes at a time; the admin endpoint and the scheduled job share
// this guard.
func (s *MetadataMigrationService) Run(ctx context.Context) (*MetadataMigrationReport, error) {
	if s.client == nil || !s.client.Configured() {
		return nil, errors.NewUnavailableError("Metadata migration", "storage provider credentials not set")
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, errors.NewInUseError("Metadata migration", "a run is already in progress")
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	images, err := s.images.ListStored(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}

	report := &MetadataMigrationReport{Total: len(images)}
	if len(images) == 0 {
		log.Printf("✅ Metadata migration: nothing to sync")
		return report, nil
	}
	log.Printf("🔄 Metadata migration: %d images to sync", len(images))

	batchSize := constants.MetadataBatchSize
	for start := 0; start < len(images); start += batchSize {
		end := start + batchSize
		if end > len(images) {
			end = len(images)
		}
		s.processBatch(ctx, images[start:end], report)

		// Pause between batches, not after the last one
		if end < len(images) {
			select {
			case <-ctx.Done():
				log.Printf("⚠️ Metadata migration stopped early: %v", ctx.Err())
				return report, ctx.Err()
			case <-time.After(constants.MetadataBatchDelaySecs * time.Second):
			}
		}
	}

	log.Printf("✅ Metadata migration: %d synced, %d skipped, %d rate limited, %d failed",
		report.Synced, report.Skipped, report.RateLimited, report.Failed)
	return report, nil
}

// batchOutcome is what one worker learned about one image
type batchOutcome struct {
	image  *models.Image
	record *cloudflare.ImageRecord
	skip   bool
	rated  bool
	failed bool
}

func (s *MetadataMigrationService) processBatch(ctx context.Context, batch []*models.Image, report *MetadataMigrationReport) {
	outcomes := make([]batchOutcome, len(batch))

	g, fetchCtx := errgroup.WithContext(ctx)
	for i, img := range batch {
		g.Go(func() error {
			outcomes[i] = s.fetchOne(fetchCtx, img)
			return nil
		})
	}
	_ = g.Wait()

	// Writes stay sequential so the report and the DB see a stable order
	for _, out := range outcomes {
		switch {
		case out.skip:
			report.Skipped++
		case out.rated:
			report.RateLimited++
		case out.failed:
			report.Failed++
		case out.record != nil:
			m := &models.ImageMetadata{
				ID:         utils.GenerateID(),
				ImageID:    out.image.ID,
				ProviderID: out.record.ID,
				UploadedAt: out.record.Uploaded,
				Variants:   out.record.Variants,
				Raw:        out.record.Raw,
			}
			if err := s.metadata.Create(ctx, m); err != nil {
				log.Printf("❌ Failed to store metadata for image %s: %v", out.image.ID, err)
				report.Failed++
				continue
			}
			report.Synced++
		}
	}
}

func (s *MetadataMigrationService) fetchOne(ctx context.Context, img *models.Image) batchOutcome {
	providerID, ok := cloudflare.ExtractImageID(img.URL)
	if !ok {
		log.Printf("⚠️ Could not extract provider ID from URL: %s", img.URL)
		return batchOutcome{image: img, skip: true}
	}

	// Re-check despite the prefiltered listing: a concurrent upload path or
	// an earlier batch of this run may have written the row already.
	exists, err := s.metadata.ExistsByImageID(ctx, img.ID)
	if err != nil {
		log.Printf("❌ Metadata existence check failed for image %s: %v", img.ID, err)
		return batchOutcome{image: img, failed: true}
	}
	if exists {
		return batchOutcome{image: img, skip: true}
	}

	record, err := s.client.GetImage(ctx, providerID)
	if err == cloudflare.ErrRateLimited {
		log.Printf("⚠️ Rate limit hit for image %s", providerID)
		select {
		case <-ctx.Done():
		case <-time.After(constants.MetadataRateLimitWaitSec * time.Second):
		}
		return batchOutcome{image: img, rated: true}
	}
	if err != nil {
		log.Printf("❌ Failed to fetch metadata for image %s: %v", providerID, err)
		return batchOutcome{image: img, failed: true}
	}
	return batchOutcome{image: img, record: record}
}

// Running reports whether a migration run is in flight
func (s *MetadataMigrationService) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
