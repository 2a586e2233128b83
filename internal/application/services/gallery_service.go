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
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/errors"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/utils"
)

// GalleryService owns curated image sets and their ordering
type GalleryService struct {
	galleries *persistence.GalleryRepository
	images    *persistence.ImageRepository
	tx        *TransactionManager
}

// NewGalleryService creates a new GalleryService
func NewGalleryService(galleries *persistence.GalleryRepository, images *persistence.ImageRepository, tx *TransactionManager) *GalleryService {
	return &GalleryService{galleries: galleries, images: images, tx: tx}
}

// GalleryRequest carries create/update fields for a gallery
type GalleryRequest struct {
	Name             string  `json:"name"`
	Description      *string `json:"description"`
	ThumbnailImageID *string `json:"thumbnail_image_id"`
}

// CreateGallery creates an empty gallery
func (s *GalleryService) CreateGallery(ctx context.Context, req GalleryRequest) (*models.Gallery, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, errors.NewValidationError("name", "Name is required")
	}

	gallery := &models.Gallery{
		ID:               utils.GenerateID(),
		Name:             strings.TrimSpace(req.Name),
		Description:      req.Description,
		ThumbnailImageID: req.ThumbnailImageID,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	if err := s.galleries.Create(ctx, gallery); err != nil {
		return nil, fmt.Errorf("failed to create gallery: %w", err)
	}

	log.Printf("✅ Gallery created: %s (%s)", gallery.Name, gallery.ID)
	return gallery, nil
}

// GetGallery fetches a gallery with its live image count
func (s *GalleryService) GetGallery(ctx context.Context, id string) (*models.Gallery, error) {
	gallery, err := s.galleries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if gallery == nil {
		return nil, errors.NewNotFoundError("Gallery", id)
	}

	count, err := s.galleries.ImageCount(ctx, id)
	if err != nil {
		return nil, err
	}
	gallery.ImageCount = count
	return gallery, nil
}

// ListGalleries returns all live galleries with their counts
func (s *GalleryService) ListGalleries(ctx context.Context) ([]*models.Gallery, error) {
	return s.galleries.FindAll(ctx)
}

// UpdateGallery applies name/description/thumbnail changes
func (s *GalleryService) UpdateGallery(ctx context.Context, id string, req GalleryRequest) (*models.Gallery, error) {
	gallery, err := s.galleries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if gallery == nil {
		return nil, errors.NewNotFoundError("Gallery", id)
	}

	updates := make(map[string]interface{})
	if strings.TrimSpace(req.Name) != "" {
		updates["name"] = strings.TrimSpace(req.Name)
	}
	if req.Description != nil {
		updates["description"] = nullable(*req.Description)
	}
	if req.ThumbnailImageID != nil {
		updates["thumbnail_image_id"] = nullable(*req.ThumbnailImageID)
	}

	if len(updates) > 0 {
		if err := s.galleries.Update(ctx, id, updates); err != nil {
			return nil, fmt.Errorf("failed to update gallery: %w", err)
		}
	}
	return s.GetGallery(ctx, id)
}

// DeleteGallery soft-deletes a gallery; images themselves are untouched
func (s *GalleryService) DeleteGallery(ctx context.Context, id string) error {
	gallery, err := s.galleries.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if gallery == nil {
		return errors.NewNotFoundError("Gallery", id)
	}

	if err := s.galleries.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete gallery: %w", err)
	}
	log.Printf("🗑️ Gallery deleted: %s (%s)", gallery.Name, id)
	return nil
}

// GetGalleryImages returns the gallery's images in display order
func (s *GalleryService) GetGalleryImages(ctx context.Context, id string) ([]*models.Image, error) {
	gallery, err := s.galleries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if gallery == nil {
		return nil, errors.NewNotFoundError("Gallery", id)
	}
	return s.galleries.GetImages(ctx, id)
}

// SetGalleryImages reconciles the gallery to exactly the desired image set.
// Images already present keep their relative order, new ones append in
// request order, and positions come out dense 0..n-1.
func (s *GalleryService) SetGalleryImages(ctx context.Context, galleryID string, imageIDs []string) ([]*models.Image, error) {
	gallery, err := s.galleries.GetByID(ctx, galleryID)
	if err != nil {
		return nil, err
	}
	if gallery == nil {
		return nil, errors.NewNotFoundError("Gallery", galleryID)
	}

	desired := dedupe(imageIDs)

	if len(desired) > 0 {
		found, err := s.images.ListByIDs(ctx, desired)
		if err != nil {
			return nil, fmt.Errorf("database error: %w", err)
		}
		if len(found) != len(desired) {
			known := make(map[string]bool, len(found))
			for _, img := range found {
				known[img.ID] = true
			}
			for _, id := range desired {
				if !known[id] {
					return nil, errors.NewValidationError("image_ids", fmt.Sprintf("Unknown image: %s", id))
				}
			}
		}
	}

	current, err := s.galleries.GetMemberships(ctx, galleryID)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	final := reconcileOrder(current, desired)

	err = s.tx.WithTransaction(func(tx *sql.Tx) error {
		txCtx := s.tx.InjectTx(ctx, tx)
		if err := s.galleries.ReplaceMemberships(txCtx, tx, galleryID, final); err != nil {
			return fmt.Errorf("failed to reconcile gallery images: %w", err)
		}
		return s.galleries.TouchUpdatedAt(txCtx, tx, galleryID)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("🔄 Gallery %s reconciled to %d images", galleryID, len(final))
	return s.galleries.GetImages(ctx, galleryID)
}

// MoveGalleryImage places one image at a new position, shifting the rest
func (s *GalleryService) MoveGalleryImage(ctx context.Context, galleryID, imageID string, position int) error {
	gallery, err := s.galleries.GetByID(ctx, galleryID)
	if err != nil {
		return err
	}
	if gallery == nil {
		return errors.NewNotFoundError("Gallery", galleryID)
	}

	current, err := s.galleries.GetMemberships(ctx, galleryID)
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}

	order := make([]string, 0, len(current))
	found := false
	for _, m := range current {
		if m.ImageID == imageID {
			found = true
			continue
		}
		order = append(order, m.ImageID)
	}
	if !found {
		return errors.NewNotFoundError("Gallery image", imageID)
	}

	if position < 0 {
		position = 0
	}
	if position > len(order) {
		position = len(order)
	}
	order = append(order[:position], append([]string{imageID}, order[position:]...)...)

	return s.tx.WithTransaction(func(tx *sql.Tx) error {
		txCtx := s.tx.InjectTx(ctx, tx)
		if err := s.galleries.ReplaceMemberships(txCtx, tx, galleryID, order); err != nil {
			return fmt.Errorf("failed to reorder gallery: %w", err)
		}
		return s.galleries.TouchUpdatedAt(txCtx, tx, galleryID)
	})
}

// reconcileOrder merges the desired set against the current ordering:
// survivors first in their existing order, then newcomers in request order.
func reconcileOrder(current []*models.GalleryImage, desired []string) []string {
	wanted := make(map[string]bool, len(desired))
	for _, id := range desired {
		wanted[id] = true
	}

	final := make([]string, 0, len(desired))
	surviving := make(map[string]bool)
	for _, m := range current {
		if wanted[m.ImageID] {
			final = append(final, m.ImageID)
			surviving[m.ImageID] = true
		}
	}
	for _, id := range desired {
		if !surviving[id] {
			final = append(final, id)
		}
	}
	return final
}

// dedupe keeps first occurrences, preserving order
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
