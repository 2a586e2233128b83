package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/domain/models"
	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/infrastructure/persistence"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/errors"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/utils"
)

// MediaTypeService manages the catalog of production media formats
type MediaTypeService struct {
	mediaTypes   *persistence.MediaTypeRepository
	deliverables *persistence.DeliverableRepository
}

// NewMediaTypeService creates a new MediaTypeService
func NewMediaTypeService(mediaTypes *persistence.MediaTypeRepository, deliverables *persistence.DeliverableRepository) *MediaTypeService {
	return &MediaTypeService{mediaTypes: mediaTypes, deliverables: deliverables}
}

// MediaTypeRequest carries the writable fields of a media type
type MediaTypeRequest struct {
	Name            string   `json:"name"`
	Description     *string  `json:"description"`
	AspectRatios    []string `json:"aspect_ratios"`
	DefaultPlatform *string  `json:"default_platform"`
	SortOrder       *int     `json:"sort_order"`
	IsActive        *bool    `json:"is_active"`
}

// CreateMediaType adds a format to the catalog
func (s *MediaTypeService) CreateMediaType(ctx context.Context, req MediaTypeRequest) (*models.MediaType, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errors.NewValidationError("name", "Name is required")
	}
	if req.DefaultPlatform != nil && *req.DefaultPlatform != "" && !isValidPlatform(*req.DefaultPlatform) {
		return nil, errors.NewValidationError("default_platform", fmt.Sprintf("Unknown platform: %s", *req.DefaultPlatform))
	}

	conflict, err := s.mediaTypes.NameConflict(ctx, name, "")
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if conflict {
		return nil, errors.NewConflictError("Media type", "name", name)
	}

	ratios := req.AspectRatios
	if ratios == nil {
		ratios = []string{}
	}
	sortOrder := 0
	if req.SortOrder != nil {
		sortOrder = *req.SortOrder
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	mt := &models.MediaType{
		ID:              utils.GenerateID(),
		Name:            name,
		Description:     req.Description,
		AspectRatios:    ratios,
		DefaultPlatform: req.DefaultPlatform,
		SortOrder:       sortOrder,
		IsActive:        active,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	if err := s.mediaTypes.Create(ctx, mt); err != nil {
		return nil, fmt.Errorf("failed to create media type: %w", err)
	}

	log.Printf("✅ Media type created: %s", mt.Name)
	return mt, nil
}

// GetMediaType fetches a single media type
func (s *MediaTypeService) GetMediaType(ctx context.Context, id string) (*models.MediaType, error) {
	mt, err := s.mediaTypes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if mt == nil {
		return nil, errors.NewNotFoundError("Media type", id)
	}
	return mt, nil
}

// ListMediaTypes returns the catalog in sort order
func (s *MediaTypeService) ListMediaTypes(ctx context.Context, activeOnly bool) ([]*models.MediaType, error) {
	return s.mediaTypes.FindAll(ctx, activeOnly)
}

// UpdateMediaType applies a partial update
func (s *MediaTypeService) UpdateMediaType(ctx context.Context, id string, req MediaTypeRequest) (*models.MediaType, error) {
	mt, err := s.mediaTypes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if mt == nil {
		return nil, errors.NewNotFoundError("Media type", id)
	}

	updates := make(map[string]interface{})
	if name := strings.TrimSpace(req.Name); name != "" && name != mt.Name {
		conflict, err := s.mediaTypes.NameConflict(ctx, name, id)
		if err != nil {
			return nil, fmt.Errorf("database error: %w", err)
		}
		if conflict {
			return nil, errors.NewConflictError("Media type", "name", name)
		}
		updates["name"] = name
	}
	if req.Description != nil {
		updates["description"] = nullable(*req.Description)
	}
	if req.AspectRatios != nil {
		updates["aspect_ratios"] = req.AspectRatios
	}
	if req.DefaultPlatform != nil {
		if *req.DefaultPlatform != "" && !isValidPlatform(*req.DefaultPlatform) {
			return nil, errors.NewValidationError("default_platform", fmt.Sprintf("Unknown platform: %s", *req.DefaultPlatform))
		}
		updates["default_platform"] = nullable(*req.DefaultPlatform)
	}
	if req.SortOrder != nil {
		updates["sort_order"] = *req.SortOrder
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) == 0 {
		return mt, nil
	}
	if err := s.mediaTypes.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("failed to update media type: %w", err)
	}
	return s.mediaTypes.GetByID(ctx, id)
}

// DeleteMediaType removes a format that no live deliverable references
func (s *MediaTypeService) DeleteMediaType(ctx context.Context, id string) error {
	mt, err := s.mediaTypes.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if mt == nil {
		return errors.NewNotFoundError("Media type", id)
	}

	count, err := s.deliverables.CountByMediaType(ctx, id)
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if count > 0 {
		return errors.NewInUseError("Media type", fmt.Sprintf("%d deliverables reference it", count))
	}

	if err := s.mediaTypes.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete media type: %w", err)
	}
	log.Printf("🗑️ Media type deleted: %s", mt.Name)
	return nil
}
