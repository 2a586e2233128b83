package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/domain/models"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/constants"
)

type ImageMetadataRepository struct {
	db *sql.DB
}

func NewImageMetadataRepository(db *sql.DB) *ImageMetadataRepository {
	return &ImageMetadataRepository{db: db}
}

const imageMetadataColumns = "id, image_id, provider_id, uploaded_at, variants, raw, created_at"

func scanImageMetadata(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.ImageMetadata, error) {
	var m models.ImageMetadata
	var uploadedAt sql.NullTime
	var variantsRaw []byte
	var raw sql.NullString
	var createdRaw []byte

	err := scanner.Scan(&m.ID, &m.ImageID, &m.ProviderID, &uploadedAt, &variantsRaw, &raw, &createdRaw)
	if err != nil {
		return nil, err
	}

	m.UploadedAt = timePtr(uploadedAt)
	if raw.Valid {
		m.Raw = raw.String
	}
	m.CreatedAt = parseTime(createdRaw)

	m.Variants = []string{}
	if len(variantsRaw) > 0 {
		if err := json.Unmarshal(variantsRaw, &m.Variants); err != nil {
			log.Printf("⚠️ Failed to parse variants for image metadata %s: %v", m.ID, err)
		}
	}
	return &m, nil
}

// Create inserts a provider metadata record for an image
func (r *ImageMetadataRepository) Create(ctx context.Context, m *models.ImageMetadata) error {
	variantsJSON, err := json.Marshal(m.Variants)
	if err != nil {
		return fmt.Errorf("failed to marshal variants: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, image_id, provider_id, uploaded_at, variants, raw, created_at)
		VALUES (?, ?, ?, ?, ?, ?, NOW())
	`, constants.TableImageMetadata)

	_, err = executorFor(ctx, r.db).ExecContext(ctx, query, m.ID, m.ImageID, m.ProviderID, m.UploadedAt, variantsJSON, m.Raw)
	return err
}

// GetByImageID fetches the metadata record for an image, nil if absent
func (r *ImageMetadataRepository) GetByImageID(ctx context.Context, imageID string) (*models.ImageMetadata, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE image_id = ? LIMIT 1", imageMetadataColumns, constants.TableImageMetadata)
	m, err := scanImageMetadata(r.db.QueryRowContext(ctx, query, imageID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ExistsByImageID reports whether an image already has provider metadata
func (r *ImageMetadataRepository) ExistsByImageID(ctx context.Context, imageID string) (bool, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE image_id = ?", constants.TableImageMetadata)
	var count int
	if err := r.db.QueryRowContext(ctx, query, imageID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// Delete removes the metadata record for an image
func (r *ImageMetadataRepository) Delete(ctx context.Context, imageID string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE image_id = ?", constants.TableImageMetadata)
	_, err := executorFor(ctx, r.db).ExecContext(ctx, query, imageID)
	return err
}
