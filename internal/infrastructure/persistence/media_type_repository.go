package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/domain/models"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/constants"
)

type MediaTypeRepository struct {
	db *sql.DB
}

func NewMediaTypeRepository(db *sql.DB) *MediaTypeRepository {
	return &MediaTypeRepository{db: db}
}

const mediaTypeColumns = "id, name, description, aspect_ratios, default_platform, sort_order, is_active, created_at, updated_at"

func scanMediaType(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.MediaType, error) {
	var mt models.MediaType
	var description, defaultPlatform sql.NullString
	var aspectRatiosRaw []byte
	var isActive interface{}
	var createdRaw, updatedRaw []byte

	err := scanner.Scan(
		&mt.ID, &mt.Name, &description, &aspectRatiosRaw, &defaultPlatform,
		&mt.SortOrder, &isActive, &createdRaw, &updatedRaw)
	if err != nil {
		return nil, err
	}

	mt.Description = strPtr(description)
	mt.DefaultPlatform = strPtr(defaultPlatform)
	mt.IsActive = toBool(isActive)
	mt.CreatedAt = parseTime(createdRaw)
	mt.UpdatedAt = parseTime(updatedRaw)

	mt.AspectRatios = []string{}
	if len(aspectRatiosRaw) > 0 {
		if err := json.Unmarshal(aspectRatiosRaw, &mt.AspectRatios); err != nil {
			log.Printf("⚠️ Failed to parse aspect ratios for media type %s: %v", mt.ID, err)
		}
	}
	return &mt, nil
}

// Create inserts a new media type
func (r *MediaTypeRepository) Create(ctx context.Context, mt *models.MediaType) error {
	ratiosJSON, err := json.Marshal(mt.AspectRatios)
	if err != nil {
		return fmt.Errorf("failed to marshal aspect ratios: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, description, aspect_ratios, default_platform, sort_order, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, NOW(), NOW())
	`, constants.TableMediaTypes)

	_, err = r.db.ExecContext(ctx, query,
		mt.ID, mt.Name, mt.Description, ratiosJSON, mt.DefaultPlatform, mt.SortOrder, mt.IsActive)
	return err
}

// GetByID fetches a media type, nil if absent
func (r *MediaTypeRepository) GetByID(ctx context.Context, id string) (*models.MediaType, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ? LIMIT 1", mediaTypeColumns, constants.TableMediaTypes)
	mt, err := scanMediaType(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return mt, nil
}

// GetByNameInsensitive matches a media type name ignoring case, nil if absent
func (r *MediaTypeRepository) GetByNameInsensitive(ctx context.Context, name string) (*models.MediaType, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE LOWER(name) = LOWER(?) LIMIT 1", mediaTypeColumns, constants.TableMediaTypes)
	mt, err := scanMediaType(r.db.QueryRowContext(ctx, query, name))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return mt, nil
}

// FindAll lists media types in catalog order
func (r *MediaTypeRepository) FindAll(ctx context.Context, activeOnly bool) ([]*models.MediaType, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY sort_order ASC, name ASC", mediaTypeColumns, constants.TableMediaTypes)
	if activeOnly {
		query = fmt.Sprintf("SELECT %s FROM %s WHERE is_active = 1 ORDER BY sort_order ASC, name ASC", mediaTypeColumns, constants.TableMediaTypes)
	}

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	mediaTypes := make([]*models.MediaType, 0)
	for rows.Next() {
		mt, err := scanMediaType(rows)
		if err != nil {
			continue
		}
		mediaTypes = append(mediaTypes, mt)
	}
	return mediaTypes, rows.Err()
}

// Update applies a column map; "aspect_ratios" values are marshalled to JSON
func (r *MediaTypeRepository) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}

	setClauses := []string{}
	args := []interface{}{}

	for k, v := range updates {
		if k == "aspect_ratios" {
			ratiosJSON, err := json.Marshal(v)
			if err != nil {
				return fmt.Errorf("failed to marshal aspect ratios: %w", err)
			}
			v = ratiosJSON
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = ?", k))
		args = append(args, v)
	}

	setClauses = append(setClauses, "updated_at = ?")
	args = append(args, time.Now())

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", constants.TableMediaTypes, strings.Join(setClauses, ", "))
	args = append(args, id)

	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// Delete removes a media type
func (r *MediaTypeRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", constants.TableMediaTypes)
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// NameConflict reports whether another media type already uses the name
func (r *MediaTypeRepository) NameConflict(ctx context.Context, name, excludeID string) (bool, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE LOWER(name) = LOWER(?) AND id != ?", constants.TableMediaTypes)
	var count int
	if err := r.db.QueryRowContext(ctx, query, name, excludeID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}
