package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/domain/models"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/constants"
)

type DeliverableRepository struct {
	db *sql.DB
}

func NewDeliverableRepository(db *sql.DB) *DeliverableRepository {
	return &DeliverableRepository{db: db}
}

const deliverableColumns = `id, car_id, title, description, platform, type, media_type_id, aspect_ratio,
	duration_seconds, edit_status, editor, release_date, scheduled_post_at,
	dropbox_link, social_media_link, created_at, updated_at`

func scanDeliverable(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.Deliverable, error) {
	var d models.Deliverable
	var carID, description, legacyType, mediaTypeID, aspectRatio, editor sql.NullString
	var dropboxLink, socialMediaLink sql.NullString
	var durationSeconds sql.NullInt64
	var releaseDate, scheduledPostAt sql.NullTime
	var createdRaw, updatedRaw []byte

	err := scanner.Scan(
		&d.ID, &carID, &d.Title, &description, &d.Platform, &legacyType, &mediaTypeID, &aspectRatio,
		&durationSeconds, &d.EditStatus, &editor, &releaseDate, &scheduledPostAt,
		&dropboxLink, &socialMediaLink, &createdRaw, &updatedRaw)
	if err != nil {
		return nil, err
	}

	d.CarID = strPtr(carID)
	d.Description = strPtr(description)
	d.Type = strPtr(legacyType)
	d.MediaTypeID = strPtr(mediaTypeID)
	d.AspectRatio = strPtr(aspectRatio)
	d.DurationSeconds = intPtr(durationSeconds)
	d.Editor = strPtr(editor)
	d.ReleaseDate = timePtr(releaseDate)
	d.ScheduledPostAt = timePtr(scheduledPostAt)
	d.DropboxLink = strPtr(dropboxLink)
	d.SocialMediaLink = strPtr(socialMediaLink)
	d.CreatedAt = parseTime(createdRaw)
	d.UpdatedAt = parseTime(updatedRaw)
	return &d, nil
}

// Create inserts a new deliverable
func (r *DeliverableRepository) Create(ctx context.Context, d *models.Deliverable) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, car_id, title, description, platform, type, media_type_id, aspect_ratio,
			duration_seconds, edit_status, editor, release_date, scheduled_post_at,
			dropbox_link, social_media_link, is_deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, NOW(), NOW())
	`, constants.TableDeliverables)

	_, err := r.db.ExecContext(ctx, query,
		d.ID, d.CarID, d.Title, d.Description, d.Platform, d.Type, d.MediaTypeID, d.AspectRatio,
		d.DurationSeconds, d.EditStatus, d.Editor, d.ReleaseDate, d.ScheduledPostAt,
		d.DropboxLink, d.SocialMediaLink)
	return err
}

// GetByID fetches a deliverable, nil if absent or soft-deleted
func (r *DeliverableRepository) GetByID(ctx context.Context, id string) (*models.Deliverable, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ? AND is_deleted = 0 LIMIT 1", deliverableColumns, constants.TableDeliverables)
	d, err := scanDeliverable(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// DeliverableFilter narrows deliverable listings
type DeliverableFilter struct {
	CarID      string
	EditStatus string
	Platform   string
	Editor     string
}

// List returns deliverables matching the filter, upcoming schedule first
func (r *DeliverableRepository) List(ctx context.Context, f DeliverableFilter) ([]*models.Deliverable, error) {
	conditions := []string{"is_deleted = 0"}
	args := []interface{}{}

	if f.CarID != "" {
		conditions = append(conditions, "car_id = ?")
		args = append(args, f.CarID)
	}
	if f.EditStatus != "" {
		conditions = append(conditions, "edit_status = ?")
		args = append(args, f.EditStatus)
	}
	if f.Platform != "" {
		conditions = append(conditions, "platform = ?")
		args = append(args, f.Platform)
	}
	if f.Editor != "" {
		conditions = append(conditions, "editor = ?")
		args = append(args, f.Editor)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE %s
		ORDER BY scheduled_post_at IS NULL, scheduled_post_at ASC, created_at DESC
	`, deliverableColumns, constants.TableDeliverables, strings.Join(conditions, " AND "))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	deliverables := make([]*models.Deliverable, 0)
	for rows.Next() {
		d, err := scanDeliverable(rows)
		if err != nil {
			continue
		}
		deliverables = append(deliverables, d)
	}
	return deliverables, rows.Err()
}

// SearchLike matches deliverables by title or editor
func (r *DeliverableRepository) SearchLike(ctx context.Context, q string, limit int) ([]*models.Deliverable, error) {
	pattern := "%" + q + "%"
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE is_deleted = 0 AND (title LIKE ? OR editor LIKE ?)
		ORDER BY title ASC
		LIMIT ?
	`, deliverableColumns, constants.TableDeliverables)

	rows, err := r.db.QueryContext(ctx, query, pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	deliverables := make([]*models.Deliverable, 0)
	for rows.Next() {
		d, err := scanDeliverable(rows)
		if err != nil {
			continue
		}
		deliverables = append(deliverables, d)
	}
	return deliverables, rows.Err()
}

// FindWithLegacyType returns live deliverables still carrying a free-text type
// and no media type reference
func (r *DeliverableRepository) FindWithLegacyType(ctx context.Context) ([]*models.Deliverable, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE is_deleted = 0 AND type IS NOT NULL AND type != '' AND media_type_id IS NULL
		ORDER BY created_at ASC
	`, deliverableColumns, constants.TableDeliverables)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	deliverables := make([]*models.Deliverable, 0)
	for rows.Next() {
		d, err := scanDeliverable(rows)
		if err != nil {
			continue
		}
		deliverables = append(deliverables, d)
	}
	return deliverables, rows.Err()
}

// SetMediaType links a deliverable to a catalog media type
func (r *DeliverableRepository) SetMediaType(ctx context.Context, id, mediaTypeID string) error {
	query := fmt.Sprintf("UPDATE %s SET media_type_id = ?, updated_at = NOW() WHERE id = ?", constants.TableDeliverables)
	_, err := r.db.ExecContext(ctx, query, mediaTypeID, id)
	return err
}

// CountByMediaType counts live deliverables referencing a media type
func (r *DeliverableRepository) CountByMediaType(ctx context.Context, mediaTypeID string) (int, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE media_type_id = ? AND is_deleted = 0", constants.TableDeliverables)
	var count int
	err := r.db.QueryRowContext(ctx, query, mediaTypeID).Scan(&count)
	return count, err
}

// Update applies a column map to a deliverable
func (r *DeliverableRepository) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}

	setClauses := []string{}
	args := []interface{}{}

	for k, v := range updates {
		setClauses = append(setClauses, fmt.Sprintf("%s = ?", k))
		args = append(args, v)
	}

	setClauses = append(setClauses, "updated_at = ?")
	args = append(args, time.Now())

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ? AND is_deleted = 0",
		constants.TableDeliverables, strings.Join(setClauses, ", "))
	args = append(args, id)

	_, err := executorFor(ctx, r.db).ExecContext(ctx, query, args...)
	return err
}

// SoftDelete hides a deliverable
func (r *DeliverableRepository) SoftDelete(ctx context.Context, id string) error {
	query := fmt.Sprintf("UPDATE %s SET is_deleted = 1, updated_at = NOW() WHERE id = ?", constants.TableDeliverables)
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
