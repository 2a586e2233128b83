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

type GalleryRepository struct {
	db *sql.DB
}

func NewGalleryRepository(db *sql.DB) *GalleryRepository {
	return &GalleryRepository{db: db}
}

const galleryColumns = "id, name, description, thumbnail_image_id, created_at, updated_at"

func scanGallery(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.Gallery, error) {
	var g models.Gallery
	var description, thumbnail sql.NullString
	var createdRaw, updatedRaw []byte

	err := scanner.Scan(&g.ID, &g.Name, &description, &thumbnail, &createdRaw, &updatedRaw)
	if err != nil {
		return nil, err
	}

	g.Description = strPtr(description)
	g.ThumbnailImageID = strPtr(thumbnail)
	g.CreatedAt = parseTime(createdRaw)
	g.UpdatedAt = parseTime(updatedRaw)
	return &g, nil
}

// Create inserts a new gallery
func (r *GalleryRepository) Create(ctx context.Context, g *models.Gallery) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, description, thumbnail_image_id, is_deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, 0, NOW(), NOW())
	`, constants.TableGalleries)

	_, err := r.db.ExecContext(ctx, query, g.ID, g.Name, g.Description, g.ThumbnailImageID)
	return err
}

// GetByID fetches a gallery, nil if absent or soft-deleted
func (r *GalleryRepository) GetByID(ctx context.Context, id string) (*models.Gallery, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ? AND is_deleted = 0 LIMIT 1", galleryColumns, constants.TableGalleries)
	g, err := scanGallery(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// FindAll lists galleries with their image counts, newest first
func (r *GalleryRepository) FindAll(ctx context.Context) ([]*models.Gallery, error) {
	query := fmt.Sprintf(`
		SELECT g.id, g.name, g.description, g.thumbnail_image_id, g.created_at, g.updated_at, COUNT(gi.image_id)
		FROM %s g
		LEFT JOIN %s gi ON gi.gallery_id = g.id
		WHERE g.is_deleted = 0
		GROUP BY g.id, g.name, g.description, g.thumbnail_image_id, g.created_at, g.updated_at
		ORDER BY g.created_at DESC
	`, constants.TableGalleries, constants.TableGalleryImages)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	galleries := make([]*models.Gallery, 0)
	for rows.Next() {
		var g models.Gallery
		var description, thumbnail sql.NullString
		var createdRaw, updatedRaw []byte

		if err := rows.Scan(&g.ID, &g.Name, &description, &thumbnail, &createdRaw, &updatedRaw, &g.ImageCount); err != nil {
			continue
		}

		g.Description = strPtr(description)
		g.ThumbnailImageID = strPtr(thumbnail)
		g.CreatedAt = parseTime(createdRaw)
		g.UpdatedAt = parseTime(updatedRaw)
		galleries = append(galleries, &g)
	}
	return galleries, rows.Err()
}

// SearchLike matches galleries by name or description
func (r *GalleryRepository) SearchLike(ctx context.Context, q string, limit int) ([]*models.Gallery, error) {
	pattern := "%" + q + "%"
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE is_deleted = 0 AND (name LIKE ? OR description LIKE ?)
		ORDER BY name ASC
		LIMIT ?
	`, galleryColumns, constants.TableGalleries)

	rows, err := r.db.QueryContext(ctx, query, pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	galleries := make([]*models.Gallery, 0)
	for rows.Next() {
		g, err := scanGallery(rows)
		if err != nil {
			continue
		}
		galleries = append(galleries, g)
	}
	return galleries, rows.Err()
}

// Update applies a column map to a gallery
func (r *GalleryRepository) Update(ctx context.Context, id string, updates map[string]interface{}) error {
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
		constants.TableGalleries, strings.Join(setClauses, ", "))
	args = append(args, id)

	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// SoftDelete hides a gallery; memberships stay behind for restore
func (r *GalleryRepository) SoftDelete(ctx context.Context, id string) error {
	query := fmt.Sprintf("UPDATE %s SET is_deleted = 1, updated_at = NOW() WHERE id = ?", constants.TableGalleries)
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// GetMemberships returns a gallery's entries ordered by position
func (r *GalleryRepository) GetMemberships(ctx context.Context, galleryID string) ([]*models.GalleryImage, error) {
	query := fmt.Sprintf(`
		SELECT gallery_id, image_id, position FROM %s
		WHERE gallery_id = ? ORDER BY position ASC
	`, constants.TableGalleryImages)

	rows, err := r.db.QueryContext(ctx, query, galleryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*models.GalleryImage, 0)
	for rows.Next() {
		var gi models.GalleryImage
		if err := rows.Scan(&gi.GalleryID, &gi.ImageID, &gi.Position); err != nil {
			continue
		}
		entries = append(entries, &gi)
	}
	return entries, rows.Err()
}

// GetImages returns a gallery's images ordered by position
func (r *GalleryRepository) GetImages(ctx context.Context, galleryID string) ([]*models.Image, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s i
		INNER JOIN %s gi ON gi.image_id = i.id
		WHERE gi.gallery_id = ?
		ORDER BY gi.position ASC
	`, prefixColumns(imageColumns, "i"), constants.TableImages, constants.TableGalleryImages)

	rows, err := r.db.QueryContext(ctx, query, galleryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := make([]*models.Image, 0)
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			continue
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// ReplaceMemberships swaps a gallery's membership rows for the given ordered set.
// Runs on an Executor so the service can wrap it in a transaction.
func (r *GalleryRepository) ReplaceMemberships(ctx context.Context, exec Executor, galleryID string, imageIDs []string) error {
	deleteQuery := fmt.Sprintf("DELETE FROM %s WHERE gallery_id = ?", constants.TableGalleryImages)
	if _, err := exec.ExecContext(ctx, deleteQuery, galleryID); err != nil {
		return fmt.Errorf("failed to clear gallery memberships: %w", err)
	}

	if len(imageIDs) == 0 {
		return nil
	}

	insertQuery := fmt.Sprintf("INSERT INTO %s (gallery_id, image_id, position) VALUES (?, ?, ?)", constants.TableGalleryImages)
	for i, imageID := range imageIDs {
		if _, err := exec.ExecContext(ctx, insertQuery, galleryID, imageID, i); err != nil {
			return fmt.Errorf("failed to insert gallery membership: %w", err)
		}
	}
	return nil
}

// TouchUpdatedAt bumps the gallery timestamp after a membership change
func (r *GalleryRepository) TouchUpdatedAt(ctx context.Context, exec Executor, galleryID string) error {
	query := fmt.Sprintf("UPDATE %s SET updated_at = NOW() WHERE id = ?", constants.TableGalleries)
	_, err := exec.ExecContext(ctx, query, galleryID)
	return err
}

// ImageCount counts a gallery's memberships
func (r *GalleryRepository) ImageCount(ctx context.Context, galleryID string) (int, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE gallery_id = ?", constants.TableGalleryImages)
	var count int
	err := r.db.QueryRowContext(ctx, query, galleryID).Scan(&count)
	return count, err
}

// GalleriesContainingImage lists the galleries an image appears in
func (r *GalleryRepository) GalleriesContainingImage(ctx context.Context, imageID string) ([]string, error) {
	query := fmt.Sprintf("SELECT gallery_id FROM %s WHERE image_id = ?", constants.TableGalleryImages)
	rows, err := r.db.QueryContext(ctx, query, imageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// RemoveImageEverywhere drops an image from all galleries, closing position gaps per gallery.
// Memberships are read up front so the writes can run inside a caller-held transaction.
func (r *GalleryRepository) RemoveImageEverywhere(ctx context.Context, exec Executor, imageID string) error {
	galleryIDs, err := r.GalleriesContainingImage(ctx, imageID)
	if err != nil {
		return err
	}

	survivors := make(map[string][]string, len(galleryIDs))
	for _, galleryID := range galleryIDs {
		entries, err := r.GetMemberships(ctx, galleryID)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if entry.ImageID == imageID {
				continue
			}
			survivors[galleryID] = append(survivors[galleryID], entry.ImageID)
		}
	}

	deleteQuery := fmt.Sprintf("DELETE FROM %s WHERE image_id = ?", constants.TableGalleryImages)
	if _, err := exec.ExecContext(ctx, deleteQuery, imageID); err != nil {
		return err
	}

	updateQuery := fmt.Sprintf("UPDATE %s SET position = ? WHERE gallery_id = ? AND image_id = ?", constants.TableGalleryImages)
	for _, galleryID := range galleryIDs {
		for i, survivorID := range survivors[galleryID] {
			if _, err := exec.ExecContext(ctx, updateQuery, i, galleryID, survivorID); err != nil {
				return err
			}
		}
	}
	return nil
}
