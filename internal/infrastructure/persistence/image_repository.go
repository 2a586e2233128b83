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

type ImageRepository struct {
	db *sql.DB
}

func NewImageRepository(db *sql.DB) *ImageRepository {
	return &ImageRepository{db: db}
}

const imageColumns = `id, car_id, filename, path, url, width, height, size_bytes, mime_type,
	storage_status, analysis_status, angle, view, movement, tod, caption, analysis_error,
	created_at, updated_at`

func scanImage(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.Image, error) {
	var img models.Image
	var carID, angle, view, movement, tod, caption, analysisErr sql.NullString
	var createdRaw, updatedRaw []byte

	err := scanner.Scan(
		&img.ID, &carID, &img.Filename, &img.Path, &img.URL, &img.Width, &img.Height, &img.SizeBytes,
		&img.MimeType, &img.StorageStatus, &img.AnalysisStatus, &angle, &view, &movement, &tod,
		&caption, &analysisErr, &createdRaw, &updatedRaw)
	if err != nil {
		return nil, err
	}

	img.CarID = strPtr(carID)
	img.Angle = strPtr(angle)
	img.View = strPtr(view)
	img.Movement = strPtr(movement)
	img.TimeOfDay = strPtr(tod)
	img.Caption = strPtr(caption)
	img.AnalysisError = strPtr(analysisErr)
	img.CreatedAt = parseTime(createdRaw)
	img.UpdatedAt = parseTime(updatedRaw)
	return &img, nil
}

// Create inserts a new image record
func (r *ImageRepository) Create(ctx context.Context, img *models.Image) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, car_id, filename, path, url, width, height, size_bytes, mime_type,
			storage_status, analysis_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())
	`, constants.TableImages)

	_, err := executorFor(ctx, r.db).ExecContext(ctx, query,
		img.ID, img.CarID, img.Filename, img.Path, img.URL, img.Width, img.Height, img.SizeBytes,
		img.MimeType, img.StorageStatus, img.AnalysisStatus)
	return err
}

// GetByID fetches an image, nil if absent
func (r *ImageRepository) GetByID(ctx context.Context, id string) (*models.Image, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ? LIMIT 1", imageColumns, constants.TableImages)
	img, err := scanImage(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return img, nil
}

// ListByCar returns a car's images, oldest first (shoot order)
func (r *ImageRepository) ListByCar(ctx context.Context, carID string) ([]*models.Image, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE car_id = ? ORDER BY created_at ASC", imageColumns, constants.TableImages)
	return r.queryImages(ctx, query, carID)
}

// ListByIDs loads a batch of images preserving no particular order
func (r *ImageRepository) ListByIDs(ctx context.Context, ids []string) ([]*models.Image, error) {
	if len(ids) == 0 {
		return []*models.Image{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id IN (%s)", imageColumns, constants.TableImages, placeholders)

	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return r.queryImages(ctx, query, args...)
}

func (r *ImageRepository) queryImages(ctx context.Context, query string, args ...interface{}) ([]*models.Image, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
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

// Update applies a column map to an image record
func (r *ImageRepository) Update(ctx context.Context, id string, updates map[string]interface{}) error {
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

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", constants.TableImages, strings.Join(setClauses, ", "))
	args = append(args, id)

	_, err := executorFor(ctx, r.db).ExecContext(ctx, query, args...)
	return err
}

// UpdateStorageStatus moves the file-persistence stage forward
func (r *ImageRepository) UpdateStorageStatus(ctx context.Context, id, status string) error {
	query := fmt.Sprintf("UPDATE %s SET storage_status = ?, updated_at = NOW() WHERE id = ?", constants.TableImages)
	_, err := executorFor(ctx, r.db).ExecContext(ctx, query, status, id)
	return err
}

// UpdateAnalysis records the outcome of an AI analysis pass
func (r *ImageRepository) UpdateAnalysis(ctx context.Context, id, status string, fields map[string]interface{}) error {
	setClauses := []string{"analysis_status = ?"}
	args := []interface{}{status}

	for k, v := range fields {
		setClauses = append(setClauses, fmt.Sprintf("%s = ?", k))
		args = append(args, v)
	}

	setClauses = append(setClauses, "updated_at = NOW()")

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", constants.TableImages, strings.Join(setClauses, ", "))
	args = append(args, id)

	_, err := executorFor(ctx, r.db).ExecContext(ctx, query, args...)
	return err
}

// Delete removes an image record
func (r *ImageRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", constants.TableImages)
	_, err := executorFor(ctx, r.db).ExecContext(ctx, query, id)
	return err
}

// ResetStaleAnalyzing flips images stuck in analyzing back to pending.
// Run at boot: a worker that died mid-analysis never wrote a final status.
func (r *ImageRepository) ResetStaleAnalyzing(ctx context.Context) (int64, error) {
	query := fmt.Sprintf("UPDATE %s SET analysis_status = ?, updated_at = NOW() WHERE analysis_status = ?", constants.TableImages)
	result, err := r.db.ExecContext(ctx, query,
		string(constants.AnalysisPending), string(constants.AnalysisAnalyzing))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// ListStored returns stored images, optionally only those missing provider metadata.
// Feeds the metadata migration in stable order so batch runs are repeatable.
func (r *ImageRepository) ListStored(ctx context.Context, missingMetadataOnly bool) ([]*models.Image, error) {
	query := fmt.Sprintf("SELECT %s FROM %s i WHERE i.storage_status = ? ORDER BY i.created_at ASC",
		prefixColumns(imageColumns, "i"), constants.TableImages)
	if missingMetadataOnly {
		query = fmt.Sprintf(`
			SELECT %s FROM %s i
			LEFT JOIN %s m ON m.image_id = i.id
			WHERE i.storage_status = ? AND m.id IS NULL
			ORDER BY i.created_at ASC
		`, prefixColumns(imageColumns, "i"), constants.TableImages, constants.TableImageMetadata)
	}
	return r.queryImages(ctx, query, "stored")
}

// prefixColumns qualifies a comma-separated column list with a table alias
func prefixColumns(columns, alias string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
