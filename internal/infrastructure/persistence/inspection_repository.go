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

type InspectionRepository struct {
	db *sql.DB
}

func NewInspectionRepository(db *sql.DB) *InspectionRepository {
	return &InspectionRepository{db: db}
}

const inspectionColumns = `id, car_id, title, status, inspector_name, scheduled_at, odometer_reading,
	checklist, notes, completed_at, created_at, updated_at`

func scanInspection(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.Inspection, error) {
	var insp models.Inspection
	var inspector, notes sql.NullString
	var checklistRaw []byte
	var scheduledAt, completedAt sql.NullTime
	var odometer sql.NullInt64
	var createdRaw, updatedRaw []byte

	err := scanner.Scan(
		&insp.ID, &insp.CarID, &insp.Title, &insp.Status, &inspector, &scheduledAt, &odometer,
		&checklistRaw, &notes, &completedAt, &createdRaw, &updatedRaw)
	if err != nil {
		return nil, err
	}

	insp.InspectorName = strPtr(inspector)
	insp.ScheduledAt = timePtr(scheduledAt)
	insp.OdometerReading = intPtr(odometer)
	insp.Notes = strPtr(notes)
	insp.CompletedAt = timePtr(completedAt)
	insp.CreatedAt = parseTime(createdRaw)
	insp.UpdatedAt = parseTime(updatedRaw)

	insp.Checklist = []models.ChecklistItem{}
	if len(checklistRaw) > 0 {
		if err := json.Unmarshal(checklistRaw, &insp.Checklist); err != nil {
			log.Printf("⚠️ Failed to parse checklist for inspection %s: %v", insp.ID, err)
		}
	}
	return &insp, nil
}

// Create inserts a new inspection with its checklist as JSON
func (r *InspectionRepository) Create(ctx context.Context, insp *models.Inspection) error {
	checklistJSON, err := json.Marshal(insp.Checklist)
	if err != nil {
		return fmt.Errorf("failed to marshal checklist: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, car_id, title, status, inspector_name, scheduled_at, odometer_reading,
			checklist, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())
	`, constants.TableInspections)

	_, err = r.db.ExecContext(ctx, query,
		insp.ID, insp.CarID, insp.Title, insp.Status, insp.InspectorName, insp.ScheduledAt,
		insp.OdometerReading, checklistJSON, insp.Notes)
	return err
}

// GetByID fetches an inspection, nil if absent
func (r *InspectionRepository) GetByID(ctx context.Context, id string) (*models.Inspection, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ? LIMIT 1", inspectionColumns, constants.TableInspections)
	insp, err := scanInspection(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return insp, nil
}

// ListByCar returns a car's inspections, newest first
func (r *InspectionRepository) ListByCar(ctx context.Context, carID string) ([]*models.Inspection, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE car_id = ? ORDER BY created_at DESC", inspectionColumns, constants.TableInspections)

	rows, err := r.db.QueryContext(ctx, query, carID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	inspections := make([]*models.Inspection, 0)
	for rows.Next() {
		insp, err := scanInspection(rows)
		if err != nil {
			continue
		}
		inspections = append(inspections, insp)
	}
	return inspections, rows.Err()
}

// Update applies a column map; a "checklist" value is marshalled to JSON first
func (r *InspectionRepository) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}

	setClauses := []string{}
	args := []interface{}{}

	for k, v := range updates {
		if k == "checklist" {
			checklistJSON, err := json.Marshal(v)
			if err != nil {
				return fmt.Errorf("failed to marshal checklist: %w", err)
			}
			v = checklistJSON
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = ?", k))
		args = append(args, v)
	}

	setClauses = append(setClauses, "updated_at = ?")
	args = append(args, time.Now())

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", constants.TableInspections, strings.Join(setClauses, ", "))
	args = append(args, id)

	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// Complete finalizes an inspection with its outcome and timestamp
func (r *InspectionRepository) Complete(ctx context.Context, id, status string, completedAt time.Time) error {
	query := fmt.Sprintf("UPDATE %s SET status = ?, completed_at = ?, updated_at = NOW() WHERE id = ?", constants.TableInspections)
	_, err := executorFor(ctx, r.db).ExecContext(ctx, query, status, completedAt, id)
	return err
}

// Delete removes an inspection
func (r *InspectionRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", constants.TableInspections)
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
