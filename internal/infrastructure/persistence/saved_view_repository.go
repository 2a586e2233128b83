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

type SavedViewRepository struct {
	db *sql.DB
}

func NewSavedViewRepository(db *sql.DB) *SavedViewRepository {
	return &SavedViewRepository{db: db}
}

const savedViewColumns = "id, owner_id, entity, name, filter_expr, sort_field, sort_dir, created_at, updated_at"

func scanSavedView(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.SavedView, error) {
	var v models.SavedView
	var sortField, sortDir sql.NullString
	var createdRaw, updatedRaw []byte

	err := scanner.Scan(
		&v.ID, &v.OwnerID, &v.Entity, &v.Name, &v.FilterExpr, &sortField, &sortDir,
		&createdRaw, &updatedRaw)
	if err != nil {
		return nil, err
	}

	v.SortField = strPtr(sortField)
	v.SortDir = strPtr(sortDir)
	v.CreatedAt = parseTime(createdRaw)
	v.UpdatedAt = parseTime(updatedRaw)
	return &v, nil
}

// Create inserts a saved view
func (r *SavedViewRepository) Create(ctx context.Context, v *models.SavedView) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, owner_id, entity, name, filter_expr, sort_field, sort_dir, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, NOW(), NOW())
	`, constants.TableSavedViews)

	_, err := r.db.ExecContext(ctx, query,
		v.ID, v.OwnerID, v.Entity, v.Name, v.FilterExpr, v.SortField, v.SortDir)
	return err
}

// GetByID fetches a saved view, nil if absent
func (r *SavedViewRepository) GetByID(ctx context.Context, id string) (*models.SavedView, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ? LIMIT 1", savedViewColumns, constants.TableSavedViews)
	v, err := scanSavedView(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// ListByOwner lists a user's saved views, optionally for one entity
func (r *SavedViewRepository) ListByOwner(ctx context.Context, ownerID, entity string) ([]*models.SavedView, error) {
	conditions := []string{"owner_id = ?"}
	args := []interface{}{ownerID}

	if entity != "" {
		conditions = append(conditions, "entity = ?")
		args = append(args, entity)
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY name ASC",
		savedViewColumns, constants.TableSavedViews, strings.Join(conditions, " AND "))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	views := make([]*models.SavedView, 0)
	for rows.Next() {
		v, err := scanSavedView(rows)
		if err != nil {
			continue
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

// Update applies a column map to a saved view
func (r *SavedViewRepository) Update(ctx context.Context, id string, updates map[string]interface{}) error {
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

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", constants.TableSavedViews, strings.Join(setClauses, ", "))
	args = append(args, id)

	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// Delete removes a saved view
func (r *SavedViewRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", constants.TableSavedViews)
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// RunFiltered executes a compiled view query and scans rows generically.
// table, sortField and sortDir must come from whitelists; only whereSQL args
// and the limit travel as parameters.
func (r *SavedViewRepository) RunFiltered(ctx context.Context, table, whereSQL string, args []interface{}, sortField, sortDir string, limit int) ([]map[string]interface{}, error) {
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s", table, whereSQL)
	if sortField != "" {
		query += fmt.Sprintf(" ORDER BY %s %s", sortField, sortDir)
	}
	query += " LIMIT ?"
	args = append(args, limit)

	return QueryMaps(ctx, r.db, query, args...)
}
