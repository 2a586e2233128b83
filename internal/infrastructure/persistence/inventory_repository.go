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

type InventoryRepository struct {
	db *sql.DB
}

func NewInventoryRepository(db *sql.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

const inventoryColumns = `id, name, category, container_id, manufacturer, model_number, serial_number,
	quantity, item_condition, notes, checked_out_to, checked_out_at, created_at, updated_at`

func scanInventoryItem(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.InventoryItem, error) {
	var item models.InventoryItem
	var category, containerID, manufacturer, modelNumber, serialNumber sql.NullString
	var condition, notes, checkedOutTo sql.NullString
	var checkedOutAt sql.NullTime
	var createdRaw, updatedRaw []byte

	err := scanner.Scan(
		&item.ID, &item.Name, &category, &containerID, &manufacturer, &modelNumber, &serialNumber,
		&item.Quantity, &condition, &notes, &checkedOutTo, &checkedOutAt, &createdRaw, &updatedRaw)
	if err != nil {
		return nil, err
	}

	item.Category = strPtr(category)
	item.ContainerID = strPtr(containerID)
	item.Manufacturer = strPtr(manufacturer)
	item.ModelNumber = strPtr(modelNumber)
	item.SerialNumber = strPtr(serialNumber)
	item.Condition = strPtr(condition)
	item.Notes = strPtr(notes)
	item.CheckedOutTo = strPtr(checkedOutTo)
	item.CheckedOutAt = timePtr(checkedOutAt)
	item.CreatedAt = parseTime(createdRaw)
	item.UpdatedAt = parseTime(updatedRaw)
	return &item, nil
}

// Create inserts a new inventory item
func (r *InventoryRepository) Create(ctx context.Context, item *models.InventoryItem) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, category, container_id, manufacturer, model_number, serial_number,
			quantity, item_condition, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())
	`, constants.TableInventoryItems)

	_, err := r.db.ExecContext(ctx, query,
		item.ID, item.Name, item.Category, item.ContainerID, item.Manufacturer, item.ModelNumber,
		item.SerialNumber, item.Quantity, item.Condition, item.Notes)
	return err
}

// GetByID fetches an inventory item, nil if absent
func (r *InventoryRepository) GetByID(ctx context.Context, id string) (*models.InventoryItem, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ? LIMIT 1", inventoryColumns, constants.TableInventoryItems)
	item, err := scanInventoryItem(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// FindAll lists inventory, optionally narrowed to a container or category
func (r *InventoryRepository) FindAll(ctx context.Context, containerID, category string) ([]*models.InventoryItem, error) {
	conditions := []string{"1 = 1"}
	args := []interface{}{}

	if containerID != "" {
		conditions = append(conditions, "container_id = ?")
		args = append(args, containerID)
	}
	if category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, category)
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY name ASC",
		inventoryColumns, constants.TableInventoryItems, strings.Join(conditions, " AND "))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*models.InventoryItem, 0)
	for rows.Next() {
		item, err := scanInventoryItem(rows)
		if err != nil {
			continue
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Checkout marks an item as held by someone. Only succeeds while the item is free.
func (r *InventoryRepository) Checkout(ctx context.Context, id, holder string, at time.Time) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET checked_out_to = ?, checked_out_at = ?, updated_at = NOW()
		WHERE id = ? AND checked_out_to IS NULL
	`, constants.TableInventoryItems)

	result, err := r.db.ExecContext(ctx, query, holder, at, id)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Checkin clears the hold on an item
func (r *InventoryRepository) Checkin(ctx context.Context, id string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET checked_out_to = NULL, checked_out_at = NULL, updated_at = NOW()
		WHERE id = ?
	`, constants.TableInventoryItems)
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// Update applies a column map to an inventory item
func (r *InventoryRepository) Update(ctx context.Context, id string, updates map[string]interface{}) error {
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

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", constants.TableInventoryItems, strings.Join(setClauses, ", "))
	args = append(args, id)

	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// Delete removes an inventory item
func (r *InventoryRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", constants.TableInventoryItems)
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
