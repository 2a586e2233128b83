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

type ContainerRepository struct {
	db *sql.DB
}

func NewContainerRepository(db *sql.DB) *ContainerRepository {
	return &ContainerRepository{db: db}
}

const containerColumns = "id, name, container_type, location, description, is_active, created_at, updated_at"

func scanContainer(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.Container, error) {
	var c models.Container
	var location, description sql.NullString
	var isActive interface{}
	var createdRaw, updatedRaw []byte

	err := scanner.Scan(&c.ID, &c.Name, &c.ContainerType, &location, &description, &isActive, &createdRaw, &updatedRaw)
	if err != nil {
		return nil, err
	}

	c.Location = strPtr(location)
	c.Description = strPtr(description)
	c.IsActive = toBool(isActive)
	c.CreatedAt = parseTime(createdRaw)
	c.UpdatedAt = parseTime(updatedRaw)
	return &c, nil
}

// Create inserts a new container
func (r *ContainerRepository) Create(ctx context.Context, c *models.Container) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, container_type, location, description, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, NOW(), NOW())
	`, constants.TableContainers)

	_, err := r.db.ExecContext(ctx, query, c.ID, c.Name, c.ContainerType, c.Location, c.Description, c.IsActive)
	return err
}

// GetByID fetches a container, nil if absent
func (r *ContainerRepository) GetByID(ctx context.Context, id string) (*models.Container, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ? LIMIT 1", containerColumns, constants.TableContainers)
	c, err := scanContainer(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// FindAll lists containers by name
func (r *ContainerRepository) FindAll(ctx context.Context) ([]*models.Container, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY name ASC", containerColumns, constants.TableContainers)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	containers := make([]*models.Container, 0)
	for rows.Next() {
		c, err := scanContainer(rows)
		if err != nil {
			continue
		}
		containers = append(containers, c)
	}
	return containers, rows.Err()
}

// Update applies a column map to a container
func (r *ContainerRepository) Update(ctx context.Context, id string, updates map[string]interface{}) error {
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

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", constants.TableContainers, strings.Join(setClauses, ", "))
	args = append(args, id)

	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// Delete removes a container
func (r *ContainerRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", constants.TableContainers)
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// ItemCount counts inventory stored in a container
func (r *ContainerRepository) ItemCount(ctx context.Context, id string) (int, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE container_id = ?", constants.TableInventoryItems)
	var count int
	err := r.db.QueryRowContext(ctx, query, id).Scan(&count)
	return count, err
}
