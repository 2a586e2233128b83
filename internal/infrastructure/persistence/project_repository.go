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

type ProjectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = "id, title, description, status, client_contact_id, starts_on, due_on, created_at, updated_at"

func scanProject(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.Project, error) {
	var p models.Project
	var description, clientContactID sql.NullString
	var startsOn, dueOn sql.NullTime
	var createdRaw, updatedRaw []byte

	err := scanner.Scan(
		&p.ID, &p.Title, &description, &p.Status, &clientContactID, &startsOn, &dueOn,
		&createdRaw, &updatedRaw)
	if err != nil {
		return nil, err
	}

	p.Description = strPtr(description)
	p.ClientContactID = strPtr(clientContactID)
	p.StartsOn = timePtr(startsOn)
	p.DueOn = timePtr(dueOn)
	p.CarIDs = []string{}
	p.CreatedAt = parseTime(createdRaw)
	p.UpdatedAt = parseTime(updatedRaw)
	return &p, nil
}

// Create inserts a new project
func (r *ProjectRepository) Create(ctx context.Context, p *models.Project) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, title, description, status, client_contact_id, starts_on, due_on, is_deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, NOW(), NOW())
	`, constants.TableProjects)

	_, err := executorFor(ctx, r.db).ExecContext(ctx, query,
		p.ID, p.Title, p.Description, p.Status, p.ClientContactID, p.StartsOn, p.DueOn)
	return err
}

// GetByID fetches a project with its linked car IDs, nil if absent or soft-deleted
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ? AND is_deleted = 0 LIMIT 1", projectColumns, constants.TableProjects)
	p, err := scanProject(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	carIDs, err := r.GetCarIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	p.CarIDs = carIDs
	return p, nil
}

// FindAll lists live projects, newest first
func (r *ProjectRepository) FindAll(ctx context.Context, status string) ([]*models.Project, error) {
	conditions := []string{"is_deleted = 0"}
	args := []interface{}{}

	if status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, status)
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY created_at DESC",
		projectColumns, constants.TableProjects, strings.Join(conditions, " AND "))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := make([]*models.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			continue
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// SearchLike matches projects by title or description
func (r *ProjectRepository) SearchLike(ctx context.Context, q string, limit int) ([]*models.Project, error) {
	pattern := "%" + q + "%"
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE is_deleted = 0 AND (title LIKE ? OR description LIKE ?)
		ORDER BY title ASC
		LIMIT ?
	`, projectColumns, constants.TableProjects)

	rows, err := r.db.QueryContext(ctx, query, pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := make([]*models.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			continue
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// GetCarIDs returns the cars linked to a project
func (r *ProjectRepository) GetCarIDs(ctx context.Context, projectID string) ([]string, error) {
	query := fmt.Sprintf("SELECT car_id FROM %s WHERE project_id = ? ORDER BY car_id ASC", constants.TableProjectCars)
	rows, err := r.db.QueryContext(ctx, query, projectID)
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

// ReplaceCars swaps the project's car links for the given set.
// Runs on an Executor so the service can wrap it in a transaction.
func (r *ProjectRepository) ReplaceCars(ctx context.Context, exec Executor, projectID string, carIDs []string) error {
	deleteQuery := fmt.Sprintf("DELETE FROM %s WHERE project_id = ?", constants.TableProjectCars)
	if _, err := exec.ExecContext(ctx, deleteQuery, projectID); err != nil {
		return fmt.Errorf("failed to clear project cars: %w", err)
	}

	if len(carIDs) == 0 {
		return nil
	}

	insertQuery := fmt.Sprintf("INSERT INTO %s (project_id, car_id) VALUES (?, ?)", constants.TableProjectCars)
	for _, carID := range carIDs {
		if _, err := exec.ExecContext(ctx, insertQuery, projectID, carID); err != nil {
			return fmt.Errorf("failed to link project car: %w", err)
		}
	}
	return nil
}

// ProjectsContainingCar lists projects a car is linked to
func (r *ProjectRepository) ProjectsContainingCar(ctx context.Context, carID string) ([]string, error) {
	query := fmt.Sprintf("SELECT project_id FROM %s WHERE car_id = ?", constants.TableProjectCars)
	rows, err := r.db.QueryContext(ctx, query, carID)
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

// Update applies a column map to a project
func (r *ProjectRepository) Update(ctx context.Context, id string, updates map[string]interface{}) error {
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
		constants.TableProjects, strings.Join(setClauses, ", "))
	args = append(args, id)

	_, err := executorFor(ctx, r.db).ExecContext(ctx, query, args...)
	return err
}

// SoftDelete hides a project; car links stay behind for restore
func (r *ProjectRepository) SoftDelete(ctx context.Context, id string) error {
	query := fmt.Sprintf("UPDATE %s SET is_deleted = 1, updated_at = NOW() WHERE id = ?", constants.TableProjects)
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
