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

type ContactRepository struct {
	db *sql.DB
}

func NewContactRepository(db *sql.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

const contactColumns = "id, first_name, last_name, email, phone, role, company, notes, status, created_at, updated_at"

func scanContact(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.Contact, error) {
	var c models.Contact
	var email, phone, company, notes sql.NullString
	var createdRaw, updatedRaw []byte

	err := scanner.Scan(
		&c.ID, &c.FirstName, &c.LastName, &email, &phone, &c.Role, &company, &notes,
		&c.Status, &createdRaw, &updatedRaw)
	if err != nil {
		return nil, err
	}

	c.Email = strPtr(email)
	c.Phone = strPtr(phone)
	c.Company = strPtr(company)
	c.Notes = strPtr(notes)
	c.CreatedAt = parseTime(createdRaw)
	c.UpdatedAt = parseTime(updatedRaw)
	return &c, nil
}

// Create inserts a new contact
func (r *ContactRepository) Create(ctx context.Context, c *models.Contact) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, first_name, last_name, email, phone, role, company, notes, status, is_deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, NOW(), NOW())
	`, constants.TableContacts)

	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.FirstName, c.LastName, c.Email, c.Phone, c.Role, c.Company, c.Notes, c.Status)
	return err
}

// GetByID fetches a contact, nil if absent or soft-deleted
func (r *ContactRepository) GetByID(ctx context.Context, id string) (*models.Contact, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ? AND is_deleted = 0 LIMIT 1", contactColumns, constants.TableContacts)
	c, err := scanContact(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// FindAll lists live contacts sorted by last name
func (r *ContactRepository) FindAll(ctx context.Context, role string, activeOnly bool) ([]*models.Contact, error) {
	conditions := []string{"is_deleted = 0"}
	args := []interface{}{}

	if role != "" {
		conditions = append(conditions, "role = ?")
		args = append(args, role)
	}
	if activeOnly {
		conditions = append(conditions, "status = 'active'")
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY last_name ASC, first_name ASC",
		contactColumns, constants.TableContacts, strings.Join(conditions, " AND "))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := make([]*models.Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			continue
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// SearchLike matches contacts by name, email or company
func (r *ContactRepository) SearchLike(ctx context.Context, q string, limit int) ([]*models.Contact, error) {
	pattern := "%" + q + "%"
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE is_deleted = 0 AND (
			first_name LIKE ? OR last_name LIKE ? OR email LIKE ? OR company LIKE ?
			OR CONCAT(first_name, ' ', last_name) LIKE ?
		)
		ORDER BY last_name ASC, first_name ASC
		LIMIT ?
	`, contactColumns, constants.TableContacts)

	rows, err := r.db.QueryContext(ctx, query, pattern, pattern, pattern, pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := make([]*models.Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			continue
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// Update applies a column map to a contact
func (r *ContactRepository) Update(ctx context.Context, id string, updates map[string]interface{}) error {
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
		constants.TableContacts, strings.Join(setClauses, ", "))
	args = append(args, id)

	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// SoftDelete hides a contact
func (r *ContactRepository) SoftDelete(ctx context.Context, id string) error {
	query := fmt.Sprintf("UPDATE %s SET is_deleted = 1, updated_at = NOW() WHERE id = ?", constants.TableContacts)
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
