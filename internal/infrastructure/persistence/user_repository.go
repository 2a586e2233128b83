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

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = "id, email, name, password_hash, role, is_active, last_login_at, created_at, updated_at"

func scanUser(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.User, error) {
	var u models.User
	var isActive interface{}
	var lastLogin sql.NullTime
	var createdRaw, updatedRaw []byte

	err := scanner.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &isActive, &lastLogin, &createdRaw, &updatedRaw)
	if err != nil {
		return nil, err
	}

	u.IsActive = toBool(isActive)
	u.LastLoginAt = timePtr(lastLogin)
	u.CreatedAt = parseTime(createdRaw)
	u.UpdatedAt = parseTime(updatedRaw)
	return &u, nil
}

func toBool(v interface{}) bool {
	switch b := v.(type) {
	case bool:
		return b
	case int64:
		return b != 0
	case []byte:
		return len(b) > 0 && (b[0] == '1' || b[0] == 't')
	}
	return false
}

// Create inserts a new user record
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, email, name, password_hash, role, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, NOW(), NOW())
	`, constants.TableUsers)

	_, err := r.db.ExecContext(ctx, query, u.ID, u.Email, u.Name, u.PasswordHash, u.Role, u.IsActive)
	return err
}

// GetByID fetches a user by primary key, nil if absent
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ? LIMIT 1", userColumns, constants.TableUsers)
	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetByEmail fetches a user by email, nil if absent
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE email = ? LIMIT 1", userColumns, constants.TableUsers)
	u, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// FindAll retrieves all users, newest first
func (r *UserRepository) FindAll(ctx context.Context) ([]*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY created_at DESC", userColumns, constants.TableUsers)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			continue
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CheckEmailConflict reports whether another user already owns the email
func (r *UserRepository) CheckEmailConflict(ctx context.Context, email, excludeID string) (bool, error) {
	var exists bool
	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE email = ? AND id != ?)", constants.TableUsers)
	err := r.db.QueryRowContext(ctx, query, email, excludeID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// Update applies a column map to a user record
func (r *UserRepository) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
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

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", constants.TableUsers, strings.Join(setClauses, ", "))
	args = append(args, userID)

	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// UpdatePassword updates the user's password hash
func (r *UserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	query := fmt.Sprintf("UPDATE %s SET password_hash = ?, updated_at = NOW() WHERE id = ?", constants.TableUsers)
	_, err := r.db.ExecContext(ctx, query, passwordHash, userID)
	return err
}

// TouchLastLogin stamps last_login_at after a successful login
func (r *UserRepository) TouchLastLogin(ctx context.Context, userID string) error {
	query := fmt.Sprintf("UPDATE %s SET last_login_at = NOW() WHERE id = ?", constants.TableUsers)
	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}

// Delete removes a user record
func (r *UserRepository) Delete(ctx context.Context, userID string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", constants.TableUsers)
	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}

// CountAdmins counts active admin accounts (the last one cannot be deleted)
func (r *UserRepository) CountAdmins(ctx context.Context) (int, error) {
	var count int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE role = ? AND is_active = 1", constants.TableUsers)
	err := r.db.QueryRowContext(ctx, query, string(constants.RoleAdmin)).Scan(&count)
	return count, err
}
