package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/domain/models"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/constants"
)

type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create persists a new session row keyed by the token's jti
func (r *SessionRepository) Create(ctx context.Context, s *models.Session) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, token, expires_at, ip_address, user_agent, is_revoked, last_activity, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, NOW(), NOW())
	`, constants.TableSessions)

	_, err := r.db.ExecContext(ctx, query, s.ID, s.UserID, s.Token, s.ExpiresAt, s.IPAddress, s.UserAgent)
	return err
}

// GetByID fetches a session, nil if absent
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*models.Session, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, expires_at, ip_address, user_agent, is_revoked, last_activity, created_at
		FROM %s WHERE id = ? LIMIT 1
	`, constants.TableSessions)

	var s models.Session
	var isRevoked interface{}
	var expiresRaw, activityRaw, createdRaw []byte

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.UserID, &expiresRaw, &s.IPAddress, &s.UserAgent, &isRevoked, &activityRaw, &createdRaw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	s.IsRevoked = toBool(isRevoked)
	s.ExpiresAt = parseTime(expiresRaw)
	s.LastActivity = parseTime(activityRaw)
	s.CreatedAt = parseTime(createdRaw)
	return &s, nil
}

// IsRevoked reports the revocation flag for a session
func (r *SessionRepository) IsRevoked(ctx context.Context, id string) (bool, error) {
	var revoked bool
	query := fmt.Sprintf("SELECT is_revoked FROM %s WHERE id = ? LIMIT 1", constants.TableSessions)
	err := r.db.QueryRowContext(ctx, query, id).Scan(&revoked)
	if err != nil {
		return false, err
	}
	return revoked, nil
}

// Revoke marks a session as logged out
func (r *SessionRepository) Revoke(ctx context.Context, id string) error {
	query := fmt.Sprintf("UPDATE %s SET is_revoked = 1 WHERE id = ?", constants.TableSessions)
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// RevokeAllForUser logs a user out everywhere (used on password change)
func (r *SessionRepository) RevokeAllForUser(ctx context.Context, userID string) error {
	query := fmt.Sprintf("UPDATE %s SET is_revoked = 1 WHERE user_id = ?", constants.TableSessions)
	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}

// TouchActivity updates the last activity timestamp
func (r *SessionRepository) TouchActivity(ctx context.Context, id string) error {
	query := fmt.Sprintf("UPDATE %s SET last_activity = NOW() WHERE id = ?", constants.TableSessions)
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// DeleteExpired purges sessions past their expiry
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE expires_at < NOW()", constants.TableSessions)
	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
