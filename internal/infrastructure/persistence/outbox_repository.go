package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/constants"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/utils"
)

// OutboxEvent represents a persisted event record
type OutboxEvent struct {
	ID           string
	EventType    string
	Payload      string
	Status       string
	RetryCount   int
	ErrorMessage string
	CreatedAt    time.Time
	ProcessedAt  sql.NullTime
	UpdatedAt    time.Time
}

// OutboxRepository handles database operations for the outbox pattern
type OutboxRepository struct {
	db *sql.DB
}

// NewOutboxRepository creates a new OutboxRepository
func NewOutboxRepository(db *sql.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

// Enqueue inserts a new event into the outbox
func (r *OutboxRepository) Enqueue(ctx context.Context, exec Executor, eventType string, payload interface{}) (string, error) {
	id := utils.GenerateID()

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal event payload: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, event_type, payload, status, retry_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, 0, NOW(), NOW())
	`, constants.TableOutboxEvents)

	_, err = exec.ExecContext(ctx, query, id, eventType, payloadJSON, "pending")
	if err != nil {
		return "", fmt.Errorf("failed to enqueue event: %w", err)
	}

	return id, nil
}

// GetPendingEvents retrieves pending events ordered by creation time
func (r *OutboxRepository) GetPendingEvents(ctx context.Context, limit int) ([]OutboxEvent, error) {
	query := fmt.Sprintf(`
		SELECT id, event_type, payload, retry_count
		FROM %s
		WHERE status = ?
		ORDER BY created_at ASC
		LIMIT ?
	`, constants.TableOutboxEvents)

	rows, err := r.db.QueryContext(ctx, query, "pending", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending events: %w", err)
	}
	defer rows.Close()

	var events []OutboxEvent
	for rows.Next() {
		var e OutboxEvent
		if err := rows.Scan(&e.ID, &e.EventType, &e.Payload, &e.RetryCount); err != nil {
			continue
		}
		events = append(events, e)
	}

	return events, nil
}

// ClaimEvent attempts to lock a specific event for processing
func (r *OutboxRepository) ClaimEvent(ctx context.Context, exec Executor, id string) (string, error) {
	query := fmt.Sprintf(`
		SELECT id FROM %s
		WHERE id = ? AND status = ?
		FOR UPDATE SKIP LOCKED
	`, constants.TableOutboxEvents)

	var claimedID string
	err := exec.QueryRowContext(ctx, query, id, "pending").Scan(&claimedID)
	if err == sql.ErrNoRows {
		return "", nil // Already claimed
	}
	if err != nil {
		return "", err
	}
	return claimedID, nil
}

// UpdateStatus updates the status and related fields of an event
func (r *OutboxRepository) UpdateStatus(ctx context.Context, exec Executor, id string, status string, errMessage string) error {
	var query string
	var args []interface{}

	if status == "processed" {
		query = fmt.Sprintf(`
			UPDATE %s
			SET status = ?, processed_at = NOW(), updated_at = NOW()
			WHERE id = ?
		`, constants.TableOutboxEvents)
		args = []interface{}{status, id}
	} else if status == "failed" {
		query = fmt.Sprintf(`
			UPDATE %s
			SET status = ?, error_message = ?, updated_at = NOW()
			WHERE id = ?
		`, constants.TableOutboxEvents)
		args = []interface{}{status, errMessage, id}
	} else {
		return fmt.Errorf("unsupported status update: %s", status)
	}

	_, err := exec.ExecContext(ctx, query, args...)
	return err
}

// IncrementRetry increments the retry count and updates error message
func (r *OutboxRepository) IncrementRetry(ctx context.Context, exec Executor, id string, newCount int, errMessage string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET retry_count = ?, error_message = ?, updated_at = NOW()
		WHERE id = ?
	`, constants.TableOutboxEvents)

	_, err := exec.ExecContext(ctx, query, newCount, errMessage, id)
	return err
}

// CleanupProcessed deletes old processed events
func (r *OutboxRepository) CleanupProcessed(ctx context.Context, cutoff time.Time) (int64, error) {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE status = ? AND processed_at < ?
	`, constants.TableOutboxEvents)

	result, err := r.db.ExecContext(ctx, query, "processed", cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// CountByStatus reports outbox depth per status, for the health endpoint
func (r *OutboxRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	query := fmt.Sprintf("SELECT status, COUNT(*) FROM %s GROUP BY status", constants.TableOutboxEvents)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			continue
		}
		counts[status] = count
	}
	return counts, rows.Err()
}
