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

type EventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `id, title, description, event_type, status, car_id, project_id, location,
	start_at, end_at, all_day, assignee_contact_id, reminder_minutes, reminder_sent_at, created_at, updated_at`

func scanEvent(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.Event, error) {
	var e models.Event
	var description, carID, projectID, location, assignee sql.NullString
	var endAt, reminderSentAt sql.NullTime
	var allDay interface{}
	var reminderMinutes sql.NullInt64
	var startRaw, createdRaw, updatedRaw []byte

	err := scanner.Scan(
		&e.ID, &e.Title, &description, &e.Type, &e.Status, &carID, &projectID, &location,
		&startRaw, &endAt, &allDay, &assignee, &reminderMinutes, &reminderSentAt,
		&createdRaw, &updatedRaw)
	if err != nil {
		return nil, err
	}

	e.Description = strPtr(description)
	e.CarID = strPtr(carID)
	e.ProjectID = strPtr(projectID)
	e.Location = strPtr(location)
	e.StartAt = parseTime(startRaw)
	e.EndAt = timePtr(endAt)
	e.AllDay = toBool(allDay)
	e.AssigneeContactID = strPtr(assignee)
	e.ReminderMinutes = intPtr(reminderMinutes)
	e.ReminderSentAt = timePtr(reminderSentAt)
	e.CreatedAt = parseTime(createdRaw)
	e.UpdatedAt = parseTime(updatedRaw)
	return &e, nil
}

// Create inserts a new event
func (r *EventRepository) Create(ctx context.Context, e *models.Event) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, title, description, event_type, status, car_id, project_id, location,
			start_at, end_at, all_day, assignee_contact_id, reminder_minutes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())
	`, constants.TableEvents)

	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.Title, e.Description, e.Type, e.Status, e.CarID, e.ProjectID, e.Location,
		e.StartAt, e.EndAt, e.AllDay, e.AssigneeContactID, e.ReminderMinutes)
	return err
}

// GetByID fetches an event, nil if absent
func (r *EventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ? LIMIT 1", eventColumns, constants.TableEvents)
	e, err := scanEvent(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// EventFilter narrows event listings
type EventFilter struct {
	From      *time.Time
	To        *time.Time
	CarID     string
	ProjectID string
	EventType string
}

// List returns events matching the filter in chronological order
func (r *EventRepository) List(ctx context.Context, f EventFilter) ([]*models.Event, error) {
	conditions := []string{"1 = 1"}
	args := []interface{}{}

	if f.From != nil {
		conditions = append(conditions, "start_at >= ?")
		args = append(args, *f.From)
	}
	if f.To != nil {
		conditions = append(conditions, "start_at <= ?")
		args = append(args, *f.To)
	}
	if f.CarID != "" {
		conditions = append(conditions, "car_id = ?")
		args = append(args, f.CarID)
	}
	if f.ProjectID != "" {
		conditions = append(conditions, "project_id = ?")
		args = append(args, f.ProjectID)
	}
	if f.EventType != "" {
		conditions = append(conditions, "event_type = ?")
		args = append(args, f.EventType)
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY start_at ASC",
		eventColumns, constants.TableEvents, strings.Join(conditions, " AND "))
	return r.queryEvents(ctx, query, args...)
}

// SearchLike matches events by title or location
func (r *EventRepository) SearchLike(ctx context.Context, q string, limit int) ([]*models.Event, error) {
	pattern := "%" + q + "%"
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE title LIKE ? OR location LIKE ?
		ORDER BY start_at DESC
		LIMIT ?
	`, eventColumns, constants.TableEvents)
	return r.queryEvents(ctx, query, pattern, pattern, limit)
}

// Upcoming returns events starting within the window from now
func (r *EventRepository) Upcoming(ctx context.Context, now time.Time, window time.Duration) ([]*models.Event, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE start_at >= ? AND start_at <= ? ORDER BY start_at ASC",
		eventColumns, constants.TableEvents)
	return r.queryEvents(ctx, query, now, now.Add(window))
}

// DueReminders finds events whose reminder window has opened but no reminder went out yet
func (r *EventRepository) DueReminders(ctx context.Context, now time.Time) ([]*models.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE reminder_minutes IS NOT NULL
		  AND reminder_sent_at IS NULL
		  AND start_at > ?
		  AND DATE_SUB(start_at, INTERVAL reminder_minutes MINUTE) <= ?
		ORDER BY start_at ASC
	`, eventColumns, constants.TableEvents)
	return r.queryEvents(ctx, query, now, now)
}

// MarkReminderSent records that the reminder for an event went out.
// Reports false when another sweep already claimed the event.
func (r *EventRepository) MarkReminderSent(ctx context.Context, id string, sentAt time.Time) (bool, error) {
	query := fmt.Sprintf("UPDATE %s SET reminder_sent_at = ?, updated_at = NOW() WHERE id = ? AND reminder_sent_at IS NULL",
		constants.TableEvents)
	result, err := executorFor(ctx, r.db).ExecContext(ctx, query, sentAt, id)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *EventRepository) queryEvents(ctx context.Context, query string, args ...interface{}) ([]*models.Event, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*models.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			continue
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Update applies a column map to an event
func (r *EventRepository) Update(ctx context.Context, id string, updates map[string]interface{}) error {
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

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", constants.TableEvents, strings.Join(setClauses, ", "))
	args = append(args, id)

	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// Delete removes an event
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", constants.TableEvents)
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
