package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/infrastructure/database"
	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/infrastructure/persistence"
)

func newEventFixture(t *testing.T) (*EventService, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	conn := database.NewWithDB(db)
	tx := NewTransactionManager(conn)
	outbox := NewOutboxService(conn, NewEventBus(), tx)
	svc := NewEventService(
		persistence.NewEventRepository(db),
		persistence.NewCarRepository(db),
		persistence.NewProjectRepository(db),
		persistence.NewContactRepository(db),
		outbox,
	)
	return svc, mock
}

func calendarEventRow(id string, reminderMinutes int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "title", "description", "event_type", "status", "car_id", "project_id", "location",
		"start_at", "end_at", "all_day", "assignee_contact_id", "reminder_minutes", "reminder_sent_at",
		"created_at", "updated_at",
	}).AddRow(
		id, "Golden hour shoot", nil, "shoot", "scheduled", nil, nil, "Pier 7",
		[]byte("2024-06-01 18:00:00"), nil, 0, "contact-7", reminderMinutes, nil,
		[]byte("2024-05-20 09:00:00"), []byte("2024-05-20 09:00:00"),
	)
}

func TestCreateEvent(t *testing.T) {
	svc, mock := newEventFixture(t)

	mock.ExpectExec("INSERT INTO events").WillReturnResult(sqlmock.NewResult(1, 1))

	title := "Golden hour shoot"
	eventType := "shoot"
	start := time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)
	e, err := svc.CreateEvent(context.Background(), EventRequest{
		Title:   &title,
		Type:    &eventType,
		StartAt: &start,
	})
	require.NoError(t, err)
	assert.Equal(t, "shoot", e.Type)
	assert.Equal(t, "scheduled", e.Status)
	assert.NotEmpty(t, e.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateEventRejectsReversedTimes(t *testing.T) {
	svc, _ := newEventFixture(t)

	title := "Track day"
	start := time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)
	_, err := svc.CreateEvent(context.Background(), EventRequest{
		Title:   &title,
		StartAt: &start,
		EndAt:   &end,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "End time cannot precede start time")
}

func TestCreateEventRejectsUnknownType(t *testing.T) {
	svc, _ := newEventFixture(t)

	title := "Track day"
	eventType := "party"
	start := time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)
	_, err := svc.CreateEvent(context.Background(), EventRequest{
		Title:   &title,
		Type:    &eventType,
		StartAt: &start,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unknown event type: party")
}

func TestCreateEventChecksCarExists(t *testing.T) {
	svc, mock := newEventFixture(t)

	mock.ExpectQuery("SELECT (.+) FROM cars WHERE id = \\?").WithArgs("car-404").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	title := "Delivery run"
	start := time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)
	carID := "car-404"
	_, err := svc.CreateEvent(context.Background(), EventRequest{
		Title:   &title,
		StartAt: &start,
		CarID:   &carID,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Car")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessDueRemindersSendsOnce(t *testing.T) {
	svc, mock := newEventFixture(t)

	mock.ExpectQuery("SELECT (.+) FROM events WHERE reminder_minutes IS NOT NULL").
		WillReturnRows(calendarEventRow("evt-1", 30))
	mock.ExpectExec("UPDATE events SET reminder_sent_at = \\?").
		WithArgs(sqlmock.AnyArg(), "evt-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO outbox_events").
		WithArgs(sqlmock.AnyArg(), "event.reminder", sqlmock.AnyArg(), "pending").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := svc.ProcessDueReminders(context.Background())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessDueRemindersSkipsClaimed(t *testing.T) {
	svc, mock := newEventFixture(t)

	mock.ExpectQuery("SELECT (.+) FROM events WHERE reminder_minutes IS NOT NULL").
		WillReturnRows(calendarEventRow("evt-1", 30))
	// Another sweep won the claim: the guarded update matched nothing
	mock.ExpectExec("UPDATE events SET reminder_sent_at = \\?").
		WithArgs(sqlmock.AnyArg(), "evt-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := svc.ProcessDueReminders(context.Background())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
