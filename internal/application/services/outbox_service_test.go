package services

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/infrastructure/database"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/constants"
)

func newOutboxFixture(t *testing.T) (*OutboxService, sqlmock.Sqlmock, *EventBus) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	conn := database.NewWithDB(db)
	bus := NewEventBus()
	return NewOutboxService(conn, bus, NewTransactionManager(conn)), mock, bus
}

func TestOutboxEnqueueThenProcess(t *testing.T) {
	svc, mock, bus := newOutboxFixture(t)

	var delivered []EventPayload
	bus.Subscribe(constants.EventCarCreated, func(ctx context.Context, payload interface{}) error {
		p, ok := payload.(EventPayload)
		if !ok {
			t.Errorf("payload has type %T, want EventPayload", payload)
			return nil
		}
		delivered = append(delivered, p)
		return nil
	})

	mock.ExpectExec("INSERT INTO outbox_events").
		WithArgs(sqlmock.AnyArg(), "car.created", sqlmock.AnyArg(), "pending").
		WillReturnResult(sqlmock.NewResult(1, 1))

	payload := EventPayload{
		Entity:   "car",
		EntityID: "car-1",
		ActorID:  "user-1",
		Detail:   map[string]interface{}{"display_name": "1973 Porsche 911"},
	}
	require.NoError(t, svc.EnqueueEvent(context.Background(), constants.EventCarCreated, payload))

	// The worker sees the row, claims it, publishes, and marks it processed
	pending := sqlmock.NewRows([]string{"id", "event_type", "payload", "retry_count"}).
		AddRow("evt-1", "car.created",
			`{"entity":"car","entity_id":"car-1","actor_id":"user-1","detail":{"display_name":"1973 Porsche 911"}}`, 0)
	mock.ExpectQuery("SELECT id, event_type, payload, retry_count").WillReturnRows(pending)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM outbox_events").WithArgs("evt-1", "pending").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("evt-1"))
	mock.ExpectExec("UPDATE outbox_events").WithArgs("processed", "evt-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, svc.ProcessOutbox(context.Background()))

	require.Len(t, delivered, 1)
	assert.Equal(t, "car-1", delivered[0].EntityID)
	assert.Equal(t, "user-1", delivered[0].ActorID)
	assert.Equal(t, "1973 Porsche 911", delivered[0].Detail["display_name"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRetriesFailedHandlers(t *testing.T) {
	svc, mock, bus := newOutboxFixture(t)

	bus.Subscribe(constants.EventCarCreated, func(ctx context.Context, payload interface{}) error {
		return stderrors.New("handler down")
	})

	pending := sqlmock.NewRows([]string{"id", "event_type", "payload", "retry_count"}).
		AddRow("evt-9", "car.created", `{"entity":"car","entity_id":"car-9"}`, 0)
	mock.ExpectQuery("SELECT id, event_type, payload, retry_count").WillReturnRows(pending)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM outbox_events").WithArgs("evt-9", "pending").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("evt-9"))
	// retry_count moves to 1, the event stays pending
	mock.ExpectExec("UPDATE outbox_events").WithArgs(1, sqlmock.AnyArg(), "evt-9").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, svc.ProcessOutbox(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxFailsEventAfterMaxRetries(t *testing.T) {
	svc, mock, bus := newOutboxFixture(t)

	bus.Subscribe(constants.EventCarCreated, func(ctx context.Context, payload interface{}) error {
		return stderrors.New("handler still down")
	})

	pending := sqlmock.NewRows([]string{"id", "event_type", "payload", "retry_count"}).
		AddRow("evt-9", "car.created", `{"entity":"car","entity_id":"car-9"}`, MaxRetryAttempts-1)
	mock.ExpectQuery("SELECT id, event_type, payload, retry_count").WillReturnRows(pending)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM outbox_events").WithArgs("evt-9", "pending").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("evt-9"))
	mock.ExpectExec("UPDATE outbox_events").WithArgs("failed", sqlmock.AnyArg(), "evt-9").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, svc.ProcessOutbox(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxSkipsEventsClaimedElsewhere(t *testing.T) {
	svc, mock, bus := newOutboxFixture(t)

	handled := 0
	bus.Subscribe(constants.EventCarCreated, func(ctx context.Context, payload interface{}) error {
		handled++
		return nil
	})

	pending := sqlmock.NewRows([]string{"id", "event_type", "payload", "retry_count"}).
		AddRow("evt-5", "car.created", `{"entity":"car","entity_id":"car-5"}`, 0)
	mock.ExpectQuery("SELECT id, event_type, payload, retry_count").WillReturnRows(pending)

	// Another worker holds the row lock, the claim comes back empty
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM outbox_events").WithArgs("evt-5", "pending").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	require.NoError(t, svc.ProcessOutbox(context.Background()))
	assert.Equal(t, 0, handled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxWorkerStartStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	conn := database.NewWithDB(db)
	svc := NewOutboxService(conn, NewEventBus(), NewTransactionManager(conn))

	// Interval far beyond the test runtime: only start/stop is exercised
	svc.StartWorker(time.Hour)
	svc.StopWorker()
}
