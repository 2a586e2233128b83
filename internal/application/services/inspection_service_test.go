package services

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/domain/models"
	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/infrastructure/database"
	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/infrastructure/persistence"
)

func newInspectionFixture(t *testing.T) (*InspectionService, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	conn := database.NewWithDB(db)
	tx := NewTransactionManager(conn)
	outbox := NewOutboxService(conn, NewEventBus(), tx)
	svc := NewInspectionService(
		persistence.NewInspectionRepository(db),
		persistence.NewCarRepository(db),
		tx, outbox,
	)
	return svc, mock
}

func inspectionRow(id, status, checklistJSON string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "car_id", "title", "status", "inspector_name", "scheduled_at", "odometer_reading",
		"checklist", "notes", "completed_at", "created_at", "updated_at",
	}).AddRow(
		id, "car-1", "Pre-sale check", status, nil, nil, nil,
		[]byte(checklistJSON), nil, nil, []byte("2024-06-01 09:00:00"), []byte("2024-06-01 09:00:00"),
	)
}

func TestVerdictFromChecklist(t *testing.T) {
	assert.Equal(t, "pass", VerdictFromChecklist(nil))
	assert.Equal(t, "pass", VerdictFromChecklist([]models.ChecklistItem{
		{Item: "Brakes", Passed: true},
		{Item: "Lights", Passed: true},
	}))
	assert.Equal(t, "fail", VerdictFromChecklist([]models.ChecklistItem{
		{Item: "Brakes", Passed: true},
		{Item: "Lights", Passed: false, Note: "left indicator dead"},
	}))
}

func TestCompleteInspectionPasses(t *testing.T) {
	svc, mock := newInspectionFixture(t)

	mock.ExpectQuery("SELECT (.+) FROM inspections WHERE id = \\?").WithArgs("insp-1").
		WillReturnRows(inspectionRow("insp-1", "in_progress", `[{"item":"Brakes","passed":true}]`))

	// Verdict and domain event land in the same transaction
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE inspections SET status = \\?, completed_at = \\?").
		WithArgs("pass", sqlmock.AnyArg(), "insp-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO outbox_events").
		WithArgs(sqlmock.AnyArg(), "inspection.completed", sqlmock.AnyArg(), "pending").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	mock.ExpectQuery("SELECT (.+) FROM inspections WHERE id = \\?").WithArgs("insp-1").
		WillReturnRows(inspectionRow("insp-1", "pass", `[{"item":"Brakes","passed":true}]`))

	insp, err := svc.CompleteInspection(context.Background(), "insp-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "pass", insp.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteInspectionFailsOnFailedItem(t *testing.T) {
	svc, mock := newInspectionFixture(t)

	mock.ExpectQuery("SELECT (.+) FROM inspections WHERE id = \\?").WithArgs("insp-2").
		WillReturnRows(inspectionRow("insp-2", "scheduled",
			`[{"item":"Brakes","passed":false,"note":"soft pedal"},{"item":"Lights","passed":true}]`))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE inspections SET status = \\?, completed_at = \\?").
		WithArgs("fail", sqlmock.AnyArg(), "insp-2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO outbox_events").
		WithArgs(sqlmock.AnyArg(), "inspection.completed", sqlmock.AnyArg(), "pending").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	mock.ExpectQuery("SELECT (.+) FROM inspections WHERE id = \\?").WithArgs("insp-2").
		WillReturnRows(inspectionRow("insp-2", "fail",
			`[{"item":"Brakes","passed":false,"note":"soft pedal"},{"item":"Lights","passed":true}]`))

	insp, err := svc.CompleteInspection(context.Background(), "insp-2", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "fail", insp.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteInspectionRejectsDoubleCompletion(t *testing.T) {
	svc, mock := newInspectionFixture(t)

	mock.ExpectQuery("SELECT (.+) FROM inspections WHERE id = \\?").WithArgs("insp-3").
		WillReturnRows(inspectionRow("insp-3", "pass", `[]`))

	_, err := svc.CompleteInspection(context.Background(), "insp-3", "user-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already completed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateInspectionRejectsUnknownStatus(t *testing.T) {
	svc, mock := newInspectionFixture(t)

	mock.ExpectQuery("SELECT (.+) FROM inspections WHERE id = \\?").WithArgs("insp-4").
		WillReturnRows(inspectionRow("insp-4", "scheduled", `[]`))

	bogus := "exploded"
	_, err := svc.UpdateInspection(context.Background(), "insp-4", UpdateInspectionRequest{Status: &bogus})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unknown status")
	assert.NoError(t, mock.ExpectationsWereMet())
}
