package services

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/infrastructure/persistence"
)

func legacyDeliverableRows(pairs ...[2]string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "car_id", "title", "description", "platform", "type", "media_type_id", "aspect_ratio",
		"duration_seconds", "edit_status", "editor", "release_date", "scheduled_post_at",
		"dropbox_link", "social_media_link", "created_at", "updated_at",
	})
	for _, p := range pairs {
		rows.AddRow(
			p[0], nil, "Clip "+p[0], nil, "youtube", p[1], nil, nil,
			nil, "not_started", nil, nil, nil,
			nil, nil, []byte("2024-04-01 08:00:00"), []byte("2024-04-01 08:00:00"),
		)
	}
	return rows
}

func mediaTypeRow(id, name string, active int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "description", "aspect_ratios", "default_platform", "sort_order", "is_active", "created_at", "updated_at",
	}).AddRow(id, name, nil, []byte(`["16:9"]`), nil, 1, active, []byte("2024-01-01 00:00:00"), []byte("2024-01-01 00:00:00"))
}

func TestMigrateMediaTypes(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	svc := NewDeliverableService(
		persistence.NewDeliverableRepository(db),
		persistence.NewMediaTypeRepository(db),
		nil, nil, nil,
	)

	// Five legacy rows: two spellings of "video", one inactive match,
	// two spellings of a type the catalog does not know
	mock.ExpectQuery("SELECT (.+) FROM deliverables").
		WillReturnRows(legacyDeliverableRows(
			[2]string{"d-1", "Video"},
			[2]string{"d-2", "video"},
			[2]string{"d-3", "Photo Set"},
			[2]string{"d-4", "Hologram"},
			[2]string{"d-5", "hologram"},
		))

	mock.ExpectQuery("SELECT (.+) FROM media_types WHERE LOWER").WithArgs("Video").
		WillReturnRows(mediaTypeRow("mt-video", "Video", 1))
	mock.ExpectExec("UPDATE deliverables SET media_type_id").WithArgs("mt-video", "d-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	// d-2 hits the lookup cache, only the write happens
	mock.ExpectExec("UPDATE deliverables SET media_type_id").WithArgs("mt-video", "d-2").
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery("SELECT (.+) FROM media_types WHERE LOWER").WithArgs("Photo Set").
		WillReturnRows(mediaTypeRow("mt-photo", "Photo Set", 0))

	mock.ExpectQuery("SELECT (.+) FROM media_types WHERE LOWER").WithArgs("Hologram").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	report, err := svc.MigrateMediaTypes(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Migrated)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, []string{"Hologram"}, report.Unmatched)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateMediaTypesNothingToDo(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	svc := NewDeliverableService(
		persistence.NewDeliverableRepository(db),
		persistence.NewMediaTypeRepository(db),
		nil, nil, nil,
	)

	mock.ExpectQuery("SELECT (.+) FROM deliverables").
		WillReturnRows(legacyDeliverableRows())

	report, err := svc.MigrateMediaTypes(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, report.Migrated)
	assert.Equal(t, 0, report.Skipped)
	assert.Empty(t, report.Unmatched)
	assert.NoError(t, mock.ExpectationsWereMet())
}
