package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/infrastructure/cloudflare"
	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/infrastructure/persistence"
)

func newMigrationFixture(t *testing.T, client *cloudflare.Client) (*MetadataMigrationService, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := NewMetadataMigrationService(
		persistence.NewImageRepository(db),
		persistence.NewImageMetadataRepository(db),
		client,
	)
	return svc, mock
}

func storedImageRows(urls map[string]string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "car_id", "filename", "path", "url", "width", "height", "size_bytes", "mime_type",
		"storage_status", "analysis_status", "angle", "view", "movement", "tod", "caption",
		"analysis_error", "created_at", "updated_at",
	})
	for id, url := range urls {
		rows.AddRow(
			id, nil, "front.jpg", "/uploads/front.jpg", url, 1920, 1080, 204800, "image/jpeg",
			"stored", "complete", nil, nil, nil, nil, nil,
			nil, []byte("2024-05-01 09:00:00"), []byte("2024-05-01 09:00:00"),
		)
	}
	return rows
}

func TestMetadataMigrationRequiresCredentials(t *testing.T) {
	svc, _ := newMigrationFixture(t, cloudflare.NewClient("", "", ""))

	_, err := svc.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credentials not set")
}

func TestMetadataMigrationSyncsMissingRows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"result": map[string]interface{}{
				"id":       "cf-abc",
				"filename": "front.jpg",
				"uploaded": "2024-05-01T10:00:00Z",
				"variants": []string{"https://cdn.test/cf-abc/public"},
			},
		})
	}))
	defer server.Close()

	svc, mock := newMigrationFixture(t, cloudflare.NewClient("acct-1", "token-1", server.URL))

	mock.ExpectQuery("SELECT (.+) FROM images i").
		WithArgs("stored").
		WillReturnRows(storedImageRows(map[string]string{
			"img-1": "https://archive.test/cdn-cgi/imagedelivery/acct-1/cf-abc/public",
		}))
	mock.ExpectQuery("SELECT COUNT(.+) FROM image_metadata").
		WithArgs("img-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("INSERT INTO image_metadata").
		WithArgs(sqlmock.AnyArg(), "img-1", "cf-abc", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	report, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Total)
	assert.Equal(t, 1, report.Synced)
	assert.Equal(t, 0, report.Failed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMetadataMigrationSkipsUnparseableURLs(t *testing.T) {
	svc, mock := newMigrationFixture(t, cloudflare.NewClient("acct-1", "token-1", "http://127.0.0.1:1"))

	// Local upload paths carry no provider ID, so the image is skipped
	// before any provider call or existence check
	mock.ExpectQuery("SELECT (.+) FROM images i").
		WithArgs("stored").
		WillReturnRows(storedImageRows(map[string]string{
			"img-2": "/uploads/2024/side.jpg",
		}))

	report, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Total)
	assert.Equal(t, 0, report.Synced)
	assert.Equal(t, 1, report.Skipped)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMetadataMigrationSkipsRowsWrittenMeanwhile(t *testing.T) {
	svc, mock := newMigrationFixture(t, cloudflare.NewClient("acct-1", "token-1", "http://127.0.0.1:1"))

	mock.ExpectQuery("SELECT (.+) FROM images i").
		WithArgs("stored").
		WillReturnRows(storedImageRows(map[string]string{
			"img-3": "https://archive.test/cdn-cgi/imagedelivery/acct-1/cf-late/public",
		}))
	mock.ExpectQuery("SELECT COUNT(.+) FROM image_metadata").
		WithArgs("img-3").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	report, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 0, report.Failed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
