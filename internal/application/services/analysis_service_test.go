package services

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/infrastructure/persistence"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/constants"
)

func TestAnalysisPoolStartStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	svc := NewAnalysisService(nil, NewUploadTracker(), nil, nil, 3)
	svc.Start()
	svc.Start() // second call is a no-op
	svc.Stop()
	svc.Stop()
}

func TestSubmitWithoutProviderMarksSkipped(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	tracker := NewUploadTracker()
	tracker.StartBatch("batch-1", []string{"img-1"}, []string{"front.jpg"})

	svc := NewAnalysisService(persistence.NewImageRepository(db), tracker, nil, nil, 1)

	mock.ExpectExec("UPDATE images SET analysis_status").
		WithArgs(string(constants.AnalysisSkipped), "img-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	// No pool running: a nil provider resolves the job inline
	svc.Submit(context.Background(), AnalysisJob{ImageID: "img-1", BatchID: "batch-1"})

	status, ok := tracker.Status("batch-1")
	require.True(t, ok)
	require.Len(t, status.Items, 1)
	assert.Equal(t, string(constants.AnalysisSkipped), status.Items[0].AnalysisStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStripJSONFences(t *testing.T) {
	fenced := "```json\n{\"angle\":\"front\"}\n```"
	assert.Equal(t, `{"angle":"front"}`, stripJSONFences(fenced))

	bare := "```\n{\"view\":\"interior\"}\n```"
	assert.Equal(t, `{"view":"interior"}`, stripJSONFences(bare))

	plain := `{"caption":"studio shot"}`
	assert.Equal(t, plain, stripJSONFences(plain))
}
