package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/constants"
)

func TestUploadTrackerBatchLifecycle(t *testing.T) {
	tracker := NewUploadTracker()
	tracker.StartBatch("batch-1", []string{"img-a", "img-b"}, []string{"front.jpg", "rear.jpg"})

	status, ok := tracker.Status("batch-1")
	require.True(t, ok)
	assert.Equal(t, "uploading", status.State)
	assert.Equal(t, 0, status.Progress)
	assert.Equal(t, 2, status.Total)
	assert.False(t, status.Complete)

	tracker.SetStorageStatus("batch-1", "img-a", string(constants.StorageStored), "")
	status, _ = tracker.Status("batch-1")
	assert.Equal(t, "uploading", status.State)
	assert.Equal(t, 25, status.Progress)
	assert.Equal(t, 1, status.Stored)

	tracker.SetStorageStatus("batch-1", "img-b", string(constants.StorageStored), "")
	status, _ = tracker.Status("batch-1")
	assert.Equal(t, "analyzing", status.State)
	assert.Equal(t, 50, status.Progress)

	tracker.SetAnalysisStatus("batch-1", "img-a", string(constants.AnalysisAnalyzing), "")
	status, _ = tracker.Status("batch-1")
	assert.Equal(t, "analyzing", status.State)
	assert.Equal(t, 50, status.Progress)

	tracker.SetAnalysisStatus("batch-1", "img-a", string(constants.AnalysisComplete), "")
	tracker.SetAnalysisStatus("batch-1", "img-b", string(constants.AnalysisComplete), "")
	status, _ = tracker.Status("batch-1")
	assert.Equal(t, "complete", status.State)
	assert.Equal(t, 100, status.Progress)
	assert.Equal(t, 2, status.Analyzed)
	assert.True(t, status.Complete)
}

func TestUploadTrackerProgressIsMonotonic(t *testing.T) {
	tracker := NewUploadTracker()
	tracker.StartBatch("batch-2", []string{"a", "b", "c"}, nil)

	last := 0
	step := func() {
		status, ok := tracker.Status("batch-2")
		require.True(t, ok)
		assert.GreaterOrEqual(t, status.Progress, last, "progress went backwards")
		last = status.Progress
	}

	step()
	tracker.SetStorageStatus("batch-2", "a", string(constants.StorageStored), "")
	step()
	tracker.SetStorageStatus("batch-2", "b", string(constants.StorageFailed), "disk full")
	step()
	tracker.SetAnalysisStatus("batch-2", "a", string(constants.AnalysisAnalyzing), "")
	step()
	tracker.SetAnalysisStatus("batch-2", "a", string(constants.AnalysisComplete), "")
	step()
	tracker.SetStorageStatus("batch-2", "c", string(constants.StorageStored), "")
	tracker.SetAnalysisStatus("batch-2", "c", string(constants.AnalysisFailed), "model error")
	step()

	status, _ := tracker.Status("batch-2")
	assert.True(t, status.Complete)
	assert.Equal(t, 100, status.Progress)
}

func TestUploadTrackerFailedStorageSkipsAnalysis(t *testing.T) {
	tracker := NewUploadTracker()
	tracker.StartBatch("batch-3", []string{"only"}, []string{"wreck.png"})

	tracker.SetStorageStatus("batch-3", "only", string(constants.StorageFailed), "write error")

	status, ok := tracker.Status("batch-3")
	require.True(t, ok)
	assert.True(t, status.Complete, "failed storage must still finish the batch")
	assert.Equal(t, "complete", status.State)
	assert.Equal(t, 1, status.Failed)
	assert.Equal(t, string(constants.AnalysisSkipped), status.Items[0].AnalysisStatus)
	assert.Equal(t, "write error", status.Items[0].Error)
}

func TestUploadTrackerUnknownBatch(t *testing.T) {
	tracker := NewUploadTracker()
	_, ok := tracker.Status("nope")
	assert.False(t, ok)

	// Unknown IDs are ignored rather than panicking
	tracker.SetStorageStatus("nope", "img", string(constants.StorageStored), "")
	tracker.SetAnalysisStatus("nope", "img", string(constants.AnalysisComplete), "")
}
