package services

import (
	"sync"
	"time"

	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/constants"
)

// UploadItem is the per-image view of an upload batch. Storage and analysis
// advance independently, so each image carries both stages.
type UploadItem struct {
	ImageID        string `json:"image_id"`
	Filename       string `json:"filename"`
	StorageStatus  string `json:"storage_status"`
	AnalysisStatus string `json:"analysis_status"`
	Error          string `json:"error,omitempty"`
}

// BatchStatus is the aggregate progress of one upload batch
type BatchStatus struct {
	BatchID  string       `json:"batch_id"`
	State    string       `json:"state"` // uploading | analyzing | complete
	Progress int          `json:"progress"`
	Total    int          `json:"total"`
	Stored   int          `json:"stored"`
	Analyzed int          `json:"analyzed"`
	Failed   int          `json:"failed"`
	Complete bool         `json:"complete"`
	Items    []UploadItem `json:"items"`
}

type uploadBatch struct {
	items       []*UploadItem
	byImage     map[string]*UploadItem
	maxProgress int
	startedAt   time.Time
	updatedAt   time.Time
}

// UploadTracker keeps in-memory progress for active upload batches.
// Progress is monotonic: a batch never reports a lower percentage than it
// already has, and complete means both stages are terminal for every image.
type UploadTracker struct {
	mu      sync.RWMutex
	batches map[string]*uploadBatch
}

// Completed batches linger this long so late polls still see the final state
const uploadBatchRetention = 30 * time.Minute

// NewUploadTracker creates a new UploadTracker
func NewUploadTracker() *UploadTracker {
	return &UploadTracker{batches: make(map[string]*uploadBatch)}
}

// StartBatch registers a new batch with its images in upload order
func (t *UploadTracker) StartBatch(batchID string, imageIDs []string, filenames []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.purgeStaleLocked(time.Now())

	b := &uploadBatch{
		byImage:   make(map[string]*UploadItem, len(imageIDs)),
		startedAt: time.Now(),
		updatedAt: time.Now(),
	}
	for i, id := range imageIDs {
		name := ""
		if i < len(filenames) {
			name = filenames[i]
		}
		item := &UploadItem{
			ImageID:        id,
			Filename:       name,
			StorageStatus:  string(constants.StoragePending),
			AnalysisStatus: string(constants.AnalysisPending),
		}
		b.items = append(b.items, item)
		b.byImage[id] = item
	}
	t.batches[batchID] = b
}

// SetStorageStatus advances the file-persistence stage for one image.
// A failed store short-circuits analysis to skipped so the batch can finish.
func (t *UploadTracker) SetStorageStatus(batchID, imageID, status, errMsg string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	b := t.batches[batchID]
	if b == nil {
		return
	}
	item := b.byImage[imageID]
	if item == nil {
		return
	}

	item.StorageStatus = status
	if errMsg != "" {
		item.Error = errMsg
	}
	if status == string(constants.StorageFailed) {
		item.AnalysisStatus = string(constants.AnalysisSkipped)
	}
	b.updatedAt = time.Now()
}

// SetAnalysisStatus advances the AI-analysis stage for one image
func (t *UploadTracker) SetAnalysisStatus(batchID, imageID, status, errMsg string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	b := t.batches[batchID]
	if b == nil {
		return
	}
	item := b.byImage[imageID]
	if item == nil {
		return
	}

	item.AnalysisStatus = status
	if errMsg != "" {
		item.Error = errMsg
	}
	b.updatedAt = time.Now()
}

// Status reports the aggregate progress for a batch, false if unknown
func (t *UploadTracker) Status(batchID string) (BatchStatus, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	b := t.batches[batchID]
	if b == nil {
		return BatchStatus{}, false
	}

	status := BatchStatus{
		BatchID: batchID,
		Total:   len(b.items),
	}

	storageTerminal := 0
	analysisTerminal := 0
	for _, item := range b.items {
		status.Items = append(status.Items, *item)

		switch item.StorageStatus {
		case string(constants.StorageStored):
			status.Stored++
			storageTerminal++
		case string(constants.StorageFailed):
			status.Failed++
			storageTerminal++
		}

		if constants.IsTerminalAnalysisStatus(constants.AnalysisStatus(item.AnalysisStatus)) {
			analysisTerminal++
			if item.AnalysisStatus == string(constants.AnalysisComplete) {
				status.Analyzed++
			}
		}
	}

	if status.Total > 0 {
		progress := (storageTerminal + analysisTerminal) * 100 / (2 * status.Total)
		if progress < b.maxProgress {
			progress = b.maxProgress
		}
		b.maxProgress = progress
		status.Progress = progress
	}

	status.Complete = status.Total > 0 &&
		storageTerminal == status.Total && analysisTerminal == status.Total

	switch {
	case status.Complete:
		status.State = "complete"
	case storageTerminal == status.Total:
		status.State = "analyzing"
	default:
		status.State = "uploading"
	}

	return status, true
}

// purgeStaleLocked drops batches idle past the retention window. Caller holds mu.
func (t *UploadTracker) purgeStaleLocked(now time.Time) {
	for id, b := range t.batches {
		if now.Sub(b.updatedAt) > uploadBatchRetention {
			delete(t.batches, id)
		}
	}
}
