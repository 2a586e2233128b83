package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/ai"
	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/infrastructure/persistence"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/constants"
)

// AnalysisJob asks the worker pool to analyze one stored image
type AnalysisJob struct {
	ImageID string
	BatchID string
}

// analysisPrompt instructs the vision model to classify the shot and write a
// caption. The model must answer with bare JSON so the parser stays dumb.
const analysisPrompt = `You are cataloguing automotive photography for a production archive.
Classify this image and write a short caption. Respond with ONLY a JSON object, no markdown:
{
  "angle": one of "front", "front 3/4", "side", "rear 3/4", "rear", "overhead", "detail",
  "view": one of "exterior", "interior", "engine", "undercarriage", "detail",
  "movement": one of "static", "rolling", "tracking",
  "tod": one of "day", "golden", "night", "studio",
  "caption": a single descriptive sentence for the shot
}`

// analysisResult is the JSON shape the vision model answers with
type analysisResult struct {
	Angle     string `json:"angle"`
	View      string `json:"view"`
	Movement  string `json:"movement"`
	TimeOfDay string `json:"tod"`
	Caption   string `json:"caption"`
}

// AnalysisService runs the AI vision pass over uploaded images with a fixed
// worker pool. A nil provider disables analysis: every submitted image is
// marked skipped immediately.
type AnalysisService struct {
	images   *persistence.ImageRepository
	tracker  *UploadTracker
	provider ai.Provider
	outbox   *OutboxService
	workers  int

	jobs   chan AnalysisJob
	cancel context.CancelFunc
	group  *errgroup.Group

	mu      sync.Mutex
	started bool
}

// Per-image budget for one vision call
const analysisTimeout = 90 * time.Second

// NewAnalysisService creates a new AnalysisService
func NewAnalysisService(images *persistence.ImageRepository, tracker *UploadTracker, provider ai.Provider, outbox *OutboxService, workers int) *AnalysisService {
	if workers < 1 {
		workers = 1
	}
	return &AnalysisService{
		images:   images,
		tracker:  tracker,
		provider: provider,
		outbox:   outbox,
		workers:  workers,
		jobs:     make(chan AnalysisJob, 1024),
	}
}

// Start launches the worker pool
func (s *AnalysisService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.group, ctx = errgroup.WithContext(ctx)

	for i := 0; i < s.workers; i++ {
		s.group.Go(func() error {
			return s.worker(ctx)
		})
	}
	log.Printf("🚀 Analysis pool started with %d workers", s.workers)
}

// Stop drains the pool and waits for in-flight jobs
func (s *AnalysisService) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.mu.Unlock()

	s.cancel()
	_ = s.group.Wait()
	log.Println("🛑 Analysis pool stopped")
}

// Submit queues an image for analysis. Without a provider the image is marked
// skipped right away so upload batches still complete.
func (s *AnalysisService) Submit(ctx context.Context, job AnalysisJob) {
	if s.provider == nil {
		s.markSkipped(ctx, job)
		return
	}

	select {
	case s.jobs <- job:
	default:
		log.Printf("⚠️ Analysis queue full, skipping image %s", job.ImageID)
		s.markSkipped(ctx, job)
	}
}

// QueueDepth reports pending jobs for the health endpoint
func (s *AnalysisService) QueueDepth() int {
	return len(s.jobs)
}

func (s *AnalysisService) worker(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case job := <-s.jobs:
			s.analyze(ctx, job)
		}
	}
}

func (s *AnalysisService) analyze(ctx context.Context, job AnalysisJob) {
	img, err := s.images.GetByID(ctx, job.ImageID)
	if err != nil || img == nil {
		log.Printf("⚠️ Analysis skipped, image %s not loadable: %v", job.ImageID, err)
		return
	}

	s.setStatus(ctx, job, string(constants.AnalysisAnalyzing), nil, "")

	data, err := os.ReadFile(img.Path)
	if err != nil {
		s.fail(ctx, job, fmt.Sprintf("read file: %v", err))
		return
	}

	callCtx, cancel := context.WithTimeout(ctx, analysisTimeout)
	defer cancel()

	raw, err := s.provider.AnalyzeImage(callCtx, data, img.MimeType, analysisPrompt)
	if err != nil {
		s.fail(ctx, job, err.Error())
		return
	}

	var result analysisResult
	if err := json.Unmarshal([]byte(stripJSONFences(raw)), &result); err != nil {
		s.fail(ctx, job, fmt.Sprintf("unparseable model response: %v", err))
		return
	}

	fields := map[string]interface{}{
		"angle":          nullable(result.Angle),
		"view":           nullable(result.View),
		"movement":       nullable(result.Movement),
		"tod":            nullable(result.TimeOfDay),
		"caption":        nullable(result.Caption),
		"analysis_error": nil,
	}
	s.setStatus(ctx, job, string(constants.AnalysisComplete), fields, "")

	if err := s.outbox.EnqueueEvent(ctx, constants.EventImageAnalyzed, EventPayload{
		Entity:   "image",
		EntityID: img.ID,
		Detail:   map[string]interface{}{"caption": result.Caption},
	}); err != nil {
		log.Printf("⚠️ Failed to enqueue image.analyzed for %s: %v", img.ID, err)
	}

	log.Printf("✅ Analyzed image %s (%s / %s)", img.ID, result.Angle, result.View)
}

func (s *AnalysisService) fail(ctx context.Context, job AnalysisJob, reason string) {
	log.Printf("❌ Analysis failed for image %s: %s", job.ImageID, reason)
	s.setStatus(ctx, job, string(constants.AnalysisFailed), map[string]interface{}{
		"analysis_error": reason,
	}, reason)
}

func (s *AnalysisService) markSkipped(ctx context.Context, job AnalysisJob) {
	s.setStatus(ctx, job, string(constants.AnalysisSkipped), nil, "")
}

// setStatus keeps the image row and the in-memory tracker in step. It uses
// its own context so a cancelled pool still records final states.
func (s *AnalysisService) setStatus(_ context.Context, job AnalysisJob, status string, fields map[string]interface{}, errMsg string) {
	writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.images.UpdateAnalysis(writeCtx, job.ImageID, status, fields); err != nil {
		log.Printf("⚠️ Failed to record analysis status %s for image %s: %v", status, job.ImageID, err)
	}
	if job.BatchID != "" {
		s.tracker.SetAnalysisStatus(job.BatchID, job.ImageID, status, errMsg)
	}
}

// stripJSONFences peels the ```json fences models wrap answers in
func stripJSONFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
	}
	return strings.TrimSpace(s)
}
