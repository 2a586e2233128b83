package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/domain/models"
	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/infrastructure/persistence"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/constants"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/errors"
)

// JobFunc is the body of a scheduled job
type JobFunc func(ctx context.Context) error

// SchedulerService runs registered jobs against cron definitions stored in
// the scheduled_jobs table. Execution locks live in the table too, so
// multiple instances never run the same job twice.
type SchedulerService struct {
	repo     *persistence.ScheduledJobRepository
	jobs     map[string]JobFunc
	jobsMu   sync.RWMutex
	stopChan chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	running  bool
	stopped  bool // Prevents double-close of stopChan
}

// NewSchedulerService creates a new scheduler service
func NewSchedulerService(repo *persistence.ScheduledJobRepository) *SchedulerService {
	return &SchedulerService{
		repo:     repo,
		jobs:     make(map[string]JobFunc),
		stopChan: make(chan struct{}),
	}
}

// RegisterJob binds a job type to its runner. Definitions with an
// unregistered type are skipped with a warning.
func (s *SchedulerService) RegisterJob(jobType string, fn JobFunc) {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()
	s.jobs[jobType] = fn
}

// Start begins the scheduler background loop
func (s *SchedulerService) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	log.Println("⏰ Scheduler service starting...")

	ticker := time.NewTicker(time.Duration(constants.ScheduleCheckIntervalSecs) * time.Second)
	defer ticker.Stop()

	// Run immediately on start
	s.runPendingJobs()

	for {
		select {
		case <-ticker.C:
			s.runPendingJobs()
		case <-s.stopChan:
			log.Println("⏰ Scheduler service stopping...")
			s.wg.Wait() // Wait for running jobs to complete
			log.Println("⏰ Scheduler service stopped")
			return
		}
	}
}

// Stop gracefully stops the scheduler. Safe to call even when Start has
// not been scheduled yet: the loop exits on its first select.
func (s *SchedulerService) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.stopped = true
	s.mu.Unlock()

	close(s.stopChan)
}

// runPendingJobs finds and executes all due jobs
func (s *SchedulerService) runPendingJobs() {
	jobs, err := s.repo.GetDue(context.Background(), time.Now().UTC())
	if err != nil {
		log.Printf("⚠️ Scheduler failed to load due jobs: %v", err)
		return
	}

	now := time.Now().UTC()
	for _, job := range jobs {
		if !job.IsActive {
			continue
		}
		if !s.isJobDue(job, now) {
			continue
		}

		s.wg.Add(1)
		go func(j models.ScheduledJob) {
			defer s.wg.Done()
			s.executeJob(&j)
		}(*job)
	}
}

// isJobDue checks whether a job should run now
func (s *SchedulerService) isJobDue(job *models.ScheduledJob, now time.Time) bool {
	if job.NextRunAt != nil && !now.Before(*job.NextRunAt) {
		return true
	}

	// Never ran and no next run computed yet: a fresh definition, run immediately
	if job.NextRunAt == nil && job.LastRunAt == nil {
		return true
	}

	return false
}

// executeJob runs a single job with safety guards
func (s *SchedulerService) executeJob(job *models.ScheduledJob) {
	log.Printf("⏰ Starting scheduled job: %s (%s)", job.Name, job.ID)

	acquired, err := s.repo.AcquireLock(context.Background(), job.ID)
	if err != nil {
		log.Printf("⚠️ Failed to acquire lock for job %s: %v", job.ID, err)
		return
	}
	if !acquired {
		log.Printf("⏭️ Job %s is already running, skipping", job.Name)
		return
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("🔥 Panic in scheduled job %s: %v", job.Name, r)
		}
		if err := s.repo.ReleaseLock(context.Background(), job.ID); err != nil {
			log.Printf("⚠️ Failed to release execution lock for job %s: %v", job.ID, err)
		}
	}()

	timeout := time.Duration(constants.ScheduleMaxRuntimeMins) * time.Minute
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.jobsMu.RLock()
	fn, ok := s.jobs[job.JobType]
	s.jobsMu.RUnlock()

	startTime := time.Now()
	var execErr error
	if !ok {
		execErr = fmt.Errorf("no runner registered for job type %s", job.JobType)
	} else {
		execErr = fn(ctx)
	}
	duration := time.Since(startTime)

	if execErr != nil {
		log.Printf("❌ Scheduled job %s failed after %v: %v", job.Name, duration, execErr)
	} else {
		log.Printf("✅ Scheduled job %s completed in %v", job.Name, duration)
	}

	ranAt := time.Now().UTC()
	var nextRun *time.Time
	if next, err := s.calculateNextRun(job.CronExpr, job.Timezone); err != nil {
		log.Printf("⚠️ Failed to calculate next run for job %s: %v", job.Name, err)
	} else {
		nextRun = &next
	}

	if err := s.repo.RecordRun(context.Background(), job.ID, ranAt, nextRun, execErr); err != nil {
		log.Printf("⚠️ Failed to record run for job %s: %v", job.Name, err)
	}
}

// ListJobs returns every job definition for the admin surface
func (s *SchedulerService) ListJobs(ctx context.Context) ([]*models.ScheduledJob, error) {
	return s.repo.GetAll(ctx)
}

// JobUpdateRequest carries the mutable fields of a job definition
type JobUpdateRequest struct {
	CronExpr *string `json:"cron_expr,omitempty"`
	Timezone *string `json:"timezone,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// UpdateJob changes a job's schedule or active flag. A new cron expression
// must parse, and next_run_at is recomputed from it immediately.
func (s *SchedulerService) UpdateJob(ctx context.Context, id string, req JobUpdateRequest) (*models.ScheduledJob, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if job == nil {
		return nil, errors.NewNotFoundError("Scheduled job", id)
	}

	updates := map[string]interface{}{}

	cronExpr := job.CronExpr
	timezone := job.Timezone
	if req.CronExpr != nil {
		cronExpr = strings.TrimSpace(*req.CronExpr)
		if cronExpr == "" {
			return nil, errors.NewValidationError("cron_expr", "Cron expression is required")
		}
		updates["cron_expr"] = cronExpr
	}
	if req.Timezone != nil {
		tz := strings.TrimSpace(*req.Timezone)
		if tz == "" {
			timezone = nil
			updates["timezone"] = nil
		} else {
			if _, err := time.LoadLocation(tz); err != nil {
				return nil, errors.NewValidationError("timezone", "Unknown timezone")
			}
			timezone = &tz
			updates["timezone"] = tz
		}
	}

	if req.CronExpr != nil || req.Timezone != nil {
		next, err := s.calculateNextRun(cronExpr, timezone)
		if err != nil {
			return nil, errors.NewValidationError("cron_expr", "Invalid cron expression")
		}
		updates["next_run_at"] = next
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) == 0 {
		return job, nil
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	log.Printf("⏰ Scheduled job updated: %s", job.Name)
	return s.repo.GetByID(ctx, id)
}

// calculateNextRun parses the cron expression and returns the next execution time
func (s *SchedulerService) calculateNextRun(cronExpr string, timezone *string) (time.Time, error) {
	loc := time.UTC
	if timezone != nil && *timezone != "" && *timezone != constants.ScheduleDefaultTimezone {
		var err error
		loc, err = time.LoadLocation(*timezone)
		if err != nil {
			log.Printf("⚠️ Invalid timezone %s, falling back to UTC", *timezone)
			loc = time.UTC
		}
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(cronExpr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid cron expression: %w", err)
	}

	now := time.Now().In(loc)
	return schedule.Next(now).UTC(), nil
}
