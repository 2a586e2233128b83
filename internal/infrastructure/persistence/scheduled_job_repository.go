package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/domain/models"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/constants"
)

type ScheduledJobRepository struct {
	db *sql.DB
}

func NewScheduledJobRepository(db *sql.DB) *ScheduledJobRepository {
	return &ScheduledJobRepository{db: db}
}

const scheduledJobColumns = `id, name, job_type, cron_expr, timezone, is_active, is_running,
	last_run_at, next_run_at, last_error, created_at, updated_at`

func scanScheduledJob(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.ScheduledJob, error) {
	var job models.ScheduledJob
	var timezone, lastError sql.NullString
	var isActive, isRunning interface{}
	var lastRunAt, nextRunAt sql.NullTime
	var createdRaw, updatedRaw []byte

	err := scanner.Scan(
		&job.ID, &job.Name, &job.JobType, &job.CronExpr, &timezone, &isActive, &isRunning,
		&lastRunAt, &nextRunAt, &lastError, &createdRaw, &updatedRaw)
	if err != nil {
		return nil, err
	}

	job.Timezone = strPtr(timezone)
	job.IsActive = toBool(isActive)
	job.IsRunning = toBool(isRunning)
	job.LastRunAt = timePtr(lastRunAt)
	job.NextRunAt = timePtr(nextRunAt)
	job.LastError = strPtr(lastError)
	job.CreatedAt = parseTime(createdRaw)
	job.UpdatedAt = parseTime(updatedRaw)
	return &job, nil
}

// GetDue returns active jobs whose next run time has arrived (or was never set)
func (r *ScheduledJobRepository) GetDue(ctx context.Context, now time.Time) ([]*models.ScheduledJob, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE is_active = 1 AND (next_run_at IS NULL OR next_run_at <= ?)
		ORDER BY next_run_at ASC
	`, scheduledJobColumns, constants.TableScheduledJobs)
	return r.queryJobs(ctx, query, now)
}

// GetAll lists every job definition
func (r *ScheduledJobRepository) GetAll(ctx context.Context) ([]*models.ScheduledJob, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY name ASC", scheduledJobColumns, constants.TableScheduledJobs)
	return r.queryJobs(ctx, query)
}

// GetByID fetches a job, nil if absent
func (r *ScheduledJobRepository) GetByID(ctx context.Context, id string) (*models.ScheduledJob, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ? LIMIT 1", scheduledJobColumns, constants.TableScheduledJobs)
	job, err := scanScheduledJob(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (r *ScheduledJobRepository) queryJobs(ctx context.Context, query string, args ...interface{}) ([]*models.ScheduledJob, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := make([]*models.ScheduledJob, 0)
	for rows.Next() {
		job, err := scanScheduledJob(rows)
		if err != nil {
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// AcquireLock claims a job for execution. Returns false when another worker holds it.
func (r *ScheduledJobRepository) AcquireLock(ctx context.Context, id string) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET is_running = 1, updated_at = NOW()
		WHERE id = ? AND (is_running = 0 OR is_running IS NULL)
	`, constants.TableScheduledJobs)

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ReleaseLock clears the running flag after a job finishes
func (r *ScheduledJobRepository) ReleaseLock(ctx context.Context, id string) error {
	query := fmt.Sprintf("UPDATE %s SET is_running = 0, updated_at = NOW() WHERE id = ?", constants.TableScheduledJobs)
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// RecordRun stores the outcome of an execution and the next scheduled time
func (r *ScheduledJobRepository) RecordRun(ctx context.Context, id string, ranAt time.Time, nextRun *time.Time, runErr error) error {
	var lastError *string
	if runErr != nil {
		msg := runErr.Error()
		lastError = &msg
	}

	query := fmt.Sprintf(`
		UPDATE %s SET last_run_at = ?, next_run_at = ?, last_error = ?, updated_at = NOW()
		WHERE id = ?
	`, constants.TableScheduledJobs)

	_, err := r.db.ExecContext(ctx, query, ranAt, nextRun, lastError, id)
	return err
}

// Update applies a column map to a job definition
func (r *ScheduledJobRepository) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}

	setClauses := []string{}
	args := []interface{}{}

	for k, v := range updates {
		setClauses = append(setClauses, fmt.Sprintf("%s = ?", k))
		args = append(args, v)
	}

	setClauses = append(setClauses, "updated_at = ?")
	args = append(args, time.Now())

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", constants.TableScheduledJobs, strings.Join(setClauses, ", "))
	args = append(args, id)

	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// Upsert seeds a job definition, leaving state columns alone when the row exists
func (r *ScheduledJobRepository) Upsert(ctx context.Context, job *models.ScheduledJob) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, job_type, cron_expr, timezone, is_active, is_running, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, NOW(), NOW())
		ON DUPLICATE KEY UPDATE name = VALUES(name), job_type = VALUES(job_type)
	`, constants.TableScheduledJobs)

	_, err := r.db.ExecContext(ctx, query,
		job.ID, job.Name, job.JobType, job.CronExpr, job.Timezone, job.IsActive)
	return err
}

// ClearStaleRunning resets running flags left behind by a crashed worker
func (r *ScheduledJobRepository) ClearStaleRunning(ctx context.Context, olderThan time.Time) (int64, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET is_running = 0, updated_at = NOW()
		WHERE is_running = 1 AND updated_at < ?
	`, constants.TableScheduledJobs)

	result, err := r.db.ExecContext(ctx, query, olderThan)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
