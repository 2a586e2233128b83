package models

import "time"

// SavedView is a stored filter over one entity, owned by a user.
// FilterExpr is an expression-language string compiled to SQL when run.
type SavedView struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"owner_id"`
	Entity     string    `json:"entity"`
	Name       string    `json:"name"`
	FilterExpr string    `json:"filter_expr"`
	SortField  *string   `json:"sort_field,omitempty"`
	SortDir    *string   `json:"sort_dir,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ScheduledJob is a recurring background job driven by a cron expression
type ScheduledJob struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	JobType   string     `json:"job_type"`
	CronExpr  string     `json:"cron_expr"`
	Timezone  *string    `json:"timezone,omitempty"`
	IsActive  bool       `json:"is_active"`
	IsRunning bool       `json:"is_running"`
	LastRunAt *time.Time `json:"last_run_at,omitempty"`
	NextRunAt *time.Time `json:"next_run_at,omitempty"`
	LastError *string    `json:"last_error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Notification is an in-app message for one user
type Notification struct {
	ID          string    `json:"id"`
	RecipientID string    `json:"recipient_id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Link        *string   `json:"link,omitempty"`
	Kind        string    `json:"kind"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}
