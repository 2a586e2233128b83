package constants

// Context and header keys shared by middleware and handlers
const (
	ContextKeyUser      = "user"
	HeaderAuthorization = "Authorization"
)

// Standard response envelope keys
const (
	ResponseError = "error"
	FieldMessage  = "message"
)

// Scheduler tuning
const (
	ScheduleCheckIntervalSecs = 60
	ScheduleMaxRuntimeMins    = 10
	ScheduleDefaultTimezone   = "UTC"
)

// Outbox tuning
const (
	OutboxPollIntervalMillis  = 500
	OutboxRetainProcessedDays = 7
)

// Calendar defaults
const (
	UpcomingWindowDays = 7
)

// Search tuning
const (
	SearchPrefilterLimit = 50
	SearchGroupLimit     = 5
	SearchDefaultLimit   = 20
	SearchMaxLimit       = 100
)

// Saved view execution limits
const (
	ViewDefaultLimit = 50
	ViewMaxLimit     = 500
)

// Report query limits
const (
	ReportDefaultLimit = 200
	ReportMaxRows      = 1000
)

// Notification feed paging
const (
	NotificationFeedLimit    = 50
	NotificationFeedMaxLimit = 200
)

// Metadata migration tuning, matching the original sync script
const (
	MetadataBatchSize        = 3
	MetadataBatchDelaySecs   = 1
	MetadataRateLimitWaitSec = 5
)
