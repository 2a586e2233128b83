package constants

// UserRole represents the access level of a user account
type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleEditor UserRole = "editor"
	RoleViewer UserRole = "viewer"
)

// IsValidRole reports whether s names a known role
func IsValidRole(s string) bool {
	switch UserRole(s) {
	case RoleAdmin, RoleEditor, RoleViewer:
		return true
	}
	return false
}

// CarStatus represents the sale status of a car
type CarStatus string

const (
	CarStatusAvailable CarStatus = "available"
	CarStatusPending   CarStatus = "pending"
	CarStatusSold      CarStatus = "sold"
	CarStatusArchived  CarStatus = "archived"
)

// IsValidCarStatus reports whether s names a known car status
func IsValidCarStatus(s string) bool {
	switch CarStatus(s) {
	case CarStatusAvailable, CarStatusPending, CarStatusSold, CarStatusArchived:
		return true
	}
	return false
}

// StorageStatus tracks the file-persistence stage of an upload
type StorageStatus string

const (
	StoragePending StorageStatus = "pending"
	StorageStored  StorageStatus = "stored"
	StorageFailed  StorageStatus = "failed"
)

// AnalysisStatus tracks the AI-analysis stage of an upload
type AnalysisStatus string

const (
	AnalysisPending   AnalysisStatus = "pending"
	AnalysisAnalyzing AnalysisStatus = "analyzing"
	AnalysisComplete  AnalysisStatus = "complete"
	AnalysisFailed    AnalysisStatus = "failed"
	AnalysisSkipped   AnalysisStatus = "skipped"
)

// IsTerminalAnalysisStatus reports whether the analysis stage has finished
func IsTerminalAnalysisStatus(s AnalysisStatus) bool {
	return s == AnalysisComplete || s == AnalysisFailed || s == AnalysisSkipped
}

// InspectionStatus represents the lifecycle of an inspection
type InspectionStatus string

const (
	InspectionScheduled  InspectionStatus = "scheduled"
	InspectionInProgress InspectionStatus = "in_progress"
	InspectionPass       InspectionStatus = "pass"
	InspectionFail       InspectionStatus = "fail"
)

// DeliverablePlatform is the publishing destination of a deliverable
type DeliverablePlatform string

const (
	PlatformInstagram     DeliverablePlatform = "instagram"
	PlatformYouTube       DeliverablePlatform = "youtube"
	PlatformBringATrailer DeliverablePlatform = "bringatrailer"
	PlatformWebsite       DeliverablePlatform = "website"
	PlatformEmail         DeliverablePlatform = "email"
	PlatformOther         DeliverablePlatform = "other"
)

// EditStatus represents the production stage of a deliverable
type EditStatus string

const (
	EditNotStarted EditStatus = "not_started"
	EditInProgress EditStatus = "in_progress"
	EditReview     EditStatus = "review"
	EditDone       EditStatus = "done"
)

// ContactRole describes what a contact does for the shop
type ContactRole string

const (
	ContactClient       ContactRole = "client"
	ContactPhotographer ContactRole = "photographer"
	ContactEditor       ContactRole = "editor"
	ContactInspector    ContactRole = "inspector"
	ContactTransport    ContactRole = "transport"
	ContactOther        ContactRole = "other"
)

// ContactStatus marks whether a contact is still worked with
type ContactStatus string

const (
	ContactActive   ContactStatus = "active"
	ContactInactive ContactStatus = "inactive"
)

// EventType categorises calendar events
type EventType string

const (
	EventShoot      EventType = "shoot"
	EventDelivery   EventType = "delivery"
	EventAuction    EventType = "auction"
	EventDeadline   EventType = "deadline"
	EventInspection EventType = "inspection"
	EventOther      EventType = "other"
)

// EventStatus tracks whether a calendar entry still stands
type EventStatus string

const (
	EventStatusScheduled EventStatus = "scheduled"
	EventStatusDone      EventStatus = "done"
	EventStatusCancelled EventStatus = "cancelled"
)

// ProjectStatus represents the lifecycle of a project
type ProjectStatus string

const (
	ProjectPlanning ProjectStatus = "planning"
	ProjectActive   ProjectStatus = "active"
	ProjectOnHold   ProjectStatus = "on_hold"
	ProjectDone     ProjectStatus = "done"
)

// ContainerType describes the physical kind of a storage container
type ContainerType string

const (
	ContainerCase    ContainerType = "case"
	ContainerShelf   ContainerType = "shelf"
	ContainerBin     ContainerType = "bin"
	ContainerPelican ContainerType = "pelican"
	ContainerRack    ContainerType = "rack"
	ContainerOther   ContainerType = "other"
)

// JobType names the scheduled job handlers known to the scheduler
type JobType string

const (
	JobEventReminders JobType = "event_reminders"
	JobOutboxCleanup  JobType = "outbox_cleanup"
	JobMetadataSync   JobType = "metadata_sync"
)
