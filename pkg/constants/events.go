package constants

// DomainEvent names published through the outbox and event bus
const (
	EventCarCreated        = "car.created"
	EventCarUpdated        = "car.updated"
	EventCarDeleted        = "car.deleted"
	EventImageUploaded     = "image.uploaded"
	EventImageAnalyzed     = "image.analyzed"
	EventInspectionDone    = "inspection.completed"
	EventDeliverableStatus = "deliverable.status_changed"
	EventReminderDue       = "event.reminder"
)
