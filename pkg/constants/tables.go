package constants

// Table names for the archive schema
const (
	TableUsers          = "users"
	TableSessions       = "sessions"
	TableCars           = "cars"
	TableImages         = "images"
	TableImageMetadata  = "image_metadata"
	TableGalleries      = "galleries"
	TableGalleryImages  = "gallery_images"
	TableInspections    = "inspections"
	TableDeliverables   = "deliverables"
	TableMediaTypes     = "media_types"
	TableContacts       = "contacts"
	TableEvents         = "events"
	TableProjects       = "projects"
	TableProjectCars    = "project_cars"
	TableContainers     = "containers"
	TableInventoryItems = "inventory_items"
	TableSavedViews     = "saved_views"
	TableOutboxEvents   = "outbox_events"
	TableScheduledJobs  = "scheduled_jobs"
	TableNotifications  = "notifications"
)

// AllTables returns every table managed by the bootstrap schema
func AllTables() []string {
	return []string{
		TableUsers,
		TableSessions,
		TableCars,
		TableImages,
		TableImageMetadata,
		TableGalleries,
		TableGalleryImages,
		TableInspections,
		TableDeliverables,
		TableMediaTypes,
		TableContacts,
		TableEvents,
		TableProjects,
		TableProjectCars,
		TableContainers,
		TableInventoryItems,
		TableSavedViews,
		TableNotifications,
		TableOutboxEvents,
		TableScheduledJobs,
	}
}

// ReportableTables lists tables an admin report query may read.
// Sessions, users and outbox internals are excluded on purpose.
func ReportableTables() []string {
	return []string{
		TableCars,
		TableImages,
		TableImageMetadata,
		TableGalleries,
		TableGalleryImages,
		TableInspections,
		TableDeliverables,
		TableMediaTypes,
		TableContacts,
		TableEvents,
		TableProjects,
		TableProjectCars,
		TableContainers,
		TableInventoryItems,
	}
}

// IsReportableTable reports whether name is allowed in report queries
func IsReportableTable(name string) bool {
	for _, t := range ReportableTables() {
		if t == name {
			return true
		}
	}
	return false
}
