package models

import "time"

// ChecklistItem is one line of an inspection checklist, stored as JSON
type ChecklistItem struct {
	Item   string `json:"item"`
	Passed bool   `json:"passed"`
	Note   string `json:"note,omitempty"`
}

// Inspection records a pre-sale or intake check of a car
type Inspection struct {
	ID              string          `json:"id"`
	CarID           string          `json:"car_id"`
	Title           string          `json:"title"`
	Status          string          `json:"status"`
	InspectorName   *string         `json:"inspector_name,omitempty"`
	ScheduledAt     *time.Time      `json:"scheduled_at,omitempty"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
	OdometerReading *int            `json:"odometer_reading,omitempty"`
	Notes           *string         `json:"notes,omitempty"`
	Checklist       []ChecklistItem `json:"checklist"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Deliverable is a piece of media production work tied to a platform.
// Type is the legacy free-text media type kept for the migration endpoint;
// MediaTypeID is the reference that replaces it.
type Deliverable struct {
	ID              string     `json:"id"`
	CarID           *string    `json:"car_id,omitempty"`
	Title           string     `json:"title"`
	Description     *string    `json:"description,omitempty"`
	Platform        string     `json:"platform"`
	Type            *string    `json:"type,omitempty"`
	MediaTypeID     *string    `json:"media_type_id,omitempty"`
	AspectRatio     *string    `json:"aspect_ratio,omitempty"`
	DurationSeconds *int       `json:"duration_seconds,omitempty"`
	EditStatus      string     `json:"edit_status"`
	Editor          *string    `json:"editor,omitempty"`
	ReleaseDate     *time.Time `json:"release_date,omitempty"`
	ScheduledPostAt *time.Time `json:"scheduled_post_at,omitempty"`
	DropboxLink     *string    `json:"dropbox_link,omitempty"`
	SocialMediaLink *string    `json:"social_media_link,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// MediaType is a named production format (e.g. "Reel", "Gallery Set")
type MediaType struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     *string   `json:"description,omitempty"`
	AspectRatios    []string  `json:"aspect_ratios"`
	DefaultPlatform *string   `json:"default_platform,omitempty"`
	SortOrder       int       `json:"sort_order"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Contact is anyone the shop works with
type Contact struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Company   *string   `json:"company,omitempty"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName joins first and last name for display
func (c *Contact) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// Event is a calendar entry: shoots, deliveries, auctions, deadlines
type Event struct {
	ID                string     `json:"id"`
	CarID             *string    `json:"car_id,omitempty"`
	ProjectID         *string    `json:"project_id,omitempty"`
	Title             string     `json:"title"`
	Type              string     `json:"type"`
	Status            string     `json:"status"`
	StartAt           time.Time  `json:"start_at"`
	EndAt             *time.Time `json:"end_at,omitempty"`
	AllDay            bool       `json:"all_day"`
	Location          *string    `json:"location,omitempty"`
	AssigneeContactID *string    `json:"assignee_contact_id,omitempty"`
	Description       *string    `json:"description,omitempty"`
	ReminderMinutes   *int       `json:"reminder_minutes,omitempty"`
	ReminderSentAt    *time.Time `json:"reminder_sent_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Project bundles cars and production work for a client engagement
type Project struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     *string    `json:"description,omitempty"`
	Status          string     `json:"status"`
	ClientContactID *string    `json:"client_contact_id,omitempty"`
	StartsOn        *time.Time `json:"starts_on,omitempty"`
	DueOn           *time.Time `json:"due_on,omitempty"`
	CarIDs          []string   `json:"car_ids"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Container is a physical storage location for production gear
type Container struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	ContainerType string    `json:"container_type"`
	Location      *string   `json:"location,omitempty"`
	Description   *string   `json:"description,omitempty"`
	IsActive      bool      `json:"is_active"`
	ItemCount     int       `json:"item_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// InventoryItem is one piece of gear, optionally stored in a container
// and optionally checked out to a contact.
type InventoryItem struct {
	ID           string     `json:"id"`
	ContainerID  *string    `json:"container_id,omitempty"`
	Name         string     `json:"name"`
	Category     *string    `json:"category,omitempty"`
	Manufacturer *string    `json:"manufacturer,omitempty"`
	ModelNumber  *string    `json:"model_number,omitempty"`
	SerialNumber *string    `json:"serial_number,omitempty"`
	Quantity     int        `json:"quantity"`
	Condition    *string    `json:"condition,omitempty"`
	Notes        *string    `json:"notes,omitempty"`
	CheckedOutTo *string    `json:"checked_out_to,omitempty"`
	CheckedOutAt *time.Time `json:"checked_out_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
