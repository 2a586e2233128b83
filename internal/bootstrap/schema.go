package bootstrap

import (
	"fmt"
	"log"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/infrastructure/database"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/constants"
)

// tableDDL holds one CREATE TABLE statement per managed table, in an
// order that keeps log output readable. There are no foreign keys: the
// services validate references themselves, which keeps DDL portable and
// soft deletes cheap.
var tableDDL = []struct {
	name string
	ddl  string
}{
	{constants.TableUsers, `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			email VARCHAR(255) NOT NULL UNIQUE,
			name VARCHAR(255) NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			role VARCHAR(32) NOT NULL DEFAULT 'viewer',
			is_active TINYINT(1) NOT NULL DEFAULT 1,
			last_login_at DATETIME NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`},
	{constants.TableSessions, `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL,
			token VARCHAR(1024) NOT NULL,
			expires_at DATETIME NOT NULL,
			ip_address VARCHAR(64) NULL,
			user_agent VARCHAR(512) NULL,
			is_revoked TINYINT(1) NOT NULL DEFAULT 0,
			last_activity DATETIME NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			KEY idx_sessions_user (user_id)
		)`},
	{constants.TableCars, `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			make VARCHAR(100) NOT NULL,
			model VARCHAR(100) NOT NULL,
			year INT NOT NULL,
			trim VARCHAR(100) NULL,
			vin VARCHAR(64) NULL,
			color VARCHAR(64) NULL,
			interior_color VARCHAR(64) NULL,
			mileage INT NULL,
			mileage_unit VARCHAR(8) NOT NULL DEFAULT 'mi',
			price_asking DECIMAL(12,2) NULL,
			price_sold DECIMAL(12,2) NULL,
			engine VARCHAR(255) NULL,
			transmission VARCHAR(64) NULL,
			horsepower INT NULL,
			status VARCHAR(32) NOT NULL,
			` + "`condition`" + ` VARCHAR(32) NULL,
			location VARCHAR(255) NULL,
			description TEXT NULL,
			client_contact_id VARCHAR(36) NULL,
			primary_image_id VARCHAR(36) NULL,
			is_deleted TINYINT(1) NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			KEY idx_cars_status (status),
			KEY idx_cars_make (make)
		)`},
	{constants.TableImages, `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			car_id VARCHAR(36) NULL,
			filename VARCHAR(255) NOT NULL,
			path VARCHAR(512) NOT NULL,
			url VARCHAR(512) NULL,
			width INT NULL,
			height INT NULL,
			size_bytes BIGINT NULL,
			mime_type VARCHAR(64) NULL,
			storage_status VARCHAR(16) NOT NULL DEFAULT 'pending',
			analysis_status VARCHAR(16) NOT NULL DEFAULT 'pending',
			angle VARCHAR(32) NULL,
			view VARCHAR(32) NULL,
			movement VARCHAR(32) NULL,
			tod VARCHAR(32) NULL,
			caption TEXT NULL,
			analysis_error TEXT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			KEY idx_images_car (car_id),
			KEY idx_images_analysis (analysis_status)
		)`},
	{constants.TableImageMetadata, `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			image_id VARCHAR(36) NOT NULL UNIQUE,
			provider_id VARCHAR(255) NULL,
			uploaded_at DATETIME NULL,
			variants TEXT NULL,
			raw LONGTEXT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`},
	{constants.TableGalleries, `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			description TEXT NULL,
			thumbnail_image_id VARCHAR(36) NULL,
			is_deleted TINYINT(1) NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`},
	{constants.TableGalleryImages, `
		CREATE TABLE IF NOT EXISTS %s (
			gallery_id VARCHAR(36) NOT NULL,
			image_id VARCHAR(36) NOT NULL,
			position INT NOT NULL DEFAULT 0,
			PRIMARY KEY (gallery_id, image_id),
			KEY idx_gallery_images_image (image_id)
		)`},
	{constants.TableInspections, `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			car_id VARCHAR(36) NOT NULL,
			title VARCHAR(255) NOT NULL,
			status VARCHAR(32) NOT NULL,
			inspector_name VARCHAR(255) NULL,
			scheduled_at DATETIME NULL,
			odometer_reading INT NULL,
			checklist JSON NULL,
			notes TEXT NULL,
			completed_at DATETIME NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			KEY idx_inspections_car (car_id)
		)`},
	{constants.TableDeliverables, `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			car_id VARCHAR(36) NULL,
			title VARCHAR(255) NOT NULL,
			description TEXT NULL,
			platform VARCHAR(64) NOT NULL,
			type VARCHAR(100) NULL,
			media_type_id VARCHAR(36) NULL,
			aspect_ratio VARCHAR(16) NULL,
			duration_seconds INT NULL,
			edit_status VARCHAR(32) NOT NULL DEFAULT 'not_started',
			editor VARCHAR(255) NULL,
			release_date DATETIME NULL,
			scheduled_post_at DATETIME NULL,
			dropbox_link VARCHAR(512) NULL,
			social_media_link VARCHAR(512) NULL,
			is_deleted TINYINT(1) NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			KEY idx_deliverables_car (car_id),
			KEY idx_deliverables_status (edit_status)
		)`},
	{constants.TableMediaTypes, `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(100) NOT NULL UNIQUE,
			description TEXT NULL,
			aspect_ratios TEXT NULL,
			default_platform VARCHAR(64) NULL,
			sort_order INT NOT NULL DEFAULT 0,
			is_active TINYINT(1) NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`},
	{constants.TableContacts, `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			first_name VARCHAR(100) NULL,
			last_name VARCHAR(100) NULL,
			email VARCHAR(255) NULL,
			phone VARCHAR(64) NULL,
			role VARCHAR(64) NULL,
			company VARCHAR(255) NULL,
			notes TEXT NULL,
			status VARCHAR(32) NOT NULL DEFAULT 'active',
			is_deleted TINYINT(1) NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			KEY idx_contacts_role (role)
		)`},
	{constants.TableEvents, `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			description TEXT NULL,
			event_type VARCHAR(64) NULL,
			status VARCHAR(32) NOT NULL DEFAULT 'scheduled',
			car_id VARCHAR(36) NULL,
			project_id VARCHAR(36) NULL,
			location VARCHAR(255) NULL,
			start_at DATETIME NOT NULL,
			end_at DATETIME NULL,
			all_day TINYINT(1) NOT NULL DEFAULT 0,
			assignee_contact_id VARCHAR(36) NULL,
			reminder_minutes INT NULL,
			reminder_sent_at DATETIME NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			KEY idx_events_start (start_at),
			KEY idx_events_car (car_id),
			KEY idx_events_project (project_id)
		)`},
	{constants.TableProjects, `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			description TEXT NULL,
			status VARCHAR(32) NOT NULL,
			client_contact_id VARCHAR(36) NULL,
			starts_on DATETIME NULL,
			due_on DATETIME NULL,
			is_deleted TINYINT(1) NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`},
	{constants.TableProjectCars, `
		CREATE TABLE IF NOT EXISTS %s (
			project_id VARCHAR(36) NOT NULL,
			car_id VARCHAR(36) NOT NULL,
			PRIMARY KEY (project_id, car_id)
		)`},
	{constants.TableContainers, `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			container_type VARCHAR(64) NULL,
			location VARCHAR(255) NULL,
			description TEXT NULL,
			is_active TINYINT(1) NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`},
	{constants.TableInventoryItems, `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			category VARCHAR(100) NULL,
			container_id VARCHAR(36) NULL,
			manufacturer VARCHAR(255) NULL,
			model_number VARCHAR(100) NULL,
			serial_number VARCHAR(100) NULL,
			quantity INT NOT NULL DEFAULT 1,
			item_condition VARCHAR(64) NULL,
			notes TEXT NULL,
			checked_out_to VARCHAR(36) NULL,
			checked_out_at DATETIME NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			KEY idx_inventory_container (container_id)
		)`},
	{constants.TableSavedViews, `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			owner_id VARCHAR(36) NOT NULL,
			entity VARCHAR(32) NOT NULL,
			name VARCHAR(255) NOT NULL,
			filter_expr TEXT NULL,
			sort_field VARCHAR(64) NULL,
			sort_dir VARCHAR(4) NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			KEY idx_saved_views_owner (owner_id)
		)`},
	{constants.TableNotifications, `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			recipient_id VARCHAR(36) NOT NULL,
			title VARCHAR(255) NOT NULL,
			body TEXT NULL,
			link VARCHAR(512) NULL,
			kind VARCHAR(64) NULL,
			is_read TINYINT(1) NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			KEY idx_notifications_recipient (recipient_id, is_read)
		)`},
	{constants.TableOutboxEvents, `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			event_type VARCHAR(64) NOT NULL,
			payload LONGTEXT NOT NULL,
			status VARCHAR(16) NOT NULL DEFAULT 'pending',
			retry_count INT NOT NULL DEFAULT 0,
			error_message TEXT NULL,
			processed_at DATETIME NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			KEY idx_outbox_status (status, created_at)
		)`},
	{constants.TableScheduledJobs, `
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(100) NOT NULL UNIQUE,
			job_type VARCHAR(64) NOT NULL,
			cron_expr VARCHAR(64) NOT NULL,
			timezone VARCHAR(64) NULL,
			is_active TINYINT(1) NOT NULL DEFAULT 1,
			is_running TINYINT(1) NOT NULL DEFAULT 0,
			last_run_at DATETIME NULL,
			next_run_at DATETIME NULL,
			last_error TEXT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`},
}

// InitializeSchema creates every archive table that does not exist yet
func InitializeSchema(db *database.MySQLConnection) error {
	log.Println("🔧 Initializing archive schema...")

	for _, t := range tableDDL {
		stmt := fmt.Sprintf(t.ddl, t.name)
		if _, err := db.DB().Exec(stmt); err != nil {
			log.Printf("⚠️ Failed to create table %s: %v", t.name, err)
			return fmt.Errorf("create table %s: %w", t.name, err)
		}
	}

	log.Printf("✅ Schema ready (%d tables)", len(tableDDL))
	return nil
}
