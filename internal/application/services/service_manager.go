package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/ai"
	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/config"
	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/infrastructure/cloudflare"
	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/infrastructure/database"
	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/infrastructure/persistence"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/constants"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/errors"
)

// ServiceManager orchestrates all services with dependency injection
type ServiceManager struct {
	db *database.MySQLConnection
	wg sync.WaitGroup

	// Core plumbing
	TxManager *TransactionManager
	EventBus  *EventBus
	Outbox    *OutboxService
	Tracker   *UploadTracker

	// Domain services
	Auth          *AuthService
	Users         *UserService
	Cars          *CarService
	Images        *ImageService
	Analysis      *AnalysisService
	Galleries     *GalleryService
	Inspections   *InspectionService
	Deliverables  *DeliverableService
	MediaTypes    *MediaTypeService
	Contacts      *ContactService
	Events        *EventService
	Projects      *ProjectService
	Inventory     *InventoryService
	Search        *SearchService
	Views         *SavedViewService
	Copywriting   *CopywritingService
	Reports       *ReportService
	Migration     *MetadataMigrationService
	Notifications *NotificationService
	Scheduler     *SchedulerService
}

// NewServiceManager creates a new service manager with all dependencies wired
func NewServiceManager(db *database.MySQLConnection, cfg config.Config) *ServiceManager {
	sm := &ServiceManager{
		db: db,
	}

	// Repositories share the one connection pool
	users := persistence.NewUserRepository(db.DB())
	sessions := persistence.NewSessionRepository(db.DB())
	cars := persistence.NewCarRepository(db.DB())
	images := persistence.NewImageRepository(db.DB())
	metadata := persistence.NewImageMetadataRepository(db.DB())
	galleries := persistence.NewGalleryRepository(db.DB())
	inspections := persistence.NewInspectionRepository(db.DB())
	deliverables := persistence.NewDeliverableRepository(db.DB())
	mediaTypes := persistence.NewMediaTypeRepository(db.DB())
	contacts := persistence.NewContactRepository(db.DB())
	events := persistence.NewEventRepository(db.DB())
	projects := persistence.NewProjectRepository(db.DB())
	containers := persistence.NewContainerRepository(db.DB())
	items := persistence.NewInventoryRepository(db.DB())
	views := persistence.NewSavedViewRepository(db.DB())
	notifications := persistence.NewNotificationRepository(db.DB())
	scheduledJobs := persistence.NewScheduledJobRepository(db.DB())

	// Initialize services in dependency order
	sm.TxManager = NewTransactionManager(db)
	sm.EventBus = NewEventBus()
	sm.Outbox = NewOutboxService(db, sm.EventBus, sm.TxManager)
	sm.Tracker = NewUploadTracker()

	// A missing API key disables AI features, it does not block startup
	provider, err := ai.FromEnv()
	if err != nil {
		log.Printf("⚠️ AI provider disabled: %v", err)
		provider = nil
	}

	sm.Analysis = NewAnalysisService(images, sm.Tracker, provider, sm.Outbox, cfg.Workers.AnalysisWorkers)
	sm.Auth = NewAuthService(users, sessions)
	sm.Users = NewUserService(users, sessions)
	sm.Cars = NewCarService(cars, sm.TxManager, sm.Outbox)
	sm.Images = NewImageService(images, galleries, metadata, cars, sm.TxManager, sm.Outbox,
		sm.Tracker, sm.Analysis, cfg.Uploads.Dir, cfg.Uploads.MaxSizeMB)
	sm.Galleries = NewGalleryService(galleries, images, sm.TxManager)
	sm.Inspections = NewInspectionService(inspections, cars, sm.TxManager, sm.Outbox)
	sm.Deliverables = NewDeliverableService(deliverables, mediaTypes, cars, sm.TxManager, sm.Outbox)
	sm.MediaTypes = NewMediaTypeService(mediaTypes, deliverables)
	sm.Contacts = NewContactService(contacts)
	sm.Events = NewEventService(events, cars, projects, contacts, sm.Outbox)
	sm.Projects = NewProjectService(projects, cars, contacts, sm.TxManager)
	sm.Inventory = NewInventoryService(containers, items, contacts)
	sm.Search = NewSearchService(cars, contacts, galleries, deliverables, projects, events)
	sm.Views = NewSavedViewService(views)
	sm.Copywriting = NewCopywritingService(provider, cars, images)
	sm.Reports = NewReportService(db.DB())

	cfClient := cloudflare.NewClientFromEnv()
	sm.Migration = NewMetadataMigrationService(images, metadata, cfClient)

	// Notifications hang off the bus, so they fire only after the outbox
	// has durably stored the event
	sm.Notifications = NewNotificationService(notifications, users)
	sm.Notifications.SubscribeTo(sm.EventBus)

	sm.Scheduler = NewSchedulerService(scheduledJobs)
	sm.Scheduler.RegisterJob(string(constants.JobEventReminders), func(ctx context.Context) error {
		return sm.Events.ProcessDueReminders(ctx)
	})
	sm.Scheduler.RegisterJob(string(constants.JobOutboxCleanup), func(ctx context.Context) error {
		removed, err := sm.Outbox.CleanupProcessed(ctx, constants.OutboxRetainProcessedDays*24*time.Hour)
		if err != nil {
			return err
		}
		if removed > 0 {
			log.Printf("🗑️ Outbox cleanup removed %d processed events", removed)
		}
		return nil
	})
	sm.Scheduler.RegisterJob(string(constants.JobMetadataSync), func(ctx context.Context) error {
		if !cfClient.Configured() {
			return nil
		}
		if _, err := sm.Migration.Run(ctx); err != nil {
			if errors.IsInUse(err) {
				log.Println("⏭️ Metadata sync already in progress, skipping")
				return nil
			}
			return err
		}
		return nil
	})

	return sm
}

// Start brings up the background machinery: the analysis pool, the outbox
// worker, and the scheduler loop.
func (sm *ServiceManager) Start() {
	sm.Analysis.Start()
	sm.Outbox.StartWorker(constants.OutboxPollIntervalMillis * time.Millisecond)

	sm.wg.Add(1)
	go func() {
		defer sm.wg.Done()
		sm.Scheduler.Start()
	}()

	log.Println("🚀 Background services started")
}

// Stop shuts the background machinery down in reverse order. In-flight
// scheduled jobs and analysis work finish before it returns.
func (sm *ServiceManager) Stop() {
	sm.Scheduler.Stop()
	sm.wg.Wait()
	sm.Outbox.StopWorker()
	sm.Analysis.Stop()

	log.Println("🛑 Background services stopped")
}

// Ping verifies database connectivity
func (sm *ServiceManager) Ping(ctx context.Context) error {
	return sm.db.DB().PingContext(ctx)
}
