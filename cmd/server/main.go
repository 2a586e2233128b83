package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/application/services"
	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/bootstrap"
	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/config"
	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/infrastructure/database"
	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/interfaces/middleware"
	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/interfaces/rest"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database connection
	db, err := database.GetInstance()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("✅ Database connection established")

	ctx := context.Background()

	// Create tables before anything touches them
	if err := bootstrap.InitializeSchema(db); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	// Seed admin account, scheduled job definitions and media types
	if err := bootstrap.SeedSystemData(ctx, db); err != nil {
		log.Fatalf("Failed to seed system data: %v", err)
	}

	// Requeue work a previous process left hanging
	if err := bootstrap.RecoverStaleWork(ctx, db); err != nil {
		log.Printf("⚠️  Warning: Failed to recover stale work: %v", err)
	}

	// Initialize service manager
	svcMgr := services.NewServiceManager(db, cfg)
	log.Println("🔧 Service manager initialized")

	// Create Gin router
	router := gin.Default()

	// CORS middleware - Allow credentials from any origin
	router.Use(middleware.Cors())

	// Initialize handlers
	authHandler := rest.NewAuthHandler(svcMgr)
	userHandler := rest.NewUserHandler(svcMgr)
	carHandler := rest.NewCarHandler(svcMgr)
	imageHandler := rest.NewImageHandler(svcMgr)
	galleryHandler := rest.NewGalleryHandler(svcMgr)
	inspectionHandler := rest.NewInspectionHandler(svcMgr)
	deliverableHandler := rest.NewDeliverableHandler(svcMgr)
	mediaTypeHandler := rest.NewMediaTypeHandler(svcMgr)
	contactHandler := rest.NewContactHandler(svcMgr)
	eventHandler := rest.NewEventHandler(svcMgr)
	projectHandler := rest.NewProjectHandler(svcMgr)
	inventoryHandler := rest.NewInventoryHandler(svcMgr)
	searchHandler := rest.NewSearchHandler(svcMgr)
	viewHandler := rest.NewViewHandler(svcMgr)
	copywritingHandler := rest.NewCopywritingHandler(svcMgr)
	reportHandler := rest.NewReportHandler(svcMgr)
	adminHandler := rest.NewAdminHandler(svcMgr)
	notificationHandler := rest.NewNotificationHandler(svcMgr)

	// Health check - reports database, outbox and analysis queue state
	router.GET("/health", adminHandler.Health)

	// Debug/pprof endpoints for goroutine debugging
	// Goroutine stacks: http://localhost:8080/debug/pprof/goroutine?debug=2
	debug := router.Group("/debug/pprof")
	{
		debug.GET("/", gin.WrapH(http.DefaultServeMux))
		debug.GET("/goroutine", gin.WrapH(http.DefaultServeMux))
		debug.GET("/heap", gin.WrapH(http.DefaultServeMux))
		debug.GET("/threadcreate", gin.WrapH(http.DefaultServeMux))
		debug.GET("/block", gin.WrapH(http.DefaultServeMux))
		debug.GET("/mutex", gin.WrapH(http.DefaultServeMux))
		debug.GET("/profile", gin.WrapH(http.DefaultServeMux))
		debug.GET("/trace", gin.WrapH(http.DefaultServeMux))
	}

	// Initialize middleware
	requireAuth := middleware.RequireAuth(svcMgr.Auth)
	requireAdmin := middleware.RequireAdmin()

	// API routes
	api := router.Group("/api")
	{
		// Public Auth routes (no authentication required)
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", requireAuth, authHandler.Logout)
			auth.GET("/me", requireAuth, authHandler.GetMe)
			auth.POST("/change-password", requireAuth, authHandler.ChangePassword)

			// Account management (admin only)
			auth.POST("/register", requireAuth, requireAdmin, userHandler.Register)
			auth.GET("/users", requireAuth, requireAdmin, userHandler.GetUsers)
			auth.GET("/users/:id", requireAuth, requireAdmin, userHandler.GetUser)
			auth.PUT("/users/:id", requireAuth, requireAdmin, userHandler.UpdateUser)
			auth.DELETE("/users/:id", requireAuth, requireAdmin, userHandler.DeleteUser)
		}

		// Protected Car routes
		cars := api.Group("/cars")
		cars.Use(requireAuth)
		{
			cars.GET("", carHandler.ListCars)
			cars.POST("", carHandler.CreateCar)
			cars.GET("/:id", carHandler.GetCar)
			cars.PATCH("/:id", carHandler.UpdateCar)
			cars.DELETE("/:id", carHandler.DeleteCar)
			cars.GET("/:id/images", carHandler.GetCarImages)
			cars.GET("/:id/inspections", carHandler.GetCarInspections)
			cars.GET("/:id/deliverables", carHandler.GetCarDeliverables)
			cars.POST("/:id/copy", carHandler.GenerateCopy)
		}

		// Protected Image routes
		images := api.Group("/images")
		images.Use(requireAuth)
		{
			// Upload routes MUST be before /:id to avoid conflict
			images.POST("/upload", imageHandler.Upload)
			images.GET("/upload/:batch/status", imageHandler.UploadStatus)
			images.GET("", imageHandler.ListImages)
			images.GET("/:id", imageHandler.GetImage)
			images.PATCH("/:id", imageHandler.UpdateImage)
			images.DELETE("/:id", imageHandler.DeleteImage)
			images.POST("/:id/extend-canvas", imageHandler.ExtendCanvas)
			images.POST("/:id/matte", imageHandler.Matte)
			images.POST("/:id/crop", imageHandler.Crop)
		}

		// Protected Gallery routes
		galleries := api.Group("/galleries")
		galleries.Use(requireAuth)
		{
			galleries.GET("", galleryHandler.ListGalleries)
			galleries.POST("", galleryHandler.CreateGallery)
			galleries.GET("/:id", galleryHandler.GetGallery)
			galleries.PUT("/:id", galleryHandler.UpdateGallery)
			galleries.DELETE("/:id", galleryHandler.DeleteGallery)
			galleries.GET("/:id/images", galleryHandler.GetGalleryImages)
			galleries.PUT("/:id/images", galleryHandler.SetGalleryImages)
			galleries.POST("/:id/images/:imageId/position", galleryHandler.MoveGalleryImage)
		}

		// Protected Inspection routes
		inspections := api.Group("/inspections")
		inspections.Use(requireAuth)
		{
			inspections.POST("", inspectionHandler.CreateInspection)
			inspections.GET("/:id", inspectionHandler.GetInspection)
			inspections.PATCH("/:id", inspectionHandler.UpdateInspection)
			inspections.POST("/:id/complete", inspectionHandler.CompleteInspection)
			inspections.DELETE("/:id", inspectionHandler.DeleteInspection)
		}

		// Protected Deliverable routes
		deliverables := api.Group("/deliverables")
		deliverables.Use(requireAuth)
		{
			deliverables.GET("", deliverableHandler.ListDeliverables)
			deliverables.POST("", deliverableHandler.CreateDeliverable)
			deliverables.GET("/:id", deliverableHandler.GetDeliverable)
			deliverables.PATCH("/:id", deliverableHandler.UpdateDeliverable)
			deliverables.DELETE("/:id", deliverableHandler.DeleteDeliverable)
			deliverables.POST("/migrate-media-types", requireAdmin, deliverableHandler.MigrateMediaTypes)
		}

		// Protected Media Type routes (mutations are admin only)
		mediaTypes := api.Group("/media-types")
		mediaTypes.Use(requireAuth)
		{
			mediaTypes.GET("", mediaTypeHandler.ListMediaTypes)
			mediaTypes.GET("/:id", mediaTypeHandler.GetMediaType)
			mediaTypes.POST("", requireAdmin, mediaTypeHandler.CreateMediaType)
			mediaTypes.PATCH("/:id", requireAdmin, mediaTypeHandler.UpdateMediaType)
			mediaTypes.DELETE("/:id", requireAdmin, mediaTypeHandler.DeleteMediaType)
		}

		// Protected Contact routes
		contacts := api.Group("/contacts")
		contacts.Use(requireAuth)
		{
			contacts.GET("", contactHandler.ListContacts)
			contacts.POST("", contactHandler.CreateContact)
			contacts.GET("/:id", contactHandler.GetContact)
			contacts.PATCH("/:id", contactHandler.UpdateContact)
			contacts.DELETE("/:id", contactHandler.DeleteContact)
		}

		// Protected Event routes
		events := api.Group("/events")
		events.Use(requireAuth)
		{
			events.GET("", eventHandler.ListEvents)
			events.POST("", eventHandler.CreateEvent)
			events.GET("/upcoming", eventHandler.UpcomingEvents)
			events.GET("/:id", eventHandler.GetEvent)
			events.PATCH("/:id", eventHandler.UpdateEvent)
			events.DELETE("/:id", eventHandler.DeleteEvent)
		}

		// Protected Project routes
		projects := api.Group("/projects")
		projects.Use(requireAuth)
		{
			projects.GET("", projectHandler.ListProjects)
			projects.POST("", projectHandler.CreateProject)
			projects.GET("/:id", projectHandler.GetProject)
			projects.PATCH("/:id", projectHandler.UpdateProject)
			projects.PUT("/:id/cars", projectHandler.ReplaceProjectCars)
			projects.DELETE("/:id", projectHandler.DeleteProject)
		}

		// Protected Container routes
		containers := api.Group("/containers")
		containers.Use(requireAuth)
		{
			containers.GET("", inventoryHandler.ListContainers)
			containers.POST("", inventoryHandler.CreateContainer)
			containers.GET("/:id", inventoryHandler.GetContainer)
			containers.PATCH("/:id", inventoryHandler.UpdateContainer)
			containers.DELETE("/:id", inventoryHandler.DeleteContainer)
		}

		// Protected Inventory routes
		inventory := api.Group("/inventory")
		inventory.Use(requireAuth)
		{
			inventory.GET("", inventoryHandler.ListItems)
			inventory.POST("", inventoryHandler.CreateItem)
			inventory.GET("/:id", inventoryHandler.GetItem)
			inventory.PATCH("/:id", inventoryHandler.UpdateItem)
			inventory.DELETE("/:id", inventoryHandler.DeleteItem)
			inventory.POST("/:id/checkout", inventoryHandler.CheckoutItem)
			inventory.POST("/:id/checkin", inventoryHandler.CheckinItem)
		}

		// Protected Search routes
		search := api.Group("/search")
		search.Use(requireAuth)
		{
			search.GET("", searchHandler.GlobalSearch)
			search.GET("/:entity", searchHandler.SearchEntity)
		}

		// Protected Saved View routes
		views := api.Group("/views")
		views.Use(requireAuth)
		{
			views.GET("", viewHandler.ListViews)
			views.POST("", viewHandler.CreateView)
			views.GET("/:id", viewHandler.GetView)
			views.PATCH("/:id", viewHandler.UpdateView)
			views.DELETE("/:id", viewHandler.DeleteView)
			views.POST("/:id/run", viewHandler.RunView)
		}

		// Protected Copywriting routes
		copywriting := api.Group("/copywriting")
		copywriting.Use(requireAuth)
		{
			copywriting.POST("/listing", copywritingHandler.GenerateListing)
			copywriting.POST("/caption", copywritingHandler.GenerateCaption)
		}

		// Protected Report routes (admin only)
		reports := api.Group("/reports")
		reports.Use(requireAuth, requireAdmin)
		{
			reports.POST("/query", reportHandler.RunQuery)
		}

		// Admin routes (admin only)
		admin := api.Group("/admin")
		admin.Use(requireAuth, requireAdmin)
		{
			admin.GET("/tables", adminHandler.GetTables)
			admin.POST("/migrate-metadata", adminHandler.MigrateMetadata)
			admin.GET("/jobs", adminHandler.GetJobs)
			admin.PATCH("/jobs/:id", adminHandler.UpdateJob)
		}

		// Protected Notification routes
		notifications := api.Group("/notifications")
		notifications.Use(requireAuth)
		{
			notifications.GET("", notificationHandler.GetNotifications)
			notifications.POST("/:id/read", notificationHandler.MarkAsRead)
			notifications.POST("/read-all", notificationHandler.MarkAllRead)
		}
	}

	// Static Files (uploaded originals and processed derivatives)
	router.Static("/uploads", cfg.Uploads.Dir)

	// Start background workers
	svcMgr.Start()

	// Start server
	log.Println("\n═══════════════════════════════════════════════════════════════════════════")
	log.Println("🚀 Motive Archive Backend Started Successfully")
	log.Println("═══════════════════════════════════════════════════════════════════════════")
	log.Printf("\n📍 Server:         http://localhost:%d", cfg.Server.Port)
	log.Printf("🔐 Auth API:       http://localhost:%d/api/auth", cfg.Server.Port)
	log.Printf("📁 Cars API:       http://localhost:%d/api/cars", cfg.Server.Port)
	log.Printf("📤 Image upload:   http://localhost:%d/api/images/upload", cfg.Server.Port)
	log.Printf("📊 Reports API:    http://localhost:%d/api/reports", cfg.Server.Port)
	log.Printf("💚 Health check:   http://localhost:%d/health\n", cfg.Server.Port)

	// Create HTTP Server
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	quit := make(chan os.Signal, 1)
	// kill (no param) default send syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	// kill -9 is syscall.SIGKILL but can't be caught, so don't need to add it
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Stop background workers before the listener goes away
	svcMgr.Stop()

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	log.Println("Server exiting")
}
