package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sprachtrainer/internal/config"
	"sprachtrainer/internal/database"
	"sprachtrainer/internal/handlers"
	"sprachtrainer/internal/repository"
	"sprachtrainer/internal/service"
	"sprachtrainer/internal/tasks"

	"github.com/go-co-op/gocron"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	registry := tasks.DefaultRegistry()

	// Initialize repositories
	lexemeRepo := repository.NewLexemeRepository(db)
	taskSpecRepo := repository.NewTaskSpecRepository(db)
	checkpointRepo := repository.NewCheckpointRepository(db)
	practiceRepo := repository.NewPracticeRepository(db)

	// Initialize services
	syncService := service.NewSyncService(lexemeRepo, taskSpecRepo, checkpointRepo, registry, cfg.SyncPageSize, cfg.SyncMaxLexemes)
	taskService := service.NewTaskService(taskSpecRepo, registry, cfg.RecencyWindow)
	submissionService := service.NewSubmissionService(taskSpecRepo, lexemeRepo, practiceRepo, registry)

	alertService, err := service.NewAlertService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AlertEmail)
	if err != nil {
		log.Printf("Warning: alert service disabled: %v", err)
	}

	// Initialize handlers
	middleware := handlers.NewMiddleware(cfg.JWTSecret)
	tasksHandler := handlers.NewTasksHandler(taskService, registry)
	submissionHandler := handlers.NewSubmissionHandler(submissionService)
	adminHandler := handlers.NewAdminHandler(syncService, cfg.AdminToken)

	// Setup routes
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/tasks", middleware.WithIdentity(tasksHandler.GetTasks))
	mux.HandleFunc("POST /api/submission", middleware.WithIdentity(submissionHandler.PostSubmission))
	mux.HandleFunc("POST /admin/sync", adminHandler.TriggerSync)
	mux.HandleFunc("GET /healthz", adminHandler.Healthz)

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Run an initial sync so a fresh database serves tasks immediately
	runSync(syncService, alertService)

	// Schedule periodic sync passes
	scheduler := gocron.NewScheduler(time.UTC)
	if _, err := scheduler.Every(cfg.SyncInterval).Do(func() {
		runSync(syncService, alertService)
	}); err != nil {
		log.Fatalf("Failed to schedule sync job: %v", err)
	}
	scheduler.StartAsync()

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

func runSync(syncService *service.SyncService, alertService *service.AlertService) {
	result, err := syncService.Run()
	if err != nil {
		log.Printf("Sync failed: %v", err)
		if alertService != nil {
			alertService.SyncFailed(err)
		}
		return
	}
	log.Printf("Sync finished in %s (inserted=%d updated=%d deleted=%d)",
		result.Duration, result.Stats.Inserted, result.Stats.Updated, result.Stats.Deleted)
}
