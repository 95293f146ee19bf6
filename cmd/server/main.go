package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/api"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/config"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/database"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/marketdata"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/repository"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/scheduler"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection; Open applies pending migrations
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	log.Printf("Connected to database: %s", cfg.Database.Path)

	// Create repositories
	snapshotRepo := repository.NewSnapshotRepository(db)
	savedViewRepo := repository.NewSavedViewRepository(db)
	providerRepo, err := repository.NewProviderRepository(db, cfg.Provider.FernetKey)
	if err != nil {
		log.Fatalf("Failed to initialize provider repository: %v", err)
	}

	// Create services
	systemService := service.NewSystemService(db, snapshotRepo)
	snapshotService := service.NewSnapshotService(snapshotRepo, cfg.Analytics.DefaultDaysBack)
	liveService := service.NewLiveService(snapshotService, marketdata.NewYahooClient())
	analyticsService := service.NewAnalyticsService(snapshotService, liveService, cfg.Analytics)
	savedViewService := service.NewSavedViewService(savedViewRepo)
	providerService := service.NewProviderService(providerRepo)

	// Start the scheduled snapshot capture
	captureScheduler := scheduler.NewScheduler(liveService, snapshotService)
	if err := captureScheduler.Start(cfg.Scheduler.SnapshotCron); err != nil {
		log.Fatalf("Failed to start snapshot scheduler: %v", err)
	}

	// Create router
	router := api.NewRouter(api.Services{
		System:    systemService,
		Analytics: analyticsService,
		Snapshot:  snapshotService,
		Live:      liveService,
		SavedView: savedViewService,
		Provider:  providerService,
	}, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Stop scheduled captures before the HTTP server so an in-flight capture
	// finishes cleanly.
	captureScheduler.Stop()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
