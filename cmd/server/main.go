// Package main is the entry point for the MiniPaint server.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"minipaint/internal/api"
	"minipaint/internal/config"
	"minipaint/internal/database"
	"minipaint/internal/database/models"
	"minipaint/internal/database/repositories"
	"minipaint/internal/services/backup"
	"minipaint/internal/services/drive"
	"minipaint/internal/services/guideform"
	"minipaint/internal/services/imaging"
	"minipaint/internal/services/progress"
	"minipaint/internal/services/pubsub"
	"minipaint/internal/services/session"
	"minipaint/internal/services/version"
)

func main() {
	// Load .env file if present
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()

	// Print startup banner
	printBanner(cfg)

	// Connect to database
	db, err := database.Connect(database.Config{
		URL:         cfg.DatabaseURL,
		MaxIdleConn: 5,
		MaxOpenConn: 10,
		Debug:       cfg.IsDevelopment(),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close() }()

	// Auto-migrate database schema
	log.Println("Running database migrations...")
	if err := db.AutoMigrate(models.All()...); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migrations complete")

	// Repositories
	batchRepo := repositories.NewBatchRepository(db)
	guideRepo := repositories.NewGuideRepository(db)
	paintRepo := repositories.NewPaintRepository(db)
	settingRepo := repositories.NewUserSettingRepository(db)
	accessRepo := repositories.NewAccessRepository(db)
	userRepo := repositories.NewUserRepository(db)

	// Services
	ps := pubsub.New()
	sessionService := session.NewService(userRepo, accessRepo, cfg,
		time.Duration(cfg.SessionTTLHours)*time.Hour)
	progressService := progress.NewService(batchRepo, ps)
	guideService := guideform.NewService(guideRepo, ps)
	driveService := drive.NewService(cfg)
	backupService := backup.NewService(guideRepo, paintRepo)
	optimizer := imaging.NewOptimizer(cfg.MaxImageBytes, cfg.MaxImageDim)

	if !driveService.Configured() {
		log.Println("Google Drive OAuth credentials not set, image uploads disabled")
	}

	// HTTP server
	server := api.NewServer(api.Deps{
		Config:      cfg,
		BatchRepo:   batchRepo,
		PaintRepo:   paintRepo,
		SettingRepo: settingRepo,
		AccessRepo:  accessRepo,
		Sessions:    sessionService,
		Progress:    progressService,
		Guides:      guideService,
		Backup:      backupService,
		Drive:       driveService,
		Optimizer:   optimizer,
		PubSub:      ps,
	})

	router := server.Router()
	router.Get("/health", healthCheckHandler)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on http://localhost:%s\n", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}

// healthCheckHandler returns the server health status and build info.
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	info := version.Get()
	response := fmt.Sprintf(`{
  "status": "ok",
  "timestamp": "%s",
  "version": "%s",
  "commit": "%s"
}`, time.Now().UTC().Format(time.RFC3339), info.Version, info.GitCommit)

	_, _ = w.Write([]byte(response))
}

// printBanner prints the startup banner.
func printBanner(cfg *config.Config) {
	info := version.Get()
	fmt.Println("============================================")
	fmt.Println("  MiniPaint Server")
	fmt.Printf("  Version: %s\n", info.Version)
	fmt.Printf("  Build:   %s\n", info.BuildTime)
	fmt.Printf("  Commit:  %s\n", info.GitCommit)
	fmt.Println("============================================")
	fmt.Printf("  Environment: %s\n", cfg.Env)
	fmt.Printf("  Port:        %s\n", cfg.Port)
	fmt.Printf("  Database:    %s\n", cfg.DatabaseURL)
	fmt.Println("============================================")
}
