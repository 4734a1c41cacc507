package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kycivic/parcelpost/internal"
	"github.com/kycivic/parcelpost/internal/email"
	"github.com/kycivic/parcelpost/internal/handler"
	"github.com/kycivic/parcelpost/internal/jurisdiction"
	"github.com/kycivic/parcelpost/internal/metrics"
	"github.com/kycivic/parcelpost/internal/middleware"
	"github.com/kycivic/parcelpost/internal/repository"
	"github.com/kycivic/parcelpost/internal/service"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database connection
	db, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	// Run migrations
	if err := internal.RunMigrations(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database ready")

	// Assemble the jurisdiction table once; read-only after this point.
	table := jurisdiction.New(jurisdiction.Defaults{
		PVA:    cfg.DefaultPVAEmail,
		Zoning: cfg.DefaultZoningEmail,
	}, logger)
	table.LoadOverlayCSV(cfg.MappingsCSV)

	// Initialize mail transport
	mailer, err := email.NewSMTPMailer(email.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		From:     cfg.SenderEmail,
		FromName: cfg.SenderName,
		UseTLS:   cfg.SMTPUseTLS,
	}, logger)
	if err != nil {
		return fmt.Errorf("mail transport initialization failed: %w", err)
	}

	// Initialize template renderers
	emailTemplates, err := email.NewTemplateRenderer(cfg.EmailTemplatesDir)
	if err != nil {
		return fmt.Errorf("email template initialization failed: %w", err)
	}
	pages, err := handler.NewPageRenderer(cfg.PageTemplatesDir, logger)
	if err != nil {
		return fmt.Errorf("page template initialization failed: %w", err)
	}

	// Initialize repository and services
	repo := repository.New(db)
	contactService := service.NewContactService(repo, mailer, emailTemplates, cfg.BaseURL, logger)
	requestService := service.NewRequestService(table, mailer, emailTemplates, logger)

	// Initialize handlers
	requestsHandler := handler.NewRequestsHandler(requestService, logger)
	contactsHandler := handler.NewContactsHandler(contactService, pages, logger)

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	mux := http.NewServeMux()

	// Static files and the landing page
	staticFS := http.FileServer(http.Dir(cfg.StaticDir))
	mux.Handle("GET /static/", http.StripPrefix("/static/", staticFS))
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, filepath.Join(cfg.StaticDir, "index.html"))
	})

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Metrics (optionally behind basic auth)
	metricsAuth := middleware.NewMetricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword)
	mux.Handle("GET /metrics", metricsAuth.Handler(promhttp.Handler()))

	// API and verification routes
	requestsHandler.RegisterRoutes(mux)
	contactsHandler.RegisterRoutes(mux)

	// Wrap the mux with request logging and metrics collection
	logging := middleware.NewRequestLoggingMiddleware(logger)
	root := logging.Handler(metrics.Middleware(mux))

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: root,
	}

	// Channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env, "simulate_mail", mailer.Simulating())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	<-sigChan
	logger.Info("Shutdown signal received, initiating graceful shutdown...")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
