// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/inventory-go/internal/cache"
	"github.com/olegiv/inventory-go/internal/config"
	"github.com/olegiv/inventory-go/internal/handler"
	"github.com/olegiv/inventory-go/internal/logging"
	"github.com/olegiv/inventory-go/internal/middleware"
	"github.com/olegiv/inventory-go/internal/scheduler"
	"github.com/olegiv/inventory-go/internal/service"
	"github.com/olegiv/inventory-go/internal/session"
	"github.com/olegiv/inventory-go/internal/store"
	"github.com/olegiv/inventory-go/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Inventory - Product Inventory Management\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  INV_SESSION_SECRET       Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  INV_DB_PATH              SQLite database path (default: ./data/inventory.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  INV_SERVER_PORT          Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  INV_ENV                  Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  INV_LOW_STOCK_THRESHOLD  Stock level treated as low (default: 10)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  INV_REDIS_URL            Redis URL for distributed caching (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  INV_DO_SEED              Seed demo data on startup (default: false)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("inventory %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	versionInfo := &version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Ensure data directory exists
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// Initialize database
	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	// Run migrations
	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR logs to the event log database
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	eventLogHandler := logging.NewEventLogHandler(textHandler, db)
	logger = slog.New(eventLogHandler)
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	ctx := context.Background()

	// Seed demo data if enabled
	if cfg.DoSeed {
		if err := store.Seed(ctx, db); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
		slog.Info("database seeded")
	}

	// Initialize session manager
	sessionManager := session.New(db, cfg.IsDevelopment())
	slog.Info("session manager initialized")

	// Initialize cache backend
	appCache, err := cache.New(cache.Config{
		RedisURL:        cfg.RedisURL,
		Prefix:          cfg.CachePrefix,
		DefaultTTL:      time.Duration(cfg.CacheTTL) * time.Second,
		MaxSize:         cfg.CacheMaxSize,
		CleanupInterval: time.Minute,
	})
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	defer func() {
		if err := appCache.Close(); err != nil {
			slog.Error("error closing cache", "error", err)
		}
	}()
	if cfg.UseRedisCache() {
		slog.Info("cache initialized", "backend", "redis", "url", cfg.RedisURL)
	} else {
		slog.Info("cache initialized", "backend", "memory")
	}

	// Wire services
	eventService := service.NewEventService(db)
	accountService := service.NewAccountService(db, eventService)
	categoryService := service.NewCategoryService(db, appCache, eventService)
	productService := service.NewProductService(db, appCache, eventService, cfg.LowStockThreshold)

	// Login protection (rate limiting and account lockout)
	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	defer func() { _ = loginProtection.Close() }()

	// Handlers
	authHandler := handler.NewAuthHandler(accountService, eventService, sessionManager, loginProtection)
	accountHandler := handler.NewAccountHandler(accountService, sessionManager)
	categoriesHandler := handler.NewCategoriesHandler(categoryService)
	productsHandler := handler.NewProductsHandler(productService, categoryService)
	eventsHandler := handler.NewEventsHandler(eventService)
	healthHandler := handler.NewHealthHandler(db, appCache)

	// Background maintenance jobs
	maintenance := scheduler.New(db, eventService, logger,
		time.Duration(cfg.EventRetentionDays)*24*time.Hour)
	if err := maintenance.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer maintenance.Stop()

	// Build router
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(middleware.RequestPath)
	r.Use(sessionManager.LoadAndSave)

	csrfMiddleware := middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment()))

	// Health endpoints (no session, no CSRF)
	r.Get("/health", healthHandler.Health)
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	// Public auth routes
	r.Group(func(r chi.Router) {
		r.Use(csrfMiddleware)
		r.With(middleware.RedirectIfAuthenticated(sessionManager)).Get("/login", authHandler.LoginForm)
		r.With(middleware.RedirectIfAuthenticated(sessionManager), loginProtection.Middleware()).
			Post("/login", authHandler.Login)
		r.With(middleware.RedirectIfAuthenticated(sessionManager), loginProtection.Middleware()).
			Post("/register", authHandler.Register)
		r.Post("/logout", authHandler.Logout)
	})

	// Authenticated dashboard routes
	r.Route("/dashboard", func(r chi.Router) {
		r.Use(csrfMiddleware)
		r.Use(middleware.Auth(sessionManager))
		r.Use(middleware.LoadUser(sessionManager, db))

		r.Get("/", productsHandler.Summary)
		r.Get("/stats", productsHandler.Stats)
		r.With(middleware.RequireAdmin).Get("/events", eventsHandler.List)

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", categoriesHandler.List)
			r.Post("/", categoriesHandler.Create)
			r.Get("/{id}", categoriesHandler.Get)
			r.Put("/{id}", categoriesHandler.Update)
			r.Delete("/{id}", categoriesHandler.Delete)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productsHandler.List)
			r.Post("/", productsHandler.Create)
			r.Get("/low-stock", productsHandler.LowStock)
			r.Get("/{id}", productsHandler.Get)
			r.Put("/{id}", productsHandler.Update)
			r.Delete("/{id}", productsHandler.Delete)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", accountHandler.Me)
			r.Put("/profile", accountHandler.UpdateProfile)
			r.Put("/password", accountHandler.ChangePassword)
		})
	})

	// Create server with appropriate timeouts
	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server",
			"addr", cfg.ServerAddr(), "env", cfg.Env, "version", versionInfo.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
