// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package main is the entry point for the content panel.
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

	"github.com/olegiv/ocms-panel/internal/backend"
	"github.com/olegiv/ocms-panel/internal/cache"
	"github.com/olegiv/ocms-panel/internal/config"
	"github.com/olegiv/ocms-panel/internal/editor"
	"github.com/olegiv/ocms-panel/internal/gallery"
	"github.com/olegiv/ocms-panel/internal/handler"
	"github.com/olegiv/ocms-panel/internal/i18n"
	"github.com/olegiv/ocms-panel/internal/imaging"
	"github.com/olegiv/ocms-panel/internal/layout"
	"github.com/olegiv/ocms-panel/internal/logging"
	"github.com/olegiv/ocms-panel/internal/middleware"
	"github.com/olegiv/ocms-panel/internal/preview"
	"github.com/olegiv/ocms-panel/internal/registry"
	"github.com/olegiv/ocms-panel/internal/render"
	"github.com/olegiv/ocms-panel/internal/scheduler"
	"github.com/olegiv/ocms-panel/internal/service"
	"github.com/olegiv/ocms-panel/internal/session"
	"github.com/olegiv/ocms-panel/internal/store"
	"github.com/olegiv/ocms-panel/internal/version"
	"github.com/olegiv/ocms-panel/web"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "oCMS Panel - content administration dashboard\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PANEL_SESSION_SECRET   Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PANEL_BACKEND_URL      Content backend API (default: http://localhost:8080/api)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PANEL_PREVIEW_URL      Public site shown in the preview (default: http://localhost:3000)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PANEL_DB_PATH          SQLite database path (default: ./data/panel.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PANEL_SERVER_PORT      Server port (default: 8081)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PANEL_ENV              Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PANEL_REDIS_URL        Redis URL for shared caching (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("panel %s\n", version.Current())
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	if err := i18n.Init(logger); err != nil {
		return fmt.Errorf("initializing i18n: %w", err)
	}

	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

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

	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Warnings and errors also land in the event log.
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)

	sessionManager := session.New(db, cfg.IsDevelopment())

	cacher := cache.New(cache.Config{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: time.Duration(cfg.CacheTTL) * time.Second,
		MaxSize:    cfg.CacheMaxSize,
	}, logger)
	defer func() { _ = cacher.Close() }()

	client, err := backend.NewClient(cfg.BackendURL, &http.Client{Timeout: cfg.BackendTimeout}, logger)
	if err != nil {
		return fmt.Errorf("creating backend client: %w", err)
	}
	languages := cache.NewLanguageCache(cacher, client, time.Duration(cfg.CacheTTL)*time.Second)
	slog.Info("backend client ready", "url", cfg.BackendURL, "redis", cfg.UseRedisCache())

	activity := service.NewActivityService(db)
	processor := imaging.NewProcessor(cfg.UploadMaxBytes, cfg.UploadMaxDimension)

	views := &handler.ViewState{
		Registries: registry.NewStore(),
		Layouts:    layout.NewManager(nil),
		Preview:    preview.NewHub(),
		Editor:     editor.New(client, activity, logger),
	}

	templatesFS, err := web.TemplatesFS()
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}

	sched := scheduler.New(logger)
	for _, job := range []scheduler.Job{
		scheduler.LanguageRefreshJob(languages),
		scheduler.EventRetentionJob(store.New(db), cfg.EventRetentionDays, logger, nil),
		scheduler.ViewSweepJob(views.Registries, views, scheduler.ViewIdleTimeout, logger),
	} {
		if err := sched.Add(job); err != nil {
			return fmt.Errorf("scheduling %s: %w", job.Name, err)
		}
	}
	sched.Start()
	defer sched.Stop()

	deps := handler.Deps{
		Renderer: renderer,
		Sessions: sessionManager,
		Views:    views,
		Logger:   logger,
	}
	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	defer loginProtection.Close()

	authHandler := handler.NewAuthHandler(deps, client, loginProtection)

	dashboardHandler := handler.NewDashboardHandler(deps, activity)
	pagesHandler := handler.NewPagesHandler(deps, languages, cfg.PreviewURL)
	layoutHandler := handler.NewLayoutHandler(deps)
	previewHandler := handler.NewPreviewHandler(deps, cfg.PreviewURL)
	galleryHandler := handler.NewGalleryHandler(deps, gallery.NewService(client, processor, activity, logger), cfg.UploadMaxBytes)
	settingsHandler := handler.NewSettingsHandler(deps, client, activity)
	healthHandler := handler.NewHealthHandler(db, sessionManager, cacher)

	csrfKey, err := middleware.DeriveCSRFKey(cfg.SessionSecret)
	if err != nil {
		return fmt.Errorf("deriving csrf key: %w", err)
	}

	staticFS, err := web.StaticFS()
	if err != nil {
		return fmt.Errorf("getting static fs: %w", err)
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment(), cfg.PreviewOrigin())))

	r.Handle("/static/dist/*", http.StripPrefix("/static/dist/", http.FileServerFS(staticFS)))

	// The preview socket is long-lived and needs the raw connection, so the
	// session is only read.
	r.With(middleware.LoadSession(sessionManager), middleware.Auth(sessionManager)).
		Get(handler.RoutePreviewSocket, previewHandler.Socket)

	r.Group(func(r chi.Router) {
		r.Use(sessionManager.LoadAndSave)
		r.Use(middleware.UILanguage(sessionManager))
		r.Use(middleware.Vary)
		r.Use(middleware.CSRF(middleware.DefaultCSRFConfig(csrfKey, cfg.IsDevelopment())))

		r.Get("/health", healthHandler.Health)
		r.Get("/health/live", healthHandler.Liveness)

		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, handler.RouteDashboard, http.StatusSeeOther)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(30 * time.Second))
			r.Get(handler.RouteLogin, authHandler.LoginForm)
			r.With(loginProtection.Middleware()).Post(handler.RouteLogin, authHandler.Login)
			r.Post("/logout", authHandler.Logout)
		})

		r.Route(handler.RouteDashboard, func(r chi.Router) {
			r.Use(middleware.Auth(sessionManager))

			r.Group(func(r chi.Router) {
				r.Use(middleware.Timeout(30 * time.Second))

				r.Get("/", dashboardHandler.Dashboard)
				r.Get("/pages/{page}", pagesHandler.Page)
				r.Get("/sections/{id}", pagesHandler.Section)
				r.Post("/sections/{id}", pagesHandler.SaveSection)

				r.Post("/preview/refresh", previewHandler.Refresh)

				r.Get("/layout", layoutHandler.State)
				r.Post("/layout/fullscreen", layoutHandler.Fullscreen)
				r.Post("/layout/exit", layoutHandler.Exit)
				r.Post("/layout/key", layoutHandler.Key)

				r.Get("/gallery", galleryHandler.List)
				r.Post("/gallery/folders", galleryHandler.CreateFolder)
				r.Get("/gallery/folders/{folder}/delete", galleryHandler.ConfirmDeleteFolder)
				r.Post("/gallery/folders/{folder}/delete", galleryHandler.DeleteFolder)
				r.Post("/gallery/folders/{folder}/images", galleryHandler.Upload)
				r.Get("/gallery/folders/{folder}/images/{id}/delete", galleryHandler.ConfirmDeleteImage)
				r.Post("/gallery/folders/{folder}/images/{id}/delete", galleryHandler.DeleteImage)
				r.Post("/gallery/folders/{folder}/images/{id}/alt", galleryHandler.UpdateAlt)

				r.Get("/settings", settingsHandler.Form)
				r.Post("/settings", settingsHandler.Save)
			})
		})
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", version.Current().String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
