package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"portfolio/internal/catalog"
	"portfolio/internal/config"
	"portfolio/internal/i18n"
	"portfolio/internal/logging"
	"portfolio/internal/web"
)

// catalogFile is the document name under a remote catalog URL.
const catalogFile = "projects.json"

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"catalog_remote", cfg.Catalog.Remote(),
		"carousel_interval", cfg.Carousel.Interval,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	client := &http.Client{Timeout: cfg.Catalog.FetchTimeout}

	// Translations first: pages render keys until their table is in.
	tr := i18n.New()
	var i18nSrc catalog.Source = catalog.DirSource(cfg.Catalog.I18nDir)
	if cfg.Catalog.I18nURL != "" {
		i18nSrc = catalog.HTTPSource{BaseURL: cfg.Catalog.I18nURL, Client: client}
	}
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), cfg.Catalog.FetchTimeout)
	if err := tr.Load(loadCtx, i18nSrc, i18n.Supported()...); err != nil {
		slog.Warn("some translations are missing; their keys are shown instead", "error", err)
	}

	var catalogSrc catalog.Source
	name := filepath.Base(cfg.Catalog.Path)
	if cfg.Catalog.Remote() {
		catalogSrc, name = catalog.HTTPSource{BaseURL: cfg.Catalog.URL, Client: client}, catalogFile
	} else {
		catalogSrc = catalog.DirSource(filepath.Dir(cfg.Catalog.Path))
	}
	store, err := catalog.Load(loadCtx, catalogSrc, name)
	cancelLoad()
	if err != nil {
		// Serve an empty site rather than nothing.
		msg := catalog.MapError(err)
		slog.Error("catalog not loaded, serving an empty portfolio",
			"error", err, "code", msg.Code, "action", msg.Action)
		store = catalog.Empty()
	} else {
		slog.Info("catalog loaded", "projects", store.Len(), "categories", len(store.Categories()))
	}
	holder := catalog.NewHolder(store)

	// Create cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	defer cancelJobs()

	if cfg.Catalog.Watch && !cfg.Catalog.Remote() {
		go func() {
			if err := catalog.Watch(jobCtx, holder, cfg.Catalog.Path); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("catalog watcher stopped", "error", err)
			}
		}()
	}

	server := web.NewServer(cfg, holder, tr)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		// Stop background jobs
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
