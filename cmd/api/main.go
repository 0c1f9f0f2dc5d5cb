package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	postgres "feedsearch/internal/infra/adapter/kvstore/postgres"
	"feedsearch/internal/infra/crawler"
	"feedsearch/internal/infra/db"
	"feedsearch/internal/infra/directory"
	"feedsearch/internal/observability/metrics"
	"feedsearch/pkg/config"

	hhttp "feedsearch/internal/handler/http"
	"feedsearch/internal/handler/http/requestid"
	hsearch "feedsearch/internal/handler/http/search"
	usecase "feedsearch/internal/usecase/search"
)

// feedsearch serves a small REST API that discovers RSS/Atom/JSON feeds for
// a given URL: GET /api/v1/search drives the Search Orchestrator, GET
// /api/v1/sites and /api/v1/sites/<host> read back what the KV Store
// Adapter already knows. See SPEC_FULL.md §6.1 for the full route contract.

func main() {
	logger := initLogger()

	database := db.Open()
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	table := config.GetEnvString("DYNAMODB_TABLE", "")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := postgres.Migrate(ctx, database, table); err != nil {
		cancel()
		logger.Error("failed to migrate kv store", slog.Any("error", err))
		os.Exit(1)
	}
	cancel()

	version := config.GetEnvString("VERSION", "dev")
	svc := setupService(database, table, logger)

	handler := setupRoutes(database, version, svc)
	handler = applyMiddleware(logger, handler)

	runServer(logger, handler, database, version)
}

// initLogger initializes and returns a structured logger based on environment configuration.
func initLogger() *slog.Logger {
	logLevel := slog.LevelInfo
	if config.GetEnvString("LOG_LEVEL", "") == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// setupService wires the Search Orchestrator from the KV Store Adapter, the
// Directory Client, and the Crawl Driver, applying an optional YAML overlay
// of the Crawl Driver's fixed parameters (spec §4.E) if CRAWL_CONFIG_PATH
// names a file.
func setupService(database *sql.DB, table string, logger *slog.Logger) *usecase.Service {
	store := postgres.NewStore(database, table)

	userAgent := config.GetEnvString("USER_AGENT", "feedsearch/1.0")
	ttlDays := config.GetEnvInt("DAYS_CHECKED_RECENTLY", 7)

	httpClient := &http.Client{Timeout: 15 * time.Second}
	dirClient := directory.NewClient(httpClient, userAgent)
	crawlDriver := crawler.NewDriver(httpClient)

	svc := usecase.NewService(store, dirClient, crawlDriver, userAgent, ttlDays)

	overlay, err := config.LoadCrawlOverlay(os.Getenv("CRAWL_CONFIG_PATH"))
	if err != nil {
		logger.Warn("crawl overlay not applied", slog.Any("error", err))
	} else if overlay != nil {
		opts := crawler.DefaultOptions(userAgent)
		c := overlay.Crawl
		if c.Concurrency != nil {
			opts.Concurrency = *c.Concurrency
		}
		if c.RequestTimeout != nil {
			opts.RequestTimeout = *c.RequestTimeout
		}
		if c.TotalTimeout != nil {
			opts.TotalTimeout = *c.TotalTimeout
		}
		if c.MaxDepth != nil {
			opts.MaxDepth = *c.MaxDepth
		}
		if c.UserAgent != nil {
			opts.UserAgent = *c.UserAgent
		}
		svc.CrawlOptions = opts
		logger.Info("crawl overlay applied", slog.Int("concurrency", opts.Concurrency), slog.Duration("total_timeout", opts.TotalTimeout))
	}

	return svc
}

// setupRoutes registers the search API and the ambient health/metrics routes.
func setupRoutes(database *sql.DB, version string, svc *usecase.Service) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/api/v1/search", &hsearch.SearchHandler{Service: svc})
	mux.Handle("/api/v1/sites", &hsearch.SitesHandler{Store: svc.Store})
	mux.Handle("/api/v1/sites/", &hsearch.SiteHandler{Store: svc.Store})

	mux.Handle("/health", &hhttp.HealthHandler{DB: database, Version: version})
	mux.Handle("/ready", &hhttp.ReadyHandler{DB: database})
	mux.Handle("/live", &hhttp.LiveHandler{})
	mux.Handle("/metrics", hhttp.MetricsHandler())

	return mux
}

// applyMiddleware wraps the handler with the ambient middleware chain.
// Order (outermost to innermost): request ID, recovery, logging, input
// validation, body limit, timeout, metrics.
func applyMiddleware(logger *slog.Logger, handler http.Handler) http.Handler {
	timeout := config.GetEnvDuration("REQUEST_TIMEOUT", 30*time.Second)

	chain := handler
	chain = hhttp.MetricsMiddleware(chain)
	chain = hhttp.Timeout(timeout)(chain)
	chain = hhttp.LimitRequestBody(1 << 20)(chain) // 1MB
	chain = hhttp.InputValidation()(chain)
	chain = hhttp.Logging(logger)(chain)
	chain = hhttp.Recover(logger)(chain)
	chain = requestid.Middleware(chain)

	return chain
}

// runServer starts the HTTP server and handles graceful shutdown, and keeps
// the connection-pool gauges in internal/observability/metrics fresh while
// the process runs.
func runServer(logger *slog.Logger, handler http.Handler, database *sql.DB, version string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go watchDBStats(ctx, database)

	srv := &http.Server{
		Addr:              ":" + config.GetEnvString("PORT", "8080"),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting", slog.String("addr", srv.Addr), slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}

// watchDBStats periodically refreshes the db_connections_active/idle gauges
// from the pool's own counters, until ctx is cancelled.
func watchDBStats(ctx context.Context, database *sql.DB) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := database.Stats()
			metrics.UpdateDBConnectionStats(stats.InUse, stats.Idle)
		}
	}
}
