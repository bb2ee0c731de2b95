package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/saintathena/backend/config"
	httpDelivery "github.com/saintathena/backend/internal/delivery/http"
	"github.com/saintathena/backend/internal/domain"
	"github.com/saintathena/backend/internal/infrastructure/analytics"
	"github.com/saintathena/backend/internal/infrastructure/cache"
	"github.com/saintathena/backend/internal/infrastructure/catalog"
	"github.com/saintathena/backend/internal/infrastructure/janitor"
	"github.com/saintathena/backend/internal/infrastructure/ratelimit"
	"github.com/saintathena/backend/internal/logger"
	"github.com/saintathena/backend/internal/usecase"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Example: `  saintathena serve
  SAINTATHENA_CATALOG_SOURCE=file SAINTATHENA_CATALOG_FILE_PATH=catalog.yaml saintathena serve --port 9090`,
	RunE: runServe,
}

func init() {
	registerServeFlags(serveCmd.Flags())
	rootCmd.AddCommand(serveCmd)
}

func registerServeFlags(f *pflag.FlagSet) {
	f.String("port", "", "Port to listen on (overrides server.port)")
	f.String("environment", "", "Environment name; production enables gin release mode")
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := bindFlag(cmd.Flags(), "port", "server.port"); err != nil {
		return err
	}
	if err := bindFlag(cmd.Flags(), "environment", "server.environment"); err != nil {
		return err
	}
	if flagLogLevel != "" {
		v.Set("log.level", flagLogLevel)
	}

	cfg, err := config.LoadWith(v, flagConfig)
	if err != nil {
		return err
	}
	if err := logger.SetLevel(cfg.Log.Level); err != nil {
		return err
	}
	log := logger.New("server")

	log.Info("starting SaintAthena backend", "version", httpDelivery.Version, "environment", cfg.Server.Environment)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, err := buildCatalog(cfg)
	if err != nil {
		return err
	}

	sink, closeSink, err := buildAnalytics(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSink()

	resultCache := cache.NewMemoryCache(cfg.Cache.TTL, cfg.Cache.MaxEntries)
	limiter := ratelimit.NewFixedWindow(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	log.Info("search pipeline configured",
		"catalog", cfg.Catalog.Source,
		"cacheTTL", cfg.Cache.TTL,
		"rateLimit", fmt.Sprintf("%d/%s", cfg.RateLimit.Requests, cfg.RateLimit.Window),
		"analytics", cfg.Analytics.Driver,
	)

	service := usecase.NewSearchService(source, resultCache, limiter, sink, usecase.SearchServiceConfig{
		Defaults:          domain.SearchOptions{MinScore: cfg.Search.MinScore, Limit: cfg.Search.Limit},
		ListItemLimit:     cfg.Search.ListLimit,
		MaxQueryLength:    cfg.Search.MaxQueryLength,
		AnalyticsTimeout:  cfg.Analytics.Timeout,
		ParallelThreshold: cfg.Search.ParallelThreshold,
		Workers:           cfg.Search.Workers,
		Logger:            logger.New("search"),
	})

	sweeper, err := janitor.New(cfg.Janitor.Schedule, logger.New("janitor"))
	if err != nil {
		return err
	}
	sweeper.Register("cache", resultCache)
	sweeper.Register("ratelimit", limiter)
	if err := sweeper.Start(); err != nil {
		return err
	}
	defer sweeper.Stop()

	router := httpDelivery.SetupRouter(cfg, httpDelivery.NewHandler(service), logger.New("http"))
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
	}
	service.Wait()
	return nil
}

// bindFlag lets an explicitly set flag override the config key
func bindFlag(fs *pflag.FlagSet, flag, key string) error {
	f := fs.Lookup(flag)
	if f == nil || !f.Changed {
		return nil
	}
	return v.BindPFlag(key, f)
}

func buildCatalog(cfg *config.Config) (domain.CatalogSource, error) {
	switch cfg.Catalog.Source {
	case "file":
		return catalog.NewFileSource(cfg.Catalog.FilePath), nil
	case "rest":
		client := catalog.NewClient(catalog.ClientConfig{
			BaseURL:           cfg.Catalog.BaseURL,
			APIKey:            cfg.Catalog.APIKey,
			Table:             cfg.Catalog.Table,
			Timeout:           cfg.Catalog.Timeout,
			RequestsPerSecond: cfg.Catalog.RequestsPerSecond,
			Burst:             cfg.Catalog.Burst,
			MaxRetries:        cfg.Catalog.MaxRetries,
		})
		client.SetDebug(cfg.Server.Environment == "development")
		return client, nil
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Catalog.Source)
	}
}

// buildAnalytics returns a nil sink for the "none" driver
func buildAnalytics(ctx context.Context, cfg *config.Config) (domain.AnalyticsSink, func(), error) {
	switch cfg.Analytics.Driver {
	case "sqlite":
		sink, err := analytics.NewSQLiteSink(ctx, cfg.Analytics.DSN)
		if err != nil {
			return nil, nil, err
		}
		return sink, func() { sink.Close() }, nil
	case "log":
		return analytics.NewLogSink(logger.New("analytics")), func() {}, nil
	default:
		return nil, func() {}, nil
	}
}
