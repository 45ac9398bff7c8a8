// SPDX-License-Identifier: MIT

// Command arcobsd runs the observation pipeline daemon: blob store,
// product catalog, inbox watcher, and HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/rinman24/arcobs/internal/access/blob"
	"github.com/rinman24/arcobs/internal/api"
	"github.com/rinman24/arcobs/internal/cache"
	"github.com/rinman24/arcobs/internal/catalog"
	"github.com/rinman24/arcobs/internal/config"
	"github.com/rinman24/arcobs/internal/log"
	"github.com/rinman24/arcobs/internal/obs"
	"github.com/rinman24/arcobs/internal/watch"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("arcobsd %s (commit: %s, built: %s)\n", version, commit, buildDate)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log.Configure(log.Config{
		Level:   cfg.LogLevel,
		Service: "arcobs",
		Version: version,
	})
	logger := log.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Fatal().Err(err).Msg("daemon failed")
	}
	logger.Info().Msg("daemon exiting")
}

func run(ctx context.Context, cfg *config.Config) error {
	logger := log.WithComponent("daemon")

	storeOpts := []blob.StoreOption{blob.WithListingTTL(cfg.ListingTTL)}
	if cfg.Redis.Addr != "" {
		listings, err := cache.NewRedis(cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, log.WithComponent("cache"))
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer listings.Close() //nolint:errcheck
		storeOpts = append(storeOpts, blob.WithListingCache(listings))
	}

	store, err := blob.Open(cfg.DataDir, storeOpts...)
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}
	defer store.Close() //nolint:errcheck

	cat, err := catalog.Open(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer cat.Close() //nolint:errcheck

	managerOpts := []obs.Option{obs.WithWorkers(cfg.DownloadWorkers)}
	if cfg.UploadRate > 0 {
		managerOpts = append(managerOpts,
			obs.WithUploadLimiter(rate.NewLimiter(rate.Limit(cfg.UploadRate), cfg.UploadBurst)))
	}
	manager := obs.NewManager(store, cat, managerOpts...)

	if cfg.InboxDir != "" {
		routes := make([]watch.Route, len(cfg.Routes))
		for i, r := range cfg.Routes {
			routes[i] = watch.Route{
				Observatory: r.Observatory,
				Instrument:  r.Instrument,
				Format:      r.Format,
				Year:        r.Year,
			}
		}
		watcher, err := watch.New(cfg.InboxDir, store, routes)
		if err != nil {
			return fmt.Errorf("start inbox watcher: %w", err)
		}
		watcher.Start(ctx)
		defer watcher.Close() //nolint:errcheck
		logger.Info().Str("inbox", cfg.InboxDir).Int("routes", len(routes)).Msg("inbox watcher started")
	}

	server := api.New(manager, cat, api.WithRequestsPerMinute(cfg.APIRequestsPerMinute))
	httpServer := &http.Server{
		Addr:              cfg.Listen,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("listen", cfg.Listen).Msg("HTTP server started")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	// Let queued jobs finish before the store closes underneath them.
	manager.Jobs().Wait()
	return nil
}
