// Package app wires the service's dependencies and runs the serve loop.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/pubsub"
	gcstorage "cloud.google.com/go/storage"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/interviewbot/jobscout/internal/api"
	"github.com/interviewbot/jobscout/internal/browser"
	cachememory "github.com/interviewbot/jobscout/internal/cache/memory"
	cacheredis "github.com/interviewbot/jobscout/internal/cache/redis"
	"github.com/interviewbot/jobscout/internal/clock/system"
	"github.com/interviewbot/jobscout/internal/config"
	"github.com/interviewbot/jobscout/internal/health"
	"github.com/interviewbot/jobscout/internal/ingest"
	"github.com/interviewbot/jobscout/internal/ingest/ssrf"
	pubmemory "github.com/interviewbot/jobscout/internal/publisher/memory"
	pubgcp "github.com/interviewbot/jobscout/internal/publisher/pubsub"
	"github.com/interviewbot/jobscout/internal/ratelimit"
	"github.com/interviewbot/jobscout/internal/robots"
	blobgcs "github.com/interviewbot/jobscout/internal/storage/gcs"
	bloblocal "github.com/interviewbot/jobscout/internal/storage/local"
	blobmemory "github.com/interviewbot/jobscout/internal/storage/memory"
	storememory "github.com/interviewbot/jobscout/internal/store/memory"
	storepg "github.com/interviewbot/jobscout/internal/store/postgres"
)

// App holds the wired service.
type App struct {
	cfg     config.Config
	logger  *zap.Logger
	browser *browser.Manager
	limiter *ratelimit.Limiter
	robots  *robots.Checker
	checker *health.Checker
	server  *api.Server
	cron    *cron.Cron
	closers []func()
}

// New builds every component from configuration. Optional backends
// (Redis, Postgres, GCS, Pub/Sub) fall back to in-process providers when
// unconfigured, so a bare binary still runs end to end.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}
	clk := system.New()
	validator := ssrf.New()

	cache, err := a.buildCache(ctx)
	if err != nil {
		return nil, err
	}
	robotsChecker := robots.New(cache, logger)
	limiter := ratelimit.New(clk, logger)
	mgr := browser.New(validator, logger,
		browser.WithPoolSize(cfg.Browser.PoolSize),
		browser.WithQueueTimeout(time.Duration(cfg.Browser.QueueTimeoutSec)*time.Second),
	)
	a.closers = append(a.closers, mgr.Close)

	blobs, err := a.buildBlobStore(ctx)
	if err != nil {
		return nil, err
	}
	store, err := a.buildHealthStore(ctx)
	if err != nil {
		return nil, err
	}
	publisher, err := a.buildPublisher(ctx)
	if err != nil {
		return nil, err
	}

	a.browser = mgr
	a.limiter = limiter
	a.robots = robotsChecker
	a.checker = health.New(mgr, health.NewTextExtractor(), publisher, store, clk, logger)
	a.server = api.NewServer(mgr, robotsChecker, limiter, validator, blobs, store, logger)
	return a, nil
}

func (a *App) buildCache(ctx context.Context) (ingest.Cache, error) {
	if a.cfg.Cache.RedisURL == "" {
		a.logger.Info("robots cache: in-process")
		return cachememory.New(), nil
	}
	cache, err := cacheredis.New(ctx, a.cfg.Cache.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	a.closers = append(a.closers, func() {
		if cerr := cache.Close(); cerr != nil {
			a.logger.Warn("close redis", zap.Error(cerr))
		}
	})
	a.logger.Info("robots cache: redis")
	return cache, nil
}

func (a *App) buildBlobStore(ctx context.Context) (ingest.BlobStore, error) {
	switch {
	case a.cfg.Storage.GCSBucket != "":
		client, err := gcstorage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("gcs client: %w", err)
		}
		a.closers = append(a.closers, func() {
			if cerr := client.Close(); cerr != nil {
				a.logger.Warn("close gcs client", zap.Error(cerr))
			}
		})
		a.logger.Info("artifact store: gcs", zap.String("bucket", a.cfg.Storage.GCSBucket))
		return blobgcs.New(client, blobgcs.Config{Bucket: a.cfg.Storage.GCSBucket})
	case a.cfg.Storage.LocalDir != "":
		a.logger.Info("artifact store: local", zap.String("dir", a.cfg.Storage.LocalDir))
		return bloblocal.New(bloblocal.Config{BaseDir: a.cfg.Storage.LocalDir})
	default:
		a.logger.Info("artifact store: in-process")
		return blobmemory.New(), nil
	}
}

func (a *App) buildHealthStore(ctx context.Context) (ingest.HealthStore, error) {
	if a.cfg.DB.DSN == "" {
		a.logger.Info("health store: in-process")
		return storememory.New(), nil
	}
	store, err := storepg.NewHealthStore(ctx, storepg.HealthStoreConfig{
		DSN:      a.cfg.DB.DSN,
		MaxConns: a.cfg.DB.MaxConns,
		MinConns: a.cfg.DB.MinConns,
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	a.logger.Info("health store: postgres")
	return store, nil
}

func (a *App) buildPublisher(ctx context.Context) (ingest.Publisher, error) {
	if a.cfg.PubSub.ProjectID == "" {
		a.logger.Info("event publisher: in-process")
		return pubmemory.New(), nil
	}
	client, err := pubsub.NewClient(ctx, a.cfg.PubSub.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("pubsub client: %w", err)
	}
	a.closers = append(a.closers, func() {
		if cerr := client.Close(); cerr != nil {
			a.logger.Warn("close pubsub client", zap.Error(cerr))
		}
	})
	a.logger.Info("event publisher: pubsub", zap.String("project", a.cfg.PubSub.ProjectID))
	return pubgcp.New(client), nil
}

// Browser exposes the shared browser manager for one-shot commands.
func (a *App) Browser() *browser.Manager { return a.browser }

// Limiter exposes the site rate limiter for one-shot commands.
func (a *App) Limiter() *ratelimit.Limiter { return a.limiter }

// Robots exposes the robots checker for one-shot commands.
func (a *App) Robots() *robots.Checker { return a.robots }

// HealthChecker exposes the site health checker.
func (a *App) HealthChecker() *health.Checker { return a.checker }

// Run starts the API server, the rate-limiter sweeper, and scheduled
// health runs, then blocks until the context is cancelled or a signal
// arrives.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.limiter.StartSweeper(ctx)

	a.cron = cron.New()
	if _, err := a.cron.AddFunc(a.cfg.Health.CronSpec, func() {
		runCtx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
		defer cancel()
		if _, err := a.checker.Run(runCtx); err != nil {
			a.logger.Error("scheduled health run failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("schedule health runs: %w", err)
	}
	a.cron.Start()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           a.server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		a.logger.Info("http server started", zap.Int("port", a.cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	a.logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("server shutdown error", zap.Error(err))
	}
	cronDone := a.cron.Stop()
	<-cronDone.Done()

	a.Close()
	return nil
}

// Close releases every held resource in reverse construction order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
	a.logger.Info("shutdown complete")
}
