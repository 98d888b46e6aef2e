package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	_ "freightdesk/docs"
	"freightdesk/internal/caching"
	"freightdesk/internal/config"
	"freightdesk/internal/handlers"
	"freightdesk/internal/jobs/background"
	"freightdesk/internal/middleware"
	"freightdesk/internal/repositories"
	"freightdesk/internal/services"
	"freightdesk/pkg/database"
	"freightdesk/pkg/logger"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Database.MigrateOnStart {
		if err := database.Migrate(cfg.Database.URL, zlog); err != nil {
			return err
		}
	}

	pool, err := database.NewPool(ctx, cfg.Database.URL, cfg.Database.MaxConns, zlog)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	// Directory cache (optional)
	var cache caching.DirectoryCache
	if cfg.Redis.Addr != "" {
		cache = caching.NewRedisCacheService(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, zlog)
	} else {
		zlog.Info("redis not configured, directory cache disabled")
	}

	// Deletion archive (optional)
	var archiver services.DocumentArchiver
	if cfg.Minio.Endpoint != "" {
		archiver, err = services.NewMinioArchiver(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL, cfg.Minio.Bucket)
		if err != nil {
			return fmt.Errorf("initialize minio archiver: %w", err)
		}
		if err := archiver.EnsureBucketExists(ctx); err != nil {
			zlog.Warn("archive bucket unavailable, deletions will not be archived until it is", zap.String("bucket", cfg.Minio.Bucket), zap.Error(err))
		}
	}

	policy, err := services.ParseReferencePolicy(cfg.Documents.ReferencePolicy)
	if err != nil {
		return err
	}

	store := repositories.NewStore(pool)
	txManager := repositories.NewTxManager(pool)
	directory := services.NewDirectoryLookup(cache, cfg.Redis.DirectoryTTL, policy, zlog.Named("directory"))
	documentSvc := services.NewDocumentService(txManager, directory, archiver, cfg.Documents.TxTimeout, zlog.Named("documents"))
	querySvc := services.NewQueryService(txManager, store, zlog.Named("queries"))

	// Background jobs
	var refresher background.DirectoryRefresher
	if cache != nil {
		refresher = directory
	}
	scheduler, err := background.NewJobScheduler(refresher, store.Directory, cfg.Jobs.DirectoryRefreshInterval, zlog.Named("jobs"))
	if err != nil {
		return err
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			zlog.Warn("failed to stop scheduler", zap.Error(err))
		}
	}()

	auth, err := middleware.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.JWKSURL, zlog.Named("auth"))
	if err != nil {
		return err
	}
	defer auth.Close()

	// Handlers
	var cachePinger handlers.Pinger
	if cache != nil {
		cachePinger = cache
	}
	healthHandlers := handlers.NewHealthHandlers(pool, cachePinger, version)
	houseHandlers := handlers.NewHouseHandlers(documentSvc, querySvc, zlog.Named("http"))
	jobHandlers := handlers.NewJobHandlers(scheduler, zlog.Named("http"))

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Global middleware
	e.Use(echoMiddleware.RequestID())
	e.Use(middleware.RequestLogger(zlog.Named("http")))
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	versionMiddleware := middleware.NewVersionMiddleware()
	e.Use(versionMiddleware.APIVersionResolver())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// API routes
	v1 := e.Group("/v1")
	v1.Use(versionMiddleware.VersionHeader("v1"))
	v1.Use(auth.Middleware())
	houseHandlers.Register(v1)
	jobHandlers.Register(v1)

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("freightdesk server starting", zap.String("version", version), zap.Int("port", cfg.Server.Port))
		if err := e.Start(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zlog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
