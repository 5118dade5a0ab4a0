package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	httpapi "github.com/MenukaRanasinghe/SmartSL/internal/api/http"
	"github.com/MenukaRanasinghe/SmartSL/internal/cache"
	"github.com/MenukaRanasinghe/SmartSL/internal/config"
	"github.com/MenukaRanasinghe/SmartSL/internal/crowd"
	"github.com/MenukaRanasinghe/SmartSL/internal/crowd/sources"
	"github.com/MenukaRanasinghe/SmartSL/internal/geo"
	"github.com/MenukaRanasinghe/SmartSL/internal/scheduler"
	"github.com/MenukaRanasinghe/SmartSL/internal/store"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Place registry: built-in unless a file is configured.
	var registry crowd.Registry = crowd.NewStaticRegistry(crowd.DefaultPlaces)
	if cfg.RegistryFile != "" {
		r, err := crowd.LoadRegistryFile(cfg.RegistryFile)
		if err != nil {
			zlog.Fatal("failed to load place registry", zap.Error(err))
		}
		registry = r
	}

	// Dataset source.
	loader, closeLoader, err := sources.New(ctx, cfg.Dataset, zlog.Named("dataset"))
	if err != nil {
		zlog.Fatal("failed to set up dataset source", zap.Error(err))
	}
	defer closeLoader()

	// Optional redis for response caching and snapshot fan-out.
	redisCache, err := cache.New(ctx, cfg.RedisURL, zlog.Named("cache"))
	if err != nil {
		zlog.Warn("redis unavailable; caching and publishing disabled", zap.Error(err))
	}
	defer redisCache.Close()

	var opts []crowd.Option
	if cfg.GeocoderAPIKey != "" {
		opts = append(opts, crowd.WithAddressLookup(geo.NewAddressResolver(cfg.GeocoderAPIKey)))
	}

	resolver := crowd.NewResolver(cfg.Location(), nil)
	service := crowd.NewService(loader, registry, resolver, cfg.Region, zlog.Named("crowd"), opts...)

	// Snapshot history captured by the scheduler.
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	sched := scheduler.New(cfg.SnapshotRegions, cfg.SnapshotInterval, service, memStore, redisCache, zlog.Named("scheduler"))
	if err := sched.Start(); err != nil {
		zlog.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "smartsl",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowedOrigins,
		AllowMethods: "GET,OPTIONS",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "smartsl",
			"source":  loader.Name(),
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// API routes.
	httpapi.RegisterRoutes(app, service, memStore, httpapi.Options{
		Cache:    redisCache,
		CacheTTL: cfg.CacheTTL,
		Logger:   zlog.Named("http"),
	})

	go func() {
		zlog.Info("listening", zap.String("port", cfg.Port), zap.String("source", loader.Name()))
		if err := app.Listen(":" + cfg.Port); err != nil {
			zlog.Error("fiber server stopped", zap.Error(err))
		}
	}()

	// Wait for termination signal
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zlog.Error("error during shutdown", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg.Level = lvl
	return zcfg.Build()
}
