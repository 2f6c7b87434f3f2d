package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/careerlens/careerlens-api/internal/advisor"
	"github.com/careerlens/careerlens-api/internal/api"
	"github.com/careerlens/careerlens-api/internal/assessment"
	"github.com/careerlens/careerlens-api/internal/cache"
	"github.com/careerlens/careerlens-api/internal/catalog"
	"github.com/careerlens/careerlens-api/internal/cleanup"
	"github.com/careerlens/careerlens-api/internal/config"
	"github.com/careerlens/careerlens-api/internal/metrics"
	"github.com/careerlens/careerlens-api/internal/practice"
	"github.com/careerlens/careerlens-api/internal/seed"
	"github.com/careerlens/careerlens-api/internal/services"
	"github.com/careerlens/careerlens-api/internal/storage"
)

func main() {
	// Setup structured logging
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	level.Set(cfg.LogLevel)

	slog.Info("starting careerlens-api",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"env", cfg.Server.Env,
	)
	if !cfg.Server.IsProduction() {
		logConfig(cfg)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Create context for initialization
	initCtx, initCancel := context.WithTimeout(ctx, 30*time.Second)
	defer initCancel()

	c := cache.New(initCtx, cache.Options{
		RedisAddress:  cfg.Redis.Address,
		RedisPassword: cfg.Redis.Password,
		RedisDB:       cfg.Redis.DB,
		TTL:           cfg.Redis.TTL,
		MaxEntries:    cfg.Redis.MaxEntries,
	})
	defer c.Close()

	repo, onConnect, err := openRepository(initCtx, cfg)
	if err != nil {
		slog.Error("failed to create database repository", "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	adv := advisor.New(cfg.AI)
	catalogService := catalog.NewService(repo, c)
	if cfg.Database.Backend == config.BackendMemory {
		if err := catalogService.InvalidateCache(initCtx); err != nil {
			slog.Warn("failed to invalidate catalog cache", "error", err)
		}
	}

	// Track database connectivity for /health and the 503 guard
	monitor := storage.NewMonitor(repo, cfg.Database.HealthInterval)
	monitor.OnChange(func(connected bool) {
		metrics.SetDatabaseUp(connected)
		if connected && onConnect != nil {
			onConnect(ctx)
		}
	})
	metrics.SetDatabaseUp(false)
	monitor.Check(initCtx)

	// Initialize service registry
	registry := services.NewRegistry(3 * time.Second)
	registry.Register(services.PostgresCheck(repo))
	registry.Register(services.RedisCheck(c))
	registry.Register(services.AdvisorCheck(adv.Enabled))

	manager := practice.NewManager(adv, catalogService, practice.Options{
		TotalTime:    cfg.Practice.TotalTime,
		QuestionTime: cfg.Practice.QuestionTime,
	})
	cleaner := cleanup.NewCleaner(manager, cfg.Practice.ReapInterval, cfg.Practice.Retention)

	// Setup HTTP server
	server := api.NewServer(cfg, api.Deps{
		Catalog:     catalogService,
		Assessments: assessment.NewService(repo, adv),
		Advisor:     adv,
		Practice:    manager,
		Monitor:     monitor,
		Services:    registry,
	})
	if !cfg.Server.IsProduction() {
		for _, route := range server.Routes() {
			slog.Info("route registered", "route", route)
		}
	}

	// Websocket feeds and provider calls outlive a fixed write timeout;
	// handler deadlines come from the router middleware instead.
	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		monitor.Start(gctx)
		return nil
	})
	g.Go(func() error {
		c.Run(gctx)
		return nil
	})
	g.Go(func() error {
		cleaner.Run(gctx)
		return nil
	})
	g.Go(func() error {
		slog.Info("HTTP server starting", "addr", httpServer.Addr, "frontend_url", cfg.CORS.FrontendURL)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server shutdown error", "error", err)
		}
		manager.Shutdown()
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Error("server stopped with error", "error", err)
		os.Exit(1)
	}

	slog.Info("careerlens-api stopped")
}

// openRepository builds the configured storage backend. For postgres the
// returned hook applies migrations the first time the database is reachable.
func openRepository(ctx context.Context, cfg *config.Config) (storage.Repository, func(context.Context), error) {
	if cfg.Database.Backend == config.BackendMemory {
		ds, err := seed.LoadDir(cfg.Seed.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("load seed corpus: %w", err)
		}
		repo := storage.NewMemoryRepository()
		repo.Load(ds)
		slog.Info("memory repository seeded",
			"dir", cfg.Seed.Dir,
			"companies", len(ds.Companies),
			"roles", len(ds.Roles),
			"skills", len(ds.Skills),
			"questions", len(ds.Questions),
		)
		return repo, nil, nil
	}

	repo, err := storage.NewPostgresRepository(ctx, storage.PostgresConfig{
		DSN:          cfg.Database.DSN,
		MaxOpenConns: int32(cfg.Database.MaxOpenConns),
		MaxIdleConns: int32(cfg.Database.MaxIdleConns),
	})
	if err != nil {
		return nil, nil, err
	}

	var once sync.Once
	migrate := func(ctx context.Context) {
		once.Do(func() {
			slog.Info("running database migrations", "dir", cfg.Database.MigrationsDir)
			n, err := storage.RunMigrations(ctx, repo.Pool(), cfg.Database.MigrationsDir)
			if err != nil {
				slog.Error("failed to run migrations", "error", err)
				return
			}
			slog.Info("database migrations complete", "applied", n)
		})
	}
	return repo, migrate, nil
}

func logConfig(cfg *config.Config) {
	apiKey := "not configured"
	if cfg.AI.Enabled() {
		apiKey = cfg.AI.MaskedKey()
	}
	slog.Info("configuration",
		"storage_backend", cfg.Database.Backend,
		"migrations_dir", cfg.Database.MigrationsDir,
		"redis_enabled", cfg.Redis.Enabled(),
		"cache_ttl", cfg.Redis.TTL,
		"openai_api_key", apiKey,
		"openai_model", cfg.AI.Model,
		"frontend_url", cfg.CORS.FrontendURL,
		"cors_origins", cfg.CORS.AllowedOrigins(),
		"seed_dir", cfg.Seed.Dir,
		"practice_total_time", cfg.Practice.TotalTime,
		"practice_question_time", cfg.Practice.QuestionTime,
		"log_level", cfg.LogLevel.String(),
	)
}
