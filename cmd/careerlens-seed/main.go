package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/careerlens/careerlens-api/internal/cache"
	"github.com/careerlens/careerlens-api/internal/catalog"
	"github.com/careerlens/careerlens-api/internal/config"
	"github.com/careerlens/careerlens-api/internal/seed"
	"github.com/careerlens/careerlens-api/internal/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dir := flag.String("dir", cfg.Seed.Dir, "directory holding the YAML seed corpus")
	dsn := flag.String("dsn", cfg.Database.DSN, "PostgreSQL connection string")
	only := flag.String("only", "all", "part to seed: catalog, hr, tech or all")
	skipMigrations := flag.Bool("skip-migrations", false, "do not apply pending migrations first")
	flag.Parse()

	scope, err := seed.ParseScope(*only)
	if err != nil {
		slog.Error("invalid -only flag", "error", err)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ds, err := seed.LoadDir(*dir)
	if err != nil {
		slog.Error("failed to load seed corpus", "dir", *dir, "error", err)
		os.Exit(1)
	}

	if !*skipMigrations {
		n, err := storage.MigrateFromDSN(ctx, *dsn, cfg.Database.MigrationsDir)
		if err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		slog.Info("database migrations complete", "applied", n)
	}

	db, err := seed.Open(ctx, *dsn)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	res, err := seed.NewWriter(db).Write(ctx, ds, scope)
	if err != nil {
		slog.Error("seeding failed", "error", err)
		os.Exit(1)
	}

	if cfg.Redis.Enabled() && scope != seed.ScopeHR && scope != seed.ScopeTech {
		c := cache.New(ctx, cache.Options{
			RedisAddress:  cfg.Redis.Address,
			RedisPassword: cfg.Redis.Password,
			RedisDB:       cfg.Redis.DB,
		})
		if err := catalog.NewService(nil, c).InvalidateCache(ctx); err != nil {
			slog.Warn("failed to flush catalog cache", "error", err)
		}
		c.Close()
	}

	slog.Info("seeding complete",
		"companies", res.Companies,
		"roles", res.Roles,
		"skills", res.Skills,
		"questions", res.Questions,
		"hr_inserted", res.HRInserted,
		"hr_skipped", res.HRSkipped,
		"tech_inserted", res.TechInserted,
		"tech_skipped", res.TechSkipped,
	)
}
