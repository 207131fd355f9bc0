package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/docsearch/internal/config"
	dbRedis "github.com/kailas-cloud/docsearch/internal/db/redis"
	"github.com/kailas-cloud/docsearch/internal/domain"
	logpkg "github.com/kailas-cloud/docsearch/internal/logger"
	documentrepo "github.com/kailas-cloud/docsearch/internal/repository/document"
	"github.com/kailas-cloud/docsearch/internal/repository/vector"
	openaiEmb "github.com/kailas-cloud/docsearch/internal/transport/openai"
	"github.com/kailas-cloud/docsearch/internal/usecase/ingest"
	"github.com/kailas-cloud/docsearch/internal/version"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "ingest",
		Usage:   "Embed feed articles and write them to the docsearch index",
		Version: version.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env",
				Usage:   "Config environment (config/<env>.yaml)",
				EnvVars: []string{"ENV"},
				Value:   "local",
			},
			&cli.StringFlag{
				Name:    "feed",
				Aliases: []string{"f"},
				Usage:   "Path to a YAML or JSON feed file (overrides ingest.feed)",
			},
			&cli.DurationFlag{
				Name:  "interval",
				Usage: "Re-run the feed at this interval; 0 runs once (overrides ingest.interval_sec)",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent embedding workers (overrides ingest.workers)",
			},
			&cli.Float64Flag{
				Name:  "rate",
				Usage: "Embedding requests per second (overrides ingest.rate_per_sec)",
			},
		},
		Action: ingestCommand,
	}
}

func ingestCommand(c *cli.Context) error {
	env := c.String("env")
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyFlags(c, &cfg.Ingest)
	if cfg.Ingest.Interval() < 0 {
		return errors.New("--interval must not be negative")
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logpkg.ContextWithLogger(ctx, logger)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		return fmt.Errorf("create database store: %w", err)
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}

	// Ingestion may run before the first server start.
	if _, err := vector.New(store, vector.IndexConfig{
		Dimension:      cfg.Embedding.Dimensions,
		M:              cfg.Search.HNSWM,
		EFConstruction: cfg.Search.HNSWEFConstruct,
	}).EnsureIndex(ctx); err != nil {
		return fmt.Errorf("ensure index: %w", err)
	}

	embedder := domain.NewInstructionEmbedder(openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   "openai",
		Logger:     logger,
	}), cfg.Embedding.DocumentInstruction)

	svc, err := ingest.New(embedder, documentrepo.New(store),
		rate.NewLimiter(rate.Limit(cfg.Ingest.RatePerSec), cfg.Ingest.Burst),
		ingest.Config{Workers: cfg.Ingest.Workers},
	)
	if err != nil {
		return err //nolint:wrapcheck // already descriptive
	}
	defer svc.Release()

	logger.Info("Starting ingestion",
		zap.String("feed", cfg.Ingest.Feed),
		zap.Duration("interval", cfg.Ingest.Interval()),
		zap.Int("workers", cfg.Ingest.Workers),
		zap.Float64("rate_per_sec", cfg.Ingest.RatePerSec),
	)

	return runPeriodically(ctx, cfg.Ingest.Interval(), func(ctx context.Context) error {
		articles, err := ingest.LoadFeed(cfg.Ingest.Feed)
		if err != nil {
			return err //nolint:wrapcheck // carries the feed path
		}
		_, err = svc.Run(ctx, articles)
		return err //nolint:wrapcheck // already wrapped by the service
	})
}

func applyFlags(c *cli.Context, cfg *config.IngestConfig) {
	if c.IsSet("feed") {
		cfg.Feed = c.String("feed")
	}
	if c.IsSet("interval") {
		cfg.IntervalSec = int(c.Duration("interval") / time.Second)
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.IsSet("rate") {
		cfg.RatePerSec = c.Float64("rate")
	}
}

// runPeriodically runs fn once, then every interval until ctx is done.
// With a zero interval it returns fn's error. Otherwise failed runs are logged
// and the loop continues; cancellation ends the loop without error.
func runPeriodically(ctx context.Context, interval time.Duration, fn func(context.Context) error) error {
	log := logpkg.FromContext(ctx)

	err := fn(ctx)
	if interval <= 0 {
		return err
	}
	if err != nil && ctx.Err() == nil {
		log.Error("Ingestion run failed", zap.Error(err))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info("Ingestion stopped")
			return nil
		case <-ticker.C:
			if err := fn(ctx); err != nil && ctx.Err() == nil {
				log.Error("Ingestion run failed", zap.Error(err))
			}
		}
	}
}
