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

	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/config"
	"github.com/kailas-cloud/docsearch/internal/db"
	dbRedis "github.com/kailas-cloud/docsearch/internal/db/redis"
	"github.com/kailas-cloud/docsearch/internal/domain"
	logpkg "github.com/kailas-cloud/docsearch/internal/logger"
	"github.com/kailas-cloud/docsearch/internal/metrics"
	documentrepo "github.com/kailas-cloud/docsearch/internal/repository/document"
	"github.com/kailas-cloud/docsearch/internal/repository/embcache"
	querycacherepo "github.com/kailas-cloud/docsearch/internal/repository/querycache"
	"github.com/kailas-cloud/docsearch/internal/repository/quota"
	"github.com/kailas-cloud/docsearch/internal/repository/vector"
	chiTransport "github.com/kailas-cloud/docsearch/internal/transport/chi"
	openaiEmb "github.com/kailas-cloud/docsearch/internal/transport/openai"
	"github.com/kailas-cloud/docsearch/internal/usecase/assemble"
	healthuc "github.com/kailas-cloud/docsearch/internal/usecase/health"
	"github.com/kailas-cloud/docsearch/internal/usecase/pipeline"
	"github.com/kailas-cloud/docsearch/internal/usecase/querycache"
	"github.com/kailas-cloud/docsearch/internal/usecase/ratelimit"
	"github.com/kailas-cloud/docsearch/internal/usecase/vectorsearch"
	"github.com/kailas-cloud/docsearch/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting docsearch API server",
		zap.String("version", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.Int64("rate_limit", cfg.RateLimit.Limit),
		zap.Duration("rate_limit_window", cfg.RateLimit.Window()),
	)

	// One store for counters, cache, documents and the index
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := logpkg.ContextWithLogger(context.Background(), logger)
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.Register()

	vectorRepo := vector.New(store, vector.IndexConfig{
		Dimension:      cfg.Embedding.Dimensions,
		M:              cfg.Search.HNSWM,
		EFConstruction: cfg.Search.HNSWEFConstruct,
	})
	created, err := vectorRepo.EnsureIndex(ctx)
	if err != nil {
		logger.Fatal("Failed to ensure vector index", zap.Error(err))
	}
	logger.Info("Vector index ready",
		zap.String("index", vector.IndexName),
		zap.Bool("created", created),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	queryEmbedder := buildQueryEmbedder(&cfg, store, logger)

	limiter := ratelimit.New(quota.New(store, cfg.RateLimit.Window()), ratelimit.Config{
		Limit:   cfg.RateLimit.Limit,
		Timeout: cfg.RateLimit.Timeout(),
	})
	cache := querycache.New(querycacherepo.New(store, cfg.Cache.TTL()), cfg.Cache.Timeout())
	search := vectorsearch.New(queryEmbedder, vectorRepo, vectorsearch.Config{
		EmbedTimeout: cfg.Search.EmbedTimeout(),
		QueryTimeout: cfg.Search.QueryTimeout(),
	})

	var contents assemble.ContentStore
	if cfg.Search.ResolveContent {
		contents = documentrepo.New(store)
	}
	pipe := pipeline.New(limiter, cache, search, assemble.New(contents))

	healthSvc := healthuc.New(store, queryEmbedder, 0)
	server := chiTransport.NewServer(pipe, healthSvc)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(logger, cfg.Auth.APIKeys),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildQueryEmbedder assembles the decorator chain: OpenAI -> Cached -> Instruction.
// The instruction is outermost so the cache key includes it.
func buildQueryEmbedder(cfg *config.Config, store db.KVStore, logger *zap.Logger) *domain.InstructionEmbedder {
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   "openai",
		Logger:     logger,
	})

	cached := embcache.New(
		base, store, cfg.Embedding.Model, cfg.Cache.EmbeddingTTL(), metrics.EmbeddingCacheTotal, logger,
	)

	logger.Info("Query embedder created",
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)
	return domain.NewInstructionEmbedder(cached, cfg.Embedding.QueryInstruction)
}
