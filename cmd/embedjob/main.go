// Command embedjob runs one embedding backfill batch and exits. Intended to
// be scheduled externally (cron, systemd timer).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/lotscout/lotscout/internal/config"
	dbRedis "github.com/lotscout/lotscout/internal/db/redis"
	"github.com/lotscout/lotscout/internal/domain"
	logpkg "github.com/lotscout/lotscout/internal/logger"
	"github.com/lotscout/lotscout/internal/metrics"
	catalogrepo "github.com/lotscout/lotscout/internal/repository/catalog"
	"github.com/lotscout/lotscout/internal/repository/embcache"
	openaiEmb "github.com/lotscout/lotscout/internal/transport/openai"
	embeddinguc "github.com/lotscout/lotscout/internal/usecase/embedding"
	embedjobuc "github.com/lotscout/lotscout/internal/usecase/embedjob"
	"github.com/lotscout/lotscout/internal/version"
)

func main() {
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

	logger.Info("Starting embedding batch job",
		zap.String("version", version.Version),
		zap.String("env", env),
		zap.Int("batch_size", cfg.EmbedJob.BatchSize),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}

	metrics.RegisterEmbeddingMetrics()

	baseEmbedder := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Logger:     logger,
	})
	var embedder domain.Embedder = embcache.New(
		baseEmbedder, store,
		time.Duration(cfg.Embedding.CacheTTLHr)*time.Hour,
		metrics.EmbeddingCacheTotal, logger,
	)
	embedder = embeddinguc.NewInstrumentedEmbedder(
		embedder, cfg.Embedding.Provider, cfg.Embedding.Model, logger,
	)

	catalog := catalogrepo.New(store, cfg.Embedding.Dimensions).
		WithHNSW(cfg.Retrieval.HNSWM, cfg.Retrieval.HNSWEFConstruct)

	job := embedjobuc.New(
		catalog, embedder,
		cfg.EmbedJob.BatchSize,
		time.Duration(cfg.EmbedJob.IntervalMs)*time.Millisecond,
	)

	jobCtx := logpkg.ContextWithLogger(ctx, logger)
	res, err := job.RunBatch(jobCtx)
	if err != nil {
		logger.Fatal("Batch failed", zap.Error(err))
	}

	logger.Info("Batch complete",
		zap.Int("embedded", res.Embedded),
		zap.Int("failed", res.Failed),
	)
}
