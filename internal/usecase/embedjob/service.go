// Package embedjob backfills vehicle embeddings in rate-limited batches.
package embedjob

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/lotscout/lotscout/internal/domain"
	"github.com/lotscout/lotscout/internal/logger"
	"github.com/lotscout/lotscout/internal/metrics"
)

// Result summarizes one batch run.
type Result struct {
	Embedded int
	Failed   int
}

// Service runs embedding backfill batches. Callers are responsible for
// running at most one batch at a time; concurrent runs waste provider calls
// on the same vehicles but stay correct, since attaching an embedding is
// idempotent.
type Service struct {
	catalog   Catalog
	embed     Embedder
	batchSize int
	limiter   *rate.Limiter
}

// New creates a batch service. interval spaces consecutive provider calls;
// batchSize caps vehicles per run.
func New(catalog Catalog, embed Embedder, batchSize int, interval time.Duration) *Service {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if interval > 0 {
		limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
	return &Service{
		catalog:   catalog,
		embed:     embed,
		batchSize: batchSize,
		limiter:   limiter,
	}
}

// RunBatch embeds up to batchSize vehicles that have no vector yet, serially
// and provider-rate-limited. A vehicle that fails to embed or store is
// counted and skipped; it stays unembedded and the next run retries it. Only
// context cancellation stops the loop early.
func (s *Service) RunBatch(ctx context.Context) (Result, error) {
	log := logger.FromContext(ctx)

	vehicles, err := s.catalog.ListMissingEmbeddings(ctx, s.batchSize)
	if err != nil {
		return Result{}, fmt.Errorf("list vehicles without embeddings: %w", err)
	}
	if len(vehicles) == 0 {
		log.Info("No vehicles awaiting embedding")
		return Result{}, nil
	}

	log.Info("Starting embedding batch", zap.Int("vehicles", len(vehicles)))

	var res Result
	for i := range vehicles {
		if err := s.limiter.Wait(ctx); err != nil {
			return res, fmt.Errorf("batch interrupted: %w", err)
		}

		if err := s.embedOne(ctx, &vehicles[i]); err != nil {
			res.Failed++
			metrics.EmbedJobVehiclesTotal.WithLabelValues("failed").Inc()
			log.Warn("Vehicle embedding failed",
				zap.String("vehicle_id", vehicles[i].ID),
				zap.Error(err),
			)
			continue
		}

		res.Embedded++
		metrics.EmbedJobVehiclesTotal.WithLabelValues("embedded").Inc()
	}

	log.Info("Embedding batch finished",
		zap.Int("embedded", res.Embedded),
		zap.Int("failed", res.Failed),
	)
	return res, nil
}

func (s *Service) embedOne(ctx context.Context, v *domain.Vehicle) error {
	result, err := s.embed.Embed(ctx, v.ListingText())
	if err != nil {
		return fmt.Errorf("embed listing: %w", err)
	}
	if err := s.catalog.AttachEmbedding(ctx, v.ID, result.Embedding); err != nil {
		return fmt.Errorf("attach embedding: %w", err)
	}
	return nil
}
