package search

import (
	"context"

	"github.com/lotscout/lotscout/internal/domain"
	"github.com/lotscout/lotscout/internal/domain/filter"
)

// Catalog defines the storage contract for retrieval.
type Catalog interface {
	Search(
		ctx context.Context, filters filter.Expression,
		exclude []string, substring string, limit int,
	) ([]domain.Match, error)

	SearchSimilar(
		ctx context.Context, vector []float32, threshold float64,
		limit int, exclude []string,
	) ([]domain.Match, error)
}

// Embedder vectorizes query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// ExclusionLister resolves the vehicle IDs a user must never see in results.
type ExclusionLister interface {
	Exclusions(ctx context.Context, userID string) ([]string, error)
}
