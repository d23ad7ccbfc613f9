package embedjob

import (
	"context"

	"github.com/lotscout/lotscout/internal/domain"
)

// Catalog defines the storage contract for the embedding batch job.
type Catalog interface {
	ListMissingEmbeddings(ctx context.Context, limit int) ([]domain.Vehicle, error)
	AttachEmbedding(ctx context.Context, id string, vector []float32) error
}

// Embedder vectorizes listing text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
