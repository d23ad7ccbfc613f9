// Package catalog persists vehicle listings and serves both retrieval paths:
// structured filter queries and vector similarity matching.
package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lotscout/lotscout/internal/db"
	"github.com/lotscout/lotscout/internal/domain"
	"github.com/lotscout/lotscout/internal/domain/filter"
)

const (
	keyPrefix = domain.KeyPrefix + "vehicle:"
	indexName = domain.KeyPrefix + "vehicle:idx"
)

// store is the consumer interface for catalog operations (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Exists(ctx context.Context, key string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchStructured(ctx context.Context, q *db.StructuredQuery) (*db.SearchResult, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SupportsVectorSearch(ctx context.Context) bool
}

// Repo implements the catalog store contract.
type Repo struct {
	store     store
	vectorDim int
	hnswM     int
	hnswEF    int
}

// New creates a catalog repository.
func New(s store, vectorDim int) *Repo {
	return &Repo{store: s, vectorDim: vectorDim}
}

// WithHNSW configures HNSW index build parameters.
func (r *Repo) WithHNSW(m, efConstruct int) *Repo {
	r.hnswM = m
	r.hnswEF = efConstruct
	return r
}

// EnsureIndex creates the vehicle FT index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, indexName)
	if err != nil {
		return fmt.Errorf("probe index: %w", err)
	}
	if exists {
		return nil
	}

	def, err := db.NewIndex(indexName).
		Prefix(keyPrefix).
		Tag(fieldID).
		Tag(fieldMake).
		Tag(fieldModel).
		Tag(fieldBodyType).
		Tag(fieldSource).
		Tag(fieldEmbedded).
		Text(fieldSearchText).
		Numeric(fieldPrice).
		Numeric(fieldYear).
		Numeric(fieldPostedAt).
		VectorHNSW(fieldEmbedding, r.vectorDim, db.DistanceCosine, r.hnswM, r.hnswEF).
		Build()
	if err != nil {
		return fmt.Errorf("build index definition: %w", err)
	}

	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// Upsert writes a vehicle row, keyed on its marketplace URL so repeated
// ingestion of the same listing is idempotent. Returns the row ID and whether
// the row was created. The embedding field is never touched here: attaching
// vectors is AttachEmbedding's job.
func (r *Repo) Upsert(ctx context.Context, v *domain.Vehicle) (string, bool, error) {
	if v.MarketplaceURL == "" {
		return "", false, fmt.Errorf("marketplace url is required")
	}
	if v.ID == "" {
		v.ID = DeriveID(v.MarketplaceURL)
	}

	key := keyPrefix + v.ID
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return "", false, fmt.Errorf("check exists %s: %w", key, catalogErr(err))
	}

	fields := vehicleFields(v)
	if !exists {
		// New rows start unembedded; the batch job picks them up.
		fields[fieldEmbedded] = "0"
	}

	if err := r.store.HSet(ctx, key, fields); err != nil {
		return "", false, fmt.Errorf("hset %s: %w", key, catalogErr(err))
	}
	return v.ID, !exists, nil
}

// Get returns a vehicle by ID, embedding included.
func (r *Repo) Get(ctx context.Context, id string) (domain.Vehicle, error) {
	key := keyPrefix + id
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("hgetall %s: %w", key, catalogErr(err))
	}
	if len(m) == 0 {
		return domain.Vehicle{}, domain.ErrVehicleNotFound
	}
	return parseVehicle(id, m), nil
}

// AttachEmbedding stores a vector on an existing row. Idempotent per vehicle:
// writing the same vector twice is harmless.
func (r *Repo) AttachEmbedding(ctx context.Context, id string, vector []float32) error {
	if len(vector) != r.vectorDim {
		return fmt.Errorf("got %d dimensions, want %d: %w",
			len(vector), r.vectorDim, domain.ErrVectorDimMismatch)
	}

	key := keyPrefix + id
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, catalogErr(err))
	}
	if !exists {
		return domain.ErrVehicleNotFound
	}

	fields := map[string]string{
		fieldEmbedding: db.EncodeVector(vector),
		fieldEmbedded:  "1",
	}
	if err := r.store.HSet(ctx, key, fields); err != nil {
		return fmt.Errorf("hset embedding %s: %w", key, catalogErr(err))
	}
	return nil
}

// ListMissingEmbeddings returns up to limit vehicles without an attached
// vector, newest listings first.
func (r *Repo) ListMissingEmbeddings(ctx context.Context, limit int) ([]domain.Vehicle, error) {
	cond, err := filter.NewMatch(fieldEmbedded, "0")
	if err != nil {
		return nil, err
	}
	expr, err := filter.NewExpression([]filter.Condition{cond}, nil, nil)
	if err != nil {
		return nil, err
	}

	q := &db.StructuredQuery{
		IndexName: indexName,
		Filters:   expr,
		SortBy:    fieldPostedAt,
		Limit:     limit,
	}

	res, err := r.store.SearchStructured(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list missing embeddings: %w", catalogErr(err))
	}

	return entriesToVehicles(res), nil
}

// Search runs the structured filter executor: a conjunction of exact, range,
// and substring constraints, excluded IDs removed in the query itself,
// ordered by posting timestamp descending.
func (r *Repo) Search(
	ctx context.Context, filters filter.Expression,
	exclude []string, substring string, limit int,
) ([]domain.Match, error) {
	q := &db.StructuredQuery{
		IndexName:  indexName,
		Filters:    filters.WithExclusions(exclude),
		Substring:  substring,
		TextFields: []string{fieldSearchText},
		SortBy:     fieldPostedAt,
		Limit:      limit,
	}

	res, err := r.store.SearchStructured(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("structured search: %w: %w", domain.ErrCatalogUnavailable, err)
	}

	matches := make([]domain.Match, 0, len(res.Entries))
	for _, v := range entriesToVehicles(res) {
		matches = append(matches, domain.Match{Vehicle: v})
	}
	return matches, nil
}

// SearchSimilar runs the vector similarity matcher: KNN over embedded
// vehicles, excluded IDs filtered in the query, scores below threshold
// dropped. Results are ordered by descending similarity, ties broken by
// listing recency.
func (r *Repo) SearchSimilar(
	ctx context.Context, vector []float32, threshold float64,
	limit int, exclude []string,
) ([]domain.Match, error) {
	if !r.store.SupportsVectorSearch(ctx) {
		return nil, domain.ErrMatcherUnavailable
	}

	var empty filter.Expression
	q := &db.KNNQuery{
		IndexName: indexName,
		Filters:   empty.WithExclusions(exclude),
		Vector:    vector,
		K:         limit,
	}

	res, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		if errors.Is(err, db.ErrSearchUnsupported) {
			return nil, domain.ErrMatcherUnavailable
		}
		return nil, fmt.Errorf("knn search: %w: %w", domain.ErrMatcherUnavailable, err)
	}

	matches := make([]domain.Match, 0, len(res.Entries))
	for _, entry := range res.Entries {
		if entry.Score < threshold {
			continue
		}
		id := strings.TrimPrefix(entry.Key, keyPrefix)
		matches = append(matches, domain.Match{
			Vehicle: parseVehicle(id, entry.Fields),
			Score:   entry.Score,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Vehicle.PostedAt.After(matches[j].Vehicle.PostedAt)
	})

	return matches, nil
}

// DeriveID builds a stable row ID from the marketplace URL dedup key.
func DeriveID(marketplaceURL string) string {
	h := sha256.Sum256([]byte(marketplaceURL))
	return hex.EncodeToString(h[:8])
}

func entriesToVehicles(res *db.SearchResult) []domain.Vehicle {
	if res == nil {
		return nil
	}
	vehicles := make([]domain.Vehicle, 0, len(res.Entries))
	for _, entry := range res.Entries {
		id := strings.TrimPrefix(entry.Key, keyPrefix)
		vehicles = append(vehicles, parseVehicle(id, entry.Fields))
	}
	return vehicles
}

func catalogErr(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrCatalogUnavailable, err)
}
