// Package lotscout is the embeddable entry point for the vehicle retrieval
// core: hybrid semantic + structured search over a marketplace catalog, user
// exclusions, interest profiles, and the scoreboard built from them.
package lotscout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lotscout/lotscout/internal/db"
	dbRedis "github.com/lotscout/lotscout/internal/db/redis"
	"github.com/lotscout/lotscout/internal/domain"
	"github.com/lotscout/lotscout/internal/domain/criteria"
	catalogrepo "github.com/lotscout/lotscout/internal/repository/catalog"
	interestrepo "github.com/lotscout/lotscout/internal/repository/interest"
	userprefsrepo "github.com/lotscout/lotscout/internal/repository/userprefs"
	embedjobuc "github.com/lotscout/lotscout/internal/usecase/embedjob"
	prefsuc "github.com/lotscout/lotscout/internal/usecase/prefs"
	scoreboarduc "github.com/lotscout/lotscout/internal/usecase/scoreboard"
	searchuc "github.com/lotscout/lotscout/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Embedder turns text into a vector. Implementations wrap an external
// provider.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// Client is the lotscout SDK entry point.
type Client struct {
	store      db.Store
	catalog    *catalogrepo.Repo
	search     *searchuc.Service
	scoreboard *scoreboarduc.Service
	prefs      *prefsuc.Service
	embedjob   *embedjobuc.Service
}

// New creates a lotscout Client and connects to the database.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		vectorDimensions:    domain.EmbeddingDimensions,
		hnswM:               16,
		hnswEFConstruct:     200,
		similarityThreshold: 0.1,
		defaultLimit:        20,
		profileTimeout:      5 * time.Second,
		batchSize:           20,
		batchInterval:       500 * time.Millisecond,
		logger:              zap.NewNop(),
	}
	for _, o := range opts {
		o(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("lotscout: database address required (use WithRedis)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Username: cfg.username,
		Password: cfg.password,
		DB:       cfg.db,
	})
	if err != nil {
		return nil, fmt.Errorf("lotscout: create store: %w", err)
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("lotscout: database not ready: %w", err)
	}

	return wireClient(store, cfg), nil
}

func wireClient(store db.Store, cfg *clientConfig) *Client {
	catalog := catalogrepo.New(store, cfg.vectorDimensions).
		WithHNSW(cfg.hnswM, cfg.hnswEFConstruct)
	interests := interestrepo.New(store)
	userprefs := userprefsrepo.New(store)

	var embed searchuc.Embedder = noopEmbedder{}
	if cfg.embedder != nil {
		embed = &embedderAdapter{inner: cfg.embedder}
	}

	prefsSvc := prefsuc.New(userprefs, catalog)
	searchSvc := searchuc.New(
		catalog, embed, prefsSvc, cfg.similarityThreshold, cfg.defaultLimit,
	)
	scoreboardSvc := scoreboarduc.New(
		interests, searchSvc, prefsSvc, cfg.profileTimeout, cfg.defaultLimit,
	)
	embedjobSvc := embedjobuc.New(catalog, embed, cfg.batchSize, cfg.batchInterval)

	return &Client{
		store:      store,
		catalog:    catalog,
		search:     searchSvc,
		scoreboard: scoreboardSvc,
		prefs:      prefsSvc,
		embedjob:   embedjobSvc,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// EnsureIndex creates the catalog search index if it does not exist. Call once
// after New, before the first search.
func (c *Client) EnsureIndex(ctx context.Context) error {
	return c.catalog.EnsureIndex(ctx)
}

// IngestVehicle upserts a listing keyed on its marketplace URL. Returns the
// catalog ID and whether a new row was created.
func (c *Client) IngestVehicle(ctx context.Context, v Vehicle) (string, bool, error) {
	dv := toDomainVehicle(&v)
	return c.catalog.Upsert(ctx, &dv)
}

// GetVehicle reads one catalog row.
func (c *Client) GetVehicle(ctx context.Context, id string) (Vehicle, error) {
	v, err := c.catalog.Get(ctx, id)
	if err != nil {
		return Vehicle{}, err
	}
	return fromDomainVehicle(&v), nil
}

// Search runs one retrieval request: semantic when a query string is present,
// structured otherwise, with substring fallback when the semantic path fails.
func (c *Client) Search(ctx context.Context, q SearchQuery) (SearchOutcome, error) {
	out, err := c.search.Search(ctx, searchuc.Request{
		UserID:   q.UserID,
		Query:    q.Query,
		Criteria: criteria.Raw(q.Criteria),
		Limit:    q.Limit,
	})
	if err != nil {
		return SearchOutcome{}, err
	}
	return SearchOutcome{
		Matches: fromDomainMatches(out.Matches),
		Path:    string(out.Path),
	}, nil
}

// Scoreboard builds one match list per active interest profile, keyed by
// profile name.
func (c *Client) Scoreboard(ctx context.Context, userID string) (map[string][]Match, error) {
	board, err := c.scoreboard.Build(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]Match, len(board))
	for name, matches := range board {
		out[name] = fromDomainMatches(matches)
	}
	return out, nil
}

// CreateInterest saves an active watch profile.
func (c *Client) CreateInterest(ctx context.Context, userID, name string, crit Criteria) (Interest, error) {
	created, err := c.scoreboard.CreateInterest(ctx, domain.Interest{
		UserID:    userID,
		Name:      name,
		Criteria:  criteria.Raw(crit),
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return Interest{}, err
	}
	return fromDomainInterest(&created), nil
}

// DeleteInterest removes a profile owned by userID.
func (c *Client) DeleteInterest(ctx context.Context, userID, id string) error {
	return c.scoreboard.DeleteInterest(ctx, userID, id)
}

// ListInterests returns the user's active profiles, oldest first.
func (c *Client) ListInterests(ctx context.Context, userID string) ([]Interest, error) {
	profiles, err := c.scoreboard.ListInterests(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]Interest, len(profiles))
	for i := range profiles {
		out[i] = fromDomainInterest(&profiles[i])
	}
	return out, nil
}

// ToggleFavorite flips the vehicle's favorite state and returns the new one.
func (c *Client) ToggleFavorite(ctx context.Context, userID, vehicleID string) (bool, error) {
	return c.prefs.ToggleFavorite(ctx, userID, vehicleID)
}

// ListFavorites returns the user's favorited vehicles.
func (c *Client) ListFavorites(ctx context.Context, userID string) ([]Vehicle, error) {
	vehicles, err := c.prefs.ListFavorites(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]Vehicle, len(vehicles))
	for i := range vehicles {
		out[i] = fromDomainVehicle(&vehicles[i])
	}
	return out, nil
}

// HideVehicle excludes a vehicle from the user's future results.
func (c *Client) HideVehicle(ctx context.Context, userID, vehicleID, reason string) error {
	return c.prefs.HideVehicle(ctx, userID, vehicleID, reason)
}

// RunEmbeddingBatch embeds one batch of vehicles that have no vector yet.
func (c *Client) RunEmbeddingBatch(ctx context.Context) (BatchResult, error) {
	res, err := c.embedjob.RunBatch(ctx)
	if err != nil {
		return BatchResult{}, err
	}
	return BatchResult{Embedded: res.Embedded, Failed: res.Failed}, nil
}

// embedderAdapter wraps the public Embedder to satisfy the internal contract.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// noopEmbedder reports the provider as unavailable, which routes semantic
// queries down the substring fallback.
type noopEmbedder struct{}

func (noopEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, domain.ErrEmbeddingUnavailable
}
