package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/lotscout/lotscout/internal/db"
	"github.com/lotscout/lotscout/internal/domain"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hSetFn                 func(ctx context.Context, key string, fields map[string]string) error
	hGetAllFn              func(ctx context.Context, key string) (map[string]string, error)
	existsFn               func(ctx context.Context, key string) (bool, error)
	searchKNNFn            func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	searchStructuredFn     func(ctx context.Context, q *db.StructuredQuery) (*db.SearchResult, error)
	createIndexFn          func(ctx context.Context, def *db.IndexDefinition) error
	indexExistsFn          func(ctx context.Context, name string) (bool, error)
	supportsVectorSearchFn func(ctx context.Context) bool
}

func (m *mockStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if m.hSetFn != nil {
		return m.hSetFn(ctx, key, fields)
	}
	return nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hGetAllFn != nil {
		return m.hGetAllFn(ctx, key)
	}
	return map[string]string{}, nil
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

func (m *mockStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if m.searchKNNFn != nil {
		return m.searchKNNFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchStructured(ctx context.Context, q *db.StructuredQuery) (*db.SearchResult, error) {
	if m.searchStructuredFn != nil {
		return m.searchStructuredFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return false, nil
}

func (m *mockStore) SupportsVectorSearch(ctx context.Context) bool {
	if m.supportsVectorSearchFn != nil {
		return m.supportsVectorSearchFn(ctx)
	}
	return true
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	repo := New(ms, 4).WithHNSW(16, 200)
	return repo, ms
}

func testVector() []float32 {
	return []float32{0.1, 0.2, 0.3, 0.4}
}

func testCivic() *domain.Vehicle {
	year := 2019
	return &domain.Vehicle{
		Title:          "2019 Honda Civic EX",
		Price:          18500,
		Mileage:        "42k miles",
		Location:       "Austin, TX",
		MarketplaceURL: "https://marketplace.example.com/item/12345",
		Source:         "facebook",
		Make:           "Honda",
		Model:          "Civic",
		BodyType:       "Sedan",
		Year:           &year,
		PostedAt:       time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC),
	}
}
