package chi

import (
	"context"
	"net/http"
	"time"

	chirouter "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/lotscout/lotscout/internal/domain"
	"github.com/lotscout/lotscout/internal/domain/filter"
	embedjobuc "github.com/lotscout/lotscout/internal/usecase/embedjob"
	healthuc "github.com/lotscout/lotscout/internal/usecase/health"
	prefsuc "github.com/lotscout/lotscout/internal/usecase/prefs"
	scoreboarduc "github.com/lotscout/lotscout/internal/usecase/scoreboard"
	searchuc "github.com/lotscout/lotscout/internal/usecase/search"
)

type mockCatalog struct {
	searchFn        func(ctx context.Context, filters filter.Expression, exclude []string, substring string, limit int) ([]domain.Match, error)
	searchSimilarFn func(ctx context.Context, vector []float32, threshold float64, limit int, exclude []string) ([]domain.Match, error)
	listMissingFn   func(ctx context.Context, limit int) ([]domain.Vehicle, error)
	attachFn        func(ctx context.Context, id string, vector []float32) error
}

func (m *mockCatalog) Search(
	ctx context.Context, filters filter.Expression,
	exclude []string, substring string, limit int,
) ([]domain.Match, error) {
	if m.searchFn == nil {
		return nil, nil
	}
	return m.searchFn(ctx, filters, exclude, substring, limit)
}

func (m *mockCatalog) SearchSimilar(
	ctx context.Context, vector []float32, threshold float64,
	limit int, exclude []string,
) ([]domain.Match, error) {
	if m.searchSimilarFn == nil {
		return nil, nil
	}
	return m.searchSimilarFn(ctx, vector, threshold, limit, exclude)
}

func (m *mockCatalog) ListMissingEmbeddings(ctx context.Context, limit int) ([]domain.Vehicle, error) {
	if m.listMissingFn == nil {
		return nil, nil
	}
	return m.listMissingFn(ctx, limit)
}

func (m *mockCatalog) AttachEmbedding(ctx context.Context, id string, vector []float32) error {
	if m.attachFn == nil {
		return nil
	}
	return m.attachFn(ctx, id, vector)
}

type mockEmbedder struct {
	embedFn func(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if m.embedFn == nil {
		return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}}, nil
	}
	return m.embedFn(ctx, text)
}

type mockPrefs struct {
	addFavoriteFn    func(ctx context.Context, userID, vehicleID string) error
	removeFavoriteFn func(ctx context.Context, userID, vehicleID string) error
	isFavoriteFn     func(ctx context.Context, userID, vehicleID string) (bool, error)
	favoriteIDsFn    func(ctx context.Context, userID string) ([]string, error)
	hideFn           func(ctx context.Context, h domain.HiddenVehicle) error
	hiddenIDsFn      func(ctx context.Context, userID string) ([]string, error)
	hiddenRecordFn   func(ctx context.Context, userID, vehicleID string) (domain.HiddenVehicle, error)
}

func (m *mockPrefs) AddFavorite(ctx context.Context, userID, vehicleID string) error {
	if m.addFavoriteFn == nil {
		return nil
	}
	return m.addFavoriteFn(ctx, userID, vehicleID)
}

func (m *mockPrefs) RemoveFavorite(ctx context.Context, userID, vehicleID string) error {
	if m.removeFavoriteFn == nil {
		return nil
	}
	return m.removeFavoriteFn(ctx, userID, vehicleID)
}

func (m *mockPrefs) IsFavorite(ctx context.Context, userID, vehicleID string) (bool, error) {
	if m.isFavoriteFn == nil {
		return false, nil
	}
	return m.isFavoriteFn(ctx, userID, vehicleID)
}

func (m *mockPrefs) FavoriteIDs(ctx context.Context, userID string) ([]string, error) {
	if m.favoriteIDsFn == nil {
		return nil, nil
	}
	return m.favoriteIDsFn(ctx, userID)
}

func (m *mockPrefs) Hide(ctx context.Context, h domain.HiddenVehicle) error {
	if m.hideFn == nil {
		return nil
	}
	return m.hideFn(ctx, h)
}

func (m *mockPrefs) HiddenIDs(ctx context.Context, userID string) ([]string, error) {
	if m.hiddenIDsFn == nil {
		return nil, nil
	}
	return m.hiddenIDsFn(ctx, userID)
}

func (m *mockPrefs) HiddenRecord(ctx context.Context, userID, vehicleID string) (domain.HiddenVehicle, error) {
	if m.hiddenRecordFn == nil {
		return domain.HiddenVehicle{}, domain.ErrNotFound
	}
	return m.hiddenRecordFn(ctx, userID, vehicleID)
}

type mockVehicles struct {
	getFn func(ctx context.Context, id string) (domain.Vehicle, error)
}

func (m *mockVehicles) Get(ctx context.Context, id string) (domain.Vehicle, error) {
	if m.getFn == nil {
		return domain.Vehicle{}, domain.ErrVehicleNotFound
	}
	return m.getFn(ctx, id)
}

type mockInterests struct {
	createFn     func(ctx context.Context, in domain.Interest) (domain.Interest, error)
	deleteFn     func(ctx context.Context, userID, id string) error
	listActiveFn func(ctx context.Context, userID string) ([]domain.Interest, error)
}

func (m *mockInterests) Create(ctx context.Context, in domain.Interest) (domain.Interest, error) {
	if m.createFn == nil {
		in.ID = "int-1"
		return in, nil
	}
	return m.createFn(ctx, in)
}

func (m *mockInterests) Delete(ctx context.Context, userID, id string) error {
	if m.deleteFn == nil {
		return nil
	}
	return m.deleteFn(ctx, userID, id)
}

func (m *mockInterests) ListActive(ctx context.Context, userID string) ([]domain.Interest, error) {
	if m.listActiveFn == nil {
		return nil, nil
	}
	return m.listActiveFn(ctx, userID)
}

type mockIngestor struct {
	upsertFn func(ctx context.Context, v *domain.Vehicle) (string, bool, error)
}

func (m *mockIngestor) Upsert(ctx context.Context, v *domain.Vehicle) (string, bool, error) {
	if m.upsertFn == nil {
		return "veh-1", true, nil
	}
	return m.upsertFn(ctx, v)
}

type mockPinger struct {
	pingFn func(ctx context.Context) error
}

func (m *mockPinger) Ping(ctx context.Context) error {
	if m.pingFn == nil {
		return nil
	}
	return m.pingFn(ctx)
}

// testMocks bundles the storage-level doubles behind a test server.
type testMocks struct {
	catalog   *mockCatalog
	embed     *mockEmbedder
	prefs     *mockPrefs
	vehicles  *mockVehicles
	interests *mockInterests
	ingestor  *mockIngestor
	pinger    *mockPinger
}

// newTestServer wires real usecase services over the mocks, so handler tests
// exercise the same composition the binary runs.
func newTestServer() (http.Handler, *testMocks) {
	m := &testMocks{
		catalog:   &mockCatalog{},
		embed:     &mockEmbedder{},
		prefs:     &mockPrefs{},
		vehicles:  &mockVehicles{},
		interests: &mockInterests{},
		ingestor:  &mockIngestor{},
		pinger:    &mockPinger{},
	}

	prefsSvc := prefsuc.New(m.prefs, m.vehicles)
	searchSvc := searchuc.New(m.catalog, m.embed, prefsSvc, 0.1, 20)
	scoreboardSvc := scoreboarduc.New(m.interests, searchSvc, prefsSvc, time.Second, 20)
	embedjobSvc := embedjobuc.New(m.catalog, m.embed, 20, 0)
	healthSvc := healthuc.New(m.pinger, nil)

	srv := NewServer(searchSvc, scoreboardSvc, prefsSvc, embedjobSvc, healthSvc, m.ingestor, zap.NewNop())

	r := chirouter.NewRouter()
	srv.Routes(r)
	return r, m
}

func intPtr(v int) *int { return &v }

func testMatch(id string, score float64) domain.Match {
	return domain.Match{
		Vehicle: domain.Vehicle{
			ID:             id,
			Title:          "2019 Honda Civic EX",
			Price:          18500,
			Mileage:        "42k miles",
			MarketplaceURL: "https://marketplace.example.com/item/" + id,
			Source:         "facebook",
			Make:           "Honda",
			Model:          "Civic",
			BodyType:       "sedan",
			Year:           intPtr(2019),
			PostedAt:       time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC),
		},
		Score: score,
	}
}
