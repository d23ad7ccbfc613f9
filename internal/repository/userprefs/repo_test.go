package userprefs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lotscout/lotscout/internal/domain"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hSetFn      func(ctx context.Context, key string, fields map[string]string) error
	hGetAllFn   func(ctx context.Context, key string) (map[string]string, error)
	sAddFn      func(ctx context.Context, key string, members ...string) error
	sRemFn      func(ctx context.Context, key string, members ...string) error
	sMembersFn  func(ctx context.Context, key string) ([]string, error)
	sIsMemberFn func(ctx context.Context, key, member string) (bool, error)
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

func (m *mockStore) SAdd(ctx context.Context, key string, members ...string) error {
	if m.sAddFn != nil {
		return m.sAddFn(ctx, key, members...)
	}
	return nil
}

func (m *mockStore) SRem(ctx context.Context, key string, members ...string) error {
	if m.sRemFn != nil {
		return m.sRemFn(ctx, key, members...)
	}
	return nil
}

func (m *mockStore) SMembers(ctx context.Context, key string) ([]string, error) {
	if m.sMembersFn != nil {
		return m.sMembersFn(ctx, key)
	}
	return nil, nil
}

func (m *mockStore) SIsMember(ctx context.Context, key, member string) (bool, error) {
	if m.sIsMemberFn != nil {
		return m.sIsMemberFn(ctx, key, member)
	}
	return false, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms), ms
}

func TestFavorites_KeysAndMembers(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	ms.sAddFn = func(_ context.Context, key string, members ...string) error {
		if key != "lotscout:user:user-1:favorites" {
			t.Errorf("unexpected key: %s", key)
		}
		if len(members) != 1 || members[0] != "v1" {
			t.Errorf("unexpected members: %v", members)
		}
		return nil
	}
	if err := repo.AddFavorite(ctx, "user-1", "v1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ms.sRemFn = func(_ context.Context, key string, members ...string) error {
		if key != "lotscout:user:user-1:favorites" {
			t.Errorf("unexpected key: %s", key)
		}
		return nil
	}
	if err := repo.RemoveFavorite(ctx, "user-1", "v1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ms.sIsMemberFn = func(_ context.Context, _, member string) (bool, error) {
		return member == "v1", nil
	}
	ok, err := repo.IsFavorite(ctx, "user-1", "v1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected v1 to be a favorite")
	}
}

func TestFavoriteIDs(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.sMembersFn = func(_ context.Context, key string) ([]string, error) {
		if key != "lotscout:user:user-1:favorites" {
			t.Errorf("unexpected key: %s", key)
		}
		return []string{"v1", "v2"}, nil
	}

	ids, err := repo.FavoriteIDs(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 favorites, got %d", len(ids))
	}
}

func TestHide_RecordsMembershipAndReason(t *testing.T) {
	repo, ms := newTestRepo(t)

	var setKey, reasonKey string
	var reasonFields map[string]string
	ms.sAddFn = func(_ context.Context, key string, _ ...string) error {
		setKey = key
		return nil
	}
	ms.hSetFn = func(_ context.Context, key string, fields map[string]string) error {
		reasonKey = key
		reasonFields = fields
		return nil
	}

	h := domain.HiddenVehicle{
		UserID:    "user-1",
		VehicleID: "v1",
		Reason:    "not interested",
		HiddenAt:  time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC),
	}
	if err := repo.Hide(context.Background(), h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if setKey != "lotscout:user:user-1:hidden" {
		t.Fatalf("unexpected set key: %s", setKey)
	}
	if reasonKey != "lotscout:user:user-1:hidden:v1" {
		t.Fatalf("unexpected reason key: %s", reasonKey)
	}
	if reasonFields[reasonFieldReason] != "not interested" {
		t.Fatalf("unexpected reason: %s", reasonFields[reasonFieldReason])
	}
}

func TestHide_SetFailure(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.sAddFn = func(_ context.Context, _ string, _ ...string) error {
		return errors.New("connection reset")
	}

	err := repo.Hide(context.Background(), domain.HiddenVehicle{UserID: "u", VehicleID: "v"})
	if err == nil {
		t.Fatal("expected error on SAdd failure")
	}
}

func TestHiddenRecord_RoundTrip(t *testing.T) {
	repo, ms := newTestRepo(t)

	hiddenAt := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	ms.hGetAllFn = func(_ context.Context, key string) (map[string]string, error) {
		if key != "lotscout:user:user-1:hidden:v1" {
			t.Errorf("unexpected key: %s", key)
		}
		return map[string]string{
			reasonFieldReason:   "sold already",
			reasonFieldHiddenAt: "1787652000000",
		}, nil
	}

	h, err := repo.HiddenRecord(context.Background(), "user-1", "v1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Reason != "sold already" {
		t.Fatalf("unexpected reason: %s", h.Reason)
	}
	if !h.HiddenAt.Equal(hiddenAt) {
		t.Fatalf("unexpected hidden_at: %v", h.HiddenAt)
	}
}

func TestHiddenRecord_NotFound(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.HiddenRecord(context.Background(), "user-1", "never-hidden")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
