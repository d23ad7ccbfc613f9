package interest

import (
	"context"
	"testing"
	"time"

	"github.com/lotscout/lotscout/internal/domain"
	"github.com/lotscout/lotscout/internal/domain/criteria"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hSetFn         func(ctx context.Context, key string, fields map[string]string) error
	hGetAllFn      func(ctx context.Context, key string) (map[string]string, error)
	hGetAllMultiFn func(ctx context.Context, keys []string) ([]map[string]string, error)
	delFn          func(ctx context.Context, key string) error
	sAddFn         func(ctx context.Context, key string, members ...string) error
	sRemFn         func(ctx context.Context, key string, members ...string) error
	sMembersFn     func(ctx context.Context, key string) ([]string, error)
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

func (m *mockStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if m.hGetAllMultiFn != nil {
		return m.hGetAllMultiFn(ctx, keys)
	}
	return make([]map[string]string, len(keys)), nil
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
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

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms), ms
}

func testInterest() domain.Interest {
	return domain.Interest{
		UserID:   "user-1",
		Name:     "Daily Driver",
		IsActive: true,
		Criteria: criteria.Raw{
			"make":      "Honda",
			"model":     "Civic",
			"max_price": float64(20000),
		},
		CreatedAt: time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC),
	}
}

func testInterestHash(t *testing.T, in domain.Interest) map[string]string {
	t.Helper()
	m, err := interestToHash(in)
	if err != nil {
		t.Fatalf("interestToHash: %v", err)
	}
	return m
}
