// Package interest persists saved interest profiles, keyed per user.
package interest

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/lotscout/lotscout/internal/domain"
)

// store is the consumer interface for interest profiles (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	SAdd(ctx context.Context, key string, members ...string) error
	SRem(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
}

// Repo implements the interest store contract.
type Repo struct {
	store store
}

// New creates an interest repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Create stores a new interest profile and registers it in the owner's
// profile set. A generated UUID becomes the profile ID.
func (r *Repo) Create(ctx context.Context, in domain.Interest) (domain.Interest, error) {
	if in.UserID == "" {
		return domain.Interest{}, fmt.Errorf("user id is required")
	}
	if in.Name == "" {
		return domain.Interest{}, fmt.Errorf("interest name is required")
	}

	in.ID = uuid.NewString()

	fields, err := interestToHash(in)
	if err != nil {
		return domain.Interest{}, err
	}

	key := interestKey(in.ID)
	if err := r.store.HSet(ctx, key, fields); err != nil {
		return domain.Interest{}, fmt.Errorf("hset interest %s: %w", in.ID, err)
	}
	if err := r.store.SAdd(ctx, userInterestsKey(in.UserID), in.ID); err != nil {
		// Roll back the orphaned hash so the profile set stays authoritative.
		_ = r.store.Del(ctx, key)
		return domain.Interest{}, fmt.Errorf("register interest %s: %w", in.ID, err)
	}

	return in, nil
}

// Get retrieves an interest profile by ID.
func (r *Repo) Get(ctx context.Context, id string) (domain.Interest, error) {
	m, err := r.store.HGetAll(ctx, interestKey(id))
	if err != nil {
		return domain.Interest{}, fmt.Errorf("hgetall interest %s: %w", id, err)
	}
	if len(m) == 0 {
		return domain.Interest{}, domain.ErrInterestNotFound
	}
	return interestFromHash(id, m)
}

// Delete removes an interest profile and its set registration.
func (r *Repo) Delete(ctx context.Context, userID, id string) error {
	m, err := r.store.HGetAll(ctx, interestKey(id))
	if err != nil {
		return fmt.Errorf("hgetall interest %s: %w", id, err)
	}
	if len(m) == 0 || m[fieldUserID] != userID {
		return domain.ErrInterestNotFound
	}

	if err := r.store.Del(ctx, interestKey(id)); err != nil {
		return fmt.Errorf("del interest %s: %w", id, err)
	}
	if err := r.store.SRem(ctx, userInterestsKey(userID), id); err != nil {
		return fmt.Errorf("unregister interest %s: %w", id, err)
	}
	return nil
}

// ListActive returns a user's active interest profiles in creation order,
// oldest first. Inactive profiles are skipped, not errors.
func (r *Repo) ListActive(ctx context.Context, userID string) ([]domain.Interest, error) {
	ids, err := r.store.SMembers(ctx, userInterestsKey(userID))
	if err != nil {
		return nil, fmt.Errorf("smembers interests for %s: %w", userID, err)
	}
	if len(ids) == 0 {
		return []domain.Interest{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = interestKey(id)
	}
	results, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi interests: %w", err)
	}

	interests := make([]domain.Interest, 0, len(results))
	for i, m := range results {
		if len(m) == 0 {
			continue
		}
		in, err := interestFromHash(ids[i], m)
		if err != nil {
			return nil, fmt.Errorf("parse interest %s: %w", ids[i], err)
		}
		if !in.IsActive {
			continue
		}
		interests = append(interests, in)
	}

	sort.Slice(interests, func(i, j int) bool {
		return interests[i].CreatedAt.Before(interests[j].CreatedAt)
	})

	return interests, nil
}

// Key patterns: lotscout:interest:{id}, lotscout:user:{id}:interests

func interestKey(id string) string {
	return fmt.Sprintf("%sinterest:%s", domain.KeyPrefix, id)
}

func userInterestsKey(userID string) string {
	return fmt.Sprintf("%suser:%s:interests", domain.KeyPrefix, userID)
}
