// Package userprefs persists per-user vehicle preferences: the favorites set
// and the append-only hidden set.
package userprefs

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/lotscout/lotscout/internal/domain"
)

// store is the consumer interface for user preferences (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	SAdd(ctx context.Context, key string, members ...string) error
	SRem(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
	SIsMember(ctx context.Context, key, member string) (bool, error)
}

// Repo implements the user preference store contract.
type Repo struct {
	store store
}

// New creates a user preference repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// AddFavorite marks a vehicle as a favorite.
func (r *Repo) AddFavorite(ctx context.Context, userID, vehicleID string) error {
	if err := r.store.SAdd(ctx, favoritesKey(userID), vehicleID); err != nil {
		return fmt.Errorf("sadd favorite %s: %w", vehicleID, err)
	}
	return nil
}

// RemoveFavorite unmarks a favorite. Removing an absent member is a no-op.
func (r *Repo) RemoveFavorite(ctx context.Context, userID, vehicleID string) error {
	if err := r.store.SRem(ctx, favoritesKey(userID), vehicleID); err != nil {
		return fmt.Errorf("srem favorite %s: %w", vehicleID, err)
	}
	return nil
}

// IsFavorite reports whether a vehicle is in the user's favorites set.
func (r *Repo) IsFavorite(ctx context.Context, userID, vehicleID string) (bool, error) {
	ok, err := r.store.SIsMember(ctx, favoritesKey(userID), vehicleID)
	if err != nil {
		return false, fmt.Errorf("sismember favorite %s: %w", vehicleID, err)
	}
	return ok, nil
}

// FavoriteIDs returns the user's favorite vehicle IDs. Order is unspecified.
func (r *Repo) FavoriteIDs(ctx context.Context, userID string) ([]string, error) {
	ids, err := r.store.SMembers(ctx, favoritesKey(userID))
	if err != nil {
		return nil, fmt.Errorf("smembers favorites for %s: %w", userID, err)
	}
	return ids, nil
}

// Hide adds a vehicle to the user's hidden set and records why. Hiding is
// append-only: there is no unhide, and hiding twice keeps the first record's
// membership while updating the reason.
func (r *Repo) Hide(ctx context.Context, h domain.HiddenVehicle) error {
	if err := r.store.SAdd(ctx, hiddenKey(h.UserID), h.VehicleID); err != nil {
		return fmt.Errorf("sadd hidden %s: %w", h.VehicleID, err)
	}

	fields := map[string]string{
		reasonFieldReason:   h.Reason,
		reasonFieldHiddenAt: strconv.FormatInt(h.HiddenAt.UnixMilli(), 10),
	}
	if err := r.store.HSet(ctx, hiddenReasonKey(h.UserID, h.VehicleID), fields); err != nil {
		return fmt.Errorf("hset hidden reason %s: %w", h.VehicleID, err)
	}
	return nil
}

// HiddenIDs returns the user's hidden vehicle IDs. Order is unspecified.
func (r *Repo) HiddenIDs(ctx context.Context, userID string) ([]string, error) {
	ids, err := r.store.SMembers(ctx, hiddenKey(userID))
	if err != nil {
		return nil, fmt.Errorf("smembers hidden for %s: %w", userID, err)
	}
	return ids, nil
}

// HiddenRecord returns the stored hide record for a vehicle, or
// domain.ErrNotFound when the vehicle was never hidden.
func (r *Repo) HiddenRecord(ctx context.Context, userID, vehicleID string) (domain.HiddenVehicle, error) {
	m, err := r.store.HGetAll(ctx, hiddenReasonKey(userID, vehicleID))
	if err != nil {
		return domain.HiddenVehicle{}, fmt.Errorf("hgetall hidden reason %s: %w", vehicleID, err)
	}
	if len(m) == 0 {
		return domain.HiddenVehicle{}, domain.ErrNotFound
	}

	h := domain.HiddenVehicle{
		UserID:    userID,
		VehicleID: vehicleID,
		Reason:    m[reasonFieldReason],
	}
	if raw := m[reasonFieldHiddenAt]; raw != "" {
		if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
			h.HiddenAt = time.UnixMilli(ms).UTC()
		}
	}
	return h, nil
}

const (
	reasonFieldReason   = "reason"
	reasonFieldHiddenAt = "hidden_at"
)

// Key patterns: lotscout:user:{id}:favorites, lotscout:user:{id}:hidden,
// lotscout:user:{id}:hidden:{vehicle}

func favoritesKey(userID string) string {
	return fmt.Sprintf("%suser:%s:favorites", domain.KeyPrefix, userID)
}

func hiddenKey(userID string) string {
	return fmt.Sprintf("%suser:%s:hidden", domain.KeyPrefix, userID)
}

func hiddenReasonKey(userID, vehicleID string) string {
	return fmt.Sprintf("%suser:%s:hidden:%s", domain.KeyPrefix, userID, vehicleID)
}
