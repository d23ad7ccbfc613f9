// Package prefs implements favorite toggling and vehicle hiding.
package prefs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lotscout/lotscout/internal/domain"
	"github.com/lotscout/lotscout/internal/logger"
)

// Service handles user preference operations.
type Service struct {
	prefs    Preferences
	vehicles VehicleReader
	now      func() time.Time
}

// New creates a preference service.
func New(prefs Preferences, vehicles VehicleReader) *Service {
	return &Service{prefs: prefs, vehicles: vehicles, now: time.Now}
}

// ToggleFavorite flips a vehicle's favorite state and returns the new state:
// true when the vehicle is now a favorite.
func (s *Service) ToggleFavorite(ctx context.Context, userID, vehicleID string) (bool, error) {
	if _, err := s.vehicles.Get(ctx, vehicleID); err != nil {
		return false, fmt.Errorf("load vehicle %s: %w", vehicleID, err)
	}

	isFav, err := s.prefs.IsFavorite(ctx, userID, vehicleID)
	if err != nil {
		return false, fmt.Errorf("check favorite: %w", err)
	}

	if isFav {
		if err := s.prefs.RemoveFavorite(ctx, userID, vehicleID); err != nil {
			return false, fmt.Errorf("remove favorite: %w", err)
		}
		return false, nil
	}

	if err := s.prefs.AddFavorite(ctx, userID, vehicleID); err != nil {
		return false, fmt.Errorf("add favorite: %w", err)
	}
	return true, nil
}

// HideVehicle adds a vehicle to the user's hidden set. Hiding is permanent;
// repeated hides update the reason but keep the original hidden_at.
func (s *Service) HideVehicle(ctx context.Context, userID, vehicleID, reason string) error {
	if _, err := s.vehicles.Get(ctx, vehicleID); err != nil {
		return fmt.Errorf("load vehicle %s: %w", vehicleID, err)
	}

	h := domain.HiddenVehicle{
		UserID:    userID,
		VehicleID: vehicleID,
		Reason:    reason,
		HiddenAt:  s.now().UTC(),
	}
	prev, err := s.prefs.HiddenRecord(ctx, userID, vehicleID)
	switch {
	case err == nil && !prev.HiddenAt.IsZero():
		h.HiddenAt = prev.HiddenAt
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("load hide record %s: %w", vehicleID, err)
	}

	if err := s.prefs.Hide(ctx, h); err != nil {
		return fmt.Errorf("hide vehicle %s: %w", vehicleID, err)
	}
	return nil
}

// ListFavorites returns the user's favorite vehicles. Rows that vanished from
// the catalog since being favorited are skipped, not errors.
func (s *Service) ListFavorites(ctx context.Context, userID string) ([]domain.Vehicle, error) {
	log := logger.FromContext(ctx)

	ids, err := s.prefs.FavoriteIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorite ids: %w", err)
	}

	vehicles := make([]domain.Vehicle, 0, len(ids))
	for _, id := range ids {
		v, err := s.vehicles.Get(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrVehicleNotFound) {
				log.Debug("Favorite vehicle no longer in catalog", zap.String("vehicle_id", id))
				continue
			}
			return nil, fmt.Errorf("load favorite %s: %w", id, err)
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, nil
}

// Exclusions returns the vehicle IDs to remove from a user's results: the
// hidden set, and only the hidden set. Favorites stay in results (the
// favorites list is served separately so clients can mark cards). An
// anonymous user has nothing to exclude.
func (s *Service) Exclusions(ctx context.Context, userID string) ([]string, error) {
	if userID == "" {
		return nil, nil
	}

	ids, err := s.prefs.HiddenIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list hidden ids: %w", err)
	}
	return ids, nil
}
