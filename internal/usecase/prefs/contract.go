package prefs

import (
	"context"

	"github.com/lotscout/lotscout/internal/domain"
)

// Preferences defines the storage contract for user preference sets.
type Preferences interface {
	AddFavorite(ctx context.Context, userID, vehicleID string) error
	RemoveFavorite(ctx context.Context, userID, vehicleID string) error
	IsFavorite(ctx context.Context, userID, vehicleID string) (bool, error)
	FavoriteIDs(ctx context.Context, userID string) ([]string, error)
	Hide(ctx context.Context, h domain.HiddenVehicle) error
	HiddenIDs(ctx context.Context, userID string) ([]string, error)
	HiddenRecord(ctx context.Context, userID, vehicleID string) (domain.HiddenVehicle, error)
}

// VehicleReader reads catalog rows for favorite listings.
type VehicleReader interface {
	Get(ctx context.Context, id string) (domain.Vehicle, error)
}
