package scoreboard

import (
	"context"

	"github.com/lotscout/lotscout/internal/domain"
	"github.com/lotscout/lotscout/internal/domain/criteria"
)

// Interests defines the storage contract for interest profiles.
type Interests interface {
	Create(ctx context.Context, in domain.Interest) (domain.Interest, error)
	Delete(ctx context.Context, userID, id string) error
	ListActive(ctx context.Context, userID string) ([]domain.Interest, error)
}

// ProfileSearcher runs the structured executor for one profile's criteria.
type ProfileSearcher interface {
	SearchProfile(ctx context.Context, crit criteria.Raw, exclude []string, limit int) ([]domain.Match, error)
}

// ExclusionLister resolves the vehicle IDs a user must never see in results.
type ExclusionLister interface {
	Exclusions(ctx context.Context, userID string) ([]string, error)
}
