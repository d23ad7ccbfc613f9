package domain

import (
	"time"

	"github.com/lotscout/lotscout/internal/domain/criteria"
)

// Interest is a saved watch profile: a named set of structured filter criteria
// owned by exactly one user. Criteria are immutable once created; users create
// and delete profiles, never update them.
type Interest struct {
	ID        string
	UserID    string
	Name      string
	IsActive  bool
	Criteria  criteria.Raw
	CreatedAt time.Time
}

// HiddenVehicle is a (user, vehicle) exclusion pair. Append-only from the
// core's perspective.
type HiddenVehicle struct {
	UserID    string
	VehicleID string
	Reason    string
	HiddenAt  time.Time
}
