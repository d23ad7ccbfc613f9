package lotscout

import (
	"time"

	"github.com/lotscout/lotscout/internal/domain"
)

// Criteria is a loosely-typed structured filter set, as produced by the
// query-understanding layer. Recognized keys: make, model, body_type,
// min_price, max_price, min_year, max_year, non_negotiables.
type Criteria map[string]any

// Vehicle is a catalog listing.
type Vehicle struct {
	ID             string
	Title          string
	Price          float64
	Mileage        string
	Location       string
	ImageURL       string
	MarketplaceURL string
	Source         string
	Make           string
	Model          string
	BodyType       string
	Year           *int
	PostedAt       time.Time
}

// Match pairs a vehicle with its retrieval score. Structured results carry
// Score 0 and are recency-ordered instead.
type Match struct {
	Vehicle Vehicle
	Score   float64
}

// Interest is a saved watch profile.
type Interest struct {
	ID        string
	UserID    string
	Name      string
	Criteria  Criteria
	CreatedAt time.Time
}

// SearchQuery describes one retrieval request.
type SearchQuery struct {
	UserID   string
	Query    string
	Criteria Criteria
	Limit    int
}

// SearchOutcome carries matches plus the executor path that produced them:
// "semantic", "structured", or "fallback".
type SearchOutcome struct {
	Matches []Match
	Path    string
}

// BatchResult summarizes one embedding backfill run.
type BatchResult struct {
	Embedded int
	Failed   int
}

// EmbeddingResult is one embedding provider response.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

func fromDomainVehicle(v *domain.Vehicle) Vehicle {
	return Vehicle{
		ID:             v.ID,
		Title:          v.Title,
		Price:          v.Price,
		Mileage:        v.Mileage,
		Location:       v.Location,
		ImageURL:       v.ImageURL,
		MarketplaceURL: v.MarketplaceURL,
		Source:         v.Source,
		Make:           v.Make,
		Model:          v.Model,
		BodyType:       v.BodyType,
		Year:           v.Year,
		PostedAt:       v.PostedAt,
	}
}

func toDomainVehicle(v *Vehicle) domain.Vehicle {
	return domain.Vehicle{
		ID:             v.ID,
		Title:          v.Title,
		Price:          v.Price,
		Mileage:        v.Mileage,
		Location:       v.Location,
		ImageURL:       v.ImageURL,
		MarketplaceURL: v.MarketplaceURL,
		Source:         v.Source,
		Make:           v.Make,
		Model:          v.Model,
		BodyType:       v.BodyType,
		Year:           v.Year,
		PostedAt:       v.PostedAt,
	}
}

func fromDomainMatches(matches []domain.Match) []Match {
	out := make([]Match, len(matches))
	for i := range matches {
		out[i] = Match{
			Vehicle: fromDomainVehicle(&matches[i].Vehicle),
			Score:   matches[i].Score,
		}
	}
	return out
}

func fromDomainInterest(in *domain.Interest) Interest {
	return Interest{
		ID:        in.ID,
		UserID:    in.UserID,
		Name:      in.Name,
		Criteria:  Criteria(in.Criteria),
		CreatedAt: in.CreatedAt,
	}
}
