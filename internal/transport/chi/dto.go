package chi

import (
	"time"

	"github.com/lotscout/lotscout/internal/domain"
	"github.com/lotscout/lotscout/internal/domain/criteria"
)

// Error codes returned in ErrorResponse.Code.
const (
	codeBadRequest           = "bad_request"
	codeValidationFailed     = "validation_failed"
	codeUnauthorized         = "unauthorized"
	codeVehicleNotFound      = "vehicle_not_found"
	codeInterestNotFound     = "interest_not_found"
	codeNotFound             = "not_found"
	codeVectorDimMismatch    = "vector_dim_mismatch"
	codeEmbeddingUnavailable = "embedding_unavailable"
	codeRetrievalFailed      = "retrieval_failed"
	codeStoreUnavailable     = "store_unavailable"
	codeInternalError        = "internal_error"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// VehicleResponse is a catalog row in JSON form.
type VehicleResponse struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Price          float64    `json:"price"`
	Mileage        string     `json:"mileage,omitempty"`
	Location       string     `json:"location,omitempty"`
	ImageURL       string     `json:"image_url,omitempty"`
	MarketplaceURL string     `json:"marketplace_url"`
	Source         string     `json:"source,omitempty"`
	Make           string     `json:"make,omitempty"`
	Model          string     `json:"model,omitempty"`
	BodyType       string     `json:"body_type,omitempty"`
	Year           *int       `json:"year,omitempty"`
	PostedAt       *time.Time `json:"posted_at,omitempty"`
}

// MatchResponse pairs a vehicle with its retrieval score. Score is omitted
// for structured results, which are recency-ordered instead.
type MatchResponse struct {
	Vehicle VehicleResponse `json:"vehicle"`
	Score   *float64        `json:"score,omitempty"`
}

// SearchRequest is the retrieval request body.
type SearchRequest struct {
	UserID   string       `json:"user_id"`
	Query    string       `json:"query,omitempty"`
	Criteria criteria.Raw `json:"criteria,omitempty"`
	Limit    int          `json:"limit,omitempty"`
}

// SearchResponse carries matches plus the executor path that produced them.
type SearchResponse struct {
	Items []MatchResponse `json:"items"`
	Path  string          `json:"path"`
	Total int             `json:"total"`
}

// IngestVehicleRequest is the admin ingest body for one listing.
type IngestVehicleRequest struct {
	Title          string  `json:"title"`
	Price          float64 `json:"price"`
	Mileage        string  `json:"mileage,omitempty"`
	Location       string  `json:"location,omitempty"`
	ImageURL       string  `json:"image_url,omitempty"`
	MarketplaceURL string  `json:"marketplace_url"`
	Source         string  `json:"source,omitempty"`
	Make           string  `json:"make,omitempty"`
	Model          string  `json:"model,omitempty"`
	BodyType       string  `json:"body_type,omitempty"`
	Year           *int    `json:"year,omitempty"`
	PostedAt       string  `json:"posted_at,omitempty"` // RFC 3339
}

// IngestVehicleResponse reports the stored row.
type IngestVehicleResponse struct {
	ID      string `json:"id"`
	Created bool   `json:"created"`
}

// InterestRequest creates an interest profile.
type InterestRequest struct {
	UserID   string       `json:"user_id"`
	Name     string       `json:"name"`
	Criteria criteria.Raw `json:"criteria,omitempty"`
}

// InterestResponse is a saved interest profile.
type InterestResponse struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Criteria  criteria.Raw `json:"criteria,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// ToggleFavoriteRequest flips a vehicle's favorite state.
type ToggleFavoriteRequest struct {
	UserID    string `json:"user_id"`
	VehicleID string `json:"vehicle_id"`
}

// ToggleFavoriteResponse reports the new favorite state.
type ToggleFavoriteResponse struct {
	VehicleID string `json:"vehicle_id"`
	Favorite  bool   `json:"favorite"`
}

// HideVehicleRequest hides a vehicle from a user's results.
type HideVehicleRequest struct {
	UserID string `json:"user_id"`
	Reason string `json:"reason,omitempty"`
}

// EmbeddingBatchResponse summarizes one backfill run.
type EmbeddingBatchResponse struct {
	Embedded int `json:"embedded"`
	Failed   int `json:"failed"`
}

// HealthResponse is the health report body.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func vehicleToDTO(v *domain.Vehicle) VehicleResponse {
	resp := VehicleResponse{
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
	}
	if !v.PostedAt.IsZero() {
		posted := v.PostedAt
		resp.PostedAt = &posted
	}
	return resp
}

func matchToDTO(m *domain.Match) MatchResponse {
	resp := MatchResponse{Vehicle: vehicleToDTO(&m.Vehicle)}
	if m.Score > 0 {
		score := m.Score
		resp.Score = &score
	}
	return resp
}

func matchesToDTO(matches []domain.Match) []MatchResponse {
	items := make([]MatchResponse, len(matches))
	for i := range matches {
		items[i] = matchToDTO(&matches[i])
	}
	return items
}

func interestToDTO(in *domain.Interest) InterestResponse {
	return InterestResponse{
		ID:        in.ID,
		Name:      in.Name,
		Criteria:  in.Criteria,
		CreatedAt: in.CreatedAt,
	}
}
