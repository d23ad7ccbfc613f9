package domain

import (
	"fmt"
	"strings"
	"time"
)

// EmbeddingDimensions is the catalog-wide embedding vector size. Vectors are
// immutable once attached; every vehicle either has exactly this many floats or
// none at all.
const EmbeddingDimensions = 768

// Vehicle is a catalog listing. Rows are created and updated by the external
// ingestion process (upsert keyed on MarketplaceURL); the retrieval core only
// reads them, except for attaching an embedding.
type Vehicle struct {
	ID             string
	Title          string
	Price          float64
	Mileage        string // display string, e.g. "42,000 miles" or "N/A"
	Location       string
	ImageURL       string
	MarketplaceURL string
	Source         string
	Make           string
	Model          string
	BodyType       string
	Year           *int
	PostedAt       time.Time
	Embedding      []float32
}

// HasEmbedding reports whether a vector is attached, which gates participation
// in similarity ranking.
func (v *Vehicle) HasEmbedding() bool {
	return len(v.Embedding) > 0
}

// ListingText renders the description sent to the embedding provider. The
// template matches what the ingestion side historically embedded, so query and
// document vectors stay in the same space.
func (v *Vehicle) ListingText() string {
	year := ""
	if v.Year != nil {
		year = fmt.Sprintf("%d ", *v.Year)
	}
	mileage := v.Mileage
	if mileage == "" {
		mileage = "N/A"
	}
	return fmt.Sprintf("For Sale: %s%s %s %s. Price: $%.0f. Mileage: %s.",
		year, v.Make, v.Model, strings.TrimSpace(v.Title), v.Price, mileage)
}

// Match is a vehicle paired with its retrieval score. Structured results carry
// Score 0 because recency ordering applies instead.
type Match struct {
	Vehicle Vehicle
	Score   float64
}
