package db

import "github.com/lotscout/lotscout/internal/domain/filter"

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	Filters      filter.Expression
	Vector       []float32
	K            int
	ReturnFields []string
}

// StructuredQuery is the input for an exact/range/substring search.
type StructuredQuery struct {
	IndexName    string
	Filters      filter.Expression
	// Substring is matched case-insensitively across the index's TEXT fields.
	Substring    string
	TextFields   []string
	SortBy       string // NUMERIC field, descending
	Limit        int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
