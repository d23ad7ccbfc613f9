package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrVehicleNotFound signals a missing catalog entry.
	ErrVehicleNotFound = errors.New("vehicle not found")
	// ErrInterestNotFound signals a missing interest profile.
	ErrInterestNotFound = errors.New("interest not found")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")

	// ErrEmbeddingUnavailable signals that the embedding provider call failed.
	// Callers fall back to the structured path; they must not retry in a loop.
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")
	// ErrMatcherUnavailable signals that the store cannot serve similarity queries.
	// Distinct from zero matches: the capability is absent, fallback applies.
	ErrMatcherUnavailable = errors.New("similarity matcher unavailable")
	// ErrCatalogUnavailable signals that a structured catalog query failed.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	// ErrRetrievalFailed signals that both retrieval paths failed. Surfaced to the
	// caller with a generic message.
	ErrRetrievalFailed = errors.New("retrieval failed")
)
