// Package search routes retrieval requests between the vector similarity
// matcher and the structured filter executor.
package search

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/lotscout/lotscout/internal/domain"
	"github.com/lotscout/lotscout/internal/domain/criteria"
	"github.com/lotscout/lotscout/internal/domain/filter"
	"github.com/lotscout/lotscout/internal/logger"
	"github.com/lotscout/lotscout/internal/metrics"
)

// Path identifies which executor produced an outcome.
type Path string

// Retrieval paths.
const (
	PathSemantic   Path = "semantic"
	PathStructured Path = "structured"
	PathFallback   Path = "fallback"
)

// Request is a retrieval request. Query selects the semantic path when
// non-empty; Criteria always feeds the structured executor.
type Request struct {
	UserID   string
	Query    string
	Criteria criteria.Raw
	Limit    int
}

// Outcome is a retrieval result with the path that produced it.
type Outcome struct {
	Matches []domain.Match
	Path    Path
}

// Service routes requests between the two executors.
type Service struct {
	catalog    Catalog
	embed      Embedder
	exclusions ExclusionLister
	threshold  float64
	limit      int
}

// New creates a search service. threshold is the minimum similarity for
// semantic matches; limit is the default result cap.
func New(catalog Catalog, embed Embedder, exclusions ExclusionLister, threshold float64, limit int) *Service {
	return &Service{
		catalog:    catalog,
		embed:      embed,
		exclusions: exclusions,
		threshold:  threshold,
		limit:      limit,
	}
}

// Search executes a retrieval request. A non-empty query selects the vector
// similarity matcher; criteria-only requests go straight to the structured
// executor. Semantic failures of any kind fall back to the structured
// executor exactly once, reusing the query text as a substring constraint.
//
// Semantic results deliberately skip the structured criteria: the vector
// space already encodes make, model, and price signals, and double-filtering
// starves recall on small catalogs.
func (s *Service) Search(ctx context.Context, req Request) (Outcome, error) {
	log := logger.FromContext(ctx)

	limit := req.Limit
	if limit <= 0 {
		limit = s.limit
	}

	exclude, err := s.exclusions.Exclusions(ctx, req.UserID)
	if err != nil {
		s.countRequest(PathStructured, "error")
		return Outcome{}, fmt.Errorf("resolve exclusions: %w: %w", domain.ErrRetrievalFailed, err)
	}

	if req.Query != "" {
		matches, semErr := s.searchSemantic(ctx, req.Query, limit, exclude)
		if semErr == nil {
			s.countRequest(PathSemantic, "ok")
			return Outcome{Matches: matches, Path: PathSemantic}, nil
		}

		reason := "matcher_unavailable"
		if errors.Is(semErr, domain.ErrEmbeddingUnavailable) {
			reason = "embedding_unavailable"
		}
		metrics.SearchFallbacksTotal.WithLabelValues(reason).Inc()
		log.Warn("Semantic retrieval failed, falling back to structured",
			zap.String("reason", reason),
			zap.Error(semErr),
		)

		matches, err = s.searchStructured(ctx, req, limit, exclude)
		if err != nil {
			s.countRequest(PathFallback, "error")
			return Outcome{}, err
		}
		s.countRequest(PathFallback, "ok")
		return Outcome{Matches: matches, Path: PathFallback}, nil
	}

	matches, err := s.searchStructured(ctx, req, limit, exclude)
	if err != nil {
		s.countRequest(PathStructured, "error")
		return Outcome{}, err
	}
	s.countRequest(PathStructured, "ok")
	return Outcome{Matches: matches, Path: PathStructured}, nil
}

// SearchProfile runs the structured executor for a saved interest profile
// with pre-resolved exclusions. The scoreboard aggregator resolves exclusions
// once and reuses them across every profile.
func (s *Service) SearchProfile(
	ctx context.Context, crit criteria.Raw, exclude []string, limit int,
) ([]domain.Match, error) {
	if limit <= 0 {
		limit = s.limit
	}

	matches, err := s.searchStructured(ctx, Request{Criteria: crit}, limit, exclude)
	if err != nil {
		s.countRequest(PathStructured, "error")
		return nil, err
	}
	s.countRequest(PathStructured, "ok")
	return matches, nil
}

func (s *Service) searchSemantic(
	ctx context.Context, query string, limit int, exclude []string,
) ([]domain.Match, error) {
	embResult, err := s.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	matches, err := s.catalog.SearchSimilar(ctx, embResult.Embedding, s.threshold, limit, exclude)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	return dropExcluded(matches, exclude), nil
}

func (s *Service) searchStructured(
	ctx context.Context, req Request, limit int, exclude []string,
) ([]domain.Match, error) {
	expr := criteria.Normalize(req.Criteria)

	matches, err := s.catalog.Search(ctx, expr, exclude, req.Query, limit)
	if err != nil {
		return nil, fmt.Errorf("structured search: %w: %w", domain.ErrRetrievalFailed, err)
	}
	return dropExcluded(matches, exclude), nil
}

// dropExcluded re-checks results against the full exclusion set. The
// query-side must-not group caps at filter.MaxExclusions, so for oversized
// hidden sets the IDs past the cap are only enforced here.
func dropExcluded(matches []domain.Match, exclude []string) []domain.Match {
	if len(matches) == 0 || len(exclude) <= filter.MaxExclusions {
		return matches
	}

	drop := make(map[string]struct{}, len(exclude))
	for _, id := range exclude {
		drop[id] = struct{}{}
	}

	kept := matches[:0]
	for _, m := range matches {
		if _, ok := drop[m.Vehicle.ID]; !ok {
			kept = append(kept, m)
		}
	}
	return kept
}

func (s *Service) countRequest(path Path, status string) {
	metrics.SearchRequestsTotal.WithLabelValues(string(path), status).Inc()
}
