// Package scoreboard aggregates per-interest match lists for a user's saved
// profiles.
package scoreboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lotscout/lotscout/internal/domain"
	"github.com/lotscout/lotscout/internal/logger"
	"github.com/lotscout/lotscout/internal/metrics"
)

// Service builds scoreboards and manages interest profiles.
type Service struct {
	interests      Interests
	searcher       ProfileSearcher
	exclusions     ExclusionLister
	profileTimeout time.Duration
	perProfileCap  int
}

// New creates a scoreboard service. profileTimeout bounds each profile's
// retrieval; perProfileCap caps each profile's match list.
func New(
	interests Interests, searcher ProfileSearcher, exclusions ExclusionLister,
	profileTimeout time.Duration, perProfileCap int,
) *Service {
	return &Service{
		interests:      interests,
		searcher:       searcher,
		exclusions:     exclusions,
		profileTimeout: profileTimeout,
		perProfileCap:  perProfileCap,
	}
}

// Build assembles the scoreboard: one match list per active interest profile,
// keyed by profile name. Profiles and exclusions are fetched concurrently and
// both must resolve before any profile search runs, so every list honors the
// hidden set. Each profile's retrieval runs concurrently under its own
// timeout; a failed profile contributes an empty list rather than failing the
// whole scoreboard. When two profiles share a name, the later-created one
// wins the key.
func (s *Service) Build(ctx context.Context, userID string) (map[string][]domain.Match, error) {
	log := logger.FromContext(ctx)

	var (
		wg       sync.WaitGroup
		profiles []domain.Interest
		exclude  []string
		listErr  error
		exclErr  error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		profiles, listErr = s.interests.ListActive(ctx, userID)
	}()
	go func() {
		defer wg.Done()
		exclude, exclErr = s.exclusions.Exclusions(ctx, userID)
	}()
	wg.Wait()

	if listErr != nil {
		return nil, fmt.Errorf("list interests: %w", listErr)
	}
	if exclErr != nil {
		return nil, fmt.Errorf("resolve exclusions: %w", exclErr)
	}

	results := make([][]domain.Match, len(profiles))

	wg.Add(len(profiles))
	for i, profile := range profiles {
		go func(i int, profile domain.Interest) {
			defer wg.Done()

			profileCtx, cancel := context.WithTimeout(ctx, s.profileTimeout)
			defer cancel()

			matches, err := s.searcher.SearchProfile(profileCtx, profile.Criteria, exclude, s.perProfileCap)
			if err != nil {
				metrics.ScoreboardProfileFailures.Inc()
				log.Warn("Interest profile retrieval failed",
					zap.String("interest_id", profile.ID),
					zap.String("interest_name", profile.Name),
					zap.Error(err),
				)
				matches = []domain.Match{}
			}
			if matches == nil {
				matches = []domain.Match{}
			}
			results[i] = matches
		}(i, profile)
	}
	wg.Wait()

	// profiles arrive oldest first, so a later duplicate name overwrites.
	board := make(map[string][]domain.Match, len(profiles))
	for i, profile := range profiles {
		board[profile.Name] = results[i]
	}
	return board, nil
}

// CreateInterest saves a new interest profile.
func (s *Service) CreateInterest(ctx context.Context, in domain.Interest) (domain.Interest, error) {
	in.IsActive = true
	created, err := s.interests.Create(ctx, in)
	if err != nil {
		return domain.Interest{}, fmt.Errorf("create interest: %w", err)
	}
	return created, nil
}

// DeleteInterest removes one of the user's interest profiles.
func (s *Service) DeleteInterest(ctx context.Context, userID, id string) error {
	if err := s.interests.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("delete interest: %w", err)
	}
	return nil
}

// ListInterests returns the user's active interest profiles, oldest first.
func (s *Service) ListInterests(ctx context.Context, userID string) ([]domain.Interest, error) {
	profiles, err := s.interests.ListActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list interests: %w", err)
	}
	return profiles, nil
}
