package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/user/smartlink/internal/models"
	"github.com/user/smartlink/internal/repository"
	"go.uber.org/zap"
)

// Resolve maps (slug, platform) to a destination URL and records the
// click. Three terminal outcomes:
//
//   - unknown slug                    -> ErrLinkNotFound
//   - platform absent from the record -> ErrPlatformUnavailable
//   - resolved                        -> destination URL
//
// The click increment is fire-and-forget: a tracking failure is
// logged and must never block or fail the redirect.
func (s *LinkService) Resolve(ctx context.Context, slug, platform string) (string, error) {
	link, err := s.store.GetBySlug(ctx, slug)
	if errors.Is(err, repository.ErrNotFound) {
		return "", ErrLinkNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve smart link: %w", err)
	}

	destination, ok := link.StreamingLinks[platform]
	if !ok || destination == "" {
		return "", ErrPlatformUnavailable
	}

	// Detached from the request context so a fast client disconnect
	// cannot cancel the increment mid-flight.
	go func() {
		incCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.store.IncrementClick(incCtx, slug, platform); err != nil {
			s.logger.Warn("click tracking failed",
				zap.String("slug", slug),
				zap.String("platform", platform),
				zap.Error(err),
			)
		}
	}()

	return destination, nil
}

// Analytics returns the click summary for a slug.
func (s *LinkService) Analytics(ctx context.Context, slug string) (*models.AnalyticsSummary, error) {
	link, err := s.store.GetBySlug(ctx, slug)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrLinkNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load analytics: %w", err)
	}

	clicks := link.ClickStats.Clicks
	if clicks == nil {
		clicks = map[string]int64{}
	}

	return &models.AnalyticsSummary{
		Slug:             link.Slug,
		Artist:           link.Artist,
		Title:            link.Title,
		TotalViews:       link.ClickStats.TotalViews,
		ClicksByPlatform: clicks,
		CreatedAt:        link.CreatedAt,
	}, nil
}
