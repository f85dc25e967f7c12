package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/njohnson2897/bookmarkd-sub000/internal/domain"
	"github.com/njohnson2897/bookmarkd-sub000/internal/store"
)

const (
	// feedSourceLimit bounds how many recent reviews are gathered.
	feedSourceLimit = 50
	// feedLimit is the number of activities returned.
	feedLimit = 30
)

// FeedService composes the activity feed on read from the follow graph.
// Nothing is precomputed per viewer.
type FeedService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewFeedService creates a new feed service.
func NewFeedService(store *store.Store, logger *slog.Logger) *FeedService {
	return &FeedService{
		store:  store,
		logger: logger,
	}
}

// Feed returns the latest activity of the viewer and everyone they follow,
// newest first.
func (s *FeedService) Feed(ctx context.Context, viewerID string) ([]domain.Activity, error) {
	if err := requireActor(viewerID); err != nil {
		return nil, err
	}

	following, err := s.store.FollowingIDs(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("list following: %w", err)
	}
	authors := append(following, viewerID)

	// Each author contributes at most feedSourceLimit reviews, which is
	// enough to find the global latest feedSourceLimit.
	reviews := make([]*domain.Review, 0, feedSourceLimit)
	for _, authorID := range authors {
		recent, err := s.store.RecentReviewsByUser(ctx, authorID, feedSourceLimit)
		if err != nil {
			return nil, fmt.Errorf("list reviews for %s: %w", authorID, err)
		}
		reviews = append(reviews, recent...)
	}

	slices.SortFunc(reviews, func(a, b *domain.Review) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if len(reviews) > feedSourceLimit {
		reviews = reviews[:feedSourceLimit]
	}

	activities := make([]domain.Activity, 0, len(reviews))
	for _, r := range reviews {
		activities = append(activities, domain.Activity{
			Type:      domain.ActivityReview,
			Timestamp: r.CreatedAt,
			Review:    r,
		})
	}

	slices.SortStableFunc(activities, func(a, b domain.Activity) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	if len(activities) > feedLimit {
		activities = activities[:feedLimit]
	}

	s.logger.Debug("feed composed", "user_id", viewerID, "authors", len(authors), "activities", len(activities))
	return activities, nil
}
