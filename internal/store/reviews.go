package store

import (
	"context"

	"github.com/njohnson2897/bookmarkd-sub000/internal/domain"
)

// Lookup names for reviews. Both are ordered newest first.
const (
	ReviewLookupUser = "user"
	ReviewLookupBook = "book"
)

func (s *Store) initReviews() {
	s.Reviews = NewEntity[domain.Review](s, prefixReview, func(r *domain.Review) string { return r.ID }).
		WithLookup(ReviewLookupUser, func(r *domain.Review) []string {
			return []string{r.UserID + ":" + invertedTimestamp(r.CreatedAt)}
		}).
		WithLookup(ReviewLookupBook, func(r *domain.Review) []string {
			return []string{r.BookID + ":" + invertedTimestamp(r.CreatedAt)}
		})
}

// RecentReviewsByUser returns up to limit reviews written by userID, newest first.
func (s *Store) RecentReviewsByUser(ctx context.Context, userID string, limit int) ([]*domain.Review, error) {
	reviews := make([]*domain.Review, 0, limit)
	if limit <= 0 {
		return reviews, nil
	}
	for review, err := range s.Reviews.ListByLookup(ctx, ReviewLookupUser, userID) {
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
		if len(reviews) >= limit {
			break
		}
	}
	return reviews, nil
}

// ReviewsForBook returns every review of bookID, newest first.
func (s *Store) ReviewsForBook(ctx context.Context, bookID string) ([]*domain.Review, error) {
	return Collect(s.Reviews.ListByLookup(ctx, ReviewLookupBook, bookID))
}
