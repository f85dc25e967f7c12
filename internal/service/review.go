package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/njohnson2897/bookmarkd-sub000/internal/content"
	"github.com/njohnson2897/bookmarkd-sub000/internal/domain"
	domainerrors "github.com/njohnson2897/bookmarkd-sub000/internal/errors"
	"github.com/njohnson2897/bookmarkd-sub000/internal/id"
	"github.com/njohnson2897/bookmarkd-sub000/internal/store"
)

// ReviewService manages reviews and their derived counters.
type ReviewService struct {
	store         *store.Store
	books         *BookService
	notifications *NotificationService
	logger        *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(store *store.Store, books *BookService, notifications *NotificationService, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		store:         store,
		books:         books,
		notifications: notifications,
		logger:        logger,
	}
}

// CreateReviewRequest contains the data for a new review.
type CreateReviewRequest struct {
	GoogleID    string `json:"google_id" validate:"required,max=64"`
	Stars       int    `json:"stars" validate:"gte=0,lte=5"`
	Title       string `json:"title" validate:"max=200"`
	Description string `json:"description" validate:"max=20000"`
}

// ReviewUpdate is a partial review change. Nil fields are left alone.
type ReviewUpdate struct {
	Stars       *int    `json:"stars" validate:"omitempty,gte=0,lte=5"`
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Description *string `json:"description" validate:"omitempty,max=20000"`
}

// ReviewStats are the per-read derived fields of a review.
type ReviewStats struct {
	LikeCount    int
	CommentCount int
	IsLiked      bool
}

// CreateReview stores a review by the actor and links it into the author's
// and the book's review lists. The links are written after the review and
// are not transactional with it. Followers of the author are notified.
func (s *ReviewService) CreateReview(ctx context.Context, actorID string, req CreateReviewRequest) (*domain.Review, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	book, err := s.books.FindOrCreate(ctx, req.GoogleID)
	if err != nil {
		return nil, err
	}

	reviewID, err := id.Generate(id.PrefixReview)
	if err != nil {
		return nil, fmt.Errorf("generate review ID: %w", err)
	}

	review := &domain.Review{
		Base:        domain.Base{ID: reviewID},
		BookID:      book.ID,
		GoogleID:    book.GoogleID,
		UserID:      actorID,
		Stars:       req.Stars,
		Title:       content.Normalize(req.Title),
		Description: content.Normalize(req.Description),
	}
	review.InitTimestamps()

	if err := s.store.Reviews.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	if _, err := s.store.Users.Mutate(ctx, actorID, func(u *domain.User) error {
		if slices.Contains(u.ReviewIDs, review.ID) {
			return store.ErrNoChange
		}
		u.ReviewIDs = append(u.ReviewIDs, review.ID)
		return nil
	}); err != nil {
		return nil, notFound(err, "link review to user", "user")
	}

	if _, err := s.store.Books.Mutate(ctx, book.ID, func(b *domain.Book) error {
		if !b.AddReview(review.ID) {
			return store.ErrNoChange
		}
		b.Touch()
		return nil
	}); err != nil {
		return nil, fmt.Errorf("link review to book: %w", err)
	}

	followers, err := s.store.FollowerIDs(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("list followers: %w", err)
	}
	s.notifications.NotifyAll(ctx, followers, domain.Notification{
		Type:       domain.NotifyReview,
		FromUserID: actorID,
		ReviewID:   review.ID,
	})

	s.logger.Info("review created",
		"review_id", review.ID,
		"user_id", actorID,
		"google_id", book.GoogleID,
	)
	return review, nil
}

// UpdateReview applies patch to a review. Only its author may edit it.
func (s *ReviewService) UpdateReview(ctx context.Context, actorID, reviewID string, patch ReviewUpdate) (*domain.Review, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	if err := validate.Validate(patch); err != nil {
		return nil, err
	}

	review, err := s.store.Reviews.Mutate(ctx, reviewID, func(r *domain.Review) error {
		if r.UserID != actorID {
			return domainerrors.Forbidden("only the author can edit this review")
		}
		if patch.Stars != nil {
			r.Stars = *patch.Stars
		}
		if patch.Title != nil {
			r.Title = content.Normalize(*patch.Title)
		}
		if patch.Description != nil {
			r.Description = content.Normalize(*patch.Description)
		}
		r.Touch()
		return nil
	})
	if err != nil {
		return nil, notFound(err, "update review", "review")
	}
	return review, nil
}

// DeleteReview removes a review with its likes and comments and unlinks it
// from the author and the book. Only the author may delete it.
func (s *ReviewService) DeleteReview(ctx context.Context, actorID, reviewID string) error {
	if err := requireActor(actorID); err != nil {
		return err
	}

	review, err := s.Get(ctx, reviewID)
	if err != nil {
		return err
	}
	if review.UserID != actorID {
		return domainerrors.Forbidden("only the author can delete this review")
	}

	likes, err := store.Collect(s.store.Likes.ListByLookup(ctx, store.LikeLookupReview, reviewID))
	if err != nil {
		return fmt.Errorf("list likes: %w", err)
	}
	for _, like := range likes {
		if err := s.store.Likes.Delete(ctx, like.ID); err != nil {
			return fmt.Errorf("delete like: %w", err)
		}
	}

	comments, err := s.store.CommentsForReview(ctx, reviewID)
	if err != nil {
		return fmt.Errorf("list comments: %w", err)
	}
	for _, comment := range comments {
		if err := s.store.Comments.Delete(ctx, comment.ID); err != nil {
			return fmt.Errorf("delete comment: %w", err)
		}
	}

	if err := s.store.Reviews.Delete(ctx, reviewID); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	if _, err := s.store.Users.Mutate(ctx, review.UserID, func(u *domain.User) error {
		u.ReviewIDs = slices.DeleteFunc(u.ReviewIDs, func(rid string) bool { return rid == reviewID })
		return nil
	}); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("unlink review from user: %w", err)
	}

	if _, err := s.store.Books.Mutate(ctx, review.BookID, func(b *domain.Book) error {
		b.RemoveReview(reviewID)
		return nil
	}); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("unlink review from book: %w", err)
	}

	s.logger.Info("review deleted", "review_id", reviewID, "user_id", actorID)
	return nil
}

// Get returns the review with reviewID.
func (s *ReviewService) Get(ctx context.Context, reviewID string) (*domain.Review, error) {
	review, err := s.store.Reviews.Get(ctx, reviewID)
	if err != nil {
		return nil, notFound(err, "get review", "review")
	}
	return review, nil
}

// ForBook returns the reviews of googleID, newest first. A book nobody has
// referenced yet simply has no reviews.
func (s *ReviewService) ForBook(ctx context.Context, googleID string) ([]*domain.Review, error) {
	book, err := s.store.GetBookByGoogleID(ctx, googleID)
	if errors.Is(err, store.ErrNotFound) {
		return []*domain.Review{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}

	reviews, err := s.store.ReviewsForBook(ctx, book.ID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

// ForUser returns the reviews written by userID, newest first.
func (s *ReviewService) ForUser(ctx context.Context, userID string) ([]*domain.Review, error) {
	reviews, err := store.Collect(s.store.Reviews.ListByLookup(ctx, store.ReviewLookupUser, userID))
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

// Comments returns the comments on reviewID, oldest first.
func (s *ReviewService) Comments(ctx context.Context, reviewID string) ([]*domain.Comment, error) {
	comments, err := s.store.CommentsForReview(ctx, reviewID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// Stats computes the derived counters of reviewID for viewerID. They are
// counted from the edge sets on every call. An anonymous viewer never has
// liked anything.
func (s *ReviewService) Stats(ctx context.Context, reviewID, viewerID string) (ReviewStats, error) {
	var stats ReviewStats
	var err error

	if stats.LikeCount, err = s.store.Likes.CountByLookup(ctx, store.LikeLookupReview, reviewID); err != nil {
		return stats, fmt.Errorf("count likes: %w", err)
	}
	if stats.CommentCount, err = s.store.Comments.CountByLookup(ctx, store.CommentLookupReview, reviewID); err != nil {
		return stats, fmt.Errorf("count comments: %w", err)
	}
	if viewerID != "" {
		if stats.IsLiked, err = s.store.HasLiked(ctx, viewerID, reviewID); err != nil {
			return stats, fmt.Errorf("check like: %w", err)
		}
	}
	return stats, nil
}
