package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/njohnson2897/bookmarkd-sub000/internal/content"
	"github.com/njohnson2897/bookmarkd-sub000/internal/domain"
	domainerrors "github.com/njohnson2897/bookmarkd-sub000/internal/errors"
	"github.com/njohnson2897/bookmarkd-sub000/internal/id"
	"github.com/njohnson2897/bookmarkd-sub000/internal/store"
)

// SocialService manages likes, comments and follows, and the notifications
// they trigger.
type SocialService struct {
	store         *store.Store
	notifications *NotificationService
	logger        *slog.Logger
}

// NewSocialService creates a new social service.
func NewSocialService(store *store.Store, notifications *NotificationService, logger *slog.Logger) *SocialService {
	return &SocialService{
		store:         store,
		notifications: notifications,
		logger:        logger,
	}
}

// FollowStats are the per-read derived fields of a user.
type FollowStats struct {
	FollowerCount  int
	FollowingCount int
	IsFollowing    bool
}

// Like records that the actor likes reviewID. Liking twice is a no-op; the
// author is notified on the first like only, and never for their own review.
func (s *SocialService) Like(ctx context.Context, actorID, reviewID string) (*domain.Review, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}

	review, err := s.store.Reviews.Get(ctx, reviewID)
	if err != nil {
		return nil, notFound(err, "get review", "review")
	}

	likeID, err := id.Generate(id.PrefixLike)
	if err != nil {
		return nil, fmt.Errorf("generate like ID: %w", err)
	}
	like := &domain.Like{
		Base:     domain.Base{ID: likeID},
		UserID:   actorID,
		ReviewID: reviewID,
	}
	like.InitTimestamps()

	if err := s.store.Likes.Create(ctx, like); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return review, nil
		}
		return nil, fmt.Errorf("create like: %w", err)
	}

	s.notifications.Send(ctx, domain.Notification{
		UserID:     review.UserID,
		Type:       domain.NotifyLike,
		FromUserID: actorID,
		ReviewID:   reviewID,
	})

	return review, nil
}

// Unlike removes the actor's like of reviewID if there is one.
func (s *SocialService) Unlike(ctx context.Context, actorID, reviewID string) (*domain.Review, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}

	review, err := s.store.Reviews.Get(ctx, reviewID)
	if err != nil {
		return nil, notFound(err, "get review", "review")
	}

	like, err := s.store.GetLike(ctx, actorID, reviewID)
	if errors.Is(err, store.ErrNotFound) {
		return review, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get like: %w", err)
	}

	if err := s.store.Likes.Delete(ctx, like.ID); err != nil {
		return nil, fmt.Errorf("delete like: %w", err)
	}
	return review, nil
}

// AddComment attaches a comment by the actor to reviewID and notifies the
// review's author.
func (s *SocialService) AddComment(ctx context.Context, actorID, reviewID, text string) (*domain.Comment, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}

	text = content.Normalize(text)
	if text == "" {
		return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{"text": "is required"})
	}

	review, err := s.store.Reviews.Get(ctx, reviewID)
	if err != nil {
		return nil, notFound(err, "get review", "review")
	}

	commentID, err := id.Generate(id.PrefixComment)
	if err != nil {
		return nil, fmt.Errorf("generate comment ID: %w", err)
	}
	comment := &domain.Comment{
		Base:     domain.Base{ID: commentID},
		UserID:   actorID,
		ReviewID: reviewID,
		Text:     text,
	}
	comment.InitTimestamps()

	if err := s.store.Comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	s.notifications.Send(ctx, domain.Notification{
		UserID:     review.UserID,
		Type:       domain.NotifyComment,
		FromUserID: actorID,
		ReviewID:   reviewID,
		CommentID:  comment.ID,
	})

	return comment, nil
}

// DeleteComment removes a comment. Only its author may delete it.
func (s *SocialService) DeleteComment(ctx context.Context, actorID, commentID string) error {
	if err := requireActor(actorID); err != nil {
		return err
	}

	comment, err := s.store.Comments.Get(ctx, commentID)
	if err != nil {
		return notFound(err, "get comment", "comment")
	}
	if comment.UserID != actorID {
		return domainerrors.Forbidden("only the author can delete this comment")
	}

	if err := s.store.Comments.Delete(ctx, commentID); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

// Follow makes the actor follow targetID. Following yourself is
// INVALID_STATE; following twice is a no-op. The target is notified on the
// first follow only.
func (s *SocialService) Follow(ctx context.Context, actorID, targetID string) (*domain.User, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	if actorID == targetID {
		return nil, domainerrors.InvalidState("you cannot follow yourself")
	}

	target, err := s.store.Users.Get(ctx, targetID)
	if err != nil {
		return nil, notFound(err, "get user", "user")
	}

	followID, err := id.Generate(id.PrefixFollow)
	if err != nil {
		return nil, fmt.Errorf("generate follow ID: %w", err)
	}
	follow := &domain.Follow{
		Base:        domain.Base{ID: followID},
		FollowerID:  actorID,
		FollowingID: targetID,
	}
	follow.InitTimestamps()

	if err := s.store.Follows.Create(ctx, follow); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return target, nil
		}
		return nil, fmt.Errorf("create follow: %w", err)
	}

	s.notifications.Send(ctx, domain.Notification{
		UserID:     targetID,
		Type:       domain.NotifyFollow,
		FromUserID: actorID,
	})

	s.logger.Info("user followed", "user_id", actorID, "following_id", targetID)
	return target, nil
}

// Unfollow removes the follow edge from the actor to targetID if present.
func (s *SocialService) Unfollow(ctx context.Context, actorID, targetID string) (*domain.User, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}

	target, err := s.store.Users.Get(ctx, targetID)
	if err != nil {
		return nil, notFound(err, "get user", "user")
	}

	follow, err := s.store.GetFollow(ctx, actorID, targetID)
	if errors.Is(err, store.ErrNotFound) {
		return target, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get follow: %w", err)
	}

	if err := s.store.Follows.Delete(ctx, follow.ID); err != nil {
		return nil, fmt.Errorf("delete follow: %w", err)
	}
	return target, nil
}

// FollowerIDs returns who follows userID.
func (s *SocialService) FollowerIDs(ctx context.Context, userID string) ([]string, error) {
	return s.store.FollowerIDs(ctx, userID)
}

// FollowingIDs returns who userID follows.
func (s *SocialService) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	return s.store.FollowingIDs(ctx, userID)
}

// Stats computes the follow counters of userID relative to viewerID.
func (s *SocialService) Stats(ctx context.Context, userID, viewerID string) (FollowStats, error) {
	var stats FollowStats
	var err error

	if stats.FollowerCount, err = s.store.Follows.CountByLookup(ctx, store.FollowLookupTo, userID); err != nil {
		return stats, fmt.Errorf("count followers: %w", err)
	}
	if stats.FollowingCount, err = s.store.Follows.CountByLookup(ctx, store.FollowLookupFrom, userID); err != nil {
		return stats, fmt.Errorf("count following: %w", err)
	}
	if viewerID != "" && viewerID != userID {
		if stats.IsFollowing, err = s.store.IsFollowing(ctx, viewerID, userID); err != nil {
			return stats, fmt.Errorf("check follow: %w", err)
		}
	}
	return stats, nil
}
