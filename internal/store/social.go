package store

import (
	"context"
	"errors"

	"github.com/njohnson2897/bookmarkd-sub000/internal/domain"
)

// Index and lookup names for social edges.
const (
	EdgeIndexPair       = "pair"
	LikeLookupReview    = "review"
	CommentLookupReview = "review"
	FollowLookupFrom    = "follower"
	FollowLookupTo      = "following"
)

func (s *Store) initSocial() {
	s.Likes = NewEntity[domain.Like](s, prefixLike, func(l *domain.Like) string { return l.ID }).
		WithIndex(EdgeIndexPair, func(l *domain.Like) []string {
			return []string{pairKey(l.UserID, l.ReviewID)}
		}).
		WithLookup(LikeLookupReview, func(l *domain.Like) []string {
			return []string{l.ReviewID}
		})

	s.Comments = NewEntity[domain.Comment](s, prefixComment, func(c *domain.Comment) string { return c.ID }).
		WithLookup(CommentLookupReview, func(c *domain.Comment) []string {
			return []string{c.ReviewID + ":" + sortableTimestamp(c.CreatedAt)}
		})

	s.Follows = NewEntity[domain.Follow](s, prefixFollow, func(f *domain.Follow) string { return f.ID }).
		WithIndex(EdgeIndexPair, func(f *domain.Follow) []string {
			return []string{pairKey(f.FollowerID, f.FollowingID)}
		}).
		WithLookup(FollowLookupFrom, func(f *domain.Follow) []string {
			return []string{f.FollowerID}
		}).
		WithLookup(FollowLookupTo, func(f *domain.Follow) []string {
			return []string{f.FollowingID}
		})

	s.Contacts = NewEntity[domain.Contact](s, prefixContact, func(c *domain.Contact) string { return c.ID })
}

// GetLike returns the like of reviewID by userID.
func (s *Store) GetLike(ctx context.Context, userID, reviewID string) (*domain.Like, error) {
	return s.Likes.GetByIndex(ctx, EdgeIndexPair, pairKey(userID, reviewID))
}

// HasLiked reports whether userID likes reviewID.
func (s *Store) HasLiked(ctx context.Context, userID, reviewID string) (bool, error) {
	_, err := s.GetLike(ctx, userID, reviewID)
	return found(err)
}

// GetFollow returns the follow edge from followerID to followingID.
func (s *Store) GetFollow(ctx context.Context, followerID, followingID string) (*domain.Follow, error) {
	return s.Follows.GetByIndex(ctx, EdgeIndexPair, pairKey(followerID, followingID))
}

// IsFollowing reports whether followerID follows followingID.
func (s *Store) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	_, err := s.GetFollow(ctx, followerID, followingID)
	return found(err)
}

// FollowingIDs returns the IDs of every user userID follows.
func (s *Store) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	ids := make([]string, 0)
	for f, err := range s.Follows.ListByLookup(ctx, FollowLookupFrom, userID) {
		if err != nil {
			return nil, err
		}
		ids = append(ids, f.FollowingID)
	}
	return ids, nil
}

// FollowerIDs returns the IDs of every user following userID.
func (s *Store) FollowerIDs(ctx context.Context, userID string) ([]string, error) {
	ids := make([]string, 0)
	for f, err := range s.Follows.ListByLookup(ctx, FollowLookupTo, userID) {
		if err != nil {
			return nil, err
		}
		ids = append(ids, f.FollowerID)
	}
	return ids, nil
}

// CommentsForReview returns the comments on reviewID, oldest first.
func (s *Store) CommentsForReview(ctx context.Context, reviewID string) ([]*domain.Comment, error) {
	return Collect(s.Comments.ListByLookup(ctx, CommentLookupReview, reviewID))
}

// found converts a lookup error into an existence flag.
func found(err error) (bool, error) {
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
