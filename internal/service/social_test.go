package service

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njohnson2897/bookmarkd-sub000/internal/domain"
	domainerrors "github.com/njohnson2897/bookmarkd-sub000/internal/errors"
)

func TestSocialService_LikeIsIdempotent(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	fan := env.createUser(t, "fan")
	review := env.createReview(t, author, "abc123")

	_, err := env.svc.Social.Like(ctx, fan.ID, review.ID)
	require.NoError(t, err)
	_, err = env.svc.Social.Like(ctx, fan.ID, review.ID)
	require.NoError(t, err)

	stats, err := env.svc.Review.Stats(ctx, review.ID, fan.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.LikeCount)
	assert.True(t, stats.IsLiked)

	likes := env.notificationsOf(t, author.ID, domain.NotifyLike)
	require.Len(t, likes, 1, "the second like must not notify again")
	assert.Equal(t, fan.ID, likes[0].FromUserID)
	assert.Equal(t, review.ID, likes[0].ReviewID)

	stats, err = env.svc.Review.Stats(ctx, review.ID, author.ID)
	require.NoError(t, err)
	assert.False(t, stats.IsLiked)

	stats, err = env.svc.Review.Stats(ctx, review.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.LikeCount)
	assert.False(t, stats.IsLiked)
}

func TestSocialService_SelfLikeDoesNotNotify(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	review := env.createReview(t, author, "abc123")

	_, err := env.svc.Social.Like(ctx, author.ID, review.ID)
	require.NoError(t, err)

	assert.Empty(t, env.notificationsOf(t, author.ID, domain.NotifyLike))
}

func TestSocialService_Unlike(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	fan := env.createUser(t, "fan")
	review := env.createReview(t, author, "abc123")

	// Unliking something you never liked is a no-op.
	_, err := env.svc.Social.Unlike(ctx, fan.ID, review.ID)
	require.NoError(t, err)

	_, err = env.svc.Social.Like(ctx, fan.ID, review.ID)
	require.NoError(t, err)
	_, err = env.svc.Social.Unlike(ctx, fan.ID, review.ID)
	require.NoError(t, err)

	stats, err := env.svc.Review.Stats(ctx, review.ID, fan.ID)
	require.NoError(t, err)
	assert.Zero(t, stats.LikeCount)
	assert.False(t, stats.IsLiked)

	_, err = env.svc.Social.Like(ctx, fan.ID, "rev-missing")
	assertCode(t, err, domainerrors.CodeNotFound)

	_, err = env.svc.Social.Like(ctx, "", review.ID)
	assertCode(t, err, domainerrors.CodeUnauthenticated)
}

func TestSocialService_Comments(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	reader := env.createUser(t, "reader")
	other := env.createUser(t, "other")
	review := env.createReview(t, author, "abc123")

	comment, err := env.svc.Social.AddComment(ctx, reader.ID, review.ID, "<b>Great</b> review")
	require.NoError(t, err)
	assert.Equal(t, "**Great** review", comment.Text)

	notes := env.notificationsOf(t, author.ID, domain.NotifyComment)
	require.Len(t, notes, 1)
	assert.Equal(t, comment.ID, notes[0].CommentID)

	_, err = env.svc.Social.AddComment(ctx, reader.ID, review.ID, "   ")
	assertCode(t, err, domainerrors.CodeValidation)

	stats, err := env.svc.Review.Stats(ctx, review.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.CommentCount)

	assertCode(t, env.svc.Social.DeleteComment(ctx, other.ID, comment.ID), domainerrors.CodeForbidden)
	require.NoError(t, env.svc.Social.DeleteComment(ctx, reader.ID, comment.ID))
	assertCode(t, env.svc.Social.DeleteComment(ctx, reader.ID, comment.ID), domainerrors.CodeNotFound)

	comments, err := env.svc.Review.Comments(ctx, review.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestSocialService_Follow(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	_, err := env.svc.Social.Follow(ctx, alice.ID, alice.ID)
	assertCode(t, err, domainerrors.CodeInvalidState)

	_, err = env.svc.Social.Follow(ctx, alice.ID, "usr-missing")
	assertCode(t, err, domainerrors.CodeNotFound)

	target, err := env.svc.Social.Follow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, bob.ID, target.ID)
	_, err = env.svc.Social.Follow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	assert.Len(t, env.notificationsOf(t, bob.ID, domain.NotifyFollow), 1)

	stats, err := env.svc.Social.Stats(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FollowerCount)
	assert.Zero(t, stats.FollowingCount)
	assert.True(t, stats.IsFollowing)

	stats, err = env.svc.Social.Stats(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FollowingCount)
	assert.False(t, stats.IsFollowing)

	followers, err := env.svc.Social.FollowerIDs(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{alice.ID}, followers)

	following, err := env.svc.Social.FollowingIDs(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{bob.ID}, following)

	_, err = env.svc.Social.Unfollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = env.svc.Social.Unfollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	stats, err = env.svc.Social.Stats(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, stats.FollowerCount)
	assert.False(t, stats.IsFollowing)
}

func TestSocialService_NotificationFailureDoesNotFailWrite(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	review := env.createReview(t, bob, "abc123")

	notifications, logs := failingNotifications(t)
	social := NewSocialService(env.store, notifications, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := social.Follow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = social.Like(ctx, alice.ID, review.ID)
	require.NoError(t, err)
	_, err = social.AddComment(ctx, alice.ID, review.ID, "Agreed")
	require.NoError(t, err)

	stats, err := env.svc.Social.Stats(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, stats.IsFollowing)

	reviewStats, err := env.svc.Review.Stats(ctx, review.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reviewStats.LikeCount)
	assert.True(t, reviewStats.IsLiked)

	assert.Equal(t, 3, strings.Count(logs.String(), "failed to deliver notification"))
	assert.Empty(t, env.notificationsOf(t, bob.ID, domain.NotifyFollow))
}
