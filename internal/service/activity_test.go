package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njohnson2897/bookmarkd-sub000/internal/domain"
	domainerrors "github.com/njohnson2897/bookmarkd-sub000/internal/errors"
)

func TestFeedService_FollowedAndOwnReviews(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	carol := env.createUser(t, "carol")

	own := env.createReview(t, alice, "own")
	followed := env.createReview(t, bob, "followed")
	env.createReview(t, carol, "stranger")

	_, err := env.svc.Social.Follow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	feed, err := env.svc.Feed.Feed(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, feed, 2)

	assert.Equal(t, domain.ActivityReview, feed[0].Type)
	assert.Equal(t, followed.ID, feed[0].Review.ID, "newest first")
	assert.Equal(t, own.ID, feed[1].Review.ID)
	assert.False(t, feed[0].Timestamp.Before(feed[1].Timestamp))
}

func TestFeedService_Limit(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()

	reader := env.createUser(t, "reader")
	prolific := env.createUser(t, "prolific")
	_, err := env.svc.Social.Follow(ctx, reader.ID, prolific.ID)
	require.NoError(t, err)

	for i := range feedLimit + 5 {
		env.createReview(t, prolific, fmt.Sprintf("book-%02d", i))
	}

	feed, err := env.svc.Feed.Feed(ctx, reader.ID)
	require.NoError(t, err)
	require.Len(t, feed, feedLimit)
	for i := 1; i < len(feed); i++ {
		assert.False(t, feed[i].Timestamp.After(feed[i-1].Timestamp), "feed must be newest first")
	}
}

func TestFeedService_RequiresViewer(t *testing.T) {
	env := setupTestServices(t)

	_, err := env.svc.Feed.Feed(context.Background(), "")
	assertCode(t, err, domainerrors.CodeUnauthenticated)
}

func TestFeedService_Empty(t *testing.T) {
	env := setupTestServices(t)
	loner := env.createUser(t, "loner")

	feed, err := env.svc.Feed.Feed(context.Background(), loner.ID)
	require.NoError(t, err)
	assert.Empty(t, feed)
}
