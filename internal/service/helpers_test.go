package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njohnson2897/bookmarkd-sub000/internal/auth"
	"github.com/njohnson2897/bookmarkd-sub000/internal/domain"
	domainerrors "github.com/njohnson2897/bookmarkd-sub000/internal/errors"
	"github.com/njohnson2897/bookmarkd-sub000/internal/metadata/googlebooks"
	"github.com/njohnson2897/bookmarkd-sub000/internal/store"
)

const testKeyHex = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

// fakeMetadata serves volumes titled after their ID unless fail is set.
type fakeMetadata struct {
	calls atomic.Int32
	fail  bool
}

func (f *fakeMetadata) GetVolume(_ context.Context, googleID string) (*googlebooks.Volume, error) {
	f.calls.Add(1)
	if f.fail {
		return nil, errors.New("upstream unavailable")
	}
	if googleID == "missing" {
		return nil, googlebooks.ErrNotFound
	}
	return &googlebooks.Volume{
		ID:      googleID,
		Title:   "Title of " + googleID,
		Authors: []string{"Author of " + googleID},
	}, nil
}

type testEnv struct {
	store    *store.Store
	svc      *Services
	tokens   *auth.TokenService
	metadata *fakeMetadata
}

func setupTestServices(t *testing.T) *testEnv {
	t.Helper()

	testStore, err := store.New(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testStore.Close() })

	tokens, err := auth.NewTokenService(testKeyHex, time.Hour)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metadata := &fakeMetadata{}

	return &testEnv{
		store:    testStore,
		svc:      NewServices(testStore, tokens, metadata, logger),
		tokens:   tokens,
		metadata: metadata,
	}
}

// failingNotifications returns a notification service whose store is already
// closed, so every write fails. Warnings land in the returned buffer.
func failingNotifications(t *testing.T) (*NotificationService, *bytes.Buffer) {
	t.Helper()

	closed, err := store.New(filepath.Join(t.TempDir(), "closed.db"), nil)
	require.NoError(t, err)
	require.NoError(t, closed.Close())

	var logs bytes.Buffer
	return NewNotificationService(closed, slog.New(slog.NewTextHandler(&logs, nil))), &logs
}

// createUser signs a user up with a predictable email and password.
func (e *testEnv) createUser(t *testing.T, username string) *domain.User {
	t.Helper()
	payload, err := e.svc.Auth.SignUp(context.Background(), SignUpRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	return payload.User
}

// createClub creates a public club owned by owner.
func (e *testEnv) createClub(t *testing.T, owner *domain.User, name string) *domain.Club {
	t.Helper()
	club, err := e.svc.Club.CreateClub(context.Background(), owner.ID, CreateClubRequest{Name: name})
	require.NoError(t, err)
	return club
}

// createReview posts a review of googleID by author.
func (e *testEnv) createReview(t *testing.T, author *domain.User, googleID string) *domain.Review {
	t.Helper()
	review, err := e.svc.Review.CreateReview(context.Background(), author.ID, CreateReviewRequest{
		GoogleID: googleID,
		Stars:    4,
		Title:    "Worth it",
	})
	require.NoError(t, err)
	return review
}

func (e *testEnv) reloadUser(t *testing.T, userID string) *domain.User {
	t.Helper()
	user, err := e.store.Users.Get(context.Background(), userID)
	require.NoError(t, err)
	return user
}

func (e *testEnv) notificationsOf(t *testing.T, userID string, typ domain.NotificationType) []*domain.Notification {
	t.Helper()
	all, err := e.svc.Notification.List(context.Background(), userID, false)
	require.NoError(t, err)
	out := make([]*domain.Notification, 0)
	for _, n := range all {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

// assertCode checks that err carries the given domain error code.
func assertCode(t *testing.T, err error, code domainerrors.Code) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, domainerrors.CodeOf(err), "unexpected error: %v", err)
}
