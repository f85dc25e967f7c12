package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njohnson2897/bookmarkd-sub000/internal/domain"
	domainerrors "github.com/njohnson2897/bookmarkd-sub000/internal/errors"
	"github.com/njohnson2897/bookmarkd-sub000/internal/membership"
)

func TestClubService_CreateAndJoin(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	club := env.createClub(t, alice, "Sci-Fi")
	assert.Equal(t, domain.PrivacyPublic, club.Privacy)

	owner := membership.Resolve(club, alice.ID)
	assert.True(t, owner.IsOwner)
	assert.Equal(t, 1, owner.MemberCount)
	assert.Contains(t, env.reloadUser(t, alice.ID).ClubIDs, club.ID)

	club, err := env.svc.Club.JoinClub(ctx, bob.ID, club.ID)
	require.NoError(t, err)

	snap := membership.Resolve(club, bob.ID)
	assert.Equal(t, 2, snap.MemberCount)
	assert.True(t, snap.IsMember)
	assert.False(t, snap.IsOwner)
	assert.Contains(t, env.reloadUser(t, bob.ID).ClubIDs, club.ID)

	// Joining again changes nothing.
	club, err = env.svc.Club.JoinClub(ctx, bob.ID, club.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, membership.Resolve(club, bob.ID).MemberCount)

	// The owner joining their own club is a no-op too.
	club, err = env.svc.Club.JoinClub(ctx, alice.ID, club.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, membership.Resolve(club, alice.ID).MemberCount)
}

func TestClubService_JoinRules(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	carol := env.createUser(t, "carol")

	t.Run("invite-only rejects direct joins", func(t *testing.T) {
		club, err := env.svc.Club.CreateClub(ctx, alice.ID, CreateClubRequest{Name: "Secret", Privacy: "invite-only"})
		require.NoError(t, err)

		_, err = env.svc.Club.JoinClub(ctx, bob.ID, club.ID)
		assertCode(t, err, domainerrors.CodeForbidden)
	})

	t.Run("private allows direct joins", func(t *testing.T) {
		club, err := env.svc.Club.CreateClub(ctx, alice.ID, CreateClubRequest{Name: "Quiet", Privacy: "private"})
		require.NoError(t, err)

		club, err = env.svc.Club.JoinClub(ctx, bob.ID, club.ID)
		require.NoError(t, err)
		assert.True(t, club.HasMember(bob.ID))
	})

	t.Run("member limit counts the owner", func(t *testing.T) {
		limit := 2
		club, err := env.svc.Club.CreateClub(ctx, alice.ID, CreateClubRequest{Name: "Tiny", MemberLimit: &limit})
		require.NoError(t, err)

		_, err = env.svc.Club.JoinClub(ctx, bob.ID, club.ID)
		require.NoError(t, err)

		_, err = env.svc.Club.JoinClub(ctx, carol.ID, club.ID)
		assertCode(t, err, domainerrors.CodeInvalidState)
	})

	t.Run("missing club", func(t *testing.T) {
		_, err := env.svc.Club.JoinClub(ctx, bob.ID, "club-missing")
		assertCode(t, err, domainerrors.CodeNotFound)
	})

	t.Run("anonymous", func(t *testing.T) {
		club := env.createClub(t, alice, "Open")
		_, err := env.svc.Club.JoinClub(ctx, "", club.ID)
		assertCode(t, err, domainerrors.CodeUnauthenticated)
	})
}

func TestClubService_LeaveAndRemove(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	mod := env.createUser(t, "mod")
	mod2 := env.createUser(t, "mod2")
	member := env.createUser(t, "member")
	stranger := env.createUser(t, "stranger")

	club := env.createClub(t, owner, "Mystery")
	for _, u := range []*domain.User{mod, mod2, member} {
		_, err := env.svc.Club.JoinClub(ctx, u.ID, club.ID)
		require.NoError(t, err)
	}
	_, err := env.svc.Club.AddModerator(ctx, owner.ID, club.ID, mod.ID)
	require.NoError(t, err)
	_, err = env.svc.Club.AddModerator(ctx, owner.ID, club.ID, mod2.ID)
	require.NoError(t, err)

	_, err = env.svc.Club.LeaveClub(ctx, owner.ID, club.ID)
	assertCode(t, err, domainerrors.CodeInvalidState)

	_, err = env.svc.Club.LeaveClub(ctx, stranger.ID, club.ID)
	assertCode(t, err, domainerrors.CodeInvalidState)

	_, err = env.svc.Club.RemoveMember(ctx, member.ID, club.ID, mod.ID)
	assertCode(t, err, domainerrors.CodeForbidden)

	_, err = env.svc.Club.RemoveMember(ctx, mod.ID, club.ID, mod2.ID)
	assertCode(t, err, domainerrors.CodeForbidden)

	_, err = env.svc.Club.RemoveMember(ctx, mod.ID, club.ID, owner.ID)
	assertCode(t, err, domainerrors.CodeForbidden)

	_, err = env.svc.Club.RemoveMember(ctx, mod.ID, club.ID, stranger.ID)
	assertCode(t, err, domainerrors.CodeNotFound)

	club, err = env.svc.Club.RemoveMember(ctx, mod.ID, club.ID, member.ID)
	require.NoError(t, err)
	assert.False(t, club.HasMember(member.ID))
	assert.NotContains(t, env.reloadUser(t, member.ID).ClubIDs, club.ID)

	club, err = env.svc.Club.RemoveMember(ctx, owner.ID, club.ID, mod2.ID)
	require.NoError(t, err)
	assert.False(t, club.HasModerator(mod2.ID))

	club, err = env.svc.Club.LeaveClub(ctx, mod.ID, club.ID)
	require.NoError(t, err)
	assert.False(t, club.HasMember(mod.ID))
	assert.False(t, club.HasModerator(mod.ID), "leaving drops the moderator role")
	assert.Equal(t, 1, membership.Resolve(club, owner.ID).MemberCount)
}

func TestClubService_Moderators(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	member := env.createUser(t, "member")
	stranger := env.createUser(t, "stranger")

	club := env.createClub(t, owner, "Poetry")
	_, err := env.svc.Club.JoinClub(ctx, member.ID, club.ID)
	require.NoError(t, err)

	_, err = env.svc.Club.AddModerator(ctx, member.ID, club.ID, member.ID)
	assertCode(t, err, domainerrors.CodeForbidden)

	_, err = env.svc.Club.AddModerator(ctx, owner.ID, club.ID, stranger.ID)
	assertCode(t, err, domainerrors.CodeInvalidState)

	club, err = env.svc.Club.AddModerator(ctx, owner.ID, club.ID, member.ID)
	require.NoError(t, err)
	assert.True(t, membership.Resolve(club, member.ID).IsModerator)

	club, err = env.svc.Club.AddModerator(ctx, owner.ID, club.ID, member.ID)
	require.NoError(t, err)
	assert.Len(t, club.ModeratorIDs, 1)

	club, err = env.svc.Club.AddModerator(ctx, owner.ID, club.ID, owner.ID)
	require.NoError(t, err)
	assert.NotContains(t, club.ModeratorIDs, owner.ID, "the owner is never stored as a moderator")

	club, err = env.svc.Club.RemoveModerator(ctx, owner.ID, club.ID, member.ID)
	require.NoError(t, err)
	assert.False(t, membership.Resolve(club, member.ID).IsModerator)
	assert.True(t, membership.Resolve(club, member.ID).IsMember)
}

func TestClubService_UpdateClub(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	mod := env.createUser(t, "mod")
	member := env.createUser(t, "member")

	club := env.createClub(t, owner, "Classics")
	for _, u := range []*domain.User{mod, member} {
		_, err := env.svc.Club.JoinClub(ctx, u.ID, club.ID)
		require.NoError(t, err)
	}
	_, err := env.svc.Club.AddModerator(ctx, owner.ID, club.ID, mod.ID)
	require.NoError(t, err)

	name := "Classics Revisited"
	club, err = env.svc.Club.UpdateClub(ctx, mod.ID, club.ID, UpdateClubRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, club.Name)

	private := "private"
	_, err = env.svc.Club.UpdateClub(ctx, mod.ID, club.ID, UpdateClubRequest{Privacy: &private})
	assertCode(t, err, domainerrors.CodeForbidden)

	_, err = env.svc.Club.UpdateClub(ctx, member.ID, club.ID, UpdateClubRequest{Name: &name})
	assertCode(t, err, domainerrors.CodeForbidden)

	club, err = env.svc.Club.UpdateClub(ctx, owner.ID, club.ID, UpdateClubRequest{Privacy: &private})
	require.NoError(t, err)
	assert.Equal(t, domain.PrivacyPrivate, club.Privacy)

	tooSmall := 2
	_, err = env.svc.Club.UpdateClub(ctx, owner.ID, club.ID, UpdateClubRequest{MemberLimit: &tooSmall})
	assertCode(t, err, domainerrors.CodeInvalidState)

	bogus := "secret"
	_, err = env.svc.Club.UpdateClub(ctx, owner.ID, club.ID, UpdateClubRequest{Privacy: &bogus})
	assertCode(t, err, domainerrors.CodeValidation)
}

func TestClubService_AssignBook(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	club := env.createClub(t, alice, "Sci-Fi")
	_, err := env.svc.Club.JoinClub(ctx, bob.ID, club.ID)
	require.NoError(t, err)

	_, err = env.svc.Club.AssignBook(ctx, bob.ID, club.ID, "abc123", nil)
	assertCode(t, err, domainerrors.CodeForbidden)
	_, err = env.store.GetBookByGoogleID(ctx, "abc123")
	assert.Error(t, err, "a rejected assignment must not create the book")

	_, err = env.svc.Club.AddCheckpoint(ctx, alice.ID, club.ID, CheckpointInput{Title: "Part 1", Date: time.Now()})
	require.NoError(t, err)
	_, err = env.svc.Club.SetNextBook(ctx, alice.ID, club.ID, "next1")
	require.NoError(t, err)

	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	_, err = env.svc.Club.AssignBook(ctx, alice.ID, club.ID, "abc123", &start)
	require.NoError(t, err)

	club, err = env.svc.Club.Get(ctx, club.ID)
	require.NoError(t, err)
	assert.Equal(t, "abc123", club.CurrentBookGoogleID)
	assert.Empty(t, club.Checkpoints)
	assert.Empty(t, club.NextBookID)
	require.NotNil(t, club.CurrentBookStartDate)
	assert.True(t, start.Equal(*club.CurrentBookStartDate))

	book, err := env.store.GetBookByGoogleID(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, book.ID, club.CurrentBookID)
	assert.Equal(t, "Title of abc123", book.Title)

	assert.Len(t, env.notificationsOf(t, bob.ID, domain.NotifyBookAssigned), 1)
	assert.Empty(t, env.notificationsOf(t, alice.ID, domain.NotifyBookAssigned))
}

func TestClubService_RotateBook(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	club := env.createClub(t, alice, "Fantasy")

	_, err := env.svc.Club.RotateBook(ctx, alice.ID, club.ID)
	assertCode(t, err, domainerrors.CodeInvalidState)

	_, err = env.svc.Club.AssignBook(ctx, alice.ID, club.ID, "first", nil)
	require.NoError(t, err)
	_, err = env.svc.Club.SetNextBook(ctx, alice.ID, club.ID, "second")
	require.NoError(t, err)
	_, err = env.svc.Club.AddCheckpoint(ctx, alice.ID, club.ID, CheckpointInput{Title: "Ch 1-5", Date: time.Now()})
	require.NoError(t, err)

	club, err = env.svc.Club.RotateBook(ctx, alice.ID, club.ID)
	require.NoError(t, err)
	assert.Equal(t, "second", club.CurrentBookGoogleID)
	assert.Empty(t, club.NextBookID)
	assert.Empty(t, club.Checkpoints)
	require.NotNil(t, club.CurrentBookStartDate)
	assert.WithinDuration(t, time.Now(), *club.CurrentBookStartDate, time.Minute)

	club, err = env.svc.Club.RotateBook(ctx, alice.ID, club.ID)
	require.NoError(t, err)
	assert.False(t, club.HasCurrentBook())
	assert.Empty(t, club.CurrentBookGoogleID)
	assert.Nil(t, club.CurrentBookStartDate)

	_, err = env.svc.Club.RotateBook(ctx, alice.ID, club.ID)
	assertCode(t, err, domainerrors.CodeInvalidState)
}

func TestClubService_Checkpoints(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	member := env.createUser(t, "member")
	stranger := env.createUser(t, "stranger")

	club := env.createClub(t, owner, "Slow Readers")
	_, err := env.svc.Club.JoinClub(ctx, member.ID, club.ID)
	require.NoError(t, err)

	_, err = env.svc.Club.AddCheckpoint(ctx, member.ID, club.ID, CheckpointInput{Title: "x", Date: time.Now()})
	assertCode(t, err, domainerrors.CodeForbidden)

	_, err = env.svc.Club.AddCheckpoint(ctx, owner.ID, club.ID, CheckpointInput{Date: time.Now()})
	assertCode(t, err, domainerrors.CodeValidation)

	for _, title := range []string{"Week 1", "Week 2"} {
		_, err = env.svc.Club.AddCheckpoint(ctx, owner.ID, club.ID, CheckpointInput{Title: title, Date: time.Now(), Chapters: "1-4"})
		require.NoError(t, err)
	}
	assert.Len(t, env.notificationsOf(t, member.ID, domain.NotifyCheckpointAdded), 2)

	done := true
	club, err = env.svc.Club.UpdateCheckpoint(ctx, member.ID, club.ID, 1, CheckpointPatch{Completed: &done})
	require.NoError(t, err)
	assert.True(t, club.Checkpoints[1].Completed)
	assert.False(t, club.Checkpoints[0].Completed)

	title := "Renamed"
	_, err = env.svc.Club.UpdateCheckpoint(ctx, member.ID, club.ID, 0, CheckpointPatch{Title: &title})
	assertCode(t, err, domainerrors.CodeForbidden)

	_, err = env.svc.Club.UpdateCheckpoint(ctx, stranger.ID, club.ID, 0, CheckpointPatch{Completed: &done})
	assertCode(t, err, domainerrors.CodeForbidden)

	for _, index := range []int{-1, 2, 99} {
		_, err = env.svc.Club.UpdateCheckpoint(ctx, owner.ID, club.ID, index, CheckpointPatch{Completed: &done})
		assertCode(t, err, domainerrors.CodeNotFound)
	}

	club, err = env.svc.Club.UpdateCheckpoint(ctx, owner.ID, club.ID, 0, CheckpointPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", club.Checkpoints[0].Title)
	assert.Equal(t, "1-4", club.Checkpoints[0].Chapters)

	_, err = env.svc.Club.RemoveCheckpoint(ctx, owner.ID, club.ID, 5)
	assertCode(t, err, domainerrors.CodeNotFound)

	club, err = env.svc.Club.RemoveCheckpoint(ctx, owner.ID, club.ID, 0)
	require.NoError(t, err)
	require.Len(t, club.Checkpoints, 1)
	assert.Equal(t, "Week 2", club.Checkpoints[0].Title)
}

func TestClubService_UpdatesRejectBlankText(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	club := env.createClub(t, owner, "Classics")
	_, err := env.svc.Club.AddCheckpoint(ctx, owner.ID, club.ID, CheckpointInput{Title: "Week 1", Date: time.Now()})
	require.NoError(t, err)

	blank := "   "
	_, err = env.svc.Club.UpdateClub(ctx, owner.ID, club.ID, UpdateClubRequest{Name: &blank})
	assertCode(t, err, domainerrors.CodeValidation)

	_, err = env.svc.Club.UpdateCheckpoint(ctx, owner.ID, club.ID, 0, CheckpointPatch{Title: &blank})
	assertCode(t, err, domainerrors.CodeValidation)

	stored, err := env.svc.Club.Get(ctx, club.ID)
	require.NoError(t, err)
	assert.Equal(t, "Classics", stored.Name)
	assert.Equal(t, "Week 1", stored.Checkpoints[0].Title)

	padded := "  Classics Revisited  "
	stored, err = env.svc.Club.UpdateClub(ctx, owner.ID, club.ID, UpdateClubRequest{Name: &padded})
	require.NoError(t, err)
	assert.Equal(t, "Classics Revisited", stored.Name)
	assert.Equal(t, "  Classics Revisited  ", padded)
}

func TestClubService_EmptyCheckpointPatchIsNoOp(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	member := env.createUser(t, "member")
	club := env.createClub(t, owner, "Quiet")
	_, err := env.svc.Club.JoinClub(ctx, member.ID, club.ID)
	require.NoError(t, err)
	_, err = env.svc.Club.AddCheckpoint(ctx, owner.ID, club.ID, CheckpointInput{Title: "Week 1", Date: time.Now()})
	require.NoError(t, err)

	before, err := env.svc.Club.Get(ctx, club.ID)
	require.NoError(t, err)

	after, err := env.svc.Club.UpdateCheckpoint(ctx, member.ID, club.ID, 0, CheckpointPatch{})
	require.NoError(t, err)
	assert.True(t, before.UpdatedAt.Equal(after.UpdatedAt))
	assert.Equal(t, before.Checkpoints, after.Checkpoints)

	stored, err := env.svc.Club.Get(ctx, club.ID)
	require.NoError(t, err)
	assert.True(t, before.UpdatedAt.Equal(stored.UpdatedAt))

	_, err = env.svc.Club.UpdateCheckpoint(ctx, member.ID, club.ID, 3, CheckpointPatch{})
	assertCode(t, err, domainerrors.CodeNotFound)
}

func TestClubService_ConcurrentCheckpointToggles(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	club := env.createClub(t, owner, "Busy")

	const n = 6
	for i := range n {
		_, err := env.svc.Club.AddCheckpoint(ctx, owner.ID, club.ID, CheckpointInput{Title: "cp", Date: time.Now().Add(time.Duration(i) * time.Hour)})
		require.NoError(t, err)
	}

	done := true
	errs := make(chan error, n)
	for i := range n {
		go func() {
			_, err := env.svc.Club.UpdateCheckpoint(ctx, owner.ID, club.ID, i, CheckpointPatch{Completed: &done})
			errs <- err
		}()
	}
	for range n {
		require.NoError(t, <-errs)
	}

	club, err := env.svc.Club.Get(ctx, club.ID)
	require.NoError(t, err)
	for i, cp := range club.Checkpoints {
		assert.True(t, cp.Completed, "checkpoint %d lost its update", i)
	}
}

func TestClubService_DeleteClub(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	member := env.createUser(t, "member")
	club := env.createClub(t, owner, "Doomed")
	_, err := env.svc.Club.JoinClub(ctx, member.ID, club.ID)
	require.NoError(t, err)
	_, err = env.svc.Club.AssignBook(ctx, owner.ID, club.ID, "abc123", nil)
	require.NoError(t, err)
	thread, err := env.svc.Discussion.CreateThread(ctx, member.ID, CreateThreadRequest{ClubID: club.ID, Title: "Hi", Content: "First"})
	require.NoError(t, err)

	assertCode(t, env.svc.Club.DeleteClub(ctx, member.ID, club.ID), domainerrors.CodeForbidden)

	require.NoError(t, env.svc.Club.DeleteClub(ctx, owner.ID, club.ID))

	_, err = env.svc.Club.Get(ctx, club.ID)
	assertCode(t, err, domainerrors.CodeNotFound)
	_, err = env.svc.Discussion.Get(ctx, thread.ID)
	assertCode(t, err, domainerrors.CodeNotFound)
	assert.NotContains(t, env.reloadUser(t, owner.ID).ClubIDs, club.ID)
	assert.NotContains(t, env.reloadUser(t, member.ID).ClubIDs, club.ID)
}

func TestClubService_ForUser(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	a := env.createClub(t, alice, "A")
	env.createClub(t, bob, "B")

	clubs, err := env.svc.Club.ForUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, clubs, 1)
	assert.Equal(t, a.ID, clubs[0].ID)

	all, err := env.svc.Club.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
