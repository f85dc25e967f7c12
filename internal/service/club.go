package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/njohnson2897/bookmarkd-sub000/internal/content"
	"github.com/njohnson2897/bookmarkd-sub000/internal/domain"
	domainerrors "github.com/njohnson2897/bookmarkd-sub000/internal/errors"
	"github.com/njohnson2897/bookmarkd-sub000/internal/id"
	"github.com/njohnson2897/bookmarkd-sub000/internal/membership"
	"github.com/njohnson2897/bookmarkd-sub000/internal/store"
)

// ClubService runs the club lifecycle: membership and roles, the
// current/next book state machine and the reading checkpoints.
type ClubService struct {
	store         *store.Store
	books         *BookService
	notifications *NotificationService
	logger        *slog.Logger
}

// NewClubService creates a new club service.
func NewClubService(store *store.Store, books *BookService, notifications *NotificationService, logger *slog.Logger) *ClubService {
	return &ClubService{
		store:         store,
		books:         books,
		notifications: notifications,
		logger:        logger,
	}
}

// CreateClubRequest contains the data for a new club.
type CreateClubRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=2000"`
	Privacy     string `json:"privacy" validate:"omitempty,privacy"`
	MemberLimit *int   `json:"member_limit" validate:"omitempty,gte=2,lte=10000"`
}

// UpdateClubRequest is a partial club change. Nil fields are left alone.
type UpdateClubRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Privacy     *string `json:"privacy" validate:"omitempty,privacy"`
	MemberLimit *int    `json:"member_limit" validate:"omitempty,gte=2,lte=10000"`
}

// CheckpointInput contains the data for a new checkpoint.
type CheckpointInput struct {
	Title    string    `json:"title" validate:"required,max=200"`
	Date     time.Time `json:"date" validate:"required"`
	Chapters string    `json:"chapters" validate:"max=100"`
}

// CheckpointPatch is a partial checkpoint change. Nil fields are left alone.
type CheckpointPatch struct {
	Title     *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Date      *time.Time `json:"date"`
	Chapters  *string    `json:"chapters" validate:"omitempty,max=100"`
	Completed *bool      `json:"completed"`
}

// onlyCompletion reports whether the patch touches nothing but Completed,
// which any member may toggle.
func (p CheckpointPatch) onlyCompletion() bool {
	return p.Title == nil && p.Date == nil && p.Chapters == nil
}

func (p CheckpointPatch) empty() bool {
	return p.onlyCompletion() && p.Completed == nil
}

// Get returns the club with clubID.
func (s *ClubService) Get(ctx context.Context, clubID string) (*domain.Club, error) {
	club, err := s.store.Clubs.Get(ctx, clubID)
	if err != nil {
		return nil, notFound(err, "get club", "club")
	}
	return club, nil
}

// List returns every club, newest first.
func (s *ClubService) List(ctx context.Context) ([]*domain.Club, error) {
	clubs, err := store.Collect(s.store.Clubs.List(ctx))
	if err != nil {
		return nil, fmt.Errorf("list clubs: %w", err)
	}
	slices.SortFunc(clubs, func(a, b *domain.Club) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return clubs, nil
}

// ForUser returns the clubs userID owns or belongs to.
func (s *ClubService) ForUser(ctx context.Context, userID string) ([]*domain.Club, error) {
	user, err := s.store.Users.Get(ctx, userID)
	if err != nil {
		return nil, notFound(err, "get user", "user")
	}

	clubs := make([]*domain.Club, 0, len(user.ClubIDs))
	for _, clubID := range user.ClubIDs {
		club, err := s.store.Clubs.Get(ctx, clubID)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get club: %w", err)
		}
		clubs = append(clubs, club)
	}
	return clubs, nil
}

// mutate runs fn against a fresh membership snapshot of the actor inside a
// single-document transaction. fn may be replayed on a write conflict.
func (s *ClubService) mutate(ctx context.Context, op, actorID, clubID string, fn func(*domain.Club, membership.Snapshot) error) (*domain.Club, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	club, err := s.store.Clubs.Mutate(ctx, clubID, func(c *domain.Club) error {
		return fn(c, membership.Resolve(c, actorID))
	})
	if err != nil {
		return nil, notFound(err, op, "club")
	}
	return club, nil
}

// moderate is mutate restricted to the owner and moderators.
func (s *ClubService) moderate(ctx context.Context, op, actorID, clubID string, fn func(*domain.Club, membership.Snapshot) error) (*domain.Club, error) {
	return s.mutate(ctx, op, actorID, clubID, func(c *domain.Club, snap membership.Snapshot) error {
		if !snap.CanModerate() {
			return domainerrors.Forbidden("only the owner or a moderator can do this")
		}
		return fn(c, snap)
	})
}

// requireModerator loads the club and checks the actor's powers before any
// side effects such as book creation.
func (s *ClubService) requireModerator(ctx context.Context, actorID, clubID string) (*domain.Club, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	club, err := s.Get(ctx, clubID)
	if err != nil {
		return nil, err
	}
	if !membership.Resolve(club, actorID).CanModerate() {
		return nil, domainerrors.Forbidden("only the owner or a moderator can do this")
	}
	return club, nil
}

// otherParticipants lists everyone in the club except the actor.
func otherParticipants(c *domain.Club, actorID string) []string {
	return slices.DeleteFunc(c.ParticipantIDs(), func(userID string) bool { return userID == actorID })
}

// CreateClub creates a club owned by the actor.
func (s *ClubService) CreateClub(ctx context.Context, actorID string, req CreateClubRequest) (*domain.Club, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	privacy := domain.Privacy(req.Privacy)
	if privacy == "" {
		privacy = domain.PrivacyPublic
	}

	clubID, err := id.Generate(id.PrefixClub)
	if err != nil {
		return nil, fmt.Errorf("generate club ID: %w", err)
	}

	club := &domain.Club{
		Base:         domain.Base{ID: clubID},
		Name:         req.Name,
		Description:  content.Normalize(req.Description),
		OwnerID:      actorID,
		MemberIDs:    []string{},
		ModeratorIDs: []string{},
		Privacy:      privacy,
		MemberLimit:  req.MemberLimit,
		Checkpoints:  []domain.ReadingCheckpoint{},
	}
	club.InitTimestamps()

	if err := s.store.Clubs.Create(ctx, club); err != nil {
		return nil, fmt.Errorf("create club: %w", err)
	}
	if err := s.linkUser(ctx, actorID, club.ID); err != nil {
		return nil, err
	}

	s.logger.Info("club created", "club_id", club.ID, "owner_id", actorID, "privacy", privacy)
	return club, nil
}

// UpdateClub edits club settings. Moderators may edit the name, description
// and member limit; only the owner may change privacy.
func (s *ClubService) UpdateClub(ctx context.Context, actorID, clubID string, req UpdateClubRequest) (*domain.Club, error) {
	trimPresent(&req.Name)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	return s.moderate(ctx, "update club", actorID, clubID, func(c *domain.Club, snap membership.Snapshot) error {
		if req.Privacy != nil && domain.Privacy(*req.Privacy) != c.Privacy && !snap.IsOwner {
			return domainerrors.Forbidden("only the owner can change club privacy")
		}
		if req.MemberLimit != nil && *req.MemberLimit < snap.MemberCount {
			return domainerrors.InvalidStatef("member limit cannot be below the current %d members", snap.MemberCount)
		}

		if req.Name != nil {
			c.Name = *req.Name
		}
		if req.Description != nil {
			c.Description = content.Normalize(*req.Description)
		}
		if req.Privacy != nil {
			c.Privacy = domain.Privacy(*req.Privacy)
		}
		if req.MemberLimit != nil {
			c.MemberLimit = req.MemberLimit
		}
		c.Touch()
		return nil
	})
}

// DeleteClub removes a club and everything scoped to it. Only the owner may
// delete it. The club reference is dropped from every participant first.
func (s *ClubService) DeleteClub(ctx context.Context, actorID, clubID string) error {
	if err := requireActor(actorID); err != nil {
		return err
	}

	club, err := s.Get(ctx, clubID)
	if err != nil {
		return err
	}
	if !membership.Resolve(club, actorID).IsOwner {
		return domainerrors.Forbidden("only the owner can delete this club")
	}

	for _, userID := range club.ParticipantIDs() {
		if err := s.unlinkUser(ctx, userID, clubID); err != nil {
			return err
		}
	}

	threads, err := s.store.ThreadsForClub(ctx, clubID)
	if err != nil {
		return fmt.Errorf("list threads: %w", err)
	}
	for _, t := range threads {
		if err := s.store.Threads.Delete(ctx, t.ID); err != nil {
			return fmt.Errorf("delete thread: %w", err)
		}
	}

	requests, err := s.store.JoinRequestsForClub(ctx, clubID)
	if err != nil {
		return fmt.Errorf("list join requests: %w", err)
	}
	for _, r := range requests {
		if err := s.store.JoinRequests.Delete(ctx, r.ID); err != nil {
			return fmt.Errorf("delete join request: %w", err)
		}
	}

	invitations, err := s.store.InvitationsForClub(ctx, clubID)
	if err != nil {
		return fmt.Errorf("list invitations: %w", err)
	}
	for _, inv := range invitations {
		if err := s.store.Invitations.Delete(ctx, inv.ID); err != nil {
			return fmt.Errorf("delete invitation: %w", err)
		}
	}

	if err := s.store.Clubs.Delete(ctx, clubID); err != nil {
		return fmt.Errorf("delete club: %w", err)
	}

	s.logger.Info("club deleted",
		"club_id", clubID,
		"owner_id", actorID,
		"threads", len(threads),
	)
	return nil
}

// JoinClub adds the actor as a member. Joining a club you already belong to
// is a no-op. Invite-only clubs cannot be joined directly.
func (s *ClubService) JoinClub(ctx context.Context, actorID, clubID string) (*domain.Club, error) {
	club, err := s.mutate(ctx, "join club", actorID, clubID, func(c *domain.Club, snap membership.Snapshot) error {
		if snap.IsMember {
			return store.ErrNoChange
		}
		if !snap.CanJoin {
			return domainerrors.Forbidden("this club is invite-only")
		}
		return admit(c, actorID)
	})
	if err != nil {
		return nil, err
	}

	if err := s.linkUser(ctx, actorID, clubID); err != nil {
		return nil, err
	}
	s.logger.Info("club joined", "club_id", clubID, "user_id", actorID)
	return club, nil
}

// admit adds userID as a member, enforcing the member limit.
func admit(c *domain.Club, userID string) error {
	if c.HasMember(userID) || c.OwnerID == userID {
		return store.ErrNoChange
	}
	if c.IsFull() {
		return domainerrors.InvalidState("club is full")
	}
	c.AddMember(userID)
	c.Touch()
	return nil
}

// LeaveClub removes the actor from the club, dropping any moderator role.
// The owner cannot leave.
func (s *ClubService) LeaveClub(ctx context.Context, actorID, clubID string) (*domain.Club, error) {
	club, err := s.mutate(ctx, "leave club", actorID, clubID, func(c *domain.Club, snap membership.Snapshot) error {
		if snap.IsOwner {
			return domainerrors.InvalidState("the owner cannot leave the club")
		}
		if !snap.IsMember {
			return domainerrors.InvalidState("you are not a member of this club")
		}
		c.RemoveMember(actorID)
		c.Touch()
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.unlinkUser(ctx, actorID, clubID); err != nil {
		return nil, err
	}
	s.logger.Info("club left", "club_id", clubID, "user_id", actorID)
	return club, nil
}

// RemoveMember removes userID from the club. Moderators cannot remove other
// moderators, and nobody can remove the owner.
func (s *ClubService) RemoveMember(ctx context.Context, actorID, clubID, userID string) (*domain.Club, error) {
	club, err := s.moderate(ctx, "remove member", actorID, clubID, func(c *domain.Club, snap membership.Snapshot) error {
		if userID == c.OwnerID {
			return domainerrors.Forbidden("the owner cannot be removed")
		}
		if !c.HasMember(userID) {
			return domainerrors.NotFound("member not found")
		}
		if c.HasModerator(userID) && !snap.IsOwner {
			return domainerrors.Forbidden("only the owner can remove a moderator")
		}
		c.RemoveMember(userID)
		c.Touch()
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.unlinkUser(ctx, userID, clubID); err != nil {
		return nil, err
	}
	s.logger.Info("member removed", "club_id", clubID, "user_id", userID, "removed_by", actorID)
	return club, nil
}

// AddModerator grants userID moderator powers. Only the owner may do this,
// and only for existing members.
func (s *ClubService) AddModerator(ctx context.Context, actorID, clubID, userID string) (*domain.Club, error) {
	return s.mutate(ctx, "add moderator", actorID, clubID, func(c *domain.Club, snap membership.Snapshot) error {
		if !snap.IsOwner {
			return domainerrors.Forbidden("only the owner can manage moderators")
		}
		if userID == c.OwnerID || c.HasModerator(userID) {
			return store.ErrNoChange
		}
		if !c.HasMember(userID) {
			return domainerrors.InvalidState("only members can become moderators")
		}
		c.ModeratorIDs = append(c.ModeratorIDs, userID)
		c.Touch()
		return nil
	})
}

// RemoveModerator revokes userID's moderator powers. Only the owner may do this.
func (s *ClubService) RemoveModerator(ctx context.Context, actorID, clubID, userID string) (*domain.Club, error) {
	return s.mutate(ctx, "remove moderator", actorID, clubID, func(c *domain.Club, snap membership.Snapshot) error {
		if !snap.IsOwner {
			return domainerrors.Forbidden("only the owner can manage moderators")
		}
		if !c.HasModerator(userID) {
			return store.ErrNoChange
		}
		c.ModeratorIDs = slices.DeleteFunc(c.ModeratorIDs, func(uid string) bool { return uid == userID })
		c.Touch()
		return nil
	})
}

// AssignBook makes googleID the club's current book, starting at startDate
// (now when nil). Checkpoints and any staged next book are discarded.
func (s *ClubService) AssignBook(ctx context.Context, actorID, clubID, googleID string, startDate *time.Time) (*domain.Club, error) {
	if _, err := s.requireModerator(ctx, actorID, clubID); err != nil {
		return nil, err
	}

	book, err := s.books.FindOrCreate(ctx, googleID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	if startDate != nil {
		start = *startDate
	}

	club, err := s.moderate(ctx, "assign book", actorID, clubID, func(c *domain.Club, _ membership.Snapshot) error {
		c.CurrentBookID = book.ID
		c.CurrentBookGoogleID = book.GoogleID
		c.CurrentBookStartDate = &start
		c.NextBookID = ""
		c.NextBookGoogleID = ""
		c.Checkpoints = []domain.ReadingCheckpoint{}
		c.Touch()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifications.NotifyAll(ctx, otherParticipants(club, actorID), domain.Notification{
		Type:       domain.NotifyBookAssigned,
		FromUserID: actorID,
		ClubID:     clubID,
	})

	s.logger.Info("book assigned", "club_id", clubID, "google_id", book.GoogleID, "assigned_by", actorID)
	return club, nil
}

// SetNextBook stages googleID as the book that RotateBook will promote.
func (s *ClubService) SetNextBook(ctx context.Context, actorID, clubID, googleID string) (*domain.Club, error) {
	if _, err := s.requireModerator(ctx, actorID, clubID); err != nil {
		return nil, err
	}

	book, err := s.books.FindOrCreate(ctx, googleID)
	if err != nil {
		return nil, err
	}

	return s.moderate(ctx, "set next book", actorID, clubID, func(c *domain.Club, _ membership.Snapshot) error {
		if c.NextBookID == book.ID {
			return store.ErrNoChange
		}
		c.NextBookID = book.ID
		c.NextBookGoogleID = book.GoogleID
		c.Touch()
		return nil
	})
}

// RotateBook promotes the next book to current with a fresh start date, or
// returns the club to having no book when nothing is staged. A club without
// a current book cannot rotate.
func (s *ClubService) RotateBook(ctx context.Context, actorID, clubID string) (*domain.Club, error) {
	club, err := s.moderate(ctx, "rotate book", actorID, clubID, func(c *domain.Club, _ membership.Snapshot) error {
		if !c.HasCurrentBook() {
			return domainerrors.InvalidState("club has no current book to rotate")
		}

		if c.NextBookID != "" {
			now := time.Now()
			c.CurrentBookID = c.NextBookID
			c.CurrentBookGoogleID = c.NextBookGoogleID
			c.CurrentBookStartDate = &now
			c.NextBookID = ""
			c.NextBookGoogleID = ""
			c.Checkpoints = []domain.ReadingCheckpoint{}
		} else {
			c.ClearBooks()
		}
		c.Touch()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifications.NotifyAll(ctx, otherParticipants(club, actorID), domain.Notification{
		Type:       domain.NotifyBookRotated,
		FromUserID: actorID,
		ClubID:     clubID,
	})

	s.logger.Info("book rotated", "club_id", clubID, "google_id", club.CurrentBookGoogleID, "rotated_by", actorID)
	return club, nil
}

// AddCheckpoint appends a checkpoint to the reading schedule.
func (s *ClubService) AddCheckpoint(ctx context.Context, actorID, clubID string, in CheckpointInput) (*domain.Club, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validate.Validate(in); err != nil {
		return nil, err
	}

	club, err := s.moderate(ctx, "add checkpoint", actorID, clubID, func(c *domain.Club, _ membership.Snapshot) error {
		c.Checkpoints = append(c.Checkpoints, domain.ReadingCheckpoint{
			Title:    in.Title,
			Date:     in.Date,
			Chapters: strings.TrimSpace(in.Chapters),
		})
		c.Touch()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifications.NotifyAll(ctx, otherParticipants(club, actorID), domain.Notification{
		Type:       domain.NotifyCheckpointAdded,
		FromUserID: actorID,
		ClubID:     clubID,
	})
	return club, nil
}

// UpdateCheckpoint patches the checkpoint at index. Toggling Completed is
// open to every member; any other field needs owner or moderator powers.
// An index outside the schedule is NOT_FOUND.
func (s *ClubService) UpdateCheckpoint(ctx context.Context, actorID, clubID string, index int, patch CheckpointPatch) (*domain.Club, error) {
	trimPresent(&patch.Title, &patch.Chapters)
	if err := validate.Validate(patch); err != nil {
		return nil, err
	}

	return s.mutate(ctx, "update checkpoint", actorID, clubID, func(c *domain.Club, snap membership.Snapshot) error {
		if patch.onlyCompletion() {
			if !snap.CanParticipate() {
				return domainerrors.Forbidden("only members can update checkpoints")
			}
		} else if !snap.CanModerate() {
			return domainerrors.Forbidden("only the owner or a moderator can edit checkpoints")
		}

		if index < 0 || index >= len(c.Checkpoints) {
			return domainerrors.NotFound("checkpoint not found")
		}
		if patch.empty() {
			return store.ErrNoChange
		}

		cp := &c.Checkpoints[index]
		if patch.Title != nil {
			cp.Title = *patch.Title
		}
		if patch.Date != nil {
			cp.Date = *patch.Date
		}
		if patch.Chapters != nil {
			cp.Chapters = *patch.Chapters
		}
		if patch.Completed != nil {
			cp.Completed = *patch.Completed
		}
		c.Touch()
		return nil
	})
}

// RemoveCheckpoint deletes the checkpoint at index.
func (s *ClubService) RemoveCheckpoint(ctx context.Context, actorID, clubID string, index int) (*domain.Club, error) {
	return s.moderate(ctx, "remove checkpoint", actorID, clubID, func(c *domain.Club, _ membership.Snapshot) error {
		if index < 0 || index >= len(c.Checkpoints) {
			return domainerrors.NotFound("checkpoint not found")
		}
		c.Checkpoints = slices.Delete(c.Checkpoints, index, index+1)
		c.Touch()
		return nil
	})
}

// linkUser records clubID on the user's club list.
func (s *ClubService) linkUser(ctx context.Context, userID, clubID string) error {
	_, err := s.store.Users.Mutate(ctx, userID, func(u *domain.User) error {
		if !u.AddClub(clubID) {
			return store.ErrNoChange
		}
		return nil
	})
	if err != nil {
		return notFound(err, "link club to user", "user")
	}
	return nil
}

// unlinkUser drops clubID from the user's club list. Missing users are skipped.
func (s *ClubService) unlinkUser(ctx context.Context, userID, clubID string) error {
	_, err := s.store.Users.Mutate(ctx, userID, func(u *domain.User) error {
		if !u.RemoveClub(clubID) {
			return store.ErrNoChange
		}
		return nil
	})
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("unlink club from user: %w", err)
	}
	return nil
}
