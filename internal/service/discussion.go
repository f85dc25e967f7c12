package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/njohnson2897/bookmarkd-sub000/internal/content"
	"github.com/njohnson2897/bookmarkd-sub000/internal/domain"
	domainerrors "github.com/njohnson2897/bookmarkd-sub000/internal/errors"
	"github.com/njohnson2897/bookmarkd-sub000/internal/id"
	"github.com/njohnson2897/bookmarkd-sub000/internal/membership"
	"github.com/njohnson2897/bookmarkd-sub000/internal/store"
)

// DiscussionService manages club discussion threads, their embedded replies
// and the pin/lock moderation flags.
//
// Every write that changes a thread bumps its UpdatedAt. Idempotent no-ops
// (pinning a pinned thread) do not write.
type DiscussionService struct {
	store         *store.Store
	notifications *NotificationService
	logger        *slog.Logger
}

// NewDiscussionService creates a new discussion service.
func NewDiscussionService(store *store.Store, notifications *NotificationService, logger *slog.Logger) *DiscussionService {
	return &DiscussionService{
		store:         store,
		notifications: notifications,
		logger:        logger,
	}
}

// CreateThreadRequest contains the data for a new thread.
type CreateThreadRequest struct {
	ClubID       string `json:"club_id" validate:"required"`
	Title        string `json:"title" validate:"required,max=200"`
	Content      string `json:"content" validate:"required,max=20000"`
	Type         string `json:"thread_type" validate:"omitempty,thread_type"`
	ChapterRange string `json:"chapter_range" validate:"max=100"`
}

// ThreadUpdate is a partial thread edit. Nil fields are left alone.
type ThreadUpdate struct {
	Title        *string `json:"title" validate:"omitempty,min=1,max=200"`
	Content      *string `json:"content" validate:"omitempty,min=1,max=20000"`
	ChapterRange *string `json:"chapter_range" validate:"omitempty,max=100"`
}

// threadContext loads a thread with its club and the actor's snapshot.
// A thread whose club is gone yields an empty snapshot.
func (s *DiscussionService) threadContext(ctx context.Context, actorID, threadID string) (*domain.Thread, membership.Snapshot, error) {
	thread, err := s.store.Threads.Get(ctx, threadID)
	if err != nil {
		return nil, membership.Snapshot{}, notFound(err, "get thread", "thread")
	}

	club, err := s.store.Clubs.Get(ctx, thread.ClubID)
	if errors.Is(err, store.ErrNotFound) {
		return thread, membership.Snapshot{}, nil
	}
	if err != nil {
		return nil, membership.Snapshot{}, fmt.Errorf("get club: %w", err)
	}
	return thread, membership.Resolve(club, actorID), nil
}

// mutateThread applies fn to the thread in a single-document transaction.
func (s *DiscussionService) mutateThread(ctx context.Context, op, threadID string, fn func(*domain.Thread) error) (*domain.Thread, error) {
	thread, err := s.store.Threads.Mutate(ctx, threadID, fn)
	if err != nil {
		return nil, notFound(err, op, "thread")
	}
	return thread, nil
}

// Get returns the thread with threadID.
func (s *DiscussionService) Get(ctx context.Context, threadID string) (*domain.Thread, error) {
	thread, err := s.store.Threads.Get(ctx, threadID)
	if err != nil {
		return nil, notFound(err, "get thread", "thread")
	}
	return thread, nil
}

// ListThreads returns the club's threads, pinned first and then newest
// first. While the club has a current book only that book's threads are
// listed.
func (s *DiscussionService) ListThreads(ctx context.Context, clubID string) ([]*domain.Thread, error) {
	club, err := s.store.Clubs.Get(ctx, clubID)
	if err != nil {
		return nil, notFound(err, "get club", "club")
	}

	threads, err := s.store.ThreadsForClub(ctx, clubID)
	if err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}

	if club.HasCurrentBook() {
		threads = slices.DeleteFunc(threads, func(t *domain.Thread) bool {
			return t.BookID != club.CurrentBookID
		})
	}

	slices.SortStableFunc(threads, func(a, b *domain.Thread) int {
		if a.IsPinned != b.IsPinned {
			if a.IsPinned {
				return -1
			}
			return 1
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return threads, nil
}

// CreateThread starts a thread bound to the club's current book. The actor
// must be a member and the club must have a current book.
func (s *DiscussionService) CreateThread(ctx context.Context, actorID string, req CreateThreadRequest) (*domain.Thread, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Content = content.Normalize(req.Content)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	club, err := s.store.Clubs.Get(ctx, req.ClubID)
	if err != nil {
		return nil, notFound(err, "get club", "club")
	}
	if !membership.Resolve(club, actorID).CanParticipate() {
		return nil, domainerrors.Forbidden("only members can start discussions")
	}
	if !club.HasCurrentBook() {
		return nil, domainerrors.InvalidState("club has no current book to discuss")
	}

	threadType := domain.ThreadType(req.Type)
	if threadType == "" {
		threadType = domain.ThreadGeneral
	}

	threadID, err := id.Generate(id.PrefixThread)
	if err != nil {
		return nil, fmt.Errorf("generate thread ID: %w", err)
	}
	thread := &domain.Thread{
		Base:         domain.Base{ID: threadID},
		ClubID:       club.ID,
		BookID:       club.CurrentBookID,
		BookGoogleID: club.CurrentBookGoogleID,
		AuthorID:     actorID,
		Title:        req.Title,
		Content:      req.Content,
		Type:         threadType,
		ChapterRange: strings.TrimSpace(req.ChapterRange),
		Replies:      []domain.ThreadReply{},
	}
	thread.InitTimestamps()

	if err := s.store.Threads.Create(ctx, thread); err != nil {
		return nil, fmt.Errorf("create thread: %w", err)
	}

	s.notifications.NotifyAll(ctx, otherParticipants(club, actorID), domain.Notification{
		Type:       domain.NotifyThreadCreated,
		FromUserID: actorID,
		ClubID:     club.ID,
		ThreadID:   thread.ID,
	})

	s.logger.Info("thread created", "thread_id", thread.ID, "club_id", club.ID, "author_id", actorID)
	return thread, nil
}

// UpdateThread edits a thread's text. Only its author may edit it.
func (s *DiscussionService) UpdateThread(ctx context.Context, actorID, threadID string, patch ThreadUpdate) (*domain.Thread, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	trimPresent(&patch.Title, &patch.ChapterRange)
	if patch.Content != nil {
		normalized := content.Normalize(*patch.Content)
		patch.Content = &normalized
	}
	if err := validate.Validate(patch); err != nil {
		return nil, err
	}

	return s.mutateThread(ctx, "update thread", threadID, func(t *domain.Thread) error {
		if t.AuthorID != actorID {
			return domainerrors.Forbidden("only the author can edit this thread")
		}
		if patch.Title != nil {
			t.Title = *patch.Title
		}
		if patch.Content != nil {
			t.Content = *patch.Content
		}
		if patch.ChapterRange != nil {
			t.ChapterRange = *patch.ChapterRange
		}
		t.Touch()
		return nil
	})
}

// DeleteThread removes a thread with its replies. The author, the club owner
// and moderators may delete it.
func (s *DiscussionService) DeleteThread(ctx context.Context, actorID, threadID string) error {
	if err := requireActor(actorID); err != nil {
		return err
	}

	thread, snap, err := s.threadContext(ctx, actorID, threadID)
	if err != nil {
		return err
	}
	if thread.AuthorID != actorID && !snap.CanModerate() {
		return domainerrors.Forbidden("only the author, the owner or a moderator can delete this thread")
	}

	if err := s.store.Threads.Delete(ctx, threadID); err != nil {
		return fmt.Errorf("delete thread: %w", err)
	}

	s.logger.Info("thread deleted", "thread_id", threadID, "club_id", thread.ClubID, "deleted_by", actorID)
	return nil
}

// AddReply appends a reply by the actor. The actor must be a member and the
// thread must not be locked. The thread author is notified.
func (s *DiscussionService) AddReply(ctx context.Context, actorID, threadID, text string) (*domain.Thread, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	text = content.Normalize(text)
	if text == "" {
		return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{"text": "is required"})
	}

	_, snap, err := s.threadContext(ctx, actorID, threadID)
	if err != nil {
		return nil, err
	}
	if !snap.CanParticipate() {
		return nil, domainerrors.Forbidden("only members can reply")
	}

	reply := domain.ThreadReply{
		ID:        uuid.NewString(),
		UserID:    actorID,
		Text:      text,
		CreatedAt: time.Now(),
	}

	thread, err := s.mutateThread(ctx, "add reply", threadID, func(t *domain.Thread) error {
		if t.IsLocked {
			return domainerrors.InvalidState("thread is locked")
		}
		t.AppendReply(reply)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifications.Send(ctx, domain.Notification{
		UserID:     thread.AuthorID,
		Type:       domain.NotifyThreadReply,
		FromUserID: actorID,
		ClubID:     thread.ClubID,
		ThreadID:   thread.ID,
	})
	return thread, nil
}

// DeleteReply removes a reply. The reply author, the thread author, the
// club owner and moderators may remove it. A missing reply is NOT_FOUND.
func (s *DiscussionService) DeleteReply(ctx context.Context, actorID, threadID, replyID string) (*domain.Thread, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}

	_, snap, err := s.threadContext(ctx, actorID, threadID)
	if err != nil {
		return nil, err
	}

	return s.mutateThread(ctx, "delete reply", threadID, func(t *domain.Thread) error {
		reply := t.FindReply(replyID)
		if reply == nil {
			return domainerrors.NotFound("reply not found")
		}
		if reply.UserID != actorID && t.AuthorID != actorID && !snap.CanModerate() {
			return domainerrors.Forbidden("you cannot delete this reply")
		}
		t.RemoveReply(replyID)
		return nil
	})
}

// PinThread pins a thread. Owner or moderator only; idempotent.
func (s *DiscussionService) PinThread(ctx context.Context, actorID, threadID string) (*domain.Thread, error) {
	return s.setFlag(ctx, "pin thread", actorID, threadID, func(t *domain.Thread) *bool { return &t.IsPinned }, true)
}

// UnpinThread unpins a thread. Owner or moderator only; idempotent.
func (s *DiscussionService) UnpinThread(ctx context.Context, actorID, threadID string) (*domain.Thread, error) {
	return s.setFlag(ctx, "unpin thread", actorID, threadID, func(t *domain.Thread) *bool { return &t.IsPinned }, false)
}

// LockThread closes a thread to new replies. Owner or moderator only; idempotent.
func (s *DiscussionService) LockThread(ctx context.Context, actorID, threadID string) (*domain.Thread, error) {
	return s.setFlag(ctx, "lock thread", actorID, threadID, func(t *domain.Thread) *bool { return &t.IsLocked }, true)
}

// UnlockThread reopens a thread. Owner or moderator only; idempotent.
func (s *DiscussionService) UnlockThread(ctx context.Context, actorID, threadID string) (*domain.Thread, error) {
	return s.setFlag(ctx, "unlock thread", actorID, threadID, func(t *domain.Thread) *bool { return &t.IsLocked }, false)
}

func (s *DiscussionService) setFlag(ctx context.Context, op, actorID, threadID string, field func(*domain.Thread) *bool, value bool) (*domain.Thread, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}

	_, snap, err := s.threadContext(ctx, actorID, threadID)
	if err != nil {
		return nil, err
	}
	if !snap.CanModerate() {
		return nil, domainerrors.Forbidden("only the owner or a moderator can do this")
	}

	thread, err := s.mutateThread(ctx, op, threadID, func(t *domain.Thread) error {
		flag := field(t)
		if *flag == value {
			return store.ErrNoChange
		}
		*flag = value
		t.Touch()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("thread moderated", "thread_id", threadID, "action", op, "user_id", actorID)
	return thread, nil
}
