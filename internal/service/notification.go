package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/njohnson2897/bookmarkd-sub000/internal/domain"
	domainerrors "github.com/njohnson2897/bookmarkd-sub000/internal/errors"
	"github.com/njohnson2897/bookmarkd-sub000/internal/id"
	"github.com/njohnson2897/bookmarkd-sub000/internal/store"
)

// NotificationService records polled notifications and serves them back to
// their target user.
type NotificationService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewNotificationService creates a new notification service.
func NewNotificationService(store *store.Store, logger *slog.Logger) *NotificationService {
	return &NotificationService{
		store:  store,
		logger: logger,
	}
}

// Notify stores n for n.UserID. Self-directed notifications are dropped.
func (s *NotificationService) Notify(ctx context.Context, n domain.Notification) error {
	if n.UserID == "" || n.IsSelfDirected() {
		return nil
	}

	notificationID, err := id.Generate(id.PrefixNotification)
	if err != nil {
		return fmt.Errorf("generate notification ID: %w", err)
	}
	n.ID = notificationID
	n.Read = false
	n.InitTimestamps()

	if err := s.store.Notifications.Create(ctx, &n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// Send delivers n like Notify but logs a failure instead of returning it.
// Callers use it once their own write has committed, so a lost notification
// never fails a mutation that has already been applied.
func (s *NotificationService) Send(ctx context.Context, n domain.Notification) {
	if err := s.Notify(ctx, n); err != nil {
		s.logger.Warn("failed to deliver notification",
			"type", n.Type,
			"user_id", n.UserID,
			"error", err,
		)
	}
}

// NotifyAll sends a copy of template to every recipient except the actor.
func (s *NotificationService) NotifyAll(ctx context.Context, recipients []string, template domain.Notification) {
	for _, userID := range recipients {
		n := template
		n.UserID = userID
		s.Send(ctx, n)
	}
}

// List returns userID's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool) ([]*domain.Notification, error) {
	if err := requireActor(userID); err != nil {
		return nil, err
	}

	all, err := s.store.NotificationsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	if !unreadOnly {
		return all, nil
	}

	unread := make([]*domain.Notification, 0, len(all))
	for _, n := range all {
		if !n.Read {
			unread = append(unread, n)
		}
	}
	return unread, nil
}

// MarkRead marks one of the actor's notifications as read. A notification
// addressed to someone else is reported as missing.
func (s *NotificationService) MarkRead(ctx context.Context, actorID, notificationID string) (*domain.Notification, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}

	n, err := s.store.Notifications.Mutate(ctx, notificationID, func(n *domain.Notification) error {
		if n.UserID != actorID {
			return domainerrors.NotFound("notification not found")
		}
		if n.Read {
			return store.ErrNoChange
		}
		n.Read = true
		n.Touch()
		return nil
	})
	if err != nil {
		return nil, notFound(err, "mark notification read", "notification")
	}
	return n, nil
}

// MarkAllRead marks every unread notification of the actor as read and
// returns how many changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, actorID string) (int, error) {
	unread, err := s.List(ctx, actorID, true)
	if err != nil {
		return 0, err
	}

	marked := 0
	for _, n := range unread {
		if _, err := s.MarkRead(ctx, actorID, n.ID); err != nil {
			if domainerrors.Is(err, domainerrors.ErrNotFound) {
				continue
			}
			return marked, err
		}
		marked++
	}

	if marked > 0 {
		s.logger.Info("notifications marked read", "user_id", actorID, "count", marked)
	}
	return marked, nil
}

// UnreadCount returns the number of unread notifications of userID.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	unread, err := s.List(ctx, userID, true)
	if err != nil {
		return 0, err
	}
	return len(unread), nil
}
