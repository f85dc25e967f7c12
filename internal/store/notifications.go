package store

import (
	"context"

	"github.com/njohnson2897/bookmarkd-sub000/internal/domain"
)

// NotificationLookupUser lists a user's notifications newest first.
const NotificationLookupUser = "user"

func (s *Store) initNotifications() {
	s.Notifications = NewEntity[domain.Notification](s, prefixNotification, func(n *domain.Notification) string { return n.ID }).
		WithLookup(NotificationLookupUser, func(n *domain.Notification) []string {
			return []string{n.UserID + ":" + invertedTimestamp(n.CreatedAt)}
		})
}

// NotificationsForUser returns userID's notifications, newest first.
func (s *Store) NotificationsForUser(ctx context.Context, userID string) ([]*domain.Notification, error) {
	return Collect(s.Notifications.ListByLookup(ctx, NotificationLookupUser, userID))
}
