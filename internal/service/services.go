package service

import (
	"log/slog"

	"github.com/njohnson2897/bookmarkd-sub000/internal/auth"
	"github.com/njohnson2897/bookmarkd-sub000/internal/store"
)

// Services groups every business service used by the API surfaces.
type Services struct {
	Auth         *AuthService
	User         *UserService
	Book         *BookService
	Review       *ReviewService
	Social       *SocialService
	Notification *NotificationService
	Club         *ClubService
	Discussion   *DiscussionService
	Feed         *FeedService
	Contact      *ContactService
}

// NewServices wires every service over one store. metadata may be nil to
// disable book back-fill.
func NewServices(store *store.Store, tokens *auth.TokenService, metadata MetadataSource, logger *slog.Logger) *Services {
	notifications := NewNotificationService(store, logger)
	books := NewBookService(store, metadata, logger)

	return &Services{
		Auth:         NewAuthService(store, tokens, logger),
		User:         NewUserService(store, books, logger),
		Book:         books,
		Review:       NewReviewService(store, books, notifications, logger),
		Social:       NewSocialService(store, notifications, logger),
		Notification: notifications,
		Club:         NewClubService(store, books, notifications, logger),
		Discussion:   NewDiscussionService(store, notifications, logger),
		Feed:         NewFeedService(store, logger),
		Contact:      NewContactService(store, logger),
	}
}
