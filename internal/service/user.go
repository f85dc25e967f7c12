package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/njohnson2897/bookmarkd-sub000/internal/auth"
	"github.com/njohnson2897/bookmarkd-sub000/internal/domain"
	domainerrors "github.com/njohnson2897/bookmarkd-sub000/internal/errors"
	"github.com/njohnson2897/bookmarkd-sub000/internal/store"
)

// UserService manages profiles and reading shelves.
type UserService struct {
	store  *store.Store
	books  *BookService
	logger *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(store *store.Store, books *BookService, logger *slog.Logger) *UserService {
	return &UserService{
		store:  store,
		books:  books,
		logger: logger,
	}
}

// Get returns the user with userID.
func (s *UserService) Get(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.Users.Get(ctx, userID)
	if err != nil {
		return nil, notFound(err, "get user", "user")
	}
	return user, nil
}

// GetByUsername returns the user with username, compared case-insensitively.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, notFound(err, "get user", "user")
	}
	return user, nil
}

// List returns every user ordered by username.
func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	users, err := store.Collect(s.store.Users.List(ctx))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	slices.SortFunc(users, func(a, b *domain.User) int {
		return strings.Compare(strings.ToLower(a.Username), strings.ToLower(b.Username))
	})
	return users, nil
}

// GetMany loads users by ID, skipping any that no longer exist.
func (s *UserService) GetMany(ctx context.Context, userIDs []string) ([]*domain.User, error) {
	users := make([]*domain.User, 0, len(userIDs))
	for _, userID := range userIDs {
		user, err := s.Get(ctx, userID)
		if err != nil {
			if domainerrors.Is(err, domainerrors.ErrNotFound) {
				continue
			}
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// ProfileUpdate is a partial profile change. Nil fields are left alone.
type ProfileUpdate struct {
	Bio            *string `json:"bio" validate:"omitempty,max=1000"`
	Location       *string `json:"location" validate:"omitempty,max=100"`
	FavoriteBook   *string `json:"favorite_book" validate:"omitempty,max=200"`
	FavoriteAuthor *string `json:"favorite_author" validate:"omitempty,max=200"`
	Password       *string `json:"password" validate:"omitempty,min=8,max=1024"`
}

// UpdateProfile applies patch to the actor's profile. The password is
// rehashed only when a new one is supplied.
func (s *UserService) UpdateProfile(ctx context.Context, actorID string, patch ProfileUpdate) (*domain.User, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	if err := validate.Validate(patch); err != nil {
		return nil, err
	}

	var passwordHash string
	if patch.Password != nil {
		hash, err := auth.HashPassword(*patch.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		passwordHash = hash
	}

	user, err := s.store.Users.Mutate(ctx, actorID, func(u *domain.User) error {
		setIfPresent(&u.Bio, patch.Bio)
		setIfPresent(&u.Location, patch.Location)
		setIfPresent(&u.FavoriteBook, patch.FavoriteBook)
		setIfPresent(&u.FavoriteAuthor, patch.FavoriteAuthor)
		if passwordHash != "" {
			u.PasswordHash = passwordHash
		}
		u.Touch()
		return nil
	})
	if err != nil {
		return nil, notFound(err, "update profile", "user")
	}

	s.logger.Info("profile updated", "user_id", actorID, "password_changed", passwordHash != "")
	return user, nil
}

func setIfPresent(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

// SetBookStatus places googleID on the actor's shelf, replacing any
// existing entry for the same book.
func (s *UserService) SetBookStatus(ctx context.Context, actorID, googleID string, status domain.ReadingStatus, favorite bool) (*domain.User, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{
			"status": "must be one of: To-Read, Currently Reading, Finished",
		})
	}

	book, err := s.books.FindOrCreate(ctx, googleID)
	if err != nil {
		return nil, err
	}

	entry := domain.BookStatus{
		BookID:    book.ID,
		GoogleID:  book.GoogleID,
		Status:    status,
		Favorite:  favorite,
		UpdatedAt: time.Now(),
	}

	user, err := s.store.Users.Mutate(ctx, actorID, func(u *domain.User) error {
		if i := u.BookStatusIndex(book.ID); i >= 0 {
			u.BookStatuses[i] = entry
		} else {
			u.BookStatuses = append(u.BookStatuses, entry)
		}
		u.Touch()
		return nil
	})
	if err != nil {
		return nil, notFound(err, "set book status", "user")
	}
	return user, nil
}

// RemoveBookStatus takes googleID off the actor's shelf. Removing a book that
// is not shelved is a no-op.
func (s *UserService) RemoveBookStatus(ctx context.Context, actorID, googleID string) (*domain.User, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	googleID = strings.TrimSpace(googleID)

	user, err := s.store.Users.Mutate(ctx, actorID, func(u *domain.User) error {
		before := len(u.BookStatuses)
		u.BookStatuses = slices.DeleteFunc(u.BookStatuses, func(bs domain.BookStatus) bool {
			return bs.GoogleID == googleID
		})
		if len(u.BookStatuses) == before {
			return store.ErrNoChange
		}
		u.Touch()
		return nil
	})
	if err != nil {
		return nil, notFound(err, "remove book status", "user")
	}
	return user, nil
}
