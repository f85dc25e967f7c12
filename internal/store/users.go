package store

import (
	"context"

	"github.com/njohnson2897/bookmarkd-sub000/internal/domain"
)

// Index names for users.
const (
	UserIndexEmail    = "email"
	UserIndexUsername = "username"
)

// initUsers registers the Users entity.
// Email and username are unique and looked up case-insensitively.
func (s *Store) initUsers() {
	s.Users = NewEntity[domain.User](s, prefixUser, func(u *domain.User) string { return u.ID }).
		WithIndexTransform(UserIndexEmail,
			func(u *domain.User) []string {
				return []string{normalizeEmail(u.Email)}
			},
			normalizeEmail,
		).
		WithIndexTransform(UserIndexUsername,
			func(u *domain.User) []string {
				return []string{normalizeUsername(u.Username)}
			},
			normalizeUsername,
		)
}

// GetUserByEmail looks a user up by email address.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.Users.GetByIndex(ctx, UserIndexEmail, email)
}

// GetUserByUsername looks a user up by username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.Users.GetByIndex(ctx, UserIndexUsername, username)
}
