package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/njohnson2897/bookmarkd-sub000/internal/auth"
	"github.com/njohnson2897/bookmarkd-sub000/internal/domain"
	domainerrors "github.com/njohnson2897/bookmarkd-sub000/internal/errors"
	"github.com/njohnson2897/bookmarkd-sub000/internal/id"
	"github.com/njohnson2897/bookmarkd-sub000/internal/store"
)

// AuthService handles sign-up and login.
type AuthService struct {
	store        *store.Store
	tokenService *auth.TokenService
	logger       *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(store *store.Store, tokenService *auth.TokenService, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:        store,
		tokenService: tokenService,
		logger:       logger,
	}
}

// SignUpRequest contains the data for a new account.
type SignUpRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=1024"`
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthPayload is returned by SignUp and Login.
type AuthPayload struct {
	Token string
	User  *domain.User
}

// SignUp creates an account and returns a token for it. Duplicate usernames
// and emails are reported as field-specific conflicts.
func (s *AuthService) SignUp(ctx context.Context, req SignUpRequest) (*AuthPayload, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	if err := s.checkIdentityFree(ctx, req.Username, req.Email); err != nil {
		return nil, err
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.Generate(id.PrefixUser)
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	user := &domain.User{
		Base:         domain.Base{ID: userID},
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
		BookStatuses: []domain.BookStatus{},
		ReviewIDs:    []string{},
		ClubIDs:      []string{},
	}
	user.InitTimestamps()

	if err := s.store.Users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// Lost a race with a concurrent sign-up; report which field.
			if conflict := s.checkIdentityFree(ctx, req.Username, req.Email); conflict != nil {
				return nil, conflict
			}
			return nil, domainerrors.Conflict("account already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokenService.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info("user signed up", "user_id", user.ID, "username", user.Username)

	return &AuthPayload{Token: token, User: user}, nil
}

func (s *AuthService) checkIdentityFree(ctx context.Context, username, email string) error {
	if _, err := s.store.GetUserByUsername(ctx, username); err == nil {
		return domainerrors.Conflict("username already taken").WithDetails(map[string]string{"username": "already taken"})
	} else if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("check username: %w", err)
	}

	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return domainerrors.Conflict("email already registered").WithDetails(map[string]string{"email": "already registered"})
	} else if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("check email: %w", err)
	}
	return nil
}

// Login verifies credentials and returns a fresh token. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthPayload, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.InvalidCredentials("invalid email or password")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		s.logger.Debug("login failed", "user_id", user.ID)
		return nil, domainerrors.InvalidCredentials("invalid email or password")
	}

	token, err := s.tokenService.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &AuthPayload{Token: token, User: user}, nil
}
