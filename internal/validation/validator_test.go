package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njohnson2897/bookmarkd-sub000/internal/errors"
	"github.com/njohnson2897/bookmarkd-sub000/internal/validation"
)

type signUpRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=1024"`
}

type reviewRequest struct {
	Stars  int    `json:"stars" validate:"gte=0,lte=5"`
	Status string `json:"status,omitempty" validate:"omitempty,reading_status"`
}

type clubRequest struct {
	Name    string `json:"name" validate:"required"`
	Privacy string `json:"privacy" validate:"privacy"`
	Type    string `json:"thread_type" validate:"omitempty,thread_type"`
}

func details(t *testing.T, err error) map[string]string {
	t.Helper()
	var domainErr *errors.Error
	require.True(t, errors.As(err, &domainErr), "expected domain error, got %v", err)
	assert.Equal(t, errors.CodeValidation, domainErr.Code)
	fields, ok := domainErr.Details.(map[string]string)
	require.True(t, ok)
	return fields
}

func TestValidator_Success(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.Validate(signUpRequest{Username: "ada", Email: "ada@example.com", Password: "password123"}))
	assert.NoError(t, v.Validate(reviewRequest{Stars: 0}))
	assert.NoError(t, v.Validate(reviewRequest{Stars: 5, Status: "Currently Reading"}))
	assert.NoError(t, v.Validate(clubRequest{Name: "Sci-Fi", Privacy: "invite-only", Type: "spoiler-free"}))
}

func TestValidator_FieldErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		req       any
		wantField string
		wantMsg   string
	}{
		{"missing username", signUpRequest{Email: "a@b.co", Password: "password123"}, "username", "is required"},
		{"short password", signUpRequest{Username: "ada", Email: "a@b.co", Password: "short"}, "password", "must be at least 8 characters"},
		{"bad email", signUpRequest{Username: "ada", Email: "nope", Password: "password123"}, "email", "must be a valid email address"},
		{"too many stars", reviewRequest{Stars: 6}, "stars", "must be less than or equal to 5"},
		{"negative stars", reviewRequest{Stars: -1}, "stars", "must be greater than or equal to 0"},
		{"bad status", reviewRequest{Status: "Abandoned"}, "status", "must be one of: To-Read, Currently Reading, Finished"},
		{"bad privacy", clubRequest{Name: "x", Privacy: "secret"}, "privacy", "must be one of: public, private, invite-only"},
		{"bad thread type", clubRequest{Name: "x", Privacy: "public", Type: "rant"}, "thread_type", "must be one of: general, chapter, spoiler-free, spoiler, qa, book-selection"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, details(t, err)[tt.wantField])
		})
	}
}
