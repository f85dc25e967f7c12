package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesByCode(t *testing.T) {
	err := InvalidState("thread is locked")

	assert.True(t, Is(err, ErrInvalidState))
	assert.False(t, Is(err, ErrForbidden))

	wrapped := fmt.Errorf("add reply: %w", err)
	assert.True(t, Is(wrapped, ErrInvalidState))
}

func TestError_WithCauseKeepsCode(t *testing.T) {
	cause := New("disk full")
	err := Internal("save club").WithCause(cause)

	assert.True(t, Is(err, ErrInternal))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "save club: disk full", err.Error())
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeNotFound, CodeOf(fmt.Errorf("get: %w", NotFound("club not found"))))
	assert.Equal(t, CodeInternal, CodeOf(New("plain")))
}

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeUnauthenticated, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeNotFound, http.StatusNotFound},
		{CodeInvalidState, http.StatusUnprocessableEntity},
		{CodeConflict, http.StatusConflict},
		{CodeValidation, http.StatusBadRequest},
		{CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}
