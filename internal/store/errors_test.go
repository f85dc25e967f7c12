package store_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/njohnson2897/bookmarkd-sub000/internal/store"
)

func TestError_ErrorWithCause(t *testing.T) {
	cause := errors.New("disk full")
	err := &store.Error{Message: "write failed", Err: cause}

	assert.Equal(t, "write failed: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestSentinels_SurviveWrapping(t *testing.T) {
	wrapped := fmt.Errorf("get club: %w", store.ErrNotFound)

	assert.ErrorIs(t, wrapped, store.ErrNotFound)
	assert.NotErrorIs(t, wrapped, store.ErrAlreadyExists)
}
