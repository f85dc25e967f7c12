// Package service holds the business rules of bookmarkd: who may read or
// mutate which entity, and the state machines of clubs and threads.
//
// Services receive the acting user's ID from the API layer, which has
// already checked that a viewer is present. Role checks happen here, against
// a fresh membership snapshot.
package service

import (
	"errors"
	"fmt"
	"strings"

	domainerrors "github.com/njohnson2897/bookmarkd-sub000/internal/errors"
	"github.com/njohnson2897/bookmarkd-sub000/internal/store"
	"github.com/njohnson2897/bookmarkd-sub000/internal/validation"
)

// validate is the shared validator for service inputs.
var validate = validation.New()

// notFound translates a store miss into a NOT_FOUND error naming what.
// Any other error is wrapped with op.
func notFound(err error, op, what string) error {
	if errors.Is(err, store.ErrNotFound) {
		return domainerrors.NotFoundf("%s not found", what)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// requireActor rejects calls made without an acting user.
func requireActor(actorID string) error {
	if actorID == "" {
		return domainerrors.Unauthenticated("you need to be logged in")
	}
	return nil
}

// trimPresent replaces each non-nil patch field with a trimmed copy so that
// validation sees the value that will be stored. The caller's strings are
// left untouched.
func trimPresent(fields ...**string) {
	for _, f := range fields {
		if *f != nil {
			trimmed := strings.TrimSpace(**f)
			*f = &trimmed
		}
	}
}
