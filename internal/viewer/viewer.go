// Package viewer carries the identity of the caller through a request.
//
// A request without a valid credential runs as the anonymous viewer. Guard
// functions turn the viewer into the authorization decisions resolvers need.
package viewer

import (
	"context"

	"github.com/njohnson2897/bookmarkd-sub000/internal/errors"
)

// Viewer is the identity attached to a request.
type Viewer struct {
	ID       string
	Username string
	Email    string
}

// IsAnonymous reports whether no user is attached.
func (v Viewer) IsAnonymous() bool {
	return v.ID == ""
}

type contextKey struct{}

// WithViewer returns a context carrying v.
func WithViewer(ctx context.Context, v Viewer) context.Context {
	return context.WithValue(ctx, contextKey{}, v)
}

// FromContext returns the viewer attached to ctx, or the anonymous viewer.
func FromContext(ctx context.Context) Viewer {
	v, _ := ctx.Value(contextKey{}).(Viewer)
	return v
}

// RequireViewer returns the viewer, or an Unauthenticated error when the
// request is anonymous.
func RequireViewer(ctx context.Context) (Viewer, error) {
	v := FromContext(ctx)
	if v.IsAnonymous() {
		return Viewer{}, errors.Unauthenticated("you need to be logged in")
	}
	return v, nil
}

// RequireViewerIs succeeds only when the viewer is the user identified by
// subjectID. Anonymous callers get Unauthenticated; anyone else gets Forbidden.
func RequireViewerIs(ctx context.Context, subjectID string) (Viewer, error) {
	v, err := RequireViewer(ctx)
	if err != nil {
		return Viewer{}, err
	}
	if v.ID != subjectID {
		return Viewer{}, errors.Forbidden("you can only act on your own account")
	}
	return v, nil
}

// RequireViewerIsOptional reports whether the request is made by subjectID. It never errors
// and is used to decide whether private fields may be shown.
func RequireViewerIsOptional(ctx context.Context, subjectID string) bool {
	v := FromContext(ctx)
	return !v.IsAnonymous() && v.ID == subjectID
}
