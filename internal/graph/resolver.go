// Package graph exposes bookmarkd over GraphQL.
//
// Identity checks happen here: mutations acting on behalf of a user compare
// the userId argument with the viewer, role-gated mutations only require a
// viewer and leave the owner/moderator/member decision to the services.
package graph

import (
	"context"
	_ "embed"
	"log/slog"
	"time"

	graphql "github.com/graph-gophers/graphql-go"

	"github.com/njohnson2897/bookmarkd-sub000/internal/domain"
	domainerrors "github.com/njohnson2897/bookmarkd-sub000/internal/errors"
	"github.com/njohnson2897/bookmarkd-sub000/internal/service"
	"github.com/njohnson2897/bookmarkd-sub000/internal/viewer"
)

//go:embed schema.graphql
var schemaSDL string

const (
	maxQueryDepth = 12
	maxParallel   = 10
)

// Resolver is the root resolver for both queries and mutations.
type Resolver struct {
	svc    *service.Services
	logger *slog.Logger
}

// NewResolver creates the root resolver.
func NewResolver(svc *service.Services, logger *slog.Logger) *Resolver {
	return &Resolver{svc: svc, logger: logger}
}

// NewSchema parses the embedded schema against the root resolver.
func NewSchema(svc *service.Services, logger *slog.Logger) (*graphql.Schema, error) {
	return graphql.ParseSchema(schemaSDL, NewResolver(svc, logger),
		graphql.MaxDepth(maxQueryDepth),
		graphql.MaxParallelism(maxParallel),
	)
}

func (r *Resolver) fail(ctx context.Context, err error) error {
	return present(ctx, r.logger, err)
}

// actor returns the ID of the signed-in viewer.
func (r *Resolver) actor(ctx context.Context) (string, error) {
	v, err := viewer.RequireViewer(ctx)
	if err != nil {
		return "", r.fail(ctx, err)
	}
	return v.ID, nil
}

// actorIs returns subjectID when the viewer is that user.
func (r *Resolver) actorIs(ctx context.Context, subjectID graphql.ID) (string, error) {
	v, err := viewer.RequireViewerIs(ctx, string(subjectID))
	if err != nil {
		return "", r.fail(ctx, err)
	}
	return v.ID, nil
}

func viewerID(ctx context.Context) string {
	return viewer.FromContext(ctx).ID
}

func (r *Resolver) user(ctx context.Context, u *domain.User, err error) (*userResolver, error) {
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return &userResolver{r: r, u: u}, nil
}

func (r *Resolver) users(ctx context.Context, users []*domain.User, err error) ([]*userResolver, error) {
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	out := make([]*userResolver, len(users))
	for i, u := range users {
		out[i] = &userResolver{r: r, u: u}
	}
	return out, nil
}

func (r *Resolver) loadUser(ctx context.Context, userID string) (*userResolver, error) {
	u, err := r.svc.User.Get(ctx, userID)
	return r.user(ctx, u, err)
}

// optionalUser loads userID, resolving to null when the user is gone.
func (r *Resolver) optionalUser(ctx context.Context, userID string) (*userResolver, error) {
	if userID == "" {
		return nil, nil
	}
	u, err := r.svc.User.Get(ctx, userID)
	if domainerrors.Is(err, domainerrors.ErrNotFound) {
		return nil, nil
	}
	return r.user(ctx, u, err)
}

func (r *Resolver) book(ctx context.Context, b *domain.Book, err error) (*bookResolver, error) {
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return &bookResolver{r: r, b: b}, nil
}

func (r *Resolver) review(ctx context.Context, rev *domain.Review, err error) (*reviewResolver, error) {
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return &reviewResolver{r: r, rev: rev}, nil
}

func (r *Resolver) reviews(ctx context.Context, reviews []*domain.Review, err error) ([]*reviewResolver, error) {
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	out := make([]*reviewResolver, len(reviews))
	for i, rev := range reviews {
		out[i] = &reviewResolver{r: r, rev: rev}
	}
	return out, nil
}

// club wraps c with the membership snapshot of the current viewer.
func (r *Resolver) club(ctx context.Context, c *domain.Club, err error) (*clubResolver, error) {
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return newClubResolver(ctx, r, c), nil
}

func (r *Resolver) clubs(ctx context.Context, clubs []*domain.Club, err error) ([]*clubResolver, error) {
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	out := make([]*clubResolver, len(clubs))
	for i, c := range clubs {
		out[i] = newClubResolver(ctx, r, c)
	}
	return out, nil
}

func (r *Resolver) thread(ctx context.Context, t *domain.Thread, err error) (*threadResolver, error) {
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return &threadResolver{r: r, t: t}, nil
}

func (r *Resolver) joinRequest(ctx context.Context, req *domain.JoinRequest, err error) (*joinRequestResolver, error) {
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return &joinRequestResolver{r: r, req: req}, nil
}

func (r *Resolver) invitation(ctx context.Context, inv *domain.Invitation, err error) (*invitationResolver, error) {
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return &invitationResolver{r: r, inv: inv}, nil
}

// done resolves a Boolean! mutation result.
func (r *Resolver) done(ctx context.Context, err error) (bool, error) {
	if err != nil {
		return false, r.fail(ctx, err)
	}
	return true, nil
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optID(s string) *graphql.ID {
	if s == "" {
		return nil
	}
	id := graphql.ID(s)
	return &id
}

func optTime(t *time.Time) *graphql.Time {
	if t == nil {
		return nil
	}
	return &graphql.Time{Time: *t}
}

func optInt(n *int) *int32 {
	if n == nil {
		return nil
	}
	v := int32(*n)
	return &v
}

func intPtr(n *int32) *int {
	if n == nil {
		return nil
	}
	v := int(*n)
	return &v
}

func timePtr(t *graphql.Time) *time.Time {
	if t == nil {
		return nil
	}
	return &t.Time
}
