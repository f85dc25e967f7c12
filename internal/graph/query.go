package graph

import (
	"context"

	graphql "github.com/graph-gophers/graphql-go"
)

// Me resolves the signed-in user, or null for anonymous requests.
func (r *Resolver) Me(ctx context.Context) (*userResolver, error) {
	v := viewerID(ctx)
	if v == "" {
		return nil, nil
	}
	return r.loadUser(ctx, v)
}

func (r *Resolver) User(ctx context.Context, args struct{ ID graphql.ID }) (*userResolver, error) {
	return r.loadUser(ctx, string(args.ID))
}

func (r *Resolver) UserByUsername(ctx context.Context, args struct{ Username string }) (*userResolver, error) {
	u, err := r.svc.User.GetByUsername(ctx, args.Username)
	return r.user(ctx, u, err)
}

func (r *Resolver) Users(ctx context.Context) ([]*userResolver, error) {
	users, err := r.svc.User.List(ctx)
	return r.users(ctx, users, err)
}

func (r *Resolver) Book(ctx context.Context, args struct{ GoogleID string }) (*bookResolver, error) {
	b, err := r.svc.Book.GetByGoogleID(ctx, args.GoogleID)
	return r.book(ctx, b, err)
}

func (r *Resolver) Review(ctx context.Context, args struct{ ID graphql.ID }) (*reviewResolver, error) {
	rev, err := r.svc.Review.Get(ctx, string(args.ID))
	return r.review(ctx, rev, err)
}

func (r *Resolver) Reviews(ctx context.Context, args struct{ GoogleID string }) ([]*reviewResolver, error) {
	reviews, err := r.svc.Review.ForBook(ctx, args.GoogleID)
	return r.reviews(ctx, reviews, err)
}

func (r *Resolver) UserReviews(ctx context.Context, args struct{ UserID graphql.ID }) ([]*reviewResolver, error) {
	reviews, err := r.svc.Review.ForUser(ctx, string(args.UserID))
	return r.reviews(ctx, reviews, err)
}

func (r *Resolver) Club(ctx context.Context, args struct{ ID graphql.ID }) (*clubResolver, error) {
	c, err := r.svc.Club.Get(ctx, string(args.ID))
	return r.club(ctx, c, err)
}

func (r *Resolver) Clubs(ctx context.Context) ([]*clubResolver, error) {
	clubs, err := r.svc.Club.List(ctx)
	return r.clubs(ctx, clubs, err)
}

func (r *Resolver) MyClubs(ctx context.Context) ([]*clubResolver, error) {
	actorID, err := r.actor(ctx)
	if err != nil {
		return nil, err
	}
	clubs, err := r.svc.Club.ForUser(ctx, actorID)
	return r.clubs(ctx, clubs, err)
}

func (r *Resolver) Threads(ctx context.Context, args struct{ ClubID graphql.ID }) ([]*threadResolver, error) {
	threads, err := r.svc.Discussion.ListThreads(ctx, string(args.ClubID))
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return threadResolvers(r, threads), nil
}

func (r *Resolver) Thread(ctx context.Context, args struct{ ID graphql.ID }) (*threadResolver, error) {
	t, err := r.svc.Discussion.Get(ctx, string(args.ID))
	return r.thread(ctx, t, err)
}

// Feed is the viewer's activity feed.
func (r *Resolver) Feed(ctx context.Context) ([]*activityResolver, error) {
	actorID, err := r.actor(ctx)
	if err != nil {
		return nil, err
	}
	activities, err := r.svc.Feed.Feed(ctx, actorID)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	out := make([]*activityResolver, len(activities))
	for i, a := range activities {
		out[i] = &activityResolver{r: r, a: a}
	}
	return out, nil
}

func (r *Resolver) Notifications(ctx context.Context, args struct{ UnreadOnly *bool }) ([]*notificationResolver, error) {
	actorID, err := r.actor(ctx)
	if err != nil {
		return nil, err
	}
	unreadOnly := args.UnreadOnly != nil && *args.UnreadOnly
	notifications, err := r.svc.Notification.List(ctx, actorID, unreadOnly)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	out := make([]*notificationResolver, len(notifications))
	for i, n := range notifications {
		out[i] = &notificationResolver{r: r, n: n}
	}
	return out, nil
}

func (r *Resolver) UnreadNotificationCount(ctx context.Context) (int32, error) {
	actorID, err := r.actor(ctx)
	if err != nil {
		return 0, err
	}
	n, err := r.svc.Notification.UnreadCount(ctx, actorID)
	if err != nil {
		return 0, r.fail(ctx, err)
	}
	return int32(n), nil
}

func (r *Resolver) Followers(ctx context.Context, args struct{ UserID graphql.ID }) ([]*userResolver, error) {
	ids, err := r.svc.Social.FollowerIDs(ctx, string(args.UserID))
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	users, err := r.svc.User.GetMany(ctx, ids)
	return r.users(ctx, users, err)
}

func (r *Resolver) Following(ctx context.Context, args struct{ UserID graphql.ID }) ([]*userResolver, error) {
	ids, err := r.svc.Social.FollowingIDs(ctx, string(args.UserID))
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	users, err := r.svc.User.GetMany(ctx, ids)
	return r.users(ctx, users, err)
}

// JoinRequests lists pending requests for a club the viewer moderates.
func (r *Resolver) JoinRequests(ctx context.Context, args struct{ ClubID graphql.ID }) ([]*joinRequestResolver, error) {
	actorID, err := r.actor(ctx)
	if err != nil {
		return nil, err
	}
	requests, err := r.svc.Club.PendingJoinRequests(ctx, actorID, string(args.ClubID))
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	out := make([]*joinRequestResolver, len(requests))
	for i, req := range requests {
		out[i] = &joinRequestResolver{r: r, req: req}
	}
	return out, nil
}

func (r *Resolver) MyInvitations(ctx context.Context) ([]*invitationResolver, error) {
	actorID, err := r.actor(ctx)
	if err != nil {
		return nil, err
	}
	invitations, err := r.svc.Club.MyInvitations(ctx, actorID)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	out := make([]*invitationResolver, len(invitations))
	for i, inv := range invitations {
		out[i] = &invitationResolver{r: r, inv: inv}
	}
	return out, nil
}
