package graph

import (
	"context"
	"sync"

	graphql "github.com/graph-gophers/graphql-go"

	"github.com/njohnson2897/bookmarkd-sub000/internal/domain"
	domainerrors "github.com/njohnson2897/bookmarkd-sub000/internal/errors"
	"github.com/njohnson2897/bookmarkd-sub000/internal/membership"
	"github.com/njohnson2897/bookmarkd-sub000/internal/service"
	"github.com/njohnson2897/bookmarkd-sub000/internal/viewer"
)

type authPayloadResolver struct {
	r *Resolver
	p *service.AuthPayload
}

func (a *authPayloadResolver) Token() string { return a.p.Token }

func (a *authPayloadResolver) User() *userResolver { return &userResolver{r: a.r, u: a.p.User} }

// userResolver resolves User. Follow counters are computed once per
// resolved user, relative to the viewer.
type userResolver struct {
	r *Resolver
	u *domain.User

	statsOnce sync.Once
	stats     service.FollowStats
	statsErr  error
}

func (u *userResolver) ID() graphql.ID   { return graphql.ID(u.u.ID) }
func (u *userResolver) Username() string { return u.u.Username }

func (u *userResolver) Email(ctx context.Context) *string {
	if !viewer.RequireViewerIsOptional(ctx, u.u.ID) {
		return nil
	}
	return &u.u.Email
}

func (u *userResolver) Bio() *string            { return optString(u.u.Bio) }
func (u *userResolver) Location() *string       { return optString(u.u.Location) }
func (u *userResolver) FavoriteBook() *string   { return optString(u.u.FavoriteBook) }
func (u *userResolver) FavoriteAuthor() *string { return optString(u.u.FavoriteAuthor) }
func (u *userResolver) CreatedAt() graphql.Time { return graphql.Time{Time: u.u.CreatedAt} }

func (u *userResolver) BookStatuses() []*bookStatusResolver {
	out := make([]*bookStatusResolver, len(u.u.BookStatuses))
	for i := range u.u.BookStatuses {
		out[i] = &bookStatusResolver{r: u.r, bs: u.u.BookStatuses[i]}
	}
	return out
}

func (u *userResolver) Reviews(ctx context.Context) ([]*reviewResolver, error) {
	reviews, err := u.r.svc.Review.ForUser(ctx, u.u.ID)
	return u.r.reviews(ctx, reviews, err)
}

func (u *userResolver) Clubs(ctx context.Context) ([]*clubResolver, error) {
	clubs, err := u.r.svc.Club.ForUser(ctx, u.u.ID)
	return u.r.clubs(ctx, clubs, err)
}

func (u *userResolver) followStats(ctx context.Context) (service.FollowStats, error) {
	u.statsOnce.Do(func() {
		u.stats, u.statsErr = u.r.svc.Social.Stats(ctx, u.u.ID, viewerID(ctx))
		if u.statsErr != nil {
			u.statsErr = u.r.fail(ctx, u.statsErr)
		}
	})
	return u.stats, u.statsErr
}

func (u *userResolver) FollowerCount(ctx context.Context) (int32, error) {
	stats, err := u.followStats(ctx)
	return int32(stats.FollowerCount), err
}

func (u *userResolver) FollowingCount(ctx context.Context) (int32, error) {
	stats, err := u.followStats(ctx)
	return int32(stats.FollowingCount), err
}

func (u *userResolver) IsFollowing(ctx context.Context) (bool, error) {
	stats, err := u.followStats(ctx)
	return stats.IsFollowing, err
}

type bookStatusResolver struct {
	r  *Resolver
	bs domain.BookStatus
}

func (b *bookStatusResolver) Book(ctx context.Context) (*bookResolver, error) {
	book, err := b.r.svc.Book.Get(ctx, b.bs.BookID)
	return b.r.book(ctx, book, err)
}

func (b *bookStatusResolver) GoogleID() string        { return b.bs.GoogleID }
func (b *bookStatusResolver) Status() string          { return string(b.bs.Status) }
func (b *bookStatusResolver) Favorite() bool          { return b.bs.Favorite }
func (b *bookStatusResolver) UpdatedAt() graphql.Time { return graphql.Time{Time: b.bs.UpdatedAt} }

type bookResolver struct {
	r *Resolver
	b *domain.Book
}

func (b *bookResolver) ID() graphql.ID         { return graphql.ID(b.b.ID) }
func (b *bookResolver) GoogleID() string       { return b.b.GoogleID }
func (b *bookResolver) Title() *string         { return optString(b.b.Title) }
func (b *bookResolver) Thumbnail() *string     { return optString(b.b.Thumbnail) }
func (b *bookResolver) PublishedDate() *string { return optString(b.b.PublishedDate) }
func (b *bookResolver) ReviewCount() int32     { return int32(len(b.b.ReviewIDs)) }

func (b *bookResolver) Authors() []string {
	if b.b.Authors == nil {
		return []string{}
	}
	return b.b.Authors
}

func (b *bookResolver) PageCount() *int32 {
	if b.b.PageCount == 0 {
		return nil
	}
	n := int32(b.b.PageCount)
	return &n
}

func (b *bookResolver) Reviews(ctx context.Context) ([]*reviewResolver, error) {
	reviews, err := b.r.svc.Review.ForBook(ctx, b.b.GoogleID)
	return b.r.reviews(ctx, reviews, err)
}

// reviewResolver resolves Review. Like and comment counters are counted
// once per resolved review.
type reviewResolver struct {
	r   *Resolver
	rev *domain.Review

	statsOnce sync.Once
	stats     service.ReviewStats
	statsErr  error
}

func (v *reviewResolver) ID() graphql.ID          { return graphql.ID(v.rev.ID) }
func (v *reviewResolver) GoogleID() string        { return v.rev.GoogleID }
func (v *reviewResolver) Stars() int32            { return int32(v.rev.Stars) }
func (v *reviewResolver) Title() *string          { return optString(v.rev.Title) }
func (v *reviewResolver) Description() *string    { return optString(v.rev.Description) }
func (v *reviewResolver) CreatedAt() graphql.Time { return graphql.Time{Time: v.rev.CreatedAt} }
func (v *reviewResolver) UpdatedAt() graphql.Time { return graphql.Time{Time: v.rev.UpdatedAt} }

func (v *reviewResolver) Book(ctx context.Context) (*bookResolver, error) {
	book, err := v.r.svc.Book.Get(ctx, v.rev.BookID)
	return v.r.book(ctx, book, err)
}

func (v *reviewResolver) Author(ctx context.Context) (*userResolver, error) {
	return v.r.loadUser(ctx, v.rev.UserID)
}

func (v *reviewResolver) reviewStats(ctx context.Context) (service.ReviewStats, error) {
	v.statsOnce.Do(func() {
		v.stats, v.statsErr = v.r.svc.Review.Stats(ctx, v.rev.ID, viewerID(ctx))
		if v.statsErr != nil {
			v.statsErr = v.r.fail(ctx, v.statsErr)
		}
	})
	return v.stats, v.statsErr
}

func (v *reviewResolver) LikeCount(ctx context.Context) (int32, error) {
	stats, err := v.reviewStats(ctx)
	return int32(stats.LikeCount), err
}

func (v *reviewResolver) CommentCount(ctx context.Context) (int32, error) {
	stats, err := v.reviewStats(ctx)
	return int32(stats.CommentCount), err
}

func (v *reviewResolver) IsLiked(ctx context.Context) (bool, error) {
	stats, err := v.reviewStats(ctx)
	return stats.IsLiked, err
}

func (v *reviewResolver) Comments(ctx context.Context) ([]*commentResolver, error) {
	comments, err := v.r.svc.Review.Comments(ctx, v.rev.ID)
	if err != nil {
		return nil, v.r.fail(ctx, err)
	}
	out := make([]*commentResolver, len(comments))
	for i, c := range comments {
		out[i] = &commentResolver{r: v.r, c: c}
	}
	return out, nil
}

type commentResolver struct {
	r *Resolver
	c *domain.Comment
}

func (c *commentResolver) ID() graphql.ID          { return graphql.ID(c.c.ID) }
func (c *commentResolver) ReviewID() graphql.ID    { return graphql.ID(c.c.ReviewID) }
func (c *commentResolver) Text() string            { return c.c.Text }
func (c *commentResolver) CreatedAt() graphql.Time { return graphql.Time{Time: c.c.CreatedAt} }

func (c *commentResolver) Author(ctx context.Context) (*userResolver, error) {
	return c.r.loadUser(ctx, c.c.UserID)
}

// clubResolver resolves Club. The membership snapshot is taken when the
// resolver is built, so every role field of one response agrees.
type clubResolver struct {
	r    *Resolver
	c    *domain.Club
	snap membership.Snapshot
}

func newClubResolver(ctx context.Context, r *Resolver, c *domain.Club) *clubResolver {
	return &clubResolver{r: r, c: c, snap: membership.Resolve(c, viewerID(ctx))}
}

func (c *clubResolver) ID() graphql.ID          { return graphql.ID(c.c.ID) }
func (c *clubResolver) Name() string            { return c.c.Name }
func (c *clubResolver) Description() *string    { return optString(c.c.Description) }
func (c *clubResolver) Privacy() string         { return string(c.c.Privacy) }
func (c *clubResolver) MemberLimit() *int32     { return optInt(c.c.MemberLimit) }
func (c *clubResolver) MemberCount() int32      { return int32(c.snap.MemberCount) }
func (c *clubResolver) IsMember() bool          { return c.snap.IsMember }
func (c *clubResolver) IsOwner() bool           { return c.snap.IsOwner }
func (c *clubResolver) IsModerator() bool       { return c.snap.IsModerator }
func (c *clubResolver) CanJoin() bool           { return c.snap.CanJoin }
func (c *clubResolver) CanRequest() bool        { return c.snap.CanRequest }
func (c *clubResolver) CreatedAt() graphql.Time { return graphql.Time{Time: c.c.CreatedAt} }
func (c *clubResolver) UpdatedAt() graphql.Time { return graphql.Time{Time: c.c.UpdatedAt} }

func (c *clubResolver) CurrentBookGoogleID() *string {
	return optString(c.c.CurrentBookGoogleID)
}

func (c *clubResolver) CurrentBookStartDate() *graphql.Time {
	return optTime(c.c.CurrentBookStartDate)
}

func (c *clubResolver) Owner(ctx context.Context) (*userResolver, error) {
	return c.r.loadUser(ctx, c.c.OwnerID)
}

func (c *clubResolver) Members(ctx context.Context) ([]*userResolver, error) {
	users, err := c.r.svc.User.GetMany(ctx, c.c.ParticipantIDs())
	return c.r.users(ctx, users, err)
}

// Moderators lists moderators that are still members.
func (c *clubResolver) Moderators(ctx context.Context) ([]*userResolver, error) {
	ids := make([]string, 0, len(c.c.ModeratorIDs))
	for _, userID := range c.c.ModeratorIDs {
		if c.c.HasMember(userID) {
			ids = append(ids, userID)
		}
	}
	users, err := c.r.svc.User.GetMany(ctx, ids)
	return c.r.users(ctx, users, err)
}

func (c *clubResolver) CurrentBook(ctx context.Context) (*bookResolver, error) {
	return c.optionalBook(ctx, c.c.CurrentBookID)
}

func (c *clubResolver) NextBook(ctx context.Context) (*bookResolver, error) {
	return c.optionalBook(ctx, c.c.NextBookID)
}

func (c *clubResolver) optionalBook(ctx context.Context, bookID string) (*bookResolver, error) {
	if bookID == "" {
		return nil, nil
	}
	book, err := c.r.svc.Book.Get(ctx, bookID)
	if domainerrors.Is(err, domainerrors.ErrNotFound) {
		return nil, nil
	}
	return c.r.book(ctx, book, err)
}

func (c *clubResolver) Checkpoints() []*checkpointResolver {
	out := make([]*checkpointResolver, len(c.c.Checkpoints))
	for i := range c.c.Checkpoints {
		out[i] = &checkpointResolver{index: i, cp: c.c.Checkpoints[i]}
	}
	return out
}

func (c *clubResolver) Threads(ctx context.Context) ([]*threadResolver, error) {
	threads, err := c.r.svc.Discussion.ListThreads(ctx, c.c.ID)
	if err != nil {
		return nil, c.r.fail(ctx, err)
	}
	return threadResolvers(c.r, threads), nil
}

type checkpointResolver struct {
	index int
	cp    domain.ReadingCheckpoint
}

func (c *checkpointResolver) Index() int32       { return int32(c.index) }
func (c *checkpointResolver) Title() string      { return c.cp.Title }
func (c *checkpointResolver) Date() graphql.Time { return graphql.Time{Time: c.cp.Date} }
func (c *checkpointResolver) Chapters() *string  { return optString(c.cp.Chapters) }
func (c *checkpointResolver) Completed() bool    { return c.cp.Completed }

type threadResolver struct {
	r *Resolver
	t *domain.Thread
}

func threadResolvers(r *Resolver, threads []*domain.Thread) []*threadResolver {
	out := make([]*threadResolver, len(threads))
	for i, t := range threads {
		out[i] = &threadResolver{r: r, t: t}
	}
	return out
}

func (t *threadResolver) ID() graphql.ID          { return graphql.ID(t.t.ID) }
func (t *threadResolver) BookGoogleID() string    { return t.t.BookGoogleID }
func (t *threadResolver) Title() string           { return t.t.Title }
func (t *threadResolver) Content() string         { return t.t.Content }
func (t *threadResolver) ThreadType() string      { return string(t.t.Type) }
func (t *threadResolver) ChapterRange() *string   { return optString(t.t.ChapterRange) }
func (t *threadResolver) IsPinned() bool          { return t.t.IsPinned }
func (t *threadResolver) IsLocked() bool          { return t.t.IsLocked }
func (t *threadResolver) ReplyCount() int32       { return int32(t.t.ReplyCount) }
func (t *threadResolver) CreatedAt() graphql.Time { return graphql.Time{Time: t.t.CreatedAt} }
func (t *threadResolver) UpdatedAt() graphql.Time { return graphql.Time{Time: t.t.UpdatedAt} }

func (t *threadResolver) Club(ctx context.Context) (*clubResolver, error) {
	club, err := t.r.svc.Club.Get(ctx, t.t.ClubID)
	return t.r.club(ctx, club, err)
}

func (t *threadResolver) Book(ctx context.Context) (*bookResolver, error) {
	book, err := t.r.svc.Book.Get(ctx, t.t.BookID)
	return t.r.book(ctx, book, err)
}

func (t *threadResolver) Author(ctx context.Context) (*userResolver, error) {
	return t.r.loadUser(ctx, t.t.AuthorID)
}

func (t *threadResolver) Replies() []*replyResolver {
	out := make([]*replyResolver, len(t.t.Replies))
	for i := range t.t.Replies {
		out[i] = &replyResolver{r: t.r, reply: t.t.Replies[i]}
	}
	return out
}

type replyResolver struct {
	r     *Resolver
	reply domain.ThreadReply
}

func (p *replyResolver) ID() graphql.ID          { return graphql.ID(p.reply.ID) }
func (p *replyResolver) Text() string            { return p.reply.Text }
func (p *replyResolver) CreatedAt() graphql.Time { return graphql.Time{Time: p.reply.CreatedAt} }

func (p *replyResolver) User(ctx context.Context) (*userResolver, error) {
	return p.r.loadUser(ctx, p.reply.UserID)
}

type notificationResolver struct {
	r *Resolver
	n *domain.Notification
}

func (n *notificationResolver) ID() graphql.ID          { return graphql.ID(n.n.ID) }
func (n *notificationResolver) Type() string            { return string(n.n.Type) }
func (n *notificationResolver) ReviewID() *graphql.ID   { return optID(n.n.ReviewID) }
func (n *notificationResolver) CommentID() *graphql.ID  { return optID(n.n.CommentID) }
func (n *notificationResolver) ThreadID() *graphql.ID   { return optID(n.n.ThreadID) }
func (n *notificationResolver) Read() bool              { return n.n.Read }
func (n *notificationResolver) CreatedAt() graphql.Time { return graphql.Time{Time: n.n.CreatedAt} }

func (n *notificationResolver) FromUser(ctx context.Context) (*userResolver, error) {
	return n.r.optionalUser(ctx, n.n.FromUserID)
}

func (n *notificationResolver) Club(ctx context.Context) (*clubResolver, error) {
	if n.n.ClubID == "" {
		return nil, nil
	}
	club, err := n.r.svc.Club.Get(ctx, n.n.ClubID)
	if domainerrors.Is(err, domainerrors.ErrNotFound) {
		return nil, nil
	}
	return n.r.club(ctx, club, err)
}

type activityResolver struct {
	r *Resolver
	a domain.Activity
}

func (a *activityResolver) Type() string            { return string(a.a.Type) }
func (a *activityResolver) Timestamp() graphql.Time { return graphql.Time{Time: a.a.Timestamp} }

func (a *activityResolver) Review() *reviewResolver {
	if a.a.Review == nil {
		return nil
	}
	return &reviewResolver{r: a.r, rev: a.a.Review}
}

type joinRequestResolver struct {
	r   *Resolver
	req *domain.JoinRequest
}

func (j *joinRequestResolver) ID() graphql.ID             { return graphql.ID(j.req.ID) }
func (j *joinRequestResolver) Message() *string           { return optString(j.req.Message) }
func (j *joinRequestResolver) Status() string             { return string(j.req.Status) }
func (j *joinRequestResolver) CreatedAt() graphql.Time    { return graphql.Time{Time: j.req.CreatedAt} }
func (j *joinRequestResolver) RespondedAt() *graphql.Time { return optTime(j.req.RespondedAt) }

func (j *joinRequestResolver) Club(ctx context.Context) (*clubResolver, error) {
	club, err := j.r.svc.Club.Get(ctx, j.req.ClubID)
	return j.r.club(ctx, club, err)
}

func (j *joinRequestResolver) User(ctx context.Context) (*userResolver, error) {
	return j.r.loadUser(ctx, j.req.UserID)
}

type invitationResolver struct {
	r   *Resolver
	inv *domain.Invitation
}

func (i *invitationResolver) ID() graphql.ID             { return graphql.ID(i.inv.ID) }
func (i *invitationResolver) Status() string             { return string(i.inv.Status) }
func (i *invitationResolver) CreatedAt() graphql.Time    { return graphql.Time{Time: i.inv.CreatedAt} }
func (i *invitationResolver) RespondedAt() *graphql.Time { return optTime(i.inv.RespondedAt) }

func (i *invitationResolver) Club(ctx context.Context) (*clubResolver, error) {
	club, err := i.r.svc.Club.Get(ctx, i.inv.ClubID)
	return i.r.club(ctx, club, err)
}

func (i *invitationResolver) Inviter(ctx context.Context) (*userResolver, error) {
	return i.r.loadUser(ctx, i.inv.InviterID)
}

func (i *invitationResolver) Invitee(ctx context.Context) (*userResolver, error) {
	return i.r.loadUser(ctx, i.inv.InviteeID)
}

type contactResolver struct {
	c *domain.Contact
}

func (c *contactResolver) ID() graphql.ID          { return graphql.ID(c.c.ID) }
func (c *contactResolver) Name() string            { return c.c.Name }
func (c *contactResolver) Email() string           { return c.c.Email }
func (c *contactResolver) Message() string         { return c.c.Message }
func (c *contactResolver) CreatedAt() graphql.Time { return graphql.Time{Time: c.c.CreatedAt} }
