package graph

import (
	"context"

	graphql "github.com/graph-gophers/graphql-go"

	"github.com/njohnson2897/bookmarkd-sub000/internal/domain"
	"github.com/njohnson2897/bookmarkd-sub000/internal/service"
)

type signUpInput struct {
	Username string
	Email    string
	Password string
}

func (r *Resolver) SignUp(ctx context.Context, args struct{ Input signUpInput }) (*authPayloadResolver, error) {
	payload, err := r.svc.Auth.SignUp(ctx, service.SignUpRequest{
		Username: args.Input.Username,
		Email:    args.Input.Email,
		Password: args.Input.Password,
	})
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return &authPayloadResolver{r: r, p: payload}, nil
}

func (r *Resolver) Login(ctx context.Context, args struct{ Email, Password string }) (*authPayloadResolver, error) {
	payload, err := r.svc.Auth.Login(ctx, service.LoginRequest{Email: args.Email, Password: args.Password})
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return &authPayloadResolver{r: r, p: payload}, nil
}

type profileInput struct {
	Bio            *string
	Location       *string
	FavoriteBook   *string
	FavoriteAuthor *string
	Password       *string
}

func (r *Resolver) UpdateProfile(ctx context.Context, args struct {
	UserID graphql.ID
	Input  profileInput
}) (*userResolver, error) {
	actorID, err := r.actorIs(ctx, args.UserID)
	if err != nil {
		return nil, err
	}
	u, err := r.svc.User.UpdateProfile(ctx, actorID, service.ProfileUpdate{
		Bio:            args.Input.Bio,
		Location:       args.Input.Location,
		FavoriteBook:   args.Input.FavoriteBook,
		FavoriteAuthor: args.Input.FavoriteAuthor,
		Password:       args.Input.Password,
	})
	return r.user(ctx, u, err)
}

func (r *Resolver) SetBookStatus(ctx context.Context, args struct {
	UserID   graphql.ID
	GoogleID string
	Status   string
	Favorite *bool
}) (*userResolver, error) {
	actorID, err := r.actorIs(ctx, args.UserID)
	if err != nil {
		return nil, err
	}
	favorite := args.Favorite != nil && *args.Favorite
	u, err := r.svc.User.SetBookStatus(ctx, actorID, args.GoogleID, domain.ReadingStatus(args.Status), favorite)
	return r.user(ctx, u, err)
}

func (r *Resolver) RemoveBookStatus(ctx context.Context, args struct {
	UserID   graphql.ID
	GoogleID string
}) (*userResolver, error) {
	actorID, err := r.actorIs(ctx, args.UserID)
	if err != nil {
		return nil, err
	}
	u, err := r.svc.User.RemoveBookStatus(ctx, actorID, args.GoogleID)
	return r.user(ctx, u, err)
}

type reviewInput struct {
	GoogleID    string
	Stars       int32
	Title       *string
	Description *string
}

func (r *Resolver) CreateReview(ctx context.Context, args struct {
	UserID graphql.ID
	Input  reviewInput
}) (*reviewResolver, error) {
	actorID, err := r.actorIs(ctx, args.UserID)
	if err != nil {
		return nil, err
	}
	req := service.CreateReviewRequest{GoogleID: args.Input.GoogleID, Stars: int(args.Input.Stars)}
	if args.Input.Title != nil {
		req.Title = *args.Input.Title
	}
	if args.Input.Description != nil {
		req.Description = *args.Input.Description
	}
	rev, err := r.svc.Review.CreateReview(ctx, actorID, req)
	return r.review(ctx, rev, err)
}

type reviewPatch struct {
	Stars       *int32
	Title       *string
	Description *string
}

func (r *Resolver) UpdateReview(ctx context.Context, args struct {
	ReviewID graphql.ID
	Input    reviewPatch
}) (*reviewResolver, error) {
	actorID, err := r.actor(ctx)
	if err != nil {
		return nil, err
	}
	rev, err := r.svc.Review.UpdateReview(ctx, actorID, string(args.ReviewID), service.ReviewUpdate{
		Stars:       intPtr(args.Input.Stars),
		Title:       args.Input.Title,
		Description: args.Input.Description,
	})
	return r.review(ctx, rev, err)
}

func (r *Resolver) DeleteReview(ctx context.Context, args struct{ ReviewID graphql.ID }) (bool, error) {
	actorID, err := r.actor(ctx)
	if err != nil {
		return false, err
	}
	return r.done(ctx, r.svc.Review.DeleteReview(ctx, actorID, string(args.ReviewID)))
}

type reviewActorArgs struct {
	ReviewID graphql.ID
	UserID   graphql.ID
}

func (r *Resolver) LikeReview(ctx context.Context, args reviewActorArgs) (*reviewResolver, error) {
	actorID, err := r.actorIs(ctx, args.UserID)
	if err != nil {
		return nil, err
	}
	rev, err := r.svc.Social.Like(ctx, actorID, string(args.ReviewID))
	return r.review(ctx, rev, err)
}

func (r *Resolver) UnlikeReview(ctx context.Context, args reviewActorArgs) (*reviewResolver, error) {
	actorID, err := r.actorIs(ctx, args.UserID)
	if err != nil {
		return nil, err
	}
	rev, err := r.svc.Social.Unlike(ctx, actorID, string(args.ReviewID))
	return r.review(ctx, rev, err)
}

func (r *Resolver) AddComment(ctx context.Context, args struct {
	ReviewID graphql.ID
	UserID   graphql.ID
	Text     string
}) (*commentResolver, error) {
	actorID, err := r.actorIs(ctx, args.UserID)
	if err != nil {
		return nil, err
	}
	c, err := r.svc.Social.AddComment(ctx, actorID, string(args.ReviewID), args.Text)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return &commentResolver{r: r, c: c}, nil
}

func (r *Resolver) DeleteComment(ctx context.Context, args struct{ CommentID graphql.ID }) (bool, error) {
	actorID, err := r.actor(ctx)
	if err != nil {
		return false, err
	}
	return r.done(ctx, r.svc.Social.DeleteComment(ctx, actorID, string(args.CommentID)))
}

type followArgs struct {
	UserID   graphql.ID
	TargetID graphql.ID
}

// Follow returns the followed user.
func (r *Resolver) Follow(ctx context.Context, args followArgs) (*userResolver, error) {
	actorID, err := r.actorIs(ctx, args.UserID)
	if err != nil {
		return nil, err
	}
	u, err := r.svc.Social.Follow(ctx, actorID, string(args.TargetID))
	return r.user(ctx, u, err)
}

func (r *Resolver) Unfollow(ctx context.Context, args followArgs) (*userResolver, error) {
	actorID, err := r.actorIs(ctx, args.UserID)
	if err != nil {
		return nil, err
	}
	u, err := r.svc.Social.Unfollow(ctx, actorID, string(args.TargetID))
	return r.user(ctx, u, err)
}

type clubInput struct {
	Name        string
	Description *string
	Privacy     *string
	MemberLimit *int32
}

func (r *Resolver) CreateClub(ctx context.Context, args struct {
	UserID graphql.ID
	Input  clubInput
}) (*clubResolver, error) {
	actorID, err := r.actorIs(ctx, args.UserID)
	if err != nil {
		return nil, err
	}
	req := service.CreateClubRequest{Name: args.Input.Name, MemberLimit: intPtr(args.Input.MemberLimit)}
	if args.Input.Description != nil {
		req.Description = *args.Input.Description
	}
	if args.Input.Privacy != nil {
		req.Privacy = *args.Input.Privacy
	}
	c, err := r.svc.Club.CreateClub(ctx, actorID, req)
	return r.club(ctx, c, err)
}

type clubPatch struct {
	Name        *string
	Description *string
	Privacy     *string
	MemberLimit *int32
}

func (r *Resolver) UpdateClub(ctx context.Context, args struct {
	ClubID graphql.ID
	Input  clubPatch
}) (*clubResolver, error) {
	actorID, err := r.actor(ctx)
	if err != nil {
		return nil, err
	}
	c, err := r.svc.Club.UpdateClub(ctx, actorID, string(args.ClubID), service.UpdateClubRequest{
		Name:        args.Input.Name,
		Description: args.Input.Description,
		Privacy:     args.Input.Privacy,
		MemberLimit: intPtr(args.Input.MemberLimit),
	})
	return r.club(ctx, c, err)
}

func (r *Resolver) DeleteClub(ctx context.Context, args struct{ ClubID graphql.ID }) (bool, error) {
	actorID, err := r.actor(ctx)
	if err != nil {
		return false, err
	}
	return r.done(ctx, r.svc.Club.DeleteClub(ctx, actorID, string(args.ClubID)))
}

type clubActorArgs struct {
	ClubID graphql.ID
	UserID graphql.ID
}

func (r *Resolver) JoinClub(ctx context.Context, args clubActorArgs) (*clubResolver, error) {
	actorID, err := r.actorIs(ctx, args.UserID)
	if err != nil {
		return nil, err
	}
	c, err := r.svc.Club.JoinClub(ctx, actorID, string(args.ClubID))
	return r.club(ctx, c, err)
}

func (r *Resolver) LeaveClub(ctx context.Context, args clubActorArgs) (*clubResolver, error) {
	actorID, err := r.actorIs(ctx, args.UserID)
	if err != nil {
		return nil, err
	}
	c, err := r.svc.Club.LeaveClub(ctx, actorID, string(args.ClubID))
	return r.club(ctx, c, err)
}

type clubMemberArgs struct {
	ClubID   graphql.ID
	MemberID graphql.ID
}

type memberOp func(ctx context.Context, actorID, clubID, userID string) (*domain.Club, error)

func (r *Resolver) onMember(ctx context.Context, args clubMemberArgs, op memberOp) (*clubResolver, error) {
	actorID, err := r.actor(ctx)
	if err != nil {
		return nil, err
	}
	c, err := op(ctx, actorID, string(args.ClubID), string(args.MemberID))
	return r.club(ctx, c, err)
}

func (r *Resolver) RemoveMember(ctx context.Context, args clubMemberArgs) (*clubResolver, error) {
	return r.onMember(ctx, args, r.svc.Club.RemoveMember)
}

func (r *Resolver) AddModerator(ctx context.Context, args clubMemberArgs) (*clubResolver, error) {
	return r.onMember(ctx, args, r.svc.Club.AddModerator)
}

func (r *Resolver) RemoveModerator(ctx context.Context, args clubMemberArgs) (*clubResolver, error) {
	return r.onMember(ctx, args, r.svc.Club.RemoveModerator)
}

func (r *Resolver) AssignBook(ctx context.Context, args struct {
	ClubID    graphql.ID
	GoogleID  string
	StartDate *graphql.Time
}) (*clubResolver, error) {
	actorID, err := r.actor(ctx)
	if err != nil {
		return nil, err
	}
	c, err := r.svc.Club.AssignBook(ctx, actorID, string(args.ClubID), args.GoogleID, timePtr(args.StartDate))
	return r.club(ctx, c, err)
}

func (r *Resolver) SetNextBook(ctx context.Context, args struct {
	ClubID   graphql.ID
	GoogleID string
}) (*clubResolver, error) {
	actorID, err := r.actor(ctx)
	if err != nil {
		return nil, err
	}
	c, err := r.svc.Club.SetNextBook(ctx, actorID, string(args.ClubID), args.GoogleID)
	return r.club(ctx, c, err)
}

func (r *Resolver) RotateBook(ctx context.Context, args struct{ ClubID graphql.ID }) (*clubResolver, error) {
	actorID, err := r.actor(ctx)
	if err != nil {
		return nil, err
	}
	c, err := r.svc.Club.RotateBook(ctx, actorID, string(args.ClubID))
	return r.club(ctx, c, err)
}

type checkpointInput struct {
	Title    string
	Date     graphql.Time
	Chapters *string
}

func (r *Resolver) AddCheckpoint(ctx context.Context, args struct {
	ClubID graphql.ID
	Input  checkpointInput
}) (*clubResolver, error) {
	actorID, err := r.actor(ctx)
	if err != nil {
		return nil, err
	}
	in := service.CheckpointInput{Title: args.Input.Title, Date: args.Input.Date.Time}
	if args.Input.Chapters != nil {
		in.Chapters = *args.Input.Chapters
	}
	c, err := r.svc.Club.AddCheckpoint(ctx, actorID, string(args.ClubID), in)
	return r.club(ctx, c, err)
}

type checkpointPatch struct {
	Title     *string
	Date      *graphql.Time
	Chapters  *string
	Completed *bool
}

func (r *Resolver) UpdateCheckpoint(ctx context.Context, args struct {
	ClubID graphql.ID
	Index  int32
	Input  checkpointPatch
}) (*clubResolver, error) {
	actorID, err := r.actor(ctx)
	if err != nil {
		return nil, err
	}
	c, err := r.svc.Club.UpdateCheckpoint(ctx, actorID, string(args.ClubID), int(args.Index), service.CheckpointPatch{
		Title:     args.Input.Title,
		Date:      timePtr(args.Input.Date),
		Chapters:  args.Input.Chapters,
		Completed: args.Input.Completed,
	})
	return r.club(ctx, c, err)
}

func (r *Resolver) RemoveCheckpoint(ctx context.Context, args struct {
	ClubID graphql.ID
	Index  int32
}) (*clubResolver, error) {
	actorID, err := r.actor(ctx)
	if err != nil {
		return nil, err
	}
	c, err := r.svc.Club.RemoveCheckpoint(ctx, actorID, string(args.ClubID), int(args.Index))
	return r.club(ctx, c, err)
}

type threadInput struct {
	ClubID       graphql.ID
	Title        string
	Content      string
	ThreadType   *string
	ChapterRange *string
}

func (r *Resolver) CreateThread(ctx context.Context, args struct{ Input threadInput }) (*threadResolver, error) {
	actorID, err := r.actor(ctx)
	if err != nil {
		return nil, err
	}
	req := service.CreateThreadRequest{
		ClubID:  string(args.Input.ClubID),
		Title:   args.Input.Title,
		Content: args.Input.Content,
	}
	if args.Input.ThreadType != nil {
		req.Type = *args.Input.ThreadType
	}
	if args.Input.ChapterRange != nil {
		req.ChapterRange = *args.Input.ChapterRange
	}
	t, err := r.svc.Discussion.CreateThread(ctx, actorID, req)
	return r.thread(ctx, t, err)
}

type threadPatch struct {
	Title        *string
	Content      *string
	ChapterRange *string
}

func (r *Resolver) UpdateThread(ctx context.Context, args struct {
	ThreadID graphql.ID
	Input    threadPatch
}) (*threadResolver, error) {
	actorID, err := r.actor(ctx)
	if err != nil {
		return nil, err
	}
	t, err := r.svc.Discussion.UpdateThread(ctx, actorID, string(args.ThreadID), service.ThreadUpdate{
		Title:        args.Input.Title,
		Content:      args.Input.Content,
		ChapterRange: args.Input.ChapterRange,
	})
	return r.thread(ctx, t, err)
}

func (r *Resolver) DeleteThread(ctx context.Context, args struct{ ThreadID graphql.ID }) (bool, error) {
	actorID, err := r.actor(ctx)
	if err != nil {
		return false, err
	}
	return r.done(ctx, r.svc.Discussion.DeleteThread(ctx, actorID, string(args.ThreadID)))
}

func (r *Resolver) AddThreadReply(ctx context.Context, args struct {
	ThreadID graphql.ID
	Text     string
}) (*threadResolver, error) {
	actorID, err := r.actor(ctx)
	if err != nil {
		return nil, err
	}
	t, err := r.svc.Discussion.AddReply(ctx, actorID, string(args.ThreadID), args.Text)
	return r.thread(ctx, t, err)
}

func (r *Resolver) DeleteThreadReply(ctx context.Context, args struct {
	ThreadID graphql.ID
	ReplyID  graphql.ID
}) (*threadResolver, error) {
	actorID, err := r.actor(ctx)
	if err != nil {
		return nil, err
	}
	t, err := r.svc.Discussion.DeleteReply(ctx, actorID, string(args.ThreadID), string(args.ReplyID))
	return r.thread(ctx, t, err)
}

type threadArgs struct{ ThreadID graphql.ID }

type threadOp func(ctx context.Context, actorID, threadID string) (*domain.Thread, error)

func (r *Resolver) onThread(ctx context.Context, args threadArgs, op threadOp) (*threadResolver, error) {
	actorID, err := r.actor(ctx)
	if err != nil {
		return nil, err
	}
	t, err := op(ctx, actorID, string(args.ThreadID))
	return r.thread(ctx, t, err)
}

func (r *Resolver) PinThread(ctx context.Context, args threadArgs) (*threadResolver, error) {
	return r.onThread(ctx, args, r.svc.Discussion.PinThread)
}

func (r *Resolver) UnpinThread(ctx context.Context, args threadArgs) (*threadResolver, error) {
	return r.onThread(ctx, args, r.svc.Discussion.UnpinThread)
}

func (r *Resolver) LockThread(ctx context.Context, args threadArgs) (*threadResolver, error) {
	return r.onThread(ctx, args, r.svc.Discussion.LockThread)
}

func (r *Resolver) UnlockThread(ctx context.Context, args threadArgs) (*threadResolver, error) {
	return r.onThread(ctx, args, r.svc.Discussion.UnlockThread)
}

func (r *Resolver) RequestToJoin(ctx context.Context, args struct {
	ClubID  graphql.ID
	Message *string
}) (*joinRequestResolver, error) {
	actorID, err := r.actor(ctx)
	if err != nil {
		return nil, err
	}
	var message string
	if args.Message != nil {
		message = *args.Message
	}
	req, err := r.svc.Club.RequestToJoin(ctx, actorID, string(args.ClubID), message)
	return r.joinRequest(ctx, req, err)
}

type requestArgs struct{ RequestID graphql.ID }

type requestOp func(ctx context.Context, actorID, requestID string) (*domain.JoinRequest, error)

func (r *Resolver) onRequest(ctx context.Context, args requestArgs, op requestOp) (*joinRequestResolver, error) {
	actorID, err := r.actor(ctx)
	if err != nil {
		return nil, err
	}
	req, err := op(ctx, actorID, string(args.RequestID))
	return r.joinRequest(ctx, req, err)
}

func (r *Resolver) ApproveJoinRequest(ctx context.Context, args requestArgs) (*joinRequestResolver, error) {
	return r.onRequest(ctx, args, r.svc.Club.ApproveJoinRequest)
}

func (r *Resolver) DeclineJoinRequest(ctx context.Context, args requestArgs) (*joinRequestResolver, error) {
	return r.onRequest(ctx, args, r.svc.Club.DeclineJoinRequest)
}

func (r *Resolver) CancelJoinRequest(ctx context.Context, args requestArgs) (*joinRequestResolver, error) {
	return r.onRequest(ctx, args, r.svc.Club.CancelJoinRequest)
}

func (r *Resolver) InviteToClub(ctx context.Context, args struct {
	ClubID    graphql.ID
	InviteeID graphql.ID
}) (*invitationResolver, error) {
	actorID, err := r.actor(ctx)
	if err != nil {
		return nil, err
	}
	inv, err := r.svc.Club.InviteToClub(ctx, actorID, string(args.ClubID), string(args.InviteeID))
	return r.invitation(ctx, inv, err)
}

type invitationArgs struct{ InvitationID graphql.ID }

type invitationOp func(ctx context.Context, actorID, invitationID string) (*domain.Invitation, error)

func (r *Resolver) onInvitation(ctx context.Context, args invitationArgs, op invitationOp) (*invitationResolver, error) {
	actorID, err := r.actor(ctx)
	if err != nil {
		return nil, err
	}
	inv, err := op(ctx, actorID, string(args.InvitationID))
	return r.invitation(ctx, inv, err)
}

func (r *Resolver) AcceptInvitation(ctx context.Context, args invitationArgs) (*invitationResolver, error) {
	return r.onInvitation(ctx, args, r.svc.Club.AcceptInvitation)
}

func (r *Resolver) DeclineInvitation(ctx context.Context, args invitationArgs) (*invitationResolver, error) {
	return r.onInvitation(ctx, args, r.svc.Club.DeclineInvitation)
}

func (r *Resolver) RevokeInvitation(ctx context.Context, args invitationArgs) (*invitationResolver, error) {
	return r.onInvitation(ctx, args, r.svc.Club.RevokeInvitation)
}

func (r *Resolver) MarkNotificationRead(ctx context.Context, args struct{ NotificationID graphql.ID }) (*notificationResolver, error) {
	actorID, err := r.actor(ctx)
	if err != nil {
		return nil, err
	}
	n, err := r.svc.Notification.MarkRead(ctx, actorID, string(args.NotificationID))
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return &notificationResolver{r: r, n: n}, nil
}

func (r *Resolver) MarkAllNotificationsRead(ctx context.Context) (int32, error) {
	actorID, err := r.actor(ctx)
	if err != nil {
		return 0, err
	}
	n, err := r.svc.Notification.MarkAllRead(ctx, actorID)
	if err != nil {
		return 0, r.fail(ctx, err)
	}
	return int32(n), nil
}

type contactInput struct {
	Name    string
	Email   string
	Message string
}

func (r *Resolver) SubmitContact(ctx context.Context, args struct{ Input contactInput }) (*contactResolver, error) {
	c, err := r.svc.Contact.SubmitContact(ctx, service.ContactRequest{
		Name:    args.Input.Name,
		Email:   args.Input.Email,
		Message: args.Input.Message,
	})
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return &contactResolver{c: c}, nil
}
