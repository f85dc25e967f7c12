package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/njohnson2897/bookmarkd-sub000/internal/domain"
	domainerrors "github.com/njohnson2897/bookmarkd-sub000/internal/errors"
	"github.com/njohnson2897/bookmarkd-sub000/internal/id"
	"github.com/njohnson2897/bookmarkd-sub000/internal/membership"
	"github.com/njohnson2897/bookmarkd-sub000/internal/store"
)

// The join workflow admits members to private and invite-only clubs through
// requests (user asks, moderators decide) and invitations (moderators ask,
// user decides). Each (club, user) pair has at most one pending request and
// one pending invitation at a time.

// maxJoinMessageLength bounds the note attached to a join request.
const maxJoinMessageLength = 500

// RequestToJoin files a join request from the actor. Public clubs are joined
// directly instead. Asking twice returns the pending request.
func (s *ClubService) RequestToJoin(ctx context.Context, actorID, clubID, message string) (*domain.JoinRequest, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	message = strings.TrimSpace(message)
	if len(message) > maxJoinMessageLength {
		return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{
			"message": fmt.Sprintf("must not exceed %d characters", maxJoinMessageLength),
		})
	}

	club, err := s.Get(ctx, clubID)
	if err != nil {
		return nil, err
	}
	snap := membership.Resolve(club, actorID)
	if snap.IsMember {
		return nil, domainerrors.InvalidState("you are already a member of this club")
	}
	if !snap.CanRequest {
		return nil, domainerrors.InvalidState("public clubs can be joined directly")
	}

	if existing, err := s.store.PendingJoinRequest(ctx, clubID, actorID); err == nil {
		return existing, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("get pending request: %w", err)
	}

	requestID, err := id.Generate(id.PrefixJoinRequest)
	if err != nil {
		return nil, fmt.Errorf("generate request ID: %w", err)
	}
	req := &domain.JoinRequest{
		Base:    domain.Base{ID: requestID},
		ClubID:  clubID,
		UserID:  actorID,
		Message: message,
		Status:  domain.RequestPending,
	}
	req.InitTimestamps()

	if err := s.store.JoinRequests.Create(ctx, req); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return s.store.PendingJoinRequest(ctx, clubID, actorID)
		}
		return nil, fmt.Errorf("create join request: %w", err)
	}

	deciders := append([]string{club.OwnerID}, club.ModeratorIDs...)
	s.notifications.NotifyAll(ctx, deciders, domain.Notification{
		Type:       domain.NotifyJoinRequest,
		FromUserID: actorID,
		ClubID:     clubID,
	})

	s.logger.Info("join requested", "club_id", clubID, "user_id", actorID)
	return req, nil
}

// decideRequest loads a pending request and the club, checking that the
// actor may decide on it.
func (s *ClubService) decideRequest(ctx context.Context, actorID, requestID string) (*domain.JoinRequest, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	req, err := s.store.JoinRequests.Get(ctx, requestID)
	if err != nil {
		return nil, notFound(err, "get join request", "join request")
	}
	if _, err := s.requireModerator(ctx, actorID, req.ClubID); err != nil {
		return nil, err
	}
	if !req.IsPending() {
		return nil, domainerrors.InvalidStatef("join request is already %s", req.Status)
	}
	return req, nil
}

// resolveRequest moves a pending request to status. Losing a race against
// another decision is INVALID_STATE.
func (s *ClubService) resolveRequest(ctx context.Context, requestID string, status domain.RequestStatus, by string) (*domain.JoinRequest, error) {
	req, err := s.store.JoinRequests.Mutate(ctx, requestID, func(r *domain.JoinRequest) error {
		if !r.IsPending() {
			return domainerrors.InvalidStatef("join request is already %s", r.Status)
		}
		r.Resolve(status, by)
		return nil
	})
	if err != nil {
		return nil, notFound(err, "resolve join request", "join request")
	}
	return req, nil
}

// ApproveJoinRequest admits the requester, subject to the member limit.
func (s *ClubService) ApproveJoinRequest(ctx context.Context, actorID, requestID string) (*domain.JoinRequest, error) {
	req, err := s.decideRequest(ctx, actorID, requestID)
	if err != nil {
		return nil, err
	}

	if _, err := s.mutate(ctx, "approve join request", actorID, req.ClubID, func(c *domain.Club, _ membership.Snapshot) error {
		return admit(c, req.UserID)
	}); err != nil {
		return nil, err
	}

	req, err = s.resolveRequest(ctx, requestID, domain.RequestApproved, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.linkUser(ctx, req.UserID, req.ClubID); err != nil {
		return nil, err
	}

	s.notifications.Send(ctx, domain.Notification{
		UserID:     req.UserID,
		Type:       domain.NotifyJoinApproved,
		FromUserID: actorID,
		ClubID:     req.ClubID,
	})

	s.logger.Info("join request approved", "club_id", req.ClubID, "user_id", req.UserID, "approved_by", actorID)
	return req, nil
}

// DeclineJoinRequest rejects a pending request.
func (s *ClubService) DeclineJoinRequest(ctx context.Context, actorID, requestID string) (*domain.JoinRequest, error) {
	if _, err := s.decideRequest(ctx, actorID, requestID); err != nil {
		return nil, err
	}
	return s.resolveRequest(ctx, requestID, domain.RequestDeclined, actorID)
}

// CancelJoinRequest withdraws the actor's own pending request.
func (s *ClubService) CancelJoinRequest(ctx context.Context, actorID, requestID string) (*domain.JoinRequest, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	req, err := s.store.JoinRequests.Get(ctx, requestID)
	if err != nil {
		return nil, notFound(err, "get join request", "join request")
	}
	if req.UserID != actorID {
		return nil, domainerrors.Forbidden("only the requester can cancel this request")
	}
	return s.resolveRequest(ctx, requestID, domain.RequestCancelled, actorID)
}

// PendingJoinRequests lists the open requests of a club for its owner and
// moderators.
func (s *ClubService) PendingJoinRequests(ctx context.Context, actorID, clubID string) ([]*domain.JoinRequest, error) {
	if _, err := s.requireModerator(ctx, actorID, clubID); err != nil {
		return nil, err
	}

	all, err := s.store.JoinRequestsForClub(ctx, clubID)
	if err != nil {
		return nil, fmt.Errorf("list join requests: %w", err)
	}
	pending := make([]*domain.JoinRequest, 0, len(all))
	for _, r := range all {
		if r.IsPending() {
			pending = append(pending, r)
		}
	}
	return pending, nil
}

// InviteToClub invites inviteeID to the club. Inviting someone with a
// pending invitation returns it.
func (s *ClubService) InviteToClub(ctx context.Context, actorID, clubID, inviteeID string) (*domain.Invitation, error) {
	club, err := s.requireModerator(ctx, actorID, clubID)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.Users.Get(ctx, inviteeID); err != nil {
		return nil, notFound(err, "get invitee", "user")
	}
	if membership.Resolve(club, inviteeID).IsMember {
		return nil, domainerrors.InvalidState("user is already a member of this club")
	}

	if existing, err := s.store.PendingInvitation(ctx, clubID, inviteeID); err == nil {
		return existing, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("get pending invitation: %w", err)
	}

	invitationID, err := id.Generate(id.PrefixInvitation)
	if err != nil {
		return nil, fmt.Errorf("generate invitation ID: %w", err)
	}
	inv := &domain.Invitation{
		Base:      domain.Base{ID: invitationID},
		ClubID:    clubID,
		InviterID: actorID,
		InviteeID: inviteeID,
		Status:    domain.InvitationPending,
	}
	inv.InitTimestamps()

	if err := s.store.Invitations.Create(ctx, inv); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return s.store.PendingInvitation(ctx, clubID, inviteeID)
		}
		return nil, fmt.Errorf("create invitation: %w", err)
	}

	s.notifications.Send(ctx, domain.Notification{
		UserID:     inviteeID,
		Type:       domain.NotifyClubInvitation,
		FromUserID: actorID,
		ClubID:     clubID,
	})

	s.logger.Info("club invitation sent", "club_id", clubID, "invitee_id", inviteeID, "inviter_id", actorID)
	return inv, nil
}

// resolveInvitation moves a pending invitation to status.
func (s *ClubService) resolveInvitation(ctx context.Context, invitationID string, status domain.InvitationStatus) (*domain.Invitation, error) {
	inv, err := s.store.Invitations.Mutate(ctx, invitationID, func(i *domain.Invitation) error {
		if !i.IsPending() {
			return domainerrors.InvalidStatef("invitation is already %s", i.Status)
		}
		i.Resolve(status)
		return nil
	})
	if err != nil {
		return nil, notFound(err, "resolve invitation", "invitation")
	}
	return inv, nil
}

// inviteeInvitation loads an invitation addressed to the actor.
func (s *ClubService) inviteeInvitation(ctx context.Context, actorID, invitationID string) (*domain.Invitation, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	inv, err := s.store.Invitations.Get(ctx, invitationID)
	if err != nil {
		return nil, notFound(err, "get invitation", "invitation")
	}
	if inv.InviteeID != actorID {
		return nil, domainerrors.Forbidden("this invitation is addressed to someone else")
	}
	if !inv.IsPending() {
		return nil, domainerrors.InvalidStatef("invitation is already %s", inv.Status)
	}
	return inv, nil
}

// AcceptInvitation admits the actor, subject to the member limit. A pending
// join request of the actor for the same club is approved along with it.
func (s *ClubService) AcceptInvitation(ctx context.Context, actorID, invitationID string) (*domain.Invitation, error) {
	inv, err := s.inviteeInvitation(ctx, actorID, invitationID)
	if err != nil {
		return nil, err
	}

	if _, err := s.mutate(ctx, "accept invitation", actorID, inv.ClubID, func(c *domain.Club, _ membership.Snapshot) error {
		return admit(c, actorID)
	}); err != nil {
		return nil, err
	}

	inv, err = s.resolveInvitation(ctx, invitationID, domain.InvitationAccepted)
	if err != nil {
		return nil, err
	}
	if err := s.linkUser(ctx, actorID, inv.ClubID); err != nil {
		return nil, err
	}

	if req, err := s.store.PendingJoinRequest(ctx, inv.ClubID, actorID); err == nil {
		if _, err := s.resolveRequest(ctx, req.ID, domain.RequestApproved, inv.InviterID); err != nil &&
			!domainerrors.Is(err, domainerrors.ErrInvalidState) {
			return nil, err
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("get pending request: %w", err)
	}

	s.logger.Info("club invitation accepted", "club_id", inv.ClubID, "user_id", actorID)
	return inv, nil
}

// DeclineInvitation rejects an invitation addressed to the actor.
func (s *ClubService) DeclineInvitation(ctx context.Context, actorID, invitationID string) (*domain.Invitation, error) {
	if _, err := s.inviteeInvitation(ctx, actorID, invitationID); err != nil {
		return nil, err
	}
	return s.resolveInvitation(ctx, invitationID, domain.InvitationDeclined)
}

// RevokeInvitation withdraws a pending invitation. Owner or moderator only.
func (s *ClubService) RevokeInvitation(ctx context.Context, actorID, invitationID string) (*domain.Invitation, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	inv, err := s.store.Invitations.Get(ctx, invitationID)
	if err != nil {
		return nil, notFound(err, "get invitation", "invitation")
	}
	if _, err := s.requireModerator(ctx, actorID, inv.ClubID); err != nil {
		return nil, err
	}
	return s.resolveInvitation(ctx, invitationID, domain.InvitationRevoked)
}

// MyInvitations lists the pending invitations addressed to the actor.
func (s *ClubService) MyInvitations(ctx context.Context, actorID string) ([]*domain.Invitation, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}

	all, err := s.store.InvitationsForUser(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	pending := make([]*domain.Invitation, 0, len(all))
	for _, inv := range all {
		if inv.IsPending() {
			pending = append(pending, inv)
		}
	}
	return pending, nil
}
