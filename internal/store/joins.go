package store

import (
	"context"

	"github.com/njohnson2897/bookmarkd-sub000/internal/domain"
)

// Index and lookup names for the join workflow. The "pending" index only
// holds keys while a request or invitation is pending, which limits each
// (club, user) pair to one open request and one open invitation.
const (
	JoinIndexPending       = "pending"
	JoinLookupClub         = "club"
	JoinLookupUser         = "user"
	InvitationLookupClub   = "club"
	InvitationLookupInvite = "invitee"
)

func (s *Store) initJoinWorkflow() {
	s.JoinRequests = NewEntity[domain.JoinRequest](s, prefixJoinRequest, func(r *domain.JoinRequest) string { return r.ID }).
		WithIndex(JoinIndexPending, func(r *domain.JoinRequest) []string {
			if !r.IsPending() {
				return nil
			}
			return []string{pairKey(r.ClubID, r.UserID)}
		}).
		WithLookup(JoinLookupClub, func(r *domain.JoinRequest) []string {
			return []string{r.ClubID}
		}).
		WithLookup(JoinLookupUser, func(r *domain.JoinRequest) []string {
			return []string{r.UserID}
		})

	s.Invitations = NewEntity[domain.Invitation](s, prefixInvitation, func(i *domain.Invitation) string { return i.ID }).
		WithIndex(JoinIndexPending, func(i *domain.Invitation) []string {
			if !i.IsPending() {
				return nil
			}
			return []string{pairKey(i.ClubID, i.InviteeID)}
		}).
		WithLookup(InvitationLookupClub, func(i *domain.Invitation) []string {
			return []string{i.ClubID}
		}).
		WithLookup(InvitationLookupInvite, func(i *domain.Invitation) []string {
			return []string{i.InviteeID}
		})
}

// PendingJoinRequest returns the open request of userID for clubID.
func (s *Store) PendingJoinRequest(ctx context.Context, clubID, userID string) (*domain.JoinRequest, error) {
	return s.JoinRequests.GetByIndex(ctx, JoinIndexPending, pairKey(clubID, userID))
}

// PendingInvitation returns the open invitation of inviteeID to clubID.
func (s *Store) PendingInvitation(ctx context.Context, clubID, inviteeID string) (*domain.Invitation, error) {
	return s.Invitations.GetByIndex(ctx, JoinIndexPending, pairKey(clubID, inviteeID))
}

// JoinRequestsForClub returns every request addressed to clubID.
func (s *Store) JoinRequestsForClub(ctx context.Context, clubID string) ([]*domain.JoinRequest, error) {
	return Collect(s.JoinRequests.ListByLookup(ctx, JoinLookupClub, clubID))
}

// InvitationsForClub returns every invitation issued by clubID.
func (s *Store) InvitationsForClub(ctx context.Context, clubID string) ([]*domain.Invitation, error) {
	return Collect(s.Invitations.ListByLookup(ctx, InvitationLookupClub, clubID))
}

// InvitationsForUser returns every invitation addressed to userID.
func (s *Store) InvitationsForUser(ctx context.Context, userID string) ([]*domain.Invitation, error) {
	return Collect(s.Invitations.ListByLookup(ctx, InvitationLookupInvite, userID))
}
