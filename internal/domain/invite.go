package domain

import "time"

// RequestStatus is the state of a join request.
type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestApproved  RequestStatus = "approved"
	RequestDeclined  RequestStatus = "declined"
	RequestCancelled RequestStatus = "cancelled"
)

// JoinRequest asks a club's owner or moderators to admit UserID.
type JoinRequest struct {
	Base
	ClubID      string        `json:"club_id"`
	UserID      string        `json:"user_id"`
	Message     string        `json:"message,omitempty"`
	Status      RequestStatus `json:"status"`
	RespondedAt *time.Time    `json:"responded_at,omitempty"`
	RespondedBy string        `json:"responded_by,omitempty"`
}

// IsPending reports whether the request still awaits a decision.
func (r *JoinRequest) IsPending() bool {
	return r.Status == RequestPending
}

// Resolve moves a pending request into a final state.
func (r *JoinRequest) Resolve(status RequestStatus, by string) {
	now := time.Now()
	r.Status = status
	r.RespondedAt = &now
	r.RespondedBy = by
	r.UpdatedAt = now
}

// InvitationStatus is the state of a club invitation.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
	InvitationRevoked  InvitationStatus = "revoked"
)

// Invitation offers InviteeID a place in a club.
type Invitation struct {
	Base
	ClubID      string           `json:"club_id"`
	InviterID   string           `json:"inviter_id"`
	InviteeID   string           `json:"invitee_id"`
	Status      InvitationStatus `json:"status"`
	RespondedAt *time.Time       `json:"responded_at,omitempty"`
}

// IsPending reports whether the invitation can still be answered.
func (i *Invitation) IsPending() bool {
	return i.Status == InvitationPending
}

// Resolve moves a pending invitation into a final state.
func (i *Invitation) Resolve(status InvitationStatus) {
	now := time.Now()
	i.Status = status
	i.RespondedAt = &now
	i.UpdatedAt = now
}
