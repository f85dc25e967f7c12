package domain

// NotificationType identifies what triggered a notification.
type NotificationType string

const (
	NotifyLike            NotificationType = "like"
	NotifyComment         NotificationType = "comment"
	NotifyFollow          NotificationType = "follow"
	NotifyReview          NotificationType = "review"
	NotifyBookAssigned    NotificationType = "book_assigned"
	NotifyBookRotated     NotificationType = "book_rotated"
	NotifyThreadCreated   NotificationType = "thread_created"
	NotifyThreadReply     NotificationType = "thread_reply"
	NotifyCheckpointAdded NotificationType = "checkpoint_added"
	NotifyJoinRequest     NotificationType = "join_request"
	NotifyJoinApproved    NotificationType = "join_approved"
	NotifyClubInvitation  NotificationType = "club_invitation"
)

// Notification is a polled message for UserID caused by FromUserID.
// Notifications are never created for self-directed actions.
type Notification struct {
	Base
	UserID     string           `json:"user_id"`
	Type       NotificationType `json:"type"`
	FromUserID string           `json:"from_user_id"`
	ReviewID   string           `json:"review_id,omitempty"`
	CommentID  string           `json:"comment_id,omitempty"`
	ClubID     string           `json:"club_id,omitempty"`
	ThreadID   string           `json:"thread_id,omitempty"`
	Read       bool             `json:"read"`
}

// IsSelfDirected reports whether the actor and target are the same user.
func (n *Notification) IsSelfDirected() bool {
	return n.UserID == n.FromUserID
}
