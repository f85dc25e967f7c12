package domain

import (
	"slices"
	"time"
)

// Privacy controls how users may become members of a club.
type Privacy string

const (
	// PrivacyPublic clubs accept direct joins.
	PrivacyPublic Privacy = "public"
	// PrivacyPrivate clubs accept direct joins after a confirmation at the client,
	// and also accept join requests.
	PrivacyPrivate Privacy = "private"
	// PrivacyInviteOnly clubs admit members only through invitations or approved requests.
	PrivacyInviteOnly Privacy = "invite-only"
)

// Valid reports whether p is a known privacy setting.
func (p Privacy) Valid() bool {
	switch p {
	case PrivacyPublic, PrivacyPrivate, PrivacyInviteOnly:
		return true
	default:
		return false
	}
}

// ReadingCheckpoint is a scheduled milestone within the club's current book.
// Checkpoints are embedded in the club and have no identity outside of it.
type ReadingCheckpoint struct {
	Title     string    `json:"title"`
	Date      time.Time `json:"date"`
	Chapters  string    `json:"chapters,omitempty"`
	Completed bool      `json:"completed"`
}

// Club is a group of users reading a shared book on a shared schedule.
type Club struct {
	Base
	Name                 string              `json:"name"`
	Description          string              `json:"description,omitempty"`
	OwnerID              string              `json:"owner_id"`
	MemberIDs            []string            `json:"member_ids"`
	ModeratorIDs         []string            `json:"moderator_ids"`
	Privacy              Privacy             `json:"privacy"`
	MemberLimit          *int                `json:"member_limit,omitempty"`
	CurrentBookID        string              `json:"current_book_id,omitempty"`
	CurrentBookGoogleID  string              `json:"current_book_google_id,omitempty"`
	CurrentBookStartDate *time.Time          `json:"current_book_start_date,omitempty"`
	NextBookID           string              `json:"next_book_id,omitempty"`
	NextBookGoogleID     string              `json:"next_book_google_id,omitempty"`
	Checkpoints          []ReadingCheckpoint `json:"checkpoints"`
}

// HasCurrentBook reports whether the club is in the Active state.
func (c *Club) HasCurrentBook() bool {
	return c.CurrentBookID != ""
}

// HasMember reports whether userID is a plain member. The owner is not
// stored in MemberIDs.
func (c *Club) HasMember(userID string) bool {
	return slices.Contains(c.MemberIDs, userID)
}

// HasModerator reports whether userID holds an explicit moderator role.
func (c *Club) HasModerator(userID string) bool {
	return slices.Contains(c.ModeratorIDs, userID)
}

// AddMember adds userID to the plain member set. Returns false when the user
// is already a member or is the owner.
func (c *Club) AddMember(userID string) bool {
	if userID == c.OwnerID || c.HasMember(userID) {
		return false
	}
	c.MemberIDs = append(c.MemberIDs, userID)
	return true
}

// RemoveMember drops userID from the member and moderator sets.
// Returns false when the user held neither.
func (c *Club) RemoveMember(userID string) bool {
	before := len(c.MemberIDs) + len(c.ModeratorIDs)
	c.MemberIDs = slices.DeleteFunc(c.MemberIDs, func(id string) bool { return id == userID })
	c.ModeratorIDs = slices.DeleteFunc(c.ModeratorIDs, func(id string) bool { return id == userID })
	return len(c.MemberIDs)+len(c.ModeratorIDs) != before
}

// IsFull reports whether the member limit, counting the owner, has been reached.
func (c *Club) IsFull() bool {
	if c.MemberLimit == nil {
		return false
	}
	return len(c.MemberIDs)+1 >= *c.MemberLimit
}

// ParticipantIDs returns the owner followed by every plain member.
func (c *Club) ParticipantIDs() []string {
	ids := make([]string, 0, len(c.MemberIDs)+1)
	if c.OwnerID != "" {
		ids = append(ids, c.OwnerID)
	}
	return append(ids, c.MemberIDs...)
}

// ClearBooks returns the club to the Unassigned state.
func (c *Club) ClearBooks() {
	c.CurrentBookID = ""
	c.CurrentBookGoogleID = ""
	c.CurrentBookStartDate = nil
	c.NextBookID = ""
	c.NextBookGoogleID = ""
	c.Checkpoints = []ReadingCheckpoint{}
}
