// Package membership derives a viewer's roles in a club.
//
// Roles are never stored. Every read resolves a fresh Snapshot from the club
// document so the flags always reflect the membership at read time.
package membership

import "github.com/njohnson2897/bookmarkd-sub000/internal/domain"

// Snapshot is the viewer-relative view of a club's membership.
//
// The flags form a chain: IsOwner implies IsModerator implies IsMember.
type Snapshot struct {
	MemberCount int
	IsMember    bool
	IsOwner     bool
	IsModerator bool
	CanJoin     bool
	CanRequest  bool
}

// Resolve computes the snapshot of club for viewerID. An empty viewerID is
// the anonymous viewer, which holds no role.
func Resolve(club *domain.Club, viewerID string) Snapshot {
	s := Snapshot{MemberCount: len(club.MemberIDs)}
	if club.OwnerID != "" {
		s.MemberCount++
	}

	if viewerID == "" {
		return s
	}

	s.IsOwner = club.OwnerID == viewerID
	s.IsMember = s.IsOwner || club.HasMember(viewerID)
	s.IsModerator = s.IsOwner || (s.IsMember && club.HasModerator(viewerID))

	outsider := !s.IsOwner && !s.IsMember
	s.CanJoin = outsider && club.Privacy != domain.PrivacyInviteOnly
	s.CanRequest = outsider && club.Privacy != domain.PrivacyPublic
	return s
}

// CanModerate reports whether the viewer holds owner or moderator powers.
func (s Snapshot) CanModerate() bool {
	return s.IsOwner || s.IsModerator
}

// CanParticipate reports whether the viewer may post in the club.
func (s Snapshot) CanParticipate() bool {
	return s.IsMember
}
