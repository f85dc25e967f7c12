package membership

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/njohnson2897/bookmarkd-sub000/internal/domain"
)

func newClub(privacy domain.Privacy) *domain.Club {
	return &domain.Club{
		OwnerID:      "owner",
		MemberIDs:    []string{"mod", "member"},
		ModeratorIDs: []string{"mod"},
		Privacy:      privacy,
	}
}

func TestResolve_Roles(t *testing.T) {
	club := newClub(domain.PrivacyPublic)

	tests := []struct {
		viewer string
		want   Snapshot
	}{
		{"owner", Snapshot{MemberCount: 3, IsMember: true, IsOwner: true, IsModerator: true}},
		{"mod", Snapshot{MemberCount: 3, IsMember: true, IsModerator: true}},
		{"member", Snapshot{MemberCount: 3, IsMember: true}},
		{"stranger", Snapshot{MemberCount: 3, CanJoin: true}},
		{"", Snapshot{MemberCount: 3}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("viewer=%q", tt.viewer), func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(club, tt.viewer))
		})
	}
}

func TestResolve_NewClubCountsOwner(t *testing.T) {
	club := &domain.Club{OwnerID: "a", Privacy: domain.PrivacyPublic}
	assert.Equal(t, 1, Resolve(club, "a").MemberCount)

	club.AddMember("b")
	s := Resolve(club, "b")
	assert.Equal(t, 2, s.MemberCount)
	assert.True(t, s.IsMember)
	assert.False(t, s.IsOwner)
}

func TestResolve_JoinEligibility(t *testing.T) {
	tests := []struct {
		privacy     domain.Privacy
		wantJoin    bool
		wantRequest bool
	}{
		{domain.PrivacyPublic, true, false},
		{domain.PrivacyPrivate, true, true},
		{domain.PrivacyInviteOnly, false, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.privacy), func(t *testing.T) {
			s := Resolve(newClub(tt.privacy), "stranger")
			assert.Equal(t, tt.wantJoin, s.CanJoin)
			assert.Equal(t, tt.wantRequest, s.CanRequest)

			member := Resolve(newClub(tt.privacy), "member")
			assert.False(t, member.CanJoin)
			assert.False(t, member.CanRequest)
		})
	}
}

func TestResolve_StaleModeratorEntryIsIgnored(t *testing.T) {
	club := newClub(domain.PrivacyPublic)
	club.ModeratorIDs = append(club.ModeratorIDs, "ghost")

	s := Resolve(club, "ghost")
	assert.False(t, s.IsModerator)
	assert.False(t, s.CanModerate())
}

func TestResolve_RoleImplicationChain(t *testing.T) {
	clubs := []*domain.Club{
		newClub(domain.PrivacyPublic),
		newClub(domain.PrivacyInviteOnly),
		{OwnerID: "owner", Privacy: domain.PrivacyPrivate},
		{OwnerID: "owner", MemberIDs: []string{"x"}, ModeratorIDs: []string{"x", "y"}},
	}
	viewers := []string{"", "owner", "mod", "member", "stranger", "x", "y"}

	for _, club := range clubs {
		for _, v := range viewers {
			s := Resolve(club, v)
			if s.IsOwner {
				assert.True(t, s.IsModerator, "owner %q must moderate", v)
			}
			if s.IsModerator {
				assert.True(t, s.IsMember, "moderator %q must be a member", v)
			}
			assert.Equal(t, s.IsMember, s.CanParticipate())
			assert.False(t, s.CanJoin && s.IsMember)
		}
	}
}
