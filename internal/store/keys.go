package store

import (
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Entity key prefixes.
const (
	prefixUser         = "user:"
	prefixBook         = "book:"
	prefixClub         = "club:"
	prefixReview       = "review:"
	prefixLike         = "like:"
	prefixComment      = "comment:"
	prefixFollow       = "follow:"
	prefixThread       = "thread:"
	prefixNotification = "notification:"
	prefixContact      = "contact:"
	prefixJoinRequest  = "joinreq:"
	prefixInvitation   = "invitation:"
)

// invertedTimestamp returns a fixed-width string that sorts newest first.
func invertedTimestamp(t time.Time) string {
	return fmt.Sprintf("%019d", math.MaxInt64-t.UnixNano())
}

// sortableTimestamp returns a fixed-width string that sorts oldest first.
func sortableTimestamp(t time.Time) string {
	return fmt.Sprintf("%019d", t.UnixNano())
}

// pairKey joins two IDs into a single index value.
func pairKey(a, b string) string {
	return a + ":" + b
}

// normalizeEmail folds an email address for case-insensitive uniqueness.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// normalizeUsername folds a username so that visually identical names
// ("Ｂｏｏｋｗｏｒｍ", "bookworm") map to the same index key.
func normalizeUsername(username string) string {
	return strings.ToLower(norm.NFKC.String(strings.TrimSpace(username)))
}
