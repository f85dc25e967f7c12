package domain

import (
	"slices"
	"time"
)

// ReadingStatus is where a book sits on a user's shelf.
type ReadingStatus string

const (
	StatusToRead           ReadingStatus = "To-Read"
	StatusCurrentlyReading ReadingStatus = "Currently Reading"
	StatusFinished         ReadingStatus = "Finished"
)

// Valid reports whether s is one of the known statuses.
func (s ReadingStatus) Valid() bool {
	switch s {
	case StatusToRead, StatusCurrentlyReading, StatusFinished:
		return true
	default:
		return false
	}
}

// BookStatus is a shelf entry embedded in its User. There is at most one
// entry per book; the service layer upserts rather than appends.
type BookStatus struct {
	BookID    string        `json:"book_id"`
	GoogleID  string        `json:"google_id"`
	Status    ReadingStatus `json:"status"`
	Favorite  bool          `json:"favorite"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// User represents a registered reader.
type User struct {
	Base
	Username       string       `json:"username"`
	Email          string       `json:"email"`
	PasswordHash   string       `json:"password_hash,omitempty"`
	Bio            string       `json:"bio,omitempty"`
	Location       string       `json:"location,omitempty"`
	FavoriteBook   string       `json:"favorite_book,omitempty"`
	FavoriteAuthor string       `json:"favorite_author,omitempty"`
	BookStatuses   []BookStatus `json:"book_statuses"`
	ReviewIDs      []string     `json:"review_ids"`
	ClubIDs        []string     `json:"club_ids"`
}

// BookStatusIndex returns the position of the shelf entry for bookID, or -1.
func (u *User) BookStatusIndex(bookID string) int {
	return slices.IndexFunc(u.BookStatuses, func(bs BookStatus) bool {
		return bs.BookID == bookID
	})
}

// AddClub records club membership on the user. Returns false if already present.
func (u *User) AddClub(clubID string) bool {
	if slices.Contains(u.ClubIDs, clubID) {
		return false
	}
	u.ClubIDs = append(u.ClubIDs, clubID)
	return true
}

// RemoveClub drops clubID from the user's club list. Returns false if absent.
func (u *User) RemoveClub(clubID string) bool {
	before := len(u.ClubIDs)
	u.ClubIDs = slices.DeleteFunc(u.ClubIDs, func(id string) bool { return id == clubID })
	return len(u.ClubIDs) != before
}
