package domain

import "slices"

// Book is the local record of an externally catalogued volume.
// Books are created lazily the first time something references their GoogleID.
type Book struct {
	Base
	GoogleID      string   `json:"google_id"`
	Title         string   `json:"title,omitempty"`
	Authors       []string `json:"authors,omitempty"`
	Thumbnail     string   `json:"thumbnail,omitempty"`
	PublishedDate string   `json:"published_date,omitempty"`
	PageCount     int      `json:"page_count,omitempty"`
	ReviewIDs     []string `json:"review_ids"`
}

// HasMetadata reports whether display fields were back-filled.
func (b *Book) HasMetadata() bool {
	return b.Title != ""
}

// AddReview links a review to the book. Returns false if already linked.
func (b *Book) AddReview(reviewID string) bool {
	if slices.Contains(b.ReviewIDs, reviewID) {
		return false
	}
	b.ReviewIDs = append(b.ReviewIDs, reviewID)
	return true
}

// RemoveReview unlinks a review from the book.
func (b *Book) RemoveReview(reviewID string) {
	b.ReviewIDs = slices.DeleteFunc(b.ReviewIDs, func(id string) bool { return id == reviewID })
}
