package domain

// Review is a user's rating of a book. The author never changes.
type Review struct {
	Base
	BookID      string `json:"book_id"`
	GoogleID    string `json:"google_id"`
	UserID      string `json:"user_id"`
	Stars       int    `json:"stars"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// Like is a (user, review) edge. A user likes a review at most once.
type Like struct {
	Base
	UserID   string `json:"user_id"`
	ReviewID string `json:"review_id"`
}

// Comment is a short reply attached to a review.
type Comment struct {
	Base
	UserID   string `json:"user_id"`
	ReviewID string `json:"review_id"`
	Text     string `json:"text"`
}
