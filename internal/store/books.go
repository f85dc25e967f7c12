package store

import (
	"context"

	"github.com/njohnson2897/bookmarkd-sub000/internal/domain"
)

// BookIndexGoogleID guarantees at most one Book per external identifier.
const BookIndexGoogleID = "google_id"

func (s *Store) initBooks() {
	s.Books = NewEntity[domain.Book](s, prefixBook, func(b *domain.Book) string { return b.ID }).
		WithIndex(BookIndexGoogleID, func(b *domain.Book) []string {
			return []string{b.GoogleID}
		})
}

// GetBookByGoogleID looks a book up by its external identifier.
func (s *Store) GetBookByGoogleID(ctx context.Context, googleID string) (*domain.Book, error) {
	return s.Books.GetByIndex(ctx, BookIndexGoogleID, googleID)
}
