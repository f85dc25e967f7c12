package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/njohnson2897/bookmarkd-sub000/internal/domain"
	domainerrors "github.com/njohnson2897/bookmarkd-sub000/internal/errors"
	"github.com/njohnson2897/bookmarkd-sub000/internal/id"
	"github.com/njohnson2897/bookmarkd-sub000/internal/metadata/googlebooks"
	"github.com/njohnson2897/bookmarkd-sub000/internal/store"
)

// MetadataSource looks up display metadata for an external book identifier.
type MetadataSource interface {
	GetVolume(ctx context.Context, googleID string) (*googlebooks.Volume, error)
}

// BookService resolves external book identifiers to local Book records.
type BookService struct {
	store    *store.Store
	metadata MetadataSource
	logger   *slog.Logger
}

// NewBookService creates a new book service. metadata may be nil, in which
// case books are created without display fields.
func NewBookService(store *store.Store, metadata MetadataSource, logger *slog.Logger) *BookService {
	return &BookService{
		store:    store,
		metadata: metadata,
		logger:   logger,
	}
}

// HasMetadata reports whether an external metadata source is configured.
func (s *BookService) HasMetadata() bool {
	return s.metadata != nil
}

// BookDetails is a local book merged with live external metadata.
type BookDetails struct {
	Book   *domain.Book
	Volume *googlebooks.Volume
}

func normalizeGoogleID(googleID string) (string, error) {
	googleID = strings.TrimSpace(googleID)
	if googleID == "" {
		return "", domainerrors.Validation("googleId is required")
	}
	return googleID, nil
}

// FindOrCreate returns the Book for googleID, creating it on first reference.
// At most one Book exists per googleID; a concurrent creator loses on the
// unique index and re-reads the winner.
func (s *BookService) FindOrCreate(ctx context.Context, googleID string) (*domain.Book, error) {
	googleID, err := normalizeGoogleID(googleID)
	if err != nil {
		return nil, err
	}

	book, err := s.store.GetBookByGoogleID(ctx, googleID)
	if err == nil {
		return book, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("get book: %w", err)
	}

	bookID, err := id.Generate(id.PrefixBook)
	if err != nil {
		return nil, fmt.Errorf("generate book ID: %w", err)
	}
	book = &domain.Book{
		Base:      domain.Base{ID: bookID},
		GoogleID:  googleID,
		ReviewIDs: []string{},
	}
	book.InitTimestamps()
	s.backfill(ctx, book)

	if err := s.store.Books.Create(ctx, book); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return s.store.GetBookByGoogleID(ctx, googleID)
		}
		return nil, fmt.Errorf("create book: %w", err)
	}

	s.logger.Info("book created", "book_id", book.ID, "google_id", googleID)
	return book, nil
}

// backfill copies display fields from the metadata source. Lookup failures
// never block book creation.
func (s *BookService) backfill(ctx context.Context, book *domain.Book) {
	if s.metadata == nil {
		return
	}

	vol, err := s.metadata.GetVolume(ctx, book.GoogleID)
	if err != nil {
		s.logger.Debug("metadata backfill skipped", "google_id", book.GoogleID, "error", err)
		return
	}

	book.Title = vol.Title
	book.Authors = vol.Authors
	book.Thumbnail = vol.Thumbnail
	book.PublishedDate = vol.PublishedDate
	book.PageCount = vol.PageCount
}

// Get returns the book with bookID.
func (s *BookService) Get(ctx context.Context, bookID string) (*domain.Book, error) {
	book, err := s.store.Books.Get(ctx, bookID)
	if err != nil {
		return nil, notFound(err, "get book", "book")
	}
	return book, nil
}

// GetByGoogleID returns the local book for googleID without creating it.
func (s *BookService) GetByGoogleID(ctx context.Context, googleID string) (*domain.Book, error) {
	googleID, err := normalizeGoogleID(googleID)
	if err != nil {
		return nil, err
	}
	book, err := s.store.GetBookByGoogleID(ctx, googleID)
	if err != nil {
		return nil, notFound(err, "get book", "book")
	}
	return book, nil
}

// Lookup merges the cached book (if any) with a live metadata lookup. It is
// NOT_FOUND only when neither source knows googleID.
func (s *BookService) Lookup(ctx context.Context, googleID string) (*BookDetails, error) {
	googleID, err := normalizeGoogleID(googleID)
	if err != nil {
		return nil, err
	}

	details := &BookDetails{}

	book, err := s.store.GetBookByGoogleID(ctx, googleID)
	switch {
	case err == nil:
		details.Book = book
	case !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("get book: %w", err)
	}

	if s.metadata != nil {
		vol, err := s.metadata.GetVolume(ctx, googleID)
		switch {
		case err == nil:
			details.Volume = vol
		case errors.Is(err, googlebooks.ErrNotFound):
		default:
			s.logger.Warn("metadata lookup failed", "google_id", googleID, "error", err)
		}
	}

	if details.Book == nil && details.Volume == nil {
		return nil, domainerrors.NotFound("book not found")
	}
	return details, nil
}
