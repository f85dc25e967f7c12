package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/njohnson2897/bookmarkd-sub000/internal/service"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "lookupBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{googleId}",
		Summary:     "Look up a book",
		Description: "Returns the cached book merged with live Google Books metadata",
		Tags:        []string{"Books"},
	}, s.handleLookupBook)
}

// LookupBookInput is the request for a book lookup.
type LookupBookInput struct {
	GoogleID string `path:"googleId" maxLength:"64" doc:"Google Books volume ID"`
}

// BookResponse is a book as seen by REST clients.
type BookResponse struct {
	ID            string   `json:"id,omitempty" doc:"Local book ID, absent when the book was never referenced"`
	GoogleID      string   `json:"googleId" doc:"Google Books volume ID"`
	Title         string   `json:"title,omitempty"`
	Subtitle      string   `json:"subtitle,omitempty"`
	Authors       []string `json:"authors,omitempty"`
	Publisher     string   `json:"publisher,omitempty"`
	PublishedDate string   `json:"publishedDate,omitempty"`
	Description   string   `json:"description,omitempty"`
	PageCount     int      `json:"pageCount,omitempty"`
	Categories    []string `json:"categories,omitempty"`
	Thumbnail     string   `json:"thumbnail,omitempty"`
	ReviewCount   int      `json:"reviewCount" doc:"Reviews posted on bookmarkd"`
}

// BookOutput wraps the book response for Huma.
type BookOutput struct {
	Body BookResponse
}

func (s *Server) handleLookupBook(ctx context.Context, input *LookupBookInput) (*BookOutput, error) {
	details, err := s.services.Book.Lookup(ctx, input.GoogleID)
	if err != nil {
		return nil, s.toAPIError(ctx, err)
	}
	return &BookOutput{Body: newBookResponse(input.GoogleID, details)}, nil
}

// newBookResponse prefers live metadata over cached display fields.
func newBookResponse(googleID string, details *service.BookDetails) BookResponse {
	resp := BookResponse{GoogleID: googleID}

	if b := details.Book; b != nil {
		resp.ID = b.ID
		resp.GoogleID = b.GoogleID
		resp.Title = b.Title
		resp.Authors = b.Authors
		resp.Thumbnail = b.Thumbnail
		resp.PublishedDate = b.PublishedDate
		resp.PageCount = b.PageCount
		resp.ReviewCount = len(b.ReviewIDs)
	}

	if v := details.Volume; v != nil {
		resp.Subtitle = v.Subtitle
		resp.Publisher = v.Publisher
		resp.Description = v.Description
		resp.Categories = v.Categories
		if v.Title != "" {
			resp.Title = v.Title
		}
		if len(v.Authors) > 0 {
			resp.Authors = v.Authors
		}
		if v.Thumbnail != "" {
			resp.Thumbnail = v.Thumbnail
		}
		if v.PublishedDate != "" {
			resp.PublishedDate = v.PublishedDate
		}
		if v.PageCount > 0 {
			resp.PageCount = v.PageCount
		}
	}

	return resp
}
