package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njohnson2897/bookmarkd-sub000/internal/auth"
	"github.com/njohnson2897/bookmarkd-sub000/internal/graph"
	"github.com/njohnson2897/bookmarkd-sub000/internal/metadata/googlebooks"
	"github.com/njohnson2897/bookmarkd-sub000/internal/service"
	"github.com/njohnson2897/bookmarkd-sub000/internal/store"
)

const testKeyHex = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

// stubVolumes knows a single volume.
type stubVolumes struct{}

func (stubVolumes) GetVolume(_ context.Context, googleID string) (*googlebooks.Volume, error) {
	if googleID != "known" {
		return nil, googlebooks.ErrNotFound
	}
	return &googlebooks.Volume{
		ID:          "known",
		Title:       "The Left Hand of Darkness",
		Authors:     []string{"Ursula K. Le Guin"},
		Description: "Genly Ai on Gethen.",
		PageCount:   304,
	}, nil
}

type testServer struct {
	server   *Server
	services *service.Services
	tokens   *auth.TokenService
	api      humatest.TestAPI
}

func setupTestServer(t *testing.T, opts Options) *testServer {
	t.Helper()

	st, err := store.New(filepath.Join(t.TempDir(), "api.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	tokens, err := auth.NewTokenService(testKeyHex, time.Hour)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	services := service.NewServices(st, tokens, stubVolumes{}, logger)

	schema, err := graph.NewSchema(services, logger)
	require.NoError(t, err)

	server := NewServer(st, services, tokens, graph.NewHandler(schema, logger), opts, logger)

	return &testServer{
		server:   server,
		services: services,
		tokens:   tokens,
		api:      humatest.Wrap(t, server.API()),
	}
}

// signUp returns a token for a fresh user.
func (ts *testServer) signUp(t *testing.T, username string) string {
	t.Helper()
	payload, err := ts.services.Auth.SignUp(context.Background(), service.SignUpRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	return payload.Token
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ts.server.ServeHTTP(rec, req)
	return rec
}

// meUsername decodes the username of a `{ me { username } }` response,
// returning "" for an anonymous viewer.
func meUsername(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Data struct {
			Me *struct{ Username string }
		}
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	if resp.Data.Me == nil {
		return ""
	}
	return resp.Data.Me.Username
}

const meQuery = `{"query":"{ me { username } }"}`

func postGraphQL(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	var health HealthResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "healthy", health.Components["database"].Status)
	assert.Equal(t, "healthy", health.Components["metadata"].Status)
}

func TestLookupBook_FromMetadata(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.api.Get("/api/v1/books/known")
	require.Equal(t, http.StatusOK, resp.Code)

	var book BookResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &book))
	assert.Empty(t, book.ID)
	assert.Equal(t, "known", book.GoogleID)
	assert.Equal(t, "The Left Hand of Darkness", book.Title)
	assert.Equal(t, 304, book.PageCount)
	assert.Zero(t, book.ReviewCount)
}

func TestLookupBook_CachedBookCountsReviews(t *testing.T) {
	ts := setupTestServer(t, Options{})
	ctx := context.Background()

	payload, err := ts.services.Auth.SignUp(ctx, service.SignUpRequest{
		Username: "reader", Email: "reader@example.com", Password: "password123",
	})
	require.NoError(t, err)
	_, err = ts.services.Review.CreateReview(ctx, payload.User.ID, service.CreateReviewRequest{GoogleID: "known", Stars: 5})
	require.NoError(t, err)

	resp := ts.api.Get("/api/v1/books/known")
	require.Equal(t, http.StatusOK, resp.Code)

	var book BookResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &book))
	assert.NotEmpty(t, book.ID)
	assert.Equal(t, 1, book.ReviewCount)
	assert.Equal(t, "Genly Ai on Gethen.", book.Description)
}

func TestLookupBook_NotFound(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.api.Get("/api/v1/books/nobody-knows")
	require.Equal(t, http.StatusNotFound, resp.Code)

	var apiErr APIError
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &apiErr))
	assert.Equal(t, "NOT_FOUND", apiErr.Code)
}

func TestGraphQL_IdentitySources(t *testing.T) {
	ts := setupTestServer(t, Options{})
	token := ts.signUp(t, "alice")

	t.Run("anonymous", func(t *testing.T) {
		assert.Empty(t, meUsername(t, ts.do(postGraphQL(meQuery))))
	})

	t.Run("bearer header", func(t *testing.T) {
		req := postGraphQL(meQuery)
		req.Header.Set("Authorization", "Bearer "+token)
		assert.Equal(t, "alice", meUsername(t, ts.do(req)))
	})

	t.Run("query parameter", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/graphql?query=%7Bme%7Busername%7D%7D&token="+token, nil)
		assert.Equal(t, "alice", meUsername(t, ts.do(req)))
	})

	t.Run("body field", func(t *testing.T) {
		body := `{"token":"` + token + `","query":"{ me { username } }"}`
		assert.Equal(t, "alice", meUsername(t, ts.do(postGraphQL(body))))
	})

	t.Run("invalid token degrades to anonymous", func(t *testing.T) {
		req := postGraphQL(meQuery)
		req.Header.Set("Authorization", "Bearer not-a-token")
		assert.Empty(t, meUsername(t, ts.do(req)))
	})
}

func TestCORS_Preflight(t *testing.T) {
	ts := setupTestServer(t, Options{CORSAllowedOrigins: []string{"https://bookmarkd.example"}})

	req := httptest.NewRequest(http.MethodOptions, "/graphql", nil)
	req.Header.Set("Origin", "https://bookmarkd.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := ts.do(req)

	assert.Equal(t, "https://bookmarkd.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/graphql", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = ts.do(req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
