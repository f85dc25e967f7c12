package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/njohnson2897/bookmarkd-sub000/internal/viewer"
)

// maxTokenBodyBytes bounds how much of a request body is read while looking
// for a token field.
const maxTokenBodyBytes = 1 << 20

// identify attaches the caller's viewer to the request context. The token
// is taken from the Authorization header, then the token query parameter,
// then a top-level "token" field of a JSON body. A missing or invalid token
// leaves the request anonymous; resolvers decide whether that is enough.
func (s *Server) identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		v, err := s.tokens.Viewer(token)
		if err != nil {
			s.logger.DebugContext(r.Context(), "ignoring invalid token", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(viewer.WithViewer(r.Context(), v)))
	})
}

func extractToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}

	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}

	return tokenFromBody(r)
}

// tokenFromBody reads a JSON body and restores it for the next handler.
func tokenFromBody(r *http.Request) string {
	if r.Body == nil || r.Method != http.MethodPost {
		return ""
	}
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxTokenBodyBytes+1))
	rest := r.Body
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(body), rest), rest}
	if err != nil || len(body) > maxTokenBodyBytes {
		return ""
	}

	var envelope struct {
		Token string `json:"token"`
	}
	if json.Unmarshal(body, &envelope) != nil {
		return ""
	}
	return envelope.Token
}
