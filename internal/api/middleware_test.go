package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractToken_Precedence(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/graphql?token=from-query", strings.NewReader(`{"token":"from-body"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer from-header")
	assert.Equal(t, "from-header", extractToken(req))

	req.Header.Del("Authorization")
	assert.Equal(t, "from-query", extractToken(req))
}

func TestExtractToken_BodyIsRestored(t *testing.T) {
	body := `{"token":"abc","query":"{ me { id } }"}`
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	assert.Equal(t, "abc", extractToken(req))

	rest, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.Equal(t, body, string(rest))
}

func TestExtractToken_IgnoresOtherBodies(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`token=abc`))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	assert.Empty(t, extractToken(req))

	req = httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`not json`))
	req.Header.Set("Content-Type", "application/json")
	assert.Empty(t, extractToken(req))
}

func TestExtractToken_NonBearerHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/graphql", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	assert.Empty(t, extractToken(req))
}
