package graph

import (
	"encoding/json"
	"log/slog"
	"net/http"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"

	domainerrors "github.com/njohnson2897/bookmarkd-sub000/internal/errors"
	"github.com/njohnson2897/bookmarkd-sub000/internal/http/response"
)

// Handler serves the schema over HTTP. POST bodies are handled by relay;
// GET requests carry query, operationName and variables as URL parameters.
type Handler struct {
	schema *graphql.Schema
	post   *relay.Handler
	logger *slog.Logger
}

// NewHandler creates the /graphql endpoint for schema.
func NewHandler(schema *graphql.Schema, logger *slog.Logger) *Handler {
	return &Handler{schema: schema, post: &relay.Handler{Schema: schema}, logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.post.ServeHTTP(w, r)
	case http.MethodGet:
		h.serveGet(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		response.Error(w, http.StatusMethodNotAllowed, domainerrors.CodeValidation, "method not allowed", h.logger)
	}
}

func (h *Handler) serveGet(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	query := params.Get("query")
	if query == "" {
		response.HandleError(w, domainerrors.Validation("query parameter is required"), h.logger)
		return
	}

	var variables map[string]any
	if raw := params.Get("variables"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &variables); err != nil {
			response.HandleError(w, domainerrors.Validation("variables must be a JSON object"), h.logger)
			return
		}
	}

	resp := h.schema.Exec(r.Context(), query, params.Get("operationName"), variables)
	response.JSON(w, http.StatusOK, resp, h.logger)
}
