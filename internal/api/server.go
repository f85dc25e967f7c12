// Package api provides the HTTP server for bookmarkd: the GraphQL endpoint
// and the small REST surface served through huma.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/njohnson2897/bookmarkd-sub000/internal/auth"
	"github.com/njohnson2897/bookmarkd-sub000/internal/service"
	"github.com/njohnson2897/bookmarkd-sub000/internal/store"
)

// Options tunes the HTTP surface.
type Options struct {
	// CORSAllowedOrigins defaults to every origin when empty.
	CORSAllowedOrigins []string
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    *store.Store
	services *service.Services
	tokens   *auth.TokenService
	graph    http.Handler
	opts     Options
	router   *chi.Mux
	api      huma.API
	logger   *slog.Logger
}

// NewServer creates the HTTP server with all routes configured. graph
// serves /graphql.
func NewServer(st *store.Store, services *service.Services, tokens *auth.TokenService, graph http.Handler, opts Options, logger *slog.Logger) *Server {
	s := &Server{
		store:    st,
		services: services,
		tokens:   tokens,
		graph:    graph,
		opts:     opts,
		router:   chi.NewRouter(),
		logger:   logger,
	}

	s.setupMiddleware()

	config := huma.DefaultConfig("bookmarkd API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	s.api = humachi.New(s.router, config)
	RegisterErrorHandler()

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mainly for tests.
func (s *Server) API() huma.API {
	return s.api
}

func (s *Server) setupMiddleware() {
	origins := s.opts.CORSAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))
	s.router.Use(s.identify)
}

func (s *Server) setupRoutes() {
	s.router.Handle("/graphql", s.graph)

	s.registerHealthRoutes()
	s.registerBookRoutes()
}
