// Package adapthttp implements the HTTP adapter for the application.
package adapthttp

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"musify/internal/app"
	"musify/internal/domain"
	"musify/internal/observability"
)

// Authenticator resolves the principal of a request from its Authorization header.
type Authenticator interface {
	Authenticate(ctx context.Context, header string) (domain.Principal, error)
}

// Services are the application services the adapter routes to.
type Services struct {
	Auth          *app.AuthService
	Authenticator Authenticator
	Accounts      *app.AccountService
	Playlists     *app.PlaylistService
	Tracks        *app.TrackService
}

// Options configures the adapter.
type Options struct {
	// StaticDir is served under /private/.
	StaticDir string
	// RateLimit and RateBurst bound auth attempts per client address.
	RateLimit rate.Limit
	RateBurst int
	// Metrics may be nil.
	Metrics *observability.Metrics
	Logger  *log.Logger
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	svc       Services
	staticDir string
	public    *PublicPaths
	limiter   *ipRateLimiter
	docs      *apiDocs
	metrics   *observability.Metrics
	logger    *log.Logger
}

// New creates a Server wired to the given application services.
func New(svc Services, opts Options) (*Server, error) {
	docs, err := newAPIDocs()
	if err != nil {
		return nil, err
	}
	public, err := NewPublicPaths(DefaultPublicPaths...)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		svc:       svc,
		staticDir: opts.StaticDir,
		public:    public,
		limiter:   newIPRateLimiter(opts.RateLimit, opts.RateBurst),
		docs:      docs,
		metrics:   opts.Metrics,
		logger:    logger,
	}, nil
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	root := mux.NewRouter()

	api := root.PathPrefix("/api").Subrouter()
	api.Use(withNoCache)
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}).Methods(http.MethodGet)

	authAPI := api.PathPrefix("/auth").Subrouter()
	authAPI.Handle("/register", s.rateLimited(http.HandlerFunc(s.handleRegister))).Methods(http.MethodPost)
	authAPI.Handle("/login", s.rateLimited(http.HandlerFunc(s.handleLogin))).Methods(http.MethodPost)
	authAPI.HandleFunc("/me", s.withPrincipal(s.handleMe)).Methods(http.MethodGet)

	api.HandleFunc("/users", s.withPrincipal(s.handleListUsers)).Methods(http.MethodGet)
	api.HandleFunc("/users/{id:[0-9]+}", s.withPrincipal(s.handleGetUser)).Methods(http.MethodGet)
	api.HandleFunc("/users/{id:[0-9]+}", s.withPrincipal(s.handleUpdateUser)).Methods(http.MethodPut)
	api.HandleFunc("/users/{id:[0-9]+}", s.withPrincipal(s.handleDeleteUser)).Methods(http.MethodDelete)

	api.HandleFunc("/playlists", s.withPrincipal(s.handleCreatePlaylist)).Methods(http.MethodPost)
	api.HandleFunc("/playlists", s.withPrincipal(s.handleListPlaylists)).Methods(http.MethodGet)
	api.HandleFunc("/playlists/{id:[0-9]+}", s.withPrincipal(s.handleGetPlaylist)).Methods(http.MethodGet)
	api.HandleFunc("/playlists/{id:[0-9]+}", s.withPrincipal(s.handleUpdatePlaylist)).Methods(http.MethodPut)
	api.HandleFunc("/playlists/{id:[0-9]+}", s.withPrincipal(s.handleDeletePlaylist)).Methods(http.MethodDelete)
	api.HandleFunc("/playlists/{id:[0-9]+}/tracks", s.withPrincipal(s.handleListPlaylistTracks)).Methods(http.MethodGet)
	api.HandleFunc("/playlists/{id:[0-9]+}/tracks", s.withPrincipal(s.handleAddPlaylistTrack)).Methods(http.MethodPost)
	api.HandleFunc("/playlists/{id:[0-9]+}/tracks/{trackId:[0-9]+}", s.withPrincipal(s.handleRemovePlaylistTrack)).Methods(http.MethodDelete)

	api.HandleFunc("/tracks", s.withPrincipal(s.handleCreateTrack)).Methods(http.MethodPost)
	api.HandleFunc("/tracks", s.withPrincipal(s.handleListTracks)).Methods(http.MethodGet)
	api.HandleFunc("/tracks/{id:[0-9]+}", s.withPrincipal(s.handleGetTrack)).Methods(http.MethodGet)

	root.HandleFunc("/v3/api-docs", s.handleAPIDocs).Methods(http.MethodGet)
	root.HandleFunc("/v3/api-docs/{name}", s.handleAPIDocsSchema).Methods(http.MethodGet)

	if s.staticDir != "" {
		root.PathPrefix("/private/").Handler(
			http.StripPrefix("/private", staticFromDisk(s.staticDir)),
		).Methods(http.MethodGet, http.MethodHead)
	}

	s.docs.setRoutes(walkRoutes(root, s.public))

	return s.requestID(s.logging(s.metricsMiddleware(root, s.authenticate(s.authorize(root)))))
}
