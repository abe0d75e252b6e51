package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/rs/zerolog/log"
)

// BuildInfo identifies the running binary.
type BuildInfo struct {
	Version string
	Commit  string
}

// Config carries the runtime settings the server needs beyond its
// injected dependencies.
type Config struct {
	Addr           string
	BaseURL        string
	Build          BuildInfo
	SessionTTL     time.Duration
	AdminEmail     string
	AdminPassword  string
	MaxUploadBytes int64
}

// Server is the HTTP front of the service. The blob client may be nil,
// in which case uploads are refused and externally hosted photos still
// work.
type Server struct {
	httpServer *http.Server
	cfg        Config
	db         *sql.DB
	mc         *minio.Client
	bucket     string
	st         *store
	lockout    *accountLockout
	handler    http.Handler
}

// New wires the route table and middleware chain.
func New(cfg Config, db *sql.DB, mc *minio.Client, bucket string) *Server {
	s := &Server{
		cfg:     cfg,
		db:      db,
		mc:      mc,
		bucket:  bucket,
		st:      &store{db: db},
		lockout: newAccountLockout(5, 15*time.Minute, 10*time.Minute),
	}

	loginLimiter := newRateLimiter(10, time.Minute)
	contactLimiter := newRateLimiter(5, time.Minute)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.HandleFunc("GET /metrics", s.promMetricsHandler)

	// Albums.
	mux.HandleFunc("GET /api/albums", s.handleListAlbums)
	mux.HandleFunc("POST /api/albums", s.requireAdmin(s.handleCreateAlbum))
	mux.HandleFunc("GET /api/albums/{id}", s.handleGetAlbum)
	mux.HandleFunc("DELETE /api/albums/{id}", s.requireAdmin(s.handleDeleteAlbum))

	// Photos.
	mux.HandleFunc("GET /api/albums/{id}/photos", s.handleListPhotos)
	mux.HandleFunc("POST /api/albums/{id}/photos", s.requireAdmin(s.handleUploadPhotos))
	mux.HandleFunc("PATCH /api/photos/{id}", s.requireAdmin(s.handleEditPhoto))
	mux.HandleFunc("DELETE /api/photos/{id}", s.requireAdmin(s.handleDeletePhoto))

	// Image delivery and sharing.
	mux.HandleFunc("GET /api/photos/{id}/image", s.handlePhotoImage)
	mux.HandleFunc("GET /api/photos/{id}/thumbnail", s.handlePhotoThumbnail)
	mux.HandleFunc("GET /api/photos/{id}/download", s.handlePhotoDownload)
	mux.HandleFunc("POST /api/photos/{id}/share", s.handleCreateShare)
	mux.HandleFunc("GET /share/{token}", s.handleResolveShare)

	// Contact.
	mux.HandleFunc("POST /api/contact", contactLimiter.middleware(s.handleContact))

	// Admin.
	mux.HandleFunc("POST /api/admin/login", loginLimiter.middleware(s.handleLogin))
	mux.HandleFunc("POST /api/admin/logout", s.handleLogout)
	mux.HandleFunc("POST /api/admin/reset/request", loginLimiter.middleware(s.handleResetRequest))
	mux.HandleFunc("POST /api/admin/reset/confirm", loginLimiter.middleware(s.handleResetConfirm))
	mux.HandleFunc("GET /api/admin/inbox", s.requireAdmin(s.handleInbox))
	mux.HandleFunc("GET /api/admin/metrics", s.requireAdmin(s.handleAdminMetrics))
	mux.HandleFunc("POST /api/admin/cleanup", s.requireAdmin(s.handleAdminCleanup))

	s.handler = requestIDMiddleware(loggingMiddleware(securityHeadersMiddleware(mux)))
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	return s
}

// Handler exposes the full middleware-wrapped handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start blocks serving HTTP until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	log.Info().Str("addr", s.cfg.Addr).Msg("http server listening")
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("response encode failed")
	}
}
