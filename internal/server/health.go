package server

import (
	"context"
	"net/http"
	"time"
)

// handleRoot serves GET /.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"name":   "photo-drop",
		"status": "ok",
	})
}

// handleHealth serves GET /health with per-component checks.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	components := map[string]string{}
	healthy := true

	if err := s.db.PingContext(ctx); err != nil {
		components["database"] = "unreachable"
		healthy = false
	} else {
		components["database"] = "ok"
	}

	if s.mc == nil {
		components["blob_store"] = "not configured"
	} else if ok, err := s.mc.BucketExists(ctx, s.bucket); err != nil || !ok {
		components["blob_store"] = "unreachable"
		healthy = false
	} else {
		components["blob_store"] = "ok"
	}

	status := "ok"
	code := http.StatusOK
	if !healthy {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"status":     status,
		"components": components,
	})
}

// handleReady serves GET /ready: a single round trip to the database.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	var one int
	if err := s.db.QueryRowContext(ctx, `SELECT 1`).Scan(&one); err != nil {
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
