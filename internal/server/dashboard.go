package server

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const (
	dashboardRecentAlbums   = 5
	dashboardExpiringLimit  = 10
	dashboardExpiringWindow = 72 * time.Hour
)

// handleAdminMetrics serves GET /api/admin/metrics: aggregate counts plus
// the most recent albums and photos about to expire.
func (s *Server) handleAdminMetrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	totalAlbums, err := s.st.countAlbums(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("dashboard query failed")
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	totalPhotos, err := s.st.countPhotos(ctx)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	downloads, err := s.st.sumPhotoDownloads(ctx)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	recent, err := s.st.recentAlbums(ctx, dashboardRecentAlbums)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	now := time.Now().UTC()
	expiring, err := s.st.expiringPhotos(ctx, now.Add(dashboardExpiringWindow), dashboardExpiringLimit)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	recentDocs := make([]albumDoc, 0, len(recent))
	for _, a := range recent {
		recentDocs = append(recentDocs, albumToDoc(a, now))
	}
	expiringDocs := make([]photoDoc, 0, len(expiring))
	for _, p := range expiring {
		expiringDocs = append(expiringDocs, photoToDoc(p, now))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total_events":    totalAlbums,
		"total_photos":    totalPhotos,
		"downloads":       downloads,
		"recent_albums":   recentDocs,
		"expiring_photos": expiringDocs,
	})
}
