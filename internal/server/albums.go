package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultAlbumExpiryDays = 15
	defaultAlbumListLimit  = 60
	maxAlbumListLimit      = 200
)

// clampExpiryDays bounds expires_in_days to the schema's 1..365 range,
// substituting the default when unset.
func clampExpiryDays(n int) int {
	if n <= 0 {
		return defaultAlbumExpiryDays
	}
	if n > 365 {
		return 365
	}
	return n
}

func clampListLimit(n int) int {
	if n <= 0 {
		return defaultAlbumListLimit
	}
	if n > maxAlbumListLimit {
		return maxAlbumListLimit
	}
	return n
}

// parseID turns a path value into a UUID, or reports a client error.
func parseID(w http.ResponseWriter, raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// handleListAlbums serves GET /api/albums. The sweeper runs first so the
// listing never reflects photos that are already past their expiry.
func (s *Server) handleListAlbums(w http.ResponseWriter, r *http.Request) {
	s.sweepExpired(r.Context())

	q := r.URL.Query()

	var day *time.Time
	if raw := q.Get("date"); raw != "" {
		if d, err := time.Parse("2006-01-02", raw); err == nil {
			day = &d
		} else if d, err := time.Parse(time.RFC3339, raw); err == nil {
			day = &d
		}
		// Unparseable dates are ignored, not rejected.
	}

	limit := defaultAlbumListLimit
	if raw := q.Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = clampListLimit(n)
		}
	}

	albums, err := s.st.listAlbums(r.Context(), q.Get("q"), q.Get("location"), day, limit)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("album listing failed")
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	now := time.Now().UTC()
	items := make([]albumDoc, 0, len(albums))
	for _, a := range albums {
		items = append(items, albumToDoc(a, now))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

type createAlbumReq struct {
	EventName     string    `json:"event_name"`
	Location      string    `json:"location"`
	Date          time.Time `json:"date"`
	CoverImageURL string    `json:"cover_image_url"`
	ExpiresInDays int       `json:"expires_in_days"`
}

// handleCreateAlbum serves POST /api/albums (admin).
func (s *Server) handleCreateAlbum(w http.ResponseWriter, r *http.Request) {
	var req createAlbumReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	req.EventName = strings.TrimSpace(req.EventName)
	if req.EventName == "" || req.Date.IsZero() {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	a := Album{
		ID:            uuid.New(),
		EventName:     req.EventName,
		Location:      strings.TrimSpace(req.Location),
		Date:          req.Date.UTC(),
		CoverImageURL: strings.TrimSpace(req.CoverImageURL),
		ExpiresInDays: clampExpiryDays(req.ExpiresInDays),
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.st.insertAlbum(r.Context(), a); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("album insert failed")
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": a.ID.String()})
}

// handleGetAlbum serves GET /api/albums/{id}.
func (s *Server) handleGetAlbum(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r.PathValue("id"))
	if !ok {
		return
	}

	a, err := s.st.getAlbum(r.Context(), id)
	if errors.Is(err, errNotFound) {
		http.Error(w, "album not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, albumToDoc(a, time.Now().UTC()))
}

// handleDeleteAlbum serves DELETE /api/albums/{id} (admin). Deletion
// cascades through the album's photos, blobs first, using the same
// idempotent path as the sweeper.
func (s *Server) handleDeleteAlbum(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r.PathValue("id"))
	if !ok {
		return
	}
	logger := zerolog.Ctx(r.Context())

	if _, err := s.st.getAlbum(r.Context(), id); err != nil {
		if errors.Is(err, errNotFound) {
			http.Error(w, "album not found", http.StatusNotFound)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	photos, err := s.st.albumPhotoRows(r.Context(), id)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	for _, p := range photos {
		s.removeBlobs(r.Context(), blobRef{ID: p.ID, ObjectKey: p.ObjectKey, ThumbKey: p.ThumbKey})
		if _, err := s.st.deletePhotoRow(r.Context(), p.ID); err != nil {
			logger.Error().Err(err).Str("photo_id", p.ID.String()).Msg("cascade photo delete failed")
		}
	}

	if _, err := s.st.deleteAlbumRow(r.Context(), id); err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	logger.Info().Str("album_id", id.String()).Int("photos", len(photos)).Msg("album deleted")
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
