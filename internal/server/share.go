package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultShareHours = 48
	maxShareHours     = 720
)

func clampShareHours(n int) int {
	if n <= 0 {
		return defaultShareHours
	}
	if n > maxShareHours {
		return maxShareHours
	}
	return n
}

type createShareReq struct {
	Hours int `json:"hours"`
}

// handleCreateShare serves POST /api/photos/{id}/share. Shares can be
// minted for any existing photo, but resolving one re-checks the photo's
// own expiry.
func (s *Server) handleCreateShare(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r.PathValue("id"))
	if !ok {
		return
	}

	var req createShareReq
	if r.Body != nil {
		// A missing or empty body just means default duration.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	p, err := s.st.getPhotoRow(r.Context(), id)
	if errors.Is(err, errNotFound) {
		http.Error(w, "photo not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	tok, err := generateToken(8)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	hours := clampShareHours(req.Hours)
	share := ShareToken{
		ID:        uuid.New(),
		PhotoID:   p.ID,
		Token:     tok,
		ExpiresAt: time.Now().UTC().Add(time.Duration(hours) * time.Hour),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.st.insertShareToken(r.Context(), share); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("share insert failed")
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	getMetrics().RecordShareIssued()
	writeJSON(w, http.StatusOK, map[string]string{
		"token":      share.Token,
		"url":        s.cfg.BaseURL + "/share/" + share.Token,
		"expires_at": share.ExpiresAt.Format(time.RFC3339),
	})
}

// handleResolveShare serves GET /share/{token}. Unknown tokens 404 before
// expired ones 410, so probing cannot distinguish a never-issued token
// from a dead one by guessing.
func (s *Server) handleResolveShare(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")

	share, err := s.st.getShareToken(r.Context(), token)
	switch {
	case errors.Is(err, errNotFound):
		http.Error(w, "invalid link", http.StatusNotFound)
		return
	case errors.Is(err, errShareExpired):
		http.Error(w, "link expired", http.StatusGone)
		return
	case err != nil:
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	p, err := s.st.getPhoto(r.Context(), share.PhotoID)
	switch {
	case errors.Is(err, errNotFound):
		http.Error(w, "invalid link", http.StatusNotFound)
		return
	case errors.Is(err, errPhotoExpired):
		http.Error(w, "photo expired", http.StatusGone)
		return
	case err != nil:
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	getMetrics().RecordShareResolved()
	s.servePhoto(w, r, p, p.ObjectKey)
}
