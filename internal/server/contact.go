package server

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contactReq struct {
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	EventName string     `json:"event_name"`
	Date      *time.Time `json:"date"`
	Message   string     `json:"message"`
}

// handleContact serves POST /api/contact (public, rate limited).
func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	var req contactReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Message = strings.TrimSpace(req.Message)
	if req.Name == "" || req.Message == "" {
		http.Error(w, "name and message are required", http.StatusBadRequest)
		return
	}
	if !validateEmail(req.Email) {
		http.Error(w, "invalid email", http.StatusBadRequest)
		return
	}

	m := Message{
		ID:        uuid.New(),
		Name:      req.Name,
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		EventName: strings.TrimSpace(req.EventName),
		Message:   req.Message,
		CreatedAt: time.Now().UTC(),
	}
	if req.Date != nil {
		m.Date = sql.NullTime{Time: req.Date.UTC(), Valid: true}
	}

	if err := s.st.insertMessage(r.Context(), m); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("message insert failed")
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleInbox serves GET /api/admin/inbox, newest first.
func (s *Server) handleInbox(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.st.listMessages(r.Context())
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	items := make([]messageDoc, 0, len(msgs))
	for _, m := range msgs {
		items = append(items, messageToDoc(m))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}
