// reset.go - Admin password reset with a short-lived code.
//
// Delivery of the code is out of scope; as with the rest of the admin
// surface there is a single trusted operator, and the code is returned in
// the response for them to relay.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

type resetRequestReq struct {
	Email string `json:"email"`
}

type resetConfirmReq struct {
	Email    string `json:"email"`
	Code     string `json:"code"`
	Password string `json:"password"`
}

// handleResetRequest stores a fresh reset code on the admin row.
// The response is identical whether or not the email is known.
func (s *Server) handleResetRequest(w http.ResponseWriter, r *http.Request) {
	var req resetRequestReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if !validateEmail(req.Email) {
		http.Error(w, "invalid email", http.StatusBadRequest)
		return
	}

	code, err := generateToken(3)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if err := s.st.setResetCode(r.Context(), req.Email, code); err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	zerolog.Ctx(r.Context()).Info().Str("email", req.Email).Msg("reset code issued")
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "code": code})
}

// handleResetConfirm verifies the code and installs the new password.
func (s *Server) handleResetConfirm(w http.ResponseWriter, r *http.Request) {
	var req resetConfirmReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Code = strings.TrimSpace(req.Code)

	if !validateEmail(req.Email) || req.Code == "" || req.Password == "" {
		http.Error(w, "invalid reset", http.StatusBadRequest)
		return
	}

	admin, err := s.st.getAdminByEmail(r.Context(), req.Email)
	if errors.Is(err, errNotFound) || (err == nil && admin.ResetCode != req.Code) {
		http.Error(w, "invalid reset", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if err := s.st.completeReset(r.Context(), req.Email, hash); err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	zerolog.Ctx(r.Context()).Info().Str("email", req.Email).Msg("password reset completed")
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
