// auth.go - Admin login, logout and the session gate.
//
// Sessions are opaque bearer tokens persisted in the admin_sessions table
// with their own expiry; the gate resolves them on every admin request, so
// restarts and horizontal scaling do not invalidate logins.
package server

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func validateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// generateToken creates a random hex token of n bytes.
func generateToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// hashPassword generates a bcrypt hash of the password.
func hashPassword(password string) (string, error) {
	// bcrypt cost of 12 is a good balance of security and performance
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func verifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// bearerToken extracts the session token from the Authorization header or,
// for backwards compatibility with existing clients, the token query
// parameter.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if tok, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(tok)
		}
	}
	return r.URL.Query().Get("token")
}

// requireAdmin gates mutation endpoints behind a valid, unexpired session.
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tok := bearerToken(r)
		if tok == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		ok, err := s.st.sessionValid(r.Context(), tok)
		if err != nil {
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleLogin authenticates the admin and issues a session token.
// If no admin user exists yet and the credentials match the configured
// bootstrap values, the admin account is created on the spot.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if !validateEmail(req.Email) || req.Password == "" {
		http.Error(w, "invalid credentials", http.StatusBadRequest)
		return
	}

	if locked, until := s.lockout.isLocked(req.Email); locked {
		logger.Warn().Str("email", req.Email).Time("locked_until", until).Msg("login blocked by lockout")
		http.Error(w, "too many failed attempts", http.StatusTooManyRequests)
		return
	}

	admin, err := s.st.getAdminByEmail(r.Context(), req.Email)
	switch {
	case errors.Is(err, errNotFound):
		admin, err = s.bootstrapAdmin(r, req)
		if err != nil {
			getMetrics().RecordLoginAttempt(false)
			s.lockout.recordFailure(req.Email)
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
	case err != nil:
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	default:
		if !verifyPassword(req.Password, admin.PasswordHash) {
			getMetrics().RecordLoginAttempt(false)
			if s.lockout.recordFailure(req.Email) {
				logger.Warn().Str("email", req.Email).Msg("account locked after repeated failures")
			}
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
	}

	tok, err := generateToken(16)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	expiresAt := time.Now().UTC().Add(s.cfg.SessionTTL)
	if err := s.st.createSession(r.Context(), tok, admin.ID, expiresAt); err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	s.lockout.recordSuccess(req.Email)
	getMetrics().RecordLoginAttempt(true)
	logger.Info().Str("email", req.Email).Time("expires_at", expiresAt).Msg("admin login")

	writeJSON(w, http.StatusOK, map[string]string{"token": tok})
}

// bootstrapAdmin creates the admin account on first login when the store is
// empty and the supplied credentials match the configured defaults.
func (s *Server) bootstrapAdmin(r *http.Request, req loginReq) (AdminUser, error) {
	if s.cfg.AdminPassword == "" ||
		req.Email != strings.ToLower(s.cfg.AdminEmail) ||
		req.Password != s.cfg.AdminPassword {
		return AdminUser{}, errNotFound
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return AdminUser{}, err
	}
	admin := AdminUser{
		ID:        uuid.New(),
		Email:     req.Email,
		CreatedAt: time.Now().UTC(),
	}
	admin.PasswordHash = hash
	if err := s.st.insertAdmin(r.Context(), admin); err != nil {
		return AdminUser{}, err
	}
	zerolog.Ctx(r.Context()).Info().Str("email", req.Email).Msg("bootstrap admin created")
	return admin, nil
}

// handleLogout deletes the presented session.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.st.deleteSession(r.Context(), bearerToken(r)); err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
