// lockout.go - Login lockout to slow brute-force attacks on the admin account.
package server

import (
	"sync"
	"time"
)

type loginAttempt struct {
	count       int
	lastAttempt time.Time
	lockedUntil time.Time
}

// accountLockout tracks failed logins per email and locks the account after
// too many failures inside the window.
type accountLockout struct {
	mu              sync.Mutex
	attempts        map[string]*loginAttempt
	maxAttempts     int
	lockoutDuration time.Duration
	window          time.Duration
}

func newAccountLockout(maxAttempts int, lockoutDuration, window time.Duration) *accountLockout {
	al := &accountLockout{
		attempts:        make(map[string]*loginAttempt),
		maxAttempts:     maxAttempts,
		lockoutDuration: lockoutDuration,
		window:          window,
	}
	go al.cleanup()
	return al
}

// isLocked reports whether the account is currently locked out.
func (al *accountLockout) isLocked(email string) (bool, time.Time) {
	al.mu.Lock()
	defer al.mu.Unlock()

	a, ok := al.attempts[email]
	if !ok {
		return false, time.Time{}
	}
	if !a.lockedUntil.IsZero() && time.Now().Before(a.lockedUntil) {
		return true, a.lockedUntil
	}
	return false, time.Time{}
}

// recordFailure notes a failed login. Returns true once the account locks.
func (al *accountLockout) recordFailure(email string) bool {
	al.mu.Lock()
	defer al.mu.Unlock()

	now := time.Now()
	a, ok := al.attempts[email]
	if !ok {
		a = &loginAttempt{}
		al.attempts[email] = a
	}

	if now.Sub(a.lastAttempt) > al.window {
		a.count = 0
	}
	a.count++
	a.lastAttempt = now

	if a.count >= al.maxAttempts {
		a.lockedUntil = now.Add(al.lockoutDuration)
		return true
	}
	return false
}

// recordSuccess clears the failure history for an email.
func (al *accountLockout) recordSuccess(email string) {
	al.mu.Lock()
	defer al.mu.Unlock()
	delete(al.attempts, email)
}

func (al *accountLockout) cleanup() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		al.mu.Lock()
		now := time.Now()
		for email, a := range al.attempts {
			if (a.lockedUntil.IsZero() || now.After(a.lockedUntil)) &&
				now.Sub(a.lastAttempt) > 2*al.window {
				delete(al.attempts, email)
			}
		}
		al.mu.Unlock()
	}
}
