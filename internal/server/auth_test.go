package server

import (
	"net/http/httptest"
	"testing"
)

func TestValidateEmail(t *testing.T) {
	valid := []string{
		"admin@example.com",
		"user.name+tag@sub.example.org",
		"a@b.co",
	}
	for _, e := range valid {
		if !validateEmail(e) {
			t.Errorf("validateEmail(%q) = false, want true", e)
		}
	}

	invalid := []string{
		"",
		"plainaddress",
		"@example.com",
		"user@",
		"user@localhost",
		"user @example.com",
	}
	for _, e := range invalid {
		if validateEmail(e) {
			t.Errorf("validateEmail(%q) = true, want false", e)
		}
	}
}

func TestGenerateToken(t *testing.T) {
	a, err := generateToken(16)
	if err != nil {
		t.Fatalf("generateToken: %v", err)
	}
	if len(a) != 32 {
		t.Errorf("token length = %d, want 32 hex chars", len(a))
	}

	b, _ := generateToken(16)
	if a == b {
		t.Error("two tokens should not collide")
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := hashPassword("s3cret")
	if err != nil {
		t.Fatalf("hashPassword: %v", err)
	}
	if !verifyPassword("s3cret", hash) {
		t.Error("correct password should verify")
	}
	if verifyPassword("wrong", hash) {
		t.Error("wrong password should not verify")
	}
}

func TestBearerToken(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/admin/inbox", nil)
	r.Header.Set("Authorization", "Bearer abc123")
	if got := bearerToken(r); got != "abc123" {
		t.Errorf("header token = %q, want abc123", got)
	}

	r = httptest.NewRequest("GET", "/api/admin/inbox?token=qp456", nil)
	if got := bearerToken(r); got != "qp456" {
		t.Errorf("query token = %q, want qp456", got)
	}

	// Header wins over the query parameter.
	r = httptest.NewRequest("GET", "/api/admin/inbox?token=qp456", nil)
	r.Header.Set("Authorization", "Bearer hdr789")
	if got := bearerToken(r); got != "hdr789" {
		t.Errorf("precedence token = %q, want hdr789", got)
	}

	r = httptest.NewRequest("GET", "/api/admin/inbox", nil)
	if got := bearerToken(r); got != "" {
		t.Errorf("missing token = %q, want empty", got)
	}
}
