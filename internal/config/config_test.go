package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %q, want :8080", cfg.Addr)
	}
	if cfg.BaseURL != "http://localhost:8080" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.AdminEmail != "admin@example.com" {
		t.Errorf("AdminEmail = %q", cfg.AdminEmail)
	}
	if cfg.SessionTTL != 12*time.Hour {
		t.Errorf("SessionTTL = %v, want 12h", cfg.SessionTTL)
	}
	if cfg.CleanupEnabled {
		t.Error("CleanupEnabled should default to false")
	}
	if cfg.CleanupInterval != time.Hour {
		t.Errorf("CleanupInterval = %v, want 1h", cfg.CleanupInterval)
	}
	if cfg.MaxUploadBytes != 0 {
		t.Errorf("MaxUploadBytes = %d, want 0", cfg.MaxUploadBytes)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PD_ADDR", ":9999")
	t.Setenv("DATABASE_URL", "postgres://u:p@db/photos")
	t.Setenv("PD_SESSION_TTL", "30m")
	t.Setenv("PD_CLEANUP_ENABLED", "true")
	t.Setenv("PD_CLEANUP_INTERVAL", "5m")
	t.Setenv("PD_MAX_UPLOAD_BYTES", "10485760")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Addr != ":9999" {
		t.Errorf("Addr = %q, want :9999", cfg.Addr)
	}
	if cfg.DatabaseURL != "postgres://u:p@db/photos" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("SessionTTL = %v, want 30m", cfg.SessionTTL)
	}
	if !cfg.CleanupEnabled {
		t.Error("CleanupEnabled should be true")
	}
	if cfg.CleanupInterval != 5*time.Minute {
		t.Errorf("CleanupInterval = %v, want 5m", cfg.CleanupInterval)
	}
	if cfg.MaxUploadBytes != 10485760 {
		t.Errorf("MaxUploadBytes = %d, want 10485760", cfg.MaxUploadBytes)
	}
}

func TestLoadBadDuration(t *testing.T) {
	t.Setenv("PD_SESSION_TTL", "not-a-duration")

	if _, err := Load(); err == nil {
		t.Error("expected error for invalid duration")
	}
}
