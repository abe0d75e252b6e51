package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

// Config carries every environment-driven setting for the backend.
type Config struct {
	Addr    string `env:"PD_ADDR" envDefault:":8080"`
	BaseURL string `env:"PD_BASE_URL" envDefault:"http://localhost:8080"`

	DatabaseURL string `env:"DATABASE_URL"`

	S3Endpoint  string `env:"PD_S3_ENDPOINT"`
	S3AccessKey string `env:"PD_S3_ACCESS_KEY"`
	S3SecretKey string `env:"PD_S3_SECRET_KEY"`
	Bucket      string `env:"PD_BUCKET"`

	AdminEmail    string        `env:"PD_ADMIN_EMAIL" envDefault:"admin@example.com"`
	AdminPassword string        `env:"PD_ADMIN_PASSWORD"`
	SessionTTL    time.Duration `env:"PD_SESSION_TTL" envDefault:"12h"`

	CleanupEnabled  bool          `env:"PD_CLEANUP_ENABLED" envDefault:"false"`
	CleanupInterval time.Duration `env:"PD_CLEANUP_INTERVAL" envDefault:"1h"`

	// Maximum multipart upload size in bytes; 0 means no limit.
	MaxUploadBytes int64 `env:"PD_MAX_UPLOAD_BYTES" envDefault:"0"`

	Version string `env:"PD_VERSION" envDefault:"dev"`
	Commit  string `env:"PD_COMMIT" envDefault:"unknown"`
}

// Load loads .env (if present) and parses environment variables into Config.
func Load() (Config, error) {
	// Load .env if available; ignore error if file does not exist
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
