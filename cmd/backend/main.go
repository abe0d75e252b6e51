package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/rs/zerolog/log"

	"photo-drop/internal/config"
	"photo-drop/internal/db"
	"photo-drop/internal/logging"
	"photo-drop/internal/server"
)

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if cfg.DatabaseURL == "" {
		log.Fatal().Msg("DATABASE_URL is required")
	}
	if cfg.AdminPassword == "" {
		log.Fatal().Msg("PD_ADMIN_PASSWORD is required")
	}

	database, err := server.OpenDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer database.Close()

	if err := db.RunMigrations(database); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	var mc *minio.Client
	if cfg.S3Endpoint != "" {
		mc, err = server.NewMinioClient(server.BlobConfig{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.Bucket,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("blob store connection failed")
		}
	} else {
		log.Warn().Msg("no blob store configured, uploads disabled")
	}

	srv := server.New(server.Config{
		Addr:           cfg.Addr,
		BaseURL:        cfg.BaseURL,
		Build:          server.BuildInfo{Version: cfg.Version, Commit: cfg.Commit},
		SessionTTL:     cfg.SessionTTL,
		AdminEmail:     cfg.AdminEmail,
		AdminPassword:  cfg.AdminPassword,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}, database, mc, cfg.Bucket)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.CleanupEnabled {
		go srv.StartCleanupJob(log.Logger.WithContext(ctx), cfg.CleanupInterval)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		log.Error().Err(err).Msg("http server failed")
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}
