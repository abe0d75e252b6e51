package server

import (
	"context"
	"net/http"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/rs/zerolog"
)

// sweepExpired removes every photo past its expiry: blob first, row
// second. A blob that cannot be deleted is logged and the row is removed
// anyway, so a flaky bucket never wedges the sweep. Expired share tokens
// and admin sessions are pruned in the same pass. Returns the number of
// photos removed.
func (s *Server) sweepExpired(ctx context.Context) int {
	logger := zerolog.Ctx(ctx)
	now := time.Now().UTC()

	refs, err := s.st.expiredPhotoRefs(ctx, now)
	if err != nil {
		logger.Error().Err(err).Msg("sweep query failed")
		return 0
	}

	removed := 0
	for _, ref := range refs {
		s.removeBlobs(ctx, ref)
		ok, err := s.st.deletePhotoRow(ctx, ref.ID)
		if err != nil {
			logger.Error().Err(err).Str("photo_id", ref.ID.String()).Msg("sweep row delete failed")
			continue
		}
		if ok {
			removed++
		}
	}

	if n, err := s.st.deleteExpiredShareTokens(ctx, now); err != nil {
		logger.Error().Err(err).Msg("share token prune failed")
	} else if n > 0 {
		logger.Debug().Int64("tokens", n).Msg("pruned expired share tokens")
	}
	if _, err := s.st.deleteExpiredSessions(ctx, now); err != nil {
		logger.Error().Err(err).Msg("session prune failed")
	}

	if removed > 0 {
		logger.Info().Int("removed", removed).Msg("swept expired photos")
	}
	getMetrics().RecordSweep(removed)
	return removed
}

// removeBlobs deletes a photo's objects from the bucket, best effort.
func (s *Server) removeBlobs(ctx context.Context, ref blobRef) {
	if s.mc == nil {
		return
	}
	for _, key := range []string{ref.ObjectKey, ref.ThumbKey} {
		if key == "" {
			continue
		}
		if err := s.mc.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("blob delete failed")
		}
	}
}

// StartCleanupJob runs the sweeper on a fixed interval until ctx is
// cancelled. One sweep runs immediately at startup.
func (s *Server) StartCleanupJob(ctx context.Context, interval time.Duration) {
	logger := zerolog.Ctx(ctx)
	logger.Info().Dur("interval", interval).Msg("cleanup job started")

	s.sweepExpired(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("cleanup job stopped")
			return
		case <-ticker.C:
			s.sweepExpired(ctx)
		}
	}
}

// handleAdminCleanup serves POST /api/admin/cleanup: an on-demand sweep.
func (s *Server) handleAdminCleanup(w http.ResponseWriter, r *http.Request) {
	removed := s.sweepExpired(r.Context())
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}
