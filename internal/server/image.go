package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/rs/zerolog"
)

const blobStreamTimeout = 5 * time.Minute

// servePhoto streams a photo's bytes to the client. Externally hosted
// photos redirect to their source; stored photos stream from the bucket.
func (s *Server) servePhoto(w http.ResponseWriter, r *http.Request, p Photo, key string) {
	if p.ImageURL != "" {
		http.Redirect(w, r, p.ImageURL, http.StatusTemporaryRedirect)
		return
	}
	if key == "" {
		http.Error(w, "no image", http.StatusNotFound)
		return
	}
	if s.mc == nil {
		http.Error(w, "blob store unavailable", http.StatusServiceUnavailable)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), blobStreamTimeout)
	defer cancel()

	obj, err := s.mc.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("key", key).Msg("blob fetch failed")
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	defer obj.Close()

	contentType := p.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}
	w.Header().Set("Content-Type", contentType)

	if _, err := io.Copy(w, obj); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Str("key", key).Msg("blob stream interrupted")
	}
}

// loadPhoto resolves a photo path parameter through the expiry gate,
// writing the error response itself on failure.
func (s *Server) loadPhoto(w http.ResponseWriter, r *http.Request) (Photo, bool) {
	id, ok := parseID(w, r.PathValue("id"))
	if !ok {
		return Photo{}, false
	}
	p, err := s.st.getPhoto(r.Context(), id)
	switch {
	case errors.Is(err, errNotFound):
		http.Error(w, "photo not found", http.StatusNotFound)
		return Photo{}, false
	case errors.Is(err, errPhotoExpired):
		http.Error(w, "photo expired", http.StatusGone)
		return Photo{}, false
	case err != nil:
		http.Error(w, "server error", http.StatusInternalServerError)
		return Photo{}, false
	}
	return p, true
}

// handlePhotoImage serves GET /api/photos/{id}/image.
func (s *Server) handlePhotoImage(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadPhoto(w, r)
	if !ok {
		return
	}
	getMetrics().RecordServe()
	s.servePhoto(w, r, p, p.ObjectKey)
}

// handlePhotoThumbnail serves GET /api/photos/{id}/thumbnail, falling back
// to the original when no thumbnail was generated.
func (s *Server) handlePhotoThumbnail(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadPhoto(w, r)
	if !ok {
		return
	}
	key := p.ThumbKey
	if key == "" {
		key = p.ObjectKey
	}
	getMetrics().RecordServe()
	s.servePhoto(w, r, p, key)
}

// extensionFor maps a stored content type to the download filename
// extension. Unknown and empty types fall back to .jpg.
func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".jpg"
	}
}

func attachmentHeader(p Photo, contentType string) string {
	return fmt.Sprintf("attachment; filename=photo-%s%s", p.ID, extensionFor(contentType))
}

// countDownload bumps the photo and album counters plus the process
// metric. Called only once the download is known to be servable.
func (s *Server) countDownload(ctx context.Context, p Photo) {
	s.st.recordDownload(ctx, p)
	getMetrics().RecordDownload()
}

// handlePhotoDownload serves GET /api/photos/{id}/download: the original
// bytes with any display transforms baked in, as an attachment.
func (s *Server) handlePhotoDownload(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadPhoto(w, r)
	if !ok {
		return
	}

	if p.ImageURL != "" {
		s.countDownload(r.Context(), p)
		http.Redirect(w, r, p.ImageURL, http.StatusTemporaryRedirect)
		return
	}
	if p.ObjectKey == "" {
		http.Error(w, "no image", http.StatusNotFound)
		return
	}
	if s.mc == nil {
		http.Error(w, "blob store unavailable", http.StatusServiceUnavailable)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), blobStreamTimeout)
	defer cancel()

	obj, err := s.mc.GetObject(ctx, s.bucket, p.ObjectKey, minio.GetObjectOptions{})
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("key", p.ObjectKey).Msg("blob fetch failed")
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	defer obj.Close()

	ct := p.ContentType
	if ct == "" {
		ct = "image/jpeg"
	}

	if !hasTransforms(p) {
		// Stat performs the actual request; a missing or unreadable
		// object fails here, before anything is counted.
		if _, err := obj.Stat(); err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Str("key", p.ObjectKey).Msg("blob stat failed")
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}
		s.countDownload(r.Context(), p)
		w.Header().Set("Content-Disposition", attachmentHeader(p, p.ContentType))
		w.Header().Set("Content-Type", ct)
		if _, err := io.Copy(w, obj); err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Str("key", p.ObjectKey).Msg("blob stream interrupted")
		}
		return
	}

	data, err := io.ReadAll(obj)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("key", p.ObjectKey).Msg("blob read failed")
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	s.countDownload(r.Context(), p)

	rendered, err := renderTransforms(data, p)
	if err != nil {
		// Undecodable originals download as-is.
		zerolog.Ctx(r.Context()).Warn().Err(err).Str("photo_id", p.ID.String()).Msg("transform render failed")
		w.Header().Set("Content-Disposition", attachmentHeader(p, p.ContentType))
		w.Header().Set("Content-Type", ct)
		w.Write(data)
		return
	}

	w.Header().Set("Content-Disposition", attachmentHeader(p, "image/jpeg"))
	w.Header().Set("Content-Type", "image/jpeg")
	w.Write(rendered)
}
