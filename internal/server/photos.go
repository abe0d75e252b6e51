package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/rs/zerolog"
)

// handleListPhotos serves GET /api/albums/{id}/photos. Expired photos are
// swept before the query so a listing and the sweep agree on the same
// instant.
func (s *Server) handleListPhotos(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r.PathValue("id"))
	if !ok {
		return
	}
	s.sweepExpired(r.Context())

	if _, err := s.st.getAlbum(r.Context(), id); err != nil {
		if errors.Is(err, errNotFound) {
			http.Error(w, "album not found", http.StatusNotFound)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	photos, err := s.st.listAlbumPhotos(r.Context(), id)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("photo listing failed")
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	now := time.Now().UTC()
	items := make([]photoDoc, 0, len(photos))
	for _, p := range photos {
		items = append(items, photoToDoc(p, now))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// handleUploadPhotos serves POST /api/albums/{id}/photos (admin,
// multipart). Each "files" part is stored as a new object; a thumbnail is
// generated best-effort. Every photo inherits the album's expiry as a
// snapshot taken now.
func (s *Server) handleUploadPhotos(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r.PathValue("id"))
	if !ok {
		return
	}
	logger := zerolog.Ctx(r.Context())

	album, err := s.st.getAlbum(r.Context(), id)
	if errors.Is(err, errNotFound) {
		http.Error(w, "album not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if s.mc == nil {
		http.Error(w, "uploads unavailable", http.StatusServiceUnavailable)
		return
	}

	if s.cfg.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	}

	mr, err := r.MultipartReader()
	if err != nil {
		http.Error(w, "expected multipart form", http.StatusBadRequest)
		return
	}

	watermark := false
	var inserted []uuid.UUID
	expiresAt := album.ExpiresAt()
	now := time.Now().UTC()

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				http.Error(w, "upload too large", http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, "bad multipart form", http.StatusBadRequest)
			return
		}

		photoID, wm, err := s.consumePart(r, part, album.ID, now, expiresAt)
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				http.Error(w, "upload too large", http.StatusRequestEntityTooLarge)
				return
			}
			logger.Error().Err(err).Msg("photo upload failed")
			http.Error(w, "upload failed", http.StatusInternalServerError)
			return
		}
		if wm {
			watermark = true
		}
		if photoID != uuid.Nil {
			inserted = append(inserted, photoID)
		}
	}

	if len(inserted) == 0 {
		http.Error(w, "no files provided", http.StatusBadRequest)
		return
	}

	// The watermark field may arrive after the file parts in the stream,
	// so it is applied once the whole form has been read.
	if watermark {
		for _, pid := range inserted {
			if err := s.st.setPhotoWatermark(r.Context(), pid, true); err != nil {
				logger.Error().Err(err).Str("photo_id", pid.String()).Msg("watermark update failed")
			}
		}
	}

	logger.Info().Str("album_id", id.String()).Int("created", len(inserted)).Msg("photos uploaded")
	writeJSON(w, http.StatusCreated, map[string]int{"created": len(inserted)})
}

// consumePart handles one form part and always closes it, whatever path
// the processing takes. A "files" part is stored and its new photo id
// returned; a "watermark" part reports the flag; anything else is skipped.
func (s *Server) consumePart(r *http.Request, part *multipart.Part, albumID uuid.UUID, now, expiresAt time.Time) (uuid.UUID, bool, error) {
	defer part.Close()

	switch part.FormName() {
	case "watermark":
		val, _ := io.ReadAll(part)
		return uuid.Nil, strings.EqualFold(strings.TrimSpace(string(val)), "true"), nil
	case "files":
		p, err := s.storeUpload(r, part, albumID, now, expiresAt)
		if err != nil {
			return uuid.Nil, false, err
		}
		if err := s.st.insertPhoto(r.Context(), p); err != nil {
			return uuid.Nil, false, err
		}
		getMetrics().RecordUpload(p.SizeBytes)
		return p.ID, false, nil
	}
	return uuid.Nil, false, nil
}

// storeUpload reads one multipart file, puts the original and a thumbnail
// into the bucket, and returns the row to insert. A failed thumbnail never
// fails the upload.
func (s *Server) storeUpload(r *http.Request, part *multipart.Part, albumID uuid.UUID, now, expiresAt time.Time) (Photo, error) {
	data, err := io.ReadAll(part)
	if err != nil {
		return Photo{}, err
	}

	contentType := part.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	id := uuid.New()
	objectKey := "photos/" + id.String()

	ctx := r.Context()
	_, err = s.mc.PutObject(ctx, s.bucket, objectKey,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return Photo{}, err
	}

	thumbKey := ""
	if thumb, err := makeThumbnail(data); err == nil {
		key := "thumbs/" + id.String()
		_, err = s.mc.PutObject(ctx, s.bucket, key,
			bytes.NewReader(thumb), int64(len(thumb)),
			minio.PutObjectOptions{ContentType: "image/jpeg"})
		if err == nil {
			thumbKey = key
		} else {
			zerolog.Ctx(ctx).Warn().Err(err).Str("photo_id", id.String()).Msg("thumbnail store failed")
		}
	} else {
		zerolog.Ctx(ctx).Warn().Err(err).Str("photo_id", id.String()).Msg("thumbnail generation failed")
	}

	return Photo{
		ID:          id,
		AlbumID:     albumID,
		ObjectKey:   objectKey,
		ThumbKey:    thumbKey,
		ContentType: contentType,
		SizeBytes:   int64(len(data)),
		UploadedAt:  now,
		ExpiresAt:   expiresAt,
		Brightness:  1.0,
		Contrast:    1.0,
	}, nil
}

// handleEditPhoto serves PATCH /api/photos/{id}: non-destructive display
// transforms only. An empty body is a no-op, reported as updated=false.
func (s *Server) handleEditPhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r.PathValue("id"))
	if !ok {
		return
	}

	var edit photoEdit
	if err := json.NewDecoder(r.Body).Decode(&edit); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if edit.empty() {
		writeJSON(w, http.StatusOK, map[string]bool{"updated": false})
		return
	}

	updated, err := s.st.updatePhotoTransforms(r.Context(), id, edit)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if !updated {
		http.Error(w, "photo not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"updated": true})
}

// handleDeletePhoto serves DELETE /api/photos/{id} (admin). Works on
// expired rows too, so admins can always reclaim space.
func (s *Server) handleDeletePhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r.PathValue("id"))
	if !ok {
		return
	}

	p, err := s.st.getPhotoRow(r.Context(), id)
	if errors.Is(err, errNotFound) {
		http.Error(w, "photo not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	s.removeBlobs(r.Context(), blobRef{ID: p.ID, ObjectKey: p.ObjectKey, ThumbKey: p.ThumbKey})
	if _, err := s.st.deletePhotoRow(r.Context(), id); err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
