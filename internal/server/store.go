// store.go - The storage boundary for albums, photos, shares, messages
// and admin sessions.
//
// All SQL lives here. Photo expiry is enforced once, in getPhoto and
// listAlbumPhotos: handlers never compare photo timestamps themselves.
// getPhotoRow bypasses the expiry gate and exists only for admin
// deletion and the sweeper, which must see expired rows.
package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	errNotFound     = errors.New("not found")
	errPhotoExpired = errors.New("photo expired")
	errShareExpired = errors.New("share token expired")
)

// Album is an event album. Its expiry is computed from created_at and
// expires_in_days, never stored.
type Album struct {
	ID            uuid.UUID
	EventName     string
	Location      string
	Date          time.Time
	CoverImageURL string
	ExpiresInDays int
	Downloads     int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ExpiresAt derives the album expiry from its creation time.
func (a Album) ExpiresAt() time.Time {
	return a.CreatedAt.AddDate(0, 0, a.ExpiresInDays)
}

// CropRect describes a crop region in percentages of the source dimensions.
type CropRect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Photo is a single uploaded (or externally hosted) image. ExpiresAt is a
// snapshot of the album expiry taken at upload time.
type Photo struct {
	ID          uuid.UUID
	AlbumID     uuid.UUID
	ObjectKey   string
	ThumbKey    string
	ImageURL    string
	ContentType string
	SizeBytes   int64
	UploadedAt  time.Time
	ExpiresAt   time.Time
	Brightness  float64
	Contrast    float64
	Crop        *CropRect
	Downloads   int64
	Watermark   bool
	UpdatedAt   time.Time
}

// ShareToken grants time-bounded public access to one photo.
type ShareToken struct {
	ID        uuid.UUID
	PhotoID   uuid.UUID
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Message is a contact-form submission. Append-only, no expiry.
type Message struct {
	ID        uuid.UUID
	Name      string
	Email     string
	EventName string
	Date      sql.NullTime
	Message   string
	CreatedAt time.Time
}

// AdminUser is the single administrative principal.
type AdminUser struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	ResetCode    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type store struct {
	db *sql.DB
}

// ---- albums ----

func (st *store) insertAlbum(ctx context.Context, a Album) error {
	_, err := st.db.ExecContext(ctx, `
		INSERT INTO albums (id, event_name, location, date, cover_image_url, expires_in_days, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, NULLIF($5, ''), $6, $7, $7)
	`, a.ID, a.EventName, a.Location, a.Date, a.CoverImageURL, a.ExpiresInDays, a.CreatedAt)
	return err
}

const albumColumns = `id, event_name, COALESCE(location, ''), date,
	COALESCE(cover_image_url, ''), expires_in_days, downloads, created_at, updated_at`

func scanAlbum(row interface{ Scan(...any) error }) (Album, error) {
	var a Album
	err := row.Scan(&a.ID, &a.EventName, &a.Location, &a.Date,
		&a.CoverImageURL, &a.ExpiresInDays, &a.Downloads, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (st *store) getAlbum(ctx context.Context, id uuid.UUID) (Album, error) {
	a, err := scanAlbum(st.db.QueryRowContext(ctx,
		`SELECT `+albumColumns+` FROM albums WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return a, errNotFound
	}
	return a, err
}

// listAlbums returns the newest albums first, optionally filtered by a free
// text query over event name and location, by location, and by calendar day.
func (st *store) listAlbums(ctx context.Context, q, location string, day *time.Time, limit int) ([]Album, error) {
	where := make([]string, 0, 3)
	args := make([]any, 0, 5)

	if q != "" {
		args = append(args, "%"+q+"%")
		n := fmt.Sprintf("$%d", len(args))
		where = append(where, "(event_name ILIKE "+n+" OR location ILIKE "+n+")")
	}
	if location != "" {
		args = append(args, "%"+location+"%")
		where = append(where, fmt.Sprintf("location ILIKE $%d", len(args)))
	}
	if day != nil {
		start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
		args = append(args, start)
		where = append(where, fmt.Sprintf("date >= $%d", len(args)))
		args = append(args, start.AddDate(0, 0, 1))
		where = append(where, fmt.Sprintf("date < $%d", len(args)))
	}

	query := `SELECT ` + albumColumns + ` FROM albums`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := st.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var albums []Album
	for rows.Next() {
		a, err := scanAlbum(rows)
		if err != nil {
			return nil, err
		}
		albums = append(albums, a)
	}
	return albums, rows.Err()
}

func (st *store) recentAlbums(ctx context.Context, limit int) ([]Album, error) {
	return st.listAlbums(ctx, "", "", nil, limit)
}

func (st *store) deleteAlbumRow(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := st.db.ExecContext(ctx, `DELETE FROM albums WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ---- photos ----

const photoColumns = `id, album_id, COALESCE(object_key, ''), COALESCE(thumb_key, ''),
	COALESCE(image_url, ''), COALESCE(content_type, ''), size_bytes, uploaded_at,
	expires_at, brightness, contrast, crop, downloads, watermark, updated_at`

func scanPhoto(row interface{ Scan(...any) error }) (Photo, error) {
	var p Photo
	var crop []byte
	err := row.Scan(&p.ID, &p.AlbumID, &p.ObjectKey, &p.ThumbKey,
		&p.ImageURL, &p.ContentType, &p.SizeBytes, &p.UploadedAt,
		&p.ExpiresAt, &p.Brightness, &p.Contrast, &crop,
		&p.Downloads, &p.Watermark, &p.UpdatedAt)
	if err != nil {
		return p, err
	}
	if len(crop) > 0 {
		var c CropRect
		if err := json.Unmarshal(crop, &c); err == nil {
			p.Crop = &c
		}
	}
	return p, nil
}

func (st *store) insertPhoto(ctx context.Context, p Photo) error {
	_, err := st.db.ExecContext(ctx, `
		INSERT INTO photos (id, album_id, object_key, thumb_key, image_url, content_type,
			size_bytes, uploaded_at, expires_at, watermark, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''),
			$7, $8, $9, $10, $8)
	`, p.ID, p.AlbumID, p.ObjectKey, p.ThumbKey, p.ImageURL, p.ContentType,
		p.SizeBytes, p.UploadedAt, p.ExpiresAt, p.Watermark)
	return err
}

// getPhoto is the authoritative read path: it returns errPhotoExpired for
// photos past their expiry even if the sweeper has not caught them yet.
func (st *store) getPhoto(ctx context.Context, id uuid.UUID) (Photo, error) {
	p, err := st.getPhotoRow(ctx, id)
	if err != nil {
		return p, err
	}
	if !p.ExpiresAt.After(time.Now().UTC()) {
		return p, errPhotoExpired
	}
	return p, nil
}

// getPhotoRow fetches a photo without the expiry gate. Admin deletion and
// the sweeper need to see expired rows; public handlers use getPhoto.
func (st *store) getPhotoRow(ctx context.Context, id uuid.UUID) (Photo, error) {
	p, err := scanPhoto(st.db.QueryRowContext(ctx,
		`SELECT `+photoColumns+` FROM photos WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return p, errNotFound
	}
	return p, err
}

// listAlbumPhotos returns the album's unexpired photos, newest upload first.
func (st *store) listAlbumPhotos(ctx context.Context, albumID uuid.UUID) ([]Photo, error) {
	rows, err := st.db.QueryContext(ctx, `
		SELECT `+photoColumns+` FROM photos
		WHERE album_id = $1 AND expires_at > now()
		ORDER BY uploaded_at DESC
	`, albumID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPhotos(rows)
}

// albumPhotoRows returns every photo of an album, expired ones included.
// Used by cascade deletion only.
func (st *store) albumPhotoRows(ctx context.Context, albumID uuid.UUID) ([]Photo, error) {
	rows, err := st.db.QueryContext(ctx,
		`SELECT `+photoColumns+` FROM photos WHERE album_id = $1`, albumID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPhotos(rows)
}

func collectPhotos(rows *sql.Rows) ([]Photo, error) {
	var photos []Photo
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

// photoEdit carries the admin-editable display transforms. Nil fields are
// left untouched.
type photoEdit struct {
	Brightness *float64  `json:"brightness"`
	Contrast   *float64  `json:"contrast"`
	Crop       *CropRect `json:"crop"`
}

func (e photoEdit) empty() bool {
	return e.Brightness == nil && e.Contrast == nil && e.Crop == nil
}

// buildPhotoUpdate renders the SET clause for a transforms update. The id
// placeholder is always the last argument.
func buildPhotoUpdate(e photoEdit) (string, []any) {
	sets := make([]string, 0, 4)
	args := make([]any, 0, 4)

	if e.Brightness != nil {
		args = append(args, *e.Brightness)
		sets = append(sets, fmt.Sprintf("brightness = $%d", len(args)))
	}
	if e.Contrast != nil {
		args = append(args, *e.Contrast)
		sets = append(sets, fmt.Sprintf("contrast = $%d", len(args)))
	}
	if e.Crop != nil {
		b, _ := json.Marshal(e.Crop)
		args = append(args, b)
		sets = append(sets, fmt.Sprintf("crop = $%d", len(args)))
	}
	sets = append(sets, "updated_at = now()")

	return strings.Join(sets, ", "), args
}

func (st *store) updatePhotoTransforms(ctx context.Context, id uuid.UUID, e photoEdit) (bool, error) {
	if e.empty() {
		return false, nil
	}
	set, args := buildPhotoUpdate(e)
	args = append(args, id)
	res, err := st.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE photos SET %s WHERE id = $%d", set, len(args)), args...)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (st *store) setPhotoWatermark(ctx context.Context, id uuid.UUID, on bool) error {
	_, err := st.db.ExecContext(ctx,
		`UPDATE photos SET watermark = $1, updated_at = now() WHERE id = $2`, on, id)
	return err
}

func (st *store) deletePhotoRow(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := st.db.ExecContext(ctx, `DELETE FROM photos WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// recordDownload bumps the photo counter and the owning album counter.
func (st *store) recordDownload(ctx context.Context, p Photo) {
	_, _ = st.db.ExecContext(ctx,
		`UPDATE photos SET downloads = downloads + 1 WHERE id = $1`, p.ID)
	_, _ = st.db.ExecContext(ctx,
		`UPDATE albums SET downloads = downloads + 1 WHERE id = $1`, p.AlbumID)
}

// blobRef identifies a photo row plus the objects it owns.
type blobRef struct {
	ID        uuid.UUID
	ObjectKey string
	ThumbKey  string
}

// expiredPhotoRefs lists photos due for sweeping at the given instant.
func (st *store) expiredPhotoRefs(ctx context.Context, now time.Time) ([]blobRef, error) {
	rows, err := st.db.QueryContext(ctx, `
		SELECT id, COALESCE(object_key, ''), COALESCE(thumb_key, '')
		FROM photos
		WHERE expires_at <= $1
		ORDER BY expires_at ASC
	`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []blobRef
	for rows.Next() {
		var r blobRef
		if err := rows.Scan(&r.ID, &r.ObjectKey, &r.ThumbKey); err != nil {
			return nil, err
		}
		refs = append(refs, r)
	}
	return refs, rows.Err()
}

// ---- share tokens ----

func (st *store) insertShareToken(ctx context.Context, s ShareToken) error {
	_, err := st.db.ExecContext(ctx, `
		INSERT INTO share_tokens (id, photo_id, token, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, s.ID, s.PhotoID, s.Token, s.ExpiresAt, s.CreatedAt)
	return err
}

// getShareToken resolves a token string. Expiry is judged against the
// token's own clock only, regardless of the underlying photo.
func (st *store) getShareToken(ctx context.Context, token string) (ShareToken, error) {
	var s ShareToken
	err := st.db.QueryRowContext(ctx, `
		SELECT id, photo_id, token, expires_at, created_at
		FROM share_tokens WHERE token = $1
	`, token).Scan(&s.ID, &s.PhotoID, &s.Token, &s.ExpiresAt, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return s, errNotFound
	}
	if err != nil {
		return s, err
	}
	if !s.ExpiresAt.After(time.Now().UTC()) {
		return s, errShareExpired
	}
	return s, nil
}

func (st *store) deleteExpiredShareTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := st.db.ExecContext(ctx,
		`DELETE FROM share_tokens WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// ---- messages ----

func (st *store) insertMessage(ctx context.Context, m Message) error {
	_, err := st.db.ExecContext(ctx, `
		INSERT INTO messages (id, name, email, event_name, date, message, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7)
	`, m.ID, m.Name, m.Email, m.EventName, m.Date, m.Message, m.CreatedAt)
	return err
}

func (st *store) listMessages(ctx context.Context) ([]Message, error) {
	rows, err := st.db.QueryContext(ctx, `
		SELECT id, name, email, COALESCE(event_name, ''), date, message, created_at
		FROM messages ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.EventName, &m.Date, &m.Message, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// ---- admin users & sessions ----

func (st *store) getAdminByEmail(ctx context.Context, email string) (AdminUser, error) {
	var u AdminUser
	err := st.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, COALESCE(reset_code, ''), created_at, updated_at
		FROM admin_users WHERE email = $1
	`, email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.ResetCode, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return u, errNotFound
	}
	return u, err
}

func (st *store) insertAdmin(ctx context.Context, u AdminUser) error {
	_, err := st.db.ExecContext(ctx, `
		INSERT INTO admin_users (id, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
	`, u.ID, u.Email, u.PasswordHash, u.CreatedAt)
	return err
}

func (st *store) setResetCode(ctx context.Context, email, code string) error {
	_, err := st.db.ExecContext(ctx, `
		UPDATE admin_users SET reset_code = $1, updated_at = now() WHERE email = $2
	`, code, email)
	return err
}

func (st *store) completeReset(ctx context.Context, email, passwordHash string) error {
	_, err := st.db.ExecContext(ctx, `
		UPDATE admin_users
		SET password_hash = $1, reset_code = NULL, updated_at = now()
		WHERE email = $2
	`, passwordHash, email)
	return err
}

func (st *store) createSession(ctx context.Context, token string, adminID uuid.UUID, expiresAt time.Time) error {
	_, err := st.db.ExecContext(ctx, `
		INSERT INTO admin_sessions (token, admin_id, created_at, expires_at)
		VALUES ($1, $2, now(), $3)
	`, token, adminID, expiresAt)
	return err
}

func (st *store) sessionValid(ctx context.Context, token string) (bool, error) {
	var one int
	err := st.db.QueryRowContext(ctx, `
		SELECT 1 FROM admin_sessions WHERE token = $1 AND expires_at > now()
	`, token).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (st *store) deleteSession(ctx context.Context, token string) error {
	_, err := st.db.ExecContext(ctx, `DELETE FROM admin_sessions WHERE token = $1`, token)
	return err
}

func (st *store) deleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := st.db.ExecContext(ctx,
		`DELETE FROM admin_sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// ---- dashboard ----

func (st *store) countAlbums(ctx context.Context) (int64, error) {
	var n int64
	err := st.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM albums`).Scan(&n)
	return n, err
}

func (st *store) countPhotos(ctx context.Context) (int64, error) {
	var n int64
	err := st.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM photos`).Scan(&n)
	return n, err
}

func (st *store) sumPhotoDownloads(ctx context.Context) (int64, error) {
	var n int64
	err := st.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(downloads), 0) FROM photos`).Scan(&n)
	return n, err
}

// expiringPhotos lists photos whose expiry falls at or before the cutoff,
// already-expired rows included (they surface on the dashboard until swept).
func (st *store) expiringPhotos(ctx context.Context, cutoff time.Time, limit int) ([]Photo, error) {
	rows, err := st.db.QueryContext(ctx, `
		SELECT `+photoColumns+` FROM photos
		WHERE expires_at <= $1
		ORDER BY expires_at ASC
		LIMIT $2
	`, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPhotos(rows)
}
