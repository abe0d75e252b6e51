// docs.go - JSON document shapes returned by the API.
//
// Responses carry a derived "id" field in place of internal identifiers
// and ISO-8601 timestamps throughout.
package server

import (
	"time"
)

type albumDoc struct {
	ID            string `json:"id"`
	EventName     string `json:"event_name"`
	Location      string `json:"location,omitempty"`
	Date          string `json:"date"`
	CoverImageURL string `json:"cover_image_url,omitempty"`
	ExpiresInDays int    `json:"expires_in_days"`
	Downloads     int64  `json:"downloads"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
	ExpiresAt     string `json:"expires_at"`
	SecondsLeft   int64  `json:"seconds_left"`
}

type photoDoc struct {
	ID          string    `json:"id"`
	AlbumID     string    `json:"album_id"`
	ImageURL    string    `json:"image_url,omitempty"`
	ContentType string    `json:"content_type,omitempty"`
	SizeBytes   int64     `json:"size_bytes"`
	UploadedAt  string    `json:"uploaded_at"`
	ExpiresAt   string    `json:"expires_at"`
	Brightness  float64   `json:"brightness"`
	Contrast    float64   `json:"contrast"`
	Crop        *CropRect `json:"crop,omitempty"`
	Downloads   int64     `json:"downloads"`
	Watermark   bool      `json:"watermark"`
	SecondsLeft int64     `json:"seconds_left"`
}

type messageDoc struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	EventName string `json:"event_name,omitempty"`
	Date      string `json:"date,omitempty"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
}

// secondsLeft reports the whole seconds until exp, floored at zero.
func secondsLeft(exp, now time.Time) int64 {
	s := int64(exp.Sub(now).Seconds())
	if s < 0 {
		return 0
	}
	return s
}

func albumToDoc(a Album, now time.Time) albumDoc {
	exp := a.ExpiresAt()
	return albumDoc{
		ID:            a.ID.String(),
		EventName:     a.EventName,
		Location:      a.Location,
		Date:          a.Date.UTC().Format(time.RFC3339),
		CoverImageURL: a.CoverImageURL,
		ExpiresInDays: a.ExpiresInDays,
		Downloads:     a.Downloads,
		CreatedAt:     a.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     a.UpdatedAt.UTC().Format(time.RFC3339),
		ExpiresAt:     exp.UTC().Format(time.RFC3339),
		SecondsLeft:   secondsLeft(exp, now),
	}
}

func photoToDoc(p Photo, now time.Time) photoDoc {
	return photoDoc{
		ID:          p.ID.String(),
		AlbumID:     p.AlbumID.String(),
		ImageURL:    p.ImageURL,
		ContentType: p.ContentType,
		SizeBytes:   p.SizeBytes,
		UploadedAt:  p.UploadedAt.UTC().Format(time.RFC3339),
		ExpiresAt:   p.ExpiresAt.UTC().Format(time.RFC3339),
		Brightness:  p.Brightness,
		Contrast:    p.Contrast,
		Crop:        p.Crop,
		Downloads:   p.Downloads,
		Watermark:   p.Watermark,
		SecondsLeft: secondsLeft(p.ExpiresAt, now),
	}
}

func messageToDoc(m Message) messageDoc {
	doc := messageDoc{
		ID:        m.ID.String(),
		Name:      m.Name,
		Email:     m.Email,
		EventName: m.EventName,
		Message:   m.Message,
		CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339),
	}
	if m.Date.Valid {
		doc.Date = m.Date.Time.UTC().Format(time.RFC3339)
	}
	return doc
}
