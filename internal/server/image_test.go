package server

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestExtensionFor(t *testing.T) {
	tests := []struct {
		contentType string
		want        string
	}{
		{"image/jpeg", ".jpg"},
		{"image/png", ".png"},
		{"image/webp", ".webp"},
		{"image/gif", ".gif"},
		{"", ".jpg"},
		{"application/octet-stream", ".jpg"},
	}
	for _, tt := range tests {
		if got := extensionFor(tt.contentType); got != tt.want {
			t.Errorf("extensionFor(%q) = %q, want %q", tt.contentType, got, tt.want)
		}
	}
}

func TestAttachmentHeader(t *testing.T) {
	p := Photo{ID: uuid.New(), ContentType: "image/png"}

	h := attachmentHeader(p, p.ContentType)
	if !strings.HasPrefix(h, "attachment; filename=photo-"+p.ID.String()) {
		t.Errorf("header = %q", h)
	}
	if !strings.HasSuffix(h, ".png") {
		t.Errorf("PNG photo should download as .png, got %q", h)
	}

	// Transformed downloads are re-encoded as JPEG regardless of source.
	if h := attachmentHeader(p, "image/jpeg"); !strings.HasSuffix(h, ".jpg") {
		t.Errorf("re-encoded header = %q", h)
	}
}
