package server

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
)

func formPart(t *testing.T, field, value string) *multipart.Part {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormField(field)
	if err != nil {
		t.Fatalf("create field: %v", err)
	}
	fw.Write([]byte(value))
	mw.Close()

	part, err := multipart.NewReader(&buf, mw.Boundary()).NextPart()
	if err != nil {
		t.Fatalf("next part: %v", err)
	}
	return part
}

func TestConsumePartWatermark(t *testing.T) {
	s := &Server{}
	r := httptest.NewRequest("POST", "/api/albums/x/photos", nil)
	now := time.Now().UTC()

	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"TRUE", true},
		{" true ", true},
		{"false", false},
		{"", false},
	}
	for _, tt := range tests {
		id, wm, err := s.consumePart(r, formPart(t, "watermark", tt.value), uuid.New(), now, now)
		if err != nil {
			t.Fatalf("consumePart(%q): %v", tt.value, err)
		}
		if id != uuid.Nil {
			t.Errorf("watermark part should not yield a photo id, got %v", id)
		}
		if wm != tt.want {
			t.Errorf("watermark %q = %v, want %v", tt.value, wm, tt.want)
		}
	}
}

func TestConsumePartSkipsUnknownFields(t *testing.T) {
	s := &Server{}
	r := httptest.NewRequest("POST", "/api/albums/x/photos", nil)
	now := time.Now().UTC()

	id, wm, err := s.consumePart(r, formPart(t, "comment", "ignore me"), uuid.New(), now, now)
	if err != nil {
		t.Fatalf("consumePart: %v", err)
	}
	if id != uuid.Nil || wm {
		t.Errorf("unknown field should be a no-op, got id=%v wm=%v", id, wm)
	}
}
