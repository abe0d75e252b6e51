package server

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
)

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	return img
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestMakeThumbnail(t *testing.T) {
	data := encodeJPEG(t, testImage(1200, 800))

	thumb, err := makeThumbnail(data)
	if err != nil {
		t.Fatalf("makeThumbnail: %v", err)
	}

	img, err := imaging.Decode(bytes.NewReader(thumb))
	if err != nil {
		t.Fatalf("decode thumbnail: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != thumbSize || b.Dy() != thumbSize {
		t.Errorf("thumbnail = %dx%d, want %dx%d", b.Dx(), b.Dy(), thumbSize, thumbSize)
	}
}

func TestMakeThumbnailRejectsGarbage(t *testing.T) {
	if _, err := makeThumbnail([]byte("not an image")); err == nil {
		t.Error("expected error for non-image data")
	}
}

func TestHasTransforms(t *testing.T) {
	if hasTransforms(Photo{Brightness: 1.0, Contrast: 1.0}) {
		t.Error("defaults should have no transforms")
	}
	if !hasTransforms(Photo{Brightness: 1.2, Contrast: 1.0}) {
		t.Error("brightness change should count")
	}
	if !hasTransforms(Photo{Brightness: 1.0, Contrast: 1.0, Crop: &CropRect{W: 50, H: 50}}) {
		t.Error("crop should count")
	}
}

func TestTransformPercent(t *testing.T) {
	tests := []struct {
		factor float64
		want   float64
	}{
		{1.0, 0},
		{1.5, 50},
		{0.5, -50},
		{3.0, 100},
		{-1.0, -100},
	}
	for _, tt := range tests {
		if got := transformPercent(tt.factor); got != tt.want {
			t.Errorf("transformPercent(%v) = %v, want %v", tt.factor, got, tt.want)
		}
	}
}

func TestCropRect(t *testing.T) {
	b := image.Rect(0, 0, 200, 100)

	got := cropRect(b, CropRect{X: 25, Y: 25, W: 50, H: 50})
	want := image.Rect(50, 25, 150, 75)
	if got != want {
		t.Errorf("cropRect = %v, want %v", got, want)
	}

	// Overshooting crops clamp to the source bounds.
	got = cropRect(b, CropRect{X: 50, Y: 50, W: 100, H: 100})
	want = image.Rect(100, 50, 200, 100)
	if got != want {
		t.Errorf("clamped cropRect = %v, want %v", got, want)
	}

	// Degenerate crops fall back to the full image.
	if got := cropRect(b, CropRect{}); got != b {
		t.Errorf("degenerate cropRect = %v, want full bounds %v", got, b)
	}
}

func TestRenderTransforms(t *testing.T) {
	data := encodeJPEG(t, testImage(400, 200))
	p := Photo{
		Brightness: 1.2,
		Contrast:   0.9,
		Crop:       &CropRect{X: 0, Y: 0, W: 50, H: 50},
	}

	out, err := renderTransforms(data, p)
	if err != nil {
		t.Fatalf("renderTransforms: %v", err)
	}

	img, err := imaging.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode rendered: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 200 || b.Dy() != 100 {
		t.Errorf("rendered = %dx%d, want 200x100 after 50%% crop", b.Dx(), b.Dy())
	}
}
