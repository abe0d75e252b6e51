// render.go - Image derivations: thumbnails and display transforms.
//
// Transforms are non-destructive: they are applied to a decoded copy at
// serve time and the stored blob is never rewritten.
package server

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
)

const (
	thumbSize    = 300
	thumbQuality = 85
)

// makeThumbnail produces a JPEG thumbnail bounded by thumbSize on both axes.
func makeThumbnail(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	thumb := imaging.Thumbnail(img, thumbSize, thumbSize, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(thumbQuality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// hasTransforms reports whether the photo's display transforms deviate from
// the defaults; if not, the stored bytes are served untouched.
func hasTransforms(p Photo) bool {
	return p.Brightness != 1.0 || p.Contrast != 1.0 || p.Crop != nil
}

// renderTransforms applies crop, brightness and contrast in that order and
// re-encodes as JPEG. The caller falls back to the raw bytes on error.
func renderTransforms(data []byte, p Photo) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	out := applyTransforms(img, p)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.JPEG, imaging.JPEGQuality(92)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func applyTransforms(img image.Image, p Photo) image.Image {
	if p.Crop != nil {
		img = imaging.Crop(img, cropRect(img.Bounds(), *p.Crop))
	}
	if p.Brightness != 1.0 {
		img = imaging.AdjustBrightness(img, transformPercent(p.Brightness))
	}
	if p.Contrast != 1.0 {
		img = imaging.AdjustContrast(img, transformPercent(p.Contrast))
	}
	return img
}

// transformPercent maps the stored multiplicative factor (1.0 = unchanged)
// onto the -100..100 percentage scale imaging expects.
func transformPercent(factor float64) float64 {
	pct := (factor - 1.0) * 100
	if pct > 100 {
		return 100
	}
	if pct < -100 {
		return -100
	}
	return pct
}

// cropRect converts a percentage crop into pixel coordinates, clamped to
// the source bounds. A degenerate crop yields the full bounds.
func cropRect(b image.Rectangle, c CropRect) image.Rectangle {
	w := float64(b.Dx())
	h := float64(b.Dy())

	x0 := b.Min.X + int(clampPct(c.X)/100*w)
	y0 := b.Min.Y + int(clampPct(c.Y)/100*h)
	x1 := x0 + int(clampPct(c.W)/100*w)
	y1 := y0 + int(clampPct(c.H)/100*h)

	if x1 > b.Max.X {
		x1 = b.Max.X
	}
	if y1 > b.Max.Y {
		y1 = b.Max.Y
	}
	if x1 <= x0 || y1 <= y0 {
		return b
	}
	return image.Rect(x0, y0, x1, y1)
}

func clampPct(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
