// Package imaging normalizes uploaded images: crop to a client-selected
// rectangle, resample to a fixed size, drop transparency and re-encode as JPEG.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // register decoders
	_ "image/jpeg"
	_ "image/png"
	"math"

	"github.com/go-faster/errors"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// maxPixels caps decoded image area to keep a single upload from exhausting memory.
const maxPixels = 40_000_000

var (
	// ErrDecode is returned when the uploaded bytes are not a supported image.
	ErrDecode = errors.New("decode image")
	// ErrEmptyCrop is returned when the crop rectangle does not overlap the image.
	ErrEmptyCrop = errors.New("crop rectangle does not overlap the image")
)

// Rect is a crop rectangle in source pixel coordinates, as reported by the
// browser cropper.
type Rect struct {
	X, Y, W, H float64
}

// Size is an output size in pixels.
type Size struct {
	Width, Height int
}

// SizeLimitError is returned when an upload exceeds the configured ceiling.
type SizeLimitError struct {
	LimitMB int
	Size    int64
}

func (e *SizeLimitError) Error() string {
	return fmt.Sprintf("You cannot upload file more than %dMB", e.LimitMB)
}

// bounds converts r to integer pixels and clamps it to src. A rectangle that
// does not overlap src is rejected.
func (r Rect) bounds(src image.Rectangle) (image.Rectangle, error) {
	for _, v := range [...]float64{r.X, r.Y, r.W, r.H} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return image.Rectangle{}, ErrEmptyCrop
		}
	}
	if r.W <= 0 || r.H <= 0 {
		return image.Rectangle{}, ErrEmptyCrop
	}

	// Clamp in float space so huge coordinates never reach the int conversion.
	w, h := float64(src.Dx()), float64(src.Dy())
	x0 := src.Min.X + int(math.Round(clamp(r.X, w)))
	y0 := src.Min.Y + int(math.Round(clamp(r.Y, h)))
	x1 := src.Min.X + int(math.Round(clamp(r.X+r.W, w)))
	y1 := src.Min.Y + int(math.Round(clamp(r.Y+r.H, h)))

	crop := image.Rect(x0, y0, x1, y1)
	if crop.Empty() {
		return image.Rectangle{}, ErrEmptyCrop
	}
	return crop, nil
}

func clamp(v, hi float64) float64 {
	return math.Min(math.Max(v, 0), hi)
}

// Process decodes src, crops it to rect and resamples the result to exactly
// size. Transparent pixels are composited onto white, so the returned image
// is fully opaque.
func Process(src []byte, rect Rect, size Size) (*image.RGBA, error) {
	if size.Width <= 0 || size.Height <= 0 {
		return nil, errors.Errorf("invalid output size %dx%d", size.Width, size.Height)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > maxPixels/cfg.Height {
		return nil, fmt.Errorf("%w: %dx%d exceeds pixel limit", ErrDecode, cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	crop, err := rect.bounds(img.Bounds())
	if err != nil {
		return nil, err
	}

	dst := image.NewRGBA(image.Rect(0, 0, size.Width, size.Height))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, crop, draw.Over, nil)
	return dst, nil
}
