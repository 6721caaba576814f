// Package imaging validates and optimizes uploaded guide images. Uploads
// are decoded and re-encoded from scratch, which both verifies the format
// claim and strips any metadata the source file carried.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/kolesa-team/go-webp/decoder"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
)

const (
	// DefaultMaxBytes is the upload size ceiling after optimization.
	DefaultMaxBytes = 5 * 1024 * 1024
	// DefaultMaxDim is the longest allowed edge before resizing kicks in.
	DefaultMaxDim = 2048

	startQuality = 85
	minQuality   = 60
	maxAttempts  = 5
)

// ErrInvalidImage wraps all validation failures.
var ErrInvalidImage = errors.New("invalid image")

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// Result describes an optimized upload.
type Result struct {
	Format         string // "jpeg", "png" or "webp"
	Data           []byte
	OriginalWidth  int
	OriginalHeight int
	FinalWidth     int
	FinalHeight    int
	WasResized     bool
	WasCompressed  bool
	FinalQuality   int
}

// MimeType returns the MIME type for the optimized format.
func (r *Result) MimeType() string {
	switch r.Format {
	case "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "webp":
		return "image/webp"
	}
	return "application/octet-stream"
}

// Optimizer validates and re-encodes uploads within size limits.
type Optimizer struct {
	MaxBytes int
	MaxDim   int
}

// NewOptimizer creates an Optimizer with the given limits. Zero values
// fall back to the defaults.
func NewOptimizer(maxBytes, maxDim int) *Optimizer {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if maxDim <= 0 {
		maxDim = DefaultMaxDim
	}
	return &Optimizer{MaxBytes: maxBytes, MaxDim: maxDim}
}

// ValidateAndOptimize checks that data is a real JPEG/PNG/WEBP image,
// resizes it to fit the dimension limit and re-encodes it under the size
// limit, stepping quality down as needed. PNGs that stay too large are
// converted to JPEG.
func (o *Optimizer) ValidateAndOptimize(data []byte, filename string) (*Result, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidImage)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return nil, fmt.Errorf("%w: file type %q not allowed (jpg, jpeg, png, webp)", ErrInvalidImage, ext)
	}

	img, format, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	bounds := img.Bounds()
	result := &Result{
		Format:         format,
		OriginalWidth:  bounds.Dx(),
		OriginalHeight: bounds.Dy(),
		FinalWidth:     bounds.Dx(),
		FinalHeight:    bounds.Dy(),
	}

	if bounds.Dx() > o.MaxDim || bounds.Dy() > o.MaxDim {
		img = shrinkToFit(img, o.MaxDim)
		b := img.Bounds()
		result.FinalWidth = b.Dx()
		result.FinalHeight = b.Dy()
		result.WasResized = true
	}

	quality := startQuality
	for attempt := 0; attempt < maxAttempts; attempt++ {
		encoded, err := encode(img, format, quality)
		if err != nil {
			return nil, err
		}

		if len(encoded) <= o.MaxBytes {
			if attempt > 0 {
				result.WasCompressed = true
			}
			result.Format = format
			result.Data = encoded
			result.FinalQuality = quality
			if format == "png" {
				result.FinalQuality = 100
			}
			return result, nil
		}

		switch format {
		case "jpeg", "webp":
			quality -= 10
			if quality < minQuality {
				quality = minQuality
			}
		case "png":
			// PNG has no quality dial; fall back to JPEG.
			format = "jpeg"
			quality = startQuality
			result.WasCompressed = true
		}
	}

	return nil, fmt.Errorf("%w: could not compress image under %d bytes, reduce its dimensions and retry",
		ErrInvalidImage, o.MaxBytes)
}

func decode(data []byte) (image.Image, string, error) {
	if isWEBP(data) {
		img, err := webp.Decode(bytes.NewReader(data), &decoder.Options{})
		if err != nil {
			return nil, "", err
		}
		return img, "webp", nil
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}
	if format != "jpeg" && format != "png" {
		return nil, "", fmt.Errorf("unsupported format %q", format)
	}
	return img, format, nil
}

func encode(img image.Image, format string, quality int) ([]byte, error) {
	var out bytes.Buffer
	switch format {
	case "jpeg":
		if err := jpeg.Encode(&out, flattenForJPEG(img), &jpeg.Options{Quality: quality}); err != nil {
			return nil, err
		}
	case "png":
		if err := png.Encode(&out, img); err != nil {
			return nil, err
		}
	case "webp":
		opts, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, float32(quality))
		if err != nil {
			return nil, err
		}
		if err := webp.Encode(&out, img, opts); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	return out.Bytes(), nil
}

// flattenForJPEG composites transparency onto a white background, since
// JPEG has no alpha channel.
func flattenForJPEG(img image.Image) image.Image {
	b := img.Bounds()
	flat := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(flat, flat.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(flat, flat.Bounds(), img, b.Min, draw.Over)
	return flat
}

// shrinkToFit scales the image down so its longest edge is maxDim,
// preserving aspect ratio.
func shrinkToFit(src image.Image, maxDim int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	if w >= h {
		h = h * maxDim / w
		w = maxDim
	} else {
		w = w * maxDim / h
		h = maxDim
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		srcY := b.Min.Y + (y*b.Dy())/h
		for x := 0; x < w; x++ {
			srcX := b.Min.X + (x*b.Dx())/w
			dst.Set(x, y, src.At(srcX, srcY))
		}
	}
	return dst
}

func isWEBP(data []byte) bool {
	if len(data) < 12 {
		return false
	}
	return string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP"
}
