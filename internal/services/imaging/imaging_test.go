package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

// noisyImage builds an image with deterministic pseudo-random pixels so
// PNG encoding cannot compress it away.
func noisyImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	seed := uint32(2463534242)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			seed ^= seed << 13
			seed ^= seed >> 17
			seed ^= seed << 5
			img.Set(x, y, color.RGBA{uint8(seed), uint8(seed >> 8), uint8(seed >> 16), 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode failed: %v", err)
	}
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("jpeg encode failed: %v", err)
	}
	return buf.Bytes()
}

func TestValidateAndOptimize_ValidPNG(t *testing.T) {
	opt := NewOptimizer(0, 0)
	data := encodePNG(t, noisyImage(64, 48))

	result, err := opt.ValidateAndOptimize(data, "mini.png")
	if err != nil {
		t.Fatalf("ValidateAndOptimize failed: %v", err)
	}
	if result.Format != "png" {
		t.Errorf("Expected png, got %s", result.Format)
	}
	if result.OriginalWidth != 64 || result.OriginalHeight != 48 {
		t.Errorf("Original size mismatch: %dx%d", result.OriginalWidth, result.OriginalHeight)
	}
	if result.WasResized || result.WasCompressed {
		t.Error("Small image should pass through untouched")
	}
	if len(result.Data) == 0 {
		t.Error("Expected re-encoded bytes")
	}
	if result.MimeType() != "image/png" {
		t.Errorf("MimeType mismatch: %s", result.MimeType())
	}
}

func TestValidateAndOptimize_ValidJPEG(t *testing.T) {
	opt := NewOptimizer(0, 0)
	data := encodeJPEG(t, noisyImage(64, 48))

	result, err := opt.ValidateAndOptimize(data, "mini.jpg")
	if err != nil {
		t.Fatalf("ValidateAndOptimize failed: %v", err)
	}
	if result.Format != "jpeg" {
		t.Errorf("Expected jpeg, got %s", result.Format)
	}
	if result.FinalQuality != 85 {
		t.Errorf("Expected starting quality 85, got %d", result.FinalQuality)
	}
}

func TestValidateAndOptimize_RejectsBadInput(t *testing.T) {
	opt := NewOptimizer(0, 0)

	// Empty file.
	if _, err := opt.ValidateAndOptimize(nil, "a.png"); !errors.Is(err, ErrInvalidImage) {
		t.Errorf("Expected ErrInvalidImage for empty file, got %v", err)
	}

	// Extension allowlist.
	data := encodePNG(t, noisyImage(8, 8))
	if _, err := opt.ValidateAndOptimize(data, "a.gif"); !errors.Is(err, ErrInvalidImage) {
		t.Errorf("Expected ErrInvalidImage for gif extension, got %v", err)
	}
	if _, err := opt.ValidateAndOptimize(data, "noextension"); !errors.Is(err, ErrInvalidImage) {
		t.Errorf("Expected ErrInvalidImage for missing extension, got %v", err)
	}

	// Content must actually decode; the extension claim isn't trusted.
	garbage := []byte("definitely not an image, whatever the name says")
	if _, err := opt.ValidateAndOptimize(garbage, "fake.png"); !errors.Is(err, ErrInvalidImage) {
		t.Errorf("Expected ErrInvalidImage for garbage bytes, got %v", err)
	}
}

func TestValidateAndOptimize_ResizesOversized(t *testing.T) {
	opt := NewOptimizer(0, 256)
	data := encodePNG(t, noisyImage(512, 128))

	result, err := opt.ValidateAndOptimize(data, "wide.png")
	if err != nil {
		t.Fatalf("ValidateAndOptimize failed: %v", err)
	}
	if !result.WasResized {
		t.Fatal("Expected resize")
	}
	if result.FinalWidth != 256 {
		t.Errorf("Expected width clamped to 256, got %d", result.FinalWidth)
	}
	// Aspect ratio is preserved.
	if result.FinalHeight != 64 {
		t.Errorf("Expected height scaled to 64, got %d", result.FinalHeight)
	}
	if result.OriginalWidth != 512 || result.OriginalHeight != 128 {
		t.Errorf("Original size mismatch: %dx%d", result.OriginalWidth, result.OriginalHeight)
	}
}

func TestValidateAndOptimize_ConvertsLargePNGToJPEG(t *testing.T) {
	// Noise doesn't compress as PNG, so a small byte cap forces the
	// JPEG fallback.
	opt := NewOptimizer(50*1024, 0)
	data := encodePNG(t, noisyImage(300, 300))
	if len(data) <= 50*1024 {
		t.Skipf("fixture PNG unexpectedly small: %d bytes", len(data))
	}

	result, err := opt.ValidateAndOptimize(data, "big.png")
	if err != nil {
		t.Fatalf("ValidateAndOptimize failed: %v", err)
	}
	if result.Format != "jpeg" {
		t.Errorf("Expected png converted to jpeg, got %s", result.Format)
	}
	if !result.WasCompressed {
		t.Error("Expected compression flag set")
	}
	if len(result.Data) > 50*1024 {
		t.Errorf("Result still over cap: %d bytes", len(result.Data))
	}
}

func TestIsWEBP(t *testing.T) {
	if !isWEBP([]byte("RIFF....WEBPVP8 ")) {
		t.Error("Expected RIFF/WEBP header recognized")
	}
	if isWEBP([]byte("RIFF....WAVE")) {
		t.Error("Expected non-WEBP RIFF rejected")
	}
	if isWEBP([]byte("short")) {
		t.Error("Expected short input rejected")
	}
}
