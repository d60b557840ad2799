// Package micrograph loads source images and derives the display scaling
// between the on-screen canvas and the full-resolution image.
package micrograph

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/tiff"
)

// MaxDisplayWidth caps the on-screen canvas width in pixels. Wider images
// are shown downscaled; measurements are always reported in source pixels.
const MaxDisplayWidth = 900

// Micrograph is a loaded source image.
type Micrograph struct {
	Path  string
	Image image.Image
}

// Load decodes a micrograph from disk. PNG, JPEG and TIFF are supported.
func Load(path string) (*Micrograph, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	return &Micrograph{Path: path, Image: img}, nil
}

// Width returns the source image width in pixels.
func (m *Micrograph) Width() int {
	if m.Image == nil {
		return 0
	}
	return m.Image.Bounds().Dx()
}

// Height returns the source image height in pixels.
func (m *Micrograph) Height() int {
	if m.Image == nil {
		return 0
	}
	return m.Image.Bounds().Dy()
}

// Name returns the base filename, used in exports.
func (m *Micrograph) Name() string {
	return filepath.Base(m.Path)
}

// DisplaySize returns the canvas dimensions for a maximum display width,
// preserving aspect ratio. Images narrower than the cap display 1:1.
func (m *Micrograph) DisplaySize(maxW int) (w, h int) {
	srcW, srcH := m.Width(), m.Height()
	if srcW <= 0 || srcH <= 0 {
		return 0, 0
	}
	w = srcW
	if w > maxW {
		w = maxW
	}
	h = int(float64(srcH) * (float64(w) / float64(srcW)))
	return w, h
}

// ScaleFactors returns the per-axis factors converting canvas pixels to
// source-image pixels for the given display size.
func (m *Micrograph) ScaleFactors(displayW, displayH int) (scaleX, scaleY float64) {
	if displayW <= 0 || displayH <= 0 {
		return 1, 1
	}
	return float64(m.Width()) / float64(displayW), float64(m.Height()) / float64(displayH)
}

// SupportedFormats returns the accepted file extensions.
func SupportedFormats() []string {
	return []string{".png", ".jpg", ".jpeg", ".tiff", ".tif"}
}

// IsSupportedFormat checks whether the path has a supported image extension.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}
