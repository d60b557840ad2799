package scalebar

import (
	"fmt"
	"image"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"gocv.io/x/gocv"

	"micromeasure/pkg/geometry"
)

// annotationChars restricts OCR to what a scale-bar annotation can contain.
const annotationChars = "0123456789.nmuµμ "

// Reader performs OCR on scale-bar annotations using Tesseract.
type Reader struct {
	client *gosseract.Client
}

// NewReader creates an OCR reader for scale-bar annotations.
func NewReader() (*Reader, error) {
	client := gosseract.NewClient()

	if err := client.SetLanguage("eng"); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR language: %w", err)
	}

	// Annotations are magnitudes, not words; dictionary correction only
	// hurts here.
	_ = client.SetVariable("load_system_dawg", "false")
	_ = client.SetVariable("load_freq_dawg", "false")

	return &Reader{client: client}, nil
}

// Close releases OCR resources.
func (r *Reader) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// ReadAnnotation performs OCR on the region around a detected bar. The text
// sits above or beside the bar, so the region is the bar's bounds grown
// generously on all sides.
func (r *Reader) ReadAnnotation(img gocv.Mat, bar geometry.RectInt) (string, error) {
	if img.Empty() {
		return "", fmt.Errorf("empty image")
	}

	// Grow the bar bounds by half a bar-width on each side; the annotation
	// text sits above or beside the bar within that band.
	padX := bar.Width / 2
	padY := bar.Width / 2
	x1 := max(0, bar.X-padX)
	y1 := max(0, bar.Y-padY)
	x2 := min(img.Cols(), bar.X+bar.Width+padX)
	y2 := min(img.Rows(), bar.Y+bar.Height+padY)
	if x2-x1 <= 0 || y2-y1 <= 0 {
		return "", fmt.Errorf("invalid annotation region")
	}

	region := img.Region(image.Rect(x1, y1, x2, y2))
	defer region.Close()

	buf, err := gocv.IMEncode(gocv.PNGFileExt, region)
	if err != nil {
		return "", fmt.Errorf("failed to encode region: %w", err)
	}
	defer buf.Close()

	if err := r.client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return "", fmt.Errorf("failed to set PSM: %w", err)
	}
	if err := r.client.SetWhitelist(annotationChars); err != nil {
		return "", fmt.Errorf("failed to set whitelist: %w", err)
	}
	if err := r.client.SetImageFromBytes(buf.GetBytes()); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := r.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}

	return strings.Join(strings.Fields(text), " "), nil
}
