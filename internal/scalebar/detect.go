package scalebar

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"micromeasure/pkg/geometry"
)

const (
	// bottomBandFraction is the portion of the image height searched for the
	// bar. Databars sit at the bottom of SEM/optical micrographs.
	bottomBandFraction = 0.25

	// minAspect rejects blobs that are not long and thin.
	minAspect = 8.0

	// minWidthFraction rejects bars shorter than this fraction of the image
	// width; tick marks and text strokes fall below it.
	minWidthFraction = 0.05
)

// Bar is a detected scale bar, in source-image pixel coordinates.
type Bar struct {
	Bounds   geometry.RectInt
	LengthPx float64
}

// DetectBar finds the scale bar in the bottom band of a micrograph. The bar
// is located as the widest high-aspect contour after Otsu thresholding; both
// light-on-dark and dark-on-light databars are tried.
func DetectBar(img gocv.Mat) (Bar, bool) {
	if img.Empty() {
		return Bar{}, false
	}

	h, w := img.Rows(), img.Cols()
	bandTop := int(float64(h) * (1 - bottomBandFraction))
	band := img.Region(image.Rect(0, bandTop, w, h))
	defer band.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	if band.Channels() > 1 {
		gocv.CvtColor(band, &gray, gocv.ColorBGRToGray)
	} else {
		band.CopyTo(&gray)
	}

	binary := gocv.NewMat()
	defer binary.Close()
	gocv.Threshold(gray, &binary, 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)

	bar, found := widestBarContour(binary, w)
	if !found {
		// Try the inverse polarity: some databars draw a dark bar on a
		// light panel.
		gocv.BitwiseNot(binary, &binary)
		bar, found = widestBarContour(binary, w)
	}
	if !found {
		return Bar{}, false
	}

	bar.Bounds.Y += bandTop
	return bar, true
}

// widestBarContour scans binary blobs for the widest one shaped like a bar.
func widestBarContour(binary gocv.Mat, imgW int) (Bar, bool) {
	contours := gocv.FindContours(binary, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var best Bar
	found := false
	for i := 0; i < contours.Size(); i++ {
		rect := gocv.BoundingRect(contours.At(i))
		bw, bh := rect.Dx(), rect.Dy()
		if bh == 0 {
			continue
		}
		if float64(bw)/float64(bh) < minAspect {
			continue
		}
		if float64(bw) < float64(imgW)*minWidthFraction {
			continue
		}
		if !found || bw > best.Bounds.Width {
			best = Bar{
				Bounds: geometry.RectInt{
					X: rect.Min.X, Y: rect.Min.Y,
					Width: bw, Height: bh,
				},
				LengthPx: float64(bw),
			}
			found = true
		}
	}
	return best, found
}

// Suggestion is a proposed calibration derived from the image itself.
type Suggestion struct {
	Bar     Bar
	Text    string  // raw OCR text of the annotation
	KnownUm float64 // parsed physical length of the bar
}

// Suggest detects the scale bar and reads its annotation, returning a
// calibration suggestion. The reader may be nil, in which case only the bar
// geometry is returned and KnownUm is zero.
func Suggest(img gocv.Mat, reader *Reader) (Suggestion, error) {
	bar, ok := DetectBar(img)
	if !ok {
		return Suggestion{}, fmt.Errorf("no scale bar found")
	}

	s := Suggestion{Bar: bar}
	if reader == nil {
		return s, nil
	}

	text, err := reader.ReadAnnotation(img, bar.Bounds)
	if err != nil {
		return s, fmt.Errorf("annotation OCR failed: %w", err)
	}
	s.Text = text

	if um, ok := ParseLength(text); ok {
		s.KnownUm = um
	}
	return s, nil
}
