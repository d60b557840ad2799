// Package export produces the outward-facing artifacts: the annotated
// full-resolution raster and the measurement CSV.
package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"micromeasure/internal/extract"
	"micromeasure/internal/label"
	"micromeasure/internal/measure"
	"micromeasure/pkg/geometry"
)

// strokeColor is the annotation color, matching the on-canvas stroke.
var strokeColor = color.RGBA{R: 255, G: 0, B: 0, A: 255}

// strokeWidth is the annotation stroke width in source pixels.
const strokeWidth = 3

// FontSizeFor returns the label font size for an annotated image: 5% of the
// image width, with a floor so labels stay legible on small images.
func FontSizeFor(imageW int) float64 {
	return math.Max(60, float64(imageW)*0.05)
}

// Annotate composites all measured shapes and their labels onto the
// full-resolution source image. Canvas-space geometry is scaled up per axis;
// label positions scale with the canvas→source factors while label text
// renders at the export font size.
func Annotate(src image.Image, ms []measure.Measured, labels []label.Label, scaleX, scaleY float64) (*image.RGBA, error) {
	out := image.NewRGBA(src.Bounds())
	draw.Draw(out, out.Bounds(), src, src.Bounds().Min, draw.Src)

	for _, m := range ms {
		switch g := m.Geometry.(type) {
		case extract.Line:
			DrawThickLine(out,
				int(g.X1*scaleX), int(g.Y1*scaleY),
				int(g.X2*scaleX), int(g.Y2*scaleY),
				strokeColor, strokeWidth)
		case extract.Circle:
			DrawEllipseOutline(out,
				g.CX*scaleX, g.CY*scaleY,
				g.RX*scaleX, g.RY*scaleY,
				strokeColor, strokeWidth)
		}
	}

	if len(labels) > 0 {
		face, err := NewFace(FontSizeFor(out.Bounds().Dx()))
		if err != nil {
			return nil, err
		}
		defer face.Close()

		for _, l := range labels {
			at := geometry.Point2D{X: l.Left, Y: l.Top}.ScaleXY(scaleX, scaleY)

			// Keep the full text extent on the image.
			tw, th := label.TextExtent(face, l.Text)
			w, h := float64(out.Bounds().Dx()), float64(out.Bounds().Dy())
			if at.X+tw > w {
				at.X = w - tw
			}
			if at.Y+th > h {
				at.Y = h - th
			}
			if at.X < 0 {
				at.X = 0
			}
			if at.Y < 0 {
				at.Y = 0
			}

			DrawText(out, face, l.Text, at.X, at.Y, strokeColor)
		}
	}

	return out, nil
}

// EncodePNG encodes the annotated image.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}
