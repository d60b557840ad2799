// Package measure converts canonical geometry into calibrated physical
// measurements and manages the scale calibration workflow.
package measure

import (
	"math"

	"micromeasure/internal/extract"
	"micromeasure/internal/object"
)

// DefaultScaleUmPerPx is the fallback calibration before any user
// calibration has been saved (400 µm over a 298 px reference line).
const DefaultScaleUmPerPx = 1.342281879

// Tool identifies the measurement primitive.
type Tool int

const (
	ToolLine Tool = iota
	ToolCircle
)

func (t Tool) String() string {
	switch t {
	case ToolLine:
		return "Line"
	case ToolCircle:
		return "Circle"
	default:
		return "Unknown"
	}
}

// Metric returns the human-readable name of what the tool measures.
func (t Tool) Metric() string {
	if t == ToolCircle {
		return "Diameter"
	}
	return "Length"
}

// Measurement is one calibrated result. Px is the line length or circle
// diameter in full-resolution source-image pixels; Um applies the µm/px
// calibration scale.
type Measurement struct {
	Index   int
	ShapeID string
	Tool    Tool
	Px      float64
	Um      float64
}

// Measured pairs a measurement with the shape and geometry it came from, so
// downstream consumers (label placement, rendering) need not re-extract.
type Measured struct {
	Measurement
	Shape    object.Object
	Geometry extract.Geometry
}

// PixelMeasurement converts canonical geometry into a source-image pixel
// measurement. scaleX and scaleY convert canvas pixels to full-resolution
// pixels, independently per axis.
//
// Lines measure as the Euclidean distance between endpoints after scaling
// each axis. Circles measure as a diameter, with the per-axis radii averaged
// after scaling so slight non-uniform display scaling still yields a single
// number.
func PixelMeasurement(g extract.Geometry, scaleX, scaleY float64) float64 {
	switch v := g.(type) {
	case extract.Line:
		dx := (v.X2 - v.X1) * scaleX
		dy := (v.Y2 - v.Y1) * scaleY
		return math.Hypot(dx, dy)
	case extract.Circle:
		return v.RX*scaleX + v.RY*scaleY // 2 * mean of scaled radii
	default:
		return 0
	}
}

// Build computes measurements for every measurable shape in draw order.
// Shapes that yield no geometry or a non-positive pixel measurement are
// silently excluded; a just-drawn degenerate shape is common mid-interaction
// and is not an error.
func Build(shapes []object.Object, scaleX, scaleY, scaleUmPerPx float64) []Measured {
	var out []Measured
	for _, s := range shapes {
		g, ok := extract.Extract(s)
		if !ok {
			continue
		}
		px := PixelMeasurement(g, scaleX, scaleY)
		if px <= 0 {
			continue
		}

		tool := ToolLine
		if _, isCircle := g.(extract.Circle); isCircle {
			tool = ToolCircle
		}

		out = append(out, Measured{
			Measurement: Measurement{
				Index:   len(out) + 1,
				ShapeID: s.Str(object.FieldShapeID),
				Tool:    tool,
				Px:      px,
				Um:      px * scaleUmPerPx,
			},
			Shape:    s,
			Geometry: g,
		})
	}
	return out
}
