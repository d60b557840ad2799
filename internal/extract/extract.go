// Package extract converts raw drawing-surface descriptors into canonical
// geometric primitives in canvas pixel space.
//
// The drawing surface does not contractually fix how line endpoints relate to
// the descriptor's bounding box, and the encoding has drifted across surface
// versions. Extraction therefore evaluates every known coordinate convention
// and scores the candidates, so the ambiguity never leaks past this package.
package extract

import (
	"math"

	"micromeasure/internal/object"
)

// Geometry is a canonical primitive in canvas pixel space.
type Geometry interface {
	isGeometry()
}

// Line is a segment with absolute endpoints.
type Line struct {
	X1, Y1, X2, Y2 float64
}

func (Line) isGeometry() {}

// Length returns the Euclidean length of the segment.
func (l Line) Length() float64 {
	return math.Hypot(l.X2-l.X1, l.Y2-l.Y1)
}

// Circle is a center with per-axis radii. RX and RY differ when the surface
// applied non-uniform scaling to the shape.
type Circle struct {
	CX, CY, RX, RY float64
}

func (Circle) isGeometry() {}

// MeanRadius returns the effective radius under non-uniform scaling.
func (c Circle) MeanRadius() float64 {
	return (c.RX + c.RY) / 2
}

// offCanvasLimit marks a coordinate as implausible: no convention should put
// an endpoint this far outside the canvas.
const offCanvasLimit = -50

// offCanvasPenalty dominates any realistic segment length.
const offCanvasPenalty = 1e6

// Extract produces canonical geometry for a shape descriptor. ok is false
// when the descriptor is neither a recognized line nor circle encoding, or
// declares zero extent. Extraction is a pure function of the descriptor.
func Extract(o object.Object) (Geometry, bool) {
	switch o.Kind() {
	case object.KindLine:
		return extractLine(o)
	case object.KindCircle:
		return extractCircle(o)
	default:
		return nil, false
	}
}

// extractLine recovers line endpoints. The three candidate conventions are
// evaluated independently and the most plausible wins.
func extractLine(o object.Object) (Geometry, bool) {
	if !o.Has("x1", "y1", "x2", "y2") {
		return nil, false
	}

	var cands []Line
	if l, ok := lineAbsolute(o); ok {
		cands = append(cands, l)
	}
	if l, ok := lineBoxRelative(o); ok {
		cands = append(cands, l)
	}
	if l, ok := lineCenterRelative(o); ok {
		cands = append(cands, l)
	}

	return bestLine(cands)
}

// lineAbsolute assumes endpoints are already absolute in canvas space,
// subject only to the shape's scale factors.
func lineAbsolute(o object.Object) (Line, bool) {
	sx := o.Float("scaleX", 1)
	sy := o.Float("scaleY", 1)
	return Line{
		X1: o.Float("x1", 0) * sx,
		Y1: o.Float("y1", 0) * sy,
		X2: o.Float("x2", 0) * sx,
		Y2: o.Float("y2", 0) * sy,
	}, true
}

// lineBoxRelative assumes endpoints are offsets from the bounding-box origin.
func lineBoxRelative(o object.Object) (Line, bool) {
	left := o.Float("left", 0)
	top := o.Float("top", 0)
	sx := o.Float("scaleX", 1)
	sy := o.Float("scaleY", 1)
	return Line{
		X1: left + o.Float("x1", 0)*sx,
		Y1: top + o.Float("y1", 0)*sy,
		X2: left + o.Float("x2", 0)*sx,
		Y2: top + o.Float("y2", 0)*sy,
	}, true
}

// lineCenterRelative assumes endpoints are offsets from the shape's geometric
// center, which in turn depends on the declared origin flags.
func lineCenterRelative(o object.Object) (Line, bool) {
	sx := o.Float("scaleX", 1)
	sy := o.Float("scaleY", 1)
	halfW := o.Float("width", 0) * sx / 2
	halfH := o.Float("height", 0) * sy / 2

	cx := o.Float("left", 0)
	if o.Str("originX") != "center" {
		cx += halfW
	}
	cy := o.Float("top", 0)
	if o.Str("originY") != "center" {
		cy += halfH
	}

	return Line{
		X1: cx + o.Float("x1", 0)*sx,
		Y1: cy + o.Float("y1", 0)*sy,
		X2: cx + o.Float("x2", 0)*sx,
		Y2: cy + o.Float("y2", 0)*sy,
	}, true
}

// bestLine scores candidates by implied length, heavily penalizing endpoints
// far outside the canvas, and discards degenerate candidates.
func bestLine(cands []Line) (Geometry, bool) {
	var best Line
	bestScore := math.Inf(-1)
	found := false

	for _, l := range cands {
		length := l.Length()
		if length <= 0 {
			continue
		}
		score := length
		for _, c := range []float64{l.X1, l.Y1, l.X2, l.Y2} {
			if c < offCanvasLimit {
				score -= offCanvasPenalty
			}
		}
		if score > bestScore {
			best = l
			bestScore = score
			found = true
		}
	}

	if !found {
		return nil, false
	}
	return best, true
}

// extractCircle recovers a circle's center and per-axis radii. The center is
// the bounding-box origin offset by the radius on each axis unless the origin
// is declared as the center.
func extractCircle(o object.Object) (Geometry, bool) {
	rx := math.Abs(o.Float("radius", 0) * o.Float("scaleX", 1))
	ry := math.Abs(o.Float("radius", 0) * o.Float("scaleY", 1))
	if (rx+ry)/2 <= 0 {
		return nil, false
	}

	cx := o.Float("left", 0)
	if o.Str("originX") != "center" {
		cx += rx
	}
	cy := o.Float("top", 0)
	if o.Str("originY") != "center" {
		cy += ry
	}

	return Circle{CX: cx, CY: cy, RX: rx, RY: ry}, true
}
