// Package label places and maintains the text labels attached to measured
// shapes.
//
// The engine only ever computes a label's initial position. Once a label
// exists its position is user-owned: reconciliation refreshes the text (and
// cosmetic styling) but never moves it. That asymmetry is what lets a user
// drag a label once and have it stay put across every later measurement
// refresh.
package label

import (
	"fmt"

	"golang.org/x/image/font"

	"micromeasure/internal/extract"
	"micromeasure/internal/measure"
	"micromeasure/internal/object"
	"micromeasure/pkg/geometry"
)

const (
	// AnchorOffset is the outward margin between a shape and its label's
	// default anchor, in canvas pixels.
	AnchorOffset = 12

	// DefaultEdgeMargin keeps label origins away from the canvas edge.
	DefaultEdgeMargin = 8

	// DefaultFill is the label text color.
	DefaultFill = "#ff0000"
)

// Label is a positioned text object tied to a shape by identity. Position and
// transform fields are user-owned once the label exists.
type Label struct {
	ID         string
	ForShapeID string
	Text       string
	Left, Top  float64
	FontSize   float64
	Fill       string
	ScaleX     float64
	ScaleY     float64
	Angle      float64
	Width      float64
	Height     float64
}

// Options configures a reconciliation pass.
type Options struct {
	CanvasW    float64
	CanvasH    float64
	FontSize   float64
	Fill       string
	EdgeMargin float64
	Face       font.Face // used to measure text extent for clamping
}

// Text formats the displayed measurement.
func Text(um float64) string {
	return fmt.Sprintf("%.2f µm", um)
}

// DefaultAnchor computes the initial label anchor for a geometry, in canvas
// space: past a line's terminal endpoint and slightly above it, or just
// outside a circle's upper-right.
func DefaultAnchor(g extract.Geometry) geometry.Point2D {
	switch v := g.(type) {
	case extract.Line:
		return geometry.Point2D{X: v.X2 + AnchorOffset, Y: v.Y2 - AnchorOffset}
	case extract.Circle:
		r := v.MeanRadius()
		return geometry.Point2D{X: v.CX + r + AnchorOffset, Y: v.CY - r - AnchorOffset}
	default:
		return geometry.Point2D{}
	}
}

// ClampToCanvas constrains an anchor so the whole label text stays within the
// canvas, keeping margin pixels from each edge. The text extent is subtracted
// on the far edges so the label never hangs off the canvas.
func ClampToCanvas(p geometry.Point2D, canvasW, canvasH, textW, textH, margin float64) geometry.Point2D {
	maxX := canvasW - margin - textW
	if maxX < margin {
		maxX = margin
	}
	maxY := canvasH - margin - textH
	if maxY < margin {
		maxY = margin
	}
	return geometry.Point2D{
		X: geometry.Clamp(p.X, margin, maxX),
		Y: geometry.Clamp(p.Y, margin, maxY),
	}
}

// TextExtent measures the rendered size of text under a font face.
func TextExtent(face font.Face, text string) (w, h float64) {
	if face == nil {
		return 0, 0
	}
	d := font.Drawer{Face: face}
	m := face.Metrics()
	return float64(d.MeasureString(text).Ceil()), float64((m.Ascent + m.Descent).Ceil())
}

// idFor derives the label identifier from the owning shape's identity, so
// repeated reconciliation of an unchanged snapshot yields identical IDs.
func idFor(shapeID string) string {
	return "label-" + shapeID
}

// Reconcile enforces the label lifecycle against the current measurement set:
// each measured shape without a label gets one at the clamped default anchor;
// shapes with an existing label keep its position and get only the text (and
// fill) refreshed; labels whose owning shape is gone are dropped.
func Reconcile(ms []measure.Measured, prev []Label, opts Options) []Label {
	if opts.Fill == "" {
		opts.Fill = DefaultFill
	}
	if opts.EdgeMargin == 0 {
		opts.EdgeMargin = DefaultEdgeMargin
	}

	byShape := make(map[string]Label, len(prev))
	for _, l := range prev {
		byShape[l.ForShapeID] = l
	}

	out := make([]Label, 0, len(ms))
	for _, m := range ms {
		text := Text(m.Um)

		if old, ok := byShape[m.ShapeID]; ok {
			// Position, transform and size stay exactly as the user left them.
			old.Text = text
			old.Fill = opts.Fill
			out = append(out, old)
			continue
		}

		tw, th := TextExtent(opts.Face, text)
		at := ClampToCanvas(DefaultAnchor(m.Geometry),
			opts.CanvasW, opts.CanvasH, tw, th, opts.EdgeMargin)

		out = append(out, Label{
			ID:         idFor(m.ShapeID),
			ForShapeID: m.ShapeID,
			Text:       text,
			Left:       at.X,
			Top:        at.Y,
			FontSize:   opts.FontSize,
			Fill:       opts.Fill,
			ScaleX:     1,
			ScaleY:     1,
			Width:      tw,
			Height:     th,
		})
	}
	return out
}

// ToObject converts the label into a drawing-surface descriptor.
func (l Label) ToObject() object.Object {
	return object.Object{
		"type":                  "i-text",
		"text":                  l.Text,
		"left":                  l.Left,
		"top":                   l.Top,
		"fontSize":              l.FontSize,
		"fill":                  l.Fill,
		"scaleX":                l.ScaleX,
		"scaleY":                l.ScaleY,
		"angle":                 l.Angle,
		"width":                 l.Width,
		"height":                l.Height,
		object.FieldLabelID:     l.ID,
		object.FieldForShapeID:  l.ForShapeID,
	}
}

// FromObject reads a label back from a drawing-surface descriptor.
func FromObject(o object.Object) Label {
	return Label{
		ID:         o.Str(object.FieldLabelID),
		ForShapeID: o.Str(object.FieldForShapeID),
		Text:       o.Str("text"),
		Left:       o.Float("left", 0),
		Top:        o.Float("top", 0),
		FontSize:   o.Float("fontSize", 0),
		Fill:       o.Str("fill"),
		ScaleX:     o.Float("scaleX", 1),
		ScaleY:     o.Float("scaleY", 1),
		Angle:      o.Float("angle", 0),
		Width:      o.Float("width", 0),
		Height:     o.Float("height", 0),
	}
}
