// Package canvas provides the interactive drawing surface for measurements.
//
// The widget is deliberately thin: it turns pointer gestures into raw shape
// descriptors and renders whatever descriptors it is handed back. All
// geometry, measurement and label decisions live in the internal packages.
package canvas

import (
	"image"
	"image/color"
	"math"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"

	"micromeasure/internal/export"
	"micromeasure/internal/extract"
	"micromeasure/internal/label"
	"micromeasure/internal/object"
	"micromeasure/internal/session"
	"micromeasure/pkg/geometry"
)

var strokeColor = color.RGBA{R: 255, G: 0, B: 0, A: 255}

const strokeWidth = 2

// MeasureCanvas displays the scaled micrograph and the current object set,
// and emits a fresh snapshot after every completed gesture.
type MeasureCanvas struct {
	widget.BaseWidget

	background    image.Image // already display-scaled
	width, height int         // canvas pixel dimensions

	objects []object.Object
	mode    session.DrawingMode

	raster *fynecanvas.Raster

	// Drag state.
	dragging  bool
	dragStart geometry.Point2D
	dragCur   geometry.Point2D
	dragLabel int // index into objects of the label being moved, -1 if none
	grabDX    float64
	grabDY    float64

	// Cached label face, rebuilt when the size changes.
	face     font.Face
	faceSize float64

	onChange func(snapshot []object.Object)
}

// NewMeasureCanvas creates an empty drawing surface.
func NewMeasureCanvas() *MeasureCanvas {
	mc := &MeasureCanvas{
		mode:      session.DrawLine,
		dragLabel: -1,
	}
	mc.raster = fynecanvas.NewRaster(mc.draw)
	mc.ExtendBaseWidget(mc)
	return mc
}

// CreateRenderer implements fyne.Widget.
func (mc *MeasureCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(mc.raster)
}

// MinSize reports the canvas pixel dimensions so pointer coordinates map 1:1
// to canvas coordinates.
func (mc *MeasureCanvas) MinSize() fyne.Size {
	if mc.width == 0 {
		return fyne.NewSize(320, 240)
	}
	return fyne.NewSize(float32(mc.width), float32(mc.height))
}

// SetBackground installs the display-scaled micrograph and resets the
// object set.
func (mc *MeasureCanvas) SetBackground(img image.Image, canvasW, canvasH int) {
	mc.background = img
	mc.width = canvasW
	mc.height = canvasH
	mc.objects = nil
	mc.dragging = false
	mc.dragLabel = -1
	mc.Refresh()
}

// SetMode selects how pointer gestures are interpreted.
func (mc *MeasureCanvas) SetMode(mode session.DrawingMode) {
	mc.mode = mode
}

// SetObjects replaces the rendered object set (the reconciled shapes and
// labels handed back by the session).
func (mc *MeasureCanvas) SetObjects(objs []object.Object) {
	mc.objects = objs
	mc.Refresh()
}

// Objects returns a snapshot of the current object set.
func (mc *MeasureCanvas) Objects() []object.Object {
	out := make([]object.Object, len(mc.objects))
	for i, o := range mc.objects {
		out[i] = o.Clone()
	}
	return out
}

// OnChange registers the snapshot callback fired after each completed
// gesture.
func (mc *MeasureCanvas) OnChange(fn func(snapshot []object.Object)) {
	mc.onChange = fn
}

// Dragged handles an in-progress pointer drag.
func (mc *MeasureCanvas) Dragged(ev *fyne.DragEvent) {
	pos := geometry.Point2D{X: float64(ev.Position.X), Y: float64(ev.Position.Y)}

	if !mc.dragging {
		mc.dragging = true
		mc.dragStart = pos
		if mc.mode == session.DrawTransform {
			mc.dragLabel = mc.hitTestLabel(pos)
			if mc.dragLabel >= 0 {
				o := mc.objects[mc.dragLabel]
				mc.grabDX = pos.X - o.Float("left", 0)
				mc.grabDY = pos.Y - o.Float("top", 0)
			}
		}
	}
	mc.dragCur = pos

	if mc.mode == session.DrawTransform && mc.dragLabel >= 0 {
		o := mc.objects[mc.dragLabel]
		o["left"] = pos.X - mc.grabDX
		o["top"] = pos.Y - mc.grabDY
	}
	mc.Refresh()
}

// DragEnd finalizes the gesture: a new shape in draw modes, a moved label in
// transform mode. Either way the full snapshot is emitted for reconciliation.
func (mc *MeasureCanvas) DragEnd() {
	if !mc.dragging {
		return
	}
	mc.dragging = false

	switch mc.mode {
	case session.DrawLine:
		mc.objects = append(mc.objects, lineObject(mc.dragStart, mc.dragCur))
	case session.DrawCircle:
		mc.objects = append(mc.objects, circleObject(mc.dragStart, mc.dragCur))
	case session.DrawTransform:
		if mc.dragLabel < 0 {
			mc.Refresh()
			return
		}
		mc.dragLabel = -1
	}

	if mc.onChange != nil {
		mc.onChange(mc.Objects())
	}
	mc.Refresh()
}

// hitTestLabel returns the index of the topmost label under the point.
func (mc *MeasureCanvas) hitTestLabel(p geometry.Point2D) int {
	for i := len(mc.objects) - 1; i >= 0; i-- {
		o := mc.objects[i]
		if o.Kind() != object.KindLabel {
			continue
		}
		r := geometry.Rect{
			X:      o.Float("left", 0),
			Y:      o.Float("top", 0),
			Width:  o.Float("width", 0),
			Height: o.Float("height", 0),
		}
		// Small labels are hard to grab; give them a minimum hit area.
		if r.Width < 20 {
			r.Width = 20
		}
		if r.Height < 14 {
			r.Height = 14
		}
		if r.Contains(p) {
			return i
		}
	}
	return -1
}

// lineObject encodes a drawn line the way the drawing surface reports it:
// absolute endpoints with unit scale.
func lineObject(a, b geometry.Point2D) object.Object {
	return object.Object{
		"type":   "line",
		"x1":     a.X,
		"y1":     a.Y,
		"x2":     b.X,
		"y2":     b.Y,
		"left":   math.Min(a.X, b.X),
		"top":    math.Min(a.Y, b.Y),
		"width":  math.Abs(b.X - a.X),
		"height": math.Abs(b.Y - a.Y),
		"scaleX": 1.0,
		"scaleY": 1.0,
	}
}

// circleObject encodes a drawn circle: the drag starts at the center and the
// release point sets the radius.
func circleObject(center, edge geometry.Point2D) object.Object {
	r := center.Distance(edge)
	return object.Object{
		"type":    "circle",
		"radius":  r,
		"left":    center.X - r,
		"top":     center.Y - r,
		"originX": "left",
		"originY": "top",
		"scaleX":  1.0,
		"scaleY":  1.0,
	}
}

// draw renders the canvas for the raster at the requested output size.
func (mc *MeasureCanvas) draw(w, h int) image.Image {
	if mc.width == 0 || w == 0 || h == 0 {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}

	out := image.NewRGBA(image.Rect(0, 0, mc.width, mc.height))
	if mc.background != nil {
		xdraw.Draw(out, out.Bounds(), mc.background, mc.background.Bounds().Min, xdraw.Src)
	}

	for _, o := range mc.objects {
		switch o.Kind() {
		case object.KindLine, object.KindCircle:
			mc.drawShape(out, o)
		case object.KindLabel:
			mc.drawLabel(out, o)
		}
	}

	if mc.dragging && mc.dragLabel < 0 {
		mc.drawPreview(out)
	}

	if w == mc.width && h == mc.height {
		return out
	}

	// The raster may ask for a different size on HiDPI displays.
	scaled := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), out, out.Bounds(), xdraw.Src, nil)
	return scaled
}

// drawShape renders a shape descriptor through the extractor, so what the
// user sees is exactly the geometry that gets measured.
func (mc *MeasureCanvas) drawShape(out *image.RGBA, o object.Object) {
	g, ok := extract.Extract(o)
	if !ok {
		return
	}
	switch v := g.(type) {
	case extract.Line:
		export.DrawThickLine(out, int(v.X1), int(v.Y1), int(v.X2), int(v.Y2), strokeColor, strokeWidth)
	case extract.Circle:
		export.DrawEllipseOutline(out, v.CX, v.CY, v.RX, v.RY, strokeColor, strokeWidth)
	}
}

// drawLabel renders a label descriptor at its stored position.
func (mc *MeasureCanvas) drawLabel(out *image.RGBA, o object.Object) {
	l := label.FromObject(o)
	if l.Text == "" {
		return
	}

	size := l.FontSize
	if size <= 0 {
		size = 14
	}
	if mc.face == nil || mc.faceSize != size {
		face, err := export.NewFace(size)
		if err != nil {
			return
		}
		mc.face = face
		mc.faceSize = size
	}

	export.DrawText(out, mc.face, l.Text, l.Left, l.Top, strokeColor)
}

// drawPreview renders the shape being dragged.
func (mc *MeasureCanvas) drawPreview(out *image.RGBA) {
	switch mc.mode {
	case session.DrawLine:
		export.DrawThickLine(out,
			int(mc.dragStart.X), int(mc.dragStart.Y),
			int(mc.dragCur.X), int(mc.dragCur.Y),
			strokeColor, strokeWidth)
	case session.DrawCircle:
		r := mc.dragStart.Distance(mc.dragCur)
		export.DrawEllipseOutline(out, mc.dragStart.X, mc.dragStart.Y, r, r, strokeColor, strokeWidth)
	}
}
