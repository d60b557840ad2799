// Package session owns the per-image editing state and runs the
// reconciliation pass that ties identity sync, extraction, measurement and
// label maintenance together.
//
// A Session is confined to the UI event loop: every user interaction triggers
// one synchronous pass over the whole object set, and nothing else mutates
// the state, so there is no locking.
package session

import (
	"golang.org/x/image/font"

	"micromeasure/internal/label"
	"micromeasure/internal/measure"
	"micromeasure/internal/object"
)

// Mode selects how the drawing surface interprets pointer interaction.
type Mode int

const (
	// ModeDraw creates new shapes.
	ModeDraw Mode = iota
	// ModeReposition moves existing labels (select/transform).
	ModeReposition
)

// DrawingMode is the mode selector handed to the drawing surface.
type DrawingMode string

const (
	DrawLine      DrawingMode = "line"
	DrawCircle    DrawingMode = "circle"
	DrawTransform DrawingMode = "transform"
)

// Event identifies session state changes the UI may want to react to.
type Event int

const (
	EventReconciled Event = iota
	EventScaleChanged
	EventModeChanged
)

// Session holds all state for one editing session over one image. Created
// when an image is loaded, torn down when the image changes.
type Session struct {
	// Calibration scale, µm per source-image pixel. Always positive.
	scaleUmPerPx float64

	// Canvas and source dimensions.
	CanvasW, CanvasH float64
	ScaleX, ScaleY   float64 // canvas px -> source px, per axis
	SourceFile       string

	// Interaction state.
	Tool       measure.Tool
	Mode       Mode
	Calibrator *measure.Calibrator

	// Label styling.
	FontSize float64
	Face     font.Face

	// Reconciled state from the last pass.
	shapes   []object.Object
	labels   []label.Label
	measured []measure.Measured

	listeners map[Event][]func()
}

// New creates a session with the given calibration scale. Non-positive
// scales fall back to the default.
func New(scaleUmPerPx float64) *Session {
	if scaleUmPerPx <= 0 {
		scaleUmPerPx = measure.DefaultScaleUmPerPx
	}
	return &Session{
		scaleUmPerPx: scaleUmPerPx,
		ScaleX:       1,
		ScaleY:       1,
		Calibrator:   measure.NewCalibrator(400),
		listeners:    make(map[Event][]func()),
	}
}

// On registers a listener for the given event.
func (s *Session) On(event Event, fn func()) {
	s.listeners[event] = append(s.listeners[event], fn)
}

func (s *Session) emit(event Event) {
	for _, fn := range s.listeners[event] {
		fn()
	}
}

// SetImage configures the canvas/source geometry for a newly loaded image
// and resets all per-image state.
func (s *Session) SetImage(sourceFile string, srcW, srcH, canvasW, canvasH int) {
	s.SourceFile = sourceFile
	s.CanvasW = float64(canvasW)
	s.CanvasH = float64(canvasH)
	s.ScaleX = float64(srcW) / float64(canvasW)
	s.ScaleY = float64(srcH) / float64(canvasH)
	s.shapes = nil
	s.labels = nil
	s.measured = nil
}

// Scale returns the current calibration scale in µm per source pixel.
func (s *Session) Scale() float64 {
	return s.scaleUmPerPx
}

// SetScale updates the calibration scale. Non-positive values are rejected
// and the prior value retained; the return value reports acceptance.
func (s *Session) SetScale(umPerPx float64) bool {
	if umPerPx <= 0 {
		return false
	}
	s.scaleUmPerPx = umPerPx
	s.emit(EventScaleChanged)
	return true
}

// DrawingMode returns the mode selector for the drawing surface. Calibration
// forces line-only drawing regardless of the selected tool.
func (s *Session) DrawingMode() DrawingMode {
	if s.Calibrator.Active() {
		return DrawLine
	}
	if s.Mode == ModeReposition {
		return DrawTransform
	}
	if s.Tool == measure.ToolCircle {
		return DrawCircle
	}
	return DrawLine
}

// SetMode switches between drawing and label repositioning.
func (s *Session) SetMode(m Mode) {
	if s.Mode == m {
		return
	}
	s.Mode = m
	s.emit(EventModeChanged)
}

// Reconcile runs one full pass over a raw canvas snapshot: partition the
// stream, stabilize shape identity, measure, and bring labels up to date.
func (s *Session) Reconcile(snapshot []object.Object) {
	shapes, rawLabels := object.Split(snapshot)
	shapes = object.EnsureShapeIDs(shapes, s.shapes)

	s.measured = measure.Build(shapes, s.ScaleX, s.ScaleY, s.scaleUmPerPx)

	// Labels from the snapshot carry any position the user dragged to; fall
	// back to the previously reconciled label for shapes the surface did not
	// round-trip a label for.
	prev := make([]label.Label, 0, len(rawLabels)+len(s.labels))
	seen := make(map[string]bool, len(rawLabels))
	for _, o := range rawLabels {
		l := label.FromObject(o)
		if l.ForShapeID == "" {
			continue
		}
		prev = append(prev, l)
		seen[l.ForShapeID] = true
	}
	for _, l := range s.labels {
		if !seen[l.ForShapeID] {
			prev = append(prev, l)
		}
	}

	s.labels = label.Reconcile(s.measured, prev, label.Options{
		CanvasW:  s.CanvasW,
		CanvasH:  s.CanvasH,
		FontSize: s.FontSize,
		Face:     s.Face,
	})
	s.shapes = shapes

	s.emit(EventReconciled)
}

// Shapes returns the reconciled shapes from the last pass.
func (s *Session) Shapes() []object.Object {
	return s.shapes
}

// Labels returns the reconciled labels from the last pass.
func (s *Session) Labels() []label.Label {
	return s.labels
}

// Measurements returns the measurement set from the last pass.
func (s *Session) Measurements() []measure.Measured {
	return s.measured
}

// Objects returns the reconciled shape and label descriptors, in render
// order, for the drawing surface to re-render.
func (s *Session) Objects() []object.Object {
	out := make([]object.Object, 0, len(s.shapes)+len(s.labels))
	out = append(out, s.shapes...)
	for _, l := range s.labels {
		out = append(out, l.ToObject())
	}
	return out
}

// CommitCalibration commits the calibrator's candidate scale, persists it,
// applies it to the session and leaves calibration mode.
func (s *Session) CommitCalibration(store measure.ScaleStore) error {
	scale, err := s.Calibrator.Commit(s.measured, store)
	if err != nil {
		return err
	}
	s.scaleUmPerPx = scale
	s.emit(EventScaleChanged)

	// Re-run measurement against the new scale so labels and rows refresh.
	s.Reconcile(s.Objects())
	return nil
}
