package session

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"micromeasure/internal/measure"
	"micromeasure/internal/object"
	"micromeasure/ui/prefs"
)

func newTestSession() *Session {
	s := New(2.0)
	// 1800x900 source on a 900x450 canvas.
	s.SetImage("sample.png", 1800, 900, 900, 450)
	return s
}

func lineObject(x1, y1, x2, y2 float64) object.Object {
	return object.Object{
		"type": "line",
		"x1":   x1, "y1": y1, "x2": x2, "y2": y2,
	}
}

func TestNewFallsBackToDefaultScale(t *testing.T) {
	if got := New(0).Scale(); got != measure.DefaultScaleUmPerPx {
		t.Errorf("Scale = %v, want default %v", got, measure.DefaultScaleUmPerPx)
	}
	if got := New(-1).Scale(); got != measure.DefaultScaleUmPerPx {
		t.Errorf("Scale = %v, want default %v", got, measure.DefaultScaleUmPerPx)
	}
}

func TestSetScaleRejectsNonPositive(t *testing.T) {
	s := New(2.0)
	if s.SetScale(0) || s.SetScale(-3) {
		t.Error("non-positive scale accepted")
	}
	if s.Scale() != 2.0 {
		t.Errorf("Scale = %v, want the prior 2.0", s.Scale())
	}
	if !s.SetScale(1.5) {
		t.Error("positive scale rejected")
	}
}

func TestReconcileMeasuresAndLabels(t *testing.T) {
	s := newTestSession()

	// 50 canvas px at 2x display scale is 100 source px, 200 µm at 2 µm/px.
	s.Reconcile([]object.Object{lineObject(0, 0, 30, 40)})

	ms := s.Measurements()
	if len(ms) != 1 {
		t.Fatalf("got %d measurements, want 1", len(ms))
	}
	if math.Abs(ms[0].Px-100) > 1e-9 {
		t.Errorf("px = %v, want 100", ms[0].Px)
	}
	if math.Abs(ms[0].Um-200) > 1e-9 {
		t.Errorf("µm = %v, want 200", ms[0].Um)
	}

	labels := s.Labels()
	if len(labels) != 1 {
		t.Fatalf("got %d labels, want 1", len(labels))
	}
	if labels[0].ForShapeID != ms[0].ShapeID {
		t.Errorf("label owner = %q, want %q", labels[0].ForShapeID, ms[0].ShapeID)
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	s := newTestSession()
	s.Reconcile([]object.Object{lineObject(0, 0, 30, 40), lineObject(100, 100, 200, 100)})

	firstShapes := s.Shapes()
	firstLabels := s.Labels()

	// Round-tripping the session's own output must not reassign identity or
	// move anything.
	for i := 0; i < 3; i++ {
		s.Reconcile(s.Objects())
	}

	if diff := cmp.Diff(firstShapes, s.Shapes()); diff != "" {
		t.Errorf("shapes changed across reconciliation (-first +last):\n%s", diff)
	}
	if diff := cmp.Diff(firstLabels, s.Labels()); diff != "" {
		t.Errorf("labels changed across reconciliation (-first +last):\n%s", diff)
	}
}

func TestReconcileKeepsDraggedLabelPosition(t *testing.T) {
	s := newTestSession()
	s.Reconcile([]object.Object{lineObject(0, 0, 30, 40)})

	// Simulate the user dragging the label on the surface.
	objs := s.Objects()
	moved := false
	for _, o := range objs {
		if o.Kind() == object.KindLabel {
			o["left"] = 333.0
			o["top"] = 222.0
			moved = true
		}
	}
	if !moved {
		t.Fatal("no label in the object set")
	}

	s.Reconcile(objs)
	if l := s.Labels()[0]; l.Left != 333 || l.Top != 222 {
		t.Errorf("label position = (%v, %v), want the dragged (333, 222)", l.Left, l.Top)
	}

	// The position survives later passes that do not round-trip the drag.
	s.Reconcile(s.Objects())
	if l := s.Labels()[0]; l.Left != 333 || l.Top != 222 {
		t.Errorf("label position = (%v, %v) after refresh, want (333, 222)", l.Left, l.Top)
	}
}

func TestDrawingMode(t *testing.T) {
	s := newTestSession()

	if got := s.DrawingMode(); got != DrawLine {
		t.Errorf("default mode = %v, want line", got)
	}

	s.Tool = measure.ToolCircle
	if got := s.DrawingMode(); got != DrawCircle {
		t.Errorf("circle tool mode = %v, want circle", got)
	}

	s.SetMode(ModeReposition)
	if got := s.DrawingMode(); got != DrawTransform {
		t.Errorf("reposition mode = %v, want transform", got)
	}

	// Calibration forces line drawing regardless of tool and mode.
	s.Calibrator.Begin()
	if got := s.DrawingMode(); got != DrawLine {
		t.Errorf("calibrating mode = %v, want line", got)
	}
}

func TestCommitCalibration(t *testing.T) {
	s := newTestSession()
	path := filepath.Join(t.TempDir(), "settings.json")
	store := prefs.LoadFrom(path)

	if err := s.Calibrator.SetKnownLength(400); err != nil {
		t.Fatal(err)
	}
	s.Calibrator.Begin()

	// The reference line: 75 canvas px, 150 source px.
	s.Reconcile([]object.Object{lineObject(0, 0, 75, 0)})

	if err := s.CommitCalibration(store); err != nil {
		t.Fatalf("CommitCalibration failed: %v", err)
	}

	want := 400.0 / 150.0
	if math.Abs(s.Scale()-want) > 1e-9 {
		t.Errorf("scale = %v, want %v", s.Scale(), want)
	}
	if s.Calibrator.Active() {
		t.Error("calibration mode still active after commit")
	}

	// Measurements re-run against the new scale: the reference line itself
	// now reads the known length.
	if um := s.Measurements()[0].Um; math.Abs(um-400) > 1e-9 {
		t.Errorf("reference line = %v µm, want 400", um)
	}

	// The scale persisted to disk.
	reloaded := prefs.LoadFrom(path)
	if got := reloaded.Scale(0); math.Abs(got-want) > 1e-9 {
		t.Errorf("persisted scale = %v, want %v", got, want)
	}
}

func TestCommitCalibrationWithoutLine(t *testing.T) {
	s := newTestSession()
	store := prefs.LoadFrom(filepath.Join(t.TempDir(), "settings.json"))

	s.Calibrator.Begin()
	if err := s.CommitCalibration(store); err == nil {
		t.Error("expected commit without a reference line to fail")
	}
	if s.Scale() != 2.0 {
		t.Errorf("scale = %v, want the prior 2.0", s.Scale())
	}
}

func TestSetImageResetsState(t *testing.T) {
	s := newTestSession()
	s.Reconcile([]object.Object{lineObject(0, 0, 30, 40)})
	if len(s.Measurements()) != 1 {
		t.Fatal("setup failed")
	}

	s.SetImage("other.png", 900, 900, 900, 900)
	if len(s.Shapes()) != 0 || len(s.Labels()) != 0 || len(s.Measurements()) != 0 {
		t.Error("per-image state not reset on image change")
	}
	if s.ScaleX != 1 || s.ScaleY != 1 {
		t.Errorf("scale factors = (%v, %v), want (1, 1)", s.ScaleX, s.ScaleY)
	}
}
