package object

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		obj  Object
		want Kind
	}{
		{
			name: "explicit line type",
			obj:  Object{"type": "line", "x1": 0.0, "y1": 0.0, "x2": 10.0, "y2": 0.0},
			want: KindLine,
		},
		{
			name: "explicit circle type",
			obj:  Object{"type": "circle", "radius": 5.0},
			want: KindCircle,
		},
		{
			name: "label by labelId marker",
			obj:  Object{FieldLabelID: "label-1", "text": "1.00 µm"},
			want: KindLabel,
		},
		{
			name: "label by forShapeId marker",
			obj:  Object{FieldForShapeID: "abc", "text": "1.00 µm"},
			want: KindLabel,
		},
		{
			name: "label by text object type",
			obj:  Object{"type": "i-text", "text": "1.00 µm"},
			want: KindLabel,
		},
		{
			name: "kind hint wins over missing type",
			obj:  Object{FieldKindHint: "circle", "radius": 5.0},
			want: KindCircle,
		},
		{
			name: "text marker wins over line fields",
			obj:  Object{FieldForShapeID: "abc", "x1": 0.0, "y1": 0.0, "x2": 1.0, "y2": 1.0},
			want: KindLabel,
		},
		{
			name: "structural line inference",
			obj:  Object{"x1": 0.0, "y1": 0.0, "x2": 1.0, "y2": 1.0},
			want: KindLine,
		},
		{
			name: "structural circle inference",
			obj:  Object{"radius": 5.0},
			want: KindCircle,
		},
		{
			name: "unrecognized",
			obj:  Object{"type": "rect", "width": 10.0},
			want: KindUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.obj.Kind(); got != tt.want {
				t.Errorf("Kind() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFloatTolerant(t *testing.T) {
	o := Object{"a": 1.5, "b": 2, "c": "nope"}
	if got := o.Float("a", -1); got != 1.5 {
		t.Errorf("Float(a) = %v, want 1.5", got)
	}
	if got := o.Float("b", -1); got != 2 {
		t.Errorf("Float(b) = %v, want 2", got)
	}
	if got := o.Float("c", -1); got != -1 {
		t.Errorf("Float(c) = %v, want fallback -1", got)
	}
	if got := o.Float("missing", 7); got != 7 {
		t.Errorf("Float(missing) = %v, want fallback 7", got)
	}
}

func TestSplit(t *testing.T) {
	line := Object{"type": "line", "x1": 0.0, "y1": 0.0, "x2": 1.0, "y2": 1.0}
	circle := Object{"type": "circle", "radius": 3.0}
	lbl := Object{"type": "i-text", "text": "x"}
	junk := Object{"type": "rect"}

	shapes, labels := Split([]Object{line, lbl, circle, junk})

	if diff := cmp.Diff([]Object{line, circle}, shapes); diff != "" {
		t.Errorf("shapes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Object{lbl}, labels); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
}

func line(x2 float64) Object {
	return Object{"type": "line", "x1": 0.0, "y1": 0.0, "x2": x2, "y2": 0.0}
}

func TestEnsureShapeIDsKeepsExisting(t *testing.T) {
	s := line(10)
	s[FieldShapeID] = "keep-me"

	out := EnsureShapeIDs([]Object{s}, nil)
	if got := out[0].Str(FieldShapeID); got != "keep-me" {
		t.Errorf("shapeId = %q, want keep-me", got)
	}
}

func TestEnsureShapeIDsPositionalRecovery(t *testing.T) {
	prev := EnsureShapeIDs([]Object{line(10), line(20)}, nil)
	id0 := prev[0].Str(FieldShapeID)
	id1 := prev[1].Str(FieldShapeID)
	if id0 == "" || id1 == "" || id0 == id1 {
		t.Fatalf("expected two distinct minted IDs, got %q and %q", id0, id1)
	}

	// A fresh snapshot of the same shapes, stripped of identity, recovers the
	// prior IDs by position.
	out := EnsureShapeIDs([]Object{line(10), line(20)}, prev)
	if got := out[0].Str(FieldShapeID); got != id0 {
		t.Errorf("shape 0 recovered ID = %q, want %q", got, id0)
	}
	if got := out[1].Str(FieldShapeID); got != id1 {
		t.Errorf("shape 1 recovered ID = %q, want %q", got, id1)
	}

	// An appended shape mints a fresh ID.
	out = EnsureShapeIDs([]Object{line(10), line(20), line(30)}, prev)
	if got := out[2].Str(FieldShapeID); got == "" || got == id0 || got == id1 {
		t.Errorf("appended shape ID = %q, want a fresh ID", got)
	}
}

func TestEnsureShapeIDsReorderWithInsert(t *testing.T) {
	// Reordering while inserting in one snapshot defeats positional recovery:
	// identity may be mis-attributed, but every shape still ends up with some
	// non-empty ID and no ID is duplicated.
	prev := EnsureShapeIDs([]Object{line(10), line(20)}, nil)

	snapshot := []Object{line(30), line(20), line(10)}
	out := EnsureShapeIDs(snapshot, prev)

	seen := make(map[string]bool)
	for i, o := range out {
		id := o.Str(FieldShapeID)
		if id == "" {
			t.Errorf("shape %d has no ID", i)
		}
		if seen[id] {
			t.Errorf("duplicate ID %q", id)
		}
		seen[id] = true
	}
}

func TestEnsureShapeIDsDoesNotMutateInput(t *testing.T) {
	s := line(10)
	EnsureShapeIDs([]Object{s}, nil)
	if _, ok := s[FieldShapeID]; ok {
		t.Error("input descriptor was mutated")
	}
}
