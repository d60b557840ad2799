package object

import (
	"github.com/google/uuid"
)

// Split partitions a raw canvas snapshot into shapes and labels, preserving
// draw order within each group. Descriptors that are neither are dropped.
func Split(objs []Object) (shapes, labels []Object) {
	for _, o := range objs {
		switch o.Kind() {
		case KindLine, KindCircle:
			shapes = append(shapes, o)
		case KindLabel:
			labels = append(labels, o)
		}
	}
	return shapes, labels
}

// EnsureShapeIDs returns the shapes with every descriptor carrying a stable
// identifier. A shape that already has one keeps it. A shape without one is
// matched positionally against the previous reconciled shape list (same index
// means same shape); if that fails a fresh globally-unique identifier is
// minted.
//
// Positional recovery is a heuristic: a snapshot that reorders shapes while
// also inserting or deleting can mis-attribute identity. The drawing surface
// is append-mostly in practice, so this trade-off is accepted rather than
// paying for a full matching algorithm.
func EnsureShapeIDs(shapes, prev []Object) []Object {
	out := make([]Object, len(shapes))
	for i, s := range shapes {
		c := s.Clone()
		if c.Str(FieldShapeID) == "" {
			if i < len(prev) && prev[i].Str(FieldShapeID) != "" {
				c[FieldShapeID] = prev[i].Str(FieldShapeID)
			} else {
				c[FieldShapeID] = uuid.NewString()
			}
		}
		out[i] = c
	}
	return out
}
