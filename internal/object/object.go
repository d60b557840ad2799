// Package object models the heterogeneous shape and label descriptors
// produced by the drawing surface, and keeps shape identity stable across
// successive canvas snapshots.
package object

import (
	"strings"
)

// Field names the application stamps onto descriptors. Everything else on a
// descriptor belongs to the drawing surface and is treated as untrusted.
const (
	FieldShapeID    = "shapeId"
	FieldLabelID    = "labelId"
	FieldForShapeID = "forShapeId"
	FieldKindHint   = "kindHint"
)

// Object is a raw descriptor from the drawing surface. Field presence and
// meaning vary by shape kind and by how the surface chose to encode it, so
// all access goes through tolerant typed accessors.
type Object map[string]interface{}

// Float returns a numeric field, or fallback if absent or mistyped.
func (o Object) Float(key string, fallback float64) float64 {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case float32:
			return float64(n)
		case int:
			return float64(n)
		}
	}
	return fallback
}

// Str returns a string field, or "" if absent or mistyped.
func (o Object) Str(key string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Has reports whether every named field is present.
func (o Object) Has(keys ...string) bool {
	for _, k := range keys {
		if _, ok := o[k]; !ok {
			return false
		}
	}
	return true
}

// Clone returns a shallow copy of the descriptor.
func (o Object) Clone() Object {
	c := make(Object, len(o))
	for k, v := range o {
		c[k] = v
	}
	return c
}

// Kind classifies a descriptor.
type Kind int

const (
	KindUnknown Kind = iota
	KindLine
	KindCircle
	KindLabel
)

func (k Kind) String() string {
	switch k {
	case KindLine:
		return "line"
	case KindCircle:
		return "circle"
	case KindLabel:
		return "label"
	default:
		return "unknown"
	}
}

// Kind classifies the descriptor. Labels are recognized first (by the
// application's own label marker or a text object type), then shapes by
// explicit kind hint, then by the surface's type string, and finally by
// structural inference from the fields present.
func (o Object) Kind() Kind {
	if o.Str(FieldLabelID) != "" || o.Str(FieldForShapeID) != "" {
		return KindLabel
	}
	typ := strings.ToLower(o.Str("type"))
	if strings.Contains(typ, "text") {
		return KindLabel
	}

	switch strings.ToLower(o.Str(FieldKindHint)) {
	case "line":
		return KindLine
	case "circle":
		return KindCircle
	}

	if strings.Contains(typ, "line") {
		return KindLine
	}
	if strings.Contains(typ, "circle") {
		return KindCircle
	}

	// Structural inference: endpoint fields mean a line, a radius means a
	// circle. Tried last so explicit declarations always win.
	if o.Has("x1", "y1", "x2", "y2") {
		return KindLine
	}
	if o.Has("radius") {
		return KindCircle
	}

	return KindUnknown
}

// IsShape reports whether the descriptor is a measurable shape.
func (o Object) IsShape() bool {
	k := o.Kind()
	return k == KindLine || k == KindCircle
}
