package scalebar

import (
	"math"
	"testing"
)

func TestParseLength(t *testing.T) {
	tests := []struct {
		text string
		want float64
		ok   bool
	}{
		{"400 µm", 400, true},
		{"400um", 400, true},
		{"400 um", 400, true},
		{"400μm", 400, true}, // greek mu, a common OCR reading
		{"2mm", 2000, true},
		{"500 nm", 0.5, true},
		{"2.5 mm", 2500, true},
		{"HV 20kV  400 um  WD 10mm", 400, true}, // first match wins in databar text
		{"400", 0, false},
		{"µm", 0, false},
		{"0 um", 0, false},
		{"", 0, false},
		{"garbage", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := ParseLength(tt.text)
			if ok != tt.ok {
				t.Fatalf("ParseLength(%q) ok = %v, want %v", tt.text, ok, tt.ok)
			}
			if ok && math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ParseLength(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
