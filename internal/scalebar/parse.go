// Package scalebar detects the burned-in scale bar of a micrograph and reads
// its annotation, producing a suggested calibration. The suggestion is only
// ever a pre-fill for the calibration workflow; committing a scale remains an
// explicit user action.
package scalebar

import (
	"regexp"
	"strconv"
	"strings"
)

// lengthPattern matches a magnitude followed by a metric length unit, e.g.
// "400 µm", "400um", "2mm", "500 nm". Tesseract sometimes reads µ as u or μ.
var lengthPattern = regexp.MustCompile(`(?i)([0-9]+(?:\.[0-9]+)?)\s*(nm|um|µm|μm|mm)`)

// unitToUm converts a recognized unit to µm.
var unitToUm = map[string]float64{
	"nm": 0.001,
	"um": 1,
	"µm": 1,
	"μm": 1,
	"mm": 1000,
}

// ParseLength extracts a physical length in µm from annotation text. ok is
// false when no magnitude/unit pair is found or the magnitude is not
// positive.
func ParseLength(text string) (um float64, ok bool) {
	m := lengthPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}

	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil || value <= 0 {
		return 0, false
	}

	factor, ok := unitToUm[strings.ToLower(m[2])]
	if !ok {
		return 0, false
	}
	return value * factor, true
}
