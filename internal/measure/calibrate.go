package measure

import (
	"fmt"
)

// CalibrationStatus describes where the calibration workflow stands.
type CalibrationStatus int

const (
	// CalibrationIdle means calibration mode is not active.
	CalibrationIdle CalibrationStatus = iota
	// CalibrationAwaitingLine means the user has not drawn a reference line yet.
	CalibrationAwaitingLine
	// CalibrationInvalid means the latest line has a non-positive length.
	CalibrationInvalid
	// CalibrationReady means a candidate scale is available to commit.
	CalibrationReady
)

func (s CalibrationStatus) String() string {
	switch s {
	case CalibrationAwaitingLine:
		return "awaiting a calibration line"
	case CalibrationInvalid:
		return "invalid calibration"
	case CalibrationReady:
		return "ready"
	default:
		return "idle"
	}
}

// ScaleStore persists the committed calibration scale. ui/prefs satisfies it.
type ScaleStore interface {
	SetScale(umPerPx float64)
	Save() error
}

// Candidate is a proposed calibration derived from the latest reference line.
type Candidate struct {
	Status       CalibrationStatus
	LinePx       float64
	ScaleUmPerPx float64
}

// Calibrator runs the two-state calibration workflow. While active, the
// drawing surface is expected to be forced into line-only mode; the latest
// live line's pixel measurement is reinterpreted as a known physical length.
type Calibrator struct {
	active  bool
	knownUm float64
}

// NewCalibrator returns an inactive calibrator with the given reference
// length in µm.
func NewCalibrator(knownUm float64) *Calibrator {
	return &Calibrator{knownUm: knownUm}
}

// Active reports whether calibration mode is on.
func (c *Calibrator) Active() bool {
	return c.active
}

// Begin enters calibration mode.
func (c *Calibrator) Begin() {
	c.active = true
}

// Cancel leaves calibration mode without committing.
func (c *Calibrator) Cancel() {
	c.active = false
}

// KnownLength returns the declared reference length in µm.
func (c *Calibrator) KnownLength() float64 {
	return c.knownUm
}

// SetKnownLength declares the physical length of the reference feature.
func (c *Calibrator) SetKnownLength(um float64) error {
	if um <= 0 {
		return fmt.Errorf("known length must be positive, got %g", um)
	}
	c.knownUm = um
	return nil
}

// Candidate derives the candidate scale from the current measurement set.
// The latest line by draw order is always used, never an average: re-drawing
// supersedes prior attempts without requiring deletion.
func (c *Calibrator) Candidate(ms []Measured) Candidate {
	if !c.active {
		return Candidate{Status: CalibrationIdle}
	}

	var latest *Measured
	for i := range ms {
		if ms[i].Tool == ToolLine {
			latest = &ms[i]
		}
	}
	if latest == nil {
		return Candidate{Status: CalibrationAwaitingLine}
	}
	if latest.Px <= 0 {
		return Candidate{Status: CalibrationInvalid, LinePx: latest.Px}
	}

	return Candidate{
		Status:       CalibrationReady,
		LinePx:       latest.Px,
		ScaleUmPerPx: c.knownUm / latest.Px,
	}
}

// Commit commits the current candidate as the new global scale, persists it,
// and leaves calibration mode. It fails if no candidate is ready.
func (c *Calibrator) Commit(ms []Measured, store ScaleStore) (float64, error) {
	cand := c.Candidate(ms)
	if cand.Status != CalibrationReady {
		return 0, fmt.Errorf("cannot commit calibration: %s", cand.Status)
	}

	store.SetScale(cand.ScaleUmPerPx)
	if err := store.Save(); err != nil {
		return 0, fmt.Errorf("failed to persist calibration: %w", err)
	}

	c.active = false
	return cand.ScaleUmPerPx, nil
}
