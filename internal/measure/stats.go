package measure

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the distribution of physical measurements in the current
// set. StdDevUm is zero for fewer than two measurements.
type Summary struct {
	Count    int
	MeanUm   float64
	StdDevUm float64
	MinUm    float64
	MaxUm    float64
}

// Summarize computes summary statistics over the µm values of a measurement
// set. An empty set yields a zero Summary.
func Summarize(ms []Measured) Summary {
	if len(ms) == 0 {
		return Summary{}
	}

	um := make([]float64, len(ms))
	for i, m := range ms {
		um[i] = m.Um
	}

	s := Summary{
		Count:  len(ms),
		MeanUm: stat.Mean(um, nil),
		MinUm:  floats.Min(um),
		MaxUm:  floats.Max(um),
	}
	if len(um) > 1 {
		s.StdDevUm = stat.StdDev(um, nil)
	}
	return s
}
