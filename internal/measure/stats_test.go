package measure

import (
	"math"
	"testing"
)

func umMeasured(um float64) Measured {
	return Measured{Measurement: Measurement{Tool: ToolLine, Um: um}}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Count != 0 {
		t.Errorf("Count = %d, want 0", s.Count)
	}
}

func TestSummarizeSingle(t *testing.T) {
	s := Summarize([]Measured{umMeasured(10)})
	if s.Count != 1 || s.MeanUm != 10 || s.MinUm != 10 || s.MaxUm != 10 {
		t.Errorf("Summary = %+v, want count 1 all 10", s)
	}
	if s.StdDevUm != 0 {
		t.Errorf("StdDevUm = %v, want 0 for a single value", s.StdDevUm)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]Measured{umMeasured(10), umMeasured(20), umMeasured(30)})
	if s.Count != 3 {
		t.Errorf("Count = %d, want 3", s.Count)
	}
	if math.Abs(s.MeanUm-20) > 1e-9 {
		t.Errorf("MeanUm = %v, want 20", s.MeanUm)
	}
	if s.MinUm != 10 || s.MaxUm != 30 {
		t.Errorf("range = [%v, %v], want [10, 30]", s.MinUm, s.MaxUm)
	}
	if math.Abs(s.StdDevUm-10) > 1e-9 {
		t.Errorf("StdDevUm = %v, want 10 (sample)", s.StdDevUm)
	}
}
