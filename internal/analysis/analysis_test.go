package analysis

import (
	"math"
	"testing"
)

func TestDominantFrequency(t *testing.T) {
	const rate = 100.0
	data := make([]float64, 200)
	for i := range data {
		tm := float64(i) / rate
		data[i] = 0.3 + math.Sin(2*math.Pi*5*tm) + 0.2*math.Sin(2*math.Pi*20*tm)
	}

	f, err := DominantFrequency(data, rate)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(f-5) > 0.5 {
		t.Errorf("dominant frequency = %v, want 5", f)
	}
}

func TestPowerSpectrumRemovesMean(t *testing.T) {
	data := []float64{2, 2, 2, 2, 2, 2, 2, 2}
	s := PowerSpectrum(data, 10)
	if len(s.Freqs) != 5 {
		t.Fatalf("len = %d, want n/2+1 = 5", len(s.Freqs))
	}
	for i, p := range s.Power {
		if p > 1e-20 {
			t.Errorf("power[%d] = %v for a constant series", i, p)
		}
	}
	if s.Freqs[4] != 5 {
		t.Errorf("nyquist = %v, want 5", s.Freqs[4])
	}
}

func TestDominantFrequencyErrors(t *testing.T) {
	if _, err := DominantFrequency([]float64{1, 2}, 100); err == nil {
		t.Error("expected error for short series")
	}
	if _, err := DominantFrequency(make([]float64, 16), 0); err == nil {
		t.Error("expected error for zero sample rate")
	}
}

func TestDescribe(t *testing.T) {
	s := Describe([]float64{-1, 1, -1, 1})
	if s.Mean != 0 || s.Min != -1 || s.Max != 1 {
		t.Errorf("summary = %+v", s)
	}
	if math.Abs(s.RMS-1) > 1e-12 {
		t.Errorf("rms = %v, want 1", s.RMS)
	}
	if got := Describe(nil); got != (Summary{}) {
		t.Errorf("empty summary = %+v", got)
	}
}
