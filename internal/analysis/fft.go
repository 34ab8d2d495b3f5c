package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// Spectrum is a one-sided power spectrum. Freqs are in Hz.
type Spectrum struct {
	Freqs []float64
	Power []float64
}

// PowerSpectrum removes the mean of data and returns |X_k|^2 / n for the
// non-negative frequencies.
func PowerSpectrum(data []float64, sampleRate float64) Spectrum {
	n := len(data)
	if n < 2 {
		return Spectrum{}
	}

	mean := stat.Mean(data, nil)
	centered := make([]float64, n)
	for i, v := range data {
		centered[i] = v - mean
	}

	fft := fourier.NewFFT(n)
	coeff := fft.Coefficients(nil, centered)

	s := Spectrum{
		Freqs: make([]float64, len(coeff)),
		Power: make([]float64, len(coeff)),
	}
	for i, c := range coeff {
		s.Freqs[i] = fft.Freq(i) * sampleRate
		a := cmplx.Abs(c)
		s.Power[i] = a * a / float64(n)
	}
	return s
}

// Dominant returns the frequency with the most power, skipping DC.
func (s Spectrum) Dominant() (freq, power float64) {
	for i := 1; i < len(s.Power); i++ {
		if s.Power[i] > power {
			freq, power = s.Freqs[i], s.Power[i]
		}
	}
	return freq, power
}

// DominantFrequency is PowerSpectrum followed by Dominant.
func DominantFrequency(data []float64, sampleRate float64) (float64, error) {
	if len(data) < 4 {
		return 0, fmt.Errorf("analysis: need at least 4 samples, got %d", len(data))
	}
	if !(sampleRate > 0) {
		return 0, fmt.Errorf("analysis: sample rate must be positive, got %v", sampleRate)
	}
	f, _ := PowerSpectrum(data, sampleRate).Dominant()
	return f, nil
}

// Summary describes one series.
type Summary struct {
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
	RMS    float64
}

func Describe(data []float64) Summary {
	if len(data) == 0 {
		return Summary{}
	}
	var s Summary
	s.Mean, s.StdDev = stat.MeanStdDev(data, nil)
	if len(data) == 1 {
		s.StdDev = 0
	}
	s.Min, s.Max = data[0], data[0]
	sq := 0.0
	for _, v := range data {
		s.Min = min(s.Min, v)
		s.Max = max(s.Max, v)
		sq += v * v
	}
	s.RMS = math.Sqrt(sq / float64(len(data)))
	return s
}
