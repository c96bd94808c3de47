package testutil

import (
	"math"
	"math/rand/v2"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// SumOfSines adds sines of the given frequencies, each with unit amplitude.
func SumOfSines(sampleRate float64, length int, freqsHz ...float64) []float64 {
	out := make([]float64, length)
	for _, f := range freqsHz {
		s := DeterministicSine(f, sampleRate, 1, length)
		for i := range out {
			out[i] += s[i]
		}
	}
	return out
}

// DeterministicNoise generates uniform white noise in [-amplitude, amplitude)
// with a fixed seed for reproducibility.
func DeterministicNoise(seed uint64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewPCG(seed, 0))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// Ramp generates a linear ramp from start with the given slope per sample.
func Ramp(start, slope float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = start + slope*float64(i)
	}
	return out
}
