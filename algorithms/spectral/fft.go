package spectral

import (
	"github.com/mjibson/go-dsp/fft"
)

// FFT provides Fast Fourier Transform functionality
type FFT struct {
	// No state needed for now
}

// NewFFT creates a new FFT calculator
func NewFFT() *FFT {
	return &FFT{}
}

// Compute computes the FFT of a real signal using mjibson/go-dsp
func (f *FFT) Compute(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}

	// mjibson/go-dsp handles all sizes, including non-power-of-2
	return fft.FFTReal(x)
}

// ComputeInverse computes inverse FFT
func (f *FFT) ComputeInverse(x []complex128) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}

	return fft.IFFT(x)
}

// AnalyticSignal returns x + i·H{x}, where H is the Hilbert transform,
// by zeroing the negative frequencies of the spectrum and doubling the
// positive ones.
func (f *FFT) AnalyticSignal(x []float64) []complex128 {
	n := len(x)
	if n == 0 {
		return []complex128{}
	}

	spectrum := f.Compute(x)

	// h is 1 at DC (and Nyquist for even n), 2 for positive frequencies, 0 otherwise
	half := (n + 1) / 2
	for k := 1; k < half; k++ {
		spectrum[k] *= 2
	}
	for k := n/2 + 1; k < n; k++ {
		spectrum[k] = 0
	}

	return f.ComputeInverse(spectrum)
}
