package spectral

import (
	"fmt"
	"math"
	"math/cmplx"
)

// InstantaneousFrequency estimates per-sample frequency and amplitude of a
// narrow-band signal from the phase of its analytic signal. Frequencies are
// in cycles per sample (0 to 0.5).
type InstantaneousFrequency struct {
	fft         *FFT
	smoothPhase int
}

// NewInstantaneousFrequency creates an estimator that smooths the unwrapped
// phase with a centred moving average of smoothPhase samples (<= 1 disables).
func NewInstantaneousFrequency(smoothPhase int) *InstantaneousFrequency {
	return &InstantaneousFrequency{
		fft:         NewFFT(),
		smoothPhase: smoothPhase,
	}
}

// Compute returns instantaneous frequency and amplitude for x
func (ifr *InstantaneousFrequency) Compute(x []float64) (freq, amp []float64, err error) {
	if len(x) < 3 {
		return nil, nil, fmt.Errorf("instantaneous frequency needs at least 3 samples, got %d", len(x))
	}

	analytic := ifr.fft.AnalyticSignal(x)

	amp = make([]float64, len(x))
	phase := make([]float64, len(x))
	for i, z := range analytic {
		amp[i] = cmplx.Abs(z)
		phase[i] = cmplx.Phase(z)
	}

	phase = unwrap(phase)
	if ifr.smoothPhase > 1 {
		phase = movingAverage(phase, ifr.smoothPhase)
	}

	freq = gradient(phase)
	for i := range freq {
		freq[i] /= 2 * math.Pi
	}

	return freq, amp, nil
}

// InstantaneousFrequency satisfies the mask-sift frequency estimator contract
func (ifr *InstantaneousFrequency) InstantaneousFrequency(x []float64) (freq, amp []float64, err error) {
	return ifr.Compute(x)
}

// WeightedMeanFrequency returns the amplitude-weighted mean frequency of x
func (ifr *InstantaneousFrequency) WeightedMeanFrequency(x []float64) (float64, error) {
	freq, amp, err := ifr.Compute(x)
	if err != nil {
		return 0, err
	}

	num, den := 0.0, 0.0
	for i := range freq {
		num += freq[i] * amp[i]
		den += amp[i]
	}
	if den == 0 {
		return 0, fmt.Errorf("signal has zero amplitude")
	}
	return num / den, nil
}

// unwrap removes 2π jumps between consecutive phase samples
func unwrap(phase []float64) []float64 {
	out := make([]float64, len(phase))
	if len(phase) == 0 {
		return out
	}

	out[0] = phase[0]
	offset := 0.0
	for i := 1; i < len(phase); i++ {
		d := phase[i] - phase[i-1]
		if d > math.Pi {
			offset -= 2 * math.Pi * math.Ceil((d-math.Pi)/(2*math.Pi))
		} else if d < -math.Pi {
			offset += 2 * math.Pi * math.Ceil((-d-math.Pi)/(2*math.Pi))
		}
		out[i] = phase[i] + offset
	}
	return out
}

// gradient uses central differences inside and one-sided at the ends
func gradient(x []float64) []float64 {
	n := len(x)
	out := make([]float64, n)
	if n < 2 {
		return out
	}
	out[0] = x[1] - x[0]
	out[n-1] = x[n-1] - x[n-2]
	for i := 1; i < n-1; i++ {
		out[i] = (x[i+1] - x[i-1]) / 2
	}
	return out
}

// movingAverage smooths with a centred window, shrinking at the edges
func movingAverage(x []float64, window int) []float64 {
	out := make([]float64, len(x))
	half := window / 2
	for i := range x {
		start := max(0, i-half)
		end := min(len(x), i+half+1)
		sum := 0.0
		for j := start; j < end; j++ {
			sum += x[j]
		}
		out[i] = sum / float64(end-start)
	}
	return out
}
