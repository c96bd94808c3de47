package spectral

// ZeroCrossingRate counts sign changes in a signal. For a narrow-band
// component such as an IMF this is a robust estimate of its dominant
// frequency: two crossings per cycle.
type ZeroCrossingRate struct {
	sampleRate float64
}

// NewZeroCrossingRate creates a new zero crossing rate calculator
func NewZeroCrossingRate(sampleRate float64) *ZeroCrossingRate {
	return &ZeroCrossingRate{
		sampleRate: sampleRate,
	}
}

// ZeroCrossingCount counts the positions where the sign of x changes.
// Exact zeros have sign 0, so a sample sitting on zero between a positive
// and a negative neighbour contributes two changes.
func ZeroCrossingCount(x []float64) int {
	if len(x) < 2 {
		return 0
	}

	crossings := 0
	prev := sign(x[0])
	for i := 1; i < len(x); i++ {
		s := sign(x[i])
		if s != prev {
			crossings++
		}
		prev = s
	}
	return crossings
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// Compute calculates crossings per second for a frame
func (zcr *ZeroCrossingRate) Compute(frame []float64) float64 {
	if len(frame) < 2 || zcr.sampleRate <= 0 {
		return 0.0
	}

	frameDuration := float64(len(frame)) / zcr.sampleRate
	return float64(ZeroCrossingCount(frame)) / frameDuration
}

// DominantFrequency estimates the oscillation frequency of x in Hz
func (zcr *ZeroCrossingRate) DominantFrequency(x []float64) float64 {
	return zcr.Compute(x) / 2
}
