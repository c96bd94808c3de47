package sift

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-emd/algorithms/common"
)

// InterpEnvelope interpolates the envelope of x selected by mode. It
// returns nil without an error when x has too few extrema for an envelope.
func InterpEnvelope(x []float64, mode EnvelopeMode, env EnvelopeConfig, ext ExtremaConfig) ([]float64, error) {
	out, _, err := InterpEnvelopeWithExtrema(x, mode, env, ext)
	return out, err
}

// InterpEnvelopeWithExtrema is InterpEnvelope that also returns the padded
// extrema the envelope was drawn through.
func InterpEnvelopeWithExtrema(x []float64, mode EnvelopeMode, env EnvelopeConfig, ext ExtremaConfig) ([]float64, Extrema, error) {
	var extremaMode ExtremaMode
	switch mode {
	case EnvelopeUpper:
		extremaMode = Peaks
	case EnvelopeLower:
		extremaMode = Troughs
	case EnvelopeCombined:
		extremaMode = AbsPeaks
	default:
		return nil, Extrema{}, invalidConfig("envelope mode %q not recognised, use upper, lower or combined", mode)
	}

	padded, ok, err := PaddedExtrema(x, extremaMode, ext)
	if err != nil {
		return nil, Extrema{}, err
	}
	if !ok {
		return nil, Extrema{}, nil
	}

	// The interpolant is sampled on the integer grid from the first padded
	// location up to (not including) the last one, then cut to [0, N).
	first := padded.Locs[0]
	last := padded.Locs[len(padded.Locs)-1]
	start := max(math.Ceil(first), 0)
	stop := min(math.Ceil(last), float64(len(x)))
	kept := max(int(stop-start), 0)
	if kept != len(x) {
		return nil, Extrema{}, fmt.Errorf("%w: %d samples interpolated for %d inputs (extrema span [%g, %g])",
			ErrEnvelopeLength, kept, len(x), first, last)
	}

	grid := make([]float64, len(x))
	for i := range grid {
		grid[i] = float64(i)
	}

	out, err := common.NewInterpolator(env.InterpMethod).InterpolateAt(padded.Locs, padded.Mags, grid)
	if err != nil {
		return nil, Extrema{}, fmt.Errorf("interpolating %s envelope: %w", mode, err)
	}
	return out, padded, nil
}
