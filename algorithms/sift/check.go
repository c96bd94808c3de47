package sift

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-emd/algorithms/common"
	"github.com/RyanBlaney/sonido-emd/algorithms/spectral"
	"github.com/RyanBlaney/sonido-emd/logging"
)

// DefaultAvgTol is the default bound on the envelope mean relative to the IMF
const DefaultAvgTol = 0.05

// IMFCheck reports the two defining properties of an IMF for one component
type IMFCheck struct {
	Index            int
	NumExtrema       int
	NumZeroCrossings int
	// EnvelopeMean is Σ|mean envelope| and IMFSum is Σ|imf|
	EnvelopeMean float64
	IMFSum       float64

	// ExtremaMatchZeroCrossings holds when the extrema and zero-crossing
	// counts differ by at most one
	ExtremaMatchZeroCrossings bool
	// MeanBelowTol holds when EnvelopeMean/IMFSum is below the tolerance
	MeanBelowTol bool
	// HasEnvelope is false when the component had too few extrema for an
	// envelope; both properties are then false
	HasEnvelope bool
}

// MeanRatio returns EnvelopeMean/IMFSum
func (c IMFCheck) MeanRatio() float64 {
	return c.EnvelopeMean / c.IMFSum
}

// Passed reports whether both properties hold
func (c IMFCheck) Passed() bool {
	return c.ExtremaMatchZeroCrossings && c.MeanBelowTol
}

// IsIMF checks each of imfs for the IMF properties: extrema and zero
// crossings differ by at most one, and the mean of the upper and lower
// envelopes is small (Σ|mean| / Σ|imf| < avgTol).
func IsIMF(imfs [][]float64, avgTol float64, env EnvelopeConfig, ext ExtremaConfig) ([]IMFCheck, error) {
	logger := logging.WithFields(logging.Fields{"component": "is_imf"})

	checks := make([]IMFCheck, len(imfs))
	for i, imf := range imfs {
		c := IMFCheck{
			Index:            i,
			NumZeroCrossings: spectral.ZeroCrossingCount(imf),
			NumExtrema:       FindExtrema(imf, 0, false).Len() + FindExtrema(common.Negate(imf), 0, false).Len(),
		}

		upper, err := InterpEnvelope(imf, EnvelopeUpper, env, ext)
		if err != nil {
			return nil, fmt.Errorf("imf %d upper envelope: %w", i, err)
		}
		lower, err := InterpEnvelope(imf, EnvelopeLower, env, ext)
		if err != nil {
			return nil, fmt.Errorf("imf %d lower envelope: %w", i, err)
		}
		if upper == nil || lower == nil {
			logger.Debug("IMF check failed: no extrema detected", logging.Fields{"imf": i})
			checks[i] = c
			continue
		}

		c.HasEnvelope = true
		for t := range imf {
			c.EnvelopeMean += math.Abs((upper[t] + lower[t]) / 2)
		}
		c.IMFSum = common.SumAbs(imf)

		d := c.NumZeroCrossings - c.NumExtrema
		c.ExtremaMatchZeroCrossings = d >= -1 && d <= 1
		c.MeanBelowTol = c.MeanRatio() < avgTol

		logger.Debug("IMF check", logging.Fields{
			"imf":            i,
			"passed":         c.Passed(),
			"extrema":        c.NumExtrema,
			"zero_crossings": c.NumZeroCrossings,
			"envelope_mean":  c.EnvelopeMean,
			"imf_sum":        c.IMFSum,
		})
		checks[i] = c
	}
	return checks, nil
}
