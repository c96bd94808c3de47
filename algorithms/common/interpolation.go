package common

import (
	"fmt"

	"gonum.org/v1/gonum/interp"
)

// InterpolationType defines the interpolation kernel used to draw a curve
// through a set of knots
type InterpolationType string

const (
	// Splrep is an interpolating cubic spline with not-a-knot end conditions
	Splrep InterpolationType = "splrep"
	// Pchip is a monotone piecewise cubic Hermite interpolant
	Pchip InterpolationType = "pchip"
	// MonoPchip is the monotone piecewise cubic Hermite interpolant under its
	// explicit name; it shares the Fritsch-Butland kernel with Pchip
	MonoPchip InterpolationType = "mono_pchip"
	// Akima is the Akima piecewise cubic spline
	Akima InterpolationType = "akima"
	// Linear joins knots with straight lines
	Linear InterpolationType = "linear"
)

// Validate rejects unknown interpolation kernels
func (t InterpolationType) Validate() error {
	switch t {
	case Splrep, Pchip, MonoPchip, Akima, Linear:
		return nil
	default:
		return fmt.Errorf("unknown interpolation method %q", t)
	}
}

// Interpolator fits one of the gonum kernels through a set of knots
type Interpolator struct {
	method InterpolationType
}

// NewInterpolator creates a new interpolator
func NewInterpolator(method InterpolationType) *Interpolator {
	return &Interpolator{
		method: method,
	}
}

// Fit builds a predictor through (xs, ys). xs must be strictly increasing.
// The not-a-knot spline needs four knots; with fewer it degrades to the
// monotone cubic, and with two knots every kernel is a straight line.
func (ip *Interpolator) Fit(xs, ys []float64) (interp.Predictor, error) {
	if err := ip.method.Validate(); err != nil {
		return nil, err
	}
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("interpolation knots mismatch: %d locations, %d values", len(xs), len(ys))
	}
	if len(xs) < 2 {
		return nil, fmt.Errorf("interpolation needs at least 2 knots, got %d", len(xs))
	}
	for i := 1; i < len(xs); i++ {
		if !(xs[i] > xs[i-1]) {
			return nil, fmt.Errorf("interpolation knots not strictly increasing at index %d (%v after %v)", i, xs[i], xs[i-1])
		}
	}

	var fp interp.FittablePredictor
	switch {
	case len(xs) == 2 || ip.method == Linear:
		fp = &interp.PiecewiseLinear{}
	case ip.method == Splrep && len(xs) >= 4:
		fp = &interp.NotAKnotCubic{}
	case ip.method == Akima:
		fp = &interp.AkimaSpline{}
	default:
		fp = &interp.FritschButland{}
	}

	if err := fp.Fit(xs, ys); err != nil {
		return nil, fmt.Errorf("failed to fit %s interpolant: %w", ip.method, err)
	}
	return fp, nil
}

// InterpolateAt fits (xs, ys) and evaluates the curve at every point of at
func (ip *Interpolator) InterpolateAt(xs, ys, at []float64) ([]float64, error) {
	predictor, err := ip.Fit(xs, ys)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(at))
	for i, x := range at {
		out[i] = predictor.Predict(x)
	}
	return out, nil
}
