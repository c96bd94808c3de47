package sift

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the sift package. Callers test them with
// errors.Is; the returned errors wrap them with stage details.
var (
	// ErrNoConvergence indicates a single-IMF refinement hit its iteration cap.
	ErrNoConvergence = errors.New("sift did not converge")

	// ErrEnvelopeLength indicates an interpolated envelope whose length differs
	// from its input. It points at an extrema padding or range bug.
	ErrEnvelopeLength = errors.New("envelope length does not match input")

	// ErrPaddingCoverage indicates padded extrema that never covered the signal.
	ErrPaddingCoverage = errors.New("padded extrema do not cover the signal")

	// ErrInvalidConfig indicates an unknown strategy name or out-of-range option.
	ErrInvalidConfig = errors.New("invalid sift configuration")

	// ErrEmptyInput indicates a zero-length signal.
	ErrEmptyInput = errors.New("input signal is empty")

	// ErrShapeMismatch indicates inputs whose lengths must agree but do not.
	ErrShapeMismatch = errors.New("input shapes do not match")

	// ErrMaskFrequency indicates that no usable mask frequency could be
	// derived from the data.
	ErrMaskFrequency = errors.New("could not determine mask frequency")
)

// ConvergenceError reports a refinement that exceeded MaxIters.
type ConvergenceError struct {
	Iterations int
	MaxIters   int
	StopMethod StopMethod
	Metric     float64
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("sift failed: no convergence after %d iterations (max_iters=%d, stop_method=%s, last metric=%g)",
		e.Iterations, e.MaxIters, e.StopMethod, e.Metric)
}

// Unwrap lets errors.Is match ErrNoConvergence.
func (e *ConvergenceError) Unwrap() error {
	return ErrNoConvergence
}

func invalidConfig(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
