package sift

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/RyanBlaney/sonido-emd/algorithms/common"
	"github.com/RyanBlaney/sonido-emd/logging"
)

// RefineState is the terminal state of a single-IMF refinement
type RefineState string

const (
	StateRefining           RefineState = "refining"
	StateStoppedByCriterion RefineState = "stopped_by_criterion"
	StateStoppedNoExtrema   RefineState = "stopped_no_extrema"
)

// IMFResult is the outcome of refining one IMF
type IMFResult struct {
	IMF []float64
	// Continue is false when no further IMF should be extracted, either
	// because the signal ran out of extrema or the energy threshold fired.
	Continue   bool
	State      RefineState
	Iterations int
	// Metric is the last value of the stop criterion (0 for fixed)
	Metric float64
}

// Refiner extracts one IMF by repeated envelope-mean subtraction
type Refiner struct {
	imf      IMFConfig
	envelope EnvelopeConfig
	extrema  ExtremaConfig
	logger   logging.Logger
}

// NewRefiner creates a refiner for the three stage configurations of cfg.
// The sift thresholds of cfg are not used.
func NewRefiner(cfg Config) *Refiner {
	return &Refiner{
		imf:      cfg.IMF,
		envelope: cfg.Envelope,
		extrema:  cfg.Extrema,
		logger: logging.WithFields(logging.Fields{
			"component": "imf_refiner",
		}),
	}
}

// WithLogger replaces the refiner's logger
func (r *Refiner) WithLogger(logger logging.Logger) *Refiner {
	r.logger = logger
	return r
}

// Validate checks the stage configurations
func (r *Refiner) Validate() error {
	if err := r.imf.Validate(); err != nil {
		return err
	}
	if err := r.envelope.Validate(); err != nil {
		return err
	}
	return r.extrema.Validate()
}

// Next refines x into its fastest IMF. x is not modified.
//
// A ConvergenceError is returned when a non-fixed criterion has not fired
// after MaxIters iterations; no partial IMF is returned with it.
func (r *Refiner) Next(x []float64) (*IMFResult, error) {
	if len(x) == 0 {
		return nil, ErrEmptyInput
	}

	cfg := r.imf
	proto := common.Clone(x)
	result := &IMFResult{Continue: true, State: StateRefining}

	niters := 0
	for result.State == StateRefining {
		if cfg.StopMethod != StopFixed {
			if niters == 3*cfg.MaxIters/4 {
				r.logger.Debug("Sift is taking a long time to converge", logging.Fields{
					"iterations": niters,
					"max_iters":  cfg.MaxIters,
				})
			} else if niters > cfg.MaxIters {
				return nil, &ConvergenceError{
					Iterations: niters,
					MaxIters:   cfg.MaxIters,
					StopMethod: cfg.StopMethod,
					Metric:     result.Metric,
				}
			}
		}
		niters++

		upper, err := InterpEnvelope(proto, EnvelopeUpper, r.envelope, r.extrema)
		if err != nil {
			return nil, fmt.Errorf("upper envelope at iteration %d: %w", niters, err)
		}
		lower, err := InterpEnvelope(proto, EnvelopeLower, r.envelope, r.extrema)
		if err != nil {
			return nil, fmt.Errorf("lower envelope at iteration %d: %w", niters, err)
		}

		if upper == nil || lower == nil {
			r.logger.Debug("Finishing sift: IMF has no extrema", logging.Fields{"iterations": niters})
			result.State = StateStoppedNoExtrema
			result.Continue = false
			break
		}

		avg := make([]float64, len(proto))
		floats.AddTo(avg, upper, lower)
		floats.Scale(0.5, avg)

		candidate := common.Sub(proto, avg)

		var stop bool
		switch cfg.StopMethod {
		case StopSD:
			stop, result.Metric = SDStop(proto, candidate, cfg.SDThresh)
			if stop {
				r.logger.Debug("Sift stopped by SD-thresh", logging.Fields{"iterations": niters, "sd": result.Metric})
			}
		case StopRilling:
			stop, result.Metric = RillingStop(upper, lower, cfg.RillingThresh)
			if stop {
				r.logger.Debug("Sift stopped by Rilling-metric", logging.Fields{"iterations": niters, "metric": result.Metric})
			}
		case StopFixed:
			stop = FixedStop(niters, cfg.MaxIters)
			if stop {
				r.logger.Debug("Sift stopped at fixed number of iterations", logging.Fields{"iterations": niters})
			}
		default:
			return nil, invalidConfig("unknown stop method %q", cfg.StopMethod)
		}

		if stop {
			proto = candidate
			result.State = StateStoppedByCriterion
			break
		}

		floats.AddScaled(proto, -cfg.EnvStepSize, avg)
	}

	result.IMF = proto
	result.Iterations = niters

	if cfg.EnergyThresh > 0 {
		if stop, diff := EnergyStop(x, common.Sub(x, proto), cfg.EnergyThresh); stop {
			r.logger.Debug("Finishing sift: energy ratio above threshold", logging.Fields{
				"energy_db": diff,
				"thresh":    cfg.EnergyThresh,
			})
			result.Continue = false
		}
	}

	return result, nil
}

// NextIMF refines the fastest IMF of x with the stage options of cfg
func NextIMF(x []float64, cfg Config) (*IMFResult, error) {
	r := NewRefiner(cfg)
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r.Next(x)
}
