package sift

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-emd/algorithms/common"
	"github.com/RyanBlaney/sonido-emd/logging"
)

// Sifter implements the classic sift of Huang et al. (1998): IMFs are
// refined one after another from the running residual.
type Sifter struct {
	cfg    Config
	logger logging.Logger
}

// NewSifter creates a classic sift driver
func NewSifter(cfg Config) *Sifter {
	return &Sifter{
		cfg: cfg,
		logger: logging.WithFields(logging.Fields{
			"component": "sift",
		}),
	}
}

// WithLogger replaces the sifter's logger
func (s *Sifter) WithLogger(logger logging.Logger) *Sifter {
	s.logger = logger
	return s
}

// Config returns the sifter's configuration
func (s *Sifter) Config() Config {
	return s.cfg
}

// Decompose runs the sift; it makes Sifter a Decomposer
func (s *Sifter) Decompose(x []float64) (*Decomposition, error) {
	return s.Sift(x)
}

// Sift decomposes x into IMFs. It stops when an IMF reports that no further
// sifting is possible, when MaxIMFs IMFs exist, or when the summed absolute
// value of the latest IMF falls below SiftThresh.
func (s *Sifter) Sift(x []float64) (*Decomposition, error) {
	if len(x) == 0 {
		return nil, ErrEmptyInput
	}
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}
	warnSmallInput(s.logger, len(x), s.cfg.MaxIMFs)

	return s.run(x)
}

// run sifts x with an already validated configuration
func (s *Sifter) run(x []float64) (*Decomposition, error) {
	refiner := NewRefiner(s.cfg).WithLogger(s.logger)
	dec := NewDecomposition(len(x))

	proto := common.Clone(x)
	for layer := 0; ; {
		next, err := refiner.Next(proto)
		if err != nil {
			return nil, fmt.Errorf("sift layer %d: %w", layer, err)
		}

		dec.append(next.IMF)
		proto = common.Sub(x, dec.Sum())
		layer++

		if !next.Continue {
			break
		}
		if s.cfg.MaxIMFs > 0 && layer == s.cfg.MaxIMFs {
			s.logger.Info("Finishing sift: reached max number of imfs", logging.Fields{"imfs": layer})
			break
		}
		if sum := common.SumAbs(next.IMF); sum < s.cfg.SiftThresh {
			s.logger.Info("Finishing sift: reached threshold", logging.Fields{"sum_abs": sum, "sift_thresh": s.cfg.SiftThresh})
			break
		}
	}

	return dec, nil
}

// Sift runs the classic sift on x with cfg using the global logger
func Sift(x []float64, cfg Config) (*Decomposition, error) {
	return NewSifter(cfg).Sift(x)
}

// warnSmallInput warns when x is too short to hold maxIMFs dyadic IMFs
func warnSmallInput(logger logging.Logger, n, maxIMFs int) {
	if maxIMFs <= 0 {
		return
	}
	if float64(n) < math.Pow(2, float64(maxIMFs+1)) {
		logger.Warn("Input samples is small for specified max_imfs", logging.Fields{
			"samples":     n,
			"max_imfs":    maxIMFs,
			"likely_imfs": int(math.Floor(math.Log2(float64(n)))) - 1,
		})
	}
}
