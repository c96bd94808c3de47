package sift

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/RyanBlaney/sonido-emd/algorithms/common"
	"github.com/RyanBlaney/sonido-emd/logging"
)

// CompleteEnsembleResult is the output of a complete ensemble sift
type CompleteEnsembleResult struct {
	*Decomposition

	// Noise holds each realization's noise buffer after the last layer,
	// indexed [realization][sample]
	Noise [][]float64
	Seed  uint64
}

// CompleteEnsembleSifter implements the complete ensemble sift (CEEMDAN).
// Each realization keeps its own noise buffer; after every layer the buffer
// loses its fastest IMF so that later layers see only slower noise.
type CompleteEnsembleSifter struct {
	cfg      EnsembleConfig
	executor Executor
	logger   logging.Logger
}

// NewCompleteEnsembleSifter creates a complete ensemble sift driver
func NewCompleteEnsembleSifter(cfg EnsembleConfig) *CompleteEnsembleSifter {
	return &CompleteEnsembleSifter{
		cfg:      cfg,
		executor: NewPool(cfg.Workers),
		logger: logging.WithFields(logging.Fields{
			"component": "complete_ensemble_sift",
		}),
	}
}

// WithLogger replaces the sifter's logger
func (s *CompleteEnsembleSifter) WithLogger(logger logging.Logger) *CompleteEnsembleSifter {
	s.logger = logger
	return s
}

// WithExecutor replaces the executor realizations run on
func (s *CompleteEnsembleSifter) WithExecutor(executor Executor) *CompleteEnsembleSifter {
	s.executor = executor
	return s
}

// Decompose runs the complete ensemble sift
func (s *CompleteEnsembleSifter) Decompose(x []float64) (*Decomposition, error) {
	res, err := s.Sift(x)
	if err != nil {
		return nil, err
	}
	return res.Decomposition, nil
}

// Sift extracts IMFs layer by layer. It stops once the newest IMF has fewer
// than two maxima, once MaxIMFs IMFs exist, or once the mean absolute value
// of the newest IMF falls below SiftThresh.
func (s *CompleteEnsembleSifter) Sift(x []float64) (*CompleteEnsembleResult, error) {
	if len(x) == 0 {
		return nil, ErrEmptyInput
	}
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}
	warnSmallInput(s.logger, len(x), s.cfg.MaxIMFs)

	seed := resolveSeed(s.cfg.Seed)
	if s.cfg.Seed == nil {
		s.logger.Debug("No seed given, drew a random one", logging.Fields{"seed": seed})
	}
	seeds := ExpandSeeds(seed, s.cfg.NEnsembles)
	scale := common.PopStdDev(x) * s.cfg.EnsembleNoise

	noise := make([][]float64, s.cfg.NEnsembles)
	for i := range noise {
		noise[i] = GaussianNoise(seeds[i], len(x), scale)
	}

	refiner := NewRefiner(s.cfg.Config).WithLogger(s.logger)
	dec := NewDecomposition(len(x))
	proto := common.Clone(x)

	for layer := 0; ; layer++ {
		s.logger.Debug("Sifting IMF", logging.Fields{"layer": layer})

		imf, err := s.layerIMF(refiner, proto, noise)
		if err != nil {
			return nil, fmt.Errorf("complete ensemble layer %d: %w", layer, err)
		}
		dec.append(imf)
		proto = common.Sub(x, dec.Sum())

		if FindExtrema(imf, 0, false).Len() < 2 {
			s.logger.Info("Finishing sift: IMF has fewer than two extrema", logging.Fields{"imfs": dec.NumIMFs()})
			break
		}
		if s.cfg.MaxIMFs > 0 && dec.NumIMFs() >= s.cfg.MaxIMFs {
			s.logger.Info("Finishing sift: reached max number of imfs", logging.Fields{"imfs": dec.NumIMFs()})
			break
		}
		if mean := common.MeanAbs(imf); mean < s.cfg.SiftThresh {
			s.logger.Info("Finishing sift: reached threshold", logging.Fields{"mean_abs": mean, "sift_thresh": s.cfg.SiftThresh})
			break
		}

		if err := s.removeNoiseIMF(refiner, noise); err != nil {
			return nil, fmt.Errorf("complete ensemble noise update at layer %d: %w", layer, err)
		}
	}

	return &CompleteEnsembleResult{
		Decomposition: dec,
		Noise:         noise,
		Seed:          seed,
	}, nil
}

// layerIMF refines one IMF from proto plus each realization's noise and
// averages across realizations
func (s *CompleteEnsembleSifter) layerIMF(refiner *Refiner, proto []float64, noise [][]float64) ([]float64, error) {
	imfs := make([][]float64, len(noise))

	err := s.executor.Run(len(noise), func(i int) error {
		next, err := refiner.Next(common.Add(proto, noise[i]))
		if err != nil {
			return fmt.Errorf("ensemble %d: %w", i, err)
		}
		imf := next.IMF

		if s.cfg.NoiseMode == NoiseFlip {
			flipped, err := refiner.Next(common.Sub(proto, noise[i]))
			if err != nil {
				return fmt.Errorf("ensemble %d flipped noise: %w", i, err)
			}
			floats.Add(imf, flipped.IMF)
			floats.Scale(0.5, imf)
		}

		imfs[i] = imf
		return nil
	})
	if err != nil {
		return nil, err
	}

	return common.MeanOf(imfs), nil
}

// removeNoiseIMF subtracts each noise buffer's own fastest IMF from it
func (s *CompleteEnsembleSifter) removeNoiseIMF(refiner *Refiner, noise [][]float64) error {
	return s.executor.Run(len(noise), func(i int) error {
		next, err := refiner.Next(noise[i])
		if err != nil {
			return fmt.Errorf("ensemble %d: %w", i, err)
		}
		noise[i] = common.Sub(noise[i], next.IMF)
		return nil
	})
}

// CompleteEnsembleSift runs the complete ensemble sift on x with cfg
func CompleteEnsembleSift(x []float64, cfg EnsembleConfig) (*CompleteEnsembleResult, error) {
	return NewCompleteEnsembleSifter(cfg).Sift(x)
}
