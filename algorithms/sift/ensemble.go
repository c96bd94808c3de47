package sift

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/RyanBlaney/sonido-emd/algorithms/common"
	"github.com/RyanBlaney/sonido-emd/logging"
)

// EnsembleResult is the consensus decomposition of an ensemble sift
type EnsembleResult struct {
	*Decomposition

	// Ensembles is the number of realizations run
	Ensembles int
	// Retained is the number of realizations averaged into the result
	Retained int
	// Seed is the top-level seed the realizations were derived from
	Seed uint64
}

// EnsembleSifter implements the ensemble sift (EEMD): the classic sift is
// run on independently noise-perturbed copies of the input and the
// realizations that agree on the IMF count are averaged.
type EnsembleSifter struct {
	cfg      EnsembleConfig
	executor Executor
	logger   logging.Logger
}

// NewEnsembleSifter creates an ensemble sift driver running cfg.Workers
// realizations at a time
func NewEnsembleSifter(cfg EnsembleConfig) *EnsembleSifter {
	return &EnsembleSifter{
		cfg:      cfg,
		executor: NewPool(cfg.Workers),
		logger: logging.WithFields(logging.Fields{
			"component": "ensemble_sift",
		}),
	}
}

// WithLogger replaces the sifter's logger
func (s *EnsembleSifter) WithLogger(logger logging.Logger) *EnsembleSifter {
	s.logger = logger
	return s
}

// WithExecutor replaces the executor realizations run on
func (s *EnsembleSifter) WithExecutor(executor Executor) *EnsembleSifter {
	s.executor = executor
	return s
}

// Decompose runs the ensemble sift and returns the consensus decomposition
func (s *EnsembleSifter) Decompose(x []float64) (*Decomposition, error) {
	res, err := s.Sift(x)
	if err != nil {
		return nil, err
	}
	return res.Decomposition, nil
}

// Sift runs every realization and averages the largest group of
// realizations sharing one IMF count. Any realization failing fails the run.
func (s *EnsembleSifter) Sift(x []float64) (*EnsembleResult, error) {
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

	sifter := NewSifter(s.cfg.Config).WithLogger(s.logger)
	realizations := make([][][]float64, s.cfg.NEnsembles)

	err := s.executor.Run(s.cfg.NEnsembles, func(i int) error {
		s.logger.Debug("Starting sift ensemble", logging.Fields{"ensemble": i})

		noise := GaussianNoise(seeds[i], len(x), scale)
		imfs, err := s.realization(sifter, x, noise)
		if err != nil {
			return fmt.Errorf("ensemble %d: %w", i, err)
		}
		realizations[i] = imfs
		return nil
	})
	if err != nil {
		return nil, err
	}

	dec, retained := s.consensus(len(x), realizations)
	return &EnsembleResult{
		Decomposition: dec,
		Ensembles:     s.cfg.NEnsembles,
		Retained:      retained,
		Seed:          seed,
	}, nil
}

// realization sifts x+noise, and in flip mode also x-noise. The two flip
// decompositions are averaged layer by layer, the shorter one counting as
// zero beyond its last IMF.
func (s *EnsembleSifter) realization(sifter *Sifter, x, noise []float64) ([][]float64, error) {
	dec, err := sifter.run(common.Add(x, noise))
	if err != nil {
		return nil, err
	}
	if s.cfg.NoiseMode == NoiseSingle {
		return dec.imfs, nil
	}

	flipped, err := sifter.run(common.Sub(x, noise))
	if err != nil {
		return nil, fmt.Errorf("flipped noise: %w", err)
	}

	layers := max(dec.NumIMFs(), flipped.NumIMFs())
	imfs := make([][]float64, layers)
	for l := range imfs {
		imfs[l] = make([]float64, len(x))
		if l < dec.NumIMFs() {
			floats.Add(imfs[l], dec.imfs[l])
		}
		if l < flipped.NumIMFs() {
			floats.Add(imfs[l], flipped.imfs[l])
		}
		floats.Scale(0.5, imfs[l])
	}
	return imfs, nil
}

// consensus keeps the largest group of realizations with a common IMF
// count and averages it. Equal sized groups resolve to the smaller count.
func (s *EnsembleSifter) consensus(n int, realizations [][][]float64) (*Decomposition, int) {
	tally := make(map[int]int)
	for _, r := range realizations {
		tally[len(r)]++
	}

	counts := make([]int, 0, len(tally))
	for c := range tally {
		counts = append(counts, c)
	}
	slices.Sort(counts)

	target := counts[0]
	for _, c := range counts[1:] {
		if tally[c] > tally[target] {
			target = c
		}
	}

	retained := tally[target]
	s.logger.Info("Retaining ensembles with matching number of IMFs", logging.Fields{
		"retained":  retained,
		"percent":   100 * float64(retained) / float64(len(realizations)),
		"imfs":      target,
		"ensembles": len(realizations),
	})
	for _, c := range counts {
		if c != target {
			s.logger.Info("Dropping ensembles with divergent number of IMFs", logging.Fields{
				"dropped": tally[c],
				"imfs":    c,
			})
		}
	}

	dec := NewDecomposition(n)
	for l := range target {
		layer := make([][]float64, 0, retained)
		for _, r := range realizations {
			if len(r) == target {
				layer = append(layer, r[l])
			}
		}
		dec.append(common.MeanOf(layer))
	}
	return dec, retained
}

// EnsembleSift runs the ensemble sift on x with cfg
func EnsembleSift(x []float64, cfg EnsembleConfig) (*EnsembleResult, error) {
	return NewEnsembleSifter(cfg).Sift(x)
}
