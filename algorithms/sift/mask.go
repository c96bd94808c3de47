package sift

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/RyanBlaney/sonido-emd/algorithms/common"
	"github.com/RyanBlaney/sonido-emd/algorithms/spectral"
	"github.com/RyanBlaney/sonido-emd/logging"
)

// FrequencyEstimator returns per-sample instantaneous frequency, in cycles
// per sample, and instantaneous amplitude of a narrow-band signal
type FrequencyEstimator interface {
	InstantaneousFrequency(x []float64) (freq, amp []float64, err error)
}

// MaskResult is the output of a mask sift
type MaskResult struct {
	*Decomposition

	// MaskFreqs and MaskAmps hold the mask used for each IMF
	MaskFreqs []float64
	MaskAmps  []float64
}

// MaskSifter implements the mask sift of Deering & Kaiser (2005) with the
// phase-averaged masks of Tsai et al. (2016). Each IMF is refined from the
// residual plus NPhases cosine masks at evenly spaced phases; the masks are
// subtracted again and the phases averaged.
type MaskSifter struct {
	cfg       MaskConfig
	executor  Executor
	estimator FrequencyEstimator
	logger    logging.Logger
}

// NewMaskSifter creates a mask sift driver
func NewMaskSifter(cfg MaskConfig) *MaskSifter {
	return &MaskSifter{
		cfg:       cfg,
		executor:  NewPool(cfg.Workers),
		estimator: spectral.NewInstantaneousFrequency(3),
		logger: logging.WithFields(logging.Fields{
			"component": "mask_sift",
		}),
	}
}

// WithLogger replaces the sifter's logger
func (s *MaskSifter) WithLogger(logger logging.Logger) *MaskSifter {
	s.logger = logger
	return s
}

// WithExecutor replaces the executor mask phases run on
func (s *MaskSifter) WithExecutor(executor Executor) *MaskSifter {
	s.executor = executor
	return s
}

// WithEstimator replaces the estimator used by the "if" frequency mode
func (s *MaskSifter) WithEstimator(estimator FrequencyEstimator) *MaskSifter {
	s.estimator = estimator
	return s
}

// Decompose runs the mask sift
func (s *MaskSifter) Decompose(x []float64) (*Decomposition, error) {
	res, err := s.Sift(x)
	if err != nil {
		return nil, err
	}
	return res.Decomposition, nil
}

// Sift decomposes x with masked refinement. The stop logic is the classic
// sift's: no phase can continue, MaxIMFs reached, or the summed absolute
// value of the newest IMF below SiftThresh.
func (s *MaskSifter) Sift(x []float64) (*MaskResult, error) {
	if len(x) == 0 {
		return nil, ErrEmptyInput
	}
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}

	maxIMFs := s.cfg.MaxIMFs
	freqs := s.cfg.MaskFreqs

	var first float64
	if freqs.Mode == MaskFreqList {
		s.logger.Info("Using user specified masks", logging.Fields{"masks": len(freqs.List)})
		if maxIMFs == 0 || len(freqs.List) < maxIMFs {
			maxIMFs = len(freqs.List)
			s.logger.Info("Reducing max_imfs to the number of mask frequencies", logging.Fields{"max_imfs": maxIMFs})
		}
	} else {
		z, err := s.FirstMaskFreq(x)
		if err != nil {
			return nil, err
		}
		first = z
	}
	if len(s.cfg.MaskAmp) > 1 && (maxIMFs == 0 || len(s.cfg.MaskAmp) < maxIMFs) {
		maxIMFs = len(s.cfg.MaskAmp)
		s.logger.Info("Reducing max_imfs to the number of mask amplitudes", logging.Fields{"max_imfs": maxIMFs})
	}
	warnSmallInput(s.logger, len(x), maxIMFs)

	sd := 1.0
	if s.cfg.MaskAmpMode != MaskAmpAbs {
		sd = common.PopStdDev(x)
	}

	res := &MaskResult{Decomposition: NewDecomposition(len(x))}
	proto := common.Clone(x)

	for layer := 0; ; {
		if s.cfg.MaskAmpMode == MaskAmpRatioIMF && layer > 0 {
			sd = common.PopStdDev(res.imfs[layer-1])
		}
		amp := s.maskAmp(layer) * sd

		var z float64
		if freqs.Mode == MaskFreqList {
			z = freqs.List[layer]
		} else {
			z = first / math.Pow(s.cfg.MaskStepFactor, float64(layer))
		}

		s.logger.Debug("Sifting IMF", logging.Fields{"layer": layer, "mask_freq": z, "mask_amp": amp})
		next, cont, err := s.NextIMF(proto, z, amp)
		if err != nil {
			return nil, fmt.Errorf("mask sift layer %d: %w", layer, err)
		}

		res.append(next)
		res.MaskFreqs = append(res.MaskFreqs, z)
		res.MaskAmps = append(res.MaskAmps, amp)
		proto = common.Sub(x, res.Sum())
		layer++

		if !cont {
			s.logger.Info("Finishing sift: no mask phase can continue", logging.Fields{"imfs": layer})
			break
		}
		if maxIMFs > 0 && layer == maxIMFs {
			s.logger.Info("Finishing sift: reached max number of imfs", logging.Fields{"imfs": layer})
			break
		}
		if sum := common.SumAbs(next); sum < s.cfg.SiftThresh {
			s.logger.Info("Finishing sift: reached threshold", logging.Fields{"sum_abs": sum, "sift_thresh": s.cfg.SiftThresh})
			break
		}
	}

	return res, nil
}

func (s *MaskSifter) maskAmp(layer int) float64 {
	if len(s.cfg.MaskAmp) == 1 {
		return s.cfg.MaskAmp[0]
	}
	return s.cfg.MaskAmp[layer]
}

// FirstMaskFreq returns the frequency of the first mask, in cycles per
// sample. The zc and if modes derive it from an unmasked first IMF of x.
func (s *MaskSifter) FirstMaskFreq(x []float64) (float64, error) {
	mode := s.cfg.MaskFreqs.Mode
	switch mode {
	case MaskFreqFirst:
		z := s.cfg.MaskFreqs.First
		if z <= 0 || z >= 0.5 {
			return 0, fmt.Errorf("%w: first mask frequency must be 0 < f < 0.5, got %g", ErrMaskFrequency, z)
		}
		s.logger.Info("Using specified first mask frequency", logging.Fields{"mask_freq": z})
		return z, nil
	case MaskFreqZC, MaskFreqIF:
	default:
		return 0, invalidConfig("mask frequency mode %q has no first frequency", mode)
	}

	s.logger.Info("Computing first mask frequency", logging.Fields{"method": mode})
	next, err := NewRefiner(s.cfg.Config).WithLogger(s.logger).Next(x)
	if err != nil {
		return 0, fmt.Errorf("unmasked first imf: %w", err)
	}

	var z float64
	if mode == MaskFreqZC {
		z = float64(spectral.ZeroCrossingCount(next.IMF)) / float64(len(next.IMF)) / 4
	} else {
		freq, amp, err := s.estimator.InstantaneousFrequency(next.IMF)
		if err != nil {
			return 0, fmt.Errorf("instantaneous frequency of first imf: %w", err)
		}
		if sum := floats.Sum(amp); sum > 0 {
			z = floats.Dot(freq, amp) / sum
		}
	}

	if z <= 0 || z >= 0.5 || math.IsNaN(z) {
		return 0, fmt.Errorf("%w: first imf gives mask frequency %g", ErrMaskFrequency, z)
	}
	s.logger.Info("Found first mask frequency", logging.Fields{"mask_freq": z})
	return z, nil
}

// NextIMF refines one IMF of x under masks of frequency z and amplitude amp.
// The returned flag is true when any phase could continue the sift.
func (s *MaskSifter) NextIMF(x []float64, z, amp float64) ([]float64, bool, error) {
	nphases := s.cfg.NPhases
	if nphases <= 0 {
		return nil, false, invalidConfig("nphases must be > 0, got %d", nphases)
	}
	s.logger.Debug("Defining masks", logging.Fields{"mask_freq": z, "mask_amp": amp, "phases": nphases})

	refiner := NewRefiner(s.cfg.Config).WithLogger(s.logger)
	imfs := make([][]float64, nphases)
	conts := make([]bool, nphases)

	err := s.executor.Run(nphases, func(k int) error {
		mask := Mask(len(x), z, amp, 2*math.Pi*float64(k)/float64(nphases))

		next, err := refiner.Next(common.Add(x, mask))
		if err != nil {
			return fmt.Errorf("mask phase %d: %w", k, err)
		}
		imfs[k] = common.Sub(next.IMF, mask)
		conts[k] = next.Continue
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	cont := false
	for _, c := range conts {
		cont = cont || c
	}
	return common.MeanOf(imfs), cont, nil
}

// Mask returns amp·cos(2πz·t + phase) for t = 0..n-1
func Mask(n int, z, amp, phase float64) []float64 {
	m := make([]float64, n)
	for t := range m {
		m[t] = amp * math.Cos(2*math.Pi*z*float64(t)+phase)
	}
	return m
}

// MaskSift runs the mask sift on x with cfg
func MaskSift(x []float64, cfg MaskConfig) (*MaskResult, error) {
	return NewMaskSifter(cfg).Sift(x)
}
