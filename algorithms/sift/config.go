package sift

import (
	"github.com/RyanBlaney/sonido-emd/algorithms/common"
)

// StopMethod selects the criterion that ends the refinement of one IMF
type StopMethod string

const (
	StopSD      StopMethod = "sd"
	StopRilling StopMethod = "rilling"
	StopFixed   StopMethod = "fixed"
)

// EnvelopeMode selects which envelope is interpolated
type EnvelopeMode string

const (
	EnvelopeUpper    EnvelopeMode = "upper"
	EnvelopeLower    EnvelopeMode = "lower"
	EnvelopeCombined EnvelopeMode = "combined"
)

// ExtremaMode selects which extrema are detected
type ExtremaMode string

const (
	Peaks    ExtremaMode = "peaks"
	Troughs  ExtremaMode = "troughs"
	AbsPeaks ExtremaMode = "abs_peaks"
)

// NoiseMode selects how each ensemble realization applies its noise
type NoiseMode string

const (
	// NoiseSingle sifts signal+noise once
	NoiseSingle NoiseMode = "single"
	// NoiseFlip sifts signal+noise and signal-noise and averages the two
	NoiseFlip NoiseMode = "flip"
)

// MaskAmpMode selects the unit of MaskConfig.MaskAmp
type MaskAmpMode string

const (
	// MaskAmpAbs uses MaskAmp as an absolute amplitude
	MaskAmpAbs MaskAmpMode = "abs"
	// MaskAmpRatioSig scales MaskAmp by the standard deviation of the input
	MaskAmpRatioSig MaskAmpMode = "ratio_sig"
	// MaskAmpRatioIMF scales MaskAmp by the standard deviation of the previous
	// IMF (the input for the first layer)
	MaskAmpRatioIMF MaskAmpMode = "ratio_imf"
)

// MaskFreqMode selects how mask frequencies are chosen
type MaskFreqMode string

const (
	// MaskFreqZC derives the first mask from zero crossings of an unmasked IMF
	MaskFreqZC MaskFreqMode = "zc"
	// MaskFreqIF derives the first mask from the amplitude-weighted mean
	// instantaneous frequency of an unmasked IMF
	MaskFreqIF MaskFreqMode = "if"
	// MaskFreqFirst uses MaskFreqs.First as the first mask frequency
	MaskFreqFirst MaskFreqMode = "first"
	// MaskFreqList uses MaskFreqs.List, one frequency per IMF
	MaskFreqList MaskFreqMode = "list"
)

// ExtremaConfig controls extrema detection and edge padding
type ExtremaConfig struct {
	PadWidth         int               `yaml:"pad_width"`
	ParabolicExtrema bool              `yaml:"parabolic_extrema"`
	PeakPromThresh   float64           `yaml:"peak_prom_thresh"` // <= 0 disables
	LocPad           common.PadOptions `yaml:"loc_pad_opts"`
	MagPad           common.PadOptions `yaml:"mag_pad_opts"`
	MaxPadRetries    int               `yaml:"max_pad_retries"`
}

// EnvelopeConfig controls envelope interpolation
type EnvelopeConfig struct {
	InterpMethod common.InterpolationType `yaml:"interp_method"`
}

// RillingThresh holds the two thresholds and tolerance of the Rilling criterion
type RillingThresh struct {
	SD1 float64 `yaml:"sd1"`
	SD2 float64 `yaml:"sd2"`
	Tol float64 `yaml:"tol"`
}

// IMFConfig controls the refinement of a single IMF
type IMFConfig struct {
	EnvStepSize float64 `yaml:"env_step_size"`
	MaxIters    int     `yaml:"max_iters"`
	// EnergyThresh in dB ends the whole decomposition once an IMF carries
	// that much more energy than its residual. Zero disables the check.
	EnergyThresh  float64       `yaml:"energy_thresh"`
	StopMethod    StopMethod    `yaml:"stop_method"`
	SDThresh      float64       `yaml:"sd_thresh"`
	RillingThresh RillingThresh `yaml:"rilling_thresh"`
}

// Config configures the classic sift
type Config struct {
	SiftThresh float64 `yaml:"sift_thresh"`
	// MaxIMFs caps the number of IMFs. Zero means no cap.
	MaxIMFs  int            `yaml:"max_imfs"`
	IMF      IMFConfig      `yaml:"imf_opts"`
	Envelope EnvelopeConfig `yaml:"envelope_opts"`
	Extrema  ExtremaConfig  `yaml:"extrema_opts"`
}

// EnsembleConfig configures the ensemble and complete ensemble sifts
type EnsembleConfig struct {
	Config `yaml:",inline"`

	NEnsembles int `yaml:"nensembles"`
	// EnsembleNoise is the noise standard deviation relative to the input's
	EnsembleNoise float64   `yaml:"ensemble_noise"`
	NoiseMode     NoiseMode `yaml:"noise_mode"`
	Workers       int       `yaml:"nprocesses"`
	// Seed makes a run reproducible. Nil draws a fresh seed.
	Seed *uint64 `yaml:"seed,omitempty"`
}

// MaskFreqs describes the mask frequency schedule, in cycles per sample
type MaskFreqs struct {
	Mode  MaskFreqMode `yaml:"mode"`
	First float64      `yaml:"first,omitempty"`
	List  []float64    `yaml:"list,omitempty"`
}

// MaskConfig configures the mask sift
type MaskConfig struct {
	Config `yaml:",inline"`

	// MaskAmp holds one amplitude for every layer, or one per layer
	MaskAmp        []float64   `yaml:"mask_amp"`
	MaskAmpMode    MaskAmpMode `yaml:"mask_amp_mode"`
	MaskFreqs      MaskFreqs   `yaml:"mask_freqs"`
	MaskStepFactor float64     `yaml:"mask_step_factor"`
	NPhases        int         `yaml:"nphases"`
	Workers        int         `yaml:"nprocesses"`
}

// DefaultExtremaConfig pads two extrema on each side, reflecting locations
// about the edge extremum and repeating the edge magnitude
func DefaultExtremaConfig() ExtremaConfig {
	return ExtremaConfig{
		PadWidth:         2,
		ParabolicExtrema: false,
		LocPad:           common.PadOptions{Mode: common.PadReflect, ReflectType: common.ReflectOdd},
		MagPad:           common.PadOptions{Mode: common.PadMedian, StatLength: 1},
		MaxPadRetries:    32,
	}
}

// DefaultEnvelopeConfig interpolates with a cubic spline
func DefaultEnvelopeConfig() EnvelopeConfig {
	return EnvelopeConfig{InterpMethod: common.Splrep}
}

// DefaultIMFConfig uses the SD criterion at 0.1
func DefaultIMFConfig() IMFConfig {
	return IMFConfig{
		EnvStepSize:   1,
		MaxIters:      1000,
		EnergyThresh:  0,
		StopMethod:    StopSD,
		SDThresh:      0.1,
		RillingThresh: RillingThresh{SD1: 0.05, SD2: 0.5, Tol: 0.05},
	}
}

// DefaultConfig returns the classic sift defaults
func DefaultConfig() Config {
	return Config{
		SiftThresh: 1e-8,
		MaxIMFs:    0,
		IMF:        DefaultIMFConfig(),
		Envelope:   DefaultEnvelopeConfig(),
		Extrema:    DefaultExtremaConfig(),
	}
}

// DefaultEnsembleConfig returns ensemble sift defaults
func DefaultEnsembleConfig() EnsembleConfig {
	return EnsembleConfig{
		Config:        DefaultConfig(),
		NEnsembles:    4,
		EnsembleNoise: 0.2,
		NoiseMode:     NoiseSingle,
		Workers:       1,
	}
}

// DefaultMaskConfig returns mask sift defaults
func DefaultMaskConfig() MaskConfig {
	cfg := DefaultConfig()
	cfg.MaxIMFs = 9
	return MaskConfig{
		Config:         cfg,
		MaskAmp:        []float64{1},
		MaskAmpMode:    MaskAmpRatioIMF,
		MaskFreqs:      MaskFreqs{Mode: MaskFreqZC},
		MaskStepFactor: 2,
		NPhases:        4,
		Workers:        1,
	}
}

// Validate checks extrema options
func (c ExtremaConfig) Validate() error {
	if c.PadWidth < 0 {
		return invalidConfig("pad_width must be >= 0, got %d", c.PadWidth)
	}
	if err := c.LocPad.Validate(); err != nil {
		return invalidConfig("loc_pad_opts: %v", err)
	}
	if err := c.MagPad.Validate(); err != nil {
		return invalidConfig("mag_pad_opts: %v", err)
	}
	if c.MaxPadRetries <= 0 {
		return invalidConfig("max_pad_retries must be > 0, got %d", c.MaxPadRetries)
	}
	return nil
}

// Validate checks envelope options
func (c EnvelopeConfig) Validate() error {
	if err := c.InterpMethod.Validate(); err != nil {
		return invalidConfig("%v", err)
	}
	return nil
}

// Validate checks refinement options
func (c IMFConfig) Validate() error {
	switch c.StopMethod {
	case StopSD:
		if c.SDThresh <= 0 {
			return invalidConfig("sd_thresh must be > 0, got %g", c.SDThresh)
		}
	case StopRilling:
		r := c.RillingThresh
		if r.SD1 <= 0 || r.SD2 <= 0 || r.Tol < 0 || r.Tol >= 1 {
			return invalidConfig("rilling_thresh needs sd1 > 0, sd2 > 0, 0 <= tol < 1, got %+v", r)
		}
	case StopFixed:
	default:
		return invalidConfig("unknown stop method %q", c.StopMethod)
	}
	if c.MaxIters <= 0 {
		return invalidConfig("max_iters must be > 0, got %d", c.MaxIters)
	}
	if c.EnvStepSize <= 0 || c.EnvStepSize > 1 {
		return invalidConfig("env_step_size must be in (0, 1], got %g", c.EnvStepSize)
	}
	if c.EnergyThresh < 0 {
		return invalidConfig("energy_thresh must be >= 0, got %g", c.EnergyThresh)
	}
	return nil
}

// Validate checks the classic sift options and every stage below it
func (c Config) Validate() error {
	if c.SiftThresh < 0 {
		return invalidConfig("sift_thresh must be >= 0, got %g", c.SiftThresh)
	}
	if c.MaxIMFs < 0 {
		return invalidConfig("max_imfs must be >= 0, got %d", c.MaxIMFs)
	}
	if err := c.IMF.Validate(); err != nil {
		return err
	}
	if err := c.Envelope.Validate(); err != nil {
		return err
	}
	return c.Extrema.Validate()
}

// Validate checks ensemble options
func (c EnsembleConfig) Validate() error {
	if err := c.Config.Validate(); err != nil {
		return err
	}
	if c.NEnsembles <= 0 {
		return invalidConfig("nensembles must be > 0, got %d", c.NEnsembles)
	}
	if c.EnsembleNoise < 0 {
		return invalidConfig("ensemble_noise must be >= 0, got %g", c.EnsembleNoise)
	}
	switch c.NoiseMode {
	case NoiseSingle, NoiseFlip:
	default:
		return invalidConfig("noise_mode %q not recognised, use %q or %q", c.NoiseMode, NoiseSingle, NoiseFlip)
	}
	return nil
}

// Validate checks mask options
func (c MaskConfig) Validate() error {
	if err := c.Config.Validate(); err != nil {
		return err
	}
	if len(c.MaskAmp) == 0 {
		return invalidConfig("mask_amp needs at least one value")
	}
	switch c.MaskAmpMode {
	case MaskAmpAbs, MaskAmpRatioSig, MaskAmpRatioIMF:
	default:
		return invalidConfig("unknown mask_amp_mode %q", c.MaskAmpMode)
	}
	switch c.MaskFreqs.Mode {
	case MaskFreqZC, MaskFreqIF:
	case MaskFreqFirst:
		if c.MaskFreqs.First <= 0 || c.MaskFreqs.First >= 0.5 {
			return invalidConfig("the frequency of the first mask must be 0 < f < 0.5, got %g", c.MaskFreqs.First)
		}
	case MaskFreqList:
		if len(c.MaskFreqs.List) == 0 {
			return invalidConfig("mask_freqs list is empty")
		}
		for i, f := range c.MaskFreqs.List {
			if f <= 0 || f >= 0.5 {
				return invalidConfig("mask frequency %d must be 0 < f < 0.5, got %g", i, f)
			}
		}
	default:
		return invalidConfig("unknown mask_freqs mode %q", c.MaskFreqs.Mode)
	}
	// A factor below one would raise later masks past Nyquist
	if c.MaskStepFactor < 1 {
		return invalidConfig("mask_step_factor must be >= 1, got %g", c.MaskStepFactor)
	}
	if c.NPhases <= 0 {
		return invalidConfig("nphases must be > 0, got %d", c.NPhases)
	}
	return nil
}
