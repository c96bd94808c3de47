package sift_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-emd/algorithms/sift"
	"github.com/RyanBlaney/sonido-emd/algorithms/spectral"
	"github.com/RyanBlaney/sonido-emd/internal/testutil"
	"github.com/RyanBlaney/sonido-emd/logging"
)

func quietSifter(cfg sift.Config) (*sift.Sifter, *logging.RecordingLogger) {
	rec := logging.NewRecordingLogger()
	return sift.NewSifter(cfg).WithLogger(rec), rec
}

func TestSiftTwoTones(t *testing.T) {
	const fs = 1000.0
	x := testutil.SumOfSines(fs, 2000, 2, 20)

	cfg := sift.DefaultConfig()
	cfg.SiftThresh = 1e-8
	cfg.MaxIMFs = 2

	s, rec := quietSifter(cfg)
	dec, err := s.Sift(x)
	require.NoError(t, err)
	require.Equal(t, 2, dec.NumIMFs())

	zcr := spectral.NewZeroCrossingRate(fs)
	assert.InDelta(t, 20, zcr.DominantFrequency(dec.IMF(0)), 1.5)
	assert.InDelta(t, 2, zcr.DominantFrequency(dec.IMF(1)), 0.5)

	assert.True(t, rec.Contains(logging.InfoLevel, "reached max number of imfs"))
}

func TestSiftConstantInput(t *testing.T) {
	x := testutil.DC(-2.5, 128)

	dec, err := sift.Sift(x, sift.DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, 1, dec.NumIMFs())
	assert.Equal(t, x, dec.IMF(0))

	resid, err := dec.Residual(x)
	require.NoError(t, err)
	for _, v := range resid {
		assert.Zero(t, v)
	}
}

func TestSiftReconstruction(t *testing.T) {
	signals := map[string][]float64{
		"two tones":      testutil.SumOfSines(1000, 1000, 3, 30),
		"noise":          testutil.DeterministicNoise(3, 1, 400),
		"tone and trend": addSlices(testutil.DeterministicSine(25, 1000, 1, 600), testutil.Ramp(-1, 0.005, 600)),
	}

	for name, x := range signals {
		for _, maxIMFs := range []int{0, 2} {
			cfg := sift.DefaultConfig()
			cfg.MaxIMFs = maxIMFs

			s, _ := quietSifter(cfg)
			dec, err := s.Sift(x)
			require.NoError(t, err, name)
			require.NotZero(t, dec.NumIMFs())
			if maxIMFs > 0 {
				assert.LessOrEqual(t, dec.NumIMFs(), maxIMFs)
			}

			resid, err := dec.Residual(x)
			require.NoError(t, err)
			sum := dec.Sum()
			for i := range x {
				assert.InDelta(t, x[i], sum[i]+resid[i], 1e-10, "%s sample %d", name, i)
			}
		}
	}
}

func TestSiftUncappedEndsOnTrend(t *testing.T) {
	x := addSlices(testutil.DeterministicSine(25, 1000, 1, 600), testutil.Ramp(-1, 0.005, 600))

	s, _ := quietSifter(sift.DefaultConfig())
	dec, err := s.Sift(x)
	require.NoError(t, err)
	require.GreaterOrEqual(t, dec.NumIMFs(), 2)

	// The sift ends on a component that ran out of extrema
	last := dec.IMF(dec.NumIMFs() - 1)
	maxima := sift.FindExtrema(last, 0, false).Len()
	minima := sift.FindExtrema(negate(last), 0, false).Len()
	assert.True(t, maxima < 2 || minima < 2, "maxima %d minima %d", maxima, minima)
}

func TestSiftSmallInputWarning(t *testing.T) {
	cfg := sift.DefaultConfig()
	cfg.MaxIMFs = 8

	s, rec := quietSifter(cfg)
	_, err := s.Sift(testutil.DeterministicSine(50, 1000, 1, 200))
	require.NoError(t, err)
	assert.True(t, rec.Contains(logging.WarnLevel, "small for specified max_imfs"))
}

func TestSiftErrors(t *testing.T) {
	_, err := sift.Sift(nil, sift.DefaultConfig())
	assert.ErrorIs(t, err, sift.ErrEmptyInput)

	cfg := sift.DefaultConfig()
	cfg.Envelope.InterpMethod = "nearest"
	_, err = sift.Sift(testutil.DC(1, 10), cfg)
	assert.ErrorIs(t, err, sift.ErrInvalidConfig)

	cfg = sift.DefaultConfig()
	cfg.IMF.MaxIters = 2
	cfg.IMF.SDThresh = 1e-300
	_, err = sift.Sift(testutil.SumOfSines(1000, 500, 5, 50), cfg)
	assert.ErrorIs(t, err, sift.ErrNoConvergence)
}

func TestSifterIsDecomposer(t *testing.T) {
	var d sift.Decomposer = sift.NewSifter(sift.DefaultConfig()).WithLogger(&logging.NoOpLogger{})
	dec, err := d.Decompose(testutil.SumOfSines(1000, 500, 4, 60))
	require.NoError(t, err)
	assert.NotZero(t, dec.NumIMFs())
	assert.Equal(t, 500, dec.Len())
}

func addSlices(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] + b[i]
	}
	return out
}

func negate(a []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = -a[i]
	}
	return out
}
