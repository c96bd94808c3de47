package sift_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-emd/algorithms/common"
	"github.com/RyanBlaney/sonido-emd/algorithms/sift"
	"github.com/RyanBlaney/sonido-emd/internal/testutil"
	"github.com/RyanBlaney/sonido-emd/logging"
)

func TestFindExtrema(t *testing.T) {
	tests := []struct {
		name     string
		x        []float64
		prom     float64
		wantLocs []float64
		wantMags []float64
	}{
		{"two peaks", []float64{0, 1, 0, 2, 0}, 0, []float64{1, 3}, []float64{1, 2}},
		{"edges never qualify", []float64{5, 1, 5}, 0, []float64{}, []float64{}},
		{"plateau is not strict", []float64{0, 1, 1, 0}, 0, []float64{}, []float64{}},
		{"constant", []float64{3, 3, 3, 3}, 0, []float64{}, []float64{}},
		{"prominence filter", []float64{0, 1, 0.9, 3, 0}, 0.5, []float64{3}, []float64{3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext := sift.FindExtrema(tt.x, tt.prom, false)
			assert.Equal(t, tt.wantLocs, ext.Locs)
			assert.Equal(t, tt.wantMags, ext.Mags)
		})
	}
}

func TestFindExtremaLocationsIncrease(t *testing.T) {
	for seed := uint64(1); seed <= 5; seed++ {
		x := testutil.DeterministicNoise(seed, 1, 500)
		for _, parabolic := range []bool{false, true} {
			ext := sift.FindExtrema(x, 0, parabolic)
			require.NotZero(t, ext.Len())
			for i := 1; i < ext.Len(); i++ {
				assert.Greater(t, ext.Locs[i], ext.Locs[i-1], "seed %d parabolic %v index %d", seed, parabolic, i)
			}
		}
	}
}

func TestParabolicVertex(t *testing.T) {
	loc, mag := sift.ParabolicVertex(0, 1, 0, 5)
	assert.InDelta(t, 5, loc, 1e-12)
	assert.InDelta(t, 1, mag, 1e-12)

	// Vertex of the parabola through (4, 0), (5, 1), (6, 0.5)
	loc, mag = sift.ParabolicVertex(0, 1, 0.5, 5)
	assert.InDelta(t, 5+1.0/6, loc, 1e-12)
	assert.InDelta(t, 1+1.0/48, mag, 1e-12)

	// A straight line has no vertex
	loc, mag = sift.ParabolicVertex(1, 2, 3, 7)
	assert.Equal(t, 7.0, loc)
	assert.Equal(t, 2.0, mag)
}

func TestPaddedExtremaCoverage(t *testing.T) {
	cfg := sift.DefaultExtremaConfig()

	signals := map[string][]float64{
		"sine":      testutil.DeterministicSine(7, 1000, 1, 1000),
		"two tones": testutil.SumOfSines(1000, 1000, 3, 40),
		"noise":     testutil.DeterministicNoise(11, 1, 300),
		"few peaks": testutil.DeterministicSine(1, 100, 1, 250),
	}

	for name, x := range signals {
		for _, mode := range []sift.ExtremaMode{sift.Peaks, sift.Troughs, sift.AbsPeaks} {
			t.Run(name+"/"+string(mode), func(t *testing.T) {
				ext, ok, err := sift.PaddedExtrema(x, mode, cfg)
				require.NoError(t, err)
				require.True(t, ok)
				require.Len(t, ext.Mags, ext.Len())

				assert.Less(t, ext.Locs[0], 0.0)
				assert.GreaterOrEqual(t, ext.Locs[ext.Len()-1], float64(len(x)))
				for i := 1; i < ext.Len(); i++ {
					assert.Greater(t, ext.Locs[i], ext.Locs[i-1])
				}
			})
		}
	}
}

func TestPaddedExtremaTroughMagnitudes(t *testing.T) {
	x := []float64{0, -1, 0, -3, 0, -2, 0}

	cfg := sift.DefaultExtremaConfig()
	cfg.PadWidth = 0

	ext, ok, err := sift.PaddedExtrema(x, sift.Troughs, cfg)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []float64{1, 3, 5}, ext.Locs)
	assert.Equal(t, []float64{-1, -3, -2}, ext.Mags)
}

func TestPaddedExtremaTooFew(t *testing.T) {
	cfg := sift.DefaultExtremaConfig()

	_, ok, err := sift.PaddedExtrema(testutil.DC(1, 50), sift.Peaks, cfg)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = sift.PaddedExtrema([]float64{0, 1, 0, 0, 0}, sift.Peaks, cfg)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPaddedExtremaRetryCap(t *testing.T) {
	// Edge padding repeats the outer locations, so coverage never improves
	cfg := sift.DefaultExtremaConfig()
	cfg.LocPad = common.PadOptions{Mode: common.PadEdge}
	cfg.MaxPadRetries = 3

	_, _, err := sift.PaddedExtrema(testutil.DeterministicSine(5, 100, 1, 100), sift.Peaks, cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sift.ErrPaddingCoverage))
}

// burst returns n zeros with three cycles of a period-8 wave at start
func burst(n, start int) []float64 {
	cycle := []float64{0, 0.7, 1, 0.7, 0, -0.7, -1, -0.7}
	x := make([]float64, n)
	for c := range 3 {
		copy(x[start+8*c:], cycle)
	}
	return x
}

func TestPaddedExtremaIsolatedBurst(t *testing.T) {
	x := burst(4000, 2000)

	ext, ok, err := sift.PaddedExtrema(x, sift.Peaks, sift.DefaultExtremaConfig())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Less(t, ext.Locs[0], 0.0)
	assert.GreaterOrEqual(t, ext.Locs[len(ext.Locs)-1], 4000.0)
	for i := 1; i < len(ext.Locs); i++ {
		assert.Greater(t, ext.Locs[i], ext.Locs[i-1])
	}

	cfg := sift.DefaultConfig()
	cfg.MaxIMFs = 1
	dec, err := sift.NewSifter(cfg).WithLogger(&logging.NoOpLogger{}).Sift(x)
	require.NoError(t, err)
	require.Equal(t, 1, dec.NumIMFs())
	assert.Equal(t, len(x), dec.Len())
}

func TestPaddedExtremaUnknownMode(t *testing.T) {
	_, _, err := sift.PaddedExtrema([]float64{0, 1, 0, 1, 0}, "valleys", sift.DefaultExtremaConfig())
	assert.ErrorIs(t, err, sift.ErrInvalidConfig)
}
