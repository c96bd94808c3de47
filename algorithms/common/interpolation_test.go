package common_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-emd/algorithms/common"
)

func TestInterpolationTypeValidate(t *testing.T) {
	for _, m := range []common.InterpolationType{common.Splrep, common.Pchip, common.MonoPchip, common.Akima, common.Linear} {
		assert.NoError(t, m.Validate(), m)
	}
	assert.Error(t, common.InterpolationType("quintic").Validate())
}

func TestSplrepReproducesCubic(t *testing.T) {
	xs := []float64{0, 1, 2, 3, 4, 5}
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = x*x*x - 2*x
	}

	got, err := common.NewInterpolator(common.Splrep).InterpolateAt(xs, ys, []float64{0.5, 2.5, 4.25})
	require.NoError(t, err)

	for i, x := range []float64{0.5, 2.5, 4.25} {
		assert.InDelta(t, x*x*x-2*x, got[i], 1e-9)
	}
}

func TestInterpolatorsPassThroughKnots(t *testing.T) {
	xs := []float64{-1.5, 0, 2, 3.5, 7, 9}
	ys := []float64{0.3, 1, -0.5, 2, 2.5, -1}

	for _, m := range []common.InterpolationType{common.Splrep, common.Pchip, common.MonoPchip, common.Akima, common.Linear} {
		t.Run(string(m), func(t *testing.T) {
			got, err := common.NewInterpolator(m).InterpolateAt(xs, ys, xs)
			require.NoError(t, err)
			assert.InDeltaSlice(t, ys, got, 1e-9)
		})
	}
}

func TestPchipIsMonotone(t *testing.T) {
	xs := []float64{0, 1, 2, 3, 4}
	ys := []float64{0, 0.1, 5, 5.1, 10}

	at := make([]float64, 0, 41)
	for x := 0.0; x <= 4; x += 0.1 {
		at = append(at, x)
	}

	got, err := common.NewInterpolator(common.Pchip).InterpolateAt(xs, ys, at)
	require.NoError(t, err)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i], got[i-1]-1e-12, "index %d", i)
	}
}

func TestLinearMidpoints(t *testing.T) {
	got, err := common.NewInterpolator(common.Linear).InterpolateAt([]float64{0, 2, 4}, []float64{0, 2, 0}, []float64{1, 3})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 1}, got, 1e-12)
}

func TestFewKnotsDegrade(t *testing.T) {
	// Two knots are joined linearly whatever the kernel
	got, err := common.NewInterpolator(common.Splrep).InterpolateAt([]float64{0, 4}, []float64{0, 8}, []float64{1})
	require.NoError(t, err)
	assert.InDelta(t, 2, got[0], 1e-12)

	// Three knots are too few for a not-a-knot spline
	_, err = common.NewInterpolator(common.Splrep).Fit([]float64{0, 1, 2}, []float64{0, 1, 0})
	assert.NoError(t, err)
}

func TestFitErrors(t *testing.T) {
	ip := common.NewInterpolator(common.Splrep)

	_, err := ip.Fit([]float64{0, 1}, []float64{0})
	assert.Error(t, err)

	_, err = ip.Fit([]float64{0}, []float64{0})
	assert.Error(t, err)

	_, err = ip.Fit([]float64{0, 1, 1, 2}, []float64{0, 1, 2, 3})
	assert.Error(t, err)

	_, err = common.NewInterpolator("nearest").Fit([]float64{0, 1}, []float64{0, 1})
	assert.Error(t, err)
}
