package sift_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-emd/algorithms/sift"
	"github.com/RyanBlaney/sonido-emd/internal/testutil"
)

func TestDecompositionAccessors(t *testing.T) {
	x := testutil.SumOfSines(1000, 600, 5, 80)

	dec, err := sift.Sift(x, sift.DefaultConfig())
	require.NoError(t, err)
	require.NotZero(t, dec.NumIMFs())
	assert.Equal(t, len(x), dec.Len())

	// Accessors hand out copies
	imf := dec.IMF(0)
	imf[0] += 100
	assert.NotEqual(t, imf[0], dec.IMF(0)[0])

	all := dec.IMFs()
	require.Len(t, all, dec.NumIMFs())
	all[0][1] += 100
	assert.NotEqual(t, all[0][1], dec.IMF(0)[1])

	m := dec.Matrix()
	require.NotNil(t, m)
	rows, cols := m.Dims()
	assert.Equal(t, len(x), rows)
	assert.Equal(t, dec.NumIMFs(), cols)
	for j := range cols {
		assert.Equal(t, dec.IMF(j)[7], m.At(7, j))
	}
}

func TestDecompositionEmpty(t *testing.T) {
	dec := sift.NewDecomposition(10)
	assert.Zero(t, dec.NumIMFs())
	assert.Nil(t, dec.Matrix())
	assert.Equal(t, make([]float64, 10), dec.Sum())
}

func TestDecompositionResidualShape(t *testing.T) {
	dec := sift.NewDecomposition(10)
	_, err := dec.Residual(make([]float64, 9))
	assert.ErrorIs(t, err, sift.ErrShapeMismatch)
}
