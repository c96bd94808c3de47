package sift

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/RyanBlaney/sonido-emd/algorithms/common"
)

// Decomposition is an ordered set of IMFs of one signal, fastest first
type Decomposition struct {
	n    int
	imfs [][]float64
}

// NewDecomposition creates an empty decomposition of an n-sample signal
func NewDecomposition(n int) *Decomposition {
	return &Decomposition{n: n}
}

// Decomposer is implemented by every sift driver
type Decomposer interface {
	Decompose(x []float64) (*Decomposition, error)
}

func (d *Decomposition) append(imf []float64) {
	d.imfs = append(d.imfs, imf)
}

// NumIMFs returns the number of IMFs
func (d *Decomposition) NumIMFs() int {
	return len(d.imfs)
}

// Len returns the number of samples per IMF
func (d *Decomposition) Len() int {
	return d.n
}

// IMF returns a copy of IMF i
func (d *Decomposition) IMF(i int) []float64 {
	return common.Clone(d.imfs[i])
}

// IMFs returns copies of every IMF, indexed [imf][sample]
func (d *Decomposition) IMFs() [][]float64 {
	out := make([][]float64, len(d.imfs))
	for i, imf := range d.imfs {
		out[i] = common.Clone(imf)
	}
	return out
}

// Sum returns the pointwise sum of all IMFs
func (d *Decomposition) Sum() []float64 {
	sum := make([]float64, d.n)
	for _, imf := range d.imfs {
		floats.Add(sum, imf)
	}
	return sum
}

// Residual returns x minus the sum of all IMFs
func (d *Decomposition) Residual(x []float64) ([]float64, error) {
	if len(x) != d.n {
		return nil, fmt.Errorf("%w: signal has %d samples, decomposition has %d", ErrShapeMismatch, len(x), d.n)
	}
	return common.Sub(x, d.Sum()), nil
}

// Matrix returns the IMFs as a samples × IMFs matrix, or nil when empty
func (d *Decomposition) Matrix() *mat.Dense {
	if d.n == 0 || len(d.imfs) == 0 {
		return nil
	}
	m := mat.NewDense(d.n, len(d.imfs), nil)
	for j, imf := range d.imfs {
		m.SetCol(j, imf)
	}
	return m
}
