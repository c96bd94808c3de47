package sift

import (
	"math"

	"github.com/RyanBlaney/sonido-emd/algorithms/common"
)

// SDStop computes Σ(proto−candidate)² / Σproto² and stops below thresh.
// proto is the signal entering the iteration and candidate is proto with
// the local mean removed.
func SDStop(proto, candidate []float64, thresh float64) (bool, float64) {
	num := 0.0
	for i := range proto {
		d := proto[i] - candidate[i]
		num += d * d
	}
	den := common.SumSquares(proto)

	var metric float64
	switch {
	case den > 0:
		metric = num / den
	case num == 0:
		metric = 0
	default:
		metric = math.Inf(1)
	}

	return metric < thresh, metric
}

// RillingStop implements the two-threshold criterion of Rilling, Flandrin
// and Goncalves (2003). With E = |mean envelope| / (half envelope range),
// sifting stops once the fraction of samples with E > SD1 is at most Tol
// and no sample has E > SD2. The metric is that fraction.
func RillingStop(upper, lower []float64, t RillingThresh) (bool, float64) {
	if len(upper) == 0 {
		return false, 0
	}

	over1 := 0
	over2 := false
	for i := range upper {
		avg := (upper[i] + lower[i]) / 2
		amp := math.Abs(upper[i]-lower[i]) / 2
		e := math.Abs(avg) / amp // 0/0 is NaN and fails both comparisons
		if e > t.SD1 {
			over1++
		}
		if e > t.SD2 {
			over2 = true
		}
	}

	metric := float64(over1) / float64(len(upper))
	return !(metric > t.Tol || over2), metric
}

// FixedStop stops exactly at iteration maxIters
func FixedStop(iteration, maxIters int) bool {
	return iteration == maxIters
}

// EnergyDifference returns 20·log10(Σimf²) − 20·log10(Σresidue²) in dB.
// A zero-energy term contributes 0 dB.
func EnergyDifference(imf, residue []float64) float64 {
	return energyDB(imf) - energyDB(residue)
}

func energyDB(x []float64) float64 {
	sumsqr := common.SumSquares(x)
	if sumsqr <= 0 {
		return 0
	}
	return 20 * math.Log10(sumsqr)
}

// EnergyStop stops the decomposition when the energy difference exceeds thresh
func EnergyStop(imf, residue []float64, thresh float64) (bool, float64) {
	diff := EnergyDifference(imf, residue)
	return diff > thresh, diff
}
