package sift

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/RyanBlaney/sonido-emd/algorithms/common"
)

// Extrema holds extremum locations (in samples) and their magnitudes.
// Locations are strictly increasing.
type Extrema struct {
	Locs []float64
	Mags []float64
}

// Len returns the number of extrema
func (e Extrema) Len() int {
	return len(e.Locs)
}

// FindExtrema returns the strict local maxima of x. A maximum at i needs
// x[i] > x[i-1] and x[i] > x[i+1], so the end samples never qualify.
//
// When promThresh > 0 only maxima whose prominence within a three sample
// window exceeds it are kept. When parabolic is set each maximum is moved
// to the vertex of the parabola through it and its two neighbours.
func FindExtrema(x []float64, promThresh float64, parabolic bool) Extrema {
	var locs []int
	for i := 1; i < len(x)-1; i++ {
		if x[i] > x[i-1] && x[i] > x[i+1] {
			if promThresh > 0 && x[i]-max(x[i-1], x[i+1]) <= promThresh {
				continue
			}
			locs = append(locs, i)
		}
	}

	if len(locs) == 0 {
		return Extrema{Locs: []float64{}, Mags: []float64{}}
	}

	ext := Extrema{
		Locs: make([]float64, len(locs)),
		Mags: make([]float64, len(locs)),
	}
	for k, i := range locs {
		if parabolic {
			ext.Locs[k], ext.Mags[k] = ParabolicVertex(x[i-1], x[i], x[i+1], float64(i))
		} else {
			ext.Locs[k], ext.Mags[k] = float64(i), x[i]
		}
	}
	return ext
}

// ParabolicVertex fits a parabola through (loc-1, y1), (loc, y2), (loc+1, y3)
// and returns the position and value of its vertex.
func ParabolicVertex(y1, y2, y3, loc float64) (float64, float64) {
	// Parabola coefficients for the points placed at t = 1, 2, 3
	a := 0.5*y1 - y2 + 0.5*y3
	b := -2.5*y1 + 4*y2 - 1.5*y3
	c := 3*y1 - 3*y2 + y3
	if a == 0 {
		return loc, y2
	}

	tp := -b / (2 * a)
	return tp - 2 + loc, tp*b/2 + c
}

// detectExtrema runs FindExtrema on the signal transformed for mode
func detectExtrema(x []float64, mode ExtremaMode, cfg ExtremaConfig) (Extrema, error) {
	switch mode {
	case Peaks:
		return FindExtrema(x, cfg.PeakPromThresh, cfg.ParabolicExtrema), nil
	case Troughs:
		ext := FindExtrema(common.Negate(x), cfg.PeakPromThresh, cfg.ParabolicExtrema)
		floats.Scale(-1, ext.Mags)
		return ext, nil
	case AbsPeaks:
		return FindExtrema(common.Abs(x), cfg.PeakPromThresh, cfg.ParabolicExtrema), nil
	default:
		return Extrema{}, invalidConfig("extrema mode %q not recognised", mode)
	}
}

// PaddedExtrema detects extrema of x in mode and pads cfg.PadWidth extra
// extrema onto each end so that the padded locations span beyond both ends
// of the signal. It reports ok == false when x has fewer than two extrema,
// which means no envelope can be drawn.
func PaddedExtrema(x []float64, mode ExtremaMode, cfg ExtremaConfig) (Extrema, bool, error) {
	ext, err := detectExtrema(x, mode, cfg)
	if err != nil {
		return Extrema{}, false, err
	}

	if ext.Len() < 2 {
		return Extrema{}, false, nil
	}

	padWidth := min(cfg.PadWidth, ext.Len())
	if padWidth == 0 {
		return ext, true, nil
	}

	padded := ext
	n := float64(len(x))
	limit := padRetryLimit(ext.Locs, n, padWidth, cfg.MaxPadRetries)
	for retries := 0; ; retries++ {
		if retries > 0 && floats.Max(padded.Locs) >= n && floats.Min(padded.Locs) < 0 {
			break
		}
		if retries > limit {
			return Extrema{}, false, fmt.Errorf("%w: %d extrema over %d samples still span [%g, %g] after %d pads",
				ErrPaddingCoverage, ext.Len(), len(x), floats.Min(padded.Locs), floats.Max(padded.Locs), retries)
		}

		locs, err := common.Pad(padded.Locs, padWidth, cfg.LocPad)
		if err != nil {
			return Extrema{}, false, fmt.Errorf("padding extrema locations: %w", err)
		}
		mags, err := common.Pad(padded.Mags, padWidth, cfg.MagPad)
		if err != nil {
			return Extrema{}, false, fmt.Errorf("padding extrema magnitudes: %w", err)
		}
		padded = Extrema{Locs: locs, Mags: mags}
	}

	return padded, true, nil
}

// padRetryLimit bounds the padding rounds. Reflected locations advance by
// at least padWidth times the smallest extremum spacing per round, so
// ceil(n / (padWidth·spacing)) + 1 rounds cover any signal; maxRetries is
// a floor for padding modes that do not advance.
func padRetryLimit(locs []float64, n float64, padWidth, maxRetries int) int {
	spacing := math.Inf(1)
	for i := 1; i < len(locs); i++ {
		spacing = min(spacing, locs[i]-locs[i-1])
	}
	if spacing <= 0 || math.IsInf(spacing, 1) {
		return maxRetries
	}
	return max(maxRetries, int(math.Ceil(n/(float64(padWidth)*spacing)))+1)
}
