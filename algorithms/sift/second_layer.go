package sift

import (
	"fmt"
)

// SecondLayerResult holds the decomposition of each first-layer amplitude
// envelope
type SecondLayerResult struct {
	Layers []*Decomposition
	// MaxIMFs is the largest number of second-layer IMFs of any envelope
	MaxIMFs int
}

// At returns sample t of second-layer IMF second of first-layer envelope
// first, or 0 when that envelope produced fewer IMFs
func (r *SecondLayerResult) At(t, first, second int) float64 {
	dec := r.Layers[first]
	if second >= dec.NumIMFs() {
		return 0
	}
	return dec.imfs[second][t]
}

// SecondLayer sifts every first-layer amplitude envelope ia[imf][sample]
// with d
func SecondLayer(ia [][]float64, d Decomposer) (*SecondLayerResult, error) {
	if len(ia) == 0 {
		return nil, ErrEmptyInput
	}

	res := &SecondLayerResult{Layers: make([]*Decomposition, len(ia))}
	for i, env := range ia {
		if len(env) != len(ia[0]) {
			return nil, fmt.Errorf("%w: envelope %d has %d samples, envelope 0 has %d", ErrShapeMismatch, i, len(env), len(ia[0]))
		}
		dec, err := d.Decompose(env)
		if err != nil {
			return nil, fmt.Errorf("second layer of imf %d: %w", i, err)
		}
		res.Layers[i] = dec
		res.MaxIMFs = max(res.MaxIMFs, dec.NumIMFs())
	}
	return res, nil
}

// MaskSecondLayer mask-sifts every first-layer amplitude envelope. One list
// of mask frequencies serves all envelopes; envelope i starts at freqs[i],
// dropping the masks too fast for slower first-layer IMFs. When cfg.MaxIMFs
// is zero it defaults to the number of envelopes.
func MaskSecondLayer(ia [][]float64, freqs []float64, cfg MaskConfig) (*SecondLayerResult, error) {
	if len(ia) == 0 {
		return nil, ErrEmptyInput
	}
	if len(freqs) < len(ia) {
		return nil, invalidConfig("need a mask frequency per envelope, got %d for %d envelopes", len(freqs), len(ia))
	}
	if cfg.MaxIMFs == 0 {
		cfg.MaxIMFs = len(ia)
	}

	res := &SecondLayerResult{Layers: make([]*Decomposition, len(ia))}
	for i, env := range ia {
		if len(env) != len(ia[0]) {
			return nil, fmt.Errorf("%w: envelope %d has %d samples, envelope 0 has %d", ErrShapeMismatch, i, len(env), len(ia[0]))
		}
		c := cfg
		c.MaskFreqs = MaskFreqs{Mode: MaskFreqList, List: freqs[i:]}

		out, err := NewMaskSifter(c).Sift(env)
		if err != nil {
			return nil, fmt.Errorf("mask second layer of imf %d: %w", i, err)
		}
		res.Layers[i] = out.Decomposition
		res.MaxIMFs = max(res.MaxIMFs, out.NumIMFs())
	}
	return res, nil
}
