package sift

import (
	"math/rand/v2"
)

// PCG stream constants keep seed expansion and noise generation on
// separate sequences even when fed the same seed.
const (
	seedStream  uint64 = 0x9e3779b97f4a7c15
	noiseStream uint64 = 0xd1b54a32d192ed03
)

// ExpandSeeds derives n independent realization seeds from one seed.
// The expansion is deterministic: the same seed always yields the same list.
func ExpandSeeds(seed uint64, n int) []uint64 {
	rng := rand.New(rand.NewPCG(seed, seedStream))
	seeds := make([]uint64, n)
	for i := range seeds {
		seeds[i] = rng.Uint64()
	}
	return seeds
}

// GaussianNoise returns n samples of zero-mean Gaussian noise with standard
// deviation scale, drawn from a generator owned by this call.
func GaussianNoise(seed uint64, n int, scale float64) []float64 {
	rng := rand.New(rand.NewPCG(seed, noiseStream))
	noise := make([]float64, n)
	for i := range noise {
		noise[i] = rng.NormFloat64() * scale
	}
	return noise
}

// resolveSeed returns *seed, or a fresh random seed when seed is nil
func resolveSeed(seed *uint64) uint64 {
	if seed != nil {
		return *seed
	}
	return rand.Uint64()
}
