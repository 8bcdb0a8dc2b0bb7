package motion

import "math/rand/v2"

// Source is the random stream consumed by the stochastic operations.
// *rand.Rand satisfies it.
type Source interface {
	Float64() float64
	NormFloat64() float64
}

// NewPCG returns the generator state behind NewSource so callers can
// snapshot and restore it (PCG implements encoding.BinaryMarshaler).
func NewPCG(seed uint64) *rand.PCG {
	return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}

// NewSource seeds a deterministic stream. Seed once per run; reseeding
// mid-run breaks reproducibility.
func NewSource(seed uint64) *rand.Rand {
	return rand.New(NewPCG(seed))
}

func normal(src Source, mean, std float64) float64 {
	return mean + std*src.NormFloat64()
}
