package providers

// NoiseSource supplies uniform samples in [0, 1) for synthetic label noise.
// *rand.Rand from math/rand/v2 satisfies it.
type NoiseSource interface {
	Float64() float64
}
