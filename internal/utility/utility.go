package utility

import "math/rand"

// Shuffle returns a new slice with the elements of s in random order.
// The input is left untouched.
func Shuffle[T any](rng *rand.Rand, s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// Pick returns a random element of s. Panics on an empty slice.
func Pick[T any](rng *rand.Rand, s []T) T {
	return s[rng.Intn(len(s))]
}
