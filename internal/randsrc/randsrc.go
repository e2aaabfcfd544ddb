// Package randsrc implements the Randomness capability RND and
// RANDOMIZE consult, grounded on the reference implementation's
// b1_ex_rnd extension (spec.md §4 supplement: RND/RANDOMIZE).
package randsrc

import "math/rand"

// Source is a math/rand-backed Randomness implementation. No pack
// library supplies a BASIC-style PRNG; math/rand is the standard tool
// for this and is what the reference's libc rand()/srand() pairing
// maps onto most directly.
type Source struct {
	r *rand.Rand
}

// New returns a Source seeded from seed exactly as given (zero is used
// as an ordinary seed), so runs with the same seed are reproducible.
func New(seed int64) *Source {
	return &Source{r: rand.New(rand.NewSource(seed))}
}

// Float64 returns the next pseudo-random value in [0, 1), the RND()
// result before any scaling the caller applies.
func (s *Source) Float64() float64 { return s.r.Float64() }

// Seed reseeds the generator, implementing RANDOMIZE n.
func (s *Source) Seed(seed int64) { s.r = rand.New(rand.NewSource(seed)) }
