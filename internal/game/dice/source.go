package dice

import (
	"crypto/rand"
	mrand "math/rand/v2"
	"sync"
)

// pcgSource is a seeded, non-cryptographic Source. Game flavor only.
type pcgSource struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// NewSeededSource returns a deterministic PCG-backed Source for the given seed.
// Two sources with the same seed produce the same sequence.
func NewSeededSource(seed uint64) Source {
	return &pcgSource{rng: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewSource returns a non-cryptographic Source seeded from crypto/rand.
func NewSource() Source {
	var b [8]byte
	_, _ = rand.Read(b[:])
	var seed uint64
	for _, x := range b {
		seed = seed<<8 | uint64(x)
	}
	return NewSeededSource(seed)
}

// Intn returns a pseudo-random int in [0, n).
//
// Precondition: n > 0. Panics if n <= 0.
func (p *pcgSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.IntN(n)
}

// Fixed is a Source that replays Values in order, cycling when exhausted.
// Each value is reduced modulo n. Intended for tests.
type Fixed struct {
	mu     sync.Mutex
	Values []int
	next   int
}

// Intn returns the next scripted value modulo n.
func (f *Fixed) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Values) == 0 {
		return 0
	}
	v := f.Values[f.next%len(f.Values)]
	f.next++
	if v < 0 {
		v = -v
	}
	return v % n
}
