// Package dice provides the randomness abstraction used by the simulation:
// DNA generation and mutation, starting personality rolls and adventure drops.
package dice

// Source is the randomness provider for every stochastic rule in the engine.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// IntRange returns a value in [lo, hi] drawn from src.
//
// Precondition: lo <= hi.
// Postcondition: lo <= result <= hi.
func IntRange(src Source, lo, hi int) int {
	if lo >= hi {
		return lo
	}
	return lo + src.Intn(hi-lo+1)
}

// PercentScale is the resolution of percentage rolls: hundredths of a percent.
const PercentScale = 10000

// ChanceToScale converts a percentage with two decimals (e.g. 12.5) to the
// integer threshold used by PercentRoll (1250).
//
// Postcondition: result is in [0, PercentScale].
func ChanceToScale(percent float64) int {
	v := int(percent*100 + 0.5)
	if v < 0 {
		return 0
	}
	if v > PercentScale {
		return PercentScale
	}
	return v
}

// PercentRoll reports whether a uniform draw in [0, PercentScale) falls below
// the threshold derived from percent.
//
// Postcondition: percent <= 0 never succeeds; percent >= 100 always succeeds.
func PercentRoll(src Source, percent float64) bool {
	return src.Intn(PercentScale) < ChanceToScale(percent)
}
