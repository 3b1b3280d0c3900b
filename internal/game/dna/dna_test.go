package dna_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/petengine/internal/game/dice"
	"github.com/cory-johannsen/petengine/internal/game/dna"
	"github.com/cory-johannsen/petengine/internal/game/gameerr"
)

func genomeGen() *rapid.Generator[string] {
	return rapid.Custom(func(t *rapid.T) string {
		idx := rapid.SliceOfN(rapid.IntRange(0, len(dna.Alphabet)-1), dna.Length, dna.Length).Draw(t, "symbols")
		b := make([]byte, dna.Length)
		for i, j := range idx {
			b[i] = dna.Alphabet[j]
		}
		return string(b)
	})
}

func assertValidGenome(t assert.TestingT, g string) {
	assert.Len(t, g, dna.Length)
	for i := 0; i < len(g); i++ {
		assert.True(t, strings.IndexByte(dna.Alphabet, g[i]) >= 0, "symbol %q not in alphabet", g[i])
	}
}

func TestAlphabet_Has62UniqueSymbols(t *testing.T) {
	seen := map[rune]bool{}
	for _, r := range dna.Alphabet {
		seen[r] = true
	}
	assert.Len(t, seen, 62)
}

func TestProperty_GenerateCombineMutate_PreserveLengthAndAlphabet(t *testing.T) {
	codec := dna.NewCodec(dice.NewSource())
	rapid.Check(t, func(rt *rapid.T) {
		a := genomeGen().Draw(rt, "a")
		b := genomeGen().Draw(rt, "b")

		assertValidGenome(rt, codec.Generate())

		c, err := codec.Combine(a, b)
		require.NoError(rt, err)
		assertValidGenome(rt, c)
		for i := 0; i < dna.Length; i++ {
			assert.True(rt, c[i] == a[i] || c[i] == b[i])
		}

		assertValidGenome(rt, codec.Mutate(a))

		child, err := codec.Breed(a, b)
		require.NoError(rt, err)
		assertValidGenome(rt, child)
	})
}

func TestCombine_RejectsWrongLength(t *testing.T) {
	codec := dna.NewCodec(dice.NewSeededSource(1))
	good := codec.Generate()

	_, err := codec.Combine(good, good[:49])
	assert.ErrorIs(t, err, gameerr.ErrInvalidGenome)

	_, err = codec.Combine(good+"x", good)
	assert.ErrorIs(t, err, gameerr.ErrInvalidGenome)

	_, err = codec.Breed("", good)
	assert.ErrorIs(t, err, gameerr.ErrInvalidGenome)
}

func TestValidate_RejectsForeignSymbol(t *testing.T) {
	g := strings.Repeat("a", dna.Length-1) + "-"
	assert.ErrorIs(t, dna.Validate(g), gameerr.ErrInvalidGenome)
	assert.NoError(t, dna.Validate(strings.Repeat("Z", dna.Length)))
}

func TestCombine_Fairness(t *testing.T) {
	codec := dna.NewCodec(dice.NewSeededSource(2024))
	a := strings.Repeat("A", dna.Length)
	b := strings.Repeat("b", dna.Length)

	const trials = 4000
	fromA := make([]int, dna.Length)
	for i := 0; i < trials; i++ {
		c, err := codec.Combine(a, b)
		require.NoError(t, err)
		for p := 0; p < dna.Length; p++ {
			if c[p] == 'A' {
				fromA[p]++
			}
		}
	}
	// Binomial(4000, 0.5) has sd ~31.6; 6 sd gives ample tolerance per position.
	for p, n := range fromA {
		assert.InDelta(t, trials/2, n, 190, "position %d biased", p)
	}
}

func TestMutate_RateConvergesToOnePercent(t *testing.T) {
	codec := dna.NewCodec(dice.NewSeededSource(99))
	const trials = 4000
	changed, total := 0, 0
	for i := 0; i < trials; i++ {
		in := codec.Generate()
		out := codec.Mutate(in)
		for p := 0; p < dna.Length; p++ {
			if in[p] != out[p] {
				changed++
			}
		}
		total += dna.Length
	}
	// A replacement keeps the same symbol 1 time in 62, so the observed rate is ~0.984%.
	rate := float64(changed) / float64(total)
	assert.InDelta(t, 0.00984, rate, 0.0015)
}

func TestMutate_ScriptedHit(t *testing.T) {
	// First draw < 100 triggers mutation at position 0, next draw picks symbol 'z'.
	vals := []int{0, 61}
	for i := 1; i < dna.Length; i++ {
		vals = append(vals, 5000)
	}
	codec := dna.NewCodec(&dice.Fixed{Values: vals})
	out := codec.Mutate(strings.Repeat("0", dna.Length))
	assert.Equal(t, "z"+strings.Repeat("0", dna.Length-1), out)
}
