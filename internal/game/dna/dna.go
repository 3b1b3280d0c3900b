// Package dna generates, combines and mutates the fixed-length genetic strings
// carried by every pet. The codec is pure apart from its randomness Source.
package dna

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/petengine/internal/game/dice"
	"github.com/cory-johannsen/petengine/internal/game/gameerr"
)

// Alphabet is the 62-symbol genetic alphabet: digits, upper and lower letters.
const Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// Length is the exact number of symbols in every genome.
const Length = 50

// DefaultMutationScale is the per-position mutation probability in hundredths
// of a percent (100 = 1%).
const DefaultMutationScale = 100

// Codec performs genome operations using an injected randomness Source.
type Codec struct {
	src      dice.Source
	mutation int // per-position probability out of dice.PercentScale
}

// NewCodec returns a Codec with the default 1% mutation rate.
//
// Precondition: src must be non-nil.
func NewCodec(src dice.Source) *Codec {
	return &Codec{src: src, mutation: DefaultMutationScale}
}

// Generate returns a genome of Length symbols drawn uniformly from Alphabet.
func (c *Codec) Generate() string {
	var b strings.Builder
	b.Grow(Length)
	for i := 0; i < Length; i++ {
		b.WriteByte(Alphabet[c.src.Intn(len(Alphabet))])
	}
	return b.String()
}

// Combine picks, for each position independently and with equal probability,
// the symbol from a or from b.
//
// Precondition: Validate(a) and Validate(b) succeed.
// Postcondition: result[i] is a[i] or b[i] for every i.
func (c *Codec) Combine(a, b string) (string, error) {
	if err := Validate(a); err != nil {
		return "", err
	}
	if err := Validate(b); err != nil {
		return "", err
	}
	out := make([]byte, Length)
	for i := 0; i < Length; i++ {
		if c.src.Intn(2) == 0 {
			out[i] = a[i]
		} else {
			out[i] = b[i]
		}
	}
	return string(out), nil
}

// Mutate replaces each symbol, with independent probability 1%, by a uniformly
// drawn symbol of Alphabet. The replacement may equal the original symbol.
//
// Postcondition: len(result) == len(genome); every symbol is in Alphabet when
// genome was valid.
func (c *Codec) Mutate(genome string) string {
	out := []byte(genome)
	for i := range out {
		if c.src.Intn(dice.PercentScale) < c.mutation {
			out[i] = Alphabet[c.src.Intn(len(Alphabet))]
		}
	}
	return string(out)
}

// Breed is Mutate(Combine(a, b)).
func (c *Codec) Breed(a, b string) (string, error) {
	combined, err := c.Combine(a, b)
	if err != nil {
		return "", err
	}
	return c.Mutate(combined), nil
}

// Validate reports a KindInvalidGenome error unless genome is exactly Length
// symbols from Alphabet.
func Validate(genome string) error {
	if len(genome) != Length {
		return gameerr.InvalidGenome(fmt.Sprintf("dna must be %d characters, got %d", Length, len(genome)))
	}
	for i := 0; i < len(genome); i++ {
		if strings.IndexByte(Alphabet, genome[i]) < 0 {
			return gameerr.InvalidGenome(fmt.Sprintf("dna contains invalid symbol %q at position %d", genome[i], i))
		}
	}
	return nil
}
